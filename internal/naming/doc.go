// Package naming provides case conversion helpers shared by the catalog
// builder and the emitters.
//
// ToPascalCase names nested types after the field that holds them,
// NormalizeKey compares discriminator values with alternative names, and
// ToSnakeCase, ToScreamingSnake and GoIdentifier shape emitted identifiers.
// CleanName title-cases free-text endpoint names.
//
// As an internal package, these functions are not part of the public API
// and may change without notice.
package naming
