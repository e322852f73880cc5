// This file implements shape/format to target type mapping.

package generator

import (
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/erraggy/apicatalog/schema"
)

// protoScalar maps a scalar shape to its proto field type.
func protoScalar(n *schema.Node) descriptorpb.FieldDescriptorProto_Type {
	switch n.Shape {
	case schema.ShapeBoolean:
		return descriptorpb.FieldDescriptorProto_TYPE_BOOL
	case schema.ShapeInteger:
		if n.Format == "int32" {
			return descriptorpb.FieldDescriptorProto_TYPE_INT32
		}
		return descriptorpb.FieldDescriptorProto_TYPE_INT64
	case schema.ShapeNumber:
		if n.Format == "float" {
			return descriptorpb.FieldDescriptorProto_TYPE_FLOAT
		}
		return descriptorpb.FieldDescriptorProto_TYPE_DOUBLE
	default:
		return descriptorpb.FieldDescriptorProto_TYPE_STRING
	}
}

// goScalar maps a scalar shape to a Go type.
func goScalar(n *schema.Node) string {
	switch n.Shape {
	case schema.ShapeBoolean:
		return "bool"
	case schema.ShapeInteger:
		return integerFormatToGoType(n.Format)
	case schema.ShapeNumber:
		return numberFormatToGoType(n.Format)
	default:
		return stringFormatToGoType(n.Format)
	}
}

// stringFormatToGoType maps string formats to Go types.
func stringFormatToGoType(format string) string {
	switch format {
	case "date-time":
		return "time.Time"
	default:
		return "string"
	}
}

// integerFormatToGoType maps integer formats to Go types.
func integerFormatToGoType(format string) string {
	switch format {
	case "int32":
		return "int32"
	default:
		return "int64"
	}
}

// numberFormatToGoType maps number formats to Go types.
func numberFormatToGoType(format string) string {
	switch format {
	case "float":
		return "float32"
	default:
		return "float64"
	}
}

// openAPIType is the OpenAPI "type" keyword for a shape.
func openAPIType(s schema.Shape) string {
	switch s {
	case schema.ShapeEnum:
		return "string"
	case schema.ShapeObject, schema.ShapeAdditional, schema.ShapeDiscriminated:
		return "object"
	default:
		return string(s)
	}
}

// collection reports whether a node has no scalar or message form, as an
// element of an array or the value of a map in proto2.
func collection(n *schema.Node) bool {
	return n != nil && (n.Shape == schema.ShapeArray || n.Shape == schema.ShapeAdditional)
}

// orString returns n, or a string node when n is nil.
func orString(n *schema.Node) *schema.Node {
	if n == nil {
		return &schema.Node{Shape: schema.ShapeString}
	}
	return n
}
