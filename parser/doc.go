// Package parser recovers structured JSON groups from scraped API schema text.
//
// The upstream documentation generator emits response and request
// descriptions as JSON literals separated by comment lines that carry
// structure of their own:
//
//	[
//	//Quote:
//	{ "symbol": { "type": "string" } }
//	//Option:
//	undefined
//	]
//	//The class <Instrument> has the following subclasses:
//	//-Equity
//	//-Option
//	//The following are schemas for each of the subclasses listed below:
//	//Equity:
//	{ ... }
//	//OR
//	//Option:
//	{ ... }
//
// Parsing happens in two phases. [SplitSections] and [SplitSubtypes] are line
// state machines that cut text into labeled spans; [ParseFragment] decodes a
// single span as JSON, mapping the bare token undefined to [Undefined].
// [NormalizeDocument] drives both phases for a whole document and returns a
// [Record] of top-level groups and one-of families, in document order.
//
// # Ordered values
//
// Decoded objects are [*Object] values, which keep their keys in source order.
// Numbers are kept as json.Number so that formats survive untouched.
//
// # Errors
//
// Grammar violations (content before the first label, a mismatch between
// "OR" separators and alternatives) are returned as *caterrors.GrammarError.
// Decode failures are *caterrors.ParseError and carry the offending fragment.
// A document that looks like a vendor error page is not an error: the record
// comes back with Skipped set.
package parser
