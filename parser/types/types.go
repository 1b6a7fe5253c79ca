// Package types defines the declared value types of PoliteCode and their
// mapping onto C# primitives.
package types

// Type is a declared PoliteCode type.
type Type int

const (
	Invalid Type = iota
	Integer
	Decimal
	Boolean
	Text
	Void
)

var names = map[string]Type{
	"integer": Integer,
	"decimal": Decimal,
	"boolean": Boolean,
	"text":    Text,
	"void":    Void,
}

// Parse maps a type keyword onto its Type.
func Parse(name string) (Type, bool) {
	t, ok := names[name]
	return t, ok
}

// IsTypeName reports whether name is one of the declared type keywords.
func IsTypeName(name string) bool {
	_, ok := names[name]
	return ok
}

func (t Type) String() string {
	switch t {
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	case Boolean:
		return "boolean"
	case Text:
		return "text"
	case Void:
		return "void"
	default:
		return "invalid"
	}
}

// Target returns the C# primitive the type is emitted as.
func (t Type) Target() string {
	switch t {
	case Integer:
		return "int"
	case Decimal:
		return "double"
	case Boolean:
		return "bool"
	case Text:
		return "string"
	case Void:
		return "void"
	default:
		return ""
	}
}

// Numeric reports whether t is integer or decimal.
func (t Type) Numeric() bool {
	return t == Integer || t == Decimal
}

// Compatible reports whether a value of type from may be used where to is
// expected. Integer and decimal are interchangeable; decimal narrows to
// integer by truncation.
func Compatible(from, to Type) bool {
	if from == to {
		return from != Invalid
	}
	return from.Numeric() && to.Numeric()
}
