// Package lexer splits PoliteCode source lines into classified tokens.
package lexer

import (
	"regexp"

	"github.com/daveroberts0321/politecode/parser/types"
)

// Kind is the semantic category of a raw token.
type Kind int

const (
	Invalid Kind = iota
	Create
	Print
	If
	Loop
	DefineFunction
	CallFunction
	Return
	From
	To
	While
	Identifier
	TypeName
	Number
	String
	Boolean
	Equals
	OpenBrace
	CloseBrace
	OpenParen
	CloseParen
	Comma
	Relational
)

var kindNames = map[Kind]string{
	Invalid:        "invalid",
	Create:         "please create",
	Print:          "thank you for printing",
	If:             "thank you for checking if",
	Loop:           "thank you for looping",
	DefineFunction: "please define function",
	CallFunction:   "please call",
	Return:         "thank you for returning",
	From:           "from",
	To:             "to",
	While:          "while",
	Identifier:     "identifier",
	TypeName:       "type",
	Number:         "number",
	String:         "string",
	Boolean:        "boolean",
	Equals:         "equals",
	OpenBrace:      "'{'",
	CloseBrace:     "'}'",
	OpenParen:      "'('",
	CloseParen:     "')'",
	Comma:          "','",
	Relational:     "relational operator",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Token is a classified source token. Column is 1-based.
type Token struct {
	Text   string
	Kind   Kind
	Column int
}

// Keyword phrases and single-word keywords with a fixed kind.
var keywords = map[string]Kind{
	"please define function":    DefineFunction,
	"please create":             Create,
	"please call":               CallFunction,
	"thank you for printing":    Print,
	"thank you for checking if": If,
	"thank you for looping":     Loop,
	"thank you for returning":   Return,
	"from":                      From,
	"to":                        To,
	"while":                     While,
	"true":                      Boolean,
	"false":                     Boolean,
	"equals":                    Equals,
	"{":                         OpenBrace,
	"}":                         CloseBrace,
	"(":                         OpenParen,
	")":                         CloseParen,
	",":                         Comma,
}

// Comparisons maps each relational phrase onto its C# operator.
var Comparisons = map[string]string{
	"equal to":            "==",
	"greater then":        ">",
	"less then":           "<",
	"different from":      "!=",
	"greater or equal to": ">=",
	"less or equal to":    "<=",
}

// Arithmetic maps the arithmetic operator words onto their C# operators.
var Arithmetic = map[string]string{
	"add": "+",
	"sub": "-",
	"mul": "*",
	"div": "/",
}

var (
	numberRe     = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	stringRe     = regexp.MustCompile(`^".*"$`)
	identifierRe = regexp.MustCompile(`^[A-Za-z_]\w*$`)
)

// IsNumber reports whether s is a numeric literal.
func IsNumber(s string) bool { return numberRe.MatchString(s) }

// IsString reports whether s is a double-quoted string literal.
func IsString(s string) bool { return len(s) >= 2 && stringRe.MatchString(s) }

// IsIdentifier reports whether s has the shape of an identifier.
func IsIdentifier(s string) bool { return identifierRe.MatchString(s) }

// IsBoolean reports whether s is a boolean literal.
func IsBoolean(s string) bool { return s == "true" || s == "false" }

// IsDecimalLiteral reports whether s is a numeric literal with a fractional part.
func IsDecimalLiteral(s string) bool {
	m := numberRe.FindStringSubmatch(s)
	return m != nil && m[1] != ""
}

// Classify maps raw token text onto its Kind. Lookup order matters because
// the alphabets overlap: keywords, type names, relational phrases, numbers,
// strings, then identifiers.
func Classify(text string) Kind {
	if kind, ok := keywords[text]; ok {
		return kind
	}
	if types.IsTypeName(text) {
		return TypeName
	}
	if _, ok := Comparisons[text]; ok {
		return Relational
	}
	switch {
	case IsNumber(text):
		return Number
	case IsString(text):
		return String
	case IsIdentifier(text):
		return Identifier
	}
	return Invalid
}
