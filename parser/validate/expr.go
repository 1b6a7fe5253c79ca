// Package validate checks PoliteCode expressions and conditions against the
// declared types of the variables in scope.
//
// Expressions run through a secondary tokenizer with per-token type gating
// and then a finite-state acceptor. Conditions are checked by shape
// depending on the type of their first operand.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/daveroberts0321/politecode/parser/lexer"
	"github.com/daveroberts0321/politecode/parser/types"
)

// Error is a validation failure. Token names the offending token when known.
type Error struct {
	Token   string
	Message string
}

func (e *Error) Error() string { return e.Message }

func errorf(token, format string, args ...interface{}) *Error {
	return &Error{Token: token, Message: fmt.Sprintf(format, args...)}
}

// class is the secondary token alphabet of the expression acceptor.
type class int

const (
	cNum class = iota
	cPlus
	cMinus
	cMul
	cDiv
	cOpen
	cClose
	cVar
	cStr
	cBool
	cInvalid
)

type state int

const (
	sStart state = iota
	sOp
	sNum
	sOpen
	sClose
	sStr
	sVar
)

var transitions = map[state]map[class]state{
	sStart: {
		cNum:   sNum,
		cPlus:  sOp,
		cMinus: sOp,
		cOpen:  sOpen,
		cStr:   sStr,
		cVar:   sVar,
		cBool:  sNum,
	},
	sOp: {
		cNum:  sNum,
		cOpen: sOpen,
		cStr:  sStr,
		cVar:  sVar,
	},
	sNum: {
		cPlus:  sOp,
		cMinus: sOp,
		cMul:   sOp,
		cDiv:   sOp,
		cClose: sClose,
	},
	sStr: {
		cPlus:  sOp,
		cClose: sClose,
	},
	sVar: {
		cPlus:  sOp,
		cMinus: sOp,
		cMul:   sOp,
		cDiv:   sOp,
		cClose: sClose,
	},
	sOpen: {
		cNum:   sNum,
		cOpen:  sOpen,
		cPlus:  sOp,
		cMinus: sOp,
		cStr:   sStr,
		cVar:   sVar,
	},
	sClose: {
		cPlus:  sOp,
		cMinus: sOp,
		cMul:   sOp,
		cDiv:   sOp,
		cClose: sClose,
	},
}

var accepting = map[state]bool{
	sNum:   true,
	sClose: true,
	sStr:   true,
	sVar:   true,
}

var (
	respaceRe   = regexp.MustCompile(`\b(add|sub|mul|div)(\d)`)
	exprTokenRe = regexp.MustCompile(`-?\d+(?:\.\d+)?|"[^"]*"|[A-Za-z_]\w*|[()]|\S`)
)

// Validator checks expressions against a snapshot of visible variables.
type Validator struct {
	vars map[string]types.Type
}

// New returns a validator over the given variable types.
func New(vars map[string]types.Type) *Validator {
	if vars == nil {
		vars = map[string]types.Type{}
	}
	return &Validator{vars: vars}
}

// Expr is a validated expression.
type Expr struct {
	// Text is the expression with operator words split from numbers.
	Text string
	// Narrowing is set when a decimal operand feeds an integer target.
	Narrowing bool
}

type item struct {
	class class
	text  string
}

// Expression validates expr as a value of the expected type.
func (v *Validator) Expression(expr string, expected types.Type) (Expr, error) {
	switch expected {
	case types.Integer, types.Decimal, types.Boolean, types.Text:
	default:
		return Expr{}, errorf("", "Unknown type: %s", expected)
	}

	tokens := tokenize(expr)
	if len(tokens) == 0 {
		return Expr{}, errorf("", "Empty %s expression", expected)
	}

	items, narrowing, err := v.gate(tokens, expected)
	if err != nil {
		return Expr{}, err
	}
	if err := run(items); err != nil {
		return Expr{}, err
	}

	switch expected {
	case types.Boolean:
		if len(items) != 1 {
			return Expr{}, errorf("", "Boolean type must be either 'true' or 'false', or a boolean variable. Cannot accept expressions.")
		}
	case types.Text:
		for _, it := range items {
			if it.class == cMinus || it.class == cMul || it.class == cDiv {
				return Expr{}, errorf(it.text, "Only 'add' can join text values, got '%s'", it.text)
			}
		}
	}

	return Expr{Text: strings.Join(tokens, " "), Narrowing: narrowing}, nil
}

// IntegerLiteral reports whether s is a literal valid for an integer
// declaration.
func IntegerLiteral(s string) bool {
	return lexer.IsNumber(s) && !lexer.IsDecimalLiteral(s)
}

// DecimalLiteral reports whether s is a literal valid for a decimal
// declaration.
func DecimalLiteral(s string) bool {
	return lexer.IsNumber(s)
}

func tokenize(expr string) []string {
	expr = respaceRe.ReplaceAllString(expr, "$1 $2")
	return exprTokenRe.FindAllString(expr, -1)
}

func classify(tok string) class {
	switch {
	case lexer.IsNumber(tok):
		return cNum
	case lexer.IsString(tok):
		return cStr
	case lexer.IsBoolean(tok):
		return cBool
	}
	switch tok {
	case "add":
		return cPlus
	case "sub":
		return cMinus
	case "mul":
		return cMul
	case "div":
		return cDiv
	case "(":
		return cOpen
	case ")":
		return cClose
	}
	if lexer.IsIdentifier(tok) {
		return cVar
	}
	return cInvalid
}

func isUnary(tokens []string, i int) bool {
	if tokens[i] != "sub" {
		return false
	}
	if i == 0 {
		return true
	}
	switch tokens[i-1] {
	case "add", "sub", "mul", "div", "(":
		return true
	}
	return false
}

// gate converts tokens into acceptor classes, rejecting any token whose type
// cannot appear in an expression of the expected type.
func (v *Validator) gate(tokens []string, expected types.Type) ([]item, bool, error) {
	var (
		items     []item
		narrowing bool
		operands  int
	)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if isUnary(tokens, i) {
			if i+1 >= len(tokens) || !lexer.IsNumber(tokens[i+1]) {
				return nil, false, errorf(tok, "Invalid unary usage near: %s", tok)
			}
			lit := "-" + tokens[i+1]
			if err := checkNumber(lit, expected, operands); err != nil {
				return nil, false, err
			}
			items = append(items, item{cNum, lit})
			operands++
			i++
			continue
		}

		c := classify(tok)
		switch c {
		case cInvalid:
			return nil, false, errorf(tok, "Invalid token: %s", tok)
		case cVar:
			vt, ok := v.vars[tok]
			if !ok {
				return nil, false, errorf(tok, "Variable '%s' not found in current scope", tok)
			}
			if err := checkVariable(tok, vt, expected, operands); err != nil {
				return nil, false, err
			}
			if vt == types.Decimal && expected == types.Integer {
				narrowing = true
			}
			operands++
		case cNum:
			if err := checkNumber(tok, expected, operands); err != nil {
				return nil, false, err
			}
			operands++
		case cStr:
			if expected != types.Text {
				if expected == types.Boolean {
					return nil, false, errorf(tok, "Type mismatch: cannot use text value %s as boolean", tok)
				}
				return nil, false, errorf(tok, "Type mismatch: string literal cannot be used in a '%s' expression", expected)
			}
			operands++
		case cBool:
			if expected != types.Boolean {
				return nil, false, errorf(tok, "Type mismatch: boolean literal cannot be used in a '%s' expression", expected)
			}
			operands++
		}
		items = append(items, item{c, tok})
	}
	return items, narrowing, nil
}

func literalType(lit string) types.Type {
	if lexer.IsDecimalLiteral(lit) {
		return types.Decimal
	}
	return types.Integer
}

func checkNumber(lit string, expected types.Type, operands int) error {
	switch expected {
	case types.Integer:
		if lexer.IsDecimalLiteral(lit) {
			return errorf(lit, "Type mismatch: decimal literal %s cannot be used in an 'integer' expression", lit)
		}
	case types.Boolean:
		return errorf(lit, "Type mismatch: cannot use %s value '%s' as boolean", literalType(lit), lit)
	case types.Text:
		if operands == 0 {
			return errorf(lit, "Type mismatch: numeric literal %s cannot start a 'text' expression", lit)
		}
	}
	return nil
}

func checkVariable(name string, vt, expected types.Type, operands int) error {
	if types.Compatible(vt, expected) {
		return nil
	}
	if expected == types.Text && vt.Numeric() && operands > 0 {
		return nil
	}
	if expected == types.Boolean {
		return errorf(name, "Type mismatch: cannot use %s variable '%s' as boolean", vt, name)
	}
	return errorf(name, "Type mismatch: variable '%s' is of type '%s' but expression expects '%s'", name, vt, expected)
}

// run drives the acceptor over items and checks parenthesis balance.
func run(items []item) error {
	current := sStart
	depth := 0
	for _, it := range items {
		next, ok := transitions[current][it.class]
		if !ok {
			return errorf(it.text, "Invalid token sequence near: '%s'", it.text)
		}
		switch it.class {
		case cOpen:
			depth++
		case cClose:
			if depth == 0 {
				return errorf(it.text, "Unmatched closing parenthesis")
			}
			depth--
		}
		current = next
	}
	if depth > 0 {
		return errorf("(", "Unmatched opening parenthesis")
	}
	if !accepting[current] {
		return errorf("", "Expression does not end properly")
	}
	return nil
}
