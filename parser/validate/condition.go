package validate

import (
	"strings"

	"github.com/daveroberts0321/politecode/parser/lexer"
	"github.com/daveroberts0321/politecode/parser/types"
)

// Condition validates cond, taking its type from the first operand.
func (v *Validator) Condition(cond string) error {
	tokens := lexer.Tokenize(cond)
	if len(tokens) == 0 {
		return errorf("", "Empty condition")
	}

	first := tokens[0]
	var t types.Type
	switch {
	case lexer.IsBoolean(first):
		t = types.Boolean
	case lexer.IsNumber(first):
		t = literalType(first)
	case lexer.IsString(first):
		t = types.Text
	case lexer.IsIdentifier(first) && lexer.Classify(first) == lexer.Identifier:
		vt, ok := v.vars[first]
		if !ok {
			return errorf(first, "Unknown or undeclared variable: '%s'", first)
		}
		t = vt
	default:
		return errorf(first, "Expected value or variable, got '%s'", first)
	}
	return v.check(tokens, t)
}

// ConditionAs validates cond given the type of its first operand.
func (v *Validator) ConditionAs(cond string, t types.Type) error {
	tokens := lexer.Tokenize(cond)
	if len(tokens) == 0 {
		return errorf("", "Empty condition")
	}
	return v.check(tokens, t)
}

func (v *Validator) check(tokens []string, t types.Type) error {
	switch t {
	case types.Boolean:
		return v.booleanCondition(tokens)
	case types.Integer, types.Decimal:
		return v.numericCondition(tokens)
	case types.Text:
		return v.textCondition(tokens)
	}
	return errorf("", "Unsupported variable type '%s'", t)
}

func isRelational(tok string) bool {
	_, ok := lexer.Comparisons[tok]
	return ok
}

func isEquality(tok string) bool {
	return tok == "equal to" || tok == "different from"
}

// splitRelational splits tokens around their single relational operator.
func splitRelational(tokens []string) (left []string, op string, right []string, err error) {
	idx := -1
	count := 0
	for i, tok := range tokens {
		if isRelational(tok) {
			if idx < 0 {
				idx = i
			}
			count++
		}
	}
	if idx < 0 {
		return nil, "", nil, errorf("", "Missing or invalid logical operator")
	}
	if count > 1 {
		return nil, "", nil, errorf(tokens[idx], "Condition must contain exactly one relational operator, found %d", count)
	}
	return tokens[:idx], tokens[idx], tokens[idx+1:], nil
}

func (v *Validator) booleanOperand(tok string) error {
	if lexer.IsBoolean(tok) {
		return nil
	}
	if lexer.IsIdentifier(tok) {
		vt, ok := v.vars[tok]
		if !ok {
			return errorf(tok, "Variable '%s' not found in current scope", tok)
		}
		if vt != types.Boolean {
			return errorf(tok, "Variable '%s' is of type '%s', expected 'boolean'", tok, vt)
		}
		return nil
	}
	return errorf(tok, "Expected boolean variable or literal, got '%s'", tok)
}

func (v *Validator) booleanCondition(tokens []string) error {
	switch len(tokens) {
	case 1:
		return v.booleanOperand(tokens[0])
	case 3:
		if err := v.booleanOperand(tokens[0]); err != nil {
			return err
		}
		if !isEquality(tokens[1]) {
			return errorf(tokens[1], "Invalid operator for boolean: '%s'", tokens[1])
		}
		return v.booleanOperand(tokens[2])
	}
	return errorf("", "Invalid boolean condition syntax: expected a boolean operand, or 'operand equal to|different from operand'")
}

func (v *Validator) numericCondition(tokens []string) error {
	left, _, right, err := splitRelational(tokens)
	if err != nil {
		return err
	}
	if err := v.mathSide(left, "left"); err != nil {
		return err
	}
	return v.mathSide(right, "right")
}

// mathSide checks an alternating operand/operator sequence of numeric
// literals, numeric variables and arithmetic words.
func (v *Validator) mathSide(tokens []string, side string) error {
	if len(tokens) == 0 {
		return errorf("", "Missing %s operand in condition", side)
	}
	expectValue := true
	for _, tok := range tokens {
		_, isOp := lexer.Arithmetic[tok]
		if expectValue {
			switch {
			case isOp:
				return errorf(tok, "Expected value or variable, got operator '%s'", tok)
			case lexer.IsNumber(tok):
			case lexer.IsIdentifier(tok):
				vt, ok := v.vars[tok]
				if !ok {
					return errorf(tok, "Variable '%s' not found in current scope", tok)
				}
				if !vt.Numeric() {
					return errorf(tok, "Variable '%s' is of type '%s', expected numeric type (integer or decimal)", tok, vt)
				}
			default:
				return errorf(tok, "Expected value or variable, got '%s'", tok)
			}
		} else if !isOp {
			return errorf(tok, "Expected operator, got '%s'", tok)
		}
		expectValue = !expectValue
	}
	if expectValue {
		return errorf(tokens[len(tokens)-1], "Expression ends with operator '%s'", tokens[len(tokens)-1])
	}
	return nil
}

func (v *Validator) textCondition(tokens []string) error {
	left, op, right, err := splitRelational(tokens)
	if err != nil {
		return err
	}
	if !isEquality(op) {
		return errorf(op, "Only 'equal to' and 'different from' are allowed for text")
	}

	if len(left) != 1 || !lexer.IsIdentifier(left[0]) {
		return errorf(strings.Join(left, " "), "Invalid left side text operand: '%s'", strings.Join(left, " "))
	}
	lt, ok := v.vars[left[0]]
	if !ok {
		return errorf(left[0], "Variable '%s' not found in current scope", left[0])
	}
	if lt != types.Text {
		return errorf(left[0], "Variable '%s' is of type '%s', expected 'text'", left[0], lt)
	}

	if len(right) != 1 {
		return errorf(strings.Join(right, " "), "Invalid right side text operand: '%s'", strings.Join(right, " "))
	}
	r := right[0]
	switch {
	case lexer.IsString(r):
		return nil
	case lexer.IsIdentifier(r):
		rt, ok := v.vars[r]
		if !ok {
			return errorf(r, "Variable '%s' not found in current scope", r)
		}
		if rt != types.Text {
			return errorf(r, "Variable '%s' is of type '%s', expected 'text'", r, rt)
		}
		return nil
	}
	return errorf(r, "Expected string literal or text variable after operator, got '%s'", r)
}
