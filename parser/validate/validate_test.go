package validate

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daveroberts0321/politecode/parser/types"
)

func newTestValidator() *Validator {
	return New(map[string]types.Type{
		"a":    types.Integer,
		"b":    types.Integer,
		"d":    types.Decimal,
		"flag": types.Boolean,
		"ok":   types.Boolean,
		"name": types.Text,
		"msg":  types.Text,
	})
}

func TestIntegerExpressions(t *testing.T) {
	v := newTestValidator()
	valid := []string{
		"5",
		"a add b",
		"a mul ( b sub 2 )",
		"sub 5 add a",
		"( ( a ) )",
		"a add5",
		"add 3",
	}
	for _, expr := range valid {
		_, err := v.Expression(expr, types.Integer)
		assert.NoError(t, err, expr)
	}
}

func TestIntegerExpressionErrors(t *testing.T) {
	v := newTestValidator()
	cases := map[string]string{
		"a add":         "Expression does not end properly",
		"( a add b":     "Unmatched opening parenthesis",
		"a add b )":     "Unmatched closing parenthesis",
		"a b":           "Invalid token sequence near: 'b'",
		"sub a":         "Invalid unary usage near: sub",
		"missing add 1": "Variable 'missing' not found in current scope",
		`"x"`:           "Type mismatch: string literal cannot be used in a 'integer' expression",
		"true":          "Type mismatch: boolean literal cannot be used in a 'integer' expression",
		"2.5":           "Type mismatch: decimal literal 2.5 cannot be used in an 'integer' expression",
		"name":          "Type mismatch: variable 'name' is of type 'text' but expression expects 'integer'",
		"a $ b":         "Invalid token: $",
	}
	for expr, msg := range cases {
		_, err := v.Expression(expr, types.Integer)
		require.Error(t, err, expr)
		assert.Equal(t, msg, err.Error(), expr)
	}
}

func TestUndeclaredIdentifierIsNamed(t *testing.T) {
	v := newTestValidator()
	_, err := v.Expression("a add ghost", types.Integer)
	require.Error(t, err)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "ghost", verr.Token)
}

func TestDecimalAcceptsIntegerAndNarrowing(t *testing.T) {
	v := newTestValidator()

	expr, err := v.Expression("d mul 2.5 add a", types.Decimal)
	require.NoError(t, err)
	assert.False(t, expr.Narrowing)

	expr, err = v.Expression("d add 1", types.Integer)
	require.NoError(t, err)
	assert.True(t, expr.Narrowing)
	assert.Equal(t, "d add 1", expr.Text)
}

func TestRespacing(t *testing.T) {
	v := newTestValidator()
	expr, err := v.Expression("a add5 mul2", types.Integer)
	require.NoError(t, err)
	assert.Equal(t, "a add 5 mul 2", expr.Text)
}

func TestBooleanExpressions(t *testing.T) {
	v := newTestValidator()
	for _, expr := range []string{"true", "false", "flag"} {
		_, err := v.Expression(expr, types.Boolean)
		assert.NoError(t, err, expr)
	}

	_, err := v.Expression("5", types.Boolean)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "integer")
	assert.Contains(t, err.Error(), "boolean")

	_, err = v.Expression("a", types.Boolean)
	require.Error(t, err)
	assert.Equal(t, "Type mismatch: cannot use integer variable 'a' as boolean", err.Error())

	_, err = v.Expression("flag add ok", types.Boolean)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot accept expressions")

	_, err = v.Expression("nope", types.Boolean)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'nope'")
}

func TestTextExpressions(t *testing.T) {
	v := newTestValidator()
	valid := []string{
		`"hello"`,
		"name",
		`"Hello, " add name`,
		`name add " is " add a`,
		`"total: " add 5`,
		`"value " add d`,
	}
	for _, expr := range valid {
		_, err := v.Expression(expr, types.Text)
		assert.NoError(t, err, expr)
	}

	invalid := map[string]string{
		"a":                 "Type mismatch: variable 'a' is of type 'integer' but expression expects 'text'",
		"5 add name":        "Type mismatch: numeric literal 5 cannot start a 'text' expression",
		`"a" sub "b"`:       "Invalid token sequence near: 'sub'",
		`name add flag`:     "Type mismatch: variable 'flag' is of type 'boolean' but expression expects 'text'",
		`"x" add true`:      "Type mismatch: boolean literal cannot be used in a 'text' expression",
		`name mul 2`:        "Only 'add' can join text values, got 'mul'",
		`"a" add`:           "Expression does not end properly",
		`"unterminated add`: "Invalid token: \"",
	}
	for expr, msg := range invalid {
		_, err := v.Expression(expr, types.Text)
		require.Error(t, err, expr)
		assert.Equal(t, msg, err.Error(), expr)
	}
}

func TestUnknownExpectedType(t *testing.T) {
	v := newTestValidator()
	_, err := v.Expression("1", types.Void)
	require.Error(t, err)

	_, err = v.Expression("   ", types.Integer)
	require.Error(t, err)
}

func TestLiteralRegexProperty(t *testing.T) {
	re := regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	values := []string{"0", "-7", "42", "3.14", "-0.5", "1.", ".5", "1e3", "--1", "abc"}
	for _, val := range values {
		assert.Equal(t, re.MatchString(val), DecimalLiteral(val), val)
		if IntegerLiteral(val) {
			assert.True(t, DecimalLiteral(val), val)
			assert.NotContains(t, val, ".")
		}
	}
	assert.True(t, IntegerLiteral("12"))
	assert.False(t, IntegerLiteral("1.5"))
	assert.True(t, DecimalLiteral("12"))
}

func TestBooleanConditions(t *testing.T) {
	v := newTestValidator()
	for _, cond := range []string{"flag", "true", "flag equal to ok", "flag different from false"} {
		assert.NoError(t, v.Condition(cond), cond)
	}

	err := v.Condition("flag greater then ok")
	require.Error(t, err)
	assert.Equal(t, "Invalid operator for boolean: 'greater then'", err.Error())

	err = v.Condition("flag equal to a")
	require.Error(t, err)
	assert.Equal(t, "Variable 'a' is of type 'integer', expected 'boolean'", err.Error())

	err = v.Condition("flag equal")
	require.Error(t, err)
}

func TestNumericConditions(t *testing.T) {
	v := newTestValidator()
	valid := []string{
		"a greater then 5",
		"a add 1 less or equal to b mul 2",
		"d different from 0.5",
		"5 equal to a",
		"a greater or equal to -3",
	}
	for _, cond := range valid {
		assert.NoError(t, v.Condition(cond), cond)
	}

	invalid := map[string]string{
		"a 5":                         "Missing or invalid logical operator",
		"a greater then":              "Missing right operand in condition",
		"a add greater then 5":        "Expression ends with operator 'add'",
		"a greater then add 5":        "Expected value or variable, got operator 'add'",
		"a greater then name":         "Variable 'name' is of type 'text', expected numeric type (integer or decimal)",
		"a less then b equal to 3":    "Condition must contain exactly one relational operator, found 2",
		"a greater then 5 5":          "Expected operator, got '5'",
		"ghost greater then 1":        "Unknown or undeclared variable: 'ghost'",
		"a greater then \"five\"":     "Expected value or variable, got '\"five\"'",
	}
	for cond, msg := range invalid {
		err := v.Condition(cond)
		require.Error(t, err, cond)
		assert.Equal(t, msg, err.Error(), cond)
	}
}

func TestTextConditions(t *testing.T) {
	v := newTestValidator()
	assert.NoError(t, v.Condition(`name equal to "Bob"`))
	assert.NoError(t, v.Condition(`name different from msg`))

	err := v.Condition(`name greater then "Bob"`)
	require.Error(t, err)
	assert.Equal(t, "Only 'equal to' and 'different from' are allowed for text", err.Error())

	err = v.Condition(`name equal to a`)
	require.Error(t, err)
	assert.Equal(t, "Variable 'a' is of type 'integer', expected 'text'", err.Error())

	err = v.Condition(`"Bob" equal to name`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid left side text operand")

	err = v.Condition(`name equal to "a" "b"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid right side text operand")
}

func TestConditionAs(t *testing.T) {
	v := newTestValidator()
	assert.NoError(t, v.ConditionAs("a greater then 1", types.Integer))
	assert.Error(t, v.ConditionAs("a", types.Void))
	assert.Error(t, v.ConditionAs("", types.Integer))
}
