package grammar

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/daveroberts0321/politecode/generator"
	"github.com/daveroberts0321/politecode/parser/lexer"
	"github.com/daveroberts0321/politecode/parser/scope"
	"github.com/daveroberts0321/politecode/parser/types"
	"github.com/daveroberts0321/politecode/parser/validate"
	"github.com/daveroberts0321/politecode/report"
)

// handler translates one classified line into zero or more C# lines.
type handler func(st *State, toks []lexer.Token) ([]string, error)

func dispatch(kind lexer.Kind) handler {
	switch kind {
	case lexer.Create:
		return declaration
	case lexer.Identifier:
		return assignment
	case lexer.Print:
		return printStatement
	case lexer.Loop:
		return loop
	case lexer.If:
		return ifStatement
	case lexer.DefineFunction:
		return functionDefinition
	case lexer.Return:
		return returnStatement
	case lexer.CallFunction:
		return callStatement
	}
	return nil
}

// stmtError is a statement-level failure. The line it occurred on is
// attached by the parser.
type stmtError struct {
	category report.Category
	token    string
	msg      string
}

func (e *stmtError) Error() string { return e.msg }

func fail(cat report.Category, token, format string, args ...interface{}) error {
	return &stmtError{category: cat, token: token, msg: fmt.Sprintf(format, args...)}
}

// invalid wraps a validation error, prefixing its message.
func invalid(prefix string, err error) error {
	var verr *validate.Error
	if !errors.As(err, &verr) {
		return fail(report.Type, "", "%s%s", prefix, err)
	}
	cat := report.Structural
	switch {
	case strings.HasPrefix(verr.Message, "Type mismatch"), strings.Contains(verr.Message, "is of type"):
		cat = report.Type
	case strings.Contains(verr.Message, "not found"), strings.Contains(verr.Message, "undeclared"):
		cat = report.Scope
	}
	return &stmtError{category: cat, token: verr.Token, msg: prefix + verr.Message}
}

func (st *State) validator() *validate.Validator {
	return validate.New(st.scopes.Visible())
}

// value validates expr against t and lowers it to C#, casting when a
// decimal operand narrows to an integer target.
func (st *State) value(expr string, t types.Type, prefix string) (string, error) {
	checked, err := st.validator().Expression(expr, t)
	if err != nil {
		return "", invalid(prefix, err)
	}
	out := generator.Expression(checked.Text)
	if checked.Narrowing {
		out = "(int)(" + out + ")"
	}
	return out, nil
}

// please create <type> <name> [equals <expr> | equals please call f(args)]
func declaration(st *State, toks []lexer.Token) ([]string, error) {
	if len(toks) < 3 {
		return nil, fail(report.Structural, "", "Incomplete variable declaration")
	}
	if toks[1].Kind != lexer.TypeName {
		return nil, fail(report.Structural, toks[1].Text, "Missing variable type in declaration")
	}
	if toks[2].Kind != lexer.Identifier {
		return nil, fail(report.Structural, toks[2].Text, "Missing variable name in declaration")
	}

	t, _ := types.Parse(toks[1].Text)
	name := toks[2].Text
	if t == types.Void {
		return nil, fail(report.Type, toks[1].Text, "Variable '%s' cannot be declared as void", name)
	}
	if st.scopes.Exists(name) {
		return nil, fail(report.Scope, name, "Variable '%s' cannot be created because it conflicts with an existing variable.", name)
	}
	if st.scopes.FunctionExists(name) {
		return nil, fail(report.Scope, name, "Variable '%s' cannot be created because it conflicts with an existing function.", name)
	}

	code := fmt.Sprintf("%s %s", generator.Type(t), name)
	if len(toks) > 3 {
		if toks[3].Kind != lexer.Equals {
			return nil, fail(report.Structural, toks[3].Text, "Expected 'equals' after variable name '%s'", name)
		}
		if len(toks) < 5 {
			return nil, fail(report.Structural, "", "Missing value after 'equals' in variable declaration")
		}

		var (
			init string
			err  error
		)
		if toks[4].Kind == lexer.CallFunction {
			init, err = st.callValue(toks[5:], name, t)
		} else {
			init, err = st.value(lexer.Join(toks[4:]), t, "Invalid initialization expression: ")
		}
		if err != nil {
			return nil, err
		}
		code += " = " + init
	}

	st.scopes.Declare(name, t)
	return []string{code + ";"}, nil
}

// <name> equals <expr> | <name> equals please call f(args)
func assignment(st *State, toks []lexer.Token) ([]string, error) {
	if len(toks) < 3 {
		return nil, fail(report.Structural, "", "Invalid assignment. Expected format: [variable] equals [expression]")
	}
	name := toks[0].Text
	if st.scopes.FunctionExists(name) {
		return nil, fail(report.Scope, name, "Cannot assign value to '%s' because it is a function name.", name)
	}
	t, ok := st.scopes.Lookup(name)
	if !ok {
		return nil, fail(report.Scope, name, "Variable '%s' does not exist", name)
	}
	if toks[1].Kind != lexer.Equals {
		return nil, fail(report.Structural, toks[1].Text, "Missing 'equals' keyword after variable name")
	}

	var (
		rhs string
		err error
	)
	if toks[2].Kind == lexer.CallFunction {
		rhs, err = st.callValue(toks[3:], name, t)
	} else {
		rhs, err = st.value(lexer.Join(toks[2:]), t, "Invalid expression: ")
	}
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("%s = %s;", name, rhs)}, nil
}

// thank you for printing <operand> [add <operand>]...
func printStatement(st *State, toks []lexer.Token) ([]string, error) {
	if len(toks) < 2 {
		return nil, fail(report.Structural, "", "Missing text to print")
	}

	var parts []string
	expectValue := true
	for _, tok := range toks[1:] {
		if !expectValue {
			if tok.Text != "add" {
				return nil, fail(report.Structural, tok.Text, "Expected 'add' between printed values, got '%s'", tok.Text)
			}
			parts = append(parts, "+")
			expectValue = true
			continue
		}

		switch tok.Kind {
		case lexer.String, lexer.Number, lexer.Boolean:
		case lexer.Identifier:
			if _, isOp := lexer.Arithmetic[tok.Text]; isOp {
				return nil, fail(report.Structural, tok.Text, "Invalid print value. Expected string or variable name, got '%s'.", tok.Text)
			}
			if !st.scopes.Exists(tok.Text) {
				return nil, fail(report.Scope, tok.Text, "Variable '%s' does not exist", tok.Text)
			}
		default:
			return nil, fail(report.Structural, tok.Text, "Invalid print value. Expected string or variable name, got '%s'.", tok.Text)
		}
		parts = append(parts, tok.Text)
		expectValue = false
	}
	if expectValue {
		return nil, fail(report.Structural, "add", "Print statement cannot end with 'add'")
	}
	return []string{fmt.Sprintf("Console.WriteLine(%s);", strings.Join(parts, " "))}, nil
}

func loop(st *State, toks []lexer.Token) ([]string, error) {
	if len(toks) < 2 {
		return nil, fail(report.Structural, "", "Incomplete loop statement")
	}
	switch {
	case lexer.Index(toks, lexer.From) >= 0:
		return forLoop(st, toks)
	case lexer.Index(toks, lexer.While) >= 0:
		return whileLoop(st, toks)
	}
	return nil, fail(report.Structural, toks[1].Text, "Not clear which loop type to use. Use 'from' for for-loops or 'while' for while-loops.")
}

// header returns the tokens between position start and the closing '{',
// which must end the line.
func header(toks []lexer.Token, start int, what string) ([]lexer.Token, error) {
	brace := lexer.Index(toks, lexer.OpenBrace)
	if brace < 0 {
		return nil, fail(report.Structural, "", "Missing opening brace '{' in %s. Please add it at the end.", what)
	}
	if brace != len(toks)-1 {
		return nil, fail(report.Structural, toks[brace+1].Text, "Unexpected '%s' after '{' in %s", toks[brace+1].Text, what)
	}
	if start > brace {
		return nil, nil
	}
	return toks[start:brace], nil
}

// thank you for looping from <int> to <int> {
func forLoop(st *State, toks []lexer.Token) ([]string, error) {
	from := lexer.Index(toks, lexer.From)
	to := lexer.Index(toks, lexer.To)
	if from != 1 || to < 0 || to < from {
		return nil, fail(report.Structural, "", "Invalid for-loop format. Expected 'thank you for looping from [start] to [end] {'")
	}
	bounds, err := header(toks, from+1, "for-loop")
	if err != nil {
		return nil, err
	}
	split := to - from - 1
	start, end := bounds[:split], bounds[split+1:]
	if len(start) == 0 || len(end) == 0 {
		return nil, fail(report.Structural, "", "Missing start or end value in for-loop")
	}

	const counter = "i"
	if st.scopes.Exists(counter) || st.scopes.FunctionExists(counter) {
		return nil, fail(report.Scope, "from", "Loop counter '%s' conflicts with an existing name.", counter)
	}

	lo, err := st.value(lexer.Join(start), types.Integer, "Invalid for-loop start: ")
	if err != nil {
		return nil, err
	}
	hi, err := st.value(lexer.Join(end), types.Integer, "Invalid for-loop end: ")
	if err != nil {
		return nil, err
	}

	st.blockVars = append(st.blockVars, scope.Param{Name: counter, Type: types.Integer})
	return []string{
		fmt.Sprintf("for (int %s = %s; %s <= %s; %s++)", counter, lo, counter, hi, counter),
		"{",
	}, nil
}

func (st *State) condition(toks []lexer.Token, what string) (string, error) {
	if len(toks) == 0 {
		return "", fail(report.Structural, "", "Missing condition in %s", what)
	}
	cond := lexer.Join(toks)
	if err := st.validator().Condition(cond); err != nil {
		return "", invalid(fmt.Sprintf("Invalid condition syntax in %s: ", what), err)
	}
	return generator.Condition(cond), nil
}

// thank you for looping while <condition> {
func whileLoop(st *State, toks []lexer.Token) ([]string, error) {
	w := lexer.Index(toks, lexer.While)
	if w != 1 {
		return nil, fail(report.Structural, "", "Invalid while-loop format. Expected 'thank you for looping while [condition] {'")
	}
	condToks, err := header(toks, w+1, "while-loop")
	if err != nil {
		return nil, err
	}
	cond, err := st.condition(condToks, "while-loop")
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("while (%s)", cond), "{"}, nil
}

// thank you for checking if <condition> {
func ifStatement(st *State, toks []lexer.Token) ([]string, error) {
	condToks, err := header(toks, 1, "if-statement")
	if err != nil {
		return nil, err
	}
	cond, err := st.condition(condToks, "if-statement")
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("if (%s)", cond), "{"}, nil
}

// please define function <type> <name>(<type> <name>[,] ...) {
func functionDefinition(st *State, toks []lexer.Token) ([]string, error) {
	if len(toks) < 6 {
		return nil, fail(report.Structural, "", "Function definition is too short. Must include return type, name, parameters, and braces.")
	}
	if toks[1].Kind != lexer.TypeName {
		return nil, fail(report.Structural, toks[1].Text, "Expected a return type after 'please define function', got '%s'", toks[1].Text)
	}
	if toks[2].Kind != lexer.Identifier {
		return nil, fail(report.Structural, toks[2].Text, "Expected a function name, got '%s'", toks[2].Text)
	}
	if toks[3].Kind != lexer.OpenParen {
		return nil, fail(report.Structural, toks[3].Text, "Expected '(' after the function name")
	}
	if toks[len(toks)-2].Kind != lexer.CloseParen {
		return nil, fail(report.Structural, toks[len(toks)-2].Text, "Expected ')' to be the second to last token")
	}
	if toks[len(toks)-1].Kind != lexer.OpenBrace {
		return nil, fail(report.Structural, toks[len(toks)-1].Text, "Expected '{' to be the last token of the function header")
	}

	ret, _ := types.Parse(toks[1].Text)
	name := toks[2].Text

	st.function = name
	st.baseReturn[name] = ret == types.Void

	if st.scopes.FunctionExists(name) {
		return nil, fail(report.Scope, name, "Function '%s' is already defined.", name)
	}

	st.scopes.EnterFunction()
	params, err := parameters(st, toks[4:len(toks)-2])
	st.scopes.DeclareFunction(scope.Function{Name: name, Return: ret, Params: params})
	if err != nil {
		st.malformed[name] = true
		return nil, err
	}
	if name == "main" && len(params) > 0 {
		return nil, fail(report.EntryPoint, name, "The main function cannot take parameters. Use 'please define function void main() {'.")
	}

	decl := make([]string, len(params))
	for i, prm := range params {
		decl[i] = generator.Type(prm.Type) + " " + prm.Name
	}
	return []string{
		fmt.Sprintf("public static %s %s(%s)", generator.Type(ret), generator.FunctionName(name), strings.Join(decl, ", ")),
		"{",
	}, nil
}

// parameters declares each typed parameter into the function frame. Commas
// between pairs are optional.
func parameters(st *State, toks []lexer.Token) ([]scope.Param, error) {
	var params []scope.Param
	for i := 0; i < len(toks); {
		if len(params) > 0 && toks[i].Kind == lexer.Comma {
			i++
			if i == len(toks) {
				return params, fail(report.Structural, ",", "Trailing ',' in parameter list")
			}
		}
		if i+1 >= len(toks) {
			return params, fail(report.Structural, toks[i].Text, "Incomplete parameter pair in function definition")
		}
		if toks[i].Kind != lexer.TypeName || toks[i+1].Kind != lexer.Identifier {
			return params, fail(report.Structural, toks[i].Text, "Invalid parameter near '%s': expected [type name]", toks[i].Text)
		}

		t, _ := types.Parse(toks[i].Text)
		name := toks[i+1].Text
		if t == types.Void {
			return params, fail(report.Type, toks[i].Text, "Parameter '%s' cannot be of type void", name)
		}
		if st.scopes.FunctionExists(name) {
			return params, fail(report.Scope, name, "Parameter name '%s' conflicts with an existing function name.", name)
		}
		if st.scopes.Exists(name) {
			return params, fail(report.Scope, name, "Parameter name '%s' conflicts with an existing variable.", name)
		}

		st.scopes.Declare(name, t)
		params = append(params, scope.Param{Name: name, Type: t})
		i += 2
	}
	return params, nil
}

// thank you for returning [<expr> | please call f(args)]
func returnStatement(st *State, toks []lexer.Token) ([]string, error) {
	if st.function == "" {
		return nil, fail(report.Semantic, toks[0].Text, "'thank you for returning' can only be used inside a function")
	}
	fn, ok := st.scopes.LookupFunction(st.function)
	if !ok {
		return nil, fail(report.Semantic, "", "Cannot determine the return type of function '%s'", st.function)
	}

	if fn.Return == types.Void {
		if len(toks) > 1 {
			return nil, fail(report.Semantic, toks[1].Text, "Functions of type void cannot return a value")
		}
		return []string{"return;"}, nil
	}
	if len(toks) < 2 {
		return nil, fail(report.Semantic, toks[0].Text, "Function '%s' must return a value of type '%s'", fn.Name, fn.Return)
	}

	var (
		value string
		err   error
	)
	if toks[1].Kind == lexer.CallFunction {
		value, err = st.callValue(toks[2:], "", fn.Return)
	} else {
		value, err = st.value(lexer.Join(toks[1:]), fn.Return, "Invalid return expression: ")
	}
	if err != nil {
		return nil, err
	}

	if !st.insideControl {
		st.baseReturn[st.function] = true
	}
	return []string{fmt.Sprintf("return %s;", value)}, nil
}

// please call f(args)
func callStatement(st *State, toks []lexer.Token) ([]string, error) {
	c, err := st.call(toks[1:])
	if err != nil {
		return nil, err
	}
	return []string{c.code + ";"}, nil
}
