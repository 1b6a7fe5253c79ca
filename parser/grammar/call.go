package grammar

import (
	"fmt"
	"strings"

	"github.com/daveroberts0321/politecode/generator"
	"github.com/daveroberts0321/politecode/parser/lexer"
	"github.com/daveroberts0321/politecode/parser/scope"
	"github.com/daveroberts0321/politecode/parser/types"
	"github.com/daveroberts0321/politecode/report"
)

type call struct {
	fn   scope.Function
	code string
}

// call parses "f(arg, ...)" where toks starts at the function name. Each
// argument is validated against the declared parameter type.
func (st *State) call(toks []lexer.Token) (call, error) {
	if len(toks) == 0 {
		return call{}, fail(report.Structural, "", "Missing function name after 'please call'")
	}
	name := toks[0].Text
	if toks[0].Kind != lexer.Identifier {
		return call{}, fail(report.Structural, name, "Expected a function name after 'please call', got '%s'", name)
	}
	fn, ok := st.scopes.LookupFunction(name)
	if !ok {
		return call{}, fail(report.Scope, name, "Function '%s' does not exist or was not declared.", name)
	}
	if len(toks) < 2 || toks[1].Kind != lexer.OpenParen {
		return call{}, fail(report.Structural, name, "Missing opening parenthesis after function name '%s'", name)
	}

	closing := -1
	depth := 0
	for i := 1; i < len(toks) && closing < 0; i++ {
		switch toks[i].Kind {
		case lexer.OpenParen:
			depth++
		case lexer.CloseParen:
			depth--
			if depth == 0 {
				closing = i
			}
		}
	}
	if closing < 0 {
		return call{}, fail(report.Structural, "(", "Missing closing parenthesis in function call")
	}
	if closing != len(toks)-1 {
		return call{}, fail(report.Structural, toks[closing+1].Text, "Unexpected '%s' after function call", toks[closing+1].Text)
	}

	args, err := splitArguments(toks[2:closing], name)
	if err != nil {
		return call{}, err
	}
	if len(args) != len(fn.Params) {
		return call{}, fail(report.Semantic, name, "Function '%s' expects %d argument(s) but got %d", name, len(fn.Params), len(args))
	}

	lowered := make([]string, len(args))
	for i, arg := range args {
		prm := fn.Params[i]
		v, err := st.value(lexer.Join(arg), prm.Type, fmt.Sprintf("Invalid argument '%s' for function '%s': ", prm.Name, name))
		if err != nil {
			return call{}, err
		}
		lowered[i] = v
	}

	return call{
		fn:   fn,
		code: fmt.Sprintf("%s(%s)", generator.FunctionName(name), strings.Join(lowered, ", ")),
	}, nil
}

// splitArguments splits the tokens between the call parentheses on
// top-level commas.
func splitArguments(toks []lexer.Token, name string) ([][]lexer.Token, error) {
	if len(toks) == 0 {
		return nil, nil
	}
	var (
		args  [][]lexer.Token
		cur   []lexer.Token
		depth int
	)
	for _, tok := range toks {
		switch tok.Kind {
		case lexer.OpenParen:
			depth++
		case lexer.CloseParen:
			depth--
		case lexer.Comma:
			if depth == 0 {
				if len(cur) == 0 {
					return nil, fail(report.Semantic, ",", "Empty argument in call to '%s'", name)
				}
				args = append(args, cur)
				cur = nil
				continue
			}
		}
		cur = append(cur, tok)
	}
	if len(cur) == 0 {
		return nil, fail(report.Semantic, ",", "Empty argument in call to '%s'", name)
	}
	return append(args, cur), nil
}

// callValue parses a call whose result is stored in variable (or returned
// when variable is empty) with type t.
func (st *State) callValue(toks []lexer.Token, variable string, t types.Type) (string, error) {
	c, err := st.call(toks)
	if err != nil {
		return "", err
	}

	ret := c.fn.Return
	if ret == types.Void {
		if variable == "" {
			return "", fail(report.Semantic, c.fn.Name, "Cannot return the result of void function '%s'", c.fn.Name)
		}
		return "", fail(report.Semantic, c.fn.Name, "Cannot assign result of void function '%s' to variable '%s'", c.fn.Name, variable)
	}
	if !types.Compatible(ret, t) {
		if variable == "" {
			return "", fail(report.Type, c.fn.Name, "Type mismatch: Function '%s' returns '%s' but '%s' is expected", c.fn.Name, ret, t)
		}
		return "", fail(report.Type, c.fn.Name, "Type mismatch: Function '%s' returns '%s' but variable '%s' is of type '%s'", c.fn.Name, ret, variable, t)
	}
	if ret == types.Decimal && t == types.Integer {
		return "(int)" + c.code, nil
	}
	return c.code, nil
}
