// Package generator lowers validated PoliteCode expressions and conditions to
// C# and wraps emitted statements in the program template.
package generator

import (
	"strings"

	"github.com/daveroberts0321/politecode/parser/lexer"
	"github.com/daveroberts0321/politecode/parser/types"
)

const indentUnit = "    "

// Options selects the wrapping template of a generated program.
type Options struct {
	// Namespace wraps the class when set. An empty namespace emits the
	// class on its own.
	Namespace string
	Class     string
}

// DefaultOptions wraps programs in PoliteCodeGenerated.Program.
func DefaultOptions() Options {
	return Options{Namespace: "PoliteCodeGenerated", Class: "Program"}
}

var usings = []string{
	"using System;",
	"using System.Collections.Generic;",
	"using System.Linq;",
	"using System.Text;",
}

// Expression rewrites the operator words of a validated expression to C#
// symbols. String literals are kept verbatim.
func Expression(expr string) string {
	return substitute(expr)
}

// Condition rewrites the relational phrases and operator words of a
// validated condition to C# symbols.
func Condition(cond string) string {
	return substitute(cond)
}

// substitute relies on the lexer matching relational phrases longest-first,
// so "greater or equal to" never lowers as "greater" followed by "equal to".
func substitute(src string) string {
	tokens := lexer.Tokenize(src)
	for i, tok := range tokens {
		if sym, ok := lexer.Arithmetic[tok]; ok {
			tokens[i] = sym
		} else if sym, ok := lexer.Comparisons[tok]; ok {
			tokens[i] = sym
		}
	}
	return strings.Join(tokens, " ")
}

// Type returns the C# spelling of t.
func Type(t types.Type) string {
	return t.Target()
}

// FunctionName maps the lowercase entry point onto C#'s Main.
func FunctionName(name string) string {
	if name == "main" {
		return "Main"
	}
	return name
}

// Program wraps body lines in the using/namespace/class template. Each body
// line gains one indentation level per enclosing construct.
func Program(body []string, opts Options) string {
	class := opts.Class
	if class == "" {
		class = "Program"
	}

	var b strings.Builder
	for _, u := range usings {
		b.WriteString(u)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	prefix := indentUnit
	classIndent := ""
	if opts.Namespace != "" {
		b.WriteString("namespace " + opts.Namespace + "\n{\n")
		prefix += indentUnit
		classIndent = indentUnit
	}

	b.WriteString(classIndent + "public class " + class + "\n")
	b.WriteString(classIndent + "{\n")
	for _, line := range body {
		if strings.TrimSpace(line) == "" {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(prefix + line + "\n")
	}
	b.WriteString(classIndent + "}\n")

	if opts.Namespace != "" {
		b.WriteString("}\n")
	}
	return b.String()
}

// Indent returns the leading whitespace of a body line at depth level.
func Indent(level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat(indentUnit, level)
}
