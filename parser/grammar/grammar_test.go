package grammar

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daveroberts0321/politecode/generator"
	"github.com/daveroberts0321/politecode/report"
)

func run(t *testing.T, src string) (*Parser, bool) {
	t.Helper()
	p := New(nil, DefaultOptions())
	require.True(t, p.SetInput(strings.Split(src, "\n")))
	return p, p.Process()
}

func byCategory(diags []report.Diagnostic, cat report.Category) []report.Diagnostic {
	var out []report.Diagnostic
	for _, d := range diags {
		if d.Category == cat {
			out = append(out, d)
		}
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	p, ok := run(t, `please define function void main() {
please create integer x equals 5
thank you for printing x
}`)
	require.True(t, ok)
	assert.Empty(t, p.Diagnostics())

	code := p.GeneratedCode()
	assert.Contains(t, code, "int x = 5;")
	assert.Contains(t, code, "Console.WriteLine(x);")
	assert.Contains(t, code, "public static void Main()")
	assert.Contains(t, code, "namespace PoliteCodeGenerated")
}

func TestFullProgram(t *testing.T) {
	p, ok := run(t, `please define function decimal half(integer n) {
    please create decimal result equals n div 2
    thank you for returning result
}
please define function void main() {
    please create integer total equals 0
    thank you for looping from 1 to 3 {
        total equals total add i
    }
    please create integer h equals please call half(total)
    thank you for checking if total greater or equal to 6 {
        thank you for printing "Total: " add total
    }
    please create boolean done equals true
    thank you for looping while done {
        done equals false
    }
}`)
	require.True(t, ok, "%v", p.Diagnostics())
	assert.Empty(t, p.Diagnostics())

	want := []string{
		"public static double half(int n)",
		"{",
		"    double result = n / 2;",
		"    return result;",
		"}",
		"public static void Main()",
		"{",
		"    int total = 0;",
		"    for (int i = 1; i <= 3; i++)",
		"    {",
		"        total = total + i;",
		"    }",
		"    int h = (int)half(total);",
		"    if (total >= 6)",
		"    {",
		`        Console.WriteLine("Total: " + total);`,
		"    }",
		"    bool done = true;",
		"    while (done)",
		"    {",
		"        done = false;",
		"    }",
		"}",
	}
	assert.Equal(t, want, p.Body())
}

func TestMissingEntryPoint(t *testing.T) {
	p, ok := run(t, `please define function integer helper() {
thank you for returning 1
}`)
	assert.False(t, ok)

	entry := byCategory(p.Diagnostics(), report.EntryPoint)
	require.Len(t, entry, 1)
	assert.True(t, entry[0].Terminal)
	assert.Contains(t, entry[0].Message, "void main")
}

func TestMainWithParametersIsRejected(t *testing.T) {
	p, ok := run(t, `please define function void main(integer a) {
}`)
	assert.False(t, ok)
	assert.Len(t, byCategory(p.Diagnostics(), report.EntryPoint), 2)
}

func TestMalformedMainHeaderIsNotAnEntryPoint(t *testing.T) {
	for _, header := range []string{
		"please define function void main(integer) {",
		"please define function void main(foo bar) {",
	} {
		p, ok := run(t, header+`
thank you for printing "x"
}`)
		assert.False(t, ok, header)
		assert.Len(t, byCategory(p.Diagnostics(), report.Structural), 1, header)
		entry := byCategory(p.Diagnostics(), report.EntryPoint)
		require.Len(t, entry, 1, header)
		assert.True(t, entry[0].Terminal)
	}
}

func TestMainIsCaseSensitive(t *testing.T) {
	_, ok := run(t, `please define function void Main() {
}`)
	assert.False(t, ok)
}

func TestUnclosedBlockReportsEarliestLine(t *testing.T) {
	p, ok := run(t, `please define function void main() {
please create integer a equals 1
thank you for checking if a greater then 0 {
thank you for printing a`)
	assert.False(t, ok)

	structural := byCategory(p.Diagnostics(), report.Structural)
	require.Len(t, structural, 1)
	assert.True(t, structural[0].Terminal)
	assert.Equal(t, 1, structural[0].Line)
	assert.Contains(t, structural[0].Message, "Block starting at line 1 is not properly closed")
}

func TestStrayClosingBrace(t *testing.T) {
	p, ok := run(t, `please define function void main() {
}
}`)
	assert.True(t, ok)

	diags := p.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, report.Structural, diags[0].Category)
	assert.Equal(t, 3, diags[0].Line)
	assert.Equal(t, 1, diags[0].Column)
	assert.False(t, diags[0].Terminal)
	assert.Contains(t, diags[0].Message, "Unexpected closing curly brace '}' at line 3")
}

func TestReturnInsideMisspelledIfIsNotBaseLevel(t *testing.T) {
	p, ok := run(t, `please define function integer f() {
please create integer a equals 1
thank you for checking if a $ 1 {
thank you for returning 1
}
}
please define function void main() {
}`)
	assert.True(t, ok)
	require.Len(t, byCategory(p.Diagnostics(), report.Lexical), 1)
	semantic := byCategory(p.Diagnostics(), report.Semantic)
	require.Len(t, semantic, 1)
	assert.Equal(t, 6, semantic[0].Line)
	assert.Contains(t, semantic[0].Message, "Function 'f' must have a return statement")
}

func TestBooleanTypeMismatch(t *testing.T) {
	p, ok := run(t, `please define function void main() {
please create boolean b equals 5
}`)
	assert.True(t, ok)

	diags := p.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, report.Type, diags[0].Category)
	assert.Equal(t, 2, diags[0].Line)
	assert.Contains(t, diags[0].Message, "boolean")
	assert.Contains(t, diags[0].Message, "integer")
	assert.NotContains(t, p.GeneratedCode(), "bool b")
}

func TestReturnPresence(t *testing.T) {
	const onlyInIf = `please define function integer pick(integer n) {
thank you for checking if n greater then 0 {
thank you for returning n
}
}
please define function void main() {
}`
	p, ok := run(t, onlyInIf)
	assert.True(t, ok)
	semantic := byCategory(p.Diagnostics(), report.Semantic)
	require.Len(t, semantic, 1)
	assert.Equal(t, 5, semantic[0].Line)
	assert.Contains(t, semantic[0].Message, "Function 'pick' must have a return statement outside of any control blocks")

	const baseReturn = `please define function integer pick(integer n) {
thank you for checking if n greater then 0 {
thank you for returning n
}
thank you for returning 0
}
please define function void main() {
}`
	p, ok = run(t, baseReturn)
	assert.True(t, ok)
	assert.Empty(t, p.Diagnostics())
}

func TestIdempotentRuns(t *testing.T) {
	src := `please define function void main() {
please create integer a equals 2
please create text s equals "x" add a
please create boolean b equals 5
thank you for printing missing
}`
	first, okFirst := run(t, src)
	second, okSecond := run(t, src)

	assert.Equal(t, okFirst, okSecond)
	assert.Equal(t, first.GeneratedCode(), second.GeneratedCode())
	assert.Equal(t, first.Diagnostics(), second.Diagnostics())

	// A second Process on the same parser starts over.
	again := first.Process()
	assert.Equal(t, okFirst, again)
	assert.Equal(t, second.Diagnostics(), first.Diagnostics())
}

func TestLexicalErrorHasColumn(t *testing.T) {
	p, _ := run(t, `please define function void main() {
please create integer x equals 5 + 3
}`)

	diags := p.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, report.Lexical, diags[0].Category)
	assert.Equal(t, 2, diags[0].Line)
	assert.Equal(t, 34, diags[0].Column)
	assert.NotContains(t, p.GeneratedCode(), "int x")
}

func TestLexicalErrorKeepsBraceAccounting(t *testing.T) {
	p, ok := run(t, `please define function void main() {
thank you for checking if a $ b {
}
}`)
	assert.True(t, ok)
	require.Len(t, p.Diagnostics(), 1)
	assert.Equal(t, report.Lexical, p.Diagnostics()[0].Category)
}

func TestUnknownCommand(t *testing.T) {
	p, _ := run(t, `please define function void main() {
5 equals x
}`)
	diags := p.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, "Unknown command: 5", diags[0].Message)
	assert.Equal(t, 1, diags[0].Column)
}

func TestFunctionEntryClearsScopes(t *testing.T) {
	p, _ := run(t, `please define function void main() {
please create integer a equals 1
}
please define function integer other() {
thank you for returning a
}`)
	scopeErrs := byCategory(p.Diagnostics(), report.Scope)
	require.Len(t, scopeErrs, 1)
	assert.Equal(t, 5, scopeErrs[0].Line)
	assert.Contains(t, scopeErrs[0].Message, "Variable 'a' not found in current scope")
}

func TestRedeclarationIsRejected(t *testing.T) {
	p, _ := run(t, `please define function void main() {
please create integer a equals 1
thank you for checking if a equal to 1 {
please create decimal a equals 2.5
}
}`)
	diags := p.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, report.Scope, diags[0].Category)
	assert.Contains(t, diags[0].Message, "conflicts with an existing variable")
}

func TestNestedCountingLoopConflicts(t *testing.T) {
	p, ok := run(t, `please define function void main() {
thank you for looping from 1 to 2 {
thank you for looping from 1 to 2 {
}
}
thank you for looping from 0 to 1 {
}
}`)
	assert.True(t, ok)

	diags := p.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, 3, diags[0].Line)
	assert.Contains(t, diags[0].Message, "Loop counter 'i'")
}

func TestFunctionCalls(t *testing.T) {
	p, ok := run(t, `please define function integer add_one(integer n) {
thank you for returning n add 1
}
please define function void greet(text who, integer times) {
thank you for printing who add times
}
please define function void main() {
please call greet("Ada", please)
please call greet("Ada", 2)
please call add_one(1, 2)
please create integer r equals please call add_one(2)
please create integer z equals please call greet("x", 1)
please call greet(5, 1)
please call missing()
r equals please call add_one(( r add 1 ))
}`)
	assert.True(t, ok)

	body := p.Body()
	assert.Contains(t, body, "public static void greet(string who, int times)")
	assert.Contains(t, body, `    greet("Ada", 2);`)
	assert.Contains(t, body, "    int r = add_one(2);")
	assert.Contains(t, body, "    r = add_one(( r + 1 ));")

	var msgs []string
	for _, d := range p.Diagnostics() {
		msgs = append(msgs, d.Message)
	}
	joined := strings.Join(msgs, "\n")
	assert.Contains(t, joined, "Function 'add_one' expects 1 argument(s) but got 2")
	assert.Contains(t, joined, "Cannot assign result of void function 'greet' to variable 'z'")
	assert.Contains(t, joined, "Invalid argument 'who' for function 'greet': Type mismatch: numeric literal 5 cannot start a 'text' expression")
	assert.Contains(t, joined, "Function 'missing' does not exist or was not declared.")
}

func TestNarrowingAssignmentIsCast(t *testing.T) {
	p, ok := run(t, `please define function void main() {
please create decimal d equals 2.75
please create integer n equals d mul 2
}`)
	require.True(t, ok)
	assert.Contains(t, p.Body(), "    int n = (int)(d * 2);")
}

func TestReturnRules(t *testing.T) {
	p, _ := run(t, `thank you for returning 1
please define function void main() {
thank you for returning 1
thank you for returning
}
please define function text name() {
thank you for returning
thank you for returning 5
thank you for returning "ok"
}`)
	semantic := byCategory(p.Diagnostics(), report.Semantic)
	require.Len(t, semantic, 3)
	assert.Equal(t, "'thank you for returning' can only be used inside a function", semantic[0].Message)
	assert.Equal(t, "Functions of type void cannot return a value", semantic[1].Message)
	assert.Equal(t, "Function 'name' must return a value of type 'text'", semantic[2].Message)

	assert.Contains(t, p.Body(), "    return;")
	assert.Contains(t, p.Body(), `    return "ok";`)
	assert.Len(t, byCategory(p.Diagnostics(), report.Type), 1)
}

func TestPrintStatements(t *testing.T) {
	p, _ := run(t, `please define function void main() {
please create text who equals "world"
thank you for printing "hello " add who add 1
thank you for printing ghost
thank you for printing who who
thank you for printing who add
}`)
	assert.Contains(t, p.Body(), `    Console.WriteLine("hello " + who + 1);`)

	diags := p.Diagnostics()
	require.Len(t, diags, 3)
	assert.Equal(t, report.Scope, diags[0].Category)
	assert.Equal(t, "Expected 'add' between printed values, got 'who'", diags[1].Message)
	assert.Equal(t, "Print statement cannot end with 'add'", diags[2].Message)
}

func TestControlFlowErrors(t *testing.T) {
	p, ok := run(t, `please define function void main() {
please create integer a equals 1
thank you for checking if a greater then "x" {
}
thank you for looping while a {
}
thank you for looping a {
}
thank you for checking if a greater then 1
}`)
	assert.True(t, ok)

	diags := p.Diagnostics()
	require.Len(t, diags, 4)
	assert.Contains(t, diags[0].Message, "Invalid condition syntax in if-statement")
	assert.Contains(t, diags[1].Message, "Invalid condition syntax in while-loop")
	assert.Contains(t, diags[2].Message, "Not clear which loop type to use")
	assert.Contains(t, diags[3].Message, "Missing opening brace '{' in if-statement")
}

func TestTranslate(t *testing.T) {
	sink := &report.Collector{}
	opts := Options{Target: generator.Options{Class: "Program"}}
	res := Translate("please define function void main() {\n\n  thank you for printing \"hi\"\n}\n", opts, sink)

	require.True(t, res.OK)
	assert.Empty(t, res.Diagnostics)
	assert.NotContains(t, res.Code, "namespace")
	assert.Contains(t, res.Code, "public class Program")
	assert.Contains(t, res.Code, `        Console.WriteLine("hi");`)
	assert.Contains(t, sink.Infos(), "Processed line 1: please define function void main() {")
	assert.Contains(t, sink.Infos(), `Processed line 2: thank you for printing "hi"`)
}

func TestSetInput(t *testing.T) {
	p := New(nil, DefaultOptions())
	assert.False(t, p.SetInput([]string{"", "   ", "\t"}))
	assert.True(t, p.SetInput([]string{"  a  ", "", "b"}))
	assert.Equal(t, []string{"a", "b"}, p.Lines())

	p.Reset()
	assert.Empty(t, p.Lines())
}
