// Package grammar implements the PoliteCode statement parser. It walks the
// source line by line, dispatches each line to a statement handler by its
// leading token kind, tracks block nesting and assembles the generated C#
// program.
package grammar

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/daveroberts0321/politecode/generator"
	"github.com/daveroberts0321/politecode/parser/lexer"
	"github.com/daveroberts0321/politecode/parser/scope"
	"github.com/daveroberts0321/politecode/parser/types"
	"github.com/daveroberts0321/politecode/report"
)

// Options configures a translation run.
type Options struct {
	Target generator.Options
}

// DefaultOptions wraps output in the PoliteCodeGenerated namespace.
func DefaultOptions() Options {
	return Options{Target: generator.DefaultOptions()}
}

// State is the per-run parser context threaded through every statement
// handler.
type State struct {
	lines []string
	line  int

	indent int
	// blocks holds the 1-based source line of every open '{'.
	blocks []int

	function      string
	baseReturn    map[string]bool
	insideControl bool
	// malformed holds functions whose header was rejected.
	malformed map[string]bool

	// blockVars are declared into the frame of the block the current line
	// opens.
	blockVars []scope.Param

	out    []string
	scopes *scope.Manager
}

func newState(lines []string) *State {
	return &State{
		lines:      lines,
		baseReturn: make(map[string]bool),
		malformed:  make(map[string]bool),
		scopes:     scope.NewManager(),
	}
}

// Text returns the source line being processed.
func (st *State) Text() string {
	if st.line < len(st.lines) {
		return st.lines[st.line]
	}
	return ""
}

// Line returns the 1-based number of the line being processed.
func (st *State) Line() int { return st.line + 1 }

func (st *State) emit(lines ...string) {
	prefix := generator.Indent(st.indent)
	for _, l := range lines {
		st.out = append(st.out, prefix+l)
	}
}

// Parser translates one PoliteCode program. A Parser must not be shared
// between goroutines; use one per run.
type Parser struct {
	opts      Options
	sink      report.Sink
	collected report.Collector
	lines     []string
	st        *State
	failed    bool
}

// New returns a parser reporting to sink, which may be nil.
func New(sink report.Sink, opts Options) *Parser {
	if sink == nil {
		sink = report.Discard
	}
	p := &Parser{opts: opts, sink: sink}
	p.Reset()
	return p
}

// Reset clears the input and every piece of per-run state.
func (p *Parser) Reset() {
	p.lines = nil
	p.failed = false
	p.collected.Reset()
	p.st = newState(nil)
}

// SetInput stores the non-blank lines of src, trimmed. It reports whether any
// line remains.
func (p *Parser) SetInput(src []string) bool {
	p.lines = p.lines[:0]
	for _, l := range src {
		if l = strings.TrimSpace(l); l != "" {
			p.lines = append(p.lines, l)
		}
	}
	return len(p.lines) > 0
}

// Lines returns the stored input lines.
func (p *Parser) Lines() []string {
	return append([]string(nil), p.lines...)
}

// Process translates the stored input. It returns true only when no
// terminal error occurred and a valid entry point was defined. Line-level
// errors are reported but do not stop the run.
func (p *Parser) Process() bool {
	p.failed = false
	p.collected.Reset()
	p.st = newState(p.lines)
	st := p.st

	for st.line = 0; st.line < len(st.lines); st.line++ {
		text := st.lines[st.line]
		if text == "}" {
			p.closeBlock()
			continue
		}
		p.statement(text)
	}

	if len(st.blocks) > 0 {
		p.terminal(report.Diagnostic{
			Category: report.Structural,
			Message:  fmt.Sprintf("Missing closing curly brace '}'. Block starting at line %d is not properly closed.", st.blocks[0]),
			Line:     st.blocks[0],
		})
	}

	if main, ok := st.scopes.LookupFunction("main"); !ok || st.malformed["main"] || main.Return != types.Void || len(main.Params) > 0 {
		p.terminal(report.Diagnostic{
			Category: report.EntryPoint,
			Message:  "Missing required entry point: 'please define function void main() {'. A void main function must be defined.",
		})
	}

	return !p.failed
}

// GeneratedCode returns the emitted statements wrapped in the program
// template.
func (p *Parser) GeneratedCode() string {
	return generator.Program(p.st.out, p.opts.Target)
}

// Body returns the emitted statements without the program template.
func (p *Parser) Body() []string {
	return append([]string(nil), p.st.out...)
}

// Diagnostics returns every diagnostic reported by the last run.
func (p *Parser) Diagnostics() []report.Diagnostic {
	return p.collected.Diagnostics()
}

func (p *Parser) report(d report.Diagnostic) {
	p.collected.Error(d)
	p.sink.Error(d)
}

func (p *Parser) terminal(d report.Diagnostic) {
	d.Terminal = true
	p.failed = true
	p.report(d)
}

func (p *Parser) info(msg string) {
	p.collected.Info(msg)
	p.sink.Info(msg)
}

func (p *Parser) closeBlock() {
	st := p.st
	if len(st.blocks) == 0 {
		p.report(report.Diagnostic{
			Category: report.Structural,
			Message:  fmt.Sprintf("Unexpected closing curly brace '}' at line %d. No matching opening brace.", st.Line()),
			Line:     st.Line(),
			Column:   report.Column(st.Text(), "}"),
		})
		return
	}

	st.blocks = st.blocks[:len(st.blocks)-1]
	st.scopes.PopScope()
	if st.indent > 0 {
		st.indent--
	}
	st.emit("}")

	if st.indent == 0 && st.function != "" {
		if fn, ok := st.scopes.LookupFunction(st.function); ok && fn.Return != types.Void && !st.baseReturn[st.function] {
			p.report(report.Diagnostic{
				Category: report.Semantic,
				Message:  fmt.Sprintf("Function '%s' must have a return statement outside of any control blocks to ensure a value is always returned.", st.function),
				Line:     st.Line(),
			})
		}
		st.function = ""
	}
	st.insideControl = st.indent > 1
}

func (p *Parser) statement(text string) {
	st := p.st
	raws := lexer.Tokenize(text)
	opens := false
	for _, raw := range raws {
		if raw == "{" {
			opens = true
			break
		}
	}
	if opens {
		if k := lexer.Classify(raws[0]); k == lexer.If || k == lexer.Loop {
			st.insideControl = true
		}
	}

	toks, err := lexer.Line(text)
	switch {
	case err != nil:
		var unknown *lexer.UnknownTokenError
		d := report.Diagnostic{Category: report.Lexical, Message: err.Error(), Line: st.Line()}
		if errors.As(err, &unknown) {
			d.Column = unknown.Token.Column
		}
		p.report(d)
	case len(toks) > 0:
		if h := dispatch(toks[0].Kind); h == nil {
			p.report(report.Diagnostic{
				Category: report.Structural,
				Message:  "Unknown command: " + toks[0].Text,
				Line:     st.Line(),
				Column:   toks[0].Column,
			})
		} else if lines, err := h(st, toks); err != nil {
			p.report(p.diagnostic(err))
		} else {
			st.emit(lines...)
		}
		p.info(fmt.Sprintf("Processed line %d: %s", st.Line(), text))
	}

	vars := st.blockVars
	st.blockVars = nil
	if opens {
		st.indent++
		st.blocks = append(st.blocks, st.Line())
		st.scopes.PushScope()
		for _, v := range vars {
			st.scopes.Declare(v.Name, v.Type)
		}
	}
}

func (p *Parser) diagnostic(err error) report.Diagnostic {
	st := p.st
	d := report.Diagnostic{Category: report.Structural, Message: err.Error(), Line: st.Line()}
	var se *stmtError
	if errors.As(err, &se) {
		d.Category = se.category
		if line, col, ok := report.Locate(st.lines, se.token, st.line); ok && line == st.Line() {
			d.Column = col
		}
	}
	return d
}

// Result is the outcome of a translation.
type Result struct {
	OK          bool                `json:"ok"`
	Code        string              `json:"code,omitempty"`
	Diagnostics []report.Diagnostic `json:"diagnostics"`
}

// Translate runs a fresh parser over src.
func Translate(src string, opts Options, sink report.Sink) Result {
	p := New(sink, opts)
	p.SetInput(strings.Split(src, "\n"))
	ok := p.Process()
	return Result{OK: ok, Code: p.GeneratedCode(), Diagnostics: p.Diagnostics()}
}
