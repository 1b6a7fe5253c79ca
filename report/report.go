// Package report carries translation diagnostics from the core to whatever
// surface displays them.
package report

import (
	"fmt"
	"sync"
)

// Category classifies a diagnostic.
type Category string

const (
	Lexical    Category = "lexical"
	Structural Category = "structural"
	Scope      Category = "scope"
	Type       Category = "type"
	Semantic   Category = "semantic"
	EntryPoint Category = "entry-point"
)

// Diagnostic is a single translation problem. Line and Column are 1-based;
// zero means unknown.
type Diagnostic struct {
	Category Category `yaml:"category" json:"category"`
	Message  string   `yaml:"message" json:"message"`
	Line     int      `yaml:"line,omitempty" json:"line,omitempty"`
	Column   int      `yaml:"column,omitempty" json:"column,omitempty"`
	Terminal bool     `yaml:"terminal,omitempty" json:"terminal,omitempty"`
}

func (d Diagnostic) Error() string {
	switch {
	case d.Line > 0 && d.Column > 0:
		return fmt.Sprintf("line %d, column %d: %s", d.Line, d.Column, d.Message)
	case d.Line > 0:
		return fmt.Sprintf("line %d: %s", d.Line, d.Message)
	default:
		return d.Message
	}
}

// Sink receives diagnostics and progress messages. It is called
// synchronously from the translating goroutine.
type Sink interface {
	Error(d Diagnostic)
	Info(msg string)
}

// Collector records every diagnostic it receives.
type Collector struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
	infos       []string
}

func (c *Collector) Error(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = append(c.diagnostics, d)
}

func (c *Collector) Info(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.infos = append(c.infos, msg)
}

// Diagnostics returns a copy of the recorded diagnostics.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Diagnostic(nil), c.diagnostics...)
}

// Infos returns a copy of the recorded progress messages.
func (c *Collector) Infos() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.infos...)
}

// Count returns the number of diagnostics in the given category.
func (c *Collector) Count(cat Category) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.diagnostics {
		if d.Category == cat {
			n++
		}
	}
	return n
}

// Reset drops everything recorded so far.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = nil
	c.infos = nil
}

type multi []Sink

// Multi fans every call out to each sink in order.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

func (m multi) Error(d Diagnostic) {
	for _, s := range m {
		s.Error(d)
	}
}

func (m multi) Info(msg string) {
	for _, s := range m {
		s.Info(msg)
	}
}

// Discard drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Error(Diagnostic) {}
func (discard) Info(string)      {}
