// Package scope tracks variable frames for nested blocks and the flat table
// of function signatures.
package scope

import "github.com/daveroberts0321/politecode/parser/types"

// Param is a named, typed function parameter.
type Param struct {
	Name string
	Type types.Type
}

// Function is a declared function signature.
type Function struct {
	Name   string
	Return types.Type
	Params []Param
}

// Manager owns the variable frame stack and the function table.
// Variables are never shadowed: the parser rejects a declaration whose name
// is visible in any active frame.
type Manager struct {
	frames    []map[string]types.Type
	functions map[string]Function
}

// NewManager returns a manager with no frames and no functions.
func NewManager() *Manager {
	return &Manager{functions: make(map[string]Function)}
}

// Reset drops every frame and function.
func (m *Manager) Reset() {
	m.frames = nil
	m.functions = make(map[string]Function)
}

func (m *Manager) PushScope() {
	m.frames = append(m.frames, make(map[string]types.Type))
}

func (m *Manager) PopScope() {
	if len(m.frames) > 0 {
		m.frames = m.frames[:len(m.frames)-1]
	}
}

// Depth is the number of active frames.
func (m *Manager) Depth() int { return len(m.frames) }

// EnterFunction discards all active variable frames and pushes the frame of
// a new function. Functions see neither top-level variables nor those of
// other functions.
func (m *Manager) EnterFunction() {
	m.frames = nil
	m.PushScope()
}

// Declare writes name into the innermost frame, creating one if needed.
func (m *Manager) Declare(name string, t types.Type) {
	if len(m.frames) == 0 {
		m.PushScope()
	}
	m.frames[len(m.frames)-1][name] = t
}

// Exists reports whether name is declared in any active frame.
func (m *Manager) Exists(name string) bool {
	_, ok := m.Lookup(name)
	return ok
}

// Lookup searches the active frames, innermost first.
func (m *Manager) Lookup(name string) (types.Type, bool) {
	for i := len(m.frames) - 1; i >= 0; i-- {
		if t, ok := m.frames[i][name]; ok {
			return t, true
		}
	}
	return types.Invalid, false
}

// Visible returns a snapshot of every variable visible from the innermost
// frame.
func (m *Manager) Visible() map[string]types.Type {
	out := make(map[string]types.Type)
	for i := len(m.frames) - 1; i >= 0; i-- {
		for name, t := range m.frames[i] {
			if _, seen := out[name]; !seen {
				out[name] = t
			}
		}
	}
	return out
}

func (m *Manager) DeclareFunction(fn Function) {
	m.functions[fn.Name] = fn
}

func (m *Manager) FunctionExists(name string) bool {
	_, ok := m.functions[name]
	return ok
}

func (m *Manager) LookupFunction(name string) (Function, bool) {
	fn, ok := m.functions[name]
	return fn, ok
}

// LookupFunctionReturnType returns the declared return type of name.
func (m *Manager) LookupFunctionReturnType(name string) (types.Type, bool) {
	fn, ok := m.functions[name]
	if !ok {
		return types.Invalid, false
	}
	return fn.Return, true
}
