package main

import "sort"

// Env is one frame of a lexical environment: a set of bindings plus an
// optional outer frame. Frames are shared by reference between every closure
// and call that holds them; a define in a frame is visible to all of them.
type Env struct {
	vars  map[Symbol]Value
	outer *Env
}

// NewEnv creates an empty frame inside of outer, which may be nil.
func NewEnv(outer *Env) *Env {
	return &Env{
		vars:  make(map[Symbol]Value),
		outer: outer,
	}
}

// NewFrame creates a frame inside of outer binding each of params to the
// corresponding argument. Returns an *ArgumentError if the counts differ.
func NewFrame(params []Symbol, args []Value, outer *Env) (*Env, error) {
	if len(params) != len(args) {
		return nil, &ArgumentError{Op: "procedure", Want: len(params), Got: len(args)}
	}
	env := &Env{
		vars:  make(map[Symbol]Value, len(params)),
		outer: outer,
	}
	for i, param := range params {
		env.vars[param] = args[i]
	}
	return env, nil
}

// NewStandardEnv returns a new global frame whose outer frame holds every
// primitive and constant binding. The outer frame is shared by all standard
// environments and is never modified; defines go into the returned frame.
func NewStandardEnv() *Env {
	return NewEnv(builtinEnv)
}

// Outer returns the parent frame, or nil for a root frame.
func (env *Env) Outer() *Env { return env.outer }

// Find returns the innermost frame, starting at env, that binds name.
func (env *Env) Find(name Symbol) (*Env, error) {
	for frame := env; frame != nil; frame = frame.outer {
		if _, defined := frame.vars[name]; defined {
			return frame, nil
		}
	}
	return nil, &UndefinedSymbolError{name}
}

// Lookup returns the value bound to name by the innermost frame that binds it.
func (env *Env) Lookup(name Symbol) (Value, error) {
	frame, err := env.Find(name)
	if err != nil {
		return nil, err
	}
	return frame.vars[name], nil
}

// Define binds name to val in this frame, shadowing any outer binding and
// replacing any prior binding in this frame.
func (env *Env) Define(name Symbol, val Value) {
	env.vars[name] = val
}

// Names returns the names bound in this frame, not including outer ones,
// in sorted order.
func (env *Env) Names() []Symbol {
	names := make([]Symbol, 0, len(env.vars))
	for name := range env.vars {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
