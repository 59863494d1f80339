/*
Package env implements the variable environment a reducer's semantic
actions close over. burs.Reducer.Reduce takes an opaque visitor argument
and passes it, unexamined, to every predicate/preCallback/postCallback it
invokes; a grammar author who wants variables (an ASSIGN production
storing a value, a VAR leaf production looking one up) needs something to
put there. Environment is that something: a flat namespace of bindings,
used directly by cmd/burgsh and available to any grammar's callbacks
through the visitor they are handed.

burgo has no notion of nested lexical scope the way a full interpreter
does (every reduction runs against one already-built tree, there is no
block or function body to enter and leave), so, unlike the teacher's
runtime.Runtime/ScopeTree this package is grounded on, Environment does
not maintain a scope stack. One flat map is the honest shape for what a
BURS grammar's callbacks actually need.

----------------------------------------------------------------------

BSD License

Copyright (c) 2017-21, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software or the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE. */
package env

import (
	"fmt"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// T traces to the global syntax tracer.
func T() tracing.Trace {
	return gtrace.SyntaxTracer
}

// Binding is a single named value held by an Environment.
type Binding struct {
	Name  string
	Value interface{}
}

// Environment is the variable namespace a reduction's semantic actions
// read and write through the visitor argument passed to Reduce.
type Environment struct {
	bindings map[string]*Binding
}

// NewEnvironment creates an empty environment.
func NewEnvironment() *Environment {
	return &Environment{bindings: make(map[string]*Binding)}
}

// Define creates or overwrites the binding for name, returning the
// previous value and whether one existed.
func (e *Environment) Define(name string, value interface{}) (old interface{}, existed bool) {
	if b, ok := e.bindings[name]; ok {
		old, existed = b.Value, true
	}
	e.bindings[name] = &Binding{Name: name, Value: value}
	T().Debugf("env: defined %q = %v", name, value)
	return old, existed
}

// Resolve looks up name. ok is false if it was never defined.
func (e *Environment) Resolve(name string) (value interface{}, ok bool) {
	b, ok := e.bindings[name]
	if !ok {
		return nil, false
	}
	return b.Value, true
}

// Each calls fn once per binding, in unspecified order.
func (e *Environment) Each(fn func(name string, value interface{})) {
	for name, b := range e.bindings {
		fn(name, b.Value)
	}
}

// Size returns the number of bindings currently defined.
func (e *Environment) Size() int {
	return len(e.bindings)
}

func (e *Environment) String() string {
	return fmt.Sprintf("<environment, %d bindings>", len(e.bindings))
}
