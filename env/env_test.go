package env

import "testing"

func TestDefineAndResolve(t *testing.T) {
	e := NewEnvironment()
	old, existed := e.Define("x", 42)
	if existed {
		t.Fatalf("Define on a fresh environment reported existed=true")
	}
	if old != nil {
		t.Fatalf("Define on a fresh environment returned a previous value: %v", old)
	}

	v, ok := e.Resolve("x")
	if !ok || v != 42 {
		t.Fatalf("Resolve(x) = (%v, %v), want (42, true)", v, ok)
	}
}

func TestResolveMissing(t *testing.T) {
	e := NewEnvironment()
	if _, ok := e.Resolve("never-defined"); ok {
		t.Fatalf("Resolve reported ok=true for an undefined name")
	}
}

func TestDefineOverwrites(t *testing.T) {
	e := NewEnvironment()
	e.Define("x", 1)
	old, existed := e.Define("x", 2)
	if !existed || old != 1 {
		t.Fatalf("Define(x, 2) = (%v, %v), want (1, true)", old, existed)
	}
	v, _ := e.Resolve("x")
	if v != 2 {
		t.Fatalf("Resolve(x) = %v, want 2", v)
	}
}

func TestEachVisitsEveryBinding(t *testing.T) {
	e := NewEnvironment()
	e.Define("x", 1)
	e.Define("y", 2)
	seen := map[string]interface{}{}
	e.Each(func(name string, value interface{}) {
		seen[name] = value
	})
	if len(seen) != 2 || seen["x"] != 1 || seen["y"] != 2 {
		t.Fatalf("Each visited %v, want {x:1 y:2}", seen)
	}
	if e.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", e.Size())
	}
}
