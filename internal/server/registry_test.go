package server

import "testing"

func TestRegistryRegisterAndCount(t *testing.T) {
	reg := NewConnectionRegistry()
	if reg.Count() != 0 || reg.SessionCount() != 0 {
		t.Fatal("new registry should be empty")
	}

	a := &Connection{SessionID: "s1"}
	b := &Connection{SessionID: "s1"}
	c := &Connection{SessionID: "s2"}
	reg.Register(a)
	reg.Register(b)
	reg.Register(c)

	if got := reg.Count(); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}
	if got := reg.SessionCount(); got != 2 {
		t.Errorf("SessionCount() = %d, want 2", got)
	}
}

func TestRegistryGetBySession(t *testing.T) {
	reg := NewConnectionRegistry()
	a := &Connection{SessionID: "s1"}
	b := &Connection{SessionID: "s1"}
	reg.Register(a)
	reg.Register(b)

	conns := reg.GetBySession("s1")
	if len(conns) != 2 {
		t.Fatalf("got %d connections, want 2", len(conns))
	}
	if conns[0] != a || conns[1] != b {
		t.Error("connections returned out of registration order")
	}

	// mutating the returned slice must not touch the registry
	conns[0] = nil
	if again := reg.GetBySession("s1"); again[0] != a {
		t.Error("GetBySession should return a copy")
	}

	if got := reg.GetBySession("unknown"); len(got) != 0 {
		t.Errorf("unknown session returned %d connections", len(got))
	}
}

func TestRegistryUnregister(t *testing.T) {
	reg := NewConnectionRegistry()
	a := &Connection{SessionID: "s1"}
	b := &Connection{SessionID: "s1"}
	reg.Register(a)
	reg.Register(b)

	reg.Unregister(a)
	if got := reg.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
	if conns := reg.GetBySession("s1"); len(conns) != 1 || conns[0] != b {
		t.Errorf("expected only b to remain, got %v", conns)
	}

	reg.Unregister(b)
	if got := reg.SessionCount(); got != 0 {
		t.Errorf("SessionCount() = %d after emptying, want 0", got)
	}

	// unknown connections are a no-op
	reg.Unregister(&Connection{SessionID: "s1"})
	if got := reg.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
}
