package di

import (
	stderrors "errors"
	"sync"
	"testing"

	"github.com/kbukum/rex/errors"
)

type closer struct{ closed bool }

func (c *closer) Close() error {
	c.closed = true
	return nil
}

func TestRegisterSingleton_Resolve(t *testing.T) {
	c := NewContainer()
	_ = c.RegisterSingleton("answer", 42)

	v, err := Resolve[int](c, "answer")
	if err != nil || v != 42 {
		t.Fatalf("got %v, %v", v, err)
	}
}

func TestResolve_NotRegistered(t *testing.T) {
	c := NewContainer()
	_, err := c.Resolve("nope")
	if !errors.HasCode(err, errors.ErrCodeServiceNotFound) {
		t.Fatalf("expected SERVICE_NOT_FOUND, got %v", err)
	}
	if _, ok := TryResolve[string](c, "nope"); ok {
		t.Error("TryResolve should report false")
	}
}

func TestResolve_WrongType(t *testing.T) {
	c := NewContainer()
	_ = c.RegisterSingleton("name", "rex")
	if _, err := Resolve[int](c, "name"); err == nil {
		t.Fatal("expected type error")
	}
}

func TestRegister_LazyOnce(t *testing.T) {
	c := NewContainer()
	calls := 0
	_ = c.Register("svc", func(Container) (any, error) {
		calls++
		return &closer{}, nil
	})
	if calls != 0 {
		t.Fatal("lazy component built too early")
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Resolve("svc")
		}()
	}
	wg.Wait()
	if calls != 1 {
		t.Fatalf("constructor called %d times", calls)
	}
}

func TestRegister_ResolvesDependencies(t *testing.T) {
	c := NewContainer()
	_ = c.RegisterSingleton("base", 2)
	_ = c.Register("double", func(c Container) (any, error) {
		b, err := Resolve[int](c, "base")
		return b * 2, err
	})
	if v := MustResolve[int](c, "double"); v != 4 {
		t.Fatalf("double = %d", v)
	}
}

func TestRegisterEager_Error(t *testing.T) {
	c := NewContainer()
	err := c.RegisterEager("bad", func(Container) (any, error) { return nil, stderrors.New("boom") })
	if err == nil {
		t.Fatal("expected error")
	}
	if c.Has("bad") {
		t.Error("failed eager component should not be registered")
	}
}

func TestMustResolve_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustResolve[int](NewContainer(), "missing")
}

func TestRegistrationsAndClose(t *testing.T) {
	c := NewContainer()
	cl := &closer{}
	lazy := &closer{}
	_ = c.RegisterSingleton("b", cl)
	_ = c.Register("a", func(Container) (any, error) { return lazy, nil })

	regs := c.Registrations()
	if len(regs) != 2 || regs[0].Key != "a" || regs[0].Initialized || regs[1].Mode != Singleton {
		t.Fatalf("unexpected registrations %+v", regs)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if !cl.closed {
		t.Error("singleton should be closed")
	}
	if lazy.closed {
		t.Error("unresolved lazy component should not be closed")
	}
}
