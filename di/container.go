package di

import (
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/kbukum/rex/errors"
)

// RegistrationMode determines how a component is resolved.
type RegistrationMode int

const (
	Eager     RegistrationMode = iota // Initialize immediately on registration
	Lazy                              // Initialize on first resolve
	Singleton                         // Pre-created instance
)

func (m RegistrationMode) String() string {
	switch m {
	case Eager:
		return "eager"
	case Lazy:
		return "lazy"
	case Singleton:
		return "singleton"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Constructor builds a component. It may resolve other components from c.
type Constructor func(c Container) (any, error)

// Container defines the services registry.
type Container interface {
	Register(key string, constructor Constructor) error
	RegisterEager(key string, constructor Constructor) error
	RegisterSingleton(key string, instance any) error
	Resolve(key string) (any, error)
	Has(key string) bool
	Registrations() []RegistrationInfo
	Close() error
}

// RegistrationInfo describes a registered component for introspection.
type RegistrationInfo struct {
	Key         string
	Mode        RegistrationMode
	Initialized bool
}

type registration struct {
	key         string
	constructor Constructor
	mode        RegistrationMode
	once        sync.Once
	instance    any
	err         error
	initialized atomic.Bool
}

// UnifiedContainer is the default Container.
type UnifiedContainer struct {
	mu         sync.RWMutex
	components map[string]*registration
}

// NewContainer creates an empty container.
func NewContainer() *UnifiedContainer {
	return &UnifiedContainer{components: make(map[string]*registration)}
}

// Register registers a component built on first resolve.
func (c *UnifiedContainer) Register(key string, constructor Constructor) error {
	if constructor == nil {
		return fmt.Errorf("di: nil constructor for %s", key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.components[key] = &registration{key: key, constructor: constructor, mode: Lazy}
	return nil
}

// RegisterEager builds the component immediately and stores it.
func (c *UnifiedContainer) RegisterEager(key string, constructor Constructor) error {
	if constructor == nil {
		return fmt.Errorf("di: nil constructor for %s", key)
	}
	instance, err := constructor(c)
	if err != nil {
		return fmt.Errorf("di: failed to initialize eager component '%s': %w", key, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	r := &registration{key: key, mode: Eager, instance: instance}
	r.initialized.Store(true)
	r.once.Do(func() {})
	c.components[key] = r
	return nil
}

// RegisterSingleton registers a pre-created instance.
func (c *UnifiedContainer) RegisterSingleton(key string, instance any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := &registration{key: key, mode: Singleton, instance: instance}
	r.initialized.Store(true)
	r.once.Do(func() {})
	c.components[key] = r
	return nil
}

// Resolve returns the component registered under key.
func (c *UnifiedContainer) Resolve(key string) (any, error) {
	c.mu.RLock()
	r, ok := c.components[key]
	c.mu.RUnlock()
	if !ok {
		return nil, errors.ServiceNotFound(key)
	}

	r.once.Do(func() {
		r.instance, r.err = r.constructor(c)
		r.initialized.Store(r.err == nil)
	})
	if r.err != nil {
		return nil, fmt.Errorf("di: failed to initialize '%s': %w", key, r.err)
	}
	return r.instance, nil
}

// Has reports whether key is registered.
func (c *UnifiedContainer) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.components[key]
	return ok
}

// Registrations lists registered components sorted by key.
func (c *UnifiedContainer) Registrations() []RegistrationInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]RegistrationInfo, 0, len(c.components))
	for _, r := range c.components {
		out = append(out, RegistrationInfo{Key: r.key, Mode: r.mode, Initialized: r.initialized.Load()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Close closes every initialized component that implements io.Closer.
func (c *UnifiedContainer) Close() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var errs []error
	for _, r := range c.components {
		if !r.initialized.Load() {
			continue
		}
		if closer, ok := r.instance.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("di: close %s: %w", r.key, err))
			}
		}
	}
	return stderrors.Join(errs...)
}
