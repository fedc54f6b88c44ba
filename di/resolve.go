package di

import "fmt"

// MustResolve resolves a component with type safety, panics on error.
//
// Example:
//
//	p := di.MustResolve[*tasks.SequentialTasksPipeline](c, di.SequentialTasksPipeline)
func MustResolve[T any](c Container, key string) T {
	result, err := Resolve[T](c, key)
	if err != nil {
		panic(err.Error())
	}
	return result
}

// Resolve resolves a component with type safety, returns error on failure.
//
// Example:
//
//	p, err := di.Resolve[*tasks.SequentialTasksPipeline](c, di.SequentialTasksPipeline)
//	if err != nil {
//	    return err
//	}
func Resolve[T any](c Container, key string) (T, error) {
	var zero T
	if c == nil {
		return zero, fmt.Errorf("di: no container to resolve %s", key)
	}
	instance, err := c.Resolve(key)
	if err != nil {
		return zero, err
	}
	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("di: component %s is %T, expected %T", key, instance, zero)
	}
	return result, nil
}

// TryResolve resolves a component, returns zero value and false if not found.
//
// Example:
//
//	if d, ok := di.TryResolve[time.Duration](c, di.Timeout); ok {
//	    timeout = d
//	}
func TryResolve[T any](c Container, key string) (T, bool) {
	result, err := Resolve[T](c, key)
	if err != nil {
		var zero T
		return zero, false
	}
	return result, true
}
