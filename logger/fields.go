package logger

import (
	"time"
)

// Standard field key constants for structured logging.
const (
	FieldComponent   = "component"
	FieldRunID       = "run_id"
	FieldTraceID     = "trace_id"
	FieldUnit        = "unit"
	FieldKind        = "kind"
	FieldUses        = "uses"
	FieldStatus      = "status"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldEnvironment = "environment"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	log.Info("done", logger.Fields("task", "build", "code", 0))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// UnitFields creates fields identifying a unit of work.
func UnitFields(kind, id string) map[string]interface{} {
	return map[string]interface{}{
		FieldKind: kind,
		FieldUnit: id,
	}
}

// ErrorFields creates fields for a unit that failed.
func ErrorFields(unit string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldUnit:  unit,
		FieldError: err.Error(),
	}
}

// DurationFields creates fields for a timed unit.
func DurationFields(unit string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldUnit:     unit,
		FieldDuration: d.Milliseconds(),
	}
}
