// Package validation validates rexfiles and runner configuration.
//
// It supports struct tag validation backed by go-playground/validator and
// programmatic validation with error collection. Both report a VALIDATION
// AppError whose "fields" detail lists every failing field.
//
// # Struct Tag Validation
//
//	type Task struct {
//	    ID      string `yaml:"id" validate:"required,unitid"`
//	    Timeout int    `yaml:"timeout" validate:"gte=0"`
//	}
//	err := validation.Validate(task)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.UnitID("tasks[0].id", id).Unique("tasks[0].id", id, seen)
//	if err := v.Validate(); err != nil { ... }
package validation
