/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"testing"

	"github.com/suparena/kvmodels/errors"
	"github.com/suparena/kvmodels/field"
)

func TestNewSchemaInjectsID(t *testing.T) {
	s, err := NewSchema("Task",
		F("status", field.String()),
		F("count", field.Number()),
	)
	if err != nil {
		t.Fatalf("NewSchema failed: %v", err)
	}

	names := s.FieldNames()
	expected := []string{"id", "status", "count"}
	if len(names) != len(expected) {
		t.Fatalf("Expected fields %v, got %v", expected, names)
	}
	for i, n := range expected {
		if names[i] != n {
			t.Fatalf("Expected fields %v, got %v", expected, names)
		}
	}

	spec, ok := s.Spec("id")
	if !ok {
		t.Fatal("Expected injected id field")
	}
	if spec.Kind() != field.KindID {
		t.Errorf("Expected id kind, got %s", spec.Kind())
	}
	if spec.Nullable() {
		t.Error("id field must not be nullable")
	}
}

func TestNewSchemaValidation(t *testing.T) {
	tests := []struct {
		name   string
		model  string
		fields []Field
	}{
		{
			name:   "empty model name",
			model:  "",
			fields: []Field{F("a", field.String())},
		},
		{
			name:   "duplicate field",
			model:  "Task",
			fields: []Field{F("a", field.String()), F("a", field.Number())},
		},
		{
			name:   "explicit id",
			model:  "Task",
			fields: []Field{F("id", field.Number())},
		},
		{
			name:   "nil spec",
			model:  "Task",
			fields: []Field{{Name: "a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSchema(tt.model, tt.fields...); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	reg := New()

	task := MustSchema("Task", F("status", field.String()))
	session := MustSchema("Session", F("token", field.String()))

	if err := reg.Register(task); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.Register(session); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Duplicate registration is rejected.
	if err := reg.Register(MustSchema("Task")); err == nil {
		t.Error("Expected error registering Task twice")
	}

	got, err := reg.Get("Task")
	if err != nil || got != task {
		t.Fatalf("Expected registered Task schema, got %v (%v)", got, err)
	}
	if _, err := reg.Get("Ghost"); err == nil {
		t.Error("Expected miss for unregistered model")
	} else if !errors.IsUnknownModel(err) {
		t.Errorf("Expected unknown model error, got %v", err)
	}

	models := reg.Models()
	if len(models) != 2 || models[0] != "Session" || models[1] != "Task" {
		t.Errorf("Expected sorted [Session Task], got %v", models)
	}
}
