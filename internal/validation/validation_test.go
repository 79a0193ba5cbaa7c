package validation

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	v := MustNew()
	tests := []struct {
		name     string
		schema   string
		body     string
		wantErr  bool
		wantPath string
	}{
		{"create minimal", TaskCreate, `{"title":"Buy milk"}`, false, ""},
		{"create full", TaskCreate, `{"title":"a","description":"","priority":"High","completed":false}`, false, ""},
		{"create missing title", TaskCreate, `{"description":"x"}`, true, ""},
		{"create blank title", TaskCreate, `{"title":"   "}`, true, "title"},
		{"create bad priority", TaskCreate, `{"title":"a","priority":"urgent"}`, true, "priority"},
		{"create owner rejected", TaskCreate, `{"title":"a","owner":"bob@example.com"}`, true, ""},
		{"create not json", TaskCreate, `{`, true, ""},
		{"patch completed", TaskPatch, `{"completed":true}`, false, ""},
		{"patch empty", TaskPatch, `{}`, true, ""},
		{"patch wrong type", TaskPatch, `{"completed":"yes"}`, true, "completed"},
		{"credentials ok", Credentials, `{"email":"a@b.co","password":"secret1"}`, false, ""},
		{"credentials missing password", Credentials, `{"email":"a@b.co"}`, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.schema, []byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("error type %T, want *Error", err)
			}
			if tt.wantPath != "" && verr.Path != tt.wantPath {
				t.Errorf("path = %q, want %q", verr.Path, tt.wantPath)
			}
		})
	}
}

func TestValidate_UnknownSchema(t *testing.T) {
	if err := MustNew().Validate("nope.json", []byte(`{}`)); err == nil {
		t.Fatal("expected error for unknown schema")
	}
}
