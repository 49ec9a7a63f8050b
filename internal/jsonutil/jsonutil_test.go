package jsonutil

import (
	"encoding/json"
	"testing"
)

func TestUnmarshalWithContext(t *testing.T) {
	type TestStruct struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{
			name:    "valid JSON",
			data:    []byte(`{"name":"test"}`),
			wantErr: false,
		},
		{
			name:    "invalid JSON",
			data:    []byte(`not json`),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v TestStruct
			err := UnmarshalWithContext(tt.data, &v, "test context")
			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalWithContext() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && v.Name != "test" {
				t.Errorf("UnmarshalWithContext() v.Name = %q, want %q", v.Name, "test")
			}
		})
	}
}

func TestUnmarshalArrayAllowEmpty(t *testing.T) {
	type TestStruct struct {
		ID int `json:"id"`
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr bool
		wantLen int
	}{
		{"valid non-empty array", []byte(`[{"id":1}]`), false, 1},
		{"empty array", []byte(`[]`), false, 0},
		{"null", []byte(`null`), false, 0},
		{"invalid JSON", []byte(`not json`), true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnmarshalArrayAllowEmpty[TestStruct](tt.data, "test context")
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalArrayAllowEmpty() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.wantLen {
				t.Errorf("UnmarshalArrayAllowEmpty() len = %d, want %d", len(got), tt.wantLen)
			}
			if !tt.wantErr && got == nil {
				t.Error("UnmarshalArrayAllowEmpty() returned nil slice, want empty slice")
			}
		})
	}
}

func TestCloneMap_IsDeep(t *testing.T) {
	orig := map[string]any{
		"position": map[string]any{"x": 1.0, "y": 2.0},
		"tags":     []any{"a", map[string]any{"k": "v"}},
		"name":     "panel",
	}

	clone := CloneMap(orig)
	clone["position"].(map[string]any)["x"] = 99.0
	clone["tags"].([]any)[1].(map[string]any)["k"] = "changed"
	clone["name"] = "other"

	if orig["position"].(map[string]any)["x"] != 1.0 {
		t.Errorf("nested map mutated through clone: %v", orig["position"])
	}
	if orig["tags"].([]any)[1].(map[string]any)["k"] != "v" {
		t.Errorf("nested slice mutated through clone: %v", orig["tags"])
	}
	if orig["name"] != "panel" {
		t.Errorf("top-level key mutated through clone: %v", orig["name"])
	}
}

func TestCloneMap_Nil(t *testing.T) {
	if CloneMap(nil) != nil {
		t.Error("CloneMap(nil) should be nil")
	}
}

func TestGetNumber(t *testing.T) {
	m := map[string]any{
		"float":   250000.0,
		"int":     12,
		"numstr":  " 300000 ",
		"number":  json.Number("42.5"),
		"word":    "cheap",
		"empty":   "",
		"nil":     nil,
		"boolean": true,
	}

	tests := []struct {
		key    string
		want   float64
		wantOK bool
	}{
		{"float", 250000, true},
		{"int", 12, true},
		{"numstr", 300000, true},
		{"number", 42.5, true},
		{"word", 0, false},
		{"empty", 0, false},
		{"nil", 0, false},
		{"boolean", 0, false},
		{"missing", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := GetNumber(m, tt.key)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("GetNumber(%q) = (%v, %v), want (%v, %v)", tt.key, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestGetString(t *testing.T) {
	m := map[string]any{
		"str":  "value",
		"num":  42.0,
		"bool": true,
		"nil":  nil,
	}

	tests := []struct {
		key  string
		want string
	}{
		{"str", "value"},
		{"num", ""},
		{"bool", ""},
		{"nil", ""},
		{"missing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := GetString(m, tt.key); got != tt.want {
				t.Errorf("GetString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToString(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"string", "hello", "hello"},
		{"float64 whole", 42.0, "42"},
		{"float64 decimal", 3.14, "3.14"},
		{"bool true", true, "true"},
		{"nil", nil, ""},
		{"int", 123, "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToString(tt.v); got != tt.want {
				t.Errorf("ToString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, true},
		{"blank string", "  ", true},
		{"string", "TX", false},
		{"empty map", map[string]any{}, true},
		{"empty slice", []any{}, true},
		{"zero", 0.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEmpty(tt.v); got != tt.want {
				t.Errorf("IsEmpty(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}
