package services

import (
	"errors"
	"testing"
)

func TestExtractReply_Shapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		want      string
		wantShape string
	}{
		{"message beats content", `{"content":"a","message":"b"}`, "b", "known_key"},
		{"response key", `{"response":"from response"}`, "from response", "known_key"},
		{"result is last known key", `{"result":"r","output":"o"}`, "o", "known_key"},
		{"empty known key falls through", `{"message":"","note":"fallback"}`, "fallback", "first_string_value"},
		{"non-string known key falls through", `{"message":42,"note":"fallback"}`, "fallback", "first_string_value"},
		{"nested output under 0", `{"0":{"output":"x"}}`, "x", "index_zero"},
		{"n8n item array", `[{"output":"from array"}]`, "from array", "index_zero"},
		{"plain string under 0", `{"0":"zero"}`, "zero", "index_zero"},
		{"sentinel under 0 is skipped", `{"0":"{--}}","note":"real answer"}`, "real answer", "first_string_value"},
		{"template prefix is skipped", `{"a":"{-unresolved","b":"kept"}`, "kept", "first_string_value"},
		{"index keys come first", `{"b":"later","1":"one"}`, "one", "first_string_value"},
		{"index keys ascend", `{"10":"ten","2":"two"}`, "two", "first_string_value"},
		{"non-canonical index keeps document order", `{"01":"padded","x":"plain"}`, "padded", "first_string_value"},
		{"bare string", `"just text"`, "just text", "bare_string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := decodeWebhookPayload([]byte(tt.body))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			got, shape, err := extractReply(p)
			if err != nil {
				t.Fatalf("extractReply: %v", err)
			}
			if got != tt.want {
				t.Errorf("reply = %q, want %q", got, tt.want)
			}
			if shape != tt.wantShape {
				t.Errorf("shape = %q, want %q", shape, tt.wantShape)
			}
		})
	}
}

func TestExtractReply_Unresolvable(t *testing.T) {
	bodies := []string{
		`{}`,
		`[]`,
		`{"count":3,"ok":true}`,
		`{"0":"{--}}"}`,
		`{"0":{"output":5}}`,
		`""`,
		`null`,
		`12`,
		`true`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			p, err := decodeWebhookPayload([]byte(body))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if _, _, err := extractReply(p); !errors.Is(err, ErrUnresolvableShape) {
				t.Fatalf("expected ErrUnresolvableShape, got %v", err)
			}
		})
	}
}

func TestDecodeWebhookPayload_Invalid(t *testing.T) {
	bodies := []string{
		`{"message":`,
		`not json`,
		`{"a":"b"} trailing`,
		`{"a":"b"}{"c":"d"}`,
	}
	for _, body := range bodies {
		if _, err := decodeWebhookPayload([]byte(body)); err == nil {
			t.Errorf("expected error for %q", body)
		}
	}
}

func TestDecodeWebhookPayload_DuplicateKeys(t *testing.T) {
	p, err := decodeWebhookPayload([]byte(`{"a":"first","b":"other","a":"second"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(p.fields))
	}
	if p.fields[0].Key != "a" {
		t.Errorf("expected duplicate key to keep its first position, got %q", p.fields[0].Key)
	}
	if s, _ := rawString(p.fields[0].Value); s != "second" {
		t.Errorf("expected last value to win, got %q", s)
	}
}

func TestArrayIndex(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"0", true},
		{"42", true},
		{"4294967294", true},
		{"4294967295", false},
		{"01", false},
		{"-1", false},
		{"1.5", false},
		{"", false},
		{"abc", false},
	}
	for _, tt := range tests {
		if _, ok := arrayIndex(tt.key); ok != tt.want {
			t.Errorf("arrayIndex(%q) = %v, want %v", tt.key, ok, tt.want)
		}
	}
}
