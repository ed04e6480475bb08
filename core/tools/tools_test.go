package tools

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDeclareReflectsArgumentSchema(t *testing.T) {
	declaration := SetMood()

	if declaration.Name != "set_mood" {
		t.Fatalf("expected declaration name %q, got %q", "set_mood", declaration.Name)
	}
	if declaration.Parameters == nil {
		t.Fatalf("expected declaration to carry a parameter schema")
	}

	raw, err := json.Marshal(declaration.Parameters)
	if err != nil {
		t.Fatalf("expected parameter schema to marshal, got error: %v", err)
	}

	schema := string(raw)
	if !strings.Contains(schema, `"mood"`) {
		t.Fatalf("expected schema to declare the mood property, got %s", schema)
	}
	if !strings.Contains(schema, "happy") || !strings.Contains(schema, "curious") {
		t.Fatalf("expected schema to enumerate mood tags, got %s", schema)
	}
}

func TestDefaultsIncludeMoodAndGesture(t *testing.T) {
	declarations := Defaults()

	if len(declarations) != 2 {
		t.Fatalf("expected two default declarations, got %d", len(declarations))
	}

	names := map[string]bool{}
	for _, declaration := range declarations {
		names[declaration.Name] = true
	}
	if !names["set_mood"] || !names["express_gesture"] {
		t.Fatalf("expected set_mood and express_gesture declarations, got %v", names)
	}
}
