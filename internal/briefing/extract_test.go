package briefing

import (
	"errors"
	"testing"
)

func TestExtractJSONPlain(t *testing.T) {
	result, err := ExtractJSON(`{"key": "value", "num": 42}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result["key"] != "value" {
		t.Errorf("expected key='value', got %v", result["key"])
	}
	if result["num"] != float64(42) {
		t.Errorf("expected num=42, got %v", result["num"])
	}
}

func TestExtractJSONFenceVariants(t *testing.T) {
	want := map[string]any{"key": "value"}
	inputs := []string{
		`{"key": "value"}`,
		"```json\n{\"key\": \"value\"}\n```",
		"```\n{\"key\": \"value\"}\n```",
		"  \n  {\"key\": \"value\"}  \n  ",
	}
	for _, input := range inputs {
		result, err := ExtractJSON(input)
		if err != nil {
			t.Fatalf("ExtractJSON(%q): %v", input, err)
		}
		if result["key"] != want["key"] {
			t.Errorf("ExtractJSON(%q) = %v, want %v", input, result, want)
		}
	}
}

func TestExtractJSONSurroundingProse(t *testing.T) {
	text := "Here is the analysis you asked for:\n{\"key\": \"value\"}\nLet me know if you need anything else."
	result, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result["key"] != "value" {
		t.Errorf("expected key='value', got %v", result["key"])
	}
}

func TestExtractJSONRepairsControlChars(t *testing.T) {
	// Literal newline and tab inside a string literal break strict parsers.
	text := "{\"summary\": \"first line\nsecond\tline\"}"
	result, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result["summary"] != "first line\nsecond\tline" {
		t.Errorf("expected repaired string to preserve escaped characters, got %q", result["summary"])
	}
}

func TestExtractJSONDropsOtherControlChars(t *testing.T) {
	text := "{\"summary\": \"clean\x01text\"}"
	result, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result["summary"] != "cleantext" {
		t.Errorf("expected control char dropped, got %q", result["summary"])
	}
}

func TestExtractJSONPreservesEscapedQuotes(t *testing.T) {
	text := "{\"summary\": \"he said \\\"hello\\\"\nand left\"}"
	result, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result["summary"] != "he said \"hello\"\nand left" {
		t.Errorf("got %q", result["summary"])
	}
}

func TestExtractJSONMalformed(t *testing.T) {
	_, err := ExtractJSON("this is not json at all")
	if err == nil {
		t.Fatal("expected error for non-JSON input")
	}
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedResponseError, got %T", err)
	}
	if malformed.Raw != "this is not json at all" {
		t.Errorf("expected Raw to carry original text, got %q", malformed.Raw)
	}
}

func TestExtractJSONEmpty(t *testing.T) {
	if _, err := ExtractJSON(""); err == nil {
		t.Error("expected error for empty input")
	}
}
