package config

import (
	"reflect"
	"testing"
)

// TestParseCSVEnv проверяет разбор списка origin из ENV.
func TestParseCSVEnv(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " http://localhost:5173, ,https://planner.example.com ")

	got := parseCSVEnv("CORS_ORIGINS")
	want := []string{"http://localhost:5173", "https://planner.example.com"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestParseCSVEnvMissing проверяет поведение при отсутствии переменной.
func TestParseCSVEnvMissing(t *testing.T) {
	got := parseCSVEnv("MISSING_ENV")
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

// TestParseFloatEnv проверяет разбор числовых долей.
func TestParseFloatEnv(t *testing.T) {
	t.Setenv("PRICE_FLOOR_PCT", "0.3")

	got, err := parseFloatEnv("PRICE_FLOOR_PCT", 0.25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.3 {
		t.Fatalf("expected 0.3, got %v", got)
	}
}

func TestParseFloatEnvFallback(t *testing.T) {
	got, err := parseFloatEnv("MISSING_FLOAT_ENV", 0.08)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.08 {
		t.Fatalf("expected fallback 0.08, got %v", got)
	}
}

func TestParseFloatEnvInvalid(t *testing.T) {
	t.Setenv("PRICE_JITTER_PCT", "lots")

	if _, err := parseFloatEnv("PRICE_JITTER_PCT", 0.08); err == nil {
		t.Fatal("expected error for non-numeric value")
	}
}

func TestParseFloatEnvNegative(t *testing.T) {
	t.Setenv("PRICE_CEIL_PCT", "-1")

	if _, err := parseFloatEnv("PRICE_CEIL_PCT", 1.0); err == nil {
		t.Fatal("expected error for negative value")
	}
}
