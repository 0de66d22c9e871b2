package config

import (
	"os"
	"testing"
)

func TestGetEnvOrDefault(t *testing.T) {
	os.Unsetenv("TEST_MISSING_KEY")
	if got := getEnvOrDefault("TEST_MISSING_KEY", "fallback"); got != "fallback" {
		t.Errorf("Expected 'fallback', got %q", got)
	}

	os.Setenv("TEST_PRESENT_KEY", "value")
	defer os.Unsetenv("TEST_PRESENT_KEY")
	if got := getEnvOrDefault("TEST_PRESENT_KEY", "fallback"); got != "value" {
		t.Errorf("Expected 'value', got %q", got)
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback int
		want     int
	}{
		{"valid int", "42", 10, 42},
		{"garbage", "not-a-number", 10, 10},
		{"empty", "", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.value == "" {
				os.Unsetenv("TEST_INT_KEY")
			} else {
				os.Setenv("TEST_INT_KEY", tc.value)
				defer os.Unsetenv("TEST_INT_KEY")
			}

			if got := getEnvAsIntOrDefault("TEST_INT_KEY", tc.fallback); got != tc.want {
				t.Errorf("Expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestGetEnvAsBoolOrDefault(t *testing.T) {
	os.Setenv("TEST_BOOL_KEY", "false")
	defer os.Unsetenv("TEST_BOOL_KEY")
	if got := getEnvAsBoolOrDefault("TEST_BOOL_KEY", true); got {
		t.Error("Expected false, got true")
	}

	os.Setenv("TEST_BOOL_KEY", "definitely")
	if got := getEnvAsBoolOrDefault("TEST_BOOL_KEY", true); !got {
		t.Error("Expected default true on unparseable value")
	}
}

func TestMustGetEnvPanics(t *testing.T) {
	os.Unsetenv("TEST_REQUIRED_KEY")
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required variable")
		}
	}()
	mustGetEnv("TEST_REQUIRED_KEY")
}
