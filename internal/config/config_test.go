package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "CATALOG_TEST_VAR",
			value:     "test_value",
			shouldSet: true,
		},
		{
			name:      "variable not set",
			key:       "CATALOG_TEST_VAR_MISSING",
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestRequireEnvInt(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		expected  int
		wantPanic bool
	}{
		{name: "valid integer", key: "CATALOG_TEST_INT", value: "42", expected: 42},
		{name: "invalid integer", key: "CATALOG_TEST_INT_INVALID", value: "not_a_number", wantPanic: true},
		{name: "missing variable", key: "CATALOG_TEST_INT_MISSING", wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnvInt() should have panicked")
					}
				}()
			}

			result := requireEnvInt(tt.key)
			if !tt.wantPanic && result != tt.expected {
				t.Errorf("requireEnvInt() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{name: "valid duration", key: "CATALOG_TEST_DURATION", value: "5s", def: time.Second, expected: 5 * time.Second},
		{name: "invalid duration uses default", key: "CATALOG_TEST_DURATION_INVALID", value: "invalid", def: 10 * time.Second, expected: 10 * time.Second},
		{name: "missing variable uses default", key: "CATALOG_TEST_DURATION_MISSING", def: 15 * time.Second, expected: 15 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			if result := mustDuration(tt.key, tt.def); result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{name: "true value", key: "CATALOG_TEST_BOOL", value: "true", expected: true},
		{name: "false value", key: "CATALOG_TEST_BOOL_FALSE", value: "false", def: true, expected: false},
		{name: "invalid value uses default", key: "CATALOG_TEST_BOOL_INVALID", value: "invalid", def: true, expected: true},
		{name: "missing variable uses default", key: "CATALOG_TEST_BOOL_MISSING", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			if result := mustBool(tt.key, tt.def); result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(` "10.0.0.0/8", 127.0.0.1 ,, 'host.example' `)
	want := []string{"10.0.0.0/8", "127.0.0.1", "host.example"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("splitAndTrim() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMemoryBackend(t *testing.T) {
	t.Setenv("CATALOG_STORE", "memory")
	t.Setenv("CATALOG_WORKERS", "0")
	t.Setenv("CATALOG_ALLOWED_CIDRS", "10.0.0.0/8, 192.168.1.1")

	cfg := Load()

	if cfg.StoreBackend != StoreMemory {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, StoreMemory)
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want floor of 1", cfg.Workers)
	}
	if cfg.SmallServiceDatasets != 36 || cfg.SmallServiceTimeout != 180*time.Second || cfg.PerDatasetTimeout != time.Minute {
		t.Errorf("unexpected timeout policy defaults: %d %v %v",
			cfg.SmallServiceDatasets, cfg.SmallServiceTimeout, cfg.PerDatasetTimeout)
	}
	if diff := cmp.Diff([]string{"10.0.0.0/8", "192.168.1.1"}, cfg.AllowedCIDRS); diff != "" {
		t.Errorf("AllowedCIDRS mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRedisBackendRequiresAddr(t *testing.T) {
	t.Setenv("CATALOG_STORE", "redis")
	t.Setenv("CATALOG_REDIS_ADDR", "")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Load() should panic when CATALOG_REDIS_ADDR is missing")
		}
	}()
	Load()
}

func TestLoadUnknownBackend(t *testing.T) {
	t.Setenv("CATALOG_STORE", "mongo")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Load() should panic on an unknown store backend")
		}
	}()
	Load()
}
