package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ATZ_ENABLE", "")
	t.Setenv("ATZ_BASE_URL", "")
	t.Setenv("ATZ_API_TOKEN", "")
	t.Setenv("ATZ_TOKEN", "")
	t.Setenv("ATZ_CUSTOM_FIELD_KEY", "")
	cfg := Load()
	if cfg.Port != "3000" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if !cfg.ATZEnable {
		t.Fatalf("expected ATZ enabled by default")
	}
	if cfg.ATZBaseURL != "https://api.atzcrm.com/v1" {
		t.Fatalf("expected default base URL, got %s", cfg.ATZBaseURL)
	}
	if cfg.ATZTimeout != 15*time.Second {
		t.Fatalf("expected default timeout, got %s", cfg.ATZTimeout)
	}
	if cfg.ATZCustomFieldKey != "Zadarma Call Log" {
		t.Fatalf("expected default custom field key, got %q", cfg.ATZCustomFieldKey)
	}
	if cfg.ATZOwnerID != 0 {
		t.Fatalf("expected no default owner, got %d", cfg.ATZOwnerID)
	}
	if len(cfg.ATZOwnerMap) != 0 {
		t.Fatalf("expected empty owner map, got %v", cfg.ATZOwnerMap)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("ATZ_ENABLE", "0")
	t.Setenv("ATZ_BASE_URL", "https://crm.example.test/v1")
	t.Setenv("ATZ_API_TOKEN", "secret-token")
	t.Setenv("ATZ_OWNER_ID", "42")
	t.Setenv("ATZ_OWNER_MAP", `{"101":"123","102":"456"}`)
	t.Setenv("ATZ_CUSTOM_FIELD_KEY", " Call History ")
	t.Setenv("ATZ_ACTIVITY_PATH", "/candidate/%s/activities")
	t.Setenv("ATZ_TIMEOUT", "30s")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.ATZEnable {
		t.Fatalf("expected ATZ disabled")
	}
	if cfg.ATZAPIToken != "secret-token" {
		t.Fatalf("expected token override, got %s", cfg.ATZAPIToken)
	}
	if cfg.ATZOwnerID != 42 {
		t.Fatalf("expected owner override, got %d", cfg.ATZOwnerID)
	}
	if cfg.ATZOwnerMap["101"] != "123" || cfg.ATZOwnerMap["102"] != "456" {
		t.Fatalf("expected owner map override, got %v", cfg.ATZOwnerMap)
	}
	if cfg.ATZCustomFieldKey != "Call History" {
		t.Fatalf("expected trimmed custom field key, got %q", cfg.ATZCustomFieldKey)
	}
	if cfg.ATZActivityPath != "/candidate/%s/activities" {
		t.Fatalf("expected activity path override, got %s", cfg.ATZActivityPath)
	}
	if cfg.ATZTimeout != 30*time.Second {
		t.Fatalf("expected timeout override, got %s", cfg.ATZTimeout)
	}
}

func TestTokenFallback(t *testing.T) {
	t.Setenv("ATZ_API_TOKEN", "")
	t.Setenv("ATZ_TOKEN", "legacy-token")
	cfg := Load()
	if cfg.ATZAPIToken != "legacy-token" {
		t.Fatalf("expected ATZ_TOKEN fallback, got %q", cfg.ATZAPIToken)
	}
}

func TestOwnerMapMalformed(t *testing.T) {
	t.Setenv("ATZ_OWNER_MAP", "{not json")
	cfg := Load()
	if len(cfg.ATZOwnerMap) != 0 {
		t.Fatalf("expected empty map on malformed JSON, got %v", cfg.ATZOwnerMap)
	}
}
