package config

import (
	"testing"
	"time"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"api": map[string]any{
			"baseUrl": "",
			"timeout": "15s",
		},
		"cache": map[string]any{
			"cartSummary": "30s",
			"readRetries": 0,
		},
		"secretKey": map[string]any{
			"storage": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "API_BASEURL", want: "api.baseUrl"},
		{envKey: "CACHE_CARTSUMMARY", want: "cache.cartSummary"},
		{envKey: "CACHE_READRETRIES", want: "cache.readRetries"},
		{envKey: "SECRETKEY_STORAGE", want: "secretKey.storage"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestApplyDefaults_FillsMissingWindows(t *testing.T) {
	cfg := &Config{}
	cfg.Cache.Orders = 10 * time.Second
	cfg.Cache.ReadRetries = -3

	applyDefaults(cfg)

	if cfg.Cache.Orders != 10*time.Second {
		t.Fatalf("explicit window overwritten: %v", cfg.Cache.Orders)
	}
	if cfg.Cache.Cart != DefaultCache().Cart {
		t.Fatalf("cart window = %v, want %v", cfg.Cache.Cart, DefaultCache().Cart)
	}
	if cfg.Cache.ReadRetries != 0 {
		t.Fatalf("read retries = %d, want 0", cfg.Cache.ReadRetries)
	}
	if cfg.Visitor.CookieName != defaultVisitorCookie {
		t.Fatalf("cookie name = %q", cfg.Visitor.CookieName)
	}
	if cfg.HTTP.MaxRequestBodySize != defaultMaxRequestBodySize {
		t.Fatalf("body size = %q", cfg.HTTP.MaxRequestBodySize)
	}
}
