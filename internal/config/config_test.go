package config

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PIPEDRIVE_API_TOKEN", "token1234567890")
	t.Setenv("PIPEDRIVE_COMPANY_DOMAIN", "testco")
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

func TestLoadDefaults(t *testing.T) {
	validEnv(t)
	s, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", s.Timeout)
	}
	if s.RetryAttempts != 3 || s.RetryBackoff != 0.5 {
		t.Errorf("retry defaults = %d, %v", s.RetryAttempts, s.RetryBackoff)
	}
	if !s.VerifySSL {
		t.Error("VerifySSL should default to true")
	}
}

func TestHTTPClientUsesTimeout(t *testing.T) {
	s := &Settings{Timeout: 45 * time.Second, VerifySSL: true}
	hc := s.HTTPClient()
	if hc.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", hc.Timeout)
	}
	if hc.Transport != nil {
		t.Error("Transport should be nil when VerifySSL is on")
	}
}

func TestHTTPClientSkipsVerification(t *testing.T) {
	s := &Settings{Timeout: 30 * time.Second, VerifySSL: false}
	tr, ok := s.HTTPClient().Transport.(*http.Transport)
	if !ok {
		t.Fatal("expected an *http.Transport when VerifySSL is off")
	}
	if tr.TLSClientConfig == nil || !tr.TLSClientConfig.InsecureSkipVerify {
		t.Error("TLS verification should be skipped when VerifySSL is off")
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("PIPEDRIVE_API_TOKEN", "")
	t.Setenv("PIPEDRIVE_COMPANY_DOMAIN", "testco")
	if _, err := Load(nil); err == nil {
		t.Error("expected error for missing token")
	}
}

func TestLoadRejectsShortToken(t *testing.T) {
	t.Setenv("PIPEDRIVE_API_TOKEN", "short")
	t.Setenv("PIPEDRIVE_COMPANY_DOMAIN", "testco")
	if _, err := Load(nil); err == nil {
		t.Error("expected error for short token")
	}
}

func TestLoadRejectsDomainWithDot(t *testing.T) {
	t.Setenv("PIPEDRIVE_API_TOKEN", "token1234567890")
	t.Setenv("PIPEDRIVE_COMPANY_DOMAIN", "testco.pipedrive.com")
	if _, err := Load(nil); err == nil {
		t.Error("expected error for full-URL domain")
	}
}

func TestLoadInvalidNumericsFallBack(t *testing.T) {
	validEnv(t)
	t.Setenv("PIPEDRIVE_TIMEOUT", "soon")
	t.Setenv("PIPEDRIVE_RETRY_ATTEMPTS", "50")
	t.Setenv("PIPEDRIVE_RETRY_BACKOFF", "-1")

	s, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Timeout != DefaultTimeout || s.RetryAttempts != DefaultRetryAttempts || s.RetryBackoff != DefaultRetryBackoff {
		t.Errorf("invalid values should fall back: %+v", s)
	}
}

func TestLoadValidOverrides(t *testing.T) {
	validEnv(t)
	t.Setenv("PIPEDRIVE_TIMEOUT", "60")
	t.Setenv("PIPEDRIVE_RETRY_ATTEMPTS", "5")
	t.Setenv("PIPEDRIVE_LOG_REQUESTS", "true")

	s, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", s.Timeout)
	}
	if s.RetryAttempts != 5 {
		t.Errorf("RetryAttempts = %d, want 5", s.RetryAttempts)
	}
	if !s.LogRequests {
		t.Error("LogRequests should be true")
	}
}

// ---------------------------------------------------------------------------
// Feature flags
// ---------------------------------------------------------------------------

func writeFeatureFile(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "features.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FEATURE_CONFIG_PATH", path)
}

func TestFeaturesDefaultEnabled(t *testing.T) {
	t.Setenv("FEATURE_CONFIG_PATH", "")
	f, err := LoadFeatures()
	if err != nil {
		t.Fatalf("LoadFeatures: %v", err)
	}
	if !f.Enabled("deals") {
		t.Error("features should default to enabled")
	}
}

func TestFeaturesFromFile(t *testing.T) {
	writeFeatureFile(t, `{"features": {"deals": false, "leads": true}}`)
	f, err := LoadFeatures()
	if err != nil {
		t.Fatalf("LoadFeatures: %v", err)
	}
	if f.Enabled("deals") {
		t.Error("deals disabled in file")
	}
	if !f.Enabled("leads") {
		t.Error("leads enabled in file")
	}
	if !f.Enabled("persons") {
		t.Error("unlisted features default to enabled")
	}
}

func TestFeaturesFilePrecedesEnv(t *testing.T) {
	writeFeatureFile(t, `{"features": {"deals": false}}`)
	t.Setenv("PIPEDRIVE_FEATURE_DEALS", "true")
	f, err := LoadFeatures()
	if err != nil {
		t.Fatalf("LoadFeatures: %v", err)
	}
	if f.Enabled("deals") {
		t.Error("file setting should win over env var")
	}
}

func TestFeaturesEnvFallback(t *testing.T) {
	t.Setenv("FEATURE_CONFIG_PATH", "")
	t.Setenv("PIPEDRIVE_FEATURE_ITEM_SEARCH", "false")
	f, err := LoadFeatures()
	if err != nil {
		t.Fatalf("LoadFeatures: %v", err)
	}
	if f.Enabled("item_search") {
		t.Error("env var should disable the feature")
	}
}

func TestFeaturesMalformedFile(t *testing.T) {
	writeFeatureFile(t, `{not json`)
	if _, err := LoadFeatures(); err == nil {
		t.Error("expected error for malformed feature file")
	}
}
