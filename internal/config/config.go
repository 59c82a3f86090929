// Package config loads server settings from the environment and feature
// enablement from a JSON file with env-var fallbacks.
package config

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults for the tunable settings. Invalid values in the environment fall
// back to these rather than failing startup.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultRetryAttempts = 3
	DefaultRetryBackoff  = 0.5
)

// Settings holds the Pipedrive connection configuration.
type Settings struct {
	APIToken      string
	CompanyDomain string
	BaseURL       string
	Timeout       time.Duration
	// RetryAttempts and RetryBackoff are accepted for configuration
	// compatibility but the client currently performs no retries.
	RetryAttempts int
	RetryBackoff  float64
	VerifySSL     bool
	LogRequests   bool
	LogResponses  bool
}

// Load reads settings from the environment and validates the required
// fields. Malformed optional numerics are logged and replaced with defaults.
func Load(logger *slog.Logger) (*Settings, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Settings{
		APIToken:      strings.TrimSpace(os.Getenv("PIPEDRIVE_API_TOKEN")),
		CompanyDomain: strings.TrimSpace(os.Getenv("PIPEDRIVE_COMPANY_DOMAIN")),
		BaseURL:       strings.TrimSpace(os.Getenv("PIPEDRIVE_BASE_URL")),
		Timeout:       DefaultTimeout,
		RetryAttempts: DefaultRetryAttempts,
		RetryBackoff:  DefaultRetryBackoff,
		VerifySSL:     envBool("VERIFY_SSL", true),
		LogRequests:   envBool("PIPEDRIVE_LOG_REQUESTS", false),
		LogResponses:  envBool("PIPEDRIVE_LOG_RESPONSES", false),
	}

	if s.APIToken == "" {
		return nil, fmt.Errorf("PIPEDRIVE_API_TOKEN is required")
	}
	if len(s.APIToken) < 10 {
		return nil, fmt.Errorf("PIPEDRIVE_API_TOKEN looks too short to be a valid token")
	}
	if s.CompanyDomain == "" {
		return nil, fmt.Errorf("PIPEDRIVE_COMPANY_DOMAIN is required")
	}
	if strings.Contains(s.CompanyDomain, ".") {
		return nil, fmt.Errorf("PIPEDRIVE_COMPANY_DOMAIN must be the subdomain only, not a full URL: %s", s.CompanyDomain)
	}

	if raw := os.Getenv("PIPEDRIVE_TIMEOUT"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			s.Timeout = time.Duration(secs) * time.Second
		} else {
			logger.Warn("invalid PIPEDRIVE_TIMEOUT, using default", "value", raw, "default", DefaultTimeout)
		}
	}
	if raw := os.Getenv("PIPEDRIVE_RETRY_ATTEMPTS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 && n <= 10 {
			s.RetryAttempts = n
		} else {
			logger.Warn("invalid PIPEDRIVE_RETRY_ATTEMPTS, using default", "value", raw, "default", DefaultRetryAttempts)
		}
	}
	if raw := os.Getenv("PIPEDRIVE_RETRY_BACKOFF"); raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil && f >= 0 && f <= 5 {
			s.RetryBackoff = f
		} else {
			logger.Warn("invalid PIPEDRIVE_RETRY_BACKOFF, using default", "value", raw, "default", DefaultRetryBackoff)
		}
	}
	return s, nil
}

// HTTPClient builds the HTTP client outbound Pipedrive calls should use,
// applying the configured timeout. When VerifySSL is off, TLS certificate
// verification is skipped.
func (s *Settings) HTTPClient() *http.Client {
	hc := &http.Client{Timeout: s.Timeout}
	if !s.VerifySSL {
		hc.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return hc
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch raw {
	case "":
		return fallback
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
