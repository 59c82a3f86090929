package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// FeatureFlags controls which tool groups get registered with the MCP
// server. Resolution order per feature: config file, then the
// PIPEDRIVE_FEATURE_{NAME} env var, then enabled.
type FeatureFlags struct {
	fromFile map[string]bool
}

type featureFile struct {
	Features map[string]bool `json:"features"`
}

// LoadFeatures reads the optional feature config file named by
// FEATURE_CONFIG_PATH. A missing env var means no file-based overrides; a
// named but unreadable or malformed file is an error.
func LoadFeatures() (*FeatureFlags, error) {
	path := strings.TrimSpace(os.Getenv("FEATURE_CONFIG_PATH"))
	if path == "" {
		return &FeatureFlags{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading feature config %s: %w", path, err)
	}
	var parsed featureFile
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parsing feature config %s: %w", path, err)
	}
	return &FeatureFlags{fromFile: parsed.Features}, nil
}

// Enabled reports whether the named feature group should be registered.
func (f *FeatureFlags) Enabled(name string) bool {
	if f.fromFile != nil {
		if v, ok := f.fromFile[name]; ok {
			return v
		}
	}
	if raw, ok := os.LookupEnv("PIPEDRIVE_FEATURE_" + strings.ToUpper(name)); ok {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return true
}
