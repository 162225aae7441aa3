package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads and validates the gateway's backend configuration file. A
// missing file, malformed JSON, or a non-object root are each reported as a
// single ConfigurationError; field-level problems are collected across
// every backend entry instead of stopping at the first one.
func Load(path string) (GatewayConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigurationError{FilePath: path, Message: "configuration file does not exist"}
		}
		return nil, &ConfigurationError{FilePath: path, Message: fmt.Sprintf("failed to read configuration file: %v", err)}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigurationError{FilePath: path, Message: fmt.Sprintf("configuration file is not a valid JSON object: %v", err)}
	}

	cfg := make(GatewayConfig, len(raw))
	for name, entry := range raw {
		var backend BackendConfig
		if err := json.Unmarshal(entry, &backend); err != nil {
			return nil, &ConfigurationError{FilePath: path, Backend: name, Message: fmt.Sprintf("backend entry is not a valid object: %v", err)}
		}
		cfg[name] = backend
	}

	if errs := Validate(path, cfg); errs.HasErrors() {
		return nil, errs
	}

	return cfg, nil
}
