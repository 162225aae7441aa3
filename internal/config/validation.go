package config

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var structValidate = validator.New()

// Validate checks a fully decoded GatewayConfig against both the struct
// tags on BackendConfig (required-ness, allowed type values) and the
// semantic, cross-field rules a validator tag cannot express: URL scheme
// prefixes and which fields are required for which backend type.
func Validate(filePath string, cfg GatewayConfig) *ConfigurationErrors {
	errs := &ConfigurationErrors{}

	for name, backend := range cfg {
		if strings.TrimSpace(name) == "" {
			errs.Add(name, "", "backend name must not be blank")
			continue
		}

		if err := structValidate.Struct(backend); err != nil {
			var fieldErrs validator.ValidationErrors
			if !errors.As(err, &fieldErrs) || fieldErrs[0].StructField() == "Type" {
				errs.Add(name, "type", "type must be one of: stdio, sse")
				continue
			}
		}

		switch backend.Type {
		case BackendStdio:
			validateStdio(errs, name, backend)
		case BackendSSE:
			validateSSE(errs, name, backend)
		}
	}

	for _, e := range errs.Errors {
		e.FilePath = filePath
	}

	return errs
}

func validateStdio(errs *ConfigurationErrors, name string, b BackendConfig) {
	if strings.TrimSpace(b.Command) == "" {
		errs.Add(name, "command", "command is required for stdio backends")
	}
	validateEnv(errs, name, "env", b.Env)
}

func validateSSE(errs *ConfigurationErrors, name string, b BackendConfig) {
	if strings.TrimSpace(b.URL) == "" {
		errs.Add(name, "url", "url is required for sse backends")
	} else if !strings.HasPrefix(b.URL, "http://") && !strings.HasPrefix(b.URL, "https://") {
		errs.Add(name, "url", "url must start with http:// or https://")
	}

	if b.LocalLaunch == nil {
		return
	}
	if strings.TrimSpace(b.LocalLaunch.Command) == "" {
		errs.Add(name, "localLaunch.command", "localLaunch.command must not be blank when localLaunch is present")
	}
	validateEnv(errs, name, "localLaunch.env", b.LocalLaunch.Env)
}

func validateEnv(errs *ConfigurationErrors, name, field string, env map[string]string) {
	for k, v := range env {
		if strings.TrimSpace(k) == "" {
			errs.Add(name, field, "environment variable names must not be blank")
			return
		}
		_ = v
	}
}
