// Package config provides configuration management for formgate.
//
// Configuration is read with viper from a YAML, JSON or TOML file, layered over
// built-in defaults and under FORMGATE_* environment variables. The result is
// validated with go-playground/validator struct tags plus a few cross-field
// checks (cron schedules, redaction regexes, connection pool bounds).
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("formgate.yaml")                 // file only
//	cfg, err := config.LoadConfigWithEnvOverrides("formgate.yaml") // file + env
//
// Commands that bind flags build the viper instance themselves:
//
//	v := config.NewViper()
//	_ = v.BindPFlag("forms.path", cmd.Flags().Lookup("forms"))
//	cfg, err := config.LoadFromViper(v, path)
//
// # Environment Variable Overrides
//
// Keys map to variables by upper-casing and replacing dots with underscores:
//
//   - FORMGATE_FORMS_PATH overrides forms.path
//   - FORMGATE_ENGINE_MAX_DEPTH overrides engine.max_depth
//   - FORMGATE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//   - FORMGATE_FORMS_EXTENSIONS=".yaml,.json" sets a list
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the file
//  3. Environment variables
//  4. Flags bound to the viper instance
//
// # Validation
//
// Validate collects every problem into a ValidationError whose FieldErrors use
// the dotted yaml path of the offending key. errors.Is(err, ErrInvalidConfig)
// matches any of them.
package config
