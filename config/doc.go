// Package config provides configuration loading and validation for
// applications built on the dikit container.
//
// Configuration merges three sources: a YAML config file, a .env file,
// and process environment variables, each overriding the last. Settings
// carries the fields every application needs, including the container's
// compilation tuning; projects embed it in their own config structs.
//
//	type AppConfig struct {
//	    config.Settings `yaml:",inline" mapstructure:",squash"`
//	}
//
//	var cfg AppConfig
//	err := config.Load("my-app", &cfg)
package config
