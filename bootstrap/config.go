package bootstrap

import (
	"github.com/kbukum/dikit/config"
)

// Config is the interface constraint for application configuration
// types. Any struct embedding config.Settings (value embedding)
// satisfies it via promoted methods.
//
//	type AppConfig struct {
//	    config.Settings `yaml:",inline" mapstructure:",squash"`
//	    Database DatabaseConfig `yaml:"database" mapstructure:"database"`
//	}
//
//	app, err := bootstrap.NewApp(&cfg)
type Config interface {
	GetSettings() *config.Settings
	ApplyDefaults()
	Validate() error
}
