package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/dikit/errors"
)

// FileSystem abstracts file lookups so loaders can be tested without
// touching the real filesystem.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

type osFileSystem struct{}

func (osFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (osFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds the loader's dependencies and optional explicit
// file paths. Zero value searches standard locations on the real
// filesystem.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption customizes a Load call.
type LoaderOption func(*LoaderConfig)

// WithFileSystem substitutes the filesystem used for lookups.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path, skipping the search.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path, skipping the search.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load reads configuration for appName into cfg. Lookup order: YAML
// config file, then .env file, then process environment variables, with
// later sources overriding earlier ones. Missing files are not errors;
// cfg keeps its zero values.
func Load(appName string, cfg any, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = osFileSystem{}
	}

	configFile := lc.ConfigFile
	if configFile == "" {
		configFile = findFirst(lc.FileSystem, configSearchPaths(appName))
	}
	envFile := lc.EnvFile
	if envFile == "" {
		envFile = findFirst(lc.FileSystem, envSearchPaths(appName))
	}

	v := viper.New()

	if configFile != "" && lc.FileSystem.Exists(configFile) {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("reading %s: %v", configFile, err)).WithCause(err)
		}
	}

	if envFile != "" && lc.FileSystem.Exists(envFile) {
		if err := lc.FileSystem.LoadEnv(envFile); err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("loading %s: %v", envFile, err)).WithCause(err)
		}
	}

	v.AutomaticEnv()
	bindEnvVariants(v)

	if err := v.Unmarshal(cfg); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("unmarshaling config for %s: %v", appName, err)).WithCause(err)
	}
	return nil
}

func findFirst(fs FileSystem, paths []string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

func configSearchPaths(appName string) []string {
	return []string{
		fmt.Sprintf("./cmd/%s/config.yml", appName),
		fmt.Sprintf("../cmd/%s/config.yml", appName),
		"./config/config.yml",
		"../config/config.yml",
		"./config.yml",
	}
}

func envSearchPaths(appName string) []string {
	names := []string{fmt.Sprintf(".env.%s", appName), ".env"}
	bases := []string{".", fmt.Sprintf("./cmd/%s", appName), "./config", ".."}

	paths := make([]string, 0, len(names)*len(bases))
	for _, name := range names {
		for _, base := range bases {
			paths = append(paths, base+"/"+name)
		}
	}
	return paths
}

// bindEnvVariants maps UPPER_SNAKE environment variables onto viper's
// nested keys. CONTAINER_COMPILE_THRESHOLD binds as
// container_compile_threshold, container.compile.threshold, and every
// progressive split such as container.compile_threshold, so nested
// mapstructure keys pick it up regardless of nesting depth.
func bindEnvVariants(v *viper.Viper) {
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) <= 1 {
		return []string{lower}
	}

	seen := map[string]bool{}
	variants := make([]string, 0, len(parts)+2)
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			variants = append(variants, s)
		}
	}

	add(lower)
	add(strings.ReplaceAll(lower, "_", "."))
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
	}
	return variants
}
