// Package cfgloader loads the service configuration at startup and
// halts the process when it is unusable.
package cfgloader

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Recognized values of the ENVIRONMENT variable.
const (
	EnvProduction = "production"
	EnvStaging    = "staging"
	EnvDev        = "dev"
	EnvLocal      = "local"
	EnvTest       = "test"
)

// MustLoad reads config/${ENVIRONMENT}.yaml into T and exits the
// process on any problem: unknown environment, missing file, bad YAML
// or a failed `validate` tag.
//
// Before parsing, a .env file (if present) is loaded and ${VAR}
// references inside the YAML are expanded, so secrets can stay out of
// the file. Fields may declare fallbacks with the `default` struct
// tag; they apply to whatever the YAML left unset. Validation runs
// last, over the fully assembled struct.
//
//	type Config struct {
//	    Host     string `yaml:"host" validate:"required"`
//	    Port     int    `yaml:"port" default:"8080"`
//	    LogLevel string `yaml:"log_level" default:"info"`
//	}
//
// After a successful load the config is logged with `mask:"true"`
// fields hidden, unless WithSilent is given.
func MustLoad[T any](opts ...Option) T {
	var config T

	if reflect.TypeFor[T]().Kind() == reflect.Ptr {
		fatal("arg config must not be a pointer")
	}

	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}

	_ = godotenv.Load()

	env := os.Getenv("ENVIRONMENT")
	if !slices.Contains([]string{EnvProduction, EnvStaging, EnvDev, EnvLocal, EnvTest}, env) {
		fatal("ENVIRONMENT env variable is not set or invalid. Choices are: production, staging, dev, local, test")
	}

	path := fmt.Sprintf("./config/%s.yaml", env)
	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		fatal("config file not found in the path %s - Make sure that the yaml file exists for each environment", path)
	case err != nil:
		fatal("failed to read config file %s: %v", path, err)
	}

	raw = []byte(os.ExpandEnv(string(raw)))

	if err := yaml.Unmarshal(raw, &config); err != nil {
		fatal("failed to unmarshal %s config file: %v", env, err)
	}

	if err := defaults.Set(&config); err != nil {
		fatal("failed to set default values for config: %s", err)
	}

	if failures := checkConfig(&config); failures != "" {
		fatal("invalid fields in %s config -> %s", env, failures)
	}

	if !options.Silent {
		printConfig(config)
	}

	return config
}

// fatal reports a startup configuration problem and stops the process.
func fatal(format string, args ...any) {
	slog.Error("[cfgloader]: " + fmt.Sprintf(format, args...))
	os.Exit(1)
}

// checkConfig runs the `validate` tags over the assembled config and
// renders all failures on one line, empty when everything passes.
func checkConfig(config any) string {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(config)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ""
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		constraint := fe.Tag()
		if fe.Param() != "" {
			constraint += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Namespace(), constraint))
	}

	return strings.Join(parts, ",  ")
}
