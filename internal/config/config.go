// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/runparts/internal/filter"
	"github.com/matt-FFFFFF/runparts/internal/runner"
	"github.com/spf13/afero"
)

// DefaultUmask is applied before running scripts unless configured otherwise.
const DefaultUmask = "022"

// FsFactory is a function that returns an afero filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// validate checks the struct tags of Config.
var validate = newValidator()

var (
	// ErrListAndTest is returned when list and test mode are both requested.
	ErrListAndTest = errors.New("--list and --test cannot be used together")
	// ErrInvalidUmask is returned when the umask is not an octal number between 0 and 777.
	ErrInvalidUmask = errors.New("invalid umask")
	// ErrInvalidDrainPolicy is returned for an unknown drain policy.
	ErrInvalidDrainPolicy = errors.New("invalid drain policy")
	// ErrNoDirectory is returned when no directory has been given.
	ErrNoDirectory = errors.New("no directory specified")
	// ErrInvalidYaml is returned when the configuration file cannot be parsed.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrReadFile is returned when the configuration file cannot be read.
	ErrReadFile = errors.New("cannot read configuration file")
)

// Config is the complete set of options for one invocation.
type Config struct {
	Dir          string   `yaml:"directory" validate:"required"`
	Args         []string `yaml:"args"`
	Test         bool     `yaml:"test"`
	List         bool     `yaml:"list" validate:"excluded_with=Test"`
	Verbose      bool     `yaml:"verbose"`
	Report       bool     `yaml:"report"`
	Reverse      bool     `yaml:"reverse"`
	ExitOnError  bool     `yaml:"exit_on_error"`
	Umask        string   `yaml:"umask" validate:"umask"`
	LSBSysInit   bool     `yaml:"lsbsysinit"`
	Regex        string   `yaml:"regex"`
	Drain        string   `yaml:"drain" validate:"omitempty,oneof=drain stop"`
	DrainTimeout Duration `yaml:"drain_timeout"`
	Summary      bool     `yaml:"summary"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Umask:        DefaultUmask,
		Drain:        runner.DrainPolicyDrain.String(),
		DrainTimeout: Duration(runner.DefaultDrainTimeout),
	}
}

// Load reads the YAML file at path over the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := afero.ReadFile(FsFactory(), path)
	if err != nil {
		return nil, errors.Join(ErrReadFile, err)
	}

	return Parse(data)
}

// Parse decodes YAML data over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYaml, err)
	}

	return cfg, nil
}

// Validate checks the options and returns every problem found.
func (c *Config) Validate() error {
	var errs []error

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}

		for _, fe := range fieldErrs {
			errs = append(errs, fieldError(fe))
		}
	}

	if _, err := filter.ParseRegex(c.Regex); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func fieldError(fe validator.FieldError) error {
	switch fe.Field() {
	case "Dir":
		return ErrNoDirectory
	case "List":
		return ErrListAndTest
	case "Umask":
		return fmt.Errorf("%w: %q", ErrInvalidUmask, fe.Value())
	case "Drain":
		return fmt.Errorf("%w: %q", ErrInvalidDrainPolicy, fe.Value())
	default:
		return fe
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("umask", func(fl validator.FieldLevel) bool {
		_, err := ParseUmask(fl.Field().String())
		return err == nil
	})

	return v
}

// DrainPolicy returns the parsed drain policy.
func (c *Config) DrainPolicy() (runner.DrainPolicy, error) {
	p, err := runner.ParseDrainPolicy(c.Drain)
	if err != nil {
		return p, fmt.Errorf("%w: %q", ErrInvalidDrainPolicy, c.Drain)
	}

	return p, nil
}

// Filter builds the filename filter.
func (c *Config) Filter() (filter.Filter, error) {
	re, err := filter.ParseRegex(c.Regex)
	if err != nil {
		return filter.Filter{}, err
	}

	return filter.Filter{LSBSysInit: c.LSBSysInit, Regex: re}, nil
}

// ParseUmask parses an octal umask such as "022".
func ParseUmask(s string) (int, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil || v > 0o777 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUmask, s)
	}

	return int(v), nil
}

// Duration is a time.Duration written as a string such as "2s" in YAML.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String implements fmt.Stringer.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalYAML implements yaml.InterfaceUnmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	*d = Duration(v)

	return nil
}

// MarshalYAML implements yaml.InterfaceMarshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}
