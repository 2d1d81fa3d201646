package elmgen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"gopkg.in/yaml.v3"

	"github.com/broady/elmgen/elmgen/sink"
)

// Provider names accepted by Config.Provider.
const (
	ProviderSource     = "source"
	ProviderReflection = "reflection"
	ProviderJSON       = "json"
)

// DefaultConfigFile is the config file the CLI reads when none is named.
const DefaultConfigFile = "elmgen.yaml"

// Config holds the configuration for code generation.
// It is usually loaded from elmgen.yaml:
//
//	module: Api.Types
//	out_dir: ./frontend/src
//	packages: [./api]
//	query: [SearchParams]
type Config struct {
	// Module is the dotted Elm module name, e.g. "Api.Types".
	// The file is written to OutDir/Api/Types.elm.
	Module string `yaml:"module" schema:"module" validate:"required,elm_module"`

	// OutDir is the Elm source directory the module is written under.
	// Default: "."
	OutDir string `yaml:"out_dir" schema:"out_dir"`

	// Provider selects the type extraction strategy.
	// "source" (default) - analyzes Go packages, with doc comments and //elm: directives
	// "reflection" - runtime reflection over Go values passed to FromTypes
	// "json" - reads a JSON IR document from Input
	Provider string `yaml:"provider" schema:"provider" validate:"omitempty,oneof=source reflection json"`

	// Packages are the Go package patterns the source provider loads.
	Packages []string `yaml:"packages" schema:"packages" validate:"dive,required"`

	// Types restricts generation to these root types and what they reference.
	// Empty means every exported type of Packages.
	Types []string `yaml:"types" schema:"types" validate:"dive,required"`

	// Input is the JSON IR document read by the json provider.
	Input string `yaml:"input" schema:"input"`

	// Query names record types that also get a urlEncode function.
	Query []string `yaml:"query" schema:"query" validate:"dive,required"`

	// QueryFields names unit-only sums that also get a queryFieldEncoder
	// function. Sums referenced by Query types are included automatically.
	QueryFields []string `yaml:"query_fields" schema:"query_fields" validate:"dive,required"`

	// Header is a comment placed below the module line, e.g. a "generated
	// by" notice.
	Header string `yaml:"header" schema:"header"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a YAML config. Unknown keys are an error.
func ParseConfig(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// ApplyOverrides sets fields from key=value pairs, as given to the CLI's
// --set flag. Keys are the YAML keys; list keys may repeat or use commas.
//
//	module=Api.Types
//	query=SearchParams,Filter
func (c *Config) ApplyOverrides(pairs []string) error {
	if len(pairs) == 0 {
		return nil
	}
	values := make(map[string][]string)
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("invalid override %q, want key=value", pair)
		}
		if listKeys[key] {
			for _, item := range strings.Split(value, ",") {
				if item = strings.TrimSpace(item); item != "" {
					values[key] = append(values[key], item)
				}
			}
			continue
		}
		values[key] = append(values[key], value)
	}

	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(false)
	if err := dec.Decode(c, values); err != nil {
		return fmt.Errorf("applying overrides: %w", err)
	}
	return nil
}

var listKeys = map[string]bool{
	"packages":     true,
	"types":        true,
	"query":        true,
	"query_fields": true,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("elm_module", func(fl validator.FieldLevel) bool {
		return sink.ValidateModuleName(fl.Field().String()) == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate checks the config after defaults are applied.
func (c *Config) Validate() error {
	cfg := applyConfigDefaults(c)
	if err := cfg.check(); err != nil {
		return err
	}
	if cfg.Provider == ProviderSource && len(cfg.Packages) == 0 {
		return errors.New("config: packages is required when provider is \"source\"")
	}
	if cfg.Provider == ProviderJSON && cfg.Input == "" {
		return errors.New("config: input is required when provider is \"json\"")
	}
	return nil
}

// check runs the struct tag validations.
func (c *Config) check() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("config: %s", describeFieldError(fe)))
	}
	return errors.Join(errs...)
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s, got %q", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "elm_module":
		return fmt.Sprintf("%s: %v", fe.Field(), sink.ValidateModuleName(fmt.Sprint(fe.Value())))
	}
	return fmt.Sprintf("%s failed %q validation", fe.Namespace(), fe.Tag())
}

// applyConfigDefaults returns a copy of cfg with defaults filled in.
func applyConfigDefaults(cfg *Config) *Config {
	result := *cfg
	if result.Provider == "" {
		result.Provider = ProviderSource
	}
	if result.OutDir == "" {
		result.OutDir = "."
	}
	return &result
}
