package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hargabyte/cppgen/internal/accessor"
	"github.com/hargabyte/cppgen/internal/generate"
	"github.com/hargabyte/cppgen/internal/position"
	"github.com/hargabyte/cppgen/internal/syntax"
	"github.com/hargabyte/cppgen/internal/workspace"
)

// ConfigFileName is the name of the cppgen configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the cppgen configuration directory
const ConfigDirName = ".cppgen"

// Config holds all cppgen configuration
type Config struct {
	Files       FilesConfig       `yaml:"files"`
	Format      FormatConfig      `yaml:"format"`
	Generate    GenerateConfig    `yaml:"generate"`
	HeaderGuard HeaderGuardConfig `yaml:"header_guard"`
	Log         LogConfig         `yaml:"log"`
}

// FilesConfig selects the files of the workspace
type FilesConfig struct {
	HeaderExtensions []string `yaml:"header_extensions" validate:"required,dive,required,excludes=."`
	SourceExtensions []string `yaml:"source_extensions" validate:"required,dive,required,excludes=."`
	Exclude          []string `yaml:"exclude"`
}

// FormatConfig holds layout settings for generated code
type FormatConfig struct {
	BraceStyle          string `yaml:"brace_style" validate:"oneof=same-line new-line new-line-ctor-dtor"`
	IndentWidth         int    `yaml:"indent_width" validate:"min=0,max=16"`
	IndentNamespaceBody bool   `yaml:"indent_namespace_body"`
}

// GenerateConfig holds code generation settings
type GenerateConfig struct {
	ExplicitThis              bool   `yaml:"explicit_this"`
	FriendComparisonOperators bool   `yaml:"friend_comparison_operators"`
	BracedInitialization      bool   `yaml:"braced_initialization"`
	AlwaysMoveComments        bool   `yaml:"always_move_comments"`
	GetterDefinition          string `yaml:"getter_definition" validate:"oneof=inline current-file source-file"`
	SetterDefinition          string `yaml:"setter_definition" validate:"oneof=inline current-file source-file"`
	CaseStyle                 string `yaml:"case_style" validate:"oneof=snake_case camelCase PascalCase"`
	RevealNewDefinition       bool   `yaml:"reveal_new_definition"`
}

// HeaderGuardConfig holds header guard settings
type HeaderGuardConfig struct {
	Style        string `yaml:"style" validate:"oneof=pragma-once define both"`
	DefineFormat string `yaml:"define_format" validate:"required"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads config from .cppgen/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFromPath(filepath.Join(configDir, ConfigFileName))
}

// LoadFromPath reads config from a specific path. Values in the file are
// decoded over the defaults, so a section only needs the keys it changes.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigDir locates the .cppgen directory by walking up from startDir.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .cppgen directory if it doesn't exist.
// Returns the path to the .cppgen directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)
	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return configDir, nil
}

// Validate checks that config values are valid.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s fails %q, got %v", ErrInvalidConfig, yamlPath(fe.Namespace()), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	for _, ext := range cfg.Files.HeaderExtensions {
		if slices.Contains(cfg.Files.SourceExtensions, ext) {
			return fmt.Errorf("%w: extension %q is both a header and a source extension", ErrInvalidConfig, ext)
		}
	}

	if strings.TrimSpace(cfg.HeaderGuard.DefineFormat) == "" {
		return fmt.Errorf("%w: define_format must not be blank", ErrInvalidConfig)
	}

	return nil
}

// yamlPath turns a validator namespace such as "Config.Format.BraceStyle"
// into the config key "format.brace_style".
func yamlPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 0 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if j := strings.IndexByte(p, '['); j >= 0 {
			p = p[:j]
		}
		parts[i] = syntax.ToSnakeCase(p)
	}
	return strings.Join(parts, ".")
}

// SaveDefault writes the default configuration to .cppgen/config.yaml in workDir.
// Creates the .cppgen directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# cppgen configuration\n# Keys left out keep their default value.\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return configPath, nil
}

// WorkspaceOptions returns the file selection settings.
func (c *Config) WorkspaceOptions() workspace.Options {
	return workspace.Options{
		HeaderExtensions: c.Files.HeaderExtensions,
		SourceExtensions: c.Files.SourceExtensions,
		Exclude:          c.Files.Exclude,
	}
}

// GenerateOptions returns the settings that shape generated code.
func (c *Config) GenerateOptions() generate.Options {
	indent := "\t"
	if c.Format.IndentWidth > 0 {
		indent = strings.Repeat(" ", c.Format.IndentWidth)
	}
	return generate.Options{
		Style: position.Style{
			Indent:              indent,
			IndentNamespaceBody: c.Format.IndentNamespaceBody,
			Braces:              position.BraceStyle(c.Format.BraceStyle),
		},
		ExplicitThis:              c.Generate.ExplicitThis,
		FriendComparisonOperators: c.Generate.FriendComparisonOperators,
		BracedInitialization:      c.Generate.BracedInitialization,
		AlwaysMoveComments:        c.Generate.AlwaysMoveComments,
		GetterDefinition:          accessor.DefinitionLocation(c.Generate.GetterDefinition),
		SetterDefinition:          accessor.DefinitionLocation(c.Generate.SetterDefinition),
		CaseStyle:                 syntax.CaseStyle(c.Generate.CaseStyle),
		HeaderGuardStyle:          generate.HeaderGuardStyle(c.HeaderGuard.Style),
		HeaderGuardFormat:         c.HeaderGuard.DefineFormat,
	}
}
