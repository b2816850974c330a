package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hargabyte/cppgen/internal/accessor"
	"github.com/hargabyte/cppgen/internal/generate"
	"github.com/hargabyte/cppgen/internal/position"
	"github.com/hargabyte/cppgen/internal/syntax"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Files.HeaderExtensions) != 4 || cfg.Files.HeaderExtensions[0] != "h" {
		t.Errorf("expected header extensions [h hpp hh hxx], got %v", cfg.Files.HeaderExtensions)
	}
	if len(cfg.Files.SourceExtensions) != 4 || cfg.Files.SourceExtensions[1] != "cpp" {
		t.Errorf("expected source extensions [c cpp cc cxx], got %v", cfg.Files.SourceExtensions)
	}

	if cfg.Format.BraceStyle != "new-line-ctor-dtor" {
		t.Errorf("expected brace_style new-line-ctor-dtor, got %s", cfg.Format.BraceStyle)
	}
	if cfg.Format.IndentWidth != 4 {
		t.Errorf("expected indent_width 4, got %d", cfg.Format.IndentWidth)
	}

	if !cfg.Generate.AlwaysMoveComments {
		t.Error("expected always_move_comments to default to true")
	}
	if cfg.Generate.GetterDefinition != "inline" || cfg.Generate.SetterDefinition != "inline" {
		t.Errorf("expected inline accessors, got %s/%s", cfg.Generate.GetterDefinition, cfg.Generate.SetterDefinition)
	}

	if cfg.HeaderGuard.Style != "define" {
		t.Errorf("expected header guard style define, got %s", cfg.HeaderGuard.Style)
	}
	if cfg.HeaderGuard.DefineFormat != "${FILENAME_EXT}" {
		t.Errorf("expected define_format ${FILENAME_EXT}, got %s", cfg.HeaderGuard.DefineFormat)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestIsValidDefinitionLocation(t *testing.T) {
	tests := []struct {
		location string
		valid    bool
	}{
		{"inline", true},
		{"current-file", true},
		{"source-file", true},
		{"header", false},
		{"", false},
		{"Inline", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			result := IsValidDefinitionLocation(tt.location)
			if result != tt.valid {
				t.Errorf("IsValidDefinitionLocation(%q) = %v, want %v", tt.location, result, tt.valid)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "invalid brace style",
			modify: func(c *Config) {
				c.Format.BraceStyle = "k&r"
			},
			wantErr: true,
		},
		{
			name: "tab indentation",
			modify: func(c *Config) {
				c.Format.IndentWidth = 0
			},
			wantErr: false,
		},
		{
			name: "negative indent width",
			modify: func(c *Config) {
				c.Format.IndentWidth = -1
			},
			wantErr: true,
		},
		{
			name: "invalid getter definition",
			modify: func(c *Config) {
				c.Generate.GetterDefinition = "header"
			},
			wantErr: true,
		},
		{
			name: "invalid case style",
			modify: func(c *Config) {
				c.Generate.CaseStyle = "kebab-case"
			},
			wantErr: true,
		},
		{
			name: "invalid header guard style",
			modify: func(c *Config) {
				c.HeaderGuard.Style = "ifndef"
			},
			wantErr: true,
		},
		{
			name: "blank define format",
			modify: func(c *Config) {
				c.HeaderGuard.DefineFormat = "  "
			},
			wantErr: true,
		},
		{
			name: "no header extensions",
			modify: func(c *Config) {
				c.Files.HeaderExtensions = nil
			},
			wantErr: true,
		},
		{
			name: "extension with dot",
			modify: func(c *Config) {
				c.Files.SourceExtensions = []string{".cpp"}
			},
			wantErr: true,
		},
		{
			name: "extension in both lists",
			modify: func(c *Config) {
				c.Files.SourceExtensions = append(c.Files.SourceExtensions, "h")
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			modify: func(c *Config) {
				c.Log.Level = "verbose"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestYamlPath(t *testing.T) {
	tests := map[string]string{
		"Config.Format.BraceStyle":         "format.brace_style",
		"Config.Files.SourceExtensions[0]": "files.source_extensions",
		"Config.HeaderGuard.DefineFormat":  "header_guard.define_format",
		"Config.Generate.GetterDefinition": "generate.getter_definition",
	}
	for in, want := range tests {
		if got := yamlPath(in); got != want {
			t.Errorf("yamlPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFindConfigDir(t *testing.T) {
	tmpDir := t.TempDir()

	projectDir := filepath.Join(tmpDir, "project")
	subDir := filepath.Join(projectDir, "subdir")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	t.Run("no config dir returns error", func(t *testing.T) {
		_, err := FindConfigDir(subDir)
		if err == nil {
			t.Error("expected error when no .cppgen directory exists")
		}
	})

	configDir := filepath.Join(projectDir, ConfigDirName)
	if err := os.Mkdir(configDir, 0755); err != nil {
		t.Fatal(err)
	}

	t.Run("finds config dir in current directory", func(t *testing.T) {
		found, err := FindConfigDir(projectDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if found != configDir {
			t.Errorf("expected %s, got %s", configDir, found)
		}
	})

	t.Run("finds config dir in parent directory", func(t *testing.T) {
		found, err := FindConfigDir(subDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if found != configDir {
			t.Errorf("expected %s, got %s", configDir, found)
		}
	})
}

func TestEnsureConfigDir(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("creates config directory", func(t *testing.T) {
		dir, err := EnsureConfigDir(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expectedDir := filepath.Join(tmpDir, ConfigDirName)
		if dir != expectedDir {
			t.Errorf("expected %s, got %s", expectedDir, dir)
		}

		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("config directory not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("expected directory, got file")
		}
	})

	t.Run("returns existing directory", func(t *testing.T) {
		dir, err := EnsureConfigDir(tmpDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if dir != filepath.Join(tmpDir, ConfigDirName) {
			t.Errorf("unexpected directory %s", dir)
		}
	})
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("loads valid config file", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "config.yaml")
		content := `
files:
  source_extensions: [cpp]
format:
  brace_style: same-line
  indent_width: 2
header_guard:
  style: both
`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadFromPath(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Files.SourceExtensions) != 1 {
			t.Errorf("expected 1 source extension, got %d", len(cfg.Files.SourceExtensions))
		}
		if cfg.Format.BraceStyle != "same-line" {
			t.Errorf("expected brace_style same-line, got %s", cfg.Format.BraceStyle)
		}
		if cfg.HeaderGuard.Style != "both" {
			t.Errorf("expected header guard style both, got %s", cfg.HeaderGuard.Style)
		}

		// Keys left out keep their defaults
		if len(cfg.Files.HeaderExtensions) != 4 {
			t.Errorf("expected default header extensions, got %v", cfg.Files.HeaderExtensions)
		}
		if !cfg.Generate.AlwaysMoveComments {
			t.Error("expected default always_move_comments")
		}
		if cfg.HeaderGuard.DefineFormat != "${FILENAME_EXT}" {
			t.Errorf("expected default define_format, got %s", cfg.HeaderGuard.DefineFormat)
		}
	})

	t.Run("returns defaults for non-existent file", func(t *testing.T) {
		cfg, err := LoadFromPath(filepath.Join(tmpDir, "nonexistent.yaml"))
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if cfg.Format.BraceStyle != DefaultConfig().Format.BraceStyle {
			t.Errorf("expected default brace style, got %s", cfg.Format.BraceStyle)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "invalid.yaml")
		if err := os.WriteFile(configPath, []byte("invalid: yaml: content"), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := LoadFromPath(configPath)
		if err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("returns error for invalid config values", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "bad-values.yaml")
		content := `
generate:
  setter_definition: elsewhere
`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := LoadFromPath(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("returns defaults when no config dir exists", func(t *testing.T) {
		cfg, err := Load(tmpDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if cfg.HeaderGuard.Style != DefaultConfig().HeaderGuard.Style {
			t.Errorf("expected default config")
		}
	})

	t.Run("loads config from .cppgen directory", func(t *testing.T) {
		configDir := filepath.Join(tmpDir, ConfigDirName)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			t.Fatal(err)
		}

		content := `
header_guard:
  style: pragma-once
`
		configPath := filepath.Join(configDir, ConfigFileName)
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(tmpDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if cfg.HeaderGuard.Style != "pragma-once" {
			t.Errorf("expected style pragma-once, got %s", cfg.HeaderGuard.Style)
		}
	})
}

func TestSaveDefault(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("creates default config file", func(t *testing.T) {
		configPath, err := SaveDefault(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expectedPath := filepath.Join(tmpDir, ConfigDirName, ConfigFileName)
		if configPath != expectedPath {
			t.Errorf("expected path %s, got %s", expectedPath, configPath)
		}

		cfg, err := LoadFromPath(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if cfg.Format.IndentWidth != DefaultConfig().Format.IndentWidth {
			t.Errorf("saved config doesn't match defaults")
		}
	})

	t.Run("fails if config already exists", func(t *testing.T) {
		_, err := SaveDefault(tmpDir)
		if err == nil {
			t.Error("expected error when config already exists")
		}
	})
}

func TestGenerateOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format.IndentWidth = 2
	cfg.Generate.SetterDefinition = "source-file"
	cfg.HeaderGuard.Style = "pragma-once"

	opts := cfg.GenerateOptions()
	if opts.Style.Indent != "  " {
		t.Errorf("expected two space indent, got %q", opts.Style.Indent)
	}
	if opts.Style.Braces != position.NewLineCtorDtor {
		t.Errorf("expected braces %s, got %s", position.NewLineCtorDtor, opts.Style.Braces)
	}
	if opts.SetterDefinition != accessor.SourceFile {
		t.Errorf("expected setter definition source-file, got %s", opts.SetterDefinition)
	}
	if opts.CaseStyle != syntax.CamelCase {
		t.Errorf("expected camelCase, got %s", opts.CaseStyle)
	}
	if opts.HeaderGuardStyle != generate.PragmaOnce {
		t.Errorf("expected pragma-once, got %s", opts.HeaderGuardStyle)
	}

	cfg.Format.IndentWidth = 0
	if got := cfg.GenerateOptions().Style.Indent; got != "\t" {
		t.Errorf("expected tab indent, got %q", got)
	}
}

func TestWorkspaceOptions(t *testing.T) {
	cfg := DefaultConfig()
	opts := cfg.WorkspaceOptions()
	if len(opts.HeaderExtensions) != 4 || len(opts.SourceExtensions) != 4 {
		t.Errorf("unexpected extensions %v %v", opts.HeaderExtensions, opts.SourceExtensions)
	}
	if len(opts.Exclude) != len(cfg.Files.Exclude) {
		t.Errorf("expected %d exclude patterns, got %d", len(cfg.Files.Exclude), len(opts.Exclude))
	}
}
