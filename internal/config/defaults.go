package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Files: FilesConfig{
			HeaderExtensions: []string{"h", "hpp", "hh", "hxx"},
			SourceExtensions: []string{"c", "cpp", "cc", "cxx"},
			Exclude: []string{
				"build/**",
				"third_party/**",
				"**/CMakeFiles/**",
			},
		},
		Format: FormatConfig{
			BraceStyle:  "new-line-ctor-dtor",
			IndentWidth: 4,
		},
		Generate: GenerateConfig{
			AlwaysMoveComments:  true,
			GetterDefinition:    "inline",
			SetterDefinition:    "inline",
			CaseStyle:           "camelCase",
			RevealNewDefinition: true,
		},
		HeaderGuard: HeaderGuardConfig{
			Style:        "define",
			DefineFormat: "${FILENAME_EXT}",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// ValidBraceStyles lists the accepted format.brace_style values
var ValidBraceStyles = []string{"same-line", "new-line", "new-line-ctor-dtor"}

// ValidDefinitionLocations lists the accepted getter/setter definition values
var ValidDefinitionLocations = []string{"inline", "current-file", "source-file"}

// IsValidDefinitionLocation checks if a definition location is valid
func IsValidDefinitionLocation(location string) bool {
	for _, l := range ValidDefinitionLocations {
		if l == location {
			return true
		}
	}
	return false
}
