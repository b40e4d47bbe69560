package index

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the project-level scan configuration, usually loaded from a
// codescape.yaml at the project root.
type Config struct {
	// IgnorePatterns are doublestar globs excluded from scanning.
	IgnorePatterns []string `yaml:"ignorePatterns"`
	// RootAliases maps an alias prefix written in source to the real path
	// prefix it stands for, e.g. "@/" -> "ui/src/".
	RootAliases map[string]string `yaml:"rootAliases"`
	// InternalRoots are bare-specifier roots that resolve inside the
	// project by convention.
	InternalRoots []string `yaml:"internalRoots"`
	// ExternalPackages are bare-specifier roots known to be third-party.
	ExternalPackages []string `yaml:"externalPackages"`
	// APIClients are generated-client identifiers whose method calls become
	// api-usage references.
	APIClients []string `yaml:"apiClients"`
	// MaxFileBytes caps how large a file may be before extraction skips it.
	MaxFileBytes int64 `yaml:"maxFileBytes"`
}

// DefaultConfig returns the configuration used when no codescape.yaml is
// present.
func DefaultConfig() Config {
	return Config{
		IgnorePatterns: []string{
			".git", "node_modules", "__pycache__", "venv", ".venv",
			"dist", "build", ".next", ".idea",
		},
		RootAliases: map[string]string{
			"@/": "ui/src/",
		},
		InternalRoots:    []string{"app", "components", "utils"},
		ExternalPackages: []string{"react", "react-dom", "react-router-dom", "brain", "databutton", "fastapi", "pydantic"},
		APIClients:       []string{"brain"},
		MaxFileBytes:     1 << 20, // 1 MB
	}
}

// LoadConfig reads and parses a YAML config file. Fields absent from the
// file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
