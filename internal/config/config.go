// Package config resolves djdep settings from defaults, the project's
// .djdep.yaml, DJDEP_* environment variables and a project .env file.
// Command-line flags are layered on top by the commands themselves.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/LegacyCodeHQ/djdep/depgraph"
)

const (
	// FileName is the project-level configuration file.
	FileName = ".djdep.yaml"
	// EnvFileName is read for DJDEP_* variables not set in the process environment.
	EnvFileName = ".env"
	// EnvPrefix prefixes every environment variable.
	EnvPrefix = "DJDEP_"
	// GranularityMax disables collapsing.
	GranularityMax = "max"
)

// Config holds resolved settings for a project.
type Config struct {
	Granularity   int
	AllowInternal bool
	IgnoreTests   bool
	Strict        bool
	Format        string
	ExcludeDirs   []string
	Neo4j         Neo4jConfig
}

// Neo4jConfig holds connection settings for the export command.
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
}

type fileConfig struct {
	Granularity   string   `yaml:"granularity"`
	AllowInternal *bool    `yaml:"allow_internal"`
	IgnoreTests   *bool    `yaml:"ignore_tests"`
	Strict        *bool    `yaml:"strict"`
	Format        string   `yaml:"format"`
	ExcludeDirs   []string `yaml:"exclude_dirs,omitempty"`
	Neo4j         struct {
		URI      string `yaml:"uri"`
		Username string `yaml:"username"`
		Password string `yaml:"password,omitempty"`
		Database string `yaml:"database"`
	} `yaml:"neo4j"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Granularity: 1,
		Format:      "json",
		Neo4j: Neo4jConfig{
			URI:      "neo4j://localhost:7687",
			Username: "neo4j",
			Database: "neo4j",
		},
	}
}

// Load resolves configuration for projectDir. Environment variables take
// precedence over the configuration file.
func Load(projectDir string) (Config, error) {
	cfg := Default()

	if err := cfg.applyFile(filepath.Join(projectDir, FileName)); err != nil {
		return Config{}, err
	}

	dotenv, err := readDotenv(filepath.Join(projectDir, EnvFileName))
	if err != nil {
		return Config{}, err
	}
	lookup := func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := dotenv[key]
		return value, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Marshal renders cfg in the .djdep.yaml layout. The Neo4j password is left
// out; it belongs in the environment or .env.
func Marshal(cfg Config) ([]byte, error) {
	file := fileConfig{
		Granularity:   FormatGranularity(cfg.Granularity),
		AllowInternal: &cfg.AllowInternal,
		IgnoreTests:   &cfg.IgnoreTests,
		Strict:        &cfg.Strict,
		Format:        cfg.Format,
		ExcludeDirs:   cfg.ExcludeDirs,
	}
	file.Neo4j.URI = cfg.Neo4j.URI
	file.Neo4j.Username = cfg.Neo4j.Username
	file.Neo4j.Database = cfg.Neo4j.Database

	content, err := yaml.Marshal(&file)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return content, nil
}

func readDotenv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return values, nil
}

func (c *Config) applyFile(path string) error {
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(content, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if file.Granularity != "" {
		granularity, err := ParseGranularity(file.Granularity)
		if err != nil {
			return fmt.Errorf("invalid granularity in %s: %w", path, err)
		}
		c.Granularity = granularity
	}
	if file.AllowInternal != nil {
		c.AllowInternal = *file.AllowInternal
	}
	if file.IgnoreTests != nil {
		c.IgnoreTests = *file.IgnoreTests
	}
	if file.Strict != nil {
		c.Strict = *file.Strict
	}
	if file.Format != "" {
		c.Format = file.Format
	}
	if len(file.ExcludeDirs) > 0 {
		c.ExcludeDirs = file.ExcludeDirs
	}
	c.Neo4j.URI = firstNonEmpty(file.Neo4j.URI, c.Neo4j.URI)
	c.Neo4j.Username = firstNonEmpty(file.Neo4j.Username, c.Neo4j.Username)
	c.Neo4j.Password = firstNonEmpty(file.Neo4j.Password, c.Neo4j.Password)
	c.Neo4j.Database = firstNonEmpty(file.Neo4j.Database, c.Neo4j.Database)

	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if raw, ok := lookupTrimmed(lookup, "GRANULARITY"); ok {
		granularity, err := ParseGranularity(raw)
		if err != nil {
			return fmt.Errorf("invalid %sGRANULARITY: %w", EnvPrefix, err)
		}
		c.Granularity = granularity
	}

	for name, target := range map[string]*bool{
		"ALLOW_INTERNAL": &c.AllowInternal,
		"IGNORE_TESTS":   &c.IgnoreTests,
		"STRICT":         &c.Strict,
	} {
		raw, ok := lookupTrimmed(lookup, name)
		if !ok {
			continue
		}
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %q is not a boolean", EnvPrefix, name, raw)
		}
		*target = value
	}

	if raw, ok := lookupTrimmed(lookup, "FORMAT"); ok {
		c.Format = raw
	}
	if raw, ok := lookupTrimmed(lookup, "EXCLUDE_DIRS"); ok {
		c.ExcludeDirs = splitList(raw)
	}
	if raw, ok := lookupTrimmed(lookup, "NEO4J_URI"); ok {
		c.Neo4j.URI = raw
	}
	if raw, ok := lookupTrimmed(lookup, "NEO4J_USERNAME"); ok {
		c.Neo4j.Username = raw
	}
	if raw, ok := lookupTrimmed(lookup, "NEO4J_PASSWORD"); ok {
		c.Neo4j.Password = raw
	}
	if raw, ok := lookupTrimmed(lookup, "NEO4J_DATABASE"); ok {
		c.Neo4j.Database = raw
	}

	return nil
}

// ParseGranularity parses a positive integer or "max".
func ParseGranularity(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, GranularityMax) {
		return depgraph.MaxGranularity, nil
	}

	granularity, err := strconv.Atoi(raw)
	if err != nil || granularity < 1 {
		return 0, fmt.Errorf("%w: %q", depgraph.ErrInvalidGranularity, raw)
	}
	return granularity, nil
}

// FormatGranularity is the inverse of ParseGranularity.
func FormatGranularity(granularity int) string {
	if granularity == depgraph.MaxGranularity {
		return GranularityMax
	}
	return strconv.Itoa(granularity)
}

// PipelineOptions returns the graph pipeline settings of c.
func (c Config) PipelineOptions() depgraph.PipelineOptions {
	return depgraph.PipelineOptions{
		Granularity:   c.Granularity,
		AllowInternal: c.AllowInternal,
		IgnoreTests:   c.IgnoreTests,
	}
}

func lookupTrimmed(lookup func(string) (string, bool), name string) (string, bool) {
	value, ok := lookup(EnvPrefix + name)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
