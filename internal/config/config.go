// Package config provides configuration loading and validation for the CLI.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed config.schema.json
var schemaJSON string

// Environment variables consulted for the database connection string, in order.
var databaseURLEnv = []string{"DATABASE_URL", "SUPABASE_DB_URL"}

// placeholderMarkers are fragments of the sample values shipped in .env.example.
var placeholderMarkers = []string{"VOTRE-PROJET", "YOUR-PROJECT", "PASTE_", "CHANGE_ME", "<", ">"}

// ListingPage is a discovery listing page as written in the config file.
type ListingPage struct {
	Label string `json:"label,omitempty"`
	URL   string `json:"url" validate:"required,http_url"`
}

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	DatabaseURL          string        `json:"database_url,omitempty"`          // PostgreSQL connection URL
	UserAgent            string        `json:"user_agent,omitempty"`            // User-Agent for document and listing requests
	TimeoutSeconds       int           `json:"timeout_seconds,omitempty"`       // Per-request timeout
	MaxDocumentMB        int           `json:"max_document_mb,omitempty"`       // Largest accepted download
	DiscoveryConcurrency int           `json:"discovery_concurrency,omitempty"` // Listing pages fetched at once
	ListingPages         []ListingPage `json:"listing_pages,omitempty"`         // Overrides the built-in listing pages
}

// Defaults returns the values used when neither the config file nor flags set a field.
func Defaults() Config {
	return Config{
		TimeoutSeconds:       30,
		MaxDocumentMB:        64,
		DiscoveryConcurrency: 4,
	}
}

// LoadConfig loads configuration from a JSON file and checks it against the embedded schema.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, &ConfigurationError{Message: "config path is empty"}
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("failed to read config file %s", path), Cause: err}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigurationError{Message: "failed to parse config JSON", Cause: err}
	}

	if err := validateSchema(data); err != nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("invalid config file %s", path), Cause: err}
	}

	return &cfg, nil
}

func validateSchema(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed during load: %w", err)
	}
	if result.Valid() {
		return nil
	}

	schemaErr := &SchemaError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		schemaErr.Errors = append(schemaErr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return schemaErr
}

var validate = validator.New()

// Validate checks a merged configuration before it is used.
func (c *Config) Validate() error {
	if c.TimeoutSeconds < 0 {
		return &ConfigurationError{Message: "timeout_seconds cannot be negative"}
	}
	if c.MaxDocumentMB < 0 {
		return &ConfigurationError{Message: "max_document_mb cannot be negative"}
	}
	if c.DiscoveryConcurrency < 0 {
		return &ConfigurationError{Message: "discovery_concurrency cannot be negative"}
	}
	for i, page := range c.ListingPages {
		if err := validate.Struct(page); err != nil {
			return &ConfigurationError{Message: fmt.Sprintf("listing_pages[%d] has an invalid url %q", i, page.URL), Cause: err}
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.UserAgent == "" {
		result.UserAgent = defaults.UserAgent
	}
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if result.MaxDocumentMB == 0 {
		result.MaxDocumentMB = defaults.MaxDocumentMB
	}
	if result.DiscoveryConcurrency == 0 {
		result.DiscoveryConcurrency = defaults.DiscoveryConcurrency
	}
	if len(result.ListingPages) == 0 {
		result.ListingPages = defaults.ListingPages
	}

	return result
}

// Timeout returns TimeoutSeconds as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MaxDocumentBytes returns MaxDocumentMB in bytes.
func (c *Config) MaxDocumentBytes() int64 {
	return int64(c.MaxDocumentMB) << 20
}

// ResolveDatabaseURL picks the connection string from the flag, then the config file, then the
// environment. A missing or placeholder value is a *ConfigurationError.
func ResolveDatabaseURL(flagValue, fileValue string) (string, error) {
	candidates := []string{flagValue, fileValue}
	for _, name := range databaseURLEnv {
		candidates = append(candidates, os.Getenv(name))
	}

	for _, v := range candidates {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if IsPlaceholder(v) {
			return "", &ConfigurationError{
				Message: "database URL still holds a placeholder value; set DATABASE_URL (or SUPABASE_DB_URL) to your project's connection string",
			}
		}
		return v, nil
	}

	return "", &ConfigurationError{
		Message: "database URL required: set --db-url, database_url in the config file, or DATABASE_URL / SUPABASE_DB_URL",
	}
}

// IsPlaceholder reports whether v looks like an unfilled sample value.
func IsPlaceholder(v string) bool {
	for _, marker := range placeholderMarkers {
		if strings.Contains(v, marker) {
			return true
		}
	}
	return false
}
