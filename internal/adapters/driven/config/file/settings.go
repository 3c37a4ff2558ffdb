package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/acta-dev/acta-mcp/internal/core/domain"
)

// Settings holds the full server configuration, mirroring the sections of
// the TOML config file.
type Settings struct {
	Upstream  UpstreamSettings  `toml:"upstream"`
	Breaker   BreakerSettings   `toml:"breaker"`
	Documents DocumentSettings  `toml:"documents"`
	Results   ResultSetSettings `toml:"results"`
}

// UpstreamSettings configures the legal act API client and its response cache.
type UpstreamSettings struct {
	// BaseURL overrides the upstream endpoint. Empty uses the built-in default.
	BaseURL string `toml:"base_url"`

	// TimeoutSeconds is the per-request HTTP timeout.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// CacheCapacity bounds the number of cached upstream responses.
	CacheCapacity int `toml:"cache_capacity"`

	// SearchTTLMinutes is the cache TTL for search responses.
	SearchTTLMinutes int `toml:"search_ttl_minutes"`

	// BrowseTTLMinutes is the cache TTL for yearly journal listings.
	BrowseTTLMinutes int `toml:"browse_ttl_minutes"`

	// TextTTLMinutes is the cache TTL for act text responses.
	TextTTLMinutes int `toml:"text_ttl_minutes"`
}

// BreakerSettings configures the upstream circuit breaker.
type BreakerSettings struct {
	FailureThreshold       int `toml:"failure_threshold"`
	RecoveryTimeoutSeconds int `toml:"recovery_timeout_seconds"`
	HalfOpenMaxCalls       int `toml:"half_open_max_calls"`
}

// DocumentSettings configures the in-memory document store.
type DocumentSettings struct {
	MaxDocuments     int `toml:"max_documents"`
	MaxTotalBytes    int `toml:"max_total_bytes"`
	MaxDocumentBytes int `toml:"max_document_bytes"`
	TTLMinutes       int `toml:"ttl_minutes"`
}

// ResultSetSettings configures the in-memory result set store.
type ResultSetSettings struct {
	MaxSets    int `toml:"max_sets"`
	TTLMinutes int `toml:"ttl_minutes"`
}

// Defaults returns the built-in settings used when no config file exists.
func Defaults() Settings {
	return Settings{
		Upstream: UpstreamSettings{
			TimeoutSeconds:   30,
			CacheCapacity:    200,
			SearchTTLMinutes: 10,
			BrowseTTLMinutes: 60,
			TextTTLMinutes:   60,
		},
		Breaker: BreakerSettings{
			FailureThreshold:       5,
			RecoveryTimeoutSeconds: 60,
			HalfOpenMaxCalls:       2,
		},
		Documents: DocumentSettings{
			MaxDocuments:     10,
			MaxTotalBytes:    50 * 1024 * 1024,
			MaxDocumentBytes: 10 * 1024 * 1024,
			TTLMinutes:       60,
		},
		Results: ResultSetSettings{
			MaxSets:    50,
			TTLMinutes: 30,
		},
	}
}

// DefaultPath returns the default config file location, ~/.acta/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".acta", "config.toml"), nil
}

// Load reads settings from the TOML file at path. Settings start from the
// defaults, so a partial file only overrides the sections it names. A
// missing file returns the defaults unchanged.
func Load(path string) (Settings, error) {
	settings := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return Settings{}, err
	}

	if err := toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidConfig, path, err)
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate checks every section for usable values.
func (s Settings) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"upstream.timeout_seconds", s.Upstream.TimeoutSeconds},
		{"upstream.cache_capacity", s.Upstream.CacheCapacity},
		{"upstream.search_ttl_minutes", s.Upstream.SearchTTLMinutes},
		{"upstream.browse_ttl_minutes", s.Upstream.BrowseTTLMinutes},
		{"upstream.text_ttl_minutes", s.Upstream.TextTTLMinutes},
		{"breaker.failure_threshold", s.Breaker.FailureThreshold},
		{"breaker.recovery_timeout_seconds", s.Breaker.RecoveryTimeoutSeconds},
		{"breaker.half_open_max_calls", s.Breaker.HalfOpenMaxCalls},
		{"documents.max_documents", s.Documents.MaxDocuments},
		{"documents.max_total_bytes", s.Documents.MaxTotalBytes},
		{"documents.max_document_bytes", s.Documents.MaxDocumentBytes},
		{"documents.ttl_minutes", s.Documents.TTLMinutes},
		{"results.max_sets", s.Results.MaxSets},
		{"results.ttl_minutes", s.Results.TTLMinutes},
	}
	for _, check := range checks {
		if check.value < 1 {
			return fmt.Errorf("%w: %s must be >= 1, got %d", domain.ErrInvalidConfig, check.name, check.value)
		}
	}
	if s.Documents.MaxTotalBytes < s.Documents.MaxDocumentBytes {
		return fmt.Errorf("%w: documents.max_total_bytes (%d) must be >= documents.max_document_bytes (%d)",
			domain.ErrInvalidConfig, s.Documents.MaxTotalBytes, s.Documents.MaxDocumentBytes)
	}
	return nil
}

// Timeout returns the upstream HTTP timeout.
func (s UpstreamSettings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// SearchTTL returns the search response cache TTL.
func (s UpstreamSettings) SearchTTL() time.Duration {
	return time.Duration(s.SearchTTLMinutes) * time.Minute
}

// BrowseTTL returns the yearly journal listing cache TTL.
func (s UpstreamSettings) BrowseTTL() time.Duration {
	return time.Duration(s.BrowseTTLMinutes) * time.Minute
}

// TextTTL returns the act text cache TTL.
func (s UpstreamSettings) TextTTL() time.Duration {
	return time.Duration(s.TextTTLMinutes) * time.Minute
}

// RecoveryTimeout returns the breaker open-state dwell time.
func (s BreakerSettings) RecoveryTimeout() time.Duration {
	return time.Duration(s.RecoveryTimeoutSeconds) * time.Second
}

// TTL returns the document retention period.
func (s DocumentSettings) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

// TTL returns the result set retention period.
func (s ResultSetSettings) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}
