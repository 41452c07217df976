package webnet

import (
	"fmt"
	"os"
	"time"

	"github.com/ogahub/ogalib"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "ogalib/1.0"
)

// Config holds the process wide settings used by Client.
type Config struct {
	// BaseAPI is the service root without a trailing slash, e.g.
	// "https://api.example.com".
	BaseAPI string
	// APIKey is sent as a bearer token by requests that set usesAPIKey.
	APIKey string
	// IgnoreSSLErrors disables certificate verification for every request.
	IgnoreSSLErrors bool
	// EncodeURLRequests URL-encodes the login query string a second time,
	// for gateways that decode once before forwarding.
	EncodeURLRequests bool
	UserAgent         string

	// Zero or negative timeouts mean no limit.
	ResolveTimeout time.Duration
	ConnectTimeout time.Duration
	SendTimeout    time.Duration
	// ReceiveTimeout bounds every single read of the response body rather
	// than the whole transfer.
	ReceiveTimeout time.Duration
}

// DefaultConfig returns a Config with 30 second timeouts.
func DefaultConfig() Config {
	return Config{
		UserAgent:      defaultUserAgent,
		ResolveTimeout: defaultTimeout,
		ConnectTimeout: defaultTimeout,
		SendTimeout:    defaultTimeout,
		ReceiveTimeout: defaultTimeout,
	}
}

// LoadConfig reads a JSON config file on top of DefaultConfig. Timeouts are
// Go duration strings such as "5s". Unknown keys are ignored.
//
//	{"baseAPI": "https://api.example.com", "apiKey": "k", "receiveTimeout": "10s"}
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	var doc ogalib.Value
	if !doc.Parse(data) {
		return cfg, fmt.Errorf("parse config %s: %w", path, doc.Err())
	}
	if err := cfg.Apply(&doc); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Apply overrides the fields present in doc.
func (c *Config) Apply(doc *ogalib.Value) error {
	if !doc.IsObject() {
		return fmt.Errorf("expected object, got %s", doc.Kind())
	}

	texts := map[string]*string{
		"baseAPI":   &c.BaseAPI,
		"apiKey":    &c.APIKey,
		"userAgent": &c.UserAgent,
	}
	for key, dst := range texts {
		if it := doc.Lookup(key); it.Ok() {
			if !it.IsString() {
				return fmt.Errorf("%s: expected string, got %s", key, it.Kind())
			}
			*dst = it.Str()
		}
	}

	flags := map[string]*bool{
		"ignoreSSLErrors":   &c.IgnoreSSLErrors,
		"encodeURLRequests": &c.EncodeURLRequests,
	}
	for key, dst := range flags {
		if it := doc.Lookup(key); it.Ok() {
			if !it.IsBool() {
				return fmt.Errorf("%s: expected bool, got %s", key, it.Kind())
			}
			*dst = it.Bool()
		}
	}

	durations := map[string]*time.Duration{
		"resolveTimeout": &c.ResolveTimeout,
		"connectTimeout": &c.ConnectTimeout,
		"sendTimeout":    &c.SendTimeout,
		"receiveTimeout": &c.ReceiveTimeout,
	}
	for key, dst := range durations {
		if it := doc.Lookup(key); it.Ok() {
			d, err := time.ParseDuration(it.Str())
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if d <= 0 {
				return fmt.Errorf("%s: must be positive, got %s", key, d)
			}
			*dst = d
		}
	}
	return nil
}
