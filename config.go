package goYK

import (
	"errors"
	"strconv"
)

// Config defines the immutable-after-Build configuration of a Verifier.
type Config struct {
	Client   ClientConfig
	Endpoint EndpointConfig
	Request  RequestConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
CLIENT CONFIG
====================================
*/

// ClientConfig identifies the API client to the validation servers.
type ClientConfig struct {
	// ID is the client identifier sent as the "id" parameter.
	ID string
	// Key is the decoded shared API key. Empty disables request signing and
	// response signature verification.
	Key []byte
}

/*
====================================
ENDPOINT CONFIG
====================================
*/

// EndpointConfig describes the redundant validation endpoint set. Every
// verification call races the identical query against all hosts.
type EndpointConfig struct {
	// Hosts are host+path fragments without a scheme, e.g.
	// "api.example.com/wsapi/2.0/verify".
	Hosts []string
	// HTTPS selects the https:// scheme; false composes http:// URLs.
	HTTPS bool
	// VerifyTLS controls certificate verification of the bundled HTTP
	// fetcher. It is ignored by caller-supplied fetchers.
	VerifyTLS bool
}

/*
====================================
REQUEST CONFIG
====================================
*/

// RequestConfig holds per-call defaults; VerifyOption values override them
// for a single call.
type RequestConfig struct {
	// Timestamp requests timestamp and session counter fields in responses.
	Timestamp bool
	// SyncLevel is the requested server sync level: "fast", "secure", or a
	// percentage "0".."100". Empty omits the parameter.
	SyncLevel string
	// TimeoutSeconds bounds each individual fetch. Zero omits the parameter
	// and leaves fetches bounded only by the fetcher itself.
	TimeoutSeconds int
	// WaitForAll disables early exit: the call collects every response and
	// only then applies the decision policy.
	WaitForAll bool
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process metrics registry.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// defaultHosts is the well-known public validation endpoint set.
var defaultHosts = []string{
	"api.yubico.com/wsapi/2.0/verify",
	"api2.yubico.com/wsapi/2.0/verify",
	"api3.yubico.com/wsapi/2.0/verify",
	"api4.yubico.com/wsapi/2.0/verify",
	"api5.yubico.com/wsapi/2.0/verify",
}

// DefaultConfig returns the baseline configuration: the public endpoint set
// over verified HTTPS, no request signing, audit and metrics off.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Endpoint: EndpointConfig{
			Hosts:     append([]string(nil), defaultHosts...),
			HTTPS:     true,
			VerifyTLS: true,
		},
		Request: RequestConfig{},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Client.Key = cloneBytes(cfg.Client.Key)
	out.Endpoint.Hosts = append([]string(nil), cfg.Endpoint.Hosts...)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration problem found, or nil.
func (c *Config) Validate() error {
	if c.Client.ID == "" {
		return errors.New("Client ID must be set")
	}

	if len(c.Endpoint.Hosts) == 0 {
		return ErrNoEndpoints
	}
	for _, host := range c.Endpoint.Hosts {
		if host == "" {
			return errors.New("Endpoint Hosts must not contain empty entries")
		}
	}

	if !validSyncLevel(c.Request.SyncLevel) {
		return errors.New("Request SyncLevel must be \"fast\", \"secure\", or 0-100")
	}
	if c.Request.TimeoutSeconds < 0 {
		return errors.New("Request TimeoutSeconds must be >= 0")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}

	return nil
}

func validSyncLevel(sl string) bool {
	switch sl {
	case "", "fast", "secure":
		return true
	}
	n, err := strconv.Atoi(sl)
	return err == nil && n >= 0 && n <= 100
}
