package goYK

import (
	"encoding/base64"
	"errors"
)

// Builder assembles a Verifier. Configure it with the With* methods and call
// Build once; the resulting Verifier is immutable apart from its endpoint
// set and safe for concurrent use.
type Builder struct {
	config Config

	apiKeyB64 string
	keySet    bool

	fetcher   Fetcher
	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithClient sets the client identifier and the base64-encoded shared API
// key. An empty key string disables signing.
func (b *Builder) WithClient(id, apiKeyBase64 string) *Builder {
	b.config.Client.ID = id
	b.apiKeyB64 = apiKeyBase64
	b.keySet = true
	return b
}

// WithEndpoints replaces the endpoint host set.
func (b *Builder) WithEndpoints(hosts []string) *Builder {
	b.config.Endpoint.Hosts = append([]string(nil), hosts...)
	return b
}

// WithHTTPS selects the URL scheme for composed requests.
func (b *Builder) WithHTTPS(https bool) *Builder {
	b.config.Endpoint.HTTPS = https
	return b
}

// WithTLSVerification toggles certificate verification of the bundled HTTP
// fetcher.
func (b *Builder) WithTLSVerification(verify bool) *Builder {
	b.config.Endpoint.VerifyTLS = verify
	return b
}

// WithFetcher injects a transport collaborator, replacing the bundled
// net/http fetcher. Tests use this to drive races deterministically.
func (b *Builder) WithFetcher(f Fetcher) *Builder {
	b.fetcher = f
	return b
}

// WithAuditSink enables auditing into the given sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithMetricsEnabled toggles the in-process metrics registry.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles verification latency histograms.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and constructs the Verifier. A Builder
// can build at most once.
func (b *Builder) Build() (*Verifier, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	cfg := cloneConfig(b.config)

	if b.keySet && b.apiKeyB64 != "" {
		key, err := base64.StdEncoding.DecodeString(b.apiKeyB64)
		if err != nil {
			return nil, errors.New("api key is not valid base64")
		}
		cfg.Client.Key = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fetcher := b.fetcher
	if fetcher == nil {
		fetcher = NewHTTPFetcher(cfg.Endpoint.VerifyTLS)
	}

	v := &Verifier{
		config:  cfg,
		fetcher: fetcher,
		metrics: NewMetrics(cfg.Metrics),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		hosts:   append([]string(nil), cfg.Endpoint.Hosts...),
	}
	return v, nil
}
