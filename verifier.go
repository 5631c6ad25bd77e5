package goYK

import (
	"context"
	"sync"
	"time"

	"github.com/MrEthical07/goYK/internal"
)

// Verifier is the verification engine. Credentials and configuration are
// read-only for its whole lifetime; the endpoint set may be swapped through
// SetEndpoints and is snapshotted at the start of each call.
type Verifier struct {
	config  Config
	fetcher Fetcher
	metrics *Metrics
	audit   *auditDispatcher

	mu    sync.RWMutex
	hosts []string
}

// Close drains and stops the audit dispatcher. The Verifier must not be
// used afterwards.
func (v *Verifier) Close() {
	if v == nil {
		return
	}
	if v.audit != nil {
		v.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// buffer was full.
func (v *Verifier) AuditDropped() uint64 {
	if v == nil || v.audit == nil {
		return 0
	}
	return v.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters and
// histograms.
func (v *Verifier) MetricsSnapshot() MetricsSnapshot {
	if v == nil || v.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return v.metrics.Snapshot()
}

func (v *Verifier) metricInc(id MetricID) {
	if v == nil || v.metrics == nil {
		return
	}
	v.metrics.Inc(id)
}

// Endpoints returns a copy of the current endpoint host set.
func (v *Verifier) Endpoints() []string {
	if v == nil {
		return nil
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]string(nil), v.hosts...)
}

// SetEndpoints replaces the endpoint host set. Calls already in flight keep
// the snapshot they took at start.
func (v *Verifier) SetEndpoints(hosts []string) error {
	if v == nil {
		return ErrVerifierNotReady
	}
	if len(hosts) == 0 {
		return ErrNoEndpoints
	}
	copied := append([]string(nil), hosts...)
	v.mu.Lock()
	v.hosts = copied
	v.mu.Unlock()
	return nil
}

// VerifyOption overrides a RequestConfig default for a single call.
type VerifyOption func(*verifyOptions)

type verifyOptions struct {
	timestamp      bool
	syncLevel      string
	timeoutSeconds int
	waitForAll     bool
}

// WithTimestampRequest asks the servers to include timestamp and session
// counter fields in their responses.
func WithTimestampRequest() VerifyOption {
	return func(o *verifyOptions) { o.timestamp = true }
}

// WithSyncLevel sets the requested sync level: "fast", "secure", or a
// percentage "0".."100".
func WithSyncLevel(sl string) VerifyOption {
	return func(o *verifyOptions) { o.syncLevel = sl }
}

// WithTimeout bounds each individual fetch of this call, in seconds.
func WithTimeout(seconds int) VerifyOption {
	return func(o *verifyOptions) { o.timeoutSeconds = seconds }
}

// WithWaitForAll disables early exit for this call: every endpoint's body is
// collected into the result before the decision policy runs.
func WithWaitForAll() VerifyOption {
	return func(o *verifyOptions) { o.waitForAll = true }
}

func (v *Verifier) verifyOptions(opts []VerifyOption) verifyOptions {
	o := verifyOptions{
		timestamp:      v.config.Request.Timestamp,
		syncLevel:      v.config.Request.SyncLevel,
		timeoutSeconds: v.config.Request.TimeoutSeconds,
		waitForAll:     v.config.Request.WaitForAll,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Verify races the token against every configured endpoint and returns nil
// when a server decisively validated it. Failure kinds are distinguishable
// with errors.Is: ErrTokenParse, ErrReplayedOTP, ErrNoValidAnswer (possibly
// wrapped in a StatusError carrying the literal server status), and
// ErrTransportFailure. Exactly one race is performed per call; the Verifier
// never retries on its own.
func (v *Verifier) Verify(ctx context.Context, rawToken string, opts ...VerifyOption) error {
	_, err := v.VerifyWithResult(ctx, rawToken, opts...)
	return err
}

// VerifyWithResult is Verify returning the call-scoped diagnostic result
// alongside the error. The result is non-nil whenever the token parsed,
// including on failed verifications.
func (v *Verifier) VerifyWithResult(ctx context.Context, rawToken string, opts ...VerifyOption) (*VerifyResult, error) {
	if v == nil {
		return nil, ErrVerifierNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	o := v.verifyOptions(opts)

	res := &VerifyResult{}

	token, ok := ParseToken(rawToken)
	if !ok {
		res.Verdict = VerdictParseFailure
		v.metricInc(MetricTokenParseFailure)
		v.emitAudit(ctx, res, start, 0, ErrTokenParse)
		return res, ErrTokenParse
	}
	res.Token = token
	res.OTP = token.OTP

	nonce := internal.NewNonce()
	res.Nonce = nonce

	hosts := v.Endpoints()
	if len(hosts) == 0 {
		return res, ErrNoEndpoints
	}

	query := buildQuery(v.config.Client.ID, token.OTP, nonce, o, v.config.Client.Key)
	scheme := "http://"
	if v.config.Endpoint.HTTPS {
		scheme = "https://"
	}
	urls := make([]string, 0, len(hosts))
	for _, host := range hosts {
		url := scheme + host + "?" + query
		urls = append(urls, url)
		res.recordQuery(url)
	}

	res.Verdict = v.race(ctx, urls, token.OTP, nonce, o, res)

	err := verdictError(res)
	v.observeVerdict(res.Verdict, time.Since(start))
	v.emitAudit(ctx, res, start, len(urls), err)
	return res, err
}

func verdictError(res *VerifyResult) error {
	switch res.Verdict {
	case VerdictValid:
		return nil
	case VerdictReplayed:
		return ErrReplayedOTP
	case VerdictServerError:
		return &StatusError{Status: res.Status}
	case VerdictTransportFailure:
		return ErrTransportFailure
	default:
		return ErrNoValidAnswer
	}
}

func (v *Verifier) observeVerdict(verdict Verdict, elapsed time.Duration) {
	switch verdict {
	case VerdictValid:
		v.metricInc(MetricVerifyValid)
	case VerdictReplayed:
		v.metricInc(MetricVerifyReplayed)
	case VerdictServerError:
		v.metricInc(MetricVerifyServerError)
	case VerdictNoDecisiveAnswer:
		v.metricInc(MetricVerifyNoAnswer)
	case VerdictTransportFailure:
		v.metricInc(MetricVerifyTransportFailure)
	}
	if v.metrics != nil {
		v.metrics.Observe(MetricVerifyLatency, elapsed)
	}
}

func (v *Verifier) emitAudit(ctx context.Context, res *VerifyResult, start time.Time, endpoints int, err error) {
	if v.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp: start,
		EventType: "verify",
		ClientID:  v.config.Client.ID,
		PublicID:  res.Token.PublicID(),
		Verdict:   res.Verdict.String(),
		Status:    res.Status,
		Endpoint:  res.DecisiveEndpoint(),
		Endpoints: endpoints,
		LatencyMS: time.Since(start).Milliseconds(),
		Success:   res.Verdict == VerdictValid,
	}
	if err != nil {
		event.Error = err.Error()
	}
	v.audit.Emit(ctx, event)
}
