package goYK

import (
	"context"
	"strconv"
	"strings"
	"sync"
)

// Token is the parsed form of a raw OTP input. It is created once per
// verification call, is immutable, and is discarded after the call.
type Token struct {
	// Password is the optional password entered before the delimiter.
	// Empty when the input carried no password part.
	Password string
	// Prefix is the 0-16 character modhex device prefix.
	Prefix string
	// Ciphertext is the 32-character modhex ciphertext block.
	Ciphertext string
	// OTP is Prefix+Ciphertext, the value sent to the validation servers.
	OTP string
}

// PublicID returns the modhex device prefix, which identifies the physical
// token. Hosts use it to bind a token to an account.
func (t *Token) PublicID() string {
	if t == nil {
		return ""
	}
	return t.Prefix
}

// Fetcher is the injected transport collaborator. Given a full URL it
// returns the response body or a transport error. Implementations must
// support concurrent invocation and honor context cancellation; the racer
// cancels the context of still-pending fetches as soon as a decisive
// classification is reached.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (string, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// Verdict is the terminal outcome of one verification race.
type Verdict int

const (
	// VerdictNone means no race has concluded (zero value).
	VerdictNone Verdict = iota
	// VerdictValid means a server classified the OTP as valid.
	VerdictValid
	// VerdictReplayed means a server classified the OTP as already used.
	VerdictReplayed
	// VerdictServerError means the race concluded without a decisive answer
	// but a server reported a classified non-OK status (see StatusError).
	VerdictServerError
	// VerdictNoDecisiveAnswer means bodies arrived but none classified
	// decisively and no server status was recorded.
	VerdictNoDecisiveAnswer
	// VerdictTransportFailure means no endpoint produced a usable body.
	VerdictTransportFailure
	// VerdictParseFailure means the raw token did not parse; no network
	// call was attempted.
	VerdictParseFailure
)

func (v Verdict) String() string {
	switch v {
	case VerdictValid:
		return "valid"
	case VerdictReplayed:
		return "replayed"
	case VerdictServerError:
		return "server_error"
	case VerdictNoDecisiveAnswer:
		return "no_decisive_answer"
	case VerdictTransportFailure:
		return "transport_failure"
	case VerdictParseFailure:
		return "parse_failure"
	default:
		return "none"
	}
}

// VerifyResult owns the diagnostic state of a single verification call.
// Results are call-scoped: concurrent Verify calls never share one, so the
// query log and response buffer cannot be corrupted by a sibling call.
type VerifyResult struct {
	// Verdict is the terminal outcome of the race.
	Verdict Verdict
	// Token is the parsed token, nil when parsing failed.
	Token *Token
	// OTP and Nonce are the request values the decisive response had to echo.
	OTP   string
	Nonce string
	// Status is the literal status token of the decisive response, or of the
	// last classified non-decisive response when the race exhausted.
	Status string

	mu           sync.Mutex
	queries      []string
	responses    []string
	decisiveBody string
	decisiveURL  string
}

// QueryLog returns every composed request URL of the call, space-joined, in
// dispatch order.
func (r *VerifyResult) QueryLog() string {
	if r == nil {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.queries, " ")
}

// Response returns the decisive response body, or, when the call waited for
// all endpoints, every received body tagged by its source URL.
func (r *VerifyResult) Response() string {
	if r == nil {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.responses) > 0 {
		return strings.Join(r.responses, "\n")
	}
	return r.decisiveBody
}

// DecisiveEndpoint returns the URL of the endpoint whose response decided
// the race, or empty when no response was decisive.
func (r *VerifyResult) DecisiveEndpoint() string {
	if r == nil {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.decisiveURL
}

// Parameters extracts the named numeric fields (e.g. "timestamp",
// "sessioncounter", "sessionuse") from the decisive response body. A name
// that is absent or non-numeric yields ErrParameterNotFound.
func (r *VerifyResult) Parameters(names ...string) (map[string]uint64, error) {
	if r == nil {
		return nil, ErrParameterNotFound
	}
	r.mu.Lock()
	body := r.decisiveBody
	r.mu.Unlock()

	fields := parseResponse(body)
	out := make(map[string]uint64, len(names))
	for _, name := range names {
		raw, ok := fields[name]
		if !ok {
			return nil, &parameterError{name: name}
		}
		val, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, &parameterError{name: name}
		}
		out[name] = val
	}
	return out, nil
}

type parameterError struct {
	name string
}

func (e *parameterError) Error() string {
	return "parameter " + e.name + " not found in validation response"
}

func (e *parameterError) Unwrap() error {
	return ErrParameterNotFound
}

func (r *VerifyResult) recordQuery(url string) {
	r.mu.Lock()
	r.queries = append(r.queries, url)
	r.mu.Unlock()
}

func (r *VerifyResult) recordDecisive(url, body, status string) {
	r.mu.Lock()
	r.decisiveURL = url
	r.decisiveBody = body
	r.mu.Unlock()
	r.Status = status
}

func (r *VerifyResult) appendTagged(url, body string) {
	r.mu.Lock()
	r.responses = append(r.responses, url+": "+body)
	r.mu.Unlock()
}
