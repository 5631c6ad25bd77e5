// Package goYK validates hardware-token one-time passwords against a set of
// redundant validation servers implementing the signed key=value verification
// protocol.
//
// A verification call parses the raw token into its modhex parts, builds one
// canonical signed query, races it against every configured endpoint
// concurrently, and returns as soon as any server yields a decisive answer
// (OK or REPLAYED_OTP). Response signatures are checked with the shared API
// key before a response may decide the race, and the request nonce must be
// echoed back so stale or crossed responses are ignored.
//
// The package is designed for concurrent server workloads: Verifier methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goYK is the public surface. It exposes [Verifier], [Builder], [Config], and
// value types (Token, VerifyResult, MetricsSnapshot, AuditEvent). Transport
// is an injected [Fetcher] capability; the bundled [HTTPFetcher] is plain
// net/http and callers may substitute their own. Nonce material lives under
// internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Retry a failed verification on its own. One call, one race. Callers
//     that want retry semantics use [Verifier.VerifyWithRetry] explicitly.
//   - Keep per-call diagnostic state on the Verifier. Query logs and response
//     bodies belong to the [VerifyResult] of the call that produced them, so
//     concurrent calls never observe each other.
//   - Persist anything. Verification history, rate limiting, and token
//     enrollment are the host application's concern.
package goYK
