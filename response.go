package goYK

import (
	"crypto/subtle"
	"strings"
)

// Statuses with a defined meaning in the validation protocol. Only StatusOK
// and StatusReplayedOTP are decisive; anything else is recorded for
// diagnostics without terminating the race.
const (
	StatusOK          = "OK"
	StatusReplayedOTP = "REPLAYED_OTP"
)

// responseSignatureFields is the fixed, alphabetically sorted candidate set
// for the response check string. A field contributes only when present in
// the response body; absence is not an error.
var responseSignatureFields = []string{
	"nonce",
	"otp",
	"sessioncounter",
	"sessionuse",
	"sl",
	"status",
	"t",
	"timeout",
	"timestamp",
}

type responseClass int

const (
	// classNone: irrelevant, mismatched echo, or failed signature check.
	// Contributes nothing to the race.
	classNone responseClass = iota
	classValid
	classReplayed
	// classOther: classified status that is neither OK nor REPLAYED_OTP.
	classOther
)

type classified struct {
	class       responseClass
	status      string
	sigMismatch bool
}

// parseResponse splits a response body into fields: CRLF-separated lines,
// each split on the first "=" only (values such as the base64 signature
// contain "=" themselves).
func parseResponse(body string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(body, "\r\n") {
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return fields
}

// checkString rebuilds the signed portion of a response: the candidate
// fields that are present, in fixed alphabetical order, joined with "&".
func checkString(fields map[string]string) string {
	pairs := make([]string, 0, len(responseSignatureFields))
	for _, name := range responseSignatureFields {
		if value, ok := fields[name]; ok {
			pairs = append(pairs, name+"="+value)
		}
	}
	return strings.Join(pairs, "&")
}

// classifyResponse applies the three-step verification to one raw body:
//
//  1. Relevance: a body without a status field is irrelevant. A body whose
//     otp or nonce does not echo the request is ignored outright, whatever
//     its status — it belongs to a different (or stale) verification.
//  2. Signature: with a shared key configured, the check string is re-signed
//     and compared against the h field in constant time. A missing or
//     mismatched signature yields no classification.
//  3. Status: OK and REPLAYED_OTP are decisive; any other status is
//     recorded but does not terminate the race.
func classifyResponse(body, otp, nonce string, key []byte) classified {
	fields := parseResponse(body)

	status, ok := fields["status"]
	if !ok || status == "" {
		return classified{class: classNone}
	}
	if fields["otp"] != otp || fields["nonce"] != nonce {
		return classified{class: classNone}
	}

	if len(key) > 0 {
		sig, ok := fields["h"]
		if !ok {
			return classified{class: classNone, sigMismatch: true}
		}
		expected := signPayload(checkString(fields), key)
		if subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) != 1 {
			return classified{class: classNone, sigMismatch: true}
		}
	}

	switch status {
	case StatusOK:
		return classified{class: classValid, status: status}
	case StatusReplayedOTP:
		return classified{class: classReplayed, status: status}
	default:
		return classified{class: classOther, status: status}
	}
}
