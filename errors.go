package goYK

import "errors"

var (
	// ErrVerifierNotReady is returned when a method is called on a nil or
	// unbuilt Verifier.
	ErrVerifierNotReady = errors.New("verifier not ready")
	// ErrTokenParse is returned when the raw input matches neither the
	// standard nor the alternate-layout modhex alphabet. No network call is
	// attempted in that case.
	ErrTokenParse = errors.New("token does not parse as modhex")
	// ErrNoEndpoints is returned when the endpoint set is empty.
	ErrNoEndpoints = errors.New("no validation endpoints configured")
	// ErrReplayedOTP is returned when a validation server classified the OTP
	// as already used. Distinct from infrastructure failures so callers can
	// treat it as a credential problem, not an outage.
	ErrReplayedOTP = errors.New("otp replayed")
	// ErrNoValidAnswer is returned when at least one response body arrived
	// but no endpoint produced a decisive classification.
	ErrNoValidAnswer = errors.New("no valid answer from validation servers")
	// ErrTransportFailure is returned when every endpoint failed at the
	// transport level and no response body was received at all.
	ErrTransportFailure = errors.New("all validation endpoints failed in transport")
	// ErrParameterNotFound is returned by VerifyResult.Parameters when a
	// requested numeric field is absent from the decisive response body.
	ErrParameterNotFound = errors.New("parameter not found in validation response")
)

// StatusError carries the literal status token of a server-reported error
// (any status other than OK or REPLAYED_OTP, e.g. NO_SUCH_CLIENT). It
// unwraps to ErrNoValidAnswer: such a status never decides the race, it is
// only surfaced for diagnosis when the race concludes without a decisive
// answer.
type StatusError struct {
	Status string
}

func (e *StatusError) Error() string {
	return "validation server reported status " + e.Status
}

func (e *StatusError) Unwrap() error {
	return ErrNoValidAnswer
}
