package goYK

import (
	"context"
	"time"
)

type endpointResult struct {
	url  string
	body string
	err  error
	cls  classified
}

// race dispatches the identical query to every endpoint URL concurrently and
// applies the decision policy over responses in arrival order.
//
// Unless o.waitForAll is set, the first decisive classification (Valid or
// Replayed) cancels every still-pending fetch and returns immediately; the
// eventual completion of cancelled siblings cannot affect the verdict. With
// waitForAll, every body is collected (tagged by source URL) and a classified
// replay is authoritative over a Valid reported by a different endpoint.
//
// A transport failure on one endpoint never aborts the race; it only removes
// that endpoint's contribution.
func (v *Verifier) race(ctx context.Context, urls []string, otp, nonce string, o verifyOptions, res *VerifyResult) Verdict {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	key := v.config.Client.Key
	fetchTimeout := time.Duration(o.timeoutSeconds) * time.Second

	// Buffered to the fan-out width so abandoned goroutines can always
	// deliver and exit.
	results := make(chan endpointResult, len(urls))

	for _, url := range urls {
		go func(url string) {
			fctx := ctx
			if fetchTimeout > 0 {
				var fcancel context.CancelFunc
				fctx, fcancel = context.WithTimeout(ctx, fetchTimeout)
				defer fcancel()
			}
			body, err := v.fetcher.Fetch(fctx, url)
			r := endpointResult{url: url, body: body, err: err}
			if err == nil {
				r.cls = classifyResponse(body, otp, nonce, key)
			}
			results <- r
		}(url)
	}

	var (
		sawBody    bool
		lastStatus string
		validRes   *endpointResult
		replayRes  *endpointResult
	)

	for remaining := len(urls); remaining > 0; remaining-- {
		r := <-results

		if r.err != nil {
			v.metricInc(MetricEndpointTransportError)
			continue
		}
		sawBody = true
		if o.waitForAll {
			res.appendTagged(r.url, r.body)
		}
		if r.cls.sigMismatch {
			v.metricInc(MetricSignatureMismatch)
		}

		switch r.cls.class {
		case classValid:
			if !o.waitForAll {
				res.recordDecisive(r.url, r.body, r.cls.status)
				cancel()
				return VerdictValid
			}
			if validRes == nil {
				copied := r
				validRes = &copied
			}
		case classReplayed:
			if !o.waitForAll {
				res.recordDecisive(r.url, r.body, r.cls.status)
				cancel()
				return VerdictReplayed
			}
			if replayRes == nil {
				copied := r
				replayRes = &copied
			}
		case classOther:
			lastStatus = r.cls.status
		}
	}

	// Race exhausted. A classified replay outranks a Valid from a sibling
	// endpoint: replay is authoritative once observed.
	if replayRes != nil {
		res.recordDecisive(replayRes.url, replayRes.body, StatusReplayedOTP)
		return VerdictReplayed
	}
	if validRes != nil {
		res.recordDecisive(validRes.url, validRes.body, StatusOK)
		return VerdictValid
	}
	if !sawBody {
		return VerdictTransportFailure
	}
	if lastStatus != "" {
		res.Status = lastStatus
		return VerdictServerError
	}
	return VerdictNoDecisiveAnswer
}
