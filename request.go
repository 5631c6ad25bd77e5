package goYK

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"sort"
	"strconv"
	"strings"
)

// buildQuery assembles the canonical validation query: id, otp and nonce,
// plus the optional timestamp/sl/timeout parameters, sorted ascending by
// name and joined as name=value pairs with "&". When a shared key is
// configured the HMAC-SHA1 signature over that exact byte sequence is
// appended last as "&h=..."; the signature never participates in the sort.
func buildQuery(clientID, otp, nonce string, o verifyOptions, key []byte) string {
	params := map[string]string{
		"id":    clientID,
		"otp":   otp,
		"nonce": nonce,
	}
	if o.timestamp {
		params["timestamp"] = "1"
	}
	if o.syncLevel != "" {
		params["sl"] = o.syncLevel
	}
	if o.timeoutSeconds > 0 {
		params["timeout"] = strconv.Itoa(o.timeoutSeconds)
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+params[name])
	}
	query := strings.Join(pairs, "&")

	if len(key) > 0 {
		// Base64 may contain "+", which has to survive transport inside a
		// query string.
		sig := strings.ReplaceAll(signPayload(query, key), "+", "%2B")
		query += "&h=" + sig
	}
	return query
}

// signPayload computes the base64 HMAC-SHA1 of payload under key. Used for
// both the outbound query signature and the response check string.
func signPayload(payload string, key []byte) string {
	mac := hmac.New(sha1.New, key)
	_, _ = mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
