package goYK

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	prefixMaxLen  = 16
	ciphertextLen = 32

	// defaultDelimiters is the character set separating an optional password
	// from the OTP.
	defaultDelimiters = ":"
)

var (
	modhexToken = tokenPattern(Modhex, defaultDelimiters)
	dvorakToken = tokenPattern(dvorakModhex, defaultDelimiters)
)

// tokenPattern builds the matcher for password<delim>prefix+ciphertext.
// The password group is greedy, so with input "a:b:<otp>" the password is
// "a:b". Matching is case-insensitive; capture groups preserve input case.
func tokenPattern(alphabet, delimiters string) *regexp.Regexp {
	return regexp.MustCompile(
		`(?i)^(?:(.*)[` + delimiters + `])?` +
			`([` + alphabet + `]{0,` + strconv.Itoa(prefixMaxLen) + `})` +
			`([` + alphabet + `]{` + strconv.Itoa(ciphertextLen) + `})$`,
	)
}

// ParseToken splits a raw OTP input into password, device prefix, and
// ciphertext using the default password delimiter ":". It reports false when
// the input matches neither the standard modhex alphabet nor the
// alternate-layout alphabet.
func ParseToken(raw string) (*Token, bool) {
	return ParseTokenDelim(raw, defaultDelimiters)
}

// ParseTokenDelim is ParseToken with a caller-supplied set of password
// delimiter characters. An empty set falls back to ":".
func ParseTokenDelim(raw, delimiters string) (*Token, bool) {
	std, dv := modhexToken, dvorakToken
	if delimiters != "" && delimiters != defaultDelimiters {
		quoted := classQuote(delimiters)
		std = tokenPattern(Modhex, quoted)
		dv = tokenPattern(dvorakModhex, quoted)
	}

	if m := std.FindStringSubmatch(raw); m != nil {
		return &Token{
			Password:   m[1],
			Prefix:     m[2],
			Ciphertext: m[3],
			OTP:        m[2] + m[3],
		}, true
	}

	// Alternate keyboard layout: transliterate back to the standard alphabet
	// before returning. Transliterated output is standard lowercase.
	if m := dv.FindStringSubmatch(raw); m != nil {
		prefix := dvorakToModhex(m[2])
		ciphertext := dvorakToModhex(m[3])
		return &Token{
			Password:   m[1],
			Prefix:     prefix,
			Ciphertext: ciphertext,
			OTP:        prefix + ciphertext,
		}, true
	}

	return nil, false
}

// classQuote escapes delimiter characters for use inside a regexp character
// class. QuoteMeta leaves "-" alone, which would form a range inside [...].
func classQuote(delimiters string) string {
	return strings.ReplaceAll(regexp.QuoteMeta(delimiters), "-", `\-`)
}
