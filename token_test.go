package goYK

import (
	"strings"
	"testing"
)

const (
	testPrefix     = "cccccckcvlid"
	testCiphertext = "ktrcgbfjjihgcjlbgdrtuvniuecdlvhr"
	testOTP        = testPrefix + testCiphertext
)

func toDvorak(t *testing.T, modhex string) string {
	t.Helper()
	var b strings.Builder
	for i := 0; i < len(modhex); i++ {
		idx := strings.IndexByte(Modhex, modhex[i])
		if idx < 0 {
			t.Fatalf("character %q is not modhex", modhex[i])
		}
		b.WriteByte(dvorakModhex[idx])
	}
	return b.String()
}

func TestParseTokenPlain(t *testing.T) {
	token, ok := ParseToken(testOTP)
	if !ok {
		t.Fatal("expected token to parse")
	}
	if token.Password != "" {
		t.Fatalf("expected no password, got %q", token.Password)
	}
	if token.Prefix != testPrefix {
		t.Fatalf("prefix mismatch: %q", token.Prefix)
	}
	if token.Ciphertext != testCiphertext {
		t.Fatalf("ciphertext mismatch: %q", token.Ciphertext)
	}
	if token.OTP != testOTP {
		t.Fatalf("otp mismatch: %q", token.OTP)
	}
	if token.PublicID() != testPrefix {
		t.Fatalf("public id mismatch: %q", token.PublicID())
	}
}

func TestParseTokenNoPrefix(t *testing.T) {
	token, ok := ParseToken(testCiphertext)
	if !ok {
		t.Fatal("expected bare ciphertext to parse")
	}
	if token.Prefix != "" {
		t.Fatalf("expected empty prefix, got %q", token.Prefix)
	}
	if token.OTP != testCiphertext {
		t.Fatalf("otp mismatch: %q", token.OTP)
	}
}

func TestParseTokenWithPassword(t *testing.T) {
	token, ok := ParseToken("hunter2:" + testOTP)
	if !ok {
		t.Fatal("expected token to parse")
	}
	if token.Password != "hunter2" {
		t.Fatalf("password mismatch: %q", token.Password)
	}
	if token.OTP != testOTP {
		t.Fatalf("otp mismatch: %q", token.OTP)
	}
}

func TestParseTokenPasswordKeepsLastDelimiter(t *testing.T) {
	token, ok := ParseToken("a:b:" + testOTP)
	if !ok {
		t.Fatal("expected token to parse")
	}
	if token.Password != "a:b" {
		t.Fatalf("password mismatch: %q", token.Password)
	}
}

func TestParseTokenUppercasePreservesCase(t *testing.T) {
	upper := strings.ToUpper(testOTP)
	token, ok := ParseToken(upper)
	if !ok {
		t.Fatal("expected uppercase modhex to parse")
	}
	if token.OTP != upper {
		t.Fatalf("expected case preserved, got %q", token.OTP)
	}
}

func TestParseTokenDvorakTransliterates(t *testing.T) {
	token, ok := ParseToken(toDvorak(t, testOTP))
	if !ok {
		t.Fatal("expected alternate-layout token to parse")
	}
	want, _ := ParseToken(testOTP)
	if token.OTP != want.OTP {
		t.Fatalf("transliteration mismatch: got %q want %q", token.OTP, want.OTP)
	}
	if token.Prefix != want.Prefix || token.Ciphertext != want.Ciphertext {
		t.Fatalf("split mismatch: %q / %q", token.Prefix, token.Ciphertext)
	}
}

func TestParseTokenDvorakWithPassword(t *testing.T) {
	token, ok := ParseToken("pw:" + toDvorak(t, testOTP))
	if !ok {
		t.Fatal("expected alternate-layout token to parse")
	}
	if token.Password != "pw" {
		t.Fatalf("password mismatch: %q", token.Password)
	}
	if token.OTP != testOTP {
		t.Fatalf("otp mismatch: %q", token.OTP)
	}
}

func TestParseTokenRejects(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"short ciphertext", testPrefix + testCiphertext[:31]},
		{"trailing garbage", testOTP + "!"},
		{"prefix too long", "ccccccccccccccccc" + testCiphertext},
		{"bad character", "cccccckcvlia" + testCiphertext},
		{"password without delimiter", "hunter2" + testOTP},
	}
	for _, tc := range cases {
		if _, ok := ParseToken(tc.in); ok {
			t.Fatalf("%s: expected parse failure for %q", tc.name, tc.in)
		}
	}
}

func TestParseTokenCustomDelimiter(t *testing.T) {
	token, ok := ParseTokenDelim("hunter2 "+testOTP, " ")
	if !ok {
		t.Fatal("expected token with space delimiter to parse")
	}
	if token.Password != "hunter2" {
		t.Fatalf("password mismatch: %q", token.Password)
	}

	if _, ok := ParseTokenDelim("hunter2:"+testOTP, " "); ok {
		t.Fatal("colon delimiter must not match when the set is a space")
	}
}
