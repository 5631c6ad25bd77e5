package goYK

import "strings"

// Modhex is the 16-symbol encoding alphabet emitted by the token firmware.
// The symbols sit on the same physical keys across common keyboard layouts,
// which is why the alphabet looks arbitrary.
const Modhex = "cbdefghijklnrtuv"

// dvorakModhex is what the same key positions produce when the host machine
// runs a Dvorak layout. A token typed on such a machine arrives as this
// alphabet and is transliterated back position-for-position.
const dvorakModhex = "jxe.uidchtnbpygk"

// dvorakToModhex maps an alternate-layout string back to the standard
// alphabet, position-for-position. Callers guarantee via the token pattern
// that every byte is a member of dvorakModhex (either case).
func dvorakToModhex(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b.WriteByte(Modhex[strings.IndexByte(dvorakModhex, c)])
	}
	return b.String()
}
