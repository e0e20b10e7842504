// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package chatcolor

import "strings"

const (
	ansiReset         = "\x1b[0m"
	ansiBold          = "\x1b[1m"
	ansiItalic        = "\x1b[3m"
	ansiUnderline     = "\x1b[4m"
	ansiBlink         = "\x1b[5m"
	ansiStrikethrough = "\x1b[9m"
)

// codeToANSI maps translated code letters to ANSI escape sequences.
// Digits and a-f are the sixteen colors; k-o are formats, r resets.
var codeToANSI = map[rune]string{
	'0': "\x1b[30m",
	'1': "\x1b[34m",
	'2': "\x1b[32m",
	'3': "\x1b[36m",
	'4': "\x1b[31m",
	'5': "\x1b[35m",
	'6': "\x1b[33m",
	'7': "\x1b[37m",
	'8': "\x1b[90m",
	'9': "\x1b[94m",
	'a': "\x1b[92m",
	'b': "\x1b[96m",
	'c': "\x1b[91m",
	'd': "\x1b[95m",
	'e': "\x1b[93m",
	'f': "\x1b[97m",
	'k': ansiBlink,
	'l': ansiBold,
	'm': ansiStrikethrough,
	'n': ansiUnderline,
	'o': ansiItalic,
	'r': ansiReset,
	'x': ansiReset,
}

// ToANSI renders translated codes as ANSI escapes for terminal clients.
// A reset is appended when any code was rendered so styling does not leak
// into the next line.
func ToANSI(text string) string {
	if !strings.ContainsRune(text, Char) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 16)
	styled := false
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] == Char && i+1 < len(runes) {
			if seq, ok := codeToANSI[toLower(runes[i+1])]; ok {
				b.WriteString(seq)
				styled = true
				i++
				continue
			}
		}
		b.WriteRune(runes[i])
	}
	if styled {
		b.WriteString(ansiReset)
	}
	return b.String()
}
