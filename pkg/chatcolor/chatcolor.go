// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package chatcolor implements the legacy chat color markup used in command
// messages. Authors write codes with an alternate character (usually '&'),
// Translate turns them into section-sign codes, and renderers turn those into
// ANSI escapes or strip them.
package chatcolor

import "strings"

// Char is the section sign that introduces a translated color code.
const Char = '§'

// DefaultAlt is the alternate code character used in authored messages.
const DefaultAlt = '&'

// Color and format codes, already translated.
const (
	Black         = "§0"
	DarkBlue      = "§1"
	DarkGreen     = "§2"
	DarkAqua      = "§3"
	DarkRed       = "§4"
	DarkPurple    = "§5"
	Gold          = "§6"
	Gray          = "§7"
	DarkGray      = "§8"
	Blue          = "§9"
	Green         = "§a"
	Aqua          = "§b"
	Red           = "§c"
	LightPurple   = "§d"
	Yellow        = "§e"
	White         = "§f"
	Obfuscated    = "§k"
	Bold          = "§l"
	Strikethrough = "§m"
	Underline     = "§n"
	Italic        = "§o"
	Reset         = "§r"
)

// validCodes lists every code letter a color sequence may carry.
const validCodes = "0123456789AaBbCcDdEeFfKkLlMmNnOoRrXx"

// Translate replaces alt+code pairs with Char+code. The code letter is
// lowercased. Sequences whose second character is not a known code are left
// untouched.
func Translate(alt rune, text string) string {
	if !strings.ContainsRune(text, alt) {
		return text
	}
	runes := []rune(text)
	for i := 0; i < len(runes)-1; i++ {
		if runes[i] == alt && strings.ContainsRune(validCodes, runes[i+1]) {
			runes[i] = Char
			runes[i+1] = toLower(runes[i+1])
		}
	}
	return string(runes)
}

// Strip removes every translated code from text.
func Strip(text string) string {
	if !strings.ContainsRune(text, Char) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] == Char && i+1 < len(runes) && strings.ContainsRune(validCodes, runes[i+1]) {
			i++
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
