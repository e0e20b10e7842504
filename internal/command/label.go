// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"strings"
)

// Separator joins label segments.
const Separator = "."

// Match is the outcome of resolving an invocation against registered keys.
type Match struct {
	Key      string // registered key that matched, e.g. "build.wall"
	Depth    int    // dot-segments in Key beyond the base label
	Consumed int    // argument tokens examined to build Key, blanks included
}

// NormalizeLabel returns the registry form of a label.
func NormalizeLabel(label string) string {
	return strings.ToLower(label)
}

// RootSegment returns the first dot-segment of a normalized label.
func RootSegment(label string) string {
	root, _, _ := strings.Cut(NormalizeLabel(label), Separator)
	return root
}

// Resolve finds the most specific registered key for base followed by args.
// Candidates are built from the longest token prefix down to the bare base
// label and the first one for which has returns true wins.
//
// With skipBlank set, blank or whitespace-only tokens are left out of the
// candidate key; completion resolves that way, command dispatch does not.
func Resolve(has func(key string) bool, base string, args []string, skipBlank bool) (Match, bool) {
	base = NormalizeLabel(base)
	baseDots := strings.Count(base, Separator)

	for consumed := len(args); consumed >= 0; consumed-- {
		key := candidateKey(base, args[:consumed], skipBlank)
		if has(key) {
			return Match{
				Key:      key,
				Depth:    strings.Count(key, Separator) - baseDots,
				Consumed: consumed,
			}, true
		}
	}
	return Match{}, false
}

func candidateKey(base string, tokens []string, skipBlank bool) string {
	if len(tokens) == 0 {
		return base
	}
	var b strings.Builder
	b.WriteString(base)
	for _, tok := range tokens {
		if skipBlank && strings.TrimSpace(tok) == "" {
			continue
		}
		b.WriteString(Separator)
		b.WriteString(strings.ToLower(tok))
	}
	return b.String()
}
