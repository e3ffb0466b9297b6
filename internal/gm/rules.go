package gm

import (
	"strings"
	"unicode"
)

const fallbackReaction = "GM auto-reviewed the episode and applied fallback rules."

var (
	majorWords = []string{"major", "milestone"}
	minorWords = []string{"quest", "artifact", "discovery", "completed"}
)

// Rules scores an episode without a completion backend.
func Rules(content string) evaluation {
	text := strings.ToLower(content)
	ext := 0
	switch {
	case containsAny(text, majorWords):
		ext = 2
	case containsAny(text, minorWords):
		ext = 1
	}
	return evaluation{Extension: ext, Reaction: fallbackReaction, Source: SourceRules}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// synthesizeQuest derives a follow-up quest from episode text.
func synthesizeQuest(content string) (description, keyword string) {
	body := stripRoles(content)
	sentence := body
	if i := strings.IndexAny(body, ".!?\n"); i > 0 {
		sentence = body[:i]
	}
	sentence = strings.TrimSpace(sentence)
	if r := []rune(sentence); len(r) > 140 {
		sentence = strings.TrimSpace(string(r[:140])) + "..."
	}
	if sentence == "" {
		sentence = "the latest events"
	}
	return "Follow up on: " + sentence, pickKeyword(body)
}

func stripRoles(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if i := strings.Index(l, ": "); i > 0 && i < 12 {
			l = l[i+2:]
		}
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, " ")
}

func pickKeyword(text string) string {
	lower := strings.ToLower(text)
	for _, w := range append(append([]string{}, majorWords...), minorWords...) {
		if strings.Contains(lower, w) {
			return w
		}
	}
	best := ""
	for _, f := range strings.FieldsFunc(lower, func(r rune) bool { return !unicode.IsLetter(r) }) {
		if len(f) > len(best) {
			best = f
		}
	}
	if len(best) < 4 {
		return ""
	}
	return best
}
