package segmenter

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const fence = "```"

// nextSentenceEnd returns the cut position of the first sentence boundary in
// text[:limit], checking cut positions from `from` onwards.
//
// A boundary follows '.', '!' or '?' and a run of whitespace, in which case
// the whole run is part of the sentence, or directly follows a newline.
func nextSentenceEnd(text string, from, limit int) (int, bool) {
	if from < 1 {
		from = 1
	}
	for i := from; i <= limit; i++ {
		switch text[i-1] {
		case '\n':
			return i, true
		case '.', '!', '?':
			if end := skipSpace(text, i, limit); end > i {
				return end, true
			}
		}
	}
	return 0, false
}

func skipSpace(text string, start, limit int) int {
	i := start
	for i < limit {
		r, size := utf8.DecodeRuneInString(text[i:limit])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

// indexFrom is strings.Index ignoring matches that start before from.
func indexFrom(s, sep string, from int) int {
	if from < 0 {
		from = 0
	}
	if from > len(s) {
		return -1
	}
	if i := strings.Index(s[from:], sep); i >= 0 {
		return from + i
	}
	return -1
}
