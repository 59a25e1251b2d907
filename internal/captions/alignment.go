package captions

import "strings"

// DefaultWordsPerCue is the number of reconstructed words grouped into one
// cue when building captions from provider alignment data.
const DefaultWordsPerCue = 8

// alignmentWord is a word reconstructed from per-character timing data.
type alignmentWord struct {
	text  string
	start float64
	end   float64
}

// wordBoundaryChars terminate a word during alignment reconstruction. The
// boundary character's own timing belongs to the word it ends.
const wordBoundaryChars = " .,!?;:"

// FromAlignment builds caption cues from provider character-level alignment
// data: characters[i] spans starts[i] to ends[i] seconds. Characters are
// grouped into words at whitespace and punctuation boundaries, then words are
// chunked into fixed windows of wordsPerCue (DefaultWordsPerCue when
// wordsPerCue is not positive; the last window may be shorter).
//
// Malformed alignment data (empty or mismatched slices) is not an error; it
// yields an empty cue list so the caller can fall back to duration-based
// synthesis.
func FromAlignment(characters []string, starts, ends []float64, wordsPerCue int) []Cue {
	if len(characters) == 0 || len(characters) != len(starts) || len(characters) != len(ends) {
		return nil
	}
	if wordsPerCue <= 0 {
		wordsPerCue = DefaultWordsPerCue
	}

	words := groupWords(characters, starts, ends)

	var cues []Cue
	for i := 0; i < len(words); i += wordsPerCue {
		window := words[i:min(i+wordsPerCue, len(words))]

		texts := make([]string, len(window))
		for j, w := range window {
			texts[j] = w.text
		}

		cues = append(cues, Cue{
			Index: len(cues) + 1,
			Start: window[0].start,
			End:   window[len(window)-1].end,
			Text:  strings.Join(texts, " "),
		})
	}

	return cues
}

// groupWords reconstructs words from the character stream. A word's start is
// its first character's start time and its end is its last character's end
// time. Whitespace-only accumulations are discarded.
func groupWords(characters []string, starts, ends []float64) []alignmentWord {
	var words []alignmentWord
	var current strings.Builder
	var wordStart float64
	inWord := false

	for i, ch := range characters {
		if !inWord {
			wordStart = starts[i]
			inWord = true
		}

		current.WriteString(ch)

		if strings.Contains(wordBoundaryChars, ch) || i == len(characters)-1 {
			if text := strings.TrimSpace(current.String()); text != "" {
				words = append(words, alignmentWord{
					text:  text,
					start: wordStart,
					end:   ends[i],
				})
			}
			current.Reset()
			inWord = false
		}
	}

	return words
}
