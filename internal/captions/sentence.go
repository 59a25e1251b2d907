// Package captions provides the caption generation core for narration episodes:
// sentence segmentation, cue timeline synthesis from estimated or measured
// durations, cue grouping from provider alignment data, and WebVTT rendering.
// All functions are pure and safe for concurrent use.
package captions

import (
	"regexp"
	"strings"
)

// Sentence is a single segmented sentence of the narration text.
// StartsParagraph is true when the sentence opens a new paragraph after at
// least one earlier paragraph; the very first sentence of a text is never
// flagged.
type Sentence struct {
	// Text is the trimmed sentence text, never empty.
	Text string
	// StartsParagraph marks the first sentence of a non-initial paragraph.
	StartsParagraph bool
}

// Abbreviations that do not terminate a sentence even though they end in a period.
var nonTerminalAbbreviations = map[string]struct{}{
	"mr.": {}, "mrs.": {}, "ms.": {}, "dr.": {}, "prof.": {}, "sr.": {}, "jr.": {},
	"etc.": {}, "vs.": {}, "e.g.": {}, "i.e.": {}, "a.m.": {}, "p.m.": {},
}

// Words that commonly begin a sentence. Used to avoid merging a real sentence
// into a preceding abbreviation.
var commonSentenceStarters = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "but": {}, "he": {}, "she": {}, "it": {},
	"i": {}, "you": {}, "we": {}, "they": {}, "the": {}, "there": {},
	"these": {}, "those": {}, "this": {}, "that": {}, "what": {}, "when": {},
	"where": {}, "why": {}, "how": {}, "who": {}, "which": {}, "so": {},
	"then": {}, "now": {},
}

var (
	paragraphBoundaryRe = regexp.MustCompile(`\n{2,}`)
	sentenceBoundaryRe  = regexp.MustCompile(`[.!?]\s+`)
)

const (
	trailingQuoteChars = `"')]}`
	leadingQuoteChars  = `"'` + "“”‘’" + `([{`
)

// SplitSentences segments raw narration text into ordered sentences with
// paragraph-break detection. Paragraphs are separated by blank lines;
// sentences split on whitespace following terminating punctuation. A split
// candidate is merged back into the previous sentence when that sentence ends
// in a protected abbreviation ("Dr.", "e.g.", ...) and the candidate does not
// look like the start of a new sentence.
//
// SplitSentences never fails; empty or whitespace-only input yields nil.
func SplitSentences(text string) []Sentence {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var sentences []Sentence
	seenParagraph := false

	for _, paragraph := range paragraphBoundaryRe.Split(text, -1) {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		firstInParagraph := true
		for _, part := range splitAfterTerminators(paragraph) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}

			if len(sentences) > 0 &&
				!firstInParagraph &&
				endsWithAbbreviation(sentences[len(sentences)-1].Text) &&
				!startsLikeNewSentence(part) {
				prev := &sentences[len(sentences)-1]
				prev.Text = prev.Text + " " + part
			} else {
				sentences = append(sentences, Sentence{
					Text:            part,
					StartsParagraph: seenParagraph && firstInParagraph,
				})
			}

			firstInParagraph = false
		}

		seenParagraph = true
	}

	return sentences
}

// splitAfterTerminators splits a paragraph on whitespace that immediately
// follows '.', '!' or '?', keeping the punctuation with the preceding part.
func splitAfterTerminators(paragraph string) []string {
	locs := sentenceBoundaryRe.FindAllStringIndex(paragraph, -1)
	if len(locs) == 0 {
		return []string{paragraph}
	}

	parts := make([]string, 0, len(locs)+1)
	start := 0
	for _, loc := range locs {
		// loc[0] is the index of the punctuation mark itself.
		parts = append(parts, paragraph[start:loc[0]+1])
		start = loc[1]
	}
	if start < len(paragraph) {
		parts = append(parts, paragraph[start:])
	}
	return parts
}

// endsWithAbbreviation reports whether the last token of text, with trailing
// quote and bracket characters stripped, is a protected abbreviation.
func endsWithAbbreviation(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	token := strings.TrimRight(fields[len(fields)-1], trailingQuoteChars)
	_, ok := nonTerminalAbbreviations[strings.ToLower(token)]
	return ok
}

// startsLikeNewSentence reports whether the first token of part, with leading
// quote and bracket characters stripped, is a common sentence-starter word.
func startsLikeNewSentence(part string) bool {
	fields := strings.Fields(part)
	if len(fields) == 0 {
		return false
	}
	token := strings.TrimLeft(fields[0], leadingQuoteChars)
	if token == "" {
		return false
	}
	_, ok := commonSentenceStarters[strings.ToLower(token)]
	return ok
}
