package captions

import (
	"errors"
	"unicode/utf8"
)

// ErrNoSentences is returned when timeline synthesis is called with an empty
// sentence slice.
var ErrNoSentences = errors.New("captions: no sentences to synthesize")

// ErrDurationCount is returned when the number of measured durations does not
// match the number of sentences.
var ErrDurationCount = errors.New("captions: duration count does not match sentence count")

// minCueDuration is the minimum on-screen time of a cue in seconds. Shorter
// cues are unreadable, so cue ends are extended to meet it.
const minCueDuration = 0.3

// TimelineConfig holds the timing offsets used when synthesizing a cue
// timeline. All values are in milliseconds.
type TimelineConfig struct {
	// LeadInMs shifts a cue's appearance ahead of the speech it captions.
	LeadInMs int
	// LeadOutMs removes a cue slightly before its speech ends so the next
	// cue can lead in.
	LeadOutMs int
	// ParagraphGapMs is the silence inserted before a sentence that opens a
	// new paragraph. Must match the silence inserted during audio assembly.
	ParagraphGapMs int
	// SentenceGapMs is the silence inserted between sentences within a
	// paragraph. Must match the silence inserted during audio assembly.
	SentenceGapMs int
}

// DefaultTimelineConfig returns the standard caption timing offsets.
func DefaultTimelineConfig() TimelineConfig {
	return TimelineConfig{
		LeadInMs:       50,
		LeadOutMs:      120,
		ParagraphGapMs: 600,
		SentenceGapMs:  150,
	}
}

// Cue is one timed subtitle entry.
type Cue struct {
	// Index is the 1-based cue number.
	Index int
	// Start is the cue's appearance time in seconds.
	Start float64
	// End is the cue's removal time in seconds, always greater than Start.
	End float64
	// Text is the caption text.
	Text string
}

// FromTotalDuration synthesizes a cue timeline from a single total duration
// estimate. The estimate is treated as speaking time only: each sentence is
// allocated a slice proportional to its share of the total character count,
// and inter-sentence gaps are layered on top of that budget, so the resulting
// timeline may run longer than the estimate.
//
// Returns ErrNoSentences when sentences is empty. A sentence set with zero
// total characters yields an empty cue list.
func FromTotalDuration(sentences []Sentence, totalSeconds float64, cfg TimelineConfig) ([]Cue, error) {
	if len(sentences) == 0 {
		return nil, ErrNoSentences
	}

	totalChars := 0
	for _, s := range sentences {
		totalChars += utf8.RuneCountInString(s.Text)
	}
	if totalChars == 0 {
		return []Cue{}, nil
	}

	return synthesize(sentences, func(i int) float64 {
		share := float64(utf8.RuneCountInString(sentences[i].Text)) / float64(totalChars)
		return totalSeconds * share
	}, cfg), nil
}

// FromRealDurations synthesizes a cue timeline from measured per-sentence
// clip durations. durations[i] must be the playback length of the clip
// generated for sentences[i], and the gap values in cfg must equal the
// silence durations inserted between clips during audio assembly, or the
// captions will drift out of sync with the assembled track.
//
// Returns ErrNoSentences when sentences is empty and ErrDurationCount when
// the two slices differ in length.
func FromRealDurations(sentences []Sentence, durations []float64, cfg TimelineConfig) ([]Cue, error) {
	if len(sentences) == 0 {
		return nil, ErrNoSentences
	}
	if len(durations) != len(sentences) {
		return nil, ErrDurationCount
	}

	return synthesize(sentences, func(i int) float64 {
		return durations[i]
	}, cfg), nil
}

// synthesize walks the sentences in order, maintaining an audio-time cursor
// that tracks when each sentence's speech starts and ends. Lead-in and
// lead-out only shift the visible cue window; they never perturb the cursor,
// so timing accounting stays anchored to the audio.
func synthesize(sentences []Sentence, speakingDuration func(i int) float64, cfg TimelineConfig) []Cue {
	leadIn := float64(cfg.LeadInMs) / 1000.0
	leadOut := float64(cfg.LeadOutMs) / 1000.0
	paragraphGap := float64(cfg.ParagraphGapMs) / 1000.0
	sentenceGap := float64(cfg.SentenceGapMs) / 1000.0

	cues := make([]Cue, 0, len(sentences))
	audioTime := 0.0
	lastCueEnd := 0.0

	for i, sentence := range sentences {
		if i > 0 {
			if sentence.StartsParagraph {
				audioTime += paragraphGap
			} else {
				audioTime += sentenceGap
			}
		}

		audioEnd := audioTime + speakingDuration(i)

		start := audioTime - leadIn
		if start < 0 {
			start = 0
		}
		end := audioEnd - leadOut
		if end-start < minCueDuration {
			end = start + minCueDuration
		}

		// Clamp against the previous cue so cues never overlap.
		if i > 0 && start < lastCueEnd {
			start = lastCueEnd
			if end-start < minCueDuration {
				end = start + minCueDuration
			}
		}

		cues = append(cues, Cue{
			Index: i + 1,
			Start: start,
			End:   end,
			Text:  sentence.Text,
		})

		lastCueEnd = end
		audioTime = audioEnd
	}

	return cues
}
