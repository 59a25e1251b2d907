package captions

import (
	"fmt"
	"math"
	"strings"
)

// vttHeader is the fixed first line of a WebVTT document.
const vttHeader = "WEBVTT"

// FormatTimestamp renders seconds as a WebVTT timestamp, HH:MM:SS.mmm with
// two-digit hours, minutes and seconds and three-digit milliseconds.
func FormatTimestamp(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int(math.Mod(seconds, 3600) / 60)
	secs := math.Mod(seconds, 60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}

// RenderVTT renders cues as a WebVTT document: the header line, then one
// numbered block per cue with a timestamp line, the cue text and a blank
// separator line.
func RenderVTT(cues []Cue) string {
	var b strings.Builder
	b.WriteString(vttHeader + "\n\n")

	for _, cue := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			cue.Index,
			FormatTimestamp(cue.Start),
			FormatTimestamp(cue.End),
			cue.Text,
		)
	}

	return b.String()
}
