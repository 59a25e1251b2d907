// Package audio provides interfaces and implementations for audio probing
// and track assembly.
package audio

import "context"

// Prober measures the real playback duration of an audio file.
type Prober interface {
	// Duration returns the playback duration of the file in seconds.
	Duration(ctx context.Context, path string) (float64, error)
}

// Assembler concatenates independently generated audio clips into a single
// track, inserting silence between them.
type Assembler interface {
	// Assemble joins clipPaths in order into outputPath. gapsMs[i] is the
	// silence in milliseconds inserted before clip i; gapsMs[0] is ignored
	// since no silence precedes the first clip. len(gapsMs) must equal
	// len(clipPaths).
	//
	// The gap values must be the same constants handed to caption timeline
	// synthesis, or captions will drift against the assembled track.
	Assemble(ctx context.Context, clipPaths []string, gapsMs []int, outputPath string) error
}
