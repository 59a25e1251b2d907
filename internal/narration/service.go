package narration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/vox-platform/vox-api/internal/audio"
	"github.com/vox-platform/vox-api/internal/captions"
	"github.com/vox-platform/vox-api/internal/elevenlabs"
	"github.com/vox-platform/vox-api/internal/storage"
)

// ErrInsufficientCredits is returned when the author cannot afford the
// requested generation.
var ErrInsufficientCredits = errors.New("narration: insufficient credits")

// Playlists defines the port for keeping playlist episode counts current.
type Playlists interface {
	// EpisodeAdded records that a published episode was added to the playlist.
	EpisodeAdded(ctx context.Context, playlistID string) error
}

// Credits defines the port for checking and charging author credits.
// Cost is measured in characters of input text.
type Credits interface {
	// CanAfford reports whether the author has at least chars credits.
	CanAfford(ctx context.Context, authorID string, chars int) (bool, error)
	// Charge deducts chars credits from the author.
	Charge(ctx context.Context, authorID string, chars int) error
}

// ServiceConfig holds the tuning parameters for the narration service.
type ServiceConfig struct {
	// Timeline controls caption cue timing.
	Timeline captions.TimelineConfig
	// WordsPerCue controls alignment-based cue grouping.
	// Zero uses captions.DefaultWordsPerCue.
	WordsPerCue int
	// UseAlignment enables character-level timing from the provider.
	// When disabled, or when the provider returns incomplete alignment,
	// cues are timed from the measured clip durations.
	UseAlignment bool
}

// Service orchestrates narration generation: text segmentation, per-sentence
// speech synthesis, audio assembly, caption timing, and artifact storage.
type Service struct {
	repo      Repository
	tts       elevenlabs.Client
	store     storage.Storage
	prober    audio.Prober
	assembler audio.Assembler
	credits   Credits
	playlists Playlists
	cfg       ServiceConfig
	logger    *slog.Logger
}

// NewService creates a narration service wired to the given ports.
func NewService(
	repo Repository,
	tts elevenlabs.Client,
	store storage.Storage,
	prober audio.Prober,
	assembler audio.Assembler,
	credits Credits,
	cfg ServiceConfig,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		tts:       tts,
		store:     store,
		prober:    prober,
		assembler: assembler,
		credits:   credits,
		cfg:       cfg,
		logger:    logger,
	}
}

// AttachPlaylists wires the playlist episode-count hook. Without it,
// published episodes simply skip the count update.
func (s *Service) AttachPlaylists(playlists Playlists) {
	s.playlists = playlists
}

// Generate validates the request, checks credits, and enqueues a new job.
// Processing runs separately via Process.
func (s *Service) Generate(ctx context.Context, authorID, text string, voice VoiceSettings, episode EpisodeMeta) (*Job, error) {
	job, err := NewJob(authorID, text, voice, episode)
	if err != nil {
		return nil, err
	}

	cost := utf8.RuneCountInString(text)
	ok, err := s.credits.CanAfford(ctx, authorID, cost)
	if err != nil {
		return nil, fmt.Errorf("checking credits: %w", err)
	}
	if !ok {
		return nil, ErrInsufficientCredits
	}

	if err := s.repo.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("saving job: %w", err)
	}

	s.logger.Info("narration job queued",
		"job_id", job.ID,
		"author_id", authorID,
		"chars", cost,
	)

	return job.Clone(), nil
}

// Job returns the job with the given ID.
func (s *Service) Job(ctx context.Context, id string) (*Job, error) {
	return s.repo.Find(ctx, id)
}

// JobsByAuthor returns all jobs for the given author, most recent first.
func (s *Service) JobsByAuthor(ctx context.Context, authorID string) ([]*Job, error) {
	return s.repo.FindByAuthor(ctx, authorID)
}

// Voices returns the available provider voices.
func (s *Service) Voices(ctx context.Context) ([]elevenlabs.Voice, error) {
	return s.tts.Voices(ctx)
}

// Process runs the full generation pipeline for a queued job. On failure the
// job is marked failed with the error message, and temporary files are
// cleaned up either way.
func (s *Service) Process(ctx context.Context, jobID string) error {
	job, err := s.repo.Find(ctx, jobID)
	if err != nil {
		return err
	}

	if err := job.Start(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, job); err != nil {
		return fmt.Errorf("saving job: %w", err)
	}

	if err := s.process(ctx, job); err != nil {
		s.logger.Error("narration job failed",
			"job_id", job.ID,
			"error", err,
		)
		if failErr := job.Fail(err.Error()); failErr != nil {
			return failErr
		}
		if saveErr := s.repo.Save(ctx, job); saveErr != nil {
			return saveErr
		}
		return err
	}

	return s.repo.Save(ctx, job)
}

// process executes the pipeline steps and mutates the job in place.
func (s *Service) process(ctx context.Context, job *Job) error {
	sentences := captions.SplitSentences(job.Text)
	if len(sentences) == 0 {
		return captions.ErrNoSentences
	}
	job.SetProgress(10)
	s.saveProgress(ctx, job)

	speech := elevenlabs.SpeechRequest{
		VoiceID:         job.Voice.VoiceID,
		ModelID:         job.Voice.ModelID,
		Stability:       job.Voice.Stability,
		SimilarityBoost: job.Voice.SimilarityBoost,
		SpeakingRate:    job.Voice.SpeakingRate,
	}

	clipPaths := make([]string, 0, len(sentences))
	alignments := make([]*elevenlabs.Alignment, 0, len(sentences))
	var tempFiles []string
	defer func() {
		if len(tempFiles) > 0 {
			if err := s.store.CleanupTemp(context.WithoutCancel(ctx), tempFiles); err != nil {
				s.logger.Warn("temp cleanup failed", "job_id", job.ID, "error", err)
			}
		}
	}()

	for i, sentence := range sentences {
		clip, alignment, err := s.synthesizeSentence(ctx, sentence.Text, speech)
		if err != nil {
			return fmt.Errorf("synthesizing sentence %d: %w", i+1, err)
		}

		name := fmt.Sprintf("%s-clip-%03d.mp3", job.ID, i)
		path, err := s.store.SaveTemp(ctx, name, bytes.NewReader(clip))
		if err != nil {
			return fmt.Errorf("saving clip %d: %w", i+1, err)
		}
		tempFiles = append(tempFiles, path)
		clipPaths = append(clipPaths, path)
		alignments = append(alignments, alignment)

		job.SetProgress(10 + 50*(i+1)/len(sentences))
		s.saveProgress(ctx, job)
	}

	durations := make([]float64, len(clipPaths))
	for i, path := range clipPaths {
		d, err := s.prober.Duration(ctx, path)
		if err != nil {
			return fmt.Errorf("probing clip %d: %w", i+1, err)
		}
		durations[i] = d
	}

	gaps := s.clipGaps(sentences)
	finalPath, err := s.store.SaveTemp(ctx, fmt.Sprintf("%s-final.mp3", job.ID), bytes.NewReader(nil))
	if err != nil {
		return fmt.Errorf("allocating output file: %w", err)
	}
	tempFiles = append(tempFiles, finalPath)

	if err := s.assembler.Assemble(ctx, clipPaths, gaps, finalPath); err != nil {
		return fmt.Errorf("assembling audio: %w", err)
	}
	job.SetProgress(75)
	s.saveProgress(ctx, job)

	cues, err := s.buildCues(sentences, durations, gaps, alignments)
	if err != nil {
		return fmt.Errorf("building captions: %w", err)
	}
	vtt := captions.RenderVTT(cues)
	job.SetProgress(85)
	s.saveProgress(ctx, job)

	totalDuration, err := s.prober.Duration(ctx, finalPath)
	if err != nil {
		return fmt.Errorf("probing output: %w", err)
	}

	audioURL, vttURL, keepFinal, err := s.storeArtifacts(ctx, job, finalPath, vtt)
	if err != nil {
		return err
	}
	if keepFinal {
		tempFiles = tempFiles[:len(tempFiles)-1]
	}
	job.SetProgress(95)
	s.saveProgress(ctx, job)

	cost := utf8.RuneCountInString(job.Text)
	if err := s.credits.Charge(ctx, job.AuthorID, cost); err != nil {
		return fmt.Errorf("charging credits: %w", err)
	}

	if err := job.Complete(audioURL, vttURL, totalDuration); err != nil {
		return err
	}

	if s.playlists != nil && job.Episode.Published && job.Episode.PlaylistID != "" {
		if err := s.playlists.EpisodeAdded(ctx, job.Episode.PlaylistID); err != nil {
			s.logger.Warn("updating playlist episode count failed",
				"job_id", job.ID,
				"playlist_id", job.Episode.PlaylistID,
				"error", err,
			)
		}
	}

	s.logger.Info("narration job completed",
		"job_id", job.ID,
		"sentences", len(sentences),
		"duration", totalDuration,
	)

	return nil
}

// synthesizeSentence generates audio for one sentence, with character
// alignment when enabled. A nil alignment means none was available.
func (s *Service) synthesizeSentence(ctx context.Context, text string, req elevenlabs.SpeechRequest) ([]byte, *elevenlabs.Alignment, error) {
	if s.cfg.UseAlignment {
		return s.tts.SynthesizeWithTimestamps(ctx, text, req)
	}
	clip, err := s.tts.Synthesize(ctx, text, req)
	return clip, nil, err
}

// clipGaps returns the silence in milliseconds to insert before each clip:
// zero before the first, the paragraph gap before a paragraph opener, and
// the sentence gap otherwise. These match the caption timeline gaps so the
// audio and cues stay in sync.
func (s *Service) clipGaps(sentences []captions.Sentence) []int {
	gaps := make([]int, len(sentences))
	for i := 1; i < len(sentences); i++ {
		if sentences[i].StartsParagraph {
			gaps[i] = s.cfg.Timeline.ParagraphGapMs
		} else {
			gaps[i] = s.cfg.Timeline.SentenceGapMs
		}
	}
	return gaps
}

// buildCues times caption cues against the assembled track. When complete
// character alignment is available it produces word-grouped cues; otherwise
// it falls back to sentence cues from the measured clip durations.
func (s *Service) buildCues(sentences []captions.Sentence, durations []float64, gaps []int, alignments []*elevenlabs.Alignment) ([]captions.Cue, error) {
	if cues := s.alignmentCues(durations, gaps, alignments); cues != nil {
		return cues, nil
	}
	return captions.FromRealDurations(sentences, durations, s.cfg.Timeline)
}

// alignmentCues merges per-clip character alignments into track time and
// groups them into cues. It returns nil when any clip lacks alignment.
func (s *Service) alignmentCues(durations []float64, gaps []int, alignments []*elevenlabs.Alignment) []captions.Cue {
	if !s.cfg.UseAlignment {
		return nil
	}

	var characters []string
	var starts, ends []float64
	offset := 0.0
	for i, alignment := range alignments {
		if alignment == nil || len(alignment.Characters) == 0 {
			return nil
		}
		offset += float64(gaps[i]) / 1000.0
		for j, ch := range alignment.Characters {
			characters = append(characters, ch)
			starts = append(starts, alignment.CharacterStartTimesSeconds[j]+offset)
			ends = append(ends, alignment.CharacterEndTimesSeconds[j]+offset)
		}
		// Separator so grouping does not join the last word of one clip
		// with the first word of the next.
		characters = append(characters, " ")
		starts = append(starts, offset+durations[i])
		ends = append(ends, offset+durations[i])
		offset += durations[i]
	}

	return captions.FromAlignment(characters, starts, ends, s.cfg.WordsPerCue)
}

// storeArtifacts persists the assembled audio and VTT captions. With an
// object store configured they are uploaded under the author's generation
// prefix; otherwise they stay on local disk and the paths serve as URLs.
// keepFinal reports whether the assembled audio file must survive cleanup.
func (s *Service) storeArtifacts(ctx context.Context, job *Job, finalPath, vtt string) (audioURL, vttURL string, keepFinal bool, err error) {
	audioKey := s.artifactKey(job, "audio.mp3")
	vttKey := s.artifactKey(job, "captions.vtt")

	audioFile, err := s.store.LoadTemp(ctx, finalPath)
	if err != nil {
		return "", "", false, fmt.Errorf("reading output: %w", err)
	}
	defer audioFile.Close()

	audioURL, err = s.store.Upload(ctx, audioKey, "audio/mpeg", audioFile)
	if errors.Is(err, storage.ErrS3NotConfigured) {
		vttPath, saveErr := s.store.SaveTemp(ctx, fmt.Sprintf("%s-captions.vtt", job.ID), strings.NewReader(vtt))
		if saveErr != nil {
			return "", "", false, fmt.Errorf("saving captions: %w", saveErr)
		}
		return finalPath, vttPath, true, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("uploading audio: %w", err)
	}

	vttURL, err = s.store.Upload(ctx, vttKey, "text/vtt", strings.NewReader(vtt))
	if err != nil {
		return "", "", false, fmt.Errorf("uploading captions: %w", err)
	}

	return audioURL, vttURL, false, nil
}

// artifactKey returns the object key for a job artifact.
func (s *Service) artifactKey(job *Job, name string) string {
	return filepath.ToSlash(filepath.Join("vox-platform", "generations", job.AuthorID, job.ID, name))
}

// saveProgress persists progress updates, logging rather than failing the
// pipeline when the save itself errors.
func (s *Service) saveProgress(ctx context.Context, job *Job) {
	if err := s.repo.Save(ctx, job); err != nil {
		s.logger.Warn("saving progress failed", "job_id", job.ID, "error", err)
	}
}
