package narration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vox-platform/vox-api/internal/captions"
	"github.com/vox-platform/vox-api/internal/elevenlabs"
	"github.com/vox-platform/vox-api/internal/storage"
)

type mockTTS struct {
	mock.Mock
}

func (m *mockTTS) Synthesize(ctx context.Context, text string, req elevenlabs.SpeechRequest) ([]byte, error) {
	args := m.Called(ctx, text, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockTTS) SynthesizeWithTimestamps(ctx context.Context, text string, req elevenlabs.SpeechRequest) ([]byte, *elevenlabs.Alignment, error) {
	args := m.Called(ctx, text, req)
	var audio []byte
	if args.Get(0) != nil {
		audio = args.Get(0).([]byte)
	}
	var alignment *elevenlabs.Alignment
	if args.Get(1) != nil {
		alignment = args.Get(1).(*elevenlabs.Alignment)
	}
	return audio, alignment, args.Error(2)
}

func (m *mockTTS) Voices(ctx context.Context) ([]elevenlabs.Voice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]elevenlabs.Voice), args.Error(1)
}

type mockCredits struct {
	mock.Mock
}

func (m *mockCredits) CanAfford(ctx context.Context, authorID string, chars int) (bool, error) {
	args := m.Called(ctx, authorID, chars)
	return args.Bool(0), args.Error(1)
}

func (m *mockCredits) Charge(ctx context.Context, authorID string, chars int) error {
	args := m.Called(ctx, authorID, chars)
	return args.Error(0)
}

// fakeProber returns a fixed duration for every file.
type fakeProber struct {
	duration float64
}

func (p *fakeProber) Duration(_ context.Context, _ string) (float64, error) {
	return p.duration, nil
}

// fakeAssembler writes a marker file at the output path and records its
// inputs for assertions.
type fakeAssembler struct {
	clipPaths []string
	gapsMs    []int
}

func (a *fakeAssembler) Assemble(_ context.Context, clipPaths []string, gapsMs []int, outputPath string) error {
	a.clipPaths = clipPaths
	a.gapsMs = gapsMs
	return os.WriteFile(outputPath, []byte("assembled-audio"), 0o644)
}

// uploadStorage is local temp storage plus an in-memory object store.
type uploadStorage struct {
	*storage.LocalStorage
	objects      map[string][]byte
	contentTypes map[string]string
}

func newUploadStorage(t *testing.T) *uploadStorage {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return &uploadStorage{
		LocalStorage: local,
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (s *uploadStorage) Upload(_ context.Context, key, contentType string, data io.Reader) (string, error) {
	body, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	s.objects[key] = body
	s.contentTypes[key] = contentType
	return "https://cdn.example.com/" + key, nil
}

func (s *uploadStorage) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func newTestService(t *testing.T, tts elevenlabs.Client, credits Credits, store storage.Storage, cfg ServiceConfig) (*Service, *MemoryRepository, *fakeAssembler) {
	t.Helper()
	if store == nil {
		local, err := storage.NewLocalStorage(t.TempDir())
		require.NoError(t, err)
		store = local
	}
	repo := NewMemoryRepository()
	assembler := &fakeAssembler{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, tts, store, &fakeProber{duration: 2.0}, assembler, credits, cfg, logger)
	return svc, repo, assembler
}

func defaultServiceConfig() ServiceConfig {
	return ServiceConfig{Timeline: captions.DefaultTimelineConfig()}
}

func TestServiceGenerate(t *testing.T) {
	tts := &mockTTS{}
	credits := &mockCredits{}
	svc, repo, _ := newTestService(t, tts, credits, nil, defaultServiceConfig())

	text := "Hello there."
	credits.On("CanAfford", mock.Anything, "author-1", utf8.RuneCountInString(text)).Return(true, nil)

	job, err := svc.Generate(context.Background(), "author-1", text, VoiceSettings{VoiceID: "v"}, EpisodeMeta{})
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, job.Status)

	stored, err := repo.Find(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, stored.Status)
	credits.AssertExpectations(t)
}

func TestServiceGenerateInsufficientCredits(t *testing.T) {
	tts := &mockTTS{}
	credits := &mockCredits{}
	svc, _, _ := newTestService(t, tts, credits, nil, defaultServiceConfig())

	credits.On("CanAfford", mock.Anything, "author-1", mock.Anything).Return(false, nil)

	_, err := svc.Generate(context.Background(), "author-1", "Hello.", VoiceSettings{VoiceID: "v"}, EpisodeMeta{})
	assert.ErrorIs(t, err, ErrInsufficientCredits)
}

func TestServiceProcessLocal(t *testing.T) {
	tts := &mockTTS{}
	credits := &mockCredits{}
	svc, repo, assembler := newTestService(t, tts, credits, nil, defaultServiceConfig())

	text := "First sentence. Second sentence."
	cost := utf8.RuneCountInString(text)
	credits.On("CanAfford", mock.Anything, "author-1", cost).Return(true, nil)
	credits.On("Charge", mock.Anything, "author-1", cost).Return(nil)
	tts.On("Synthesize", mock.Anything, "First sentence.", mock.Anything).Return([]byte("clip-1"), nil)
	tts.On("Synthesize", mock.Anything, "Second sentence.", mock.Anything).Return([]byte("clip-2"), nil)

	job, err := svc.Generate(context.Background(), "author-1", text, VoiceSettings{VoiceID: "v"}, EpisodeMeta{})
	require.NoError(t, err)

	require.NoError(t, svc.Process(context.Background(), job.ID))

	done, err := repo.Find(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, 100, done.Progress)
	assert.Equal(t, 2.0, done.Duration)

	// Without an object store the outputs stay on disk.
	assert.FileExists(t, done.AudioURL)
	vtt, err := os.ReadFile(done.VTTURL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(vtt), "WEBVTT"))
	assert.Contains(t, string(vtt), "First sentence.")
	assert.Contains(t, string(vtt), "Second sentence.")

	// The assembler receives one clip per sentence with the sentence gap
	// before the second clip.
	require.Len(t, assembler.clipPaths, 2)
	assert.Equal(t, []int{0, 150}, assembler.gapsMs)

	credits.AssertExpectations(t)
	tts.AssertExpectations(t)
}

func TestServiceProcessUploads(t *testing.T) {
	tts := &mockTTS{}
	credits := &mockCredits{}
	store := newUploadStorage(t)
	svc, repo, _ := newTestService(t, tts, credits, store, defaultServiceConfig())

	credits.On("CanAfford", mock.Anything, "author-1", mock.Anything).Return(true, nil)
	credits.On("Charge", mock.Anything, "author-1", mock.Anything).Return(nil)
	tts.On("Synthesize", mock.Anything, mock.Anything, mock.Anything).Return([]byte("clip"), nil)

	job, err := svc.Generate(context.Background(), "author-1", "Hello there.", VoiceSettings{VoiceID: "v"}, EpisodeMeta{})
	require.NoError(t, err)
	require.NoError(t, svc.Process(context.Background(), job.ID))

	done, err := repo.Find(context.Background(), job.ID)
	require.NoError(t, err)

	audioKey := fmt.Sprintf("vox-platform/generations/author-1/%s/audio.mp3", job.ID)
	vttKey := fmt.Sprintf("vox-platform/generations/author-1/%s/captions.vtt", job.ID)

	assert.Equal(t, "https://cdn.example.com/"+audioKey, done.AudioURL)
	assert.Equal(t, "https://cdn.example.com/"+vttKey, done.VTTURL)
	assert.Equal(t, "audio/mpeg", store.contentTypes[audioKey])
	assert.Equal(t, "text/vtt", store.contentTypes[vttKey])
	assert.Equal(t, []byte("assembled-audio"), store.objects[audioKey])
	assert.True(t, bytes.HasPrefix(store.objects[vttKey], []byte("WEBVTT")))
}

func TestServiceProcessSynthesisFailure(t *testing.T) {
	tts := &mockTTS{}
	credits := &mockCredits{}
	svc, repo, _ := newTestService(t, tts, credits, nil, defaultServiceConfig())

	credits.On("CanAfford", mock.Anything, "author-1", mock.Anything).Return(true, nil)
	tts.On("Synthesize", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("provider down"))

	job, err := svc.Generate(context.Background(), "author-1", "Hello there.", VoiceSettings{VoiceID: "v"}, EpisodeMeta{})
	require.NoError(t, err)

	err = svc.Process(context.Background(), job.ID)
	require.Error(t, err)

	failed, findErr := repo.Find(context.Background(), job.ID)
	require.NoError(t, findErr)
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Contains(t, failed.Error, "provider down")

	// Credits are only charged on success.
	credits.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything)
}

func TestServiceProcessWithAlignment(t *testing.T) {
	tts := &mockTTS{}
	credits := &mockCredits{}
	store := newUploadStorage(t)
	cfg := defaultServiceConfig()
	cfg.UseAlignment = true
	svc, repo, _ := newTestService(t, tts, credits, store, cfg)

	credits.On("CanAfford", mock.Anything, "author-1", mock.Anything).Return(true, nil)
	credits.On("Charge", mock.Anything, "author-1", mock.Anything).Return(nil)

	alignment := &elevenlabs.Alignment{
		Characters:                 []string{"H", "i", "."},
		CharacterStartTimesSeconds: []float64{0.0, 0.2, 0.4},
		CharacterEndTimesSeconds:   []float64{0.2, 0.4, 0.6},
	}
	tts.On("SynthesizeWithTimestamps", mock.Anything, "Hi.", mock.Anything).Return([]byte("clip"), alignment, nil)

	job, err := svc.Generate(context.Background(), "author-1", "Hi.", VoiceSettings{VoiceID: "v"}, EpisodeMeta{})
	require.NoError(t, err)
	require.NoError(t, svc.Process(context.Background(), job.ID))

	done, err := repo.Find(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)

	vttKey := fmt.Sprintf("vox-platform/generations/author-1/%s/captions.vtt", job.ID)
	vtt := string(store.objects[vttKey])
	assert.Contains(t, vtt, "Hi.")
	assert.Contains(t, vtt, "00:00:00.000 --> 00:00:00.600")
	tts.AssertExpectations(t)
}

func TestServiceProcessAlignmentFallback(t *testing.T) {
	tts := &mockTTS{}
	credits := &mockCredits{}
	cfg := defaultServiceConfig()
	cfg.UseAlignment = true
	svc, repo, _ := newTestService(t, tts, credits, nil, cfg)

	credits.On("CanAfford", mock.Anything, "author-1", mock.Anything).Return(true, nil)
	credits.On("Charge", mock.Anything, "author-1", mock.Anything).Return(nil)
	// The provider returns audio but no alignment data.
	tts.On("SynthesizeWithTimestamps", mock.Anything, mock.Anything, mock.Anything).Return([]byte("clip"), nil, nil)

	job, err := svc.Generate(context.Background(), "author-1", "Hello there.", VoiceSettings{VoiceID: "v"}, EpisodeMeta{})
	require.NoError(t, err)
	require.NoError(t, svc.Process(context.Background(), job.ID))

	done, err := repo.Find(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)

	vtt, err := os.ReadFile(done.VTTURL)
	require.NoError(t, err)
	assert.Contains(t, string(vtt), "Hello there.")
}

func TestServiceProcessNotFound(t *testing.T) {
	tts := &mockTTS{}
	credits := &mockCredits{}
	svc, _, _ := newTestService(t, tts, credits, nil, defaultServiceConfig())

	err := svc.Process(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestServiceVoices(t *testing.T) {
	tts := &mockTTS{}
	credits := &mockCredits{}
	svc, _, _ := newTestService(t, tts, credits, nil, defaultServiceConfig())

	voices := []elevenlabs.Voice{{VoiceID: "v1", Name: "Aria"}}
	tts.On("Voices", mock.Anything).Return(voices, nil)

	got, err := svc.Voices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, voices, got)
}
