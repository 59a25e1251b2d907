package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vox-platform/vox-api/internal/captions"
	"github.com/vox-platform/vox-api/internal/comment"
	"github.com/vox-platform/vox-api/internal/elevenlabs"
	"github.com/vox-platform/vox-api/internal/narration"
	"github.com/vox-platform/vox-api/internal/playlist"
	"github.com/vox-platform/vox-api/internal/profile"
	"github.com/vox-platform/vox-api/internal/storage"
	"github.com/vox-platform/vox-api/internal/subscription"
)

// stubTTS returns canned audio for any sentence.
type stubTTS struct {
	voices []elevenlabs.Voice
	err    error
}

func (s *stubTTS) Synthesize(_ context.Context, _ string, _ elevenlabs.SpeechRequest) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("audio"), nil
}

func (s *stubTTS) SynthesizeWithTimestamps(_ context.Context, _ string, _ elevenlabs.SpeechRequest) ([]byte, *elevenlabs.Alignment, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return []byte("audio"), nil, nil
}

func (s *stubTTS) Voices(_ context.Context) ([]elevenlabs.Voice, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.voices, nil
}

type stubProber struct{}

func (stubProber) Duration(_ context.Context, _ string) (float64, error) {
	return 2.0, nil
}

type stubAssembler struct{}

func (stubAssembler) Assemble(_ context.Context, _ []string, _ []int, outputPath string) error {
	return os.WriteFile(outputPath, []byte("assembled"), 0o644)
}

type testEnv struct {
	router   http.Handler
	profiles *profile.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	profiles := profile.NewService(profile.NewMemoryRepository(), logger)
	playlists := playlist.NewService(playlist.NewMemoryRepository(), logger)
	comments := comment.NewService(comment.NewMemoryRepository(), logger)
	subscriptions := subscription.NewService(subscription.NewMemoryRepository(), logger)

	tts := &stubTTS{voices: []elevenlabs.Voice{{VoiceID: "v1", Name: "Aria"}}}
	narrationSvc := narration.NewService(
		narration.NewMemoryRepository(),
		tts,
		store,
		stubProber{},
		stubAssembler{},
		profiles,
		narration.ServiceConfig{Timeline: captions.DefaultTimelineConfig()},
		logger,
	)
	narrationSvc.AttachPlaylists(playlists)

	h := NewHandlers(narrationSvc, profiles, playlists, comments, subscriptions, logger,
		WithAsyncProcessing(false))

	return &testEnv{
		router:   NewRouter(h, logger, DefaultConfig()),
		profiles: profiles,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func (e *testEnv) createAuthor(t *testing.T, username string) AuthorResponse {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/authors", CreateAuthorRequest{Username: username})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[AuthorResponse](t, rec)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[HealthResponse](t, rec).Status)
}

func TestCreateAuthor(t *testing.T) {
	env := newTestEnv(t)

	author := env.createAuthor(t, "alice")
	assert.NotEmpty(t, author.ID)
	assert.Equal(t, "alice", author.Username)

	// Duplicate usernames are refused.
	rec := env.do(t, http.MethodPost, "/api/authors", CreateAuthorRequest{Username: "alice"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "USERNAME_TAKEN", decode[ErrorResponse](t, rec).Code)
}

func TestCreateAuthorValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/authors", CreateAuthorRequest{Username: "ab"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[ErrorResponse](t, rec).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/authors", strings.NewReader("{not json"))
	rec2 := httptest.NewRecorder()
	env.router.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
	assert.Equal(t, "INVALID_JSON", decode[ErrorResponse](t, rec2).Code)
}

func TestListAndGetAuthors(t *testing.T) {
	env := newTestEnv(t)
	env.createAuthor(t, "bob")
	env.createAuthor(t, "alice")

	rec := env.do(t, http.MethodGet, "/api/authors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	authors := decode[[]AuthorResponse](t, rec)
	require.Len(t, authors, 2)
	assert.Equal(t, "alice", authors[0].Username)

	rec = env.do(t, http.MethodGet, "/api/authors/bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob", decode[AuthorResponse](t, rec).Username)

	rec = env.do(t, http.MethodGet, "/api/authors/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateAuthor(t *testing.T) {
	env := newTestEnv(t)
	author := env.createAuthor(t, "alice")

	rec := env.do(t, http.MethodPatch, "/api/authors/"+author.ID, UpdateAuthorRequest{
		DisplayName: "Alice",
		Bio:         "Narrator.",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[AuthorResponse](t, rec)
	assert.Equal(t, "Alice", updated.DisplayName)
	assert.Equal(t, "Narrator.", updated.Bio)
}

func TestCredits(t *testing.T) {
	env := newTestEnv(t)
	author := env.createAuthor(t, "alice")

	rec := env.do(t, http.MethodGet, "/api/narration/credits/"+author.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	credits := decode[CreditsResponse](t, rec)
	assert.Equal(t, profile.MonthlyCredits, credits.Credits)
	assert.Equal(t, profile.MonthlyCredits, credits.Limit)

	rec = env.do(t, http.MethodGet, "/api/narration/credits/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVoices(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/narration/voices", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	voices := decode[[]elevenlabs.Voice](t, rec)
	require.Len(t, voices, 1)
	assert.Equal(t, "Aria", voices[0].Name)
}

func TestGenerateAndProcess(t *testing.T) {
	env := newTestEnv(t)
	author := env.createAuthor(t, "alice")

	rec := env.do(t, http.MethodPost, "/api/narration/generate/"+author.ID, GenerateRequest{
		Text:    "First sentence. Second sentence.",
		VoiceID: "v1",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	job := decode[JobResponse](t, rec)
	assert.Equal(t, "queued", job.Status)

	// Synchronous processing endpoint drives the job to completion.
	rec = env.do(t, http.MethodPost, "/api/narration/process/"+job.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	processed := decode[JobResponse](t, rec)
	assert.Equal(t, "completed", processed.Status)
	assert.Equal(t, 100, processed.Progress)
	assert.NotEmpty(t, processed.AudioURL)
	assert.NotEmpty(t, processed.VTTURL)

	rec = env.do(t, http.MethodGet, "/api/narration/job/"+job.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", decode[JobResponse](t, rec).Status)

	// Credits were deducted.
	rec = env.do(t, http.MethodGet, "/api/narration/credits/"+author.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Less(t, decode[CreditsResponse](t, rec).Credits, profile.MonthlyCredits)

	// Processing a job twice conflicts.
	rec = env.do(t, http.MethodPost, "/api/narration/process/"+job.ID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGenerateValidation(t *testing.T) {
	env := newTestEnv(t)
	author := env.createAuthor(t, "alice")

	rec := env.do(t, http.MethodPost, "/api/narration/generate/"+author.ID, GenerateRequest{
		Text: "Missing voice.",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[ErrorResponse](t, rec).Code)
}

func TestGenerateUnknownAuthor(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/narration/generate/missing", GenerateRequest{
		Text:    "Hello.",
		VoiceID: "v1",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "AUTHOR_NOT_FOUND", decode[ErrorResponse](t, rec).Code)
}

func TestGenerateInsufficientCredits(t *testing.T) {
	env := newTestEnv(t)
	author := env.createAuthor(t, "alice")
	require.NoError(t, env.profiles.Charge(context.Background(), author.ID, profile.MonthlyCredits))

	rec := env.do(t, http.MethodPost, "/api/narration/generate/"+author.ID, GenerateRequest{
		Text:    "Hello there.",
		VoiceID: "v1",
	})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "INSUFFICIENT_CREDITS", decode[ErrorResponse](t, rec).Code)
}

func TestJobNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/narration/job/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/narration/process/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlaylistLifecycle(t *testing.T) {
	env := newTestEnv(t)
	author := env.createAuthor(t, "alice")

	rec := env.do(t, http.MethodPost, "/api/playlists/"+author.ID, CreatePlaylistRequest{Title: "Season One"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[playlist.Playlist](t, rec)

	rec = env.do(t, http.MethodGet, "/api/playlists/"+author.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]playlist.Playlist](t, rec), 1)

	rec = env.do(t, http.MethodGet, "/api/playlists/detail/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/playlists/"+created.ID, UpdatePlaylistRequest{
		Title:     "Season 1",
		Published: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[playlist.Playlist](t, rec).Published)

	rec = env.do(t, http.MethodDelete, "/api/playlists/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/playlists/detail/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGeneratePublishedEpisodeCountsInPlaylist(t *testing.T) {
	env := newTestEnv(t)
	author := env.createAuthor(t, "alice")

	rec := env.do(t, http.MethodPost, "/api/playlists/"+author.ID, CreatePlaylistRequest{Title: "Season One"})
	require.Equal(t, http.StatusCreated, rec.Code)
	pl := decode[playlist.Playlist](t, rec)

	rec = env.do(t, http.MethodPost, "/api/narration/generate/"+author.ID, GenerateRequest{
		Text:    "Hello there.",
		VoiceID: "v1",
		Episode: EpisodeRequest{Title: "Pilot", PlaylistID: pl.ID, Published: true},
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	job := decode[JobResponse](t, rec)

	rec = env.do(t, http.MethodPost, "/api/narration/process/"+job.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/playlists/detail/"+pl.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[playlist.Playlist](t, rec).EpisodeCount)

	// A playlist with episodes cannot be deleted.
	rec = env.do(t, http.MethodDelete, "/api/playlists/"+pl.ID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCommentFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/comments", CreateCommentRequest{
		EpisodeID: "ep-1",
		UserID:    "user-1",
		Text:      "Great episode.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	top := decode[comment.Comment](t, rec)

	rec = env.do(t, http.MethodPost, "/api/comments", CreateCommentRequest{
		EpisodeID: "ep-1",
		UserID:    "user-2",
		Text:      "Agreed.",
		ParentID:  top.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/comments/ep-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	threads := decode[[]comment.Thread](t, rec)
	require.Len(t, threads, 1)
	assert.Len(t, threads[0].Replies, 1)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/comments/%s/like", top.ID), LikeRequest{UserID: "user-2"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[LikeResponse](t, rec).Liked)

	rec = env.do(t, http.MethodDelete, "/api/comments/"+top.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestEpisodeLikes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/comments/episodes/ep-1/liked?user_id=user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[LikeResponse](t, rec).Liked)

	rec = env.do(t, http.MethodPost, "/api/comments/episodes/ep-1/like", LikeRequest{UserID: "user-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[LikeResponse](t, rec)
	assert.True(t, resp.Liked)
	assert.Equal(t, 1, resp.Count)

	rec = env.do(t, http.MethodGet, "/api/comments/episodes/ep-1/liked?user_id=user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[LikeResponse](t, rec).Liked)

	rec = env.do(t, http.MethodGet, "/api/comments/episodes/ep-1/liked", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommentReports(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/comments", CreateCommentRequest{
		EpisodeID: "ep-1",
		UserID:    "user-1",
		Text:      "Spam link.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	c := decode[comment.Comment](t, rec)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/comments/%s/report", c.ID), ReportRequest{
		ReporterID: "user-2",
		Reason:     "spam",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/comments/reports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reports := decode[[]comment.Report](t, rec)
	require.Len(t, reports, 1)
	assert.Equal(t, comment.ReportStatusPending, reports[0].Status)
}

func TestSubscriptionFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/subscriptions/check/user-1/user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, subscription.StatusSelf, decode[SubscriptionStatusResponse](t, rec).Status)

	rec = env.do(t, http.MethodGet, "/api/subscriptions/check/user-1/author-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, subscription.StatusNone, decode[SubscriptionStatusResponse](t, rec).Status)

	rec = env.do(t, http.MethodPost, "/api/subscriptions", SubscribeRequest{
		SubscriberID: "user-1",
		AuthorID:     "author-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	sub := decode[subscription.Subscription](t, rec)
	assert.Equal(t, subscription.StatusActive, sub.Status)

	rec = env.do(t, http.MethodPost, "/api/subscriptions", SubscribeRequest{
		SubscriberID: "user-1",
		AuthorID:     "author-1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/subscriptions", SubscribeRequest{
		SubscriberID: "user-1",
		AuthorID:     "user-1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/subscriptions/"+sub.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, subscription.StatusCancelled, decode[subscription.Subscription](t, rec).Status)

	rec = env.do(t, http.MethodGet, "/api/subscriptions/check/user-1/author-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, subscription.StatusCancelled, decode[SubscriptionStatusResponse](t, rec).Status)
}
