package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vox-platform/vox-api/internal/comment"
	"github.com/vox-platform/vox-api/internal/narration"
	"github.com/vox-platform/vox-api/internal/playlist"
	"github.com/vox-platform/vox-api/internal/profile"
	"github.com/vox-platform/vox-api/internal/subscription"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	narration     *narration.Service
	profiles      *profile.Service
	playlists     *playlist.Service
	comments      *comment.Service
	subscriptions *subscription.Service
	validator     *validator.Validate
	logger        *slog.Logger
	asyncProcess  bool
}

// HandlerOption configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithAsyncProcessing enables or disables background job processing.
// When disabled, Generate only queues the job; processing happens via the
// process endpoint.
func WithAsyncProcessing(enabled bool) HandlerOption {
	return func(h *Handlers) {
		h.asyncProcess = enabled
	}
}

// NewHandlers creates a Handlers instance wired to the domain services.
func NewHandlers(
	narrationSvc *narration.Service,
	profiles *profile.Service,
	playlists *playlist.Service,
	comments *comment.Service,
	subscriptions *subscription.Service,
	logger *slog.Logger,
	opts ...HandlerOption,
) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		narration:     narrationSvc,
		profiles:      profiles,
		playlists:     playlists,
		comments:      comments,
		subscriptions: subscriptions,
		validator:     validator.New(),
		logger:        logger,
		asyncProcess:  true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Voices handles GET /api/narration/voices requests.
func (h *Handlers) Voices(w http.ResponseWriter, r *http.Request) {
	voices, err := h.narration.Voices(r.Context())
	if err != nil {
		h.logger.Error("listing voices failed", "error", err)
		writeError(w, http.StatusBadGateway, "voice provider unavailable", "PROVIDER_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, voices)
}

// Credits handles GET /api/narration/credits/{authorID} requests.
func (h *Handlers) Credits(w http.ResponseWriter, r *http.Request) {
	author, err := h.profiles.Get(r.Context(), r.PathValue("authorID"))
	if err != nil {
		if errors.Is(err, profile.ErrAuthorNotFound) {
			writeError(w, http.StatusNotFound, "author not found", "AUTHOR_NOT_FOUND")
			return
		}
		h.logger.Error("fetching credits failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch credits", "CREDITS_FETCH_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, CreditsResponse{
		AuthorID: author.ID,
		Credits:  author.Credits,
		Limit:    profile.MonthlyCredits,
		ResetsAt: author.CreditsResetAt.Format(time.RFC3339),
	})
}

// Generate handles POST /api/narration/generate/{authorID} requests.
// The job is created synchronously; audio generation runs in the background
// on a detached context so it survives the request ending.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	authorID := r.PathValue("authorID")

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("generate request validation failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	voice := narration.VoiceSettings{
		VoiceID:         req.VoiceID,
		ModelID:         req.ModelID,
		Stability:       req.Stability,
		SimilarityBoost: req.SimilarityBoost,
		SpeakingRate:    req.SpeakingRate,
	}
	episode := narration.EpisodeMeta{
		Title:       req.Episode.Title,
		Description: req.Episode.Description,
		CoverURL:    req.Episode.CoverURL,
		PlaylistID:  req.Episode.PlaylistID,
		Published:   req.Episode.Published,
		Free:        req.Episode.Free,
	}

	job, err := h.narration.Generate(r.Context(), authorID, req.Text, voice, episode)
	if err != nil {
		switch {
		case errors.Is(err, profile.ErrAuthorNotFound):
			writeError(w, http.StatusNotFound, "author not found", "AUTHOR_NOT_FOUND")
		case errors.Is(err, narration.ErrInsufficientCredits):
			writeError(w, http.StatusPaymentRequired, "not enough credits", "INSUFFICIENT_CREDITS")
		default:
			h.logger.Error("creating job failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create job", "JOB_CREATION_FAILED")
		}
		return
	}

	if h.asyncProcess {
		go func(ctx context.Context, jobID string) {
			if err := h.narration.Process(ctx, jobID); err != nil {
				h.logger.Error("background processing failed",
					"job_id", jobID,
					"error", err,
				)
			}
		}(context.WithoutCancel(r.Context()), job.ID)
	}

	h.logger.Info("narration job accepted", "job_id", job.ID, "author_id", authorID)
	writeJSON(w, http.StatusAccepted, jobResponseFrom(job))
}

// GetJob handles GET /api/narration/job/{id} requests.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.narration.Job(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, narration.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found", "JOB_NOT_FOUND")
			return
		}
		h.logger.Error("fetching job failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch job", "JOB_FETCH_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, jobResponseFrom(job))
}

// ProcessJob handles POST /api/narration/process/{id} requests. It processes
// a queued job synchronously, which the operator can use when background
// processing is disabled.
func (h *Handlers) ProcessJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	if err := h.narration.Process(r.Context(), jobID); err != nil {
		switch {
		case errors.Is(err, narration.ErrJobNotFound):
			writeError(w, http.StatusNotFound, "job not found", "JOB_NOT_FOUND")
			return
		case errors.Is(err, narration.ErrInvalidTransition):
			writeError(w, http.StatusConflict, "job is not queued", "JOB_NOT_QUEUED")
			return
		}
		// Processing errors are recorded on the job itself; fall through
		// and return its final state.
	}

	job, err := h.narration.Job(r.Context(), jobID)
	if err != nil {
		h.logger.Error("fetching processed job failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch job", "JOB_FETCH_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, jobResponseFrom(job))
}

// CreateAuthor handles POST /api/authors requests.
func (h *Handlers) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	var req CreateAuthorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	author, err := h.profiles.Create(r.Context(), req.Username, req.DisplayName, req.Bio)
	if err != nil {
		if errors.Is(err, profile.ErrUsernameTaken) {
			writeError(w, http.StatusConflict, "username already taken", "USERNAME_TAKEN")
			return
		}
		h.logger.Error("creating author failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create author", "AUTHOR_CREATION_FAILED")
		return
	}
	writeJSON(w, http.StatusCreated, authorResponseFrom(author))
}

// ListAuthors handles GET /api/authors requests.
func (h *Handlers) ListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.profiles.List(r.Context())
	if err != nil {
		h.logger.Error("listing authors failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list authors", "AUTHOR_LIST_FAILED")
		return
	}

	resp := make([]AuthorResponse, 0, len(authors))
	for _, a := range authors {
		resp = append(resp, authorResponseFrom(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetAuthor handles GET /api/authors/{username} requests.
func (h *Handlers) GetAuthor(w http.ResponseWriter, r *http.Request) {
	author, err := h.profiles.GetByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		if errors.Is(err, profile.ErrAuthorNotFound) {
			writeError(w, http.StatusNotFound, "author not found", "AUTHOR_NOT_FOUND")
			return
		}
		h.logger.Error("fetching author failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch author", "AUTHOR_FETCH_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, authorResponseFrom(author))
}

// UpdateAuthor handles PATCH /api/authors/{id} requests.
func (h *Handlers) UpdateAuthor(w http.ResponseWriter, r *http.Request) {
	var req UpdateAuthorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	author, err := h.profiles.Update(r.Context(), r.PathValue("id"), req.DisplayName, req.Bio)
	if err != nil {
		if errors.Is(err, profile.ErrAuthorNotFound) {
			writeError(w, http.StatusNotFound, "author not found", "AUTHOR_NOT_FOUND")
			return
		}
		h.logger.Error("updating author failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update author", "AUTHOR_UPDATE_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, authorResponseFrom(author))
}

// CreatePlaylist handles POST /api/playlists/{authorID} requests.
func (h *Handlers) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req CreatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	p, err := h.playlists.Create(r.Context(), r.PathValue("authorID"), req.Title, req.Description)
	if err != nil {
		h.logger.Error("creating playlist failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create playlist", "PLAYLIST_CREATION_FAILED")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// ListPlaylists handles GET /api/playlists/{authorID} requests.
func (h *Handlers) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.playlists.ListByAuthor(r.Context(), r.PathValue("authorID"))
	if err != nil {
		h.logger.Error("listing playlists failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list playlists", "PLAYLIST_LIST_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

// GetPlaylist handles GET /api/playlists/detail/{id} requests.
func (h *Handlers) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	p, err := h.playlists.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, playlist.ErrNotFound) {
			writeError(w, http.StatusNotFound, "playlist not found", "PLAYLIST_NOT_FOUND")
			return
		}
		h.logger.Error("fetching playlist failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch playlist", "PLAYLIST_FETCH_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdatePlaylist handles PATCH /api/playlists/{id} requests.
func (h *Handlers) UpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req UpdatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	p, err := h.playlists.Update(r.Context(), r.PathValue("id"), req.Title, req.Description, req.CoverURL, req.Published)
	if err != nil {
		if errors.Is(err, playlist.ErrNotFound) {
			writeError(w, http.StatusNotFound, "playlist not found", "PLAYLIST_NOT_FOUND")
			return
		}
		h.logger.Error("updating playlist failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update playlist", "PLAYLIST_UPDATE_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeletePlaylist handles DELETE /api/playlists/{id} requests.
func (h *Handlers) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	err := h.playlists.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, playlist.ErrNotFound):
			writeError(w, http.StatusNotFound, "playlist not found", "PLAYLIST_NOT_FOUND")
		case errors.Is(err, playlist.ErrNotEmpty):
			writeError(w, http.StatusConflict, "playlist still has episodes", "PLAYLIST_NOT_EMPTY")
		default:
			h.logger.Error("deleting playlist failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to delete playlist", "PLAYLIST_DELETE_FAILED")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateComment handles POST /api/comments requests.
func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	c, err := h.comments.Post(r.Context(), req.EpisodeID, req.UserID, req.AuthorName, req.AuthorAvatar, req.Text, req.ParentID)
	if err != nil {
		if errors.Is(err, comment.ErrNotFound) {
			writeError(w, http.StatusNotFound, "parent comment not found", "COMMENT_NOT_FOUND")
			return
		}
		h.logger.Error("posting comment failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to post comment", "COMMENT_CREATION_FAILED")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// ListComments handles GET /api/comments/{episodeID} requests.
func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	threads, err := h.comments.Threads(r.Context(), r.PathValue("episodeID"))
	if err != nil {
		h.logger.Error("listing comments failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list comments", "COMMENT_LIST_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, threads)
}

// DeleteComment handles DELETE /api/comments/{id} requests.
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, comment.ErrNotFound) {
			writeError(w, http.StatusNotFound, "comment not found", "COMMENT_NOT_FOUND")
			return
		}
		h.logger.Error("deleting comment failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete comment", "COMMENT_DELETE_FAILED")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LikeComment handles POST /api/comments/{id}/like requests.
func (h *Handlers) LikeComment(w http.ResponseWriter, r *http.Request) {
	var req LikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	liked, err := h.comments.ToggleLike(r.Context(), r.PathValue("id"), req.UserID)
	if err != nil {
		if errors.Is(err, comment.ErrNotFound) {
			writeError(w, http.StatusNotFound, "comment not found", "COMMENT_NOT_FOUND")
			return
		}
		h.logger.Error("toggling comment like failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to toggle like", "LIKE_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, LikeResponse{Liked: liked})
}

// LikeEpisode handles POST /api/comments/episodes/{episodeID}/like requests.
func (h *Handlers) LikeEpisode(w http.ResponseWriter, r *http.Request) {
	var req LikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	liked, count, err := h.comments.ToggleEpisodeLike(r.Context(), r.PathValue("episodeID"), req.UserID)
	if err != nil {
		h.logger.Error("toggling episode like failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to toggle like", "LIKE_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, LikeResponse{Liked: liked, Count: count})
}

// EpisodeLiked handles GET /api/comments/episodes/{episodeID}/liked requests.
// The user is identified by the user_id query parameter.
func (h *Handlers) EpisodeLiked(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required", "MISSING_USER_ID")
		return
	}

	liked, err := h.comments.EpisodeLiked(r.Context(), r.PathValue("episodeID"), userID)
	if err != nil {
		h.logger.Error("checking episode like failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check like", "LIKE_CHECK_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, LikeResponse{Liked: liked})
}

// ReportComment handles POST /api/comments/{id}/report requests.
func (h *Handlers) ReportComment(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	report, err := h.comments.Report(r.Context(), r.PathValue("id"), req.ReporterID, req.Reason)
	if err != nil {
		if errors.Is(err, comment.ErrNotFound) {
			writeError(w, http.StatusNotFound, "comment not found", "COMMENT_NOT_FOUND")
			return
		}
		h.logger.Error("reporting comment failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to report comment", "REPORT_FAILED")
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// ListReports handles GET /api/comments/reports requests.
func (h *Handlers) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.comments.Reports(r.Context())
	if err != nil {
		h.logger.Error("listing reports failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list reports", "REPORT_LIST_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// CheckSubscription handles GET /api/subscriptions/check/{subscriberID}/{authorID}
// requests.
func (h *Handlers) CheckSubscription(w http.ResponseWriter, r *http.Request) {
	status, err := h.subscriptions.Check(r.Context(), r.PathValue("subscriberID"), r.PathValue("authorID"))
	if err != nil {
		h.logger.Error("checking subscription failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check subscription", "SUBSCRIPTION_CHECK_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, SubscriptionStatusResponse{Status: status})
}

// Subscribe handles POST /api/subscriptions requests.
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	sub, err := h.subscriptions.Subscribe(r.Context(), req.SubscriberID, req.AuthorID)
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrSelfSubscription):
			writeError(w, http.StatusBadRequest, "cannot subscribe to yourself", "SELF_SUBSCRIPTION")
		case errors.Is(err, subscription.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "already subscribed", "ALREADY_SUBSCRIBED")
		default:
			h.logger.Error("creating subscription failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to subscribe", "SUBSCRIPTION_FAILED")
		}
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// Unsubscribe handles DELETE /api/subscriptions/{id} requests.
func (h *Handlers) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subscriptions.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			writeError(w, http.StatusNotFound, "subscription not found", "SUBSCRIPTION_NOT_FOUND")
			return
		}
		h.logger.Error("cancelling subscription failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to cancel subscription", "SUBSCRIPTION_CANCEL_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding JSON response failed", "error", err)
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
