// Package elevenlabs provides an HTTP client for the ElevenLabs
// text-to-speech API: speech synthesis with and without character alignment,
// and voice listing. Transient failures are retried with exponential backoff.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Static errors for ElevenLabs client operations.
var (
	// ErrAPIKeyNotSet is returned when no API key is configured.
	ErrAPIKeyNotSet = errors.New("elevenlabs: ELEVENLABS_API_KEY is not set")
	// ErrVoiceIDRequired is returned when a speech request has no voice ID.
	ErrVoiceIDRequired = errors.New("elevenlabs: voice ID is required")
	// ErrEmptyText is returned when a speech request has no text.
	ErrEmptyText = errors.New("elevenlabs: text is required")
	// ErrNoAudioReturned is returned when a synthesis response contains no audio.
	ErrNoAudioReturned = errors.New("elevenlabs: no audio returned")
	// ErrServerError is returned when the provider responds with a 5xx status.
	ErrServerError = errors.New("elevenlabs: server error")
	// ErrRateLimited is returned when the provider responds with 429.
	ErrRateLimited = errors.New("elevenlabs: rate limited")
	// ErrRequestFailed is returned for other non-2xx responses.
	ErrRequestFailed = errors.New("elevenlabs: request failed")
)

// Client defines the interface for the ElevenLabs API.
type Client interface {
	// Synthesize converts text to speech and returns the audio bytes (MP3).
	Synthesize(ctx context.Context, text string, req SpeechRequest) ([]byte, error)

	// SynthesizeWithTimestamps converts text to speech and additionally
	// returns the provider's character-level alignment data when available.
	SynthesizeWithTimestamps(ctx context.Context, text string, req SpeechRequest) ([]byte, *Alignment, error)

	// Voices lists the voices available to the configured account.
	Voices(ctx context.Context) ([]Voice, error)
}

// HTTPClient is the HTTP implementation of Client.
type HTTPClient struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithAPIKey sets the API key for authentication.
func WithAPIKey(key string) ClientOption {
	return func(c *HTTPClient) {
		c.apiKey = key
	}
}

// WithBaseURL sets a custom base URL for the ElevenLabs API.
func WithBaseURL(url string) ClientOption {
	return func(c *HTTPClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// WithMaxRetries sets the maximum number of retries for transient failures.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithBaseBackoff sets the initial backoff duration between retries.
func WithBaseBackoff(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.baseBackoff = d
	}
}

// NewClient creates a new ElevenLabs HTTP client. The API key can be set via
// WithAPIKey; if not provided it is read from the ELEVENLABS_API_KEY
// environment variable.
func NewClient(opts ...ClientOption) (*HTTPClient, error) {
	c := &HTTPClient{
		baseURL:     "https://api.elevenlabs.io",
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		maxRetries:  3,
		baseBackoff: 1 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		c.apiKey = os.Getenv("ELEVENLABS_API_KEY")
	}
	if c.apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	return c, nil
}

// Synthesize converts text to speech and returns the MP3 audio bytes.
func (c *HTTPClient) Synthesize(ctx context.Context, text string, req SpeechRequest) ([]byte, error) {
	body, err := buildSpeechBody(text, req)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, req.VoiceID)

	audio, err := c.doRequestWithRetry(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, ErrNoAudioReturned
	}

	return audio, nil
}

// SynthesizeWithTimestamps converts text to speech via the with-timestamps
// endpoint, returning the decoded audio and the character alignment. The
// alignment may be nil when the provider omits it; callers must treat that as
// a soft condition and fall back to duration-based captioning.
func (c *HTTPClient) SynthesizeWithTimestamps(ctx context.Context, text string, req SpeechRequest) ([]byte, *Alignment, error) {
	body, err := buildSpeechBody(text, req)
	if err != nil {
		return nil, nil, err
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s/with-timestamps", c.baseURL, req.VoiceID)

	respBody, err := c.doRequestWithRetry(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, nil, err
	}

	var resp timestampsResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, nil, fmt.Errorf("elevenlabs: unmarshal response: %w", err)
	}
	if resp.AudioBase64 == "" {
		return nil, nil, ErrNoAudioReturned
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioBase64)
	if err != nil {
		return nil, nil, fmt.Errorf("elevenlabs: decode audio: %w", err)
	}

	return audio, resp.Alignment, nil
}

// Voices lists the voices available to the configured account.
func (c *HTTPClient) Voices(ctx context.Context) ([]Voice, error) {
	url := c.baseURL + "/v1/voices"

	respBody, err := c.doRequestWithRetry(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var resp voicesResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("elevenlabs: unmarshal voices: %w", err)
	}

	return resp.Voices, nil
}

// buildSpeechBody validates a speech request, applies defaults and returns
// the marshalled request body.
func buildSpeechBody(text string, req SpeechRequest) ([]byte, error) {
	if req.VoiceID == "" {
		return nil, ErrVoiceIDRequired
	}
	if text == "" {
		return nil, ErrEmptyText
	}

	if req.ModelID == "" {
		req.ModelID = DefaultModelID
	}
	if req.Stability == 0 {
		req.Stability = DefaultStability
	}
	if req.SimilarityBoost == 0 {
		req.SimilarityBoost = DefaultSimilarityBoost
	}

	rate := req.SpeakingRate
	if rate != 0 {
		if rate < MinSpeakingRate {
			rate = MinSpeakingRate
		}
		if rate > MaxSpeakingRate {
			rate = MaxSpeakingRate
		}
	}
	// Normal speed is omitted from the payload.
	if rate == 1.0 {
		rate = 0
	}

	body := speechRequestBody{
		Text:    text,
		ModelID: req.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       req.Stability,
			SimilarityBoost: req.SimilarityBoost,
			Style:           req.Style,
			UseSpeakerBoost: req.UseSpeakerBoost,
			Speed:           rate,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: marshal request: %w", err)
	}
	return payload, nil
}

// doRequestWithRetry performs an HTTP request with exponential backoff retry
// and returns the raw response body.
func (c *HTTPClient) doRequestWithRetry(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var lastErr error
	backoff := c.baseBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("elevenlabs: context cancelled: %w", ctx.Err())
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		respBody, err := c.doRequest(ctx, method, url, body)
		if err == nil {
			return respBody, nil
		}

		if !isRetryable(err) {
			return nil, err
		}

		lastErr = err
	}

	return nil, fmt.Errorf("elevenlabs: max retries exceeded: %w", lastErr)
}

// doRequest performs a single HTTP request.
func (c *HTTPClient) doRequest(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: create request: %w", err)
	}

	req.Header.Set("xi-api-key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("elevenlabs: request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("elevenlabs: read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode >= 500 {
			return nil, &retryableError{err: fmt.Errorf("%w %d: %s", ErrServerError, resp.StatusCode, string(respBody))}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &retryableError{err: fmt.Errorf("%w: %s", ErrRateLimited, string(respBody))}
		}
		return nil, fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// retryableError wraps errors that should be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryable returns true if the error should be retried.
func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
