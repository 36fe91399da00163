package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"murajaah/internal/config"
)

const defaultScoreTimeout = 30 * time.Second

// Result carries the scorer's judgement of one recording.
type Result struct {
	// Score is the similarity between the recitation and the expected text,
	// 0 through 100.
	Score int `json:"score"`
	// Transcript is what the scorer heard, normalized.
	Transcript string `json:"transcript"`
}

// Scorer rates a recording against the expected text.
type Scorer interface {
	Score(ctx context.Context, recordingID, expectedText string) (*Result, error)
}

// HTTPScorer calls an external recitation scoring service.
type HTTPScorer struct {
	endpoint   string
	httpClient *http.Client
}

// Option customizes the HTTP scorer.
type Option func(*HTTPScorer)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *HTTPScorer) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// NewHTTPScorer constructs a scorer against the given endpoint.
func NewHTTPScorer(endpoint string, opts ...Option) *HTTPScorer {
	scorer := &HTTPScorer{
		endpoint:   strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		httpClient: &http.Client{Timeout: defaultScoreTimeout},
	}
	for _, opt := range opts {
		opt(scorer)
	}
	return scorer
}

// NewFromConfig returns an HTTP scorer when scoring is enabled, nil otherwise.
func NewFromConfig(cfg *config.Config) *HTTPScorer {
	if cfg == nil || !cfg.Scorer.Enabled || strings.TrimSpace(cfg.Scorer.Endpoint) == "" {
		return nil
	}
	timeout := time.Duration(cfg.Scorer.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultScoreTimeout
	}
	return NewHTTPScorer(cfg.Scorer.Endpoint, WithHTTPClient(&http.Client{Timeout: timeout}))
}

type scoreRequest struct {
	RecordingID  string `json:"recording_id"`
	ExpectedText string `json:"expected_text"`
}

// Score submits a recording reference for scoring.
func (s *HTTPScorer) Score(ctx context.Context, recordingID, expectedText string) (*Result, error) {
	recordingID = strings.TrimSpace(recordingID)
	if recordingID == "" {
		return nil, errors.New("score: recording id required")
	}
	if s.endpoint == "" {
		return nil, errors.New("score: endpoint required")
	}

	encoded, err := json.Marshal(scoreRequest{
		RecordingID:  recordingID,
		ExpectedText: NormalizeRecitation(expectedText),
	})
	if err != nil {
		return nil, fmt.Errorf("score: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/score", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("score: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("score: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("score: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("score: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("score: decode response: %w", err)
	}
	if result.Score < 0 || result.Score > 100 {
		return nil, fmt.Errorf("score: value %d outside 0-100", result.Score)
	}
	result.Transcript = NormalizeRecitation(result.Transcript)
	return &result, nil
}
