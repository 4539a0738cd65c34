// File: internal/infra/adapters/video/sora_adapter.go
package video

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

	"video-generation-service/internal/domain"
	"video-generation-service/internal/domain/ports/adapter"
)

var _ adapter.VideoProviderAdapter = (*SoraAdapter)(nil)

// SoraAdapter targets the OpenAI video REST endpoints: POST /videos to
// submit, GET /videos/{id} to poll, GET /videos/{id}/content for the bytes.
// The video id doubles as continuation token and result locator.
type SoraAdapter struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewSoraAdapter(apiKey, baseURL, model string, downloadTimeout time.Duration) (*SoraAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("sora: empty api key")
	}
	return &SoraAdapter{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: downloadTimeout},
	}, nil
}

func (a *SoraAdapter) Name() string  { return "sora" }
func (a *SoraAdapter) Model() string { return a.model }

type soraVideo struct {
	ID       string `json:"id"`
	Status   string `json:"status"` // queued | in_progress | completed | failed
	Progress int    `json:"progress"`
	Error    *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *SoraAdapter) Submit(ctx context.Context, req adapter.GenerationRequest) (string, error) {
	if len(req.ImageBytes) > 0 {
		return "", fmt.Errorf("%w: image input not supported by this provider", domain.ErrUpstreamSubmission)
	}

	payload := map[string]any{
		"model":  a.model,
		"prompt": req.Prompt,
	}
	var v soraVideo
	if err := a.doJSON(ctx, http.MethodPost, "/videos", payload, &v); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamSubmission, err)
	}
	if v.ID == "" {
		return "", fmt.Errorf("%w: response carried no video id", domain.ErrUpstreamSubmission)
	}
	return v.ID, nil
}

func (a *SoraAdapter) Poll(ctx context.Context, continuationToken string) (adapter.PollResult, error) {
	var v soraVideo
	if err := a.doJSON(ctx, http.MethodGet, "/videos/"+continuationToken, nil, &v); err != nil {
		return adapter.PollResult{}, fmt.Errorf("%w: %v", domain.ErrUpstreamPoll, err)
	}

	switch strings.ToLower(v.Status) {
	case "completed":
		return adapter.PollResult{Done: true, ResultLocator: v.ID, Progress: 100}, nil
	case "failed":
		msg := "video generation failed"
		if v.Error != nil && v.Error.Message != "" {
			msg = v.Error.Message
		}
		return adapter.PollResult{}, fmt.Errorf("%w: %s", domain.ErrUpstreamPoll, msg)
	default:
		progress := v.Progress
		if progress <= 0 {
			progress = -1
		}
		return adapter.PollResult{Progress: progress}, nil
	}
}

func (a *SoraAdapter) FetchBytes(ctx context.Context, resultLocator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/videos/"+resultLocator+"/content", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: http %d", domain.ErrUpstreamFetch, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFetch, err)
	}
	return data, nil
}

func (a *SoraAdapter) Capabilities() adapter.Capabilities {
	return adapter.Capabilities{
		Name:                  "sora",
		Model:                 a.model,
		MaxDurationSeconds:    20,
		SupportsImageInput:    false,
		SupportedAspectRatios: []string{"16:9", "9:16", "1:1"},
		SupportedFormats:      []string{"mp4"},
	}
}

// doJSON issues one JSON request and decodes either the payload or the
// provider's error envelope ({"error":{"message":...}} with a top-level
// "message" fallback).
func (a *SoraAdapter) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.New(apiErrorMessage(raw, resp.StatusCode))
	}
	return json.Unmarshal(raw, out)
}

func apiErrorMessage(raw []byte, status int) string {
	var envelope struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error != nil && envelope.Error.Message != "" {
			return envelope.Error.Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return fmt.Sprintf("http %d", status)
}
