// File: internal/infra/adapters/video/veo_adapter.go
package video

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"google.golang.org/genai"

	"video-generation-service/internal/domain"
	"video-generation-service/internal/domain/ports/adapter"
)

var _ adapter.VideoProviderAdapter = (*VeoAdapter)(nil)

// VeoAdapter drives Google's Veo long-running video operations through the
// official SDK. Submit starts an operation and returns its name as the
// continuation token; Poll refetches the operation and extracts the result
// locator from whichever envelope shape the API returned.
type VeoAdapter struct {
	client   *genai.Client
	model    string
	apiKey   string
	download *http.Client
}

func NewVeoAdapter(ctx context.Context, apiKey, baseURL, model string, downloadTimeout time.Duration) (*VeoAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("veo: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &VeoAdapter{
		client:   c,
		model:    model,
		apiKey:   apiKey,
		download: &http.Client{Timeout: downloadTimeout},
	}, nil
}

func (a *VeoAdapter) Name() string  { return "veo" }
func (a *VeoAdapter) Model() string { return a.model }

func (a *VeoAdapter) Submit(ctx context.Context, req adapter.GenerationRequest) (string, error) {
	var image *genai.Image
	if len(req.ImageBytes) > 0 {
		image = &genai.Image{
			ImageBytes: req.ImageBytes,
			MIMEType:   req.ImageMIMEType,
		}
	}

	op, err := a.client.Models.GenerateVideos(ctx, a.model, req.Prompt, image, &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamSubmission, err)
	}
	if op == nil || op.Name == "" {
		return "", fmt.Errorf("%w: operation has no name", domain.ErrUpstreamSubmission)
	}
	return op.Name, nil
}

func (a *VeoAdapter) Poll(ctx context.Context, continuationToken string) (adapter.PollResult, error) {
	op, err := a.client.Operations.GetVideosOperation(ctx, &genai.GenerateVideosOperation{Name: continuationToken}, nil)
	if err != nil {
		return adapter.PollResult{}, fmt.Errorf("%w: %v", domain.ErrUpstreamPoll, err)
	}
	if !op.Done {
		return adapter.PollResult{Progress: -1}, nil
	}
	if len(op.Error) > 0 {
		return adapter.PollResult{}, fmt.Errorf("%w: %s", domain.ErrUpstreamPoll, operationErrorMessage(op.Error))
	}

	env, err := operationEnvelope(op)
	if err != nil {
		return adapter.PollResult{}, fmt.Errorf("%w: %v", domain.ErrUpstreamPoll, err)
	}
	locator, _ := extractLocator(env)
	if locator == "" {
		// Done without any recognizable artifact reference is a fetch
		// failure, never a reason to keep polling.
		return adapter.PollResult{Done: true}, fmt.Errorf("%w: no result locator in completed operation", domain.ErrUpstreamFetch)
	}
	return adapter.PollResult{Done: true, ResultLocator: locator, Progress: 100}, nil
}

func (a *VeoAdapter) FetchBytes(ctx context.Context, resultLocator string) ([]byte, error) {
	if isInline(resultLocator) {
		data, err := base64.StdEncoding.DecodeString(inlinePayload(resultLocator))
		if err != nil {
			return nil, fmt.Errorf("%w: inline payload: %v", domain.ErrUpstreamFetch, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultLocator, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFetch, err)
	}
	req.Header.Set("x-goog-api-key", a.apiKey)

	resp, err := a.download.Do(req)
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

func (a *VeoAdapter) Capabilities() adapter.Capabilities {
	return adapter.Capabilities{
		Name:                  "veo",
		Model:                 a.model,
		MaxDurationSeconds:    60,
		SupportsImageInput:    true,
		SupportedAspectRatios: []string{"16:9", "9:16"},
		SupportedFormats:      []string{"mp4"},
	}
}

// operationEnvelope round-trips the operation through JSON so the extractor
// list can probe field paths independent of the SDK's typed accessors.
func operationEnvelope(op *genai.GenerateVideosOperation) (map[string]any, error) {
	raw, err := json.Marshal(op)
	if err != nil {
		return nil, err
	}
	var env map[string]any
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	return env, nil
}

func operationErrorMessage(opErr map[string]any) string {
	if msg, ok := opErr["message"].(string); ok && msg != "" {
		return msg
	}
	return "operation reported an error"
}
