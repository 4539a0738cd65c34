package adapter

import "context"

// GenerationRequest carries the validated inputs for one generation.
type GenerationRequest struct {
	Prompt        string
	ImageBytes    []byte
	ImageMIMEType string
}

// PollResult is one observation of a long-running generation.
// ResultLocator is only meaningful when Done is true; Progress is advisory
// and -1 when the provider did not report one.
type PollResult struct {
	Done          bool
	ResultLocator string
	Progress      int
}

// Capabilities describes a provider for the capability listing endpoint.
type Capabilities struct {
	Name                  string   `json:"name"`
	Model                 string   `json:"model"`
	MaxDurationSeconds    int      `json:"max_duration_seconds"`
	SupportsImageInput    bool     `json:"supports_image_input"`
	SupportedAspectRatios []string `json:"supported_aspect_ratios"`
	SupportedFormats      []string `json:"supported_formats"`
}

// VideoProviderAdapter is the port for the external long-running video
// generation API: submit returns a continuation token, Poll reports whether
// the operation finished and where the artifact lives, FetchBytes retrieves
// the artifact itself. Failures wrap domain.ErrUpstreamSubmission,
// domain.ErrUpstreamPoll and domain.ErrUpstreamFetch respectively.
type VideoProviderAdapter interface {
	Name() string
	Model() string
	Submit(ctx context.Context, req GenerationRequest) (string, error)
	Poll(ctx context.Context, continuationToken string) (PollResult, error)
	FetchBytes(ctx context.Context, resultLocator string) ([]byte, error)
	Capabilities() Capabilities
}
