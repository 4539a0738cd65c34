package model

import (
	"errors"
	"testing"

	"video-generation-service/internal/domain"
)

func TestNewGenerationJob(t *testing.T) {
	j := NewGenerationJob("id-1", "a sunset over mountains", true, "veo", "veo-3.1-fast-generate-preview")

	if j.Status != GenerationStatusProcessing {
		t.Fatalf("want processing, got %s", j.Status)
	}
	if j.Progress != 0 {
		t.Fatalf("want progress 0, got %d", j.Progress)
	}
	if !j.ImageProvided {
		t.Fatalf("image flag lost")
	}
	if j.CreatedAt.IsZero() {
		t.Fatalf("created_at not set")
	}
	if j.CompletedAt != nil || j.FailedAt != nil {
		t.Fatalf("terminal timestamps must start unset")
	}
}

func TestGenerationJob_ForwardTransitions(t *testing.T) {
	j := NewGenerationJob("id-1", "p", false, "veo", "m")

	if err := j.MarkPolling("operations/abc"); err != nil {
		t.Fatalf("MarkPolling: %v", err)
	}
	if j.Status != GenerationStatusPolling || j.OperationName != "operations/abc" {
		t.Fatalf("polling transition broken: %+v", j)
	}
	if j.Progress < 10 {
		t.Fatalf("polling should bump progress, got %d", j.Progress)
	}

	// polling -> processing is not a thing
	if err := j.MarkPolling("operations/other"); err == nil {
		t.Fatalf("second MarkPolling must fail")
	}

	if err := j.MarkCompleted([]byte("mp4")); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if j.Status != GenerationStatusCompleted || j.Progress != 100 {
		t.Fatalf("completed transition broken: %+v", j)
	}
	if j.CompletedAt == nil || j.FailedAt != nil {
		t.Fatalf("completed_at must be set, failed_at unset")
	}
	if len(j.Video) == 0 {
		t.Fatalf("artifact must be present when completed")
	}

	// terminal states are final
	if err := j.MarkFailed("nope"); !errors.Is(err, domain.ErrTerminalState) {
		t.Fatalf("want ErrTerminalState, got %v", err)
	}
	if err := j.MarkCompleted(nil); !errors.Is(err, domain.ErrTerminalState) {
		t.Fatalf("want ErrTerminalState, got %v", err)
	}
}

func TestGenerationJob_MarkFailed(t *testing.T) {
	j := NewGenerationJob("id-1", "p", false, "sora", "sora-2")
	_ = j.MarkPolling("video_123")

	if err := j.MarkFailed("upstream poll failed: boom"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	if j.Status != GenerationStatusFailed {
		t.Fatalf("want failed, got %s", j.Status)
	}
	if j.ErrorMessage == "" {
		t.Fatalf("error message must be preserved")
	}
	if j.FailedAt == nil || j.CompletedAt != nil {
		t.Fatalf("failed_at must be set, completed_at unset")
	}
	if len(j.Video) != 0 {
		t.Fatalf("failed job must not carry an artifact")
	}
}

func TestGenerationJob_SetProgress(t *testing.T) {
	j := NewGenerationJob("id-1", "p", false, "veo", "m")
	_ = j.MarkPolling("op")

	j.SetProgress(40)
	if j.Progress != 40 {
		t.Fatalf("want 40, got %d", j.Progress)
	}

	// never regresses
	j.SetProgress(25)
	if j.Progress != 40 {
		t.Fatalf("progress regressed to %d", j.Progress)
	}

	// never claims 100 before completion
	j.SetProgress(100)
	if j.Progress != 99 {
		t.Fatalf("want cap at 99, got %d", j.Progress)
	}

	_ = j.MarkCompleted([]byte("x"))
	j.SetProgress(5)
	if j.Progress != 100 {
		t.Fatalf("terminal progress must stay 100, got %d", j.Progress)
	}
}

func TestGenerationStatus_Terminal(t *testing.T) {
	cases := []struct {
		status GenerationStatus
		want   bool
	}{
		{GenerationStatusProcessing, false},
		{GenerationStatusPolling, false},
		{GenerationStatusCompleted, true},
		{GenerationStatusFailed, true},
	}
	for _, c := range cases {
		if got := c.status.Terminal(); got != c.want {
			t.Fatalf("%s: want %v, got %v", c.status, c.want, got)
		}
	}
}
