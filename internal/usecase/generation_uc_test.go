package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"video-generation-service/internal/domain"
	"video-generation-service/internal/domain/model"
	"video-generation-service/internal/domain/ports/adapter"
)

type memStore struct {
	mu   sync.Mutex
	jobs map[string]*model.GenerationJob
}

func newMemStore() *memStore {
	return &memStore{jobs: make(map[string]*model.GenerationJob)}
}

func (s *memStore) Save(_ context.Context, job *model.GenerationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (s *memStore) Find(_ context.Context, id string) (*model.GenerationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

type stubProvider struct{}

func (stubProvider) Name() string  { return "fake" }
func (stubProvider) Model() string { return "fake-1" }
func (stubProvider) Submit(context.Context, adapter.GenerationRequest) (string, error) {
	return "op-1", nil
}
func (stubProvider) Poll(context.Context, string) (adapter.PollResult, error) {
	return adapter.PollResult{}, nil
}
func (stubProvider) FetchBytes(context.Context, string) ([]byte, error) { return nil, nil }
func (stubProvider) Capabilities() adapter.Capabilities {
	return adapter.Capabilities{Name: "fake", Model: "fake-1", SupportsImageInput: true}
}

// recordingScheduler captures scheduled tasks without running them, mirroring
// the accept-then-detach contract of the worker pool.
type recordingScheduler struct {
	mu    sync.Mutex
	tasks []func(ctx context.Context) error
	err   error
}

func (s *recordingScheduler) Submit(task func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.tasks = append(s.tasks, task)
	return nil
}

type recordingExecutor struct {
	mu   sync.Mutex
	runs []adapter.GenerationRequest
	ids  []string
}

func (e *recordingExecutor) Process(_ context.Context, jobID string, req adapter.GenerationRequest) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ids = append(e.ids, jobID)
	e.runs = append(e.runs, req)
	return nil
}

func newTestUC(store *memStore, sched *recordingScheduler, exec *recordingExecutor) *generationUC {
	log := zerolog.Nop()
	return NewGenerationUseCase(store, stubProvider{}, sched, exec, 90, &log)
}

func TestSubmit_AcceptsAndSchedules(t *testing.T) {
	store := newMemStore()
	sched := &recordingScheduler{}
	exec := &recordingExecutor{}
	uc := newTestUC(store, sched, exec)

	job, err := uc.Submit(context.Background(), "a city at night", nil, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if job.ID == "" {
		t.Fatalf("job id missing")
	}
	if job.Status != model.GenerationStatusProcessing {
		t.Fatalf("want processing, got %s", job.Status)
	}
	if job.Provider != "fake" || job.Model != "fake-1" {
		t.Fatalf("provider metadata: %+v", job)
	}

	// Record is readable before the executor ever runs.
	if _, err := store.Find(context.Background(), job.ID); err != nil {
		t.Fatalf("record not stored: %v", err)
	}
	if len(sched.tasks) != 1 {
		t.Fatalf("want 1 scheduled task, got %d", len(sched.tasks))
	}

	// The scheduled task carries the request to the executor in memory.
	if err := sched.tasks[0](context.Background()); err != nil {
		t.Fatalf("task: %v", err)
	}
	if len(exec.ids) != 1 || exec.ids[0] != job.ID {
		t.Fatalf("executor got ids %v, want [%s]", exec.ids, job.ID)
	}
	if exec.runs[0].Prompt != "a city at night" {
		t.Fatalf("prompt lost: %+v", exec.runs[0])
	}
}

func TestSubmit_RejectsEmptyPrompt(t *testing.T) {
	for _, prompt := range []string{"", "   ", "\n\t"} {
		store := newMemStore()
		sched := &recordingScheduler{}
		uc := newTestUC(store, sched, &recordingExecutor{})

		_, err := uc.Submit(context.Background(), prompt, nil, "")
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("prompt %q: want ErrInvalidArgument, got %v", prompt, err)
		}
		if store.count() != 0 {
			t.Fatalf("prompt %q: rejected request must leave no record", prompt)
		}
		if len(sched.tasks) != 0 {
			t.Fatalf("prompt %q: rejected request must not schedule", prompt)
		}
	}
}

func TestSubmit_UniqueIDs(t *testing.T) {
	store := newMemStore()
	uc := newTestUC(store, &recordingScheduler{}, &recordingExecutor{})

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		job, err := uc.Submit(context.Background(), "p", nil, "")
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if seen[job.ID] {
			t.Fatalf("duplicate id %s", job.ID)
		}
		seen[job.ID] = true
	}
}

func TestSubmit_ImageFlag(t *testing.T) {
	store := newMemStore()
	sched := &recordingScheduler{}
	exec := &recordingExecutor{}
	uc := newTestUC(store, sched, exec)

	img := []byte{0xFF, 0xD8, 0xFF}
	job, err := uc.Submit(context.Background(), "animate this", img, "image/jpeg")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !job.ImageProvided {
		t.Fatalf("image flag not set")
	}

	stored, _ := store.Find(context.Background(), job.ID)
	if !stored.ImageProvided {
		t.Fatalf("image flag not persisted")
	}

	_ = sched.tasks[0](context.Background())
	if string(exec.runs[0].ImageBytes) != string(img) || exec.runs[0].ImageMIMEType != "image/jpeg" {
		t.Fatalf("image payload lost: %+v", exec.runs[0])
	}
}

func TestSubmit_ScheduleFailureWithdrawsRecord(t *testing.T) {
	store := newMemStore()
	sched := &recordingScheduler{err: errors.New("worker queue full")}
	uc := newTestUC(store, sched, &recordingExecutor{})

	_, err := uc.Submit(context.Background(), "p", nil, "")
	if err == nil {
		t.Fatalf("want scheduling error")
	}
	if store.count() != 0 {
		t.Fatalf("orphan record left behind")
	}
}

func TestStatus_UnknownID(t *testing.T) {
	uc := newTestUC(newMemStore(), &recordingScheduler{}, &recordingExecutor{})
	if _, err := uc.Status(context.Background(), "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDownload_Gating(t *testing.T) {
	store := newMemStore()
	uc := newTestUC(store, &recordingScheduler{}, &recordingExecutor{})
	ctx := context.Background()

	// Unknown id.
	if _, _, err := uc.Download(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown: want ErrNotFound, got %v", err)
	}

	// In flight.
	job := model.NewGenerationJob("j1", "p", false, "fake", "fake-1")
	_ = store.Save(ctx, job)
	if _, _, err := uc.Download(ctx, "j1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("in flight: want ErrNotFound, got %v", err)
	}

	// Failed.
	_ = job.MarkPolling("op")
	_ = job.MarkFailed("boom")
	_ = store.Save(ctx, job)
	if _, _, err := uc.Download(ctx, "j1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("failed: want ErrNotFound, got %v", err)
	}

	// Completed.
	done := model.NewGenerationJob("j2", "p", false, "fake", "fake-1")
	_ = done.MarkPolling("op")
	_ = done.MarkCompleted([]byte("mp4"))
	_ = store.Save(ctx, done)

	data, contentType, err := uc.Download(ctx, "j2")
	if err != nil {
		t.Fatalf("completed: %v", err)
	}
	if string(data) != "mp4" || contentType != "video/mp4" {
		t.Fatalf("artifact: %q %q", data, contentType)
	}
}

func TestProvidersAndEstimate(t *testing.T) {
	uc := newTestUC(newMemStore(), &recordingScheduler{}, &recordingExecutor{})

	providers := uc.Providers()
	if len(providers) != 1 || providers[0].Name != "fake" {
		t.Fatalf("providers: %+v", providers)
	}
	if uc.EstimatedSeconds() != 90 {
		t.Fatalf("estimate: %d", uc.EstimatedSeconds())
	}
}
