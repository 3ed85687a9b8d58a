package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"descsvc/internal/domain"
)

type stubJobs struct {
	mu      sync.Mutex
	jobs    map[string]domain.Job
	err     error
	updates []domain.JobUpdate
}

func newStubJobs() *stubJobs { return &stubJobs{jobs: map[string]domain.Job{}} }

func (s *stubJobs) Create(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.jobs[job.JobID] = *job
	return nil
}

func (s *stubJobs) GetByJobID(_ context.Context, jobID string) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &job, nil
}

func (s *stubJobs) Update(_ context.Context, jobID string, upd domain.JobUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	s.updates = append(s.updates, upd)
	job.Status = upd.Status
	if upd.ErrorMessage != nil {
		job.ErrorMessage = *upd.ErrorMessage
	}
	s.jobs[jobID] = job
	return nil
}

type stubPrompts struct {
	items map[string]domain.Prompt
	err   error
}

func (s *stubPrompts) List(context.Context) ([]domain.Prompt, error) {
	if s.err != nil {
		return nil, s.err
	}
	names := make([]string, 0, len(s.items))
	for n := range s.items {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]domain.Prompt, 0, len(names))
	for _, n := range names {
		out = append(out, s.items[n])
	}
	return out, nil
}

func (s *stubPrompts) GetByName(_ context.Context, name string) (*domain.Prompt, error) {
	p, ok := s.items[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *stubPrompts) GetByNameAndType(ctx context.Context, name string, _ domain.PromptType) (*domain.Prompt, error) {
	return s.GetByName(ctx, name)
}

func (s *stubPrompts) Update(_ context.Context, name, text string, desc *string) (*domain.Prompt, error) {
	p, ok := s.items[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.Text = text
	if desc != nil {
		p.Description = *desc
	}
	s.items[name] = p
	return &p, nil
}

func (s *stubPrompts) Seed(context.Context, domain.Prompt) (bool, error) { return false, nil }

type stubBlobs struct {
	objects map[string]string
	err     error
}

func (s *stubBlobs) List(_ context.Context, prefix string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	var keys []string
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *stubBlobs) Get(_ context.Context, key string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return []byte(v), nil
}

func (s *stubBlobs) Put(context.Context, string, []byte, string) error { return errors.New("read only") }

func (s *stubBlobs) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.objects[key]
	return ok, nil
}

type stubDispatcher struct {
	ids []string
	err error
}

func (s *stubDispatcher) Dispatch(_ context.Context, jobID string) error {
	if s.err != nil {
		return s.err
	}
	s.ids = append(s.ids, jobID)
	return nil
}

var testNow = time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

func newTestApp() (*App, *stubJobs, *stubPrompts, *stubBlobs, *stubDispatcher) {
	jobs := newStubJobs()
	prompts := &stubPrompts{items: map[string]domain.Prompt{
		"description_system": {ID: 1, Name: "description_system", Type: domain.PromptTypeSystem, Text: "be helpful"},
		"full_description":   {ID: 2, Name: "full_description", Type: domain.PromptTypeUser, Text: "describe {novel_name}"},
	}}
	blobs := &stubBlobs{objects: map[string]string{}}
	dispatcher := &stubDispatcher{}
	app := &App{
		Jobs:       jobs,
		Prompts:    prompts,
		Blobs:      blobs,
		Dispatcher: dispatcher,
		Logger:     zerolog.Nop(),
		Now:        func() time.Time { return testNow },
		NewID:      func() string { return "job-fixed" },
	}
	return app, jobs, prompts, blobs, dispatcher
}

// serve routes one request through a router holding only pattern.
func serve(method, pattern string, h http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, h)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}
