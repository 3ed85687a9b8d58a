package orchestrator

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"descsvc/internal/domain"
	"descsvc/internal/prompts"
)

type memJobs struct {
	mu       sync.Mutex
	jobs     map[string]*domain.Job
	progress map[string][]domain.Progress
	updates  int
}

func newMemJobs() *memJobs {
	return &memJobs{jobs: map[string]*domain.Job{}, progress: map[string][]domain.Progress{}}
}

func (m *memJobs) Create(_ context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	cp.ID = int64(len(m.jobs) + 1)
	cp.Version = 1
	m.jobs[job.JobID] = &cp
	job.ID = cp.ID
	return nil
}

func (m *memJobs) GetByJobID(_ context.Context, jobID string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *memJobs) Update(_ context.Context, jobID string, upd domain.JobUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if job.Status.Terminal() {
		return domain.ErrJobFinalized
	}
	m.updates++
	job.Status = upd.Status
	if upd.Progress != nil {
		job.Progress = *upd.Progress
		m.progress[jobID] = append(m.progress[jobID], *upd.Progress)
	}
	if upd.Generated != nil {
		job.Generated = *upd.Generated
	}
	if upd.ErrorMessage != nil {
		job.ErrorMessage = *upd.ErrorMessage
	}
	if upd.CompletedAt != nil {
		ts := *upd.CompletedAt
		job.CompletedAt = &ts
	}
	job.Version++
	return nil
}

func (m *memJobs) get(jobID string) domain.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.jobs[jobID]
}

type memPrompts struct {
	items map[string]domain.Prompt
}

func seededPrompts() *memPrompts {
	defaults, err := prompts.Defaults()
	if err != nil {
		panic(err)
	}
	m := &memPrompts{items: map[string]domain.Prompt{}}
	for _, p := range defaults {
		m.items[p.Name] = p
	}
	return m
}

func (m *memPrompts) List(context.Context) ([]domain.Prompt, error) { return nil, nil }

func (m *memPrompts) GetByName(_ context.Context, name string) (*domain.Prompt, error) {
	p, ok := m.items[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *memPrompts) GetByNameAndType(ctx context.Context, name string, typ domain.PromptType) (*domain.Prompt, error) {
	p, err := m.GetByName(ctx, name)
	if err != nil || p.Type != typ {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (m *memPrompts) Update(context.Context, string, string, *string) (*domain.Prompt, error) {
	return nil, errors.New("not used")
}

func (m *memPrompts) Seed(context.Context, domain.Prompt) (bool, error) { return false, nil }

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    []string
	touched []string
	listErr error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}}
}

func (m *memBlobs) touch(key string) {
	m.touched = append(m.touched, key)
}

func (m *memBlobs) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(prefix)
	if m.listErr != nil {
		return nil, m.listErr
	}
	keys := []string{}
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memBlobs) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(key)
	data, ok := m.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *memBlobs) Put(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(key)
	m.objects[key] = append([]byte(nil), data...)
	m.puts = append(m.puts, key)
	return nil
}

func (m *memBlobs) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(key)
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memBlobs) put(key, value string) {
	m.objects[key] = []byte(value)
}

func (m *memBlobs) keysWithPrefix(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

type fakeGenerator struct {
	reply  string
	err    error
	panics bool
	calls  int
	user   string
}

func (f *fakeGenerator) Generate(_ context.Context, _, user string) (string, error) {
	f.calls++
	f.user = user
	if f.panics {
		panic("generator exploded")
	}
	return f.reply, f.err
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
