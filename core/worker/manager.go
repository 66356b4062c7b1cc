package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/patrickudo2004/parchments/core/errors"
	"github.com/patrickudo2004/parchments/core/ingest"
)

// JobStatus is the lifecycle state of an import job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Job is a snapshot of one import job's state.
type Job struct {
	ID          string    `json:"id"`
	VersionID   string    `json:"version_id"`
	Kind        string    `json:"kind"`
	Status      JobStatus `json:"status"`
	Progress    float64   `json:"progress"`
	Message     string    `json:"message,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
	CompletedAt string    `json:"completed_at,omitempty"`
}

type jobState struct {
	Job
	cancel context.CancelFunc
}

// EventFunc observes every event of every job, keyed by job ID. Used
// to fan events out to connected clients.
type EventFunc func(jobID string, ev Event)

// Manager tracks import jobs in memory and runs them through the
// ingestion pipeline.
type Manager struct {
	pipeline *ingest.Pipeline
	onEvent  EventFunc

	mu   sync.RWMutex
	jobs map[string]*jobState
}

// NewManager returns a manager running imports on p. onEvent may be
// nil.
func NewManager(p *ingest.Pipeline, onEvent EventFunc) *Manager {
	return &Manager{
		pipeline: p,
		onEvent:  onEvent,
		jobs:     make(map[string]*jobState),
	}
}

// Start registers a job and launches its import in the background,
// returning the initial snapshot immediately.
func (m *Manager) Start(req Request) Job {
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now().UTC().Format(time.RFC3339)

	state := &jobState{
		Job: Job{
			ID:        uuid.New().String(),
			VersionID: req.Meta.VersionID,
			Kind:      string(req.Kind),
			Status:    JobPending,
			CreatedAt: now,
			UpdatedAt: now,
		},
		cancel: cancel,
	}

	m.mu.Lock()
	m.jobs[state.ID] = state
	m.mu.Unlock()

	go m.consume(ctx, state.ID, Run(ctx, m.pipeline, req))
	return state.Job
}

// consume drains a worker's event stream into job state updates.
func (m *Manager) consume(ctx context.Context, jobID string, events <-chan Event) {
	sawTerminal := false
	for ev := range events {
		m.apply(jobID, ev)
		if m.onEvent != nil {
			m.onEvent(jobID, ev)
		}
		if ev.Terminal() {
			sawTerminal = true
		}
	}
	// A stream that closes without a terminal event was cancelled
	// mid-flight.
	if !sawTerminal {
		ev := Event{Status: StatusError, Message: "import cancelled"}
		m.apply(jobID, ev)
		if m.onEvent != nil {
			m.onEvent(jobID, ev)
		}
	}
}

func (m *Manager) apply(jobID string, ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.jobs[jobID]
	if !ok {
		return
	}
	// Terminal states are frozen; late events from a cancelled worker
	// must not resurrect the job.
	if state.Status == JobCompleted || state.Status == JobFailed || state.Status == JobCancelled {
		return
	}
	now := time.Now().UTC().Format(time.RFC3339)
	state.UpdatedAt = now
	state.Message = ev.Message

	switch ev.Status {
	case StatusProcessing:
		state.Status = JobRunning
	case StatusProgress:
		state.Status = JobRunning
		if ev.Progress > state.Progress {
			state.Progress = ev.Progress
		}
	case StatusSaving:
		state.Status = JobRunning
		state.Progress = 100
	case StatusComplete:
		state.Status = JobCompleted
		state.Progress = 100
		state.CompletedAt = now
	case StatusError:
		state.Status = JobFailed
		state.Error = ev.Message
		state.CompletedAt = now
	}
}

// Get returns a snapshot of one job.
func (m *Manager) Get(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return state.Job, true
}

// List returns snapshots of all known jobs.
func (m *Manager) List() []Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jobs := make([]Job, 0, len(m.jobs))
	for _, state := range m.jobs {
		jobs = append(jobs, state.Job)
	}
	return jobs
}

// Cancel stops a pending or running job.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.jobs[id]
	if !ok {
		return errors.NewNotFound("job", id)
	}
	if state.Status != JobPending && state.Status != JobRunning {
		return errors.Wrapf(errors.ErrInvalidInput, "job %s is %s", id, state.Status)
	}

	state.cancel()
	now := time.Now().UTC().Format(time.RFC3339)
	state.Status = JobCancelled
	state.UpdatedAt = now
	state.CompletedAt = now
	return nil
}

// Delete removes a job record, cancelling it first if still active.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.jobs[id]
	if !ok {
		return errors.NewNotFound("job", id)
	}
	if state.Status == JobPending || state.Status == JobRunning {
		state.cancel()
	}
	delete(m.jobs, id)
	return nil
}
