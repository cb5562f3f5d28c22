package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// RunStatus is the state of a ranking run.
type RunStatus string

const (
	StatusQueued     RunStatus = "queued"
	StatusProcessing RunStatus = "processing"
	StatusWriting    RunStatus = "writing"
	StatusCompleted  RunStatus = "completed"
	StatusPartial    RunStatus = "partial"
	StatusFailed     RunStatus = "failed"
)

// DocumentStatus records how one document of a run went.
type DocumentStatus struct {
	Filename    string `json:"filename"`
	Success     bool   `json:"success"`
	Sections    int    `json:"sections"`
	DurationMs  int64  `json:"duration_ms"`
	ContentHash string `json:"content_hash,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Run tracks one multi-document run.
type Run struct {
	mu sync.Mutex

	ID        string
	Persona   string
	Job       string
	Status    RunStatus
	Phase     string
	Total     int
	Documents []DocumentStatus
	Errors    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func newRun(persona, job string, total int) *Run {
	now := time.Now()
	return &Run{
		ID:        newRunID(),
		Persona:   persona,
		Job:       job,
		Status:    StatusQueued,
		Phase:     "queued",
		Total:     total,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetStatus updates status and phase atomically.
func (r *Run) SetStatus(status RunStatus, phase string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = status
	r.Phase = phase
	r.UpdatedAt = time.Now()
}

// RecordDocument appends a per-document outcome.
func (r *Run) RecordDocument(d DocumentStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Documents = append(r.Documents, d)
	if d.Error != "" {
		r.Errors = append(r.Errors, d.Filename+": "+d.Error)
	}
	r.UpdatedAt = time.Now()
}

// AddError records a run-level error.
func (r *Run) AddError(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, msg)
	r.UpdatedAt = time.Now()
}

// RunSnapshot is a JSON-safe copy of run state.
type RunSnapshot struct {
	ID        string           `json:"run_id"`
	Persona   string           `json:"persona"`
	Job       string           `json:"job"`
	Status    RunStatus        `json:"status"`
	Phase     string           `json:"phase"`
	Total     int              `json:"total_documents"`
	Processed int              `json:"processed_documents"`
	Succeeded int              `json:"succeeded_documents"`
	Documents []DocumentStatus `json:"documents"`
	Errors    []string         `json:"errors"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (r *Run) Snapshot() RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := RunSnapshot{
		ID:        r.ID,
		Persona:   r.Persona,
		Job:       r.Job,
		Status:    r.Status,
		Phase:     r.Phase,
		Total:     r.Total,
		Processed: len(r.Documents),
		Documents: append([]DocumentStatus{}, r.Documents...),
		Errors:    append([]string{}, r.Errors...),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for _, d := range r.Documents {
		if d.Success {
			snap.Succeeded++
		}
	}
	return snap
}

// RunStore is an in-memory run registry with TTL eviction.
type RunStore struct {
	mu   sync.Mutex
	runs map[string]*Run
	ttl  time.Duration
}

func NewRunStore(ttl time.Duration) *RunStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RunStore{runs: make(map[string]*Run), ttl: ttl}
}

func (s *RunStore) Put(r *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = r
}

func (s *RunStore) Get(id string) *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[id]
}

// Len returns the number of tracked runs.
func (s *RunStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}

// Cleanup removes runs idle for longer than the TTL.
func (s *RunStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, r := range s.runs {
		r.mu.Lock()
		idle := now.Sub(r.UpdatedAt)
		r.mu.Unlock()
		if idle > s.ttl {
			delete(s.runs, id)
		}
	}
}

// ContentHashHex returns the hex SHA-256 of data.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
