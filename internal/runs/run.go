package runs

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/arjunmehta/opticscore/pkg/optics"
)

// Status is the lifecycle state of a submitted run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Params are the OPTICS parameters a submitted run executes with.
type Params struct {
	Epsilon          float64 `json:"epsilon"`
	MinPts           int     `json:"min_pts"`
	PeakMode         string  `json:"peak_mode"` // "topk" or "threshold"
	TopK             int     `json:"top_k"`
	PersistenceTau   float64 `json:"persistence_tau"`
	OutlierThreshold float64 `json:"outlier_threshold"`
}

// Normalize applies the caller-facing parameter conventions at the service
// boundary: a negative epsilon means "no radius limit" and becomes the
// maximum finite real, and a negative persistence threshold is treated as
// 0. The core itself rejects negative values, so callers (REST handler,
// CLI) normalize before submitting. The analogous outlier_threshold <= 0
// convention is handled inside ClusterExtractor.
func (p Params) Normalize() Params {
	if p.Epsilon < 0 {
		p.Epsilon = math.MaxFloat64
	}
	if p.PersistenceTau < 0 {
		p.PersistenceTau = 0
	}
	return p
}

// Run is one tracked OPTICS invocation: its input dataset, parameters,
// lifecycle state, and — once completed — its ordering and extracted
// clusters.
type Run struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Params    Params          `json:"params"`
	Status    Status          `json:"status"`
	Err       string          `json:"error,omitempty"`
	Ordering  optics.Ordering `json:"ordering,omitempty"`
	Borders   []int           `json:"borders"`
	Clusters  optics.Clusters `json:"clusters"`
	NumPoints int             `json:"num_points"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	mu sync.RWMutex
}

// Store is the in-memory registry of runs, keyed by run ID. It holds no
// opinion about quota; callers check Manager/Owner quotas before calling
// Submit.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewStore returns an empty run registry.
func NewStore() *Store {
	return &Store{runs: make(map[string]*Run)}
}

// Submit runs OPTICS over dataset synchronously and registers the result
// (or failure) under a new run ID. The caller is responsible for any quota
// checks before calling Submit.
func (s *Store) Submit(ownerID string, dataset [][]float64, params Params) (*Run, error) {
	run := &Run{
		ID:        generateRunID(ownerID),
		OwnerID:   ownerID,
		Params:    params,
		Status:    StatusRunning,
		NumPoints: len(dataset),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	s.mu.Lock()
	s.runs[run.ID] = run
	s.mu.Unlock()

	ps, err := optics.NewPointStore(dataset)
	if err != nil {
		run.fail(err)
		return run, nil
	}

	ordering, err := optics.Optics(ps, params.Epsilon, params.MinPts, nil)
	if err != nil {
		run.fail(err)
		return run, nil
	}

	reach := make([]float64, len(ordering))
	for i, e := range ordering {
		reach[i] = e.Reachability
	}

	var borders []int
	switch params.PeakMode {
	case "threshold":
		borders, err = optics.ThresholdPeaks(reach, params.PersistenceTau)
	default:
		borders, err = optics.TopKPeaks(reach, params.TopK)
	}
	if err != nil {
		run.fail(err)
		return run, nil
	}
	sort.Ints(borders)

	clusters, err := optics.ClusterExtractor(ordering, borders, params.OutlierThreshold)
	if err != nil {
		run.fail(err)
		return run, nil
	}

	run.mu.Lock()
	run.Ordering = ordering
	run.Borders = borders
	run.Clusters = clusters
	run.Status = StatusCompleted
	run.UpdatedAt = time.Now()
	run.mu.Unlock()

	return run, nil
}

func (r *Run) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = StatusFailed
	r.Err = err.Error()
	r.UpdatedAt = time.Now()
}

// Get retrieves a run by ID.
func (s *Store) Get(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run '%s' not found", id)
	}
	return run, nil
}

// Delete removes a run from the registry.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[id]; !ok {
		return fmt.Errorf("run '%s' not found", id)
	}
	delete(s.runs, id)
	return nil
}

// Len returns the number of tracked runs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

func generateRunID(ownerID string) string {
	return fmt.Sprintf("run_%s_%d", ownerID, time.Now().UnixNano())
}
