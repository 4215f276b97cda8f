// Package runs implements the service layer around pkg/optics: run
// submission, per-owner quota enforcement, a worker pool for batch
// submission, and a result cache. None of this is part of the clustering
// algorithm itself; it is the REST API's only caller of pkg/optics.
package runs

import (
	"fmt"
	"sync"
	"time"
)

// Quota represents resource limits for one run owner (an API key or
// service account submitting OPTICS runs).
type Quota struct {
	MaxPoints       int64 `json:"max_points"`         // Maximum points accepted in a single run
	MaxDimensions   int   `json:"max_dimensions"`     // Maximum point dimensionality accepted
	MaxRunsPerOwner int64 `json:"max_runs_per_owner"` // Run count GetUsagePercentage measures against; not enforced
	RateLimitRPS    int   `json:"rate_limit_rps"`     // Run submissions per second
}

// Usage tracks current resource usage for an owner.
type Usage struct {
	PointsProcessed int64     `json:"points_processed"`
	RunCount        int64     `json:"run_count"`
	LastRunTime     time.Time `json:"last_run_time"`
	RunsThisSecond  int64     `json:"-"`
}

// Owner represents a quota-bound submitter of OPTICS runs.
type Owner struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Quota     Quota                  `json:"quota"`
	Usage     Usage                  `json:"usage"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	IsActive  bool                   `json:"is_active"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	mu        sync.RWMutex
}

// Manager handles owner lifecycle and quota enforcement.
type Manager struct {
	owners map[string]*Owner
	mu     sync.RWMutex
}

// NewManager creates a new owner manager.
func NewManager() *Manager {
	return &Manager{
		owners: make(map[string]*Owner),
	}
}

// CreateOwner registers a new owner with the given quota.
func (m *Manager) CreateOwner(id string, quota Quota) (*Owner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.owners[id]; exists {
		return nil, fmt.Errorf("owner '%s' already exists", id)
	}

	owner := &Owner{
		ID:        id,
		Name:      id,
		Quota:     quota,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		IsActive:  true,
		Metadata:  make(map[string]interface{}),
	}

	m.owners[id] = owner
	return owner, nil
}

// GetOwner retrieves an owner by ID.
func (m *Manager) GetOwner(id string) (*Owner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	owner, exists := m.owners[id]
	if !exists {
		return nil, fmt.Errorf("owner '%s' not found", id)
	}

	return owner, nil
}

// DeleteOwner removes an owner.
func (m *Manager) DeleteOwner(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.owners[id]; !exists {
		return fmt.Errorf("owner '%s' not found", id)
	}

	delete(m.owners, id)
	return nil
}

// ListOwners returns all owners.
func (m *Manager) ListOwners() []*Owner {
	m.mu.RLock()
	defer m.mu.RUnlock()

	owners := make([]*Owner, 0, len(m.owners))
	for _, owner := range m.owners {
		owners = append(owners, owner)
	}

	return owners
}

// UpdateQuota updates an owner's quota.
func (m *Manager) UpdateQuota(id string, quota Quota) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	owner, exists := m.owners[id]
	if !exists {
		return fmt.Errorf("owner '%s' not found", id)
	}

	owner.mu.Lock()
	defer owner.mu.Unlock()

	owner.Quota = quota
	owner.UpdatedAt = time.Now()

	return nil
}

// CheckPointQuota checks whether submitting a dataset of size count would
// exceed the owner's point quota.
func (o *Owner) CheckPointQuota(count int64) error {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.Quota.MaxPoints > 0 && count > o.Quota.MaxPoints {
		return fmt.Errorf("point quota exceeded: requested=%d, max=%d", count, o.Quota.MaxPoints)
	}

	return nil
}

// CheckDimensionQuota checks whether a dataset's dimensionality is within
// quota.
func (o *Owner) CheckDimensionQuota(dimensions int) error {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.Quota.MaxDimensions > 0 && dimensions > o.Quota.MaxDimensions {
		return fmt.Errorf("dimension quota exceeded: requested=%d, max=%d", dimensions, o.Quota.MaxDimensions)
	}

	return nil
}

// CheckRateLimit checks whether the owner's run submission rate limit is
// exceeded, incrementing the per-second counter as a side effect.
func (o *Owner) CheckRateLimit() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.Quota.RateLimitRPS <= 0 {
		return nil
	}

	now := time.Now()
	if now.Sub(o.Usage.LastRunTime) < time.Second {
		if o.Usage.RunsThisSecond >= int64(o.Quota.RateLimitRPS) {
			return fmt.Errorf("rate limit exceeded: %d runs this second (max: %d)",
				o.Usage.RunsThisSecond, o.Quota.RateLimitRPS)
		}
	} else {
		o.Usage.RunsThisSecond = 0
		o.Usage.LastRunTime = now
	}

	o.Usage.RunsThisSecond++
	return nil
}

// RecordRun records a completed run's point count against the owner's
// usage.
func (o *Owner) RecordRun(pointCount int64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.Usage.PointsProcessed += pointCount
	o.Usage.RunCount++
	o.UpdatedAt = time.Now()
}

// GetUsagePercentage returns usage as a percentage of quota, per resource.
func (o *Owner) GetUsagePercentage() map[string]float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()

	percentages := make(map[string]float64)

	if o.Quota.MaxRunsPerOwner > 0 {
		percentages["runs"] = float64(o.Usage.RunCount) / float64(o.Quota.MaxRunsPerOwner) * 100
	}

	return percentages
}

// SetActive sets the owner's active status.
func (o *Owner) SetActive(active bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.IsActive = active
	o.UpdatedAt = time.Now()
}

// DefaultQuota returns a default quota configuration.
func DefaultQuota() Quota {
	return Quota{
		MaxPoints:       200000,
		MaxDimensions:   4096,
		MaxRunsPerOwner: 10000,
		RateLimitRPS:    5,
	}
}

// UnlimitedQuota returns an unlimited quota configuration.
func UnlimitedQuota() Quota {
	return Quota{
		MaxPoints:       -1,
		MaxDimensions:   -1,
		MaxRunsPerOwner: -1,
		RateLimitRPS:    -1,
	}
}
