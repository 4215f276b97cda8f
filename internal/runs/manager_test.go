package runs

import "testing"

func TestManager_CreateOwner(t *testing.T) {
	manager := NewManager()

	quota := Quota{
		MaxPoints:       10000,
		MaxDimensions:   768,
		MaxRunsPerOwner: 100,
		RateLimitRPS:    5,
	}

	owner, err := manager.CreateOwner("test-owner", quota)
	if err != nil {
		t.Fatalf("CreateOwner failed: %v", err)
	}

	if owner.ID != "test-owner" {
		t.Errorf("Expected ID 'test-owner', got '%s'", owner.ID)
	}
	if owner.Quota.MaxPoints != 10000 {
		t.Errorf("Expected MaxPoints 10000, got %d", owner.Quota.MaxPoints)
	}
	if !owner.IsActive {
		t.Error("Expected owner to be active")
	}
}

func TestManager_CreateDuplicateOwner(t *testing.T) {
	manager := NewManager()
	quota := DefaultQuota()

	if _, err := manager.CreateOwner("test", quota); err != nil {
		t.Fatalf("first CreateOwner failed: %v", err)
	}

	if _, err := manager.CreateOwner("test", quota); err == nil {
		t.Error("expected error creating duplicate owner")
	}
}

func TestManager_GetOwner(t *testing.T) {
	manager := NewManager()
	created, _ := manager.CreateOwner("test", DefaultQuota())

	retrieved, err := manager.GetOwner("test")
	if err != nil {
		t.Fatalf("GetOwner failed: %v", err)
	}
	if retrieved.ID != created.ID {
		t.Errorf("expected ID '%s', got '%s'", created.ID, retrieved.ID)
	}
}

func TestManager_GetNonexistentOwner(t *testing.T) {
	manager := NewManager()
	if _, err := manager.GetOwner("nonexistent"); err == nil {
		t.Error("expected error getting nonexistent owner")
	}
}

func TestManager_DeleteOwner(t *testing.T) {
	manager := NewManager()
	manager.CreateOwner("test", DefaultQuota())

	if err := manager.DeleteOwner("test"); err != nil {
		t.Fatalf("DeleteOwner failed: %v", err)
	}
	if _, err := manager.GetOwner("test"); err == nil {
		t.Error("expected error getting deleted owner")
	}
}

func TestManager_ListOwners(t *testing.T) {
	manager := NewManager()
	manager.CreateOwner("a", DefaultQuota())
	manager.CreateOwner("b", DefaultQuota())

	owners := manager.ListOwners()
	if len(owners) != 2 {
		t.Fatalf("expected 2 owners, got %d", len(owners))
	}
}

func TestOwner_CheckPointQuota(t *testing.T) {
	owner := &Owner{Quota: Quota{MaxPoints: 100}}

	if err := owner.CheckPointQuota(50); err != nil {
		t.Errorf("expected no error under quota, got %v", err)
	}
	if err := owner.CheckPointQuota(150); err == nil {
		t.Error("expected error over quota")
	}
}

func TestOwner_CheckPointQuotaUnlimited(t *testing.T) {
	owner := &Owner{Quota: Quota{MaxPoints: -1}}
	if err := owner.CheckPointQuota(1_000_000); err != nil {
		t.Errorf("expected no error with unlimited quota, got %v", err)
	}
}

func TestOwner_CheckDimensionQuota(t *testing.T) {
	owner := &Owner{Quota: Quota{MaxDimensions: 10}}

	if err := owner.CheckDimensionQuota(5); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := owner.CheckDimensionQuota(20); err == nil {
		t.Error("expected error over dimension quota")
	}
}

func TestOwner_CheckRateLimit(t *testing.T) {
	owner := &Owner{Quota: Quota{RateLimitRPS: 2}}

	if err := owner.CheckRateLimit(); err != nil {
		t.Errorf("first call: expected no error, got %v", err)
	}
	if err := owner.CheckRateLimit(); err != nil {
		t.Errorf("second call: expected no error, got %v", err)
	}
	if err := owner.CheckRateLimit(); err == nil {
		t.Error("third call within the same second: expected rate limit error")
	}
}

func TestOwner_RecordRun(t *testing.T) {
	owner := &Owner{}
	owner.RecordRun(100)
	owner.RecordRun(50)

	if owner.Usage.PointsProcessed != 150 {
		t.Errorf("expected PointsProcessed=150, got %d", owner.Usage.PointsProcessed)
	}
	if owner.Usage.RunCount != 2 {
		t.Errorf("expected RunCount=2, got %d", owner.Usage.RunCount)
	}
}
