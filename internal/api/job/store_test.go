package job

import (
	"errors"
	"testing"
	"time"

	"github.com/rsinha/backfolio/internal/core"
)

func TestStore_CreateAndGet(t *testing.T) {
	s := NewStore(10, time.Hour)

	created := s.Create()
	if created.ID == "" {
		t.Fatal("expected non-empty job ID")
	}
	if created.Status != StatusPending {
		t.Errorf("status = %s, want pending", created.Status)
	}

	got, err := s.Get(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != created.ID {
		t.Errorf("got job %s, want %s", got.ID, created.ID)
	}
}

func TestStore_GetUnknown(t *testing.T) {
	s := NewStore(10, time.Hour)
	_, err := s.Get("nope")
	if !errors.Is(err, core.ErrJobNotFound) {
		t.Errorf("err = %v, want job not found", err)
	}
}

func TestStore_Update(t *testing.T) {
	s := NewStore(10, time.Hour)
	j := s.Create()

	err := s.Update(j.ID, func(job *Job) {
		job.Status = StatusComplete
		job.Result = map[string]float64{"cagr": 12.5}
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(j.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusComplete {
		t.Errorf("status = %s, want complete", got.Status)
	}
	if got.Result == nil {
		t.Error("expected result to be set")
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Error("UpdatedAt should not precede CreatedAt")
	}
}

func TestStore_UpdateUnknown(t *testing.T) {
	s := NewStore(10, time.Hour)
	err := s.Update("nope", func(job *Job) {})
	if !errors.Is(err, core.ErrJobNotFound) {
		t.Errorf("err = %v, want job not found", err)
	}
}

func TestStore_EvictsOldestAtCapacity(t *testing.T) {
	s := NewStore(2, time.Hour)

	first := s.Create()
	s.Create()
	s.Create() // evicts first

	if s.Len() != 2 {
		t.Errorf("len = %d, want 2", s.Len())
	}
	if _, err := s.Get(first.ID); !errors.Is(err, core.ErrJobNotFound) {
		t.Error("oldest job should have been evicted")
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore(10, time.Hour)
	j := s.Create()

	got, _ := s.Get(j.ID)
	got.Status = StatusFailed

	again, _ := s.Get(j.ID)
	if again.Status != StatusPending {
		t.Error("mutating a returned job should not affect the store")
	}
}

func TestStore_Cleanup(t *testing.T) {
	s := NewStore(10, time.Hour)
	stale := s.Create()
	fresh := s.Create()

	// Age the stale job past the TTL.
	s.mu.Lock()
	s.jobs[stale.ID].UpdatedAt = time.Now().Add(-2 * time.Hour)
	s.mu.Unlock()

	if removed := s.Cleanup(); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := s.Get(stale.ID); !errors.Is(err, core.ErrJobNotFound) {
		t.Error("stale job should be gone")
	}
	if _, err := s.Get(fresh.ID); err != nil {
		t.Errorf("fresh job should survive cleanup: %v", err)
	}
}
