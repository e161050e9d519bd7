package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wonny/paygrid/backend/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	runs     atomic.Int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return nil
}

func TestAddJobRejectsDuplicate(t *testing.T) {
	s := New(logger.NewNop())
	job := &countingJob{name: "refresh", schedule: "@daily"}

	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() error = %v", err)
	}
	if err := s.AddJob(job); err == nil {
		t.Fatal("AddJob() should reject a duplicate name")
	}
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(logger.NewNop())
	job := &countingJob{name: "broken", schedule: "not a schedule"}

	if err := s.AddJob(job); err == nil {
		t.Fatal("AddJob() should reject an unparseable schedule")
	}
}

func TestRunJobImmediately(t *testing.T) {
	s := New(logger.NewNop())
	job := &countingJob{name: "refresh", schedule: "@daily"}

	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() error = %v", err)
	}
	if err := s.RunJob("refresh"); err != nil {
		t.Fatalf("RunJob() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for job.runs.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("job never ran")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRunJobUnknownName(t *testing.T) {
	s := New(logger.NewNop())
	if err := s.RunJob("missing"); err == nil {
		t.Fatal("RunJob() should fail for an unregistered job")
	}
}

func TestStartStop(t *testing.T) {
	s := New(logger.NewNop())
	job := &countingJob{name: "refresh", schedule: "@daily"}

	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob() error = %v", err)
	}

	s.Start()
	s.Stop()
}
