package server

import (
	"testing"
	"time"

	"github.com/cwbudde/nightsky/internal/store"
)

func TestJobManager_CreateJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(JobConfig{Preset: "classic", Width: 640, Height: 480, Seed: 42})

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}
	if job.State != StatePending {
		t.Errorf("Initial state should be pending, got %s", job.State)
	}
	if job.Config.Preset != "classic" || job.Config.Seed != 42 {
		t.Errorf("Config not set correctly: %+v", job.Config)
	}
}

func TestJobManager_GetJob(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(JobConfig{Preset: "minimal"})

	retrieved, exists := jm.GetJob(job.ID)
	if !exists {
		t.Fatal("Job should exist")
	}
	if retrieved.ID != job.ID {
		t.Error("Retrieved wrong job")
	}

	if _, exists := jm.GetJob("nonexistent"); exists {
		t.Error("Should not find nonexistent job")
	}
}

func TestJobManager_GetJobReturnsSnapshot(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(JobConfig{Preset: "minimal"})

	snap, _ := jm.GetJob(job.ID)
	snap.State = StateFailed
	snap.Stages = append(snap.Stages, store.StageSummary{Stage: "x"})

	again, _ := jm.GetJob(job.ID)
	if again.State != StatePending || len(again.Stages) != 0 {
		t.Errorf("mutating a snapshot must not change the job: %+v", again)
	}
}

func TestJobManager_ListJobs(t *testing.T) {
	jm := NewJobManager()

	if len(jm.ListJobs()) != 0 {
		t.Error("Should start with no jobs")
	}

	first := jm.CreateJob(JobConfig{Preset: "minimal"})
	time.Sleep(time.Millisecond)
	jm.CreateJob(JobConfig{Preset: "galaxy"})

	jobs := jm.ListJobs()
	if len(jobs) != 2 {
		t.Fatalf("Expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != first.ID {
		t.Error("jobs should be listed oldest first")
	}
}

func TestJobManager_UpdateJob(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(JobConfig{Preset: "minimal"})

	err := jm.UpdateJob(job.ID, func(j *Job) {
		j.State = StateRunning
		j.Stars = 10
		j.Stages = append(j.Stages, store.StageSummary{Stage: "base-stars", Elements: 10})
	})
	if err != nil {
		t.Errorf("Update should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateRunning || updated.Stars != 10 || len(updated.Stages) != 1 {
		t.Errorf("update not applied: %+v", updated)
	}

	if len(jm.GetRunningJobs()) != 1 {
		t.Error("expected one running job")
	}

	if err := jm.UpdateJob("nonexistent", func(j *Job) {}); err == nil {
		t.Error("Update of nonexistent job should fail")
	}
}

func TestJobManager_ThreadSafety(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(JobConfig{Preset: "minimal"})

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(i int) {
			jm.UpdateJob(job.ID, func(j *Job) {
				j.Stars = i
				j.Stages = append(j.Stages, store.StageSummary{Stage: "clusters"})
			})
			jm.GetJob(job.ID)
			jm.ListJobs()
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	updated, _ := jm.GetJob(job.ID)
	if len(updated.Stages) != 10 {
		t.Errorf("expected 10 stages after concurrent updates, got %d", len(updated.Stages))
	}
}

func TestJobStateTerminal(t *testing.T) {
	tests := map[JobState]bool{
		StatePending:   false,
		StateRunning:   false,
		StateCompleted: true,
		StateFailed:    true,
		StateCancelled: true,
	}
	for state, want := range tests {
		if got := state.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", state, got, want)
		}
	}
}
