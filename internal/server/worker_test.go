package server

import (
	"context"
	"errors"
	"testing"

	"github.com/cwbudde/nightsky/internal/store"
)

func TestRunJob_Success(t *testing.T) {
	st, err := store.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	jm := NewJobManager()
	job := jm.CreateJob(JobConfig{Preset: "classic", Width: 96, Height: 64, Seed: 42})

	if err := runJob(context.Background(), jm, st, job.ID); err != nil {
		t.Fatalf("runJob should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCompleted {
		t.Fatalf("Job should be completed, got %s (%s)", updated.State, updated.Error)
	}
	if updated.Seed != 42 {
		t.Errorf("seed = %d, want 42", updated.Seed)
	}
	if updated.Stars == 0 {
		t.Error("Stars should be counted")
	}
	if len(updated.Stages) != 4 {
		t.Errorf("classic runs 4 stages, got %d", len(updated.Stages))
	}

	rec, err := st.LoadRender(job.ID)
	if err != nil {
		t.Fatalf("render record not persisted: %v", err)
	}
	if rec.Config.Preset != "classic" || rec.Seed != 42 || rec.Config.Width != 96 {
		t.Errorf("unexpected record %+v", rec)
	}
	if _, err := st.ImagePath(job.ID); err != nil {
		t.Errorf("image not persisted: %v", err)
	}

	trace, err := store.ReadTrace(st.BaseDir(), job.ID)
	if err != nil {
		t.Fatalf("trace not written: %v", err)
	}
	if len(trace) != 4 || trace[0].Stage != "background" {
		t.Errorf("unexpected trace %+v", trace)
	}
}

func TestRunJob_DefaultsToPresetSize(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(JobConfig{Preset: "minimal", Seed: 1})

	if err := runJob(context.Background(), jm, nil, job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}
	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCompleted {
		t.Errorf("expected completed, got %s", updated.State)
	}
}

func TestRunJob_UnknownPreset(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(JobConfig{Preset: "aurora"})

	if err := runJob(context.Background(), jm, nil, job.ID); err == nil {
		t.Error("runJob should fail with an unknown preset")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateFailed {
		t.Errorf("Job should be failed, got %s", updated.State)
	}
	if updated.Error == "" {
		t.Error("Error message should be set")
	}
}

func TestRunJob_Cancellation(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(JobConfig{Preset: "minimal", Width: 64, Height: 64})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runJob(ctx, jm, nil, job.ID)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCancelled {
		t.Errorf("Job should be cancelled, got %s", updated.State)
	}
}

func TestRunJob_BroadcastsStages(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(JobConfig{Preset: "minimal", Width: 64, Height: 48, Seed: 3})

	events := jm.broadcaster.Subscribe(job.ID)
	defer jm.broadcaster.Unsubscribe(job.ID, events)

	if err := runJob(context.Background(), jm, nil, job.ID); err != nil {
		t.Fatal(err)
	}

	var stages []string
	var last ProgressEvent
	for len(events) > 0 {
		ev := <-events
		if ev.Stage != "" {
			stages = append(stages, ev.Stage)
		}
		last = ev
	}
	want := []string{"base-color", "base-stars", "clusters", "closest"}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stage %d = %s, want %s", i, stages[i], want[i])
		}
	}
	if last.State != StateCompleted {
		t.Errorf("last event state = %s, want completed", last.State)
	}
}

func TestRunJob_NotFound(t *testing.T) {
	if err := runJob(context.Background(), NewJobManager(), nil, "missing"); err == nil {
		t.Error("expected error for unknown job")
	}
}
