package server

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/cwbudde/nightsky/internal/sky"
	"github.com/cwbudde/nightsky/internal/store"
)

// runJob renders a sky in the background. With a store the image and the
// record are persisted under the job ID; a store exposing BaseDir also
// receives the stage trace.
func runJob(ctx context.Context, jm *JobManager, st store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if err := jm.UpdateJob(jobID, func(j *Job) { j.State = StateRunning }); err != nil {
		return err
	}
	jm.broadcaster.Broadcast(ProgressEvent{JobID: jobID, State: StateRunning, Timestamp: time.Now()})

	slog.Info("Starting job", "job_id", jobID, "preset", job.Config.Preset,
		"width", job.Config.Width, "height", job.Config.Height, "seed", job.Config.Seed)

	cfg, err := sky.Resolve(job.Config.Preset, job.Config.Width, job.Config.Height, job.Config.Seed, job.Config.Backend)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	trace := openTrace(st, jobID)

	observe := func(sr sky.StageReport) {
		summary := stageSummary(sr)
		var done int
		jm.UpdateJob(jobID, func(j *Job) {
			j.Stages = append(j.Stages, summary)
			done = len(j.Stages)
		})
		if trace != nil {
			if err := trace.Write(store.TraceEntry{
				Stage:      summary.Stage,
				Elements:   summary.Elements,
				DurationMs: summary.DurationMs,
				Timestamp:  time.Now(),
			}); err != nil {
				slog.Warn("Failed to write trace entry", "job_id", jobID, "error", err)
			}
		}
		jm.broadcaster.Broadcast(ProgressEvent{
			JobID:      jobID,
			State:      StateRunning,
			Stage:      summary.Stage,
			Elements:   summary.Elements,
			StagesDone: done,
			Timestamp:  time.Now(),
		})
	}

	surf, report, err := sky.Render(ctx, cfg, observe)
	if trace != nil {
		if cerr := trace.Close(); cerr != nil {
			slog.Warn("Failed to close trace", "job_id", jobID, "error", cerr)
		}
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			markJobCancelled(jm, jobID)
			return err
		}
		markJobFailed(jm, jobID, err)
		return err
	}

	if st != nil {
		if err := persistRender(st, jobID, job.Config, surf.Image(), report); err != nil {
			markJobFailed(jm, jobID, err)
			return err
		}
	}

	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Seed = report.Seed
		j.Stars = report.Stars()
		j.EndTime = &endTime
	})
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:      jobID,
		State:      StateCompleted,
		StagesDone: len(report.Stages),
		Stars:      report.Stars(),
		Timestamp:  endTime,
	})

	slog.Info("Job completed",
		"job_id", jobID,
		"seed", report.Seed,
		"stars", report.Stars(),
		"duration", report.Duration)
	return nil
}

func openTrace(st store.Store, jobID string) *store.TraceWriter {
	based, ok := st.(interface{ BaseDir() string })
	if !ok {
		return nil
	}
	tw, err := store.NewTraceWriter(based.BaseDir(), jobID)
	if err != nil {
		slog.Warn("Failed to open trace", "job_id", jobID, "error", err)
		return nil
	}
	return tw
}

// persistRender writes the image first so a listed record always has one.
func persistRender(st store.Store, jobID string, cfg JobConfig, img image.Image, report *sky.Report) error {
	if _, err := st.SaveImage(jobID, img); err != nil {
		return fmt.Errorf("save image: %w", err)
	}

	stages := make([]store.StageSummary, len(report.Stages))
	for i, sr := range report.Stages {
		stages[i] = stageSummary(sr)
	}
	cfg.Preset = report.Preset
	cfg.Width, cfg.Height = report.Width, report.Height
	rec := store.NewRender(jobID, cfg, report.Seed, report.Stars(), stages, report.Duration)
	if err := st.SaveRender(jobID, rec); err != nil {
		return fmt.Errorf("save render: %w", err)
	}
	return nil
}

func stageSummary(sr sky.StageReport) store.StageSummary {
	return store.StageSummary{
		Stage:      string(sr.Stage),
		Elements:   sr.Elements,
		DurationMs: float64(sr.Duration) / float64(time.Millisecond),
	}
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	jm.broadcaster.Broadcast(ProgressEvent{JobID: jobID, State: StateFailed, Error: err.Error(), Timestamp: endTime})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	jm.broadcaster.Broadcast(ProgressEvent{JobID: jobID, State: StateCancelled, Timestamp: endTime})
	slog.Info("Job cancelled", "job_id", jobID)
}
