package pipeline

import (
	"context"
	"log/slog"
)

// Worker processes a single reflow job.
type Worker struct {
	runner *Runner
	log    *slog.Logger
}

func NewWorker(runner *Runner, log *slog.Logger) *Worker {
	return &Worker{runner: runner, log: log}
}

// phaseStatus maps runner phases onto job statuses.
var phaseStatus = map[string]JobStatus{
	"parsing":     StatusParsing,
	"classifying": StatusClassifying,
	"rendering":   StatusRendering,
	"detecting":   StatusDetecting,
	"reflowing":   StatusReflowing,
}

// Process runs the full reflow pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	result, err := w.runner.Run(ctx, job.FileData(), job.Options, func(phase string) {
		if status, ok := phaseStatus[phase]; ok {
			job.SetStatus(status, phase)
		}
	})
	if err != nil {
		log.Error("reflow failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, job.Phase)
		return
	}

	job.SetResult(result.Output, result.Report)
	switch result.Report.Status {
	case "completed_with_unresolved":
		job.SetStatus(StatusUnresolved, "done")
	case "detect_skipped":
		job.SetStatus(StatusDetectSkipped, "done")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("reflow complete",
		"status", result.Report.Status,
		"groups", len(result.Report.Groups),
		"splits", result.Report.SplitCount,
		"breaks", result.Report.Breaks,
	)
}
