package api

import (
	"context"
	"crypto/tls"
	"log/slog"
	"time"

	"github.com/seeyarh/radar/scanner"
)

// StartWorkers launches background goroutines that pop queued tasks and
// run them against the shared probe catalog.
func StartWorkers(store TaskStore, catalog scanner.ServiceProbes, tlsConfig *tls.Config, maxConcurrent, numWorkers int, logger *slog.Logger) {
	for i := 0; i < numWorkers; i++ {
		go workerLoop(store, catalog, tlsConfig, maxConcurrent, logger)
	}
}

func workerLoop(store TaskStore, catalog scanner.ServiceProbes, tlsConfig *tls.Config, maxConcurrent int, logger *slog.Logger) {
	for {
		taskID, err := store.PopFromQueue()
		if err != nil {
			logger.Error("worker: failed to pop task", "error", err)
			time.Sleep(time.Second)
			continue
		}

		task, err := store.GetTask(taskID)
		if err != nil {
			if err == ErrTaskNotFound {
				logger.Warn("worker: task disappeared", "task_id", taskID)
				continue
			}
			logger.Error("worker: failed to load task", "task_id", taskID, "error", err)
			continue
		}

		task.Status = "running"
		task.Error = ""
		task.Results = nil
		task.CompletedAt = nil
		if err := store.UpdateTask(task); err != nil {
			logger.Error("worker: failed to set task running", "task_id", taskID, "error", err)
			continue
		}

		probes := catalog.TCPProbes
		if task.Transport == "udp" {
			probes = catalog.UDPProbes
		}

		task.Results = runTask(task.Targets, probes, tlsConfig, maxConcurrent, logger)
		task.Status = "completed"
		now := time.Now().UTC()
		task.CompletedAt = &now

		if err := store.UpdateTask(task); err != nil {
			logger.Error("worker: failed to update task", "task_id", task.ID, "error", err)
		}
	}
}

// runTask feeds targets through the scan pipeline and collects every
// result before returning, since a task's results are only visible to
// clients once the whole batch is done.
func runTask(targets []scanner.Target, probes []scanner.ServiceProbe, tlsConfig *tls.Config, maxConcurrent int, logger *slog.Logger) []scanner.RadarOutput {
	in := make(chan scanner.Target, len(targets))
	for _, t := range targets {
		in <- t
	}
	close(in)

	out := scanner.RunPipeline(context.Background(), in, probes, tlsConfig, maxConcurrent, logger)

	results := make([]scanner.RadarOutput, 0, len(targets))
	for r := range out {
		results = append(results, r)
	}
	return results
}
