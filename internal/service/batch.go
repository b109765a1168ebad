package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/kakao-geocoder/internal/metrics"
	"github.com/UnknownOlympus/kakao-geocoder/internal/models"
	"github.com/UnknownOlympus/kakao-geocoder/internal/repository"
)

const (
	taskLimit        = 100
	noResultErrorMsg = "no geocoding result"
)

// AddressSearcher resolves one address; a nil response means the lookup did not succeed.
type AddressSearcher interface {
	RequestAddressSearch(ctx context.Context, address string) *models.GeocodeResponse
}

// BatchGeocoder periodically picks pending tasks from the repository and resolves
// them with a pool of workers, each running independent lookups.
type BatchGeocoder struct {
	log           *slog.Logger         // Logger for logging service activities
	repo          repository.Interface // Task storage
	searcher      AddressSearcher      // Address lookup
	metrics       *metrics.Metrics     // Metrics for tracking service performance
	numWorkers    int                  // Number of concurrent workers for processing
	pollInterval  time.Duration        // Interval between polls
	addressPrefix string               // Prepended to every task address (country, city, etc.)
}

// NewBatchGeocoder creates a new instance of BatchGeocoder.
func NewBatchGeocoder(
	log *slog.Logger,
	repo repository.Interface,
	searcher AddressSearcher,
	metrics *metrics.Metrics,
	numWorkers int,
	pollInterval time.Duration,
	addressPrefix string,
) *BatchGeocoder {
	return &BatchGeocoder{
		log:           log,
		repo:          repo,
		searcher:      searcher,
		metrics:       metrics,
		numWorkers:    max(numWorkers, 1),
		pollInterval:  pollInterval,
		addressPrefix: addressPrefix,
	}
}

// Run polls for new tasks until ctx is cancelled.
func (bg *BatchGeocoder) Run(ctx context.Context) {
	ticker := time.NewTicker(bg.pollInterval)
	defer ticker.Stop()

	bg.log.InfoContext(ctx, "Batch geocoder started...")

	for {
		select {
		case <-ctx.Done():
			bg.log.InfoContext(ctx, "Batch geocoder stopped.")
			return
		case <-ticker.C:
			bg.log.InfoContext(ctx, "Polling for new tasks to geocode...")
			bg.processTasks(ctx)
		}
	}
}

// processTasks fetches one batch of tasks and waits until every worker is done with it.
func (bg *BatchGeocoder) processTasks(ctx context.Context) {
	tasks, err := bg.repo.FetchTasksForGeocoding(ctx, taskLimit)
	if err != nil {
		bg.log.ErrorContext(ctx, "Failed to fetch tasks", "error", err)
		return
	}
	if len(tasks) == 0 {
		bg.log.InfoContext(ctx, "No tasks to process.")
		return
	}

	bg.log.InfoContext(ctx, "Found tasks to process. Starting worker pool.",
		"jobs", len(tasks),
		"num_workers", bg.numWorkers,
	)

	jobs := make(chan models.Task, len(tasks))
	var wgr sync.WaitGroup

	for i := 1; i <= bg.numWorkers; i++ {
		wgr.Add(1)
		go bg.worker(ctx, i, &wgr, jobs)
	}

	for _, task := range tasks {
		jobs <- task
	}
	close(jobs)

	wgr.Wait()
	bg.log.InfoContext(ctx, "Processing batch finished")
}

func (bg *BatchGeocoder) worker(ctx context.Context, idx int, wg *sync.WaitGroup, jobs <-chan models.Task) {
	defer wg.Done()
	for task := range jobs {
		bg.metrics.ActiveWorkers.Inc()
		bg.processTask(ctx, idx, task)
		bg.metrics.ActiveWorkers.Dec()
	}
}

func (bg *BatchGeocoder) processTask(ctx context.Context, idx int, task models.Task) {
	bg.log.DebugContext(ctx, "Processing task", "worker", idx, "task", task.ID)

	resp := bg.searcher.RequestAddressSearch(ctx, bg.addressPrefix+task.Address)
	if resp == nil || len(resp.Documents) == 0 {
		bg.metrics.TaskProcessed.WithLabelValues("failure").Inc()
		if err := bg.repo.IncrementFailureCount(ctx, task.ID, noResultErrorMsg); err != nil {
			bg.log.ErrorContext(ctx, "Could not update failure count for task",
				"worker", idx,
				"task", task.ID,
				"error", err,
			)
		}
		return
	}

	bg.metrics.TaskProcessed.WithLabelValues("success").Inc()

	if err := bg.repo.UpdateTaskLocation(ctx, task.ID, resp.Documents[0]); err != nil {
		bg.log.ErrorContext(ctx, "Failed to update location for task",
			"worker", idx,
			"task", task.ID,
			"error", err,
		)
		return
	}

	bg.log.DebugContext(ctx, "Worker successfully processed the task", "worker", idx, "task", task.ID)
}
