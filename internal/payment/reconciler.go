package payment

import (
	"context"
	"log/slog"
	"sync"
	"time"

	internal "github.com/saswatsusmoy/aarogyaai-backend/internal"
)

// ReconcileJob identifies one PROCESSING payment a sweep picked up.
type ReconcileJob struct {
	PaymentID     string
	TransactionID string
}

type reconcileWorker struct {
	ID         int
	WorkerPool chan chan ReconcileJob
	JobChannel chan ReconcileJob
	Logger     *slog.Logger
}

func newReconcileWorker(id int, workerPool chan chan ReconcileJob, logger *slog.Logger) *reconcileWorker {
	return &reconcileWorker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan ReconcileJob),
		Logger:     logger,
	}
}

func (w *reconcileWorker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(ReconcileJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("reconcile worker processing job", "worker_id", w.ID, "transaction_id", job.TransactionID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("reconcile worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

// Verifier is the slice of the lifecycle engine the reconciler needs. Verify
// already drives a settled PROCESSING payment to COMPLETED through the
// compare-and-swap path, so a sweep racing an explicit completion is safe.
type Verifier interface {
	Verify(ctx context.Context, transactionID string) (string, error)
}

type ReconcilerConfig struct {
	Interval       time.Duration
	AgingThreshold time.Duration
	BatchSize      int
	MaxWorkers     int
	JobQueueSize   int
	WorkerPoolSize int
}

// Reconciler periodically sweeps PROCESSING payments that have aged past
// the settlement threshold and pushes each through Verify on a worker pool.
// It exists so payments nobody polls still reach a terminal state.
type Reconciler struct {
	repo     RepositoryAPI
	verifier Verifier
	logger   *slog.Logger

	interval  time.Duration
	threshold time.Duration
	batchSize int

	jobQueue   chan ReconcileJob
	workerPool chan chan ReconcileJob
	maxWorkers int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
	now    func() time.Time
}

func NewReconciler(repo RepositoryAPI, verifier Verifier, config ReconcilerConfig, logger *slog.Logger) *Reconciler {
	ctx, cancel := context.WithCancel(context.Background())

	interval := config.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = batchSize
	}
	workerPoolSize := config.WorkerPoolSize
	if workerPoolSize <= 0 {
		workerPoolSize = maxWorkers
	}

	r := &Reconciler{
		repo:     repo,
		verifier: verifier,
		logger:   logger,

		interval:  interval,
		threshold: config.AgingThreshold,
		batchSize: batchSize,

		jobQueue:   make(chan ReconcileJob, jobQueueSize),
		workerPool: make(chan chan ReconcileJob, workerPoolSize),
		maxWorkers: maxWorkers,

		ctx:    ctx,
		cancel: cancel,
		now:    time.Now,
	}

	r.startWorkerPool()

	return r
}

func (r *Reconciler) startWorkerPool() {
	for i := 1; i <= r.maxWorkers; i++ {
		worker := newReconcileWorker(i, r.workerPool, r.logger)
		worker.Start(r.ctx, &r.wg, r.process)
	}

	r.wg.Add(1)
	go r.dispatch()
}

func (r *Reconciler) dispatch() {
	defer r.wg.Done()

	for {
		select {
		case job := <-r.jobQueue:
			select {
			case jobChannel := <-r.workerPool:
				jobChannel <- job
			case <-r.ctx.Done():
				return
			}
		case <-r.ctx.Done():
			return
		}
	}
}

// Run blocks, sweeping on every interval tick until the context is done.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("payment reconciler started",
		"interval", r.interval,
		"aging_threshold", r.threshold,
		"batch_size", r.batchSize,
		"max_workers", r.maxWorkers)

	for {
		select {
		case <-ticker.C:
			r.Sweep(ctx)
		case <-ctx.Done():
			r.logger.Info("payment reconciler stopping")
			return
		case <-r.ctx.Done():
			return
		}
	}
}

// Sweep enqueues every PROCESSING payment older than the aging threshold.
// Exported so a single pass can be driven directly in tests and tooling.
func (r *Reconciler) Sweep(ctx context.Context) {
	cutoff := r.now().Add(-r.threshold)

	candidates, err := r.repo.ListProcessingBefore(ctx, cutoff, r.batchSize)
	if err != nil {
		r.logger.Error("reconcile sweep failed to list payments", "error", err)
		return
	}
	if len(candidates) == 0 {
		return
	}

	r.logger.Info("reconcile sweep found stale payments", "count", len(candidates), "cutoff", cutoff)

	for _, p := range candidates {
		job := ReconcileJob{PaymentID: p.ID, TransactionID: p.TransactionID}
		select {
		case r.jobQueue <- job:
		case <-ctx.Done():
			return
		case <-r.ctx.Done():
			return
		}
	}
}

func (r *Reconciler) process(job ReconcileJob) {
	ctx, cancel := internal.WithTimeout(r.ctx, 10*time.Second)
	defer cancel()

	status, err := r.verifier.Verify(ctx, job.TransactionID)
	if err != nil {
		r.logger.Error("reconcile verify failed",
			"error", err,
			"payment_id", job.PaymentID,
			"transaction_id", job.TransactionID)
		return
	}

	r.logger.Info("reconciled payment",
		"payment_id", job.PaymentID,
		"transaction_id", job.TransactionID,
		"status", status)
}

// Shutdown stops the dispatcher and workers and waits for in-flight jobs.
func (r *Reconciler) Shutdown() {
	r.once.Do(func() {
		r.logger.Info("shutting down payment reconciler")
		r.cancel()
		r.wg.Wait()
	})
}
