package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/saswatsusmoy/aarogyaai-backend/internal/core/events"
	"github.com/saswatsusmoy/aarogyaai-backend/internal/payment"
	paymentrepo "github.com/saswatsusmoy/aarogyaai-backend/internal/payment/postgres"
	"github.com/saswatsusmoy/aarogyaai-backend/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start and manage background workers like the payment reconciler.`,
}

// Reconciler worker command
var reconcilerCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Start the payment reconciler",
	Long:  `Start the background sweeper that drives aged PROCESSING payments to a terminal state.`,
	Run: func(cmd *cobra.Command, args []string) {
		startReconciler()
	},
}

var (
	reconcileInterval time.Duration
	reconcileBatch    int
	reconcileWorkers  int
)

func startReconciler() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	log := logger.LoggerWrapper()

	if !config.Database.IsConfigured() {
		fmt.Fprintln(os.Stderr, "no database source configured, reconciler has nothing to sweep")
		os.Exit(1)
	}

	db, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	gormDB, err := initGorm(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize orm: %v\n", err)
		os.Exit(1)
	}

	repo := paymentrepo.NewPaymentRepository(gormDB)
	eventBus := events.NewEventBus(log)
	subscribePaymentEvents(eventBus, log)

	oracle := payment.NewAgingOracle(config.Settlement.AgingThreshold)
	service := payment.NewService(repo, config.Merchant, oracle, eventBus, log)

	reconcilerConfig := payment.ReconcilerConfig{
		Interval:       getDurationFlag(reconcileInterval, config.Settlement.ReconcileInterval),
		AgingThreshold: config.Settlement.AgingThreshold,
		BatchSize:      getIntFlag(reconcileBatch, config.Settlement.ReconcileBatch),
		MaxWorkers:     getIntFlag(reconcileWorkers, config.Settlement.ReconcileWorkers),
	}

	reconciler := payment.NewReconciler(repo, service, reconcilerConfig, log)

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		reconciler.Run(ctx)
		close(runDone)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info("reconciler is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	log.Info("received signal, shutting down reconciler", "signal", sig)
	cancel()
	<-runDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	shutdownDone := make(chan struct{})
	go func() {
		reconciler.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		log.Info("reconciler shutdown complete")
	case <-shutdownCtx.Done():
		log.Warn("shutdown timeout reached, forcing exit")
	}

	if err := db.Close(); err != nil {
		log.Error("database close error", "error", err)
	}
}

func getDurationFlag(flagValue, configValue time.Duration) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	reconcilerCmd.Flags().DurationVar(&reconcileInterval, "interval", 0, "Sweep interval (overrides config)")
	reconcilerCmd.Flags().IntVar(&reconcileBatch, "batch-size", 0, "Maximum payments per sweep (overrides config)")
	reconcilerCmd.Flags().IntVar(&reconcileWorkers, "max-workers", 0, "Worker pool size (overrides config)")

	workerCmd.AddCommand(reconcilerCmd)
}
