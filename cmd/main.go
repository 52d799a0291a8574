package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/biosense/internal/adapters/http/api"
	"github.com/okian/biosense/internal/adapters/mq/pubsub"
	app "github.com/okian/biosense/internal/app"
	"github.com/okian/biosense/internal/config"
	"github.com/okian/biosense/internal/domain/model"
	"github.com/okian/biosense/internal/simulator"
	"github.com/okian/biosense/pkg/logger"
	"github.com/okian/biosense/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.InitWithWriter(os.Stdout, cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := newService(cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "failed to build engine", logger.Error(err))
		return
	}
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start engine", logger.Error(err))
		return
	}
	defer svc.Stop()

	logStateChanges(svc, loggerInstance)

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	if cfg.Simulate {
		if err := startSimulators(ctx, svc, cfg, loggerInstance); err != nil {
			loggerInstance.Error(ctx, "failed to start simulated wearables", logger.Error(err))
			return
		}
	}

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newService builds the engine from cfg and registers the built-in device
// families.
func newService(cfg *config.Config, l logger.Logger) (*app.Service, error) {
	weights, err := cfg.MetricWeights()
	if err != nil {
		return nil, err
	}
	opts := []app.Option{
		app.WithLogger(l),
		app.WithQueueSize(cfg.QueueSize),
		app.WithFilterWindow(cfg.FilterWindow),
		app.WithHistorySize(cfg.HistorySize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithHysteresisMargin(cfg.HysteresisMargin),
		app.WithChangeThreshold(cfg.ChangeThreshold),
	}
	if len(weights) > 0 {
		opts = append(opts, app.WithWeights(weights))
	}
	svc := app.New(opts...)
	for _, a := range simulator.Adapters() {
		if err := svc.RegisterAdapter(a); err != nil {
			return nil, fmt.Errorf("register adapter %s: %w", a.Type, err)
		}
	}
	return svc, nil
}

// startSimulators registers, connects and streams cfg.SimulateDevices
// simulated wearables into svc. They stop with ctx.
func startSimulators(ctx context.Context, svc *app.Service, cfg *config.Config, l logger.Logger) error {
	adapter := model.AdapterDescriptor{Type: "simulated", Metrics: model.BuiltinMetrics()}
	interval := time.Duration(cfg.SimulateIntervalMS) * time.Millisecond

	for i := 0; i < cfg.SimulateDevices; i++ {
		dev, err := svc.RegisterDevice(ctx, adapter.Type, model.DeviceInfo{
			Name: fmt.Sprintf("simulated-%d", i+1),
		})
		if err != nil {
			return err
		}
		if err := svc.Connect(ctx, dev.ID); err != nil {
			return err
		}
		w := simulator.New(dev.ID, adapter,
			simulator.WithInterval(interval),
			simulator.WithSeed(uint64(i+1)),
			simulator.WithLogger(l.Named("simulator")),
		)
		go func() {
			if err := w.Run(ctx, svc); err != nil {
				l.Warn(ctx, "simulated wearable stopped", logger.DeviceID(w.ID()), logger.Error(err))
			}
		}()
	}
	return nil
}

// logStateChanges logs every published status change.
func logStateChanges(svc *app.Service, l logger.Logger) string {
	return svc.Subscribe(pubsub.KindStateChanged, func(e pubsub.Event) {
		ev, ok := e.(pubsub.StateChanged)
		if !ok {
			return
		}
		l.Info(context.Background(), "player state changed",
			logger.String("from", string(ev.Previous.Status)),
			logger.String("to", string(ev.Current.Status)),
			logger.Float64("arousal", ev.Current.ArousalScore),
			logger.Float64("confidence", ev.Current.Confidence),
		)
	})
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates device gauges from the engine stats.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if devices, ok := stats["devices"].(int); ok {
		metrics.UpdateDevicesRegistered(devices)
	}
	if connected, ok := stats["connectedDevices"].(int); ok {
		metrics.UpdateDevicesConnected(connected)
	}
}
