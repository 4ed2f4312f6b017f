package sqlrun

import (
	"context"
	"log/slog"
	"os"

	"github.com/mkessler/sqlrun/config"
	"github.com/mkessler/sqlrun/db"
	"github.com/mkessler/sqlrun/resilience"
	"github.com/mkessler/sqlrun/script"
	"github.com/mkessler/sqlrun/security"
	"github.com/mkessler/sqlrun/sqltext"
)

// Names under which the database policies are registered.
const (
	PolicyDatabase = "database"
)

// Instance ties an engine, validator, loader, and resilience policies into
// one script runner.
type Instance struct {
	Config    *config.Config
	Engine    *db.Engine
	Registry  *resilience.Registry
	Validator *security.Validator
	Loader    *script.Loader

	executor *db.Executor
	breaker  *resilience.CircuitBreaker
	retry    *resilience.Retry
	logger   *slog.Logger
}

// Open builds a runner from cfg. The engine connects lazily; use Ping to
// verify reachability.
func Open(cfg *config.Config) (*Instance, error) {
	engine, err := db.OpenEngine(cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	engine.SetPoolLimits(cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime())

	registry := resilience.NewRegistry()
	breaker := registry.RegisterBreaker(PolicyDatabase, resilience.BreakerConfig{
		FailureThreshold: cfg.Resilience.FailureThreshold,
		RecoveryTimeout:  cfg.Resilience.RecoveryTimeout(),
		Matches:          db.IsConnError,
	})
	retry := registry.RegisterRetry(PolicyDatabase, resilience.RetryConfig{
		MaxAttempts:     cfg.Resilience.MaxAttempts,
		BaseDelay:       cfg.Resilience.BaseDelay(),
		MaxDelay:        cfg.Resilience.MaxDelay(),
		ExponentialBase: cfg.Resilience.ExponentialBase,
		Jitter:          cfg.Resilience.Jitter,
		Retryable:       db.IsConnError,
	})

	loader := script.NewLoader()
	loader.MaxBytes = int64(cfg.Security.MaxFileSizeMB) * 1024 * 1024

	return &Instance{
		Config:    cfg,
		Engine:    engine,
		Registry:  registry,
		Validator: security.NewValidator(cfg.Security),
		Loader:    loader,
		executor:  db.NewExecutor(engine.Metrics()),
		breaker:   breaker,
		retry:     retry,
		logger:    cfg.Logging.NewLogger(os.Stderr),
	}, nil
}

// SetLogger replaces the instance logger.
func (instance *Instance) SetLogger(logger *slog.Logger) {
	instance.logger = logger
}

// Logger returns the instance logger.
func (instance *Instance) Logger() *slog.Logger {
	return instance.logger
}

// RunScript validates, splits, and executes a SQL script under the given
// failure policy. Statement failures are recorded in the returned batch;
// only validation failures and connection-level failures (after the retry
// policy gives up) come back as errors.
func (instance *Instance) RunScript(ctx context.Context, sql string, stopOnError bool) (*db.BatchResult, error) {
	if err := instance.Validator.ValidateSQL(sql); err != nil {
		return nil, err
	}

	statements := sqltext.Split(sql, true)
	instance.logger.Debug("running batch",
		"statements", len(statements), "stop_on_error", stopOnError)

	var batch *db.BatchResult
	err := instance.retry.Execute(func() error {
		return instance.breaker.Call(func() error {
			conn, err := instance.Engine.Conn(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			result, err := instance.executor.ExecuteBatch(ctx, conn, statements, stopOnError)
			if err != nil {
				return err
			}
			batch = result
			return nil
		})
	})
	if err != nil {
		instance.logger.Error("batch failed", "error", err)
		return nil, err
	}

	instance.logger.Info("batch complete", "id", batch.ID,
		"attempted", batch.Attempted, "succeeded", batch.Succeeded,
		"failed", batch.Failed, "elapsed", batch.ExecutionTime())
	return batch, nil
}

// RunFile loads the script at path (local, file://, http(s)://, or s3://),
// validates the path and content, and runs it.
func (instance *Instance) RunFile(ctx context.Context, path string, stopOnError bool) (*db.BatchResult, error) {
	if err := instance.Validator.ValidateScriptPath(path); err != nil {
		return nil, err
	}

	data, err := instance.Loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	return instance.RunScript(ctx, string(data), stopOnError)
}

// Ping verifies the store is reachable, under the same retry and breaker
// policies as batch execution.
func (instance *Instance) Ping(ctx context.Context) error {
	return instance.retry.Execute(func() error {
		return instance.breaker.Call(func() error {
			return instance.Engine.Ping(ctx)
		})
	})
}

// Close releases the engine.
func (instance *Instance) Close() error {
	return instance.Engine.Close()
}
