// Package pipeline runs the ETL steps in order and records every run, step
// and outcome in the audit tables.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/farxc/dre_warehouse/internal/config"
	"github.com/farxc/dre_warehouse/internal/logger"
	"github.com/farxc/dre_warehouse/internal/pipeline/dimensional"
	"github.com/farxc/dre_warehouse/internal/pipeline/downloader"
	"github.com/farxc/dre_warehouse/internal/pipeline/extract"
	"github.com/farxc/dre_warehouse/internal/pipeline/load"
	"github.com/farxc/dre_warehouse/internal/pipeline/quality"
	"github.com/farxc/dre_warehouse/internal/pipeline/standardize"
	"github.com/farxc/dre_warehouse/internal/store"
)

var (
	ErrConnectivity  = errors.New("database connectivity check failed")
	ErrRunInProgress = errors.New("a pipeline run is already in progress")
)

// Step names, in execution order.
const (
	StepExtract     = "extract_excel"
	StepStandardize = "transform_raw_to_stg"
	StepDimensional = "transform_stg_to_dw"
	StepQuality     = "dq_checks"
)

type Options struct {
	SkipExtract        bool
	SkipQuality        bool
	FailOnQualityError bool
	Trigger            string
}

// Result summarizes one run. RunID is 0 when the run never started.
type Result struct {
	RunID       int64
	Status      string
	Duration    time.Duration
	RowsWritten int64
	Steps       []store.StepLog
	Quality     *quality.Summary
	Err         error
}

// stepOutput is what a step reports back to the run loop.
type stepOutput struct {
	rowsRead    int64
	rowsWritten int64
	status      string
}

type Orchestrator struct {
	cfg       *config.Config
	storage   *store.Storage
	appLogger *logger.Logger

	// fetch downloads remote workbooks; replaced in tests.
	fetch func(ctx context.Context, url, destDir string, appLogger *logger.Logger) (string, error)

	mu      sync.Mutex
	running bool
}

func NewOrchestrator(cfg *config.Config, storage *store.Storage, appLogger *logger.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		storage:   storage,
		appLogger: appLogger,
		fetch:     downloader.FetchWorkbook,
	}
}

// Running reports whether a run is currently active in this process.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

func (o *Orchestrator) acquire() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return false
	}
	o.running = true
	return true
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.running = false
	o.mu.Unlock()
}

// Run executes one pipeline run. The returned error is the run's failure
// cause and matches Result.Err. Non-fatal quality failures leave the run
// SUCCESS with a WARNING quality step.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	const component = "Orchestrator"

	if !o.acquire() {
		return nil, ErrRunInProgress
	}
	defer o.release()

	if opts.Trigger == "" {
		opts.Trigger = store.TriggerManual
	}
	failOnQuality := opts.FailOnQualityError || o.cfg.DQ.FailOnError

	started := time.Now()
	state := newRunState()
	result := &Result{Status: string(StateCreated)}

	fail := func(err error) (*Result, error) {
		result.Status = store.StatusFailed
		result.Err = err
		result.Duration = time.Since(started)
		return result, err
	}

	o.appLogger.Info(component, "Pipeline starting: trigger=%s skipExtract=%v skipDQ=%v failOnDQError=%v", opts.Trigger, opts.SkipExtract, opts.SkipQuality, failOnQuality)

	if err := o.storage.Ping(ctx); err != nil {
		o.appLogger.Error(component, "Database connectivity check failed: error=%v", err)
		_ = state.transition(StateFailed)
		return fail(fmt.Errorf("%w: %v", ErrConnectivity, err))
	}

	run := &store.Run{StartedAt: started, TriggeredBy: opts.Trigger}
	if err := o.storage.Runs.Start(ctx, run); err != nil {
		_ = state.transition(StateFailed)
		return fail(fmt.Errorf("failed to start run: %w", err))
	}
	if err := state.transition(StateRunning); err != nil {
		return fail(err)
	}
	result.RunID = run.RunID
	result.Status = string(state.current)

	// Audit rows are written even after ctx is cancelled so the run always
	// receives its terminal update.
	audit := context.WithoutCancel(ctx)
	o.appLogger.Info(component, "Run started: run_id=%d", run.RunID)

	type step struct {
		name string
		skip bool
		fn   func(ctx context.Context, runID int64) (stepOutput, error)
	}
	steps := []step{
		{StepExtract, opts.SkipExtract, o.extract},
		{StepStandardize, false, o.standardize},
		{StepDimensional, false, o.dimensional},
		{StepQuality, opts.SkipQuality, func(ctx context.Context, runID int64) (stepOutput, error) {
			return o.checkQuality(ctx, runID, failOnQuality, result)
		}},
	}

	terminal := StateSuccess
	var runErr error
	order := 0
	for _, s := range steps {
		if s.skip {
			o.appLogger.Info(component, "Step skipped: run_id=%d step=%s", run.RunID, s.name)
			continue
		}
		order++

		stepStarted := time.Now()
		o.appLogger.Info(component, "Step starting: run_id=%d step=%s order=%d", run.RunID, s.name, order)
		out, err := s.fn(ctx, run.RunID)

		entry := store.StepLog{
			RunID:       run.RunID,
			StepName:    s.name,
			StepOrder:   order,
			Status:      out.status,
			RowsRead:    out.rowsRead,
			RowsWritten: out.rowsWritten,
			StartedAt:   stepStarted,
			FinishedAt:  time.Now(),
		}
		if err != nil {
			msg := err.Error()
			entry.Status = store.StatusFailed
			entry.ErrorMessage = &msg
		}
		if entry.Status == "" {
			entry.Status = store.StatusSuccess
		}

		if lerr := o.storage.Runs.LogStep(audit, &entry); lerr != nil {
			o.appLogger.Error(component, "Failed to record step: run_id=%d step=%s error=%v", run.RunID, s.name, lerr)
		}
		result.Steps = append(result.Steps, entry)
		result.RowsWritten += entry.RowsWritten

		if err != nil {
			o.appLogger.Error(component, "Step failed: run_id=%d step=%s error=%v", run.RunID, s.name, err)
			terminal, runErr = StateFailed, fmt.Errorf("step %s failed: %w", s.name, err)
			break
		}
		o.appLogger.Info(component, "Step completed: run_id=%d step=%s status=%s rowsRead=%d rowsWritten=%d", run.RunID, s.name, entry.Status, entry.RowsRead, entry.RowsWritten)
	}

	if err := state.transition(terminal); err != nil {
		return fail(err)
	}

	result.Duration = time.Since(started)
	result.Status = string(state.current)
	result.Err = runErr

	outcome := store.RunOutcome{
		Status:          result.Status,
		FinishedAt:      time.Now(),
		DurationSeconds: result.Duration.Seconds(),
		TotalRows:       result.RowsWritten,
	}
	if runErr != nil {
		outcome.ErrorMessage = runErr.Error()
	}
	if err := o.storage.Runs.Finish(audit, run.RunID, outcome); err != nil {
		o.appLogger.Error(component, "Failed to finish run: run_id=%d error=%v", run.RunID, err)
		if runErr == nil {
			runErr = fmt.Errorf("failed to finish run %d: %w", run.RunID, err)
			result.Err = runErr
		}
	}

	o.appLogger.Info(component, "Pipeline finished: run_id=%d status=%s duration=%.2fs rows=%d", run.RunID, result.Status, result.Duration.Seconds(), result.RowsWritten)
	return result, runErr
}

func (o *Orchestrator) extract(ctx context.Context, _ int64) (stepOutput, error) {
	path := o.cfg.SourcePath()
	if o.cfg.IsRemoteSource() {
		downloaded, err := o.fetch(ctx, o.cfg.ETL.SourceFile, o.cfg.OutputDir(), o.appLogger)
		if err != nil {
			return stepOutput{}, fmt.Errorf("failed to download workbook: %w", err)
		}
		path = downloaded
	}

	batch, err := extract.ReadWorkbook(path, o.cfg.ETL.Sheets, extract.NewBatchID(), o.appLogger)
	if err != nil {
		return stepOutput{}, err
	}

	written, err := load.LoadBatch(ctx, batch, o.storage, o.appLogger)
	if err != nil {
		return stepOutput{rowsRead: int64(batch.Len())}, err
	}
	return stepOutput{rowsRead: int64(batch.Len()), rowsWritten: written}, nil
}

func (o *Orchestrator) standardize(ctx context.Context, _ int64) (stepOutput, error) {
	read, err := o.storage.Raw.Count(ctx)
	if err != nil {
		return stepOutput{}, err
	}

	counts, err := standardize.Standardize(ctx, o.storage, o.cfg.ETL.ReferenceYear, o.appLogger)
	if err != nil {
		return stepOutput{rowsRead: read}, err
	}
	return stepOutput{rowsRead: read, rowsWritten: counts.Total()}, nil
}

func (o *Orchestrator) dimensional(ctx context.Context, _ int64) (stepOutput, error) {
	read, err := o.storage.Staging.Count(ctx)
	if err != nil {
		return stepOutput{}, err
	}

	counts, err := dimensional.Load(ctx, o.storage, o.cfg.ETL.ReferenceYear, o.appLogger)
	if err != nil {
		return stepOutput{rowsRead: read}, err
	}
	return stepOutput{rowsRead: read, rowsWritten: counts.Total()}, nil
}

// checkQuality runs the gate. Failed rules make the step WARNING, leaving the
// run successful, unless failOnError turns them into a step failure.
func (o *Orchestrator) checkQuality(ctx context.Context, runID int64, failOnError bool, result *Result) (stepOutput, error) {
	gate := quality.NewGate(o.storage, quality.Rules(o.cfg.DQ), failOnError, o.appLogger)
	summary, err := gate.Run(ctx, runID)
	result.Quality = &summary
	if err != nil {
		return stepOutput{}, err
	}

	status := store.StatusSuccess
	if summary.Failed > 0 {
		status = store.StatusWarning
	}
	return stepOutput{status: status}, nil
}
