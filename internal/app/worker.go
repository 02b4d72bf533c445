package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-etl-worker/internal/config"
	"github.com/samvad-hq/samvad-etl-worker/internal/etl"
	"github.com/samvad-hq/samvad-etl-worker/internal/logger"
	"github.com/samvad-hq/samvad-etl-worker/pkg/httpclient"
	"github.com/samvad-hq/samvad-etl-worker/pkg/publishers"
)

// runner is the part of etl.Pipeline the worker loop drives.
type runner interface {
	Run(ctx context.Context) (*httpclient.Result, error)
}

// Worker represents the ETL worker runtime. It owns the HTTP clients, the
// pipeline and the optional stage event fanout, and drives either a single
// run or a ticker loop.
type Worker struct {
	cfg         *config.Config
	pipeline    runner
	destination httpclient.Client
	fanout      *publishers.Fanout
	interval    time.Duration
	log         logger.Logger
}

// NewWorker builds a worker runtime from config.
func NewWorker(ctx context.Context, cfg *config.Config, log logger.Logger) (*Worker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	source, err := httpclient.NewRestyClient(httpclient.Config{
		BaseURL: cfg.SourceBaseURL,
		Headers: cfg.DefaultHeaders,
		Timeout: cfg.HTTPTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("build source client: %w", err)
	}
	var destination httpclient.Client = source
	if cfg.DestinationBaseURL != cfg.SourceBaseURL {
		destination, err = httpclient.NewRestyClient(httpclient.Config{
			BaseURL: cfg.DestinationBaseURL,
			Headers: cfg.DefaultHeaders,
			Timeout: cfg.HTTPTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("build destination client: %w", err)
		}
	}
	log.InfoObj("http clients initialized", "http_config", map[string]any{
		"source_base_url":      cfg.SourceBaseURL,
		"destination_base_url": cfg.DestinationBaseURL,
		"timeout_seconds":      int(cfg.HTTPTimeout.Seconds()),
		"default_headers":      len(cfg.DefaultHeaders),
	})

	opts := []etl.Option{
		etl.WithDestination(destination),
		etl.WithLogger(log),
		etl.WithName(cfg.AppName),
	}

	fanout, err := buildFanout(ctx, cfg.EventsFile, log)
	if err != nil {
		return nil, err
	}
	if fanout != nil {
		opts = append(opts, etl.WithEvents(fanout))
	}

	pipeline, err := etl.NewPipeline(source, opts...)
	if err != nil {
		closeFanout(fanout, log)
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	return &Worker{
		cfg:         cfg,
		pipeline:    pipeline,
		destination: destination,
		fanout:      fanout,
		interval:    cfg.RunInterval,
		log:         log,
	}, nil
}

// buildFanout loads the stage event publishers. A blank path or a file with no
// enabled publishers yields a nil fanout.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		return nil, nil
	}

	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load events registry: %w", err)
	}
	enabled := reg.Enabled()
	if len(enabled) == 0 {
		log.WarnObj("no enabled event publishers; stage events disabled", "events_file", path)
		return nil, nil
	}

	clients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build event publishers: %w", err)
	}
	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("event publishers loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(clients), nil
}

// Run performs one pipeline run, or loops on the configured interval until the
// context is cancelled. In run-once mode the pipeline error is returned; in
// loop mode failed runs are logged and the loop continues.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.pipeline == nil {
		return fmt.Errorf("worker is not initialized")
	}

	if w.interval <= 0 {
		return w.runOnce(ctx)
	}

	w.log.InfoObj("worker loop starting", "worker_state", map[string]any{
		"publishers_count": w.fanout.Size(),
		"run_interval":     w.interval.String(),
	})

	if err := w.runOnce(ctx); err != nil {
		w.log.ErrorObj("initial run failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.InfoObj("worker loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := w.runOnce(ctx); err != nil {
				w.log.ErrorObj("scheduled run failed", "error", err)
			}
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) error {
	start := time.Now()
	w.log.InfoObj("run started", "run_meta", map[string]any{
		"started_at": start.UTC(),
	})
	res, err := w.pipeline.Run(ctx)
	if err != nil {
		return err
	}
	w.log.InfoObj("run completed", "run_meta", map[string]any{
		"status_code": res.StatusCode,
		"kind":        res.Kind.String(),
		"elapsed_ms":  time.Since(start).Milliseconds(),
	})
	return nil
}

// Upload sends the file at path to endpoint on the destination service.
func (w *Worker) Upload(ctx context.Context, endpoint, path string) (*httpclient.Result, error) {
	if w == nil || w.destination == nil {
		return nil, fmt.Errorf("worker is not initialized")
	}
	res, err := w.destination.UploadFile(ctx, endpoint, path, nil)
	if err != nil {
		w.log.ErrorObj("upload failed", "upload_error", map[string]any{
			"endpoint": endpoint,
			"path":     path,
			"error":    err.Error(),
		})
		return nil, err
	}
	w.log.InfoObj("upload completed", "upload_meta", map[string]any{
		"endpoint":    endpoint,
		"path":        path,
		"status_code": res.StatusCode,
	})
	return res, nil
}

// Close releases the event publishers.
func (w *Worker) Close() {
	if w == nil {
		return
	}
	closeFanout(w.fanout, w.log)
	w.fanout = nil
}

func closeFanout(f *publishers.Fanout, log logger.Logger) {
	if f == nil {
		return
	}
	if err := f.Close(); err != nil {
		log.ErrorObj("event publishers close failed", "error", err)
	}
}
