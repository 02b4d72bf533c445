package etl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-etl-worker/internal/logger"
	"github.com/samvad-hq/samvad-etl-worker/pkg/httpclient"
	"github.com/samvad-hq/samvad-etl-worker/pkg/publishers"
)

// Fixed service paths.
const (
	SourceEndpoint      = "data/endpoint"
	DestinationEndpoint = "destination/endpoint"
)

// Stage names reported in logs and events.
const (
	StageExtract   = "extract"
	StageTransform = "transform"
	StageLoad      = "load"
)

// ErrUnstructuredResponse is returned by Extract when the source answers with
// a content type that cannot be decoded into a Record.
var ErrUnstructuredResponse = errors.New("source returned an unstructured response")

// EventPublisher receives one event per stage. publishers.Fanout satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// stages is the seam Run drives; *Pipeline is the production implementation.
type stages interface {
	Extract(ctx context.Context) (Record, error)
	Transform(rec Record) (TransformedRecord, error)
	Load(ctx context.Context, data TransformedRecord) (*httpclient.Result, error)
}

// Pipeline pulls a Record from the source service, transforms it and pushes
// the result to the destination service.
type Pipeline struct {
	name        string
	source      httpclient.Client
	destination httpclient.Client
	log         logger.Logger
	events      EventPublisher
	newRunID    func() string
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithDestination loads through a separate client, for a destination under a
// different base URL. Without it the source client is used for both stages.
func WithDestination(c httpclient.Client) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.destination = c
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(log logger.Logger) Option {
	return func(p *Pipeline) { p.log = logger.Ensure(log) }
}

// WithEvents attaches the stage event side channel.
func WithEvents(events EventPublisher) Option {
	return func(p *Pipeline) { p.events = events }
}

// WithName labels events emitted by this pipeline.
func WithName(name string) Option {
	return func(p *Pipeline) { p.name = name }
}

// NewPipeline builds a pipeline around the source client.
func NewPipeline(source httpclient.Client, opts ...Option) (*Pipeline, error) {
	if source == nil {
		return nil, fmt.Errorf("source client must not be nil")
	}
	p := &Pipeline{
		source:      source,
		destination: source,
		log:         logger.NopLogger{},
		newRunID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Extract reads the source record. Client errors are logged and returned as is.
func (p *Pipeline) Extract(ctx context.Context) (Record, error) {
	res, err := p.source.Get(ctx, SourceEndpoint, nil, nil)
	if err != nil {
		p.logStageError(StageExtract, err)
		return Record{}, err
	}
	if !res.IsStructured() {
		err := fmt.Errorf("%w (content type %q)", ErrUnstructuredResponse, res.ContentType)
		p.logStageError(StageExtract, err)
		return Record{}, err
	}

	var rec Record
	if err := res.Decode(&rec); err != nil {
		err = fmt.Errorf("decode extracted record: %w", err)
		p.logStageError(StageExtract, err)
		return Record{}, err
	}
	return rec, nil
}

// Transform applies the pure record transformation.
func (p *Pipeline) Transform(rec Record) (TransformedRecord, error) {
	return Transform(rec)
}

// Load posts data as JSON to the destination. Client errors are logged and
// returned as is.
func (p *Pipeline) Load(ctx context.Context, data TransformedRecord) (*httpclient.Result, error) {
	res, err := p.destination.Post(ctx, DestinationEndpoint, httpclient.Payload{JSON: data}, nil)
	if err != nil {
		p.logStageError(StageLoad, err)
		return nil, err
	}
	return res, nil
}

// Run executes extract, transform and load in order and returns load's
// result. The first failing stage aborts the run and its error is returned
// unchanged.
func (p *Pipeline) Run(ctx context.Context) (*httpclient.Result, error) {
	return p.run(ctx, p)
}

func (p *Pipeline) run(ctx context.Context, s stages) (*httpclient.Result, error) {
	runID := p.newRunID()
	start := time.Now()

	rec, err := s.Extract(ctx)
	p.emit(ctx, runID, StageExtract, len(rec.Items), err)
	if err != nil {
		return nil, err
	}

	out, err := s.Transform(rec)
	if err != nil {
		p.logStageError(StageTransform, err)
	}
	p.emit(ctx, runID, StageTransform, len(out), err)
	if err != nil {
		return nil, err
	}

	res, err := s.Load(ctx, out)
	p.emit(ctx, runID, StageLoad, len(out), err)
	if err != nil {
		return nil, err
	}

	p.log.InfoObj("etl run completed", "etl_run", map[string]any{
		"run_id":     runID,
		"items":      len(out),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return res, nil
}

func (p *Pipeline) logStageError(stage string, err error) {
	p.log.ErrorObj("etl stage failed", "etl_error", map[string]any{
		"stage": stage,
		"error": err.Error(),
	})
}

// emit publishes a stage event. Publish failures are logged only.
func (p *Pipeline) emit(ctx context.Context, runID, stage string, items int, stageErr error) {
	if p.events == nil {
		return
	}

	status := publishers.StatusSucceeded
	if stageErr != nil {
		status = publishers.StatusFailed
	}
	evt := publishers.NewEvent(runID, stage, status)
	evt.Pipeline = p.name
	evt.Items = items
	if stageErr != nil {
		evt.Error = stageErr.Error()
	}

	if _, err := p.events.Publish(ctx, evt); err != nil {
		p.log.WarnObj("stage event publish failed", "etl_event_error", map[string]any{
			"run_id": runID,
			"stage":  stage,
			"error":  err.Error(),
		})
	}
}
