package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/histsheet/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the conversion
// state accumulated by previous steps.
//
// Design decision: We use an interface rather than function types because
// steps carry their own configuration (detector, extractor, writer) and
// Name() gives every log line a stable step label.
type Step interface {
	// Do executes the pipeline step.
	// Returns an error if the conversion cannot continue.
	Do(ctx context.Context, conv *model.Conversion) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence and stops at the first error.
// The error is also recorded in conv, and conv.Duration is always set.
//
// Design decision: A partial conversion is never useful. A bad timestamp
// found by extraction must keep the writer from producing a workbook, so
// there is no continue-on-error mode.
func (p *Pipeline) Execute(ctx context.Context, conv *model.Conversion) error {
	defer conv.Finish()

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"input", conv.InputPath,
				"reason", err,
			)
			conv.SetError(err)
			return err
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"input", conv.InputPath,
		)

		if err := step.Do(ctx, conv); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"input", conv.InputPath,
				"error", err,
			)
			conv.SetError(err)
			return err
		}

		conv.PerformedSteps = append(conv.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
