// Package coordinator runs order placement as a sequence of compensable
// steps. When a step fails, the steps that already succeeded are
// compensated in reverse order.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jcmexdev/food-storefront/internal/coordinator/placementlog"
)

const tracerName = "github.com/jcmexdev/food-storefront/internal/coordinator"

// Step is a single unit of work with an action that undoes it.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Orchestrator executes steps for one placement and journals every
// transition. A nil journal disables journaling.
type Orchestrator struct {
	placementID string
	steps       []Step
	journal     placementlog.Repository
}

func NewOrchestrator(placementID string, steps []Step, journal placementlog.Repository) *Orchestrator {
	return &Orchestrator{placementID: placementID, steps: steps, journal: journal}
}

// Start runs the steps in order. payload is recorded with the STARTED
// entry. The returned error is the failing step's error, wrapped.
func (o *Orchestrator) Start(ctx context.Context, payload string) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "placement")
	defer span.End()
	span.SetAttributes(attribute.String("placement.id", o.placementID))

	o.record(ctx, placementlog.StatusStarted, "", payload, nil)

	var done []Step
	for _, step := range o.steps {
		slog.DebugContext(ctx, "executing step", "placement_id", o.placementID, "step", step.Name())
		if err := o.execute(ctx, step); err != nil {
			slog.WarnContext(ctx, "step failed, rolling back",
				"placement_id", o.placementID,
				"step", step.Name(),
				"error", err,
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())

			errs := []string{fmt.Sprintf("step %s failed: %v", step.Name(), err)}
			o.record(ctx, placementlog.StatusCompensating, step.Name(), "", errs)
			errs = append(errs, o.rollback(ctx, done)...)
			o.record(ctx, placementlog.StatusFailed, step.Name(), "", errs)
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
		done = append(done, step)
		o.record(ctx, placementlog.StatusStepDone, step.Name(), "", nil)
	}

	o.record(ctx, placementlog.StatusCompleted, "", "", nil)
	slog.InfoContext(ctx, "placement completed", "placement_id", o.placementID)
	return nil
}

func (o *Orchestrator) execute(ctx context.Context, step Step) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, step.Name())
	defer span.End()
	if err := step.Execute(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// rollback compensates steps LIFO and returns the compensation failures.
func (o *Orchestrator) rollback(ctx context.Context, steps []Step) []string {
	var failures []string
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		slog.InfoContext(ctx, "compensating step", "placement_id", o.placementID, "step", step.Name())
		if err := step.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: compensation failed",
				"placement_id", o.placementID,
				"step", step.Name(),
				"error", err,
			)
			failures = append(failures, fmt.Sprintf("compensation of %s failed: %v", step.Name(), err))
		}
	}
	return failures
}

// record appends to the journal. Journal failures are logged, never fatal
// to the placement.
func (o *Orchestrator) record(ctx context.Context, status placementlog.Status, step, payload string, errs []string) {
	if o.journal == nil {
		return
	}
	entry := placementlog.NewEntry(ctx, o.placementID, status, step, payload, errs)
	if err := o.journal.Append(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to append placement log",
			"placement_id", o.placementID,
			"status", status,
			"error", err,
		)
	}
}
