// Package flow sequences multi-step backend operations and classifies
// the outcome.
//
// Steps run strictly in declared order because later steps consume
// earlier steps' output identifiers. The runner stops at the first
// failure and never rolls back: entities persisted by earlier steps
// stay in place and their identifiers are surfaced so a follow-up call
// or a human can complete or remove them.
package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Step states.
const (
	Succeeded = "succeeded"
	Failed    = "failed"
	Skipped   = "skipped"
)

// Overall report statuses.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailure = "failure"
)

// EntityRef identifies a backend entity a step persisted or acted on.
type EntityRef struct {
	Kind  string
	ID    string
	Label string
}

func (e EntityRef) String() string {
	if e.Label != "" {
		return fmt.Sprintf("%s `%s` (%s)", e.Kind, e.ID, e.Label)
	}
	return fmt.Sprintf("%s `%s`", e.Kind, e.ID)
}

// Step is one unit of a multi-step operation. Run returns the entity
// it persisted, or nil for pure reads. Returning Skip(reason) records
// the step as skipped without stopping the sequence.
type Step struct {
	Name string
	Run  func(ctx context.Context) (*EntityRef, error)
}

// skipError marks a step as intentionally not applicable.
type skipError struct {
	reason string
}

func (e *skipError) Error() string { return e.reason }

// Skip returns an error value that records the step as skipped.
func Skip(reason string) error {
	return &skipError{reason: reason}
}

// Outcome is the tagged result of one step.
type Outcome struct {
	Step   string
	State  string
	Entity *EntityRef
	Reason string
}

// Report is the ordered outcome of a whole operation.
type Report struct {
	Status   string
	Outcomes []Outcome
}

// Run executes steps in order. On a failure the remaining steps are
// recorded as skipped("not attempted"). The report is partial rather
// than failed only when a prior step already persisted an entity the
// caller needs to know about.
func Run(ctx context.Context, steps []Step) *Report {
	report := &Report{}
	failed := false

	for _, step := range steps {
		if failed {
			report.Outcomes = append(report.Outcomes, Outcome{
				Step:   step.Name,
				State:  Skipped,
				Reason: "not attempted",
			})
			continue
		}

		entity, err := step.Run(ctx)
		var skip *skipError
		switch {
		case err == nil:
			report.Outcomes = append(report.Outcomes, Outcome{
				Step:   step.Name,
				State:  Succeeded,
				Entity: entity,
			})
		case errors.As(err, &skip):
			report.Outcomes = append(report.Outcomes, Outcome{
				Step:   step.Name,
				State:  Skipped,
				Reason: skip.reason,
			})
		default:
			report.Outcomes = append(report.Outcomes, Outcome{
				Step:   step.Name,
				State:  Failed,
				Reason: err.Error(),
			})
			failed = true
		}
	}

	switch {
	case !failed:
		report.Status = StatusSuccess
	case len(report.Entities()) > 0:
		report.Status = StatusPartial
	default:
		report.Status = StatusFailure
	}
	return report
}

// Entities returns the refs persisted by succeeded steps, in step
// order.
func (r *Report) Entities() []EntityRef {
	var refs []EntityRef
	for _, o := range r.Outcomes {
		if o.State == Succeeded && o.Entity != nil {
			refs = append(refs, *o.Entity)
		}
	}
	return refs
}

// EntityIDs returns just the persisted identifiers, for journaling.
func (r *Report) EntityIDs() []string {
	var ids []string
	for _, ref := range r.Entities() {
		ids = append(ids, ref.ID)
	}
	return ids
}

// FirstFailure returns the failed outcome, or nil when every step
// succeeded or was skipped.
func (r *Report) FirstFailure() *Outcome {
	for i := range r.Outcomes {
		if r.Outcomes[i].State == Failed {
			return &r.Outcomes[i]
		}
	}
	return nil
}

// Summary renders the report as a caller-facing markdown block: the
// overall status, one line per step, and for partial completions the
// identifiers of what was persisted so the caller can recover.
func (r *Report) Summary(title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n**Status:** %s\n\n", title, r.Status)

	for _, o := range r.Outcomes {
		marker := "✅"
		switch o.State {
		case Failed:
			marker = "❌"
		case Skipped:
			marker = "⏭️"
		}
		fmt.Fprintf(&b, "%s %s", marker, o.Step)
		switch {
		case o.State == Succeeded && o.Entity != nil:
			fmt.Fprintf(&b, " — %s", o.Entity.String())
		case o.Reason != "":
			fmt.Fprintf(&b, " — %s", o.Reason)
		}
		b.WriteString("\n")
	}

	if r.Status == StatusPartial {
		b.WriteString("\n⚠️ Partially completed. Already persisted:\n")
		for _, ref := range r.Entities() {
			fmt.Fprintf(&b, "- %s\n", ref.String())
		}
		b.WriteString("Complete or remove these manually, or retry the failed step.\n")
	}
	return b.String()
}
