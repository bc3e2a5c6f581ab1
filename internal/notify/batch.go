package notify

import (
	"context"
	"fmt"
	"strings"

	"pirbench/internal/benchmark"
)

// BatchReporter turns batch progress into a Slack thread: the start
// message opens the thread and every later message replies to it.
type BatchReporter struct {
	ctx     context.Context
	manager *Manager
	thread  string
}

// NewBatchReporter creates a reporter posting through m.
func NewBatchReporter(ctx context.Context, m *Manager) *BatchReporter {
	return &BatchReporter{ctx: ctx, manager: m}
}

// Started announces the configurations about to run.
func (r *BatchReporter) Started(cfgs []benchmark.RunConfig) {
	ts, _ := r.manager.Notify(r.ctx, EventStart, StartMessage(cfgs), "")
	r.thread = ts
}

// Succeeded reports one finished configuration.
func (r *BatchReporter) Succeeded(rec benchmark.Record) {
	r.manager.Notify(r.ctx, EventSuccess, SuccessMessage(rec), r.thread)
}

// Failed reports a skipped configuration.
func (r *BatchReporter) Failed(cfg benchmark.RunConfig, err error) {
	r.manager.Notify(r.ctx, EventFailure, FailureMessage(cfg, err), r.thread)
}

// Done posts the batch summary under the failure event when any
// configuration was skipped.
func (r *BatchReporter) Done(result benchmark.BatchResult) {
	event := EventSuccess
	if len(result.Failures) > 0 {
		event = EventFailure
	}
	r.manager.Notify(r.ctx, event, SummaryMessage(result), r.thread)
}

// StartMessage lists the configurations of a batch.
func StartMessage(cfgs []benchmark.RunConfig) string {
	names := make([]string, len(cfgs))
	for i, c := range cfgs {
		names[i] = "(" + c.String() + ")"
	}
	return fmt.Sprintf("Running %d configuration(s): %s", len(cfgs), strings.Join(names, ", "))
}

// SuccessMessage summarizes one record.
func SuccessMessage(rec benchmark.Record) string {
	return fmt.Sprintf("%s done: basis 2^%d, %d metric(s)", rec.Config, rec.Basis, len(rec.Metrics))
}

// FailureMessage names the skipped configuration and its error.
func FailureMessage(cfg benchmark.RunConfig, err error) string {
	return fmt.Sprintf("%s skipped: %v", cfg, err)
}

// SummaryMessage counts the outcome of a batch.
func SummaryMessage(result benchmark.BatchResult) string {
	msg := fmt.Sprintf("Batch complete: %d succeeded, %d failed", len(result.Records), len(result.Failures))
	for _, f := range result.Failures {
		msg += "\n- " + f.Config.String()
	}
	return msg
}
