// Package verdict folds a tool's event stream into a single outcome.
//
// Only Error and Fatal log lines count. The process exit code is not looked
// at here; callers that want it factor it in themselves.
package verdict

import (
	"iter"

	"github.com/forPelevin/framegrab/internal/types"
)

// Aggregate drains events and collects the text of every Error/Fatal line in
// arrival order.
func Aggregate(events iter.Seq[types.EventRecord]) types.Outcome {
	var out types.Outcome
	for ev := range events {
		if ev.IsFailure() {
			out.Messages = append(out.Messages, ev.Text)
		}
	}
	return out
}

// Err converts a failed outcome into a *types.DiagnosticsError.
func Err(o types.Outcome) error {
	if o.OK() {
		return nil
	}
	return &types.DiagnosticsError{Messages: append([]string(nil), o.Messages...)}
}
