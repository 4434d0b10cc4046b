package ports

import (
	"context"
	"iter"

	"github.com/forPelevin/framegrab/internal/domain/invocation"
	"github.com/forPelevin/framegrab/internal/types"
)

// Transcoder starts an invocation and hands back its event stream.
type Transcoder interface {
	Start(ctx context.Context, inv invocation.Invocation) (EventStream, error)
}

// EventStream is a running tool process. Events may be ranged over once;
// Wait must be called afterwards to reap the process.
type EventStream interface {
	Events() (iter.Seq[types.EventRecord], error)
	Wait() (types.ExitStatus, error)
	Close() error
}

// LineClassifier maps one raw output line to an event. ok=false drops the
// line.
type LineClassifier interface {
	Classify(line string) (ev types.EventRecord, ok bool)
}

type ToolProbe interface {
	IsInstalled(ctx context.Context) bool
}

type Provisioner interface {
	EnsureInstalled(ctx context.Context) error
}
