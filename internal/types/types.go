package types

import (
	"strings"
	"time"
)

// CropRect is a crop region in fractions of the frame size. The values are
// kept as text and handed to the tool's expression evaluator untouched.
type CropRect struct {
	X string
	Y string
	W string
	H string
}

// FullFrame is the "no crop" sentinel.
func FullFrame() CropRect {
	return CropRect{X: "0", Y: "0", W: "1", H: "1"}
}

// IsFullFrame reports whether the rect selects the whole frame. Only W and H
// are consulted.
func (c CropRect) IsFullFrame() bool {
	return c.W == "1" && c.H == "1"
}

type FrameRequest struct {
	Source string
	Dest   string
	Time   string
	Crop   CropRect
}

type ClipRequest struct {
	Source    string
	Dest      string
	Start     string
	Duration  string
	KeepAudio bool
	Crop      CropRect
}

type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

type EventKind int

const (
	EventLog EventKind = iota
	EventProgress
)

// EventRecord is one parsed unit of the tool's output: a log line (Severity,
// Text) or a progress update (Elapsed).
type EventRecord struct {
	Kind     EventKind
	Severity Severity
	Text     string
	Elapsed  time.Duration
}

func LogLine(sev Severity, text string) EventRecord {
	return EventRecord{Kind: EventLog, Severity: sev, Text: text}
}

func Progress(elapsed time.Duration) EventRecord {
	return EventRecord{Kind: EventProgress, Elapsed: elapsed}
}

// IsFailure reports whether the record is an Error or Fatal log line.
func (e EventRecord) IsFailure() bool {
	return e.Kind == EventLog && (e.Severity == SeverityError || e.Severity == SeverityFatal)
}

// MessageSeparator joins Outcome messages for display.
const MessageSeparator = "; "

// Outcome is the verdict of one operation. An empty Messages list is success.
type Outcome struct {
	Messages []string
}

func (o Outcome) OK() bool { return len(o.Messages) == 0 }

func (o Outcome) String() string {
	if o.OK() {
		return "success"
	}
	return strings.Join(o.Messages, MessageSeparator)
}

// ExitStatus is the tool's process exit status. Code is -1 when the process
// did not exit normally.
type ExitStatus struct {
	Code int
}

func (e ExitStatus) Success() bool { return e.Code == 0 }
