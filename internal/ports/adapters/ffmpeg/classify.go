package ffmpeg

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/framegrab/internal/types"
)

// With "-loglevel level+..." ffmpeg tags each line with its level, after the
// optional "[component @ 0x...]" context:
//
//	[mov,mp4,m4a,3gp,3g2,mj2 @ 0x5581] [error] moov atom not found
//
// The tag only counts at that position; "[error]" later in the text is
// message content.
var levelTag = regexp.MustCompile(`^(?:\[[^\[\]]+ @ 0x[0-9a-fA-F]+\] ?)*\[(trace|debug|verbose|info|warning|error|fatal|panic)\] ?`)

var progressTime = regexp.MustCompile(`time=\s*(-?\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

// Classifier is the default LineClassifier for ffmpeg's combined output.
type Classifier struct{}

func (Classifier) Classify(line string) (types.EventRecord, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return types.EventRecord{}, false
	}

	sev := types.SeverityUnknown
	msg := line
	if loc := levelTag.FindStringSubmatchIndex(line); loc != nil {
		sev = severityOf(line[loc[2]:loc[3]])
		msg = strings.TrimSpace(line[loc[1]:])
	}

	if elapsed, ok := parseProgress(msg); ok {
		return types.Progress(elapsed), true
	}
	return types.LogLine(sev, msg), true
}

func severityOf(tag string) types.Severity {
	switch tag {
	case "trace", "debug", "verbose", "info":
		return types.SeverityInfo
	case "warning":
		return types.SeverityWarning
	case "error":
		return types.SeverityError
	case "fatal", "panic":
		return types.SeverityFatal
	default:
		return types.SeverityUnknown
	}
}

// parseProgress recognises the periodic stats line, e.g.
// "frame=   25 fps=0.0 q=-1.0 size=  256kB time=00:00:01.00 bitrate=...".
func parseProgress(msg string) (time.Duration, bool) {
	if !strings.HasPrefix(msg, "frame=") && !strings.HasPrefix(msg, "size=") {
		return 0, false
	}
	m := progressTime.FindStringSubmatch(msg)
	if m == nil {
		return 0, false
	}
	h, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	mins, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	secs, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, false
	}
	d := time.Duration(h)*time.Hour + time.Duration(mins)*time.Minute + time.Duration(secs*float64(time.Second))
	return d, true
}
