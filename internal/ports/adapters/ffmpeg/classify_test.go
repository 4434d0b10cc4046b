package ffmpeg

import (
	"testing"
	"time"

	"github.com/forPelevin/framegrab/internal/types"
)

func TestClassifier(t *testing.T) {
	tests := []struct {
		name string
		line string
		drop bool
		want types.EventRecord
	}{
		{name: "blank", line: "   ", drop: true},
		{
			name: "info",
			line: "[info] Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'in.mp4':",
			want: types.LogLine(types.SeverityInfo, "Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'in.mp4':"),
		},
		{
			name: "error with component context",
			line: "[mov,mp4,m4a,3gp,3g2,mj2 @ 0x5581c0] [error] moov atom not found",
			want: types.LogLine(types.SeverityError, "moov atom not found"),
		},
		{
			name: "warning",
			line: "[warning] -vsync is deprecated. Use -fps_mode",
			want: types.LogLine(types.SeverityWarning, "-vsync is deprecated. Use -fps_mode"),
		},
		{
			name: "fatal",
			line: "[fatal] Invalid duration specification for ss: nope",
			want: types.LogLine(types.SeverityFatal, "Invalid duration specification for ss: nope"),
		},
		{
			name: "panic maps to fatal",
			line: "[panic] Assertion failed",
			want: types.LogLine(types.SeverityFatal, "Assertion failed"),
		},
		{
			name: "debug maps to info",
			line: "[debug] probing",
			want: types.LogLine(types.SeverityInfo, "probing"),
		},
		{
			name: "untagged",
			line: "some raw output",
			want: types.LogLine(types.SeverityUnknown, "some raw output"),
		},
		{
			name: "progress tagged",
			line: "[info] frame=   25 fps=0.0 q=-1.0 size=     256kB time=00:00:01.50 bitrate=1398.1kbits/s speed=2.9x",
			want: types.Progress(1500 * time.Millisecond),
		},
		{
			name: "progress untagged audio only",
			line: "size=     512kB time=01:02:03.25 bitrate= 128.0kbits/s",
			want: types.Progress(time.Hour + 2*time.Minute + 3250*time.Millisecond),
		},
		{
			name: "progress with N/A time is a log line",
			line: "[info] frame=    0 fps=0.0 q=0.0 size=N/A time=N/A bitrate=N/A",
			want: types.LogLine(types.SeverityInfo, "frame=    0 fps=0.0 q=0.0 size=N/A time=N/A bitrate=N/A"),
		},
		{
			name: "level tag later in the text is content",
			line: "frame=1 note [error] literal",
			want: types.LogLine(types.SeverityUnknown, "frame=1 note [error] literal"),
		},
		{
			name: "only the leading tag counts",
			line: "[info] copying [error] literal",
			want: types.LogLine(types.SeverityInfo, "copying [error] literal"),
		},
		{
			name: "stacked component contexts",
			line: "[out#0/mp4 @ 0x1] [vost#0:0/libx264 @ 0x2] [warning] ratio",
			want: types.LogLine(types.SeverityWarning, "ratio"),
		},
		{
			name: "time= inside an error is not progress",
			line: "[error] bad time=00:00:01.00 value",
			want: types.LogLine(types.SeverityError, "bad time=00:00:01.00 value"),
		},
	}

	var c Classifier
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Classify(tt.line)
			if tt.drop {
				if ok {
					t.Fatalf("expected line to be dropped, got %+v", got)
				}
				return
			}
			if !ok {
				t.Fatalf("expected an event")
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
