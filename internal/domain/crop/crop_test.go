package crop

import (
	"strings"
	"testing"

	"github.com/forPelevin/framegrab/internal/types"
)

func TestBuildFilter_FullFrameIsNoop(t *testing.T) {
	origins := []struct{ x, y string }{
		{"0", "0"},
		{"0.5", "0.25"},
		{"1", "1"},
		{"garbage", ""},
	}
	for _, o := range origins {
		for _, pad := range []bool{false, true} {
			got, ok := BuildFilter(types.CropRect{X: o.x, Y: o.y, W: "1", H: "1"}, pad)
			if ok || got != "" {
				t.Fatalf("x=%q y=%q pad=%v: expected no filter, got %q", o.x, o.y, pad, got)
			}
		}
	}
}

func TestBuildFilter_OnlyLiteralOneIsSentinel(t *testing.T) {
	// "1.0" is numerically full width but is not the sentinel.
	got, ok := BuildFilter(types.CropRect{X: "0", Y: "0", W: "1.0", H: "1"}, false)
	if !ok {
		t.Fatalf("expected filter for W=1.0")
	}
	if !strings.HasPrefix(got, "crop=floor(iw*1.0+0.5)") {
		t.Fatalf("unexpected filter: %s", got)
	}
}

func TestBuildFilter_OrderAndPadding(t *testing.T) {
	tests := []struct {
		name string
		rect types.CropRect
		pad  bool
		want string
	}{
		{
			name: "center half no pad",
			rect: types.CropRect{X: "0.25", Y: "0.25", W: "0.5", H: "0.5"},
			want: "crop=floor(iw*0.5+0.5):floor(ih*0.5+0.5):floor(iw*0.25+0.5):floor(ih*0.25+0.5)",
		},
		{
			name: "center half padded",
			rect: types.CropRect{X: "0.25", Y: "0.25", W: "0.5", H: "0.5"},
			pad:  true,
			want: "crop=floor(iw*0.5+0.5):floor(ih*0.5+0.5):floor(iw*0.25+0.5):floor(ih*0.25+0.5),pad=ceil(iw/2)*2:ceil(ih/2)*2",
		},
		{
			name: "full width partial height",
			rect: types.CropRect{X: "0", Y: "0.1", W: "1", H: "0.8"},
			want: "crop=floor(iw*1+0.5):floor(ih*0.8+0.5):floor(iw*0+0.5):floor(ih*0.1+0.5)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BuildFilter(tt.rect, tt.pad)
			if !ok {
				t.Fatalf("expected a filter")
			}
			if got != tt.want {
				t.Fatalf("got %q\nwant %q", got, tt.want)
			}
			if strings.Contains(got, "pad=") != tt.pad {
				t.Fatalf("padding clause presence mismatch: pad=%v filter=%s", tt.pad, got)
			}
		})
	}
}
