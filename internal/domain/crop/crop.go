// Package crop turns a fractional crop rectangle into an ffmpeg filter
// expression. Pixel arithmetic is left to ffmpeg's evaluator (iw, ih), so the
// frame size is never needed here.
package crop

import (
	"fmt"

	"github.com/forPelevin/framegrab/internal/types"
)

// padEvenClause rounds both output dimensions up to the next even number.
// Most video encoders reject odd chroma plane sizes.
const padEvenClause = "pad=ceil(iw/2)*2:ceil(ih/2)*2"

// BuildFilter returns the filter for rect, or ok=false when rect covers the
// whole frame. padEven must be set for clip output and left unset for
// still frames.
func BuildFilter(rect types.CropRect, padEven bool) (filter string, ok bool) {
	if rect.IsFullFrame() {
		return "", false
	}
	filter = fmt.Sprintf("crop=%s:%s:%s:%s",
		scaled("iw", rect.W),
		scaled("ih", rect.H),
		scaled("iw", rect.X),
		scaled("ih", rect.Y),
	)
	if padEven {
		filter += "," + padEvenClause
	}
	return filter, true
}

// scaled rounds dim*frac half up.
func scaled(dim, frac string) string {
	return fmt.Sprintf("floor(%s*%s+0.5)", dim, frac)
}
