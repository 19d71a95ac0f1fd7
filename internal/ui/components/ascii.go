package components

import (
	"image"
	"strings"

	xdraw "golang.org/x/image/draw"
)

const asciiRamp = " .:-=+*#%@"

// ASCIIFrame downsamples img to cols x rows and maps luminance onto a character ramp.
// Terminal cells are about twice as tall as wide, so callers usually pass rows = cols/2 scaled by aspect.
func ASCIIFrame(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	gray := image.NewGray(image.Rect(0, 0, cols, rows))
	xdraw.ApproxBiLinear.Scale(gray, gray.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	var sb strings.Builder
	sb.Grow((cols + 1) * rows)
	last := len(asciiRamp) - 1
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			level := int(gray.GrayAt(x, y).Y) * last / 255
			sb.WriteByte(asciiRamp[level])
		}
		if y < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// FitFrame picks the largest grid that keeps the source aspect inside maxCols x maxRows.
func FitFrame(bounds image.Rectangle, maxCols, maxRows int) (int, int) {
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || maxCols <= 0 || maxRows <= 0 {
		return 0, 0
	}
	cols := maxCols
	rows := cols * h / w / 2
	if rows > maxRows {
		rows = maxRows
		cols = rows * 2 * w / h
	}
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return cols, rows
}
