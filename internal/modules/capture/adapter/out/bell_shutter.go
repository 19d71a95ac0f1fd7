package out

import (
	"io"
	"os"
)

// BellShutter rings the terminal bell as the shutter sound.
type BellShutter struct {
	w io.Writer
}

func NewBellShutter(w io.Writer) BellShutter {
	if w == nil {
		w = os.Stdout
	}
	return BellShutter{w: w}
}

func (s BellShutter) Play() {
	_, _ = s.w.Write([]byte("\a"))
}
