package out_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	captureout "worktime/internal/modules/capture/adapter/out"
	"worktime/internal/modules/capture/domain"
)

func TestDiskPhotoArchiveLayout(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	archive := captureout.NewDiskPhotoArchive(root)
	at := time.Date(2026, 3, 2, 8, 4, 5, 0, time.Local)
	path, err := archive.Save(context.Background(), domain.Photo{Target: domain.TargetCheckIn, JPEG: []byte{0xff, 0xd8}, CapturedAt: at})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	want := filepath.Join(root, "2026", "03", "02", "080405-checkin.jpg")
	if path != want {
		t.Fatalf("unexpected path %q want %q", path, want)
	}
	raw, err := os.ReadFile(path)
	if err != nil || !bytes.Equal(raw, []byte{0xff, 0xd8}) {
		t.Fatalf("unexpected content %v %v", raw, err)
	}
	path, err = archive.Save(context.Background(), domain.Photo{Target: domain.TargetOvertime, DeviceID: "sim-back", JPEG: []byte{0xff}, CapturedAt: at})
	if err != nil {
		t.Fatalf("save with device: %v", err)
	}
	if want := filepath.Join(root, "2026", "03", "02", "080405-overtime-sim-back.jpg"); path != want {
		t.Fatalf("unexpected path %q want %q", path, want)
	}
	if _, err := archive.Save(context.Background(), domain.Photo{}); err == nil {
		t.Fatalf("expected error for empty photo")
	}
}

func TestBellShutterWritesBell(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	captureout.NewBellShutter(buf).Play()
	if buf.String() != "\a" {
		t.Fatalf("unexpected shutter output %q", buf.String())
	}
}
