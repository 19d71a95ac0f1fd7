package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"worktime/internal/modules/capture/domain"
	"worktime/internal/platform/slug"
)

type DiskPhotoArchive struct {
	root string
}

func NewDiskPhotoArchive(root string) *DiskPhotoArchive {
	return &DiskPhotoArchive{root: root}
}

// Save writes photo to <root>/YYYY/MM/DD/HHMMSS-<target>[-<device>].jpg.
func (a *DiskPhotoArchive) Save(_ context.Context, photo domain.Photo) (string, error) {
	if len(photo.JPEG) == 0 {
		return "", fmt.Errorf("empty photo")
	}
	at := photo.CapturedAt.Local()
	dir := filepath.Join(a.root, at.Format("2006"), at.Format("01"), at.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create photo dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.jpg", at.Format("150405"), slug.Make(string(photo.Target), photo.DeviceID))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, photo.JPEG, 0o600); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}
	return path, nil
}
