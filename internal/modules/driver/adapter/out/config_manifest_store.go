package out

import (
	"context"

	"worktime/internal/modules/driver/domain"
	driverout "worktime/internal/modules/driver/port/out"
	"worktime/internal/platform/config"
)

// ConfigManifestStore serves the driver manifest declared in worktime.yaml.
type ConfigManifestStore struct {
	manifest domain.Manifest
}

func NewConfigManifestStore(cfg config.Driver) driverout.ManifestStore {
	caps := make([]domain.Capability, 0, len(cfg.Capabilities))
	for _, c := range cfg.Capabilities {
		caps = append(caps, domain.Capability(c))
	}
	return &ConfigManifestStore{manifest: domain.Manifest{
		Name:         cfg.Name,
		Version:      cfg.Version,
		Binary:       cfg.Binary,
		SHA256:       cfg.SHA256,
		Enabled:      cfg.Enabled,
		Capabilities: caps,
	}}
}

func (s *ConfigManifestStore) Load(_ context.Context) (domain.Manifest, error) {
	return s.manifest, nil
}
