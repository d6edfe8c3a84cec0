package facade

import (
	"context"

	"curalink/internal/metrics"
	"curalink/internal/models"
	"curalink/internal/service"

	"github.com/sirupsen/logrus"
)

// Connect picks the facade implementation once: the host bridge when it
// answers within the dial timeout, otherwise the local emulation.
func Connect(ctx context.Context, cfg models.BridgeConfig, samples bool, logger *logrus.Logger) (Client, error) {
	if cfg.URL != "" {
		remote, err := DialRemote(ctx, cfg.URL, cfg, logger)
		if err == nil {
			logger.WithFields(logrus.Fields{
				service.LogFieldMode: ModeRemote,
				service.LogFieldURL:  cfg.URL,
			}).Info("Connected to host bridge")
			return remote, nil
		}
		metrics.IncrementCounter(metrics.FacadeFallbacks, nil, "Facade fallbacks to local emulation")
		logger.WithError(err).WithField(service.LogFieldURL, cfg.URL).Warn("Host bridge unavailable, using local emulation")
	}

	var storage Storage = NewMemoryStorage()
	if cfg.LocalStorageDir != "" {
		dir, err := NewDirStorage(cfg.LocalStorageDir)
		if err != nil {
			return nil, err
		}
		storage = dir
	}

	logger.WithFields(logrus.Fields{
		service.LogFieldMode:     ModeLocal,
		service.LogFieldFilePath: cfg.LocalStorageDir,
	}).Info("Using local emulation")
	return NewLocalEmulatedClient(storage, LocalOptions{Samples: samples}, logger), nil
}
