package commands

import (
	"log/slog"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/config"
	"tableflip.dev/adhdo/pkg/gif"
	"tableflip.dev/adhdo/pkg/llm"
	"tableflip.dev/adhdo/pkg/store"
	"tableflip.dev/adhdo/pkg/weather"
)

// loadService reads the config and opens the store for the configured
// device.
func loadService() (*config.Config, *app.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	p, err := store.Load(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, newService(cfg, p, cfg.Device), nil
}

func newService(cfg *config.Config, p store.Persistence, owner string) *app.Service {
	svc := &app.Service{
		Persistence: p,
		Connect: func(key string) (llm.Completer, error) {
			if key == "" {
				key = cfg.APIKey
			}
			c, err := llm.New(cfg.RelayURL, key)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		Owner:      owner,
		Model:      cfg.Model,
		ParseModel: cfg.ParseModel,
		Retention:  cfg.Retention,
		Logger:     slog.Default(),
	}
	if cfg.HasLocation() {
		svc.Weather = &weather.Client{Latitude: cfg.Latitude, Longitude: cfg.Longitude}
	}
	if cfg.GiphyKey != "" {
		svc.Images = &gif.Giphy{Key: cfg.GiphyKey}
	}
	return svc
}
