// Package info provides the runner that shows configuration and stored
// settings, and updates the settings.
package info

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/config"
	"tableflip.dev/adhdo/pkg/printers"
	"tableflip.dev/adhdo/pkg/store"
	"tableflip.dev/adhdo/pkg/timeutil"
)

// Info prints where adhdo keeps its data and how it is configured.
// When either setter is non-nil the stored settings are updated first.
type Info struct {
	Config *config.Config
	App    *app.Service

	APIKey      *string
	EveningHour *int
	JSON        bool

	Out io.Writer
}

type report struct {
	ConfigPath  string `json:"configPath,omitempty"`
	Path        string `json:"path"`
	Driver      string `json:"driver"`
	Device      string `json:"device"`
	Model       string `json:"model"`
	ParseModel  string `json:"parseModel"`
	Relay       string `json:"relayUrl,omitempty"`
	Retention   string `json:"retention"`
	KeySource   string `json:"keySource"`
	EveningHour int    `json:"eveningHour"`
	Weather     bool   `json:"weather"`
	Images      bool   `json:"images"`
}

// Do executes the info report.
func (n *Info) Do(ctx context.Context) error {
	if n.Config == nil || n.App == nil {
		return errors.New("can not show info, no config")
	}

	settings, err := n.App.Settings(ctx)
	if err != nil {
		return err
	}
	if n.APIKey != nil || n.EveningHour != nil {
		if n.APIKey != nil {
			settings.APIKey = strings.TrimSpace(*n.APIKey)
		}
		if n.EveningHour != nil {
			if h := *n.EveningHour; h < 1 || h > 23 {
				return fmt.Errorf("evening hour %d is not between 1 and 23", h)
			}
			settings.EveningHour = *n.EveningHour
		}
		if settings, err = n.App.SaveSettings(ctx, settings); err != nil {
			return err
		}
	}

	r := report{
		ConfigPath:  os.Getenv("ADHDO_CONFIG_PATH"),
		Path:        n.Config.Path,
		Driver:      n.Config.StoreDriver,
		Device:      n.Config.Device,
		Model:       n.Config.Model,
		ParseModel:  n.Config.ParseModel,
		Relay:       n.Config.RelayURL,
		Retention:   timeutil.FormatWindow(n.Config.Retention),
		KeySource:   keySource(settings, n.Config),
		EveningHour: settings.EveningHour,
		Weather:     n.Config.HasLocation(),
		Images:      n.Config.GiphyKey != "",
	}
	if n.JSON {
		return printers.JSON(n.Out, r)
	}

	out := n.Out
	if out == nil {
		out = color.Output
	}
	pp := printers.PrettyPrint{Out: out}
	pp.NewLine()
	pp.Title("adhdo")

	tbl := uitable.New()
	tbl.Separator = "  "
	label := color.New(color.Faint).Sprint
	if r.ConfigPath != "" {
		tbl.AddRow(label("ADHDO_CONFIG_PATH"), r.ConfigPath)
	}
	tbl.AddRow(label("store"), fmt.Sprintf("%s (%s)", r.Path, r.Driver))
	tbl.AddRow(label("device"), r.Device)
	tbl.AddRow(label("models"), fmt.Sprintf("%s, %s", r.Model, r.ParseModel))
	tbl.AddRow(label("credential"), r.KeySource)
	tbl.AddRow(label("evening at"), fmt.Sprintf("%d:00", r.EveningHour))
	tbl.AddRow(label("retention"), r.Retention)
	tbl.AddRow(label("weather"), onOff(r.Weather))
	tbl.AddRow(label("images"), onOff(r.Images))
	_, err = fmt.Fprintln(out, tbl)
	return err
}

func keySource(s store.Settings, c *config.Config) string {
	switch {
	case s.APIKey != "":
		return "stored key " + mask(s.APIKey)
	case c.APIKey != "":
		return "config key " + mask(c.APIKey)
	case c.RelayURL != "":
		return "relay " + c.RelayURL
	default:
		return "none"
	}
}

func mask(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "…" + key[len(key)-4:]
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
