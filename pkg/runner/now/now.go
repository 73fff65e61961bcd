// Package now provides the runner for the "do this now" card.
package now

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/printers"
	"tableflip.dev/adhdo/pkg/suggest"
	"tableflip.dev/adhdo/pkg/weather"
)

// NoKeyHint is printed when suggestions are unavailable.
const NoKeyHint = "No API key configured. Run `adhdo settings --api-key <key>` to get suggestions."

// Now asks for the one task to do right now.
type Now struct {
	// Skip is the id of the suggestion being passed over.
	Skip   string
	ShowID bool
	JSON   bool

	App *app.Service
	Out io.Writer
}

type result struct {
	Suggestion  *suggest.Suggestion  `json:"suggestion"`
	Celebration *suggest.Celebration `json:"celebration,omitempty"`
	Weather     *weather.Reading     `json:"weather,omitempty"`
	Evening     bool                 `json:"evening"`
}

// Do executes the suggestion request.
func (n *Now) Do(ctx context.Context) error {
	if n.App == nil {
		return errors.New("can not suggest, no service")
	}

	var (
		res result
		err error
	)
	if n.Skip != "" {
		res.Suggestion, err = n.App.Skip(ctx, n.Skip)
	} else {
		res.Suggestion, err = n.App.Suggest(ctx)
	}
	if errors.Is(err, app.ErrNoCredential) && !n.JSON {
		_, _ = color.New(color.FgYellow).Fprintln(n.out(), NoKeyHint)
		return nil
	}
	if err != nil {
		return err
	}
	if res.Celebration, err = n.App.Celebrate(ctx); err != nil {
		return err
	}
	if res.Evening, err = n.App.Evening(ctx); err != nil {
		return err
	}
	res.Weather = n.App.CurrentWeather(ctx)

	if n.JSON {
		return printers.JSON(n.Out, res)
	}

	now := time.Now()
	if n.App.Now != nil {
		now = n.App.Now()
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID, Now: now, Out: n.Out}
	pp.NewLine()
	pp.Celebration(res.Celebration)
	if res.Evening {
		_, _ = color.New(color.Faint).Fprintln(n.out(), "Evening mode: errands are hidden.")
	}
	pp.Suggestion(res.Suggestion, res.Weather)
	return nil
}

func (n *Now) out() io.Writer {
	if n.Out != nil {
		return n.Out
	}
	return color.Output
}
