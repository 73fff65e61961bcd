// Package gif finds looping celebration images through the Giphy search API.
package gif

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"
)

// DefaultEndpoint is the Giphy search API.
const DefaultEndpoint = "https://api.giphy.com/v1/gifs/search"

// ErrNoResults is returned when a search matches nothing.
var ErrNoResults = errors.New("gif: no results")

// Searcher returns one image URL for a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Giphy is a Searcher backed by the Giphy API.
type Giphy struct {
	Key      string
	Endpoint string
	Limit    int
	HTTP     *http.Client
	// Pick chooses an index in [0, n). Defaults to a random pick.
	Pick func(n int) int
}

func (g *Giphy) Search(ctx context.Context, query string) (string, error) {
	if g.Key == "" {
		return "", errors.New("gif: api key required")
	}
	endpoint := g.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	limit := g.Limit
	if limit <= 0 {
		limit = 25
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("gif: endpoint: %w", err)
	}
	q := u.Query()
	q.Set("api_key", g.Key)
	q.Set("q", query)
	q.Set("limit", fmt.Sprint(limit))
	q.Set("rating", "g")
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	client := g.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gif: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gif: unexpected status %s", resp.Status)
	}

	var body struct {
		Data []struct {
			Images struct {
				Original struct {
					URL string `json:"url"`
				} `json:"original"`
			} `json:"images"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("gif: decode: %w", err)
	}
	urls := make([]string, 0, len(body.Data))
	for _, d := range body.Data {
		if d.Images.Original.URL != "" {
			urls = append(urls, d.Images.Original.URL)
		}
	}
	if len(urls) == 0 {
		return "", ErrNoResults
	}
	pick := g.Pick
	if pick == nil {
		pick = rand.IntN
	}
	return urls[pick(len(urls))], nil
}
