package gif

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGiphySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("api_key") != "k" || q.Get("rating") != "g" {
			t.Errorf("unexpected query %v", q)
		}
		if q.Get("q") == "nothing" {
			_, _ = w.Write([]byte(`{"data":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[
			{"images":{"original":{"url":"https://x/1.gif"}}},
			{"images":{"original":{"url":"https://x/2.gif"}}}
		]}`))
	}))
	defer srv.Close()

	g := &Giphy{Key: "k", Endpoint: srv.URL, Pick: func(n int) int { return n - 1 }}
	got, err := g.Search(context.Background(), "victory dance")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got != "https://x/2.gif" {
		t.Fatalf("unexpected url %q", got)
	}

	if _, err := g.Search(context.Background(), "nothing"); !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
}

func TestGiphyRequiresKey(t *testing.T) {
	if _, err := (&Giphy{}).Search(context.Background(), "x"); err == nil {
		t.Fatalf("expected error")
	}
}
