package options

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestHandleError(t *testing.T) {
	var buf bytes.Buffer
	o := &OutputOptions{Out: &buf}
	boom := errors.New("boom")

	if err := o.HandleError(boom); err != boom {
		t.Fatalf("expected the error back in text mode, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output in text mode, got %q", buf.String())
	}

	o.JSON = true
	if err := o.HandleError(boom); !errors.Is(err, ErrReported) {
		t.Fatalf("expected ErrReported, got %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != `{"error":"boom"}` {
		t.Fatalf("unexpected JSON %q", got)
	}
	if err := o.HandleError(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestDraftValidation(t *testing.T) {
	tests := map[string]struct {
		opts    DraftOptions
		wantErr bool
	}{
		"plain":        {opts: DraftOptions{Text: "buy milk"}},
		"dated":        {opts: DraftOptions{Text: "buy milk", On: "2025-06-11", Location: "out"}},
		"bad date":     {opts: DraftOptions{Text: "buy milk", On: "6/11"}, wantErr: true},
		"bad location": {opts: DraftOptions{Text: "buy milk", Location: "moon"}, wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			d, err := tc.opts.Draft()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Text != tc.opts.Text || d.DoDate != tc.opts.On {
				t.Fatalf("unexpected draft %+v", d)
			}
		})
	}
}
