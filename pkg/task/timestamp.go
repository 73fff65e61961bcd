package task

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp is a point in time that serializes as RFC3339 and tolerates empty
// or null values when decoding.
type Timestamp struct {
	time.Time
}

// ParseTime parses an RFC3339 timestamp.
func ParseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(fmt.Sprintf("%q", t.String())), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTime(v)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) String() string {
	return t.UTC().Format(time.RFC3339Nano)
}
