package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampUnmarshalLayouts(t *testing.T) {
	cases := map[string]time.Time{
		`"2025-06-01T00:00:00"`:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		`"2025-06-01T08:30:00.123456"`: time.Date(2025, 6, 1, 8, 30, 0, 123456000, time.UTC),
		`"2025-06-01T08:30:00-04:00"`:  time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
		`"2025-06-01"`:                 time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		var ts Timestamp
		if err := json.Unmarshal([]byte(raw), &ts); err != nil {
			t.Fatalf("%s: unexpected error %v", raw, err)
		}
		if !ts.Equal(want) {
			t.Fatalf("%s: expected %v got %v", raw, want, ts.Time)
		}
	}
}

func TestTimestampNullAndInvalid(t *testing.T) {
	var ts *Timestamp
	if err := json.Unmarshal([]byte(`null`), &ts); err != nil || ts != nil {
		t.Fatalf("null should leave pointer nil, got %v err=%v", ts, err)
	}

	var bad Timestamp
	if err := json.Unmarshal([]byte(`"next tuesday"`), &bad); err == nil {
		t.Fatal("expected invalid timestamp to fail")
	}
}

func TestAddressTrimmed(t *testing.T) {
	a := Address{FullName: "  Ada  ", Street: " 1 Main ", City: "Mobile", State: "AL ", ZipCode: " 36602"}
	got := a.Trimmed()
	if got.FullName != "Ada" || got.Street != "1 Main" || got.State != "AL" || got.ZipCode != "36602" {
		t.Fatalf("unexpected trimmed address %+v", got)
	}
}
