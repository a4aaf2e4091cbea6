package timex

import (
	"testing"
	"time"
)

func TestTime_UnixMethods(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tt := Time(now)

	if tt.Unix() != now.Unix() {
		t.Errorf("Unix() = %v, want %v", tt.Unix(), now.Unix())
	}
	if tt.UnixMilli() != now.UnixMilli() {
		t.Errorf("UnixMilli() = %v, want %v", tt.UnixMilli(), now.UnixMilli())
	}
	if tt.UnixMicro() != now.UnixMicro() {
		t.Errorf("UnixMicro() = %v, want %v", tt.UnixMicro(), now.UnixMicro())
	}
	if tt.UnixNano() != now.UnixNano() {
		t.Errorf("UnixNano() = %v, want %v", tt.UnixNano(), now.UnixNano())
	}

	// Verify it's not returning time.Now() by waiting a bit
	time.Sleep(10 * time.Millisecond)
	if tt.Unix() != now.Unix() {
		t.Errorf("Unix() changed after sleep, it should be static. got %v, want %v", tt.Unix(), now.Unix())
	}
}

func TestTime_JSONRoundTrip(t *testing.T) {
	orig := Time(time.Date(2024, 6, 15, 8, 30, 0, 0, time.Local))

	data, err := orig.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"2024-06-15 08:30:00"` {
		t.Errorf("MarshalJSON() = %s", data)
	}

	var parsed Time
	if err := parsed.UnmarshalJSON(data); err != nil {
		t.Fatal(err)
	}
	if parsed.Unix() != orig.Unix() {
		t.Errorf("round trip mismatch: got %v, want %v", parsed, orig)
	}
}

func TestTime_UnmarshalNull(t *testing.T) {
	var parsed Time
	if err := parsed.UnmarshalJSON([]byte("null")); err != nil {
		t.Fatal(err)
	}
	if !parsed.IsZero() {
		t.Errorf("null should decode to zero time, got %v", parsed)
	}
}
