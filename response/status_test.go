package response

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

const statusReply = "UP 0 years, 1 days, 18 hours, 36 minutes, 0 seconds, 982 milliseconds\n" +
	"FreeSWITCH (Version 1.8.5  64bit) is ready\n" +
	"8 session(s) since startup\n" +
	"0 session(s) - peak 2, last 5min 0\n" +
	"0 session(s) per Sec out of max 30, peak 1, last 5min 0\n" +
	"1000 session(s) max\n" +
	"min idle cpu 0.00/96.30"

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(statusReply)
	if err != nil {
		t.Fatalf("ParseStatus: %v", err)
	}
	wantUptime := 24*time.Hour + 18*time.Hour + 36*time.Minute + 982*time.Millisecond
	if st.Uptime != wantUptime {
		t.Errorf("uptime = %v, want %v", st.Uptime, wantUptime)
	}
	if st.Name != "FreeSWITCH" {
		t.Errorf("name = %q", st.Name)
	}
	if !strings.Contains(st.Version, "1.8.5") || !strings.Contains(st.Version, "64bit") {
		t.Errorf("version = %q", st.Version)
	}
	if st.MaxSessions != 1000 {
		t.Errorf("max sessions = %d", st.MaxSessions)
	}
	if st.CPUMinIdle != 0 {
		t.Errorf("cpu min idle = %v", st.CPUMinIdle)
	}
	if math.Abs(st.CPULoading-3.70) > 1e-9 {
		t.Errorf("cpu loading = %v, want 3.70", st.CPULoading)
	}
}

func TestParseStatusYears(t *testing.T) {
	text := strings.Replace(statusReply, "UP 0 years, 1 days", "UP 1 year, 0 days", 1)
	st, err := ParseStatus(text)
	if err != nil {
		t.Fatalf("ParseStatus: %v", err)
	}
	want := 365*24*time.Hour + 18*time.Hour + 36*time.Minute + 982*time.Millisecond
	if st.Uptime != want {
		t.Errorf("uptime = %v, want %v", st.Uptime, want)
	}
}

func TestParseStatusMissingParts(t *testing.T) {
	lines := strings.Split(statusReply, "\n")
	tests := []struct {
		name string
		drop string
	}{
		{"uptime", "UP "},
		{"version", "FreeSWITCH"},
		{"max sessions", "session(s) max"},
		{"cpu", "min idle cpu"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var kept []string
			for _, l := range lines {
				if !strings.Contains(l, tt.drop) {
					kept = append(kept, l)
				}
			}
			st, err := ParseStatus(strings.Join(kept, "\n"))
			if !errors.Is(err, ErrNotParsed) {
				t.Fatalf("err = %v, want ErrNotParsed", err)
			}
			if st != (Status{}) {
				t.Errorf("status = %+v, want zero value", st)
			}
		})
	}
}

func TestParseStatusErrReply(t *testing.T) {
	if _, err := ParseStatus("-ERR status Command not found!\n"); !errors.Is(err, ErrNotParsed) {
		t.Fatalf("err = %v, want ErrNotParsed", err)
	}
}
