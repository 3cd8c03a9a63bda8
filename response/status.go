// Package response parses the text replies of known switch api commands.
// Every parser either fills its whole value or fails with ErrNotParsed.
package response

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrNotParsed = errors.New("response not parsed")

func notParsed(what string) error {
	return fmt.Errorf("%w: %s", ErrNotParsed, what)
}

// "api status" responsed string example:
//
//	UP 0 years, 1 days, 18 hours, 36 minutes, 0 seconds, 982 milliseconds, 465 microseconds
//	FreeSWITCH (Version 1.8.5  64bit) is ready
//	8 session(s) since startup
//	0 session(s) - peak 2, last 5min 0
//	0 session(s) per Sec out of max 30, peak 1, last 5min 0
//	1000 session(s) max
//	min idle cpu 0.00/96.30
var (
	uptimePattern  = regexp.MustCompile(`UP (\d+) years?, (\d+) days?, (\d+) hours?, (\d+) minutes?, (\d+) seconds?, (\d+) milliseconds?`)
	versionPattern = regexp.MustCompile(`(?m)^(.+?) \(Version (.+?)\s+(\d+\s?bit)\) is ready`)
	maxPattern     = regexp.MustCompile(`(\d+) session\(s\) max`)
	cpuPattern     = regexp.MustCompile(`min idle cpu\s+([\d.]+)/([\d.]+)`)
)

// Status is the switch state reported by `api status`.
type Status struct {
	Name        string
	Version     string
	Uptime      time.Duration
	MaxSessions int
	// lower bound of idle cpu in percent: below it the switch refuses new calls
	CPUMinIdle float64
	// current cpu loading in percent, 93.6% => 93.6
	CPULoading float64
}

// ParseStatus parses the reply of `api status`.
func ParseStatus(text string) (Status, error) {
	var st Status

	m := uptimePattern.FindStringSubmatch(text)
	if m == nil {
		return Status{}, notParsed("uptime")
	}
	var n [6]int64
	for i := range n {
		v, err := strconv.ParseInt(m[i+1], 10, 64)
		if err != nil {
			return Status{}, notParsed("uptime")
		}
		n[i] = v
	}
	days := n[0]*365 + n[1]
	st.Uptime = time.Duration(days)*24*time.Hour +
		time.Duration(n[2])*time.Hour +
		time.Duration(n[3])*time.Minute +
		time.Duration(n[4])*time.Second +
		time.Duration(n[5])*time.Millisecond

	m = versionPattern.FindStringSubmatch(text)
	if m == nil {
		return Status{}, notParsed("version and switch name")
	}
	st.Name = strings.TrimSpace(m[1])
	st.Version = strings.TrimSpace(m[2]) + "  " + m[3]

	m = maxPattern.FindStringSubmatch(text)
	if m == nil {
		return Status{}, notParsed("max sessions")
	}
	maxSessions, err := strconv.Atoi(m[1])
	if err != nil {
		return Status{}, notParsed("max sessions")
	}
	st.MaxSessions = maxSessions

	m = cpuPattern.FindStringSubmatch(text)
	if m == nil {
		return Status{}, notParsed("cpu min idle")
	}
	minIdle, err1 := strconv.ParseFloat(m[1], 64)
	idle, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return Status{}, notParsed("cpu min idle")
	}
	st.CPUMinIdle = minIdle
	st.CPULoading = 100 - idle

	return st, nil
}

func (st Status) String() string {
	days := int(st.Uptime / (24 * time.Hour))
	rest := st.Uptime - time.Duration(days)*24*time.Hour
	return fmt.Sprintf("%s (Version %s) up %dd %s, max %d sessions, cpu %.2f%% (min idle %.2f%%)",
		st.Name, st.Version, days, rest, st.MaxSessions, st.CPULoading, st.CPUMinIdle)
}
