package response

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	roomPattern   = regexp.MustCompile(`^Conference (.+?) \((\d+) members? rate: (\d+) flags?: (.*)\)\s*$`)
	memberPattern = regexp.MustCompile(`^(\d+);(.+);([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12});([^;]+);([^;]+);([^;]+);.+`)
)

const (
	noConferences = "No active conferences"
	roomPrefix    = "+OK Conference "
)

// ConferenceMember is one line of `conference list`, e.g.
//
//	28;sofia/internal/sip-1003@192.168.0.130;6d103bef-8bbe-4e4b-ad75-ff6bce2537a5;sip-1003;sip-1003;hear|speak;0;0;100
type ConferenceMember struct {
	ID       string // member id in the room
	Endpoint string // e.g. sofia/internal/sip-1003@192.168.0.130
	UUID     string // channel uuid, what kick wants
	Name     string // caller id name
	SipID    string // caller id number
	Flags    []string
}

// ConferenceRoom is one room of `conference list` with its members.
type ConferenceRoom struct {
	ID         string
	SampleRate int // audio sample rate in Hz, 8000 by default
	Flags      []string
	Members    []ConferenceMember
}

// ParseConferenceMember parses one semicolon separated member line.
func ParseConferenceMember(line string) (ConferenceMember, error) {
	m := memberPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return ConferenceMember{}, notParsed("conference member")
	}
	id, err := uuid.Parse(m[3])
	if err != nil {
		return ConferenceMember{}, notParsed("conference member uuid")
	}
	return ConferenceMember{
		ID:       m[1],
		Endpoint: m[2],
		UUID:     id.String(),
		Name:     m[4],
		SipID:    m[5],
		Flags:    strings.Split(m[6], "|"),
	}, nil
}

// ParseConferenceRoom parses a room summary line followed by exactly as many
// member lines as the summary announces.
func ParseConferenceRoom(text string) (ConferenceRoom, error) {
	lines := splitLines(text)
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) == 0 {
		return ConferenceRoom{}, notParsed("conference summary")
	}
	summary := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[0]), "+OK"))
	m := roomPattern.FindStringSubmatch(summary)
	if m == nil {
		return ConferenceRoom{}, notParsed("conference summary")
	}
	count, err := strconv.Atoi(m[2])
	if err != nil {
		return ConferenceRoom{}, notParsed("conference member count")
	}
	rate, err := strconv.Atoi(m[3])
	if err != nil {
		return ConferenceRoom{}, notParsed("conference sample rate")
	}
	lines = lines[1:]
	if len(lines) < count {
		return ConferenceRoom{}, notParsed("conference members: short read")
	}

	room := ConferenceRoom{
		ID:         m[1],
		SampleRate: rate,
		Flags:      strings.Split(m[4], "|"),
		Members:    make([]ConferenceMember, 0, count),
	}
	for _, line := range lines[:count] {
		member, err := ParseConferenceMember(line)
		if err != nil {
			return ConferenceRoom{}, err
		}
		room.Members = append(room.Members, member)
	}
	return room, nil
}

// ParseConferenceList parses the reply of `api conference list`. No active
// conference gives an empty list.
func ParseConferenceList(text string) ([]ConferenceRoom, error) {
	if strings.Contains(text, noConferences) {
		return nil, nil
	}
	if strings.HasPrefix(strings.TrimSpace(text), "-ERR") {
		return nil, notParsed("conference list: " + strings.TrimSpace(text))
	}
	var rooms []ConferenceRoom
	for _, chunk := range splitRooms(splitLines(text)) {
		if chunk == nil {
			return nil, notParsed("conference list")
		}
		room, err := ParseConferenceRoom(strings.Join(chunk, "\n"))
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if len(rooms) == 0 {
		return nil, notParsed("conference list")
	}
	return rooms, nil
}

// ParseConferenceMembers parses the reply of `api conference <room> list`,
// one member per line.
func ParseConferenceMembers(text string) ([]ConferenceMember, error) {
	if strings.HasPrefix(strings.TrimSpace(text), "-ERR") {
		return nil, notParsed("conference members: " + strings.TrimSpace(text))
	}
	var members []ConferenceMember
	for _, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		member, err := ParseConferenceMember(line)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, nil
}

// splitRooms groups lines into rooms, each starting at a summary line. A
// non-blank line ahead of the first summary yields a nil chunk.
func splitRooms(lines []string) [][]string {
	var rooms [][]string
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), roomPrefix) {
			rooms = append(rooms, []string{line})
			continue
		}
		if len(rooms) == 0 {
			if strings.TrimSpace(line) != "" {
				return [][]string{nil}
			}
			continue
		}
		rooms[len(rooms)-1] = append(rooms[len(rooms)-1], line)
	}
	return rooms
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}
	// a trailing newline is not an extra line
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
