package fsadapter

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/genmzy/fsadapter/response"
)

// `bgapi` command will never response error, so just care connection error
// This is a better way to use `api bgapi uuid:xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx` instead of `bgapi `
// and wait for job uuid
func (a *Adapter) BgApi(ctx context.Context, cmd string, args ...string) (string, error) {
	bgJob := uuid.New().String()
	_, err := a.Api(ctx, "bgapi", append([]string{"uuid:" + bgJob, cmd}, args...)...)
	if err != nil {
		return "", err
	}
	return bgJob, nil
}

// Status queries and parses `api status`.
func (a *Adapter) Status(ctx context.Context) (response.Status, error) {
	reply, err := a.Api(ctx, "status")
	if err != nil {
		return response.Status{}, err
	}
	if err := CheckReply(reply); err != nil {
		return response.Status{}, err
	}
	return response.ParseStatus(reply)
}

// ReloadXML makes the switch reload its config files without a restart.
func (a *Adapter) ReloadXML(ctx context.Context) error {
	reply, err := a.Api(ctx, "reloadxml")
	if err != nil {
		return err
	}
	if err := CheckReply(reply); err != nil {
		return err
	}
	if !replyHasAll(reply, "OK", "Success") {
		return fmt.Errorf("reloadxml: %w: %q", ErrUnexpectedReply, strings.TrimSpace(reply))
	}
	return nil
}

// Conferences lists every active conference room with its members.
func (a *Adapter) Conferences(ctx context.Context) ([]response.ConferenceRoom, error) {
	reply, err := a.Api(ctx, "conference", "list")
	if err != nil {
		return nil, err
	}
	if err := CheckReply(reply); err != nil {
		return nil, err
	}
	return response.ParseConferenceList(reply)
}

// ConferenceMembers lists the members of one room.
func (a *Adapter) ConferenceMembers(ctx context.Context, room string) ([]response.ConferenceMember, error) {
	reply, err := a.Api(ctx, "conference", room, "list")
	if err != nil {
		return nil, err
	}
	if err := CheckReply(reply); err != nil {
		return nil, err
	}
	return response.ParseConferenceMembers(reply)
}

// DialRequest invites a sip user into a conference room.
type DialRequest struct {
	Room   string
	Target string // sip account, without domain
	// caller id name the target sees, may be empty
	CallerName string
	// custom sip headers sent with the INVITE, e.g. X-Ticket: 42.
	// Neither keys nor values may contain spaces or commas.
	Headers map[string]string
	// bgdial instead of dial: do not wait for the target to answer
	Background bool
}

// Serialize builds
//
//	conference <room> dial|bgdial [sip_h_K=V,...]user/<target> <room> <caller name>
//
// the caller id number the target sees is the room name.
func (r DialRequest) Serialize() string {
	verb := "dial"
	if r.Background {
		verb = "bgdial"
	}
	var vars string
	if len(r.Headers) > 0 {
		keys := make([]string, 0, len(r.Headers))
		for k := range r.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, "sip_h_"+k+"="+r.Headers[k])
		}
		vars = "[" + strings.Join(pairs, ",") + "]"
	}
	return Command{
		Api:  true,
		Name: "conference",
		Args: []string{r.Room, verb, vars + "user/" + r.Target, r.Room, r.CallerName},
	}.Serialize()
}

// ConferenceDial invites r.Target into r.Room.
func (a *Adapter) ConferenceDial(ctx context.Context, r DialRequest) error {
	reply, err := a.Execute(ctx, r.Serialize())
	if err != nil {
		return err
	}
	if err := CheckReply(reply); err != nil {
		return err
	}
	// dial:   +OK Call Requested: result: [SUCCESS]
	// bgdial: OK Job-UUID: <uuid>
	if r.Background && replyHasAll(reply, "OK") {
		return nil
	}
	if !replyHasAll(reply, "+OK", "SUCCESS") {
		return fmt.Errorf("conference dial: %w: %q", ErrUnexpectedReply, strings.TrimSpace(reply))
	}
	return nil
}

// ConferenceKick removes a member from a room. target is the member id or
// the channel uuid (see ConferenceMembers), not the sip user.
func (a *Adapter) ConferenceKick(ctx context.Context, room, target string) error {
	reply, err := a.Api(ctx, "conference", room, "kick", target)
	if err != nil {
		return err
	}
	if err := CheckReply(reply); err != nil {
		return err
	}
	if !replyHasAll(reply, "OK") {
		return fmt.Errorf("conference kick: %w: %q", ErrUnexpectedReply, strings.TrimSpace(reply))
	}
	return nil
}
