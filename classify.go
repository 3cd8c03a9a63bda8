package fsadapter

import (
	"strings"

	"github.com/genmzy/fsadapter/ev_header"
)

// EventKind is the meaning of a raw event for this module.
type EventKind int

const (
	KindUnknown EventKind = iota
	// first leg of a call, created by the caller reaching the switch
	KindCallToSwitch
	// leg created by the switch to reach a destination
	KindSwitchCallUser
	KindAnswer
	KindHangup
	KindDestroyCall
	KindConferenceCreate
	KindConferenceDelete
	KindJoinConference
	KindLeaveConference
)

var kindNames = [...]string{
	"UNKNOWN",
	"CALL_TO_SWITCH",
	"SWITCH_CALL_USER",
	"ANSWER",
	"HANGUP",
	"DESTROY_CALL",
	"CONFERENCE_CREATE",
	"CONFERENCE_DELETE",
	"JOIN_CONFERENCE",
	"LEAVE_CONFERENCE",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

// Classify maps a json event payload to its kind. Malformed json and
// missing fields yield KindUnknown.
func Classify(payload []byte) EventKind {
	ev, err := ParseRawEvent(payload)
	if err != nil {
		return KindUnknown
	}
	return classify(ev)
}

func classify(ev *RawEvent) EventKind {
	name, ok := ev.Lookup(ev_header.Event_Name)
	if !ok {
		return KindUnknown
	}
	switch name {
	case ev_header.CHANNEL_CREATE:
		if !ev.Has(ev_header.Channel_Call_UUID, ev_header.Unique_ID, ev_header.Caller_Direction) {
			return KindUnknown
		}
		if isALeg(ev) && strings.EqualFold(ev.Get(ev_header.Caller_Direction), "inbound") {
			return KindCallToSwitch
		}
		return KindSwitchCallUser
	case ev_header.CHANNEL_ANSWER:
		if !ev.Has(ev_header.Channel_Call_UUID, ev_header.Unique_ID, ev_header.Answer_State) {
			return KindUnknown
		}
		if isALeg(ev) && strings.EqualFold(ev.Get(ev_header.Answer_State), "answered") {
			return KindAnswer
		}
	case ev_header.CHANNEL_HANGUP:
		if !ev.Has(ev_header.Channel_Call_UUID, ev_header.Unique_ID, ev_header.Answer_State) {
			return KindUnknown
		}
		if isALeg(ev) && strings.EqualFold(ev.Get(ev_header.Answer_State), "hangup") {
			return KindHangup
		}
	case ev_header.CHANNEL_DESTROY:
		return KindDestroyCall
	case ev_header.CUSTOM:
		if ev.Get(ev_header.Event_Subclass) != ev_header.Conference_Maint {
			return KindUnknown
		}
		switch ev.Get(ev_header.Action) {
		case ev_header.Conference_Create:
			return KindConferenceCreate
		case ev_header.Conference_Destroy:
			return KindConferenceDelete
		case ev_header.Conference_Add_Member:
			return KindJoinConference
		case ev_header.Conference_Del_Member:
			return KindLeaveConference
		}
	}
	return KindUnknown
}

func isALeg(ev *RawEvent) bool {
	return ev.Get(ev_header.Channel_Call_UUID) == ev.Get(ev_header.Unique_ID)
}
