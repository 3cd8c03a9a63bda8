// Copyright 2022 genmzy. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fsadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/genmzy/fsadapter/ev_header"
)

var ErrEmptyEvent = errors.New("empty event payload")

// FireTime is Event-Date-Timestamp: microseconds since the unix epoch.
type FireTime uint64

func (t FireTime) StdTime() time.Time {
	return time.UnixMicro(int64(t))
}

// RawEvent is one JSON event body as delivered by `event json`.
// Number values are kept as their literal text.
type RawEvent struct {
	fields map[string]any
	raw    []byte
}

// ParseRawEvent decodes a JSON event payload.
func ParseRawEvent(payload []byte) (*RawEvent, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, ErrEmptyEvent
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	fields := make(map[string]any)
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode event json: %w", err)
	}
	return &RawEvent{fields: fields, raw: payload}, nil
}

// Get returns the field as a string, empty if absent.
func (e *RawEvent) Get(key string) string {
	v, _ := e.Lookup(key)
	return v
}

func (e *RawEvent) Lookup(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	v, ok := e.fields[key]
	if !ok {
		return "", false
	}
	return stringify(v), true
}

// Has reports whether every key is present.
func (e *RawEvent) Has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := e.fields[k]; !ok {
			return false
		}
	}
	return true
}

// Bytes returns the payload the event was decoded from.
func (e *RawEvent) Bytes() []byte {
	return e.raw
}

// Keys returns the field names in sorted order.
func (e *RawEvent) Keys() []string {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *RawEvent) String() string {
	return string(e.raw)
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, 0, len(x))
		for _, p := range x {
			parts = append(parts, stringify(p))
		}
		return strings.Join(parts, ",")
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}

// --------------------- typed event views -------------------------- //

type eventView struct {
	raw *RawEvent
}

// Raw exposes the underlying event for fields without an accessor.
func (v eventView) Raw() *RawEvent {
	return v.raw
}

func (v eventView) Name() string {
	return v.raw.Get(ev_header.Event_Name)
}

func (v eventView) Subclass() string {
	return v.raw.Get(ev_header.Event_Subclass)
}

func (v eventView) Action() string {
	return v.raw.Get(ev_header.Action)
}

func (v eventView) FireTime() FireTime {
	ft, err := strconv.ParseUint(v.raw.Get(ev_header.Event_Date_Timestamp), 10, 64)
	if err != nil {
		return 0
	}
	return FireTime(ft)
}

// Time is the moment the switch fired the event, zero if unknown.
func (v eventView) Time() time.Time {
	ft := v.FireTime()
	if ft == 0 {
		return time.Time{}
	}
	return ft.StdTime()
}

// CallEvent reports a channel creation (A or B leg) or its destruction.
type CallEvent struct {
	eventView
	Kind EventKind
}

func (e CallEvent) CallUuid() string {
	return e.raw.Get(ev_header.Channel_Call_UUID)
}

func (e CallEvent) LegUuid() string {
	return e.raw.Get(ev_header.Unique_ID)
}

func (e CallEvent) Caller() string {
	return e.raw.Get(ev_header.Caller_ID_Number)
}

func (e CallEvent) Destination() string {
	return e.raw.Get(ev_header.Callee_Destination_Number)
}

func (e CallEvent) Direction() string {
	return e.raw.Get(ev_header.Caller_Direction)
}

// ALeg reports whether this is the leg that reached the switch first.
func (e CallEvent) ALeg() bool {
	return e.Kind == KindCallToSwitch
}

type AnswerEvent struct {
	eventView
}

func (e AnswerEvent) CallUuid() string {
	return e.raw.Get(ev_header.Channel_Call_UUID)
}

func (e AnswerEvent) Caller() string {
	return e.raw.Get(ev_header.Caller_ID_Number)
}

func (e AnswerEvent) Destination() string {
	return e.raw.Get(ev_header.Callee_Destination_Number)
}

type HangupEvent struct {
	eventView
}

func (e HangupEvent) CallUuid() string {
	return e.raw.Get(ev_header.Channel_Call_UUID)
}

// Invoker is the user part of the request uri, the party that hung up.
// A uri without `@` is returned whole.
func (e HangupEvent) Invoker() string {
	uri := e.raw.Get(ev_header.Sip_Req_Uri)
	if i := strings.IndexByte(uri, '@'); i >= 0 {
		return uri[:i]
	}
	return uri
}

func (e HangupEvent) Cause() string {
	return e.raw.Get(ev_header.Hangup_Cause)
}

// ConferenceEvent reports a conference room being created or destroyed.
type ConferenceEvent struct {
	eventView
}

func (e ConferenceEvent) RoomUuid() string {
	return e.raw.Get(ev_header.Conference_Unique_ID)
}

func (e ConferenceEvent) RoomName() string {
	return e.raw.Get(ev_header.Conference_Name)
}

// MemberEvent reports a member joining or leaving a conference room.
// leg is the channel data captured when the member's call was created, nil
// when the call was never seen on this subscription.
type MemberEvent struct {
	eventView
	leg *RawEvent
}

func (e MemberEvent) RoomUuid() string {
	return e.raw.Get(ev_header.Conference_Unique_ID)
}

func (e MemberEvent) RoomName() string {
	return e.raw.Get(ev_header.Conference_Name)
}

func (e MemberEvent) MemberID() string {
	return e.raw.Get(ev_header.Member_ID)
}

// CallerUuid is the leg uuid used to look up the correlated channel.
func (e MemberEvent) CallerUuid() string {
	return e.raw.Get(ev_header.Caller_Unique_ID)
}

// Leg returns the correlated channel-create event, or nil.
func (e MemberEvent) Leg() *RawEvent {
	return e.leg
}

// SipID is the sip user who joined or left: the caller for inbound legs,
// the dialed destination for outbound legs. The correlated leg is preferred
// over the conference event itself.
func (e MemberEvent) SipID() string {
	src := e.raw
	if e.leg != nil {
		src = e.leg
	}
	dir := src.Get(ev_header.Call_Direction)
	if dir == "" {
		dir = src.Get(ev_header.Caller_Direction)
	}
	switch strings.ToLower(dir) {
	case "inbound":
		if id := src.Get(ev_header.Caller_Orig_ID_Number); id != "" {
			return id
		}
		return src.Get(ev_header.Caller_ID_Number)
	case "outbound":
		return src.Get(ev_header.Callee_Destination_Number)
	}
	return ""
}

// Headers returns the custom sip headers (variable_sip_h_*) of the
// correlated leg, keyed without the variable prefix, e.g. X-Room-Token.
func (e MemberEvent) Headers() map[string]string {
	headers := make(map[string]string)
	if e.leg == nil {
		return headers
	}
	for k, v := range e.leg.fields {
		if name, ok := strings.CutPrefix(k, ev_header.Sip_Custom_Header_Prefix); ok && name != "" {
			headers[name] = stringify(v)
		}
	}
	return headers
}
