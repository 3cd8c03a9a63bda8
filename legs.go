package fsadapter

// callLegs keeps the latest channel-create event per call uuid so that
// conference join/leave events can be enriched with the custom sip headers
// seen when the call came in.
//
// Only the dispatch goroutine touches it, so there is no lock. Anything that
// reads or writes it from another goroutine must add one.
type callLegs map[string]*RawEvent

func (l callLegs) put(callUuid string, ev *RawEvent) {
	if callUuid == "" {
		return
	}
	l[callUuid] = ev
}

func (l callLegs) get(callUuid string) *RawEvent {
	return l[callUuid]
}

func (l callLegs) remove(callUuid string) {
	delete(l, callUuid)
}
