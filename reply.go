// Copyright 2022 genmzy. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fsadapter

import (
	"errors"
	"strings"
)

// ErrUnexpectedReply: the switch answered, but not with the success text
// the command expects.
var ErrUnexpectedReply = errors.New("unexpected reply")

// ReplyError is a reply the switch sent back starting with `-ERR `.
type ReplyError struct {
	Text string
}

func (e *ReplyError) Error() string {
	return "switch replied error: " + e.Text
}

// CheckReply returns a *ReplyError when reply explicitly encodes an error.
// An empty reply is not an error here: it is what a failed command returns,
// and the failure itself was already reported through OnFailure.
func CheckReply(reply string) error {
	reply = strings.TrimSpace(reply)
	if strings.HasPrefix(reply, "-ERR") {
		return &ReplyError{Text: strings.TrimSpace(strings.TrimPrefix(reply, "-ERR"))}
	}
	return nil
}

// replyHasAll reports whether reply contains every word, ignoring case.
func replyHasAll(reply string, words ...string) bool {
	lower := strings.ToLower(reply)
	for _, w := range words {
		if !strings.Contains(lower, strings.ToLower(w)) {
			return false
		}
	}
	return true
}
