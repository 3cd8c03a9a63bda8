// Copyright 2022 genmzy. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fsadapter

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strconv"
	"strings"
)

// Content-Type values the switch puts on its messages
const (
	ContentAuthRequest      = "auth/request"
	ContentCommandReply     = "command/reply"
	ContentApiResponse      = "api/response"
	ContentEventJSON        = "text/event-json"
	ContentEventPlain       = "text/event-plain"
	ContentDisconnectNotice = "text/disconnect-notice"
	ContentRudeRejection    = "text/rude-rejection"
)

// well known message headers
const (
	HeaderContentType   = "Content-Type"
	HeaderContentLength = "Content-Length"
	HeaderReplyText     = "Reply-Text"
)

type Header struct {
	Name  string
	Value string
}

// Message is one frame of the event socket protocol: header lines, a blank
// line, then Content-Length bytes of body when that header is present.
type Message struct {
	Headers []Header
	Body    []byte
}

// Get returns the first value of header name, matched case-insensitively.
func (m *Message) Get(name string) string {
	v, _ := m.Lookup(name)
	return v
}

func (m *Message) Lookup(name string) (string, bool) {
	for _, h := range m.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// Set replaces the value of header name, or appends it.
func (m *Message) Set(name, value string) {
	for i := range m.Headers {
		if strings.EqualFold(m.Headers[i].Name, name) {
			m.Headers[i].Value = value
			return
		}
	}
	m.Headers = append(m.Headers, Header{Name: name, Value: value})
}

// SetBody sets the body and keeps Content-Length in step with it.
func (m *Message) SetBody(b []byte) {
	m.Body = b
	m.Set(HeaderContentLength, strconv.Itoa(len(b)))
}

func (m *Message) ContentType() string {
	return m.Get(HeaderContentType)
}

// HasBody reports whether the message was framed with Content-Length.
func (m *Message) HasBody() bool {
	_, ok := m.Lookup(HeaderContentLength)
	return ok
}

// WriteTo serializes the message the way the switch frames it.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	for _, h := range m.Headers {
		buf.WriteString(h.Name)
		buf.WriteString(": ")
		buf.WriteString(h.Value)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(m.Body)
	return buf.WriteTo(w)
}

func (m *Message) String() string {
	var sb strings.Builder
	for i, h := range m.Headers {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(h.Name)
		sb.WriteString(": ")
		sb.WriteString(h.Value)
	}
	if len(m.Body) > 0 {
		sb.WriteString("\n\n")
		sb.Write(m.Body)
	}
	return sb.String()
}

// ReadMessage reads one message from r. Header lines are read until the
// first blank line; when Content-Length is present exactly that many raw
// bytes follow and are read as the body without any line parsing.
func ReadMessage(r *bufio.Reader) (*Message, error) {
	tp := textproto.NewReader(r)
	m := &Message{}
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return nil, connErr("read header", err)
		}
		if line == "" {
			if len(m.Headers) == 0 {
				// stray separator between frames
				continue
			}
			break
		}
		i := strings.IndexByte(line, ':')
		if i <= 0 {
			return nil, framingErr("read header", fmt.Errorf("malformed header line %q", line))
		}
		m.Headers = append(m.Headers, Header{
			Name:  strings.TrimSpace(line[:i]),
			Value: strings.TrimSpace(line[i+1:]),
		})
	}

	slen, ok := m.Lookup(HeaderContentLength)
	if !ok {
		return m, nil
	}
	l, err := strconv.Atoi(slen)
	if err != nil || l < 0 {
		return nil, framingErr("read body", fmt.Errorf("invalid content-length %q", slen))
	}
	m.Body = make([]byte, l)
	if _, err := io.ReadFull(r, m.Body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, framingErr("read body", io.ErrUnexpectedEOF)
		}
		return nil, connErr("read body", err)
	}
	return m, nil
}

// WriteCommand writes the command text followed by a blank line and flushes
// at once: the switch does nothing until it sees the blank line.
//
// NOTE: an error implementation:
//
// defer w.Flush()
// return w.Write()
//
// this will ignore the real connection write error that in `Flush`
func WriteCommand(w *bufio.Writer, text string) error {
	if _, err := w.WriteString(text); err != nil {
		return connErr("write command", err)
	}
	if _, err := w.WriteString("\n\n"); err != nil {
		return connErr("write command", err)
	}
	if err := w.Flush(); err != nil {
		return connErr("flush command", err)
	}
	return nil
}

// replyText reduces a command reply to its logical result.
func replyText(m *Message) (string, error) {
	switch m.ContentType() {
	case ContentCommandReply:
		return m.Get(HeaderReplyText), nil
	case ContentApiResponse:
		if !m.HasBody() {
			return "", framingErr("api response", errors.New("missing content-length"))
		}
		return string(m.Body), nil
	}
	// not a shape we know, hand it back as is
	return m.String(), nil
}
