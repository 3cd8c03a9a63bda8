package fsadapter

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
)

func TestMessageRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		headers []Header
		body    string
	}{
		{
			name:    "headers only",
			headers: []Header{{"Content-Type", ContentCommandReply}, {"Reply-Text", "+OK accepted"}},
		},
		{
			name:    "body with newlines and blank lines",
			headers: []Header{{"Content-Type", ContentApiResponse}},
			body:    "line one\n\nline: three\n\n\n",
		},
		{
			name:    "json event body",
			headers: []Header{{"Content-Type", ContentEventJSON}},
			body:    `{"Event-Name":"CHANNEL_CREATE","Unique-ID":"a"}`,
		},
		{
			name:    "empty body with content-length",
			headers: []Header{{"Content-Type", ContentApiResponse}},
			body:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &Message{Headers: append([]Header(nil), tt.headers...)}
			if tt.body != "" || tt.name == "empty body with content-length" {
				in.SetBody([]byte(tt.body))
			}
			var buf bytes.Buffer
			if _, err := in.WriteTo(&buf); err != nil {
				t.Fatalf("WriteTo: %v", err)
			}
			// a second frame right behind must stay untouched
			buf.WriteString("Content-Type: command/reply\nReply-Text: next\n\n")

			r := bufio.NewReader(&buf)
			out, err := ReadMessage(r)
			if err != nil {
				t.Fatalf("ReadMessage: %v", err)
			}
			if len(out.Headers) != len(in.Headers) {
				t.Fatalf("headers = %v, want %v", out.Headers, in.Headers)
			}
			for i, h := range in.Headers {
				if out.Headers[i] != h {
					t.Errorf("header %d = %v, want %v", i, out.Headers[i], h)
				}
			}
			if string(out.Body) != tt.body {
				t.Errorf("body = %q, want %q", out.Body, tt.body)
			}

			next, err := ReadMessage(r)
			if err != nil {
				t.Fatalf("ReadMessage next: %v", err)
			}
			if got := next.Get("reply-text"); got != "next" {
				t.Errorf("next frame reply = %q, want next", got)
			}
		})
	}
}

func TestReadMessageSkipsLeadingBlankLines(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("\n\r\nContent-Type: auth/request\n\n"))
	m, err := ReadMessage(r)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if m.ContentType() != ContentAuthRequest {
		t.Fatalf("content type = %q", m.ContentType())
	}
}

func TestReadMessageErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		framing bool
		conn    bool
	}{
		{name: "eof before headers", input: "", conn: true},
		{name: "eof inside headers", input: "Content-Type: api/response\n", conn: true},
		{name: "malformed header", input: "no colon here\n\n", framing: true},
		{name: "bad content length", input: "Content-Length: ten\n\n", framing: true},
		{name: "negative content length", input: "Content-Length: -1\n\n", framing: true},
		{name: "short body", input: "Content-Length: 10\n\nabc", framing: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadMessage(bufio.NewReader(strings.NewReader(tt.input)))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := IsFramingError(err); got != tt.framing {
				t.Errorf("IsFramingError = %v, want %v (%v)", got, tt.framing, err)
			}
			if got := IsConnectionError(err); got != tt.conn {
				t.Errorf("IsConnectionError = %v, want %v (%v)", got, tt.conn, err)
			}
		})
	}
}

func TestReadMessageClosedStream(t *testing.T) {
	client, server := net.Pipe()
	server.Close()
	_, err := ReadMessage(bufio.NewReader(client))
	if !IsConnectionError(err) {
		t.Fatalf("err = %v, want connection error", err)
	}
	if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("original error lost: %v", err)
	}
}

func TestWriteCommandFlushesBlankLine(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		WriteCommand(bufio.NewWriter(client), "api status")
	}()
	// nothing else flushes: this read only returns because WriteCommand did
	got, err := readCommand(bufio.NewReader(server))
	if err != nil {
		t.Fatalf("readCommand: %v", err)
	}
	if got != "api status" {
		t.Fatalf("command = %q", got)
	}
}

func TestWriteCommandFormat(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := WriteCommand(w, "auth ClueCon"); err != nil {
		t.Fatalf("WriteCommand: %v", err)
	}
	if buf.String() != "auth ClueCon\n\n" {
		t.Fatalf("wire = %q", buf.String())
	}
}

func TestReplyText(t *testing.T) {
	tests := []struct {
		name    string
		msg     *Message
		want    string
		framing bool
	}{
		{name: "command reply", msg: commandReply("+OK accepted"), want: "+OK accepted"},
		{name: "api response", msg: apiResponse("+OK [Success]\n"), want: "+OK [Success]\n"},
		{
			name:    "api response without content-length",
			msg:     &Message{Headers: []Header{{HeaderContentType, ContentApiResponse}}},
			framing: true,
		},
		{
			name: "unknown shape passes through",
			msg:  &Message{Headers: []Header{{HeaderContentType, "text/other"}, {"X", "y"}}},
			want: "Content-Type: text/other\nX: y",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := replyText(tt.msg)
			if tt.framing {
				if !IsFramingError(err) {
					t.Fatalf("err = %v, want framing error", err)
				}
				if got != "" {
					t.Errorf("reply = %q, want empty", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("replyText: %v", err)
			}
			if got != tt.want {
				t.Errorf("reply = %q, want %q", got, tt.want)
			}
		})
	}
}
