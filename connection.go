package fsadapter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

var ErrAuthFailed = errors.New("event socket auth failed")

// conn is one event socket connection: a command connection lives for a
// single round trip, an event connection for the whole subscription.
type conn struct {
	c      net.Conn
	buffer *bufio.ReadWriter
	addr   string

	// avoid write in one goroutine and flush in another goroutine, which names `short write` error
	writeLock sync.Mutex
}

func dial(ctx context.Context, addr string, timeout time.Duration) (*conn, error) {
	d := net.Dialer{Timeout: timeout}
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, connErr("dial "+addr, err)
	}
	return &conn{
		c:    c,
		addr: addr,
		buffer: bufio.NewReadWriter(bufio.NewReaderSize(c, 16*1024),
			bufio.NewWriter(c)),
	}, nil
}

func (conn *conn) send(cmd string) error {
	conn.writeLock.Lock()
	defer conn.writeLock.Unlock()
	return WriteCommand(conn.buffer.Writer, cmd)
}

func (conn *conn) recv() (*Message, error) {
	return ReadMessage(conn.buffer.Reader)
}

// sendRecv sends one command and reads exactly one reply message.
func (conn *conn) sendRecv(cmd string) (string, error) {
	if err := conn.send(cmd); err != nil {
		return "", err
	}
	m, err := conn.recv()
	if err != nil {
		return "", err
	}
	return replyText(m)
}

// auth handles freeswitch esl authentication: banner, `auth <password>`,
// reply. A `-ERR` reply fails with ErrAuthFailed.
func (conn *conn) auth(password string) error {
	m, err := conn.recv()
	if err != nil {
		return connErr("auth preamble", err)
	}
	switch t := m.ContentType(); t {
	case ContentAuthRequest:
	case ContentRudeRejection, ContentDisconnectNotice:
		return connErr("auth preamble", fmt.Errorf("rejected by switch: %s", strings.TrimSpace(string(m.Body))))
	default:
		return framingErr("auth preamble", fmt.Errorf("bad auth preamble: [%s]", m))
	}

	reply, err := conn.sendRecv("auth " + password)
	if err != nil {
		return connErr("auth reply", err)
	}
	if rerr := CheckReply(reply); rerr != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailed, rerr)
	}
	return nil
}

// applyDeadline bounds every read and write on the connection by the ctx
// deadline, or by `fallback` from now when ctx has none.
func (conn *conn) applyDeadline(ctx context.Context, fallback time.Duration) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(fallback)
	}
	return conn.c.SetDeadline(deadline)
}

// Close ignores errors: the connection may already be lost.
func (conn *conn) Close() {
	// cancel read/write immediately, use any time.Time before or equals current time
	conn.c.SetDeadline(time.Unix(0, 0))
	conn.c.Close()
}
