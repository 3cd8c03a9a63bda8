package fsadapter

import (
	"bufio"
	"encoding/json"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

func init() {
	defaultLogger.SetOutput(io.Discard)
}

// fakeSwitch speaks the switch side of the event socket on a loopback port:
// auth banner, auth check, then every command goes to handle.
type fakeSwitch struct {
	ln       net.Listener
	password string

	// api command (without `api `) -> response body
	apiReplies map[string]string
	// overrides the default command handling when set
	handle func(sw *fakeSwitch, sc *switchConn, cmd string)
	// event connections, announced once `event json ...` is acknowledged
	subscribed chan *switchConn

	mu    sync.Mutex
	cmds  []string
	conns []net.Conn
	wg    sync.WaitGroup
}

type switchConn struct {
	c  net.Conn
	mu sync.Mutex
	w  *bufio.Writer
}

func (sc *switchConn) write(msgs ...*Message) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	for _, m := range msgs {
		if _, err := m.WriteTo(sc.w); err != nil {
			return err
		}
	}
	return sc.w.Flush()
}

func startFakeSwitch(t *testing.T, password string, apiReplies map[string]string) *fakeSwitch {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	sw := &fakeSwitch{
		ln:         ln,
		password:   password,
		apiReplies: apiReplies,
		subscribed: make(chan *switchConn, 4),
	}
	sw.wg.Add(1)
	go sw.acceptLoop()
	t.Cleanup(sw.close)
	return sw
}

func (sw *fakeSwitch) addr() string {
	return sw.ln.Addr().String()
}

func (sw *fakeSwitch) acceptLoop() {
	defer sw.wg.Done()
	for {
		c, err := sw.ln.Accept()
		if err != nil {
			return
		}
		sw.mu.Lock()
		sw.conns = append(sw.conns, c)
		sw.mu.Unlock()
		sw.wg.Add(1)
		go sw.serve(c)
	}
}

func (sw *fakeSwitch) serve(c net.Conn) {
	defer sw.wg.Done()
	defer c.Close()
	sc := &switchConn{c: c, w: bufio.NewWriter(c)}
	r := bufio.NewReader(c)
	if err := sc.write(&Message{Headers: []Header{{HeaderContentType, ContentAuthRequest}}}); err != nil {
		return
	}
	for {
		cmd, err := readCommand(r)
		if err != nil {
			return
		}
		sw.record(cmd)
		if pw, ok := strings.CutPrefix(cmd, "auth "); ok {
			if pw != sw.password {
				sc.write(commandReply("-ERR invalid"))
				return
			}
			sc.write(commandReply("+OK accepted"))
			continue
		}
		if sw.handle != nil {
			sw.handle(sw, sc, cmd)
			continue
		}
		sw.defaultHandle(sc, cmd)
	}
}

func (sw *fakeSwitch) defaultHandle(sc *switchConn, cmd string) {
	switch {
	case strings.HasPrefix(cmd, "event json"):
		sc.write(commandReply("+OK event listener enabled json"))
		sw.subscribed <- sc
	case cmd == "noevents":
		sc.write(commandReply("+OK no longer listening for events"))
	case strings.HasPrefix(cmd, "api "):
		name := strings.TrimPrefix(cmd, "api ")
		body, ok := sw.apiReplies[name]
		if !ok {
			body = "-ERR " + name + " Command not found!\n"
		}
		sc.write(apiResponse(body))
	default:
		sc.write(commandReply("-ERR command not found"))
	}
}

func (sw *fakeSwitch) record(cmd string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.cmds = append(sw.cmds, cmd)
}

func (sw *fakeSwitch) commands() []string {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return append([]string(nil), sw.cmds...)
}

// waitCommand polls until cmd was received or the timeout elapses.
func (sw *fakeSwitch) waitCommand(cmd string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, c := range sw.commands() {
			if c == cmd {
				return true
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func (sw *fakeSwitch) waitSubscribed(t *testing.T) *switchConn {
	t.Helper()
	select {
	case sc := <-sw.subscribed:
		return sc
	case <-time.After(3 * time.Second):
		t.Fatalf("no subscription reached the fake switch")
		return nil
	}
}

func (sw *fakeSwitch) close() {
	sw.ln.Close()
	sw.mu.Lock()
	for _, c := range sw.conns {
		c.Close()
	}
	sw.mu.Unlock()
	sw.wg.Wait()
}

func readCommand(r *bufio.Reader) (string, error) {
	var cmd string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if cmd == "" {
				continue
			}
			return cmd, nil
		}
		if cmd == "" {
			cmd = line
		}
	}
}

func commandReply(text string) *Message {
	return &Message{Headers: []Header{
		{HeaderContentType, ContentCommandReply},
		{HeaderReplyText, text},
	}}
}

func apiResponse(body string) *Message {
	m := &Message{Headers: []Header{{HeaderContentType, ContentApiResponse}}}
	m.SetBody([]byte(body))
	return m
}

func eventMessage(fields map[string]string) *Message {
	m := &Message{Headers: []Header{{HeaderContentType, ContentEventJSON}}}
	m.SetBody(eventJSON(fields))
	return m
}

func eventJSON(fields map[string]string) []byte {
	b, err := json.Marshal(fields)
	if err != nil {
		panic(err)
	}
	return b
}
