// Copyright 2022 genmzy. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fsadapter

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"
)

// Command is one line of the event socket command grammar.
type Command struct {
	// Api prefixes the line with `api `, which makes the switch answer with
	// an api/response body instead of a one line command/reply.
	Api  bool
	Name string
	Args []string
}

// Serialize formats the command as expected by freeswitch, without the
// terminating blank line (the frame codec adds it).
func (cmd Command) Serialize() string {
	var sb strings.Builder
	if cmd.Api {
		sb.WriteString("api ")
	}
	sb.WriteString(cmd.Name)
	for _, arg := range cmd.Args {
		if arg == "" {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(arg)
	}
	return sb.String()
}

func (cmd Command) String() string {
	return cmd.Serialize()
}

// execute runs one command on a brand-new connection: banner, auth, command,
// one reply, close. Nothing is shared between calls, so a stuck command
// never blocks another one.
func execute(ctx context.Context, opts *Options, addr, password, cmd string) (reply string, err error) {
	start := time.Now()
	defer func() { recordCommand(err, time.Since(start)) }()

	conn, err := dial(ctx, addr, opts.dialTimeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	// unblock reads and writes as soon as ctx is done
	stop := context.AfterFunc(ctx, conn.Close)
	defer stop()

	if err := conn.applyDeadline(ctx, opts.commandTimeout); err != nil {
		return "", connErr("set deadline", err)
	}
	if err := conn.auth(password); err != nil {
		return "", ctxErr(ctx, err)
	}
	opts.logger.Debugf("send command to %s: %s", addr, cmd)
	reply, err = conn.sendRecv(cmd)
	if err != nil {
		return "", connErr("command "+firstWord(cmd), ctxErr(ctx, err))
	}
	return reply, nil
}

// ctxErr replaces a read/write failure caused by ctx with the ctx error. The
// socket deadline is the ctx deadline when ctx has one, so a timeout may
// surface a moment before ctx reports it.
func ctxErr(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	if _, ok := ctx.Deadline(); ok && errors.Is(err, os.ErrDeadlineExceeded) {
		return context.DeadlineExceeded
	}
	return err
}

// interrupted reports whether err comes from the caller giving up rather
// than from the switch or the network.
func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func firstWord(cmd string) string {
	fields := strings.Fields(cmd)
	switch {
	case len(fields) == 0:
		return ""
	case fields[0] == "api" && len(fields) > 1:
		return fields[0] + " " + fields[1]
	}
	return fields[0]
}
