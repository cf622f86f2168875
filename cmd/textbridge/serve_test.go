// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/textbridge/internal/console"
	"github.com/holomush/textbridge/internal/observability"
)

const consoleScript = `who
# comments and blank lines are skipped

say "hi" in gold to "Notch"
title times 10 70 20 to "jeb_"
dance
status
`

func TestServe_Console(t *testing.T) {
	isolate(t)
	out, err := execute(t, consoleScript, "serve", "--profile", "v1_8_R3", "--metrics-addr", "127.0.0.1:0")
	require.NoError(t, err)

	assert.Contains(t, out, "4 online: CONSOLE, Notch, jeb_, Dinnerbone")
	assert.Contains(t, out, "Notch <- PacketPlayOutChat hi")
	assert.Contains(t, out, "handled 1 of 1")
	assert.Contains(t, out, "jeb_ <- PacketPlayOutTitle [TIMES/3] [10,70,20]")
	assert.Contains(t, out, "error: ")
	assert.Contains(t, out, "capable=true title=true version=v1_8_R3 semver=1.8.0+R3")
	assert.NotContains(t, out, "comments")
}

func TestServe_WithoutMetrics(t *testing.T) {
	isolate(t)
	out, err := execute(t, "status\n", "serve", "--profile", "glowstone", "--metrics=false")
	require.NoError(t, err)
	assert.Contains(t, out, "capable=false")
}

func TestServe_BadMetricsAddr(t *testing.T) {
	isolate(t)
	_, err := execute(t, "", "serve", "--profile", "v1_8_R3", "--metrics-addr", "256.0.0.1:99999")
	require.Error(t, err)
}

func TestExecLine(t *testing.T) {
	isolate(t)
	cmd := NewRootCmd()
	cmd.SetErr(io.Discard)
	require.NoError(t, cmd.ParseFlags([]string{"--profile", "v1_7_R4"}))
	s, err := openSession(context.Background(), cmd)
	require.NoError(t, err)
	defer s.Close()

	buf := new(bytes.Buffer)
	c := console.New(s.adapter, s.roster)
	execLine(context.Background(), c, buf, "   ")
	execLine(context.Background(), c, buf, "# note")
	assert.Empty(t, buf.String())

	execLine(context.Background(), c, buf, "who")
	assert.Equal(t, "3 online: CONSOLE, Notch, Herobrine\n", buf.String())
}

func TestReadLines(t *testing.T) {
	lines := make(chan string)
	go readLines(context.Background(), strings.NewReader("a\nb\n"), lines)

	var got []string
	for l := range lines {
		got = append(got, l)
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestReadLines_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	lines := make(chan string)
	done := make(chan struct{})
	go func() {
		readLines(ctx, strings.NewReader("a\nb\n"), lines)
		close(done)
	}()
	<-done
	_, ok := <-lines
	assert.False(t, ok)
}

func TestStartObservability_RetriesBusyAddress(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = l.Close()
	}()

	srv := observability.NewServer(addr, nil)
	backoff := retry.WithMaxRetries(20, retry.NewConstant(25*time.Millisecond))
	_, err = startObservability(context.Background(), srv, backoff)
	require.NoError(t, err)
	assert.Equal(t, addr, srv.Addr())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
}

func TestStartObservability_GivesUp(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	srv := observability.NewServer(l.Addr().String(), nil)
	_, err = startObservability(context.Background(), srv, retry.WithMaxRetries(2, retry.NewConstant(time.Millisecond)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, syscall.EADDRINUSE))
}
