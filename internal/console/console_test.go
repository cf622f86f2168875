// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package console_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/textbridge/internal/adapter"
	"github.com/holomush/textbridge/internal/console"
	"github.com/holomush/textbridge/internal/host/hosttest"
	"github.com/holomush/textbridge/pkg/errutil"
)

type recorded struct {
	name string
	err  error
}

type fakeRecorder struct {
	calls []recorded
}

func (r *fakeRecorder) RecordCommand(name string, err error) {
	r.calls = append(r.calls, recorded{name, err})
}

func newConsole(t *testing.T, f *hosttest.Fixture, names ...string) (*console.Console, *fakeRecorder) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	a := adapter.New(adapter.Bind(context.Background(), f, adapter.WithLogger(logger)), adapter.WithLogger(logger))

	viewers := []adapter.Viewer{hosttest.Console{}}
	for _, n := range names {
		viewers = append(viewers, f.Player(n))
	}
	rec := &fakeRecorder{}
	c := console.New(a, func() []adapter.Viewer { return viewers }, console.WithLogger(logger), console.WithRecorder(rec))
	return c, rec
}

func TestParse(t *testing.T) {
	tests := []struct {
		line   string
		name   string
		target string
	}{
		{`say "hello"`, "say", ""},
		{`say "hello" in gold to "a*"`, "say", "a*"},
		{`bar "low health" in red`, "bar", ""},
		{`title times 10 70 20 to "bob"`, "title", "bob"},
		{`title subtitle "chapter two"`, "title", ""},
		{`title clear`, "title", ""},
		{`who`, "who", ""},
		{`status`, "status", ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, err := console.Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.name, cmd.Name())
			assert.Equal(t, tt.target, cmd.Target())
		})
	}
}

func TestParse_Styled(t *testing.T) {
	cmd, err := console.Parse(`say "hello" in gold`)
	require.NoError(t, err)
	c := cmd.Say.Text.Component()
	assert.Equal(t, "hello", c.Text)
	assert.Equal(t, "gold", c.Color)
}

func TestParse_Times(t *testing.T) {
	cmd, err := console.Parse(`title times 10 70 20`)
	require.NoError(t, err)
	require.NotNil(t, cmd.Title.Ticks)
	p := cmd.Title.Payload()
	assert.Equal(t, 10, p.Times().FadeIn)
	assert.Equal(t, 70, p.Times().Stay)
	assert.Equal(t, 20, p.Times().FadeOut)
}

func TestParse_Errors(t *testing.T) {
	for _, line := range []string{
		``,
		`shout "hi"`,
		`say hello`,
		`say "hi" to`,
		`title times 10 70`,
		`title times "x"`,
		`title title`,
		`title clear "x"`,
		`title subtitle 1 2 3 "x"`,
		`who extra`,
	} {
		t.Run(line, func(t *testing.T) {
			_, err := console.Parse(line)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, console.CodeSyntax)
		})
	}
}

func TestSelect(t *testing.T) {
	f := hosttest.New()
	viewers := []adapter.Viewer{f.Player("alice"), f.Player("albert"), nil, f.Player("bob"), hosttest.Console{}}

	got, err := console.Select(viewers, "al*")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Name())
	assert.Equal(t, "albert", got[1].Name())

	got, err = console.Select(viewers, "")
	require.NoError(t, err)
	assert.Equal(t, viewers, got)

	got, err = console.Select(viewers, "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = console.Select(viewers, "[a-")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, console.CodeBadPattern)
	errutil.AssertErrorDomain(t, err, "console")
}

func TestExec_Say(t *testing.T) {
	f := hosttest.New()
	c, rec := newConsole(t, f, "alice", "bob", "carol")

	out, err := c.Exec(context.Background(), `say "hi" to "[ab]*"`)
	require.NoError(t, err)
	assert.Equal(t, "handled 2 of 2", out)
	assert.Equal(t, []string{"alice", "bob"}, f.DeliveredTo())
	assert.Equal(t, []recorded{{"say", nil}}, rec.calls)
}

func TestExec_SayEveryone(t *testing.T) {
	f := hosttest.New()
	c, _ := newConsole(t, f, "alice")

	out, err := c.Exec(context.Background(), `say "hi"`)
	require.NoError(t, err)
	assert.Equal(t, "handled 1 of 2; unhandled: CONSOLE", out)
}

func TestExec_TitleTimes(t *testing.T) {
	f := hosttest.New(hosttest.WithTitle())
	c, _ := newConsole(t, f, "alice")

	_, err := c.Exec(context.Background(), `title times 10 70 20 to "alice"`)
	require.NoError(t, err)
	require.Len(t, f.Deliveries(), 1)
}

func TestExec_TitleUnsupported(t *testing.T) {
	f := hosttest.New(hosttest.WithTitle())
	c, rec := newConsole(t, f, "alice")

	_, err := c.Exec(context.Background(), `title subtitle "two"`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, adapter.ErrUnsupportedTitleKind))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "title", rec.calls[0].name)
	assert.Error(t, rec.calls[0].err)
}

func TestExec_InvalidRecorded(t *testing.T) {
	c, rec := newConsole(t, hosttest.New())

	_, err := c.Exec(context.Background(), `dance`)
	require.Error(t, err)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "invalid", rec.calls[0].name)
}

func TestExec_WhoAndStatus(t *testing.T) {
	f := hosttest.New(hosttest.WithTitle())
	c, _ := newConsole(t, f, "alice", "bob")

	out, err := c.Exec(context.Background(), "who")
	require.NoError(t, err)
	assert.Equal(t, "3 online: CONSOLE, alice, bob", out)

	out, err = c.Exec(context.Background(), "status")
	require.NoError(t, err)
	assert.Equal(t, "capable=true title=true version=v1_8_R3 semver=1.8.0+R3", out)
}

func TestExec_StatusIncapable(t *testing.T) {
	c, _ := newConsole(t, hosttest.New(hosttest.WithoutChatPacket()))

	out, err := c.Exec(context.Background(), "status")
	require.NoError(t, err)
	assert.Contains(t, out, "capable=false")
	assert.Contains(t, out, "reason=")
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "handled 0 of 0", console.Summary(0, nil))
	assert.Equal(t, "handled 1 of 3; unhandled: CONSOLE", console.Summary(3, []adapter.Viewer{hosttest.Console{}, nil}))
}
