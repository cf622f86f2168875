// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package adapter_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/textbridge/internal/adapter"
	"github.com/holomush/textbridge/internal/host"
	"github.com/holomush/textbridge/internal/host/hosttest"
	"github.com/holomush/textbridge/pkg/errutil"
	"github.com/holomush/textbridge/pkg/text"
)

func players(f *hosttest.Fixture, names ...string) []adapter.Viewer {
	out := make([]adapter.Viewer, 0, len(names))
	for _, n := range names {
		out = append(out, f.Player(n))
	}
	return out
}

func newAdapter(t *testing.T, f *hosttest.Fixture, opts ...adapter.Option) *adapter.Adapter {
	t.Helper()
	opts = append([]adapter.Option{adapter.WithLogger(quietLogger())}, opts...)
	return adapter.New(adapter.Bind(context.Background(), f, opts...), opts...)
}

func TestAdapter_IncapableIsNoOp(t *testing.T) {
	f := hosttest.New(hosttest.WithoutChatPacket(), hosttest.WithTitle())
	a := newAdapter(t, f)
	viewers := append(players(f, "alice", "bob"), hosttest.Console{})
	before := append([]adapter.Viewer(nil), viewers...)
	ctx := context.Background()

	rest, err := a.SendMessage(ctx, viewers, text.Of("hi"))
	require.NoError(t, err)
	assert.Equal(t, before, rest)

	rest, err = a.SendActionBar(ctx, viewers, text.Of("hi"))
	require.NoError(t, err)
	assert.Equal(t, before, rest)

	rest, err = a.SendTitle(ctx, viewers, text.NewTimes(text.Times{FadeIn: 1}))
	require.NoError(t, err)
	assert.Equal(t, before, rest)

	assert.Equal(t, before, viewers)
	assert.Zero(t, f.PacketsConstructed())
	assert.Empty(t, f.Deliveries())
}

func TestAdapter_SendMessageBuildsOnePacket(t *testing.T) {
	f := hosttest.New()
	a := newAdapter(t, f)
	console := hosttest.Console{}
	viewers := []adapter.Viewer{console, f.Player("alice"), f.Player("bob"), nil, f.Player("carol")}

	rest, err := a.SendMessage(context.Background(), viewers, text.Of("hi"))
	require.NoError(t, err)

	assert.Equal(t, 1, f.PacketsConstructed())
	assert.Equal(t, []adapter.Viewer{console, nil}, rest)
	assert.Equal(t, []string{"alice", "bob", "carol"}, f.DeliveredTo())

	deliveries := f.Deliveries()
	for _, d := range deliveries[1:] {
		assert.Same(t, deliveries[0].Packet, d.Packet)
	}
}

func TestAdapter_NoEligibleRecipientsBuildsNothing(t *testing.T) {
	f := hosttest.New()
	a := newAdapter(t, f)
	viewers := []adapter.Viewer{hosttest.Console{}}

	rest, err := a.SendMessage(context.Background(), viewers, text.Of("hi"))
	require.NoError(t, err)
	assert.Equal(t, viewers, rest)
	assert.Zero(t, f.PacketsConstructed())
}

func TestAdapter_SendTitleTimes(t *testing.T) {
	f := hosttest.New(hosttest.WithTitle())
	a := newAdapter(t, f)

	rest, err := a.SendTitle(context.Background(), players(f, "alice"), text.NewTimes(text.Times{FadeIn: 10, Stay: 70, FadeOut: 20}))
	require.NoError(t, err)
	assert.Empty(t, rest)

	d := f.Deliveries()
	require.Len(t, d, 1)
	assert.Equal(t, "TIMES", packetAction(t, d[0].Packet).Name)
	assert.Equal(t, "[10,70,20]", packetJSON(t, d[0].Packet))
}

func TestAdapter_SendTitleWithoutTitleSupport(t *testing.T) {
	f := hosttest.New()
	a := newAdapter(t, f)
	viewers := players(f, "alice")

	rest, err := a.SendTitle(context.Background(), viewers, text.NewTimes(text.Times{}))
	require.NoError(t, err)
	assert.Equal(t, viewers, rest)
	assert.Zero(t, f.PacketsConstructed())
}

func TestAdapter_SendTitleUnsupportedKind(t *testing.T) {
	f := hosttest.New(hosttest.WithTitle())
	a := newAdapter(t, f)
	viewers := players(f, "alice", "bob")

	for _, title := range []text.Title{text.NewTitle(text.Of("x")), text.NewSubtitle(text.Of("x")), text.Clear(), text.Reset()} {
		t.Run(title.Kind().String(), func(t *testing.T) {
			rest, err := a.SendTitle(context.Background(), viewers, title)
			require.Error(t, err)
			assert.True(t, errors.Is(err, adapter.ErrUnsupportedTitleKind))
			errutil.AssertErrorCode(t, err, adapter.CodeUnsupportedTitleKind)
			assert.Equal(t, viewers, rest)
		})
	}
	assert.Empty(t, f.Deliveries())
}

func TestAdapter_SendActionBarDegradesToChat(t *testing.T) {
	f := hosttest.New()
	a := newAdapter(t, f)
	ctx := context.Background()

	_, err := a.SendActionBar(ctx, players(f, "alice"), text.Of("hi"))
	require.NoError(t, err)
	_, err = a.SendMessage(ctx, players(f, "alice"), text.Of("hi"))
	require.NoError(t, err)

	d := f.Deliveries()
	require.Len(t, d, 2)
	assert.Same(t, d[0].Packet.Class(), d[1].Packet.Class())
	assert.Equal(t, packetJSON(t, d[1].Packet), packetJSON(t, d[0].Packet))
}

func TestDispatcher_IsolatesDeliveryFailures(t *testing.T) {
	f := hosttest.New()
	f.FailDelivery("p3")
	f.FailHandle("p5")
	a := newAdapter(t, f)
	viewers := players(f, "p1", "p2", "p3", "p4", "p5", "p6")

	failedBefore := testutil.ToFloat64(adapter.DeliveriesTotal.WithLabelValues(adapter.KindChat, adapter.StatusFailed))

	rest, err := a.SendMessage(context.Background(), viewers, text.Of("hi"))
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "p2", "p4", "p6"}, f.DeliveredTo())
	assert.Empty(t, rest, "failed recipients count as handled")
	assert.Equal(t, failedBefore+2, testutil.ToFloat64(adapter.DeliveriesTotal.WithLabelValues(adapter.KindChat, adapter.StatusFailed)))
}

func TestDispatcher_Result(t *testing.T) {
	f := hosttest.New()
	f.FailDelivery("bob")
	b := bind(t, f)
	d := adapter.NewDispatcher(b, adapter.WithLogger(quietLogger()))
	viewers := append(players(f, "alice", "bob"), hosttest.Console{})

	res, err := d.Send(context.Background(), adapter.KindChat, viewers, func() (*host.Object, error) {
		return b.MessagePacket(text.Of("hi"))
	})
	require.NoError(t, err)

	assert.NotZero(t, res.ID)
	assert.Equal(t, viewers[:2], res.Handled)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "bob", res.Failures[0].Viewer.Name())
	assert.True(t, errors.Is(res.Failures[0].Err, adapter.ErrDelivery))
	errutil.AssertErrorContext(t, res.Failures[0].Err, "viewer", "bob")
	assert.Equal(t, viewers[2:], res.Remaining(viewers))
}

func TestDispatcher_FailFast(t *testing.T) {
	f := hosttest.New()
	f.FailDelivery("p2")
	a := newAdapter(t, f, adapter.WithPolicy(adapter.PolicyFailFast))
	viewers := players(f, "p1", "p2", "p3")

	rest, err := a.SendMessage(context.Background(), viewers, text.Of("hi"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, adapter.ErrDelivery))
	assert.Equal(t, []string{"p1"}, f.DeliveredTo())
	assert.Equal(t, viewers[2:], rest)
}

func TestDispatcher_BuildFailureAbortsSend(t *testing.T) {
	f := hosttest.New()
	b := bind(t, f)
	d := adapter.NewDispatcher(b, adapter.WithLogger(quietLogger()))
	viewers := players(f, "alice", "bob")
	calls := 0

	res, err := d.Send(context.Background(), adapter.KindChat, viewers, func() (*host.Object, error) {
		calls++
		return nil, errors.New("serializer rejected input")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, res.Handled)
	assert.Equal(t, viewers, res.Remaining(viewers))
	assert.Empty(t, f.Deliveries())
}

func TestAdapter_SerializerFailureDeliversNothing(t *testing.T) {
	f := hosttest.New(hosttest.WithFailingSerializer())
	a := newAdapter(t, f)
	viewers := append(players(f, "alice", "bob"), hosttest.Console{})
	before := append([]adapter.Viewer(nil), viewers...)

	rest, err := a.SendMessage(context.Background(), viewers, text.Of("hi"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, adapter.ErrPacketConstruction))
	assert.Equal(t, before, rest)
	assert.Equal(t, before, viewers)
	assert.Zero(t, f.PacketsConstructed())
	assert.Empty(t, f.Deliveries())
}

func TestAdapter_NilPlayerIsSkipped(t *testing.T) {
	f := hosttest.New()
	a := newAdapter(t, f)
	var ghost *hosttest.Player
	viewers := []adapter.Viewer{ghost, f.Player("alice")}

	var rest []adapter.Viewer
	var err error
	require.NotPanics(t, func() {
		rest, err = a.SendMessage(context.Background(), viewers, text.Of("hi"))
	})
	require.NoError(t, err)
	assert.Equal(t, []adapter.Viewer{ghost}, rest)
	assert.Equal(t, []string{"alice"}, f.DeliveredTo())
}

func TestAdapter_PanickingPlayerIsSkipped(t *testing.T) {
	f := hosttest.New()
	a := newAdapter(t, f)
	viewers := []adapter.Viewer{panickingPlayer{}, f.Player("alice")}

	rest, err := a.SendMessage(context.Background(), viewers, text.Of("hi"))
	require.NoError(t, err)
	assert.Len(t, rest, 1)
	assert.Equal(t, []string{"alice"}, f.DeliveredTo())
}

type panickingPlayer struct{}

func (panickingPlayer) Name() string { return "broken" }

func (panickingPlayer) HostObject() *host.Object { panic("detached") }

func TestDispatcher_ConcurrentSends(t *testing.T) {
	f := hosttest.New(hosttest.WithTitle())
	a := newAdapter(t, f)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.SendActionBar(context.Background(), players(f, "alice", "bob"), text.Of("hi"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, f.Deliveries(), 16)
	assert.Equal(t, 8, f.PacketsConstructed())
}

func TestParsePolicy(t *testing.T) {
	p, ok := adapter.ParsePolicy("fail-fast")
	assert.True(t, ok)
	assert.Equal(t, adapter.PolicyFailFast, p)
	assert.Equal(t, "fail-fast", p.String())

	p, ok = adapter.ParsePolicy("")
	assert.True(t, ok)
	assert.Equal(t, adapter.PolicyContinue, p)

	_, ok = adapter.ParsePolicy("retry")
	assert.False(t, ok)
}

func TestDefault_BindsOnce(t *testing.T) {
	first := adapter.Default(context.Background(), hosttest.New(), adapter.WithLogger(quietLogger()))
	second := adapter.Default(context.Background(), hosttest.New(hosttest.WithoutChatPacket()))

	assert.Same(t, first, second)
	assert.True(t, second.Binding().Capable())
}
