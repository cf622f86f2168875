// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package text_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/textbridge/pkg/text"
)

func TestSerialize(t *testing.T) {
	c := text.Colored("red", "Hello, ").Append(text.Component{Text: "world", Bold: true})

	got, err := text.Serialize(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"Hello, ","color":"red","extra":[{"text":"world","bold":true}]}`, got)

	back, err := text.Deserialize(got)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}

func TestDeserialize_BareString(t *testing.T) {
	c, err := text.Deserialize(`"hi"`)
	require.NoError(t, err)
	assert.Equal(t, text.Of("hi"), c)
}

func TestDeserialize_Invalid(t *testing.T) {
	_, err := text.Deserialize(`{"text":`)
	assert.Error(t, err)
}

func TestAppend_DoesNotShareChildren(t *testing.T) {
	base := text.Of("a").Append(text.Of("b"))
	one := base.Append(text.Of("c"))
	two := base.Append(text.Of("d"))

	assert.Equal(t, "abc", text.PlainText(mustSerialize(t, one)))
	assert.Equal(t, "abd", text.PlainText(mustSerialize(t, two)))
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"object with extra", `{"text":"a","extra":[{"text":"b"},"c"]}`, "abc"},
		{"bare string", `"plain"`, "plain"},
		{"array", `[{"text":"x"},{"text":"y"}]`, "xy"},
		{"numbers", `[10,70,20]`, ""},
		{"not json", `hello`, "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, text.PlainText(tt.in))
		})
	}
}

func TestRenderANSI(t *testing.T) {
	c := text.Colored("red", "R").Append(text.Component{Text: "B", Bold: true}, text.Colored("unknown", "U"))

	got := text.RenderANSI(c)
	assert.Equal(t, "\x1b[91mR\x1b[0m\x1b[1m\x1b[91mB\x1b[0m\x1b[91mU\x1b[0m", got)
	assert.Equal(t, "plain", text.RenderANSI(text.Of("plain")))
}

func TestRenderANSI_ChildrenAddToParentStyle(t *testing.T) {
	c := text.Component{Text: "P", Bold: true}.Append(
		text.Component{Text: "C", Italic: true, Color: "green"},
	)

	got := text.RenderANSI(c)
	assert.Equal(t, "\x1b[1mP\x1b[0m\x1b[1m\x1b[3m\x1b[92mC\x1b[0m", got)
}

func TestTitleKinds(t *testing.T) {
	assert.Equal(t, "TIMES", text.NewTimes(text.Times{}).Kind().String())
	assert.Equal(t, "ACTIONBAR", text.NewActionBarTitle(text.Of("x")).Kind().String())
	assert.Equal(t, text.KindClear, text.Clear().Kind())
	assert.Equal(t, text.KindReset, text.Reset().Kind())
	assert.Equal(t, "UNKNOWN", text.TitleKind(42).String())
}

func TestTimesOf(t *testing.T) {
	got := text.TimesOf(500*time.Millisecond, 3500*time.Millisecond, time.Second)
	assert.Equal(t, text.Times{FadeIn: 10, Stay: 70, FadeOut: 20}, got)
}

func mustSerialize(t *testing.T, c text.Component) string {
	t.Helper()
	s, err := text.Serialize(c)
	require.NoError(t, err)
	return s
}
