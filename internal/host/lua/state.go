// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package lua loads host profiles: sandboxed Lua scripts that declare the
// classes, members, and online players of one host version.
package lua

import (
	"context"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
)

// safeLibrary represents a Lua library that is safe to load in sandboxed state.
type safeLibrary struct {
	name string
	fn   lua.LGFunction
}

// profileLibraries are the libraries available to profile scripts.
// Safe: base, table, string, math.
// Blocked: os, io, debug, package, coroutine, channel.
var profileLibraries = []safeLibrary{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// unsafeBaseFunctions lists base library functions that must be blocked.
// They reach the filesystem or compile code outside the profile.
var unsafeBaseFunctions = []string{"dofile", "loadfile", "loadstring", "load", "require"}

// newSandbox creates a Lua state with only the profile libraries loaded.
// The state is bound to ctx so a runaway profile can be cancelled while it
// loads.
func newSandbox(ctx context.Context) (*lua.LState, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})

	for _, lib := range profileLibraries {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, oops.In("lua").With("library", lib.name).Wrap(err)
		}
	}

	for _, fn := range unsafeBaseFunctions {
		L.SetGlobal(fn, lua.LNil)
	}

	L.SetContext(ctx)
	return L, nil
}
