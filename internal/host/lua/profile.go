// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lua

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
	"golang.org/x/crypto/blake2b"

	"github.com/holomush/textbridge/internal/host"
)

// Error codes for profile loading.
const (
	CodeProfileLoad    = "PROFILE_LOAD_FAILED"
	CodeProfileInvalid = "PROFILE_INVALID"
	CodeProfileClosed  = "PROFILE_CLOSED"
)

// Player is an online player declared by a profile.
type Player struct {
	name string
	obj  *host.Object
}

// Name returns the player name.
func (p *Player) Name() string {
	if p == nil {
		return ""
	}
	return p.name
}

// HostObject returns the player's host instance. A nil player has none.
func (p *Player) HostObject() *host.Object {
	if p == nil {
		return nil
	}
	return p.obj
}

// EmitFunc observes packets a profile reports through emit(conn, packet).
type EmitFunc func(conn, packet *host.Object)

// Profile is a host runtime described by a Lua script.
//
// Method and constructor bodies run in the profile's Lua state; calls are
// serialized because an LState is not safe for concurrent use.
type Profile struct {
	*host.Registry
	name   string
	digest string

	mu       sync.Mutex
	L        *lua.LState
	declared map[string]*host.Class
	order    []*host.Class
	nested   map[string][]string
	players  []*Player
	observer EmitFunc
}

// Compile-time interface check.
var _ host.Runtime = (*Profile)(nil)

// Load reads and runs the profile script at path. The profile is named
// after the file without its extension.
func Load(ctx context.Context, path string) (*Profile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.In("lua").Code(CodeProfileLoad).With("path", path).Wrap(err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return LoadString(ctx, name, string(src))
}

// LoadString runs a profile script held in memory.
func LoadString(ctx context.Context, name, src string) (*Profile, error) {
	L, err := newSandbox(ctx)
	if err != nil {
		return nil, oops.In("lua").Code(CodeProfileLoad).With("profile", name).Wrap(err)
	}

	p := &Profile{
		Registry: host.NewRegistry(),
		name:     name,
		digest:   digest(src),
		L:        L,
		declared: make(map[string]*host.Class),
		nested:   make(map[string][]string),
	}
	registerTypes(L)
	p.registerGlobals(L)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, oops.In("lua").Code(CodeProfileLoad).With("profile", name).Wrap(err)
	}
	L.RemoveContext()

	if err := p.link(); err != nil {
		L.Close()
		return nil, err
	}
	return p, nil
}

// link resolves nested class references and registers every declared class.
func (p *Profile) link() error {
	for _, c := range p.order {
		for _, n := range p.nested[c.Name] {
			inner, ok := p.declared[n]
			if !ok {
				return oops.In("lua").Code(CodeProfileInvalid).
					With("profile", p.name).With("class", c.Name).With("nested", n).
					Errorf("nested class %s is not declared", n)
			}
			c.Nested = append(c.Nested, inner)
		}
	}
	if err := p.Register(p.order...); err != nil {
		return oops.In("lua").Code(CodeProfileInvalid).With("profile", p.name).Wrap(err)
	}
	return nil
}

// Name returns the profile name.
func (p *Profile) Name() string {
	return p.name
}

// Digest identifies the script the profile was loaded from: the hex
// BLAKE2b-256 sum of its source.
func (p *Profile) Digest() string {
	return p.digest
}

func digest(src string) string {
	sum := blake2b.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}

// Players returns the online players in declaration order.
func (p *Profile) Players() []*Player {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Player(nil), p.players...)
}

// OnEmit sets the packet observer. A nil fn discards emitted packets.
func (p *Profile) OnEmit(fn EmitFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observer = fn
}

// Close releases the Lua state. Later invocations of profile members fail.
func (p *Profile) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.L != nil {
		p.L.Close()
		p.L = nil
	}
}

func (p *Profile) registerGlobals(L *lua.LState) {
	L.SetGlobal("class", L.NewFunction(p.luaClass))
	L.SetGlobal("new", L.NewFunction(p.luaNew))
	L.SetGlobal("player", L.NewFunction(p.luaPlayer))
	L.SetGlobal("server", L.NewFunction(p.luaServer))
	L.SetGlobal("emit", L.NewFunction(p.luaEmit))
}

// class(name, decl) declares a class and returns its name.
func (p *Profile) luaClass(L *lua.LState) int {
	name := L.CheckString(1)
	decl := L.OptTable(2, L.NewTable())
	if _, dup := p.declared[name]; dup {
		L.RaiseError("class %s declared twice", name)
		return 0
	}

	c, nested, err := p.parseClass(name, decl)
	if err != nil {
		L.RaiseError("class %s: %s", name, err.Error())
		return 0
	}
	p.declared[name] = c
	p.order = append(p.order, c)
	p.nested[name] = nested

	L.Push(lua.LString(name))
	return 1
}

func (p *Profile) parseClass(name string, decl *lua.LTable) (*host.Class, []string, error) {
	c := &host.Class{Name: name}

	var err error
	if c.Implements, err = stringList(decl, "implements"); err != nil {
		return nil, nil, err
	}
	nested, err := stringList(decl, "nested")
	if err != nil {
		return nil, nil, err
	}

	enum, err := stringList(decl, "enum")
	if err != nil {
		return nil, nil, err
	}
	for _, e := range enum {
		c.Enum = append(c.Enum, &host.EnumConstant{Name: e})
	}

	fields, err := tableList(decl, "fields")
	if err != nil {
		return nil, nil, err
	}
	for _, f := range fields {
		c.Fields = append(c.Fields, &host.Field{
			Name: lua.LVAsString(f.RawGetString("name")),
			Type: lua.LVAsString(f.RawGetString("type")),
		})
	}

	methods, err := tableList(decl, "methods")
	if err != nil {
		return nil, nil, err
	}
	for _, m := range methods {
		method, err := p.parseMethod(m)
		if err != nil {
			return nil, nil, err
		}
		c.Methods = append(c.Methods, method)
	}

	ctors, err := tableList(decl, "constructors")
	if err != nil {
		return nil, nil, err
	}
	for _, t := range ctors {
		ctor, err := p.parseConstructor(t)
		if err != nil {
			return nil, nil, err
		}
		c.Constructors = append(c.Constructors, ctor)
	}
	return c, nested, nil
}

func (p *Profile) parseMethod(t *lua.LTable) (*host.Method, error) {
	name := lua.LVAsString(t.RawGetString("name"))
	if name == "" {
		return nil, oops.In("lua").New("method without a name")
	}
	params, err := stringList(t, "params")
	if err != nil {
		return nil, err
	}
	m := &host.Method{
		Name:    name,
		Static:  lua.LVAsBool(t.RawGetString("static")),
		Params:  params,
		Returns: lua.LVAsString(t.RawGetString("returns")),
	}
	if m.Returns == "" {
		m.Returns = host.TypeVoid
	}
	if fn, ok := t.RawGetString("fn").(*lua.LFunction); ok {
		m.Func = p.methodFunc(fn, m.Static)
	}
	return m, nil
}

// parseConstructor reads either a body function returning a field table,
// or an assign list naming the field each argument is stored in.
func (p *Profile) parseConstructor(t *lua.LTable) (*host.Constructor, error) {
	params, err := stringList(t, "params")
	if err != nil {
		return nil, err
	}
	assign, err := stringList(t, "assign")
	if err != nil {
		return nil, err
	}
	if len(assign) > len(params) {
		return nil, oops.In("lua").With("params", len(params)).With("assign", len(assign)).
			New("constructor assigns more fields than it takes")
	}

	ctor := &host.Constructor{Params: params}
	fn, _ := t.RawGetString("fn").(*lua.LFunction)
	ctor.Func = func(args []any) (map[string]any, error) {
		fields := make(map[string]any, len(assign))
		for i, f := range assign {
			fields[f] = args[i]
		}
		if fn == nil {
			return fields, nil
		}
		ret, err := p.call(fn, args...)
		if err != nil {
			return nil, err
		}
		tbl, ok := ret.(*lua.LTable)
		if !ok {
			if ret != lua.LNil {
				return nil, oops.In("lua").With("returned", ret.Type().String()).New("constructor must return a field table")
			}
			return fields, nil
		}
		extra, err := tableFields(tbl)
		if err != nil {
			return nil, err
		}
		for k, v := range extra {
			fields[k] = v
		}
		return fields, nil
	}
	return ctor, nil
}

func (p *Profile) methodFunc(fn *lua.LFunction, static bool) host.MethodFunc {
	return func(recv *host.Object, args []any) (any, error) {
		if !static {
			args = append([]any{recv}, args...)
		}
		ret, err := p.call(fn, args...)
		if err != nil {
			return nil, err
		}
		return toGo(ret)
	}
}

// call runs a Lua function with host arguments and returns its first result.
func (p *Profile) call(fn *lua.LFunction, args ...any) (lua.LValue, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	L := p.L
	if L == nil {
		return nil, oops.In("lua").Code(CodeProfileClosed).With("profile", p.name).New("profile is closed")
	}
	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = toLua(L, a)
	}
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, largs...); err != nil {
		return nil, oops.In("lua").With("profile", p.name).Wrap(err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// new(className, fields) creates an instance of a declared class.
func (p *Profile) luaNew(L *lua.LState) int {
	obj := p.instance(L)
	L.Push(toLua(L, obj))
	return 1
}

// player(object) declares an online player. The object's "name" field is
// the player name.
func (p *Profile) luaPlayer(L *lua.LState) int {
	obj := checkObject(L, 1)
	name, _ := obj.Get("name")
	s, ok := name.(string)
	if !ok || s == "" {
		L.ArgError(1, "player object needs a name field")
		return 0
	}
	p.players = append(p.players, &Player{name: s, obj: obj})
	L.Push(toLua(L, obj))
	return 1
}

// server(className [, fields]) declares the running server instance.
func (p *Profile) luaServer(L *lua.LState) int {
	obj := p.instance(L)
	p.SetServer(obj)
	L.Push(toLua(L, obj))
	return 1
}

// emit(connection, packet) reports an outbound packet.
func (p *Profile) luaEmit(L *lua.LState) int {
	conn := checkObject(L, 1)
	pkt := checkObject(L, 2)
	if p.observer != nil {
		p.observer(conn, pkt)
	}
	return 0
}

func (p *Profile) instance(L *lua.LState) *host.Object {
	name := L.CheckString(1)
	c, ok := p.declared[name]
	if !ok {
		L.ArgError(1, "undeclared class "+name)
		return nil
	}
	fields, err := tableFields(L.OptTable(2, nil))
	if err != nil {
		L.RaiseError("new %s: %s", name, err.Error())
		return nil
	}
	return host.NewObject(c, fields)
}
