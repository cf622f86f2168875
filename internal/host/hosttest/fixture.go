// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package hosttest builds in-memory CraftBukkit-shaped host runtimes for tests.
package hosttest

import (
	"errors"
	"sync"

	"github.com/holomush/textbridge/internal/host"
)

// JSONDeserializer is the capability implemented by nested serializer classes.
const JSONDeserializer = "com.google.gson.JsonDeserializer"

// DefaultActions is the action ordering of hosts that support action bars as titles.
var DefaultActions = []string{"TITLE", "SUBTITLE", "ACTIONBAR", "TIMES", "CLEAR", "RESET"}

// Options shapes the generated host.
type Options struct {
	// Version is the package qualifier, e.g. "v1_8_R3". Empty means an
	// unversioned host.
	Version string
	// ServerPackage overrides the package of the server class.
	ServerPackage string
	// ServerName overrides the simple name of the server class.
	ServerName string
	// Title adds the title packet and its action enum.
	Title bool
	// Actions names the title action constants in ordinal order.
	Actions []string
	// SiblingSerializer places ChatSerializer next to the component class
	// instead of nesting it.
	SiblingSerializer bool
	// SerializerMethods names the static string-to-component methods.
	SerializerMethods []string
	// OmitChatPacket leaves out PacketPlayOutChat.
	OmitChatPacket bool
	// OmitTitleConstructor keeps the title classes but drops the constructor.
	OmitTitleConstructor bool
	// OmitTitleActions keeps the title packet but drops its action enum.
	OmitTitleActions bool
	// OmitSerializer leaves the host without any chat serializer class.
	OmitSerializer bool
	// FailSerializer makes every serializer call return an error.
	FailSerializer bool
}

// Option configures Options.
type Option func(*Options)

// WithVersion sets the version qualifier.
func WithVersion(v string) Option { return func(o *Options) { o.Version = v } }

// WithServer overrides the server class package and simple name.
func WithServer(pkg, name string) Option {
	return func(o *Options) {
		o.ServerPackage = pkg
		o.ServerName = name
	}
}

// WithTitle enables title packets using the given action names.
// No names selects DefaultActions.
func WithTitle(actions ...string) Option {
	return func(o *Options) {
		o.Title = true
		if len(actions) > 0 {
			o.Actions = actions
		}
	}
}

// WithSiblingSerializer uses the older top-level ChatSerializer layout.
func WithSiblingSerializer() Option { return func(o *Options) { o.SiblingSerializer = true } }

// WithSerializerMethods replaces the serializer's static method names.
// No names leaves the serializer without a usable entry point.
func WithSerializerMethods(names ...string) Option {
	return func(o *Options) { o.SerializerMethods = names }
}

// WithoutChatPacket drops the chat packet class.
func WithoutChatPacket() Option { return func(o *Options) { o.OmitChatPacket = true } }

// WithoutTitleConstructor drops the title packet constructor.
func WithoutTitleConstructor() Option { return func(o *Options) { o.OmitTitleConstructor = true } }

// WithoutTitleActions drops the title action enum.
func WithoutTitleActions() Option { return func(o *Options) { o.OmitTitleActions = true } }

// WithoutSerializer removes both the nested and the sibling serializer.
func WithoutSerializer() Option { return func(o *Options) { o.OmitSerializer = true } }

// WithFailingSerializer makes the serializer reject every input.
func WithFailingSerializer() Option { return func(o *Options) { o.FailSerializer = true } }

// Delivery records one packet sent to a player connection.
type Delivery struct {
	Player string
	Packet *host.Object
}

// Fixture is a generated host runtime with delivery recording.
type Fixture struct {
	*host.Registry
	Options Options

	mu          sync.Mutex
	deliveries  []Delivery
	constructed int
	failSend    map[string]bool
	failHandle  map[string]bool

	playerClass *host.Class
	entityClass *host.Class
	connClass   *host.Class
}

// New builds a fixture. The default is a v1_8_R3 host without titles.
func New(opts ...Option) *Fixture {
	o := Options{
		Version:           "v1_8_R3",
		ServerName:        "CraftServer",
		Actions:           DefaultActions,
		SerializerMethods: []string{"a"},
	}
	for _, opt := range opts {
		opt(&o)
	}

	f := &Fixture{
		Registry:   host.NewRegistry(),
		Options:    o,
		failSend:   make(map[string]bool),
		failHandle: make(map[string]bool),
	}
	f.build()
	return f
}

// CraftBukkit returns the qualified name of a CraftBukkit class.
func (f *Fixture) CraftBukkit(name string) string {
	return qualify("org.bukkit.craftbukkit", f.Options.Version, name)
}

// Minecraft returns the qualified name of a server internal class.
func (f *Fixture) Minecraft(name string) string {
	return qualify("net.minecraft.server", f.Options.Version, name)
}

func qualify(base, version, name string) string {
	if version == "" {
		return base + "." + name
	}
	return base + "." + version + "." + name
}

func (f *Fixture) build() {
	o := f.Options
	packet := f.Minecraft("Packet")
	component := f.Minecraft("IChatBaseComponent")

	serverPkg := o.ServerPackage
	if serverPkg == "" {
		serverPkg = "org.bukkit.craftbukkit"
		if o.Version != "" {
			serverPkg += "." + o.Version
		}
	}
	serverClass := &host.Class{Name: serverPkg + "." + o.ServerName}

	f.connClass = &host.Class{
		Name: f.Minecraft("PlayerConnection"),
		Methods: []*host.Method{{
			Name:    "sendPacket",
			Params:  []string{packet},
			Returns: host.TypeVoid,
			Func: func(recv *host.Object, args []any) (any, error) {
				owner, _ := recv.Get("owner")
				name, _ := owner.(string)
				f.mu.Lock()
				defer f.mu.Unlock()
				if f.failSend[name] {
					return nil, errors.New("connection reset by peer")
				}
				pkt, _ := args[0].(*host.Object)
				f.deliveries = append(f.deliveries, Delivery{Player: name, Packet: pkt})
				return nil, nil
			},
		}},
	}
	f.entityClass = &host.Class{
		Name:   f.Minecraft("EntityPlayer"),
		Fields: []*host.Field{{Name: "playerConnection", Type: f.connClass.Name}},
	}
	f.playerClass = &host.Class{
		Name: f.CraftBukkit("entity.CraftPlayer"),
		Methods: []*host.Method{{
			Name:    "getHandle",
			Returns: f.entityClass.Name,
			Func: func(recv *host.Object, _ []any) (any, error) {
				name, _ := recv.Get("name")
				f.mu.Lock()
				fail := f.failHandle[name.(string)]
				f.mu.Unlock()
				if fail {
					panic("player handle detached")
				}
				h, _ := recv.Get("handle")
				return h, nil
			},
		}},
	}

	textClass := &host.Class{
		Name:       f.Minecraft("ChatComponentText"),
		Implements: []string{component},
	}
	serializer := &host.Class{Implements: []string{JSONDeserializer}}
	for _, name := range o.SerializerMethods {
		via := name
		serializer.Methods = append(serializer.Methods, &host.Method{
			Name:    name,
			Static:  true,
			Params:  []string{host.TypeString},
			Returns: component,
			Func: func(_ *host.Object, args []any) (any, error) {
				if o.FailSerializer {
					return nil, errors.New("malformed json")
				}
				return host.NewObject(textClass, map[string]any{"json": args[0], "via": via}), nil
			},
		})
	}
	serializer.Methods = append(serializer.Methods,
		&host.Method{Name: "0", Static: true, Params: []string{host.TypeString}, Returns: host.TypeString},
		&host.Method{Name: "1", Static: true, Params: []string{host.TypeInt}, Returns: component},
		&host.Method{Name: "0", Params: []string{host.TypeString}, Returns: component},
	)

	componentClass := &host.Class{Name: component}
	styleClass := &host.Class{Name: component + "$Style"}
	switch {
	case o.OmitSerializer:
		componentClass.Nested = []*host.Class{styleClass}
	case o.SiblingSerializer:
		serializer.Name = f.Minecraft("ChatSerializer")
		serializer.Implements = nil
		componentClass.Nested = []*host.Class{styleClass}
	default:
		serializer.Name = component + "$ChatSerializer"
		componentClass.Nested = []*host.Class{styleClass, serializer}
	}

	classes := []*host.Class{
		serverClass, f.playerClass, f.entityClass, f.connClass,
		{Name: packet}, componentClass, textClass,
	}
	if o.SiblingSerializer && !o.OmitSerializer {
		classes = append(classes, serializer)
	}

	if !o.OmitChatPacket {
		classes = append(classes, &host.Class{
			Name:       f.Minecraft("PacketPlayOutChat"),
			Implements: []string{packet},
			Constructors: []*host.Constructor{{
				Params: []string{component},
				Func: func(args []any) (map[string]any, error) {
					f.countConstruction()
					return map[string]any{"component": args[0]}, nil
				},
			}},
		})
	}

	if o.Title {
		action := &host.Class{Name: f.Minecraft("PacketPlayOutTitle$EnumTitleAction")}
		for _, name := range o.Actions {
			action.Enum = append(action.Enum, &host.EnumConstant{Name: name})
		}
		title := &host.Class{
			Name:       f.Minecraft("PacketPlayOutTitle"),
			Implements: []string{packet},
		}
		if !o.OmitTitleActions {
			title.Nested = []*host.Class{action}
		}
		if !o.OmitTitleConstructor {
			title.Constructors = []*host.Constructor{{
				Params: []string{action.Name, component},
				Func: func(args []any) (map[string]any, error) {
					f.countConstruction()
					return map[string]any{"action": args[0], "component": args[1]}, nil
				},
			}}
		}
		classes = append(classes, title)
	}

	if err := f.Register(classes...); err != nil {
		panic(err)
	}
	f.SetServer(host.NewObject(serverClass, nil))
}

func (f *Fixture) countConstruction() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructed++
}

// Player creates an online player backed by host objects.
func (f *Fixture) Player(name string) *Player {
	conn := host.NewObject(f.connClass, map[string]any{"owner": name})
	entity := host.NewObject(f.entityClass, map[string]any{"playerConnection": conn})
	obj := host.NewObject(f.playerClass, map[string]any{"name": name, "handle": entity})
	return &Player{name: name, obj: obj}
}

// FailDelivery makes sendPacket fail for the named player.
func (f *Fixture) FailDelivery(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSend[name] = true
}

// FailHandle makes getHandle panic for the named player.
func (f *Fixture) FailHandle(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failHandle[name] = true
}

// Deliveries returns every recorded delivery in order.
func (f *Fixture) Deliveries() []Delivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Delivery(nil), f.deliveries...)
}

// DeliveredTo returns the names of players that received a packet, in order.
func (f *Fixture) DeliveredTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.deliveries))
	for _, d := range f.deliveries {
		names = append(names, d.Player)
	}
	return names
}

// PacketsConstructed returns how many packet constructors ran.
func (f *Fixture) PacketsConstructed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.constructed
}

// Player is an online player.
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

// HostObject returns the CraftPlayer instance, or nil for a nil player.
func (p *Player) HostObject() *host.Object {
	if p == nil {
		return nil
	}
	return p.obj
}

// Console is a viewer that is not a connected player.
type Console struct{}

// Name returns the console name.
func (Console) Name() string { return "CONSOLE" }
