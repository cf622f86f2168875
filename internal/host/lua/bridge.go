// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lua

import (
	"fmt"
	"math"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/textbridge/internal/host"
)

// Metatable names for host values exposed to Lua.
const (
	objectTypeName = "host.object"
	enumTypeName   = "host.enum"
)

// registerTypes installs the metatables for host objects and enum constants.
// Objects expose their fields by name; enum constants expose name and ordinal.
func registerTypes(L *lua.LState) {
	obj := L.NewTypeMetatable(objectTypeName)
	L.SetField(obj, "__index", L.NewFunction(func(L *lua.LState) int {
		o := checkObject(L, 1)
		v, _ := o.Get(L.CheckString(2))
		L.Push(toLua(L, v))
		return 1
	}))
	L.SetField(obj, "__newindex", L.NewFunction(func(L *lua.LState) int {
		o := checkObject(L, 1)
		v, err := toGo(L.Get(3))
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		o.Set(L.CheckString(2), v)
		return 0
	}))
	L.SetField(obj, "__eq", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(checkObject(L, 1) == checkObject(L, 2)))
		return 1
	}))
	L.SetField(obj, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(checkObject(L, 1).String()))
		return 1
	}))

	enum := L.NewTypeMetatable(enumTypeName)
	L.SetField(enum, "__index", L.NewFunction(func(L *lua.LState) int {
		e := checkEnum(L, 1)
		switch L.CheckString(2) {
		case "name":
			L.Push(lua.LString(e.Name))
		case "ordinal":
			L.Push(lua.LNumber(e.Ordinal))
		default:
			L.Push(lua.LNil)
		}
		return 1
	}))
	L.SetField(enum, "__eq", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(checkEnum(L, 1) == checkEnum(L, 2)))
		return 1
	}))
	L.SetField(enum, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(checkEnum(L, 1).Name))
		return 1
	}))
}

func checkObject(L *lua.LState, n int) *host.Object {
	ud := L.CheckUserData(n)
	o, ok := ud.Value.(*host.Object)
	if !ok {
		L.ArgError(n, "host object expected")
		return nil
	}
	return o
}

func checkEnum(L *lua.LState, n int) *host.EnumConstant {
	ud := L.CheckUserData(n)
	e, ok := ud.Value.(*host.EnumConstant)
	if !ok {
		L.ArgError(n, "enum constant expected")
		return nil
	}
	return e
}

// toLua converts a host value to Lua.
func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case string:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case bool:
		return lua.LBool(val)
	case *host.Object:
		ud := L.NewUserData()
		ud.Value = val
		L.SetMetatable(ud, L.GetTypeMetatable(objectTypeName))
		return ud
	case *host.EnumConstant:
		ud := L.NewUserData()
		ud.Value = val
		L.SetMetatable(ud, L.GetTypeMetatable(enumTypeName))
		return ud
	default:
		return lua.LString(fmt.Sprint(val))
	}
}

// toGo converts a Lua value to a host value. Tables and functions have no
// host representation.
func toGo(lv lua.LValue) (any, error) {
	switch v := lv.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LString:
		return string(v), nil
	case lua.LBool:
		return bool(v), nil
	case lua.LNumber:
		f := float64(v)
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return nil, oops.In("lua").With("value", f).New("host values must be integers")
		}
		if f < math.MinInt || f >= math.MaxInt {
			return nil, oops.In("lua").With("value", f).New("host integer out of range")
		}
		return int(f), nil
	case *lua.LUserData:
		switch v.Value.(type) {
		case *host.Object, *host.EnumConstant:
			return v.Value, nil
		}
		return nil, oops.In("lua").Errorf("userdata %T is not a host value", v.Value)
	default:
		return nil, oops.In("lua").With("type", lv.Type().String()).New("value has no host representation")
	}
}

// tableFields converts a table of field values.
func tableFields(t *lua.LTable) (map[string]any, error) {
	fields := make(map[string]any)
	if t == nil {
		return fields, nil
	}
	var err error
	t.ForEach(func(k, v lua.LValue) {
		if err != nil {
			return
		}
		key, ok := k.(lua.LString)
		if !ok {
			err = oops.In("lua").With("key", k.String()).New("field names must be strings")
			return
		}
		var gv any
		gv, err = toGo(v)
		if err != nil {
			err = oops.In("lua").With("field", string(key)).Wrap(err)
			return
		}
		fields[string(key)] = gv
	})
	return fields, err
}

// stringList reads an array of strings from t[key].
func stringList(t *lua.LTable, key string) ([]string, error) {
	v := t.RawGetString(key)
	if v == lua.LNil {
		return nil, nil
	}
	arr, ok := v.(*lua.LTable)
	if !ok {
		return nil, oops.In("lua").With("key", key).New("expected a list of strings")
	}
	out := make([]string, 0, arr.Len())
	for i := 1; i <= arr.Len(); i++ {
		s, ok := arr.RawGetInt(i).(lua.LString)
		if !ok {
			return nil, oops.In("lua").With("key", key).With("index", i).New("expected a string")
		}
		out = append(out, string(s))
	}
	return out, nil
}

// tableList reads an array of tables from t[key].
func tableList(t *lua.LTable, key string) ([]*lua.LTable, error) {
	v := t.RawGetString(key)
	if v == lua.LNil {
		return nil, nil
	}
	arr, ok := v.(*lua.LTable)
	if !ok {
		return nil, oops.In("lua").With("key", key).New("expected a list of tables")
	}
	out := make([]*lua.LTable, 0, arr.Len())
	for i := 1; i <= arr.Len(); i++ {
		e, ok := arr.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, oops.In("lua").With("key", key).With("index", i).New("expected a table")
		}
		out = append(out, e)
	}
	return out, nil
}
