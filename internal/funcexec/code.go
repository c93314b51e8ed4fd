package funcexec

import (
	"context"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
)

// executeCode runs caller-authored Lua in an isolated state: no io, os,
// network, or package library, only the whitelisted inputs as globals, and a
// hard deadline. The chunk's return value becomes the output variable; any
// failure degrades to a nil output.
func (e *Executor) executeCode(ctx context.Context, cfg *domain.CodeConfig, bindings domain.Bindings) Result {
	output := cfg.Output
	if output == "" {
		e.logger.Warn("code function without output variable")
		return Result{Success: false, Variables: domain.Bindings{}}
	}

	timeout := e.codeTimeout
	if cfg.TimeoutMillis > 0 {
		timeout = time.Duration(cfg.TimeoutMillis) * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	L.SetContext(ctx)

	for _, open := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(open.fn))
		L.Push(lua.LString(open.name))
		L.Call(1, 0)
	}
	// The base library leaks file access through its loaders.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "print"} {
		L.SetGlobal(name, lua.LNil)
	}

	for _, name := range cfg.Inputs {
		L.SetGlobal(name, toLua(L, bindings[name]))
	}

	if err := L.DoString(cfg.Source); err != nil {
		e.logger.Warn("code function failed", "err", err)
		return Result{Success: false, Variables: domain.Bindings{output: nil}}
	}

	var value any
	if L.GetTop() > 0 {
		value = fromLua(L.Get(-1))
	}
	return Result{Success: true, Variables: domain.Bindings{output: value}}
}

func toLua(L *lua.LState, v any) lua.LValue {
	switch t := v.(type) {
	case nil:
		return lua.LNil
	case string:
		return lua.LString(t)
	case bool:
		return lua.LBool(t)
	case float64:
		return lua.LNumber(t)
	case int:
		return lua.LNumber(t)
	case int64:
		return lua.LNumber(t)
	case []any:
		tbl := L.NewTable()
		for _, item := range t {
			tbl.Append(toLua(L, item))
		}
		return tbl
	case map[string]any:
		tbl := L.NewTable()
		for k, item := range t {
			tbl.RawSetString(k, toLua(L, item))
		}
		return tbl
	default:
		return lua.LString(domain.Stringify(t))
	}
}

func fromLua(v lua.LValue) any {
	switch t := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(t)
	case lua.LNumber:
		return float64(t)
	case lua.LString:
		return string(t)
	case *lua.LTable:
		// Sequential tables decode as arrays, everything else as objects.
		if t.Len() > 0 {
			arr := make([]any, 0, t.Len())
			for i := 1; i <= t.Len(); i++ {
				arr = append(arr, fromLua(t.RawGetInt(i)))
			}
			return arr
		}
		obj := make(map[string]any)
		t.ForEach(func(k, val lua.LValue) {
			obj[k.String()] = fromLua(val)
		})
		return obj
	default:
		return v.String()
	}
}
