package formatter

import (
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/zjrosen/rangeslider/internal/log"
)

// Globals removed after the safe libraries are opened.
var blockedGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"require",
	"module",
	"collectgarbage",
	"getfenv",
	"setfenv",
}

// newSandbox creates a Lua state with only the base, table, string and math
// libraries, and optionally the datetime library.
func newSandbox(o options) *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:        true,
		IncludeGoStackTrace: false,
	})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	// print goes to the debug log instead of the terminal the UI owns
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		args := make([]any, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			args = append(args, L.Get(i).String())
		}
		log.Debug(log.CatFormatter, "print", "args", args)
		return 0
	}))

	if o.dateTime {
		installDateTime(L, o.location)
	}
	return L
}

// installDateTime registers the `datetime` table:
//
//	datetime.format(ms [, layout])  -- Go reference layout, RFC 3339 by default
//	datetime.date(ms)               -- "2006-01-02"
//	datetime.time(ms)               -- "15:04:05"
func installDateTime(L *lua.LState, loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	toTime := func(L *lua.LState) time.Time {
		ms := L.CheckNumber(1)
		return time.UnixMilli(int64(ms)).In(loc)
	}

	mod := L.NewTable()
	L.SetField(mod, "format", L.NewFunction(func(L *lua.LState) int {
		t := toTime(L)
		layout := L.OptString(2, time.RFC3339)
		L.Push(lua.LString(t.Format(layout)))
		return 1
	}))
	L.SetField(mod, "date", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(toTime(L).Format(time.DateOnly)))
		return 1
	}))
	L.SetField(mod, "time", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(toTime(L).Format(time.TimeOnly)))
		return 1
	}))
	L.SetGlobal("datetime", mod)
}
