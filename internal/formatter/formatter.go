// Package formatter compiles user-supplied value formatting expressions.
//
// Expressions are Lua. Either a function of one numeric argument:
//
//	function(v) return string.format("$%.2f", v) end
//
// or a bare expression over `value`:
//
//	string.format("%d%%", value)
//
// Evaluation runs in a sandboxed state with only the base, table, string and
// math libraries. Every failure path (empty expression, syntax error, runtime
// error, timeout, nil or non-scalar result) falls back to Default.
package formatter

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/zjrosen/rangeslider/internal/log"
)

// DefaultTimeout bounds a single formatter call.
const DefaultTimeout = 50 * time.Millisecond

// Func formats a numeric value for display.
type Func func(value float64) string

// Format calls f. It lets a plain function satisfy interfaces that expect a
// Format method.
func (f Func) Format(value float64) string {
	return f(value)
}

// Default is the plain numeric representation used whenever a custom
// expression is absent or fails.
func Default(value float64) string {
	switch {
	case math.IsNaN(value):
		return "NaN"
	case math.IsInf(value, 1):
		return "Infinity"
	case math.IsInf(value, -1):
		return "-Infinity"
	}
	abs := math.Abs(value)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		// FormatFloat pads the exponent to two digits
		s := strconv.FormatFloat(value, 'g', -1, 64)
		s = strings.Replace(s, "e-0", "e-", 1)
		return strings.Replace(s, "e+0", "e+", 1)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

type options struct {
	timeout  time.Duration
	dateTime bool
	location *time.Location
}

// Option configures Compile.
type Option func(*options)

// WithTimeout sets the per-call evaluation timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithDateTime injects the `datetime` library into the sandbox. Timestamps
// are Unix milliseconds and are rendered in loc (UTC when nil).
func WithDateTime(loc *time.Location) Option {
	return func(o *options) {
		o.dateTime = true
		o.location = loc
	}
}

// Formatter is a compiled expression. The zero value formats with Default.
//
// gopher-lua states are not goroutine-safe; Format serializes calls.
type Formatter struct {
	expr    string
	timeout time.Duration

	mu     sync.Mutex
	L      *lua.LState
	fn     *lua.LFunction
	warned bool
}

// Compile builds a Formatter from expr. It never fails: an expression that
// cannot be compiled yields a Formatter that always uses Default.
func Compile(expr string, opts ...Option) *Formatter {
	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	f := &Formatter{expr: expr, timeout: o.timeout}
	if strings.TrimSpace(expr) == "" {
		return f
	}

	L := newSandbox(o)
	fn, err := compileFunction(L, expr, o.timeout)
	if err != nil {
		log.Warn(log.CatFormatter, "Formatter expression rejected, using default", "expr", expr, "error", err)
		L.Close()
		return f
	}

	f.L = L
	f.fn = fn
	return f
}

// Valid reports whether the expression compiled to a function.
func (f *Formatter) Valid() bool {
	return f != nil && f.fn != nil
}

// Expr returns the source expression.
func (f *Formatter) Expr() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Format renders value with the compiled expression.
func (f *Formatter) Format(value float64) string {
	if !f.Valid() {
		return Default(value)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.L == nil {
		return Default(value)
	}

	result, err := f.call(value)
	if err != nil {
		f.diagnose("Formatter call failed, using default", value, err)
		return Default(value)
	}

	s, ok := stringify(result)
	if !ok {
		f.diagnose("Formatter returned a non-scalar value, using default", value, fmt.Errorf("got %s", result.Type()))
		return Default(value)
	}
	return s
}

// Close releases the Lua state. Format keeps working with Default afterwards.
func (f *Formatter) Close() error {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.L != nil {
		f.L.Close()
		f.L = nil
	}
	f.fn = nil
	return nil
}

func (f *Formatter) call(value float64) (result lua.LValue, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()
	f.L.SetContext(ctx)
	defer f.L.RemoveContext()

	if err := f.L.CallByParam(lua.P{Fn: f.fn, NRet: 1, Protect: true}, lua.LNumber(value)); err != nil {
		return lua.LNil, err
	}
	result = f.L.Get(-1)
	f.L.Pop(1)
	return result, nil
}

// diagnose logs the first failure as a warning and later ones at debug, since
// a broken expression fails on every render.
func (f *Formatter) diagnose(msg string, value float64, err error) {
	if !f.warned {
		f.warned = true
		log.Warn(log.CatFormatter, msg, "expr", f.expr, "value", value, "error", err)
		return
	}
	log.Debug(log.CatFormatter, msg, "expr", f.expr, "value", value, "error", err)
}

// stringify converts a scalar Lua result the way String() would in the host
// expression language. nil and non-scalars are rejected.
func stringify(v lua.LValue) (string, bool) {
	switch t := v.(type) {
	case lua.LString:
		return string(t), true
	case lua.LNumber:
		return Default(float64(t)), true
	case lua.LBool:
		if t {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}

// compileFunction evaluates expr as a function value first and, when that
// does not produce a function, as the body of function(value).
func compileFunction(L *lua.LState, expr string, timeout time.Duration) (*lua.LFunction, error) {
	if fn, err := evalFunction(L, "return ("+expr+"\n)", timeout); err == nil {
		return fn, nil
	}

	wrapped := "return function(value) return (" + expr + "\n) end"
	fn, err := evalFunction(L, wrapped, timeout)
	if err != nil {
		return nil, err
	}
	return fn, nil
}

func evalFunction(L *lua.LState, src string, timeout time.Duration) (fn *lua.LFunction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	chunk, err := L.LoadString(src)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	L.SetContext(ctx)
	defer L.RemoveContext()

	if err := L.CallByParam(lua.P{Fn: chunk, NRet: 1, Protect: true}); err != nil {
		return nil, err
	}
	ret := L.Get(-1)
	L.Pop(1)

	fn, ok := ret.(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("expression evaluated to %s, not a function", ret.Type())
	}
	return fn, nil
}
