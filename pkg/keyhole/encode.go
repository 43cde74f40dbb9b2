package keyhole

import (
	"encoding/json"
	"fmt"
	"reflect"
	"runtime"
	"sort"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"

	"github.com/keyhole-io/keyhole/pkg/entry"
	"github.com/keyhole-io/keyhole/pkg/options"
)

// Transformer post-processes the serialized entry into the final
// transmissible buffer, e.g. adding compression or encryption. The default
// passes the UTF-8 JSON encoding through unchanged.
type Transformer interface {
	Transform(buf []byte) ([]byte, error)
}

// TransformerFunc adapts a function to the Transformer interface.
type TransformerFunc func(buf []byte) ([]byte, error)

func (f TransformerFunc) Transform(buf []byte) ([]byte, error) {
	return f(buf)
}

func identityTransform(buf []byte) ([]byte, error) {
	return buf, nil
}

// VariableTyper infers the wire type tag for one variable value. The policy
// is pluggable; see DefaultVariableTyper for the stock tagging.
type VariableTyper func(v interface{}) string

// DefaultVariableTyper tags nil, bool, string and all numeric kinds
// directly, funcs as "function", slices and arrays as "array", and maps,
// structs and pointers to structs as "object". Anything else is rendered as
// an opaque "object".
func DefaultVariableTyper(v interface{}) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case bool:
		return "bool"
	case string:
		return "string"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "bool"
	case reflect.String:
		return "string"
	case reflect.Func:
		return "function"
	case reflect.Slice, reflect.Array:
		return "array"
	}
	return "object"
}

// BuildEntry converts a snapshot into its condensed wire form. Variable
// values wrapped in a keyhole.Value are resolved here, field by field.
func (d *RemoteDebugger) BuildEntry(ev *EventData) *entry.Entry {
	e := &entry.Entry{
		App:    ev.App,
		Client: ev.TargetClient,
	}

	for i, fr := range ev.Backtrace {
		e.Stack = append(e.Stack, entry.StackFrame{
			ID:       i,
			File:     fr.File,
			Function: fr.Function,
			Line:     fr.Line,
		})
	}
	if len(e.Stack) > 0 {
		e.File = e.Stack[0].File
	}

	if ev.GoroutineID != 0 {
		th := entry.Thread{
			ID:   ev.GoroutineID,
			Name: fmt.Sprintf("goroutine-%d", ev.GoroutineID),
		}
		if ev.Hostname != "" {
			th.Name = fmt.Sprintf("%s/goroutine-%d", ev.Hostname, ev.GoroutineID)
		}
		for i := range e.Stack {
			th.Stack = append(th.Stack, i)
		}
		e.Threads = append(e.Threads, th)
	}

	enc := &entryEncoder{debugger: d, ev: ev, typer: d.variableTyper()}
	// Map iteration order is random; sort for a canonical encoding.
	names := make([]string, 0, len(ev.Vars))
	for name := range ev.Vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e.Variables = append(e.Variables, enc.variable(name, ev.Vars[name], 0))
	}
	e.Scopes = enc.scopes
	return e
}

// Encode serializes the entry for ev and applies the configured transformer.
func (d *RemoteDebugger) Encode(ev *EventData) ([]byte, error) {
	buf, err := json.Marshal(d.BuildEntry(ev))
	if err != nil {
		return nil, errors.Wrap(err, "serializing entry")
	}
	out, err := d.transform(buf)
	if err != nil {
		return nil, errors.Wrap(err, "transforming entry")
	}
	return out, nil
}

func (d *RemoteDebugger) transform(buf []byte) (out []byte, err error) {
	d.mu.Lock()
	t := d.transformer
	d.mu.Unlock()
	if t == nil {
		return buf, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("transformer panicked: %v", r)
		}
	}()
	return t.Transform(buf)
}

func (d *RemoteDebugger) variableTyper() VariableTyper {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.typer == nil {
		return DefaultVariableTyper
	}
	return d.typer
}

// entryEncoder tracks scope reference allocation for one entry. Refs start
// at 1 so a zero Ref on a variable means "no nested scope".
type entryEncoder struct {
	debugger *RemoteDebugger
	ev       *EventData
	typer    VariableTyper
	nextRef  int
	scopes   []entry.Scope
}

func (e *entryEncoder) variable(name string, val interface{}, depth int) entry.Variable {
	if wrapped, ok := val.(Value); ok {
		val = e.debugger.Resolve(wrapped, e.ev, 0)
	}
	tag := e.typer(val)
	v := entry.Variable{Name: name, Type: tag}

	switch tag {
	case "nil":
	case "bool", "string", "number":
		v.Value = val
	case "function":
		v.FuncName = funcName(val)
	case "array":
		if depth < options.ScopeDepth {
			v.Ref = e.arrayScope(name, val, depth)
		} else {
			v.Value = render(val)
		}
	default:
		v.ObjectName = objectName(val)
		if depth < options.ScopeDepth {
			if ref, ok := e.objectScope(name, val, depth); ok {
				v.Ref = ref
				break
			}
		}
		v.Value = render(val)
	}
	return v
}

func (e *entryEncoder) allocScope(name string) int {
	e.nextRef++
	e.scopes = append(e.scopes, entry.Scope{Ref: e.nextRef, Name: name})
	return e.nextRef
}

func (e *entryEncoder) setScopeVars(ref int, vars []entry.Variable) {
	for i := range e.scopes {
		if e.scopes[i].Ref == ref {
			e.scopes[i].Variables = vars
			return
		}
	}
}

func (e *entryEncoder) arrayScope(name string, val interface{}, depth int) int {
	ref := e.allocScope(name)
	rv := reflect.ValueOf(val)
	var members []entry.Variable
	for i := 0; i < rv.Len(); i++ {
		members = append(members, e.variable(fmt.Sprintf("%d", i), valueInterface(rv.Index(i)), depth+1))
	}
	e.setScopeVars(ref, members)
	return ref
}

// objectScope expands maps, structs and pointers to structs into a scope of
// member variables. It reports false for kinds it cannot expand.
func (e *entryEncoder) objectScope(name string, val interface{}, depth int) (int, bool) {
	rv := reflect.ValueOf(val)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return 0, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		ref := e.allocScope(name)
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprintf("%v", keys[i]) < fmt.Sprintf("%v", keys[j])
		})
		var members []entry.Variable
		for _, k := range keys {
			members = append(members, e.variable(fmt.Sprintf("%v", k), valueInterface(rv.MapIndex(k)), depth+1))
		}
		e.setScopeVars(ref, members)
		return ref, true
	case reflect.Struct:
		ref := e.allocScope(name)
		var members []entry.Variable
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).PkgPath != "" {
				// unexported
				continue
			}
			members = append(members, e.variable(t.Field(i).Name, valueInterface(rv.Field(i)), depth+1))
		}
		e.setScopeVars(ref, members)
		return ref, true
	}
	return 0, false
}

func funcName(val interface{}) string {
	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return ""
	}
	if fn := runtime.FuncForPC(rv.Pointer()); fn != nil {
		return fn.Name()
	}
	return ""
}

func objectName(val interface{}) string {
	if val == nil {
		return ""
	}
	t := reflect.TypeOf(val)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.String()
}

func valueInterface(rv reflect.Value) interface{} {
	if !rv.IsValid() || !rv.CanInterface() {
		return nil
	}
	return rv.Interface()
}

func render(val interface{}) string {
	return spew.Sprintf("%+v", val)
}
