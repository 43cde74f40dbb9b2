// Package entry defines the condensed wire schema for one captured snapshot.
// Every field is optional; consumers must not assume presence. Absent fields
// are omitted from the JSON encoding, never serialized as null.
package entry

// Entry is the wire form of one snapshot as shipped to a listener.
type Entry struct {
	// App identity of the instrumented program.
	App string `json:"a,omitempty"`
	// Client the entry is aimed at (a listener may filter on this).
	Client string `json:"c,omitempty"`
	// File of the innermost captured frame.
	File string `json:"f,omitempty"`
	// Free-form notes.
	Notes string `json:"n,omitempty"`
	// Stack frames, innermost first.
	Stack []StackFrame `json:"s,omitempty"`
	// Threads of execution observed at capture time.
	Threads []Thread `json:"t,omitempty"`
	// Scopes referenced by variables via Ref.
	Scopes []Scope `json:"sc,omitempty"`
	// Variables supplied at the call site.
	Variables []Variable `json:"v,omitempty"`
}

// StackFrame is one captured call frame. ID equals the frame's index in the
// original backtrace so listeners can cross-reference thread frame lists.
type StackFrame struct {
	ID       int    `json:"id"`
	File     string `json:"f,omitempty"`
	Function string `json:"fn,omitempty"`
	Line     int    `json:"l,omitempty"`
	Column   int    `json:"c,omitempty"`
}

// Thread describes one thread of execution and the frames that belong to it.
type Thread struct {
	ID   uint64 `json:"id"`
	Name string `json:"n,omitempty"`
	// Stack holds StackFrame IDs, innermost first.
	Stack []int `json:"s,omitempty"`
}

// Scope is a named group of variables, referenced by a Variable's Ref.
// Refs are unique within a single entry and carry no meaning beyond it.
type Scope struct {
	Ref       int        `json:"r"`
	Name      string     `json:"n,omitempty"`
	Variables []Variable `json:"v,omitempty"`
}

// Variable is one captured value. Type carries the inferred tag; function
// values additionally carry the function name in FuncName, object values an
// object-name hint in ObjectName. Nested members live in the scope named by
// Ref.
type Variable struct {
	Name       string      `json:"n,omitempty"`
	Value      interface{} `json:"v,omitempty"`
	Type       string      `json:"t,omitempty"`
	FuncName   string      `json:"fn,omitempty"`
	ObjectName string      `json:"on,omitempty"`
	Ref        int         `json:"r,omitempty"`
}
