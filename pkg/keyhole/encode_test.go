package keyhole_test

import (
	"encoding/json"
	"strings"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/tidwall/gjson"

	"github.com/keyhole-io/keyhole/pkg/entry"
	"github.com/keyhole-io/keyhole/pkg/keyhole"
	"github.com/keyhole-io/keyhole/pkg/stacktrace"
)

var _ = Describe("entry encoding", func() {
	var dbg *keyhole.RemoteDebugger

	BeforeEach(func() {
		dbg = keyhole.New()
	})

	newEvent := func(vars keyhole.Vars) *keyhole.EventData {
		return &keyhole.EventData{
			Backtrace: []stacktrace.Frame{
				{File: "svc/checkout.go", Function: "svc.Checkout", Line: 42},
				{File: "svc/main.go", Function: "main.main", Line: 10},
			},
			Timestamp:    time.Now(),
			App:          "shop",
			TargetClient: "inspector-1",
			Condition:    true,
			Vars:         vars,
			Debugger:     dbg,
		}
	}

	It("round-trips one frame and one variable through the condensed keys", func() {
		ev := newEvent(keyhole.Vars{"total": 99.5})
		buf, err := dbg.Encode(ev)
		Expect(err).NotTo(HaveOccurred())

		var decoded entry.Entry
		Expect(json.Unmarshal(buf, &decoded)).To(Succeed())

		Expect(decoded.Stack[0]).To(Equal(entry.StackFrame{
			ID:       0,
			File:     "svc/checkout.go",
			Function: "svc.Checkout",
			Line:     42,
		}))
		Expect(decoded.Variables[0].Name).To(Equal("total"))
		Expect(decoded.Variables[0].Type).To(Equal("number"))
		Expect(decoded.Variables[0].Value).To(BeNumerically("==", 99.5))
	})

	It("emits the condensed keys and omits absent fields", func() {
		ev := newEvent(keyhole.Vars{"user": "ada"})
		buf, err := dbg.Encode(ev)
		Expect(err).NotTo(HaveOccurred())

		Expect(gjson.GetBytes(buf, "a").String()).To(Equal("shop"))
		Expect(gjson.GetBytes(buf, "c").String()).To(Equal("inspector-1"))
		Expect(gjson.GetBytes(buf, "f").String()).To(Equal("svc/checkout.go"))
		Expect(gjson.GetBytes(buf, "s.0.fn").String()).To(Equal("svc.Checkout"))
		Expect(gjson.GetBytes(buf, "s.1.l").Int()).To(Equal(int64(10)))
		Expect(gjson.GetBytes(buf, "v.0.n").String()).To(Equal("user"))
		Expect(gjson.GetBytes(buf, "v.0.t").String()).To(Equal("string"))

		// absent fields are omitted, never null
		Expect(strings.Contains(string(buf), "null")).To(BeFalse())
		Expect(gjson.GetBytes(buf, "n").Exists()).To(BeFalse())
	})

	It("tags function variables and records their name", func() {
		ev := newEvent(keyhole.Vars{"handler": strings.ToUpper})
		e := dbg.BuildEntry(ev)
		Expect(e.Variables[0].Type).To(Equal("function"))
		Expect(e.Variables[0].FuncName).To(ContainSubstring("strings.ToUpper"))
	})

	It("expands object variables into scopes with entry-local refs", func() {
		type order struct {
			ID    int
			Total float64
		}
		ev := newEvent(keyhole.Vars{"order": order{ID: 7, Total: 12.5}})
		e := dbg.BuildEntry(ev)

		v := e.Variables[0]
		Expect(v.Type).To(Equal("object"))
		Expect(v.ObjectName).To(ContainSubstring("order"))
		Expect(v.Ref).NotTo(BeZero())

		Expect(e.Scopes).To(HaveLen(1))
		Expect(e.Scopes[0].Ref).To(Equal(v.Ref))
		members := e.Scopes[0].Variables
		Expect(members).To(HaveLen(2))
		Expect(members[0].Name).To(Equal("ID"))
		Expect(members[1].Name).To(Equal("Total"))
	})

	It("keeps refs unique within one entry", func() {
		ev := newEvent(keyhole.Vars{
			"a": map[string]int{"x": 1},
			"b": []string{"p", "q"},
		})
		e := dbg.BuildEntry(ev)

		seen := map[int]bool{}
		for _, sc := range e.Scopes {
			Expect(seen[sc.Ref]).To(BeFalse())
			seen[sc.Ref] = true
		}
		Expect(e.Scopes).To(HaveLen(2))
	})

	It("resolves provider-backed variable values lazily", func() {
		resolved := false
		ev := newEvent(keyhole.Vars{
			"lazy": keyhole.Compute(func(d *keyhole.RemoteDebugger, ev *keyhole.EventData, step, maxSteps int) keyhole.Value {
				resolved = true
				return keyhole.Literal("computed")
			}),
		})
		Expect(resolved).To(BeFalse())
		e := dbg.BuildEntry(ev)
		Expect(resolved).To(BeTrue())
		Expect(e.Variables[0].Value).To(Equal("computed"))
		Expect(e.Variables[0].Type).To(Equal("string"))
	})

	It("encodes variables in a stable name order", func() {
		ev := newEvent(keyhole.Vars{"zeta": 1, "alpha": 2, "mid": 3})
		e := dbg.BuildEntry(ev)
		Expect([]string{e.Variables[0].Name, e.Variables[1].Name, e.Variables[2].Name}).
			To(Equal([]string{"alpha", "mid", "zeta"}))
	})

	It("honors a custom variable typer", func() {
		dbg.SetVariableTyper(func(v interface{}) string { return "string" })
		ev := newEvent(keyhole.Vars{"n": 5})
		e := dbg.BuildEntry(ev)
		Expect(e.Variables[0].Type).To(Equal("string"))
	})

	It("describes the goroutine as a thread referencing all frames", func() {
		ev := newEvent(nil)
		ev.GoroutineID = 7
		ev.Hostname = "bench-1"
		e := dbg.BuildEntry(ev)
		Expect(e.Threads).To(HaveLen(1))
		Expect(e.Threads[0].ID).To(Equal(uint64(7)))
		Expect(e.Threads[0].Name).To(Equal("bench-1/goroutine-7"))
		Expect(e.Threads[0].Stack).To(Equal([]int{0, 1}))
	})
})
