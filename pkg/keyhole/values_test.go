package keyhole_test

import (
	"reflect"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/keyhole-io/keyhole/pkg/keyhole"
)

// chain builds a provider chain of the given length terminating in a literal,
// counting every provider invocation.
func chain(length int, final interface{}, invocations *int) keyhole.Value {
	if length == 0 {
		return keyhole.Literal(final)
	}
	return keyhole.Compute(func(d *keyhole.RemoteDebugger, ev *keyhole.EventData, step, maxSteps int) keyhole.Value {
		*invocations++
		return chain(length-1, final, invocations)
	})
}

var _ = Describe("value resolution", func() {
	var dbg *keyhole.RemoteDebugger

	BeforeEach(func() {
		dbg = keyhole.New()
	})

	It("returns literals untouched", func() {
		Expect(dbg.Resolve(keyhole.Literal("my-app"), nil, 0)).To(Equal("my-app"))
		Expect(dbg.Resolve(keyhole.Value{}, nil, 0)).To(BeNil())
	})

	It("walks a chain to its final literal", func() {
		count := 0
		v := chain(5, "done", &count)
		Expect(dbg.Resolve(v, nil, 0)).To(Equal("done"))
		Expect(count).To(Equal(5))
	})

	It("resolves a chain whose length equals the budget", func() {
		count := 0
		v := chain(8, 42, &count)
		Expect(dbg.Resolve(v, nil, 8)).To(Equal(42))
		Expect(count).To(Equal(8))
	})

	It("stops after exactly maxSteps invocations on an endless chain", func() {
		count := 0
		var endless keyhole.Provider
		endless = func(d *keyhole.RemoteDebugger, ev *keyhole.EventData, step, maxSteps int) keyhole.Value {
			count++
			return keyhole.Compute(endless)
		}
		out := dbg.Resolve(keyhole.Compute(endless), nil, 10)
		Expect(count).To(Equal(10))
		// whatever was last produced is handed back, still callable
		_, stillProvider := out.(keyhole.Provider)
		Expect(stillProvider).To(BeTrue())
	})

	It("re-resolves from scratch on every call", func() {
		calls := 0
		v := keyhole.Compute(func(d *keyhole.RemoteDebugger, ev *keyhole.EventData, step, maxSteps int) keyhole.Value {
			calls++
			return keyhole.Literal(calls)
		})
		Expect(dbg.Resolve(v, nil, 0)).To(Equal(1))
		Expect(dbg.Resolve(v, nil, 0)).To(Equal(2))
	})

	It("reports a panicking provider under the unwrap category", func() {
		collector := &keyhole.CollectingErrorHandler{}
		dbg.SetErrorHandler(collector)
		v := keyhole.Compute(func(d *keyhole.RemoteDebugger, ev *keyhole.EventData, step, maxSteps int) keyhole.Value {
			panic("bad provider")
		})
		Expect(dbg.Resolve(v, nil, 0)).To(BeNil())
		Expect(collector.Categories()).To(Equal([]string{keyhole.ErrorUnwrap}))
		Expect(collector.Err().Error()).To(ContainSubstring("bad provider"))
	})

	It("exposes the running provider on the event data, and only while it runs", func() {
		ev := &keyhole.EventData{}
		var running uintptr
		var p keyhole.Provider
		p = func(d *keyhole.RemoteDebugger, e *keyhole.EventData, step, maxSteps int) keyhole.Value {
			// funcs only compare to nil, so compare code pointers
			if e.Resolving != nil {
				running = reflect.ValueOf(e.Resolving).Pointer()
			}
			return keyhole.Literal("done")
		}

		Expect(ev.Resolving).To(BeNil())
		Expect(dbg.Resolve(keyhole.Compute(p), ev, 0)).To(Equal("done"))
		Expect(running).To(Equal(reflect.ValueOf(p).Pointer()))
		Expect(ev.Resolving).To(BeNil())
	})

	It("clears the back-reference even when the provider panics", func() {
		ev := &keyhole.EventData{}
		v := keyhole.Compute(func(d *keyhole.RemoteDebugger, e *keyhole.EventData, step, maxSteps int) keyhole.Value {
			panic("mid-resolution failure")
		})
		Expect(dbg.Resolve(v, ev, 0)).To(BeNil())
		Expect(ev.Resolving).To(BeNil())
	})

	It("passes the step count and budget to providers", func() {
		var steps []int
		budget := 0
		v := keyhole.Compute(func(d *keyhole.RemoteDebugger, ev *keyhole.EventData, step, maxSteps int) keyhole.Value {
			steps = append(steps, step)
			budget = maxSteps
			return keyhole.Compute(func(d *keyhole.RemoteDebugger, ev *keyhole.EventData, step, maxSteps int) keyhole.Value {
				steps = append(steps, step)
				return keyhole.Literal("end")
			})
		})
		Expect(dbg.Resolve(v, nil, 5)).To(Equal("end"))
		Expect(steps).To(Equal([]int{0, 1}))
		Expect(budget).To(Equal(5))
	})
})
