// Package registry collects tests before they are run.
package registry

import (
	"runtime"
	"sync"

	"github.com/ethereum-optimism/infra/op-unit/source"
	"github.com/ethereum-optimism/infra/op-unit/testcase"
)

// Default is the process wide registry the unit package registers into.
var Default = New()

// Registry holds registered synchronous and asynchronous tests in
// registration order, plus the number of registrations made.
//
// Registration normally happens during package initialization, before any
// run. A registry must not be modified while a runner reads it.
type Registry struct {
	mu       sync.RWMutex
	tests    []*testcase.Test
	async    []*testcase.Test
	declared int
	naming   NamingContext
}

func New() *Registry {
	return &Registry{}
}

// Test registers a synchronous test tagged [name, tags...] at the caller's
// source position.
func (r *Registry) Test(name string, body testcase.Func, tags ...string) *testcase.Test {
	return r.TestAt(1, name, body, tags...)
}

// AsyncTest registers a test that runs on its own goroutine.
func (r *Registry) AsyncTest(name string, body testcase.Func, tags ...string) *testcase.Test {
	return r.AsyncTestAt(1, name, body, tags...)
}

// TestAt is Test with the call site taken skip frames above the caller, for
// wrappers that register on behalf of their own caller.
func (r *Registry) TestAt(skip int, name string, body testcase.Func, tags ...string) *testcase.Test {
	return r.add(skip+1, false, name, body, tags)
}

// AsyncTestAt is AsyncTest with a caller skip like TestAt.
func (r *Registry) AsyncTestAt(skip int, name string, body testcase.Func, tags ...string) *testcase.Test {
	return r.add(skip+1, true, name, body, tags)
}

func (r *Registry) add(skip int, async bool, name string, body testcase.Func, tags []string) *testcase.Test {
	file, line := "", 0
	if _, f, l, ok := runtime.Caller(skip + 1); ok {
		file, line = source.Relative(f), l
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tc := testcase.New(append([]string{name}, tags...), r.naming.Path(), file, line, async, body)
	if async {
		r.async = append(r.async, tc)
	} else {
		r.tests = append(r.tests, tc)
	}
	r.declared++
	return tc
}

// Suite registers everything fn registers under the suite name. It returns
// true so it can initialize a package level variable.
func (r *Registry) Suite(name string, fn func()) bool {
	r.BeginSuite(name)
	defer r.EndSuite()
	fn()
	return true
}

// BeginSuite enters a suite. Every call must be matched by EndSuite.
func (r *Registry) BeginSuite(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.naming.Push(name)
}

// EndSuite leaves the innermost suite.
func (r *Registry) EndSuite() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.naming.Pop()
}

// Prefix returns the current suite prefix.
func (r *Registry) Prefix() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.naming.Prefix()
}

// SuiteDepth returns the number of suites currently entered.
func (r *Registry) SuiteDepth() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.naming.Len()
}

// Tests returns the synchronous tests in registration order.
func (r *Registry) Tests() []*testcase.Test {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*testcase.Test(nil), r.tests...)
}

// AsyncTests returns the asynchronous tests in registration order.
func (r *Registry) AsyncTests() []*testcase.Test {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*testcase.Test(nil), r.async...)
}

// Declared returns the number of registrations, whatever will be run.
func (r *Registry) Declared() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.declared
}

// Reset forgets every registered test and suite.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tests = nil
	r.async = nil
	r.declared = 0
	r.naming = NamingContext{}
}
