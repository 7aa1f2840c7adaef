package registry

import (
	"strings"

	"github.com/ethereum-optimism/infra/op-unit/types"
)

// NamingContext is the stack of suite names that prefixes test names while
// tests are registered.
type NamingContext struct {
	names []string
}

// Push enters a suite.
func (n *NamingContext) Push(name string) {
	n.names = append(n.names, name)
}

// Pop leaves the innermost suite. Popping an empty context does nothing.
func (n *NamingContext) Pop() {
	if len(n.names) == 0 {
		return
	}
	n.names = n.names[:len(n.names)-1]
}

// Prefix returns the suite names joined by the name separator.
func (n *NamingContext) Prefix() string {
	return strings.Join(n.names, types.NameSeparator)
}

// Path returns a copy of the suite names, outermost first.
func (n *NamingContext) Path() []string {
	if len(n.names) == 0 {
		return nil
	}
	return append([]string(nil), n.names...)
}

func (n *NamingContext) Len() int {
	return len(n.names)
}
