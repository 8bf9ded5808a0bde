package registry

import (
	"sort"

	"github.com/vulcanize/go-codec-txmeta/format"
)

// Registry is a finalized type catalog. It is never mutated after Finalize.
type Registry struct {
	names      []string
	containers map[string]format.ContainerFormat
}

// Names returns the container names in sorted order
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Lookup returns the container declared under name
func (r *Registry) Lookup(name string) (format.ContainerFormat, bool) {
	c, ok := r.containers[name]
	return c, ok
}

// Len returns the number of containers
func (r *Registry) Len() int {
	return len(r.names)
}

// Reachable returns, sorted, every container name reachable from roots
func (r *Registry) Reachable(roots ...string) []string {
	seen := make(map[string]bool)
	stack := append([]string(nil), roots...)
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[name] {
			continue
		}
		c, ok := r.containers[name]
		if !ok {
			continue
		}
		seen[name] = true
		stack = append(stack, c.References()...)
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
