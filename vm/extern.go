package vm

import "github.com/qwas982/svm/value"

// ExternPrimitive is a host primitive reachable from ExternCall (spec.md
// §4.C/§9: "The registry is an interface {name -> primitive}; primitives
// are injected at construction, not discovered dynamically."). A primitive
// pops the operand values it declares it needs via pop, computes, and
// pushes its result (typically 1/0) via push. It returns an error only to
// signal ExternCallError; it must not push anything itself on failure —
// the VM's recovery policy pushes the 0 uniformly.
type ExternPrimitive interface {
	Name() string
	Invoke(pop func() (value.Value, error), push func(value.Value) error) error
}

// ExternRegistry is the name->primitive lookup table consulted by
// ExternCall. Registered once at VM construction; never mutated during a
// run.
type ExternRegistry struct {
	primitives map[string]ExternPrimitive
}

// NewExternRegistry builds a registry from the given primitives.
func NewExternRegistry(primitives ...ExternPrimitive) *ExternRegistry {
	r := &ExternRegistry{primitives: make(map[string]ExternPrimitive, len(primitives))}
	for _, p := range primitives {
		r.primitives[p.Name()] = p
	}
	return r
}

func (r *ExternRegistry) Lookup(name string) (ExternPrimitive, bool) {
	p, ok := r.primitives[name]
	return p, ok
}
