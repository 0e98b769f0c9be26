package mesh

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownMesh = errors.New("unknown mesh")

type Builder func() *Geometry

// Registry maps mesh names to builders. Geometry is built on every Get so
// callers own the returned buffers.
type Registry struct {
	builders map[string]Builder
}

func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]Builder)}

	r.Register("sphere", func() *Geometry { return Sphere(4, 182, 182) })
	r.Register("teapot", func() *Geometry { return Teapot(2, 32) })
	r.Register("torus", func() *Geometry { return Torus(3, 1.2, 64, 256) })
	r.Register("torusknot", func() *Geometry { return TorusKnot(2.5, 0.8, 512, 64, 2, 3) })

	return r
}

func (r *Registry) Register(name string, fn Builder) {
	r.builders[name] = fn
}

func (r *Registry) Get(name string) (*Geometry, error) {
	fn, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownMesh, name, r.Names())
	}
	g := fn()
	g.Name = name
	return g, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Next returns the name after current in sorted order, wrapping around.
func (r *Registry) Next(current string) string {
	names := r.Names()
	if len(names) == 0 {
		return ""
	}
	for i, name := range names {
		if name == current {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}
