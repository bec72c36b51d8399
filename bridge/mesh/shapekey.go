package mesh

import "github.com/spaghettifunk/meshbridge/bridge/math"

// ShapeKey is one named deformation layer with a position per vertex.
type ShapeKey struct {
	Name string
	Data []math.Vec3
}

// ShapeKeyStack is the ordered set of deformation layers of a mesh.
type ShapeKeyStack struct {
	Layers []*ShapeKey
}

// Basis returns the layer named Basis, or nil when the stack has none.
func (s *ShapeKeyStack) Basis() *ShapeKey {
	return s.Layer(BasisName)
}

func (s *ShapeKeyStack) Layer(name string) *ShapeKey {
	if s == nil {
		return nil
	}
	for _, l := range s.Layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}

func (s *ShapeKeyStack) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Layers))
	for _, l := range s.Layers {
		names = append(names, l.Name)
	}
	return names
}

func (s *ShapeKeyStack) Clone() *ShapeKeyStack {
	c := &ShapeKeyStack{Layers: make([]*ShapeKey, len(s.Layers))}
	for i, l := range s.Layers {
		c.Layers[i] = &ShapeKey{Name: l.Name, Data: append([]math.Vec3(nil), l.Data...)}
	}
	return c
}

func (s *ShapeKeyStack) add(name string, from []math.Vec3) *ShapeKey {
	k := &ShapeKey{Name: name, Data: append([]math.Vec3(nil), from...)}
	s.Layers = append(s.Layers, k)
	return k
}
