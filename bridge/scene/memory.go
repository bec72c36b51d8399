package scene

import (
	"fmt"

	"github.com/spaghettifunk/meshbridge/bridge/assets/loaders"
	"github.com/spaghettifunk/meshbridge/bridge/core"
	"github.com/spaghettifunk/meshbridge/bridge/mesh"
)

// Memory is a scene held entirely in memory. Handles returned by it are the
// stored objects themselves, so mutations are visible immediately.
type Memory struct {
	options   ImportOptions
	objects   []*mesh.Handle
	selection []*mesh.Handle
}

func NewMemory(opts ImportOptions) *Memory {
	return &Memory{options: opts}
}

// Add inserts h, renaming it if the name is taken, and returns it.
func (s *Memory) Add(h *mesh.Handle) *mesh.Handle {
	h.Name = UniqueName(h.Name, s.hasName)
	s.objects = append(s.objects, h)
	return h
}

// Select appends the named meshes to the selection.
func (s *Memory) Select(names ...string) error {
	for _, n := range names {
		h, err := s.FindMeshByName(n)
		if err != nil {
			return err
		}
		if !s.isSelected(h) {
			s.selection = append(s.selection, h)
		}
	}
	return nil
}

// Objects returns every mesh in insertion order.
func (s *Memory) Objects() []*mesh.Handle {
	return append([]*mesh.Handle(nil), s.objects...)
}

func (s *Memory) FindMeshByName(name string) (*mesh.Handle, error) {
	for _, h := range s.objects {
		if h.Name == name {
			return h, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", core.ErrMeshNotFound, name)
}

func (s *Memory) ListSelection() ([]*mesh.Handle, error) {
	return append([]*mesh.Handle(nil), s.selection...), nil
}

func (s *Memory) ClearSelection() error {
	s.selection = nil
	return nil
}

func (s *Memory) ImportGeometryFile(path string) (*mesh.Handle, error) {
	h, err := ReadGeometry(path, s.options)
	if err != nil || h == nil {
		return nil, err
	}
	return s.Add(h), nil
}

func (s *Memory) ExportGeometryFile(h *mesh.Handle, path string, opts loaders.WriteOptions) error {
	return WriteGeometry(h, path, opts)
}

// UpdateMesh keeps object names unique: a handle renamed onto another
// object's name gets a numeric suffix.
func (s *Memory) UpdateMesh(h *mesh.Handle) error {
	for _, o := range s.objects {
		if o.ID == h.ID {
			h.Name = UniqueName(h.Name, func(n string) bool {
				other, err := s.FindMeshByName(n)
				return err == nil && other.ID != h.ID
			})
			return nil
		}
	}
	return fmt.Errorf("%w: %s", core.ErrMeshNotFound, h.Name)
}

func (s *Memory) DeleteMesh(h *mesh.Handle) error {
	for i, o := range s.objects {
		if o.ID == h.ID {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			s.dropFromSelection(h)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", core.ErrMeshNotFound, h.Name)
}

func (s *Memory) hasName(name string) bool {
	_, err := s.FindMeshByName(name)
	return err == nil
}

func (s *Memory) isSelected(h *mesh.Handle) bool {
	for _, sel := range s.selection {
		if sel.ID == h.ID {
			return true
		}
	}
	return false
}

func (s *Memory) dropFromSelection(h *mesh.Handle) {
	kept := s.selection[:0]
	for _, sel := range s.selection {
		if sel.ID != h.ID {
			kept = append(kept, sel)
		}
	}
	s.selection = kept
}
