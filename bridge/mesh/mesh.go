package mesh

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/meshbridge/bridge/core"
	"github.com/spaghettifunk/meshbridge/bridge/math"
)

/** @brief The name of the shape key that holds the unposed geometry. */
const BasisName string = "Basis"

/** @brief A polygon, as 0-based indices into the owning handle's vertices. */
type Face []uint32

/**
 * @brief A persistent mesh object in the scene: vertex positions, face
 * topology, the object's orientation and an optional shape-key stack.
 */
type Handle struct {
	/** @brief Stable identifier, assigned when the handle is created. */
	ID uuid.UUID
	/** @brief The object name. Unique within a scene. */
	Name string
	/** @brief The name of the mesh data block. Exported files are named after it. */
	DataName string
	/** @brief Vertex positions, addressed by index. */
	Vertices []math.Vec3
	/** @brief Face topology. */
	Faces []Face
	/** @brief Object rotation as XYZ Euler angles in radians. */
	Orientation math.Vec3
	/** @brief Deformation layers. Nil when the mesh has none. */
	ShapeKeys *ShapeKeyStack
}

// NewHandle creates a handle with a fresh identifier. The data name defaults
// to the object name.
func NewHandle(name string, vertices []math.Vec3, faces []Face) *Handle {
	return &Handle{
		ID:       uuid.New(),
		Name:     name,
		DataName: name,
		Vertices: vertices,
		Faces:    faces,
	}
}

func (h *Handle) VertexCount() int {
	return len(h.Vertices)
}

// HasBasis reports whether the handle carries a shape-key stack with a Basis layer.
func (h *Handle) HasBasis() bool {
	return h.ShapeKeys != nil && h.ShapeKeys.Basis() != nil
}

// AddShapeKey appends a layer named name. The first layer added to a mesh
// without shape keys becomes the Basis and copies the current vertices;
// later layers start as a copy of the Basis.
func (h *Handle) AddShapeKey(name string) *ShapeKey {
	if h.ShapeKeys == nil || len(h.ShapeKeys.Layers) == 0 {
		h.ShapeKeys = &ShapeKeyStack{}
		if name == "" {
			name = BasisName
		}
		return h.ShapeKeys.add(name, h.Vertices)
	}
	ref := h.ShapeKeys.Layers[0].Data
	if basis := h.ShapeKeys.Basis(); basis != nil {
		ref = basis.Data
	}
	return h.ShapeKeys.add(name, ref)
}

// ClearShapeKeys drops the whole deformation stack.
func (h *Handle) ClearShapeKeys() {
	h.ShapeKeys = nil
}

// SetGeometry installs vertices and faces wholesale, discarding the previous arrays.
func (h *Handle) SetGeometry(vertices []math.Vec3, faces []Face) {
	h.Vertices = vertices
	h.Faces = faces
}

// Clone returns a deep copy with a new identifier.
func (h *Handle) Clone() *Handle {
	c := &Handle{
		ID:          uuid.New(),
		Name:        h.Name,
		DataName:    h.DataName,
		Vertices:    append([]math.Vec3(nil), h.Vertices...),
		Faces:       CloneFaces(h.Faces),
		Orientation: h.Orientation,
	}
	if h.ShapeKeys != nil {
		c.ShapeKeys = h.ShapeKeys.Clone()
	}
	return c
}

// Validate checks face bounds and that every shape-key layer has exactly
// one entry per vertex.
func (h *Handle) Validate() error {
	n := uint32(len(h.Vertices))
	for fi, f := range h.Faces {
		if len(f) < 3 {
			return fmt.Errorf("%w: mesh '%s' face %d has %d corners", core.ErrInvalidGeometry, h.Name, fi, len(f))
		}
		for _, idx := range f {
			if idx >= n {
				return fmt.Errorf("%w: mesh '%s' face %d references vertex %d of %d", core.ErrInvalidGeometry, h.Name, fi, idx, n)
			}
		}
	}
	if h.ShapeKeys != nil {
		for _, l := range h.ShapeKeys.Layers {
			if len(l.Data) != len(h.Vertices) {
				return fmt.Errorf("%w: mesh '%s' shape key '%s' has %d points for %d vertices",
					core.ErrInvalidGeometry, h.Name, l.Name, len(l.Data), len(h.Vertices))
			}
		}
	}
	return nil
}

// CloneFaces deep copies a face list.
func CloneFaces(faces []Face) []Face {
	if faces == nil {
		return nil
	}
	out := make([]Face, len(faces))
	for i, f := range faces {
		out[i] = append(Face(nil), f...)
	}
	return out
}

/**
 * @brief The result of importing a geometry file: the new mesh and the
 * orientation the importer captured for it. Lives for one reconciliation pass.
 */
type Transient struct {
	Mesh        *Handle
	Orientation math.Vec3
}

// NewTransient captures the handle's current orientation.
func NewTransient(h *Handle) *Transient {
	return &Transient{Mesh: h, Orientation: h.Orientation}
}
