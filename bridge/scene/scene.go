// Package scene defines the host collaborator the bridge works against: a
// mesh store keyed by name, a selection set, and geometry file import and
// export. The bridge never depends on a concrete host.
package scene

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/meshbridge/bridge/assets"
	"github.com/spaghettifunk/meshbridge/bridge/assets/loaders"
	"github.com/spaghettifunk/meshbridge/bridge/core"
	"github.com/spaghettifunk/meshbridge/bridge/math"
	"github.com/spaghettifunk/meshbridge/bridge/mesh"
)

type Scene interface {
	// FindMeshByName returns core.ErrMeshNotFound when no mesh has that name.
	FindMeshByName(name string) (*mesh.Handle, error)
	// ListSelection returns the selected meshes in selection order.
	ListSelection() ([]*mesh.Handle, error)
	ClearSelection() error
	// ImportGeometryFile adds the file's mesh to the scene, unselected, with
	// the orientation the importer captures. A file without geometry yields
	// a nil handle and no error.
	ImportGeometryFile(path string) (*mesh.Handle, error)
	ExportGeometryFile(h *mesh.Handle, path string, opts loaders.WriteOptions) error
	// UpdateMesh persists changes made to a handle returned by the scene.
	UpdateMesh(h *mesh.Handle) error
	// DeleteMesh removes the mesh and its backing data from the scene.
	DeleteMesh(h *mesh.Handle) error
}

// ImportOptions describe what the scene's importer does to a freshly read file.
type ImportOptions struct {
	// Orientation is the rotation (radians, XYZ) the importer assigns to the
	// new object, e.g. the axis conversion from a Y-up file.
	Orientation math.Vec3
}

// ReadGeometry loads a file through the loader registered for its
// extension and stamps the import orientation on the result.
func ReadGeometry(path string, opts ImportOptions) (*mesh.Handle, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("geometry file not found: %s: %w", path, err)
	}
	loader, ok := assets.LoaderFor(filepath.Ext(path))
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, filepath.Ext(path))
	}
	h, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, nil
	}
	h.Orientation = opts.Orientation
	return h, nil
}

// WriteGeometry saves h through the loader registered for the path's extension.
func WriteGeometry(h *mesh.Handle, path string, opts loaders.WriteOptions) error {
	loader, ok := assets.LoaderFor(filepath.Ext(path))
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, filepath.Ext(path))
	}
	return loader.Save(path, h, opts)
}

// UniqueName returns name, or name with a numeric suffix (".001", ".002")
// when taken reports it is already in use.
func UniqueName(name string, taken func(string) bool) string {
	if !taken(name) {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%03d", name, i)
		if !taken(candidate) {
			return candidate
		}
	}
}
