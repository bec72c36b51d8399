package assets

import (
	"github.com/spaghettifunk/meshbridge/bridge/assets/loaders"
	"github.com/spaghettifunk/meshbridge/bridge/mesh"
)

// GeometryLoader reads and writes a geometry exchange format.
type GeometryLoader interface {
	Load(path string) (*mesh.Handle, error)
	Save(path string, h *mesh.Handle, opts loaders.WriteOptions) error
}

var registry = map[string]GeometryLoader{
	".obj": &loaders.OBJLoader{},
}

// LoaderFor returns the loader registered for a file extension such as ".obj".
func LoaderFor(ext string) (GeometryLoader, bool) {
	l, ok := registry[normalizeExt(ext)]
	return l, ok
}
