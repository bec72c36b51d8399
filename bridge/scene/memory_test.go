package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/meshbridge/bridge/assets/loaders"
	"github.com/spaghettifunk/meshbridge/bridge/core"
	"github.com/spaghettifunk/meshbridge/bridge/math"
	"github.com/spaghettifunk/meshbridge/bridge/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tri(name string) *mesh.Handle {
	return mesh.NewHandle(name, []math.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, []mesh.Face{{0, 1, 2}})
}

func TestMemory_AddRenamesDuplicates(t *testing.T) {
	s := NewMemory(ImportOptions{})
	s.Add(tri("Tri"))
	second := s.Add(tri("Tri"))
	third := s.Add(tri("Tri"))

	assert.Equal(t, "Tri.001", second.Name)
	assert.Equal(t, "Tri.002", third.Name)
}

func TestMemory_Selection(t *testing.T) {
	s := NewMemory(ImportOptions{})
	s.Add(tri("A"))
	s.Add(tri("B"))

	require.NoError(t, s.Select("B", "A", "B"))
	sel, err := s.ListSelection()
	require.NoError(t, err)
	require.Len(t, sel, 2)
	assert.Equal(t, "B", sel[0].Name)
	assert.Equal(t, "A", sel[1].Name)

	err = s.Select("missing")
	assert.True(t, errors.Is(err, core.ErrMeshNotFound))

	require.NoError(t, s.ClearSelection())
	sel, _ = s.ListSelection()
	assert.Empty(t, sel)
}

func TestMemory_DeleteDropsSelection(t *testing.T) {
	s := NewMemory(ImportOptions{})
	a := s.Add(tri("A"))
	require.NoError(t, s.Select("A"))

	require.NoError(t, s.DeleteMesh(a))
	sel, _ := s.ListSelection()
	assert.Empty(t, sel)
	assert.Empty(t, s.Objects())

	assert.True(t, errors.Is(s.DeleteMesh(a), core.ErrMeshNotFound))
	assert.True(t, errors.Is(s.UpdateMesh(a), core.ErrMeshNotFound))
}

func TestMemory_ImportGeometryFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exported.obj")
	require.NoError(t, (&loaders.OBJLoader{}).Save(path, tri("Sculpt"), loaders.WriteOptions{}))

	orientation := math.OrientationFromDegrees(90, 0, 0)
	s := NewMemory(ImportOptions{Orientation: orientation})
	h, err := s.ImportGeometryFile(path)
	require.NoError(t, err)
	require.NotNil(t, h)

	assert.Equal(t, "Sculpt", h.Name)
	assert.Equal(t, orientation, h.Orientation)
	assert.Len(t, s.Objects(), 1)
	sel, _ := s.ListSelection()
	assert.Empty(t, sel, "imported meshes are not selected")
}

func TestMemory_ImportGeometryFileErrors(t *testing.T) {
	dir := t.TempDir()
	s := NewMemory(ImportOptions{})

	_, err := s.ImportGeometryFile(filepath.Join(dir, "missing.obj"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	empty := filepath.Join(dir, "empty.obj")
	require.NoError(t, os.WriteFile(empty, []byte("# nothing\n"), 0o644))
	h, err := s.ImportGeometryFile(empty)
	require.NoError(t, err)
	assert.Nil(t, h)
	assert.Empty(t, s.Objects())

	fbx := filepath.Join(dir, "model.fbx")
	require.NoError(t, os.WriteFile(fbx, []byte("x"), 0o644))
	_, err = s.ImportGeometryFile(fbx)
	assert.True(t, errors.Is(err, core.ErrUnsupportedFormat))
}

func TestMemory_UpdateMeshKeepsNamesUnique(t *testing.T) {
	s := NewMemory(ImportOptions{})
	s.Add(tri("BridgeImport"))
	b := s.Add(tri("Sculpt"))

	b.Name = "BridgeImport"
	require.NoError(t, s.UpdateMesh(b))
	assert.Equal(t, "BridgeImport.001", b.Name)

	require.NoError(t, s.UpdateMesh(b))
	assert.Equal(t, "BridgeImport.001", b.Name, "a handle never collides with itself")
}
