package reconcile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spaghettifunk/meshbridge/bridge/math"
	"github.com/spaghettifunk/meshbridge/bridge/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-5)

func vecs(n int, f func(i int) math.Vec3) []math.Vec3 {
	out := make([]math.Vec3, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func fan(n int) []mesh.Face {
	var faces []mesh.Face
	for i := 1; i+1 < n; i++ {
		faces = append(faces, mesh.Face{0, uint32(i), uint32(i + 1)})
	}
	return faces
}

func handle(name string, verts []math.Vec3) *mesh.Handle {
	return mesh.NewHandle(name, verts, fan(len(verts)))
}

func transient(verts []math.Vec3, orientation math.Vec3) *mesh.Transient {
	h := handle("exported", verts)
	h.Orientation = orientation
	return mesh.NewTransient(h)
}

func TestReconcile_BakeIntoBasis(t *testing.T) {
	target := handle("Head", vecs(4, func(int) math.Vec3 { return math.Vec3{} }))
	target.AddShapeKey(mesh.BasisName)
	smile := target.AddShapeKey("Smile")
	smile.Data[2] = math.Vec3{0, 0, 5}
	before := append([]math.Vec3(nil), target.Vertices...)

	imported := transient([]math.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 1}}, math.Vec3{})
	res := New("").Reconcile(imported, []*mesh.Handle{target})

	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, KindBakedInto, res.Outcomes[0].Kind)
	assert.Equal(t, "Head", res.Outcomes[0].Name)
	assert.True(t, res.Consumed())

	assert.Equal(t, []math.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 1}}, target.ShapeKeys.Basis().Data)
	assert.Equal(t, before, target.Vertices, "bake must not touch the vertex array")
	assert.Equal(t, math.Vec3{0, 0, 5}, target.ShapeKeys.Layer("Smile").Data[2], "other layers stay untouched")
	assert.Equal(t, math.Vec3{}, target.Orientation)
	require.NoError(t, target.Validate())
}

func TestReconcile_BakeAppliesCorrection(t *testing.T) {
	target := handle("Head", vecs(3, func(int) math.Vec3 { return math.Vec3{} }))
	target.AddShapeKey(mesh.BasisName)
	target.Orientation = math.Vec3{0.3, 0.2, 0.1}

	orientation := math.OrientationFromDegrees(90, 0, 0)
	src := []math.Vec3{{0, 1, 0}, {0, 0, 1}, {2, 0, 0}}
	res := New("").Reconcile(transient(src, orientation), []*mesh.Handle{target})

	assert.Equal(t, KindBakedInto, res.Outcomes[0].Kind)
	want := []math.Vec3{{0, 0, 1}, {0, -1, 0}, {2, 0, 0}}
	if diff := cmp.Diff(want, target.ShapeKeys.Basis().Data, approx); diff != "" {
		t.Errorf("basis mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, math.Vec3{}, target.Orientation)
}

func TestReconcile_ReplaceWithoutShapeKeys(t *testing.T) {
	target := handle("Body", vecs(3, func(i int) math.Vec3 { return math.Vec3{float32(i), 9, 9} }))
	target.Orientation = math.Vec3{1, 1, 1}

	src := []math.Vec3{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}}
	imported := transient(src, math.OrientationFromDegrees(0, 0, 90))
	res := New("").Reconcile(imported, []*mesh.Handle{target})

	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, KindReplaced, res.Outcomes[0].Kind)
	assert.False(t, res.Outcomes[0].ShapeKeysDropped)
	want := []math.Vec3{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}}
	if diff := cmp.Diff(want, target.Vertices, approx); diff != "" {
		t.Errorf("vertices mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, imported.Mesh.Faces, target.Faces)
	assert.Equal(t, math.Vec3{}, target.Orientation)

	// installed geometry is a copy
	target.Vertices[0] = math.Vec3{42, 42, 42}
	target.Faces[0][0] = 2
	assert.Equal(t, src[0], imported.Mesh.Vertices[0])
	assert.Equal(t, uint32(0), imported.Mesh.Faces[0][0])
}

func TestReconcile_ReplaceKeepsStaleLayersWithoutBasis(t *testing.T) {
	target := handle("Body", vecs(3, func(int) math.Vec3 { return math.Vec3{} }))
	target.AddShapeKey("Key 1")

	res := New("").Reconcile(transient([]math.Vec3{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}}, math.Vec3{}), []*mesh.Handle{target})

	assert.Equal(t, KindReplaced, res.Outcomes[0].Kind)
	require.NotNil(t, target.ShapeKeys, "a stack without Basis is left attached")
	assert.Equal(t, []string{"Key 1"}, target.ShapeKeys.Names())
	assert.Equal(t, []math.Vec3{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}}, target.Vertices)
	require.NoError(t, target.Validate(), "counts still match")
}

func TestReconcile_MismatchedCountsReplaceAndDropShapeKeys(t *testing.T) {
	target := handle("Body", vecs(5, func(i int) math.Vec3 { return math.Vec3{float32(i), 0, 0} }))
	target.AddShapeKey(mesh.BasisName)
	target.AddShapeKey("Smile")

	src := vecs(6, func(i int) math.Vec3 { return math.Vec3{0, float32(i), 0} })
	res := New("").Reconcile(transient(src, math.Vec3{}), []*mesh.Handle{target})

	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, KindReplaced, res.Outcomes[0].Kind)
	assert.True(t, res.Outcomes[0].ShapeKeysDropped)
	assert.Nil(t, target.ShapeKeys)
	assert.Equal(t, src, target.Vertices)
	assert.Len(t, target.Faces, 4)
	require.NoError(t, target.Validate())
}

func TestReconcile_MultipleTargetsInSelectionOrder(t *testing.T) {
	baked := handle("Baked", vecs(3, func(int) math.Vec3 { return math.Vec3{} }))
	baked.AddShapeKey(mesh.BasisName)
	replaced := handle("Replaced", vecs(3, func(int) math.Vec3 { return math.Vec3{} }))
	full := handle("Full", vecs(7, func(int) math.Vec3 { return math.Vec3{} }))

	src := []math.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	res := New("").Reconcile(transient(src, math.Vec3{}), []*mesh.Handle{full, baked, replaced})

	require.Len(t, res.Outcomes, 3)
	assert.Equal(t, []Kind{KindReplaced, KindBakedInto, KindReplaced},
		[]Kind{res.Outcomes[0].Kind, res.Outcomes[1].Kind, res.Outcomes[2].Kind})
	assert.Equal(t, []string{"Full", "Baked", "Replaced"},
		[]string{res.Outcomes[0].Name, res.Outcomes[1].Name, res.Outcomes[2].Name})
	assert.Equal(t, 2, res.Count(KindReplaced))
	assert.Len(t, res.Mutated(), 3)
	assert.False(t, res.Promoted)
}

func TestReconcile_PromoteWhenNoTargets(t *testing.T) {
	existing := handle("Other", vecs(3, func(i int) math.Vec3 { return math.Vec3{float32(i), 0, 0} }))
	snapshot := existing.Clone()

	src := []math.Vec3{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}}
	imported := transient(src, math.OrientationFromDegrees(90, 0, 0))
	faces := mesh.CloneFaces(imported.Mesh.Faces)

	res := New("Promoted").Reconcile(imported, nil)

	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, KindPromoted, res.Outcomes[0].Kind)
	assert.Equal(t, "Promoted", res.Outcomes[0].Name)
	assert.True(t, res.Promoted)
	assert.False(t, res.Consumed())

	h := imported.Mesh
	assert.Equal(t, "Promoted", h.Name)
	assert.Equal(t, math.Vec3{}, h.Orientation)
	assert.Equal(t, math.Vec3{}, imported.Orientation)
	assert.Equal(t, faces, h.Faces, "topology is unchanged")
	want := []math.Vec3{{0, 0, 1}, {0, -1, 0}, {1, 0, 0}}
	if diff := cmp.Diff(want, h.Vertices, approx); diff != "" {
		t.Errorf("vertices mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, snapshot.Vertices, existing.Vertices)
	assert.Equal(t, "Other", existing.Name)
}

func TestReconcile_DefaultPromotedName(t *testing.T) {
	imported := transient([]math.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, math.Vec3{})
	res := New("").Reconcile(imported, []*mesh.Handle{})
	assert.Equal(t, DefaultPromotedName, res.Outcomes[0].Name)
}

func TestReconcile_ZeroOrientationLeavesCoordinatesUnchanged(t *testing.T) {
	src := []math.Vec3{{1.25, -3.5, 0.001}, {1e4, -1e-4, 7}, {0, 0, 0}}
	target := handle("T", vecs(4, func(int) math.Vec3 { return math.Vec3{} }))

	New("").Reconcile(transient(src, math.Vec3{}), []*mesh.Handle{target})
	assert.Equal(t, src, target.Vertices)
}

func TestReconcile_SkipsIneligibleTargets(t *testing.T) {
	imported := transient([]math.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, math.Vec3{})
	target := handle("T", vecs(3, func(int) math.Vec3 { return math.Vec3{} }))

	res := New("").Reconcile(imported, []*mesh.Handle{nil, target, imported.Mesh, target})

	require.Len(t, res.Outcomes, 4)
	assert.Equal(t, KindSkipped, res.Outcomes[0].Kind)
	assert.Equal(t, reasonNoMesh, res.Outcomes[0].Reason)
	assert.Equal(t, KindReplaced, res.Outcomes[1].Kind)
	assert.Equal(t, KindSkipped, res.Outcomes[2].Kind)
	assert.Equal(t, reasonSelf, res.Outcomes[2].Reason)
	assert.Equal(t, KindSkipped, res.Outcomes[3].Kind)
	assert.Equal(t, reasonDuplicate, res.Outcomes[3].Reason)
	assert.True(t, res.Consumed())
	assert.Len(t, res.Mutated(), 1)
}

func TestReconcile_OnlyIneligibleTargetsPromotes(t *testing.T) {
	imported := transient([]math.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, math.Vec3{})
	res := New("").Reconcile(imported, []*mesh.Handle{nil})

	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, KindSkipped, res.Outcomes[0].Kind)
	assert.Equal(t, KindPromoted, res.Outcomes[1].Kind)
	assert.True(t, res.Promoted)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "baked", KindBakedInto.String())
	assert.Equal(t, "replaced", KindReplaced.String())
	assert.Equal(t, "promoted", KindPromoted.String())
	assert.Equal(t, "skipped", KindSkipped.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
