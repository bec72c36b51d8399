package reconcile

import (
	"github.com/google/uuid"
	"github.com/spaghettifunk/meshbridge/bridge/core"
	"github.com/spaghettifunk/meshbridge/bridge/math"
	"github.com/spaghettifunk/meshbridge/bridge/mesh"
)

// DefaultPromotedName is the name given to an imported mesh that had no target.
const DefaultPromotedName = "BridgeImport"

const (
	reasonNoMesh    = "selection entry is not a mesh"
	reasonSelf      = "target is the imported mesh"
	reasonDuplicate = "target already reconciled in this pass"
)

type Reconciler struct {
	promotedName string
}

func New(promotedName string) *Reconciler {
	if promotedName == "" {
		promotedName = DefaultPromotedName
	}
	return &Reconciler{promotedName: promotedName}
}

// Reconcile merges imported into targets, in order, and never fails.
// Ineligible selection entries are reported as skipped; when none is
// eligible the imported mesh is promoted.
func (r *Reconciler) Reconcile(imported *mesh.Transient, targets []*mesh.Handle) Result {
	correction := math.Correction(imported.Orientation)
	src := imported.Mesh

	result := Result{Outcomes: make([]Outcome, 0, len(targets)+1)}
	seen := make(map[uuid.UUID]struct{}, len(targets))
	applied := 0

	for _, tgt := range targets {
		if reason := r.eligibility(src, tgt, seen); reason != "" {
			name := ""
			if tgt != nil {
				name = tgt.Name
			}
			core.LogWarn("Skipping '%s': %s", name, reason)
			result.Outcomes = append(result.Outcomes, Outcome{Kind: KindSkipped, Target: tgt, Name: name, Reason: reason})
			continue
		}
		seen[tgt.ID] = struct{}{}
		result.Outcomes = append(result.Outcomes, r.apply(correction, src, tgt))
		applied++
	}

	if applied == 0 {
		result.Outcomes = append(result.Outcomes, r.promote(correction, imported))
		result.Promoted = true
	}
	return result
}

func (r *Reconciler) eligibility(src, tgt *mesh.Handle, seen map[uuid.UUID]struct{}) string {
	switch {
	case tgt == nil:
		return reasonNoMesh
	case tgt == src || tgt.ID == src.ID:
		return reasonSelf
	}
	if _, dup := seen[tgt.ID]; dup {
		return reasonDuplicate
	}
	return ""
}

func (r *Reconciler) apply(correction math.Mat4, src, tgt *mesh.Handle) Outcome {
	out := Outcome{Target: tgt, Name: tgt.Name}

	switch {
	case src.VertexCount() == tgt.VertexCount() && tgt.HasBasis():
		basis := tgt.ShapeKeys.Basis()
		for i, v := range src.Vertices {
			basis.Data[i] = math.Correct(correction, v)
		}
		out.Kind = KindBakedInto
		core.LogInfo("Baked into Basis shape key for: %s", tgt.Name)

	case src.VertexCount() == tgt.VertexCount():
		// Any non-Basis layers stay attached and go stale.
		tgt.SetGeometry(math.CorrectAll(correction, src.Vertices), mesh.CloneFaces(src.Faces))
		out.Kind = KindReplaced
		if tgt.ShapeKeys != nil {
			core.LogWarn("Replaced mesh data for: %s (shape keys without a Basis were kept and may be stale)", tgt.Name)
		} else {
			core.LogInfo("Replaced mesh data for: %s", tgt.Name)
		}

	default:
		tgt.SetGeometry(math.CorrectAll(correction, src.Vertices), mesh.CloneFaces(src.Faces))
		out.ShapeKeysDropped = tgt.ShapeKeys != nil
		tgt.ClearShapeKeys()
		out.Kind = KindReplaced
		core.LogInfo("Fully replaced mesh for: %s", tgt.Name)
	}

	tgt.Orientation = math.NewVec3Zero()
	return out
}

func (r *Reconciler) promote(correction math.Mat4, imported *mesh.Transient) Outcome {
	h := imported.Mesh
	math.CorrectInPlace(correction, h.Vertices)
	h.Orientation = math.NewVec3Zero()
	imported.Orientation = math.NewVec3Zero()
	h.Name = r.promotedName
	core.LogInfo("No selection, imported object left in scene as '%s' with baked rotation.", h.Name)
	return Outcome{Kind: KindPromoted, Target: h, Name: h.Name}
}
