package reconcile

import "github.com/spaghettifunk/meshbridge/bridge/mesh"

// Kind classifies what happened to one target.
type Kind uint8

const (
	KindBakedInto Kind = iota
	KindReplaced
	KindPromoted
	KindSkipped
)

func (k Kind) String() string {
	switch k {
	case KindBakedInto:
		return "baked"
	case KindReplaced:
		return "replaced"
	case KindPromoted:
		return "promoted"
	case KindSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Outcome is the per-target result of a reconciliation pass.
type Outcome struct {
	Kind Kind
	// Target is the mutated mesh. For a promotion it is the imported mesh.
	Target *mesh.Handle
	// Name is the target's name, or the promoted mesh's new name.
	Name string
	// ShapeKeysDropped is set when a replace discarded the shape-key stack.
	ShapeKeysDropped bool
	// Reason explains a skip.
	Reason string
}

// Result aggregates the outcomes of one pass, in selection order.
type Result struct {
	Outcomes []Outcome
	// Promoted is true when no target was eligible and the imported mesh
	// was left in the scene instead of being consumed.
	Promoted bool
}

// Consumed reports whether the imported mesh was merged into at least one
// target and can be discarded.
func (r Result) Consumed() bool {
	return !r.Promoted
}

// Mutated returns the targets whose geometry changed, including a promoted mesh.
func (r Result) Mutated() []*mesh.Handle {
	var out []*mesh.Handle
	for _, o := range r.Outcomes {
		if o.Kind != KindSkipped && o.Target != nil {
			out = append(out, o.Target)
		}
	}
	return out
}

// Count returns how many outcomes have the given kind.
func (r Result) Count(kind Kind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind == kind {
			n++
		}
	}
	return n
}
