package mindmap

// Phase tags a tour step: the overview pass over chapters or the
// per-chapter immersion.
type Phase string

const (
	PhasePlan Phase = "plan"
	PhaseDeep Phase = "deep"
)

// Step is one stop of the guided tour.
type Step struct {
	NodeID string
	Label  string
	Depth  int
	Phase  Phase
}

// BuildTour flattens the tree into the tour sequence: the root, every
// chapter in plan phase, then every chapter again in deep phase followed by
// a depth-first walk of its loaded descendants.
func BuildTour(root Node) []Step {
	if root.ID == "" {
		return nil
	}
	steps := []Step{{NodeID: root.ID, Label: root.Label, Depth: root.Depth, Phase: PhasePlan}}
	for _, ch := range root.Children {
		steps = append(steps, Step{NodeID: ch.ID, Label: ch.Label, Depth: ch.Depth, Phase: PhasePlan})
	}
	for _, ch := range root.Children {
		steps = append(steps, Step{NodeID: ch.ID, Label: ch.Label, Depth: ch.Depth, Phase: PhaseDeep})
		if ch.Loaded {
			steps = appendDeep(steps, ch.Children)
		}
	}
	return steps
}

func appendDeep(steps []Step, nodes []Node) []Step {
	for _, n := range nodes {
		steps = append(steps, Step{NodeID: n.ID, Label: n.Label, Depth: n.Depth, Phase: PhaseDeep})
		if n.Loaded {
			steps = appendDeep(steps, n.Children)
		}
	}
	return steps
}
