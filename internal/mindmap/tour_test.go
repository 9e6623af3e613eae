package mindmap

import (
	"reflect"
	"testing"
)

func TestBuildTourOrder(t *testing.T) {
	got := BuildTour(sampleTree())
	want := []Step{
		{"root", "Cardiologie", 0, PhasePlan},
		{"root.1", "Anatomie du cœur", 1, PhasePlan},
		{"root.2", "Physiologie", 1, PhasePlan},
		{"root.1", "Anatomie du cœur", 1, PhaseDeep},
		{"root.1.1", "Valves", 2, PhaseDeep},
		{"root.1.2", "Coronaires", 2, PhaseDeep},
		{"root.2", "Physiologie", 1, PhaseDeep},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tour =\n%v\nwant\n%v", got, want)
	}
}

func TestBuildTourIsDeterministic(t *testing.T) {
	tree := sampleTree()
	if !reflect.DeepEqual(BuildTour(tree), BuildTour(tree)) {
		t.Fatal("two builds of the same tree differ")
	}
}

func TestBuildTourWalksLoadedDescendantsDepthFirst(t *testing.T) {
	tree := sampleTree()
	tree, _ = UpdateByID(tree, "root.1.1", func(n Node) Node {
		n.Loaded = true
		n.Children = []Node{{ID: "root.1.1.1", Label: "Mitrale", Depth: 3}}
		return n
	})

	var ids []string
	for _, s := range BuildTour(tree)[3:] {
		ids = append(ids, s.NodeID)
	}
	want := []string{"root.1", "root.1.1", "root.1.1.1", "root.1.2", "root.2"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("deep phase = %v, want %v", ids, want)
	}
}

func TestBuildTourEmpty(t *testing.T) {
	if steps := BuildTour(Node{}); steps != nil {
		t.Fatalf("empty tree tour = %v", steps)
	}
}
