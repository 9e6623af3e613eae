package mindmap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/capsulemed/internal/document"
	"github.com/abhisek/capsulemed/internal/llm"
	"github.com/abhisek/capsulemed/internal/mindmap"
	"github.com/abhisek/capsulemed/internal/screens/deps"
	"github.com/abhisek/capsulemed/internal/store"
	"github.com/abhisek/capsulemed/internal/viewport"
)

var courseText = strings.Repeat("Le cœur est une pompe musculaire à quatre cavités. ", 10)

const rootReply = `{"label":"Cardiologie","description":"Bases du cœur","children":[
 {"label":"Anatomie","description":"Structure du cœur"},
 {"label":"Physiologie","description":"Cycle cardiaque"}]}`

const pointsReply = `{"points":[{"label":"Oreillettes","description":"Cavités de réception"},{"label":"Ventricules","description":"Cavités d'éjection"}]}`

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func openRepo(t *testing.T) store.MindMapRepo {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st.MindMapRepo()
}

func newScreen(provider llm.Provider, repo store.MindMapRepo) *MindMapScreen {
	d := &deps.Deps{Provider: provider, MindMaps: repo}
	d.Fill()
	return New(d)
}

// drain runs cmd and every command it leads to, feeding each message back
// into the screen.
func drain(t *testing.T, s *MindMapScreen, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("commands did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		_, next := s.Update(msg)
		queue = append(queue, next)
	}
}

func openDoc(t *testing.T, s *MindMapScreen, digest string) {
	t.Helper()
	doc := &document.Document{Name: "coeur.pdf", Digest: digest, PageCount: 1, Text: courseText}
	_, cmd := s.Update(extractedMsg{screen: s.id, doc: doc})
	drain(t, s, cmd)
}

func TestBuildDeepensChaptersAndSaves(t *testing.T) {
	repo := openRepo(t)
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: rootReply},
		llm.MockResponse{Text: pointsReply},
		llm.MockResponse{Text: pointsReply},
	)
	s := newScreen(mock, repo)
	openDoc(t, s, "digest-1")

	root, ok := s.explorer.Root()
	if !ok || root.Label != "Cardiologie" {
		t.Fatalf("root = %+v, %v", root, ok)
	}
	for _, ch := range root.Children {
		if !ch.Loaded || len(ch.Children) != 2 {
			t.Errorf("chapter %s not prefetched: %+v", ch.ID, ch)
		}
	}
	if mock.CallCount() != 3 {
		t.Errorf("calls = %d, want 3", mock.CallCount())
	}

	saved, ok, err := mindmap.Load(context.Background(), repo, "digest-1")
	if err != nil || !ok {
		t.Fatalf("snapshot not stored: %v", err)
	}
	if mindmap.Count(saved) != 7 {
		t.Errorf("stored nodes = %d, want 7", mindmap.Count(saved))
	}

	view := s.View(120, 30)
	if !strings.Contains(view, "Cardiologie") || !strings.Contains(view, "Étape 1/") {
		t.Errorf("map view:\n%s", view)
	}
}

func TestReopensStoredMapWithoutProvider(t *testing.T) {
	repo := openRepo(t)
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: rootReply},
		llm.MockResponse{Text: pointsReply},
		llm.MockResponse{Text: pointsReply},
	)
	openDoc(t, newScreen(mock, repo), "digest-2")

	s := newScreen(nil, repo)
	openDoc(t, s, "digest-2")
	root, ok := s.explorer.Root()
	if !ok || root.Label != "Cardiologie" || !root.Children[0].Loaded {
		t.Fatalf("stored map not reopened: %+v", root)
	}
}

func TestOutOfOrderSavesKeepNewestTree(t *testing.T) {
	repo := openRepo(t)
	s := newScreen(nil, repo)
	s.doc = &document.Document{Name: "coeur.pdf", Digest: "digest-order", Text: courseText}

	chapter := func(i int, points int) mindmap.Node {
		id := mindmap.ChildID(mindmap.RootID, i)
		n := mindmap.Node{ID: id, Label: fmt.Sprintf("Chapitre %d", i+1), Depth: 1}
		for j := 0; j < points; j++ {
			n.Children = append(n.Children, mindmap.Node{ID: mindmap.ChildID(id, j), Label: "Point", Depth: 2})
		}
		n.Loaded = points > 0
		return n
	}
	tree := func(points int) mindmap.Node {
		return mindmap.Node{
			ID: mindmap.RootID, Label: "Cardiologie", Loaded: true,
			Children: []mindmap.Node{chapter(0, points), chapter(1, points)},
		}
	}

	s.explorer.SetRoot(tree(0))
	older := s.save()
	s.explorer.SetRoot(tree(2))
	newer := s.save()

	if msg := newer().(savedMsg); msg.err != nil {
		t.Fatalf("newer save: %v", msg.err)
	}
	if msg := older().(savedMsg); msg.err != nil {
		t.Fatalf("older save: %v", msg.err)
	}

	stored, ok, err := mindmap.Load(context.Background(), repo, "digest-order")
	if err != nil || !ok {
		t.Fatalf("load: %v, %v", ok, err)
	}
	if got := mindmap.Count(stored); got != 7 {
		t.Errorf("stored nodes = %d, want 7 (newest tree)", got)
	}
}

func TestNoProviderAndNoStoredMap(t *testing.T) {
	s := newScreen(nil, openRepo(t))
	openDoc(t, s, "digest-3")
	if s.hasMap() {
		t.Fatal("no map expected")
	}
	if !strings.Contains(s.View(120, 30), "Clé API manquante") {
		t.Error("expected the missing key message")
	}
}

func TestDeepenFailureIsRetryable(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: rootReply},
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{}},
		llm.MockResponse{Text: pointsReply},
	)
	s := newScreen(mock, nil)
	openDoc(t, s, "digest-4")

	if len(s.failed) != 1 {
		t.Fatalf("failed = %v", s.failed)
	}
	var id string
	for k := range s.failed {
		id = k
	}
	n, _ := s.explorer.Node(id)
	if n.Loaded || n.Loading {
		t.Fatalf("failed node = %+v", n)
	}
	if !strings.Contains(s.View(120, 30), "non chargé") {
		t.Error("expected a failure notice")
	}

	mock.AddResponse(llm.MockResponse{Text: pointsReply})
	s.selected = id
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	drain(t, s, cmd)
	if n, _ := s.explorer.Node(id); !n.Loaded {
		t.Fatalf("retry did not load the node: %+v", n)
	}
	if len(s.failed) != 0 {
		t.Error("failure not cleared")
	}
}

func TestTourMovesSelectionAndFocus(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: rootReply},
		llm.MockResponse{Text: pointsReply},
		llm.MockResponse{Text: pointsReply},
	)
	s := newScreen(mock, nil)
	openDoc(t, s, "digest-5")
	s.View(120, 30)

	_, cmd := s.Update(keyPress('n'))
	drain(t, s, cmd)
	if s.selected != mindmap.ChildID(mindmap.RootID, 0) {
		t.Fatalf("selected = %q", s.selected)
	}
	if s.vp.Scale != viewport.FocusScale {
		t.Errorf("scale = %v, want focus scale", s.vp.Scale)
	}
	n, _ := s.explorer.Node(s.selected)
	if !n.DescriptionOpen {
		t.Error("tour step should open the description")
	}

	s.Update(keyPress('0'))
	if s.vp != viewport.Default() {
		t.Errorf("0 should reset the view, got %+v", s.vp)
	}
	s.Update(keyPress('+'))
	if s.vp.Scale <= viewport.InitialScale {
		t.Error("+ should zoom in")
	}
	before := s.vp.X
	s.Update(keyPress('h'))
	if s.vp.X != before+panPx {
		t.Error("h should pan")
	}

	s.Update(keyPress('a'))
	if s.explorer.AutoFocus() {
		t.Error("a should toggle auto-focus off")
	}
}

func TestChatUsesSelectedNode(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: rootReply},
		llm.MockResponse{Text: pointsReply},
		llm.MockResponse{Text: pointsReply},
	)
	s := newScreen(mock, nil)
	openDoc(t, s, "digest-6")

	s.Update(keyPress('c'))
	if !s.CapturingInput() {
		t.Fatal("c should focus the chat")
	}
	for _, r := range "systole" {
		s.Update(keyPress(r))
	}
	mock.AddResponse(llm.MockResponse{Text: "La systole est la contraction."})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	drain(t, s, cmd)

	last := mock.Calls[len(mock.Calls)-1]
	prompt := last.Messages[len(last.Messages)-1].Content
	if !strings.Contains(prompt, "Cardiologie") {
		t.Errorf("prompt should name the selected node: %q", prompt)
	}
}

func TestLayoutCentresParentOnChildren(t *testing.T) {
	root := mindmap.Node{ID: mindmap.RootID, Label: "R", Expanded: true, Loaded: true, Children: []mindmap.Node{
		{ID: "root.1", Label: "A", Depth: 1},
		{ID: "root.2", Label: "B", Depth: 1},
		{ID: "root.3", Label: "C", Depth: 1},
	}}
	nodes := layoutTree(root)
	if len(nodes) != 4 {
		t.Fatalf("placed = %d", len(nodes))
	}
	if nodes[0].y != 0 || nodes[0].x != 0 {
		t.Errorf("root at %v,%v", nodes[0].x, nodes[0].y)
	}
	if nodes[2].y != 0 {
		t.Errorf("middle child y = %v, want level with the root", nodes[2].y)
	}
	if nodes[1].y >= 0 || nodes[3].y <= 0 {
		t.Errorf("children not spread around the root: %v %v", nodes[1].y, nodes[3].y)
	}
	if nodes[1].x != columnPx {
		t.Errorf("child x = %v", nodes[1].x)
	}
}
