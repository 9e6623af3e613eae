// Package mindmap is the interactive concept map: it builds a map from a
// course PDF, deepens it lazily, and walks the guided tour over it with a
// tutor chat alongside.
package mindmap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/capsulemed/internal/chat"
	"github.com/abhisek/capsulemed/internal/document"
	"github.com/abhisek/capsulemed/internal/mindmap"
	"github.com/abhisek/capsulemed/internal/screen"
	"github.com/abhisek/capsulemed/internal/screens/chatpanel"
	"github.com/abhisek/capsulemed/internal/screens/deps"
	"github.com/abhisek/capsulemed/internal/ui/components"
	"github.com/abhisek/capsulemed/internal/ui/layout"
	"github.com/abhisek/capsulemed/internal/ui/theme"
	"github.com/abhisek/capsulemed/internal/viewport"
)

// deepenParallelism bounds concurrent deepen requests of one map.
const deepenParallelism = 4

const panPx = 4 * cellW

const greeting = "Je suis là pour t'aider à explorer cette carte. Pose-moi une question sur le concept sélectionné !"

var screenIDs atomic.Uint64

type extractedMsg struct {
	screen uint64
	doc    *document.Document
	err    error
}

type rootMsg struct {
	screen uint64
	gen    int
	root   mindmap.Node
	cached bool
	err    error
}

type deepenMsg struct {
	screen uint64
	res    mindmap.DeepenResult
}

type savedMsg struct {
	err error
}

// saver serializes snapshot writes of one screen. written holds the
// newest save generation stored per document digest; older captures are
// dropped so a slow save never replaces a newer tree.
type saver struct {
	mu      sync.Mutex
	written map[string]int
}

func (sv *saver) write(gen int, digest string, fn func() error) error {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if gen <= sv.written[digest] {
		return nil
	}
	if err := fn(); err != nil {
		return err
	}
	sv.written[digest] = gen
	return nil
}

// MindMapScreen owns one map at a time. The explorer and viewport are only
// touched from Update and View.
type MindMapScreen struct {
	deps *deps.Deps
	id   uint64

	path    components.TextInput
	busy    string
	errText string

	doc      *document.Document
	gen      int
	builder  *mindmap.Builder
	explorer *mindmap.Explorer
	vp       viewport.Viewport
	selected string
	failed   map[string]bool
	sem      chan struct{}
	saver    *saver
	saveGen  int

	chat *chatpanel.Panel

	mapW, mapH int
}

var (
	_ screen.Screen          = (*MindMapScreen)(nil)
	_ screen.KeyHintProvider = (*MindMapScreen)(nil)
	_ screen.InputCapturer   = (*MindMapScreen)(nil)
)

// New opens the screen on the file prompt.
func New(d *deps.Deps) *MindMapScreen {
	path := components.NewTextInput("/chemin/vers/cours.pdf", 512)
	path.Label = "PDF :"
	return &MindMapScreen{
		deps:     d,
		id:       screenIDs.Add(1),
		path:     path,
		explorer: mindmap.NewExplorer(),
		vp:       viewport.Default(),
		failed:   map[string]bool{},
		sem:      make(chan struct{}, deepenParallelism),
		saver:    &saver{written: map[string]int{}},
		chat:     chatpanel.New(d.Tutor, greeting),
		mapW:     80,
		mapH:     24,
	}
}

func (s *MindMapScreen) Init() tea.Cmd {
	return s.path.Init()
}

func (s *MindMapScreen) Title() string {
	if root, ok := s.explorer.Root(); ok {
		return "Carte · " + mindmap.DisplayLabel(root.Label, 5)
	}
	return "Carte mentale"
}

// CapturingInput reports whether the chat field has the keyboard.
func (s *MindMapScreen) CapturingInput() bool {
	return s.chat.Focused()
}

func (s *MindMapScreen) hasMap() bool {
	_, ok := s.explorer.Root()
	return ok
}

func (s *MindMapScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.chat.Focused():
		return []layout.KeyHint{
			{Key: "Enter", Description: "Envoyer"},
			{Key: "Esc", Description: "Fermer le chat"},
		}
	case !s.hasMap():
		return []layout.KeyHint{
			{Key: "Enter", Description: "Construire"},
			{Key: "Esc", Description: "Retour"},
		}
	}
	return []layout.KeyHint{
		{Key: "n/p", Description: "Parcours"},
		{Key: "Tab", Description: "Sélection"},
		{Key: "Espace", Description: "Ouvrir"},
		{Key: "d", Description: "Détails"},
		{Key: "hjkl", Description: "Déplacer"},
		{Key: "+/-/0", Description: "Zoom"},
		{Key: "a", Description: "Auto-focus"},
		{Key: "c", Description: "Chat"},
		{Key: "Esc", Description: "Retour"},
	}
}

func (s *MindMapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if cmd, handled := s.chat.Update(msg, s.surface()); handled {
		return s, cmd
	}

	switch msg := msg.(type) {
	case extractedMsg:
		if msg.screen != s.id {
			return s, nil
		}
		return s, s.handleExtracted(msg)

	case rootMsg:
		if msg.screen != s.id || msg.gen != s.gen {
			return s, nil
		}
		return s, s.handleRoot(msg)

	case deepenMsg:
		if msg.screen != s.id {
			return s, nil
		}
		return s, s.handleDeepen(msg.res)

	case savedMsg:
		if msg.err != nil {
			s.deps.Log.Warn("save mindmap", "error", msg.err)
		}
		return s, nil

	case tea.KeyMsg:
		if !s.hasMap() {
			return s, s.updatePrompt(msg)
		}
		return s, s.handleKey(msg.String())
	}

	if !s.hasMap() {
		var cmd tea.Cmd
		s.path, cmd = s.path.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *MindMapScreen) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	if msg.String() != "enter" {
		var cmd tea.Cmd
		s.path, cmd = s.path.Update(msg)
		return cmd
	}
	p := s.path.Value()
	if p == "" || s.busy != "" {
		return nil
	}
	s.busy, s.errText = "Analyse du document…", ""
	id := s.id
	return func() tea.Msg {
		doc, err := document.ExtractFile(p)
		return extractedMsg{screen: id, doc: doc, err: err}
	}
}

func (s *MindMapScreen) handleExtracted(msg extractedMsg) tea.Cmd {
	s.busy = ""
	if msg.err != nil {
		s.errText = "Impossible de lire ce PDF : " + msg.err.Error()
		if errors.Is(msg.err, document.ErrNotPDF) {
			s.errText = "Ce fichier n'est pas un PDF."
		}
		return nil
	}
	if err := document.CheckExtractable(msg.doc.Text); err != nil {
		s.errText = "Erreur: " + chat.ErrorText(err)
		return nil
	}
	s.doc = msg.doc
	s.gen++
	s.builder = nil
	if s.deps.Provider != nil {
		s.builder = mindmap.NewBuilder(s.deps.Provider, s.deps.MindMapConfig, msg.doc.Text)
	}
	return s.loadOrBuild(false)
}

// loadOrBuild reopens the stored map of the current document, or asks for
// a new root when there is none or fresh is set.
func (s *MindMapScreen) loadOrBuild(fresh bool) tea.Cmd {
	repo, builder := s.deps.MindMaps, s.builder
	if builder == nil && (fresh || repo == nil) {
		s.errText = chat.MissingKeyText
		return nil
	}
	s.busy = "Construction de la carte…"
	id, gen, digest := s.id, s.gen, s.doc.Digest
	return func() tea.Msg {
		ctx := context.Background()
		if !fresh && repo != nil {
			root, ok, err := mindmap.Load(ctx, repo, digest)
			if err != nil {
				return rootMsg{screen: id, gen: gen, err: err}
			}
			if ok {
				return rootMsg{screen: id, gen: gen, root: root, cached: true}
			}
		}
		if builder == nil {
			return rootMsg{screen: id, gen: gen, err: errNoProvider}
		}
		root, err := builder.BuildRoot(ctx)
		return rootMsg{screen: id, gen: gen, root: root, err: err}
	}
}

var errNoProvider = errors.New("mindmap: no completion provider configured")

func (s *MindMapScreen) handleRoot(msg rootMsg) tea.Cmd {
	s.busy = ""
	if msg.err != nil {
		if errors.Is(msg.err, errNoProvider) {
			s.errText = chat.MissingKeyText
		} else {
			s.errText = "Erreur: " + chat.ErrorText(msg.err)
			s.deps.Log.Warn("build mindmap", "error", msg.err)
		}
		return nil
	}
	s.errText = ""
	s.failed = map[string]bool{}
	s.vp.Reset()
	s.selected = mindmap.RootID
	s.chat = chatpanel.New(s.deps.Tutor, greeting)
	s.path.Blur()

	eff := s.explorer.SetRoot(msg.root)
	cmds := []tea.Cmd{s.apply(eff)}
	if !msg.cached {
		cmds = append(cmds, s.save())
	}
	return tea.Batch(cmds...)
}

func (s *MindMapScreen) handleDeepen(res mindmap.DeepenResult) tea.Cmd {
	applied, eff := s.explorer.CompleteDeepen(res)
	if !applied {
		return nil
	}
	id := res.Ticket.NodeID
	if res.Err != nil {
		s.failed[id] = true
		if !errors.Is(res.Err, errNoProvider) {
			s.deps.Log.Warn("deepen mindmap node", "node", id, "error", res.Err)
		}
		return nil
	}
	delete(s.failed, id)
	return tea.Batch(s.apply(eff), s.save())
}

// apply carries out explorer effects: recentre the view and start the
// requested deepen calls.
func (s *MindMapScreen) apply(eff mindmap.Effects) tea.Cmd {
	if eff.Focus != "" {
		s.focus(eff.Focus)
	}
	if s.builder == nil {
		// Fail the tickets right away so the nodes stay retryable.
		var cmds []tea.Cmd
		for _, t := range eff.Tickets {
			res := mindmap.DeepenResult{Ticket: t, Err: errNoProvider}
			id := s.id
			cmds = append(cmds, func() tea.Msg { return deepenMsg{screen: id, res: res} })
		}
		return tea.Batch(cmds...)
	}

	cmds := make([]tea.Cmd, 0, len(eff.Tickets))
	b, sem, id := s.builder, s.sem, s.id
	for _, t := range eff.Tickets {
		cmds = append(cmds, func() tea.Msg {
			sem <- struct{}{}
			defer func() { <-sem }()
			return deepenMsg{screen: id, res: b.Run(context.Background(), t)}
		})
	}
	return tea.Batch(cmds...)
}

func (s *MindMapScreen) save() tea.Cmd {
	repo := s.deps.MindMaps
	root, ok := s.explorer.Root()
	if repo == nil || !ok || s.doc == nil {
		return nil
	}
	s.saveGen++
	gen, sv := s.saveGen, s.saver
	digest, name := s.doc.Digest, s.doc.Name
	return func() tea.Msg {
		err := sv.write(gen, digest, func() error {
			_, err := mindmap.Save(context.Background(), repo, digest, name, root)
			return err
		})
		return savedMsg{err: err}
	}
}

// focus centres the view on a node if it is visible.
func (s *MindMapScreen) focus(id string) {
	root, _ := s.explorer.Root()
	for _, p := range layoutTree(root) {
		if p.node.ID == id {
			s.vp.FocusOn(p.box(s.vp), float64(s.mapW)*cellW, float64(s.mapH)*cellH, viewport.FocusScale)
			return
		}
	}
}

func (s *MindMapScreen) handleKey(key string) tea.Cmd {
	viewW, viewH := float64(s.mapW)*cellW, float64(s.mapH)*cellH
	switch key {
	case "n", "right":
		if eff, ok := s.explorer.Next(); ok {
			s.followTour()
			return s.apply(eff)
		}
	case "p", "left":
		if eff, ok := s.explorer.Prev(); ok {
			s.followTour()
			return s.apply(eff)
		}
	case "tab":
		s.moveSelection(1)
	case "shift+tab":
		s.moveSelection(-1)
	case "space", "enter":
		return s.apply(s.explorer.ToggleExpand(s.selected))
	case "d":
		return s.apply(s.explorer.ToggleDescription(s.selected))
	case "a":
		s.explorer.SetAutoFocus(!s.explorer.AutoFocus())
	case "h":
		s.vp.Pan(panPx, 0)
	case "l":
		s.vp.Pan(-panPx, 0)
	case "k", "up":
		s.vp.Pan(0, cellH*2)
	case "j", "down":
		s.vp.Pan(0, -cellH*2)
	case "+", "=":
		s.vp.ZoomIn(viewW, viewH)
	case "-":
		s.vp.ZoomOut(viewW, viewH)
	case "0":
		s.vp.Reset()
	case "c":
		return s.chat.Focus()
	case "r":
		if s.builder != nil && s.busy == "" {
			s.gen++
			return s.loadOrBuild(true)
		}
	case "o":
		s.explorer = mindmap.NewExplorer()
		s.doc, s.builder = nil, nil
		s.failed = map[string]bool{}
		s.gen++
		s.path.Reset()
		return s.path.Focus()
	}
	return nil
}

func (s *MindMapScreen) followTour() {
	if cur, ok := s.explorer.Current(); ok {
		s.selected = cur.NodeID
	}
}

// moveSelection steps through the visible nodes in layout order.
func (s *MindMapScreen) moveSelection(delta int) {
	root, _ := s.explorer.Root()
	nodes := layoutTree(root)
	if len(nodes) == 0 {
		return
	}
	i := 0
	for j, p := range nodes {
		if p.node.ID == s.selected {
			i = j
			break
		}
	}
	i = (i + delta + len(nodes)) % len(nodes)
	s.selected = nodes[i].node.ID
}

func (s *MindMapScreen) surface() chat.Surface {
	n, ok := s.explorer.Node(s.selected)
	if !ok {
		return chat.MindMap{}
	}
	return chat.MindMap{Focus: &n}
}

func (s *MindMapScreen) View(width, height int) string {
	if !s.hasMap() {
		return s.viewPrompt(width, height)
	}

	chatW := width / 3
	if chatW < 30 {
		chatW = 0
	}
	mapW := width - chatW
	status := s.viewStatus(mapW)
	s.mapW = mapW
	s.mapH = height - lipgloss.Height(status) - 1
	if s.mapH < 3 {
		s.mapH = 3
	}

	root, _ := s.explorer.Root()
	tour := ""
	if cur, ok := s.explorer.Current(); ok && !s.explorer.OffTrack() {
		tour = cur.NodeID
	}
	left := status + "\n" + drawMap(layoutTree(root), s.vp, s.mapW, s.mapH, s.selected, tour)
	if chatW == 0 {
		return left
	}

	right := lipgloss.NewStyle().
		Width(chatW - 1).
		Height(height).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(theme.Border).
		Padding(0, 1).
		Render(s.chat.View(chatW-4, height))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (s *MindMapScreen) viewStatus(width int) string {
	steps := s.explorer.Steps()
	var parts []string
	if cur, ok := s.explorer.Current(); ok {
		phase := "Plan"
		if cur.Phase == mindmap.PhaseDeep {
			phase = "Approfondissement"
		}
		parts = append(parts, fmt.Sprintf("Étape %d/%d · %s · %s",
			s.explorer.Cursor()+1, len(steps), phase, mindmap.DisplayLabel(cur.Label, 6)))
	}
	if s.explorer.OffTrack() {
		parts = append(parts, "hors parcours (n pour reprendre)")
	}
	if s.explorer.AutoFocus() {
		parts = append(parts, "auto-focus")
	}
	parts = append(parts, fmt.Sprintf("zoom %d%%", int(s.vp.Scale*100+0.5)))

	line := lipgloss.NewStyle().Foreground(theme.TextDim).Width(width).Render(strings.Join(parts, "  │  "))
	if len(s.failed) > 0 {
		line += "\n" + lipgloss.NewStyle().Foreground(theme.Error).
			Render(fmt.Sprintf("%d concept(s) non chargé(s) : sélectionne-les et appuie sur Espace pour réessayer.", len(s.failed)))
	}
	if s.busy != "" {
		line += "\n" + lipgloss.NewStyle().Foreground(theme.Info).Italic(true).Render(s.busy)
	}
	return line
}

func (s *MindMapScreen) viewPrompt(width, height int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Carte mentale"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Width(56).
		Render("Ouvre un cours en PDF : l'IA en tire une carte des concepts que tu pourras parcourir pas à pas."))
	b.WriteString("\n\n")
	b.WriteString(s.path.View())
	if s.busy != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Info).Italic(true).Render(s.busy))
	}
	if s.errText != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Width(56).Render(s.errText))
	}
	card := components.ArcadeCard(b.String(), 60)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
