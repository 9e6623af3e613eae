package mindmap

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/capsulemed/internal/document"
	"github.com/abhisek/capsulemed/internal/llm"
)

// Builder issues the completion requests that create and deepen a map for
// one document. It holds no tree state and is safe for concurrent use.
type Builder struct {
	provider llm.Provider
	cfg      Config
	text     string
}

// NewBuilder creates a builder over the extracted document text.
func NewBuilder(provider llm.Provider, cfg Config, text string) *Builder {
	return &Builder{provider: provider, cfg: cfg, text: text}
}

type pointOutput struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

type rootOutput struct {
	Label       string        `json:"label"`
	Description string        `json:"description"`
	Children    []pointOutput `json:"children"`
}

type pointsOutput struct {
	Points []pointOutput `json:"points"`
}

// BuildRoot asks for the root concept and its chapters. The returned root is
// loaded and expanded; chapters are unloaded. Any failure yields no tree.
func (b *Builder) BuildRoot(ctx context.Context) (Node, error) {
	if err := document.CheckExtractable(b.text); err != nil {
		return Node{}, err
	}
	ctx = llm.WithPurpose(ctx, "mindmap-root")

	resp, err := b.provider.Generate(ctx, b.request(RootSchema, buildRootPrompt(b.text, b.cfg)))
	if err != nil {
		return Node{}, fmt.Errorf("mindmap root: %w", err)
	}
	var out rootOutput
	if err := llm.DecodeJSON(resp, &out); err != nil {
		return Node{}, fmt.Errorf("parse mindmap root: %w", err)
	}

	root := Node{
		ID:          RootID,
		Label:       strings.TrimSpace(out.Label),
		Description: strings.TrimSpace(out.Description),
		Loaded:      true,
		Expanded:    true,
		Children:    toNodes(RootID, 1, out.Children),
	}
	return root, nil
}

// Deepen asks for the children of the node id at depth. It returns nil, nil
// at or below MaxDepth without a request.
func (b *Builder) Deepen(ctx context.Context, id, label string, depth int) ([]Node, error) {
	if depth >= MaxDepth {
		return nil, nil
	}
	if err := document.CheckExtractable(b.text); err != nil {
		return nil, err
	}
	ctx = llm.WithPurpose(ctx, "mindmap-deepen")

	resp, err := b.provider.Generate(ctx, b.request(PointsSchema, buildDeepenPrompt(b.text, label, b.cfg)))
	if err != nil {
		return nil, fmt.Errorf("deepen %s: %w", id, err)
	}
	var out pointsOutput
	if err := llm.DecodeJSON(resp, &out); err != nil {
		return nil, fmt.Errorf("parse deepen %s: %w", id, err)
	}
	return toNodes(id, depth+1, out.Points), nil
}

func (b *Builder) request(schema *llm.Schema, prompt string) llm.Request {
	return llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Schema:      schema,
		MaxTokens:   b.cfg.MaxTokens,
		Temperature: b.cfg.Temperature,
	}
}

// toNodes assigns tree-unique ids; ids suggested by the model are ignored.
func toNodes(parentID string, depth int, points []pointOutput) []Node {
	nodes := make([]Node, 0, len(points))
	for i, p := range points {
		nodes = append(nodes, Node{
			ID:          ChildID(parentID, i),
			Label:       strings.TrimSpace(p.Label),
			Description: strings.TrimSpace(p.Description),
			Depth:       depth,
		})
	}
	return nodes
}
