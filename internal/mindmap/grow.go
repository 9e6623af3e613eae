package mindmap

import (
	"context"
	"sync"
)

// growParallelism bounds concurrent deepen requests in Grow.
const growParallelism = 4

// Run performs the request for a ticket. It blocks; the TUI wraps it in a
// command and feeds the result to Explorer.CompleteDeepen.
func (b *Builder) Run(ctx context.Context, t DeepenTicket) DeepenResult {
	children, err := b.Deepen(ctx, t.NodeID, t.Label, t.Depth)
	return DeepenResult{Ticket: t, Children: children, Err: err}
}

// Grow deepens the explorer's tree level by level until every node above
// depth is loaded or has failed. pending holds tickets already begun, such
// as those returned by SetRoot. It returns the failed results.
func Grow(ctx context.Context, b *Builder, e *Explorer, pending []DeepenTicket, depth int) []DeepenResult {
	if depth > MaxDepth {
		depth = MaxDepth
	}
	var failed []DeepenResult
	for level := 1; level < depth; level++ {
		root, ok := e.Root()
		if !ok {
			return failed
		}
		var tickets []DeepenTicket
		for _, t := range pending {
			if t.Depth == level {
				tickets = append(tickets, t)
			}
		}
		Walk(root, func(n Node) bool {
			if n.Depth == level {
				if t, ok := e.BeginDeepen(n.ID); ok {
					tickets = append(tickets, t)
				}
				return false
			}
			return n.Depth < level
		})

		for _, res := range runAll(ctx, b, tickets) {
			e.CompleteDeepen(res)
			if res.Err != nil {
				failed = append(failed, res)
			}
		}
		if ctx.Err() != nil {
			return failed
		}
	}
	return failed
}

func runAll(ctx context.Context, b *Builder, tickets []DeepenTicket) []DeepenResult {
	results := make([]DeepenResult, len(tickets))
	sem := make(chan struct{}, growParallelism)
	var wg sync.WaitGroup
	for i, t := range tickets {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = b.Run(ctx, t)
		}()
	}
	wg.Wait()
	return results
}
