package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/capsulemed/internal/document"
	"github.com/abhisek/capsulemed/internal/mindmap"
	"github.com/spf13/cobra"
)

var mindmapCmd = &cobra.Command{
	Use:   "mindmap",
	Short: "Build and inspect concept maps of course PDFs",
}

var mindmapBuildCmd = &cobra.Command{
	Use:   "build <pdf>",
	Short: "Build the concept map of a PDF and store it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		depth, _ := cmd.Flags().GetInt("depth")
		tour, _ := cmd.Flags().GetBool("tour")
		if depth < 1 || depth > mindmap.MaxDepth {
			return fmt.Errorf("--depth must be between 1 and %d", mindmap.MaxDepth)
		}

		doc, err := extractDocument(args[0])
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		provider, err := newProvider(ctx, st.EventRepo())
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		b := mindmap.NewBuilder(provider, mindmap.DefaultConfig(), doc.Text)
		fmt.Fprintf(cmd.ErrOrStderr(), "Analyse de %s…\n", doc.Name)
		root, err := b.BuildRoot(ctx)
		if err != nil {
			return fmt.Errorf("build mind map: %w", err)
		}

		e := mindmap.NewExplorer()
		eff := e.SetRoot(root)
		failed := mindmap.Grow(ctx, b, e, eff.Tickets, depth)
		for _, f := range failed {
			logger.Warn("deepen mindmap node", "node", f.Ticket.NodeID, "error", f.Err)
		}

		root, _ = e.Root()
		snap, err := mindmap.Save(ctx, st.MindMapRepo(), doc.Digest, doc.Name, root)
		if err != nil {
			return fmt.Errorf("save mind map: %w", err)
		}

		printTree(root)
		if tour {
			fmt.Println()
			printTour(mindmap.BuildTour(root))
		}
		fmt.Printf("\n%d concepts, digest %s\n", snap.NodeCount, shortDigest(doc.Digest))
		if len(failed) > 0 {
			fmt.Printf("%d concept(s) could not be expanded.\n", len(failed))
		}
		return nil
	},
}

var mindmapListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored mind maps",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		snaps, err := st.MindMapRepo().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list mind maps: %w", err)
		}
		if len(snaps) == 0 {
			fmt.Println("No mind maps stored yet.")
			return nil
		}

		fmt.Printf("%-12s  %-19s  %-30s  %-30s  %s\n", "Digest", "Timestamp", "Document", "Root", "Nodes")
		fmt.Println(strings.Repeat("─", 104))
		for _, s := range snaps {
			fmt.Printf("%-12s  %-19s  %-30s  %-30s  %d\n",
				shortDigest(s.Digest),
				s.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(s.DocumentName, 30),
				truncate(s.RootLabel, 30),
				s.NodeCount,
			)
		}
		return nil
	},
}

var mindmapShowCmd = &cobra.Command{
	Use:   "show <digest>",
	Short: "Print a stored mind map (digest prefixes are accepted)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		repo := st.MindMapRepo()
		digest := args[0]
		snaps, err := repo.List(ctx)
		if err != nil {
			return fmt.Errorf("list mind maps: %w", err)
		}
		var matches []string
		for _, s := range snaps {
			if strings.HasPrefix(s.Digest, digest) {
				matches = append(matches, s.Digest)
			}
		}
		switch len(matches) {
		case 0:
			return fmt.Errorf("no mind map for digest %q", digest)
		case 1:
			digest = matches[0]
		default:
			return fmt.Errorf("digest prefix %q is ambiguous (%d maps)", digest, len(matches))
		}

		root, ok, err := mindmap.Load(ctx, repo, digest)
		if err != nil {
			return fmt.Errorf("load mind map: %w", err)
		}
		if !ok {
			return fmt.Errorf("no mind map for digest %q", digest)
		}
		printTree(root)
		return nil
	},
}

func extractDocument(path string) (*document.Document, error) {
	doc, err := document.ExtractFile(path)
	if errors.Is(err, document.ErrNotPDF) {
		return nil, fmt.Errorf("%s: not a PDF file", path)
	}
	if err != nil {
		return nil, err
	}
	if err := document.CheckExtractable(doc.Text); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func printTree(root mindmap.Node) {
	mindmap.Walk(root, func(n mindmap.Node) bool {
		indent := strings.Repeat("  ", n.Depth)
		fmt.Printf("%s%s %s\n", indent, treeMarker(n), n.Label)
		if n.Description != "" {
			fmt.Printf("%s    %s\n", indent, n.Description)
		}
		return true
	})
}

func treeMarker(n mindmap.Node) string {
	switch {
	case n.Depth == 0:
		return "◆"
	case n.Loaded && len(n.Children) > 0:
		return "▾"
	case n.CanExpand() && !n.Loaded:
		return "▸"
	}
	return "•"
}

func printTour(steps []mindmap.Step) {
	fmt.Println("Parcours guidé")
	fmt.Println(strings.Repeat("─", 60))
	for i, s := range steps {
		fmt.Printf("%3d. [%-4s] %s%s\n", i+1, s.Phase, strings.Repeat("  ", s.Depth), s.Label)
	}
}

func shortDigest(d string) string {
	return truncate(d, 12)
}

func init() {
	mindmapBuildCmd.Flags().Int("depth", 2, "Deepest level to generate (1-3)")
	mindmapBuildCmd.Flags().Bool("tour", false, "Print the guided tour after the map")

	mindmapCmd.AddCommand(mindmapBuildCmd)
	mindmapCmd.AddCommand(mindmapListCmd)
	mindmapCmd.AddCommand(mindmapShowCmd)
}
