package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/aretw0/qtree/internal/presentation/graph"
)

// Graph writes a Mermaid flowchart of the tree of opts. Questions answered
// in opts.AnswersPath are highlighted.
func Graph(ctx context.Context, opts Options) error {
	opts.ResolveEnv()

	root, err := loadTree(ctx, opts)
	if err != nil {
		return err
	}
	answers, err := loadAnswers(opts.AnswersPath)
	if err != nil {
		return err
	}

	var overlay *graph.GraphOverlay
	if len(answers) > 0 {
		overlay = &graph.GraphOverlay{}
		for name := range answers {
			overlay.Answered = append(overlay.Answered, name)
		}
		sort.Strings(overlay.Answered)
	}

	output := graph.GenerateMermaid(root, overlay)
	if opts.OutPath != "" {
		if err := os.WriteFile(opts.OutPath, []byte(output), 0o644); err != nil {
			return fmt.Errorf("failed to write graph: %w", err)
		}
		return nil
	}
	_, err = fmt.Fprint(opts.Stdout, output)
	return err
}
