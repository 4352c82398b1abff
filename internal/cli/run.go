package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/qtree"
	"github.com/aretw0/qtree/internal/presentation/tui"
	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
	"github.com/aretw0/qtree/pkg/runner"
)

// ErrCancelled is returned by Run when the user cancels the traversal.
var ErrCancelled = errors.New("cancelled by user")

// Run answers one tree interactively and writes the collected answers.
//
// In JSON mode every question and the final result are JSON lines on
// Stdout and replies are read from Stdin. Otherwise prompts go to Stderr
// and the answers are printed as JSON to Stdout (or --out).
func Run(ctx context.Context, opts Options) error {
	opts.ResolveEnv()

	logger, err := createLogger(opts)
	if err != nil {
		return err
	}

	root, err := loadTree(ctx, opts)
	if err != nil {
		return err
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		if data, err := qtree.Export(root); err == nil {
			logger.Debug("Question tree", "tree", string(data))
		}
	}

	seed, err := loadAnswers(opts.AnswersPath)
	if err != nil {
		return err
	}

	fns, err := loadFunctions(opts)
	if err != nil {
		return err
	}

	asker, jsonAsker := createAsker(opts)
	if !opts.JSON && !opts.Plain {
		tui.PrintBanner(opts.Stderr)
	}

	confirmer, _ := asker.(runner.Confirmer)
	eng, err := createEngine(ctx, opts, runner.Chain(asker, runner.LoggingMiddleware(logger)), confirmer, fns, logger)
	if err != nil {
		return err
	}

	res, err := eng.Run(ctx, root, seed)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			res = domain.Result{Status: domain.StatusCancelled}
		} else {
			return err
		}
	}
	logger.Debug("Traversal finished", "status", res.Status, "answers", res.Answers)

	if jsonAsker != nil {
		return jsonAsker.Done(res)
	}
	if res.Cancelled() {
		printSystemMessage(opts, "Cancelled.")
		return ErrCancelled
	}
	return writeAnswers(opts, res.Answers)
}

// createAsker picks the prompting surface. The JSON asker is also returned
// on its own so that the final result can be written through it.
func createAsker(opts Options) (ports.Asker, *runner.JSONAsker) {
	switch {
	case opts.JSON:
		a := runner.NewJSONAsker(opts.Stdin, opts.Stdout)
		return a, a
	case opts.Survey:
		return runner.NewSurveyAsker(), nil
	}

	var textOpts []runner.TextAskerOption
	if !opts.Plain {
		textOpts = append(textOpts, runner.WithRenderer(tui.NewRenderer()))
	}
	return runner.NewTextAsker(opts.Stdin, opts.Stderr, textOpts...), nil
}
