/*
Package runner implements the prompting surfaces (askers) for the qtree engine.

It acts as the bridge between the traversal engine and the outside world:
the engine decides which question comes next, an asker shows it and returns
the raw answer.

# Key Components

  - TextAsker: line-oriented terminal prompts with numbered options,
    markdown descriptions and echo-off passwords.
  - JSONAsker: JSON-Lines protocol for host processes (editors, web backends).
  - SurveyAsker: arrow-key and checkbox prompts built on AlecAivazis/survey.
  - Middleware: logging and input sanitization around any asker.
  - Describe: a serializable Prompt for rich clients.

# Usage

	asker := runner.Chain(
		runner.NewTextAsker(os.Stdin, os.Stdout, runner.WithRenderer(render)),
		runner.LoggingMiddleware(logger),
	)
	res, err := qtree.New(asker).Run(ctx, tree, nil)
*/
package runner
