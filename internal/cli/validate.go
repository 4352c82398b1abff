package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/qtree/internal/validator"
)

// Validate compiles and lints the tree of opts, or every tree in opts.Dir
// when no tree is named. With strict set, references to functions and
// validators the host cannot serve are errors.
func Validate(ctx context.Context, opts Options, strict bool) error {
	opts.ResolveEnv()

	var cat *validator.Catalog
	if strict {
		fns, err := loadFunctions(opts)
		if err != nil {
			return err
		}
		cat = &validator.Catalog{Functions: fns.Names(), Validators: fns.Validators(), Handlers: []string{}}
		if opts.RemoteURL != "" {
			// Remote functions cannot be listed ahead of time.
			cat.Functions = nil
		}
	}

	if opts.Tree == "" {
		loader, err := OpenLoader(opts.Dir, opts.Loam)
		if err != nil {
			return err
		}
		return validator.ValidateLoader(ctx, loader, cat)
	}

	root, err := loadTree(ctx, opts)
	if err != nil {
		return err
	}
	issues := validator.Lint(root, cat)
	for _, issue := range issues {
		if issue.Warning {
			fmt.Fprintln(opts.Stderr, issue)
		}
	}
	return validator.ValidateTree(root, cat)
}
