// Package validation evaluates the validation language of question trees.
//
// An Evaluator checks one value against one domain.Validation and reports the
// first failing rule. Rules run in a fixed order so that the same input always
// yields the same reason:
//
//	required -> equals -> structural rules -> enum/pattern -> remote or local function
//
// A matching equals short-circuits every later rule. An absent value passes
// when required is false and fails with "value is required" otherwise.
//
// Basic usage:
//
//	ev := validation.New(validation.WithFileSystem(file.NewFS()))
//	out, err := ev.Evaluate(ctx, "https://x.com", &domain.StringValidation{Pattern: "^https://"}, nil)
//	if err != nil {
//	    // remote or local validator failed, or the spec itself is broken
//	}
//	if !out.Passed {
//	    fmt.Println(out.Reason)
//	}
package validation
