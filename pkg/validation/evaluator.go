package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

// ErrNoFileSystem is returned when a file validation runs without a file system.
var ErrNoFileSystem = errors.New("file validation requires a file system")

// ErrUnknownValidator is wrapped in a LocalCallError when validFunc names nothing registered.
var ErrUnknownValidator = errors.New("validator is not registered")

// Outcome is the verdict of one evaluation. Rule names the failing rule.
type Outcome struct {
	Passed bool
	Rule   string
	Reason string
}

// Pass is the successful outcome.
func Pass() Outcome { return Outcome{Passed: true} }

// Fail builds a failed outcome for rule.
func Fail(rule, format string, args ...any) Outcome {
	return Outcome{Rule: rule, Reason: fmt.Sprintf(format, args...)}
}

// Evaluator checks values against validation specs. It holds no state
// between calls, so one Evaluator can be shared by concurrent traversals.
type Evaluator struct {
	remote ports.RemoteCaller
	fs     ports.FileSystem
	locals ports.LocalValidators
	logger *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithRemoteCaller sets the collaborator for remoteFunc validations.
func WithRemoteCaller(rc ports.RemoteCaller) Option {
	return func(e *Evaluator) { e.remote = rc }
}

// WithFileSystem sets the collaborator for file validations.
func WithFileSystem(fs ports.FileSystem) Option {
	return func(e *Evaluator) { e.fs = fs }
}

// WithLocalValidators sets the registry consulted by localFunc validations.
func WithLocalValidators(lv ports.LocalValidators) Option {
	return func(e *Evaluator) { e.locals = lv }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = logger }
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate checks value against spec. A nil spec always passes.
//
// The error return is reserved for conditions that must abort a traversal:
// a failing remote or local validator, a missing collaborator, or a broken
// pattern. Rule failures are reported through the Outcome.
func (e *Evaluator) Evaluate(ctx context.Context, value any, spec domain.Validation, answers domain.Answers) (Outcome, error) {
	if spec == nil {
		return Pass(), nil
	}
	common := spec.Common()

	if IsEmpty(value) {
		if common.IsRequired() {
			return Fail("required", "value is required"), nil
		}
		return Pass(), nil
	}

	if common.Equals != nil {
		if Equal(value, common.Equals) {
			return Pass(), nil
		}
		return Fail("equals", "value must equal %v", common.Equals), nil
	}

	switch v := spec.(type) {
	case *domain.AnyValidation:
		return Pass(), nil
	case *domain.NumberValidation:
		return checkNumber(value, v), nil
	case *domain.StringValidation:
		return checkString(value, v)
	case *domain.StringArrayValidation:
		return checkStringArray(value, v), nil
	case *domain.FileValidation:
		return e.checkFile(ctx, value, v)
	case *domain.RemoteFuncValidation:
		return e.callRemote(ctx, value, v, answers)
	case *domain.LocalFuncValidation:
		return e.callLocal(ctx, value, v)
	}
	return Outcome{}, &domain.UnsupportedTypeError{Type: string(spec.Kind())}
}

func checkNumber(value any, v *domain.NumberValidation) Outcome {
	n, ok := ToFloat(value)
	if !ok {
		return Fail("type", "value must be a number")
	}
	if v.Minimum != nil && n < *v.Minimum {
		return Fail("minimum", "value must be at least %v", *v.Minimum)
	}
	if v.ExclusiveMinimum != nil && n <= *v.ExclusiveMinimum {
		return Fail("exclusiveMinimum", "value must be greater than %v", *v.ExclusiveMinimum)
	}
	if v.Maximum != nil && n > *v.Maximum {
		return Fail("maximum", "value must be at most %v", *v.Maximum)
	}
	if v.ExclusiveMaximum != nil && n >= *v.ExclusiveMaximum {
		return Fail("exclusiveMaximum", "value must be less than %v", *v.ExclusiveMaximum)
	}
	if v.MultipleOf != nil && *v.MultipleOf != 0 {
		if math.Abs(math.Remainder(n, *v.MultipleOf)) > 1e-9 {
			return Fail("multipleOf", "value must be a multiple of %v", *v.MultipleOf)
		}
	}
	if len(v.Enum) > 0 {
		if !slices.Contains(v.Enum, n) {
			return Fail("enum", "value must be one of %v", v.Enum)
		}
	}
	return Pass()
}

func checkString(value any, v *domain.StringValidation) (Outcome, error) {
	s, ok := value.(string)
	if !ok {
		return Fail("type", "value must be a string"), nil
	}
	length := utf8.RuneCountInString(s)
	if v.MinLength != nil && length < *v.MinLength {
		return Fail("minLength", "value must be at least %d characters", *v.MinLength), nil
	}
	if v.MaxLength != nil && length > *v.MaxLength {
		return Fail("maxLength", "value must be at most %d characters", *v.MaxLength), nil
	}
	if v.StartsWith != "" && !strings.HasPrefix(s, v.StartsWith) {
		return Fail("startsWith", "value must start with %q", v.StartsWith), nil
	}
	if v.EndsWith != "" && !strings.HasSuffix(s, v.EndsWith) {
		return Fail("endsWith", "value must end with %q", v.EndsWith), nil
	}
	if v.Includes != "" && !strings.Contains(s, v.Includes) {
		return Fail("includes", "value must contain %q", v.Includes), nil
	}
	if len(v.Enum) > 0 && !slices.Contains(v.Enum, s) {
		return Fail("enum", "value must be one of %s", strings.Join(v.Enum, ", ")), nil
	}
	if v.Pattern != "" {
		re, err := regexp.Compile(v.Pattern)
		if err != nil {
			return Outcome{}, &domain.StructuralError{Reason: fmt.Sprintf("invalid pattern %q: %v", v.Pattern, err)}
		}
		if !re.MatchString(s) {
			return Fail("pattern", "value must match pattern %s", v.Pattern), nil
		}
	}
	return Pass(), nil
}

func checkStringArray(value any, v *domain.StringArrayValidation) Outcome {
	items, ok := ToStrings(value)
	if !ok {
		return Fail("type", "value must be a list of strings")
	}
	if v.MinItems != nil && len(items) < *v.MinItems {
		return Fail("minItems", "select at least %d items", *v.MinItems)
	}
	if v.MaxItems != nil && len(items) > *v.MaxItems {
		return Fail("maxItems", "select at most %d items", *v.MaxItems)
	}
	if v.UniqueItems {
		seen := make(map[string]bool, len(items))
		for _, item := range items {
			if seen[item] {
				return Fail("uniqueItems", "item %q appears more than once", item)
			}
			seen[item] = true
		}
	}
	if len(v.Enum) > 0 {
		for _, item := range items {
			if !slices.Contains(v.Enum, item) {
				return Fail("enum", "item %q must be one of %s", item, strings.Join(v.Enum, ", "))
			}
		}
	}
	if v.Contains != "" && !slices.Contains(items, v.Contains) {
		return Fail("contains", "selection must include %q", v.Contains)
	}
	for _, want := range v.ContainsAll {
		if !slices.Contains(items, want) {
			return Fail("containsAll", "selection must include all of %s", strings.Join(v.ContainsAll, ", "))
		}
	}
	if len(v.ContainsAny) > 0 {
		if !slices.ContainsFunc(v.ContainsAny, func(want string) bool { return slices.Contains(items, want) }) {
			return Fail("containsAny", "selection must include one of %s", strings.Join(v.ContainsAny, ", "))
		}
	}
	return Pass()
}

func (e *Evaluator) checkFile(ctx context.Context, value any, v *domain.FileValidation) (Outcome, error) {
	path, ok := value.(string)
	if !ok {
		return Fail("type", "value must be a path"), nil
	}
	if !v.Exists && !v.NotExist {
		return Pass(), nil
	}
	if e.fs == nil {
		return Outcome{}, ErrNoFileSystem
	}
	exists, err := e.fs.Exists(ctx, path)
	if err != nil {
		return Outcome{}, fmt.Errorf("checking %q: %w", path, err)
	}
	if v.Exists && !exists {
		return Fail("exists", "path %q does not exist", path), nil
	}
	if v.NotExist && exists {
		return Fail("notExist", "path %q already exists", path), nil
	}
	return Pass(), nil
}

func (e *Evaluator) callRemote(ctx context.Context, value any, v *domain.RemoteFuncValidation, answers domain.Answers) (Outcome, error) {
	if e.remote == nil {
		return Outcome{}, &domain.RemoteCallError{Namespace: v.Namespace, Method: v.Method, Err: errors.New("no remote caller configured")}
	}
	call := domain.Func{
		Namespace: v.Namespace,
		Method:    v.Method,
		Params:    map[string]any{"value": value, "params": v.Params},
	}
	e.logger.Debug("remote validation", "func", call.String())
	res, err := e.remote.Call(ctx, call, answers)
	if err != nil {
		var rce *domain.RemoteCallError
		if errors.As(err, &rce) {
			return Outcome{}, err
		}
		return Outcome{}, &domain.RemoteCallError{Namespace: v.Namespace, Method: v.Method, Err: err}
	}
	return reasonOutcome("remoteFunc", res), nil
}

func (e *Evaluator) callLocal(ctx context.Context, value any, v *domain.LocalFuncValidation) (Outcome, error) {
	var fn ports.LocalValidator
	if e.locals != nil {
		fn, _ = e.locals.LocalValidator(v.Validator)
	}
	if fn == nil {
		return Outcome{}, &domain.LocalCallError{Validator: v.Validator, Err: ErrUnknownValidator}
	}
	reason, err := fn.Validate(ctx, value)
	if err != nil {
		return Outcome{}, &domain.LocalCallError{Validator: v.Validator, Err: err}
	}
	return reasonOutcome("localFunc", reason), nil
}

// reasonOutcome maps a validator result to an outcome: nil or "" passes,
// anything else is the failure reason.
func reasonOutcome(rule string, res any) Outcome {
	switch r := res.(type) {
	case nil:
		return Pass()
	case string:
		if r == "" {
			return Pass()
		}
		return Outcome{Rule: rule, Reason: r}
	}
	return Outcome{Rule: rule, Reason: fmt.Sprint(res)}
}
