package runner

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

// ErrAborted signals the user aborted input (e.g., Ctrl+C).
var ErrAborted = errors.New("prompt aborted")

// InputConfig configures a basic text input prompt.
type InputConfig struct {
	Message string
	Default string
	Help    string
}

// SelectConfig configures a single or multi-select prompt.
type SelectConfig struct {
	Message      string
	Options      []string
	Descriptions []string
	DefaultIndex int
	Defaults     []int // used for multi-select; indices into Options
	Help         string
	PageSize     int
}

// PromptDriver abstracts the actual terminal implementation so the asker can
// be tested without a real terminal and callers can swap implementations.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Password(ctx context.Context, cfg InputConfig) (string, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
}

// SurveyAsker implements ports.Asker with full-screen terminal prompts
// (arrow-key selects, checkbox multi-selects, masked passwords).
// Ctrl+C cancels the run.
type SurveyAsker struct {
	driver PromptDriver
}

// NewSurveyAsker creates an asker backed by AlecAivazis/survey.
func NewSurveyAsker() *SurveyAsker {
	return &SurveyAsker{driver: surveyDriver{}}
}

// NewSurveyAskerWithDriver creates an asker backed by driver.
func NewSurveyAskerWithDriver(driver PromptDriver) *SurveyAsker {
	return &SurveyAsker{driver: driver}
}

// Ask implements ports.Asker.
func (a *SurveyAsker) Ask(ctx context.Context, req ports.AskRequest) (ports.Answer, error) {
	p := Describe(req)
	help := p.Description
	if p.LastFailure != "" {
		help = p.LastFailure
	}
	message := p.Title
	if p.LastFailure != "" {
		message = fmt.Sprintf("%s (%s)", p.Title, p.LastFailure)
	}

	var value any
	var err error
	switch req.Question.(type) {
	case *domain.SingleSelectQuestion:
		var idx int
		idx, err = a.driver.Select(ctx, a.selectConfig(p, message, help))
		if err == nil && idx >= 0 {
			value = req.Options[idx].ID
		}
	case *domain.MultiSelectQuestion:
		var idxs []int
		idxs, err = a.driver.MultiSelect(ctx, a.selectConfig(p, message, help))
		if err == nil {
			ids := make([]string, 0, len(idxs))
			for _, i := range idxs {
				ids = append(ids, req.Options[i].ID)
			}
			value, err = applySelection(ctx, req, ids)
		}
	default:
		cfg := InputConfig{Message: message, Help: help}
		if p.Default != nil {
			cfg.Default = formatDefault(p.Default)
		}
		if p.Type == domain.NodeTypePassword {
			value, err = a.driver.Password(ctx, cfg)
		} else {
			value, err = a.driver.Input(ctx, cfg)
		}
	}

	if errors.Is(err, ErrAborted) {
		return ports.Cancel(), nil
	}
	if err != nil {
		return ports.Answer{}, err
	}
	clean, err := SanitizeValue(value)
	if err != nil {
		return ports.Answer{}, err
	}
	return ports.Value(clean), nil
}

func (a *SurveyAsker) selectConfig(p Prompt, message, help string) SelectConfig {
	cfg := SelectConfig{Message: message, Help: help, DefaultIndex: -1}
	for _, item := range p.Options {
		cfg.Options = append(cfg.Options, item.Label)
		cfg.Descriptions = append(cfg.Descriptions, item.Description)
	}

	var defaults []string
	switch d := p.Default.(type) {
	case string:
		defaults = []string{d}
	case []string:
		defaults = d
	}
	for i, item := range p.Options {
		if slices.Contains(defaults, item.ID) {
			if cfg.DefaultIndex < 0 {
				cfg.DefaultIndex = i
			}
			cfg.Defaults = append(cfg.Defaults, i)
		}
	}
	return cfg
}

type surveyDriver struct{}

func (surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: cfg.Message,
		Help:    cfg.Help,
		Default: cfg.Default,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Password{
		Message: cfg.Message,
		Help:    cfg.Help,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var out int
	prompt := &survey.Select{
		Message:     cfg.Message,
		Options:     cfg.Options,
		Help:        cfg.Help,
		Description: describeOption(cfg.Descriptions),
	}
	if cfg.PageSize > 0 {
		prompt.PageSize = cfg.PageSize
	}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.DefaultIndex
	}
	// An int destination receives the selected index.
	if err := survey.AskOne(prompt, &out); err != nil {
		return 0, translateSurveyErr(err)
	}
	return out, nil
}

func (surveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []int
	prompt := &survey.MultiSelect{
		Message:     cfg.Message,
		Options:     cfg.Options,
		Help:        cfg.Help,
		Description: describeOption(cfg.Descriptions),
	}
	if cfg.PageSize > 0 {
		prompt.PageSize = cfg.PageSize
	}
	if len(cfg.Defaults) > 0 {
		prompt.Default = cfg.Defaults
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return nil, translateSurveyErr(err)
	}
	return out, nil
}

func describeOption(descriptions []string) func(string, int) string {
	return func(_ string, index int) string {
		if index >= 0 && index < len(descriptions) {
			return descriptions[index]
		}
		return ""
	}
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
