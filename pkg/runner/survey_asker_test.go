package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

type stubDriver struct {
	input       string
	password    string
	selectIdx   int
	multiIdx    []int
	err         error
	lastInput   InputConfig
	lastSelect  SelectConfig
	passwordHit bool
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.lastInput = cfg
	return s.input, s.err
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	s.lastInput = cfg
	s.passwordHit = true
	return s.password, s.err
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.lastSelect = cfg
	return s.selectIdx, s.err
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.lastSelect = cfg
	return s.multiIdx, s.err
}

func TestSurveyAsker_Select(t *testing.T) {
	driver := &stubDriver{selectIdx: 1}
	asker := NewSurveyAskerWithDriver(driver)

	req := ports.AskRequest{
		Question: &domain.SingleSelectQuestion{BaseQuestion: domain.BaseQuestion{Name: "env", Title: "Environment"}},
		Options:  domain.Items(domain.OptionItem{ID: "dev", Label: "Development"}, domain.OptionItem{ID: "prod", Label: "Production", Description: "careful"}),
		Default:  "prod",
		Attempt:  1,
	}

	got, err := asker.Ask(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, ports.Value("prod"), got)

	assert.Equal(t, "Environment", driver.lastSelect.Message)
	assert.Equal(t, []string{"Development", "Production"}, driver.lastSelect.Options)
	assert.Equal(t, []string{"", "careful"}, driver.lastSelect.Descriptions)
	assert.Equal(t, 1, driver.lastSelect.DefaultIndex)
}

func TestSurveyAsker_MultiSelect(t *testing.T) {
	driver := &stubDriver{multiIdx: []int{0, 2}}
	asker := NewSurveyAskerWithDriver(driver)

	req := ports.AskRequest{
		Question: &domain.MultiSelectQuestion{BaseQuestion: domain.BaseQuestion{Name: "caps"}},
		Options:  domain.Strings("tab", "bot", "ext"),
		Default:  []string{"bot", "ext"},
		Attempt:  1,
	}

	got, err := asker.Ask(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, ports.Value([]string{"tab", "ext"}), got)
	assert.Equal(t, []int{1, 2}, driver.lastSelect.Defaults)
}

func TestSurveyAsker_InputAndPassword(t *testing.T) {
	t.Run("Input shows failure", func(t *testing.T) {
		driver := &stubDriver{input: "my\x07app"}
		asker := NewSurveyAskerWithDriver(driver)

		got, err := asker.Ask(context.Background(), ports.AskRequest{
			Question:    &domain.TextInputQuestion{BaseQuestion: domain.BaseQuestion{Name: "name", Description: "App name"}},
			Default:     "demo",
			Attempt:     2,
			LastFailure: "too short",
		})
		require.NoError(t, err)
		assert.Equal(t, ports.Value("myapp"), got)
		assert.Equal(t, "name (too short)", driver.lastInput.Message)
		assert.Equal(t, "too short", driver.lastInput.Help)
		assert.Equal(t, "demo", driver.lastInput.Default)
		assert.False(t, driver.passwordHit)
	})

	t.Run("Password", func(t *testing.T) {
		driver := &stubDriver{password: "s3cret"}
		asker := NewSurveyAskerWithDriver(driver)

		got, err := asker.Ask(context.Background(), ports.AskRequest{
			Question: &domain.TextInputQuestion{BaseQuestion: domain.BaseQuestion{Name: "token"}, Secret: true},
		})
		require.NoError(t, err)
		assert.Equal(t, ports.Value("s3cret"), got)
		assert.True(t, driver.passwordHit)
	})
}

func TestSurveyAsker_Errors(t *testing.T) {
	q := &domain.TextInputQuestion{BaseQuestion: domain.BaseQuestion{Name: "name"}}

	t.Run("Abort cancels", func(t *testing.T) {
		asker := NewSurveyAskerWithDriver(&stubDriver{err: ErrAborted})
		got, err := asker.Ask(context.Background(), ports.AskRequest{Question: q})
		require.NoError(t, err)
		assert.Equal(t, ports.Cancelled, got.Kind)
	})

	t.Run("Other errors propagate", func(t *testing.T) {
		boom := errors.New("terminal gone")
		asker := NewSurveyAskerWithDriver(&stubDriver{err: boom})
		_, err := asker.Ask(context.Background(), ports.AskRequest{Question: q})
		assert.ErrorIs(t, err, boom)
	})
}
