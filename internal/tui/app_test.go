package tui

import (
	"context"
	"errors"
	"testing"

	"nsn-odds-data/internal/domain"
	"nsn-odds-data/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type oddsStub struct {
	bets    []domain.ValueBet
	arbs    []domain.ArbitrageBet
	err     error
	regions []string
}

func (s *oddsStub) ValueBets(_ context.Context, region string, f domain.ValueBetFilter) ([]domain.ValueBet, error) {
	s.regions = append(s.regions, region)
	return s.bets, s.err
}

func (s *oddsStub) ArbitrageBets(_ context.Context, region string, _ domain.ArbitrageFilter) ([]domain.ArbitrageBet, error) {
	s.regions = append(s.regions, region)
	return s.arbs, s.err
}

type metricsStub struct{}

func (metricsStub) Summary(context.Context) *service.MetricsSummary {
	return &service.MetricsSummary{Requests: service.RequestMetrics{Total: 42, Errors: 2}}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newModel(odds *oddsStub) *AppModel {
	return NewAppModel(Services{
		Odds:     odds,
		Metrics:  metricsStub{},
		Regions:  []string{"br", "uk"},
		Username: "ops",
	})
}

func TestLoadValueBets(t *testing.T) {
	odds := &oddsStub{bets: []domain.ValueBet{{
		Bookmaker:     "Betano",
		Market:        "ML",
		BetSide:       "home",
		ExpectedValue: 3.5,
		Event:         domain.BetEvent{Home: "Flamengo", Away: "Palmeiras"},
	}}}
	m := newModel(odds)

	msg := m.load()()
	_, _ = m.Update(msg)

	assert.False(t, m.loading)
	assert.Equal(t, []string{"br"}, odds.regions)
	rows := m.table.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Flamengo vs Palmeiras", rows[0][0])
	assert.Equal(t, "3.50", rows[0][4])
	assert.Contains(t, m.View(), "region=br")
}

func TestSwitchViewAndRegion(t *testing.T) {
	odds := &oddsStub{arbs: []domain.ArbitrageBet{{
		Market:       "ML",
		ProfitMargin: 1.25,
		Event:        domain.BetEvent{Home: "Arsenal", Away: "Chelsea"},
		Legs:         []domain.ArbitrageLeg{{Side: "home", Bookmaker: "bet365", Odds: 2.1}},
	}}}
	m := newModel(odds)

	_, cmd := m.Update(key("right"))
	require.NotNil(t, cmd)
	assert.Equal(t, "uk", m.Region())

	_, cmd = m.Update(key("tab"))
	require.NotNil(t, cmd)
	assert.Equal(t, viewArbitrage, m.view)
	assert.True(t, m.loading)

	_, _ = m.Update(m.load()())
	rows := m.table.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "1.25", rows[0][2])
	assert.Equal(t, "home@bet365 2.10", rows[0][3])
	assert.Equal(t, "uk", odds.regions[len(odds.regions)-1])
}

func TestStaleResultsIgnored(t *testing.T) {
	m := newModel(&oddsStub{})
	_, _ = m.Update(key("tab"))

	_, _ = m.Update(valueBetsMsg{bets: []domain.ValueBet{{Bookmaker: "late"}}})
	assert.True(t, m.loading)
	assert.Empty(t, m.table.Rows())
}

func TestErrorShown(t *testing.T) {
	m := newModel(&oddsStub{err: errors.New("provider timeout")})
	_, _ = m.Update(m.load()())
	assert.Contains(t, m.View(), "provider timeout")
}

func TestMetricsView(t *testing.T) {
	m := newModel(&oddsStub{})
	_, _ = m.Update(key("tab"))
	_, _ = m.Update(key("tab"))
	assert.Equal(t, viewMetrics, m.view)

	_, _ = m.Update(m.load()())
	assert.Contains(t, m.View(), "Requests      42 (errors 2")
	assert.Equal(t, "Metrics unavailable", metricsView(nil))
}

func TestQuit(t *testing.T) {
	m := newModel(&oddsStub{})
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestSetSize(t *testing.T) {
	m := newModel(&oddsStub{})
	_, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
	assert.LessOrEqual(t, m.table.Height(), 32)
}
