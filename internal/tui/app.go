// Package tui is the operator console served over SSH. It shows value bets,
// arbitrage opportunities and usage counters for one region at a time.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nsn-odds-data/internal/domain"
	"nsn-odds-data/internal/service"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	queryTimeout = 30 * time.Second
	resultLimit  = 20
)

type OddsQuerier interface {
	ValueBets(ctx context.Context, region string, f domain.ValueBetFilter) ([]domain.ValueBet, error)
	ArbitrageBets(ctx context.Context, region string, f domain.ArbitrageFilter) ([]domain.ArbitrageBet, error)
}

type MetricsReader interface {
	Summary(ctx context.Context) *service.MetricsSummary
}

// Services backs the console. Metrics may be nil.
type Services struct {
	Odds     OddsQuerier
	Metrics  MetricsReader
	Regions  []string
	Username string
}

type view int

const (
	viewValueBets view = iota
	viewArbitrage
	viewMetrics
)

var viewNames = []string{"Value bets", "Arbitrage", "Metrics"}

type valueBetsMsg struct {
	bets []domain.ValueBet
	err  error
}

type arbsMsg struct {
	arbs []domain.ArbitrageBet
	err  error
}

type metricsMsg struct{ summary *service.MetricsSummary }

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	activeTab   = lipgloss.NewStyle().Bold(true).Underline(true)
	inactiveTab = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type AppModel struct {
	svc     Services
	view    view
	region  int
	table   table.Model
	spinner spinner.Model
	loading bool
	err     error
	metrics *service.MetricsSummary
	width   int
	height  int
}

func NewAppModel(svc Services) *AppModel {
	t := table.New(table.WithFocused(true), table.WithHeight(10))
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	m := &AppModel{svc: svc, table: t, spinner: s, loading: true}
	m.setColumns()
	return m
}

// SetSize fits the table to the terminal.
func (m *AppModel) SetSize(width, height int) {
	m.width, m.height = width, height
	if h := height - 8; h > 3 {
		m.table.SetHeight(h)
	}
	if width > 0 {
		m.table.SetWidth(width - 2)
	}
}

func (m *AppModel) Region() string {
	if len(m.svc.Regions) == 0 {
		return ""
	}
	return m.svc.Regions[m.region]
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case valueBetsMsg:
		if m.view != viewValueBets {
			return m, nil
		}
		m.loading, m.err = false, msg.err
		m.table.SetRows(valueBetRows(msg.bets))
		return m, nil
	case arbsMsg:
		if m.view != viewArbitrage {
			return m, nil
		}
		m.loading, m.err = false, msg.err
		m.table.SetRows(arbitrageRows(msg.arbs))
		return m, nil
	case metricsMsg:
		m.loading = false
		m.metrics = msg.summary
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.view = (m.view + 1) % view(len(viewNames))
		m.setColumns()
		return m, m.reload()
	case "shift+tab":
		m.view = (m.view + view(len(viewNames)) - 1) % view(len(viewNames))
		m.setColumns()
		return m, m.reload()
	case "right", "l":
		if len(m.svc.Regions) > 1 {
			m.region = (m.region + 1) % len(m.svc.Regions)
			return m, m.reload()
		}
		return m, nil
	case "left", "h":
		if len(m.svc.Regions) > 1 {
			m.region = (m.region + len(m.svc.Regions) - 1) % len(m.svc.Regions)
			return m, m.reload()
		}
		return m, nil
	case "r":
		return m, m.reload()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *AppModel) reload() tea.Cmd {
	m.loading, m.err = true, nil
	m.table.SetRows(nil)
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m *AppModel) load() tea.Cmd {
	region := m.Region()
	switch m.view {
	case viewArbitrage:
		odds := m.svc.Odds
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
			defer cancel()
			arbs, err := odds.ArbitrageBets(ctx, region, domain.ArbitrageFilter{Limit: resultLimit})
			return arbsMsg{arbs: arbs, err: err}
		}
	case viewMetrics:
		metrics := m.svc.Metrics
		return func() tea.Msg {
			if metrics == nil {
				return metricsMsg{}
			}
			ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
			defer cancel()
			return metricsMsg{summary: metrics.Summary(ctx)}
		}
	default:
		odds := m.svc.Odds
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
			defer cancel()
			bets, err := odds.ValueBets(ctx, region, domain.ValueBetFilter{Limit: resultLimit})
			return valueBetsMsg{bets: bets, err: err}
		}
	}
}

func (m *AppModel) setColumns() {
	m.table.SetRows(nil)
	switch m.view {
	case viewArbitrage:
		m.table.SetColumns([]table.Column{
			{Title: "Event", Width: 32},
			{Title: "Market", Width: 8},
			{Title: "Profit %", Width: 9},
			{Title: "Legs", Width: 48},
		})
	default:
		m.table.SetColumns([]table.Column{
			{Title: "Event", Width: 32},
			{Title: "Bookmaker", Width: 14},
			{Title: "Market", Width: 8},
			{Title: "Side", Width: 6},
			{Title: "EV %", Width: 7},
		})
	}
}

func eventLabel(e domain.BetEvent) string {
	return fmt.Sprintf("%s vs %s", e.Home, e.Away)
}

func valueBetRows(bets []domain.ValueBet) []table.Row {
	rows := make([]table.Row, 0, len(bets))
	for _, b := range bets {
		rows = append(rows, table.Row{
			eventLabel(b.Event),
			b.Bookmaker,
			b.Market,
			b.BetSide,
			fmt.Sprintf("%.2f", b.ExpectedValue),
		})
	}
	return rows
}

func arbitrageRows(arbs []domain.ArbitrageBet) []table.Row {
	rows := make([]table.Row, 0, len(arbs))
	for _, a := range arbs {
		legs := make([]string, 0, len(a.Legs))
		for _, l := range a.Legs {
			legs = append(legs, fmt.Sprintf("%s@%s %.2f", l.Side, l.Bookmaker, l.Odds))
		}
		rows = append(rows, table.Row{
			eventLabel(a.Event),
			a.Market,
			fmt.Sprintf("%.2f", a.ProfitMargin),
			strings.Join(legs, "  "),
		})
	}
	return rows
}

func (m *AppModel) tabs() string {
	parts := make([]string, len(viewNames))
	for i, name := range viewNames {
		if view(i) == m.view {
			parts[i] = activeTab.Render(name)
		} else {
			parts[i] = inactiveTab.Render(name)
		}
	}
	return strings.Join(parts, "  |  ")
}

func metricsView(s *service.MetricsSummary) string {
	if s == nil {
		return "Metrics unavailable"
	}
	lines := []string{
		fmt.Sprintf("Requests      %d (errors %d, %.2f%%)", s.Requests.Total, s.Requests.Errors, s.Requests.ErrorRatePercent),
		fmt.Sprintf("Avg latency   %.2f ms over %d samples", s.Latency.AvgMs, s.Latency.Samples),
		fmt.Sprintf("Cache         %d hits / %d misses (%.2f%%)", s.Cache.Hits, s.Cache.Misses, s.Cache.HitRatePercent),
		fmt.Sprintf("Upstream      %d calls", s.ExternalAPI.Calls),
	}
	if s.LastReset != nil {
		lines = append(lines, "Last reset    "+*s.LastReset)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m *AppModel) View() string {
	var b strings.Builder
	header := fmt.Sprintf("NSN Odds console  user=%s", m.svc.Username)
	if r := m.Region(); r != "" {
		header += "  region=" + r
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(m.tabs())
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " loading...")
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	case m.view == viewMetrics:
		b.WriteString(metricsView(m.metrics))
	default:
		b.WriteString(m.table.View())
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("tab: switch view  ←/→: region  r: refresh  q: quit"))
	return b.String()
}
