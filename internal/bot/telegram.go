package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"nsn-odds-data/internal/domain"
	"nsn-odds-data/internal/service"

	tele "gopkg.in/telebot.v3"
)

const (
	commandTimeout = 30 * time.Second
	botResultLimit = 5
)

// OddsSource is what the bot reads from.
type OddsSource interface {
	ValueBets(ctx context.Context, region string, f domain.ValueBetFilter) ([]domain.ValueBet, error)
	ArbitrageBets(ctx context.Context, region string, f domain.ArbitrageFilter) ([]domain.ArbitrageBet, error)
}

func StartTelegramBot(odds OddsSource, regions *service.RegionFilter) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/regions", func(c tele.Context) error {
		return c.Send(regionsReply(regions))
	})

	b.Handle("/valuebets", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return c.Send(valueBetsReply(ctx, odds, c.Args()))
	})

	b.Handle("/arbs", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return c.Send(arbsReply(ctx, odds, c.Args()))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func regionsReply(regions *service.RegionFilter) string {
	if regions == nil {
		return "No regions configured"
	}
	var sb strings.Builder
	sb.WriteString("Supported regions\n")
	for _, code := range regions.Regions() {
		books, _ := regions.AllowedBookmakers(code)
		fmt.Fprintf(&sb, "%s: %s\n", code, strings.Join(books, ", "))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// valueBetsReply handles "/valuebets <region> [sport]".
func valueBetsReply(ctx context.Context, odds OddsSource, args []string) string {
	if len(args) == 0 {
		return "Usage: /valuebets br [football]"
	}
	f := domain.ValueBetFilter{MinEV: service.DefaultMinEV, Limit: botResultLimit}
	if len(args) > 1 {
		f.Sport = args[1]
	}
	bets, err := odds.ValueBets(ctx, args[0], f)
	if err != nil {
		return fmt.Sprintf("Error fetching value bets: %v", err)
	}
	if len(bets) == 0 {
		return fmt.Sprintf("No value bets above %.1f%% EV in %s", f.MinEV, strings.ToLower(args[0]))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Top value bets (%s)\n", strings.ToLower(args[0]))
	for _, b := range bets {
		fmt.Fprintf(&sb, "\n%s vs %s\n%s %s @ %s, EV %.2f%%\n",
			b.Event.Home, b.Event.Away, b.Market, b.BetSide, b.Bookmaker, b.ExpectedValue)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// arbsReply handles "/arbs <region> [sport]".
func arbsReply(ctx context.Context, odds OddsSource, args []string) string {
	if len(args) == 0 {
		return "Usage: /arbs uk [football]"
	}
	f := domain.ArbitrageFilter{MinProfit: service.DefaultMinProfit, Limit: botResultLimit}
	if len(args) > 1 {
		f.Sport = args[1]
	}
	arbs, err := odds.ArbitrageBets(ctx, args[0], f)
	if err != nil {
		return fmt.Sprintf("Error fetching arbitrage bets: %v", err)
	}
	if len(arbs) == 0 {
		return fmt.Sprintf("No arbitrage above %.1f%% in %s", f.MinProfit, strings.ToLower(args[0]))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Arbitrage (%s)\n", strings.ToLower(args[0]))
	for _, a := range arbs {
		fmt.Fprintf(&sb, "\n%s vs %s, profit %.2f%%\n", a.Event.Home, a.Event.Away, a.ProfitMargin)
		for _, leg := range a.Legs {
			fmt.Fprintf(&sb, "  %s @ %s %.2f\n", leg.Side, leg.Bookmaker, leg.Odds)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
