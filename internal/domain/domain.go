// Package domain holds the normalized odds, event and record types shared by
// the provider, services and handlers.
package domain

import "strings"

type Market string

const (
	Market1X2           Market = "1x2"
	MarketAsianHandicap Market = "asian_handicap"
	MarketTotals        Market = "totals"
	MarketBTTS          Market = "btts"
	MarketCorrectScore  Market = "correct_score"
	MarketDoubleChance  Market = "double_chance"
)

var SupportedMarkets = []Market{
	Market1X2,
	MarketAsianHandicap,
	MarketTotals,
	MarketBTTS,
	MarketCorrectScore,
	MarketDoubleChance,
}

var upstreamMarketNames = map[Market]string{
	Market1X2:           "ML",
	MarketAsianHandicap: "Asian Handicap",
	MarketTotals:        "Totals",
	MarketBTTS:          "Both Teams to Score",
	MarketCorrectScore:  "Correct Score",
	MarketDoubleChance:  "Double Chance",
}

// UpstreamName maps a market key to the name the odds provider expects.
// Unknown keys pass through unchanged.
func (m Market) UpstreamName() string {
	if name, ok := upstreamMarketNames[m]; ok {
		return name
	}
	return string(m)
}

func (m Market) Known() bool {
	_, ok := upstreamMarketNames[m]
	return ok
}

// ParseMarket normalizes user input, defaulting to 1x2.
func ParseMarket(s string) Market {
	s = strings.TrimSpace(s)
	if s == "" {
		return Market1X2
	}
	return Market(s)
}

// Slugify lowercases s, turns spaces into hyphens and drops commas and dots.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, ",", "")
	return strings.ReplaceAll(s, ".", "")
}

// BookmakerKey is the key form of a bookmaker display name.
func BookmakerKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}
