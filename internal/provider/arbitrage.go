package provider

import (
	"encoding/json"
	"log"
	"sort"
	"strings"
	"time"

	"nsn-odds-data/internal/domain"
)

type rawLeg struct {
	Side       string    `json:"side"`
	Bookmaker  string    `json:"bookmaker"`
	Odds       flexFloat `json:"odds"`
	DirectLink *string   `json:"directLink"`
	Href       *string   `json:"href"`
}

type rawStake struct {
	Side            string    `json:"side"`
	Bookmaker       string    `json:"bookmaker"`
	Stake           flexFloat `json:"stake"`
	PotentialReturn flexFloat `json:"potentialReturn"`
}

type rawArbitrageBet struct {
	ID                 *string           `json:"id"`
	EventID            flexString        `json:"eventId"`
	Market             json.RawMessage   `json:"market"`
	ProfitMargin       flexFloat         `json:"profitMargin"`
	ImpliedProbability flexFloat         `json:"impliedProbability"`
	TotalStake         flexFloat         `json:"totalStake"`
	Legs               []json.RawMessage `json:"legs"`
	OptimalStakes      []json.RawMessage `json:"optimalStakes"`
	Event              json.RawMessage   `json:"event"`
	DetectedAt         *string           `json:"detectedAt"`
	CreatedAt          string            `json:"createdAt"`
}

func transformArbitrageBet(item json.RawMessage, now time.Time) (domain.ArbitrageBet, bool) {
	var raw rawArbitrageBet
	if err := json.Unmarshal(item, &raw); err != nil {
		log.Printf("odds-api: skip arbitrage bet: %v", err)
		return domain.ArbitrageBet{}, false
	}
	var ev betEvent
	if !isObject(raw.Event) {
		return domain.ArbitrageBet{}, false
	}
	if err := json.Unmarshal(raw.Event, &ev); err != nil {
		log.Printf("odds-api: skip arbitrage event: %v", err)
		return domain.ArbitrageBet{}, false
	}

	legs := []domain.ArbitrageLeg{}
	for _, l := range raw.Legs {
		var leg rawLeg
		if !decodeObject(l, &leg) {
			continue
		}
		link := leg.DirectLink
		if link == nil {
			link = leg.Href
		}
		legs = append(legs, domain.ArbitrageLeg{
			Side:       leg.Side,
			Bookmaker:  leg.Bookmaker,
			Odds:       leg.Odds.or(0),
			DirectLink: link,
		})
	}

	stakes := []domain.OptimalStake{}
	for _, s := range raw.OptimalStakes {
		var stake rawStake
		if !decodeObject(s, &stake) {
			continue
		}
		stakes = append(stakes, domain.OptimalStake{
			Side:            stake.Side,
			Bookmaker:       stake.Bookmaker,
			Stake:           stake.Stake.or(0),
			PotentialReturn: stake.PotentialReturn.or(0),
		})
	}

	id := "arb_" + string(raw.EventID)
	if raw.ID != nil {
		id = *raw.ID
	}
	detected := raw.CreatedAt
	if raw.DetectedAt != nil {
		detected = *raw.DetectedAt
	}

	return domain.ArbitrageBet{
		ID:                 id,
		EventID:            string(raw.EventID),
		Market:             marketName(raw.Market),
		ProfitMargin:       raw.ProfitMargin.or(0),
		ImpliedProbability: raw.ImpliedProbability.or(100),
		TotalStake:         raw.TotalStake.or(100),
		Legs:               legs,
		OptimalStakes:      stakes,
		Event:              ev.toDomain(now),
		DetectedAt:         parseTime(detected, now),
	}, true
}

// selectArbitrageBets transforms, filters and ranks opportunities by margin.
func selectArbitrageBets(items []json.RawMessage, f domain.ArbitrageFilter, now time.Time) []domain.ArbitrageBet {
	bets := []domain.ArbitrageBet{}
	for _, item := range items {
		bet, ok := transformArbitrageBet(item, now)
		if !ok {
			continue
		}
		if bet.ProfitMargin < f.MinProfit {
			continue
		}
		if f.Sport != "" && !strings.EqualFold(bet.Event.Sport.Slug, f.Sport) {
			continue
		}
		bets = append(bets, bet)
	}

	sort.SliceStable(bets, func(i, j int) bool {
		return bets[i].ProfitMargin > bets[j].ProfitMargin
	})
	if f.Limit >= 0 && len(bets) > f.Limit {
		bets = bets[:f.Limit]
	}
	return bets
}
