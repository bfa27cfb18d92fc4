package provider

import (
	"encoding/json"
	"log"
	"sort"
	"strings"
	"time"

	"nsn-odds-data/internal/domain"
)

// betEvent is the event summary attached to value and arbitrage bets. Sport
// and league arrive as display strings here.
type betEvent struct {
	Home   string   `json:"home"`
	Away   string   `json:"away"`
	Date   string   `json:"date"`
	Sport  labelRef `json:"sport"`
	League labelRef `json:"league"`
}

func (e betEvent) toDomain(now time.Time) domain.BetEvent {
	sport := e.Sport.plainText()
	league := e.League.plainText()
	return domain.BetEvent{
		Home:   e.Home,
		Away:   e.Away,
		Date:   parseTime(e.Date, now),
		Sport:  domain.SportInfo{Name: sport, Slug: domain.Slugify(sport)},
		League: domain.LeagueInfo{Name: league, Slug: domain.Slugify(league)},
	}
}

// priceSet is a bookmaker or consensus price block.
type priceSet struct {
	Name string    `json:"name"`
	Home flexFloat `json:"home"`
	Draw flexFloat `json:"draw"`
	Away flexFloat `json:"away"`
	Href *string   `json:"href"`
}

// decodeObject fills dest when raw is a JSON object and leaves it zero otherwise.
func decodeObject(raw json.RawMessage, dest any) bool {
	if !isObject(raw) {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func marketName(raw json.RawMessage) string {
	var m priceSet
	if decodeObject(raw, &m) && m.Name != "" {
		return m.Name
	}
	return "ML"
}

type rawValueBet struct {
	ID                     *string         `json:"id"`
	EventID                flexString      `json:"eventId"`
	Bookmaker              string          `json:"bookmaker"`
	BetSide                string          `json:"betSide"`
	ExpectedValue          flexFloat       `json:"expectedValue"`
	ExpectedValueUpdatedAt string          `json:"expectedValueUpdatedAt"`
	Market                 json.RawMessage `json:"market"`
	BookmakerOdds          json.RawMessage `json:"bookmakerOdds"`
	Event                  json.RawMessage `json:"event"`
}

// transformValueBet reports false for entries without an event object.
func transformValueBet(item json.RawMessage, now time.Time) (domain.ValueBet, bool) {
	var raw rawValueBet
	if err := json.Unmarshal(item, &raw); err != nil {
		log.Printf("odds-api: skip value bet: %v", err)
		return domain.ValueBet{}, false
	}
	var ev betEvent
	if !isObject(raw.Event) {
		return domain.ValueBet{}, false
	}
	if err := json.Unmarshal(raw.Event, &ev); err != nil {
		log.Printf("odds-api: skip value bet event: %v", err)
		return domain.ValueBet{}, false
	}

	var book, consensus priceSet
	decodeObject(raw.BookmakerOdds, &book)
	decodeObject(raw.Market, &consensus)

	id := "vb_" + string(raw.EventID) + "_" + raw.Bookmaker
	if raw.ID != nil {
		id = *raw.ID
	}

	return domain.ValueBet{
		ID:                     id,
		EventID:                string(raw.EventID),
		Bookmaker:              raw.Bookmaker,
		Market:                 marketName(raw.Market),
		BetSide:                raw.BetSide,
		ExpectedValue:          raw.ExpectedValue.or(0),
		ExpectedValueUpdatedAt: parseTime(raw.ExpectedValueUpdatedAt, now),
		BookmakerOdds: domain.ValueBetOdds{
			Home:           book.Home.or(0),
			Draw:           book.Draw.optional(),
			Away:           book.Away.or(0),
			HomeDirectLink: book.Href,
		},
		ConsensusOdds: domain.ConsensusOdds{
			Home: consensus.Home.or(0),
			Draw: consensus.Draw.optional(),
			Away: consensus.Away.or(0),
		},
		Event: ev.toDomain(now),
	}, true
}

// selectValueBets transforms, filters and ranks value bets by expected value.
// Bookmaker membership is checked before the limit is applied.
func selectValueBets(items []json.RawMessage, f domain.ValueBetFilter, now time.Time) []domain.ValueBet {
	var allowed map[string]struct{}
	if len(f.Bookmakers) > 0 {
		allowed = make(map[string]struct{}, len(f.Bookmakers))
		for _, bm := range f.Bookmakers {
			allowed[domain.BookmakerKey(strings.TrimSpace(bm))] = struct{}{}
		}
	}

	bets := []domain.ValueBet{}
	for _, item := range items {
		bet, ok := transformValueBet(item, now)
		if !ok {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[domain.BookmakerKey(bet.Bookmaker)]; !ok {
				continue
			}
		}
		if bet.ExpectedValue < f.MinEV {
			continue
		}
		if f.Sport != "" && !strings.EqualFold(bet.Event.Sport.Slug, f.Sport) {
			continue
		}
		if f.League != "" && !strings.EqualFold(bet.Event.League.Slug, f.League) {
			continue
		}
		bets = append(bets, bet)
	}

	sort.SliceStable(bets, func(i, j int) bool {
		return bets[i].ExpectedValue > bets[j].ExpectedValue
	})
	if f.Limit >= 0 && len(bets) > f.Limit {
		bets = bets[:f.Limit]
	}
	return bets
}
