package provider

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"nsn-odds-data/internal/domain"
)

var (
	moneylineNames     = []string{"ML", "1x2", "h2h"}
	asianHandicapNames = []string{"Asian Handicap", "AH", "asian_handicap"}
	totalsNames        = []string{"Totals", "Over/Under", "totals"}
	bttsNames          = []string{"Both Teams to Score", "BTTS", "btts"}
	correctScoreNames  = []string{"Correct Score", "correct_score"}
	doubleChanceNames  = []string{"Double Chance", "double_chance"}
)

// TransformOdds turns an upstream /odds payload into the market document for
// market. It returns nil when no bookmaker carries usable odds. Unknown
// markets are read as moneyline with the key echoed back.
func TransformOdds(data []byte, market domain.Market, now time.Time) (domain.MarketOdds, error) {
	var ev rawEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode odds payload: %w", err)
	}

	switch market {
	case domain.MarketAsianHandicap:
		return transformAsianHandicap(&ev, now), nil
	case domain.MarketTotals:
		return transformTotals(&ev, now), nil
	case domain.MarketBTTS:
		return transformBTTS(&ev, now), nil
	case domain.MarketCorrectScore:
		return transformCorrectScore(&ev, now), nil
	case domain.MarketDoubleChance:
		return transformDoubleChance(&ev, now), nil
	default:
		return transformMoneyline(&ev, string(market), now), nil
	}
}

func (e *rawEvent) eventData(now time.Time) domain.EventData {
	ed := domain.EventData{
		ID:           string(e.ID),
		HomeTeam:     e.home(),
		AwayTeam:     e.away(),
		CommenceTime: parseTime(e.date(), now),
	}
	if e.Sport.objectLike() {
		ed.Sport = e.Sport.slugOr("football")
	} else {
		ed.Sport = e.Sport.text
	}
	if e.League.object {
		ed.League = e.League.nameOr("")
		ed.LeagueID = string(e.League.id)
	} else {
		ed.League = e.League.text
		ed.LeagueID = string(e.LeagueID)
	}
	return ed
}

func buildOutput[B domain.KeyedBookmaker](ev *rawEvent, market string, books []B, now time.Time) domain.MarketOdds {
	if len(books) == 0 {
		return nil
	}
	return &domain.MarketOutput[B]{
		Event:      ev.eventData(now),
		Market:     market,
		Bookmakers: books,
		Metadata: domain.OddsMetadata{
			GeneratedAt: now,
			IsEnded:     ev.Completed,
		},
	}
}

func findMarket(markets []rawMarket, names []string) *rawMarket {
	for i := range markets {
		for _, n := range names {
			if markets[i].Name == n {
				return &markets[i]
			}
		}
	}
	return nil
}

func transformMoneyline(ev *rawEvent, market string, now time.Time) domain.MarketOdds {
	var books []domain.BookmakerOdds

	for _, bm := range ev.Bookmakers.named {
		m := findMarket(bm.markets, moneylineNames)
		if m == nil {
			continue
		}
		rows, _ := decodeRows(m.Odds)
		if len(rows) == 0 {
			continue
		}
		r := rows[0]
		if !r.Home.positive() || !r.Draw.positive() || !r.Away.positive() {
			continue
		}
		books = append(books, domain.BookmakerOdds{
			Key:       domain.BookmakerKey(bm.name),
			Name:      bm.name,
			Odds:      domain.OddsValues{Home: r.Home.value, Draw: r.Draw.value, Away: r.Away.value},
			UpdatedAt: parseTime(m.UpdatedAt, now),
		})
	}

	for _, bm := range ev.Bookmakers.listed {
		var m *rawMarket
		for i := range bm.Markets {
			switch bm.Markets[i].Key {
			case "h2h", "1x2", "ML":
				m = &bm.Markets[i]
			}
			if m != nil {
				break
			}
		}
		if m == nil || len(m.Outcomes) < 3 {
			continue
		}
		home, draw, away := m.Outcomes[0].Price, m.Outcomes[1].Price, m.Outcomes[2].Price
		if !home.positive() || !draw.positive() || !away.positive() {
			continue
		}
		books = append(books, domain.BookmakerOdds{
			Key:       bm.Key,
			Name:      bm.displayName(),
			Odds:      domain.OddsValues{Home: home.value, Draw: draw.value, Away: away.value},
			UpdatedAt: parseTime(m.LastUpdate, now),
		})
	}

	return buildOutput(ev, market, books, now)
}

func transformAsianHandicap(ev *rawEvent, now time.Time) domain.MarketOdds {
	var books []domain.AsianHandicapBookmaker
	for _, bm := range ev.Bookmakers.named {
		m := findMarket(bm.markets, asianHandicapNames)
		if m == nil {
			continue
		}
		rows, _ := decodeRows(m.Odds)
		var lines []domain.AsianHandicapLine
		for _, r := range rows {
			if r.Hdp.present && !r.Hdp.valid {
				continue
			}
			if !r.Home.positive() || !r.Away.positive() {
				continue
			}
			lines = append(lines, domain.AsianHandicapLine{Hdp: r.Hdp.or(0), Home: r.Home.value, Away: r.Away.value})
		}
		if len(lines) == 0 {
			continue
		}
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].Hdp < lines[j].Hdp })
		books = append(books, domain.AsianHandicapBookmaker{
			Key:       domain.BookmakerKey(bm.name),
			Name:      bm.name,
			Lines:     lines,
			UpdatedAt: parseTime(m.UpdatedAt, now),
		})
	}
	return buildOutput(ev, string(domain.MarketAsianHandicap), books, now)
}

func transformTotals(ev *rawEvent, now time.Time) domain.MarketOdds {
	var books []domain.TotalsBookmaker
	for _, bm := range ev.Bookmakers.named {
		m := findMarket(bm.markets, totalsNames)
		if m == nil {
			continue
		}
		rows, _ := decodeRows(m.Odds)
		var lines []domain.TotalsLine
		for _, r := range rows {
			line := r.Line
			if !line.present {
				line = r.Hdp
			}
			if line.present && !line.valid {
				continue
			}
			if !r.Over.positive() || !r.Under.positive() {
				continue
			}
			lines = append(lines, domain.TotalsLine{Line: line.or(0), Over: r.Over.value, Under: r.Under.value})
		}
		if len(lines) == 0 {
			continue
		}
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].Line < lines[j].Line })
		books = append(books, domain.TotalsBookmaker{
			Key:       domain.BookmakerKey(bm.name),
			Name:      bm.name,
			Lines:     lines,
			UpdatedAt: parseTime(m.UpdatedAt, now),
		})
	}
	return buildOutput(ev, string(domain.MarketTotals), books, now)
}

func transformBTTS(ev *rawEvent, now time.Time) domain.MarketOdds {
	var books []domain.BTTSBookmaker
	for _, bm := range ev.Bookmakers.named {
		m := findMarket(bm.markets, bttsNames)
		if m == nil {
			continue
		}
		rows, _ := decodeRows(m.Odds)
		if len(rows) == 0 {
			continue
		}
		r := rows[0]
		if !r.Yes.positive() || !r.No.positive() {
			continue
		}
		books = append(books, domain.BTTSBookmaker{
			Key:       domain.BookmakerKey(bm.name),
			Name:      bm.name,
			Odds:      domain.BTTSOdds{Yes: r.Yes.value, No: r.No.value},
			UpdatedAt: parseTime(m.UpdatedAt, now),
		})
	}
	return buildOutput(ev, string(domain.MarketBTTS), books, now)
}

func transformCorrectScore(ev *rawEvent, now time.Time) domain.MarketOdds {
	var books []domain.CorrectScoreBookmaker
	for _, bm := range ev.Bookmakers.named {
		m := findMarket(bm.markets, correctScoreNames)
		if m == nil {
			continue
		}
		rows, isList := decodeRows(m.Odds)
		if !isList {
			continue
		}
		var scores []domain.CorrectScoreOdds
		for _, r := range rows {
			if r.Score == "" || !r.Odds.positive() {
				continue
			}
			scores = append(scores, domain.CorrectScoreOdds{Score: string(r.Score), Odds: r.Odds.value})
		}
		if len(scores) == 0 {
			continue
		}
		books = append(books, domain.CorrectScoreBookmaker{
			Key:       domain.BookmakerKey(bm.name),
			Name:      bm.name,
			Scores:    scores,
			UpdatedAt: parseTime(m.UpdatedAt, now),
		})
	}
	return buildOutput(ev, string(domain.MarketCorrectScore), books, now)
}

func transformDoubleChance(ev *rawEvent, now time.Time) domain.MarketOdds {
	var books []domain.DoubleChanceBookmaker
	for _, bm := range ev.Bookmakers.named {
		m := findMarket(bm.markets, doubleChanceNames)
		if m == nil {
			continue
		}
		rows, _ := decodeRows(m.Odds)
		if len(rows) == 0 {
			continue
		}
		r := rows[0]
		homeDraw := firstPresent(r.OneX, r.HomeDraw)
		drawAway := firstPresent(r.XTwo, r.DrawAway)
		homeAway := firstPresent(r.OneTwo, r.HomeAway)
		if !homeDraw.positive() || !drawAway.positive() || !homeAway.positive() {
			continue
		}
		books = append(books, domain.DoubleChanceBookmaker{
			Key:  domain.BookmakerKey(bm.name),
			Name: bm.name,
			Odds: domain.DoubleChanceOdds{
				HomeDraw: homeDraw.value,
				DrawAway: drawAway.value,
				HomeAway: homeAway.value,
			},
			UpdatedAt: parseTime(m.UpdatedAt, now),
		})
	}
	return buildOutput(ev, string(domain.MarketDoubleChance), books, now)
}

func firstPresent(primary, fallback flexFloat) flexFloat {
	if primary.present {
		return primary
	}
	return fallback
}
