package domain

import "time"

type EventData struct {
	ID           string    `json:"id"`
	Sport        string    `json:"sport"`
	League       string    `json:"league,omitempty"`
	LeagueID     string    `json:"league_id,omitempty"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`
}

type OddsMetadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	IsEnded     bool      `json:"is_ended"`
	Hash        string    `json:"hash"`
}

// KeyedBookmaker is a per-bookmaker odds entry.
type KeyedBookmaker interface {
	BookmakerID() string
}

// MarketOutput is the normalized odds document for one event and market.
type MarketOutput[B KeyedBookmaker] struct {
	Event      EventData    `json:"event"`
	Market     string       `json:"market"`
	Bookmakers []B          `json:"bookmakers"`
	Metadata   OddsMetadata `json:"metadata"`
}

func (o *MarketOutput[B]) EventInfo() EventData { return o.Event }
func (o *MarketOutput[B]) MarketKey() string    { return o.Market }
func (o *MarketOutput[B]) Meta() *OddsMetadata  { return &o.Metadata }
func (o *MarketOutput[B]) BookmakerList() any   { return o.Bookmakers }
func (o *MarketOutput[B]) BookmakerCount() int  { return len(o.Bookmakers) }

// RetainBookmakers drops entries whose key fails keep and returns how many remain.
func (o *MarketOutput[B]) RetainBookmakers(keep func(key string) bool) int {
	kept := o.Bookmakers[:0]
	for _, b := range o.Bookmakers {
		if keep(b.BookmakerID()) {
			kept = append(kept, b)
		}
	}
	o.Bookmakers = kept
	return len(kept)
}

// MarketOdds is implemented by every market document.
type MarketOdds interface {
	EventInfo() EventData
	MarketKey() string
	Meta() *OddsMetadata
	BookmakerList() any
	BookmakerCount() int
	RetainBookmakers(keep func(key string) bool) int
}

type OddsValues struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

type BookmakerOdds struct {
	Key       string     `json:"key"`
	Name      string     `json:"name"`
	Odds      OddsValues `json:"odds"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type AsianHandicapLine struct {
	Hdp  float64 `json:"hdp"`
	Home float64 `json:"home"`
	Away float64 `json:"away"`
}

type AsianHandicapBookmaker struct {
	Key       string              `json:"key"`
	Name      string              `json:"name"`
	Lines     []AsianHandicapLine `json:"lines"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type TotalsLine struct {
	Line  float64 `json:"line"`
	Over  float64 `json:"over"`
	Under float64 `json:"under"`
}

type TotalsBookmaker struct {
	Key       string       `json:"key"`
	Name      string       `json:"name"`
	Lines     []TotalsLine `json:"lines"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type BTTSOdds struct {
	Yes float64 `json:"yes"`
	No  float64 `json:"no"`
}

type BTTSBookmaker struct {
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Odds      BTTSOdds  `json:"odds"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CorrectScoreOdds struct {
	Score string  `json:"score"`
	Odds  float64 `json:"odds"`
}

type CorrectScoreBookmaker struct {
	Key       string             `json:"key"`
	Name      string             `json:"name"`
	Scores    []CorrectScoreOdds `json:"scores"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type DoubleChanceOdds struct {
	HomeDraw float64 `json:"home_draw"`
	DrawAway float64 `json:"draw_away"`
	HomeAway float64 `json:"home_away"`
}

type DoubleChanceBookmaker struct {
	Key       string           `json:"key"`
	Name      string           `json:"name"`
	Odds      DoubleChanceOdds `json:"odds"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (b BookmakerOdds) BookmakerID() string          { return b.Key }
func (b AsianHandicapBookmaker) BookmakerID() string { return b.Key }
func (b TotalsBookmaker) BookmakerID() string        { return b.Key }
func (b BTTSBookmaker) BookmakerID() string          { return b.Key }
func (b CorrectScoreBookmaker) BookmakerID() string  { return b.Key }
func (b DoubleChanceBookmaker) BookmakerID() string  { return b.Key }

type (
	OddsOutput          = MarketOutput[BookmakerOdds]
	AsianHandicapOutput = MarketOutput[AsianHandicapBookmaker]
	TotalsOutput        = MarketOutput[TotalsBookmaker]
	BTTSOutput          = MarketOutput[BTTSBookmaker]
	CorrectScoreOutput  = MarketOutput[CorrectScoreBookmaker]
	DoubleChanceOutput  = MarketOutput[DoubleChanceBookmaker]
)
