package domain

import "time"

// BetEvent is the event summary embedded in value and arbitrage bets.
type BetEvent struct {
	Home   string     `json:"home"`
	Away   string     `json:"away"`
	Date   time.Time  `json:"date"`
	Sport  SportInfo  `json:"sport"`
	League LeagueInfo `json:"league"`
}

type ValueBetOdds struct {
	Home           float64  `json:"home"`
	Draw           *float64 `json:"draw"`
	Away           float64  `json:"away"`
	HomeDirectLink *string  `json:"homeDirectLink"`
}

type ConsensusOdds struct {
	Home float64  `json:"home"`
	Draw *float64 `json:"draw"`
	Away float64  `json:"away"`
}

type ValueBet struct {
	ID                     string        `json:"id"`
	EventID                string        `json:"eventId"`
	Bookmaker              string        `json:"bookmaker"`
	Market                 string        `json:"market"`
	BetSide                string        `json:"betSide"`
	ExpectedValue          float64       `json:"expectedValue"`
	ExpectedValueUpdatedAt time.Time     `json:"expectedValueUpdatedAt"`
	BookmakerOdds          ValueBetOdds  `json:"bookmakerOdds"`
	ConsensusOdds          ConsensusOdds `json:"consensusOdds"`
	Event                  BetEvent      `json:"event"`
}

type ValueBetFilter struct {
	Sport  string
	League string
	MinEV  float64
	Limit  int
	// Bookmakers restricts results to these bookmaker keys when set.
	Bookmakers []string
}

type ArbitrageLeg struct {
	Side       string  `json:"side"`
	Bookmaker  string  `json:"bookmaker"`
	Odds       float64 `json:"odds"`
	DirectLink *string `json:"directLink"`
}

type OptimalStake struct {
	Side            string  `json:"side"`
	Bookmaker       string  `json:"bookmaker"`
	Stake           float64 `json:"stake"`
	PotentialReturn float64 `json:"potentialReturn"`
}

type ArbitrageBet struct {
	ID                 string         `json:"id"`
	EventID            string         `json:"eventId"`
	Market             string         `json:"market"`
	ProfitMargin       float64        `json:"profitMargin"`
	ImpliedProbability float64        `json:"impliedProbability"`
	TotalStake         float64        `json:"totalStake"`
	Legs               []ArbitrageLeg `json:"legs"`
	OptimalStakes      []OptimalStake `json:"optimalStakes"`
	Event              BetEvent       `json:"event"`
	DetectedAt         time.Time      `json:"detectedAt"`
}

type ArbitrageFilter struct {
	Sport     string
	MinProfit float64
	Limit     int
}

type OddsSnapshot struct {
	Home      float64   `json:"home"`
	Draw      *float64  `json:"draw"`
	Away      float64   `json:"away"`
	Timestamp time.Time `json:"timestamp"`
}

type OddsMovements struct {
	EventID   string         `json:"eventId"`
	Bookmaker string         `json:"bookmaker"`
	Market    string         `json:"market"`
	Opening   OddsSnapshot   `json:"opening"`
	Latest    OddsSnapshot   `json:"latest"`
	Movements []OddsSnapshot `json:"movements"`
}
