package provider

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// flexString accepts JSON strings and numbers; ids arrive as either.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(b)
	return nil
}

// flexFloat is a numeric field that may be a number, a numeric string, a
// placeholder like "N/A", or absent. It never fails to decode.
type flexFloat struct {
	value   float64
	present bool
	valid   bool
	text    string
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	*f = flexFloat{}
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	f.present = true
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		s = str
	}
	f.text = s
	f.value, f.valid = parseNumber(s)
	return nil
}

func (f flexFloat) positive() bool { return f.valid && f.value > 0 }

func (f flexFloat) or(def float64) float64 {
	if f.valid {
		return f.value
	}
	return def
}

// optional returns nil for absent, empty, placeholder or zero values.
func (f flexFloat) optional() *float64 {
	if !f.present || f.text == "" || strings.EqualFold(f.text, "N/A") {
		return nil
	}
	v := f.or(0)
	if v == 0 {
		return nil
	}
	return &v
}

func (f flexFloat) int() *int {
	if !f.valid {
		return nil
	}
	n := int(f.value)
	return &n
}

// labelRef is a sport or league reference, sent either as a plain string or
// as an object with name, slug and id.
type labelRef struct {
	set    bool
	object bool
	text   string
	name   *string
	slug   *string
	id     flexString
}

func (l *labelRef) UnmarshalJSON(b []byte) error {
	*l = labelRef{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	l.set = true
	switch b[0] {
	case '{':
		var obj struct {
			Name *string   `json:"name"`
			Slug *string   `json:"slug"`
			ID   flexString `json:"id"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		l.object = true
		l.name, l.slug, l.id = obj.Name, obj.Slug, obj.ID
	case '"':
		return json.Unmarshal(b, &l.text)
	default:
		l.text = string(b)
	}
	return nil
}

// objectLike reports whether the reference should be read as an object.
// An absent reference counts as an empty object.
func (l labelRef) objectLike() bool { return !l.set || l.object }

func (l labelRef) nameOr(def string) string {
	if l.name != nil {
		return *l.name
	}
	return def
}

func (l labelRef) slugOr(def string) string {
	if l.slug != nil {
		return *l.slug
	}
	return def
}

// plainText is the value when sent as a string, empty otherwise.
func (l labelRef) plainText() string {
	if l.object {
		return ""
	}
	return l.text
}

type rawScores struct {
	Home flexFloat `json:"home"`
	Away flexFloat `json:"away"`
}

type rawOutcome struct {
	Price flexFloat `json:"price"`
}

type rawMarket struct {
	Name       string          `json:"name"`
	Key        string          `json:"key"`
	UpdatedAt  string          `json:"updatedAt"`
	LastUpdate string          `json:"last_update"`
	Odds       json.RawMessage `json:"odds"`
	Outcomes   []rawOutcome    `json:"outcomes"`
}

// oddsRow covers every per-market odds entry shape.
type oddsRow struct {
	Home  flexFloat  `json:"home"`
	Draw  flexFloat  `json:"draw"`
	Away  flexFloat  `json:"away"`
	Hdp   flexFloat  `json:"hdp"`
	Line  flexFloat  `json:"line"`
	Over  flexFloat  `json:"over"`
	Under flexFloat  `json:"under"`
	Yes   flexFloat  `json:"yes"`
	No    flexFloat  `json:"no"`
	Score flexString `json:"score"`
	Odds  flexFloat  `json:"odds"`

	OneX     flexFloat `json:"1X"`
	XTwo     flexFloat `json:"X2"`
	OneTwo   flexFloat `json:"12"`
	HomeDraw flexFloat `json:"home_draw"`
	DrawAway flexFloat `json:"draw_away"`
	HomeAway flexFloat `json:"home_away"`
}

// decodeRows reads a market's odds field. A single object is returned as one
// row; isList reports whether the field was an array. Malformed rows are skipped.
func decodeRows(raw json.RawMessage) (rows []oddsRow, isList bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false
	}
	switch raw[0] {
	case '{':
		var row oddsRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, false
		}
		return []oddsRow{row}, false
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, true
		}
		for _, item := range items {
			var row oddsRow
			if err := json.Unmarshal(item, &row); err != nil {
				continue
			}
			rows = append(rows, row)
		}
		return rows, true
	}
	return nil, false
}

type namedBookmaker struct {
	name    string
	markets []rawMarket
}

type listedBookmaker struct {
	Key     string      `json:"key"`
	Title   *string     `json:"title"`
	Markets []rawMarket `json:"markets"`
}

func (b listedBookmaker) displayName() string {
	if b.Title != nil {
		return *b.Title
	}
	return b.Key
}

// bookmakerSet holds bookmakers sent either as an object keyed by display
// name (upstream order preserved) or as a list of keyed entries. Entries
// whose markets cannot be read are dropped.
type bookmakerSet struct {
	named  []namedBookmaker
	listed []listedBookmaker
}

func (s *bookmakerSet) UnmarshalJSON(b []byte) error {
	*s = bookmakerSet{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return nil
		}
		for _, item := range items {
			var bm listedBookmaker
			if err := json.Unmarshal(item, &bm); err != nil {
				continue
			}
			s.listed = append(s.listed, bm)
		}
	case '{':
		dec := json.NewDecoder(bytes.NewReader(b))
		if _, err := dec.Token(); err != nil {
			return nil
		}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil
			}
			name, _ := tok.(string)
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil
			}
			var markets []rawMarket
			if err := json.Unmarshal(raw, &markets); err != nil {
				continue
			}
			s.named = append(s.named, namedBookmaker{name: name, markets: markets})
		}
	}
	return nil
}

type rawEvent struct {
	ID           flexString   `json:"id"`
	Home         *string      `json:"home"`
	HomeTeam     string       `json:"home_team"`
	Away         *string      `json:"away"`
	AwayTeam     string       `json:"away_team"`
	Date         *string      `json:"date"`
	CommenceTime string       `json:"commence_time"`
	Status       string       `json:"status"`
	Sport        labelRef     `json:"sport"`
	League       labelRef     `json:"league"`
	LeagueID     flexString   `json:"leagueId"`
	Completed    bool         `json:"completed"`
	Scores       *rawScores   `json:"scores"`
	Minute       flexFloat    `json:"minute"`
	Period       *string      `json:"period"`
	Bookmakers   bookmakerSet `json:"bookmakers"`
}

func (e *rawEvent) home() string {
	if e.Home != nil {
		return *e.Home
	}
	return e.HomeTeam
}

func (e *rawEvent) away() string {
	if e.Away != nil {
		return *e.Away
	}
	return e.AwayTeam
}

func (e *rawEvent) date() string {
	if e.Date != nil {
		return *e.Date
	}
	return e.CommenceTime
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
	"2006-01-02",
}

// parseTime reads an ISO-8601 timestamp, falling back to now when empty or
// unparseable. Zone-less values are taken as UTC.
func parseTime(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return now
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return now
}
