package provider

import (
	"bytes"
	"encoding/json"
	"time"

	"nsn-odds-data/internal/domain"
)

// snapshotTime holds either unix seconds or an ISO-8601 string.
type snapshotTime struct {
	set     bool
	unix    flexFloat
	text    string
	numeric bool
}

func (t *snapshotTime) UnmarshalJSON(b []byte) error {
	*t = snapshotTime{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	t.set = true
	if b[0] == '"' {
		return json.Unmarshal(b, &t.text)
	}
	t.numeric = true
	return t.unix.UnmarshalJSON(b)
}

func (t snapshotTime) resolve(now time.Time) time.Time {
	switch {
	case !t.set:
		return now
	case t.numeric && t.unix.valid:
		sec := int64(t.unix.value)
		nsec := int64((t.unix.value - float64(sec)) * 1e9)
		return time.Unix(sec, nsec).UTC()
	case t.numeric:
		return now
	default:
		return parseTime(t.text, now)
	}
}

type rawSnapshot struct {
	Home      flexFloat    `json:"home"`
	Draw      flexFloat    `json:"draw"`
	Away      flexFloat    `json:"away"`
	Timestamp snapshotTime `json:"timestamp"`
	Time      snapshotTime `json:"time"`
}

// decodeSnapshot reports false for anything but a non-empty object.
func decodeSnapshot(raw json.RawMessage, now time.Time) (domain.OddsSnapshot, bool) {
	var keys map[string]json.RawMessage
	if !decodeObject(raw, &keys) || len(keys) == 0 {
		return domain.OddsSnapshot{}, false
	}
	var s rawSnapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.OddsSnapshot{}, false
	}
	ts := s.Timestamp
	if !ts.set {
		ts = s.Time
	}
	return domain.OddsSnapshot{
		Home:      s.Home.or(0),
		Draw:      s.Draw.optional(),
		Away:      s.Away.or(0),
		Timestamp: ts.resolve(now),
	}, true
}

type rawMovements struct {
	EventID   flexString        `json:"eventId"`
	Bookmaker *string           `json:"bookmaker"`
	Market    *string           `json:"market"`
	Opening   json.RawMessage   `json:"opening"`
	Latest    json.RawMessage   `json:"latest"`
	Movements []json.RawMessage `json:"movements"`
}

// transformMovements builds the movement history. Missing opening or latest
// snapshots fall back to the first and last movement; nil when neither exists.
func transformMovements(raw json.RawMessage, eventID, bookmaker, market string, now time.Time) *domain.OddsMovements {
	if !isObject(raw) {
		return nil
	}
	var m rawMovements
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}

	movements := []domain.OddsSnapshot{}
	for _, item := range m.Movements {
		if snap, ok := decodeSnapshot(item, now); ok {
			movements = append(movements, snap)
		}
	}

	opening, hasOpening := decodeSnapshot(m.Opening, now)
	latest, hasLatest := decodeSnapshot(m.Latest, now)
	if !hasOpening && len(movements) > 0 {
		opening, hasOpening = movements[0], true
	}
	if !hasLatest && len(movements) > 0 {
		latest, hasLatest = movements[len(movements)-1], true
	}
	if !hasOpening || !hasLatest {
		return nil
	}

	out := &domain.OddsMovements{
		EventID:   eventID,
		Bookmaker: bookmaker,
		Market:    market,
		Opening:   opening,
		Latest:    latest,
		Movements: movements,
	}
	if m.EventID != "" {
		out.EventID = string(m.EventID)
	}
	if m.Bookmaker != nil {
		out.Bookmaker = *m.Bookmaker
	}
	if m.Market != nil {
		out.Market = *m.Market
	}
	return out
}
