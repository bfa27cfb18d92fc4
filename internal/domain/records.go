package domain

import (
	"time"

	"github.com/google/uuid"
)

const ProviderOddsAPI = "ODDS_API"

// Refresh intervals by event proximity.
const (
	RefreshSameDay  = 5 * time.Minute
	RefreshThisWeek = time.Hour
	RefreshDistant  = 24 * time.Hour
)

// RequestData identifies one provider event and market tracked for static files.
type RequestData struct {
	ID            uuid.UUID  `json:"id"`
	Provider      string     `json:"provider"`
	ProviderID    string     `json:"provider_id"`
	Sport         string     `json:"sport"`
	Market        string     `json:"market"`
	IsEnded       bool       `json:"is_ended"`
	EventDate     *time.Time `json:"event_date,omitempty"`
	LastRefreshed *time.Time `json:"last_refreshed,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// RefreshInterval returns how long a generated file stays fresh. Day
// distance is measured in UTC calendar days; a missing event date is treated
// as today.
func (r *RequestData) RefreshInterval(now time.Time) time.Duration {
	if r.EventDate == nil {
		return RefreshSameDay
	}
	days := calendarDaysBetween(now, *r.EventDate)
	switch {
	case days <= 0:
		return RefreshSameDay
	case days <= 5:
		return RefreshThisWeek
	default:
		return RefreshDistant
	}
}

// NeedsRefresh reports whether the record is due for regeneration at now.
func (r *RequestData) NeedsRefresh(now time.Time) bool {
	if r.IsEnded {
		return false
	}
	if r.LastRefreshed == nil {
		return true
	}
	return now.Sub(*r.LastRefreshed) >= r.RefreshInterval(now)
}

func calendarDaysBetween(from, to time.Time) int {
	f := from.UTC()
	t := to.UTC()
	fd := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
	td := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(td.Sub(fd).Hours() / 24)
}

// StaticFile is the generated JSON artifact for a RequestData.
type StaticFile struct {
	ID            uuid.UUID `json:"id"`
	RequestDataID uuid.UUID `json:"request_data_id"`
	Path          string    `json:"path"`
	Hash          *string   `json:"hash"`
	LastModified  *int64    `json:"last_modified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type APIKey struct {
	ID         int64      `json:"id"`
	Key        string     `json:"key"`
	Name       string     `json:"name"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

// Preview masks a key for listings.
func (k *APIKey) Preview() string {
	if len(k.Key) > 16 {
		return k.Key[:12] + "..." + k.Key[len(k.Key)-4:]
	}
	return k.Key
}

type LeagueWhitelist struct {
	ID         int64     `json:"id"`
	Sport      string    `json:"sport"`
	LeagueSlug string    `json:"league_slug"`
	LeagueName *string   `json:"league_name"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}
