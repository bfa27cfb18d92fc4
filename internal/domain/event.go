package domain

import "time"

type EventStatus string

const (
	StatusNotStarted EventStatus = "not_started"
	StatusInProgress EventStatus = "in_progress"
	StatusEnded      EventStatus = "ended"
)

// ParseEventStatus maps upstream status strings onto EventStatus.
func ParseEventStatus(s string) EventStatus {
	switch s {
	case "live":
		return StatusInProgress
	case "ended", "settled", "completed":
		return StatusEnded
	default:
		return StatusNotStarted
	}
}

type SportInfo struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type LeagueInfo struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ScoreInfo struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type Event struct {
	ID     string      `json:"id"`
	Home   string      `json:"home"`
	Away   string      `json:"away"`
	Date   time.Time   `json:"date"`
	Status EventStatus `json:"status"`
	Scores *ScoreInfo  `json:"scores"`
	Sport  SportInfo   `json:"sport"`
	League LeagueInfo  `json:"league"`
	Minute *int        `json:"minute,omitempty"`
	Period *string     `json:"period,omitempty"`
}

type Pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type EventList struct {
	Data       []Event    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// EventFilter carries the /events query. Dates are passed through as given.
type EventFilter struct {
	Sport    string
	League   string
	Status   string
	DateFrom string
	DateTo   string
}

type Sport struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

type Bookmaker struct {
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Region   *string `json:"region"`
	IsActive bool    `json:"is_active"`
}

type League struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Sport string `json:"sport"`
}

type Participant struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Slug    string  `json:"slug"`
	Sport   string  `json:"sport"`
	Country *string `json:"country"`
	Logo    *string `json:"logo"`
}
