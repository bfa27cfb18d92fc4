package provider

import (
	"time"

	"nsn-odds-data/internal/domain"
)

func (e *rawEvent) sportInfo(defaultSlug string) domain.SportInfo {
	if defaultSlug == "" {
		defaultSlug = "football"
	}
	if e.Sport.object {
		return domain.SportInfo{Name: e.Sport.nameOr("Football"), Slug: e.Sport.slugOr(defaultSlug)}
	}
	return domain.SportInfo{Name: "Football", Slug: defaultSlug}
}

func (e *rawEvent) leagueInfo() domain.LeagueInfo {
	if e.League.object {
		return domain.LeagueInfo{Name: e.League.nameOr(""), Slug: e.League.slugOr("")}
	}
	return domain.LeagueInfo{Name: e.League.plainText()}
}

// toEvent maps an upstream event. sport is the slug used when the upstream
// omits one.
func (e *rawEvent) toEvent(sport string, now time.Time) domain.Event {
	return domain.Event{
		ID:     string(e.ID),
		Home:   e.home(),
		Away:   e.away(),
		Date:   parseTime(e.date(), now),
		Status: domain.ParseEventStatus(e.Status),
		Sport:  e.sportInfo(sport),
		League: e.leagueInfo(),
	}
}

// toLiveEvent is toEvent for in-play listings, carrying scores and clock.
func (e *rawEvent) toLiveEvent(sport string, now time.Time) domain.Event {
	ev := e.toEvent(sport, now)
	ev.Status = domain.StatusInProgress
	if e.Scores != nil {
		ev.Scores = &domain.ScoreInfo{
			Home: int(e.Scores.Home.or(0)),
			Away: int(e.Scores.Away.or(0)),
		}
	}
	ev.Minute = e.Minute.int()
	ev.Period = e.Period
	return ev
}
