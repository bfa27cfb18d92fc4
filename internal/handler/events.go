package handler

import (
	"net/http"

	"nsn-odds-data/internal/domain"
	"nsn-odds-data/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// ListEvents godoc
// @Summary      List events
// @Description  Whitelisted events matching the filters, paginated after filtering
// @Tags         events
// @Produce      json
// @Param        sport      query  string  false  "Sport slug"
// @Param        league     query  string  false  "League slug"
// @Param        status     query  string  false  "not_started, in_progress or ended"
// @Param        date_from  query  string  false  "YYYY-MM-DD or RFC3339"
// @Param        date_to    query  string  false  "YYYY-MM-DD or RFC3339"
// @Param        limit      query  int     false  "Page size (max 2000)"  default(100)
// @Param        offset     query  int     false  "Offset"  default(0)
// @Success      200  {object}  domain.EventList
// @Failure      400  {object}  apierr.Error
// @Router       /events [get]
func (h *Handler) ListEvents(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-events")
	defer span.End()

	limit, err := queryLimit(c, "limit", 100, 2000)
	if err != nil {
		respondError(c, err)
		return
	}
	offset, err := queryOffset(c)
	if err != nil {
		respondError(c, err)
		return
	}

	f := domain.EventFilter{
		Sport:    c.Query("sport"),
		League:   c.Query("league"),
		Status:   c.Query("status"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
	}
	span.SetAttributes(attribute.String("sport", f.Sport), attribute.String("league", f.League))

	list, err := h.svc.Events.List(ctx, f, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// LiveEvents godoc
// @Summary      Live events
// @Tags         events
// @Produce      json
// @Param        sport  query  string  false  "Sport slug"
// @Param        limit  query  int     false  "Max results (max 100)"  default(20)
// @Success      200  {object}  map[string]interface{}
// @Router       /events/live [get]
func (h *Handler) LiveEvents(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.live-events")
	defer span.End()

	limit, err := queryLimit(c, "limit", 20, 100)
	if err != nil {
		respondError(c, err)
		return
	}
	events, err := h.svc.Events.Live(ctx, c.Query("sport"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": events})
}

// SearchEvents godoc
// @Summary      Search events by team name
// @Tags         events
// @Produce      json
// @Param        q      query  string  true   "Team name, at least 2 characters"
// @Param        sport  query  string  false  "Sport slug"
// @Param        limit  query  int     false  "Max results (max 50)"  default(10)
// @Success      200  {object}  domain.EventList
// @Failure      400  {object}  apierr.Error
// @Failure      429  {object}  apierr.Error
// @Router       /events/search [get]
func (h *Handler) SearchEvents(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.search-events")
	defer span.End()

	limit, err := queryLimit(c, "limit", 10, 50)
	if err != nil {
		respondError(c, err)
		return
	}
	list, err := h.svc.Events.Search(ctx, c.Query("q"), c.Query("sport"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// UpcomingEvents godoc
// @Summary      Upcoming major league events
// @Description  Next seven days of football in the configured major leagues, cached hourly
// @Tags         events
// @Produce      json
// @Param        leagues  query  string  false  "Comma separated league names overriding the default set"
// @Param        limit    query  int     false  "Page size (max 200)"  default(50)
// @Param        offset   query  int     false  "Offset"  default(0)
// @Success      200  {object}  domain.EventList
// @Router       /events/upcoming [get]
func (h *Handler) UpcomingEvents(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.upcoming-events")
	defer span.End()

	limit, err := queryLimit(c, "limit", 50, 200)
	if err != nil {
		respondError(c, err)
		return
	}
	offset, err := queryOffset(c)
	if err != nil {
		respondError(c, err)
		return
	}
	list, err := h.svc.Events.Upcoming(ctx, service.SplitCSV(c.Query("leagues")), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetEvent godoc
// @Summary      Get event
// @Tags         events
// @Produce      json
// @Param        id  path  string  true  "Event id"
// @Success      200  {object}  domain.Event
// @Failure      404  {object}  apierr.Error
// @Router       /events/{id} [get]
func (h *Handler) GetEvent(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-event")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("event.id", id))

	ev, err := h.svc.Events.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}
