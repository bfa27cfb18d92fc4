package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// ListSports godoc
// @Summary      List sports
// @Tags         catalog
// @Produce      json
// @Success      200  {array}   domain.Sport
// @Failure      502  {object}  apierr.Error
// @Router       /sports [get]
func (h *Handler) ListSports(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-sports")
	defer span.End()

	sports, err := h.svc.Odds.Sports(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sports)
}

// ListBookmakers godoc
// @Summary      List bookmakers
// @Description  All upstream bookmakers, or only those licensed in region
// @Tags         catalog
// @Produce      json
// @Param        region  query  string  false  "Region code (br, fr, uk, es, it, de, mx, ar, co)"
// @Success      200  {array}   domain.Bookmaker
// @Failure      422  {object}  apierr.Error
// @Router       /bookmakers [get]
func (h *Handler) ListBookmakers(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-bookmakers")
	defer span.End()

	region := strings.TrimSpace(c.Query("region"))
	span.SetAttributes(attribute.String("region", region))

	books, err := h.svc.Odds.Bookmakers(ctx, region)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

// ListLeagues godoc
// @Summary      List leagues
// @Tags         catalog
// @Produce      json
// @Param        sport  query  string  false  "Sport slug"  default(football)
// @Success      200  {object}  map[string]interface{}
// @Router       /leagues [get]
func (h *Handler) ListLeagues(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-leagues")
	defer span.End()

	leagues, err := h.svc.Odds.Leagues(ctx, c.DefaultQuery("sport", "football"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": leagues})
}

// ListParticipants godoc
// @Summary      List participants
// @Description  Teams for a sport, optionally filtered by name
// @Tags         catalog
// @Produce      json
// @Param        sport   query  string  true   "Sport slug"
// @Param        search  query  string  false  "Name filter"
// @Param        limit   query  int     false  "Page size (max 500)"  default(100)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  service.ParticipantPage
// @Failure      400  {object}  apierr.Error
// @Router       /participants [get]
func (h *Handler) ListParticipants(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-participants")
	defer span.End()

	limit, err := queryLimit(c, "limit", 100, 500)
	if err != nil {
		respondError(c, err)
		return
	}
	offset, err := queryOffset(c)
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.svc.Odds.Participants(ctx, c.Query("sport"), c.Query("search"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetParticipant godoc
// @Summary      Get participant
// @Tags         catalog
// @Produce      json
// @Param        id  path  string  true  "Participant id"
// @Success      200  {object}  domain.Participant
// @Failure      404  {object}  apierr.Error
// @Router       /participants/{id} [get]
func (h *Handler) GetParticipant(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-participant")
	defer span.End()

	p, err := h.svc.Odds.Participant(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
