package handler

import (
	"net/http"
	"strconv"
	"strings"

	"nsn-odds-data/internal/apierr"
	"nsn-odds-data/internal/domain"
	"nsn-odds-data/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetOdds godoc
// @Summary      Odds for one event
// @Description  Normalized odds for the market, restricted to bookmakers licensed in region
// @Tags         odds
// @Produce      json
// @Param        eventId     query  string  true   "Event id"
// @Param        region      query  string  true   "Region code"
// @Param        market      query  string  false  "1x2, asian_handicap, totals, btts, correct_score, double_chance"  default(1x2)
// @Param        bookmakers  query  string  false  "Comma separated bookmaker keys"
// @Success      200  {object}  domain.OddsOutput
// @Failure      400  {object}  apierr.Error
// @Failure      404  {object}  apierr.Error
// @Failure      422  {object}  apierr.Error
// @Failure      504  {object}  apierr.Error
// @Router       /odds [get]
func (h *Handler) GetOdds(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-odds")
	defer span.End()

	eventID := strings.TrimSpace(c.Query("eventId"))
	region := c.Query("region")
	market := domain.ParseMarket(c.Query("market"))
	span.SetAttributes(
		attribute.String("event.id", eventID),
		attribute.String("region", region),
		attribute.String("market", string(market)),
	)

	odds, err := h.svc.Odds.Odds(ctx, eventID, region, market, service.SplitCSV(c.Query("bookmakers")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, odds)
}

// GetOddsMulti godoc
// @Summary      Odds for several events
// @Description  Up to 10 events fetched in parallel; events without odds are omitted
// @Tags         odds
// @Produce      json
// @Param        eventIds    query  string  true   "Comma separated event ids (1-10)"
// @Param        region      query  string  true   "Region code"
// @Param        market      query  string  false  "Market key"  default(1x2)
// @Param        bookmakers  query  string  false  "Comma separated bookmaker keys"
// @Success      200  {array}   domain.OddsOutput
// @Failure      400  {object}  apierr.Error
// @Router       /odds/multi [get]
func (h *Handler) GetOddsMulti(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-odds-multi")
	defer span.End()

	ids := service.SplitCSV(c.Query("eventIds"))
	span.SetAttributes(attribute.Int("events", len(ids)))

	docs, err := h.svc.Odds.OddsMulti(ctx, ids, c.Query("region"), domain.ParseMarket(c.Query("market")), service.SplitCSV(c.Query("bookmakers")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// GetOddsUpdated godoc
// @Summary      Odds updated since a timestamp
// @Tags         odds
// @Produce      json
// @Param        since      query  int     true   "Unix seconds"
// @Param        region     query  string  true   "Region code"
// @Param        bookmaker  query  string  false  "Bookmaker key, defaults to the region's first"
// @Param        sport      query  string  false  "Sport slug"
// @Param        market     query  string  false  "Upstream market name"  default(ML)
// @Success      200  {array}   object
// @Failure      400  {object}  apierr.Error
// @Router       /odds/updated [get]
func (h *Handler) GetOddsUpdated(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-odds-updated")
	defer span.End()

	since, err := strconv.ParseInt(strings.TrimSpace(c.Query("since")), 10, 64)
	if err != nil {
		respondError(c, apierr.Validation("since must be a unix timestamp"))
		return
	}

	updated, err := h.svc.Odds.OddsUpdated(ctx, since, c.Query("region"), c.Query("bookmaker"), c.Query("sport"), c.DefaultQuery("market", "ML"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// GetOddsMovements godoc
// @Summary      Odds movement history
// @Tags         odds
// @Produce      json
// @Param        eventId    query  string  true   "Event id"
// @Param        region     query  string  true   "Region code"
// @Param        bookmaker  query  string  false  "Bookmaker key, defaults to the region's first"
// @Param        market     query  string  false  "Upstream market name"  default(ML)
// @Success      200  {object}  domain.OddsMovements
// @Failure      404  {object}  apierr.Error
// @Router       /odds/movements [get]
func (h *Handler) GetOddsMovements(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-odds-movements")
	defer span.End()

	eventID := strings.TrimSpace(c.Query("eventId"))
	if eventID == "" {
		respondError(c, apierr.Validation("eventId is required"))
		return
	}

	m, err := h.svc.Odds.Movements(ctx, eventID, c.Query("region"), c.Query("bookmaker"), c.DefaultQuery("market", "ML"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// ListValueBets godoc
// @Summary      Value bets
// @Description  Value bets from the region's bookmakers, highest expected value first
// @Tags         analytics
// @Produce      json
// @Param        region  query  string  true   "Region code"
// @Param        sport   query  string  false  "Sport slug"
// @Param        league  query  string  false  "League slug"
// @Param        minEV   query  number  false  "Minimum expected value"  default(2.0)
// @Param        limit   query  int     false  "Max results (max 50)"  default(10)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  apierr.Error
// @Failure      429  {object}  apierr.Error
// @Router       /value-bets [get]
func (h *Handler) ListValueBets(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-value-bets")
	defer span.End()

	minEV, err := queryFloat(c, "minEV", service.DefaultMinEV)
	if err != nil {
		respondError(c, err)
		return
	}
	limit, err := queryLimit(c, "limit", service.DefaultValueBetLimit, 50)
	if err != nil {
		respondError(c, err)
		return
	}

	bets, err := h.svc.Odds.ValueBets(ctx, c.Query("region"), domain.ValueBetFilter{
		Sport:  c.Query("sport"),
		League: c.Query("league"),
		MinEV:  minEV,
		Limit:  limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bets})
}

// ListArbitrageBets godoc
// @Summary      Arbitrage opportunities
// @Tags         analytics
// @Produce      json
// @Param        region     query  string  true   "Region code"
// @Param        sport      query  string  false  "Sport slug"
// @Param        minProfit  query  number  false  "Minimum profit margin percent"  default(1.0)
// @Param        limit      query  int     false  "Max results (max 50)"  default(5)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  apierr.Error
// @Router       /arbitrage-bets [get]
func (h *Handler) ListArbitrageBets(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-arbitrage-bets")
	defer span.End()

	minProfit, err := queryFloat(c, "minProfit", service.DefaultMinProfit)
	if err != nil {
		respondError(c, err)
		return
	}
	limit, err := queryLimit(c, "limit", service.DefaultArbitrageLimit, 50)
	if err != nil {
		respondError(c, err)
		return
	}

	bets, err := h.svc.Odds.ArbitrageBets(ctx, c.Query("region"), domain.ArbitrageFilter{
		Sport:     c.Query("sport"),
		MinProfit: minProfit,
		Limit:     limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bets})
}
