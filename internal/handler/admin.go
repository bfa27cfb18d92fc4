package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"nsn-odds-data/internal/apierr"

	"github.com/gin-gonic/gin"
)

type CreateKeyRequest struct {
	Name string `json:"name"`
}

type KeyInfo struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	KeyPreview string     `json:"key_preview"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

type WhitelistCreateRequest struct {
	Sport      string  `json:"sport"`
	LeagueSlug string  `json:"league_slug"`
	LeagueName *string `json:"league_name"`
}

type WhitelistToggleRequest struct {
	IsActive *bool `json:"is_active"`
}

// CreateAPIKey godoc
// @Summary      Create an API key
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        X-Admin-Token  header  string            true  "Admin token"
// @Param        request        body    CreateKeyRequest  true  "Key name"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /admin/api-keys [post]
func (h *Handler) CreateAPIKey(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.create-api-key")
	defer span.End()

	var req CreateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Validation("invalid request body: "+err.Error()))
		return
	}
	key, err := h.svc.Keys.Create(ctx, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"key":     key.Key,
		"name":    key.Name,
		"message": "API key created successfully. Store this key securely.",
	})
}

// ListAPIKeys godoc
// @Summary      List API keys
// @Tags         admin
// @Produce      json
// @Param        X-Admin-Token  header  string  true  "Admin token"
// @Success      200  {array}   KeyInfo
// @Router       /admin/api-keys [get]
func (h *Handler) ListAPIKeys(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-api-keys")
	defer span.End()

	keys, err := h.svc.Keys.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]KeyInfo, 0, len(keys))
	for _, k := range keys {
		out = append(out, KeyInfo{
			ID:         k.ID,
			Name:       k.Name,
			KeyPreview: k.Preview(),
			IsActive:   k.IsActive,
			CreatedAt:  k.CreatedAt,
			LastUsedAt: k.LastUsedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// RevokeAPIKey godoc
// @Summary      Revoke an API key
// @Tags         admin
// @Produce      json
// @Param        X-Admin-Token  header  string  true  "Admin token"
// @Param        id             path    int     true  "Key id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  apierr.Error
// @Router       /admin/api-keys/{id} [delete]
func (h *Handler) RevokeAPIKey(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.revoke-api-key")
	defer span.End()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apierr.Validation("id must be an integer"))
		return
	}
	if err := h.svc.Keys.Revoke(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "API key revoked successfully"})
}

// ListWhitelist godoc
// @Summary      List whitelisted leagues
// @Tags         admin
// @Produce      json
// @Param        X-Admin-Token  header  string  true   "Admin token"
// @Param        sport          query   string  false  "Sport filter"
// @Success      200  {object}  map[string]interface{}
// @Router       /admin/whitelist [get]
func (h *Handler) ListWhitelist(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-whitelist")
	defer span.End()

	sport := c.Param("sport")
	if sport == "" {
		sport = c.Query("sport")
	}
	entries, err := h.svc.Whitelist.List(ctx, sport)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries, "count": len(entries)})
}

// AddWhitelist godoc
// @Summary      Whitelist a league
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        X-Admin-Token  header  string                  true  "Admin token"
// @Param        request        body    WhitelistCreateRequest  true  "League"
// @Success      200  {object}  domain.LeagueWhitelist
// @Failure      400  {object}  apierr.Error
// @Router       /admin/whitelist [post]
func (h *Handler) AddWhitelist(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.add-whitelist")
	defer span.End()

	var req WhitelistCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Validation("invalid request body: "+err.Error()))
		return
	}
	entry, err := h.svc.Whitelist.Add(ctx, req.Sport, req.LeagueSlug, req.LeagueName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// leagueSlug strips the leading slash of the catch-all parameter.
func leagueSlug(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("league_slug"), "/")
}

// RemoveWhitelist godoc
// @Summary      Remove a whitelisted league
// @Tags         admin
// @Produce      json
// @Param        X-Admin-Token  header  string  true  "Admin token"
// @Param        sport          path    string  true  "Sport"
// @Param        league_slug    path    string  true  "League slug"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  apierr.Error
// @Router       /admin/whitelist/{sport}/{league_slug} [delete]
func (h *Handler) RemoveWhitelist(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.remove-whitelist")
	defer span.End()

	sport, slug := c.Param("sport"), leagueSlug(c)
	if err := h.svc.Whitelist.Remove(ctx, sport, slug); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "sport": sport, "league_slug": slug})
}

// ToggleWhitelist godoc
// @Summary      Enable or disable a whitelisted league
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        X-Admin-Token  header  string                  true  "Admin token"
// @Param        sport          path    string                  true  "Sport"
// @Param        league_slug    path    string                  true  "League slug"
// @Param        request        body    WhitelistToggleRequest  true  "New state"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  apierr.Error
// @Router       /admin/whitelist/{sport}/{league_slug} [patch]
func (h *Handler) ToggleWhitelist(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.toggle-whitelist")
	defer span.End()

	var req WhitelistToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		respondError(c, apierr.Validation("is_active is required"))
		return
	}
	sport, slug := c.Param("sport"), leagueSlug(c)
	if err := h.svc.Whitelist.Toggle(ctx, sport, slug, *req.IsActive); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated", "sport": sport, "league_slug": slug, "is_active": *req.IsActive})
}

// SyncWhitelist godoc
// @Summary      Insert missing default whitelist entries
// @Tags         admin
// @Produce      json
// @Param        X-Admin-Token  header  string  true  "Admin token"
// @Success      200  {object}  map[string]interface{}
// @Router       /admin/whitelist/sync [post]
func (h *Handler) SyncWhitelist(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.sync-whitelist")
	defer span.End()

	added, total, err := h.svc.Whitelist.SyncDefaults(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"added":   added,
		"total":   total,
		"message": fmt.Sprintf("Added %d new entries from default whitelist", added),
	})
}

// ResetMetrics godoc
// @Summary      Reset usage counters
// @Tags         admin
// @Produce      json
// @Param        X-Admin-Token  header  string  true  "Admin token"
// @Success      200  {object}  map[string]string
// @Router       /admin/metrics/reset [post]
func (h *Handler) ResetMetrics(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.reset-metrics")
	defer span.End()

	if err := h.svc.Metrics.Reset(ctx); err != nil {
		respondError(c, apierr.Cache(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
