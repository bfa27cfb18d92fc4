package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"nsn-odds-data/internal/apierr"
	"nsn-odds-data/internal/domain"
	"nsn-odds-data/internal/queue"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type GenerateRequest struct {
	EventID    string   `json:"event_id"`
	Region     string   `json:"region"`
	Bookmakers []string `json:"bookmakers"`
	Market     string   `json:"market"`
}

type GenerateResponse struct {
	RequestID uuid.UUID `json:"request_id"`
	Status    string    `json:"status"`
	Path      string    `json:"path"`
}

type FileInfoResponse struct {
	RequestID uuid.UUID `json:"request_id"`
	Status    string    `json:"status"`
	Path      string    `json:"path"`
	Hash      *string   `json:"hash"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Generate godoc
// @Summary      Request a static odds file
// @Description  Creates the tracking records and generates the file, through the job queue when available
// @Tags         static
// @Accept       json
// @Produce      json
// @Param        request  body  GenerateRequest  true  "Event, optional region and bookmakers, market"
// @Success      200  {object}  GenerateResponse
// @Failure      400  {object}  apierr.Error
// @Failure      429  {object}  apierr.Error
// @Router       /generate [post]
func (h *Handler) Generate(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.generate")
	defer span.End()

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Validation("invalid request body: "+err.Error()))
		return
	}
	market := domain.ParseMarket(req.Market)
	span.SetAttributes(attribute.String("event.id", req.EventID), attribute.String("market", string(market)))

	bookmakers := req.Bookmakers
	if region := strings.TrimSpace(req.Region); region != "" {
		var err error
		if bookmakers, err = h.svc.Regions.BookmakersForRegion(region, req.Bookmakers); err != nil {
			respondError(c, err)
			return
		}
	}

	rd, file, err := h.svc.Files.Prepare(ctx, req.EventID, market)
	if err != nil {
		respondError(c, err)
		return
	}

	status := "completed"
	if h.svc.Jobs != nil {
		if _, err := h.svc.Jobs.Enqueue(ctx, queue.GenerateJob{StaticFileID: file.ID, Bookmakers: bookmakers}); err != nil {
			respondError(c, err)
			return
		}
		status = "queued"
	} else if _, err := h.svc.Files.Generate(ctx, rd, file, bookmakers, false); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{RequestID: rd.ID, Status: status, Path: file.Path})
}

// GetFileInfo godoc
// @Summary      Static file status
// @Tags         static
// @Produce      json
// @Param        request_id  path  string  true  "Request id returned by /generate"
// @Success      200  {object}  FileInfoResponse
// @Failure      404  {object}  apierr.Error
// @Router       /files/{request_id} [get]
func (h *Handler) GetFileInfo(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-file-info")
	defer span.End()

	id, err := uuid.Parse(c.Param("request_id"))
	if err != nil {
		respondError(c, apierr.Validation("request_id must be a UUID"))
		return
	}

	file, err := h.svc.Files.FileInfo(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	status := "pending"
	if file.Hash != nil {
		status = "completed"
	}
	c.JSON(http.StatusOK, FileInfoResponse{
		RequestID: id,
		Status:    status,
		Path:      file.Path,
		Hash:      file.Hash,
		UpdatedAt: file.UpdatedAt,
	})
}

// ServeStatic godoc
// @Summary      Download a generated odds file
// @Tags         static
// @Produce      json
// @Param        year   path  string  true  "Four digit year"
// @Param        month  path  string  true  "Month"
// @Param        file   path  string  true  "File name"
// @Success      200  {object}  service.StaticDocument
// @Failure      404  {object}  apierr.Error
// @Router       /static/{year}/{month}/{file} [get]
func (h *Handler) ServeStatic(c *gin.Context) {
	data, err := h.svc.Files.ReadFile(c.Param("year"), c.Param("month"), c.Param("file"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// CleanData godoc
// @Summary      Purge expired static files
// @Description  Deletes ended or past records older than the retention window with their files
// @Tags         static
// @Produce      json
// @Param        token  path  string  true  "Clean data token"
// @Success      200  {object}  service.CleanupResult
// @Failure      403  {object}  map[string]string
// @Router       /clean-data/{token} [post]
func (h *Handler) CleanData(c *gin.Context) {
	want := h.settings.CleanDataToken
	got := c.Param("token")
	if want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid token"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.clean-data")
	defer span.End()

	res, err := h.svc.Files.Cleanup(ctx, h.settings.RetentionDays)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
