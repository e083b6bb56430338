package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"mapcal-api/internal/mapfile"
	"mapcal-api/internal/models"
	"mapcal-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultListLimit = 50

// MapService interface for dependency injection
type MapService interface {
	Import(ctx context.Context, name string, data []byte) (*models.MapSummary, error)
	Get(ctx context.Context, id uuid.UUID) (*models.MapSummary, error)
	List(ctx context.Context, limit int) ([]models.MapSummary, error)
	Export(ctx context.Context, id uuid.UUID) (string, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Recalibrate(ctx context.Context, id uuid.UUID, req models.CalibrationRequest) (*models.MapSummary, error)
	Locate(ctx context.Context, id uuid.UUID, x, y float64) (*models.LatLon, error)
}

// MapHandler handles .map calibration requests
type MapHandler struct {
	service MapService
}

// NewMapHandler creates a new map handler
func NewMapHandler(svc MapService) *MapHandler {
	return &MapHandler{service: svc}
}

// Register mounts the map routes on the given router group
func (h *MapHandler) Register(r gin.IRouter) {
	r.GET("/maps", h.List)
	r.POST("/maps", h.Import)
	r.GET("/maps/:id", h.Get)
	r.DELETE("/maps/:id", h.Delete)
	r.GET("/maps/:id/file", h.Export)
	r.PUT("/maps/:id/points", h.Recalibrate)
	r.GET("/maps/:id/latlon", h.Locate)
}

// Import handles POST /maps requests
//
//	@Summary	Import an OziExplorer .map file
//	@Accept		plain
//	@Produce	json
//	@Param		name	query		string	false	"display name"
//	@Success	201		{object}	models.MapSummary
//	@Failure	400		{object}	map[string]any
//	@Router		/maps [post]
func (h *MapHandler) Import(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read request body"})
		return
	}

	summary, err := h.service.Import(c.Request.Context(), c.Query("name"), data)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, summary)
}

// List handles GET /maps requests
//
//	@Summary	List stored maps
//	@Produce	json
//	@Param		limit	query	int	false	"maximum number of maps"
//	@Success	200		{array}	models.MapSummary
//	@Router		/maps [get]
func (h *MapHandler) List(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = v
	}

	summaries, err := h.service.List(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// Get handles GET /maps/:id requests
//
//	@Summary	Describe a stored map
//	@Produce	json
//	@Param		id	path		string	true	"map id"
//	@Success	200	{object}	models.MapSummary
//	@Failure	404	{object}	map[string]any
//	@Router		/maps/{id} [get]
func (h *MapHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	summary, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Delete handles DELETE /maps/:id requests
//
//	@Summary	Delete a stored map
//	@Param		id	path	string	true	"map id"
//	@Success	204
//	@Router		/maps/{id} [delete]
func (h *MapHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Export handles GET /maps/:id/file requests
//
//	@Summary	Download a map as .map text
//	@Produce	plain
//	@Param		id	path		string	true	"map id"
//	@Success	200	{string}	string
//	@Router		/maps/{id}/file [get]
func (h *MapHandler) Export(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	text, err := h.service.Export(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+id.String()+`.map"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// Recalibrate handles PUT /maps/:id/points requests
//
//	@Summary	Replace the picked points and recalibrate
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"map id"
//	@Param		request	body		models.CalibrationRequest	true	"image size and points"
//	@Success	200		{object}	models.MapSummary
//	@Failure	422		{object}	map[string]any
//	@Router		/maps/{id}/points [put]
func (h *MapHandler) Recalibrate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.CalibrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.service.Recalibrate(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Locate handles GET /maps/:id/latlon requests
//
//	@Summary	Map a pixel to latitude/longitude
//	@Produce	json
//	@Param		id	path		string	true	"map id"
//	@Param		x	query		number	true	"pixel x"
//	@Param		y	query		number	true	"pixel y"
//	@Success	200	{object}	models.LatLon
//	@Failure	409	{object}	map[string]any
//	@Router		/maps/{id}/latlon [get]
func (h *MapHandler) Locate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	xStr := c.Query("x")
	yStr := c.Query("y")

	if xStr == "" || yStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameters 'x' and 'y'"})
		return
	}

	x, err := strconv.ParseFloat(xStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid x format"})
		return
	}

	y, err := strconv.ParseFloat(yStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid y format"})
		return
	}

	latLon, err := h.service.Locate(c.Request.Context(), id, x, y)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, latLon)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid map id"})
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps service and codec errors onto HTTP responses
func writeError(c *gin.Context, err error) {
	var ferr *mapfile.FormatError
	switch {
	case errors.As(err, &ferr):
		c.JSON(http.StatusBadRequest, gin.H{"error": ferr.Error(), "kind": ferr.Kind.String(), "line": ferr.Line})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "map not found"})
	case errors.Is(err, service.ErrEmptyMap), errors.Is(err, service.ErrTooFewPoints):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrMapTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, mapfile.ErrNoCalibration), errors.Is(err, mapfile.ErrNoImageSize):
		c.JSON(http.StatusConflict, gin.H{"error": "map is not calibrated"})
	case errors.Is(err, mapfile.ErrDegenerate), errors.Is(err, service.ErrInvalidCalibration):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
