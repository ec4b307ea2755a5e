package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/connect4-table/internal/service/history"
	log "github.com/sirupsen/logrus"
)

type ResultsHandler struct {
	History *history.Service // nil when no database is configured
}

func NewResultsHandler(h *history.Service) *ResultsHandler {
	return &ResultsHandler{History: h}
}

// Recent returns the latest finished rounds, newest first
func (h *ResultsHandler) Recent(c *gin.Context) {
	if h.History == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Results archive is disabled"})
		return
	}

	limit := history.DefaultRecent
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	results, err := h.History.Recent(c.Request.Context(), limit)
	if err != nil {
		log.Errorf("[RESULTS] Failed to fetch recent results: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch results"})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *ResultsHandler) Tally(c *gin.Context) {
	if h.History == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Results archive is disabled"})
		return
	}

	tally, err := h.History.Tally(c.Request.Context())
	if err != nil {
		log.Errorf("[RESULTS] Failed to tally results: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to tally results"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"winsA": tally.WinsA,
		"winsB": tally.WinsB,
		"ties":  tally.Ties,
		"total": tally.Total(),
	})
}
