package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/connect4-table/internal/domain"
	"github.com/iamasit07/connect4-table/internal/service/game"
	"github.com/iamasit07/connect4-table/internal/transport/http/middleware"
	"github.com/iamasit07/connect4-table/pkg/auth"
	"github.com/iamasit07/connect4-table/pkg/httputil"
	log "github.com/sirupsen/logrus"
)

type TableHandler struct {
	Service      *game.Service
	Secret       string
	TokenTTL     time.Duration
	IsProduction bool
}

func NewTableHandler(svc *game.Service, secret string, tokenTTL time.Duration, isProduction bool) *TableHandler {
	return &TableHandler{
		Service:      svc,
		Secret:       secret,
		TokenTTL:     tokenTTL,
		IsProduction: isProduction,
	}
}

type createTableResponse struct {
	TableID string          `json:"tableId"`
	Token   string          `json:"token"`
	State   domain.Snapshot `json:"state"`
}

type stateResponse struct {
	State domain.Snapshot `json:"state"`
}

type errorResponse struct {
	Error string           `json:"error"`
	Code  string           `json:"code"`
	State *domain.Snapshot `json:"state,omitempty"`
}

type dropRequest struct {
	Column *int `json:"column" binding:"required"`
}

// Create opens a table and hands back the token that controls it
func (h *TableHandler) Create(c *gin.Context) {
	table, snapshot, err := h.Service.Create()
	if err != nil {
		log.Errorf("[TABLE] Failed to create table: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create table"})
		return
	}

	token, err := auth.GenerateTableToken(h.Secret, table.ID, h.TokenTTL)
	if err != nil {
		log.WithField("table", table.ID).Errorf("[TABLE] Failed to sign token: %v", err)
		h.Service.Close(table.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create table"})
		return
	}

	httputil.SetTableCookie(c.Writer, token, h.TokenTTL, h.IsProduction)
	c.JSON(http.StatusCreated, createTableResponse{
		TableID: table.ID,
		Token:   token,
		State:   snapshot,
	})
}

func (h *TableHandler) Get(c *gin.Context) {
	snapshot, err := h.Service.State(tableID(c))
	if err != nil {
		writeError(c, snapshot, err)
		return
	}
	c.JSON(http.StatusOK, stateResponse{State: snapshot})
}

func (h *TableHandler) Drop(c *gin.Context) {
	var req dropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Body must be {\"column\": <0-6>}"})
		return
	}

	snapshot, err := h.Service.Drop(tableID(c), *req.Column)
	if err != nil {
		writeError(c, snapshot, err)
		return
	}
	c.JSON(http.StatusOK, stateResponse{State: snapshot})
}

func (h *TableHandler) Reset(c *gin.Context) {
	snapshot, err := h.Service.Reset(tableID(c))
	if err != nil {
		writeError(c, snapshot, err)
		return
	}
	c.JSON(http.StatusOK, stateResponse{State: snapshot})
}

// Delete closes the table; the token stops being useful
func (h *TableHandler) Delete(c *gin.Context) {
	if err := h.Service.Close(tableID(c)); err != nil {
		writeError(c, domain.Snapshot{}, err)
		return
	}
	httputil.ClearTableCookie(c.Writer)
	c.Status(http.StatusNoContent)
}

// tableID is the table the request's token was checked against.
func tableID(c *gin.Context) string {
	return c.GetString(middleware.TableIDKey)
}

// writeError maps service errors to responses. Rejected drops carry the
// unchanged state so the client can redraw without another request.
func writeError(c *gin.Context, snapshot domain.Snapshot, err error) {
	if errors.Is(err, game.ErrTableNotFound) {
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error(), Code: "table_not_found"})
		return
	}

	var domainErr domain.Error
	if errors.As(err, &domainErr) {
		status := http.StatusConflict
		if domainErr == domain.ErrInvalidColumn {
			status = http.StatusBadRequest
		}
		c.JSON(status, errorResponse{Error: domainErr.Error(), Code: domainErr.Code(), State: &snapshot})
		return
	}

	log.Errorf("[TABLE] Unexpected error: %v", err)
	c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
}
