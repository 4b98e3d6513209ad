package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const statusOK = "ok"

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// commandRequest is the framed command envelope (SPEC_FULL §4.11):
// {command, data}, where data is the command's own payload shape.
type commandRequest struct {
	Command string          `json:"command" binding:"required"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// @Summary      Dispatch a control command
// @Description  Runs one of the named commands against the control core and returns {data, success, message}
// @Tags         command
// @Accept       json
// @Produce      json
// @Param        body  body  commandRequest  true  "Command envelope"
// @Success      200   {object}  engine.Result
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/command [post]
// @Security     BearerAuth
func (h *Handler) dispatchCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}

	result := h.core.Dispatch(c.Request.Context(), req.Command, req.Data)
	if h.log != nil {
		h.log.Infow("command_dispatched", "command", req.Command, "success", result.Success)
	}
	c.JSON(http.StatusOK, result)
}
