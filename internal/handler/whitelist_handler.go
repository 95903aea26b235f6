package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hippocampus-web3/thorchain-indexer/internal/logger"
	"github.com/hippocampus-web3/thorchain-indexer/internal/repository"
)

type WhitelistHandler struct {
	requests *repository.WhitelistRequestRepo
}

func NewWhitelistHandler(requests *repository.WhitelistRequestRepo) *WhitelistHandler {
	return &WhitelistHandler{requests: requests}
}

// GetRequests returns whitelist requests visible to an address: the ones it
// filed plus the ones targeting nodes it operates.
func (h *WhitelistHandler) GetRequests(c *gin.Context) {
	address := strings.TrimSpace(c.Query("address"))
	if address == "" {
		ErrorResponse(c, http.StatusBadRequest, "address is required")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	requests, total, err := h.requests.ListByAddress(address, page, limit)
	if err != nil {
		logger.Error("Error getting whitelist requests for %s: %v", address, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error getting whitelist requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       requests,
		"pagination": NewPagination(total, page, limit),
	})
}
