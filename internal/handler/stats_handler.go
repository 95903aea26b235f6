package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hippocampus-web3/thorchain-indexer/internal/logger"
	"github.com/hippocampus-web3/thorchain-indexer/internal/repository"
)

type StatsHandler struct {
	listings *repository.NodeListingRepo
	requests *repository.WhitelistRequestRepo
	messages *repository.ChatMessageRepo
}

func NewStatsHandler(listings *repository.NodeListingRepo, requests *repository.WhitelistRequestRepo, messages *repository.ChatMessageRepo) *StatsHandler {
	return &StatsHandler{
		listings: listings,
		requests: requests,
		messages: messages,
	}
}

// GetStats returns aggregate counters over the indexed data.
func (h *StatsHandler) GetStats(c *gin.Context) {
	listings, err := h.listings.Count()
	if err != nil {
		logger.Error("Error counting node listings: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error getting stats")
		return
	}

	byStatus, err := h.requests.CountByStatus()
	if err != nil {
		logger.Error("Error counting whitelist requests: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error getting stats")
		return
	}

	messages, err := h.messages.Count()
	if err != nil {
		logger.Error("Error counting chat messages: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error getting stats")
		return
	}

	var totalRequests int64
	for _, count := range byStatus {
		totalRequests += count
	}

	SuccessResponse(c, http.StatusOK, gin.H{
		"node_listings":                listings,
		"whitelist_requests":           totalRequests,
		"whitelist_requests_by_status": byStatus,
		"chat_messages":                messages,
	})
}
