package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hippocampus-web3/thorchain-indexer/internal/logger"
	"github.com/hippocampus-web3/thorchain-indexer/internal/repository"
)

type ChatHandler struct {
	messages *repository.ChatMessageRepo
}

func NewChatHandler(messages *repository.ChatMessageRepo) *ChatHandler {
	return &ChatHandler{messages: messages}
}

// GetMessages returns a node's chat history in chronological order.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	nodeAddress := c.Param("nodeAddress")
	if nodeAddress == "" {
		ErrorResponse(c, http.StatusBadRequest, "nodeAddress is required")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}

	messages, total, err := h.messages.ListByNode(nodeAddress, page, limit)
	if err != nil {
		logger.Error("Error getting chat messages for %s: %v", nodeAddress, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error getting chat messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       messages,
		"pagination": NewPagination(total, page, limit),
	})
}
