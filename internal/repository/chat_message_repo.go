package repository

import (
	"fmt"

	"github.com/hippocampus-web3/thorchain-indexer/internal/model"
	"gorm.io/gorm"
)

// ChatMessageRepo owns chat_messages access. Messages are append-only.
type ChatMessageRepo struct {
	db *gorm.DB
}

func NewChatMessageRepo(db *gorm.DB) *ChatMessageRepo {
	return &ChatMessageRepo{db: db}
}

// Create appends a message row.
func (r *ChatMessageRepo) Create(message *model.ChatMessage) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("failed to create chat message for node %s: %w", message.NodeAddress, err)
	}
	return nil
}

// ListByNode returns a node's messages in chronological order.
func (r *ChatMessageRepo) ListByNode(nodeAddress string, page, pageSize int) ([]model.ChatMessage, int64, error) {
	var messages []model.ChatMessage
	var total int64

	query := r.db.Model(&model.ChatMessage{}).Where("node_address = ?", nodeAddress)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count chat messages: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("timestamp ASC").Find(&messages).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list chat messages: %w", err)
	}

	return messages, total, nil
}

// Count returns the total number of message rows.
func (r *ChatMessageRepo) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.ChatMessage{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count chat messages: %w", err)
	}
	return count, nil
}
