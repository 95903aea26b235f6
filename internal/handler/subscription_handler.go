package handler

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hippocampus-web3/thorchain-indexer/internal/logger"
	"github.com/hippocampus-web3/thorchain-indexer/internal/model"
	"github.com/hippocampus-web3/thorchain-indexer/internal/repository"
)

const trialDays = 15

// CreateSubscriptionRequest is the POST /subscriptions payload.
type CreateSubscriptionRequest struct {
	Email             string `json:"email" binding:"required"`
	ObservableAddress string `json:"observable_address" binding:"required"`
}

// SubscriptionResponse carries what a subscriber needs to renew on-chain.
type SubscriptionResponse struct {
	SubscriptionCode string    `json:"subscription_code"`
	RenewalMemo      string    `json:"renewal_memo"`
	SubscribedUntil  time.Time `json:"subscribed_until"`
	Enabled          bool      `json:"enabled"`
}

type SubscriptionHandler struct {
	subscriptions *repository.SubscriptionRepo
}

func NewSubscriptionHandler(subscriptions *repository.SubscriptionRepo) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// CreateSubscription registers a notification subscription for an address.
// An existing active subscription for the same (email, address) pair is
// returned as-is; otherwise a new one starts with a trial window and stays
// disabled until confirmed.
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "email and observable_address are required")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.ObservableAddress = strings.TrimSpace(req.ObservableAddress)

	if !strings.Contains(req.Email, "@") || len(req.Email) > 255 {
		ErrorResponse(c, http.StatusBadRequest, "invalid email")
		return
	}
	if !strings.HasPrefix(req.ObservableAddress, "thor1") || len(req.ObservableAddress) > 255 {
		ErrorResponse(c, http.StatusBadRequest, "invalid observable_address")
		return
	}

	existing, err := h.subscriptions.FindActive(req.Email, req.ObservableAddress)
	if err != nil {
		logger.Error("Error looking up subscription for %s: %v", req.ObservableAddress, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error creating subscription")
		return
	}
	if existing != nil {
		SuccessResponse(c, http.StatusOK, toSubscriptionResponse(existing))
		return
	}

	code, err := newSubscriptionCode()
	if err != nil {
		logger.Error("Error generating subscription code: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error creating subscription")
		return
	}

	subscription := &model.Subscription{
		UserId:            req.Email,
		Email:             req.Email,
		ObservableAddress: req.ObservableAddress,
		Channel:           "email",
		Enabled:           false,
		SubscribedUntil:   time.Now().UTC().AddDate(0, 0, trialDays),
		SubscriptionCode:  code,
	}
	if err := h.subscriptions.Create(subscription); err != nil {
		logger.Error("Error creating subscription for %s: %v", req.ObservableAddress, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error creating subscription")
		return
	}

	logger.Info("Created subscription %s for %s", code, req.ObservableAddress)
	SuccessResponse(c, http.StatusCreated, toSubscriptionResponse(subscription))
}

func toSubscriptionResponse(s *model.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		SubscriptionCode: s.SubscriptionCode,
		RenewalMemo:      "TB:SUB:" + s.SubscriptionCode,
		SubscribedUntil:  s.SubscribedUntil,
		Enabled:          s.Enabled,
	}
}

// newSubscriptionCode builds a short code fit for an on-chain memo.
func newSubscriptionCode() (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate subscription code: %w", err)
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return "SUB-" + string(buf), nil
}
