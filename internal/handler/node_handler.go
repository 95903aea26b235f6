package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hippocampus-web3/thorchain-indexer/internal/logger"
	"github.com/hippocampus-web3/thorchain-indexer/internal/model"
	"github.com/hippocampus-web3/thorchain-indexer/internal/registry"
	"github.com/hippocampus-web3/thorchain-indexer/internal/repository"
	"github.com/hippocampus-web3/thorchain-indexer/internal/thornode"
)

// Roughly one THORChain block every six seconds.
const secondsPerBlock = 6

// NodeDTO is a stored listing populated with live registry info.
type NodeDTO struct {
	model.NodeListing
	Status             string `json:"status"`
	SlashPoints        int64  `json:"slash_points"`
	ActiveTimeSeconds  int64  `json:"active_time_seconds"`
	BondProvidersCount int    `json:"bond_providers_count"`
	CurrentFeeBps      int64  `json:"current_fee_bps"`
	IsHidden           bool   `json:"is_hidden"`
	HiddenReason       string `json:"hidden_reason,omitempty"`
}

type NodeHandler struct {
	listings *repository.NodeListingRepo
	registry *registry.Cache
}

func NewNodeHandler(listings *repository.NodeListingRepo, reg *registry.Cache) *NodeHandler {
	return &NodeHandler{
		listings: listings,
		registry: reg,
	}
}

// GetNodes returns active listings enriched with registry state.
func (h *NodeHandler) GetNodes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	includeDelisted := c.Query("include_delisted") == "true"

	listings, total, err := h.listings.List(!includeDelisted, page, limit)
	if err != nil {
		logger.Error("Error getting node listings: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error getting node listings")
		return
	}

	officialNodes, err := h.registry.Nodes()
	if err != nil {
		logger.Error("Error fetching registry nodes: %v", err)
		ErrorResponse(c, http.StatusBadGateway, "Registry unavailable")
		return
	}

	currentHeight, err := h.registry.BlockHeight()
	if err != nil {
		logger.Error("Error fetching block height: %v", err)
		ErrorResponse(c, http.StatusBadGateway, "Registry unavailable")
		return
	}

	nodes := make([]NodeDTO, 0, len(listings))
	for _, listing := range listings {
		nodes = append(nodes, populateNode(listing, officialNodes, currentHeight))
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       nodes,
		"pagination": NewPagination(total, page, limit),
	})
}

// populateNode joins one listing against the registry snapshot and applies
// the hide rule: an on-chain fee above the advertised one hides the node.
func populateNode(listing model.NodeListing, officialNodes []thornode.Node, currentHeight int64) NodeDTO {
	dto := NodeDTO{NodeListing: listing}

	var official *thornode.Node
	for i := range officialNodes {
		if officialNodes[i].NodeAddress == listing.NodeAddress &&
			officialNodes[i].NodeOperatorAddress == listing.OperatorAddress {
			official = &officialNodes[i]
			break
		}
	}

	if official == nil {
		logger.Warn("Node not found in registry: %s %s", listing.NodeAddress, listing.OperatorAddress)
		dto.IsHidden = true
		dto.HiddenReason = "This node is no longer present in the registry under its listed operator."
		return dto
	}

	dto.Status = official.Status
	dto.SlashPoints = official.SlashPoints
	dto.ActiveTimeSeconds = (currentHeight - official.StatusSince) * secondsPerBlock
	dto.BondProvidersCount = len(official.BondProviders.Providers)
	if fee, err := strconv.ParseInt(official.BondProviders.NodeOperatorFee, 10, 64); err == nil {
		dto.CurrentFeeBps = fee
	}

	if dto.CurrentFeeBps > listing.FeePercentageBps {
		dto.IsHidden = true
		dto.HiddenReason = "The actual fee charged by this node is higher than the advertised one. Double-check the on-chain fee before proceeding."
	}

	return dto
}
