package handlers

import (
	"iprofit/internal/middleware"
	"iprofit/internal/models"
	"iprofit/internal/services/referral"
	"iprofit/internal/utils/pagination"
	"iprofit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type ReferralHandler struct {
	referrals referral.Service
}

func NewReferralHandler(referrals referral.Service) *ReferralHandler {
	return &ReferralHandler{referrals: referrals}
}

func (h *ReferralHandler) List(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	filter := models.ReferralFilter{
		ReferrerID: queryUint(c, "referrer_id"),
		RefereeID:  queryUint(c, "referee_id"),
		Status:     c.Query("status"),
	}
	filter.From, filter.To = queryRange(c)

	rows, total, err := h.referrals.List(c.UserContext(), filter, p.Offset, p.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	p.Total = total
	return c.JSON(pagination.Response(p, rows))
}

func (h *ReferralHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.referrals.Overview(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Referral overview", overview)
}

// Bonuses lists referral bonus ledger entries.
func (h *ReferralHandler) Bonuses(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	filter := models.TransactionFilter{
		UserID: queryUint(c, "user_id"),
		Status: c.Query("status"),
	}
	filter.From, filter.To = queryRange(c)

	txs, total, err := h.referrals.Bonuses(c.UserContext(), filter, p.Offset, p.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	p.Total = total
	return c.JSON(pagination.Response(p, txs))
}

// Settle pays or cancels a pending referral.
func (h *ReferralHandler) Settle(c *fiber.Ctx) error {
	var req referral.BonusRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	ref, err := h.referrals.Settle(c.UserContext(), middleware.Actor(c), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Referral "+ref.Status, ref)
}
