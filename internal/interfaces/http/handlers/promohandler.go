package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	entitlementUsecases "sceneforge/internal/application/entitlement/usecases"
	"sceneforge/internal/shared/constants"
	"sceneforge/internal/shared/logger"
	"sceneforge/internal/shared/utils"
)

type PromoHandler struct {
	redeemUC *entitlementUsecases.RedeemPromoCodeUseCase
	logger   logger.Interface
}

func NewPromoHandler(redeemUC *entitlementUsecases.RedeemPromoCodeUseCase, logger logger.Interface) *PromoHandler {
	return &PromoHandler{
		redeemUC: redeemUC,
		logger:   logger,
	}
}

type RedeemPromoRequest struct {
	Code  string `json:"code" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

func (h *PromoHandler) Redeem(c *gin.Context) {
	userID := c.GetString(constants.ContextKeyUserID)
	if userID == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req RedeemPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	cmd := entitlementUsecases.RedeemPromoCodeCommand{
		UserID:    userID,
		UserEmail: req.Email,
		Code:      req.Code,
	}

	record, err := h.redeemUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		h.logger.Warnw("promo redemption failed", "error", err, "user_id", userID)
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "promo code redeemed", entitlementResponse(record))
}
