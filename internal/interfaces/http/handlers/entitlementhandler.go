package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	entitlementUsecases "sceneforge/internal/application/entitlement/usecases"
	"sceneforge/internal/domain/entitlement"
	"sceneforge/internal/shared/constants"
	"sceneforge/internal/shared/logger"
	"sceneforge/internal/shared/utils"
)

// EntitlementHandler serves the entitlement record and the quota gates the
// generation modules call before doing their own work.
type EntitlementHandler struct {
	getEntitlementUC *entitlementUsecases.GetEntitlementUseCase
	quotaChecksUC    *entitlementUsecases.QuotaChecksUseCase
	incrementUsageUC *entitlementUsecases.IncrementPageUsageUseCase
	logger           logger.Interface
}

func NewEntitlementHandler(
	getEntitlementUC *entitlementUsecases.GetEntitlementUseCase,
	quotaChecksUC *entitlementUsecases.QuotaChecksUseCase,
	incrementUsageUC *entitlementUsecases.IncrementPageUsageUseCase,
	logger logger.Interface,
) *EntitlementHandler {
	return &EntitlementHandler{
		getEntitlementUC: getEntitlementUC,
		quotaChecksUC:    quotaChecksUC,
		incrementUsageUC: incrementUsageUC,
		logger:           logger,
	}
}

// EntitlementResponse is the client view of an entitlement record.
// A limit of -1 means unlimited.
type EntitlementResponse struct {
	UserID                 string `json:"user_id"`
	Tier                   string `json:"tier"`
	TotalPages             int    `json:"total_pages"`
	UsedPages              int    `json:"used_pages"`
	MaxShotsPerScene       int    `json:"max_shots_per_scene"`
	CanGenerateStoryboards bool   `json:"can_generate_storyboards"`
	Version                int    `json:"version"`
}

// DecisionResponse reports a quota check outcome. Denials are business
// outcomes, not errors, so they come back with a 200.
type DecisionResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Used    int    `json:"used"`
	Limit   int    `json:"limit"`
}

type PagesRequest struct {
	Pages int `json:"pages" binding:"required"`
}

type ShotsRequest struct {
	Shots int `json:"shots" binding:"required"`
}

func entitlementResponse(record *entitlement.Entitlement) EntitlementResponse {
	return EntitlementResponse{
		UserID:                 record.UserID(),
		Tier:                   string(record.Tier()),
		TotalPages:             record.TotalPages(),
		UsedPages:              record.UsedPages(),
		MaxShotsPerScene:       record.MaxShotsPerScene(),
		CanGenerateStoryboards: record.CanGenerateStoryboards(),
		Version:                record.Version(),
	}
}

func decisionResponse(decision entitlement.Decision) DecisionResponse {
	return DecisionResponse{
		Allowed: decision.Allowed,
		Reason:  decision.Reason,
		Used:    decision.Used,
		Limit:   decision.Limit,
	}
}

func (h *EntitlementHandler) GetMyEntitlement(c *gin.Context) {
	userID := c.GetString(constants.ContextKeyUserID)
	if userID == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	record, err := h.getEntitlementUC.Execute(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("failed to load entitlement", "error", err, "user_id", userID)
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", entitlementResponse(record))
}

func (h *EntitlementHandler) CheckPageQuota(c *gin.Context) {
	userID := c.GetString(constants.ContextKeyUserID)
	if userID == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req PagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	decision, err := h.quotaChecksUC.CheckPageLimit(c.Request.Context(), userID, req.Pages)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", decisionResponse(decision))
}

func (h *EntitlementHandler) CheckShotsQuota(c *gin.Context) {
	userID := c.GetString(constants.ContextKeyUserID)
	if userID == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req ShotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	decision, err := h.quotaChecksUC.CheckShotsLimit(c.Request.Context(), userID, req.Shots)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", decisionResponse(decision))
}

func (h *EntitlementHandler) CheckStoryboardAccess(c *gin.Context) {
	userID := c.GetString(constants.ContextKeyUserID)
	if userID == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	decision, err := h.quotaChecksUC.CheckStoryboardAccess(c.Request.Context(), userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", decisionResponse(decision))
}

// ConsumePages records settled page usage after a generation completes. The
// write is refused atomically when it would overshoot the remaining quota.
func (h *EntitlementHandler) ConsumePages(c *gin.Context) {
	userID := c.GetString(constants.ContextKeyUserID)
	if userID == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req PagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	record, err := h.incrementUsageUC.Execute(c.Request.Context(), userID, req.Pages)
	if err != nil {
		h.logger.Warnw("page usage increment refused", "error", err, "user_id", userID, "pages", req.Pages)
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "page usage recorded", entitlementResponse(record))
}
