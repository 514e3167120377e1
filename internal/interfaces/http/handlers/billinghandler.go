package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	billingUsecases "sceneforge/internal/application/billing/usecases"
	"sceneforge/internal/shared/constants"
	"sceneforge/internal/shared/logger"
	"sceneforge/internal/shared/utils"
)

// BillingHandler serves checkout creation, the gateway callback endpoints and
// the user-facing payment history.
type BillingHandler struct {
	createCheckoutUC *billingUsecases.CreateCheckoutUseCase
	handleCallbackUC *billingUsecases.HandleCallbackUseCase
	historyUC        *billingUsecases.PaymentHistoryUseCase
	logger           logger.Interface
}

func NewBillingHandler(
	createCheckoutUC *billingUsecases.CreateCheckoutUseCase,
	handleCallbackUC *billingUsecases.HandleCallbackUseCase,
	historyUC *billingUsecases.PaymentHistoryUseCase,
	logger logger.Interface,
) *BillingHandler {
	return &BillingHandler{
		createCheckoutUC: createCheckoutUC,
		handleCallbackUC: handleCallbackUC,
		historyUC:        historyUC,
		logger:           logger,
	}
}

type CreateCheckoutRequest struct {
	Gateway          string `json:"gateway" binding:"required,oneof=payu stripe"`
	AmountMinorUnits int64  `json:"amount_minor_units" binding:"required,gt=0"`
	Currency         string `json:"currency"`
	TargetTier       string `json:"target_tier"`
	Email            string `json:"email" binding:"required,email"`
	FirstName        string `json:"first_name"`
	Phone            string `json:"phone"`
}

type CreateCheckoutResponse struct {
	TransactionID string            `json:"transaction_id"`
	RedirectURL   string            `json:"redirect_url"`
	Method        string            `json:"method"`
	Fields        map[string]string `json:"fields,omitempty"`
}

type CallbackResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Replayed      bool   `json:"replayed"`
}

func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	userID := c.GetString(constants.ContextKeyUserID)
	if userID == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind checkout request", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	cmd := billingUsecases.CreateCheckoutCommand{
		UserID:           userID,
		Email:            req.Email,
		FirstName:        req.FirstName,
		Phone:            req.Phone,
		Gateway:          req.Gateway,
		AmountMinorUnits: req.AmountMinorUnits,
		Currency:         req.Currency,
		TargetTier:       req.TargetTier,
	}

	result, err := h.createCheckoutUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		h.logger.Errorw("failed to create checkout", "error", err, "user_id", userID)
		utils.AppErrorResponse(c, err)
		return
	}

	response := CreateCheckoutResponse{
		TransactionID: result.TransactionID,
		RedirectURL:   result.RedirectURL,
		Method:        result.Method,
		Fields:        result.Fields,
	}

	utils.SuccessResponse(c, http.StatusOK, "checkout session created", response)
}

// HandleGatewayCallback settles a payment attempt from a gateway
// notification. The gateway name comes from the route, never the payload.
func (h *BillingHandler) HandleGatewayCallback(c *gin.Context) {
	gatewayName := c.Param("gateway")

	outcome, err := h.handleCallbackUC.Execute(c.Request.Context(), gatewayName, c.Request)
	if err != nil {
		h.logger.Errorw("failed to handle gateway callback",
			"error", err,
			"gateway", gatewayName)
		utils.AppErrorResponse(c, err)
		return
	}

	response := CallbackResponse{
		TransactionID: outcome.TransactionID,
		Status:        string(outcome.Status),
		Replayed:      outcome.Replayed,
	}

	utils.SuccessResponse(c, http.StatusOK, "callback processed", response)
}

func (h *BillingHandler) GetPaymentHistory(c *gin.Context) {
	userID := c.GetString(constants.ContextKeyUserID)
	if userID == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	views, err := h.historyUC.History(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Errorw("failed to load payment history", "error", err, "user_id", userID)
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", views)
}

func (h *BillingHandler) GetPaymentStats(c *gin.Context) {
	userID := c.GetString(constants.ContextKeyUserID)
	if userID == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	stats, err := h.historyUC.Stats(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("failed to load payment stats", "error", err, "user_id", userID)
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", stats)
}
