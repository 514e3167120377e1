package mappers

import (
	"encoding/json"
	"fmt"

	"sceneforge/internal/domain/billing"
	vo "sceneforge/internal/domain/billing/valueobjects"
	"sceneforge/internal/infrastructure/persistence/models"
)

func TransactionToModel(t *billing.Transaction) (*models.TransactionModel, error) {
	model := &models.TransactionModel{
		ID:                   t.ID(),
		TransactionID:        t.TransactionID(),
		GatewayTransactionID: t.GatewayTransactionID(),
		UserID:               t.UserID(),
		Amount:               t.Amount().AmountMinorUnits(),
		Currency:             t.Amount().Currency(),
		Gateway:              t.Gateway().String(),
		Status:               t.Status().String(),
		ErrorMessage:         t.ErrorMessage(),
		Version:              t.Version(),
		CreatedAt:            t.CreatedAt(),
		UpdatedAt:            t.UpdatedAt(),
	}

	if len(t.Metadata()) > 0 {
		raw, err := json.Marshal(t.Metadata())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal transaction metadata: %w", err)
		}
		model.Metadata = raw
	}

	return model, nil
}

func TransactionToDomain(model *models.TransactionModel) (*billing.Transaction, error) {
	status := vo.TransactionStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid transaction status: %s", model.Status)
	}

	gw, err := vo.NewGateway(model.Gateway)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction gateway: %w", err)
	}

	var metadata map[string]interface{}
	if len(model.Metadata) > 0 {
		if err := json.Unmarshal(model.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transaction metadata: %w", err)
		}
	}

	return billing.ReconstructTransaction(
		model.ID,
		model.TransactionID,
		model.GatewayTransactionID,
		model.UserID,
		vo.NewMoney(model.Amount, model.Currency),
		gw,
		status,
		model.ErrorMessage,
		metadata,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	), nil
}
