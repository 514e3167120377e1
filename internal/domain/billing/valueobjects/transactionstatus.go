package valueobjects

// TransactionStatus is the settlement state of a payment attempt. Transitions
// are monotonic: pending is the only non-terminal state and no transaction
// leaves a terminal state.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusSuccess   TransactionStatus = "success"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusSuccess, TransactionStatusFailed, TransactionStatusCancelled:
		return true
	default:
		return false
	}
}

func (s TransactionStatus) IsPending() bool {
	return s == TransactionStatusPending
}

func (s TransactionStatus) IsSuccess() bool {
	return s == TransactionStatusSuccess
}

func (s TransactionStatus) IsFinal() bool {
	return s == TransactionStatusSuccess || s == TransactionStatusFailed || s == TransactionStatusCancelled
}

func (s TransactionStatus) String() string {
	return string(s)
}
