package dto

// BillingWebhook is the normalized event the payment bridge posts after a
// Stripe or Toss state change.
type BillingWebhook struct {
	APIVersion string       `json:"api_version"`
	Event      BillingEvent `json:"event"`
}

type BillingEvent struct {
	Type          string `json:"type"`
	ID            string `json:"id"`
	AccountID     string `json:"account_id"`
	Provider      string `json:"provider"`
	ProductID     string `json:"product_id"`
	PeriodStartMs int64  `json:"period_start_ms"`
	PeriodEndMs   int64  `json:"period_end_ms"`
}
