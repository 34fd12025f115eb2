package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatusResponse struct {
	AccountID          uuid.UUID            `json:"account_id"`
	Plan               string               `json:"plan"`
	Active             bool                 `json:"active"`
	TrialStartDate     time.Time            `json:"trial_start_date"`
	TrialEndDate       time.Time            `json:"trial_end_date"`
	TrialExpired       bool                 `json:"trial_expired"`
	RemainingTrialDays int                  `json:"remaining_trial_days"`
	ReferredBy         *uuid.UUID           `json:"referred_by"`
	ReferralCount      int                  `json:"referral_count"`
	ProStartDate       *time.Time           `json:"pro_start_date"`
	ProEndDate         *time.Time           `json:"pro_end_date"`
	InviteCodes        []InviteCodeResponse `json:"invite_codes"`
}
