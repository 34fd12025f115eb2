package dto

import (
	"time"

	"github.com/google/uuid"
)

// Invite validation and redemption keep the camelCase contract the web
// client already speaks.

type ValidateInviteRequest struct {
	Code string `json:"code"`
}

type ValidateInviteResponse struct {
	Valid      bool   `json:"valid"`
	InviterUID string `json:"inviterUid,omitempty"`
	Error      string `json:"error,omitempty"`
}

type RedeemInviteRequest struct {
	Code       string `json:"code"`
	NewUserUID string `json:"newUserUid"`
}

type RedeemInviteResponse struct {
	Success         bool   `json:"success"`
	TrialEndDate    string `json:"trialEndDate,omitempty"`
	InviterExtended bool   `json:"inviterExtended,omitempty"`
	Error           string `json:"error,omitempty"`
}

type InviteCodeResponse struct {
	Code   string     `json:"code"`
	Used   bool       `json:"used"`
	UsedAt *time.Time `json:"used_at,omitempty"`
}

type ReferralsResponse struct {
	ReferralCount int                  `json:"referral_count"`
	UsedCodes     int                  `json:"used_codes"`
	Consistent    bool                 `json:"consistent"`
	InviteCodes   []InviteCodeResponse `json:"invite_codes"`
}

type ReconcileResponse struct {
	AccountID uuid.UUID `json:"account_id"`
	Before    int       `json:"before"`
	After     int       `json:"after"`
}
