package services

import (
	"context"
	"regexp"
	"strings"
)

// Verdict is a classifier's decision. Reasons lists every rule that fired.
type Verdict struct {
	Allowed bool
	Reasons []string
}

// ContentClassifier decides whether user text may be stored. field names the
// input being checked, e.g. "title" or "note".
type ContentClassifier interface {
	Classify(ctx context.Context, field, text string) Verdict
}

const (
	ReasonInappropriateLanguage = "inappropriate_language"
	ReasonURLNotAllowed         = "url_not_allowed"
	ReasonContactInfo           = "contact_info_not_allowed"
	ReasonSpam                  = "spam_detected"
	ReasonExcessiveCaps         = "excessive_caps"
)

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"ass", "asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
	"spam", "scam", "scammer", "phishing", "malware",
}

// RuleClassifier is the built-in pattern classifier. Links are only rejected
// in titles; notes may quote them.
type RuleClassifier struct {
	bannedWordRegexps   []*regexp.Regexp
	urlPattern          *regexp.Regexp
	emailPattern        *regexp.Regexp
	phonePattern        *regexp.Regexp
	repeatedCharPattern *regexp.Regexp
	allCapsPattern      *regexp.Regexp
}

func NewRuleClassifier() *RuleClassifier {
	rc := &RuleClassifier{
		bannedWordRegexps:   make([]*regexp.Regexp, 0, len(BannedWords)),
		urlPattern:          regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
		emailPattern:        regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`),
		phonePattern:        regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`),
		repeatedCharPattern: regexp.MustCompile(repeatedCharExpr()),
		allCapsPattern:      regexp.MustCompile(`[A-Z]{5,}`),
	}
	for _, word := range BannedWords {
		rc.bannedWordRegexps = append(rc.bannedWordRegexps, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return rc
}

// RE2 has no backreferences, so each repeatable symbol gets its own branch.
func repeatedCharExpr() string {
	parts := make([]string, 0, 29)
	for ch := 'a'; ch <= 'z'; ch++ {
		parts = append(parts, string(ch)+"{4,}")
	}
	parts = append(parts, `!{4,}`, `\?{4,}`, `\.{4,}`)
	return `(?i)(` + strings.Join(parts, "|") + `)`
}

func (rc *RuleClassifier) Classify(_ context.Context, field, text string) Verdict {
	if strings.TrimSpace(text) == "" {
		return Verdict{Allowed: true}
	}

	var reasons []string
	for _, re := range rc.bannedWordRegexps {
		if re.MatchString(text) {
			reasons = append(reasons, ReasonInappropriateLanguage)
			break
		}
	}
	if field == "title" && rc.urlPattern.MatchString(text) {
		reasons = append(reasons, ReasonURLNotAllowed)
	}
	if rc.emailPattern.MatchString(text) || rc.phonePattern.MatchString(text) {
		reasons = append(reasons, ReasonContactInfo)
	}
	if rc.repeatedCharPattern.MatchString(text) {
		reasons = append(reasons, ReasonSpam)
	}
	if len(rc.allCapsPattern.FindAllString(text, -1)) > 2 {
		reasons = append(reasons, ReasonExcessiveCaps)
	}
	return Verdict{Allowed: len(reasons) == 0, Reasons: reasons}
}

func RejectionMessage(reason string) string {
	messages := map[string]string{
		ReasonInappropriateLanguage: "Your text contains inappropriate language.",
		ReasonURLNotAllowed:         "Links are not allowed in titles.",
		ReasonContactInfo:           "Contact information is not allowed.",
		ReasonSpam:                  "Your text appears to be spam.",
		ReasonExcessiveCaps:         "Please avoid using excessive capital letters.",
	}
	if msg, ok := messages[reason]; ok {
		return msg
	}
	return "Your text does not meet our content guidelines."
}
