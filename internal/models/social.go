package models

import (
	"strings"
	"time"
)

type VerificationStatus string

const (
	VerificationPending   VerificationStatus = "pending"
	VerificationVerified  VerificationStatus = "verified"
	VerificationFlagged   VerificationStatus = "flagged"
	VerificationDismissed VerificationStatus = "dismissed"
)

// Engagement holds the public interaction counters of a social post.
type Engagement struct {
	Retweets int `json:"retweets"`
	Likes    int `json:"likes"`
	Replies  int `json:"replies"`
}

// SocialReport is a single crowd-sourced post relevant to a disaster.
type SocialReport struct {
	ID                 string             `json:"id"`
	Platform           string             `json:"platform"`
	PostID             string             `json:"postId"`
	AuthorUsername     string             `json:"authorUsername"`
	Content            string             `json:"content"`
	Location           string             `json:"location,omitempty"`
	Latitude           *float64           `json:"latitude,omitempty"`
	Longitude          *float64           `json:"longitude,omitempty"`
	MediaURLs          []string           `json:"mediaUrls"`
	Hashtags           []string           `json:"hashtags"`
	Engagement         Engagement         `json:"engagementMetrics"`
	IsVerified         bool               `json:"isVerified"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	RelatedDisasterID  string             `json:"relatedDisasterId,omitempty"`
	ReportedAt         time.Time          `json:"reportedAt"`
	CreatedAt          time.Time          `json:"createdAt"`
}

// ParseVerificationStatus maps a free-form status to the canonical enum,
// falling back to "pending".
func ParseVerificationStatus(s string) VerificationStatus {
	switch VerificationStatus(strings.ToLower(strings.TrimSpace(s))) {
	case VerificationVerified:
		return VerificationVerified
	case VerificationFlagged:
		return VerificationFlagged
	case VerificationDismissed:
		return VerificationDismissed
	default:
		return VerificationPending
	}
}

// IsValidVerificationStatus reports whether s names one of the four
// moderation states exactly.
func IsValidVerificationStatus(s string) bool {
	switch VerificationStatus(s) {
	case VerificationPending, VerificationVerified, VerificationFlagged, VerificationDismissed:
		return true
	default:
		return false
	}
}
