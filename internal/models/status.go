package models

import "time"

type SourceHealth string

const (
	SourceOnline  SourceHealth = "online"
	SourceDelayed SourceHealth = "delayed"
	SourceError   SourceHealth = "error"
	SourceOffline SourceHealth = "offline"
)

// SourceStatus is the health of one external source, derived entirely from
// the outcome of its most recent poll. Exactly one row exists per
// serviceName; writes are upserts.
type SourceStatus struct {
	ServiceName        string       `json:"serviceName"`
	Status             SourceHealth `json:"status"`
	LastSuccessfulSync *time.Time   `json:"lastSuccessfulSync,omitempty"`
	ResponseTimeMS     *int64       `json:"responseTime,omitempty"`
	ErrorMessage       string       `json:"errorMessage,omitempty"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}
