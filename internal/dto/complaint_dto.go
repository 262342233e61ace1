package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitComplaintRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

type SubmitAnonymousRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	// Secret is the submitter-chosen tracking secret. Leave empty and set
	// GenerateSecret to have the server pick one.
	Secret         string `json:"secret"`
	GenerateSecret bool   `json:"generate_secret"`
}

// AnonymousSubmissionResponse is the one and only place the plaintext secret
// is ever echoed. The access code and secret together are the tracking
// credential; the protocol code is display-only.
type AnonymousSubmissionResponse struct {
	ProtocolCode string `json:"protocol_code"`
	AccessCode   string `json:"access_code"`
	Secret       string `json:"secret"`
}

type TrackComplaintRequest struct {
	AccessCode string `json:"access_code"`
	Secret     string `json:"secret"`
}

// ComplaintView is the read model returned to submitters. It never carries
// the anonymous verifier or identity.
type ComplaintView struct {
	ID            uuid.UUID  `json:"id"`
	ProtocolCode  string     `json:"protocol_code"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	IsAnonymous   bool       `json:"is_anonymous"`
	AdminResponse *string    `json:"admin_response,omitempty"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type RespondRequest struct {
	Response string `json:"response"`
}

type ComplaintStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
	ByType   map[string]int64 `json:"by_type"`
}
