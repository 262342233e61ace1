package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Complaint is a single intake record. Exactly one access path exists per
// row: identified rows carry UserID, anonymous rows carry the
// AnonymousIdentity/AnonymousVerifier pair. Never both, never neither.
type Complaint struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProtocolCode string    `gorm:"size:30;not null;uniqueIndex" json:"protocol_code"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	Type         string    `gorm:"size:30;not null;index" json:"type"`
	Status       string    `gorm:"size:30;not null;default:'received';index" json:"status"`
	IsAnonymous  bool      `gorm:"not null;index" json:"is_anonymous"`

	// Anonymous access path. The identity is displayed once at submission
	// and later matched exactly on tracking; the verifier is a salted
	// one-way hash and must never leave the database through any read path.
	AnonymousIdentity *string `gorm:"size:64;uniqueIndex" json:"-"`
	AnonymousVerifier *string `gorm:"size:100" json:"-"`

	// Identified access path.
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	User   *User      `gorm:"foreignKey:UserID" json:"-"`

	AdminUserID   *uuid.UUID `gorm:"type:uuid" json:"-"`
	AdminResponse *string    `gorm:"type:text" json:"admin_response,omitempty"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Attachments []ComplaintAttachment `gorm:"foreignKey:ComplaintID" json:"-"`
}

// BeforeCreate ensures UUID is set before creation
func (c *Complaint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ComplaintAttachment is a file uploaded alongside a complaint. Bytes live
// under the configured upload directory; only metadata is stored here.
type ComplaintAttachment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ComplaintID uuid.UUID `gorm:"type:uuid;not null;index" json:"complaint_id"`
	FileName    string    `gorm:"size:255;not null" json:"file_name"`
	FilePath    string    `gorm:"size:512;not null" json:"-"`
	ContentType string    `gorm:"size:100" json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate ensures UUID is set before creation
func (a *ComplaintAttachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Status lifecycle. Mutated only by administrators; archival is a status,
// not a deletion.
const (
	StatusReceived    = "received"
	StatusUnderReview = "under_review"
	StatusResponded   = "responded"
	StatusArchived    = "archived"
)

var ComplaintStatuses = []string{
	StatusReceived, StatusUnderReview, StatusResponded, StatusArchived,
}

// Complaint type constants.
const (
	TypeHarassment     = "harassment"
	TypeDiscrimination = "discrimination"
	TypeInfrastructure = "infrastructure"
	TypeOther          = "other"
)

var ComplaintTypes = []string{
	TypeHarassment, TypeDiscrimination, TypeInfrastructure, TypeOther,
}

func ValidStatus(s string) bool {
	for _, v := range ComplaintStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func ValidType(t string) bool {
	for _, v := range ComplaintTypes {
		if v == t {
			return true
		}
	}
	return false
}
