package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/univertix/ouvidoria-backend/internal/anonid"
	"github.com/univertix/ouvidoria-backend/internal/dto"
	"github.com/univertix/ouvidoria-backend/internal/models"
)

var (
	// ErrComplaintNotFound is returned for a missing record, a wrong access
	// code and a wrong secret alike. Collapsing the three cases keeps the
	// API from acting as a credential oracle.
	ErrComplaintNotFound = errors.New("complaint not found")

	ErrInvalidComplaint  = errors.New("title, description and a valid type are required")
	ErrInvalidStatus     = errors.New("invalid complaint status")
	ErrAttachmentMissing = errors.New("attachment not found")
)

// identityRetryLimit bounds regeneration attempts when the store reports a
// duplicate identity or protocol code.
const identityRetryLimit = 3

type ComplaintService struct {
	db     *gorm.DB
	issuer *anonid.Issuer
}

func NewComplaintService(db *gorm.DB, issuer *anonid.Issuer) *ComplaintService {
	return &ComplaintService{db: db, issuer: issuer}
}

// SubmitAnonymous creates an anonymous complaint and returns the tracking
// credential. The secret is echoed back exactly once and never stored.
func (s *ComplaintService) SubmitAnonymous(req *dto.SubmitAnonymousRequest) (*dto.AnonymousSubmissionResponse, error) {
	if err := validateSubmission(req.Title, req.Description, req.Type); err != nil {
		return nil, err
	}

	secret := strings.TrimSpace(req.Secret)
	if secret == "" {
		if !req.GenerateSecret {
			return nil, anonid.ErrInvalidSecret
		}
		generated, err := anonid.GenerateSecret()
		if err != nil {
			return nil, err
		}
		secret = generated
	}

	cred, err := s.issuer.Issue(secret)
	if err != nil {
		return nil, err
	}

	complaint := &models.Complaint{
		Title:             req.Title,
		Description:       req.Description,
		Type:              req.Type,
		Status:            models.StatusReceived,
		IsAnonymous:       true,
		AnonymousIdentity: &cred.Identity,
		AnonymousVerifier: &cred.Verifier,
	}

	if err := s.createWithRetry(complaint); err != nil {
		return nil, err
	}

	return &dto.AnonymousSubmissionResponse{
		ProtocolCode: complaint.ProtocolCode,
		AccessCode:   *complaint.AnonymousIdentity,
		Secret:       secret,
	}, nil
}

// Submit creates an identified complaint owned by userID.
func (s *ComplaintService) Submit(userID uuid.UUID, req *dto.SubmitComplaintRequest) (*dto.ComplaintView, error) {
	if err := validateSubmission(req.Title, req.Description, req.Type); err != nil {
		return nil, err
	}

	complaint := &models.Complaint{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Status:      models.StatusReceived,
		IsAnonymous: false,
		UserID:      &userID,
	}

	if err := s.createWithRetry(complaint); err != nil {
		return nil, err
	}

	return complaintView(complaint), nil
}

// Track authenticates a holder of {access code, secret} against exactly one
// anonymous record. Every call re-reads the row; verifiers are never cached.
func (s *ComplaintService) Track(accessCode, secret string) (*dto.ComplaintView, error) {
	var complaint models.Complaint
	err := s.db.
		Where("anonymous_identity = ? AND is_anonymous = ?", accessCode, true).
		First(&complaint).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		return nil, err
	}

	if complaint.AnonymousVerifier == nil || !s.issuer.Verify(*complaint.AnonymousVerifier, secret) {
		return nil, ErrComplaintNotFound
	}

	return complaintView(&complaint), nil
}

// ListMine returns the caller's identified complaints, newest first.
func (s *ComplaintService) ListMine(userID uuid.UUID, page, limit int) ([]dto.ComplaintView, int64, error) {
	var complaints []models.Complaint
	var total int64

	offset := (page - 1) * limit
	query := s.db.Model(&models.Complaint{}).Where("user_id = ?", userID)
	query.Count(&total)

	err := query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&complaints).Error
	if err != nil {
		return nil, 0, err
	}

	return complaintViews(complaints), total, nil
}

// Get returns one complaint for its owner or an administrator. Anonymous
// records are never reachable through this path for non-admins: their only
// access route is Track.
func (s *ComplaintService) Get(id uuid.UUID, callerID uuid.UUID, isAdmin bool) (*dto.ComplaintView, error) {
	var complaint models.Complaint
	if err := s.db.First(&complaint, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		return nil, err
	}

	if !isAdmin {
		if complaint.IsAnonymous || complaint.UserID == nil || *complaint.UserID != callerID {
			return nil, ErrComplaintNotFound
		}
	}

	return complaintView(&complaint), nil
}

// AdminList returns complaints with optional status/type filters.
func (s *ComplaintService) AdminList(status, ctype string, page, limit int) ([]models.Complaint, int64, error) {
	var complaints []models.Complaint
	var total int64

	query := s.db.Model(&models.Complaint{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if ctype != "" {
		query = query.Where("type = ?", ctype)
	}
	query.Count(&total)

	offset := (page - 1) * limit
	err := query.Preload("User").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&complaints).Error

	return complaints, total, err
}

// UpdateStatus transitions a complaint to a new status.
func (s *ComplaintService) UpdateStatus(id, adminID uuid.UUID, status string) error {
	if !models.ValidStatus(status) {
		return ErrInvalidStatus
	}

	result := s.db.Model(&models.Complaint{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"admin_user_id": adminID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrComplaintNotFound
	}
	return nil
}

// Respond records an administrator response and marks the complaint
// responded. admin_response and responded_at are always set together.
func (s *ComplaintService) Respond(id, adminID uuid.UUID, response string) error {
	if strings.TrimSpace(response) == "" {
		return errors.New("response must not be empty")
	}

	now := time.Now()
	result := s.db.Model(&models.Complaint{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         models.StatusResponded,
			"admin_response": response,
			"responded_at":   now,
			"admin_user_id":  adminID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrComplaintNotFound
	}
	return nil
}

// Stats aggregates complaint counts per status and per type.
func (s *ComplaintService) Stats() (*dto.ComplaintStats, error) {
	stats := &dto.ComplaintStats{
		ByStatus: make(map[string]int64),
		ByType:   make(map[string]int64),
	}

	if err := s.db.Model(&models.Complaint{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		Key   string
		Count int64
	}
	if err := s.db.Model(&models.Complaint{}).
		Select("status as key, count(*) as count").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.ByStatus[r.Key] = r.Count
	}

	rows = nil
	if err := s.db.Model(&models.Complaint{}).
		Select("type as key, count(*) as count").
		Group("type").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.ByType[r.Key] = r.Count
	}

	return stats, nil
}

// AddAttachment stores attachment metadata for a complaint owned by userID.
func (s *ComplaintService) AddAttachment(complaintID, userID uuid.UUID, isAdmin bool, att *models.ComplaintAttachment) error {
	if _, err := s.Get(complaintID, userID, isAdmin); err != nil {
		return err
	}
	att.ComplaintID = complaintID
	return s.db.Create(att).Error
}

// GetAttachment resolves attachment metadata, enforcing the same access rule
// as Get.
func (s *ComplaintService) GetAttachment(complaintID, attachmentID, userID uuid.UUID, isAdmin bool) (*models.ComplaintAttachment, error) {
	if _, err := s.Get(complaintID, userID, isAdmin); err != nil {
		return nil, err
	}

	var att models.ComplaintAttachment
	err := s.db.First(&att, "id = ? AND complaint_id = ?", attachmentID, complaintID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentMissing
		}
		return nil, err
	}
	return &att, nil
}

// createWithRetry inserts the complaint, regenerating the protocol code and
// (for anonymous rows) the identity whenever the store reports a duplicate
// key. Collisions are resolved by retrying with fresh values, never by
// overwriting.
func (s *ComplaintService) createWithRetry(complaint *models.Complaint) error {
	for attempt := 0; attempt < identityRetryLimit; attempt++ {
		code, err := generateProtocolCode()
		if err != nil {
			return err
		}
		complaint.ProtocolCode = code

		err = s.db.Create(complaint).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}

		if complaint.IsAnonymous {
			identity := s.issuer.NewIdentity()
			complaint.AnonymousIdentity = &identity
		}
		complaint.ID = uuid.Nil
	}
	return anonid.ErrIdentityCollision
}

// generateProtocolCode builds the display-only reference string, e.g.
// UVX-2026-483920. It carries no access-control meaning.
func generateProtocolCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate protocol code: %w", err)
	}
	return fmt.Sprintf("UVX-%d-%06d", time.Now().Year(), n.Int64()), nil
}

func validateSubmission(title, description, ctype string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" || !models.ValidType(ctype) {
		return ErrInvalidComplaint
	}
	return nil
}

func complaintView(c *models.Complaint) *dto.ComplaintView {
	return &dto.ComplaintView{
		ID:            c.ID,
		ProtocolCode:  c.ProtocolCode,
		Title:         c.Title,
		Description:   c.Description,
		Type:          c.Type,
		Status:        c.Status,
		IsAnonymous:   c.IsAnonymous,
		AdminResponse: c.AdminResponse,
		RespondedAt:   c.RespondedAt,
		CreatedAt:     c.CreatedAt,
	}
}

func complaintViews(complaints []models.Complaint) []dto.ComplaintView {
	views := make([]dto.ComplaintView, len(complaints))
	for i := range complaints {
		views[i] = *complaintView(&complaints[i])
	}
	return views
}
