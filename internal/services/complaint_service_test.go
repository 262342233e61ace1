package services_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/univertix/ouvidoria-backend/internal/anonid"
	"github.com/univertix/ouvidoria-backend/internal/dto"
	"github.com/univertix/ouvidoria-backend/internal/models"
	"github.com/univertix/ouvidoria-backend/internal/services"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.sqlite")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Complaint{},
		&models.ComplaintAttachment{},
	))
	return db
}

func newComplaintService(t *testing.T) (*services.ComplaintService, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	return services.NewComplaintService(db, anonid.DefaultIssuer()), db
}

func anonymousRequest() *dto.SubmitAnonymousRequest {
	return &dto.SubmitAnonymousRequest{
		Title:       "Broken lighting in block C",
		Description: "The corridor lights on the second floor have been out for two weeks.",
		Type:        models.TypeInfrastructure,
		Secret:      "Tr0ub4dor",
	}
}

func TestSubmitAnonymous_TrackRoundTrip(t *testing.T) {
	svc, db := newComplaintService(t)

	resp, err := svc.SubmitAnonymous(anonymousRequest())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.ProtocolCode, "UVX-"))
	assert.Equal(t, "Tr0ub4dor", resp.Secret, "secret is echoed back exactly once")
	_, parseErr := uuid.Parse(resp.AccessCode)
	assert.NoError(t, parseErr)

	// plaintext secret never persisted
	var stored models.Complaint
	require.NoError(t, db.First(&stored, "anonymous_identity = ?", resp.AccessCode).Error)
	require.NotNil(t, stored.AnonymousVerifier)
	assert.NotEqual(t, "Tr0ub4dor", *stored.AnonymousVerifier)
	assert.True(t, stored.IsAnonymous)
	assert.Nil(t, stored.UserID, "anonymous rows carry no owner account")

	view, err := svc.Track(resp.AccessCode, "Tr0ub4dor")
	require.NoError(t, err)
	assert.Equal(t, resp.ProtocolCode, view.ProtocolCode)
	assert.Equal(t, models.StatusReceived, view.Status)
	assert.Equal(t, "Broken lighting in block C", view.Title)
}

func TestTrack_WrongSecretAndUnknownIdentityCollapse(t *testing.T) {
	svc, _ := newComplaintService(t)

	resp, err := svc.SubmitAnonymous(anonymousRequest())
	require.NoError(t, err)

	_, errWrong := svc.Track(resp.AccessCode, "wrongpass")
	_, errCase := svc.Track(resp.AccessCode, "tr0ub4dor")
	_, errUnknown := svc.Track(uuid.NewString(), "Tr0ub4dor")

	// wrong secret, case-sensitive near miss and unknown identity all
	// surface the same error kind
	assert.ErrorIs(t, errWrong, services.ErrComplaintNotFound)
	assert.ErrorIs(t, errCase, services.ErrComplaintNotFound)
	assert.ErrorIs(t, errUnknown, services.ErrComplaintNotFound)
}

func TestSubmitAnonymous_GeneratedSecret(t *testing.T) {
	svc, _ := newComplaintService(t)

	req := anonymousRequest()
	req.Secret = ""
	req.GenerateSecret = true

	resp, err := svc.SubmitAnonymous(req)
	require.NoError(t, err)

	assert.Len(t, resp.Secret, anonid.GeneratedSecretLength)
	for _, r := range resp.Secret {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		assert.True(t, isLetter || isDigit, "generated secret must be alphanumeric, got %q", r)
	}

	view, err := svc.Track(resp.AccessCode, resp.Secret)
	require.NoError(t, err)
	assert.Equal(t, resp.ProtocolCode, view.ProtocolCode)
}

func TestSubmitAnonymous_EmptySecretRejected(t *testing.T) {
	svc, _ := newComplaintService(t)

	req := anonymousRequest()
	req.Secret = "   "
	req.GenerateSecret = false

	_, err := svc.SubmitAnonymous(req)
	assert.ErrorIs(t, err, anonid.ErrInvalidSecret)
}

func TestSubmitAnonymous_SaltNotReused(t *testing.T) {
	svc, db := newComplaintService(t)

	first, err := svc.SubmitAnonymous(anonymousRequest())
	require.NoError(t, err)
	second, err := svc.SubmitAnonymous(anonymousRequest())
	require.NoError(t, err)

	var a, b models.Complaint
	require.NoError(t, db.First(&a, "anonymous_identity = ?", first.AccessCode).Error)
	require.NoError(t, db.First(&b, "anonymous_identity = ?", second.AccessCode).Error)

	assert.NotEqual(t, *a.AnonymousVerifier, *b.AnonymousVerifier,
		"equal secrets must produce distinct stored verifiers")

	_, err = svc.Track(first.AccessCode, "Tr0ub4dor")
	assert.NoError(t, err)
	_, err = svc.Track(second.AccessCode, "Tr0ub4dor")
	assert.NoError(t, err)
}

// sequencedSource replays a fixed identity sequence to force a collision.
type sequencedSource struct {
	ids  []string
	next int
}

func (s *sequencedSource) NewIdentifier() string {
	id := s.ids[s.next]
	if s.next < len(s.ids)-1 {
		s.next++
	}
	return id
}

func TestSubmitAnonymous_IdentityCollisionRetried(t *testing.T) {
	db := testDB(t)

	dup := uuid.NewString()
	fresh := uuid.NewString()
	issuer := anonid.NewIssuer(&sequencedSource{ids: []string{dup, dup, fresh}}, anonid.BcryptHasher{})
	svc := services.NewComplaintService(db, issuer)

	first, err := svc.SubmitAnonymous(anonymousRequest())
	require.NoError(t, err)
	assert.Equal(t, dup, first.AccessCode)

	// second issuance draws the same identity; the store reports the
	// duplicate and the service retries with a fresh one
	second, err := svc.SubmitAnonymous(anonymousRequest())
	require.NoError(t, err)
	assert.Equal(t, fresh, second.AccessCode)

	var count int64
	db.Model(&models.Complaint{}).Count(&count)
	assert.EqualValues(t, 2, count, "collision must never overwrite the existing record")
}

func TestGet_AnonymousUnreachableByID(t *testing.T) {
	svc, db := newComplaintService(t)

	resp, err := svc.SubmitAnonymous(anonymousRequest())
	require.NoError(t, err)

	var stored models.Complaint
	require.NoError(t, db.First(&stored, "anonymous_identity = ?", resp.AccessCode).Error)

	// no member account may reach an anonymous record by id
	_, err = svc.Get(stored.ID, uuid.New(), false)
	assert.ErrorIs(t, err, services.ErrComplaintNotFound)

	// the role-gated admin path may
	view, err := svc.Get(stored.ID, uuid.Nil, true)
	require.NoError(t, err)
	assert.Equal(t, resp.ProtocolCode, view.ProtocolCode)
}

func TestSubmit_IdentifiedOwnership(t *testing.T) {
	svc, _ := newComplaintService(t)

	owner := uuid.New()
	stranger := uuid.New()

	view, err := svc.Submit(owner, &dto.SubmitComplaintRequest{
		Title:       "Grade dispute ignored",
		Description: "My appeal from March has had no reply.",
		Type:        models.TypeOther,
	})
	require.NoError(t, err)
	assert.False(t, view.IsAnonymous)

	got, err := svc.Get(view.ID, owner, false)
	require.NoError(t, err)
	assert.Equal(t, view.ID, got.ID)

	_, err = svc.Get(view.ID, stranger, false)
	assert.ErrorIs(t, err, services.ErrComplaintNotFound)

	mine, total, err := svc.ListMine(owner, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, mine, 1)
	assert.Equal(t, view.ID, mine[0].ID)

	none, total, err := svc.ListMine(stranger, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, none)
}

func TestSubmit_ValidationRejected(t *testing.T) {
	svc, _ := newComplaintService(t)

	_, err := svc.Submit(uuid.New(), &dto.SubmitComplaintRequest{
		Title:       "",
		Description: "missing title",
		Type:        models.TypeOther,
	})
	assert.ErrorIs(t, err, services.ErrInvalidComplaint)

	_, err = svc.Submit(uuid.New(), &dto.SubmitComplaintRequest{
		Title:       "bad type",
		Description: "type outside the enum",
		Type:        "gossip",
	})
	assert.ErrorIs(t, err, services.ErrInvalidComplaint)
}

func TestUpdateStatusAndRespond(t *testing.T) {
	svc, db := newComplaintService(t)
	admin := uuid.New()

	resp, err := svc.SubmitAnonymous(anonymousRequest())
	require.NoError(t, err)

	var stored models.Complaint
	require.NoError(t, db.First(&stored, "anonymous_identity = ?", resp.AccessCode).Error)

	assert.ErrorIs(t, svc.UpdateStatus(stored.ID, admin, "resolved"), services.ErrInvalidStatus)
	require.NoError(t, svc.UpdateStatus(stored.ID, admin, models.StatusUnderReview))

	require.NoError(t, svc.Respond(stored.ID, admin, "We have forwarded this to facilities."))

	var after models.Complaint
	require.NoError(t, db.First(&after, "id = ?", stored.ID).Error)
	assert.Equal(t, models.StatusResponded, after.Status)
	require.NotNil(t, after.AdminResponse)
	assert.Equal(t, "We have forwarded this to facilities.", *after.AdminResponse)
	assert.NotNil(t, after.RespondedAt, "admin_response and responded_at are set together")

	// the submitter sees the response through tracking
	view, err := svc.Track(resp.AccessCode, "Tr0ub4dor")
	require.NoError(t, err)
	require.NotNil(t, view.AdminResponse)
	assert.Equal(t, models.StatusResponded, view.Status)

	assert.ErrorIs(t, svc.Respond(uuid.New(), admin, "nobody home"), services.ErrComplaintNotFound)
}

func TestAdminListFiltersAndStats(t *testing.T) {
	svc, _ := newComplaintService(t)
	admin := uuid.New()

	harassment := anonymousRequest()
	harassment.Type = models.TypeHarassment
	h, err := svc.SubmitAnonymous(harassment)
	require.NoError(t, err)
	_ = h

	_, err = svc.SubmitAnonymous(anonymousRequest())
	require.NoError(t, err)

	identified, err := svc.Submit(uuid.New(), &dto.SubmitComplaintRequest{
		Title:       "Leaking roof",
		Description: "Water drips onto desks in room 104 when it rains.",
		Type:        models.TypeInfrastructure,
	})
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(identified.ID, admin, models.StatusArchived))

	all, total, err := svc.AdminList("", "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)

	infra, total, err := svc.AdminList("", models.TypeInfrastructure, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, c := range infra {
		assert.Equal(t, models.TypeInfrastructure, c.Type)
	}

	archived, total, err := svc.AdminList(models.StatusArchived, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, archived, 1)
	assert.Equal(t, identified.ID, archived[0].ID)

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 2, stats.ByStatus[models.StatusReceived])
	assert.EqualValues(t, 1, stats.ByStatus[models.StatusArchived])
	assert.EqualValues(t, 1, stats.ByType[models.TypeHarassment])
	assert.EqualValues(t, 2, stats.ByType[models.TypeInfrastructure])
}

func TestAttachments_AccessFollowsComplaintRule(t *testing.T) {
	svc, _ := newComplaintService(t)

	owner := uuid.New()
	view, err := svc.Submit(owner, &dto.SubmitComplaintRequest{
		Title:       "Harassment in lab sessions",
		Description: "Details in the attached statement.",
		Type:        models.TypeHarassment,
	})
	require.NoError(t, err)

	att := &models.ComplaintAttachment{
		FileName:    "statement.pdf",
		FilePath:    "uploads/statement.pdf",
		ContentType: "application/pdf",
		SizeBytes:   2048,
	}
	require.NoError(t, svc.AddAttachment(view.ID, owner, false, att))

	got, err := svc.GetAttachment(view.ID, att.ID, owner, false)
	require.NoError(t, err)
	assert.Equal(t, "statement.pdf", got.FileName)

	_, err = svc.GetAttachment(view.ID, att.ID, uuid.New(), false)
	assert.ErrorIs(t, err, services.ErrComplaintNotFound)

	_, err = svc.GetAttachment(view.ID, uuid.New(), owner, false)
	assert.ErrorIs(t, err, services.ErrAttachmentMissing)
}
