package users

import (
	"context"
	"errors"
	"testing"

	"brainix/internal/testutils"
	"brainix/models"
	"brainix/services/email"
	"brainix/services/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	err   error
	calls []map[string]interface{}
}

func (p *stubProvider) UpdatePublicMetadata(_ context.Context, _ string, metadata map[string]interface{}) error {
	p.calls = append(p.calls, metadata)
	return p.err
}

func newService(t *testing.T) (*Service, *stubProvider, *email.Recorder) {
	db := testutils.SetupDB(t)
	provider := &stubProvider{}
	mailer := &email.Recorder{}
	return &Service{DB: db, Identity: provider, Mailer: mailer}, provider, mailer
}

func userData(id, address, role string) *identity.UserData {
	data := &identity.UserData{
		ID:                    id,
		FirstName:             "Grace",
		LastName:              "Hopper",
		PrimaryEmailAddressID: "idn_primary",
		EmailAddresses: []identity.EmailAddress{
			{ID: "idn_other", EmailAddress: "other@example.com"},
			{ID: "idn_primary", EmailAddress: address},
		},
	}
	if role != "" {
		data.PublicMetadata = map[string]interface{}{"role": role}
	}
	return data
}

func TestSyncCreatesAndUpdates(t *testing.T) {
	s, _, mailer := newService(t)

	user, created, err := s.Sync(userData("user_1", "grace@example.com", ""))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "grace@example.com", user.Email)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Len(t, mailer.Sent(), 1)

	data := userData("user_1", "grace@navy.mil", models.RoleInstructor)
	data.FirstName = "Admiral"
	user, created, err = s.Sync(data)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "grace@navy.mil", user.Email)
	assert.Equal(t, "Admiral", user.FirstName)
	assert.Equal(t, models.RoleInstructor, user.Role)
	assert.Len(t, mailer.Sent(), 1, "welcome mail is sent once")

	var count int64
	s.DB.Model(&models.InstructorProfile{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
	s.DB.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSyncUnknownRoleFallsBackToStudent(t *testing.T) {
	s, _, _ := newService(t)
	user, _, err := s.Sync(userData("user_2", "x@example.com", "owner"))
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
}

func TestSyncRecreatedAccountTakesOverRow(t *testing.T) {
	s, _, _ := newService(t)
	first, _, err := s.Sync(userData("user_old", "same@example.com", ""))
	require.NoError(t, err)
	_, err = s.Delete("user_old")
	require.NoError(t, err)

	second, created, err := s.Sync(userData("user_new", "same@example.com", ""))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "user_new", second.ClerkID)
	assert.False(t, second.IsDeleted)
}

func TestSyncWithoutEmail(t *testing.T) {
	s, _, _ := newService(t)
	_, _, err := s.Sync(&identity.UserData{ID: "user_3"})
	assert.ErrorIs(t, err, ErrNoEmail)
}

func TestDelete(t *testing.T) {
	s, _, _ := newService(t)
	_, _, err := s.Sync(userData("user_4", "del@example.com", ""))
	require.NoError(t, err)

	deleted, err := s.Delete("user_4")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.Delete("user_4")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestChangeRole(t *testing.T) {
	s, provider, mailer := newService(t)
	user := testutils.CreateUser(t, s.DB, models.RoleStudent)

	updated, err := s.ChangeRole(context.Background(), user, models.RoleInstructor)
	require.NoError(t, err)
	assert.Equal(t, models.RoleInstructor, updated.Role)
	require.NotNil(t, updated.InstructorProfile)
	require.Len(t, provider.calls, 1)
	assert.Equal(t, models.RoleInstructor, provider.calls[0]["role"])
	assert.Len(t, mailer.Sent(), 1)

	// same role is a no-op
	_, err = s.ChangeRole(context.Background(), *updated, models.RoleInstructor)
	require.NoError(t, err)
	assert.Len(t, provider.calls, 1)

	_, err = s.ChangeRole(context.Background(), *updated, "owner")
	assert.Error(t, err)
}

func TestChangeRoleProviderFailureLeavesUserUntouched(t *testing.T) {
	s, provider, mailer := newService(t)
	provider.err = errors.New("clerk unavailable")
	user := testutils.CreateUser(t, s.DB, models.RoleStudent)

	_, err := s.ChangeRole(context.Background(), user, models.RoleAdmin)
	require.Error(t, err)

	var reloaded models.User
	require.NoError(t, s.DB.First(&reloaded, user.ID).Error)
	assert.Equal(t, models.RoleStudent, reloaded.Role)
	assert.Empty(t, mailer.Sent())
}
