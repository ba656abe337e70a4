package identity

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zaloga/internal/apperr"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	users := store.New[model.User](filepath.Join(t.TempDir(), "users.json"), zerolog.Nop())
	return NewService(users, zerolog.Nop())
}

func TestRegisterAndAuthenticate(t *testing.T) {
	s := newTestService(t)

	user, err := s.Register("alice", "hunter22", model.RoleUser)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	got, err := s.Authenticate("alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	// Lookup is case-insensitive.
	_, err = s.Authenticate("ALICE", "hunter22")
	assert.NoError(t, err)
}

func TestAuthenticateFailuresIndistinguishable(t *testing.T) {
	s := newTestService(t)
	_, err := s.Register("alice", "hunter22", model.RoleUser)
	require.NoError(t, err)

	_, wrongPassword := s.Authenticate("alice", "wrong")
	_, unknownUser := s.Authenticate("nobody", "hunter22")

	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(wrongPassword))
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(unknownUser))
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestRegisterValidation(t *testing.T) {
	s := newTestService(t)

	cases := []struct {
		name               string
		username, password string
		role               string
	}{
		{"empty username", "", "hunter22", model.RoleUser},
		{"empty password", "alice", "", model.RoleUser},
		{"short password", "alice", "12345", model.RoleUser},
		{"bad role", "alice", "hunter22", "superuser"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Register(tc.username, tc.password, tc.role)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}

	users, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, users, "failed registrations must not persist anything")
}

func TestRegisterConflictCaseInsensitive(t *testing.T) {
	s := newTestService(t)

	_, err := s.Register("Alice", "hunter22", model.RoleUser)
	require.NoError(t, err)

	_, err = s.Register("alice", "password9", model.RoleUser)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestDeleteSelfForbidden(t *testing.T) {
	s := newTestService(t)
	admin, err := s.Register("admin", "password", model.RoleAdmin)
	require.NoError(t, err)

	err = s.Delete(admin.ID, admin.ID)
	assert.Equal(t, apperr.KindInvariant, apperr.KindOf(err))
}

func TestDeleteLastAdmin(t *testing.T) {
	s := newTestService(t)
	admin, err := s.Register("admin", "password", model.RoleAdmin)
	require.NoError(t, err)
	other, err := s.Register("bob", "password", model.RoleUser)
	require.NoError(t, err)

	err = s.Delete(admin.ID, other.ID)
	assert.Equal(t, apperr.KindInvariant, apperr.KindOf(err))

	// Store unchanged.
	users, err := s.List()
	require.NoError(t, err)
	assert.Len(t, users, 2)

	// A second admin makes the deletion legal.
	_, err = s.Register("admin2", "password", model.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, s.Delete(admin.ID, other.ID))

	users, _ = s.List()
	assert.Len(t, users, 2)
}

func TestDeleteUnknownUser(t *testing.T) {
	s := newTestService(t)
	admin, _ := s.Register("admin", "password", model.RoleAdmin)

	err := s.Delete("no-such-id", admin.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateDemoteSoleAdmin(t *testing.T) {
	s := newTestService(t)
	admin, err := s.Register("admin", "password", model.RoleAdmin)
	require.NoError(t, err)

	_, err = s.Update(admin.ID, "admin", model.RoleUser, "", admin.ID)
	assert.Equal(t, apperr.KindInvariant, apperr.KindOf(err))

	got, err := s.Get(admin.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, got.Role, "role must remain admin")
}

func TestUpdateUsernameConflict(t *testing.T) {
	s := newTestService(t)
	_, err := s.Register("alice", "password", model.RoleUser)
	require.NoError(t, err)
	bob, err := s.Register("bob", "password", model.RoleUser)
	require.NoError(t, err)

	_, err = s.Update(bob.ID, "ALICE", model.RoleUser, "", "")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// Renaming to your own name (case change) is fine.
	_, err = s.Update(bob.ID, "Bob", model.RoleUser, "", "")
	assert.NoError(t, err)
}

func TestUpdatePasswordOptional(t *testing.T) {
	s := newTestService(t)
	alice, err := s.Register("alice", "hunter22", model.RoleUser)
	require.NoError(t, err)

	// Empty password keeps the current one.
	_, err = s.Update(alice.ID, "alice", model.RoleUser, "", "")
	require.NoError(t, err)
	_, err = s.Authenticate("alice", "hunter22")
	assert.NoError(t, err)

	// Short new password is rejected.
	_, err = s.Update(alice.ID, "alice", model.RoleUser, "123", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// A valid new password replaces the old one.
	_, err = s.Update(alice.ID, "alice", model.RoleUser, "newpassword", "")
	require.NoError(t, err)
	_, err = s.Authenticate("alice", "hunter22")
	assert.Error(t, err)
	_, err = s.Authenticate("alice", "newpassword")
	assert.NoError(t, err)
}

func TestEnsureDefaultAdmin(t *testing.T) {
	s := newTestService(t)

	require.NoError(t, s.EnsureDefaultAdmin())
	user, err := s.Authenticate(DefaultAdminUsername, DefaultAdminPassword)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)

	// Idempotent, and a no-op once any user exists.
	require.NoError(t, s.EnsureDefaultAdmin())
	users, _ := s.List()
	assert.Len(t, users, 1)
}
