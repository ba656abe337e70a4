// Package identity manages user accounts: registration, credential checks,
// and the admin edit/delete operations with their invariants (no
// self-deletion, never zero admins).
package identity

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/zaloga/internal/apperr"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Default first-run admin credentials, created when the user store is empty.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "password"
)

// Service implements user management over the users record store.
type Service struct {
	users *store.Store[model.User]
	log   zerolog.Logger
}

// NewService creates an identity service.
func NewService(users *store.Store[model.User], log zerolog.Logger) *Service {
	return &Service{users: users, log: log}
}

// EnsureDefaultAdmin creates the default admin account when no users exist,
// so a fresh deployment can be logged into.
func (s *Service) EnsureDefaultAdmin() error {
	users, err := s.users.Load()
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Storage(err, "hashing default admin password")
	}
	users = append(users, model.User{
		ID:           uuid.NewString(),
		Username:     DefaultAdminUsername,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	})
	if err := s.users.Save(users); err != nil {
		return err
	}
	s.log.Warn().Str("username", DefaultAdminUsername).
		Msg("created default admin account, change its password immediately")
	return nil
}

// Register creates a new user. The confirm-password equality check belongs
// to the caller; this validates the fields themselves.
func (s *Service) Register(username, password, role string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, apperr.Validation("all fields are required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters long", MinPasswordLength)
	}
	if !model.ValidRole(role) {
		return nil, apperr.Validation("unknown role %q", role)
	}

	users, err := s.users.Load()
	if err != nil {
		return nil, err
	}
	if findByUsername(users, username) != nil {
		return nil, apperr.Conflict("username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Storage(err, "hashing password")
	}

	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	users = append(users, user)
	if err := s.users.Save(users); err != nil {
		return nil, err
	}

	s.log.Info().Str("username", username).Str("role", role).Msg("user registered")
	return &user, nil
}

// Authenticate verifies a username/password pair and returns the matching
// user. Unknown username and wrong password yield the same error on purpose.
func (s *Service) Authenticate(username, password string) (*model.User, error) {
	users, err := s.users.Load()
	if err != nil {
		return nil, err
	}

	user := findByUsername(users, username)
	if user == nil {
		return nil, apperr.Authentication("invalid username or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.log.Warn().Str("username", username).Msg("login failed")
		return nil, apperr.Authentication("invalid username or password")
	}
	return user, nil
}

// List returns all users.
func (s *Service) List() ([]model.User, error) {
	return s.users.Load()
}

// Get returns a user by id.
func (s *Service) Get(id string) (*model.User, error) {
	users, err := s.users.Load()
	if err != nil {
		return nil, err
	}
	user := findByID(users, id)
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

// Update edits a user's username, role, and optionally password. An empty
// newPassword keeps the current hash. actingID identifies the admin making
// the change, needed for the sole-admin demotion check.
func (s *Service) Update(id, username, role, newPassword, actingID string) (*model.User, error) {
	if username == "" {
		return nil, apperr.Validation("username is required")
	}
	if newPassword != "" && len(newPassword) < MinPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters long", MinPasswordLength)
	}
	if !model.ValidRole(role) {
		return nil, apperr.Validation("unknown role %q", role)
	}

	users, err := s.users.Load()
	if err != nil {
		return nil, err
	}
	user := findByID(users, id)
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}

	if id == actingID && user.Role == model.RoleAdmin && role != model.RoleAdmin &&
		countAdmins(users) == 1 {
		return nil, apperr.Invariant("cannot demote the only administrator account")
	}

	if other := findByUsername(users, username); other != nil && other.ID != id {
		return nil, apperr.Conflict("username already exists")
	}

	user.Username = username
	user.Role = role
	if newPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperr.Storage(err, "hashing password")
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Save(users); err != nil {
		return nil, err
	}
	s.log.Info().Str("username", username).Msg("user updated")
	return user, nil
}

// Delete removes a user. Self-deletion is forbidden, and the deletion must
// not leave the system without an admin.
func (s *Service) Delete(id, actingID string) error {
	if id == actingID {
		return apperr.Invariant("cannot delete your own account")
	}

	users, err := s.users.Load()
	if err != nil {
		return err
	}
	user := findByID(users, id)
	if user == nil {
		return apperr.NotFound("user not found")
	}

	if user.Role == model.RoleAdmin && countAdmins(users) == 1 {
		return apperr.Invariant("cannot delete the last administrator account")
	}

	username := user.Username
	kept := make([]model.User, 0, len(users)-1)
	for _, u := range users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	if err := s.users.Save(kept); err != nil {
		return err
	}
	s.log.Info().Str("username", username).Msg("user deleted")
	return nil
}

// findByUsername matches case-insensitively. Returns a pointer into users.
func findByUsername(users []model.User, username string) *model.User {
	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			return &users[i]
		}
	}
	return nil
}

func findByID(users []model.User, id string) *model.User {
	for i := range users {
		if users[i].ID == id {
			return &users[i]
		}
	}
	return nil
}

func countAdmins(users []model.User) int {
	n := 0
	for _, u := range users {
		if u.Role == model.RoleAdmin {
			n++
		}
	}
	return n
}
