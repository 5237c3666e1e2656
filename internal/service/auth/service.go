package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"

	"github.com/upmhealth/patient-records-api/internal/config"
	"github.com/upmhealth/patient-records-api/internal/model"
)

// account is one entry in the static credential table. Passwords are
// bcrypt-hashed at load so plaintext never lives past startup.
type account struct {
	identity     model.Identity
	passwordHash []byte
}

// Service is the process-wide credential store. It is built once from
// configuration; there are no tokens and no sessions.
type Service struct {
	accounts map[string]*account
}

func NewService(users []config.DemoUser) (*Service, error) {
	accounts := make(map[string]*account, len(users))
	for _, u := range users {
		role := model.Role(u.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("invalid role %q for user %q", u.Role, u.Username)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %q: %w", u.Username, err)
		}
		accounts[u.Username] = &account{
			identity: model.Identity{
				PersonID: u.PersonID,
				Username: u.Username,
				Role:     role,
				Name:     u.Name,
			},
			passwordHash: hash,
		}
	}
	return &Service{accounts: accounts}, nil
}

// Authenticate checks credentials and returns the caller's identity.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(username, password string) (*model.Identity, error) {
	acc, ok := s.accounts[username]
	if !ok {
		return nil, apperrors.Unauthorized("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return nil, apperrors.Unauthorized("invalid username or password")
	}
	identity := acc.identity
	return &identity, nil
}

// Resolve maps a username to its identity without checking a password.
// The audit writer uses it; ok is false for unknown usernames.
func (s *Service) Resolve(username string) (*model.Identity, bool) {
	acc, ok := s.accounts[username]
	if !ok {
		return nil, false
	}
	identity := acc.identity
	return &identity, true
}

// Verify confirms that the claimed username/role pair matches the store.
func (s *Service) Verify(username string, role model.Role) (*model.Identity, error) {
	acc, ok := s.accounts[username]
	if !ok || acc.identity.Role != role {
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	identity := acc.identity
	return &identity, nil
}
