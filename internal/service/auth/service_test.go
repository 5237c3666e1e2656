package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"

	"github.com/upmhealth/patient-records-api/internal/config"
	"github.com/upmhealth/patient-records-api/internal/model"
)

func testUsers() []config.DemoUser {
	return []config.DemoUser{
		{Username: "dr.smith", Password: "password123", Role: "physician", PersonID: 1, Name: "Dr. Sarah Smith"},
		{Username: "john.doe", Password: "patient123", Role: "patient", PersonID: 2, Name: "John Doe"},
	}
}

func TestAuthenticate(t *testing.T) {
	svc, err := NewService(testUsers())
	require.NoError(t, err)

	identity, err := svc.Authenticate("dr.smith", "password123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), identity.PersonID)
	assert.Equal(t, model.RolePhysician, identity.Role)
}

func TestAuthenticateFailuresIndistinguishable(t *testing.T) {
	svc, err := NewService(testUsers())
	require.NoError(t, err)

	_, errWrongPassword := svc.Authenticate("dr.smith", "nope")
	_, errUnknownUser := svc.Authenticate("ghost", "nope")

	require.Error(t, errWrongPassword)
	require.Error(t, errUnknownUser)
	assert.Equal(t, errWrongPassword.Error(), errUnknownUser.Error())
	assert.True(t, apperrors.IsCode(errWrongPassword, apperrors.ErrUnauthorized))
}

func TestResolve(t *testing.T) {
	svc, err := NewService(testUsers())
	require.NoError(t, err)

	identity, ok := svc.Resolve("john.doe")
	require.True(t, ok)
	assert.Equal(t, int64(2), identity.PersonID)

	_, ok = svc.Resolve("ghost")
	assert.False(t, ok)
}

func TestVerify(t *testing.T) {
	svc, err := NewService(testUsers())
	require.NoError(t, err)

	_, err = svc.Verify("dr.smith", model.RolePhysician)
	assert.NoError(t, err)

	// A claimed role that does not match the store is rejected.
	_, err = svc.Verify("dr.smith", model.RoleAdmin)
	assert.Error(t, err)

	_, err = svc.Verify("ghost", model.RolePatient)
	assert.Error(t, err)
}

func TestNewServiceRejectsInvalidRole(t *testing.T) {
	_, err := NewService([]config.DemoUser{
		{Username: "x", Password: "y", Role: "superuser", PersonID: 9},
	})
	assert.Error(t, err)
}
