package service

import (
	"testing"

	"pensionado/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoUsers() []models.User {
	return []models.User{
		{ID: "1", Name: "Paneton", LastName: "Pan Cito", Email: "paneton@ejemplo.com", Active: true},
		{ID: "2", Name: "Buñuelito", LastName: "Manu gei", Email: "manu@ejemplo.com", Active: true},
		{ID: "3", Name: "Inactivo", Active: false},
	}
}

func TestAuthSession(t *testing.T) {
	s := NewAuthSession(demoUsers(), testLogger())

	_, ok := s.CurrentUser()
	assert.False(t, ok)
	assert.Empty(t, s.CurrentUserID())

	user, err := s.SignIn("1")
	require.NoError(t, err)
	assert.Equal(t, "Paneton Pan Cito", user.FullName())
	assert.Equal(t, "1", s.CurrentUserID())

	_, err = s.SignIn("99")
	assert.ErrorIs(t, err, ErrUnknownUser)
	assert.Equal(t, "1", s.CurrentUserID(), "failed sign in keeps the current user")

	_, err = s.SignIn("3")
	assert.ErrorIs(t, err, ErrUserInactive)

	user, err = s.SignIn("2")
	require.NoError(t, err)
	current, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, user, current)

	s.SignOut()
	assert.Empty(t, s.CurrentUserID())
	s.SignOut()
}
