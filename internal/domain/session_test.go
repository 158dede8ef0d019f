package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHost(t *testing.T) {
	s := &Session{ID: "s-1", HostID: "host-1"}

	assert.True(t, s.IsHost("host-1"))
	assert.False(t, s.IsHost("u-1"))
	assert.False(t, s.IsHost(""))

	var nilSession *Session
	assert.False(t, nilSession.IsHost("host-1"))
}

func TestResolveNamePrecedence(t *testing.T) {
	s := &Session{
		ID:           "s-1",
		HostID:       "host-1",
		Participants: []User{{ID: "u-known", Name: "Dana"}},
	}

	assert.Equal(t, "Explicit", s.ResolveName("u-known", "Explicit"))
	assert.Equal(t, "Dana", s.ResolveName("u-known", ""))
	assert.Equal(t, "Teacher (Host)", s.ResolveName("host-1", ""))
	assert.Equal(t, "Participant", s.ResolveName("u-stranger", ""))
}

func TestNewUserValidation(t *testing.T) {
	u, err := NewUser("Ann")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Ann", u.Name)

	_, err = NewUser("")
	assert.ErrorIs(t, err, ErrUsernameEmpty)

	_, err = NewUser(strings.Repeat("x", MaxUsernameLen+1))
	assert.ErrorIs(t, err, ErrUsernameTooLong)
}
