package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ds-lab/eventmanager/internal/entity"
)

func testUser() *entity.User {
	return &entity.User{ID: 12, Username: "organizer", Role: "staff"}
}

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("secret", time.Hour)

	signed, err := m.Issue(testUser())
	require.NoError(t, err)

	claims, err := m.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.UserID)
	assert.Equal(t, "organizer", claims.Username)
	assert.Equal(t, "staff", claims.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signed, err := NewManager("secret", time.Hour).Issue(testUser())
	require.NoError(t, err)

	_, err = NewManager("other-secret", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := NewManager("secret", -time.Minute)

	signed, err := m.Issue(testUser())
	require.NoError(t, err)

	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewManager("secret", time.Hour).Verify("not.a.token")
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}
