package pasetotoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := New(Config{
		Mode:      ModeLocal,
		Issuer:    "medibook",
		Audience:  "medibook-api",
		AccessTTL: time.Minute,
	}, NewLocalKeys())
	require.NoError(t, err)
	return m
}

func TestIssueAndVerify(t *testing.T) {
	m := newTestManager(t)
	subj := Subject{ID: uuid.New(), Role: "doctor", SessionID: uuid.New()}

	tok, exp, err := m.IssueAccess(subj)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 2*time.Second)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.Equal(t, subj.ID, claims.SubjectID)
	assert.Equal(t, "doctor", claims.Role)
	assert.Equal(t, subj.SessionID, claims.SessionID)
}

func TestVerify_Expired(t *testing.T) {
	m := newTestManager(t)
	issuedAt := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issuedAt }

	tok, _, err := m.IssueAccess(Subject{ID: uuid.New(), Role: "patient", SessionID: uuid.New()})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(tok)
	var invalid ErrInvalidToken
	assert.ErrorAs(t, err, &invalid)
}

func TestVerify_WrongKey(t *testing.T) {
	a := newTestManager(t)
	b := newTestManager(t)

	tok, _, err := a.IssueRefresh(Subject{ID: uuid.New(), Role: "patient", SessionID: uuid.New()})
	require.NoError(t, err)

	_, err = b.Verify(tok)
	assert.Error(t, err)
}

func TestLoadKeys(t *testing.T) {
	_, err := LoadKeys(KeyStrings{Mode: ModeLocal})
	assert.Error(t, err)

	_, err = LoadKeys(KeyStrings{Mode: "other"})
	assert.Error(t, err)

	k := NewLocalKeys()
	loaded, err := LoadKeys(KeyStrings{Mode: ModeLocal, SymmetricHex: k.Symmetric.ExportHex()})
	require.NoError(t, err)
	assert.Equal(t, ModeLocal, loaded.Mode)
}
