package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"nsn-odds-data/internal/apierr"
	"nsn-odds-data/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keysStub struct {
	keys    []*domain.APIKey
	revoked []int64
	deleted []int64
}

func (s *keysStub) Create(_ context.Context, name string) (*domain.APIKey, error) {
	k := &domain.APIKey{ID: int64(len(s.keys) + 1), Name: name, Key: "nsn_0123456789abcdef0123456789abcdef", IsActive: true}
	s.keys = append(s.keys, k)
	return k, nil
}

func (s *keysStub) List(context.Context) ([]*domain.APIKey, error) { return s.keys, nil }

func (s *keysStub) Revoke(_ context.Context, id int64) error {
	if id > int64(len(s.keys)) {
		return apierr.NotFound("API key not found")
	}
	s.revoked = append(s.revoked, id)
	return nil
}

func (s *keysStub) Delete(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func stubConfirm(answer bool) func() {
	orig := confirmFunc
	confirmFunc = func(string) (bool, error) { return answer, nil }
	return func() { confirmFunc = orig }
}

func TestCreateAndList(t *testing.T) {
	keys := &keysStub{}
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), keys, []string{"create", "partner", "feed"}, &out))
	assert.Contains(t, out.String(), "Created key 1 (partner feed)")
	assert.Contains(t, out.String(), "nsn_0123456789abcdef0123456789abcdef")

	used := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	keys.keys[0].LastUsedAt = &used
	out.Reset()
	require.NoError(t, run(context.Background(), keys, []string{"list"}, &out))
	assert.Contains(t, out.String(), "partner feed")
	assert.Contains(t, out.String(), "nsn_01234567...cdef")
	assert.Contains(t, out.String(), "2026-03-10 12:00")
	assert.NotContains(t, out.String(), "0123456789abcdef0123")
}

func TestListEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &keysStub{}, []string{"list"}, &out))
	assert.Equal(t, "No API keys\n", out.String())
}

func TestRevoke(t *testing.T) {
	keys := &keysStub{}
	_, _ = keys.Create(context.Background(), "a")
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), keys, []string{"revoke", "1"}, &out))
	assert.Equal(t, []int64{1}, keys.revoked)

	assert.Error(t, run(context.Background(), keys, []string{"revoke", "9"}, &out))
	assert.Error(t, run(context.Background(), keys, []string{"revoke", "abc"}, &out))
	assert.Error(t, run(context.Background(), keys, []string{"revoke"}, &out))
}

func TestDeleteConfirmation(t *testing.T) {
	keys := &keysStub{}
	var out bytes.Buffer

	restore := stubConfirm(false)
	require.NoError(t, run(context.Background(), keys, []string{"delete", "3"}, &out))
	restore()
	assert.Empty(t, keys.deleted)
	assert.Contains(t, out.String(), "Aborted")

	restore = stubConfirm(true)
	require.NoError(t, run(context.Background(), keys, []string{"delete", "3"}, &out))
	restore()
	assert.Equal(t, []int64{3}, keys.deleted)

	restore = stubConfirm(false)
	defer restore()
	require.NoError(t, run(context.Background(), keys, []string{"delete", "4", "--yes"}, &out))
	assert.Equal(t, []int64{3, 4}, keys.deleted)
}

func TestUnknownCommand(t *testing.T) {
	err := run(context.Background(), &keysStub{}, []string{"rotate"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "usage"))
}

func TestConfirmModel(t *testing.T) {
	m := confirmModel{prompt: "Delete?"}
	assert.Equal(t, "Delete? [y/N] ", m.View())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	require.NotNil(t, cmd)
	assert.True(t, next.(confirmModel).yes)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, next.(confirmModel).yes)
	assert.True(t, next.(confirmModel).answered)

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
	assert.False(t, next.(confirmModel).answered)
}
