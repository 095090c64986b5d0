package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/extracto/internal/config"
)

func TestNewService(t *testing.T) {
	accts := config.Default().Accounts
	svc := NewService(accts)

	assert.Len(t, svc.All(), len(accts))
}

func TestExists(t *testing.T) {
	svc := NewService(config.Default().Accounts)

	assert.True(t, svc.Exists("Débito BROU $"))
	assert.True(t, svc.Exists(" Crédito Itaú U$S "))
	assert.False(t, svc.Exists("Caja chica"))
	assert.True(t, svc.Exists("Débito Itaú $ Gonza"))
	assert.False(t, svc.Exists("débito itaú $ gonza"))
}

func TestUnknown(t *testing.T) {
	svc := NewService([]config.Account{{Label: "A", File: "a.xlsx"}})
	assert.Equal(t, []string{"C", "Z"}, svc.Unknown([]string{"Z", "A", "C"}))
	assert.Empty(t, svc.Unknown([]string{"A"}))
}

func TestDuplicateLabelLastWins(t *testing.T) {
	svc := NewService([]config.Account{
		{Label: "A", File: "old.xlsx"},
		{Label: "B", File: "b.xlsx"},
		{Label: " A", File: "new.xlsx"},
	})
	all := svc.All()
	require.Len(t, all, 2)
	assert.Equal(t, "new.xlsx", all[0].File)
	assert.Equal(t, "b.xlsx", all[1].File)
}
