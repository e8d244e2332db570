package inspect

import (
	"context"
	"errors"
	"testing"

	"github.com/go-bond/lazyobj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Account struct {
	ID      uint64 `lazy:",readonly"`
	Owner   string
	Balance uint64
}

const accountID = "00000000-0000-0000-0000-000000000001"

func setupAccount(t *testing.T) (*lazyobj.Object[*Account], *int) {
	t.Helper()

	account, err := lazyobj.NewObject(lazyobj.ObjectOptions[*Account]{
		Record:      &Account{ID: 1, Owner: "0xabc"},
		Policy:      lazyobj.CacheMemoize,
		IDGenerator: &lazyobj.SequenceGenerator{},
	})
	require.NoError(t, err)

	calls := 0
	err = account.SetLazy("Balance", func() (any, error) {
		calls++
		return uint64(500), nil
	})
	require.NoError(t, err)

	return account, &calls
}

func TestInspect_Objects(t *testing.T) {
	account, _ := setupAccount(t)

	insp, err := NewInspect([]lazyobj.ObjectInfo{account})
	require.NoError(t, err)

	objects, err := insp.Objects()
	require.NoError(t, err)
	assert.Equal(t, []ObjectEntry{{ID: accountID, Name: "Account"}}, objects)
}

func TestInspect_DuplicateObject(t *testing.T) {
	account, _ := setupAccount(t)

	_, err := NewInspect([]lazyobj.ObjectInfo{account, account})
	require.Error(t, err)
}

func TestInspect_Properties(t *testing.T) {
	account, _ := setupAccount(t)

	insp, err := NewInspect([]lazyobj.ObjectInfo{account})
	require.NoError(t, err)

	properties, err := insp.Properties(accountID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"ID":      "uint64",
		"Owner":   "string",
		"Balance": "uint64",
	}, properties)

	_, err = insp.Properties("00000000-0000-0000-0000-000000000002")
	require.EqualError(t, err, "object not found")

	_, err = insp.Properties("not-an-id")
	require.Error(t, err)

	_, err = insp.Properties("")
	require.EqualError(t, err, "object can not be empty")
}

func TestInspect_Status(t *testing.T) {
	account, calls := setupAccount(t)

	insp, err := NewInspect([]lazyobj.ObjectInfo{account})
	require.NoError(t, err)

	status, err := insp.Status(accountID)
	require.NoError(t, err)
	require.Len(t, status, 3)
	assert.Equal(t, 0, *calls)

	assert.Equal(t, "Balance", status[2].Name)
	assert.Equal(t, lazyobj.StatePending, status[2].State)
}

func TestInspect_Materialize(t *testing.T) {
	account, calls := setupAccount(t)

	insp, err := NewInspect([]lazyobj.ObjectInfo{account})
	require.NoError(t, err)

	status, err := insp.Materialize(context.Background(), accountID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)
	assert.Equal(t, uint64(500), account.Record().Balance)

	assert.Equal(t, lazyobj.StateMaterialized, status[2].State)
	assert.Equal(t, "500", status[2].Value)
}

func TestInspect_MaterializeError(t *testing.T) {
	account, _ := setupAccount(t)

	errNode := errors.New("node unreachable")
	require.NoError(t, account.SetLazy("Owner", func() (any, error) {
		return nil, errNode
	}))

	insp, err := NewInspect([]lazyobj.ObjectInfo{account})
	require.NoError(t, err)

	_, err = insp.Materialize(context.Background(), accountID, []string{"Owner"})
	require.ErrorIs(t, err, errNode)
}

func TestRegistry_Unregister(t *testing.T) {
	account, _ := setupAccount(t)

	registry := NewRegistry()
	require.NoError(t, registry.Register(account))

	registry.Unregister(account.ID())

	objects, err := registry.Objects()
	require.NoError(t, err)
	assert.Empty(t, objects)
}
