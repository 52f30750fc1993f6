package clob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookRegistry_CreateMarketNeverOverwrites(t *testing.T) {
	reg := NewBookRegistry(NewInMemoryPublisher())

	assert.True(t, reg.CreateMarket("M1"))
	assert.False(t, reg.CreateMarket("m1"), "case-insensitive: already exists")

	eng, err := reg.Lookup("m1")
	require.NoError(t, err)
	require.NotNil(t, eng)
}

func TestBookRegistry_LookupUnknownMarket(t *testing.T) {
	reg := NewBookRegistry(NewInMemoryPublisher())
	_, err := reg.Lookup("nope")
	assert.ErrorIs(t, err, ErrUnknownMarket)
}

func TestBookRegistry_ListOpenOrdersForAccountCaseInsensitive(t *testing.T) {
	reg := NewBookRegistry(NewInMemoryPublisher())
	reg.CreateMarket("m1")
	reg.CreateMarket("m2")

	router := NewIngressRouter(reg)
	_, err := router.Submit(newTestOrder("a", "m1", "Alice", 0.5, 1, false))
	require.NoError(t, err)
	_, err = router.Submit(newTestOrder("b", "m2", "alice", 0.6, 2, false))
	require.NoError(t, err)
	_, err = router.Submit(newTestOrder("c", "m1", "bob", 0.4, 1, false))
	require.NoError(t, err)

	orders := reg.ListOpenOrdersForAccount("ALICE")
	assert.Len(t, orders, 2)
}
