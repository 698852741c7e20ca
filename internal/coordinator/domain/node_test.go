package domain

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_MasterFirst(t *testing.T) {
	r := NewRegistry()

	// A remote node before the master is rejected.
	_, err := r.Add(Node{UDPPort: 6700})
	assert.ErrorIs(t, err, ErrMasterFirst)

	require.NoError(t, r.RegisterMaster())
	assert.Equal(t, 1, r.Count())

	master, err := r.Get(MasterRank)
	require.NoError(t, err)
	assert.Equal(t, Node{}, master)

	// Registering the master twice is rejected.
	assert.ErrorIs(t, r.RegisterMaster(), ErrMasterRegistered)
}

func TestRegistry_RanksFollowInsertionOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterMaster())

	nodes := []Node{
		{IP: netip.MustParseAddr("10.0.0.1"), UDPPort: 6700, CoreID: 0},
		{IP: netip.MustParseAddr("10.0.0.2"), UDPPort: 6700, CoreID: 1},
		{IP: netip.MustParseAddr("10.0.0.3"), UDPPort: 6701, CoreID: 2},
	}
	for i, n := range nodes {
		rank, err := r.Add(n)
		require.NoError(t, err)
		assert.Equal(t, i+1, rank)
	}

	assert.Equal(t, len(nodes)+1, r.Count())
	for i, want := range nodes {
		got, err := r.Get(i + 1)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestRegistry_GetOutOfRange(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterMaster())

	_, err := r.Get(-1)
	assert.ErrorIs(t, err, ErrRankNotFound)

	_, err = r.Get(r.Count())
	assert.ErrorIs(t, err, ErrRankNotFound)
}
