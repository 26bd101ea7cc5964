package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"conclave.io/conclave/lib/storage"
)

// Zero-padded keys must sort lexicographically in numeric order, otherwise
// proposal iteration breaks past id 9.
func TestGetProposalKeyOrder(t *testing.T) {
	previous := GetProposalKey(0)
	for _, id := range []uint64{1, 9, 10, 11, 99, 100, 1000000} {
		key := GetProposalKey(id)
		require.True(t, previous < key)
		previous = key
	}
}

func TestGetVoteDefaultsToAbsent(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	vs, err := GetVote(st, 0, "GNOBODY")
	require.NoError(t, err)
	require.Equal(t, VoteAbsent, vs)
}

func TestProposalSaveRoundTrip(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	p := NewProposal(3, "payout", []byte("showme"))
	require.NoError(t, p.Save(st))

	fetched, err := GetProposal(st, 3)
	require.NoError(t, err)
	require.Equal(t, p.ID, fetched.ID)
	require.Equal(t, p.Target, fetched.Target)
	require.Equal(t, p.Payload, fetched.Payload)
	require.Equal(t, p.Executed, fetched.Executed)
}

func TestGetProposalCountDefaultsToZero(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	count, err := GetProposalCount(st)
	require.NoError(t, err)
	require.Equal(t, uint64(0), count)
}
