package document

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sig(userID string, order int, status SignatoryStatus) DocumentSignatory {
	return DocumentSignatory{ID: "sig-" + userID, UserID: userID, Order: order, Status: status}
}

func tierUsers(t *testing.T, signatories []DocumentSignatory) []string {
	t.Helper()
	out := []string{}
	for _, s := range CurrentTier(signatories) {
		out = append(out, s.UserID)
	}
	return out
}

func TestCurrentTier_Empty(t *testing.T) {
	require.Nil(t, CurrentTier(nil))
	require.Nil(t, CurrentTier([]DocumentSignatory{}))
}

func TestCurrentTier_AllResolved(t *testing.T) {
	s := []DocumentSignatory{
		sig("u1", 0, SignatorySigned),
		sig("u2", 1, SignatoryRejected),
	}
	require.Empty(t, CurrentTier(s))
}

func TestCurrentTier_ParallelTier(t *testing.T) {
	s := []DocumentSignatory{
		sig("u1", 0, SignatoryPending),
		sig("u2", 0, SignatoryPending),
	}
	require.ElementsMatch(t, []string{"u1", "u2"}, tierUsers(t, s))
}

func TestCurrentTier_ZeroBeatsPositiveOrders(t *testing.T) {
	// Order 0 is a deliberate escape hatch: it always resolves first even when
	// positive orders coexist on the same document.
	s := []DocumentSignatory{
		sig("u1", 2, SignatoryPending),
		sig("u2", 0, SignatoryPending),
		sig("u3", 1, SignatoryPending),
		sig("u4", 0, SignatoryPending),
	}
	require.ElementsMatch(t, []string{"u2", "u4"}, tierUsers(t, s))
}

func TestCurrentTier_LowestPendingSequentialTier(t *testing.T) {
	s := []DocumentSignatory{
		sig("u1", 1, SignatorySigned),
		sig("u2", 2, SignatoryPending),
		sig("u3", 2, SignatoryPending),
		sig("u4", 3, SignatoryPending),
	}
	require.ElementsMatch(t, []string{"u2", "u3"}, tierUsers(t, s))
}

func TestCurrentTier_NeverMixesOrders(t *testing.T) {
	s := []DocumentSignatory{
		sig("u1", 1, SignatoryPending),
		sig("u2", 2, SignatoryPending),
	}
	tier := CurrentTier(s)
	require.Len(t, tier, 1)
	require.Equal(t, "u1", tier[0].UserID)
	for _, ts := range tier {
		require.Equal(t, tier[0].Order, ts.Order)
	}
}

func TestCurrentTier_AdvancesAfterTierResolves(t *testing.T) {
	s := []DocumentSignatory{
		sig("u1", 0, SignatorySigned),
		sig("u2", 0, SignatorySigned),
		sig("u3", 1, SignatoryPending),
	}
	require.ElementsMatch(t, []string{"u3"}, tierUsers(t, s))
}

func TestIsReady(t *testing.T) {
	s := []DocumentSignatory{
		sig("u1", 1, SignatoryPending),
		sig("u2", 2, SignatoryPending),
		sig("u3", 1, SignatorySigned),
	}
	require.True(t, IsReady(s, "u1"))
	require.False(t, IsReady(s, "u2"), "later tier must wait")
	require.False(t, IsReady(s, "u3"), "already signed")
	require.False(t, IsReady(s, "nobody"))
}

func TestCurrentTier_DoesNotMutateInput(t *testing.T) {
	s := []DocumentSignatory{
		sig("u1", 0, SignatoryPending),
		sig("u2", 1, SignatoryPending),
	}
	before := make([]DocumentSignatory, len(s))
	copy(before, s)
	_ = CurrentTier(s)
	require.Equal(t, before, s)
}
