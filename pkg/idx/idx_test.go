package idx_test

import (
	"sort"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessionauth/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	id := idx.New()
	require.False(t, id.IsZero())
	require.Len(t, id.String(), 26)

	parsed, err := idx.Parse(" " + id.String() + "\n")
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "not-a-ulid", "01ARZ3NDEKTSV4RRFFQ69G5FA"} {
		_, err := idx.Parse(s)
		require.ErrorIs(t, err, idx.ErrInvalid, s)
	}
}

func TestMonotonicWithinMillisecond(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	ids := make([]string, 100)
	for i := range ids {
		ids[i] = idx.NewAt(at).String()
	}
	require.True(t, sort.StringsAreSorted(ids))
	require.NotEqual(t, ids[0], ids[1])
}

func TestTime(t *testing.T) {
	tm := time.Unix(1700000000, 0).UTC()
	require.Equal(t, tm, idx.NewAt(tm).Time())
	require.True(t, idx.Zero.Time().IsZero())
}
