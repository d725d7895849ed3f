package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewIsUniqueAndOrdered(t *testing.T) {
	t.Parallel()

	a := New()
	b := New()
	require.NotEqual(t, a, b)
	require.Less(t, a.String(), b.String())
}

func TestNewConcurrent(t *testing.T) {
	t.Parallel()

	const n = 200
	ids := make(chan ID, n)
	for range n {
		go func() { ids <- New() }()
	}

	seen := make(map[ID]struct{}, n)
	for range n {
		id := <-ids
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	id := New()
	parsed, err := Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	_, err = Parse("")
	require.ErrorIs(t, err, ErrInvalid)

	_, err = Parse("not-a-ulid")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestTimeRoundTrip(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	id := NewAt(at)
	require.Equal(t, at, id.Time())

	require.True(t, Zero.Time().IsZero())
}
