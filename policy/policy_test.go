package policy

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDeadline(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano()
	require.Equal(t, now+int64(time.Second), Deadline(now, time.Second))
	require.Equal(t, NoExpiry, Deadline(now, 0))
	require.Equal(t, NoExpiry, Deadline(now, -1))
	// Past the int64 range the entry never expires instead of wrapping.
	require.Equal(t, NoExpiry, Deadline(now, math.MaxInt64))
	require.Equal(t, NoExpiry, Deadline(now, time.Duration(NoExpiry-now+1)))
	require.Equal(t, NoExpiry-1, Deadline(now, time.Duration(NoExpiry-now-1)))
	require.Equal(t, int64(math.MaxInt64-1), Deadline(-1, math.MaxInt64))
}
