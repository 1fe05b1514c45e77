package ttl

import (
	"testing"

	"github.com/IvanBrykalov/cachecore/policy"
	"github.com/IvanBrykalov/cachecore/policy/policytest"
	"github.com/stretchr/testify/require"
)

func TestTTL_EarliestDeadlineFirst(t *testing.T) {
	t.Parallel()

	p := New[string, int](0).New(nil)
	forever := policytest.NewNode("forever", 0)
	soon := policytest.NewNode("soon", 0)
	soon.Exp = 100
	later := policytest.NewNode("later", 0)
	later.Exp = 200

	for _, n := range []*policytest.Node[string, int]{forever, later, soon} {
		p.OnAdd(n)
	}
	require.Equal(t, policy.Node[string, int](soon), p.Victim())

	// Access does not extend a deadline.
	p.OnAccess(soon)
	require.Equal(t, policy.Node[string, int](soon), p.Victim())

	// Overwriting with a longer TTL moves it behind "later".
	soon.Exp = 300
	p.OnUpdate(soon)
	require.Equal(t, policy.Node[string, int](later), p.Victim())

	p.OnRemove(later)
	p.OnRemove(soon)
	require.Equal(t, policy.Node[string, int](forever), p.Victim())
	require.Equal(t, policy.NoExpiry, p.Victim().ExpiresAt())
}
