package gds

import (
	"testing"

	"github.com/IvanBrykalov/cachecore/policy"
	"github.com/IvanBrykalov/cachecore/policy/policytest"
	"github.com/stretchr/testify/require"
)

func TestGDS_CheapEntriesGoFirst(t *testing.T) {
	t.Parallel()

	p := New[string, int](0).New(nil).(*gds[string, int])

	cheap := policytest.NewNode("cheap", 0)
	cheap.C = 1
	dear := policytest.NewNode("dear", 0)
	dear.C = 10
	big := policytest.NewNode("big", 0)
	big.C, big.S = 10, 20 // 0.5 per unit

	for _, n := range []*policytest.Node[string, int]{cheap, dear, big} {
		p.OnAdd(n)
	}
	require.Equal(t, policy.Node[string, int](big), p.Victim())

	p.OnRemove(big)
	require.Equal(t, 0.5, p.Inflation())
	require.Equal(t, policy.Node[string, int](cheap), p.Victim())
}

// A hit re-credits the entry at the inflated level, so an idle entry of
// equal cost becomes the victim.
func TestGDS_AccessAgesOthers(t *testing.T) {
	t.Parallel()

	p := New[string, int](0).New(nil).(*gds[string, int])
	a := policytest.NewNode("a", 0)
	b := policytest.NewNode("b", 0)
	x := policytest.NewNode("x", 0)
	x.C = 0.5
	p.OnAdd(a)
	p.OnAdd(b)
	p.OnAdd(x)

	p.OnRemove(x) // L = 0.5
	p.OnAccess(a) // H(a) = 1.5, H(b) stays 1
	require.Equal(t, policy.Node[string, int](b), p.Victim())

	// Removing a non-minimum must not move L.
	p.OnRemove(a)
	require.Equal(t, 0.5, p.Inflation())
}

func TestGDS_UpdateRecredits(t *testing.T) {
	t.Parallel()

	p := New[string, int](0).New(nil)
	a := policytest.NewNode("a", 0)
	b := policytest.NewNode("b", 0)
	b.C = 2
	p.OnAdd(a)
	p.OnAdd(b)
	require.Equal(t, policy.Node[string, int](a), p.Victim())

	a.C = 5
	p.OnUpdate(a)
	require.Equal(t, policy.Node[string, int](b), p.Victim())
}
