package lfu

import (
	"testing"

	"github.com/IvanBrykalov/cachecore/pheap"
	"github.com/IvanBrykalov/cachecore/policy"
	"github.com/IvanBrykalov/cachecore/policy/policytest"
	"github.com/stretchr/testify/require"
)

func TestLFU_VictimIsLeastRead(t *testing.T) {
	t.Parallel()

	p := New[string, int](0).New(policytest.NewHooks[string, int]())
	a := policytest.NewNode("a", 1)
	b := policytest.NewNode("b", 2)
	c := policytest.NewNode("c", 3)
	for _, n := range []*policytest.Node[string, int]{a, b, c} {
		p.OnAdd(n)
	}

	p.OnAccess(a)
	p.OnAccess(a)
	p.OnAccess(c)

	require.Equal(t, policy.Node[string, int](b), p.Victim())

	p.OnRemove(b)
	require.Equal(t, pheap.NoHandle, b.Tag().Heap)
	require.Equal(t, policy.Node[string, int](c), p.Victim())

	// Removing an untracked node is harmless.
	p.OnRemove(b)
}

func TestLFU_Empty(t *testing.T) {
	t.Parallel()

	p := New[string, int](4).New(nil)
	require.Nil(t, p.Victim())
}
