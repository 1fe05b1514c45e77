package lru

import (
	"testing"

	"github.com/IvanBrykalov/cachecore/policy"
	"github.com/IvanBrykalov/cachecore/policy/policytest"
)

// Victim must follow the store's recency order.
func TestLRU_VictimIsOldest(t *testing.T) {
	t.Parallel()

	h := policytest.NewHooks[string, int]()
	p := New[string, int]().New(h)

	a := policytest.NewNode("a", 1)
	b := policytest.NewNode("b", 2)
	for _, n := range []*policytest.Node[string, int]{a, b} {
		h.Add(n)
		p.OnAdd(n)
	}

	if v := p.Victim(); v != policy.Node[string, int](a) {
		t.Fatalf("victim want a, got %v", v)
	}

	h.Touch(a)
	p.OnAccess(a)
	if v := p.Victim(); v != policy.Node[string, int](b) {
		t.Fatalf("victim after touching a want b, got %v", v)
	}
}

// An empty store has no victim.
func TestLRU_EmptyHasNoVictim(t *testing.T) {
	t.Parallel()

	p := New[string, int]().New(policytest.NewHooks[string, int]())
	if v := p.Victim(); v != nil {
		t.Fatalf("want nil victim, got %v", v)
	}
}
