package cache

import (
	"testing"

	"github.com/stridelands/engine/pkg/core"
)

func TestTerritoryCache_ReplaceAllAndGet(t *testing.T) {
	c := NewTerritoryCache()
	c.ReplaceAll([]core.Territory{
		{ID: 1, OwnerID: "a"},
		{ID: 2, OwnerID: "b"},
	})

	if c.Len() != 2 {
		t.Fatalf("expected 2 territories, got %d", c.Len())
	}
	got, ok := c.Get(2)
	if !ok || got.OwnerID != "b" {
		t.Errorf("unexpected territory: %+v ok=%v", got, ok)
	}
	if _, ok := c.Get(99); ok {
		t.Error("expected miss for unknown ID")
	}
}

func TestTerritoryCache_ReplaceAllDropsStale(t *testing.T) {
	c := NewTerritoryCache()
	c.ReplaceAll([]core.Territory{{ID: 1, OwnerID: "a"}})
	c.ReplaceAll([]core.Territory{{ID: 2, OwnerID: "b"}})

	if _, ok := c.Get(1); ok {
		t.Error("stale territory survived ReplaceAll")
	}
}

func TestTerritoryCache_Foreign(t *testing.T) {
	c := NewTerritoryCache()
	c.ReplaceAll([]core.Territory{
		{ID: 1, OwnerID: "a"},
		{ID: 2, OwnerID: "b"},
		{ID: 3, OwnerID: "a"},
	})

	foreign := c.Foreign("a")
	if len(foreign) != 1 || foreign[0].ID != 2 {
		t.Errorf("expected only territory 2, got %+v", foreign)
	}
}

func TestTerritoryCache_AddAndReset(t *testing.T) {
	c := NewTerritoryCache()
	c.Add(core.Territory{ID: 5, OwnerID: "a"})
	if c.Len() != 1 {
		t.Fatal("add failed")
	}
	c.Reset()
	if c.Len() != 0 {
		t.Error("reset failed")
	}
}
