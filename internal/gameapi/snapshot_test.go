package gameapi_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/blentz/artifactsmmo-sub007/internal/gameapi"
)

func TestCharacterSnapshotInventory(t *testing.T) {
	snap := gameapi.CharacterSnapshot{
		Inventory: []gameapi.InventoryItem{
			{Code: "copper_ore", Quantity: 12},
			{Code: "feather", Quantity: 3},
		},
	}

	assert.Equal(t, 15, snap.InventoryCount())
	assert.True(t, snap.HasItem("copper_ore", 12))
	assert.False(t, snap.HasItem("copper_ore", 13))
	assert.False(t, snap.HasItem("iron_ore", 1))
	assert.True(t, snap.HasItem("feather", 0))
}

func TestCharacterSnapshotCooldownRemaining(t *testing.T) {
	now := time.Unix(1700000000, 0)
	snap := gameapi.CharacterSnapshot{CooldownUntil: now.Add(3 * time.Second)}

	assert.Equal(t, 3*time.Second, snap.CooldownRemaining(now))
	assert.Equal(t, time.Duration(0), snap.CooldownRemaining(now.Add(3*time.Second)))
	assert.Equal(t, time.Duration(0), snap.CooldownRemaining(now.Add(time.Minute)))
}
