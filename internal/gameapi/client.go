// Package gameapi declares the external game-API collaborators the planning
// core consumes: the per-action remote client, the live character fetch, and
// the typed errors actions translate into planning-level failures.
//
// The concrete HTTP transport, rate limiter, and endpoint bindings live
// outside this repository's core; tests use scripted fakes from
// internal/testutil.
package gameapi

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ActionOutcome is the common shape every remote game action returns.
//
// Cooldown is the server-enforced delay before the character's next action;
// Character is the authoritative post-action snapshot.
type ActionOutcome struct {
	Cooldown  time.Duration
	Character *CharacterSnapshot
	// XPGained and GoldGained are informational; authoritative values come
	// from the Character snapshot.
	XPGained   int
	GoldGained int
	// Drops lists item codes obtained by a fight or gather, if any.
	Drops []ItemDrop
}

// ItemDrop is one item stack obtained from a fight or gather.
type ItemDrop struct {
	Code     string
	Quantity int
}

// Client is the remote game API surface the concrete actions call.
//
// Every method blocks for at most the transport's configured timeout and
// returns either an outcome or a typed error from errors.go. Methods must
// not be called concurrently for the same character; the server enforces
// one action in flight per character via cooldowns.
type Client interface {
	Move(ctx context.Context, character string, x, y int) (*ActionOutcome, error)
	Fight(ctx context.Context, character string) (*ActionOutcome, error)
	Gather(ctx context.Context, character string) (*ActionOutcome, error)
	Craft(ctx context.Context, character, itemCode string, quantity int) (*ActionOutcome, error)
	Rest(ctx context.Context, character string) (*ActionOutcome, error)
	Equip(ctx context.Context, character, itemCode, slot string) (*ActionOutcome, error)
	Unequip(ctx context.Context, character, slot string) (*ActionOutcome, error)
	DepositItem(ctx context.Context, character, itemCode string, quantity int) (*ActionOutcome, error)
	WithdrawItem(ctx context.Context, character, itemCode string, quantity int) (*ActionOutcome, error)
}

// CharacterFetcher retrieves the live character snapshot by name.
//
// The planning loop refreshes through this between recursion levels so a
// sub-plan never executes against a stale pre-failure snapshot.
type CharacterFetcher interface {
	FetchCharacter(ctx context.Context, name string) (*CharacterSnapshot, error)
}

// Sentinel errors for ordinary game-level failures. Concrete actions catch
// these and convert them to ActionResult failures; they never escape an
// action's Execute as raw errors.
var (
	// ErrInventoryFull means the character cannot carry more items.
	ErrInventoryFull = errors.New("gameapi: inventory full")
	// ErrNotFound means the requested entity (monster, resource, workshop)
	// is not at the character's location.
	ErrNotFound = errors.New("gameapi: entity not found at location")
	// ErrInsufficientSkill means a gather or craft requires a higher skill level.
	ErrInsufficientSkill = errors.New("gameapi: insufficient skill level")
	// ErrMissingItem means a craft or equip names an item the character lacks.
	ErrMissingItem = errors.New("gameapi: missing required item")
	// ErrCharacterDead means the character has 0 HP and must rest first.
	ErrCharacterDead = errors.New("gameapi: character is dead")
	// ErrMaintenance means the game server is down for maintenance.
	ErrMaintenance = errors.New("gameapi: server in maintenance")
)

// CooldownError reports that the character is still on cooldown, carrying
// the remaining wait so callers can sleep precisely rather than poll.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("gameapi: on cooldown for %s", e.Remaining)
}

// CombatLossError reports a lost fight. The character survives at low HP
// but gains nothing; callers typically rest or re-equip before retrying.
type CombatLossError struct {
	Monster string
}

func (e *CombatLossError) Error() string {
	return fmt.Sprintf("gameapi: lost fight against %q", e.Monster)
}
