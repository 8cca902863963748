package action

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blentz/artifactsmmo-sub007/internal/game/state"
	"github.com/blentz/artifactsmmo-sub007/internal/game/world"
	"github.com/blentz/artifactsmmo-sub007/internal/gameapi"
)

// maxCooldownWait bounds the in-action wait on a cooldown rejection. Longer
// cooldowns are surfaced as failures so the control loop can schedule the
// wait instead of blocking inside an action.
const maxCooldownWait = 65 * time.Second

// apiCall issues fn, absorbing one "still on cooldown" rejection by waiting
// out the remaining time and reissuing. A second rejection is returned to
// the caller.
func apiCall(ctx context.Context, fn func(context.Context) (*gameapi.ActionOutcome, error)) (*gameapi.ActionOutcome, error) {
	out, err := fn(ctx)
	var cd *gameapi.CooldownError
	if !errors.As(err, &cd) {
		return out, err
	}
	if cd.Remaining > maxCooldownWait {
		return nil, err
	}
	select {
	case <-time.After(cd.Remaining):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return fn(ctx)
}

// moveRequest builds the standard move_to_location remedy for target.
func moveRequest(requester string, target world.Coord, priority int, reason string) SubGoalRequest {
	return SubGoalRequest{
		GoalType: SubGoalMoveToLocation,
		Parameters: map[string]any{
			ParamTargetX: target.X,
			ParamTargetY: target.Y,
		},
		Priority:  priority,
		Requester: requester,
		Reason:    reason,
	}
}

// tileFacts returns the position and location-context facts for standing on
// t at coord. A nil tile reads as plain terrain.
func tileFacts(coord world.Coord, t *world.Tile) state.State {
	contentType := world.ContentNone
	contentCode := ""
	if t != nil {
		contentType = t.ContentType
		contentCode = t.ContentCode
	}

	facts := state.State{
		state.KeyCurrentX:           state.Int(coord.X),
		state.KeyCurrentY:           state.Int(coord.Y),
		state.KeyAtBank:             state.Bool(contentType == world.ContentBank),
		state.KeyAtMonsterLocation:  state.Bool(contentType == world.ContentMonster),
		state.KeyAtResourceLocation: state.Bool(contentType == world.ContentResource),
		state.KeyAtWorkshop:         state.Bool(contentType == world.ContentWorkshop),
		state.KeyAtGrandExchange:    state.Bool(contentType == world.ContentGrandExchange),
		state.KeyAtTaskMaster:       state.Bool(contentType == world.ContentTaskMaster),
		state.KeyAtSafeLocation:     state.Bool(contentType != world.ContentMonster),
		state.KeyLocationMonster:    state.Str(""),
		state.KeyLocationResource:   state.Str(""),
		state.KeyLocationWorkshop:   state.Str(""),
	}
	switch contentType {
	case world.ContentMonster:
		facts[state.KeyLocationMonster] = state.Str(contentCode)
	case world.ContentResource:
		facts[state.KeyLocationResource] = state.Str(contentCode)
	case world.ContentWorkshop:
		facts[state.KeyLocationWorkshop] = state.Str(contentCode)
	}
	return facts
}

// vitalsChanges derives the authoritative post-action health and
// progression facts from a live snapshot.
func vitalsChanges(snap *gameapi.CharacterSnapshot) state.State {
	hpFull := snap.HP >= snap.MaxHP
	hpLow := snap.MaxHP > 0 && float64(snap.HP) < float64(snap.MaxHP)*0.3
	return state.State{
		state.KeyCharacterLevel: state.Int(snap.Level),
		state.KeyCharacterXP:    state.Int(snap.XP),
		state.KeyCharacterGold:  state.Int(snap.Gold),
		state.KeyHPCurrent:      state.Int(snap.HP),
		state.KeyHPMax:          state.Int(snap.MaxHP),
		state.KeyHPFull:         state.Bool(hpFull),
		state.KeyHPLow:          state.Bool(hpLow),
		state.KeyAlive:          state.Bool(snap.HP > 0),
	}
}

// stateInt reads an integer fact from s, or def when unknown.
func stateInt(s state.State, k state.Key, def int) int {
	if v, ok := s.Get(k); ok {
		if i, isInt := v.AsInt(); isInt {
			return i
		}
	}
	return def
}

// stateStr reads a string fact from s, or def when unknown.
func stateStr(s state.State, k state.Key, def string) string {
	if v, ok := s.Get(k); ok {
		if str, isStr := v.AsString(); isStr {
			return str
		}
	}
	return def
}

// currentCoord reads the character position from s.
func currentCoord(s state.State) world.Coord {
	return world.Coord{
		X: stateInt(s, state.KeyCurrentX, 0),
		Y: stateInt(s, state.KeyCurrentY, 0),
	}
}

func coordName(c world.Coord) string {
	return fmt.Sprintf("%d_%d", c.X, c.Y)
}
