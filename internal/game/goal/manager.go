package goal

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/blentz/artifactsmmo-sub007/internal/game/action"
	"github.com/blentz/artifactsmmo-sub007/internal/game/planner"
	"github.com/blentz/artifactsmmo-sub007/internal/game/state"
)

// TemplateFunc builds a target state for a named goal template given the
// current symbolic state.
type TemplateFunc func(current state.State) state.State

// SubGoalFactory builds a Goal from a sub-goal request and its recursion
// context.
type SubGoalFactory func(req action.SubGoalRequest, ctx FactoryContext) (*Goal, error)

// Manager resolves goal expressions and sub-goal requests into Goals, and
// wraps the planner for target-state planning.
//
// A Manager is configured once at startup (templates and factories are
// never mutated after) and shared read-only across character loops.
// templateMeta carries the priority and timeout a declarative template
// file attaches to its goal; code-registered templates use defaults.
type templateMeta struct {
	priority int
	timeout  time.Duration
}

type Manager struct {
	planner      *planner.Planner
	templates    map[string]TemplateFunc
	meta         map[string]templateMeta
	subFactories map[string]SubGoalFactory
	logger       *zap.Logger
}

// NewManager constructs a Manager with the built-in templates and sub-goal
// factories registered.
//
// Precondition: p must not be nil. A nil logger falls back to zap.NewNop.
func NewManager(p *planner.Planner, logger *zap.Logger) *Manager {
	if p == nil {
		panic("goal.NewManager: planner must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		planner:      p,
		templates:    make(map[string]TemplateFunc),
		meta:         make(map[string]templateMeta),
		subFactories: make(map[string]SubGoalFactory),
		logger:       logger,
	}
	m.registerBuiltinTemplates()
	m.registerBuiltinSubFactories()
	return m
}

// RegisterTemplate associates name with a target-state builder,
// overwriting any previous registration.
func (m *Manager) RegisterTemplate(name string, fn TemplateFunc) {
	m.templates[name] = fn
}

// RegisterSubGoalFactory associates goalType with a factory, overwriting
// any previous registration.
func (m *Manager) RegisterSubGoalFactory(goalType string, fn SubGoalFactory) {
	m.subFactories[goalType] = fn
}

var (
	reachLevelRe = regexp.MustCompile(`^reach_level_(\d+)$`)
	// freeLevelRe matches free-form phrasing like "reach level 18" or
	// "level 18".
	freeLevelRe  = regexp.MustCompile(`(?:reach\s+)?level\s+(\d+)`)
	freeSkillRe  = regexp.MustCompile(`(\w+)\s+(?:level\s+)?(\d+)`)
	skillLevelRe = regexp.MustCompile(`^(\w+)_level_(\d+)$`)
)

// ResolveGoal maps a goal expression to a Goal. Resolution tries, in
// order: the template table, template-style and free-form keyword parsing
// (level and skill targets), and finally treating the expression as a
// literal boolean state key.
//
// Postcondition: returns *NoValidGoalError when nothing matches.
func (m *Manager) ResolveGoal(expr string, current state.State) (*Goal, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, &NoValidGoalError{GoalType: expr, Reason: "empty goal expression"}
	}

	if fn, ok := m.templates[expr]; ok {
		meta := templateMeta{priority: defaultGoalPriority}
		if mm, hasMeta := m.meta[expr]; hasMeta {
			meta = mm
		}
		return New(expr, fn(current), meta.priority, meta.timeout), nil
	}

	if match := reachLevelRe.FindStringSubmatch(expr); match != nil {
		level, _ := strconv.Atoi(match[1])
		return New(expr, m.levelTarget(current, level), defaultGoalPriority, 0), nil
	}
	if match := skillLevelRe.FindStringSubmatch(expr); match != nil {
		if key, ok := state.SkillLevelKey(match[1]); ok {
			level, _ := strconv.Atoi(match[2])
			return New(expr, m.skillTarget(current, key, level), defaultGoalPriority, 0), nil
		}
	}

	lowered := strings.ToLower(expr)
	if match := freeLevelRe.FindStringSubmatch(lowered); match != nil {
		level, _ := strconv.Atoi(match[1])
		return New(expr, m.levelTarget(current, level), defaultGoalPriority, 0), nil
	}
	if match := freeSkillRe.FindStringSubmatch(lowered); match != nil {
		if key, ok := state.SkillLevelKey(match[1]); ok {
			level, _ := strconv.Atoi(match[2])
			return New(expr, m.skillTarget(current, key, level), defaultGoalPriority, 0), nil
		}
	}

	if k := state.Key(lowered); state.IsKnown(k) {
		return New(expr, state.State{k: state.Bool(true)}, defaultGoalPriority, 0), nil
	}

	return nil, &NoValidGoalError{GoalType: expr, Reason: "no template, keyword, or state key matches"}
}

// levelTarget encodes a "reach level n" objective. Once the level is
// reached the target is trivially satisfied; until then it targets the
// xp_gained cycle fact, so each planning cycle advances one XP-earning
// plan and the control loop re-resolves until the level lands.
func (m *Manager) levelTarget(current state.State, targetLevel int) state.State {
	if lv, ok := current.Get(state.KeyCharacterLevel); ok {
		if n, isInt := lv.AsInt(); isInt && n >= targetLevel {
			return state.State{state.KeyCharacterLevel: state.Int(n)}
		}
	}
	return state.State{state.KeyXPGained: state.Bool(true)}
}

// skillTarget is levelTarget's analog for one skill.
func (m *Manager) skillTarget(current state.State, key state.Key, targetLevel int) state.State {
	if lv, ok := current.Get(key); ok {
		if n, isInt := lv.AsInt(); isInt && n >= targetLevel {
			return state.State{key: state.Int(n)}
		}
	}
	return state.State{state.KeySkillXPGained: state.Bool(true)}
}

// CreateGoalFromRequest builds a Goal from a sub-goal request, dispatching
// on its goal type.
//
// Postcondition: an unregistered goal type yields *NoValidGoalError, never
// a silent no-op.
func (m *Manager) CreateGoalFromRequest(req action.SubGoalRequest, ctx FactoryContext) (*Goal, error) {
	factory, ok := m.subFactories[req.GoalType]
	if !ok {
		return nil, &NoValidGoalError{GoalType: req.GoalType, Reason: "no registered sub-goal factory"}
	}
	g, err := factory(req, ctx)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("built sub-goal",
		zap.String("goal_type", req.GoalType),
		zap.String("requester", req.Requester),
		zap.Int("depth", ctx.Depth),
		zap.String("target", g.TargetState().String()),
	)
	return g, nil
}

// PlanToTargetState wraps the planner, raising *NoValidGoalError instead
// of returning the bare no-plan sentinel: at this layer an unsolvable
// target is always an error condition the executor must handle explicitly.
func (m *Manager) PlanToTargetState(current, target state.State, available []action.Action) (*planner.Plan, error) {
	plan, err := m.planner.Plan(current, target, available)
	if err != nil {
		if errors.Is(err, planner.ErrNoPlan) {
			return nil, &NoValidGoalError{
				GoalType: target.String(),
				Reason:   "no action sequence reaches the target state",
				Err:      err,
			}
		}
		return nil, err
	}
	return plan, nil
}

// registerBuiltinTemplates installs the static goal template table.
func (m *Manager) registerBuiltinTemplates() {
	m.RegisterTemplate("gain_xp", func(state.State) state.State {
		return stateOf(state.KeyXPGained, state.Bool(true))
	})
	m.RegisterTemplate("gain_skill_xp", func(state.State) state.State {
		return stateOf(state.KeySkillXPGained, state.Bool(true))
	})
	m.RegisterTemplate("gather_resources", func(state.State) state.State {
		return stateOf(state.KeyResourceGathered, state.Bool(true))
	})
	m.RegisterTemplate("craft_item", func(state.State) state.State {
		return stateOf(state.KeyItemCrafted, state.Bool(true))
	})
	m.RegisterTemplate("full_hp", func(state.State) state.State {
		return stateOf(state.KeyHPFull, state.Bool(true))
	})
	m.RegisterTemplate("empty_inventory", func(state.State) state.State {
		return stateOf(state.KeyInventoryDeposited, state.Bool(true))
	})
}

// registerBuiltinSubFactories installs the factories for the sub-goal
// types concrete actions emit.
func (m *Manager) registerBuiltinSubFactories() {
	m.RegisterSubGoalFactory(action.SubGoalMoveToLocation, func(req action.SubGoalRequest, _ FactoryContext) (*Goal, error) {
		x, okX := intParam(req.Parameters, action.ParamTargetX)
		y, okY := intParam(req.Parameters, action.ParamTargetY)
		if !okX || !okY {
			return nil, &NoValidGoalError{
				GoalType: req.GoalType,
				Reason:   fmt.Sprintf("request from %s lacks %s/%s parameters", req.Requester, action.ParamTargetX, action.ParamTargetY),
			}
		}
		target := state.State{
			state.KeyCurrentX: state.Int(x),
			state.KeyCurrentY: state.Int(y),
		}
		return New(fmt.Sprintf("move_to_location(%d,%d)", x, y), target, req.Priority, subGoalTimeout), nil
	})

	m.RegisterSubGoalFactory(action.SubGoalRestToFull, func(req action.SubGoalRequest, _ FactoryContext) (*Goal, error) {
		return New("rest_to_full", stateOf(state.KeyHPFull, state.Bool(true)), req.Priority, subGoalTimeout), nil
	})

	m.RegisterSubGoalFactory(action.SubGoalEquipWeapon, func(req action.SubGoalRequest, _ FactoryContext) (*Goal, error) {
		if code, ok := req.Parameters[action.ParamItemCode].(string); ok && code != "" {
			return New("equip_weapon("+code+")", stateOf(state.KeyWeaponSlot, state.Str(code)), req.Priority, subGoalTimeout), nil
		}
		return New("equip_weapon", stateOf(state.KeyWeaponEquipped, state.Bool(true)), req.Priority, subGoalTimeout), nil
	})

	m.RegisterSubGoalFactory(action.SubGoalDepositInventory, func(req action.SubGoalRequest, _ FactoryContext) (*Goal, error) {
		return New("deposit_inventory", stateOf(state.KeyInventorySpaceAvailable, state.Bool(true)), req.Priority, subGoalTimeout), nil
	})
}

// subGoalTimeout bounds each recursive sub-goal execution.
const subGoalTimeout = 2 * time.Minute

// defaultGoalPriority applies to goals without declared priorities.
const defaultGoalPriority = 5

func stateOf(k state.Key, v state.Value) state.State {
	return state.State{k: v}
}

// intParam reads an integer parameter, tolerating the int/float64 split
// that JSON or YAML decoding introduces.
func intParam(params map[string]any, name string) (int, bool) {
	switch v := params[name].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
