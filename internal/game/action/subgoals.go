package action

// Sub-goal types the concrete actions emit. The goal manager registers a
// factory for each; an unregistered type in a request is a NoValidGoalError
// at resolution time.
const (
	SubGoalMoveToLocation   = "move_to_location"
	SubGoalRestToFull       = "rest_to_full"
	SubGoalEquipWeapon      = "equip_weapon"
	SubGoalDepositInventory = "deposit_inventory"
)

// Parameter names used in SubGoalRequest.Parameters.
const (
	ParamTargetX  = "target_x"
	ParamTargetY  = "target_y"
	ParamItemCode = "item_code"
)
