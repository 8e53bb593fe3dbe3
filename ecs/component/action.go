package component

import "github.com/google/uuid"

// Action is an instance of an action prototype bound to an owner entity.
type Action struct {
	ID          uuid.UUID
	Prototype   string
	Name        string
	Description string
	EventType   string
	UseDelay    float64
	Cooldown    float64
	Owner       uint64
}

var ActionComponent = NewComponent[Action]()

// ActionContainer lists the action entities granted to an owner.
type ActionContainer struct {
	Actions []uint64
}

var ActionContainerComponent = NewComponent[ActionContainer]()
