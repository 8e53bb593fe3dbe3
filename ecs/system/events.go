package system

import (
	"github.com/google/uuid"

	"github.com/milk9111/leap/ecs"
	"github.com/milk9111/leap/ecs/component"
)

const (
	LeapForwardEvent         ecs.EventType = "leap_forward"
	LeapFinishEvent          ecs.EventType = "leap_finish"
	CollisionStartedEvent    ecs.EventType = "collision_started"
	CollisionEndedEvent      ecs.EventType = "collision_ended"
	RoundRestartCleanupEvent ecs.EventType = "round_restart_cleanup"
	DoAfterCancelledEvent    ecs.EventType = "do_after_cancelled"
)

// Collision is the payload of CollisionStartedEvent and CollisionEndedEvent.
// The event is raised once per side, on the entity owning OurFixture.
type Collision struct {
	OurFixture   string
	OurHandle    component.FixtureHandle
	OtherEntity  ecs.Entity
	OtherFixture string
}

// ActionPerformed is attached to events raised by PerformAction. ActionID
// identifies the action instance independently of its entity handle.
type ActionPerformed struct {
	Action    ecs.Entity
	ActionID  uuid.UUID
	Performer ecs.Entity
}
