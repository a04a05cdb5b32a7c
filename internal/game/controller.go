// Package game drives a playthrough: round progression, candidate pools,
// reflections and the dashboards shown between and after rounds.
package game

import (
	"errors"
	"fmt"

	"github.com/jonathan/hiring-bias-game/internal/types"
)

// State is a screen of the game.
type State string

// Game states.
const (
	StateCandidateSelection State = "CANDIDATE_SELECTION"
	StateReflection         State = "REFLECTION"
	StateDashboard          State = "DASHBOARD"
	StateFinalDashboard     State = "FINAL_DASHBOARD"
)

// ErrInvalidTransition is returned when an action is not allowed in the current state.
var ErrInvalidTransition = errors.New("invalid game state transition")

// Controller is the round state machine:
//
//	CANDIDATE_SELECTION -> REFLECTION -> CANDIDATE_SELECTION (next round)
//	                                  -> FINAL_DASHBOARD (after the last round)
//	CANDIDATE_SELECTION <-> DASHBOARD
//
// It holds no storage and is not safe for concurrent use.
type Controller struct {
	state     State
	round     int
	maxRounds int
	selected  *types.Candidate
}

// NewController starts a game at round 1.
func NewController(maxRounds int) *Controller {
	if maxRounds < 1 {
		maxRounds = types.DefaultMaxRounds
	}
	return &Controller{state: StateCandidateSelection, round: 1, maxRounds: maxRounds}
}

// RestoreController resumes a stored session. Completed sessions land on the final dashboard.
func RestoreController(session *types.GameSession) *Controller {
	c := NewController(session.MaxRounds)
	c.round = max(session.CurrentRound, 1)
	if session.CompletedAt != nil {
		c.state = StateFinalDashboard
	}
	return c
}

func (c *Controller) State() State   { return c.state }
func (c *Controller) Round() int     { return c.round }
func (c *Controller) MaxRounds() int { return c.maxRounds }

// Selected returns the candidate awaiting reflection, or nil.
func (c *Controller) Selected() *types.Candidate {
	return c.selected
}

// Select picks a candidate and moves to reflection.
func (c *Controller) Select(candidate types.Candidate) error {
	if err := c.expect(StateCandidateSelection, "select"); err != nil {
		return err
	}
	c.selected = &candidate
	c.state = StateReflection
	return nil
}

// Reflect closes the current round. It reports whether that was the final round;
// otherwise the controller advances to the next round's candidate selection.
func (c *Controller) Reflect() (final bool, err error) {
	if err := c.expect(StateReflection, "reflect"); err != nil {
		return false, err
	}
	c.selected = nil
	if c.round >= c.maxRounds {
		c.state = StateFinalDashboard
		return true, nil
	}
	c.round++
	c.state = StateCandidateSelection
	return false, nil
}

// ShowDashboard opens the interim dashboard between rounds.
func (c *Controller) ShowDashboard() error {
	if err := c.expect(StateCandidateSelection, "show dashboard"); err != nil {
		return err
	}
	c.state = StateDashboard
	return nil
}

// Continue leaves the interim dashboard for the current round's selection.
func (c *Controller) Continue() error {
	if err := c.expect(StateDashboard, "continue"); err != nil {
		return err
	}
	c.state = StateCandidateSelection
	return nil
}

// Reset starts over at round 1.
func (c *Controller) Reset() {
	c.state = StateCandidateSelection
	c.round = 1
	c.selected = nil
}

func (c *Controller) expect(want State, action string) error {
	if c.state != want {
		return fmt.Errorf("%w: cannot %s in %s", ErrInvalidTransition, action, c.state)
	}
	return nil
}
