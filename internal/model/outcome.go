package model

import "errors"

// Transition names the state change a game went through
type Transition string

const (
	TransitionNone         Transition = "none"
	TransitionCreated      Transition = "created"
	TransitionLocked       Transition = "locked"
	TransitionCancelled    Transition = "cancelled"
	TransitionJoined       Transition = "joined"
	TransitionJoinRejected Transition = "join_rejected"
	TransitionFinished     Transition = "finished"
	TransitionSanctioned   Transition = "sanctioned"
	TransitionLifted       Transition = "lifted"
)

// EffectPolicy decides what a failed side effect does to its transition
type EffectPolicy string

const (
	// PolicyRequired aborts the transition when the step fails
	PolicyRequired EffectPolicy = "required"
	// PolicyBestEffort records the failure and lets the transition commit
	PolicyBestEffort EffectPolicy = "best_effort"
)

// EffectResult is the result of one side-effecting step
type EffectResult struct {
	Step   string
	Policy EffectPolicy
	Err    error
}

// Outcome reports a transition and every side effect it attempted
type Outcome struct {
	Transition Transition
	GameCode   GameCode
	Rejection  error // Why a join was refused, nil otherwise
	Effects    []EffectResult
}

// NewOutcome creates an outcome for the given game
func NewOutcome(code GameCode) *Outcome {
	return &Outcome{Transition: TransitionNone, GameCode: code}
}

// Record appends a step result and returns its error
func (o *Outcome) Record(step string, policy EffectPolicy, err error) error {
	o.Effects = append(o.Effects, EffectResult{Step: step, Policy: policy, Err: err})
	return err
}

// Failed returns the steps that returned an error
func (o *Outcome) Failed() []EffectResult {
	var failed []EffectResult
	for _, e := range o.Effects {
		if e.Err != nil {
			failed = append(failed, e)
		}
	}
	return failed
}

// Err joins the errors of all failed steps
func (o *Outcome) Err() error {
	var errs []error
	for _, e := range o.Failed() {
		errs = append(errs, e.Err)
	}
	return errors.Join(errs...)
}

// Step returns the result recorded for a step, if any
func (o *Outcome) Step(step string) (EffectResult, bool) {
	for _, e := range o.Effects {
		if e.Step == step {
			return e, true
		}
	}
	return EffectResult{}, false
}
