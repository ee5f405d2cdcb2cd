// internal/app/scenario_engine.go
package app

import (
	"context"
	"errors"
	"fitness_assistant_bot/internal/domain/scenario"
	"fmt"

	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownScenario   = errors.New("unknown scenario")
	ErrDuplicateScenario = errors.New("scenario registered twice")
)

// ScenarioEngine routes an inbound message to the user's in-progress scenario
// and persists or clears its context according to the step result.
type ScenarioEngine struct {
	store    scenario.Store
	handlers map[scenario.Kind]scenario.Handler
	logger   *logrus.Entry
}

// NewScenarioEngine resolves the kind-to-handler table once.
func NewScenarioEngine(store scenario.Store, logger *logrus.Entry, handlers ...scenario.Handler) (*ScenarioEngine, error) {
	table := make(map[scenario.Kind]scenario.Handler, len(handlers))
	for _, h := range handlers {
		if _, ok := table[h.Kind()]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScenario, h.Kind())
		}
		table[h.Kind()] = h
	}
	return &ScenarioEngine{
		store:    store,
		handlers: table,
		logger:   logger.WithField("component", "scenario_engine"),
	}, nil
}

// Dispatch feeds in to the user's active scenario. handled is false when the
// user is idle, in which case the caller treats the message as a command.
func (e *ScenarioEngine) Dispatch(ctx context.Context, in scenario.Input) (handled bool, res scenario.Result, err error) {
	sc, err := e.store.Get(ctx, in.UserID)
	if err != nil {
		return false, scenario.Result{}, fmt.Errorf("failed to load scenario context for user %d: %w", in.UserID, err)
	}
	if sc == nil {
		return false, scenario.Result{}, nil
	}
	res, err = e.step(ctx, in, sc)
	return true, res, err
}

// Begin starts kind for the user, replacing any scenario in progress, and
// runs its first step with in.
func (e *ScenarioEngine) Begin(ctx context.Context, kind scenario.Kind, in scenario.Input) (scenario.Result, error) {
	if _, ok := e.handlers[kind]; !ok {
		return scenario.Result{}, fmt.Errorf("%w: %s", ErrUnknownScenario, kind)
	}
	e.logger.WithFields(logrus.Fields{"user_id": in.UserID, "scenario": kind}).Info("Scenario started")
	return e.step(ctx, in, scenario.New(in.UserID, kind))
}

// Cancel clears the user's context. It reports whether one existed.
func (e *ScenarioEngine) Cancel(ctx context.Context, userID int64) (bool, error) {
	sc, err := e.store.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load scenario context for user %d: %w", userID, err)
	}
	if sc == nil {
		return false, nil
	}
	if err := e.store.Clear(ctx, userID); err != nil {
		return false, fmt.Errorf("failed to clear scenario context for user %d: %w", userID, err)
	}
	e.logger.WithFields(logrus.Fields{"user_id": userID, "scenario": sc.Scenario}).Info("Scenario cancelled")
	return true, nil
}

func (e *ScenarioEngine) step(ctx context.Context, in scenario.Input, sc *scenario.Context) (scenario.Result, error) {
	logCtx := e.logger.WithFields(logrus.Fields{"user_id": in.UserID, "scenario": sc.Scenario, "step": sc.Step})

	h, ok := e.handlers[sc.Scenario]
	if !ok {
		if err := e.store.Clear(ctx, in.UserID); err != nil {
			logCtx.WithError(err).Error("Failed to clear context of unknown scenario")
		}
		return scenario.Result{}, fmt.Errorf("%w: %s", ErrUnknownScenario, sc.Scenario)
	}

	res := h.Step(ctx, in, sc)
	logCtx.WithField("result", res.Status.String()).Debug("Scenario step executed")

	switch res.Status {
	case scenario.StatusInProgress:
		if err := e.store.Set(ctx, sc); err != nil {
			return res, fmt.Errorf("failed to save scenario context for user %d: %w", in.UserID, err)
		}
		return res, nil
	case scenario.StatusCompleted:
		if err := e.store.Clear(ctx, in.UserID); err != nil {
			return res, fmt.Errorf("failed to clear scenario context for user %d: %w", in.UserID, err)
		}
		logCtx.Info("Scenario completed")
		if res.Next != "" {
			if _, err := e.Begin(ctx, res.Next, scenario.Input{UserID: in.UserID, ChatID: in.ChatID}); err != nil {
				return res, err
			}
		}
		return res, nil
	default:
		if err := e.store.Clear(ctx, in.UserID); err != nil {
			return res, fmt.Errorf("failed to clear scenario context for user %d: %w", in.UserID, err)
		}
		logCtx.Warn("Scenario failed")
		return res, nil
	}
}
