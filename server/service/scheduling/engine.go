package scheduling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/initio-ai/initio/server/service/scheduling/metrics"
	"github.com/initio-ai/initio/store"
)

const defaultTimeout = 30 * time.Second

// EngineConfig carries the engine's policy knobs; zero values fall back
// to the long-standing defaults.
type EngineConfig struct {
	Policy                 FeasibilityPolicy
	SessionDurationMinutes int
	Timeout                time.Duration
	Metrics                *metrics.Metrics
}

// Engine drives the scheduling dialog: it reads the user's session,
// applies the state machine, runs the stage's side effects and writes
// the session back with the new state's TTL. Signals for the same user
// are serialized on a per-user lock so two concurrent updates cannot
// race on one session record.
type Engine struct {
	store    CalendarStore
	sessions SessionStore
	planner  Planner
	metrics  *metrics.Metrics

	policy                 FeasibilityPolicy
	sessionDurationMinutes int
	timeout                time.Duration
	now                    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEngine(st CalendarStore, sessions SessionStore, planner Planner, cfg EngineConfig) *Engine {
	if cfg.Policy.AssumedHoursPerDay <= 0 {
		cfg.Policy.AssumedHoursPerDay = DefaultFeasibilityPolicy.AssumedHoursPerDay
	}
	if cfg.Policy.BufferDays <= 0 {
		cfg.Policy.BufferDays = DefaultFeasibilityPolicy.BufferDays
	}
	if cfg.SessionDurationMinutes <= 0 {
		cfg.SessionDurationMinutes = 120
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Engine{
		store:                  st,
		sessions:               sessions,
		planner:                planner,
		metrics:                cfg.Metrics,
		policy:                 cfg.Policy,
		sessionDurationMinutes: cfg.SessionDurationMinutes,
		timeout:                cfg.Timeout,
		now:                    time.Now,
	}
}

// userLock returns the mutex serializing signals for one user.
func (e *Engine) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.locks == nil {
		e.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := e.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[userID] = lock
	}
	return lock
}

func (e *Engine) today() time.Time {
	now := e.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// loadSession reads the user's session, treating a missing or expired
// record as idle with empty context.
func (e *Engine) loadSession(ctx context.Context, userID string) (*Session, error) {
	session, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: session get: %v", ErrExternalService, err)
	}
	if session == nil || session.Expired(e.now()) {
		return &Session{UserID: userID, State: StateIdle}, nil
	}
	return session, nil
}

func (e *Engine) saveSession(ctx context.Context, session *Session) error {
	session.ExpiresAt = e.now().Add(session.State.ContextTTL())
	if err := e.sessions.Put(ctx, session); err != nil {
		return fmt.Errorf("%w: session put: %v", ErrExternalService, err)
	}
	return nil
}

// ProcessText handles free-text input. The only stage consuming text is
// the deadline request; everywhere else the text is an unrecognized
// signal and yields a clarification.
func (e *Engine) ProcessText(ctx context.Context, userID, text string) (*Reply, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, err := e.loadSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.State != StateDeadlineRequest {
		return e.clarify(session), nil
	}

	deadline, err := ParseDeadline(text, e.now())
	if err != nil {
		return &Reply{Text: "I could not read that as a date. Try \"2025-11-10\" or \"in 2 weeks\"."}, nil
	}
	if deadline.Before(e.today()) {
		return &Reply{Text: fmt.Sprintf("%s is already in the past. Please send a future date.", deadline.Format(dateLayout))}, nil
	}
	return e.process(ctx, session, DeadlineProvided{Deadline: deadline})
}

// Process handles one typed signal for the user, serialized per user.
func (e *Engine) Process(ctx context.Context, userID string, sig Signal) (*Reply, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, err := e.loadSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	return e.process(ctx, session, sig)
}

func (e *Engine) process(ctx context.Context, session *Session, sig Signal) (*Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	from := session.State
	next, ok := Transition(session.State, sig, &session.Context)
	if !ok {
		// Toggles mutate context without transitioning; persist them.
		// A toggle outside its own stage is a stale button press and
		// gets a clarification like any other unrecognized signal.
		switch sig.(type) {
		case TimePrefToggle:
			if session.State != StateScheduleTimePref {
				break
			}
			if err := e.saveSession(ctx, session); err != nil {
				return nil, err
			}
			return &Reply{
				Text:    "When do you prefer to work on this?",
				Buttons: timePrefButtons(session.Context.GoalID, session.Context.TimePrefs),
			}, nil
		case DayPrefToggle:
			if session.State != StateScheduleDaysPref {
				break
			}
			if err := e.saveSession(ctx, session); err != nil {
				return nil, err
			}
			return &Reply{
				Text:    "Which days suit you?",
				Buttons: dayPrefButtons(session.Context.GoalID, session.Context.DayPrefs),
			}, nil
		}
		return e.clarify(session), nil
	}

	reply, err := e.enterState(ctx, session, next, sig)
	if err != nil {
		return nil, err
	}
	e.metrics.Transition(string(from), string(session.State))
	return reply, nil
}

// enterState runs the destination state's side effects and persists the
// session. The session's final state may differ from next when a side
// effect fails (planner timeout keeps the dialog at day selection).
func (e *Engine) enterState(ctx context.Context, session *Session, next DialogState, sig Signal) (*Reply, error) {
	switch next {
	case StateDeadlineRequest:
		goal, err := e.store.GetGoal(ctx, &store.FindGoal{ID: &session.Context.GoalID, UserID: &session.UserID})
		if err != nil {
			return nil, fmt.Errorf("%w: get goal: %v", ErrExternalService, err)
		}
		if goal == nil {
			return e.resetNotFound(ctx, session)
		}
		session.State = next
		if err := e.saveSession(ctx, session); err != nil {
			return nil, err
		}
		return &Reply{Text: fmt.Sprintf("Goal %q created. When do you want it done? Send a date like 2025-11-10 or \"in 2 weeks\".", goal.Title)}, nil

	case StateScheduleOffer:
		session.State = next
		if err := e.saveSession(ctx, session); err != nil {
			return nil, err
		}
		goalID := session.Context.GoalID
		return &Reply{
			Text: fmt.Sprintf("Deadline set to %s. Want me to build a work schedule?", session.Context.Deadline.Format(dateLayout)),
			Buttons: []Button{
				{Text: "Yes, schedule it", CallbackData: mustEncode(ScheduleAccept{GoalID: goalID})},
				{Text: "No, thanks", CallbackData: mustEncode(ScheduleDecline{GoalID: goalID})},
			},
		}, nil

	case StateScheduleTimePref:
		session.State = next
		if err := e.saveSession(ctx, session); err != nil {
			return nil, err
		}
		return &Reply{
			Text:    "When do you prefer to work on this?",
			Buttons: timePrefButtons(session.Context.GoalID, session.Context.TimePrefs),
		}, nil

	case StateScheduleDaysPref:
		session.State = next
		if err := e.saveSession(ctx, session); err != nil {
			return nil, err
		}
		return &Reply{
			Text:    "Which days suit you?",
			Buttons: dayPrefButtons(session.Context.GoalID, session.Context.DayPrefs),
		}, nil

	case StateScheduleConfirm:
		return e.draftSchedule(ctx, session)

	case StateIdle:
		if _, confirmed := sig.(ScheduleConfirm); confirmed {
			return e.confirmSchedule(ctx, session)
		}
		// Decline or cancel: context was already cleared by the machine.
		session.State = StateIdle
		if err := e.saveSession(ctx, session); err != nil {
			return nil, err
		}
		return &Reply{Text: "Okay, no schedule. You can always ask me later."}, nil
	}
	return e.clarify(session), nil
}

// draftSchedule runs the analyzer, feasibility checker and planner to
// produce a plan for confirmation. On planner failure or timeout the
// dialog stays at day selection with no plan stored.
func (e *Engine) draftSchedule(ctx context.Context, session *Session) (*Reply, error) {
	sctx := &session.Context
	goal, err := e.store.GetGoal(ctx, &store.FindGoal{ID: &sctx.GoalID, UserID: &session.UserID})
	if err != nil {
		return nil, fmt.Errorf("%w: get goal: %v", ErrExternalService, err)
	}
	if goal == nil {
		return e.resetNotFound(ctx, session)
	}

	prefs := Preferences{TimeBuckets: sctx.TimePrefs, Days: sctx.DayPrefs}
	start := e.today()
	startDate := start.Format(dateLayout)
	endDate := sctx.Deadline.Format(dateLayout)

	// The slot scan and the busy-event fetch are independent reads.
	var slots []Slot
	var events []*store.Event
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var slotsErr error
		slots, slotsErr = e.FindFreeSlots(groupCtx, session.UserID, start, sctx.Deadline, prefs, e.sessionDurationMinutes)
		return slotsErr
	})
	group.Go(func() error {
		var eventsErr error
		events, eventsErr = e.store.ListEvents(groupCtx, &store.FindEvent{UserID: &session.UserID, StartDate: &startDate, EndDate: &endDate})
		return eventsErr
	})
	if err := group.Wait(); err != nil {
		return e.stayAtDaysPref(ctx, session, "I could not read your calendar. Try again in a moment.")
	}
	sctx.Slots = slots

	feasibility, err := e.CheckFeasibility(ctx, sctx.GoalID, session.UserID, sctx.Deadline, prefs)
	if err != nil {
		return e.stayAtDaysPref(ctx, session, "I could not check your availability. Try again in a moment.")
	}
	sctx.Feasibility = feasibility

	plannerStart := e.now()
	plan, rejection, err := e.planner.Plan(ctx, &PlanRequest{
		Goal:      goal,
		Deadline:  sctx.Deadline,
		StartDate: start,
		Prefs:     prefs,
		Events:    events,
		Slots:     slots,
	})
	e.metrics.PlannerCall(e.now().Sub(plannerStart), err)
	if err != nil {
		slog.Warn("planner failed", "goalID", sctx.GoalID, "error", err)
		return e.stayAtDaysPref(ctx, session, "I could not build a schedule right now. Try \"done\" again in a moment.")
	}
	if rejection != nil {
		return e.stayAtDaysPref(ctx, session, fmt.Sprintf("I could not fit the steps before the deadline: %s. Pick different days or extend the deadline.", rejection.Reason))
	}

	// Drop entries whose step id is not part of the goal.
	known := make(map[int32]string, len(goal.Steps))
	for _, step := range goal.Steps {
		known[step.ID] = step.Title
	}
	valid := plan[:0]
	for _, entry := range plan {
		if _, ok := known[entry.StepID]; ok {
			valid = append(valid, entry)
		} else {
			slog.Warn("planner returned foreign step id", "goalID", sctx.GoalID, "stepID", entry.StepID)
		}
	}
	if len(valid) == 0 {
		return e.stayAtDaysPref(ctx, session, "I could not build a usable schedule. Try again in a moment.")
	}
	sctx.Plan = valid

	session.State = StateScheduleConfirm
	if err := e.saveSession(ctx, session); err != nil {
		return nil, err
	}

	text := previewText(goal.Title, valid, known)
	if !feasibility.Feasible {
		text = fmt.Sprintf(
			"Heads up: you need %.1fh but only %.1fh are free before %s. A deadline around %s would be more realistic.\n\n%s",
			feasibility.RequiredHours,
			feasibility.AvailableHours,
			sctx.Deadline.Format(dateLayout),
			feasibility.SuggestedDeadline.Format(dateLayout),
			text,
		)
	}
	return &Reply{
		Text: text,
		Buttons: []Button{
			{Text: "Add to calendar", CallbackData: mustEncode(ScheduleConfirm{GoalID: sctx.GoalID})},
			{Text: "Cancel", CallbackData: mustEncode(ScheduleCancel{GoalID: sctx.GoalID})},
		},
	}, nil
}

// confirmSchedule commits the drafted plan. The session leaves the
// confirm state before the commit runs so a second confirm press can
// not trigger a second commit.
func (e *Engine) confirmSchedule(ctx context.Context, session *Session) (*Reply, error) {
	goalID := session.Context.GoalID
	deadline := session.Context.Deadline
	plan := session.Context.Plan
	if len(plan) == 0 {
		return e.resetNotFound(ctx, session)
	}

	session.State = StateIdle
	session.Context = SessionContext{}
	if err := e.saveSession(ctx, session); err != nil {
		return nil, err
	}

	result, err := e.Commit(ctx, goalID, session.UserID, deadline, plan, true)
	if err != nil {
		e.metrics.Commit("error", 0)
		if errors.Is(err, ErrNotFound) {
			return &Reply{Text: "That goal no longer exists."}, nil
		}
		return &Reply{Text: "Something went wrong while saving the schedule. Please try again."}, nil
	}
	if len(result.Errors) > 0 {
		e.metrics.Commit("partial", len(result.CreatedEvents))
		return &Reply{Text: fmt.Sprintf("Added %d events to your calendar; %d steps could not be scheduled.", len(result.CreatedEvents), len(result.Errors))}, nil
	}
	e.metrics.Commit("ok", len(result.CreatedEvents))
	return &Reply{Text: fmt.Sprintf("Done. %d events are on your calendar.", len(result.CreatedEvents))}, nil
}

// stayAtDaysPref keeps the dialog at day selection after a failed draft
// attempt. No plan is stored.
func (e *Engine) stayAtDaysPref(ctx context.Context, session *Session, text string) (*Reply, error) {
	session.Context.Slots = nil
	session.Context.Plan = nil
	session.State = StateScheduleDaysPref
	if err := e.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return &Reply{
		Text:    text,
		Buttons: dayPrefButtons(session.Context.GoalID, session.Context.DayPrefs),
	}, nil
}

// resetNotFound handles a vanished goal or plan: user-visible message,
// dialog back to idle.
func (e *Engine) resetNotFound(ctx context.Context, session *Session) (*Reply, error) {
	session.State = StateIdle
	session.Context = SessionContext{}
	if err := e.saveSession(ctx, session); err != nil {
		return nil, err
	}
	return &Reply{Text: "I lost track of that goal. Please start over."}, nil
}

// clarify answers an unrecognized signal without changing state.
func (e *Engine) clarify(session *Session) *Reply {
	switch session.State {
	case StateDeadlineRequest:
		return &Reply{Text: "Please send a deadline, like 2025-11-10 or \"in 2 weeks\"."}
	case StateScheduleOffer:
		return &Reply{Text: "Please use the buttons: schedule it or not?"}
	case StateScheduleTimePref:
		return &Reply{Text: "Pick at least one time of day, then press Done."}
	case StateScheduleDaysPref:
		return &Reply{Text: "Pick the days that suit you, or press the all-days button."}
	case StateScheduleConfirm:
		return &Reply{Text: "Please confirm or cancel the schedule with the buttons."}
	default:
		return &Reply{Text: "Nothing to schedule right now."}
	}
}
