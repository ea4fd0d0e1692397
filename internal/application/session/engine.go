// Package session runs the guardian event loop and drives conversation turns.
//
// Engine.Apply is called once per user action with the explicit session State.
// Every call first runs a time budget cycle, then handles the event, then flushes
// the device record if anything changed. The caller re-renders from the State
// and the returned Outcome.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/kidchat/internal/application/budget"
	"github.com/doeshing/kidchat/internal/application/credential"
	"github.com/doeshing/kidchat/internal/application/reveal"
	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/ports"
)

// State is everything one run knows about its device.
type State struct {
	Record     domain.DeviceRecord
	Transcript domain.Transcript
}

// Outcome reports the result of one event.
//
// Accepted=false with Err set is a rejection and nothing but the budget cycle
// touched the state. Accepted=true with Err set is a failure the turn absorbed,
// such as an upstream error turned into an assistant message.
type Outcome struct {
	Event        string
	Accepted     bool
	Message      string
	Err          error
	Warnings     []string
	Usage        domain.Usage
	MessageIndex int
}

// Engine wires the core components together.
type Engine struct {
	Credentials *credential.Manager
	Reveals     *reveal.Authorizer
	Filter      ports.ContentFilter
	Generator   ports.Generator
	Store       ports.SettingsStore
	Activity    ports.ActivityLog
	Logger      ports.Logger
	Now         func() time.Time
}

// Open loads the device record into a new State. The returned State is always
// usable; on a load failure it holds a default record and the error wraps
// domain.ErrPersistenceFailure.
func (e *Engine) Open(ctx context.Context, deviceID string) (*State, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	rec, err := e.Store.Load(ctx, deviceID)
	if err != nil {
		e.Logger.Warn("device record load failed, using defaults", map[string]interface{}{
			"device": deviceID,
			"error":  err.Error(),
		})
		if rec.DeviceID == "" {
			rec = domain.NewDeviceRecord(deviceID, e.now())
		}
		return &State{Record: rec}, wrapPersistence(err)
	}
	rec.DeviceID = deviceID
	return &State{Record: rec}, nil
}

// Apply handles one event against st.
func (e *Engine) Apply(ctx context.Context, st *State, ev Event) Outcome {
	out := Outcome{Event: ev.eventName(), MessageIndex: -1}
	if err := e.validate(); err != nil {
		out.Err = err
		return out
	}

	now := e.now()
	eval := budget.Evaluate(&st.Record, now)
	switch eval.Transition {
	case budget.LimitReached:
		e.record(st, domain.ActivityLimitReached, fmt.Sprintf("%.0f seconds used", eval.Usage.UsedSeconds))
	case budget.LimitCleared:
		e.record(st, domain.ActivityLimitCleared, "")
	}
	if eval.Changed {
		e.flush(ctx, st, &out)
	}
	out.Usage = eval.Usage

	var (
		changed bool
		err     error
	)
	switch ev := ev.(type) {
	case SetPassword:
		changed, err = e.setPassword(st, ev, &out)
	case ChangePassword:
		changed, err = e.changePassword(st, ev, &out)
	case UnlockSettings:
		changed, err = e.unlock(st, ev, &out)
	case LockSettings:
		changed, err = e.lock(st, &out)
	case SetBannedTerms:
		changed, err = e.setBannedTerms(st, ev, &out)
	case SetTimeLimit:
		changed, err = e.setTimeLimit(st, ev, now, &out)
	case ResetTimer:
		changed, err = e.resetTimer(st, now, &out)
	case SendPrompt:
		changed, err = e.sendPrompt(ctx, st, ev, eval.Usage, &out)
	case Reveal:
		changed, err = e.reveal(st, ev, &out)
	case Status:
		out.Message = describeUsage(eval.Usage)
	default:
		err = fmt.Errorf("%w: unsupported event %T", domain.ErrInvalidState, ev)
	}

	if err != nil && !errors.Is(err, domain.ErrUpstreamFailure) {
		out.Accepted = false
		out.Err = err
		out.Message = err.Error()
		e.Logger.Debug("event rejected", map[string]interface{}{"event": out.Event, "error": err.Error()})
		return out
	}
	out.Accepted = true
	out.Err = err
	if changed {
		e.flush(ctx, st, &out)
	}
	out.Usage = budget.LiveUsage(&st.Record, e.now())
	return out
}

func (e *Engine) setPassword(st *State, ev SetPassword, out *Outcome) (bool, error) {
	if err := e.Credentials.SetInitial(&st.Record, ev.Password); err != nil {
		return false, err
	}
	e.record(st, domain.ActivityCredentialSet, "")
	out.Message = "Password set successfully!"
	return true, nil
}

func (e *Engine) changePassword(st *State, ev ChangePassword, out *Outcome) (bool, error) {
	if err := e.Credentials.Change(&st.Record, ev.Current, ev.New); err != nil {
		return false, err
	}
	e.record(st, domain.ActivityCredentialChanged, "")
	out.Message = "Password updated successfully!"
	return true, nil
}

func (e *Engine) unlock(st *State, ev UnlockSettings, out *Outcome) (bool, error) {
	if err := e.Credentials.Unlock(&st.Record, ev.Password); err != nil {
		return false, err
	}
	e.record(st, domain.ActivitySettingsUnlocked, "")
	out.Message = "Settings unlocked for editing."
	return true, nil
}

func (e *Engine) lock(st *State, out *Outcome) (bool, error) {
	if err := e.Credentials.Lock(&st.Record); err != nil {
		return false, err
	}
	e.record(st, domain.ActivitySettingsLocked, "")
	out.Message = "Settings saved and locked."
	return true, nil
}

func (e *Engine) setBannedTerms(st *State, ev SetBannedTerms, out *Outcome) (bool, error) {
	if err := st.Record.SetBannedTerms(ev.Raw); err != nil {
		return false, err
	}
	terms := e.Filter.Normalize(ev.Raw)
	e.record(st, domain.ActivityKeywordsUpdated, fmt.Sprintf("%d terms", len(terms)))
	out.Message = fmt.Sprintf("Banned keywords updated (%d terms).", len(terms))
	return true, nil
}

func (e *Engine) setTimeLimit(st *State, ev SetTimeLimit, now time.Time, out *Outcome) (bool, error) {
	if !st.Record.SettingsEditable() {
		return false, fmt.Errorf("%w: settings are locked", domain.ErrInvalidState)
	}
	if err := budget.SetLimit(&st.Record, ev.Active, ev.Minutes, now); err != nil {
		return false, err
	}
	e.record(st, domain.ActivityLimitUpdated, fmt.Sprintf("active=%t minutes=%d", ev.Active, ev.Minutes))
	if ev.Active {
		out.Message = fmt.Sprintf("Daily time limit set to %d minutes.", ev.Minutes)
	} else {
		out.Message = "Daily time limit turned off."
	}
	return true, nil
}

func (e *Engine) resetTimer(st *State, now time.Time, out *Outcome) (bool, error) {
	if !st.Record.SettingsEditable() {
		return false, fmt.Errorf("%w: settings are locked", domain.ErrInvalidState)
	}
	budget.ResetUsage(&st.Record, now)
	e.record(st, domain.ActivityTimerReset, "")
	out.Message = "Today's usage has been reset."
	return true, nil
}

func (e *Engine) sendPrompt(ctx context.Context, st *State, ev SendPrompt, usage domain.Usage, out *Outcome) (bool, error) {
	prompt := strings.TrimSpace(ev.Prompt)
	if prompt == "" {
		return false, fmt.Errorf("%w: message cannot be empty", domain.ErrEmptyInput)
	}
	if usage.Exceeded {
		return false, fmt.Errorf("%w: daily time limit reached", domain.ErrInvalidState)
	}
	if e.Generator == nil {
		return false, fmt.Errorf("%w: no model provider configured", domain.ErrInvalidState)
	}

	st.Transcript.Append(domain.ChatMessage{Role: domain.RoleUser, Content: prompt})
	history := st.Transcript.ModelHistory()

	e.Logger.Info("calling provider", map[string]interface{}{
		"provider": e.Generator.Name(),
		"messages": len(history),
	})

	var full strings.Builder
	var streamErr error
	for chunk, err := range e.Generator.Generate(ctx, history) {
		if err != nil {
			streamErr = err
			break
		}
		full.WriteString(chunk)
		if ev.OnChunk != nil {
			ev.OnChunk(chunk)
		}
	}

	if streamErr != nil {
		text := fmt.Sprintf("Error generating response: %v", streamErr)
		out.MessageIndex = st.Transcript.Append(domain.ChatMessage{Role: domain.RoleAssistant, Content: text})
		out.Message = text
		e.Logger.Error("provider stream failed", streamErr, map[string]interface{}{"provider": e.Generator.Name()})
		e.record(st, domain.ActivityUpstreamFailure, streamErr.Error())
		return false, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, streamErr)
	}

	reply := full.String()
	result := e.Filter.Evaluate(reply, e.Filter.Normalize(st.Record.BannedTerms))
	msg := domain.ChatMessage{Role: domain.RoleAssistant, Content: result.Output, IsFiltered: result.Filtered}
	if result.Filtered {
		msg.OriginalContent = &reply
		e.record(st, domain.ActivityFiltered, fmt.Sprintf("matched %q", result.MatchedTerm))
	}
	out.MessageIndex = st.Transcript.Append(msg)
	out.Message = msg.Content
	return false, nil
}

func (e *Engine) reveal(st *State, ev Reveal, out *Outcome) (bool, error) {
	index := ev.Index
	if index < 0 {
		index = reveal.LatestEligible(&st.Transcript)
		if index < 0 {
			index = st.Transcript.LastIndex()
		}
	}
	if err := e.Reveals.Reveal(&st.Record, &st.Transcript, index, ev.Password); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			e.record(st, domain.ActivityRevealDenied, fmt.Sprintf("message %d", index))
		}
		return false, err
	}
	e.record(st, domain.ActivityRevealed, fmt.Sprintf("message %d", index))
	out.MessageIndex = index
	out.Message = st.Transcript.Messages[index].Displayed()
	return false, nil
}

func (e *Engine) flush(ctx context.Context, st *State, out *Outcome) {
	if err := e.Store.Persist(ctx, st.Record); err != nil {
		e.Logger.Warn("device record not saved", map[string]interface{}{
			"device": st.Record.DeviceID,
			"error":  err.Error(),
		})
		out.Warnings = append(out.Warnings, wrapPersistence(err).Error())
	}
}

func (e *Engine) record(st *State, kind domain.ActivityKind, detail string) {
	if e.Activity == nil {
		return
	}
	entry := domain.ActivityEntry{
		Timestamp: e.now(),
		DeviceID:  st.Record.DeviceID,
		Kind:      kind,
		Detail:    detail,
	}
	if err := e.Activity.Record(entry); err != nil {
		e.Logger.Warn("activity not recorded", map[string]interface{}{"kind": string(kind), "error": err.Error()})
	}
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Engine) validate() error {
	if e.Credentials == nil || e.Reveals == nil || e.Filter == nil || e.Store == nil || e.Logger == nil {
		return errors.New("session.Engine dependencies not satisfied")
	}
	return nil
}

func wrapPersistence(err error) error {
	if errors.Is(err, domain.ErrPersistenceFailure) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
}

func describeUsage(u domain.Usage) string {
	switch u.State() {
	case domain.BudgetInactive:
		return "No daily time limit is active."
	case domain.BudgetActiveExceeded:
		return "Daily time limit reached."
	default:
		return fmt.Sprintf("%s left today.", u.Remaining().Round(time.Second))
	}
}
