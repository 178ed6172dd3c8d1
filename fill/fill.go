// Package fill writes matched profile values into live form elements and
// verifies each write by reading the element state back.
//
// Writes go through the native property setters so framework-controlled
// inputs (React, Vue) observe them, followed by a synthetic event sequence
// per EventPolicy. A write whose read-back disagrees is retried once with
// the reduced policy before being reported as failed. Failures are isolated
// per field: one stubborn widget never aborts the rest of the form.
package fill

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/go-rod/rod"

	"github.com/hazyhaar/formfill/fields"
	"github.com/hazyhaar/formfill/match"
	"github.com/hazyhaar/formfill/profile"
)

// Config tunes the executor. Zero value is usable.
type Config struct {
	// Text, Select and Reduced override the default event policies.
	Text    EventPolicy
	Select  EventPolicy
	Reduced EventPolicy

	// VerifyDelay is how long to wait after the event sequence before the
	// read-back, giving reactive frameworks a chance to re-render.
	VerifyDelay time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Text.Signals == nil {
		c.Text = TextPolicy
	}
	if c.Select.Signals == nil {
		c.Select = SelectPolicy
	}
	if c.Reduced.Signals == nil {
		c.Reduced = ReducedPolicy
	}
	if c.VerifyDelay <= 0 {
		c.VerifyDelay = 80 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Outcome records the fate of one matched field.
type Outcome struct {
	Match      match.Result
	Filled     bool
	FinalValue string
	Err        error
}

// Executor writes match results into the page.
type Executor struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config) *Executor {
	cfg.defaults()
	return &Executor{cfg: cfg, logger: cfg.Logger}
}

// Fill writes every match into its field, in the order given (highest
// confidence first, per the matcher's sort). It returns the number of
// verified writes and a per-field outcome list. ErrAllFailed is returned
// only when at least one write was attempted and none succeeded; context
// cancellation aborts between fields and surfaces as the error.
func (e *Executor) Fill(ctx context.Context, matches []match.Result) (int, []Outcome, error) {
	outcomes := make([]Outcome, 0, len(matches))
	filled := 0

	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return filled, outcomes, err
		}

		out := Outcome{Match: m}
		final, err := e.fillOne(ctx, m)
		if err != nil {
			out.Err = err
			e.logger.Warn("field write failed",
				"key", m.DataKey, "kind", m.Field.Kind, "err", err)
		} else {
			out.Filled = true
			out.FinalValue = final
			filled++
			e.logger.Debug("field filled",
				"key", m.DataKey, "kind", m.Field.Kind, "strategy", m.Strategy)
		}
		outcomes = append(outcomes, out)
	}

	if filled == 0 && len(outcomes) > 0 {
		return 0, outcomes, ErrAllFailed
	}
	return filled, outcomes, nil
}

func (e *Executor) fillOne(ctx context.Context, m match.Result) (string, error) {
	if m.Field.El == nil {
		return "", fmt.Errorf("fill: field %q has no element handle", m.DataKey)
	}

	switch m.Field.Kind {
	case fields.KindShortText, fields.KindLongText, fields.KindDate:
		return e.fillText(ctx, m)
	case fields.KindSelect:
		return e.fillSelect(ctx, m)
	case fields.KindRadioGroup:
		return e.fillRadio(ctx, m)
	case fields.KindCheckbox:
		return e.fillCheckbox(ctx, m)
	default:
		return "", fmt.Errorf("fill: unsupported kind %q", m.Field.Kind)
	}
}

// setValueJS assigns through the prototype's native setter so that
// framework value tracking sees the change; plain `el.value = v` is
// swallowed by React's controlled inputs.
const setValueJS = `(v) => {
	const proto = this.tagName === 'TEXTAREA'
		? HTMLTextAreaElement.prototype
		: HTMLInputElement.prototype;
	const desc = Object.getOwnPropertyDescriptor(proto, 'value');
	if (desc && desc.set) {
		desc.set.call(this, v);
	} else {
		this.value = v;
	}
}`

const readValueJS = `() => String(this.value ?? '')`

func (e *Executor) fillText(ctx context.Context, m match.Result) (string, error) {
	value := m.Value
	if m.Field.Kind == fields.KindDate || m.DataKey == profile.KeyDateOfBirth {
		if formatted, err := formatDate(value, m.Field); err == nil {
			value = formatted
		}
		// Unparseable date values are written verbatim; a wrong-looking
		// date the user can fix beats an empty field.
	}

	el := m.Field.El
	attempt := 0
	err := retry.Do(func() error {
		policy := e.cfg.Text
		if attempt > 0 {
			policy = e.cfg.Reduced
		}
		attempt++

		if _, err := el.Context(ctx).Eval(setValueJS, value); err != nil {
			return fmt.Errorf("fill: set value: %w", err)
		}
		if err := emit(ctx, el, policy); err != nil {
			return fmt.Errorf("fill: dispatch events: %w", err)
		}
		return e.verifyValue(ctx, el, value)
	}, retry.Attempts(2), retry.Context(ctx), retry.LastErrorOnly(true))
	if err != nil {
		return "", err
	}
	return value, nil
}

func (e *Executor) verifyValue(ctx context.Context, el *rod.Element, want string) error {
	if err := sleep(ctx, e.cfg.VerifyDelay); err != nil {
		return err
	}
	res, err := el.Context(ctx).Eval(readValueJS)
	if err != nil {
		return fmt.Errorf("fill: read back: %w", err)
	}
	if got := res.Value.Str(); got != want {
		return fmt.Errorf("%w: got %q, want %q", ErrVerify, got, want)
	}
	return nil
}

const selectIndexJS = `(i) => {
	for (const opt of this.options) opt.selected = false;
	this.selectedIndex = i;
}`

func (e *Executor) fillSelect(ctx context.Context, m match.Result) (string, error) {
	idx := resolveOption(m.Field.Options, m.DataKey, m.Value)
	if idx < 0 {
		return "", fmt.Errorf("%w: select %q has no option for %q", ErrNoOption, m.DataKey, m.Value)
	}
	want := m.Field.Options[idx].Value

	el := m.Field.El
	attempt := 0
	err := retry.Do(func() error {
		policy := e.cfg.Select
		if attempt > 0 {
			policy = e.cfg.Reduced
		}
		attempt++

		if _, err := el.Context(ctx).Eval(selectIndexJS, idx); err != nil {
			return fmt.Errorf("fill: select index: %w", err)
		}
		if err := emit(ctx, el, policy); err != nil {
			return fmt.Errorf("fill: dispatch events: %w", err)
		}
		return e.verifyValue(ctx, el, want)
	}, retry.Attempts(2), retry.Context(ctx), retry.LastErrorOnly(true))
	if err != nil {
		return "", err
	}
	return m.Field.Options[idx].Text, nil
}

const checkJS = `(on) => { this.checked = !!on; }`

const readCheckedJS = `() => this.checked ? 'true' : 'false'`

func (e *Executor) fillRadio(ctx context.Context, m match.Result) (string, error) {
	member := resolveMember(m.Field.Members, m.DataKey, m.Value)
	if member == nil {
		return "", fmt.Errorf("%w: radio group %q has no member for %q", ErrNoOption, m.DataKey, m.Value)
	}
	el := member.El
	if el == nil {
		return "", fmt.Errorf("fill: radio member %q has no element handle", member.Value)
	}

	attempt := 0
	err := retry.Do(func() error {
		policy := e.cfg.Select
		if attempt > 0 {
			policy = e.cfg.Reduced
		}
		attempt++

		if _, err := el.Context(ctx).Eval(checkJS, true); err != nil {
			return fmt.Errorf("fill: check radio: %w", err)
		}
		if err := emit(ctx, el, policy); err != nil {
			return fmt.Errorf("fill: dispatch events: %w", err)
		}
		return e.verifyChecked(ctx, el, true)
	}, retry.Attempts(2), retry.Context(ctx), retry.LastErrorOnly(true))
	if err != nil {
		return "", err
	}
	if member.Text != "" {
		return member.Text, nil
	}
	return member.Value, nil
}

func (e *Executor) fillCheckbox(ctx context.Context, m match.Result) (string, error) {
	on := truthy(m.Value)
	el := m.Field.El

	attempt := 0
	err := retry.Do(func() error {
		policy := e.cfg.Select
		if attempt > 0 {
			policy = e.cfg.Reduced
		}
		attempt++

		if _, err := el.Context(ctx).Eval(checkJS, on); err != nil {
			return fmt.Errorf("fill: set checkbox: %w", err)
		}
		if err := emit(ctx, el, policy); err != nil {
			return fmt.Errorf("fill: dispatch events: %w", err)
		}
		return e.verifyChecked(ctx, el, on)
	}, retry.Attempts(2), retry.Context(ctx), retry.LastErrorOnly(true))
	if err != nil {
		return "", err
	}
	if on {
		return "checked", nil
	}
	return "unchecked", nil
}

func (e *Executor) verifyChecked(ctx context.Context, el *rod.Element, want bool) error {
	if err := sleep(ctx, e.cfg.VerifyDelay); err != nil {
		return err
	}
	res, err := el.Context(ctx).Eval(readCheckedJS)
	if err != nil {
		return fmt.Errorf("fill: read back: %w", err)
	}
	if got := res.Value.Str() == "true"; got != want {
		return fmt.Errorf("%w: checked=%v, want %v", ErrVerify, got, want)
	}
	return nil
}

// truthy reports whether a profile value turns a checkbox on.
func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "1", "on", "checked":
		return true
	}
	return false
}
