package fill

import (
	"context"
	"time"

	"github.com/go-rod/rod"
)

// Signal names accepted by the dispatch script. "enter" is the keyboard
// confirmation some select widgets gate on.
const (
	SigFocus       = "focus"
	SigBlur        = "blur"
	SigInput       = "input"
	SigChange      = "change"
	SigKeyDown     = "keydown"
	SigKeyUp       = "keyup"
	SigPointerDown = "pointerdown"
	SigClick       = "click"
	SigEnter       = "enter"
)

// EventPolicy is an ordered list of signals emitted after a write, with a
// fixed delay between them. The delays are scheduling hints for reactive
// frameworks that coalesce updates, not synchronization; correctness comes
// from the read-back verification that follows.
type EventPolicy struct {
	Signals []string      `yaml:"signals"`
	Gap     time.Duration `yaml:"gap"`
}

// Default policies. The reduced policy drives the single verification
// retry: some pages break when the full synthetic sequence replays, but
// accept a bare input/change pair.
var (
	TextPolicy = EventPolicy{
		Signals: []string{SigFocus, SigKeyDown, SigInput, SigKeyUp, SigChange, SigBlur},
		Gap:     15 * time.Millisecond,
	}
	SelectPolicy = EventPolicy{
		Signals: []string{SigPointerDown, SigClick, SigChange, SigInput, SigEnter, SigBlur},
		Gap:     25 * time.Millisecond,
	}
	ReducedPolicy = EventPolicy{
		Signals: []string{SigInput, SigChange},
	}
)

// dispatchJS emits one signal on the bound element. Mouse, keyboard, and
// focus signals need their specific event classes or React/Vue delegates
// ignore them.
const dispatchJS = `(type) => {
	let ev;
	switch (type) {
	case 'pointerdown':
	case 'click':
		ev = new MouseEvent(type, { bubbles: true, cancelable: true, view: window });
		break;
	case 'keydown':
	case 'keyup':
		ev = new KeyboardEvent(type, { bubbles: true, cancelable: true, key: 'a' });
		break;
	case 'enter':
		ev = new KeyboardEvent('keydown', { bubbles: true, cancelable: true, key: 'Enter', keyCode: 13 });
		break;
	case 'focus':
		this.focus();
		ev = new FocusEvent('focus', { bubbles: true });
		break;
	case 'blur':
		this.blur();
		ev = new FocusEvent('blur', { bubbles: true });
		break;
	case 'input':
		ev = new InputEvent('input', { bubbles: true });
		break;
	default:
		ev = new Event(type, { bubbles: true });
	}
	this.dispatchEvent(ev);
}`

// emit dispatches the policy's signal sequence on el.
func emit(ctx context.Context, el *rod.Element, policy EventPolicy) error {
	for i, sig := range policy.Signals {
		if _, err := el.Context(ctx).Eval(dispatchJS, sig); err != nil {
			return err
		}
		if policy.Gap > 0 && i < len(policy.Signals)-1 {
			if err := sleep(ctx, policy.Gap); err != nil {
				return err
			}
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
