package autofill

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/formfill/browser"
	"github.com/hazyhaar/formfill/fields"
)

//go:embed rescan.js
var rescanJS []byte

const rescanBinding = "__formfill_rescan"

// RescanConfig controls mutation batching.
type RescanConfig struct {
	// Window is the debounce time. Default: 250ms.
	Window time.Duration `yaml:"window"`
	// MaxBuffer flushes immediately when this many mutation signals
	// accumulate. Default: 200.
	MaxBuffer int `yaml:"max_buffer"`
}

func (c *RescanConfig) defaults() {
	if c.Window <= 0 {
		c.Window = 250 * time.Millisecond
	}
	if c.MaxBuffer <= 0 {
		c.MaxBuffer = 200
	}
}

// Rescanner watches the page for form-relevant DOM mutations and
// invalidates the extractor's cache when they settle. An optional OnChange
// hook fires after each invalidation, debounced to one call per burst.
type Rescanner struct {
	tab       *browser.Tab
	extractor *fields.Extractor
	onChange  func()
	logger    *slog.Logger

	cfg    RescanConfig
	sigCh  chan int
	ctx    context.Context
	cancel context.CancelFunc
}

func NewRescanner(tab *browser.Tab, ex *fields.Extractor, cfg RescanConfig, onChange func(), logger *slog.Logger) *Rescanner {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Rescanner{
		tab:       tab,
		extractor: ex,
		onChange:  onChange,
		logger:    logger,
		cfg:       cfg,
		sigCh:     make(chan int, 256),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start installs the page binding, injects the MutationObserver, and runs
// the debounce loop.
func (r *Rescanner) Start() error {
	err := proto.RuntimeAddBinding{Name: rescanBinding}.Call(r.tab.Page)
	if err != nil {
		r.logger.Warn("rescan: addBinding failed (may already exist)", "error", err)
	}

	go r.listenBinding()

	if _, err := r.tab.Page.Eval(string(rescanJS)); err != nil {
		return fmt.Errorf("autofill: inject rescan observer: %w", err)
	}

	go r.loop()

	r.logger.Debug("rescan: observer installed", "url", r.tab.PageURL)
	return nil
}

// Stop halts the debounce loop. The injected observer stays in the page;
// it goes away with the next navigation.
func (r *Rescanner) Stop() {
	r.cancel()
}

func (r *Rescanner) listenBinding() {
	page := r.tab.Page
	page.Context(r.ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != rescanBinding {
			return
		}
		n, err := strconv.Atoi(e.Payload)
		if err != nil || n <= 0 {
			n = 1
		}
		select {
		case r.sigCh <- n:
		default:
			// Channel full: the pending flush already covers this burst.
		}
	})()
}

// loop debounces mutation signals: a flush fires when the window expires
// after the last signal, or immediately when the buffer threshold is hit.
func (r *Rescanner) loop() {
	var (
		pending int
		timer   *time.Timer
		timerCh <-chan time.Time
	)

	flush := func() {
		if pending == 0 {
			return
		}
		r.logger.Debug("rescan: form mutations settled", "signals", pending)
		pending = 0
		timerCh = nil
		r.extractor.Invalidate()
		if r.onChange != nil {
			r.onChange()
		}
	}

	for {
		select {
		case <-r.ctx.Done():
			return

		case n := <-r.sigCh:
			pending += n
			if pending >= r.cfg.MaxBuffer {
				if timer != nil {
					timer.Stop()
				}
				flush()
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(r.cfg.Window)
			timerCh = timer.C

		case <-timerCh:
			flush()
		}
	}
}
