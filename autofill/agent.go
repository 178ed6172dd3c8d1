// Package autofill orchestrates one page: extract the fillable fields,
// match them against the stored profile, write the values, and report the
// outcome over HTTP, MCP, or an in-page toast.
package autofill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/hazyhaar/formfill/browser"
	"github.com/hazyhaar/formfill/fields"
	"github.com/hazyhaar/formfill/fill"
	"github.com/hazyhaar/formfill/history"
	"github.com/hazyhaar/formfill/match"
	"github.com/hazyhaar/formfill/profile"
)

// Config assembles an Agent.
type Config struct {
	Tab      *browser.Tab
	Profiles *profile.Manager

	// History, when set, records one audit event per fill invocation.
	History *history.Log

	Fields fields.Config
	Fill   fill.Config
	Rescan RescanConfig

	// Notifications enables in-page toasts.
	Notifications bool

	Logger *slog.Logger
}

// Agent runs the fill pipeline against one tab. Invocations are serialized:
// two concurrent commands on the same tab would race on focus and events.
type Agent struct {
	tab       *browser.Tab
	profiles  *profile.Manager
	hist      *history.Log
	extractor *fields.Extractor
	executor  *fill.Executor
	notifier  *Notifier
	rescanner *Rescanner
	logger    *slog.Logger

	cfg Config
	mu  sync.Mutex
}

func New(cfg Config) *Agent {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Agent{
		tab:       cfg.Tab,
		profiles:  cfg.Profiles,
		hist:      cfg.History,
		extractor: fields.New(cfg.Fields),
		executor:  fill.New(cfg.Fill),
		notifier:  NewNotifier(cfg.Tab, cfg.Notifications, cfg.Logger),
		logger:    cfg.Logger,
		cfg:       cfg,
	}
}

// Watch installs the mutation observer so late-rendered form sections
// invalidate the extraction cache, and re-fills automatically when the
// auto-fill setting is on.
func (a *Agent) Watch() error {
	a.rescanner = NewRescanner(a.tab, a.extractor, a.cfg.Rescan, a.onFormChange, a.logger)
	return a.rescanner.Start()
}

// Stop halts the rescanner if Watch was called.
func (a *Agent) Stop() {
	if a.rescanner != nil {
		a.rescanner.Stop()
	}
}

// HandleCommand executes one command. Expected empty outcomes (blacklisted
// site, no fields, nothing matched) come back as a Report with a message
// and a nil error; only genuine failures (locked vault, page errors, every
// write failing) surface as errors.
func (a *Agent) HandleCommand(ctx context.Context, cmd Command) (*Report, error) {
	switch cmd.Action {
	case ActionAutofill, "":
		rep, err := a.autofill(ctx, cmd)
		if err != nil && recovered(err) {
			return rep, nil
		}
		return rep, err
	case ActionScan:
		return a.scan(ctx, cmd)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
}

func recovered(err error) bool {
	return errors.Is(err, ErrBlacklisted) ||
		errors.Is(err, ErrNoFields) ||
		errors.Is(err, match.ErrNoMatches)
}

func (a *Agent) autofill(ctx context.Context, cmd Command) (rep *Report, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var profileID string
	defer func() { a.record(ctx, rep, err, profileID) }()

	settings, err := a.profiles.LoadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("autofill: load settings: %w", err)
	}
	if settings.Blacklisted(hostOf(a.tab.PageURL)) {
		a.logger.Info("fill skipped, site blacklisted", "url", a.tab.PageURL)
		a.notifier.Show(ctx, SeverityWarning, "Autofill is disabled on this site")
		return &Report{Message: "site is blacklisted"}, ErrBlacklisted
	}

	prof, err := a.loadProfile(ctx, cmd)
	if err != nil {
		return nil, err
	}
	profileID = prof.ID

	fs, err := a.extractor.Extract(ctx, a.tab.Page)
	if err != nil {
		return nil, fmt.Errorf("autofill: extract: %w", err)
	}
	if len(fs) == 0 {
		a.notifier.Show(ctx, SeverityWarning, "No fillable fields found on this page")
		return &Report{Message: "no fillable fields found"}, ErrNoFields
	}

	matches := match.Match(fs, prof)
	if len(matches) == 0 {
		a.notifier.Show(ctx, SeverityWarning, "Nothing on this page matches your profile")
		return &Report{
			FieldCount: len(fs),
			Message:    "no fields matched profile data",
		}, match.ErrNoMatches
	}

	filled, outcomes, err := a.executor.Fill(ctx, matches)
	rep = buildReport(filled, len(fs), outcomes)
	if err != nil {
		if errors.Is(err, fill.ErrAllFailed) {
			a.notifier.Show(ctx, SeverityError, "Autofill failed: no field accepted a value")
		}
		return rep, err
	}

	msg := fmt.Sprintf("Filled %d of %d fields", filled, len(matches))
	rep.Message = msg
	a.logger.Info("fill complete",
		"url", a.tab.PageURL, "fields", len(fs), "matched", len(matches), "filled", filled)
	a.notifier.Show(ctx, SeveritySuccess, msg)
	return rep, nil
}

// scan runs extraction and matching without writing anything, for preview
// and diagnostics. Blacklisting does not block a scan: it is read-only.
func (a *Agent) scan(ctx context.Context, cmd Command) (*Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	prof, err := a.loadProfile(ctx, cmd)
	if err != nil {
		return nil, err
	}

	fs, err := a.extractor.Extract(ctx, a.tab.Page)
	if err != nil {
		return nil, fmt.Errorf("autofill: extract: %w", err)
	}

	matches := match.Match(fs, prof)
	rep := &Report{
		FieldCount: len(fs),
		MatchCount: len(matches),
		Message:    fmt.Sprintf("%d fields, %d matched", len(fs), len(matches)),
	}
	for _, m := range matches {
		rep.Fields = append(rep.Fields, FieldReport{
			DataKey:    m.DataKey,
			Kind:       string(m.Field.Kind),
			Strategy:   string(m.Strategy),
			Confidence: m.Confidence,
		})
	}
	return rep, nil
}

// loadProfile resolves the profile for a command and overlays any one-off
// values. A command carrying only ad-hoc data works without a stored
// profile.
func (a *Agent) loadProfile(ctx context.Context, cmd Command) (*profile.Profile, error) {
	var (
		prof *profile.Profile
		err  error
	)
	if cmd.ProfileID != "" {
		prof, err = a.profiles.LoadProfile(ctx, cmd.ProfileID)
	} else {
		prof, err = a.profiles.LoadActiveProfile(ctx)
	}
	if errors.Is(err, profile.ErrNotFound) && len(cmd.Data) > 0 {
		prof, err = &profile.Profile{}, nil
		prof.Normalize()
	}
	if err != nil {
		return nil, fmt.Errorf("autofill: load profile: %w", err)
	}

	for k, v := range cmd.Data {
		if canonicalKey(k) {
			prof.Attributes[k] = v
		} else {
			prof.Custom[k] = v
		}
	}
	return prof, nil
}

func canonicalKey(k string) bool {
	for _, key := range profile.Keys {
		if k == key {
			return true
		}
	}
	return false
}

func buildReport(filled, fieldCount int, outcomes []fill.Outcome) *Report {
	rep := &Report{
		FilledCount: filled,
		FieldCount:  fieldCount,
		MatchCount:  len(outcomes),
	}
	for _, o := range outcomes {
		fr := FieldReport{
			DataKey:    o.Match.DataKey,
			Kind:       string(o.Match.Field.Kind),
			Strategy:   string(o.Match.Strategy),
			Confidence: o.Match.Confidence,
			Filled:     o.Filled,
			FinalValue: o.FinalValue,
		}
		if o.Err != nil {
			fr.Error = o.Err.Error()
		}
		rep.Fields = append(rep.Fields, fr)
	}
	return rep
}

// onFormChange re-runs the fill after the page's form structure settles,
// when the user has auto-fill enabled.
func (a *Agent) onFormChange() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	settings, err := a.profiles.LoadSettings(ctx)
	if err != nil || !settings.AutoFill {
		return
	}
	if _, err := a.HandleCommand(ctx, Command{Action: ActionAutofill}); err != nil {
		a.logger.Warn("auto fill after form change failed", "error", err)
	}
}

// record writes one history event per invocation. Uses a detached context
// so a cancelled fill still leaves its trace.
func (a *Agent) record(ctx context.Context, rep *Report, err error, profileID string) {
	if a.hist == nil {
		return
	}
	ev := history.Event{
		PageURL:   a.tab.PageURL,
		Host:      hostOf(a.tab.PageURL),
		ProfileID: profileID,
		Action:    ActionAutofill,
		Success:   err == nil,
	}
	if rep != nil {
		ev.FieldCount = rep.FieldCount
		ev.MatchCount = rep.MatchCount
		ev.FilledCount = rep.FilledCount
		ev.Message = rep.Message
	}
	if err != nil && ev.Message == "" {
		ev.Message = err.Error()
	}
	a.hist.Record(context.WithoutCancel(ctx), ev)
}

func hostOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
