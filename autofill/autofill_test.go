package autofill

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hazyhaar/formfill/fields"
	"github.com/hazyhaar/formfill/fill"
	"github.com/hazyhaar/formfill/match"
	"github.com/hazyhaar/formfill/profile"
)

func TestHostOf(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://forms.example.edu/apply?step=2", "forms.example.edu"},
		{"http://localhost:8080/", "localhost"},
		{"not a url at all\x7f", ""},
	}
	for _, tc := range cases {
		if got := hostOf(tc.in); got != tc.want {
			t.Errorf("hostOf(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalKey(t *testing.T) {
	if !canonicalKey(profile.KeyEmail) {
		t.Error("email should be canonical")
	}
	if canonicalKey("github") {
		t.Error("github should not be canonical")
	}
}

func TestLoadProfile_AdHocDataWithoutStoredProfile(t *testing.T) {
	a := New(Config{Profiles: testManager(t)})

	prof, err := a.loadProfile(context.Background(), Command{Data: map[string]string{
		profile.KeyEmail: "jane@x.edu",
		"github":         "janedoe",
	}})
	if err != nil {
		t.Fatalf("loadProfile: %v", err)
	}
	if got := prof.Get(profile.KeyEmail); got != "jane@x.edu" {
		t.Errorf("email = %q, want jane@x.edu", got)
	}
	if prof.Custom["github"] != "janedoe" {
		t.Errorf("custom github = %q, want janedoe", prof.Custom["github"])
	}
}

func TestLoadProfile_DataOverlaysStoredProfile(t *testing.T) {
	profiles := testManager(t)
	ctx := context.Background()

	p := &profile.Profile{
		Name:       "default",
		Attributes: map[string]string{profile.KeyFullName: "Jane Doe"},
	}
	if err := profiles.SaveProfile(ctx, p); err != nil {
		t.Fatal(err)
	}

	a := New(Config{Profiles: profiles})
	prof, err := a.loadProfile(ctx, Command{ProfileID: p.ID, Data: map[string]string{
		profile.KeyEmail: "jane@x.edu",
		"github":         "janedoe",
	}})
	if err != nil {
		t.Fatalf("loadProfile: %v", err)
	}
	if got := prof.Get(profile.KeyFullName); got != "Jane Doe" {
		t.Errorf("full_name = %q, want Jane Doe", got)
	}
	if got := prof.Get(profile.KeyEmail); got != "jane@x.edu" {
		t.Errorf("email = %q, want jane@x.edu", got)
	}
	if prof.Custom["github"] != "janedoe" {
		t.Errorf("custom github = %q, want janedoe", prof.Custom["github"])
	}
}

func TestRecovered(t *testing.T) {
	for _, err := range []error{ErrBlacklisted, ErrNoFields, match.ErrNoMatches} {
		if !recovered(err) {
			t.Errorf("%v should be recovered", err)
		}
	}
	for _, err := range []error{fill.ErrAllFailed, profile.ErrLocked, errors.New("boom")} {
		if recovered(err) {
			t.Errorf("%v should propagate", err)
		}
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrUnknownAction, http.StatusBadRequest},
		{profile.ErrLocked, http.StatusForbidden},
		{profile.ErrNotFound, http.StatusNotFound},
		{fill.ErrAllFailed, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestBuildReport(t *testing.T) {
	f := fields.NewDescriptor(fields.KindShortText, nil, "Your Name")
	outcomes := []fill.Outcome{
		{
			Match:      match.Result{Field: f, DataKey: profile.KeyFullName, Confidence: 0.4, Strategy: match.StrategyKeyword},
			Filled:     true,
			FinalValue: "Jane Doe",
		},
		{
			Match: match.Result{Field: f, DataKey: profile.KeyEmail, Confidence: 0.2, Strategy: match.StrategyKind},
			Err:   errors.New("verification read-back mismatch"),
		},
	}

	rep := buildReport(1, 5, outcomes)
	if rep.FilledCount != 1 || rep.FieldCount != 5 || rep.MatchCount != 2 {
		t.Fatalf("counts: %+v", rep)
	}
	if !rep.Fields[0].Filled || rep.Fields[0].FinalValue != "Jane Doe" {
		t.Errorf("first field: %+v", rep.Fields[0])
	}
	if rep.Fields[1].Filled || rep.Fields[1].Error == "" {
		t.Errorf("second field should carry the error: %+v", rep.Fields[1])
	}
}

func TestRouter_Healthz(t *testing.T) {
	a := New(Config{})
	srv := httptest.NewServer(NewRouter(a))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}
}

func TestRouter_UnknownAction(t *testing.T) {
	a := New(Config{})
	srv := httptest.NewServer(NewRouter(a))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/autofill", "application/json",
		strings.NewReader(`{"action":"bogus"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRouter_BadJSON(t *testing.T) {
	a := New(Config{})
	srv := httptest.NewServer(NewRouter(a))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/autofill", "application/json",
		strings.NewReader(`{not json`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRescanner_DebounceCollapsesBurst(t *testing.T) {
	var flushes atomic.Int32
	r := NewRescanner(nil, fields.New(fields.Config{}),
		RescanConfig{Window: 50 * time.Millisecond}, func() {
			flushes.Add(1)
		}, nil)
	go r.loop()
	defer r.Stop()

	for i := 0; i < 10; i++ {
		r.sigCh <- 1
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)
	if got := flushes.Load(); got != 1 {
		t.Fatalf("burst flushed %d times, want 1", got)
	}
}

func TestRescanner_BufferThresholdFlushesEarly(t *testing.T) {
	var flushes atomic.Int32
	r := NewRescanner(nil, fields.New(fields.Config{}),
		RescanConfig{Window: time.Hour, MaxBuffer: 5}, func() {
			flushes.Add(1)
		}, nil)
	go r.loop()
	defer r.Stop()

	r.sigCh <- 5

	deadline := time.After(time.Second)
	for flushes.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("threshold flush never fired")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestRescanConfig_Defaults(t *testing.T) {
	var c RescanConfig
	c.defaults()
	if c.Window != 250*time.Millisecond {
		t.Errorf("window = %v", c.Window)
	}
	if c.MaxBuffer != 200 {
		t.Errorf("max buffer = %d", c.MaxBuffer)
	}
}
