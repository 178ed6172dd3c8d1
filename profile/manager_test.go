package profile_test

import (
	"context"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/formfill/dbopen"
	"github.com/hazyhaar/formfill/profile"
	"github.com/hazyhaar/formfill/profile/internal/store"
)

func openManager(t *testing.T) *profile.Manager {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(store.Schema))
	return profile.OpenDB(db)
}

func TestSaveLoadProfile(t *testing.T) {
	ctx := context.Background()
	m := openManager(t)

	p := &profile.Profile{
		Name: "default",
		Attributes: map[string]string{
			profile.KeyFullName: "Jane Doe",
			profile.KeyEmail:    "jane@x.edu",
		},
		Custom: map[string]string{"github": "janedoe"},
	}
	if err := m.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if p.ID == "" {
		t.Fatal("SaveProfile should assign an ID")
	}

	got, err := m.LoadProfile(ctx, p.ID)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if got.Get(profile.KeyFullName) != "Jane Doe" {
		t.Errorf("full_name = %q, want %q", got.Get(profile.KeyFullName), "Jane Doe")
	}
	if got.Custom["github"] != "janedoe" {
		t.Errorf("custom github = %q, want %q", got.Custom["github"], "janedoe")
	}
	// Normalize must have backfilled every built-in key.
	for _, k := range profile.Keys {
		if _, ok := got.Attributes[k]; !ok {
			t.Errorf("attribute %q missing after load", k)
		}
	}
}

func TestLoadProfile_NotFound(t *testing.T) {
	m := openManager(t)
	_, err := m.LoadProfile(context.Background(), "prof_missing")
	if !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestVault_Reopen(t *testing.T) {
	ctx := context.Background()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(store.Schema))

	m := profile.OpenDB(db)
	if err := m.SetPassphrase(ctx, "hunter2"); err != nil {
		t.Fatalf("SetPassphrase: %v", err)
	}
	p := &profile.Profile{Name: "secret"}
	if err := m.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	m2 := profile.OpenDB(db)
	if _, err := m2.LoadProfile(ctx, p.ID); !errors.Is(err, profile.ErrLocked) {
		t.Fatalf("LoadProfile before Unlock: err = %v, want ErrLocked", err)
	}
	if err := m2.Unlock(ctx, "wrong"); !errors.Is(err, profile.ErrBadPassphrase) {
		t.Fatalf("Unlock with wrong pass: err = %v, want ErrBadPassphrase", err)
	}
	if err := m2.Unlock(ctx, "hunter2"); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if _, err := m2.LoadProfile(ctx, p.ID); err != nil {
		t.Fatalf("LoadProfile after Unlock: %v", err)
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := openManager(t)

	st, err := m.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("LoadSettings (empty): %v", err)
	}
	if st.AutoFill {
		t.Error("default auto_fill should be off")
	}

	want := &profile.Settings{
		ActiveProfileID: "prof_abc",
		AutoFill:        true,
		Blacklist:       []string{"bank.example"},
	}
	if err := m.SaveSettings(ctx, want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	got, err := m.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if got.ActiveProfileID != want.ActiveProfileID || !got.AutoFill {
		t.Errorf("settings = %+v, want %+v", got, want)
	}
	if !got.Blacklisted("bank.example") || !got.Blacklisted("www.bank.example") {
		t.Error("Blacklisted should match the domain and subdomains")
	}
	if got.Blacklisted("otherbank.example") {
		t.Error("Blacklisted should not match sibling domains")
	}
}

func TestNormalize_AllocatesCustom(t *testing.T) {
	p := &profile.Profile{}
	p.Normalize()
	if p.Custom == nil {
		t.Fatal("Normalize should allocate Custom")
	}
	p.Custom["github"] = "janedoe"
	if p.Custom["github"] != "janedoe" {
		t.Error("Custom should be assignable after Normalize")
	}
}

func TestLoadProfile_CustomAssignable(t *testing.T) {
	// A profile saved without custom fields stores "null"; the loaded copy
	// must still accept custom assignments (command data overlays write
	// into it).
	ctx := context.Background()
	m := openManager(t)

	p := &profile.Profile{Name: "bare"}
	if err := m.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	got, err := m.LoadProfile(ctx, p.ID)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	got.Custom["github"] = "janedoe"
	if got.Custom["github"] != "janedoe" {
		t.Error("loaded profile's Custom should be assignable")
	}
}

func TestProfile_Empty(t *testing.T) {
	p := &profile.Profile{}
	p.Normalize()
	if !p.Empty() {
		t.Error("normalized zero profile should be Empty")
	}
	p.Attributes[profile.KeyEmail] = "a@b.c"
	if p.Empty() {
		t.Error("profile with email should not be Empty")
	}
}
