package config

import (
	"testing"

	"github.com/swiftmtp/swiftmtp/quirk"
)

func TestProfileStoreLoadMissingReturnsNotOk(t *testing.T) {
	store := NewProfileStore(t.TempDir())
	_, ok, err := store.Load("nonexistent-fingerprint")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for a fingerprint never saved")
	}
}

func TestProfileStoreSaveThenLoadRoundTrips(t *testing.T) {
	store := NewProfileStore(t.TempDir())
	profile := quirk.LearnedProfile{
		Fingerprint:      "abc123",
		OptimalChunkSize: 65536,
		SampleCount:      7,
	}

	if err := store.Save(profile); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := store.Load("abc123")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true after Save")
	}
	if got != profile {
		t.Errorf("got %+v, want %+v", got, profile)
	}
}

func TestProfileStoreSaveRejectsEmptyFingerprint(t *testing.T) {
	store := NewProfileStore(t.TempDir())
	if err := store.Save(quirk.LearnedProfile{}); err == nil {
		t.Fatal("expected an error saving a profile with no fingerprint")
	}
}

func TestProfileStoreDeleteRemovesFile(t *testing.T) {
	store := NewProfileStore(t.TempDir())
	profile := quirk.LearnedProfile{Fingerprint: "xyz"}
	if err := store.Save(profile); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete("xyz"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, ok, err := store.Load("xyz")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Fatal("expected the profile to be gone after Delete")
	}
}
