package drugdb

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreGetMiss(t *testing.T) {
	s := openTestStore(t)

	rec, err := s.Get(context.Background(), "naproxen")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec != nil {
		t.Errorf("Get on empty store = %+v, want nil", rec)
	}
}

func TestStorePutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := Record{
		GenericName:  "Naproxen",
		BrandName:    "Aleve",
		Manufacturer: "Bayer",
		Indications:  "Pain relief",
		Dosage:       "220mg every 8-12 hours",
		Warnings:     "May cause stomach bleeding",
		SideEffects:  "Heartburn, dizziness",
	}
	if err := s.Put(ctx, "naproxen", want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "naproxen")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil after Put")
	}
	if *got != want {
		t.Errorf("Get = %+v, want %+v", *got, want)
	}
}

func TestStoreQueryNormalized(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "  Naproxen ", Record{GenericName: "Naproxen"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	for _, q := range []string{"naproxen", "NAPROXEN", " naproxen  "} {
		got, err := s.Get(ctx, q)
		if err != nil {
			t.Fatalf("Get(%q): %v", q, err)
		}
		if got == nil || got.GenericName != "Naproxen" {
			t.Errorf("Get(%q) = %+v, want Naproxen", q, got)
		}
	}
}

func TestStorePutReplacesExisting(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "aleve", Record{GenericName: "Naproxen", Dosage: "old"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, "aleve", Record{GenericName: "Naproxen", Dosage: "220mg"}); err != nil {
		t.Fatalf("Put replace: %v", err)
	}

	got, err := s.Get(ctx, "aleve")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Dosage != "220mg" {
		t.Errorf("Get after replace = %+v, want updated dosage", got)
	}
}
