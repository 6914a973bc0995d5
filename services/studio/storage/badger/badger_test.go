// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package badger

import (
	"context"
	"testing"
)

func TestGetSetDelete(t *testing.T) {
	store, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	t.Run("absent key is not an error", func(t *testing.T) {
		_, found, err := store.Get(ctx, "missing")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if found {
			t.Error("expected found=false for absent key")
		}
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		if err := store.Set(ctx, "loom_admin_brain", []byte(`{"name":"Ava"}`)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		value, found, err := store.Get(ctx, "loom_admin_brain")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !found {
			t.Fatal("expected found=true")
		}
		if string(value) != `{"name":"Ava"}` {
			t.Errorf("value = %s, want original", value)
		}
	})

	t.Run("set overwrites previous value", func(t *testing.T) {
		if err := store.Set(ctx, "k", []byte("v1")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if err := store.Set(ctx, "k", []byte("v2")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		value, _, err := store.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(value) != "v2" {
			t.Errorf("value = %s, want v2", value)
		}
	})

	t.Run("delete removes key", func(t *testing.T) {
		if err := store.Set(ctx, "gone", []byte("x")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if err := store.Delete(ctx, "gone"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		_, found, err := store.Get(ctx, "gone")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if found {
			t.Error("expected key to be gone")
		}
	})

	t.Run("delete of absent key is a no-op", func(t *testing.T) {
		if err := store.Delete(ctx, "never-existed"); err != nil {
			t.Errorf("Delete of absent key returned error: %v", err)
		}
	})
}

func TestPersistentReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.Path = dir
	cfg.GCInterval = 0

	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Set(ctx, "persisted", []byte("survives")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	store, err = Open(cfg)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	value, found, err := store.Get(ctx, "persisted")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found || string(value) != "survives" {
		t.Errorf("value after reopen = %q found=%v, want survives", value, found)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	if err == nil {
		t.Fatal("expected error for persistent store without path")
	}
}

func TestCancelledContext(t *testing.T) {
	store, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory failed: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Set(ctx, "k", []byte("v")); err == nil {
		t.Error("expected error from cancelled context on Set")
	}
	if _, _, err := store.Get(ctx, "k"); err == nil {
		t.Error("expected error from cancelled context on Get")
	}
}
