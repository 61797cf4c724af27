package core

import (
	"errors"
	"testing"
)

func TestSetAffiliationUnknownUser(t *testing.T) {
	_, _, identity, _ := newTestCore(t)

	if err := identity.SetAffiliation(nil, 9999, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := identity.GetAffiliation(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAvailableExcludesAffiliatedUsers(t *testing.T) {
	registry, _, identity, db := newTestCore(t)
	a := createTestUser(t, db, "alice")
	b := createTestUser(t, db, "bob")

	if _, err := registry.CreateGroup("Alpha", []uint{a.ID}); err != nil {
		t.Fatalf("CreateGroup error: %v", err)
	}

	available, err := identity.ListAvailable()
	if err != nil {
		t.Fatalf("ListAvailable error: %v", err)
	}
	if len(available) != 1 || available[0].ID != b.ID {
		t.Fatalf("expected only user %d available, got %+v", b.ID, available)
	}

	if _, err := registry.LeaveGroup(a.ID); err != nil {
		t.Fatalf("LeaveGroup error: %v", err)
	}
	available, err = identity.ListAvailable()
	if err != nil {
		t.Fatalf("ListAvailable error: %v", err)
	}
	if len(available) != 2 {
		t.Fatalf("expected 2 available users, got %d", len(available))
	}
}
