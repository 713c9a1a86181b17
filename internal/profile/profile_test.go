package profile

import (
	"testing"
)

func TestStore_CreateGetListDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	created, err := store.Create(Profile{Name: "work", UserDataDir: "/tmp/work-profile"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Error("expected Create to assign an ID")
	}
	if created.Lang != "en-US" {
		t.Errorf("expected default Lang en-US, got %q", created.Lang)
	}

	got, err := store.Get(created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "work" {
		t.Errorf("Get returned Name %q, want work", got.Name)
	}

	list := store.List()
	if len(list) != 1 {
		t.Fatalf("List returned %d profiles, want 1", len(list))
	}

	if err := store.Delete(created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(created.ID); err == nil {
		t.Error("expected Get to fail after Delete")
	}
}

func TestStore_CreateRequiresName(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.Create(Profile{UserDataDir: "/tmp/x"}); err == nil {
		t.Error("expected Create to reject a profile with no Name")
	}
}

func TestStore_Update(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	created, err := store.Create(Profile{Name: "a", UserDataDir: "/tmp/a"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := store.Update(created.ID, func(p *Profile) {
		p.Name = "b"
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "b" {
		t.Errorf("Update did not apply mutation, got Name %q", updated.Name)
	}
	if updated.UpdatedAt.Equal(created.UpdatedAt) {
		t.Error("expected UpdatedAt to change on Update")
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	created, err := store.Create(Profile{Name: "persisted", UserDataDir: "/tmp/p"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("re-Open: %v", err)
	}
	got, err := reopened.Get(created.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Name != "persisted" {
		t.Errorf("got Name %q after reopen, want persisted", got.Name)
	}
}
