package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yeisme/casefile/pkg/internal/model"
	"github.com/yeisme/casefile/pkg/internal/testutil"
)

func TestEvents_AppendAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewEvents(testutil.NewTestDB(t))

	actor := "u1"

	for i, action := range []model.EventAction{model.ActionCreate, model.ActionUpdate, model.ActionView} {
		e := &model.DocumentEvent{
			ID:          string(rune('a' + i)),
			DocumentID:  "d1",
			TenantID:    "t1",
			ActorUserID: &actor,
			Action:      action,
			Details:     model.JSONMap{"n": i},
			OccurredAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	_ = repo.Append(ctx, &model.DocumentEvent{ID: "z", DocumentID: "d2", TenantID: "t1", Action: model.ActionCreate, OccurredAt: base})

	events, err := repo.ListByDocument(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}

	if len(events) != 3 {
		t.Fatalf("got %d events", len(events))
	}

	if events[0].Action != model.ActionView || events[2].Action != model.ActionCreate {
		t.Errorf("unexpected order: %s ... %s", events[0].Action, events[2].Action)
	}

	if events[0].Details["n"] == nil {
		t.Errorf("details not decoded: %v", events[0].Details)
	}
}

func TestEvents_Immutable(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := NewEvents(db)

	e := &model.DocumentEvent{ID: "e1", DocumentID: "d1", TenantID: "t1", Action: model.ActionCreate, OccurredAt: base}
	if err := repo.Append(ctx, e); err != nil {
		t.Fatal(err)
	}

	e.Action = model.ActionArchive
	if err := db.Save(e).Error; !errors.Is(err, model.ErrEventImmutable) {
		t.Errorf("update should be rejected, got %v", err)
	}

	if err := db.Delete(e).Error; !errors.Is(err, model.ErrEventImmutable) {
		t.Errorf("delete should be rejected, got %v", err)
	}

	events, _ := repo.ListByDocument(ctx, "d1")
	if len(events) != 1 || events[0].Action != model.ActionCreate {
		t.Errorf("event was modified: %+v", events)
	}
}

func TestSkips(t *testing.T) {
	ctx := context.Background()
	repo := NewSkips(testutil.NewTestDB(t))

	for i := range 3 {
		s := &model.AuditSkip{
			ID:         string(rune('a' + i)),
			DocumentID: "d1",
			Action:     model.ActionView,
			Reason:     model.SkipMissingTenant,
			OccurredAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.RecordSkip(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	skips, err := repo.ListSkips(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}

	if len(skips) != 2 || skips[0].ID != "c" {
		t.Errorf("ListSkips = %+v", skips)
	}
}

func TestParties(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := NewParties(db)

	testutil.SeedPatient(t, db, "P", "t1")
	testutil.SeedUser(t, db, "u1", "Ana Souza")
	testutil.SeedUser(t, db, "u2", "Bruno Lima")

	tenant, err := repo.TenantOf(ctx, "P")
	if err != nil || tenant != "t1" {
		t.Errorf("TenantOf = %q, %v", tenant, err)
	}

	if _, err := repo.TenantOf(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	names, err := repo.DisplayNames(ctx, []string{"u1", "u2", "ghost"})
	if err != nil {
		t.Fatal(err)
	}

	if len(names) != 2 || names["u1"] != "Ana Souza" {
		t.Errorf("DisplayNames = %v", names)
	}

	if err := repo.SavePatient(ctx, &model.Patient{ID: "P", TenantID: "t2"}); err != nil {
		t.Fatal(err)
	}

	if tenant, _ := repo.TenantOf(ctx, "P"); tenant != "t2" {
		t.Errorf("SavePatient did not overwrite, tenant = %q", tenant)
	}
}
