package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yeisme/casefile/pkg/internal/model"
	"github.com/yeisme/casefile/pkg/internal/repository"
	"github.com/yeisme/casefile/pkg/internal/testutil"
)

type harness struct {
	t       *testing.T
	db      *gorm.DB
	docs    *repository.Documents
	events  *repository.Events
	skips   *repository.Skips
	parties *repository.Parties
	blobs   *testutil.MemoryBlobStore
	dir     *testutil.StubDirectory
	clock   *testutil.StubClock
	svc     *Services
}

type harnessOption func(*Deps)

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	db := testutil.NewTestDB(t)
	testutil.SeedPatient(t, db, "P", "tenant-1")
	testutil.SeedPatient(t, db, "Q", "tenant-1")

	h := &harness{
		t:       t,
		db:      db,
		docs:    repository.NewDocuments(db),
		events:  repository.NewEvents(db),
		skips:   repository.NewSkips(db),
		parties: repository.NewParties(db),
		blobs:   testutil.NewMemoryBlobStore(),
		dir:     testutil.NewStubDirectory(map[string]string{"ana": "Ana Souza", "bruno": "Bruno Lima"}),
		clock:   testutil.FixedClock(),
	}

	deps := Deps{
		Documents: h.docs,
		Events:    h.events,
		Skips:     h.skips,
		Blobs:     h.blobs,
		Directory: h.dir,
		Clock:     h.clock,
		DocIDs:    testutil.NewStubIDGenerator("doc"),
		KeyIDs:    NewULIDGenerator(h.clock),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	h.svc = New(deps, Config{MaxUploadBytes: 1 << 20})

	return h
}

func (h *harness) actor(user string) *RequestActor {
	return NewActor(user, h.parties)
}

func (h *harness) upload(patient, title string, category model.Category, domain model.Domain) *model.Document {
	h.t.Helper()

	doc, err := h.svc.Documents.Upload(context.Background(), h.actor("ana"), CreateInput{
		PatientID: patient,
		Title:     title,
		Category:  category,
		Domain:    domain,
	}, FileUpload{Reader: bytes.NewReader([]byte("content of " + title)), Size: -1, FileName: title + ".pdf"})
	if err != nil {
		h.t.Fatalf("upload %s: %v", title, err)
	}

	return doc
}

func (h *harness) reload(id string) *model.Document {
	h.t.Helper()

	doc, err := h.docs.Get(context.Background(), id)
	if err != nil {
		h.t.Fatalf("reload %s: %v", id, err)
	}

	return doc
}

func (h *harness) trail(id string) []model.EventAction {
	h.t.Helper()

	events, err := h.events.ListByDocument(context.Background(), id)
	if err != nil {
		h.t.Fatalf("events %s: %v", id, err)
	}

	actions := make([]model.EventAction, len(events))
	for i, e := range events {
		actions[i] = e.Action
	}

	return actions
}

func (h *harness) countSkips(reason string) int64 {
	var n int64
	h.db.Model(&model.AuditSkip{}).Where("reason = ?", reason).Count(&n)

	return n
}

func (h *harness) tick() { h.clock.Advance(time.Minute) }

func countActions(actions []model.EventAction, want model.EventAction) int {
	n := 0

	for _, a := range actions {
		if a == want {
			n++
		}
	}

	return n
}

// failingDocs 让指定写操作失败.
type failingDocs struct {
	*repository.Documents
	insertErr error
}

func (f failingDocs) Insert(ctx context.Context, doc *model.Document) error {
	if f.insertErr != nil {
		return f.insertErr
	}

	return f.Documents.Insert(ctx, doc)
}

// racingDocs 在第一次 Update 写入前提交一个新版本，模拟读写之间的并发替换.
type racingDocs struct {
	*repository.Documents
	fired bool
}

func withRacingVersion(d *Deps) {
	d.Documents = &racingDocs{Documents: d.Documents.(*repository.Documents)}
}

func (r *racingDocs) Update(ctx context.Context, doc *model.Document, readStatus model.Status) error {
	if !r.fired {
		r.fired = true

		pred, err := r.Documents.Get(ctx, doc.ID)
		if err != nil {
			return err
		}

		next := pred.Clone()
		next.ID = pred.ID + "-v2"
		next.Version = pred.Version + 1
		next.PreviousDocumentID = &pred.ID
		next.Status = model.StatusActive
		next.StoragePath = pred.StoragePath + ".v2"

		if err := r.Documents.CreateVersion(ctx, pred.ID, pred.Version, next); err != nil {
			return err
		}
	}

	return r.Documents.Update(ctx, doc, readStatus)
}

type failingEvents struct {
	*repository.Events
}

func (failingEvents) Append(context.Context, *model.DocumentEvent) error {
	return errors.New("audit store offline")
}

func ptr[T any](v T) *T { return &v }
