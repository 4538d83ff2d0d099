package service

import (
	"context"
	"errors"
	"testing"

	"github.com/yeisme/casefile/pkg/internal/model"
)

func TestPreviewLinkIssuer_Issue(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	d := h.upload("P", "RG", model.CategoryIdentification, model.DomainAdministrative)

	link, err := h.svc.Links.Issue(ctx, h.actor("bruno"), d.ID, LinkPreview)
	if err != nil {
		t.Fatal(err)
	}

	if want := "https://blob.test/" + d.StoragePath + "?ttl=900"; link != want {
		t.Errorf("link = %s, want %s", link, want)
	}

	link, err = h.svc.Links.Issue(ctx, h.actor("bruno"), d.StoragePath, LinkDownload)
	if err != nil {
		t.Fatal(err)
	}

	if want := "https://blob.test/" + d.StoragePath + "?ttl=900&download=RG.pdf"; link != want {
		t.Errorf("download link = %s, want %s", link, want)
	}

	actions := h.trail(d.ID)
	if countActions(actions, model.ActionView) != 1 || countActions(actions, model.ActionDownload) != 1 {
		t.Errorf("trail = %v", actions)
	}
}

func TestPreviewLinkIssuer_UnknownReference(t *testing.T) {
	h := newHarness(t)

	link, err := h.svc.Links.Issue(context.Background(), h.actor("ana"), "legacy/scan.png", LinkDownload)
	if err != nil {
		t.Fatal(err)
	}

	if link != "https://blob.test/legacy/scan.png?ttl=900&download=scan.png" {
		t.Errorf("link = %s", link)
	}

	var n int64
	h.db.Model(&model.DocumentEvent{}).Count(&n)

	if n != 0 {
		t.Errorf("unresolved reference wrote %d events", n)
	}
}

func TestPreviewLinkIssuer_Errors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	d := h.upload("P", "RG", model.CategoryIdentification, model.DomainAdministrative)

	if _, err := h.svc.Links.Issue(ctx, h.actor("ana"), "  ", LinkPreview); !errors.Is(err, ErrValidation) {
		t.Errorf("blank ref: %v", err)
	}

	if _, err := h.svc.Links.Issue(ctx, h.actor("ana"), d.ID, "print"); !errors.Is(err, ErrValidation) {
		t.Errorf("bad action: %v", err)
	}

	h.blobs.FailLink = true

	if _, err := h.svc.Links.Issue(ctx, h.actor("ana"), d.ID, LinkPreview); !errors.Is(err, ErrStorage) {
		t.Errorf("expected storage error, got %v", err)
	}

	if countActions(h.trail(d.ID), model.ActionView) != 0 {
		t.Error("failed issuance must not be audited")
	}
}
