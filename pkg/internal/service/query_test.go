package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yeisme/casefile/pkg/internal/model"
)

func seedCaseFile(t *testing.T, h *harness) (exam, contract, receipt *model.Document) {
	t.Helper()

	ctx := context.Background()

	exam = h.upload("P", "Hemograma", model.CategoryExam, model.DomainClinical)
	h.tick()

	contract = h.upload("P", "Contrato", model.CategoryContract, model.DomainLegal)
	h.tick()

	receipt = h.upload("P", "Recibo", model.CategoryReceipt, model.DomainFinancial)
	h.tick()

	h.upload("Q", "Outro paciente", model.CategoryExam, model.DomainClinical)

	if _, err := h.svc.Documents.Archive(ctx, h.actor("bruno"), exam.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := h.svc.Documents.Archive(ctx, h.actor("bruno"), receipt.ID); err != nil {
		t.Fatal(err)
	}

	return exam, contract, receipt
}

func TestList_ArchivedOnly(t *testing.T) {
	h := newHarness(t)
	exam, _, receipt := seedCaseFile(t, h)

	res, err := h.svc.Documents.List(context.Background(), "P", ListFilter{Status: string(model.StatusArchived)}, Page{})
	if err != nil {
		t.Fatal(err)
	}

	// Scenario C：仅返回归档文档，上传时间倒序
	if res.Total != 2 || len(res.Items) != 2 {
		t.Fatalf("total = %d, items = %d", res.Total, len(res.Items))
	}

	if res.Items[0].ID != receipt.ID || res.Items[1].ID != exam.ID {
		t.Errorf("order = %s, %s", res.Items[0].ID, res.Items[1].ID)
	}

	for _, item := range res.Items {
		if item.Status != model.StatusArchived {
			t.Errorf("%s has status %s", item.ID, item.Status)
		}

		if item.UploadedByName != "Ana Souza" || item.DeletedByName != "Bruno Lima" {
			t.Errorf("names = %q / %q", item.UploadedByName, item.DeletedByName)
		}
	}

	if res.Page != 1 || res.PageSize != 20 {
		t.Errorf("page defaults = %d/%d", res.Page, res.PageSize)
	}
}

func TestList_Filters(t *testing.T) {
	h := newHarness(t)
	_, contract, _ := seedCaseFile(t, h)

	ctx := context.Background()

	tests := []struct {
		name   string
		filter ListFilter
		page   Page
		want   int64
	}{
		{"all sentinel", ListFilter{Category: "all", Status: "Todos"}, Page{}, 3},
		{"category", ListFilter{Category: string(model.CategoryContract)}, Page{}, 1},
		{"domain", ListFilter{Domain: string(model.DomainFinancial)}, Page{}, 1},
		{"text", ListFilter{Text: "contr"}, Page{}, 1},
		{"origin", ListFilter{OriginModule: "Documentos"}, Page{}, 3},
		{"uploaded range", ListFilter{UploadedFrom: ptr(contract.UploadedAt), UploadedTo: ptr(contract.UploadedAt)}, Page{}, 1},
		{"paged", ListFilter{}, Page{Page: 2, PageSize: 2}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.svc.Documents.List(ctx, "P", tt.filter, tt.page)
			if err != nil {
				t.Fatal(err)
			}

			if res.Total != tt.want {
				t.Errorf("total = %d, want %d", res.Total, tt.want)
			}
		})
	}

	paged, err := h.svc.Documents.List(ctx, "P", ListFilter{}, Page{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatal(err)
	}

	if len(paged.Items) != 1 {
		t.Errorf("second page has %d items", len(paged.Items))
	}
}

func TestList_Ordering(t *testing.T) {
	h := newHarness(t)
	exam, contract, receipt := seedCaseFile(t, h)

	res, err := h.svc.Documents.List(context.Background(), "P", ListFilter{OrderBy: "title", OrderDir: "asc"}, Page{})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{contract.ID, exam.ID, receipt.ID}
	for i, id := range want {
		if res.Items[i].ID != id {
			t.Errorf("items[%d] = %s (%s), want %s", i, res.Items[i].ID, res.Items[i].Title, id)
		}
	}
}

func TestList_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)

	tests := []struct {
		name    string
		patient string
		filter  ListFilter
		page    Page
	}{
		{"no patient", "", ListFilter{}, Page{}},
		{"bad category", "P", ListFilter{Category: "Foto"}, Page{}},
		{"bad status", "P", ListFilter{Status: "Apagado"}, Page{}},
		{"bad order", "P", ListFilter{OrderBy: "size"}, Page{}},
		{"bad direction", "P", ListFilter{OrderDir: "sideways"}, Page{}},
		{"inverted range", "P", ListFilter{UploadedFrom: &from, UploadedTo: &to}, Page{}},
		{"negative page", "P", ListFilter{}, Page{Page: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.svc.Documents.List(ctx, tt.patient, tt.filter, tt.page); !errors.Is(err, ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestList_PageSizeClamped(t *testing.T) {
	h := newHarness(t)

	res, err := h.svc.Documents.List(context.Background(), "P", ListFilter{}, Page{PageSize: 5000})
	if err != nil {
		t.Fatal(err)
	}

	if res.PageSize != 100 {
		t.Errorf("page size = %d, want 100", res.PageSize)
	}
}

func TestList_DirectoryFailureDegrades(t *testing.T) {
	h := newHarness(t)
	h.upload("P", "RG", model.CategoryIdentification, model.DomainAdministrative)

	h.dir.Err = errors.New("directory offline")

	res, err := h.svc.Documents.List(context.Background(), "P", ListFilter{}, Page{})
	if err != nil {
		t.Fatalf("list must not fail when names cannot be resolved: %v", err)
	}

	if len(res.Items) != 1 || res.Items[0].UploadedByName != "" {
		t.Errorf("items = %+v", res.Items)
	}
}

func TestGetAuditTrail_NotFound(t *testing.T) {
	h := newHarness(t)

	if _, err := h.svc.Documents.GetAuditTrail(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
