package rule_test

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/yeisme/casefile/pkg/rule"
)

type createRequest struct {
	PatientID string `rule:"required"`
	Category  string `rule:"required,doc_category"`
	Domain    string `rule:"required,doc_domain"`
	Signature string `rule:"omitempty,signature_type"`
	Role      string `rule:"access_role"`
	PageSize  int    `rule:"omitempty,min=1,max=100"`
}

func TestEngine(t *testing.T) {
	if rule.Engine() == nil {
		t.Fatal("Engine() returned nil")
	}
}

func TestValidateStruct_DocumentRules(t *testing.T) {
	valid := createRequest{PatientID: "P", Category: "Exame", Domain: "Clinico", Signature: "Digital", Role: "editor"}

	if err := rule.ValidateStruct(valid); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	tests := []struct {
		name  string
		mut   func(*createRequest)
		field string
		tag   string
	}{
		{"missing patient", func(r *createRequest) { r.PatientID = "" }, "PatientID", "required"},
		{"unknown category", func(r *createRequest) { r.Category = "Foto" }, "Category", "doc_category"},
		{"unknown domain", func(r *createRequest) { r.Domain = "Outro" }, "Domain", "doc_domain"},
		{"unknown signature", func(r *createRequest) { r.Signature = "Carimbo" }, "Signature", "signature_type"},
		{"unknown role", func(r *createRequest) { r.Role = "root" }, "Role", "access_role"},
		{"page size too large", func(r *createRequest) { r.PageSize = 500 }, "PageSize", "max=100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mut(&req)

			msgs := rule.Messages(rule.ValidateStruct(req))
			if msgs[tt.field] != tt.tag {
				t.Errorf("messages = %v, want %s=%s", msgs, tt.field, tt.tag)
			}
		})
	}
}

func TestValidateVar_Filters(t *testing.T) {
	for _, v := range []string{"", "all", "Todos", "Arquivado", "Laudo", "Financeiro"} {
		if err := rule.ValidateVar(v, "doc_filter"); err != nil {
			t.Errorf("%q rejected: %v", v, err)
		}
	}

	if err := rule.ValidateVar("Apagado", "doc_filter"); err == nil {
		t.Error("unknown filter value accepted")
	}

	if err := rule.ValidateVar("Substituido", "doc_status"); err != nil {
		t.Errorf("status rejected: %v", err)
	}
}

func TestMessages_NonValidationError(t *testing.T) {
	if msgs := rule.Messages(nil); msgs != nil {
		t.Errorf("nil error produced %v", msgs)
	}
}

func TestRegisterValidation(t *testing.T) {
	err := rule.RegisterValidation("patient_ref", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && len(s) > 2 && s[:2] == "p-"
	})
	if err != nil {
		t.Fatalf("RegisterValidation: %v", err)
	}

	if err := rule.ValidateVar("p-42", "patient_ref"); err != nil {
		t.Errorf("valid ref rejected: %v", err)
	}

	if err := rule.ValidateVar("42", "patient_ref"); err == nil {
		t.Error("invalid ref accepted")
	}
}

func TestRegisterAlias(t *testing.T) {
	rule.RegisterAlias("doc_title", "required,max=10")

	if err := rule.ValidateVar("Laudo", "doc_title"); err != nil {
		t.Errorf("valid title rejected: %v", err)
	}

	if err := rule.ValidateVar("", "doc_title"); err == nil {
		t.Error("empty title accepted")
	}
}
