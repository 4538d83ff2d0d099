package handle

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/casefile/pkg/configs"
	"github.com/yeisme/casefile/pkg/internal/model"
	"github.com/yeisme/casefile/pkg/internal/repository"
	"github.com/yeisme/casefile/pkg/internal/router"
	"github.com/yeisme/casefile/pkg/internal/service"
	"github.com/yeisme/casefile/pkg/internal/testutil"
	"github.com/yeisme/casefile/pkg/internal/types"
	"github.com/yeisme/casefile/pkg/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type server struct {
	t     *testing.T
	e     *gin.Engine
	blobs *testutil.MemoryBlobStore
}

func newServer(t *testing.T) *server {
	t.Helper()

	db := testutil.NewTestDB(t)
	testutil.SeedPatient(t, db, "P", "tenant-1")
	testutil.SeedUser(t, db, "ana", "Ana Souza")

	parties := repository.NewParties(db)
	blobs := testutil.NewMemoryBlobStore()

	svc := service.New(service.Deps{
		Documents: repository.NewDocuments(db),
		Events:    repository.NewEvents(db),
		Skips:     repository.NewSkips(db),
		Blobs:     blobs,
		Directory: parties,
		Clock:     testutil.FixedClock(),
	}, service.Config{MaxUploadBytes: 1 << 20})

	e := gin.New()
	e.Use(middleware.AuthMiddleware(configs.AuthConfig{
		Enabled:    true,
		UserHeader: "X-User",
		RoleHeader: "X-User-Role",
	}))
	router.RegisterDocumentRoutes(e.Group("/api/v1"), NewDocumentHandlers(svc, parties))

	return &server{t: t, e: e, blobs: blobs}
}

func (s *server) do(req *http.Request) *httptest.ResponseRecorder {
	if req.Header.Get("X-User") == "" {
		req.Header.Set("X-User", "ana")
	}

	w := httptest.NewRecorder()
	s.e.ServeHTTP(w, req)

	return w
}

func (s *server) json(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	return s.do(req)
}

func (s *server) multipart(path string, fields map[string]string, fileName string) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}

	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			s.t.Fatal(err)
		}

		_, _ = fw.Write([]byte("%PDF-1.4 " + fileName))
	}

	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return s.do(req)
}

func (s *server) upload() string {
	s.t.Helper()

	w := s.multipart("/api/v1/patients/P/documents", map[string]string{
		"category": string(model.CategoryIdentification),
		"domain":   string(model.DomainAdministrative),
		"tags":     "rg, frente",
	}, "rg.pdf")
	if w.Code != http.StatusCreated {
		s.t.Fatalf("upload status = %d, body %s", w.Code, w.Body)
	}

	var res types.DocumentResult
	decode(s.t, w, &res)

	if !res.Success || res.DocumentID == "" {
		s.t.Fatalf("upload result = %+v", res)
	}

	return res.DocumentID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := sonic.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body, err)
	}
}

func TestUpload_AndDetails(t *testing.T) {
	s := newServer(t)
	id := s.upload()

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+id, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("details status = %d, body %s", w.Code, w.Body)
	}

	var res types.DocumentResponse
	decode(t, w, &res)

	doc := res.Document
	if doc.Category != model.CategoryIdentification || doc.Status != model.StatusActive || doc.Version != 1 {
		t.Errorf("document = %+v", doc.Document)
	}

	if strings.Join(doc.Tags, "|") != "rg|frente" {
		t.Errorf("tags = %v", doc.Tags)
	}

	if doc.UploadedByName != "Ana Souza" {
		t.Errorf("uploaded_by_name = %q", doc.UploadedByName)
	}

	if _, ok := s.blobs.Object(doc.StoragePath); !ok {
		t.Errorf("blob %s not stored", doc.StoragePath)
	}
}

func TestUpload_BadRequests(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name   string
		fields map[string]string
		file   string
		detail string
	}{
		{"missing file", map[string]string{"category": "Exame", "domain": "Clinico"}, "", ""},
		{"unknown category", map[string]string{"category": "Foto", "domain": "Clinico"}, "x.pdf", "Category"},
		{"missing domain", map[string]string{"category": "Exame"}, "x.pdf", "Domain"},
		{"unknown signature", map[string]string{"category": "Exame", "domain": "Clinico", "signature_type": "Carimbo"}, "x.pdf", "SignatureType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.multipart("/api/v1/patients/P/documents", tt.fields, tt.file)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body %s", w.Code, w.Body)
			}

			var res types.ErrorResponse
			decode(t, w, &res)

			if res.Success || res.Kind != string(service.KindValidation) {
				t.Errorf("response = %+v", res)
			}

			if tt.detail != "" && res.Details[tt.detail] == "" {
				t.Errorf("details = %v, want entry for %s", res.Details, tt.detail)
			}
		})
	}
}

func TestUpload_UnknownPatient(t *testing.T) {
	s := newServer(t)

	w := s.multipart("/api/v1/patients/nobody/documents",
		map[string]string{"category": "Exame", "domain": "Clinico"}, "x.pdf")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
}

func TestUnauthenticated(t *testing.T) {
	s := newServer(t)

	w := httptest.NewRecorder()
	s.e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/patients/P/documents", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestUploadVersion_AndHistory(t *testing.T) {
	s := newServer(t)
	first := s.upload()

	w := s.multipart("/api/v1/documents/"+first+"/versions", map[string]string{"title": "RG atualizado"}, "rg-v2.pdf")
	if w.Code != http.StatusCreated {
		t.Fatalf("version status = %d, body %s", w.Code, w.Body)
	}

	var created types.DocumentResult
	decode(t, w, &created)

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+created.DocumentID+"/versions", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d", w.Code)
	}

	var hist types.VersionsResponse
	decode(t, w, &hist)

	if len(hist.Versions) != 2 {
		t.Fatalf("versions = %d, want 2", len(hist.Versions))
	}

	if hist.Versions[0].Status != model.StatusSuperseded || hist.Versions[1].Title != "RG atualizado" {
		t.Errorf("history = %+v", hist.Versions)
	}

	// 前序版本已被替换
	w = s.multipart("/api/v1/documents/"+first+"/versions", nil, "rg-v3.pdf")
	if w.Code != http.StatusConflict {
		t.Fatalf("stale version status = %d, body %s", w.Code, w.Body)
	}

	w = s.multipart("/api/v1/documents/missing/versions", nil, "rg-v3.pdf")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing predecessor status = %d", w.Code)
	}
}

func TestPatch(t *testing.T) {
	s := newServer(t)
	id := s.upload()

	w := s.json(http.MethodPatch, "/api/v1/documents/"+id,
		`{"title":"Identidade","is_verified":true,"contract_id":null,"unknown":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body %s", w.Code, w.Body)
	}

	var res types.UpdatedResponse
	decode(t, w, &res)

	if res.Document.Title != "Identidade" || !res.Document.IsVerified {
		t.Errorf("document = %+v", res.Document)
	}

	tests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"empty body", id, "", http.StatusOK},
		{"malformed json", id, `{"title":`, http.StatusBadRequest},
		{"superseded via patch", id, `{"status":"Substituido"}`, http.StatusBadRequest},
		{"unknown category", id, `{"category":"Foto"}`, http.StatusBadRequest},
		{"missing document", "missing", `{"title":"x"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.json(http.MethodPatch, "/api/v1/documents/"+tt.id, tt.body)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d, body %s", w.Code, tt.status, w.Body)
			}
		})
	}
}

func TestArchive_AndList(t *testing.T) {
	s := newServer(t)
	id := s.upload()
	s.upload()

	w := s.do(httptest.NewRequest(http.MethodDelete, "/api/v1/documents/"+id, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("archive status = %d, body %s", w.Code, w.Body)
	}

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/patients/P/documents?status=Arquivado", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, body %s", w.Code, w.Body)
	}

	var list types.ListDocumentsResponse
	decode(t, w, &list)

	if list.Total != 1 || len(list.Items) != 1 || list.Items[0].ID != id {
		t.Fatalf("archived list = %+v", list.ListResult)
	}

	if list.Items[0].DeletedByName != "Ana Souza" {
		t.Errorf("deleted_by_name = %q", list.Items[0].DeletedByName)
	}

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/patients/P/documents?category=Todos&tags=frente", nil))
	decode(t, w, &list)

	if list.Total != 2 {
		t.Errorf("total = %d, want 2", list.Total)
	}

	for _, q := range []string{"category=Foto", "order_by=size", "page=0&page_size=-1"} {
		w = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/patients/P/documents?"+q, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", q, w.Code)
		}
	}
}

func TestList_ETag(t *testing.T) {
	s := newServer(t)
	s.upload()

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/patients/P/documents", nil))

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/P/documents", nil)
	req.Header.Set("If-None-Match", etag)

	if w = s.do(req); w.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", w.Code)
	}
}

func TestEvents(t *testing.T) {
	s := newServer(t)
	id := s.upload()

	s.do(httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+id, nil))

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+id+"/events", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("events status = %d", w.Code)
	}

	var res types.EventsResponse
	decode(t, w, &res)

	actions := make([]string, 0, len(res.Events))
	for _, e := range res.Events {
		actions = append(actions, string(e.Action))
	}

	if got := strings.Join(actions, ","); got != "document.view,document.create" {
		t.Errorf("actions = %s", got)
	}

	if res.Events[0].ActorName != "Ana Souza" {
		t.Errorf("actor_name = %q", res.Events[0].ActorName)
	}

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/documents/missing/events", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("missing status = %d", w.Code)
	}
}

func TestIssueLink(t *testing.T) {
	s := newServer(t)
	id := s.upload()

	w := s.json(http.MethodPost, "/api/v1/documents/links", `{"ref":"`+id+`","action":"download"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("link status = %d, body %s", w.Code, w.Body)
	}

	var res types.LinkResponse
	decode(t, w, &res)

	if !strings.Contains(res.URL, "download=rg.pdf") || res.ExpiresIn != 900 {
		t.Errorf("link = %+v", res)
	}

	if w = s.json(http.MethodPost, "/api/v1/documents/links", `{"ref":"`+id+`","action":"share"}`); w.Code != http.StatusBadRequest {
		t.Errorf("bad action status = %d", w.Code)
	}

	s.blobs.FailLink = true

	if w = s.json(http.MethodPost, "/api/v1/documents/links", `{"ref":"`+id+`","action":"preview"}`); w.Code != http.StatusBadGateway {
		t.Errorf("blob failure status = %d", w.Code)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrValidation, http.StatusBadRequest},
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrOwnership, http.StatusForbidden},
		{service.ErrStorage, http.StatusBadGateway},
		{service.ErrPersistence, http.StatusInternalServerError},
		{service.ErrConflict, http.StatusConflict},
		{errMissingFile, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusOf(tt.err); got != tt.want {
			t.Errorf("StatusOf(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
