package handler

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"nsn-odds-data/internal/domain"
	"nsn-odds-data/internal/service"

	"github.com/google/uuid"
)

func newFilesRouter(files *filesStub, jobs JobQueue, settings Settings) http.Handler {
	h := New(testTracer, Services{
		Files:   files,
		Jobs:    jobs,
		Regions: testRegions(),
	}, settings)
	return newTestRouter(h, Middleware{})
}

func TestGenerateQueued(t *testing.T) {
	files := &filesStub{}
	jobs := &jobsStub{}
	r := newFilesRouter(files, jobs, Settings{})

	w := doRequest(r, http.MethodPost, "/generate", strings.NewReader(`{"event_id":"123","region":"br"}`), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body GenerateResponse
	decodeBody(t, w, &body)
	if body.Status != "queued" || body.RequestID != files.rd.ID || body.Path != files.file.Path {
		t.Fatalf("unexpected response %+v", body)
	}
	if files.generated != 0 {
		t.Fatalf("expected no inline generation, got %d", files.generated)
	}
	if len(jobs.jobs) != 1 || jobs.jobs[0].StaticFileID != files.file.ID {
		t.Fatalf("unexpected jobs %+v", jobs.jobs)
	}
	if got := jobs.jobs[0].Bookmakers; len(got) != 2 || got[0] != "betano" {
		t.Fatalf("expected region bookmakers on the job, got %v", got)
	}
}

func TestGenerateInline(t *testing.T) {
	files := &filesStub{}
	r := newFilesRouter(files, nil, Settings{})

	w := doRequest(r, http.MethodPost, "/generate", strings.NewReader(`{"event_id":"123","bookmakers":["bet365"]}`), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body GenerateResponse
	decodeBody(t, w, &body)
	if body.Status != "completed" {
		t.Fatalf("expected completed, got %s", body.Status)
	}
	if files.generated != 1 || len(files.lastBooks) != 1 || files.lastBooks[0] != "bet365" {
		t.Fatalf("unexpected generation: %d %v", files.generated, files.lastBooks)
	}
}

func TestGenerateRejectsBookmakerOutsideRegion(t *testing.T) {
	files := &filesStub{}
	r := newFilesRouter(files, &jobsStub{}, Settings{})

	w := doRequest(r, http.MethodPost, "/generate", strings.NewReader(`{"event_id":"123","region":"br","bookmakers":["bet365"]}`), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if files.rd != nil {
		t.Fatal("expected no records to be created")
	}
}

func TestGenerateBadBody(t *testing.T) {
	r := newFilesRouter(&filesStub{}, nil, Settings{})

	w := doRequest(r, http.MethodPost, "/generate", strings.NewReader(`{`), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	w = doRequest(r, http.MethodPost, "/generate", strings.NewReader(`{"event_id":" "}`), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank event, got %d", w.Code)
	}
}

func TestGetFileInfo(t *testing.T) {
	hash := "0123456789abcdef0123456789abcdef"
	files := &filesStub{info: &domain.StaticFile{Path: "2026/03/odds-1-abcd1234.json", UpdatedAt: time.Now()}}
	r := newFilesRouter(files, nil, Settings{})
	target := "/files/" + uuid.NewString()

	w := doRequest(r, http.MethodGet, target, nil, nil)
	var body FileInfoResponse
	decodeBody(t, w, &body)
	if w.Code != http.StatusOK || body.Status != "pending" || body.Hash != nil {
		t.Fatalf("expected pending, got %d %+v", w.Code, body)
	}

	files.info.Hash = &hash
	w = doRequest(r, http.MethodGet, target, nil, nil)
	decodeBody(t, w, &body)
	if body.Status != "completed" || body.Hash == nil || *body.Hash != hash {
		t.Fatalf("expected completed, got %+v", body)
	}
}

func TestGetFileInfoErrors(t *testing.T) {
	r := newFilesRouter(&filesStub{}, nil, Settings{})

	if w := doRequest(r, http.MethodGet, "/files/not-a-uuid", nil, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/files/"+uuid.NewString(), nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestServeStatic(t *testing.T) {
	files := &filesStub{data: []byte(`{"request_id":"x"}`)}
	r := newFilesRouter(files, nil, Settings{})

	w := doRequest(r, http.MethodGet, "/static/2026/03/odds-1-abcd1234.json", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if w.Body.String() != `{"request_id":"x"}` {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestCleanDataToken(t *testing.T) {
	files := &filesStub{cleanup: &service.CleanupResult{RequestsDeleted: 3, FilesDeleted: 2}}
	r := newFilesRouter(files, nil, Settings{CleanDataToken: "s3cret", RetentionDays: 7})

	if w := doRequest(r, http.MethodPost, "/clean-data/wrong", nil, nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}

	w := doRequest(r, http.MethodPost, "/clean-data/s3cret", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body service.CleanupResult
	decodeBody(t, w, &body)
	if body.RequestsDeleted != 3 || files.cleanupDays != 7 {
		t.Fatalf("unexpected cleanup %+v days=%d", body, files.cleanupDays)
	}
}

func TestCleanDataDisabledWithoutToken(t *testing.T) {
	r := newFilesRouter(&filesStub{}, nil, Settings{})

	if w := doRequest(r, http.MethodPost, "/clean-data/", nil, nil); w.Code == http.StatusOK {
		t.Fatal("expected clean-data to be rejected")
	}
	if w := doRequest(r, http.MethodPost, "/clean-data/anything", nil, nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}
