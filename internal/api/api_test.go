package api

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tamzidan/docreflow/internal/config"
	"github.com/tamzidan/docreflow/internal/pipeline"
	"github.com/tamzidan/docreflow/internal/rules"
)

const testAPIKey = "test-key"

func testServer(t *testing.T) (*Server, func()) {
	t.Helper()
	cfg := config.Config{
		DocreflowAPIKey: testAPIKey,
		WorkerCount:     1,
		MaxQueueSize:    4,
		MaxUploadBytes:  1 << 20,
		JobTTL:          time.Minute,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := pipeline.NewRunner(rules.Default(), nil, nil, log)
	orch := pipeline.NewOrchestrator(cfg, runner, log)

	ctx, cancel := context.WithCancel(context.Background())
	orch.Start(ctx)
	return NewServer(orch, log, cfg), func() {
		cancel()
		orch.Stop()
	}
}

func minimalDocx(t *testing.T) []byte {
	t.Helper()
	docXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>Isi dokumen uji.</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fw, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(docXML))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, docx []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "uji.docx")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(docx)
	mw.WriteField("skip_render", "true")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/reflow", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	return req
}

func TestHealthIsPublic(t *testing.T) {
	srv, stop := testServer(t)
	defer stop()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	srv, stop := testServer(t)
	defer stop()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reflow", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing auth status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reflow", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad key status = %d", rec.Code)
	}
}

func TestReflowUploadRejectsNonDocx(t *testing.T) {
	srv, stop := testServer(t)
	defer stop()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "notes.txt")
	fw.Write([]byte("plain text"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/reflow", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testAPIKey)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("txt upload status = %d", rec.Code)
	}
}

func TestReflowLifecycle(t *testing.T) {
	srv, stop := testServer(t)
	defer stop()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, minimalDocx(t)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("upload status = %d: %s", rec.Code, rec.Body.String())
	}

	var accepted struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatal(err)
	}
	if accepted.JobID == "" {
		t.Fatal("no job_id in response")
	}

	// Poll until the worker finishes.
	var status string
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/reflow/"+accepted.JobID+"/status", nil)
		req.Header.Set("Authorization", "Bearer "+testAPIKey)
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status endpoint = %d", rec.Code)
		}
		var snap struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			t.Fatal(err)
		}
		status = snap.Status
		if status == "detect_skipped" || status == "failed" {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if status != "detect_skipped" {
		t.Fatalf("final status = %q, want detect_skipped", status)
	}

	// Report is available in JSON and HTML.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reflow/"+accepted.JobID+"/report", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("report = %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/reflow/"+accepted.JobID+"/report", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set("Accept", "text/html")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte("<h1")) {
		t.Errorf("html report = %d: %s", rec.Code, rec.Body.String())
	}

	// The untouched document comes back byte-identical.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/reflow/"+accepted.JobID+"/document", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("document endpoint = %d", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), minimalDocx(t)) {
		t.Error("returned document differs from upload")
	}
}

func TestJobNotFound(t *testing.T) {
	srv, stop := testServer(t)
	defer stop()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reflow/nope/status", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown job status = %d", rec.Code)
	}
}
