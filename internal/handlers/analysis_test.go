package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/paper-genie/internal/acquirer"
	"github.com/BerylCAtieno/paper-genie/internal/analyzer"
	"github.com/BerylCAtieno/paper-genie/internal/config"
	"github.com/BerylCAtieno/paper-genie/internal/pdftest"
	"github.com/BerylCAtieno/paper-genie/internal/services"
	"github.com/BerylCAtieno/paper-genie/internal/utils"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type fakeCompleter struct {
	calls   atomic.Int32
	prompts []string
	answer  string
	err     error
}

func (f *fakeCompleter) Complete(_ context.Context, p string) (string, error) {
	f.calls.Add(1)
	f.prompts = append(f.prompts, p)
	return f.answer, f.err
}

type testEnv struct {
	router    *mux.Router
	completer *fakeCompleter
	fetches   atomic.Int32
	remote    map[string][]byte
}

func newTestEnv(t *testing.T, maxUploadBytes int64) *testEnv {
	t.Helper()
	env := &testEnv{
		completer: &fakeCompleter{answer: "1. SUMMARY:\n\nA **short** paper."},
		remote:    map[string][]byte{},
	}

	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		env.fetches.Add(1)
		body, ok := env.remote[r.URL.String()]
		if !ok {
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Status:     "404 Not Found",
				Body:       io.NopCloser(strings.NewReader("not found")),
				Header:     http.Header{},
				Request:    r,
			}, nil
		}
		return &http.Response{
			StatusCode:    http.StatusOK,
			Status:        "200 OK",
			Body:          io.NopCloser(bytes.NewReader(body)),
			ContentLength: int64(len(body)),
			Header:        http.Header{"Content-Type": []string{"application/pdf"}},
			Request:       r,
		}, nil
	})}

	cfg := &config.Config{LLMProvider: config.ProviderGemini, GeminiModel: "gemini-1.5-flash-latest"}
	svc := services.NewService(acquirer.New(client, time.Second, 1<<20), env.completer, cfg, utils.NewNopLogger())
	h := NewAnalysisHandler(svc, maxUploadBytes, utils.NewNopLogger())

	r := mux.NewRouter()
	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/extract", h.Extract).Methods(http.MethodPost)
	r.HandleFunc("/analyze", h.Analyze).Methods(http.MethodPost)
	env.router = r
	return env
}

func formRequest(t *testing.T, path string, fields map[string]string, filename string, file []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Paper Genie")
	assert.Contains(t, body, "Analyze Paper")
	assert.Contains(t, body, `placeholder="https://example.com/research-paper.pdf"`)
	assert.NotContains(t, body, "Analysis Results")
	assert.NotContains(t, body, services.MissingSourceMessage)
}

func TestAnalyzeUploadedHelloWorld(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	req := formRequest(t, "/analyze", map[string]string{"mode": "upload"}, "hello.pdf", pdftest.Build("Hello World"))
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.EqualValues(t, 1, env.completer.calls.Load())
	assert.Contains(t, env.completer.prompts[0], "Hello World")

	body := rec.Body.String()
	assert.Contains(t, body, "Analysis Results")
	assert.Contains(t, body, "<strong>short</strong>")
	assert.Contains(t, body, "hello.pdf")
	assert.Zero(t, env.fetches.Load())
}

func TestAnalyzeMissingURLShowsDownloadError(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	req := formRequest(t, "/analyze", map[string]string{"mode": "url", "url": "https://example.com/missing.pdf"}, "", nil)
	rec := env.do(req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Error downloading PDF")
	assert.Contains(t, body, "404")
	assert.NotContains(t, body, "Analysis Results")
	assert.Contains(t, body, `value="https://example.com/missing.pdf"`)
	assert.EqualValues(t, 1, env.fetches.Load())
	assert.Zero(t, env.completer.calls.Load())
}

func TestAnalyzeURL(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	env.remote["https://example.com/paper.pdf"] = pdftest.Build("Abstract", "Method")

	req := formRequest(t, "/analyze", map[string]string{"mode": "url", "url": "https://example.com/paper.pdf"}, "", nil)
	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Analysis Results")
	assert.Contains(t, env.completer.prompts[0], "Abstract\nMethod")
}

func TestAnalyzeWithoutSourceWarnsOnce(t *testing.T) {
	cases := map[string]map[string]string{
		"upload mode, no file": {"mode": "upload"},
		"url mode, blank url":  {"mode": "url", "url": "   "},
		"no mode":              {},
	}

	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t, 1<<20)

			rec := env.do(formRequest(t, "/analyze", fields, "", nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, 1, strings.Count(rec.Body.String(), services.MissingSourceMessage))
			assert.NotContains(t, rec.Body.String(), "Analysis Results")
			assert.Zero(t, env.fetches.Load())
			assert.Zero(t, env.completer.calls.Load())
		})
	}
}

func TestAnalyzeURLModeIgnoresUploadedFile(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	req := formRequest(t, "/analyze", map[string]string{"mode": "url"}, "hello.pdf", pdftest.Build("Hello World"))
	rec := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, env.completer.calls.Load())
}

func TestAnalyzeRejectsNonPDFUpload(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	rec := env.do(formRequest(t, "/analyze", map[string]string{"mode": "upload"}, "notes.docx", []byte("PK")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Only PDF files are allowed")
	assert.Zero(t, env.completer.calls.Load())
}

func TestAnalyzeCorruptPDF(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	rec := env.do(formRequest(t, "/analyze", map[string]string{"mode": "upload"}, "broken.pdf", []byte("%PDF-1.7 truncated")))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "alert-error")
	assert.Zero(t, env.completer.calls.Load())
}

func TestAnalyzeUploadTooLarge(t *testing.T) {
	env := newTestEnv(t, 1024)

	rec := env.do(formRequest(t, "/analyze", map[string]string{"mode": "upload"}, "big.pdf", bytes.Repeat([]byte("x"), 4096)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "1.0 KiB")
	assert.Zero(t, env.completer.calls.Load())
}

func TestAnalyzeCompletionError(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	env.completer.err = &analyzer.APIError{StatusCode: http.StatusUnauthorized, Message: "bad key"}

	rec := env.do(formRequest(t, "/analyze", map[string]string{"mode": "upload"}, "a.pdf", pdftest.Build("text")))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "rejected the API credential")
	assert.NotContains(t, rec.Body.String(), "Analysis Results")
}

func TestAnalyzeDoesNotRenderModelHTML(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	env.completer.answer = "<img src=x onerror=alert(1)>\n\n# Title"

	rec := env.do(formRequest(t, "/analyze", map[string]string{"mode": "upload"}, "a.pdf", pdftest.Build("text")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "onerror=alert(1)")
	assert.Contains(t, rec.Body.String(), "<h1>Title</h1>")
}

func TestExtractStatus(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	rec := env.do(formRequest(t, "/extract", map[string]string{"mode": "upload"}, "p.pdf", pdftest.Build("one", "two", "three")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Extracted 3 pages")
	assert.Zero(t, env.completer.calls.Load())
}

func TestExtractStatusErrors(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	rec := env.do(formRequest(t, "/extract", map[string]string{"mode": "url", "url": "https://example.com/missing.pdf"}, "", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error downloading PDF")

	rec = env.do(formRequest(t, "/extract", map[string]string{"mode": "upload"}, "", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	assert.Zero(t, env.completer.calls.Load())
}
