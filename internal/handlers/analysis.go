package handlers

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"

	"github.com/BerylCAtieno/paper-genie/internal/models"
	"github.com/BerylCAtieno/paper-genie/internal/services"
	"github.com/BerylCAtieno/paper-genie/internal/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	modeUpload = "upload"
	modeURL    = "url"

	// room for the multipart envelope around the file
	formOverhead = 1 << 20
)

type AnalysisHandler struct {
	service        services.AnalysisService
	logger         *utils.Logger
	maxUploadBytes int64
	tmpl           *template.Template
	md             goldmark.Markdown
}

type pageData struct {
	Mode    string
	URL     string
	Warning string
	Error   string
	Result  *resultView
}

type resultView struct {
	HTML      template.HTML
	Source    string
	Model     string
	PageCount int
	Truncated bool
	Elapsed   string
}

type statusData struct {
	Pages int
	Chars int
	Error string
}

func NewAnalysisHandler(service services.AnalysisService, maxUploadBytes int64, logger *utils.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service:        service,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
		tmpl:           template.Must(template.ParseFS(templateFS, "templates/*.html")),
		md:             newMarkdown(),
	}
}

func (h *AnalysisHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "index.html", pageData{Mode: modeUpload})
}

// Extract runs acquisition and extraction for the currently selected source
// and returns a status fragment for the page.
func (h *AnalysisHandler) Extract(w http.ResponseWriter, r *http.Request) {
	data := pageData{}
	src, err := h.readSource(w, r, &data)
	if err != nil {
		h.renderStatus(w, err)
		return
	}
	if src == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ext, err := h.service.Extract(r.Context(), src)
	if err != nil {
		h.renderStatus(w, err)
		return
	}

	h.render(w, http.StatusOK, "status.html", statusData{Pages: ext.PageCount(), Chars: len([]rune(ext.Text))})
}

// Analyze is the trigger: it runs the full pipeline and renders the page in
// exactly one of the warning, error or result states.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	data := pageData{Mode: modeUpload}
	src, err := h.readSource(w, r, &data)
	if err == nil {
		var res *models.AnalysisResult
		res, err = h.service.Analyze(r.Context(), src)
		if err == nil {
			view, renderErr := h.resultView(res)
			if renderErr != nil {
				h.logger.Error("Failed to render markdown", "error", renderErr)
				err = utils.NewInternalError("Failed to render the analysis")
			} else {
				data.Result = view
				h.render(w, http.StatusOK, "index.html", data)
				return
			}
		}
	}

	appErr := utils.AsAppError(err)
	if appErr.IsWarning() {
		data.Warning = appErr.Message
	} else {
		data.Error = appErr.Message
	}

	h.logger.Warn("Analysis not completed",
		"request_id", utils.RequestIDFromContext(r.Context()),
		"kind", appErr.Kind,
		"status", appErr.StatusCode,
		"error", appErr)

	h.render(w, appErr.StatusCode, "index.html", data)
}

// readSource returns the one source selected by the mode field, or nil when
// the selected input is empty.
func (h *AnalysisHandler) readSource(w http.ResponseWriter, r *http.Request, data *pageData) (*models.DocumentSource, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+formOverhead)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, h.tooLarge(err)
		}
		return nil, utils.NewInputError("Invalid form data")
	}

	data.Mode = modeUpload
	if r.FormValue("mode") == modeURL {
		data.Mode = modeURL
	}

	if data.Mode == modeURL {
		data.URL = strings.TrimSpace(r.FormValue("url"))
		if data.URL == "" {
			return nil, nil
		}
		return models.NewURLSource(data.URL), nil
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.NewInputError("Invalid form data")
	}
	defer file.Close()

	if strings.ToLower(filepath.Ext(header.Filename)) != ".pdf" {
		return nil, utils.NewInputError("Only PDF files are allowed")
	}

	content, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return nil, utils.NewInternalError("Failed to read file")
	}
	if int64(len(content)) > h.maxUploadBytes {
		return nil, h.tooLarge(nil)
	}

	return models.NewUploadSource(header.Filename, content), nil
}

func (h *AnalysisHandler) tooLarge(err error) error {
	return utils.NewTooLargeError(fmt.Sprintf("File size exceeds the %s limit", humanize.IBytes(uint64(h.maxUploadBytes))), err)
}

func (h *AnalysisHandler) resultView(res *models.AnalysisResult) (*resultView, error) {
	body, err := renderMarkdown(h.md, res.Text)
	if err != nil {
		return nil, err
	}
	return &resultView{
		HTML:      body,
		Source:    res.Source,
		Model:     res.Model,
		PageCount: res.PageCount,
		Truncated: res.Truncated,
		Elapsed:   res.Elapsed.Round(100 * time.Millisecond).String(),
	}, nil
}

func (h *AnalysisHandler) renderStatus(w http.ResponseWriter, err error) {
	appErr := utils.AsAppError(err)
	h.render(w, appErr.StatusCode, "status.html", statusData{Error: appErr.Message})
}

func (h *AnalysisHandler) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("Failed to render template", "template", name, "error", err)
	}
}
