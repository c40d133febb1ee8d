package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BerylCAtieno/paper-genie/internal/acquirer"
	"github.com/BerylCAtieno/paper-genie/internal/analyzer"
	"github.com/BerylCAtieno/paper-genie/internal/config"
	"github.com/BerylCAtieno/paper-genie/internal/extractor"
	"github.com/BerylCAtieno/paper-genie/internal/models"
	"github.com/BerylCAtieno/paper-genie/internal/prompt"
	"github.com/BerylCAtieno/paper-genie/internal/utils"
)

const MissingSourceMessage = "Please provide a research paper (upload or URL)."

type AnalysisService interface {
	// Extract acquires the source and returns its text. It is what the page
	// calls as soon as a source is selected.
	Extract(ctx context.Context, src *models.DocumentSource) (*models.Extraction, error)
	// Analyze runs the whole pipeline for one trigger.
	Analyze(ctx context.Context, src *models.DocumentSource) (*models.AnalysisResult, error)
}

type analysisService struct {
	acquirer       acquirer.Acquirer
	extract        func([]byte) (*models.Extraction, error)
	completer      analyzer.Completer
	model          string
	maxPromptChars int
	logger         *utils.Logger
}

func NewService(acq acquirer.Acquirer, completer analyzer.Completer, cfg *config.Config, logger *utils.Logger) AnalysisService {
	return &analysisService{
		acquirer:       acq,
		extract:        extractor.ExtractPDF,
		completer:      completer,
		model:          cfg.Model(),
		maxPromptChars: cfg.MaxPromptChars,
		logger:         logger,
	}
}

func (s *analysisService) Extract(ctx context.Context, src *models.DocumentSource) (*models.Extraction, error) {
	if src == nil {
		return nil, utils.NewInputError(MissingSourceMessage)
	}

	log := s.logger.With("request_id", utils.RequestIDFromContext(ctx), "source", src.Kind, "label", src.Label())

	data, err := s.acquirer.Acquire(ctx, src)
	if err != nil {
		log.Warn("Failed to acquire document", "error", err)
		return nil, acquisitionError(err)
	}

	ext, err := s.extract(data)
	if err != nil {
		log.Warn("Failed to extract text", "error", err, "bytes", len(data))
		return nil, extractionError(err)
	}

	log.Info("Text extracted", "pages", ext.PageCount(), "text_length", len(ext.Text))

	return ext, nil
}

func (s *analysisService) Analyze(ctx context.Context, src *models.DocumentSource) (*models.AnalysisResult, error) {
	ext, err := s.Extract(ctx, src)
	if err != nil {
		return nil, err
	}

	log := s.logger.With("request_id", utils.RequestIDFromContext(ctx), "model", s.model)

	text, truncated := truncateRunes(ext.Text, s.maxPromptChars)
	if truncated {
		log.Warn("Extracted text truncated", "limit", s.maxPromptChars, "text_length", len(ext.Text))
	}

	start := time.Now()
	log.Info("Starting paper analysis", "pages", ext.PageCount(), "prompt_text_length", len(text))

	answer, err := s.completer.Complete(ctx, prompt.Build(text))
	if err != nil {
		log.Error("Failed to analyze paper", "error", err)
		return nil, analyzer.CompletionError(err)
	}

	elapsed := time.Since(start)
	log.Info("Paper analyzed successfully", "answer_length", len(answer), "elapsed_ms", elapsed.Milliseconds())

	return &models.AnalysisResult{
		RequestID: utils.RequestIDFromContext(ctx),
		Source:    src.Label(),
		Model:     s.model,
		PageCount: ext.PageCount(),
		Truncated: truncated,
		Text:      answer,
		Elapsed:   elapsed,
	}, nil
}

func acquisitionError(err error) error {
	switch {
	case errors.Is(err, acquirer.ErrNoFile):
		return utils.NewInputError("The uploaded file is empty. " + MissingSourceMessage)
	case errors.Is(err, acquirer.ErrInvalidURL):
		return utils.NewAcquisitionError("Error downloading PDF: enter a full http:// or https:// address.", err)
	case errors.Is(err, acquirer.ErrTooLarge):
		return utils.NewAcquisitionError("Error downloading PDF: the document is larger than the allowed size.", err)
	}

	var statusErr *acquirer.StatusError
	if errors.As(err, &statusErr) {
		return utils.NewAcquisitionError(fmt.Sprintf("Error downloading PDF: %s.", statusErr.Error()), err)
	}

	return utils.NewAcquisitionError(fmt.Sprintf("Error downloading PDF: %v", err), err)
}

func extractionError(err error) error {
	switch {
	case errors.Is(err, extractor.ErrNotPDF):
		return utils.NewExtractionError("The document is not a PDF file.", err)
	case errors.Is(err, extractor.ErrNoText):
		return utils.NewExtractionError("No text could be extracted from the PDF. It may be scanned or image-only.", err)
	case errors.Is(err, extractor.ErrNoPages):
		return utils.NewExtractionError("The PDF has no pages.", err)
	default:
		return utils.NewExtractionError("The PDF could not be read. It may be damaged or encrypted.", err)
	}
}

// truncateRunes cuts text to at most max runes. max <= 0 means no limit.
func truncateRunes(text string, max int) (string, bool) {
	if max <= 0 || len(text) <= max {
		return text, false
	}

	n := 0
	for i := range text {
		if n == max {
			return text[:i], true
		}
		n++
	}
	return text, false
}
