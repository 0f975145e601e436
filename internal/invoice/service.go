package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/facture-ocr/internal/compliance"
	"github.com/zombor/facture-ocr/internal/extraction"
	"github.com/zombor/facture-ocr/internal/scanning"
)

var (
	// ErrUnsupportedType is returned for uploads that are neither images nor PDFs
	ErrUnsupportedType = errors.New("file must be an image (jpeg, png, heic) or a PDF")

	// ErrEmptyText is returned when text analysis is requested without text
	ErrEmptyText = errors.New("text is required")

	// ErrScanFailed wraps OCR failures on an otherwise accepted document
	ErrScanFailed = errors.New("scanning invoice")
)

// Extractor turns OCR output into an invoice record
type Extractor interface {
	Extract(in extraction.Input) (*extraction.Invoice, extraction.ConfidenceMap)
}

// Checker produces the compliance report of an invoice
type Checker interface {
	Check(ctx context.Context, inv *extraction.Invoice, text string) *compliance.ComplianceReport
}

// IDGenerator generates unique IDs for analyses
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now().UTC()
}

// Service handles invoice analyses
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	extractor   Extractor
	checker     Checker
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with UUID identifiers and the wall clock
func NewService(db DB, scanner scanning.Scanner, storage Storage, extractor Extractor, checker Checker) *Service {
	return NewServiceWithDeps(db, scanner, storage, extractor, checker, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, extractor Extractor, checker Checker, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		extractor:   extractor,
		checker:     checker,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
	safeExtension       = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)
)

const maxFilenameBase = 50

// sanitizeFilename strips special characters and truncates long phone-generated names
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	ext = strings.ToLower(ext)
	if !safeExtension.MatchString(ext) {
		ext = ""
	}

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = strings.TrimSpace(repeatedSpaces.ReplaceAllString(base, " "))
	if len(base) > maxFilenameBase {
		base = base[:maxFilenameBase]
	}
	if base == "" {
		base = "facture"
	}
	return base + ext
}

// SupportedContentType reports whether a document can be scanned
func SupportedContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	return strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "application/pdf")
}

// Analyze stores the document, scans it, extracts the invoice fields and
// checks compliance. The stored file is removed if any later step fails.
func (s *Service) Analyze(ctx context.Context, filename string, data []byte, contentType, language string) (*Analysis, error) {
	if !SupportedContentType(contentType) {
		return nil, ErrUnsupportedType
	}

	id := s.idGenerator.Generate()
	language = scanning.NormalizeLanguage(language)

	savedName, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	res, err := s.scanner.Scan(ctx, data, contentType, language)
	if err != nil {
		slog.Error("Failed to scan invoice",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"language", language,
			"error", err,
		)
		s.removeFile(savedName)
		return nil, fmt.Errorf("%w: %w", ErrScanFailed, err)
	}

	a := s.analyze(ctx, id, res.Input(), res.Language)
	a.Source = SourceUpload
	a.Filename = savedName
	a.ContentType = contentType

	if err := s.db.SaveAnalysis(a); err != nil {
		s.removeFile(savedName)
		return nil, fmt.Errorf("saving analysis to database: %w", err)
	}

	slog.Info("Analyzed invoice", "id", id, "filename", filename, "compliant", a.Compliance.ComplianceCheck.Compliant)
	return a, nil
}

// AnalyzeText runs extraction and compliance over already recognised text
func (s *Service) AnalyzeText(ctx context.Context, text, language string) (*Analysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	id := s.idGenerator.Generate()
	a := s.analyze(ctx, id, extraction.Input{Text: text}, scanning.NormalizeLanguage(language))
	a.Source = SourceText

	if err := s.db.SaveAnalysis(a); err != nil {
		return nil, fmt.Errorf("saving analysis to database: %w", err)
	}
	return a, nil
}

func (s *Service) analyze(ctx context.Context, id string, in extraction.Input, language string) *Analysis {
	inv, confidence := s.extractor.Extract(in)
	return &Analysis{
		ID:         id,
		Language:   language,
		Invoice:    inv,
		Confidence: confidence,
		Compliance: s.checker.Check(ctx, inv, in.Text),
		CreatedAt:  s.timeSource.Now(),
	}
}

// CheckRecord validates an externally produced invoice record and returns its
// compliance report. Nothing is persisted.
func (s *Service) CheckRecord(ctx context.Context, data []byte) (*compliance.ComplianceReport, error) {
	inv, err := compliance.DecodeRecord(data)
	if err != nil {
		return nil, err
	}
	return s.checker.Check(ctx, inv, inv.Text), nil
}

// Get retrieves an analysis by ID
func (s *Service) Get(id string) (*Analysis, error) {
	a, err := s.db.GetAnalysis(id)
	if err != nil {
		return nil, fmt.Errorf("getting analysis: %w", err)
	}
	return a, nil
}

// List returns all analyses, newest first
func (s *Service) List() ([]*Analysis, error) {
	analyses, err := s.db.ListAnalyses()
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	return analyses, nil
}

// Delete removes an analysis and its stored file
func (s *Service) Delete(id string) error {
	a, err := s.db.GetAnalysis(id)
	if err != nil {
		return fmt.Errorf("getting analysis for deletion: %w", err)
	}

	if a.HasFile() {
		s.removeFile(a.Filename)
	}

	if err := s.db.DeleteAnalysis(id); err != nil {
		return fmt.Errorf("deleting analysis from database: %w", err)
	}
	return nil
}

// GetFile retrieves the original document of an analysis
func (s *Service) GetFile(id string) ([]byte, string, error) {
	a, err := s.db.GetAnalysis(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting analysis: %w", err)
	}
	if !a.HasFile() {
		return nil, "", fmt.Errorf("%w: no file for analysis %s", ErrNotFound, id)
	}

	data, err := s.storage.Get(a.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting invoice file: %w", err)
	}
	return data, a.ContentType, nil
}

func (s *Service) removeFile(name string) {
	if err := s.storage.Delete(name); err != nil {
		slog.Warn("Failed to delete file", "filename", name, "error", err)
	}
}
