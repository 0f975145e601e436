package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/facture-ocr/internal/compliance"
	"github.com/zombor/facture-ocr/internal/extraction"
	"github.com/zombor/facture-ocr/internal/invoice"
	"github.com/zombor/facture-ocr/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error: loading .env: %v\n", err)
		os.Exit(1)
	}

	fs := ff.NewFlagSet("facture-ocr")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		dbPath      = fs.StringLong("db", "facture-ocr.db", "Database file path")
		storagePath = fs.StringLong("storage", "./invoices", "Storage directory path for uploaded documents")
		scannerType = fs.StringLong("scanner", "tesseract", "Scanner type: 'tesseract', 'gemini' or 'ollama'")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "llava", "Ollama vision model name (e.g., llava, qwen2-vl)")
		sireneKey   = fs.StringLong("sirene-key", "", "INSEE Sirene API token (SIRET enrichment is skipped without it)")
		sireneURL   = fs.StringLong("sirene-url", compliance.DefaultSireneURL, "INSEE Sirene API base URL")
		viesURL     = fs.StringLong("vies-url", compliance.DefaultVIESURL, "VIES checkVat service URL (empty disables VAT validation)")
		timeout     = fs.DurationLong("enrichment-timeout", compliance.DefaultTimeout, "Timeout for each Sirene or VIES call")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		logLevel    = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		logFormat   = fs.StringLong("log-format", "text", "Log format: 'text' or 'json'")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("FACTURE_OCR"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	logger, err := newLogger(os.Stderr, *logLevel, *logFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	slog.Info("Initializing database...", "path", *dbPath)
	db, err := invoice.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	scanner, err := newScanner(*scannerType, *geminiKey, *geminiModel, *ollamaURL, *ollamaModel)
	if err != nil {
		slog.Error("Failed to initialize scanner", "type", *scannerType, "error", err)
		os.Exit(1)
	}
	defer scanner.Close()

	slog.Info("Initializing storage...", "path", *storagePath)
	store, err := invoice.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	checker := newChecker(*sireneKey, *sireneURL, *viesURL, *timeout)
	service := invoice.NewService(db, scanner, store, extraction.NewExtractor(nil), checker)

	basicAuth := invoice.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := invoice.NewServer(service, basicAuth)

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid log format %q (valid: text, json)", format)
}

func newScanner(kind, geminiKey, geminiModel, ollamaURL, ollamaModel string) (scanning.Scanner, error) {
	switch kind {
	case "tesseract":
		slog.Info("Initializing Tesseract scanner...")
		return scanning.NewTesseract()
	case "gemini":
		if geminiKey == "" {
			geminiKey = os.Getenv("GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini scanner...", "model", geminiModel)
		return scanning.NewGemini(geminiKey, geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", ollamaURL, "model", ollamaModel)
		return scanning.NewOllama(ollamaURL, ollamaModel), nil
	}
	return nil, fmt.Errorf("invalid scanner type %q (valid: tesseract, gemini, ollama)", kind)
}

// newChecker wires the optional enrichment clients
func newChecker(sireneKey, sireneURL, viesURL string, timeout time.Duration) *compliance.Checker {
	var registry compliance.Registry
	if sireneKey != "" {
		registry = compliance.NewSireneClient(sireneURL, sireneKey)
	} else {
		slog.Info("Sirene API key not set, SIRET enrichment disabled")
	}

	var vies compliance.VATValidator
	if viesURL != "" {
		vies = compliance.NewVIESClient(viesURL)
	}

	return compliance.NewChecker(registry, vies, timeout)
}
