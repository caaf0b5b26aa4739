package ingest

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"finsightai/internal/models"
	"finsightai/pkg/config"
	"finsightai/pkg/embedding"

	"go.uber.org/zap"
)

// QuarantineDirName is the subdirectory of the source tree that holds
// files which failed processing; it is excluded from scans.
const QuarantineDirName = "quarantine"

// Outcome is the terminal state of one file's ingestion.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeSkipped
	OutcomeQuarantined
)

// ChunkStore is the slice of the persistence gateway the orchestrator
// needs. Implementations must be safe for concurrent use.
type ChunkStore interface {
	Upsert(ctx context.Context, chunk *models.DocumentChunk) (bool, error)
	DeleteBySource(ctx context.Context, sourceURL string) (int64, error)
}

// Report is the end-of-run summary.
type Report struct {
	Processed   int
	Skipped     int
	Quarantined int
}

// Orchestrator drives parse, chunk, embed and persist per file over a
// bounded worker pool. Beyond the store and the read-only ticker lookup
// there is no state shared between files.
type Orchestrator struct {
	parser   *Parser
	chunker  *Chunker
	embedder embedding.Client
	store    ChunkStore
	resolver map[string]int64
	cfg      config.IngestConfig
	logger   *zap.Logger
}

func NewOrchestrator(
	parser *Parser,
	chunker *Chunker,
	embedder embedding.Client,
	store ChunkStore,
	resolver map[string]int64,
	cfg config.IngestConfig,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		parser:   parser,
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run scans the source tree and ingests every file it finds, fanning out
// over the configured number of workers. Each file lands in exactly one
// outcome bucket.
func (o *Orchestrator) Run(ctx context.Context) (Report, error) {
	files, err := o.scanSourceDir()
	if err != nil {
		return Report{}, err
	}

	o.logger.Info("Starting document ingestion run",
		zap.String("source_dir", o.cfg.SourceDir),
		zap.Int("files", len(files)),
		zap.Int("workers", o.cfg.Workers),
	)

	workers := o.cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	paths := make(chan string)
	outcomes := make(chan Outcome)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				outcomes <- o.IngestFile(ctx, path)
			}
		}()
	}

	go func() {
		for _, f := range files {
			paths <- f
		}
		close(paths)
		wg.Wait()
		close(outcomes)
	}()

	var report Report
	for outcome := range outcomes {
		switch outcome {
		case OutcomeSucceeded:
			report.Processed++
		case OutcomeSkipped:
			report.Skipped++
		case OutcomeQuarantined:
			report.Quarantined++
		}
	}

	o.logger.Info("Document ingestion run finished",
		zap.Int("processed", report.Processed),
		zap.Int("skipped", report.Skipped),
		zap.Int("quarantined", report.Quarantined),
	)

	return report, nil
}

// IngestFile runs the full pipeline for one file. A panic anywhere in
// the pipeline quarantines the file instead of taking down the batch.
func (o *Orchestrator) IngestFile(ctx context.Context, path string) (outcome Outcome) {
	sourceURL := "file://" + path

	defer func() {
		if rec := recover(); rec != nil {
			o.logger.Error("Unexpected failure while processing file",
				zap.String("file", path),
				zap.Any("panic", rec),
			)
			o.quarantine(ctx, path, sourceURL)
			outcome = OutcomeQuarantined
		}
	}()

	filename := filepath.Base(path)

	meta, err := ExtractFileMetadata(filename)
	if err != nil {
		if errors.Is(err, ErrWrongExtension) {
			// Wrong format for this document type, not a broken name.
			o.logger.Debug("Skipping file for this pass", zap.String("file", filename), zap.Error(err))
		} else {
			o.logger.Warn("Skipping malformed filename", zap.String("file", filename), zap.Error(err))
		}
		return OutcomeSkipped
	}

	securityID, ok := o.resolver[meta.Ticker+o.cfg.TickerSuffix]
	if !ok {
		o.logger.Warn("Skipping file for unknown ticker",
			zap.String("file", filename),
			zap.String("ticker", meta.Ticker),
		)
		return OutcomeSkipped
	}

	text, err := o.parser.Parse(path)
	if err != nil || text == "" {
		o.logger.Warn("Skipping file with no extractable text",
			zap.String("file", filename),
			zap.Error(err),
		)
		return OutcomeSkipped
	}

	chunks := o.chunker.Chunk(text)
	if len(chunks) == 0 {
		o.logger.Warn("Skipping file that produced no chunks", zap.String("file", filename))
		return OutcomeSkipped
	}

	dropped := 0
	for i, chunkText := range chunks {
		vector, err := o.embedder.CreateEmbedding(ctx, chunkText)
		if err != nil {
			// Per-item failure: drop the chunk, keep the file.
			o.logger.Warn("Dropping chunk after embedding failure",
				zap.String("file", filename),
				zap.Int("chunk", i),
				zap.Error(err),
			)
			dropped++
			continue
		}

		chunk := models.NewDocumentChunk(securityID, meta.DocumentType, sourceURL, meta.ReportDate, chunkText, vector)
		if _, err := o.store.Upsert(ctx, chunk); err != nil {
			o.logger.Error("Persist failed, quarantining file",
				zap.String("file", filename),
				zap.Error(err),
			)
			o.quarantine(ctx, path, sourceURL)
			return OutcomeQuarantined
		}
	}

	o.logger.Info("Ingested file",
		zap.String("file", filename),
		zap.String("document_type", string(meta.DocumentType)),
		zap.Int("chunks", len(chunks)-dropped),
		zap.Int("dropped", dropped),
	)

	return OutcomeSucceeded
}

// quarantine moves the file out of the scan path and rolls back any
// chunks it already wrote, so a file either fully contributes its
// chunks or none at all.
func (o *Orchestrator) quarantine(ctx context.Context, path, sourceURL string) {
	quarantineDir := filepath.Join(o.cfg.SourceDir, QuarantineDirName)
	if err := os.MkdirAll(quarantineDir, 0o755); err != nil {
		o.logger.Error("Failed to create quarantine directory", zap.Error(err))
		return
	}

	dest := filepath.Join(quarantineDir, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		o.logger.Error("Failed to move file to quarantine",
			zap.String("file", path),
			zap.Error(err),
		)
	} else {
		o.logger.Warn("Moved file to quarantine", zap.String("file", filepath.Base(path)))
	}

	if _, err := o.store.DeleteBySource(ctx, sourceURL); err != nil {
		o.logger.Error("Failed to roll back chunks for quarantined file",
			zap.String("source_url", sourceURL),
			zap.Error(err),
		)
	}
}

// scanSourceDir lists every regular file under the source tree except
// the quarantine area.
func (o *Orchestrator) scanSourceDir() ([]string, error) {
	var files []string
	err := filepath.WalkDir(o.cfg.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == QuarantineDirName {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
