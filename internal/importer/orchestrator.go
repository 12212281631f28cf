package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fiscalbr/elalur/internal/shared"
)

// Per-kind file size ceilings, enforced before any line is read.
const (
	// MaxMasterFileSize bounds chart-of-account and reference imports.
	MaxMasterFileSize = 10 << 20
	// MaxLedgerFileSize bounds ledger and Parte B imports.
	MaxLedgerFileSize = 50 << 20
)

// LineError binds one validation failure to the data line that produced it.
type LineError struct {
	Line    int    `json:"lineNumber"`
	Message string `json:"error"`
}

// Result is the import report returned to the caller. Preview is populated
// only on dry runs and mirrors the submitted rows, not resolved entities.
type Result[P any] struct {
	Success        bool        `json:"success"`
	TotalLines     int         `json:"totalLines"`
	ProcessedLines int         `json:"processedLines"`
	SkippedLines   int         `json:"skippedLines"`
	Errors         []LineError `json:"errors"`
	Preview        []P         `json:"preview,omitempty"`
}

func (r *Result[P]) skip(line int, message string) {
	r.SkippedLines++
	r.Errors = append(r.Errors, LineError{Line: line, Message: message})
}

// RowProcessor supplies the per-kind behaviour for one import run. A new
// processor is built per run: the in-file duplicate registry lives inside it.
type RowProcessor[T, P any] interface {
	// Validate turns one record into a domain object ready to persist, or a
	// line-scoped error. Short-circuits on the first failing rule.
	Validate(ctx context.Context, rec Record) (T, error)
	// Preview projects the record for dry-run output.
	Preview(rec Record) P
	// Persist writes one validated row. A shared.ErrDuplicate from a late
	// uniqueness race is downgraded to a line error by the orchestrator.
	Persist(ctx context.Context, row T) error
}

// Orchestrator drives one import kind: parse, validate, then persist row by
// row or collect a preview. Lines are processed strictly in file order and a
// later failure never rolls back an earlier commit.
type Orchestrator[T, P any] struct {
	layout  Layout
	maxSize int
	logger  *slog.Logger
}

// NewOrchestrator builds an orchestrator for a layout and size ceiling.
func NewOrchestrator[T, P any](layout Layout, maxSize int, logger *slog.Logger) *Orchestrator[T, P] {
	return &Orchestrator[T, P]{layout: layout, maxSize: maxSize, logger: logger}
}

// Run executes one import. Structural problems (empty file, oversize file,
// unreadable header) and non-duplicate persistence faults abort the run;
// everything else is accumulated as line errors.
func (o *Orchestrator[T, P]) Run(ctx context.Context, proc RowProcessor[T, P], content []byte, dryRun bool) (Result[P], error) {
	if len(content) > o.maxSize {
		return Result[P]{}, fmt.Errorf("%w: %d bytes over %d limit", ErrFileTooLarge, len(content), o.maxSize)
	}

	reader, err := NewReader(content, o.layout)
	if err != nil {
		return Result[P]{}, err
	}

	runID := uuid.NewString()
	var result Result[P]
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		result.TotalLines++
		if err != nil {
			result.skip(rec.Line, err.Error())
			continue
		}
		if rec.Len() < o.layout.MinColumns {
			result.skip(rec.Line, fmt.Sprintf("expected at least %d columns, got %d", o.layout.MinColumns, rec.Len()))
			continue
		}

		row, err := proc.Validate(ctx, rec)
		if err != nil {
			result.skip(rec.Line, err.Error())
			continue
		}

		if dryRun {
			result.Preview = append(result.Preview, proc.Preview(rec))
			result.ProcessedLines++
			continue
		}

		if err := proc.Persist(ctx, row); err != nil {
			if errors.Is(err, shared.ErrDuplicate) {
				result.skip(rec.Line, "record already exists")
				continue
			}
			return Result[P]{}, fmt.Errorf("importer: persist line %d: %w", rec.Line, err)
		}
		result.ProcessedLines++
	}

	result.Success = len(result.Errors) == 0
	if o.logger != nil {
		o.logger.Info("import run finished",
			slog.String("run_id", runID),
			slog.Bool("dry_run", dryRun),
			slog.Int("total", result.TotalLines),
			slog.Int("processed", result.ProcessedLines),
			slog.Int("skipped", result.SkippedLines))
	}
	return result, nil
}
