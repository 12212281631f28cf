package importer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fiscalbr/elalur/internal/shared"
)

type fakeRow struct {
	code string
	name string
}

// fakeProcessor validates rows against the test layout: codigo and descricao
// required, in-file duplicate codes rejected with a back-reference.
type fakeProcessor struct {
	seen       map[string]int
	stored     []fakeRow
	persistErr map[string]error
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{seen: make(map[string]int), persistErr: make(map[string]error)}
}

func (p *fakeProcessor) Validate(_ context.Context, rec Record) (fakeRow, error) {
	code := rec.Named("codigo")
	if code == "" {
		return fakeRow{}, fmt.Errorf("required field codigo is missing")
	}
	name := rec.Named("descricao")
	if name == "" {
		return fakeRow{}, fmt.Errorf("required field descricao is missing")
	}
	if first, dup := p.seen[code]; dup {
		return fakeRow{}, fmt.Errorf("duplicate code %s, first seen at line %d", code, first)
	}
	p.seen[code] = rec.Line
	return fakeRow{code: code, name: name}, nil
}

func (p *fakeProcessor) Preview(rec Record) []string {
	return rec.Values()
}

func (p *fakeProcessor) Persist(_ context.Context, row fakeRow) error {
	if err := p.persistErr[row.code]; err != nil {
		return err
	}
	p.stored = append(p.stored, row)
	return nil
}

func newTestOrchestrator(maxSize int) *Orchestrator[fakeRow, []string] {
	return NewOrchestrator[fakeRow, []string](testLayout, maxSize, nil)
}

func TestRunPartialSuccess(t *testing.T) {
	content := []byte("1.01;Caixa\n;Sem codigo\n1.02;Bancos\n")
	proc := newFakeProcessor()

	result, err := newTestOrchestrator(MaxMasterFileSize).Run(context.Background(), proc, content, false)
	require.NoError(t, err)

	require.False(t, result.Success)
	require.Equal(t, 3, result.TotalLines)
	require.Equal(t, 2, result.ProcessedLines)
	require.Equal(t, 1, result.SkippedLines)
	require.Len(t, result.Errors, 1)
	require.Equal(t, 2, result.Errors[0].Line)
	require.Contains(t, result.Errors[0].Message, "codigo")
	require.Len(t, proc.stored, 2, "good rows commit even when later rows fail")
}

func TestRunDuplicateBackReference(t *testing.T) {
	content := []byte("1.01;Caixa\n1.02;Bancos\n1.01;Duplicada\n")
	proc := newFakeProcessor()

	result, err := newTestOrchestrator(MaxMasterFileSize).Run(context.Background(), proc, content, false)
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	require.Equal(t, 3, result.Errors[0].Line)
	require.Contains(t, result.Errors[0].Message, "first seen at line 1")
}

func TestRunDryRunDoesNotPersist(t *testing.T) {
	content := []byte("1.01;Caixa\n1.02;Bancos\n")
	proc := newFakeProcessor()

	result, err := newTestOrchestrator(MaxMasterFileSize).Run(context.Background(), proc, content, true)
	require.NoError(t, err)

	require.True(t, result.Success)
	require.Equal(t, 2, result.ProcessedLines)
	require.Empty(t, proc.stored)
	require.Len(t, result.Preview, 2)
	require.Equal(t, []string{"1.01", "Caixa"}, result.Preview[0], "preview mirrors the submitted values")
}

func TestRunNonDryRunHasNoPreview(t *testing.T) {
	proc := newFakeProcessor()
	result, err := newTestOrchestrator(MaxMasterFileSize).Run(context.Background(), proc, []byte("1.01;Caixa\n"), false)
	require.NoError(t, err)
	require.Empty(t, result.Preview)
}

func TestRunMinColumnCheck(t *testing.T) {
	content := []byte("1.01;Caixa\nsolitario\n")
	proc := newFakeProcessor()

	result, err := newTestOrchestrator(MaxMasterFileSize).Run(context.Background(), proc, content, false)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0].Message, "expected at least 2 columns")
}

func TestRunFileTooLarge(t *testing.T) {
	content := []byte(strings.Repeat("x", 64))
	_, err := newTestOrchestrator(32).Run(context.Background(), newFakeProcessor(), content, false)
	require.ErrorIs(t, err, ErrFileTooLarge)
}

func TestRunEmptyFile(t *testing.T) {
	_, err := newTestOrchestrator(MaxMasterFileSize).Run(context.Background(), newFakeProcessor(), nil, false)
	require.ErrorIs(t, err, ErrEmptyFile)
}

func TestRunDuplicatePersistDowngradesToLineError(t *testing.T) {
	proc := newFakeProcessor()
	proc.persistErr["1.01"] = shared.ErrDuplicate

	result, err := newTestOrchestrator(MaxMasterFileSize).Run(context.Background(), proc, []byte("1.01;Caixa\n1.02;Bancos\n"), false)
	require.NoError(t, err)

	require.False(t, result.Success)
	require.Equal(t, 1, result.ProcessedLines)
	require.Equal(t, 1, result.SkippedLines)
	require.Equal(t, "record already exists", result.Errors[0].Message)
}

func TestRunOtherPersistFaultAborts(t *testing.T) {
	proc := newFakeProcessor()
	proc.persistErr["1.01"] = fmt.Errorf("connection lost")

	_, err := newTestOrchestrator(MaxMasterFileSize).Run(context.Background(), proc, []byte("1.01;Caixa\n"), false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "persist line 1")
}
