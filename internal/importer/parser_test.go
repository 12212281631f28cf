package importer

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

var testLayout = Layout{
	Columns:    []string{"codigo", "descricao", "anoValidade"},
	MinColumns: 2,
}

func readAll(t *testing.T, r *Reader) []Record {
	t.Helper()
	var out []Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

func TestNewReaderDetectsSemicolon(t *testing.T) {
	r, err := NewReader([]byte("1.01;Caixa;2024\n1.02;Bancos;2024\n"), testLayout)
	require.NoError(t, err)

	recs := readAll(t, r)
	require.Len(t, recs, 2)
	require.Equal(t, "1.01", recs[0].Named("codigo"))
	require.Equal(t, "Bancos", recs[1].Named("descricao"))
}

func TestNewReaderDefaultsToComma(t *testing.T) {
	r, err := NewReader([]byte("1.01,Caixa,2024\n"), testLayout)
	require.NoError(t, err)

	recs := readAll(t, r)
	require.Len(t, recs, 1)
	require.Equal(t, "Caixa", recs[0].Named("descricao"))
}

func TestNewReaderStripsHeaderRow(t *testing.T) {
	content := []byte("codigo;descricao;anoValidade\n1.01;Caixa;2024\n")
	r, err := NewReader(content, testLayout)
	require.NoError(t, err)

	recs := readAll(t, r)
	require.Len(t, recs, 1)
	require.Equal(t, 1, recs[0].Line, "line numbers count data lines only")
	require.Equal(t, "1.01", recs[0].Named("codigo"))
}

func TestNewReaderHeaderMapsColumnsByName(t *testing.T) {
	// Header present with columns in a different order than the layout.
	content := []byte("codigo;anoValidade;descricao\n1.01;2024;Caixa\n")
	r, err := NewReader(content, testLayout)
	require.NoError(t, err)

	recs := readAll(t, r)
	require.Equal(t, "Caixa", recs[0].Named("descricao"))
	require.Equal(t, "2024", recs[0].Named("anoValidade"))
}

func TestNewReaderStripsBOM(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("codigo;descricao\n1.01;Caixa\n")...)
	r, err := NewReader(content, testLayout)
	require.NoError(t, err)

	recs := readAll(t, r)
	require.Len(t, recs, 1)
}

func TestNewReaderEmptyFile(t *testing.T) {
	_, err := NewReader(nil, testLayout)
	require.ErrorIs(t, err, ErrEmptyFile)

	_, err = NewReader([]byte("   \n \n"), testLayout)
	require.ErrorIs(t, err, ErrEmptyFile)
}

func TestNextSkipsBlankLines(t *testing.T) {
	content := []byte("1.01;Caixa\n;;\n1.02;Bancos\n")
	r, err := NewReader(content, testLayout)
	require.NoError(t, err)

	recs := readAll(t, r)
	require.Len(t, recs, 2)
	require.Equal(t, 1, recs[0].Line)
	require.Equal(t, 2, recs[1].Line, "blank lines do not consume line numbers")
}

func TestRecordFieldTrimsAndBoundsChecks(t *testing.T) {
	r, err := NewReader([]byte("1.01;  Caixa  \n"), testLayout)
	require.NoError(t, err)

	rec, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, "Caixa", rec.Field(1))
	require.Equal(t, "", rec.Field(9))
	require.Equal(t, "", rec.Named("anoValidade"))
	require.Equal(t, []string{"1.01", "Caixa"}, rec.Values())
}
