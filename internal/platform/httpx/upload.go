package httpx

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/fiscalbr/elalur/internal/importer"
)

// ReadImportRequest extracts the uploaded file bytes and the dry-run flag
// from a multipart import request. Shared by every import endpoint. The
// limit only bounds what is read off the wire; the orchestrator enforces the
// per-kind ceiling itself.
func ReadImportRequest(r *http.Request, limit int64) ([]byte, bool, error) {
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dryRun"))
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, false, err
	}
	defer file.Close()
	content, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, false, err
	}
	return content, dryRun, nil
}

// RespondImportError maps structural import failures to problem responses.
func RespondImportError(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
	case errors.Is(err, importer.ErrEmptyFile), errors.Is(err, importer.ErrUnreadableHeader):
		Problem(w, http.StatusBadRequest, "Invalid File", err.Error())
	case errors.Is(err, importer.ErrFileTooLarge):
		Problem(w, http.StatusRequestEntityTooLarge, "File Too Large", err.Error())
	default:
		RespondError(w, err)
	}
}
