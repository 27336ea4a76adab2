package server

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/granuletvf/internal/compression"
	"github.com/harshithgowdakt/granuletvf/internal/engine"
	"github.com/harshithgowdakt/granuletvf/internal/log"
)

// QueryIDHeader carries the query id on every query response.
const QueryIDHeader = "X-Query-Id"

// CompressionHeader names the block codec of a compressed response.
const CompressionHeader = "X-Compression-Method"

// maxQueryBytes bounds the size of a query read from a request body.
const maxQueryBytes = 1 << 20

// QueryHandler handles HTTP query requests.
type QueryHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(e *engine.Engine, logger *slog.Logger) *QueryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryHandler{engine: e, logger: logger}
}

// HandleQuery runs the SQL in the query parameter or the request body.
//
// Parameters: format (TabSeparated, CSV, JSON, Native) and compress=1,
// which frames the response into LZ4 blocks.
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" && r.Body != nil {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxQueryBytes))
		if err != nil {
			status := http.StatusBadRequest
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				status = http.StatusRequestEntityTooLarge
				err = errors.Newf("query exceeds %d bytes", tooLarge.Limit)
			}
			writeError(w, status, errors.Wrap(err, "read request body"))
			return
		}
		query = strings.TrimSpace(string(body))
	}
	if query == "" {
		writeError(w, http.StatusBadRequest, errors.New("empty query"))
		return
	}

	format := ParseFormat(r.URL.Query().Get("format"))
	compress := r.URL.Query().Get("compress") == "1"

	ctx := r.Context()
	if id := log.GetRequestID(ctx); id != "" {
		ctx = engine.WithQueryID(ctx, id)
	}

	result, err := h.engine.ExecuteSQL(ctx, query)
	if err != nil {
		status := StatusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("query failed", "request_id", log.GetRequestID(ctx), "error", err)
		}
		writeError(w, status, err)
		return
	}

	// Render fully before writing headers so a format error can still
	// become a 500.
	var buf bytes.Buffer
	var out io.Writer = &buf
	var cw *compression.Writer
	if compress {
		cw = compression.NewWriter(&buf, &compression.LZ4Codec{}, 0)
		out = cw
	}
	err = FormatResult(out, result, format)
	if err == nil && cw != nil {
		err = cw.Close()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(err, "format result"))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set(QueryIDHeader, result.QueryID)
	if compress {
		w.Header().Set(CompressionHeader, "lz4")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Debug("write response", "error", err)
	}
}

// HandlePing responds with "Ok." for health checks.
func (h *QueryHandler) HandlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Ok.")
}

// StatusFor maps a query error to an HTTP status: preparation errors are
// the client's fault, everything else is a server error.
func StatusFor(err error) int {
	if engine.IsPreparationError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, err error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Code: %d. %v\n", status, err)
	if hints := errors.FlattenHints(err); hints != "" {
		fmt.Fprintf(&sb, "Hint: %s\n", hints)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, sb.String())
}
