package server_test

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshithgowdakt/granuletvf/internal/column"
	"github.com/harshithgowdakt/granuletvf/internal/compression"
	"github.com/harshithgowdakt/granuletvf/internal/engine"
	"github.com/harshithgowdakt/granuletvf/internal/hello"
	"github.com/harshithgowdakt/granuletvf/internal/log"
	"github.com/harshithgowdakt/granuletvf/internal/server"
	"github.com/harshithgowdakt/granuletvf/internal/tablefunc"
	"github.com/harshithgowdakt/granuletvf/internal/types"
)

func setupTestServer(t *testing.T) *server.Server {
	t.Helper()
	r := tablefunc.NewRegistry()
	require.NoError(t, hello.Register(r))
	logger := log.New(&log.Config{Level: "error", Format: "text", Writer: io.Discard})
	e := engine.New(r, engine.Options{Threads: 2}, logger)
	return server.New(e, logger)
}

func do(t *testing.T, s *server.Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func getQuery(t *testing.T, s *server.Server, query, params string) *httptest.ResponseRecorder {
	t.Helper()
	target := "/?query=" + url.QueryEscape(query)
	if params != "" {
		target += "&" + params
	}
	return do(t, s, httptest.NewRequest(http.MethodGet, target, nil))
}

func TestHTTPSelectTabSeparated(t *testing.T) {
	s := setupTestServer(t)

	w := do(t, s, httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`SELECT greetings FROM hello('Alice', count=3)`)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "greetings\nHello Alice 3\nHello Alice 2\nHello Alice 1\n", w.Body.String())
	assert.Equal(t, "text/tab-separated-values", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get(server.QueryIDHeader))
}

func TestHTTPQueryParamCount(t *testing.T) {
	s := setupTestServer(t)

	w := getQuery(t, s, `select count(*) from hello('Bob', count=10)`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "10", lines[1])
}

func TestHTTPRequestIDBecomesQueryID(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/?query="+url.QueryEscape(`SELECT * FROM hello('X')`), nil)
	req.Header.Set(log.RequestIDHeader, "req-42")
	w := do(t, s, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", w.Header().Get(server.QueryIDHeader))
	assert.Equal(t, "req-42", w.Header().Get(log.RequestIDHeader))
}

func TestHTTPJSONFormat(t *testing.T) {
	s := setupTestServer(t)

	w := getQuery(t, s, `SELECT greetings AS g FROM hello('X')`, "format=JSON")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		Meta []struct{ Name, Type string }
		Data []map[string]any
		Rows int
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Rows)
	require.Len(t, body.Meta, 1)
	assert.Equal(t, "g", body.Meta[0].Name)
	assert.Equal(t, "String", body.Meta[0].Type)
	assert.Equal(t, "Hello X 1", body.Data[0]["g"])
}

func TestHTTPCSVFormat(t *testing.T) {
	s := setupTestServer(t)

	w := getQuery(t, s, `SELECT * FROM hello('Smith, Jo', count => 2)`, "format=csv")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"greetings"},
		{"Hello Smith, Jo 2"},
		{"Hello Smith, Jo 1"},
	}, records)
}

func TestHTTPNativeCompressed(t *testing.T) {
	s := setupTestServer(t)

	w := getQuery(t, s, `SELECT * FROM hello('Alice', count=3)`, "format=Native&compress=1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "lz4", w.Header().Get(server.CompressionHeader))

	raw, err := io.ReadAll(compression.NewReader(bytes.NewReader(w.Body.Bytes())))
	require.NoError(t, err)
	blocks := decodeNative(t, raw)
	require.Len(t, blocks, 1)
	require.Equal(t, 3, blocks[0].NumRows())
	col, ok := blocks[0].GetColumn("greetings")
	require.True(t, ok)
	assert.Equal(t, "Hello Alice 3", col.Value(0))
	assert.Equal(t, "Hello Alice 1", col.Value(2))
}

func TestHTTPNativeEmptyKeepsSchema(t *testing.T) {
	s := setupTestServer(t)

	w := getQuery(t, s, `SELECT * FROM hello('Alice', count=0)`, "format=Native")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	blocks := decodeNative(t, w.Body.Bytes())
	require.Len(t, blocks, 1)
	assert.Zero(t, blocks[0].NumRows())
	assert.Equal(t, []string{"greetings"}, blocks[0].ColumnNames)
	assert.Equal(t, []types.DataType{types.TypeString}, blocks[0].ColumnTypes())
}

func decodeNative(t *testing.T, raw []byte) []*column.Block {
	t.Helper()
	r := bufio.NewReader(bytes.NewReader(raw))
	var blocks []*column.Block
	for {
		if _, err := r.Peek(1); err == io.EOF {
			return blocks
		}
		block, err := column.DecodeBlock(r)
		require.NoError(t, err)
		blocks = append(blocks, block)
	}
}

func TestHTTPEmptyResult(t *testing.T) {
	s := setupTestServer(t)

	w := getQuery(t, s, `SELECT * FROM hello('Alice', count=0)`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "greetings\n", w.Body.String())
}

func TestHTTPErrorStatus(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name   string
		query  string
		status int
		body   string
	}{
		{"empty", "", http.StatusBadRequest, "empty query"},
		{"syntax", "SELEC 1", http.StatusBadRequest, "Code: 400"},
		{"unknown function", "SELECT * FROM nope()", http.StatusBadRequest, "SHOW FUNCTIONS"},
		{"negative count", "SELECT * FROM hello('A', count=-1)", http.StatusBadRequest, "count"},
		{"bad column", "SELECT x FROM hello('A')", http.StatusBadRequest, "x"},
		{"invalid utf8", "SELECT * FROM hello('\xff')", http.StatusInternalServerError, "Code: 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.query)))
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestHTTPQueryBodyTooLarge(t *testing.T) {
	s := setupTestServer(t)

	query := "SELECT * FROM hello('Alice', count=1)"
	body := query + strings.Repeat(" ", (1<<20)-len(query)+1)
	w := do(t, s, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "exceeds")

	w = do(t, s, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body[:1<<20])))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "greetings\nHello Alice 1\n", w.Body.String())
}

func TestHTTPPing(t *testing.T) {
	s := setupTestServer(t)
	w := do(t, s, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ok.\n", w.Body.String())
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, server.FormatJSON, server.ParseFormat("json"))
	assert.Equal(t, server.FormatCSV, server.ParseFormat("CSVWithNames"))
	assert.Equal(t, server.FormatNative, server.ParseFormat("Native"))
	assert.Equal(t, server.FormatTabSeparated, server.ParseFormat(""))
	assert.Equal(t, server.FormatTabSeparated, server.ParseFormat("Pretty"))
}
