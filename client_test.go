package piston_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/piston-go"
)

const rustOK = `{"language":"rust","version":"1.50.0","run":{"stdout":"42\n","stderr":"","output":"42\n","code":0,"signal":null}}`

// cannedServer answers every request with status and body, and records what it saw.
type cannedServer struct {
	status int
	body   string

	lastMethod  string
	lastPath    string
	lastHeaders http.Header
	lastBody    []byte
}

func (c *cannedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.lastMethod = r.Method
	c.lastPath = r.URL.Path
	c.lastHeaders = r.Header.Clone()
	c.lastBody, _ = io.ReadAll(r.Body)

	w.WriteHeader(c.status)
	_, _ = io.WriteString(w, c.body)
}

func newCanned(t *testing.T, status int, body string) (*cannedServer, *httptest.Server) {
	t.Helper()
	cs := &cannedServer{status: status, body: body}
	ts := httptest.NewServer(cs)
	t.Cleanup(ts.Close)
	return cs, ts
}

func rustExecutor() piston.Executor {
	return piston.NewExecutor().
		SetLanguage("rust").
		SetVersion("1.50.0").
		AddFile(piston.NewFile("main.rs", `fn main() { println!("42"); }`))
}

func TestExecute_Success(t *testing.T) {
	cs, ts := newCanned(t, http.StatusOK, rustOK)
	client := piston.NewWithURLAndKey(ts.URL, "123abc")

	res, err := client.Execute(context.Background(), rustExecutor())
	require.NoError(t, err)

	assert.Equal(t, 200, res.Status)
	assert.Nil(t, res.Compile)
	assert.Equal(t, 0, res.Run.Code)
	assert.Equal(t, "42\n", res.Run.Stdout)
	assert.Equal(t, "42\n", res.Run.Output)
	assert.Nil(t, res.Run.Signal)
	assert.Equal(t, "rust", res.Language)
	assert.Equal(t, "1.50.0", res.Version)
	assert.True(t, res.IsOK())

	assert.Equal(t, http.MethodPost, cs.lastMethod)
	assert.Equal(t, "/execute", cs.lastPath)
	assert.Equal(t, "123abc", cs.lastHeaders.Get("Authorization"))
	assert.Equal(t, "application/json", cs.lastHeaders.Get("Accept"))
	assert.Equal(t, "application/json", cs.lastHeaders.Get("Content-Type"))
	assert.Equal(t, piston.UserAgent, cs.lastHeaders.Get("User-Agent"))
}

func TestExecute_RequestBody(t *testing.T) {
	cs, ts := newCanned(t, http.StatusOK, rustOK)
	client := piston.NewWithURL(ts.URL)

	e := rustExecutor().
		SetStdin("in").
		AddArgs("a", "b").
		SetRunTimeout(3000).
		SetCompileMemoryLimit(-1)

	_, err := client.Execute(context.Background(), e)
	require.NoError(t, err)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(cs.lastBody, &sent))

	assert.Equal(t, "rust", sent["language"])
	assert.Equal(t, "1.50.0", sent["version"])
	assert.Equal(t, "in", sent["stdin"])
	assert.Equal(t, []any{"a", "b"}, sent["args"])
	assert.Equal(t, float64(3000), sent["run_timeout"])
	assert.Equal(t, float64(-1), sent["compile_memory_limit"])
	assert.NotContains(t, sent, "compile_timeout")
	assert.NotContains(t, sent, "run_memory_limit")
	assert.NotContains(t, cs.lastHeaders, "Authorization")

	files := sent["files"].([]any)
	require.Len(t, files, 1)
	file := files[0].(map[string]any)
	assert.Equal(t, "main.rs", file["name"])
	assert.NotContains(t, file, "encoding")
}

func TestExecute_WithCompileStage(t *testing.T) {
	body := `{"language":"rust","version":"1.50.0",
		"compile":{"stdout":"","stderr":"warning: unused\n","output":"warning: unused\n","code":0,"signal":null},
		"run":{"stdout":"","stderr":"","output":"","code":null,"signal":"SIGKILL"}}`
	_, ts := newCanned(t, http.StatusOK, body)

	res, err := piston.NewWithURL(ts.URL).Execute(context.Background(), rustExecutor())
	require.NoError(t, err)

	require.NotNil(t, res.Compile)
	assert.Equal(t, "warning: unused\n", res.Compile.Stderr)
	assert.True(t, res.Compile.IsOK())

	require.NotNil(t, res.Run.Signal)
	assert.Equal(t, "SIGKILL", *res.Run.Signal)
	assert.Equal(t, 0, res.Run.Code)
	assert.False(t, res.Run.IsOK())
	assert.True(t, res.IsErr())
}

func TestExecute_NonZeroExitPassedThrough(t *testing.T) {
	body := `{"language":"rust","version":"1.50.0","run":{"stdout":"","stderr":"","output":"","code":101,"signal":null}}`
	_, ts := newCanned(t, http.StatusOK, body)

	res, err := piston.NewWithURL(ts.URL).Execute(context.Background(), rustExecutor())
	require.NoError(t, err)

	assert.Equal(t, 101, res.Run.Code)
	assert.Empty(t, res.Run.Stderr)
	assert.Equal(t, 200, res.Status)
}

func TestExecute_RejectionIsData(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantDiag string
	}{
		{"bad request", http.StatusBadRequest, "bad request", "400 Bad Request: bad request"},
		{"not found", http.StatusNotFound, "", "404 Not Found: "},
		{"rate limited", http.StatusTooManyRequests, `{"message":"Requests exceeded limit"}`, `429 Too Many Requests: {"message":"Requests exceeded limit"}`},
		{"server error", http.StatusInternalServerError, "boom", "500 Internal Server Error: boom"},
		{"created is not 200", http.StatusCreated, rustOK, "201 Created: " + rustOK},
		{"unknown code", 599, "odd", "599 <unknown status code>: odd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ts := newCanned(t, tt.status, tt.body)
			e := piston.NewExecutor().SetLanguage("python").SetVersion("3.10.0")

			res, err := piston.NewWithURL(ts.URL).Execute(context.Background(), e)
			require.NoError(t, err)

			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, 1, res.Run.Code)
			assert.Equal(t, "", res.Run.Stdout)
			assert.Equal(t, tt.wantDiag, res.Run.Stderr)
			assert.Equal(t, tt.wantDiag, res.Run.Output)
			assert.Nil(t, res.Run.Signal)
			assert.Nil(t, res.Compile)
			assert.Equal(t, "python", res.Language)
			assert.Equal(t, "3.10.0", res.Version)
			assert.True(t, res.IsErr())
		})
	}
}

func TestExecute_RejectionEchoesRequestNotResponse(t *testing.T) {
	// The body looks like a valid response for another language; it must be ignored.
	_, ts := newCanned(t, http.StatusBadRequest, rustOK)
	e := piston.NewExecutor().SetLanguage("").SetVersion("*")

	res, err := piston.NewWithURL(ts.URL).Execute(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, "", res.Language)
	assert.Equal(t, "*", res.Version)
}

func TestExecute_DecodeError(t *testing.T) {
	_, ts := newCanned(t, http.StatusOK, "<html>not json</html>")

	res, err := piston.NewWithURL(ts.URL).Execute(context.Background(), rustExecutor())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, piston.ErrDecode)
	assert.False(t, errors.Is(err, piston.ErrTransport))
}

func TestExecute_ConnectionRefused(t *testing.T) {
	// Grab a free port, then close the listener so nothing answers on it.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	url := "http://" + ln.Addr().String()
	require.NoError(t, ln.Close())

	res, err := piston.NewWithURL(url).Execute(context.Background(), rustExecutor())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, piston.ErrTransport)
}

func TestExecute_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(ts.Close)
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := piston.NewWithURL(ts.URL).Execute(ctx, rustExecutor())
	assert.ErrorIs(t, err, piston.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecute_DoesNotMutateExecutor(t *testing.T) {
	_, ts := newCanned(t, http.StatusBadRequest, "nope")
	e := rustExecutor().AddArg("x")
	before := e

	_, err := piston.NewWithURL(ts.URL).Execute(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, before, e)
}

func TestExecute_Idempotent(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusBadRequest} {
		_, ts := newCanned(t, status, rustOK)
		client := piston.NewWithURL(ts.URL)
		e := rustExecutor()

		first, err := client.Execute(context.Background(), e)
		require.NoError(t, err)
		second, err := client.Execute(context.Background(), e)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	}
}

func TestExecute_Logs(t *testing.T) {
	_, ts := newCanned(t, http.StatusOK, rustOK)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := piston.NewWithURL(ts.URL, piston.WithLogger(logger)).Execute(context.Background(), rustExecutor())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "piston request")
	assert.Contains(t, buf.String(), "status=200")
}

func TestFetchRuntimes(t *testing.T) {
	body := `[{"language":"python","version":"3.10.0","aliases":["py","py3"]},
		{"language":"typescript","version":"5.0.3","aliases":["ts"],"runtime":"node"}]`
	cs, ts := newCanned(t, http.StatusOK, body)

	runtimes, err := piston.NewWithURLAndKey(ts.URL, "k").FetchRuntimes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []piston.Runtime{
		{Language: "python", Version: "3.10.0", Aliases: []string{"py", "py3"}},
		{Language: "typescript", Version: "5.0.3", Aliases: []string{"ts"}, Runtime: "node"},
	}, runtimes)
	assert.Equal(t, http.MethodGet, cs.lastMethod)
	assert.Equal(t, "/runtimes", cs.lastPath)
	assert.Equal(t, "k", cs.lastHeaders.Get("Authorization"))
	assert.Empty(t, cs.lastHeaders.Get("Content-Type"))
}

func TestFetchRuntimes_Errors(t *testing.T) {
	t.Run("bad json", func(t *testing.T) {
		_, ts := newCanned(t, http.StatusOK, `{"not":"an array"}`)
		_, err := piston.NewWithURL(ts.URL).FetchRuntimes(context.Background())
		assert.ErrorIs(t, err, piston.ErrDecode)
	})

	t.Run("non-200", func(t *testing.T) {
		_, ts := newCanned(t, http.StatusUnauthorized, `{"message":"invalid api key"}`)
		_, err := piston.NewWithURL(ts.URL).FetchRuntimes(context.Background())
		assert.ErrorIs(t, err, piston.ErrUnexpectedStatus)
		assert.Contains(t, err.Error(), "invalid api key")
	})

	t.Run("unreachable", func(t *testing.T) {
		_, err := piston.NewWithURL("http://127.0.0.1:1").FetchRuntimes(context.Background())
		assert.ErrorIs(t, err, piston.ErrTransport)
	})
}
