package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"genstudio/internal/config"
	"genstudio/internal/filecodec"
	"genstudio/internal/gateway/middleware"
	"genstudio/internal/metrics"
	"genstudio/internal/session"
	"genstudio/internal/studio"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	gate chan struct{}

	mu       sync.Mutex
	calls    int
	lastFile filecodec.File
}

func (s *stubGenerator) wait() {
	s.mu.Lock()
	s.calls++
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (s *stubGenerator) GenerateImage(context.Context, string) (*studio.Result, error) {
	s.wait()
	return studio.ImageResult("iVBORw0KGgo=", "image/png"), nil
}

func (s *stubGenerator) GetVisionResponse(_ context.Context, _ string, image filecodec.File) (*studio.Result, error) {
	s.wait()
	s.mu.Lock()
	s.lastFile = image
	s.mu.Unlock()
	return studio.TextResult("A cat."), nil
}

func (s *stubGenerator) ChatWithFile(_ context.Context, _ string, file filecodec.File) (*studio.Result, error) {
	s.wait()
	text, err := filecodec.DecodeAsText(file)
	if err != nil {
		return nil, err
	}
	return studio.TextResult("summary of " + file.Name() + ": " + text), nil
}

type testClient struct {
	t    *testing.T
	srv  *httptest.Server
	http *http.Client
}

func newTestClient(t *testing.T, gen session.Generator) *testClient {
	t.Helper()
	cfg := &config.Config{
		Port:            ":0",
		APIKey:          "test",
		Session:         config.SessionConfig{Max: 8, TTL: time.Minute},
		UploadMaxMemory: 1 << 20,
	}
	a := NewWithGenerator(cfg, zerolog.Nop(), gen, metrics.New())
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{t: t, srv: srv, http: &http.Client{Jar: jar}}
}

func (c *testClient) do(method, path string, body io.Reader, contentType string) (*http.Response, []byte) {
	c.t.Helper()
	req, err := http.NewRequest(method, c.srv.URL+path, body)
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, data
}

func (c *testClient) postJSON(path string, v any) (*http.Response, []byte) {
	b, err := json.Marshal(v)
	require.NoError(c.t, err)
	return c.do(http.MethodPost, path, bytes.NewReader(b), "application/json")
}

func (c *testClient) upload(slot, name, contentType string, data []byte) (*http.Response, []byte) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + name + `"`}
	h["Content-Type"] = []string{contentType}
	pw, err := mw.CreatePart(h)
	require.NoError(c.t, err)
	_, err = pw.Write(data)
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())
	return c.do(http.MethodPost, "/api/attachment/"+slot, &buf, mw.FormDataContentType())
}

func decodeSnapshot(t *testing.T, data []byte) session.Snapshot {
	t.Helper()
	var s session.Snapshot
	require.NoError(t, json.Unmarshal(data, &s), string(data))
	return s
}

type submitBody struct {
	Outcome string           `json:"outcome"`
	State   session.Snapshot `json:"state"`
}

func decodeSubmit(t *testing.T, data []byte) submitBody {
	t.Helper()
	var s submitBody
	require.NoError(t, json.Unmarshal(data, &s), string(data))
	return s
}

func TestStateIssuesSessionCookie(t *testing.T) {
	c := newTestClient(t, &stubGenerator{})
	resp, body := c.do(http.MethodGet, "/api/state", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, studio.ModeImage, decodeSnapshot(t, body).Mode)

	var found bool
	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.SessionCookie && ck.Value != "" {
			found = true
		}
	}
	assert.True(t, found, "session cookie set")

	resp, _ = c.do(http.MethodGet, "/api/state", nil, "")
	assert.Empty(t, resp.Cookies(), "existing session reused")
}

func TestSessionsAreIsolated(t *testing.T) {
	a := newTestClient(t, &stubGenerator{})
	_, _ = a.postJSON("/api/prompt", map[string]string{"prompt": "mine"})

	other := &http.Client{}
	resp, err := other.Get(a.srv.URL + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	assert.Empty(t, decodeSnapshot(t, data).Prompt)
}

func TestImageScenario(t *testing.T) {
	c := newTestClient(t, &stubGenerator{})
	_, _ = c.postJSON("/api/prompt", map[string]string{"prompt": "a red circle"})
	resp, body := c.do(http.MethodPost, "/api/submit?wait=1", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeSubmit(t, body)
	assert.Equal(t, "dispatched", got.Outcome)
	assert.Equal(t, studio.ImageResult("iVBORw0KGgo=", "image/png"), got.State.Result)
}

func TestVisionScenario(t *testing.T) {
	gen := &stubGenerator{}
	c := newTestClient(t, gen)
	resp, _ := c.postJSON("/api/mode", map[string]string{"mode": "vision"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, _ = c.postJSON("/api/prompt", map[string]string{"prompt": "What is this?"})

	_, body := c.do(http.MethodPost, "/api/submit?wait=1", nil, "")
	got := decodeSubmit(t, body)
	assert.Equal(t, "rejected", got.Outcome)
	assert.Equal(t, studio.ErrorResult(studio.MsgMissingImage), got.State.Result)

	png := []byte("\x89PNG\r\n\x1a\nrest")
	resp, body = c.upload("image", "cat.png", "image/png", png)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	snap := decodeSnapshot(t, body)
	require.NotNil(t, snap.Image)
	assert.Equal(t, "cat.png", snap.Image.Name)
	assert.Equal(t, int64(len(png)), snap.Image.Size)

	_, body = c.do(http.MethodPost, "/api/submit?wait=1", nil, "")
	assert.Equal(t, studio.TextResult("A cat."), decodeSubmit(t, body).State.Result)
	gen.mu.Lock()
	assert.Equal(t, "image/png", gen.lastFile.MIMEType())
	gen.mu.Unlock()
}

func TestFileScenario(t *testing.T) {
	c := newTestClient(t, &stubGenerator{})
	_, _ = c.postJSON("/api/mode", map[string]string{"mode": "file"})
	_, _ = c.postJSON("/api/prompt", map[string]string{"prompt": "Summarize"})
	_, _ = c.upload("file", "notes.txt", "text/plain", []byte("Buy milk."))

	_, body := c.do(http.MethodPost, "/api/submit?wait=1", nil, "")
	assert.Equal(t, studio.TextResult("summary of notes.txt: Buy milk."), decodeSubmit(t, body).State.Result)

	resp, body := c.do(http.MethodDelete, "/api/attachment/file", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, decodeSnapshot(t, body).File)
}

func TestAsyncSubmitAndBusyIntents(t *testing.T) {
	gen := &stubGenerator{gate: make(chan struct{})}
	c := newTestClient(t, gen)
	_, _ = c.postJSON("/api/prompt", map[string]string{"prompt": "slow"})

	resp, body := c.do(http.MethodPost, "/api/submit", nil, "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.True(t, decodeSubmit(t, body).State.InFlight)

	resp, body = c.do(http.MethodPost, "/api/submit", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ignored", decodeSubmit(t, body).Outcome)

	resp, _ = c.postJSON("/api/mode", map[string]string{"mode": "file"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	close(gen.gate)
	require.Eventually(t, func() bool {
		_, body := c.do(http.MethodGet, "/api/state", nil, "")
		s := decodeSnapshot(t, body)
		return !s.InFlight && s.Result != nil
	}, 2*time.Second, 10*time.Millisecond)

	gen.mu.Lock()
	assert.Equal(t, 1, gen.calls)
	gen.mu.Unlock()
}

func TestBadRequests(t *testing.T) {
	c := newTestClient(t, &stubGenerator{})

	resp, _ := c.postJSON("/api/mode", map[string]string{"mode": "video"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = c.do(http.MethodPost, "/api/prompt", strings.NewReader("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = c.do(http.MethodPost, "/api/attachment/image", strings.NewReader("nope"), "text/plain")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = c.upload("audio", "a.mp3", "audio/mpeg", []byte("x"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestModesAndShell(t *testing.T) {
	c := newTestClient(t, &stubGenerator{})
	_, body := c.do(http.MethodGet, "/api/modes", nil, "")
	var modes []studio.ModeInfo
	require.NoError(t, json.Unmarshal(body, &modes))
	require.Len(t, modes, 3)
	assert.Equal(t, studio.ModeImage, modes[0].Mode)

	resp, body := c.do(http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "<title>Gemini Studio</title>")
}

func TestOperationalEndpoints(t *testing.T) {
	c := newTestClient(t, &stubGenerator{})
	_, _ = c.do(http.MethodGet, "/api/state", nil, "")

	resp, body := c.do(http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "genstudio_sessions_active 1")

	resp, _ = c.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestStateWebsocket(t *testing.T) {
	c := newTestClient(t, &stubGenerator{})
	_, _ = c.do(http.MethodGet, "/api/state", nil, "")

	wsURL := "ws" + strings.TrimPrefix(c.srv.URL, "http") + "/api/ws"
	header := http.Header{}
	for _, ck := range c.http.Jar.Cookies(mustURL(t, c.srv.URL)) {
		header.Add("Cookie", ck.String())
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	var msg struct {
		Type  string           `json:"type"`
		State session.Snapshot `json:"state"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "state", msg.Type)

	_, _ = c.postJSON("/api/prompt", map[string]string{"prompt": "streamed"})
	for msg.State.Prompt != "streamed" {
		require.NoError(t, conn.ReadJSON(&msg))
	}
	assert.Equal(t, "streamed", msg.State.Prompt)
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), &config.Config{}, zerolog.Nop())
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}
