package handlers_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"cocolabs/internal/ai"
	"cocolabs/internal/cart"
	"cocolabs/internal/config"
	"cocolabs/internal/http/handlers"
	applog "cocolabs/internal/log"
	"cocolabs/internal/repos"
)

const (
	demoEmail    = "demo@cocolabs.test"
	demoPassword = "Passw0rd!"
)

// fakeModel stands in for the hosted model. Fields are set before requests are made.
type fakeModel struct {
	genReply string
	genErr   error
	chunks   []string
	chatErr  error
	// whole answers the chat in one piece without calling onChunk
	whole bool
}

func (m *fakeModel) Generate(context.Context, string) (string, error) {
	if m.genErr != nil {
		return "", m.genErr
	}
	if m.genReply == "" {
		return "", ai.ErrDisabled
	}
	return m.genReply, nil
}

func (m *fakeModel) Chat(_ context.Context, _ []ai.Message, onChunk func(string) error) (string, error) {
	if m.chatErr != nil {
		return "", m.chatErr
	}
	var sb strings.Builder
	for _, s := range m.chunks {
		if onChunk != nil && !m.whole {
			if err := onChunk(s); err != nil {
				return "", err
			}
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

type testEnv struct {
	app   *fiber.App
	db    *sqlx.DB
	model *fakeModel
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	model := &fakeModel{}
	cfg := config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour, RecommendationMaxAge: time.Hour}
	deps := handlers.NewDeps(db, cfg, cart.NewMemoryStorage(), model)
	app := handlers.NewApp(deps, html.New("../../web/templates", ".html"))
	return &testEnv{app: app, db: db, model: model}
}

// session carries whatever identifies a caller: the sid cookie and/or a bearer token.
type session struct {
	sid   string
	token string
}

func (e *testEnv) do(t *testing.T, method, path string, body any, s session) *http.Response {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		r = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if s.sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: s.sid})
	}
	if s.token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+s.token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// postForm submits a urlencoded form the way a browser would, with extra cookies.
func (e *testEnv) postForm(t *testing.T, path string, form url.Values, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) login(t *testing.T, email, password string) session {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/auth/login", fiber.Map{"email": email, "password": password}, session{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Token string `json:"token"`
	}
	decode(t, resp, &out)
	sid := cookieValue(resp, "sid")
	require.NotEmpty(t, sid)
	return session{sid: sid, token: out.Token}
}

func (e *testEnv) register(t *testing.T, name, email string) session {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/auth/register",
		fiber.Map{"name": name, "email": email, "password": demoPassword}, session{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return e.login(t, email, demoPassword)
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func bodyString(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func messageOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	var out struct {
		Message string `json:"message"`
	}
	decode(t, resp, &out)
	return out.Message
}

// captureLogs sends the action log to a buffer for the rest of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	applog.SetOutput(buf)
	t.Cleanup(func() { applog.SetOutput(os.Stderr) })
	return buf
}

// logEntries parses the JSON lines in buf, skipping anything else.
func logEntries(buf *bytes.Buffer) []map[string]any {
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

func findAction(buf *bytes.Buffer, action string) map[string]any {
	for _, m := range logEntries(buf) {
		if m["action"] == action {
			return m
		}
	}
	return nil
}

var errModelDown = errors.New("upstream 503: model overloaded")

func validShipping() fiber.Map {
	return fiber.Map{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"address":   "1 Analytical Way",
		"city":      "London",
		"zipCode":   "20742",
		"country":   "UK",
	}
}
