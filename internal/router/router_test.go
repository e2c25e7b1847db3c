package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domainsale/internal/auth"
	"domainsale/internal/email"
	"domainsale/internal/handler"
	"domainsale/internal/ratelimit"
	"domainsale/internal/repository"
	"domainsale/internal/service"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []email.Message
}

func (m *captureMailer) Send(ctx context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testApp struct {
	e           *echo.Echo
	mailer      *captureMailer
	submissions *repository.MemorySubmissionRepository
	clock       *clock
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()

	users := repository.NewMemoryUserRepository()
	submissions := repository.NewMemorySubmissionRepository()
	siteConfigs := repository.NewMemorySiteConfigRepository()

	userService := service.NewUserService(users)
	_, err := userService.EnsureAdmin(ctx, "admin", "admin123")
	require.NoError(t, err)

	authService := service.NewAuthService(users, auth.NewJWTService("router-test"), auth.NewMemorySessionStore(), time.Hour)
	siteConfigService := service.NewSiteConfigService(siteConfigs)
	mailer := &captureMailer{}
	contactService := service.NewContactService(submissions, siteConfigService, mailer, service.EmailSettings{
		From:       "offers@example.com",
		OwnerEmail: "owner@example.com",
	})

	clk := &clock{now: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
	limiter := ratelimit.NewMemoryLimiterWithClock(3, 15*time.Minute, clk.Now)

	e := echo.New()
	Register(e, authService, limiter, Handlers{
		Auth:       handler.NewAuthHandler(authService, false),
		Contact:    handler.NewContactHandler(contactService),
		SiteConfig: handler.NewSiteConfigHandler(siteConfigService),
		User:       handler.NewUserHandler(userService),
	})

	return &testApp{e: e, mailer: mailer, submissions: submissions, clock: clk}
}

func (a *testApp) do(method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	return a.doWithHeaders(method, path, body, cookie, nil)
}

func (a *testApp) doWithHeaders(method, path, body string, cookie *http.Cookie, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) login(t *testing.T, password string) *http.Cookie {
	t.Helper()
	rec := a.do(http.MethodPost, "/api/login", `{"username":"admin","password":"`+password+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == handler.SessionCookieName {
			assert.True(t, c.HttpOnly)
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestContact_EndToEnd(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/api/contact",
		`{"fullName":"Jane Doe","email":"jane@x.com","offerAmount":750,"message":"interested <script>"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["id"])

	stored, err := app.submissions.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 750, stored[0].OfferAmount)

	require.Len(t, app.mailer.sent, 2)
	assert.Equal(t, "owner@example.com", app.mailer.sent[0].To)
	assert.Equal(t, "jane@x.com", app.mailer.sent[1].To)
	for _, msg := range app.mailer.sent {
		assert.Contains(t, msg.HTML, "Jane Doe")
		assert.NotContains(t, msg.HTML, "<script>")
	}
	assert.Contains(t, app.mailer.sent[0].HTML, "interested &lt;script&gt;")
}

func TestContact_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{
			name:   "honeypot",
			body:   `{"fullName":"Bot","email":"bot@x.com","offerAmount":900,"website":"spam"}`,
			status: http.StatusBadRequest,
			code:   "INVALID_SUBMISSION",
		},
		{
			name:   "honeypot with a malformed offer",
			body:   `{"fullName":"Bot","email":"bot@x.com","offerAmount":"abc","website":"spam"}`,
			status: http.StatusBadRequest,
			code:   "INVALID_SUBMISSION",
		},
		{
			name:   "honeypot with a boolean offer",
			body:   `{"fullName":"Bot","email":"bot@x.com","offerAmount":true,"website":"spam"}`,
			status: http.StatusBadRequest,
			code:   "INVALID_SUBMISSION",
		},
		{
			name:   "honeypot with a mistyped name",
			body:   `{"fullName":42,"email":"bot@x.com","offerAmount":900,"website":"spam"}`,
			status: http.StatusBadRequest,
			code:   "INVALID_SUBMISSION",
		},
		{
			name:   "boolean offer",
			body:   `{"fullName":"Jane","email":"jane@x.com","offerAmount":true}`,
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "low offer",
			body:   `{"fullName":"Jane","email":"jane@x.com","offerAmount":100}`,
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "non-numeric offer",
			body:   `{"fullName":"Jane","email":"jane@x.com","offerAmount":"lots"}`,
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			rec := app.do(http.MethodPost, "/api/contact", tt.body, nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode(t, rec)["code"])
			assert.Empty(t, app.mailer.sent)

			stored, err := app.submissions.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, stored)
		})
	}
}

func TestContact_RateLimit(t *testing.T) {
	app := newTestApp(t)
	body := `{"fullName":"Jane Doe","email":"jane@x.com","offerAmount":750}`

	for i := 0; i < 3; i++ {
		rec := app.do(http.MethodPost, "/api/contact", body, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := app.do(http.MethodPost, "/api/contact", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decode(t, rec)["code"])
	assert.Equal(t, "900", rec.Header().Get("Retry-After"))

	app.clock.Advance(15 * time.Minute)
	rec = app.do(http.MethodPost, "/api/contact", body, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestContact_RateLimitIgnoresForwardedFor(t *testing.T) {
	app := newTestApp(t)
	body := `{"fullName":"Jane Doe","email":"jane@x.com","offerAmount":750}`

	for i := 1; i <= 4; i++ {
		rec := app.doWithHeaders(http.MethodPost, "/api/contact", body, nil, map[string]string{
			echo.HeaderXForwardedFor: fmt.Sprintf("10.0.0.%d", i),
			echo.HeaderXRealIP:       fmt.Sprintf("10.0.1.%d", i),
		})
		if i < 4 {
			require.Equal(t, http.StatusCreated, rec.Code)
			continue
		}
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	}
}

func TestIPExtractor(t *testing.T) {
	request := func(remote, xff string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.RemoteAddr = remote
		req.Header.Set(echo.HeaderXForwardedFor, xff)
		return req
	}

	direct, err := IPExtractor(nil)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.1", direct(request("192.0.2.1:1234", "203.0.113.9")))

	proxied, err := IPExtractor([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.9", proxied(request("10.1.2.3:1234", "203.0.113.9")))
	// a peer outside the trusted range cannot choose its own address
	assert.Equal(t, "192.0.2.1", proxied(request("192.0.2.1:1234", "203.0.113.9")))

	_, err = IPExtractor([]string{"not-a-cidr"})
	assert.Error(t, err)
}

func TestSiteConfig_Redaction(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "admin123")

	rec := app.do(http.MethodPut, "/api/site-config",
		`{"domainName":"coolname.io","backgroundColor":"#FFFFFF","accentColor":"#FF5500","fontColor":"#111111","resendApiKey":"re_secret"}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, decode(t, rec), "resendApiKey")

	rec = app.do(http.MethodGet, "/api/site-config", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	anonymous := decode(t, rec)
	assert.Equal(t, "coolname.io", anonymous["domainName"])
	assert.NotContains(t, anonymous, "resendApiKey")

	rec = app.do(http.MethodGet, "/api/site-config", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "re_secret", decode(t, rec)["resendApiKey"])

	// a stale cookie is treated as anonymous rather than rejected
	rec = app.do(http.MethodGet, "/api/site-config", "", &http.Cookie{Name: handler.SessionCookieName, Value: "stale"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, decode(t, rec), "resendApiKey")
}

func TestSiteConfig_UpdateRequiresSession(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(http.MethodPut, "/api/site-config",
		`{"domainName":"x.io","backgroundColor":"#FFFFFF","accentColor":"#000000","fontColor":"#000000"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", decode(t, rec)["code"])
}

func TestChangePassword_Flow(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/api/change-password", `{"currentPassword":"admin123","newPassword":"newpass1"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cookie := app.login(t, "admin123")

	rec = app.do(http.MethodPost, "/api/change-password", `{"currentPassword":"wrong","newPassword":"newpass1"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decode(t, rec)["code"])

	rec = app.do(http.MethodPost, "/api/change-password", `{"currentPassword":"admin123","newPassword":"abc"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, rec)["code"])

	rec = app.do(http.MethodPost, "/api/change-password", `{"currentPassword":"admin123","newPassword":"newpass1"}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(http.MethodPost, "/api/login", `{"username":"admin","password":"admin123"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	app.login(t, "newpass1")
}

func TestLogout_EndsSession(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "admin123")

	rec := app.do(http.MethodGet, "/api/user", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", decode(t, rec)["username"])
	assert.NotContains(t, decode(t, rec), "passwordHash")

	rec = app.do(http.MethodPost, "/api/logout", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodGet, "/api/user", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_Validation(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(http.MethodPost, "/api/login", `{"username":"admin"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, rec)["code"])
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
