package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/srich3/portfolio/internal/config"
	"github.com/srich3/portfolio/internal/content"
	"github.com/srich3/portfolio/internal/session"
	"github.com/srich3/portfolio/internal/store"
	"github.com/srich3/portfolio/internal/viewstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testTimer struct {
	due     time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *testTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true

	return active
}

// testScheduler fires callbacks only when Advance moves past them.
type testScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*testTimer
}

func (s *testScheduler) AfterFunc(delay time.Duration, fn func()) viewstate.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer := &testTimer{due: s.now + delay, fn: fn}
	s.timers = append(s.timers, timer)

	return timer
}

func (s *testScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*testTimer
	for _, timer := range s.timers {
		if !timer.stopped && !timer.fired && timer.due <= s.now {
			timer.fired = true
			due = append(due, timer)
		}
	}
	s.mu.Unlock()

	for _, timer := range due {
		timer.fn()
	}
}

type testServer struct {
	app       *app
	router    *gin.Engine
	scheduler *testScheduler
}

func testConfig() config.Config {
	return config.Config{
		Port:             "8080",
		Mode:             gin.TestMode,
		BasePath:         "/",
		AdminUsername:    "owner",
		AdminPassword:    "correct-horse",
		SessionTTL:       time.Hour,
		SweepInterval:    time.Minute,
		VisitorRetention: 365 * 24 * time.Hour,
		SessionLimit:     100,
		LogLevel:         "debug",
	}
}

func newTestServer(t *testing.T, cfg config.Config, withAnalytics bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	site, err := content.Load()
	require.NoError(t, err)

	var analytics *store.Store
	if withAnalytics {
		analytics, err = store.Open(context.Background(), "", true)
		require.NoError(t, err)
		t.Cleanup(func() { _ = analytics.Close() })
	}

	logger := zaptest.NewLogger(t)
	scheduler := &testScheduler{}
	sessions, err := session.NewStore(site, cfg.SessionTTL,
		session.WithLimit(cfg.SessionLimit),
		session.WithScheduler(scheduler),
		session.WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(sessions.Close)

	application, err := newApp(cfg, logger, site, sessions, analytics)
	require.NoError(t, err)

	return &testServer{app: application, router: application.router(), scheduler: scheduler}
}

var pageIDPattern = regexp.MustCompile(`data-page-id="([^"]+)"`)

// visitor is one browser tab. Loading the home page mounts a page whose id
// is sent with every later fragment request, as htmx does via hx-headers.
type visitor struct {
	t       *testing.T
	server  *testServer
	pageID  string
	cookies map[string]*http.Cookie
	headers map[string]string
}

func (s *testServer) visitor(t *testing.T) *visitor {
	t.Helper()

	return &visitor{t: t, server: s, cookies: map[string]*http.Cookie{}, headers: map[string]string{}}
}

func (v *visitor) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	v.t.Helper()

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for name, value := range v.headers {
		req.Header.Set(name, value)
	}
	if v.pageID != "" {
		req.Header.Set(pageHeader, v.pageID)
	}
	for _, cookie := range v.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	v.server.router.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(v.cookies, cookie.Name)

			continue
		}
		v.cookies[cookie.Name] = cookie
	}

	if match := pageIDPattern.FindStringSubmatch(rec.Body.String()); match != nil {
		v.pageID = match[1]
	}

	return rec
}

// tab opens another tab in the same browser, sharing its cookies.
func (v *visitor) tab() *visitor {
	return &visitor{t: v.t, server: v.server, cookies: v.cookies, headers: v.headers}
}

func (s *testServer) page(t *testing.T, id string) *session.Page {
	t.Helper()

	page, err := s.app.sessions.Get(id)
	require.NoError(t, err)

	return page
}

func (v *visitor) get(path string) *httptest.ResponseRecorder {
	v.t.Helper()

	return v.do(http.MethodGet, path, nil)
}

func (v *visitor) post(path string, form url.Values) *httptest.ResponseRecorder {
	v.t.Helper()
	if form == nil {
		form = url.Values{}
	}

	return v.do(http.MethodPost, path, form)
}

func TestHomeMountsPage(t *testing.T) {
	server := newTestServer(t, testConfig(), false)
	browser := server.visitor(t)

	rec := browser.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `data-project="typeblade"`)
	require.Contains(t, rec.Body.String(), `data-tab="scalable"`)
	require.Contains(t, rec.Body.String(), `hx-headers="{&#34;X-Page-Id&#34;: &#34;`+browser.pageID+`&#34;}"`)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.NotEmpty(t, browser.pageID)
	require.Empty(t, rec.Result().Cookies())
	require.Equal(t, 1, server.app.sessions.Len())
}

func TestReloadStartsFromDefaults(t *testing.T) {
	server := newTestServer(t, testConfig(), false)
	browser := server.visitor(t)
	browser.get("/")
	first := browser.pageID

	require.Equal(t, http.StatusOK, browser.post("/ui/architecture/realtime", nil).Code)
	require.Equal(t, http.StatusOK, browser.post("/ui/projects/typeblade", nil).Code)
	require.Equal(t, http.StatusNoContent, browser.post("/ui/contact/field", url.Values{"name": {"Ada Lovelace"}}).Code)
	require.Equal(t, http.StatusOK, browser.post("/ui/reveal/"+content.RevealHero, nil).Code)
	require.Equal(t, http.StatusOK, browser.post("/ui/nav/menu", nil).Code)

	rec := browser.get("/")
	require.NotEqual(t, first, browser.pageID)
	body := rec.Body.String()
	require.Contains(t, body, `data-tab="scalable"`)
	require.NotContains(t, body, `data-tab="realtime"`)
	require.NotContains(t, body, "Ada Lovelace")
	require.Contains(t, body, `hx-post="/ui/reveal/hero"`)
	require.NotContains(t, body, `class="nav-mobile"`)
}

func TestTabsDoNotShareState(t *testing.T) {
	server := newTestServer(t, testConfig(), false)
	first := server.visitor(t)
	first.get("/")
	second := first.tab()
	second.get("/")
	require.NotEqual(t, first.pageID, second.pageID)

	first.post("/ui/architecture/monorepo", nil)
	first.post("/ui/contact/field", url.Values{"subject": {"Hello"}})
	first.post("/ui/reveal/"+content.RevealHero, nil)

	require.Contains(t, second.post("/ui/architecture/realtime", nil).Body.String(), `data-tab="realtime"`)

	firstPage := server.page(t, first.pageID)
	secondPage := server.page(t, second.pageID)
	require.Equal(t, "monorepo", firstPage.Architecture.Active())
	require.Equal(t, "realtime", secondPage.Architecture.Active())
	require.Equal(t, "Hello", firstPage.Contact.Values().Subject)
	require.Empty(t, secondPage.Contact.Values().Subject)
	require.True(t, firstPage.Reveals.Revealed(content.RevealHero))
	require.False(t, secondPage.Reveals.Revealed(content.RevealHero))
}

func TestFragmentsNeedMountedPage(t *testing.T) {
	server := newTestServer(t, testConfig(), false)
	stranger := server.visitor(t)

	for range 50 {
		rec := stranger.post("/ui/nav/scroll", url.Values{"offset": {"40"}})
		require.Equal(t, http.StatusGone, rec.Code)
		require.Equal(t, "true", rec.Header().Get("HX-Refresh"))
	}

	stranger.pageID = "not-a-page"
	require.Equal(t, http.StatusGone, stranger.post("/ui/contact", contactValues()).Code)
	require.Equal(t, http.StatusGone, stranger.get("/ui/contact").Code)
	require.Equal(t, 0, server.app.sessions.Len())
}

func TestPageLimitEvictsOldest(t *testing.T) {
	cfg := testConfig()
	cfg.SessionLimit = 3
	server := newTestServer(t, cfg, false)

	oldest := server.visitor(t)
	oldest.get("/")
	for range 4 {
		server.visitor(t).get("/")
	}

	require.Equal(t, 3, server.app.sessions.Len())
	require.Equal(t, http.StatusGone, oldest.post("/ui/nav/menu", nil).Code)
}

func TestClosePage(t *testing.T) {
	server := newTestServer(t, testConfig(), false)
	browser := server.visitor(t)
	browser.get("/")
	pageID := browser.pageID
	page := server.page(t, pageID)

	browser.pageID = ""
	rec := browser.post("/ui/page/close", url.Values{"page_id": {pageID}})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, 0, server.app.sessions.Len())
	require.ErrorIs(t, page.Contact.Submit(), viewstate.ErrFormClosed)

	browser.pageID = pageID
	require.Equal(t, http.StatusGone, browser.post("/ui/contact", contactValues()).Code)
}

func TestArchitectureSwitchRoundTrip(t *testing.T) {
	server := newTestServer(t, testConfig(), false)
	browser := server.visitor(t)
	browser.get("/")

	original := browser.post("/ui/architecture/scalable", nil)
	require.Equal(t, http.StatusOK, original.Code)
	require.Contains(t, original.Body.String(), "Enterprise-grade architecture")

	switched := browser.post("/ui/architecture/realtime", nil)
	require.Equal(t, http.StatusOK, switched.Code)
	require.Contains(t, switched.Body.String(), "Low-latency collaborative editing infrastructure")
	require.Contains(t, switched.Body.String(), ">Yjs<")
	require.NotContains(t, switched.Body.String(), "Enterprise-grade architecture")

	restored := browser.post("/ui/architecture/scalable", nil)
	require.Equal(t, original.Body.String(), restored.Body.String())

	require.Equal(t, http.StatusNotFound, browser.post("/ui/architecture/mainframe", nil).Code)
	require.Equal(t, http.StatusNotFound, browser.post("/ui/projects/missing", nil).Code)
	require.Equal(t, http.StatusOK, browser.post("/ui/projects/typeblade", nil).Code)
}

func TestNavScrollThreshold(t *testing.T) {
	server := newTestServer(t, testConfig(), false)
	browser := server.visitor(t)
	browser.get("/")

	rec := browser.post("/ui/nav/scroll", url.Values{"offset": {"20"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `class="site-header"`)

	rec = browser.post("/ui/nav/scroll", url.Values{"offset": {"20.5"}})
	require.Contains(t, rec.Body.String(), `class="site-header scrolled"`)

	rec = browser.post("/ui/nav/scroll", url.Values{"offset": {"0"}})
	require.Contains(t, rec.Body.String(), `class="site-header"`)

	require.Equal(t, http.StatusBadRequest, browser.post("/ui/nav/scroll", url.Values{"offset": {"down"}}).Code)
}

func TestNavMenuAndNavigate(t *testing.T) {
	server := newTestServer(t, testConfig(), false)
	browser := server.visitor(t)
	browser.get("/")

	rec := browser.post("/ui/nav/menu", nil)
	require.Contains(t, rec.Body.String(), `class="nav-mobile"`)

	rec = browser.post("/ui/nav/navigate", url.Values{"href": {"#projects"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), `class="nav-mobile"`)
	require.Equal(t, `{"portfolio:scroll": "#projects"}`, rec.Header().Get("HX-Trigger-After-Swap"))

	require.Equal(t, http.StatusBadRequest, browser.post("/ui/nav/navigate", url.Values{"href": {"https://example.com"}}).Code)
}

func contactValues() url.Values {
	return url.Values{
		"name":    {"Ada Lovelace"},
		"email":   {"ada@example.com"},
		"subject": {"Engines"},
		"message": {"Hello there"},
	}
}

func TestContactFlow(t *testing.T) {
	server := newTestServer(t, testConfig(), false)
	browser := server.visitor(t)
	browser.get("/")

	require.Equal(t, http.StatusNoContent, browser.post("/ui/contact/field", url.Values{"name": {"Ada Lovelace"}}).Code)
	require.Equal(t, http.StatusNoContent, browser.post("/ui/contact/field", url.Values{"field": {"email"}, "value": {"ada@example.com"}}).Code)
	require.Equal(t, http.StatusBadRequest, browser.post("/ui/contact/field", url.Values{"field": {"phone"}, "value": {"555"}}).Code)

	rec := browser.post("/ui/contact", url.Values{"name": {"Ada Lovelace"}, "email": {"ada@example.com"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "Please fill in: subject, message")
	require.Contains(t, rec.Body.String(), `value="Ada Lovelace"`)

	rec = browser.post("/ui/contact", contactValues())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Message Sent!")
	require.Contains(t, rec.Body.String(), "disabled")

	rec = browser.post("/ui/contact", contactValues())
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "Message Sent!")

	server.scheduler.Advance(viewstate.ResetDelay - time.Millisecond)
	require.Contains(t, browser.get("/ui/contact").Body.String(), "Message Sent!")

	server.scheduler.Advance(time.Millisecond)
	rec = browser.get("/ui/contact")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Send Message")
	require.NotContains(t, rec.Body.String(), "disabled")
	require.Contains(t, rec.Body.String(), `value="ada@example.com"`)
	require.Contains(t, rec.Body.String(), "Hello there")
}

func TestRevealLatchesOnce(t *testing.T) {
	server := newTestServer(t, testConfig(), true)
	browser := server.visitor(t)
	browser.get("/")

	rec := browser.post("/ui/reveal/"+content.RevealHero, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `class="reveal revealed"`)
	require.NotContains(t, rec.Body.String(), "intersect once")

	second := browser.post("/ui/reveal/"+content.RevealHero, nil)
	require.Equal(t, rec.Body.String(), second.Body.String())

	rec = browser.post("/ui/reveal/"+content.ExpertiseRevealID("web"), nil)
	require.Contains(t, rec.Body.String(), "width: 90%")

	require.Equal(t, http.StatusNotFound, browser.post("/ui/reveal/nowhere", nil).Code)

	stats, err := server.app.analytics.Stats(context.Background(), time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.TotalReveals)
}

func TestVisitorTracking(t *testing.T) {
	server := newTestServer(t, testConfig(), true)
	tracked := server.visitor(t)
	private := server.visitor(t)
	private.headers["DNT"] = "1"

	tracked.get("/")
	tracked.get("/")
	private.get("/")
	tracked.post("/ui/architecture/realtime", nil)

	stats, err := server.app.analytics.Stats(context.Background(), time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalVisitors)
	assert.EqualValues(t, 1, stats.UniqueVisitors)
	require.Len(t, stats.RecentVisitors, 2)
	assert.Len(t, stats.RecentVisitors[0].HashedIP, 16)
	assert.Equal(t, "/", stats.RecentVisitors[0].Path)
}

func TestAdminLogin(t *testing.T) {
	server := newTestServer(t, testConfig(), true)
	admin := server.visitor(t)

	rec := admin.get("/admin/dashboard")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/admin/login", rec.Header().Get("Location"))

	rec = admin.post("/admin/login", url.Values{"username": {"owner"}, "password": {"admin123"}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid credentials")

	rec = admin.post("/admin/login", url.Values{"username": {"owner"}, "password": {"correct-horse"}})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))
	require.Contains(t, admin.cookies, adminCookie)

	rec = admin.get("/admin/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Total visitors")

	rec = admin.get("/admin/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total_visitors":0`)

	rec = admin.get("/admin/export/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "attachment; filename=admin-stats.json", rec.Header().Get("Content-Disposition"))

	rec = admin.post("/admin/privacy/cleanup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"removed":0`)

	require.Equal(t, http.StatusOK, admin.get("/admin/visitors").Code)

	rec = admin.get("/admin/logout")
	require.Equal(t, http.StatusFound, rec.Code)
	require.NotContains(t, admin.cookies, adminCookie)
	require.Equal(t, http.StatusFound, admin.get("/admin/dashboard").Code)
}

func TestAdminWithoutAnalytics(t *testing.T) {
	server := newTestServer(t, testConfig(), false)
	admin := server.visitor(t)

	admin.post("/admin/login", url.Values{"username": {"owner"}, "password": {"correct-horse"}})
	rec := admin.get("/admin/dashboard")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "Visitor analytics are disabled")

	require.NoError(t, server.app.retention(context.Background()))
}

func TestRetentionCleanup(t *testing.T) {
	server := newTestServer(t, testConfig(), true)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, server.app.analytics.RecordVisit(ctx, store.Visit{HashedIP: "old", Path: "/", CreatedOn: now.Add(-400 * 24 * time.Hour)}))
	require.NoError(t, server.app.analytics.RecordVisit(ctx, store.Visit{HashedIP: "new", Path: "/", CreatedOn: now}))

	removed, err := server.app.cleanup(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.NoError(t, server.app.retention(cancelled))
}

func TestBasePathAndAssets(t *testing.T) {
	cfg := testConfig()
	cfg.BasePath = config.ProdBasePath
	server := newTestServer(t, cfg, false)
	browser := server.visitor(t)

	rec := browser.get("/srich3portfolio/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `href="/srich3portfolio/assets/site.css"`)
	require.Contains(t, rec.Body.String(), `data-close-url="/srich3portfolio/ui/page/close"`)
	require.Equal(t, http.StatusOK, browser.post("/srich3portfolio/ui/nav/menu", nil).Code)

	require.Equal(t, http.StatusOK, browser.get("/srich3portfolio/assets/site.css").Code)
	require.Equal(t, http.StatusNotFound, browser.get("/").Code)

	rec = browser.get("/srich3portfolio/resume")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "Resume_srichardson.pdf")

	rec = browser.get("/srich3portfolio/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
}
