package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/srich3/portfolio/internal/config"
	"github.com/srich3/portfolio/internal/content"
	"github.com/srich3/portfolio/internal/logging"
	"github.com/srich3/portfolio/internal/session"
	"github.com/srich3/portfolio/internal/store"
	"github.com/srich3/portfolio/internal/viewstate"
	"github.com/srich3/portfolio/internal/views"
	"go.uber.org/zap"
	g "maragu.dev/gomponents"
)

const (
	// pageHeader carries the mounted page id on every HTMX request.
	pageHeader      = "X-Page-Id"
	htmlContentType = "text/html; charset=utf-8"
)

var (
	errBadOffset = errors.New("invalid scroll offset")
	errBadAnchor = errors.New("unknown navigation anchor")
)

type app struct {
	cfg       config.Config
	logger    *zap.Logger
	site      *content.Site
	sessions  *session.Store
	analytics *store.Store // nil when visitor tracking is disabled
	views     views.Renderer
	admin     *adminAuth
	now       func() time.Time
}

func newApp(cfg config.Config, logger *zap.Logger, site *content.Site, sessions *session.Store, analytics *store.Store) (*app, error) {
	admin, err := newAdminAuth(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		site:      site,
		sessions:  sessions,
		analytics: analytics,
		views:     views.NewRenderer(site, cfg.BasePath),
		admin:     admin,
		now:       time.Now,
	}, nil
}

func (a *app) router() *gin.Engine {
	router := gin.New()
	router.Use(logging.Middleware(a.logger, a.admin.hashIP), logging.Recovery(a.logger))

	assets, errAssets := fs.Sub(views.Assets, "assets")
	if errAssets != nil {
		panic(errAssets)
	}

	base := router.Group(a.cfg.BasePath)
	base.StaticFS("/assets", http.FS(assets))

	// Home page route
	base.GET("/", a.visitorTracking(), a.home)
	base.GET("/resume", a.resume)
	base.GET("/healthz", a.health)

	// HTMX fragments driven by the page session
	ui := base.Group("/ui")
	ui.POST("/nav/scroll", a.navScroll)
	ui.POST("/nav/menu", a.navMenu)
	ui.POST("/nav/navigate", a.navNavigate)
	ui.POST("/projects/:id", a.selectProject)
	ui.POST("/architecture/:id", a.selectArchitecture)
	ui.POST("/reveal/:id", a.reveal)
	ui.POST("/contact/field", a.contactField)
	ui.POST("/contact", a.contactSubmit)
	ui.GET("/contact", a.contactForm)
	ui.POST("/page/close", a.closePage)

	a.setupAdminRoutes(base)

	return router
}

// page returns the mounted page named by the request. Only the home route
// mounts pages; fragments for an unknown page fail with ErrNotFound.
func (a *app) page(c *gin.Context) (*session.Page, error) {
	return a.sessions.Get(c.GetHeader(pageHeader))
}

// withPage runs fn under the lock of the requesting page and writes the
// returned fragment.
func (a *app) withPage(c *gin.Context, fn func(p *session.Page) (int, g.Node, error)) {
	page, err := a.page(c)
	if err != nil {
		a.fail(c, err)

		return
	}

	a.render(c, page, fn)
}

// render writes the node returned by fn. A nil node writes only the status.
func (a *app) render(c *gin.Context, page *session.Page, fn func(p *session.Page) (int, g.Node, error)) {
	var (
		out    bytes.Buffer
		status int
	)
	errDo := page.Do(func(p *session.Page) error {
		var (
			node  g.Node
			errFn error
		)
		status, node, errFn = fn(p)
		if errFn != nil || node == nil {
			return errFn
		}

		return node.Render(&out)
	})
	if errDo != nil {
		a.fail(c, errDo)

		return
	}

	if out.Len() == 0 {
		c.Status(status)

		return
	}

	c.Data(status, htmlContentType, out.Bytes())
}

func (a *app) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrClosed), errors.Is(err, viewstate.ErrFormClosed):
		// The page expired or was never mounted here: have htmx reload it.
		c.Header("HX-Refresh", "true")
		c.String(http.StatusGone, "page expired")
	case errors.Is(err, viewstate.ErrUnknownOption), errors.Is(err, viewstate.ErrUnknownElement):
		c.String(http.StatusNotFound, "not found")
	case errors.Is(err, viewstate.ErrUnknownField), errors.Is(err, errBadOffset), errors.Is(err, errBadAnchor):
		c.String(http.StatusBadRequest, err.Error())
	default:
		a.logger.Error("Request error", zap.Error(err), zap.String("path", c.Request.URL.Path))
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "internal error")
	}
}

// home mounts a fresh page on every load, so a reload starts from defaults.
func (a *app) home(c *gin.Context) {
	page, err := a.sessions.Create()
	if err != nil {
		a.fail(c, err)

		return
	}

	c.Header("Cache-Control", "no-store")
	a.render(c, page, func(p *session.Page) (int, g.Node, error) {
		return http.StatusOK, a.views.Page(p), nil
	})
}

// closePage unmounts a page when the browser leaves it.
func (a *app) closePage(c *gin.Context) {
	id := c.GetHeader(pageHeader)
	if id == "" {
		id = c.PostForm("page_id")
	}

	a.sessions.Remove(id)
	c.Status(http.StatusNoContent)
}

func (a *app) navScroll(c *gin.Context) {
	offset, errParse := strconv.ParseFloat(c.PostForm("offset"), 64)
	if errParse != nil {
		a.fail(c, errBadOffset)

		return
	}

	a.withPage(c, func(p *session.Page) (int, g.Node, error) {
		p.Nav.Scroll(offset)

		return http.StatusOK, a.views.Header(p), nil
	})
}

func (a *app) navMenu(c *gin.Context) {
	a.withPage(c, func(p *session.Page) (int, g.Node, error) {
		p.Nav.ToggleMenu()

		return http.StatusOK, a.views.Header(p), nil
	})
}

func (a *app) navNavigate(c *gin.Context) {
	href := c.PostForm("href")
	if !a.site.HasAnchor(href) {
		a.fail(c, errBadAnchor)

		return
	}

	a.withPage(c, func(p *session.Page) (int, g.Node, error) {
		target := p.Nav.Navigate(href)
		c.Header("HX-Trigger-After-Swap", fmt.Sprintf(`{"portfolio:scroll": %q}`, target))

		return http.StatusOK, a.views.Header(p), nil
	})
}

func (a *app) selectProject(c *gin.Context) {
	a.withPage(c, func(p *session.Page) (int, g.Node, error) {
		if err := p.Projects.Select(c.Param("id")); err != nil {
			return 0, nil, err
		}

		return http.StatusOK, a.views.Projects(p), nil
	})
}

func (a *app) selectArchitecture(c *gin.Context) {
	a.withPage(c, func(p *session.Page) (int, g.Node, error) {
		if err := p.Architecture.Select(c.Param("id")); err != nil {
			return 0, nil, err
		}

		return http.StatusOK, a.views.Architecture(p), nil
	})
}

func (a *app) reveal(c *gin.Context) {
	id := c.Param("id")
	firstSight := false

	a.withPage(c, func(p *session.Page) (int, g.Node, error) {
		_, changed, err := p.Reveals.Observe(id, true)
		if err != nil {
			return 0, nil, err
		}
		firstSight = changed

		node, _ := a.views.Reveal(p, id)

		return http.StatusOK, node, nil
	})

	if firstSight {
		a.recordReveal(c.Request.Context(), id)
	}
}

// setContactFields copies any posted contact inputs into the form.
func setContactFields(c *gin.Context, form *viewstate.ContactForm) error {
	for _, field := range viewstate.ContactFields {
		if value, ok := c.GetPostForm(field); ok {
			if err := form.Set(field, value); err != nil {
				return err
			}
		}
	}

	if field, ok := c.GetPostForm("field"); ok {
		return form.Set(field, c.PostForm("value"))
	}

	return nil
}

func (a *app) contactField(c *gin.Context) {
	a.withPage(c, func(p *session.Page) (int, g.Node, error) {
		if err := setContactFields(c, p.Contact); err != nil {
			return 0, nil, err
		}

		return http.StatusNoContent, nil, nil
	})
}

// contactSubmit simulates sending the message: the form flips to its sent
// state and nothing leaves the server.
func (a *app) contactSubmit(c *gin.Context) {
	a.withPage(c, func(p *session.Page) (int, g.Node, error) {
		if err := setContactFields(c, p.Contact); err != nil {
			return 0, nil, err
		}

		errSubmit := p.Contact.Submit()

		var missing *viewstate.MissingFieldsError
		switch {
		case errSubmit == nil:
			a.logger.Info("Contact form submitted", zap.String("session", p.ID))

			return http.StatusOK, a.views.ContactForm(p, ""), nil
		case errors.As(errSubmit, &missing):
			notice := "Please fill in: " + strings.Join(missing.Fields, ", ")

			return http.StatusUnprocessableEntity, a.views.ContactForm(p, notice), nil
		case errors.Is(errSubmit, viewstate.ErrSubmitPending):
			return http.StatusConflict, a.views.ContactForm(p, ""), nil
		default:
			return 0, nil, errSubmit
		}
	})
}

func (a *app) contactForm(c *gin.Context) {
	a.withPage(c, func(p *session.Page) (int, g.Node, error) {
		return http.StatusOK, a.views.ContactForm(p, ""), nil
	})
}

func (a *app) resume(c *gin.Context) {
	name := a.site.Profile().Resume
	data, err := views.Assets.ReadFile("assets/" + name)
	if err != nil {
		c.String(http.StatusNotFound, "resume not available")

		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", data)
}

func (a *app) health(c *gin.Context) {
	status := gin.H{"status": "ok", "sessions": a.sessions.Len()}

	if a.analytics != nil {
		if err := a.analytics.Ping(c.Request.Context()); err != nil {
			a.logger.Error("Analytics database unavailable", zap.Error(err))
			status["status"] = "degraded"
			c.JSON(http.StatusServiceUnavailable, status)

			return
		}
	}

	c.JSON(http.StatusOK, status)
}

func (a *app) recordReveal(ctx context.Context, id string) {
	if a.analytics == nil {
		return
	}

	if err := a.analytics.RecordReveal(ctx, id, a.now()); err != nil {
		a.logger.Error("Error recording reveal", zap.Error(err), zap.String("element", id))
	}
}
