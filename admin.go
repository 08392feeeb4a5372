// admin.go - privacy-conscious analytics and admin pages
package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/srich3/portfolio/internal/config"
	"github.com/srich3/portfolio/internal/store"
	"go.uber.org/zap"
	g "maragu.dev/gomponents"
)

const (
	adminCookie       = "admin_token"
	adminCookieMaxAge = 3600 * 24
	recentVisitors    = 200
	retentionInterval = 24 * time.Hour
)

var errAdminToken = errors.New("failed to generate admin token")

type adminAuth struct {
	username string
	password string
	token    string
	salt     string
}

func newAdminAuth(cfg config.Config, logger *zap.Logger) (*adminAuth, error) {
	token, errToken := generateAdminToken(rand.Reader)
	if errToken != nil {
		return nil, errToken
	}
	salt, errSalt := generateAdminToken(rand.Reader)
	if errSalt != nil {
		return nil, errSalt
	}

	auth := &adminAuth{
		username: cfg.AdminUsername,
		password: cfg.AdminPassword,
		token:    token,
		salt:     salt,
	}

	logger.Info("Admin access available", zap.String("path", cfg.BasePath+"admin/login"))
	if !cfg.Release() {
		logger.Debug("Admin token (dev only)", zap.String("token", auth.token))
	}

	return auth, nil
}

func generateAdminToken(source io.Reader) (string, error) {
	buf := make([]byte, 32)
	if _, err := io.ReadFull(source, buf); err != nil {
		return "", errors.Join(err, errAdminToken)
	}

	return hex.EncodeToString(buf), nil
}

// hashIP is stable for one process run so unique visitors can be counted.
func (a *adminAuth) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + a.salt))

	return hex.EncodeToString(hash.Sum(nil))[:16]
}

func (a *adminAuth) valid(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1

	return userOK && passOK
}

func (a *app) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.admin.token)) != 1 {
			c.Redirect(http.StatusFound, a.views.URL("admin/login"))
			c.Abort()

			return
		}
		c.Next()
	}
}

// requireAnalytics answers 503 on analytics pages when tracking is disabled.
func (a *app) requireAnalytics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.analytics == nil {
			a.html(c, http.StatusServiceUnavailable, a.views.AdminError("Visitor analytics are disabled. Set ANALYTICS=true to enable them."))
			c.Abort()

			return
		}
		c.Next()
	}
}

// visitorTracking records a page view with a hashed client address.
func (a *app) visitorTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Respect Do Not Track header
		if a.analytics == nil || c.GetHeader("DNT") == "1" {
			c.Next()

			return
		}

		visit := store.Visit{
			HashedIP:  a.admin.hashIP(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      c.Request.URL.Path,
			CreatedOn: a.now(),
		}
		if err := a.analytics.RecordVisit(c.Request.Context(), visit); err != nil {
			a.logger.Error("Error recording visitor", zap.Error(err))
		}
		c.Next()
	}
}

// html renders a full admin document.
func (a *app) html(c *gin.Context, status int, node g.Node) {
	var out bytes.Buffer
	if err := node.Render(&out); err != nil {
		a.fail(c, err)

		return
	}

	c.Data(status, htmlContentType, out.Bytes())
}

// cleanup removes analytics older than the retention window.
func (a *app) cleanup(ctx context.Context) (int64, error) {
	removed, err := a.analytics.Cleanup(ctx, a.now().Add(-a.cfg.VisitorRetention))
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		a.logger.Info("Privacy cleanup removed old analytics",
			zap.Int64("rows", removed),
			zap.Duration("retention", a.cfg.VisitorRetention))
	}

	return removed, nil
}

// retention runs the privacy cleanup at start and then daily until ctx ends.
func (a *app) retention(ctx context.Context) error {
	if a.analytics == nil {
		return nil
	}

	ticker := time.NewTicker(retentionInterval)
	defer ticker.Stop()

	for {
		if _, err := a.cleanup(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error("Error cleaning up old visitor data", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (a *app) setupAdminRoutes(r *gin.RouterGroup) {
	r.GET("/privacy", func(c *gin.Context) {
		a.html(c, http.StatusOK, a.views.Privacy())
	})

	r.GET("/admin/login", func(c *gin.Context) {
		a.html(c, http.StatusOK, a.views.AdminLogin(""))
	})

	r.POST("/admin/login", func(c *gin.Context) {
		client := a.admin.hashIP(c.ClientIP())

		if !a.admin.valid(c.PostForm("username"), c.PostForm("password")) {
			a.logger.Warn("Failed admin login attempt", zap.String("client", client))
			a.html(c, http.StatusUnauthorized, a.views.AdminLogin("Invalid credentials"))

			return
		}

		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(adminCookie, a.admin.token, adminCookieMaxAge, a.cfg.BasePath+"admin", "", false, true)
		a.logger.Info("Admin login successful", zap.String("client", client))
		c.Redirect(http.StatusFound, a.views.URL("admin/dashboard"))
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, a.cfg.BasePath+"admin", "", false, true)
		a.logger.Info("Admin logout", zap.String("client", a.admin.hashIP(c.ClientIP())))
		c.Redirect(http.StatusFound, a.views.URL("admin/login"))
	})

	// Protected admin routes group
	adminGroup := r.Group("/admin")
	adminGroup.Use(a.adminAuthMiddleware(), a.requireAnalytics())

	adminGroup.GET("/dashboard", func(c *gin.Context) {
		stats, err := a.analytics.Stats(c.Request.Context(), a.now())
		if err != nil {
			a.logger.Error("Error loading admin stats", zap.Error(err))
			a.html(c, http.StatusInternalServerError, a.views.AdminError("Failed to load statistics"))

			return
		}

		a.html(c, http.StatusOK, a.views.AdminDashboard(stats, a.sessions.Len(), a.now()))
	})

	adminGroup.GET("/api/stats", func(c *gin.Context) {
		stats, err := a.analytics.Stats(c.Request.Context(), a.now())
		if err != nil {
			a.logger.Error("Error loading admin stats", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})

			return
		}
		c.JSON(http.StatusOK, stats)
	})

	adminGroup.GET("/visitors", func(c *gin.Context) {
		visits, err := a.analytics.RecentVisitors(c.Request.Context(), recentVisitors)
		if err != nil {
			a.logger.Error("Error loading visitors", zap.Error(err))
			a.html(c, http.StatusInternalServerError, a.views.AdminError("Failed to load visitors"))

			return
		}

		a.html(c, http.StatusOK, a.views.AdminVisitors(visits, a.now()))
	})

	// Run the retention cleanup now instead of waiting for the daily pass.
	adminGroup.POST("/privacy/cleanup", func(c *gin.Context) {
		removed, err := a.cleanup(c.Request.Context())
		if err != nil {
			a.logger.Error("Error cleaning up old visitor data", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "privacy cleanup failed"})

			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete", "removed": removed})
	})

	adminGroup.GET("/export/stats", func(c *gin.Context) {
		stats, err := a.analytics.Stats(c.Request.Context(), a.now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})

			return
		}

		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		a.logger.Info("Admin stats exported", zap.String("client", a.admin.hashIP(c.ClientIP())))
		c.JSON(http.StatusOK, stats)
	})
}
