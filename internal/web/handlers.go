// Package web serves the browser dashboard: passwordless sign-in over email
// links, lesson creation, and rendered lesson pages.
package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"

	"github.com/skillence/skillence/internal/lesson"
	"github.com/skillence/skillence/internal/logger"
	"github.com/skillence/skillence/internal/mailer"
	"github.com/skillence/skillence/internal/service"
	"github.com/skillence/skillence/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageSize is the number of lessons per dashboard page.
const PageSize = 10

// Handler serves the web UI routes.
type Handler struct {
	users   *store.UserRepo
	lessons *service.LessonService
	mail    *mailer.Mailer
	secret  string
	tmpl    *template.Template
	md      goldmark.Markdown
	log     *logger.Logger
}

// NewHandler creates the web handler.
func NewHandler(users *store.UserRepo, lessons *service.LessonService, mail *mailer.Mailer, secret string, log *logger.Logger) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		users:   users,
		lessons: lessons,
		mail:    mail,
		secret:  secret,
		tmpl:    tmpl,
		md:      goldmark.New(),
		log:     log,
	}, nil
}

// Register mounts the web routes on the engine.
func (h *Handler) Register(r *gin.Engine) {
	web := r.Group("/web")
	web.GET("/login", h.loginForm)
	web.POST("/login", h.login)
	web.GET("/auth/callback", h.authCallback)
	web.GET("/logout", h.logout)

	authed := web.Group("")
	authed.Use(h.requireSession)
	authed.GET("/dashboard", h.dashboard)
	authed.POST("/lessons", h.createLesson)
	authed.GET("/lessons/:id", h.showLesson)
}

func (h *Handler) render(c *gin.Context, status int, name string, data any) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := h.tmpl.ExecuteTemplate(c.Writer, name, data); err != nil {
		h.log.Error("render template failed", "template", name, "error", err)
	}
}

func (h *Handler) loginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login", gin.H{})
}

func (h *Handler) login(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.PostForm("email")))
	if email == "" || !strings.Contains(email, "@") {
		h.render(c, http.StatusBadRequest, "login", gin.H{"Error": "Please enter a valid email address."})
		return
	}

	user, err := h.users.GetOrCreateByEmail(c.Request.Context(), email)
	if err != nil {
		h.log.Error("login: get or create user failed", "error", err)
		h.render(c, http.StatusInternalServerError, "login", gin.H{"Error": "Something went wrong, please try again."})
		return
	}

	token, err := randomToken()
	if err != nil {
		h.log.Error("login: token generation failed", "error", err)
		h.render(c, http.StatusInternalServerError, "login", gin.H{"Error": "Something went wrong, please try again."})
		return
	}

	if err := h.users.CreateLoginToken(c.Request.Context(), user.ID, token, time.Now().Add(loginTokenTTL)); err != nil {
		h.log.Error("login: store token failed", "error", err)
		h.render(c, http.StatusInternalServerError, "login", gin.H{"Error": "Something went wrong, please try again."})
		return
	}

	if err := h.mail.SendLoginLink(c.Request.Context(), email, token); err != nil {
		h.log.Error("login: send link failed", "to", email, "error", err)
		h.render(c, http.StatusInternalServerError, "login", gin.H{"Error": "Could not send the sign-in email, please try again."})
		return
	}

	h.render(c, http.StatusOK, "sent", gin.H{"Email": email})
}

func (h *Handler) authCallback(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.Redirect(http.StatusFound, "/web/login")
		return
	}

	user, err := h.users.ConsumeLoginToken(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) || errors.Is(err, store.ErrTokenExpired) || errors.Is(err, store.ErrTokenUsed) {
			h.render(c, http.StatusUnauthorized, "login", gin.H{"Error": "That sign-in link is invalid or has expired. Request a new one."})
			return
		}
		h.log.Error("auth callback failed", "error", err)
		h.render(c, http.StatusInternalServerError, "login", gin.H{"Error": "Something went wrong, please try again."})
		return
	}

	sessionToken, err := randomToken()
	if err != nil {
		h.log.Error("auth callback: token generation failed", "error", err)
		h.render(c, http.StatusInternalServerError, "login", gin.H{"Error": "Something went wrong, please try again."})
		return
	}

	expiresAt := time.Now().Add(sessionTTL)
	if _, err := h.users.CreateSession(c.Request.Context(), user.ID, sessionToken, expiresAt); err != nil {
		h.log.Error("auth callback: create session failed", "error", err)
		h.render(c, http.StatusInternalServerError, "login", gin.H{"Error": "Something went wrong, please try again."})
		return
	}

	signed, err := signSession(h.secret, sessionToken, expiresAt)
	if err != nil {
		h.log.Error("auth callback: sign session failed", "error", err)
		h.render(c, http.StatusInternalServerError, "login", gin.H{"Error": "Something went wrong, please try again."})
		return
	}

	c.SetCookie(SessionCookie, signed, int(sessionTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, "/web/dashboard")
}

func (h *Handler) logout(c *gin.Context) {
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		if sessionToken, perr := parseSession(h.secret, cookie); perr == nil {
			if derr := h.users.DeleteSession(c.Request.Context(), sessionToken); derr != nil {
				h.log.Warn("logout: delete session failed", "error", derr)
			}
		}
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/web/login")
}

// requireSession resolves the session cookie to a live server-side session
// and stores the user on the request context.
func (h *Handler) requireSession(c *gin.Context) {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil {
		c.Redirect(http.StatusFound, "/web/login")
		c.Abort()
		return
	}

	sessionToken, err := parseSession(h.secret, cookie)
	if err != nil {
		c.Redirect(http.StatusFound, "/web/login")
		c.Abort()
		return
	}

	sess, err := h.users.FindSession(c.Request.Context(), sessionToken)
	if err != nil {
		c.Redirect(http.StatusFound, "/web/login")
		c.Abort()
		return
	}

	c.Set("user", sess.User)
	c.Next()
}

func currentUser(c *gin.Context) *store.User {
	if v, ok := c.Get("user"); ok {
		if u, ok := v.(*store.User); ok {
			return u
		}
	}
	return nil
}

func (h *Handler) dashboard(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	lessons, total, err := h.lessons.List(c.Request.Context(), (page-1)*PageSize, PageSize)
	if err != nil {
		h.log.Error("dashboard: list lessons failed", "error", err)
		h.render(c, http.StatusInternalServerError, "dashboard", gin.H{
			"Email": userEmail(c),
			"Error": "Could not load lessons.",
		})
		return
	}

	h.render(c, http.StatusOK, "dashboard", gin.H{
		"Email":    userEmail(c),
		"Lessons":  lessons,
		"Page":     page,
		"PrevPage": page - 1,
		"NextPage": page + 1,
		"HasNext":  int64(page*PageSize) < total,
		"Error":    c.Query("error"),
	})
}

func (h *Handler) createLesson(c *gin.Context) {
	req, err := lesson.NewRequest(
		c.PostForm("subject"),
		c.PostForm("audience"),
		c.PostForm("duration"),
	)
	if err != nil {
		c.Redirect(http.StatusFound, "/web/dashboard?error="+template.URLQueryEscaper(err.Error()))
		return
	}

	result, err := h.lessons.Create(c.Request.Context(), req)
	if err != nil {
		h.log.Error("create lesson failed", "subject", req.Subject, "error", err)
		c.Redirect(http.StatusFound, "/web/dashboard?error="+template.URLQueryEscaper("Lesson generation failed, please try again."))
		return
	}

	c.Redirect(http.StatusFound, "/web/lessons/"+result.LessonID)
}

func (h *Handler) showLesson(c *gin.Context) {
	detail, err := h.lessons.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error("show lesson failed", "id", c.Param("id"), "error", err)
		c.Redirect(http.StatusFound, "/web/dashboard")
		return
	}
	if detail == nil {
		c.Redirect(http.StatusFound, "/web/dashboard")
		return
	}

	var body strings.Builder
	if err := h.md.Convert([]byte(detail.Content), &body); err != nil {
		h.log.Error("markdown render failed", "id", detail.ID, "error", err)
		c.Redirect(http.StatusFound, "/web/dashboard")
		return
	}

	h.render(c, http.StatusOK, "lesson", gin.H{
		"Title":     detail.Title,
		"Audience":  detail.Audience,
		"Duration":  detail.Duration,
		"CreatedAt": detail.CreatedAt,
		"Quality":   detail.Quality,
		"Body":      template.HTML(body.String()),
	})
}

func userEmail(c *gin.Context) string {
	if u := currentUser(c); u != nil {
		return u.Email
	}
	return ""
}
