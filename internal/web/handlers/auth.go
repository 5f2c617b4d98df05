package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/weatherhub/internal/config"
	"github.com/geocoder89/weatherhub/internal/domain/user"
	"github.com/geocoder89/weatherhub/internal/repo/postgres"
	"github.com/geocoder89/weatherhub/internal/security"
	"github.com/geocoder89/weatherhub/internal/session"
)

type UserReader interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

type UserWriter interface {
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	Create(ctx context.Context, email, username, passwordHash string) (user.User, error)
}

// UserStore is what the router wires in: one repo serving both sides.
type UserStore interface {
	UserReader
	UserWriter
}

type AuthHandler struct {
	users    UserReader
	writer   UserWriter
	sessions *session.Manager
	flash    *FlashCodec
	log      *slog.Logger
	cfg      config.Config
}

func NewAuthHandler(users UserReader, writer UserWriter, sessions *session.Manager, flash *FlashCodec, log *slog.Logger, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:    users,
		writer:   writer,
		sessions: sessions,
		flash:    flash,
		log:      log,
		cfg:      cfg,
	}
}

// authView is the view model for the login and register pages.
type authView struct {
	Session *session.Session
	Flashes []Notice
}

func (h *AuthHandler) RegisterForm(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "register.html", authView{
		Session: h.sessions.FromRequest(ctx.Request),
		Flashes: h.flash.Pop(ctx),
	})
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var form RegisterForm

	if err := bindForm(ctx, &form); err != nil {
		h.flash.Set(ctx, Notice{Message: formErrorMessage(err), Level: LevelDanger})
		ctx.Redirect(http.StatusFound, "/register")
		return
	}

	if form.Password != form.ConfirmPassword {
		h.flash.Set(ctx, Notice{Message: "Mật khẩu xác nhận không khớp", Level: LevelDanger})
		ctx.Redirect(http.StatusFound, "/register")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	exists, err := h.writer.ExistsByEmailOrUsername(cctx, form.Email, form.Username)

	if err != nil {
		h.log.Error("registration existence check failed", "err", err)
		h.flash.Set(ctx, Notice{Message: "Đăng ký thất bại. Vui lòng thử lại.", Level: LevelDanger})
		ctx.Redirect(http.StatusFound, "/register")
		return
	}

	if exists {
		h.flash.Set(ctx, Notice{Message: "Email hoặc Username đã tồn tại. Vui lòng chọn email hoặc username khác.", Level: LevelDanger})
		ctx.Redirect(http.StatusFound, "/register")
		return
	}

	hash, err := security.HashPassword(form.Password)

	if err != nil {
		h.log.Error("password hash failed", "err", err)
		h.flash.Set(ctx, Notice{Message: "Đăng ký thất bại. Vui lòng thử lại.", Level: LevelDanger})
		ctx.Redirect(http.StatusFound, "/register")
		return
	}

	_, err = h.writer.Create(cctx, form.Email, form.Username, hash)

	if err != nil {
		// the unique constraint is the backstop for the check-then-act
		// race: a concurrent registration surfaces here, not above
		if errors.Is(err, postgres.ErrDuplicateUser) {
			h.flash.Set(ctx, Notice{Message: "Email hoặc Username đã tồn tại. Vui lòng chọn email hoặc username khác.", Level: LevelDanger})
		} else {
			h.log.Error("user insert failed", "err", err)
			h.flash.Set(ctx, Notice{Message: "Đăng ký thất bại. Vui lòng thử lại.", Level: LevelDanger})
		}

		ctx.Redirect(http.StatusFound, "/register")
		return
	}

	h.flash.Set(ctx, Notice{Message: "Đăng ký thành công! Vui lòng đăng nhập.", Level: LevelSuccess})
	ctx.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) LoginForm(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "login.html", authView{
		Session: h.sessions.FromRequest(ctx.Request),
		Flashes: h.flash.Pop(ctx),
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var form LoginForm

	if err := bindForm(ctx, &form); err != nil {
		h.renderLoginFailed(ctx)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	foundUser, err := h.users.GetByUsername(cctx, form.Username)

	if err != nil {
		if !errors.Is(err, postgres.ErrUserNotFound) {
			h.log.Error("user lookup failed", "err", err)
		}

		h.log.Info("login attempt", "username", form.Username, "outcome", "failure")
		h.renderLoginFailed(ctx)
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, form.Password)

	if err != nil {
		h.log.Info("login attempt", "username", form.Username, "outcome", "failure")
		h.renderLoginFailed(ctx)
		return
	}

	token, err := h.sessions.Issue(foundUser.ID, foundUser.Username)

	if err != nil {
		h.log.Error("session issue failed", "err", err)
		h.renderLoginFailed(ctx)
		return
	}

	h.log.Info("login attempt", "username", form.Username, "outcome", "success")

	h.setSessionCookie(ctx, token)
	ctx.Redirect(http.StatusFound, "/")
}

// Logout clears the session. Idempotent: logging out while logged out
// is not an error.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.clearSessionCookie(ctx)
	h.flash.Set(ctx, Notice{Message: "Bạn đã đăng xuất.", Level: LevelSuccess})
	ctx.Redirect(http.StatusFound, "/login")
}

// renderLoginFailed re-renders the form with a generic message and a
// 200, not a redirect. The message never says whether the username or
// the password was wrong.
func (h *AuthHandler) renderLoginFailed(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "login.html", authView{
		Session: nil,
		Flashes: []Notice{{Message: "Thông tin đăng nhập không hợp lệ. Vui lòng thử lại.", Level: LevelDanger}},
	})
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string) {
	secure := h.cfg.Env == "prod"

	ctx.SetSameSite(http.SameSiteLaxMode)

	// Max-Age 0: a browser session cookie, no server-enforced expiry
	ctx.SetCookie(
		session.CookieName,
		token,
		0,
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		session.CookieName,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
