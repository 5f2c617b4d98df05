package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/weatherhub/internal/web/handlers"
)

// setAndExtract runs codec.Set inside a handler and returns the cookie
// it produced.
func setAndExtract(t *testing.T, codec *handlers.FlashCodec, notices ...handlers.Notice) *http.Cookie {
	t.Helper()

	r := gin.New()
	r.GET("/", func(ctx *gin.Context) {
		codec.Set(ctx, notices...)
		ctx.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, c := range w.Result().Cookies() {
		if c.Name == "flash" {
			return c
		}
	}

	t.Fatalf("flash cookie not set")

	return nil
}

func popWith(codec *handlers.FlashCodec, cookie *http.Cookie) []handlers.Notice {
	var got []handlers.Notice

	r := gin.New()
	r.GET("/", func(ctx *gin.Context) {
		got = codec.Pop(ctx)
		ctx.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if cookie != nil {
		req.AddCookie(cookie)
	}

	r.ServeHTTP(httptest.NewRecorder(), req)

	return got
}

func TestFlashRoundTrip(t *testing.T) {
	codec := handlers.NewFlashCodec("test-secret")

	cookie := setAndExtract(t, codec, handlers.Notice{Message: "Đăng ký thành công!", Level: handlers.LevelSuccess})

	notices := popWith(codec, cookie)

	if len(notices) != 1 {
		t.Fatalf("got %d notices, want 1", len(notices))
	}

	if notices[0].Message != "Đăng ký thành công!" || notices[0].Level != handlers.LevelSuccess {
		t.Fatalf("got %+v", notices[0])
	}
}

func TestFlashRejectsTampering(t *testing.T) {
	codec := handlers.NewFlashCodec("test-secret")

	cookie := setAndExtract(t, codec, handlers.Notice{Message: "hello", Level: handlers.LevelSuccess})
	cookie.Value = "x" + cookie.Value

	if notices := popWith(codec, cookie); notices != nil {
		t.Fatalf("tampered flash decoded to %+v", notices)
	}
}

func TestFlashRejectsForeignSignature(t *testing.T) {
	cookie := setAndExtract(t, handlers.NewFlashCodec("secret-a"), handlers.Notice{Message: "hello", Level: handlers.LevelDanger})

	if notices := popWith(handlers.NewFlashCodec("secret-b"), cookie); notices != nil {
		t.Fatalf("foreign flash decoded to %+v", notices)
	}
}

func TestFlashPopWithoutCookie(t *testing.T) {
	codec := handlers.NewFlashCodec("test-secret")

	if notices := popWith(codec, nil); notices != nil {
		t.Fatalf("got %+v from an empty request", notices)
	}
}
