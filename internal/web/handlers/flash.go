package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const flashCookieName = "flash"

// Notice is a one-shot flash message: rendered once, then discarded.
type Notice struct {
	Message string `json:"message"`
	Level   string `json:"level"`
}

const (
	LevelSuccess = "success"
	LevelDanger  = "danger"
)

// FlashCodec moves notices across a redirect in a signed cookie. The
// signature only guards against tampering with display text; there is
// nothing secret in a flash.
type FlashCodec struct {
	secret []byte
}

func NewFlashCodec(secret string) *FlashCodec {
	return &FlashCodec{secret: []byte(secret)}
}

// Set queues notices for the next rendered page.
func (f *FlashCodec) Set(ctx *gin.Context, notices ...Notice) {
	payload, err := json.Marshal(notices)

	if err != nil {
		return
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	value := encoded + "." + f.sign(encoded)

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(flashCookieName, value, 60, "/", "", false, true)
}

// Pop reads and clears the pending notices. Anything malformed or badly
// signed decodes to no notices.
func (f *FlashCodec) Pop(ctx *gin.Context) []Notice {
	raw, err := ctx.Cookie(flashCookieName)

	if err != nil || raw == "" {
		return nil
	}

	// one-shot: drop the cookie regardless of whether it decodes
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(flashCookieName, "", -1, "/", "", false, true)

	encoded, sig, ok := strings.Cut(raw, ".")

	if !ok || !hmac.Equal([]byte(f.sign(encoded)), []byte(sig)) {
		return nil
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)

	if err != nil {
		return nil
	}

	var notices []Notice

	if err := json.Unmarshal(payload, &notices); err != nil {
		return nil
	}

	return notices
}

func (f *FlashCodec) sign(encoded string) string {
	h := hmac.New(sha256.New, f.secret)
	h.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
