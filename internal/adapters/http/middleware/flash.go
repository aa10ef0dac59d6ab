package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/securecookie"
)

const flashCookieName = "lembah_flash"

// Flash kinds, used as CSS classes by the layout.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next page load.
type Flash struct {
	Kind    string
	Message string
}

// FlashStore signs flash messages into a short-lived cookie.
type FlashStore struct {
	codec *securecookie.SecureCookie
}

// NewFlashStore creates a flash store. hashKey should be 32 or 64 bytes.
// PRE: len(hashKey) > 0
func NewFlashStore(hashKey []byte) *FlashStore {
	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(300)
	return &FlashStore{codec: codec}
}

// Set writes f to the response as a signed cookie.
func (fs *FlashStore) Set(w http.ResponseWriter, f Flash) {
	encoded, err := fs.codec.Encode(flashCookieName, f)
	if err != nil {
		slog.Error("flash_encode_failed", "error", err.Error())
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})
}

// Pop reads and clears the flash message.
// POST: the cookie is expired whenever one was present, even if it failed verification
func (fs *FlashStore) Pop(w http.ResponseWriter, r *http.Request) (Flash, bool) {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return Flash{}, false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	var f Flash
	if err := fs.codec.Decode(flashCookieName, cookie.Value, &f); err != nil {
		return Flash{}, false
	}
	return f, true
}
