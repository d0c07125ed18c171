package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"

	"github.com/pocketbase/pocketbase/core"
)

const flashCookie = "flash_toast"

type toastPayload struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// SetToast queues a notification for the client. HTMX requests receive it
// as a showToast HX-Trigger event, merged into any trigger already set.
// Other requests get a short-lived cookie the page script picks up, which
// survives redirects and download responses.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	payload := toastPayload{Message: message, Type: toastType}

	triggers := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &triggers); err != nil {
			log.Printf("toast: replacing non-JSON HX-Trigger %q", existing)
			triggers = map[string]any{}
		}
	}
	triggers["showToast"] = payload
	if data, err := json.Marshal(triggers); err != nil {
		log.Printf("toast: marshal HX-Trigger: %v", err)
	} else {
		e.Response.Header().Set("HX-Trigger", string(data))
	}

	if e.Request != nil && isHTMX(e) {
		return
	}
	setFlashCookie(e, payload)
}

func setFlashCookie(e *core.RequestEvent, payload toastPayload) {
	cookieVal, err := json.Marshal(payload)
	if err != nil {
		return
	}
	http.SetCookie(e.Response, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(string(cookieVal)),
		Path:     "/",
		MaxAge:   10,
		HttpOnly: false, // read by the page script
		SameSite: http.SameSiteLaxMode,
	})
}

// pendingToast returns the toast already queued in HX-Trigger, if any.
func pendingToast(e *core.RequestEvent) (toastPayload, bool) {
	var triggers struct {
		ShowToast *toastPayload `json:"showToast"`
	}
	raw := e.Response.Header().Get("HX-Trigger")
	if raw == "" || json.Unmarshal([]byte(raw), &triggers) != nil || triggers.ShowToast == nil {
		return toastPayload{}, false
	}
	return *triggers.ShowToast, true
}

// ErrorToast answers with an error notification. HX-Reswap: none keeps
// HTMX from swapping the message text into the page.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, "error", message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}

// isHTMX reports whether the request came from an hx-* attribute.
func isHTMX(e *core.RequestEvent) bool {
	return e.Request.Header.Get("HX-Request") == "true"
}

// redirect sends the browser to target after an HTMX or a plain request.
func redirect(e *core.RequestEvent, target string) error {
	if isHTMX(e) {
		// The page is replaced, so a queued toast must ride along in the cookie.
		if p, ok := pendingToast(e); ok {
			setFlashCookie(e, p)
		}
		e.Response.Header().Set("HX-Redirect", target)
		return e.String(http.StatusOK, "")
	}
	return e.Redirect(http.StatusFound, target)
}
