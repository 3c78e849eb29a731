package http

import (
	"net/http"
	"net/url"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// JoinQR renders a PNG QR code carrying the websocket URL an audience
// display should connect to for the given show.
func JoinQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	showID := ps.ByName("id")
	if showID == "" {
		http.Error(w, "missing show id", http.StatusBadRequest)
		return
	}

	scheme := "ws"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "wss"
	}
	target := scheme + "://" + r.Host + "/ws?show=" + url.QueryEscape(showID) + "&role=" + RoleAudience

	const qrSize = 320 // scannable from a phone across the room
	png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
