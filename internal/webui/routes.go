package webui

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// SetRoutes registers the debug pages on the router.
func (webUI *WebUI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/debug", http.HandlerFunc(webUI.debugIndexHandler))
}
