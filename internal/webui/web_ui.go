package webui

import (
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/app"
)

// WebUI serves operator-facing debug pages over the application state.
type WebUI struct {
	*app.Application
}

func NewWebUI(application *app.Application) *WebUI {
	return &WebUI{Application: application}
}
