package webui

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"
)

//go:embed debug_index.html
var templateFS embed.FS

type debugData struct {
	Title string
	Pre   string
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	content := spew.Sdump(data)
	w.Header().Set("Content-Type", "text/html")
	tmpl, err := template.ParseFS(templateFS, "debug_index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dataStruct := debugData{
		Title: title,
		Pre:   content,
	}

	err = tmpl.Execute(w, dataStruct)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("dataType")

	var data interface{}
	var title string

	now := time.Now()
	idx := webUI.Schedules.Current()

	switch dataType {
	case "stops":
		data = idx.Stops()
		title = "Schedule - Stops"
	case "routes":
		data = idx.Routes()
		title = "Schedule - Routes"
	case "trips":
		data = idx.Trips()
		title = "Schedule - Trips"
	case "snapshot":
		data = map[string]interface{}{
			"version":   idx.Version(),
			"stopCount": idx.StopCount(),
			"expiresAt": idx.ExpiresAt(),
		}
		title = "Schedule - Snapshot"
	case "realtime_trips":
		updates, fresh := webUI.Realtime.TripUpdates(now)
		data = map[string]interface{}{"fresh": fresh, "updates": updates}
		title = "Realtime - Trip Updates"
	case "realtime_alerts":
		alerts, fresh := webUI.Realtime.Alerts(now)
		data = map[string]interface{}{"fresh": fresh, "alerts": alerts}
		title = "Realtime - Service Alerts"
	case "reliability":
		model := webUI.Reliability.Current()
		data = map[string]interface{}{"computedAt": model.ComputedAt()}
		title = "Reliability - Model"
	default:
		data = map[string]string{
			"error": "Please use one of the following: stops, routes, trips, snapshot, realtime_trips, realtime_alerts, reliability.",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}
