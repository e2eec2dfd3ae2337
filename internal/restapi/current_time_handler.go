package restapi

import (
	"net/http"
	"time"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/models"
)

func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	entry := struct {
		Time         int64  `json:"time"`
		ReadableTime string `json:"readableTime"`
	}{
		Time:         now.UnixMilli(),
		ReadableTime: now.Format(time.RFC3339),
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}
