package respond

import (
	"encoding/json"
	"net/http"
	"strings"

	"dispatch/internal/entities"
)

const (
	HeaderViewerRole = "X-Viewer-Role"
	HeaderViewerID   = "X-Viewer-ID"
)

// Decode читает JSON-тело запроса; неизвестные поля считаются ошибкой клиента.
func Decode(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func Viewer(r *http.Request) entities.Viewer {
	return entities.Viewer{
		Role: entities.ViewerRole(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderViewerRole)))),
		ID:   strings.TrimSpace(r.Header.Get(HeaderViewerID)),
	}
}

// CourierFilter собирает фильтр парка из query: status (повторяемый или через запятую) и hub.
func CourierFilter(r *http.Request) entities.CourierFilter {
	query := r.URL.Query()

	var filter entities.CourierFilter
	for _, raw := range query["status"] {
		for _, status := range strings.Split(raw, ",") {
			if status = strings.TrimSpace(status); status != "" {
				filter.Statuses = append(filter.Statuses, entities.CourierStatusType(strings.ToLower(status)))
			}
		}
	}
	filter.Hub = strings.TrimSpace(query.Get("hub"))
	return filter
}
