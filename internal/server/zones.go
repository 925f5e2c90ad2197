package server

import (
	"context"
	"net/http"

	"github.com/carrierdesk/rates-tracker/constants"
)

// ZoneLister exposes what the store currently knows, so callers can build
// valid queries without guessing.
type ZoneLister interface {
	ListZones(ctx context.Context) ([]string, error)
	ListServices(ctx context.Context, areaZone string) ([]constants.ServiceID, error)
}

type zoneSummary struct {
	AreaZone string   `json:"area_zone"`
	Services []string `json:"services"`
}

type zonesResponse struct {
	Zones []zoneSummary `json:"zones"`
}

// HandleZones returns the handler for GET /zones.
func HandleZones(repo ZoneLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		zones, err := repo.ListZones(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error", nil)
			return
		}
		resp := zonesResponse{Zones: make([]zoneSummary, 0, len(zones))}
		for _, z := range zones {
			ids, err := repo.ListServices(r.Context(), z)
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error", nil)
				return
			}
			names := make([]string, len(ids))
			for i, id := range ids {
				names[i] = string(id)
			}
			resp.Zones = append(resp.Zones, zoneSummary{AreaZone: z, Services: names})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
