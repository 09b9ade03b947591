/*
File Name:  Status.go

Route handlers for the status API: a summary view and a per-neighbor
detail view (classifier weight, bloom occupancy), plus a websocket that
pushes the neighbor view on an interval for a live dashboard.
*/

package statusapi

import (
	"net/http"
	"time"

	core "github.com/narrowmesh/core"
)

type apiResponseStatus struct {
	CountNeighbors int `json:"countneighbors"` // Number of links currently peered with the broker.
	CacheLen       int `json:"cachelen"`       // Current Response Cache occupancy.
}

/*
apiStatus returns a one-line summary of the broker's current state.
Request:    GET /status
Result:     200 with JSON structure apiResponseStatus
*/
func (api *WebapiInstance) apiStatus(w http.ResponseWriter, r *http.Request) {
	status := apiResponseStatus{
		CountNeighbors: len(api.Broker.Snapshot()),
		CacheLen:       api.Broker.CacheLen(),
	}
	encodeJSON(api.Broker, w, r, status)
}

/*
apiStatusNeighbors returns the current neighbor set with per-link bloom
occupancy and classifier weight.
Request:    GET /status/neighbors
Result:     200 with JSON array of core.NeighborSnapshot
*/
func (api *WebapiInstance) apiStatusNeighbors(w http.ResponseWriter, r *http.Request) {
	encodeJSON(api.Broker, w, r, api.Broker.Snapshot())
}

// neighborStreamInterval is how often apiStatusNeighborsStream pushes a
// fresh snapshot to a connected websocket client.
const neighborStreamInterval = time.Second

/*
apiStatusNeighborsStream upgrades to a websocket and pushes the neighbor
snapshot on neighborStreamInterval until the client disconnects.
Request:    GET /status/neighbors/ws
Result:     101 switching protocols, then a stream of JSON text frames
*/
func (api *WebapiInstance) apiStatusNeighborsStream(w http.ResponseWriter, r *http.Request) {
	conn, err := WSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		api.Broker.Logger.Printf("statusapi: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(neighborStreamInterval)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.WriteJSON(api.Broker.Snapshot()); err != nil {
			return
		}
	}
}
