/*
File Name:  API.go

statusapi stands up a small read-only HTTP/WebSocket introspection
server for a running core.Broker, in the style of the teacher's webapi
package: a WebapiInstance wrapping a gorilla/mux Router, started on one
or more listen addresses. It never constructs or forwards Narrow-Waist
packets; every route here only reads Broker state.
*/

package statusapi

import (
	"crypto/tls"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	core "github.com/narrowmesh/core"
)

// WebapiInstance wraps the status API's router and the Broker it reads.
type WebapiInstance struct {
	Broker *core.Broker
	Router *mux.Router
}

// WSUpgrader is used for the live-tail websocket endpoint. It allows
// all origins, matching the teacher's default for a local status API.
var WSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Start stands up the status API on every address in ListenAddresses.
// The certificate file and key are only used if UseSSL is true. Read
// and write timeouts may be 0 for no timeout.
func Start(broker *core.Broker, listenAddresses []string, useSSL bool, certificateFile, certificateKey string, timeoutRead, timeoutWrite time.Duration) *WebapiInstance {
	if len(listenAddresses) == 0 {
		return nil
	}

	api := &WebapiInstance{
		Broker: broker,
		Router: mux.NewRouter(),
	}

	api.Router.HandleFunc("/status", api.apiStatus).Methods("GET")
	api.Router.HandleFunc("/status/neighbors", api.apiStatusNeighbors).Methods("GET")
	api.Router.HandleFunc("/status/neighbors/ws", api.apiStatusNeighborsStream).Methods("GET")

	for _, listen := range listenAddresses {
		go startStatusAPI(broker, listen, useSSL, certificateFile, certificateKey, api.Router, timeoutRead, timeoutWrite)
	}

	return api
}

// startStatusAPI starts a web server on one listen address and logs any
// terminal error through the broker's logger. It blocks forever unless
// the server fails to bind or is shut down.
func startStatusAPI(broker *core.Broker, listen string, useSSL bool, certificateFile, certificateKey string, handler http.Handler, readTimeout, writeTimeout time.Duration) {
	broker.Logger.Printf("statusapi: starting at '%s'", listen)

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	server := &http.Server{
		Addr:         listen,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		TLSConfig:    tlsConfig,
	}

	var err error
	if useSSL {
		err = server.ListenAndServeTLS(certificateFile, certificateKey)
	} else {
		err = server.ListenAndServe()
	}
	if err != nil {
		broker.Logger.Printf("statusapi: listener on '%s' terminated: %v", listen, err)
	}
}

// encodeJSON writes data as a JSON response body.
func encodeJSON(broker *core.Broker, w http.ResponseWriter, r *http.Request, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		broker.Logger.Printf("statusapi: error writing response for '%s': %v", r.URL.Path, err)
	}
}
