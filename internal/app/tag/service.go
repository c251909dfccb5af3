package tag

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/airenas/nercrf/internal/app/tag/api"
	"github.com/airenas/nercrf/internal/pkg/cmdapp"
	"github.com/airenas/nercrf/internal/pkg/persistence"
	"github.com/facebookgo/grace/gracehttp"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//Tagger finds entities in text
type Tagger interface {
	Tag(text string) (*api.Result, error)
	Info() *persistence.ModelInfo
}

// ServiceData keeps data required for service work
type ServiceData struct {
	Port    int
	health  healthcheck.Handler
	tagger  Tagger
	metrics struct {
		responseDur *prometheus.HistogramVec
	}
}

//StartWebServer starts the HTTP service and listens for the requests
func StartWebServer(data *ServiceData) error {
	cmdapp.Log.Infof("Starting HTTP service at %d", data.Port)
	portStr := strconv.Itoa(data.Port)
	srv := http.Server{
		Addr:              ":" + portStr,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		Handler:           NewRouter(data),
	}

	w := cmdapp.Log.Writer()
	defer w.Close()
	gracehttp.SetLogger(log.New(w, "", 0))

	return gracehttp.Serve(&srv)
}

//NewRouter creates the router for HTTP service
func NewRouter(data *ServiceData) *mux.Router {
	router := mux.NewRouter()
	var th http.Handler = &tagHandler{data: data}
	if data.metrics.responseDur != nil {
		th = promhttp.InstrumentHandlerDuration(data.metrics.responseDur, th)
	}
	router.Methods("POST").Path("/tag").Handler(th)
	router.Methods("POST").Path("/tag/").Handler(th)
	router.Methods("GET").Path("/info").Handler(&infoHandler{data: data})
	router.Methods("GET").Path("/metrics").Handler(promhttp.Handler())
	if data.health != nil {
		router.Methods("GET").Path("/live").HandlerFunc(data.health.LiveEndpoint)
		router.Methods("GET").Path("/ready").HandlerFunc(data.health.ReadyEndpoint)
	}
	return router
}

type tagHandler struct {
	data *ServiceData
}

func (h *tagHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := uuid.New().String()
	cmdapp.Log.Infof("Request %s from %s", id, r.RemoteAddr)

	var input api.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Cannot decode input", http.StatusBadRequest)
		cmdapp.Log.Errorf("Cannot decode input %s: %s", id, err.Error())
		return
	}
	if strings.TrimSpace(input.Text) == "" {
		http.Error(w, "No text", http.StatusBadRequest)
		cmdapp.Log.Errorf("No text %s", id)
		return
	}

	res, err := h.data.tagger.Tag(input.Text)
	if err != nil {
		http.Error(w, "Cannot tag", http.StatusInternalServerError)
		cmdapp.Log.Errorf("Cannot tag %s: %s", id, err.Error())
		return
	}
	cmdapp.Log.Debugf("Request %s: %d tokens, %d entities", id, len(res.Tokens), len(res.Entities))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", id)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		http.Error(w, "Can not prepare result", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
	}
}

type infoHandler struct {
	data *ServiceData
}

func (h *infoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	info := h.data.tagger.Info()
	if info == nil {
		http.Error(w, "No model loaded", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(info); err != nil {
		http.Error(w, "Can not prepare result", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
	}
}
