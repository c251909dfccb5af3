package train

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/airenas/nercrf/internal/pkg/cmdapp"
	"github.com/airenas/nercrf/internal/pkg/persistence"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/heptiolabs/healthcheck"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//WsConn is interface for websocket handling in the monitor
type WsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
}

//writeWait limits a single write to a subscriber
const writeWait = 5 * time.Second

//Monitor keeps the latest training progress and streams it to subscribers
type Monitor struct {
	health healthcheck.Handler

	lock  sync.RWMutex
	last  *persistence.Progress
	cLock sync.Mutex
	conns map[WsConn]bool
}

//NewMonitor creates monitor
func NewMonitor() *Monitor {
	res := &Monitor{conns: map[WsConn]bool{}, health: healthcheck.NewHandler()}
	res.health.AddReadinessCheck("progress", func() error {
		if res.Last() == nil {
			return errors.New("No progress yet")
		}
		return nil
	})
	return res
}

//Save remembers the progress and sends it to all subscribers
func (mn *Monitor) Save(p *persistence.Progress) error {
	c := *p
	mn.lock.Lock()
	mn.last = &c
	mn.lock.Unlock()

	mn.cLock.Lock()
	defer mn.cLock.Unlock()
	for conn := range mn.conns {
		if err := writeJSON(conn, &c); err != nil {
			cmdapp.Log.Error(errors.Wrap(err, "Can't write to websocket, dropping connection"))
			cmdapp.LogIf(conn.Close())
			delete(mn.conns, conn)
		}
	}
	return nil
}

func writeJSON(conn WsConn, v interface{}) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

//Last returns the latest progress or nil
func (mn *Monitor) Last() *persistence.Progress {
	mn.lock.RLock()
	defer mn.lock.RUnlock()
	return mn.last
}

//StartMonitor serves the monitor until ctx is done
func StartMonitor(ctx context.Context, mn *Monitor, port int) error {
	cmdapp.Log.Infof("Starting monitor at %d", port)
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		ReadHeaderTimeout: 5 * time.Second,
		Handler:           NewRouter(mn),
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		cmdapp.LogIf(srv.Shutdown(sctx))
	}()
	err := srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "Can't start HTTP listener at port "+strconv.Itoa(port))
	}
	return nil
}

//NewRouter creates the router for the monitor
func NewRouter(mn *Monitor) *mux.Router {
	router := mux.NewRouter()
	router.Methods("GET").Path("/status").Handler(statusHandler{mn: mn})
	router.Handle("/subscribe", websocketHandler{mn: mn})
	router.Methods("GET").Path("/metrics").Handler(promhttp.Handler())
	router.Methods("GET").Path("/live").HandlerFunc(mn.health.LiveEndpoint)
	router.Methods("GET").Path("/ready").HandlerFunc(mn.health.ReadyEndpoint)
	return router
}

type statusHandler struct {
	mn *Monitor
}

func (h statusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p := h.mn.Last()
	if p == nil {
		http.Error(w, "No progress yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(p); err != nil {
		http.Error(w, "Can not prepare result", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
	}
}

type websocketHandler struct {
	mn *Monitor
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	}}

func (h websocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cmdapp.Log.Infof("ws request from %s", r.RemoteAddr)
	c, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		cmdapp.Log.Error(errors.Wrap(err, "Can not init ws connection"))
		return
	}
	go h.mn.handleConnection(c)
}

func (mn *Monitor) handleConnection(conn WsConn) {
	mn.saveConnection(conn)
	defer conn.Close()
	defer mn.deleteConnection(conn)
	if p := mn.Last(); p != nil {
		mn.cLock.Lock()
		cmdapp.LogIf(writeJSON(conn, p))
		mn.cLock.Unlock()
	}
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			cmdapp.Log.Debug(err)
			break
		}
	}
	cmdapp.Log.Infof("handleConnection finish")
}

func (mn *Monitor) saveConnection(conn WsConn) {
	mn.cLock.Lock()
	defer mn.cLock.Unlock()
	mn.conns[conn] = true
	cmdapp.Log.Infof("saveConnection finish: %d", len(mn.conns))
}

func (mn *Monitor) deleteConnection(conn WsConn) {
	mn.cLock.Lock()
	defer mn.cLock.Unlock()
	delete(mn.conns, conn)
	cmdapp.Log.Infof("deleteConnection finish: %d", len(mn.conns))
}

func (mn *Monitor) connCount() int {
	mn.cLock.Lock()
	defer mn.cLock.Unlock()
	return len(mn.conns)
}
