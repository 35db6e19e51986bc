package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	mng "github.com/mkweon/rollcall/internal/manager"
	"github.com/mkweon/rollcall/internal/roster"
)

// Router provides embeddable HTTP handlers for the checklist manager.
// Endpoints:
//   GET  {basePath}/processes    list all processes
//   GET  {basePath}/status       active process with working lists
//   POST {basePath}/toggle       body: {"participant": "..."}
//   POST {basePath}/save         commit pending toggles
//   POST {basePath}/discard      drop pending toggles
//   POST {basePath}/switch       body: {"name": "..."}
//   POST {basePath}/create       body: {"name","unfinished","at_names","description"}
//   POST {basePath}/mode         body: {"name","mode"}
//   POST {basePath}/delete       body: {"name": "..."}
// basePath may be empty or start with '/'; no trailing slash.

type Router struct {
	mgr      *mng.Manager
	basePath string
}

// NewRouter constructs a new Router with configurable basePath.
// Example basePath: "/api" results in /api/status, /api/toggle, ...
func NewRouter(mgr *mng.Manager, basePath string) *Router {
	bp := sanitizeBase(basePath)
	return &Router{mgr: mgr, basePath: bp}
}

// Handler returns an http.Handler powered by gin that can be mounted in
// any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.GET("/processes", r.handleProcesses)
	group.GET("/status", r.handleStatus)
	group.POST("/toggle", r.handleToggle)
	group.POST("/save", r.handleSave)
	group.POST("/discard", r.handleDiscard)
	group.POST("/switch", r.handleSwitch)
	group.POST("/create", r.handleCreate)
	group.POST("/mode", r.handleMode)
	group.POST("/delete", r.handleDelete)
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
// Call Close or Shutdown on the returned server to stop it.
func NewServer(addr, basePath string, mgr *mng.Manager) (*http.Server, error) {
	r := NewRouter(mgr, basePath)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server, nil
}

// --- Handlers ---

type errorResp struct {
	Error string `json:"error"`
}

type okResp struct {
	OK bool `json:"ok"`
}

// ProcessInfo is one row of the process listing.
type ProcessInfo struct {
	Name        string `json:"name"`
	Mode        string `json:"mode"`
	Description string `json:"description"`
	Finished    int    `json:"finished"`
	Unfinished  int    `json:"unfinished"`
	UpdateTime  string `json:"update_time"`
	Active      bool   `json:"active"`
}

func (r *Router) handleProcesses(c *gin.Context) {
	active, _ := r.mgr.Current()
	names := r.mgr.Names()
	infos := make([]ProcessInfo, 0, len(names))
	for _, name := range names {
		rec, ok := r.mgr.Record(name)
		if !ok {
			continue
		}
		infos = append(infos, ProcessInfo{
			Name:        name,
			Mode:        string(rec.Info.Mode),
			Description: rec.Info.Description,
			Finished:    len(rec.Finished),
			Unfinished:  len(rec.Unfinished),
			UpdateTime:  rec.UpdateTime,
			Active:      name == active,
		})
	}
	writeJSON(c, http.StatusOK, infos)
}

func (r *Router) handleStatus(c *gin.Context) {
	writeJSON(c, http.StatusOK, r.mgr.Status())
}

type toggleReq struct {
	Participant string `json:"participant"`
}

func (r *Router) handleToggle(c *gin.Context) {
	var req toggleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if req.Participant == "" {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "participant required"})
		return
	}
	if !r.mgr.Toggle(req.Participant) {
		writeJSON(c, http.StatusNotFound, errorResp{Error: "no active process or unknown participant"})
		return
	}
	writeJSON(c, http.StatusOK, r.mgr.Status())
}

func (r *Router) handleSave(c *gin.Context) {
	if err := r.mgr.Save(c.Request.Context()); err != nil {
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

func (r *Router) handleDiscard(c *gin.Context) {
	r.mgr.Discard()
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

type nameReq struct {
	Name string `json:"name"`
}

func (r *Router) handleSwitch(c *gin.Context) {
	var req nameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if req.Name == "" {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "name required"})
		return
	}
	switch err := r.mgr.Switch(req.Name); {
	case errors.Is(err, mng.ErrUnsavedChanges):
		writeJSON(c, http.StatusConflict, errorResp{Error: err.Error()})
	case errors.Is(err, mng.ErrNotFound):
		writeJSON(c, http.StatusNotFound, errorResp{Error: err.Error()})
	case err != nil:
		writeJSON(c, http.StatusBadRequest, errorResp{Error: err.Error()})
	default:
		writeJSON(c, http.StatusOK, r.mgr.Status())
	}
}

type createReq struct {
	Name        string   `json:"name"`
	Unfinished  []string `json:"unfinished"`
	AtNames     []string `json:"at_names"`
	Description string   `json:"description"`
}

func (r *Router) handleCreate(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if !isSafeName(req.Name) {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid name"})
		return
	}
	for _, p := range req.Unfinished {
		if !isSafeName(p) {
			writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid participant name"})
			return
		}
	}
	switch err := r.mgr.Create(req.Name, req.Unfinished, req.AtNames, req.Description); {
	case errors.Is(err, mng.ErrUnsavedChanges):
		writeJSON(c, http.StatusConflict, errorResp{Error: err.Error()})
	case errors.Is(err, mng.ErrDuplicateName):
		writeJSON(c, http.StatusConflict, errorResp{Error: err.Error()})
	case err != nil:
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
	default:
		writeJSON(c, http.StatusOK, okResp{OK: true})
	}
}

type modeReq struct {
	Name string `json:"name"`
	Mode string `json:"mode"`
}

func (r *Router) handleMode(c *gin.Context) {
	var req modeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if req.Name == "" {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "name required"})
		return
	}
	switch err := r.mgr.SetMode(req.Name, roster.Mode(req.Mode)); {
	case errors.Is(err, mng.ErrUnsavedChanges):
		writeJSON(c, http.StatusConflict, errorResp{Error: err.Error()})
	case errors.Is(err, mng.ErrNotFound):
		writeJSON(c, http.StatusNotFound, errorResp{Error: err.Error()})
	case err != nil:
		writeJSON(c, http.StatusBadRequest, errorResp{Error: err.Error()})
	default:
		writeJSON(c, http.StatusOK, okResp{OK: true})
	}
}

func (r *Router) handleDelete(c *gin.Context) {
	var req nameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if req.Name == "" {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "name required"})
		return
	}
	switch err := r.mgr.Delete(req.Name); {
	case errors.Is(err, mng.ErrUnsavedChanges):
		writeJSON(c, http.StatusConflict, errorResp{Error: err.Error()})
	case errors.Is(err, mng.ErrNotFound):
		writeJSON(c, http.StatusNotFound, errorResp{Error: err.Error()})
	case err != nil:
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
	default:
		writeJSON(c, http.StatusOK, okResp{OK: true})
	}
}
