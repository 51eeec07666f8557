package handlers

import (
	"net/http"
	"runtime"
	"time"
)

// Version is stamped at build time:
//
//	go build -ldflags "-X reelhouse/handlers.Version=1.2.0"
var Version = "dev"

type VersionHandler struct {
	started time.Time
}

type VersionResponse struct {
	Version       string `json:"version"`
	GoVersion     string `json:"goVersion"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

func NewVersionHandler() *VersionHandler {
	return &VersionHandler{started: time.Now()}
}

func (h *VersionHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{
		Version:       Version,
		GoVersion:     runtime.Version(),
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	})
}
