package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"strings"

	"polycity.ai/internal/gen/city"
	"polycity.ai/internal/scene"
	"polycity.ai/internal/transport/ws"
)

type muxConfig struct {
	Scenes      *scene.Manager
	Index       runtimeIndex
	Logger      *log.Logger
	EnableAdmin bool
	EnablePprof bool
}

func newMux(cfg muxConfig) *http.ServeMux {
	m := cfg.Scenes
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/assets/world.json", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(rw)
		enc.SetEscapeHTML(false)
		_ = enc.Encode(m.Current().Doc)
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, m, cfg.Index)
	})

	if cfg.EnableAdmin {
		// Local-only admin endpoints.
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			sc := m.Current()
			rw.Header().Set("Content-Type", "application/json")
			resp := struct {
				RunID    string              `json:"run_id"`
				Config   any                 `json:"config"`
				Stats    any                 `json:"stats"`
				Sessions int                 `json:"sessions"`
				Regen    []scene.RegenMetric `json:"regenerate"`
			}{
				RunID:    sc.RunID,
				Config:   sc.Config,
				Stats:    scene.SceneStats(sc.Result.Stats),
				Sessions: m.Sessions(),
				Regen:    m.RegenMetrics(),
			}
			_ = json.NewEncoder(rw).Encode(resp)
		})
		mux.HandleFunc("/admin/v1/runs", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			if cfg.Index == nil {
				http.Error(rw, "run index disabled", http.StatusServiceUnavailable)
				return
			}
			runs, err := cfg.Index.ListRuns(r.Context(), 50)
			if err != nil {
				http.Error(rw, err.Error(), http.StatusInternalServerError)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(runs)
		})
	}
	if cfg.EnablePprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", ws.NewServer(m, cfg.Logger).Handler())
	return mux
}

func writeMetrics(rw http.ResponseWriter, m *scene.Manager, idx runtimeIndex) {
	sc := m.Current()
	s := sc.Result.Stats

	// Minimal Prometheus exposition format.
	fmt.Fprintf(rw, "# HELP polycity_scene_vertices Vertices in the current scene.\n")
	fmt.Fprintf(rw, "# TYPE polycity_scene_vertices gauge\n")
	fmt.Fprintf(rw, "polycity_scene_vertices %d\n", s.Vertices)

	fmt.Fprintf(rw, "# HELP polycity_scene_triangles Triangles in the current scene.\n")
	fmt.Fprintf(rw, "# TYPE polycity_scene_triangles gauge\n")
	fmt.Fprintf(rw, "polycity_scene_triangles %d\n", s.Triangles)

	fmt.Fprintf(rw, "# HELP polycity_scene_objects Placed objects per category.\n")
	fmt.Fprintf(rw, "# TYPE polycity_scene_objects gauge\n")
	for _, cat := range city.Categories {
		fmt.Fprintf(rw, "polycity_scene_objects{category=%q} %d\n", cat, s.Placed[cat])
	}

	fmt.Fprintf(rw, "# HELP polycity_scene_rejected Candidates skipped by exclusion rules per category.\n")
	fmt.Fprintf(rw, "# TYPE polycity_scene_rejected gauge\n")
	for _, cat := range city.Categories {
		fmt.Fprintf(rw, "polycity_scene_rejected{category=%q} %d\n", cat, s.Rejected(cat))
	}

	fmt.Fprintf(rw, "# HELP polycity_ws_sessions Connected scene viewers.\n")
	fmt.Fprintf(rw, "# TYPE polycity_ws_sessions gauge\n")
	fmt.Fprintf(rw, "polycity_ws_sessions %d\n", m.Sessions())

	fmt.Fprintf(rw, "# HELP polycity_regenerate_total Regenerate requests by result.\n")
	fmt.Fprintf(rw, "# TYPE polycity_regenerate_total counter\n")
	for _, r := range m.RegenMetrics() {
		fmt.Fprintf(rw, "polycity_regenerate_total{result=%q} %d\n", r.Result, r.Count)
	}

	fmt.Fprintf(rw, "# HELP polycity_scene_broadcast_dropped_total Scenes not delivered to a full viewer queue.\n")
	fmt.Fprintf(rw, "# TYPE polycity_scene_broadcast_dropped_total counter\n")
	fmt.Fprintf(rw, "polycity_scene_broadcast_dropped_total %d\n", m.DroppedBroadcasts())

	if idx == nil {
		return
	}
	st := idx.Stats()
	fmt.Fprintf(rw, "# HELP polycity_index_queue_depth Run index writer backlog.\n")
	fmt.Fprintf(rw, "# TYPE polycity_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "polycity_index_queue_depth %d\n", st.QueueDepth)

	fmt.Fprintf(rw, "# HELP polycity_index_dropped_total Runs dropped because the index queue was full.\n")
	fmt.Fprintf(rw, "# TYPE polycity_index_dropped_total counter\n")
	fmt.Fprintf(rw, "polycity_index_dropped_total %d\n", st.DropRunTotal)

	fmt.Fprintf(rw, "# HELP polycity_index_write_errors_total Failed run index writes.\n")
	fmt.Fprintf(rw, "# TYPE polycity_index_write_errors_total counter\n")
	fmt.Fprintf(rw, "polycity_index_write_errors_total %d\n", st.WriteErrsTotal)
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
