package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"polycity.ai/internal/gen/city"
	"polycity.ai/internal/scene"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configPath = flag.String("config", "./configs/city.yaml", "path to city.yaml")
		seed       = flag.Int64("seed", 0, "override the config seed (used only when no state file exists)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		disableDB  = flag.Bool("disable_db", false, "disable the run index")
		resume     = flag.Bool("resume", true, "resume the last served city from <data>/server/scene.json")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := city.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			cfg.Seed = *seed
		}
	})

	idx, err := openRunIndex(*dataDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
	}

	opts := []scene.Option{scene.WithOnScene(func(sc *scene.Scene) {
		logger.Printf("scene run=%s seed=%d objects=%d vertices=%d", sc.RunID, sc.Config.Seed, sc.Result.Stats.Total(), sc.Result.Stats.Vertices)
		if idx != nil {
			idx.RecordRun(runRow(sc))
		}
	})}
	if *resume {
		opts = append(opts, scene.WithStateFile(filepath.Join(*dataDir, "server", "scene.json")))
	}
	scenes, err := scene.NewManager(cfg, opts...)
	if err != nil {
		logger.Fatalf("initial scene: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	enablePprofHTTP := envBool("PC_ENABLE_PPROF_HTTP", false)
	if !enablePprofHTTP {
		logger.Printf("pprof endpoints disabled (PC_ENABLE_PPROF_HTTP=false)")
	}
	enableAdminHTTP := envBool("PC_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP())
	if !enableAdminHTTP {
		logger.Printf("admin endpoints disabled (PC_ENABLE_ADMIN_HTTP=false)")
	}
	mux := newMux(muxConfig{
		Scenes:      scenes,
		Index:       idx,
		Logger:      logger,
		EnableAdmin: enableAdminHTTP,
		EnablePprof: enablePprofHTTP,
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}
