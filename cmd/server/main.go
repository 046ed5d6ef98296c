package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"tradehall.gg/internal/catalog"
	"tradehall.gg/internal/persistence/auditlog"
	"tradehall.gg/internal/store"
	"tradehall.gg/internal/trade"
	"tradehall.gg/internal/transport/ws"
	"tradehall.gg/internal/tuning"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		itemsPath  = flag.String("items", "", "path to items.yaml (default: <configs>/items.yaml)")
		dev        = flag.Bool("dev", false, "use an in-memory store instead of sqlite")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	ip := strings.TrimSpace(*itemsPath)
	if ip == "" {
		ip = filepath.Join(*configDir, "items.yaml")
	}
	cat, err := catalog.Load(ip)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load items: %v", err)
		}
		logger.Printf("items not found (%s); using defaults", ip)
		cat = catalog.Defaults()
	}

	var currency store.Currency
	var inventory store.Inventory
	if *dev {
		mem := store.NewMemory()
		mem.Seed("alice", 1000, "dragon")
		mem.Seed("bob", 1000, "sword")
		currency, inventory = mem, mem
		logger.Printf("dev mode: in-memory store, demo actors alice/bob seeded")
	} else {
		if err := os.MkdirAll(*dataDir, 0o755); err != nil {
			logger.Fatalf("data dir: %v", err)
		}
		db, err := store.OpenSQLite(filepath.Join(*dataDir, "trade.db"))
		if err != nil {
			logger.Fatalf("open store: %v", err)
		}
		defer db.Close()
		currency, inventory = db, db
	}

	audit := auditlog.NewWriter(filepath.Join(*dataDir, "audit"))
	defer audit.Close()

	limits := trade.NewRateLimitRegistry()
	gateway := trade.NewGateway(limits, cat, tune.MaxCoinsPerTrade)
	engine := trade.NewEngine(gateway, currency, inventory, logger)

	hub := ws.NewServer(logger)
	coord := trade.NewCoordinator(trade.ConfigFromTuning(tune), gateway, engine, currency, inventory, hub, hub, logger)
	coord.SetAuditLogger(audit)
	coord.SetMetrics(trade.NewMetrics(prometheus.DefaultRegisterer))
	hub.Attach(coord)

	ctx, cancel := signalContext()
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/v1/ws", hub.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := coord.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		return srv.Shutdown(ctx2)
	})
	g.Go(func() error {
		logger.Printf("listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("server: %v", err)
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
