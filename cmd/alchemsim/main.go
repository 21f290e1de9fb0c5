package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Lambaga/Alchemist-SUI-sub001/metrics"
	"github.com/Lambaga/Alchemist-SUI-sub001/sim"
	"github.com/Lambaga/Alchemist-SUI-sub001/telemetry"
	"github.com/Lambaga/Alchemist-SUI-sub001/world"
)

func main() {
	worldPath := flag.String("world", "worlds/village.yaml", "world definition file")
	addr := flag.String("addr", "", "viewer listen address (empty = no viewer server)")
	dbPath := flag.String("db", "", "metrics database path (empty = no metrics)")
	ticks := flag.Int("ticks", 0, "run this many fixed ticks headless, then exit (0 = real time)")
	sampleEvery := flag.Int("sample-every", 60, "ticks between metric samples")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	w, err := world.Load(*worldPath)
	if err != nil {
		log.WithError(err).Fatal("load world")
	}

	game, err := sim.NewGame(w, log)
	if err != nil {
		log.WithError(err).Fatal("build game")
	}

	var store *metrics.Store
	var runID string
	if *dbPath != "" {
		store, err = metrics.Open(*dbPath, log)
		if err != nil {
			log.WithError(err).Fatal("open metrics store")
		}
		defer store.Close()
		runID, err = store.BeginRun(w.Name)
		if err != nil {
			log.WithError(err).Fatal("begin metrics run")
		}
		log.WithField("run", runID).Info("recording metrics")
	}

	sample := func() {
		if store == nil {
			return
		}
		bs := game.BrokerStats()
		reqs, fails := game.PathStats()
		store.Record(metrics.Sample{
			RunID:        runID,
			Tick:         game.Tick(),
			Objects:      bs.Index.Objects,
			Cells:        bs.Index.Cells,
			AvgPerCell:   bs.Index.AvgPerCell,
			Checks:       bs.Checks,
			Hits:         bs.Hits,
			PathRequests: reqs,
			PathFailures: fails,
		})
	}

	started := time.Now()

	if *ticks > 0 {
		// Bounded headless run: fixed-step, as fast as the CPU allows.
		dt := 1.0 / float64(sim.TickRate)
		for i := 0; i < *ticks; i++ {
			game.Step(dt)
			if *sampleEvery > 0 && (i+1)%*sampleEvery == 0 {
				sample()
			}
		}
		finish(store, runID, game.Tick(), time.Since(started), log)
		return
	}

	go game.Run()

	if *addr != "" {
		hub := telemetry.NewHub(game, telemetry.HelloMsg{
			World:    w.Name,
			TickRate: sim.TickRate,
			TilesX:   w.Tiles.CountX,
			TilesY:   w.Tiles.CountY,
			TileW:    w.Tiles.Width,
			TileH:    w.Tiles.Height,
		}, log)
		go hub.Run()
		defer hub.Stop()

		mux := http.NewServeMux()
		mux.HandleFunc("/ws", func(rw http.ResponseWriter, r *http.Request) {
			telemetry.ServeWS(hub, rw, r)
		})
		server := &http.Server{Addr: *addr, Handler: mux}
		go func() {
			log.WithField("addr", *addr).Info("viewer server listening")
			if err := server.ListenAndServe(); err != http.ErrServerClosed {
				log.WithError(err).Fatal("listen")
			}
		}()
		defer server.Close()
	}

	var sampler *time.Ticker
	if store != nil && *sampleEvery > 0 {
		sampler = time.NewTicker(time.Duration(*sampleEvery) * sim.TickDuration)
		defer sampler.Stop()
		go func() {
			for range sampler.C {
				sample()
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutting down")

	game.Stop()
	finish(store, runID, game.Tick(), time.Since(started), log)
}

func finish(store *metrics.Store, runID string, ticks uint64, elapsed time.Duration, log *logrus.Logger) {
	if store == nil {
		return
	}
	if err := store.FinishRun(runID, ticks, elapsed.Seconds()); err != nil {
		log.WithError(err).Warn("finish metrics run")
	}
	log.WithFields(logrus.Fields{"ticks": ticks, "elapsed": elapsed}).Info("run recorded")
}
