package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"github.com/saiputravu/clob/internal/clob"
	"github.com/saiputravu/clob/internal/config"
	httptransport "github.com/saiputravu/clob/internal/transport/http"
	natstransport "github.com/saiputravu/clob/internal/transport/nats"
	"github.com/saiputravu/clob/internal/transport/upstream"
)

const orderIngressConcurrency = 8

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	nc, err := nats.Connect(cfg.NATSAddr(),
		nats.Name("clobd"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to nats")
	}
	defer nc.Close()

	publisher := natstransport.NewPublisher(nc)
	registry := clob.NewBookRegistry(publisher)
	router := clob.NewIngressRouter(registry)
	reader := clob.NewSnapshotReader(registry)

	var t tomb.Tomb

	orderSub := natstransport.NewOrderSubscriber(nc, router, orderIngressConcurrency)
	if err := orderSub.Start(&t); err != nil {
		log.Fatal().Err(err).Msg("failed to subscribe to clob.orders")
	}
	defer orderSub.Stop()

	srv := httptransport.NewServer(registry, router, reader)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: srv.Handler(),
	}

	ready := make(chan struct{})
	t.Go(func() error {
		ln, err := net.Listen("tcp", httpServer.Addr)
		if err != nil {
			return err
		}
		close(ready)
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	select {
	case <-ready:
	case <-ctx.Done():
		log.Fatal().Msg("shutdown requested before http server bound")
	}
	log.Info().Str("addr", cfg.HTTPAddr()).Msg("http server listening")

	replaySource := upstream.NewHTTPReplaySource("http://" + cfg.UpstreamAddr())
	recovery := clob.NewRecoveryInitiator(replaySource)
	if err := recovery.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("upstream replay failed, aborting boot")
	}
	log.Info().Msg("upstream replay complete, serving")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	t.Kill(nil)
	if err := t.Wait(); err != nil {
		log.Error().Err(err).Msg("background worker exited with error")
	}
}
