package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/mkarev/liveclass/internal/adapters/http"
	"github.com/mkarev/liveclass/internal/adapters/meta"
	"github.com/mkarev/liveclass/internal/adapters/rtc"
	sigchan "github.com/mkarev/liveclass/internal/adapters/signal"
	"github.com/mkarev/liveclass/internal/app/orch"
	"github.com/mkarev/liveclass/internal/config"
	"github.com/mkarev/liveclass/internal/core"
	"github.com/mkarev/liveclass/internal/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if cfg.SessionID == "" {
		log.Fatal().Msg("session_id is required")
	}

	self := domain.UserID(cfg.UserID)
	if self == "" {
		user, err := domain.NewUser(cfg.UserName)
		if err != nil {
			log.Fatal().Err(err).Msg("user_name is invalid")
		}
		self = user.ID
	}

	lookupCtx, lookupCancel := context.WithTimeout(ctx, 10*time.Second)
	session, err := meta.NewClient(cfg.MetaURL).Lookup(lookupCtx, domain.SessionID(cfg.SessionID))
	lookupCancel()
	if err != nil {
		log.Fatal().Err(err).Msg("session metadata lookup")
	}
	log.Info().Str("session", string(session.ID)).Str("title", session.Title).Bool("waiting_room", session.WaitingRoomEnabled).Msg("session loaded")

	// The host must have local capture ready before joining; a regular
	// participant starts without a source and only receives.
	var source core.MediaSource
	if session.IsHost(self) {
		src, err := rtc.NewSampleSource()
		if err != nil {
			log.Fatal().Err(err).Msg("local media source")
		}
		source = src
	}

	channel, err := sigchan.Dial(ctx, cfg.SignalURL, nil, sigchan.Options{
		PingPeriod: cfg.PingPeriod,
		SendBuffer: cfg.QueueSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("signaling channel dial")
	}

	o := orch.New(ctx, orch.Config{
		Session:   session,
		Self:      self,
		Channel:   channel,
		Factory:   rtc.NewFactory(cfg.StunURLs),
		Source:    source,
		Capturer:  rtc.DisplayCapturer{},
		QueueSize: cfg.QueueSize,
	})
	o.OnTerminated(func(reason orch.TerminationReason) {
		log.Info().Str("reason", string(reason)).Msg("session over")
		cancel()
	})
	o.OnChat(func(from domain.UserID, name, text string) {
		log.Info().Str("from", name).Str("text", text).Msg("chat")
	})

	// Events only start flowing once the orchestrator exists. The read
	// pump blocks rather than drop, so nothing inbound is lost.
	channel.SetSink(func(ev core.Event) { o.Submit(ev) })

	go o.Run(ctx)

	srv := &http.Server{
		Addr:    cfg.StatusAddr,
		Handler: router.SetupRouter(cfg, o),
	}
	go func() {
		log.Info().Str("addr", cfg.StatusAddr).Msg("status endpoint started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("status server error")
		}
	}()

	if err := o.SubmitJoin(cfg.UserName); err != nil {
		log.Fatal().Err(err).Msg("join")
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")
	o.Leave()
	channel.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("status server forced to shutdown")
	}
	log.Info().Msg("client exited gracefully")
}
