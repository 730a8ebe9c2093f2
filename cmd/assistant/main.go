package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"loathing_assistant/internal/app"
	"loathing_assistant/internal/character"
	"loathing_assistant/internal/config"
	"loathing_assistant/internal/display"
	"loathing_assistant/internal/pkg/auth"
	"loathing_assistant/internal/pkg/logger"
	"loathing_assistant/internal/preferences"
	"loathing_assistant/internal/request"
	"loathing_assistant/internal/requestthread"
	"loathing_assistant/internal/service"
	"loathing_assistant/internal/session"
	"loathing_assistant/internal/storage"

	"golang.org/x/sync/errgroup"
)

func main() {
	var l *logger.Logger
	var err error
	if l, err = logger.CreateLogger(config.LogLevel); err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer l.Sync()

	db, err := storage.Open(storage.Dialect(config.DatabaseDialect), config.DatabaseURI, l)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	phrases := request.DefaultPhrases()
	if config.PhrasesFile != "" {
		if phrases, err = request.LoadPhrases(config.PhrasesFile); err != nil {
			log.Fatal(err)
		}
	}

	client, err := request.NewClient(config.GameBaseURL, &http.Client{
		Timeout:   config.RequestTimeout,
		Transport: l.Transport(nil),
	}, l)
	if err != nil {
		log.Fatal(err)
	}

	auth.SetSecretKey(config.RelayPassword)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	thread := requestthread.New(&request.Env{
		Client:       client,
		Character:    character.New(""),
		Prefs:        preferences.NewStore("", db, l),
		Display:      display.NewSink(l),
		Phrases:      phrases,
		Log:          l,
		PasswordHash: config.GamePasswordHash,
	})
	thread.Start(context.Background())
	defer thread.Stop()

	g, ctx := errgroup.WithContext(ctx)

	var server *http.Server
	var relayOnce sync.Once
	startRelay := func() error {
		relayOnce.Do(func() {
			g.Go(func() error {
				l.Sugar().Infof("Local relay server listening on %s", server.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		})
		return nil
	}

	sess := session.New(thread, session.Options{StartRelay: startRelay})
	server = service.NewService(app.NewApp(db, sess, l), config.RelayRunAddress, l).NewServer()

	g.Go(func() error {
		<-ctx.Done()

		const shutdownTimeout = 30 * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := login(ctx, sess, l); err != nil {
		l.Sugar().Errorf("Login failed: %s", err)
	}
	startRelay()

	waitErr := g.Wait()

	const logoutTimeout = 10 * time.Second
	logoutCtx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
	defer cancel()
	if err := sess.Logout(logoutCtx); err != nil {
		l.Sugar().Errorf("Logout failed: %s", err)
	}

	if waitErr != nil {
		l.Sugar().Errorf("Local relay server stopped: %s", waitErr)
	}
}

// login initialises the session of the configured user, or of the one named
// by the shared autoLogin preference.
func login(ctx context.Context, sess *session.Session, l *logger.Logger) error {
	if config.GameUsername != "" {
		return sess.Initialize(ctx, config.GameUsername)
	}

	if err := sess.Env().Prefs.Load(ctx, ""); err != nil {
		return err
	}
	user, err := sess.AutoLogin(ctx)
	if err != nil {
		return err
	}
	if user == "" {
		l.Info("No auto login user configured")
	}
	return nil
}
