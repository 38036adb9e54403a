package cli

import (
	"fmt"

	"habitcoach/internal/auth"
	"habitcoach/internal/coach"
	"habitcoach/internal/config"
	"habitcoach/internal/dialog"
	"habitcoach/internal/dispatch"
	"habitcoach/internal/observability"
	"habitcoach/internal/outcome"
	"habitcoach/internal/scheduler"
	"habitcoach/internal/store"
	"habitcoach/internal/transport"
)

type repository interface {
	store.Repository
	store.SubscriptionStore
}

// services is the wired application shared by serve and tick.
type services struct {
	cfg        *config.Config
	repo       repository
	signer     *auth.ActionSigner
	outcomes   *outcome.Service
	engine     *dialog.Engine
	dispatcher *dispatch.Dispatcher
	scheduler  *scheduler.Scheduler
	close      func() error
}

func openRepository(cfg *config.Config) (repository, func() error, error) {
	if cfg.StorageBackend == "memory" {
		observability.Logger().Warn("using in-memory storage; data is lost on restart")
		return store.NewMemoryStore(), func() error { return nil }, nil
	}
	s, err := store.NewSQLiteStore(cfg.DBPath, cfg.DBEncryptionKey)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

func newGenerator(cfg *config.Config) (coach.Generator, error) {
	if cfg.UseMockLLM {
		observability.Logger().Info("using mock text generator")
		return coach.NewMockGenerator(), nil
	}
	client, err := coach.NewTogetherClient(cfg.TogetherURL, cfg.TogetherAPIKey, cfg.TogetherModel, cfg.LLMTimeout)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func buildServices(cfg *config.Config, schedOpts ...scheduler.Option) (*services, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	gen, err := newGenerator(cfg)
	if err != nil {
		closeRepo()
		return nil, err
	}
	signer, err := auth.NewActionSigner(cfg.AppSecret, auth.DefaultTokenTTL)
	if err != nil {
		closeRepo()
		return nil, err
	}

	var sender transport.Sender = transport.NewLogSender()
	if cfg.WebPushConfigured() {
		sender = transport.NewWebPushSender(repo, signer, transport.VAPIDConfig{
			PublicKey:  cfg.VAPIDPublicKey,
			PrivateKey: cfg.VAPIDPrivateKey,
			Subject:    cfg.VAPIDSubject,
		})
	} else {
		observability.Logger().Warn("VAPID keys not set; prompts are logged instead of pushed")
	}

	localWeekday := cfg.WeekdayMode == config.WeekdayLocal
	outcomes := outcome.NewService(repo, gen, outcome.WithLocalDates(localWeekday))
	engine := dialog.NewEngine(repo, dialog.NewSessions(cfg.SessionTTL))

	opts := append([]scheduler.Option{
		scheduler.WithInterval(cfg.TickInterval),
		scheduler.WithLocalWeekday(localWeekday),
		scheduler.WithSendTimeout(cfg.SendTimeout),
	}, schedOpts...)

	return &services{
		cfg:        cfg,
		repo:       repo,
		signer:     signer,
		outcomes:   outcomes,
		engine:     engine,
		dispatcher: dispatch.New(engine, outcomes),
		scheduler:  scheduler.New(repo, sender, opts...),
		close:      closeRepo,
	}, nil
}
