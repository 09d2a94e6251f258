package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pkt.systems/pslog"

	"github.com/parkerfly38/shulpick/internal/backend"
	"github.com/parkerfly38/shulpick/internal/config"
	"github.com/parkerfly38/shulpick/internal/prefs"
	"github.com/parkerfly38/shulpick/internal/state"
	"github.com/parkerfly38/shulpick/internal/ui"
)

// Options configure a shulpick run. Empty fields fall back to the config
// file, then to built-in defaults.
type Options struct {
	ConfigPath string
	PrefsPath  string
	APIBase    string
	LogFile    string
	LogLevel   string
	PollEvery  time.Duration

	// Fields are the pickers shown. With Single set and no field named, the
	// picker remembered in prefs is used.
	Fields []ui.FieldKind
	Single bool
	Title  string
}

// env is everything a command needs once configuration is resolved.
type env struct {
	cfg       config.Config
	prefs     prefs.Prefs
	prefsPath string
	logger    pslog.Logger
	client    *backend.Client
	closeLog  func() error
}

func setup(ctx context.Context, opts Options) (*env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.APIBase); v != "" {
		cfg.APIBase = v
	}
	if v := strings.TrimSpace(opts.LogFile); v != "" {
		cfg.LogFile = v
	}
	if v := strings.TrimSpace(opts.LogLevel); v != "" {
		cfg.LogLevel = v
	}

	logger, closeLog, err := NewLogger(ctx, cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		logger.Warn("app.prefs.load.failed", "path", prefsPath, "error", err)
	}

	client, err := backend.NewClient(cfg.APIBase,
		backend.WithTimeout(cfg.Timeout),
		backend.WithToken(cfg.APIToken),
		backend.WithEndpoints(backend.Endpoints(cfg.Endpoints)),
		backend.WithLimit(cfg.Search.Limit),
		backend.WithLogger(logger.With("component", "backend")),
	)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("init backend client: %w", err)
	}

	return &env{
		cfg:       cfg,
		prefs:     userPrefs,
		prefsPath: prefsPath,
		logger:    logger,
		client:    client,
		closeLog:  closeLog,
	}, nil
}

// Run boots the TUI and blocks until the form is submitted, abandoned or the
// context is cancelled.
func Run(ctx context.Context, opts Options) (ui.Result, error) {
	e, err := setup(ctx, opts)
	if err != nil {
		return ui.Result{}, err
	}
	defer func() { _ = e.closeLog() }()

	fields, err := e.resolveFields(opts)
	if err != nil {
		return ui.Result{}, err
	}

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = opts.PollEvery
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := &state.Store{}
	store.SetBackend(e.client.BaseURL())
	StartPoller(ctx, store, e.client, interval, e.logger.With("component", "poller"))

	e.logger.Info("app.start", "backend", e.client.BaseURL(), "fields", fmt.Sprint(fields))
	res, err := ui.Run(ui.Options{
		Context:   ctx,
		Client:    e.client,
		Store:     store,
		Search:    e.cfg.Search,
		Fields:    fields,
		Title:     opts.Title,
		PrefsPath: e.prefsPath,
		Prefs:     e.prefs,
		PollTick:  time.Second,
		Logger:    e.logger.With("component", "ui"),

		SubmitOnCommit: opts.Single,
	})
	if err != nil {
		return ui.Result{}, err
	}
	e.logger.Info("app.done", "submitted", res.Submitted, "selections", len(res.Selections))
	return res, nil
}

// resolveFields applies the remembered picker for a bare single pick and
// remembers an explicitly named one.
func (e *env) resolveFields(opts Options) ([]ui.FieldKind, error) {
	if !opts.Single {
		return opts.Fields, nil
	}
	if len(opts.Fields) > 1 {
		return nil, fmt.Errorf("pick takes one field, got %d", len(opts.Fields))
	}
	if len(opts.Fields) == 0 {
		kind, err := ui.ParseFieldKind(e.prefs.Picker)
		if err != nil {
			e.logger.Warn("app.prefs.picker.invalid", "picker", e.prefs.Picker)
			kind = ui.FieldMember
		}
		return []ui.FieldKind{kind}, nil
	}

	kind := opts.Fields[0]
	if string(kind) != e.prefs.Picker {
		e.prefs.Picker = string(kind)
		if err := prefs.Save(e.prefsPath, e.prefs); err != nil {
			e.logger.Warn("app.prefs.save.failed", "path", e.prefsPath, "error", err)
		}
	}
	return opts.Fields, nil
}
