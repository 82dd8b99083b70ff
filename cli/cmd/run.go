package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/harvestapi/prospector/adapter"
	redisadapter "github.com/harvestapi/prospector/adapter/redis"
	"github.com/harvestapi/prospector/adapter/webhook"
	"github.com/harvestapi/prospector/billing"
	"github.com/harvestapi/prospector/budget"
	"github.com/harvestapi/prospector/cli/config"
	"github.com/harvestapi/prospector/cli/render"
	"github.com/harvestapi/prospector/harvest"
	"github.com/harvestapi/prospector/harvestapi"
	"github.com/harvestapi/prospector/log"
	"github.com/harvestapi/prospector/metrics"
	"github.com/harvestapi/prospector/platform"
	"github.com/harvestapi/prospector/sink"
	"github.com/harvestapi/prospector/types"
)

// Exit codes for the run command.
const (
	exitSuccess       = 0
	exitSearchFailure = 1
	exitUsage         = 2
)

// User-facing warning messages. These go to stderr as styled banners,
// distinct from structured log lines and item output.
const (
	warnMissingIdentity = "Please provide firstName and lastName inputs."
	warnNoBudget        = "No items left to scrape. Please increase the maxItems input or reduce the filters."
	warnFreeTier        = "Free users are limited up to 10 items per run. Please upgrade to a paid plan to scrape more items."
)

// Free-tier listing requests are throttled to one per second.
var freeTierRate = rate.Every(time.Second)

// RunCommand returns the run command, the only command that executes work.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Execute a profile harvest run",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "input",
				Usage: "Path to run input JSON file",
				Value: "INPUT.json",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to prospector.yaml config file",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to .env file (loaded if present)",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Scrape mode override (price-tier label or 1/2/3)",
			},
			&cli.IntFlag{
				Name:  "max-items",
				Usage: "Item cap override (0 = use input maxItems)",
			},
			&cli.StringFlag{
				Name:  "sink-backend",
				Usage: "Output sink: platform or file (default: platform when run env is present)",
			},
			&cli.StringFlag{
				Name:  "sink-path",
				Usage: "Directory for the file sink",
				Value: "output",
			},
			&cli.IntFlag{
				Name:  "item-concurrency",
				Usage: "Concurrent enrichment fetches (0 = mode default)",
			},
			&cli.IntFlag{
				Name:  "page-lookahead",
				Usage: "Concurrent page fetches beyond the first (0 = default)",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress the run summary",
			},
			FormatFlag,
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	// .env is optional; a missing file is not an error.
	if envFile := c.String("env-file"); envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return cli.Exit(fmt.Sprintf("cannot load env file: %v", err), exitUsage)
			}
		}
	}

	var cfg config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cli.Exit(err.Error(), exitUsage)
		}
		cfg = *loaded
	}

	input, err := platform.LoadInput(c.String("input"))
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	query, err := types.NormalizeQuery(input)
	if err != nil {
		if errors.Is(err, types.ErrMissingIdentity) {
			log.UserWarning(warnMissingIdentity)
			return cli.Exit("", exitSuccess)
		}
		return cli.Exit(err.Error(), exitUsage)
	}

	modeToken := input.ProfileScraperMode
	if override := c.String("mode"); override != "" {
		modeToken = override
	}
	mode := types.ResolveMode(modeToken)

	env := platform.LoadEnv()
	if env.RunID == "" {
		// Local runs still need a run identity for logs, sink files
		// and the run-completed event.
		env.RunID = uuid.New().String()
	}
	logger := log.NewLogger(env.RunMeta())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	account, ledger := resolveAccount(ctx, env)

	maxItems := input.MaxItems
	if override := c.Int("max-items"); override != 0 {
		maxItems = override
	}

	tracker, freeTierClamped := budget.New(budget.Options{
		AccountMaxPaidItems: account.MaxPaidItems,
		UserMaxItems:        maxItems,
		Paying:              account.Paying,
	})
	if freeTierClamped {
		log.UserWarning(warnFreeTier)
	}
	if tracker.Exhausted() {
		log.UserWarning(warnNoBudget)
		return cli.Exit("", exitSuccess)
	}

	provider, err := buildProvider(cfg.Provider, env, account, tracker.Remaining(), maxItems)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	outSink, err := buildSink(c, cfg.Sink, env, logger)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	defer func() { _ = outSink.Close() }()

	collector := metrics.NewCollector(mode.String(), env.RunID)

	itemConcurrency := c.Int("item-concurrency")
	if itemConcurrency == 0 {
		itemConcurrency = cfg.Concurrency.Items
	}
	pageLookahead := c.Int("page-lookahead")
	if pageLookahead == 0 {
		pageLookahead = cfg.Concurrency.Pages
	}

	orchestrator, err := harvest.NewOrchestrator(harvest.Config{
		Mode:            mode,
		Query:           query,
		Account:         account,
		Tracker:         tracker,
		Provider:        provider,
		Sink:            outSink,
		Ledger:          ledger,
		Logger:          logger,
		Collector:       collector,
		ItemConcurrency: itemConcurrency,
		PageLookahead:   pageLookahead,
	})
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	startTime := time.Now()
	state, runErr := orchestrator.Run(ctx)
	duration := time.Since(startTime)
	outcome := harvest.ClassifyOutcome(runErr)

	if runErr != nil {
		logger.Error("run failed", map[string]any{"error": runErr.Error()})
	}
	if freeTierClamped {
		// Repeated at run end so it is visible next to the final output.
		log.UserWarning(warnFreeTier)
	}

	snapshot := collector.Snapshot()
	logger.Info("run finished", map[string]any{
		"outcome":            string(outcome),
		"scraped":            state.Scraped(),
		"total_found":        state.TotalFound(),
		"pages_fetched":      snapshot.PagesFetched,
		"candidates_seen":    snapshot.CandidatesSeen,
		"candidates_skipped": snapshot.CandidatesSkipped,
		"enrich_failures":    snapshot.EnrichFailure,
		"duration":           duration.Round(time.Millisecond).String(),
	})

	publishRunCompleted(ctx, c, cfg.Adapter, logger, &adapter.RunCompletedEvent{
		Version:      types.Version,
		EventType:    "run_completed",
		RunID:        env.RunID,
		ActorID:      env.ActorID,
		Mode:         mode.String(),
		Outcome:      string(outcome),
		ItemsScraped: state.Scraped(),
		TotalFound:   state.TotalFound(),
		Timestamp:    startTime.UTC().Format(time.RFC3339),
		DurationMs:   duration.Milliseconds(),
	})

	if !c.Bool("quiet") {
		if err := printSummary(c, env, mode, state, outcome, duration); err != nil {
			logger.Warn("cannot render run summary", map[string]any{"error": err.Error()})
		}
	}

	if runErr != nil {
		return cli.Exit(runErr.Error(), outcome.ExitCode())
	}
	return cli.Exit("", exitSuccess)
}

// resolveAccount assembles account facts and the billing ledger. Outside
// a platform run environment the account defaults to paying flat-rate
// and charges go to a stub.
func resolveAccount(ctx context.Context, env platform.Env) (types.Account, billing.Ledger) {
	if env.APIURL == "" {
		return types.Account{
			UserID:            env.UserID,
			Paying:            true,
			PayPerEvent:       env.IsPayPerEvent,
			MaxTotalChargeUSD: env.MaxTotalChargeUSD,
			MaxPaidItems:      env.MaxPaidItems,
		}, billing.NewStubLedger()
	}

	client, err := platform.NewClient(env.APIURL, env.Token)
	if err != nil {
		return types.Account{Paying: true, PayPerEvent: env.IsPayPerEvent}, billing.NewStubLedger()
	}

	account := client.Account(ctx, env)
	if env.RunID == "" {
		return account, billing.NewStubLedger()
	}
	return account, platform.NewRunLedger(client, env.RunID)
}

// buildProvider constructs the search provider client, forwarding run
// and account facts as request headers the provider expects.
func buildProvider(pc config.ProviderConfig, env platform.Env, account types.Account, leftItems, maxItems int) (*harvestapi.Client, error) {
	token := pc.Token
	if token == "" {
		token = os.Getenv("HARVESTAPI_TOKEN")
	}
	if token == "" {
		return nil, errors.New("provider token is required (set HARVESTAPI_TOKEN or provider.token)")
	}

	baseURL := pc.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("HARVESTAPI_URL")
	}

	headers := map[string]string{
		"x-platform-user-id":              env.UserID,
		"x-platform-actor-id":             env.ActorID,
		"x-platform-run-id":               env.RunID,
		"x-platform-build-id":             env.BuildID,
		"x-platform-memory-mbytes":        strconv.Itoa(env.MemoryMB),
		"x-platform-max-paid-items":       strconv.Itoa(env.MaxPaidItems),
		"x-platform-username":             account.Username,
		"x-platform-user-is-paying":       strconv.FormatBool(account.Paying),
		"x-platform-is-pay-per-event":     strconv.FormatBool(account.PayPerEvent),
		"x-platform-max-total-charge-usd": strconv.FormatFloat(account.MaxTotalChargeUSD, 'f', -1, 64),
		"x-platform-user-left-items":      strconv.Itoa(leftItems),
		"x-platform-user-max-items":       strconv.Itoa(maxItems),
	}

	// Listing requests carry queue hints; free-tier accounts are slowed
	// down server-side and client-side.
	subUser := ""
	concurrencyHint := "1"
	queueSize := "5"
	var limiter *rate.Limiter
	if account.Paying {
		subUser = account.Username
		concurrencyHint = ""
		queueSize = "20"
	} else {
		limiter = rate.NewLimiter(freeTierRate, 1)
	}

	clientCfg := harvestapi.Config{
		BaseURL: baseURL,
		APIKey:  token,
		Headers: headers,
		ListingHeaders: map[string]string{
			"x-sub-user":    subUser,
			"x-concurrency": concurrencyHint,
			"x-queue-size":  queueSize,
		},
		Limiter: limiter,
	}
	if pc.Timeout.Duration > 0 {
		clientCfg.Timeout = pc.Timeout.Duration
	}
	if pc.Retries != nil {
		clientCfg.Retries = *pc.Retries
	}

	return harvestapi.New(clientCfg)
}

// buildSink selects the output sink. With no explicit backend, items go
// to the platform dataset when the run environment is present and to a
// local JSONL directory otherwise.
func buildSink(c *cli.Context, sc config.SinkConfig, env platform.Env, logger *log.Logger) (sink.Sink, error) {
	backend := c.String("sink-backend")
	if backend == "" {
		backend = sc.Backend
	}
	if backend == "" {
		if env.APIURL != "" && env.RunID != "" {
			backend = "platform"
		} else {
			backend = "file"
		}
	}

	path := c.String("sink-path")
	if sc.Path != "" && !c.IsSet("sink-path") {
		path = sc.Path
	}

	switch backend {
	case "platform":
		s, err := sink.NewDatasetSink(sink.DatasetConfig{
			BaseURL: env.APIURL,
			Token:   env.Token,
			RunID:   env.RunID,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("using platform dataset sink", nil)
		return s, nil
	case "file":
		s, err := sink.NewFileSink(path)
		if err != nil {
			return nil, err
		}
		logger.Info("using file sink", map[string]any{"path": path})
		return s, nil
	default:
		return nil, fmt.Errorf("unknown sink-backend: %s (must be platform or file)", backend)
	}
}

// publishRunCompleted sends the run-completed event when an adapter is
// configured. Publish failures are logged, never fatal; the harvest
// itself already settled.
func publishRunCompleted(ctx context.Context, c *cli.Context, ac config.AdapterConfig, logger *log.Logger, event *adapter.RunCompletedEvent) {
	if ac.Type == "" {
		return
	}

	var (
		a   adapter.Adapter
		err error
	)
	switch ac.Type {
	case "webhook":
		webhookCfg := webhook.Config{URL: ac.URL, Headers: ac.Headers, Timeout: ac.Timeout.Duration}
		if ac.Retries != nil {
			webhookCfg.Retries = *ac.Retries
		}
		a, err = webhook.New(webhookCfg)
	case "redis":
		redisCfg := redisadapter.Config{URL: ac.URL, Channel: ac.Channel, Timeout: ac.Timeout.Duration}
		if ac.Retries != nil {
			redisCfg.Retries = *ac.Retries
		}
		a, err = redisadapter.New(redisCfg)
	default:
		logger.Warn("unknown adapter type", map[string]any{"type": ac.Type})
		return
	}
	if err != nil {
		logger.Warn("cannot create adapter", map[string]any{"type": ac.Type, "error": err.Error()})
		return
	}
	defer func() { _ = a.Close() }()

	if err := a.Publish(ctx, event); err != nil {
		logger.Warn("run-completed publish failed", map[string]any{"type": ac.Type, "error": err.Error()})
		return
	}
	logger.Info("run-completed event published", map[string]any{"type": ac.Type})
}

// RunSummary is the end-of-run report printed to stdout.
type RunSummary struct {
	RunID      string `json:"run_id,omitempty"`
	Mode       string `json:"mode"`
	Outcome    string `json:"outcome"`
	Scraped    int    `json:"scraped"`
	TotalFound int    `json:"total_found"`
	Duration   string `json:"duration"`
}

func printSummary(c *cli.Context, env platform.Env, mode types.ScrapeMode, state *harvest.RunState, outcome harvest.Outcome, duration time.Duration) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	return r.Render(RunSummary{
		RunID:      env.RunID,
		Mode:       mode.String(),
		Outcome:    string(outcome),
		Scraped:    state.Scraped(),
		TotalFound: state.TotalFound(),
		Duration:   duration.Round(time.Millisecond).String(),
	})
}
