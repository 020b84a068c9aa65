package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	syncapp "github.com/senkronix/b2b-bridge/internal/application/sync"
	"github.com/senkronix/b2b-bridge/internal/infrastructure/config"
	"github.com/senkronix/b2b-bridge/internal/infrastructure/images"
	"github.com/senkronix/b2b-bridge/internal/infrastructure/logger"
	"github.com/senkronix/b2b-bridge/internal/infrastructure/prefs"
	"github.com/senkronix/b2b-bridge/internal/infrastructure/publish"
	"github.com/senkronix/b2b-bridge/internal/infrastructure/source"
)

const usage = `Usage: syncer <command> [flags]

Commands:
  catalog            extract, normalize and publish the product catalog
  ledger             extract and publish customer balances
                     (-groups "A,B" narrows to those customer groups)
  images             extract the catalog and resolve images, no publish
  groups             list the product groups present in the source
  customer-groups    list the customer groups present in the ledger
  exclude <groups>   set the operator-excluded groups (comma separated)
`

var ledgerGroupsFlag = flag.String("groups", "", "customer groups for the ledger command, comma separated")

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]
	flag.CommandLine.Parse(os.Args[2:])

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	log, err := logger.NewFromConfig(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, command, flag.Args(), cfg, log); err != nil {
		log.Error("Command failed", zap.String("command", command), zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, cfg *config.Config, log *zap.Logger) error {
	// Updating exclusions is a local preference write; it must work even
	// when the source database is down.
	if command == "exclude" {
		if len(args) < 1 {
			return fmt.Errorf("exclude requires a comma separated group list (or \"\" to clear)")
		}
		prefStore, err := prefs.NewStore(cfg.Sync.PrefsPath)
		if err != nil {
			return err
		}
		groups := splitGroups(args[0])
		if err := prefStore.SetExcludedGroups(groups); err != nil {
			return err
		}
		log.Info("Excluded groups updated", zap.Strings("groups", groups))
		return nil
	}

	service, cleanup, err := buildService(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	switch command {
	case "catalog":
		return runCycle(ctx, service, syncapp.KindCatalog, log)
	case "ledger":
		service.SetLedgerGroups(splitGroups(*ledgerGroupsFlag))
		return runCycle(ctx, service, syncapp.KindLedger, log)
	case "images":
		return runCycle(ctx, service, syncapp.KindImages, log)
	case "customer-groups":
		groups, err := service.CustomerGroups(ctx)
		if err != nil {
			return err
		}
		for _, g := range groups {
			fmt.Println(g)
		}
		return nil
	case "groups":
		groups, err := service.ProductGroups(ctx)
		if err != nil {
			return err
		}
		excluded := make(map[string]bool)
		for _, g := range service.ExcludedGroups() {
			excluded[g] = true
		}
		for _, g := range groups {
			marker := " "
			if excluded[g] {
				marker = "x"
			}
			fmt.Printf("[%s] %s\n", marker, g)
		}
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func splitGroups(raw string) []string {
	var groups []string
	for _, g := range strings.Split(raw, ",") {
		if g = strings.TrimSpace(g); g != "" {
			groups = append(groups, g)
		}
	}
	return groups
}

func runCycle(ctx context.Context, service *syncapp.Service, kind string, log *zap.Logger) error {
	worker := syncapp.NewWorker(service, log)
	results, err := worker.Start(ctx, kind)
	if err != nil {
		return err
	}

	// A second signal while a cycle runs asks the worker to stop between
	// items instead of killing the process mid-upload.
	go func() {
		<-ctx.Done()
		worker.Cancel()
	}()

	result := <-results
	if result.Failed() {
		return result.Err
	}

	log.Info("Cycle finished",
		zap.String("run_id", result.RunID),
		zap.String("kind", result.Kind),
		zap.Int("items", result.Items),
		zap.Int("skipped", result.Skipped),
		zap.Int("warnings", len(result.Warnings)),
		zap.Duration("duration", result.Duration),
	)
	for _, w := range result.Warnings {
		log.Warn("Normalization warning", zap.String("detail", w.String()))
	}
	return nil
}

func buildService(cfg *config.Config, log *zap.Logger) (*syncapp.Service, func(), error) {
	reader, err := source.Connect(source.Config{
		Driver:         cfg.Source.Driver,
		DSN:            cfg.Source.ResolvedDSN(),
		ConnectTimeout: cfg.Source.ConnectTimeout,
		QueryTimeout:   cfg.Source.QueryTimeout,
	}, log)
	if err != nil {
		return nil, nil, err
	}

	prefStore, err := prefs.NewStore(cfg.Sync.PrefsPath)
	if err != nil {
		reader.Close()
		return nil, nil, err
	}

	search := images.NewMetaSearchClient(cfg.Images.SearchURL, cfg.Images.DownloadTimeout, log)
	resolver := images.NewResolver(cfg.Images.Dir, search, cfg.Images.DownloadTimeout, log)

	publisher := publish.NewClient(publish.Config{
		CatalogURL:  cfg.Publish.CatalogURL,
		LedgerURL:   cfg.Publish.LedgerURL,
		CatalogKey:  cfg.Publish.CatalogKey,
		LedgerKey:   cfg.Publish.LedgerKey,
		Timeout:     cfg.Publish.Timeout,
		PreviewPath: cfg.Publish.PreviewPath,
	}, log)

	service := syncapp.NewService(reader, resolver, publisher, prefStore, log)
	cleanup := func() {
		if err := reader.Close(); err != nil {
			log.Error("Error closing source connection", zap.Error(err))
		}
	}
	return service, cleanup, nil
}
