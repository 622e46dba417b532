package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/docsift/docsift/config"
	"github.com/docsift/docsift/docstore"
	"github.com/docsift/docsift/export"
	"github.com/docsift/docsift/integrations/registry"
	"github.com/docsift/docsift/jsonsource"
	"github.com/docsift/docsift/scanner"
	"github.com/docsift/docsift/schemafile"
	"github.com/docsift/docsift/schemaserver"
	"github.com/docsift/docsift/wirecap"
)

func rootCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "docsift",
		Usage: "infer structural schemas from document store samples",
		Commands: []*cli.Command{
			scanCommand(cfg),
			listenCommand(cfg),
		},
	}
}

func scanCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "sample collections through the driver and write their schemas",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "uri", Usage: "connection string, overrides host/port", Value: cfg.MongoURI},
			&cli.StringFlag{Name: "database", Aliases: []string{"d"}, Usage: "database to scan", Value: cfg.Database},
			&cli.StringFlag{Name: "from-dir", Usage: "scan mongoexport dumps in a directory instead of a live store"},
			&cli.IntFlag{Name: "sample-size", Usage: "documents per collection, 0 = all", Value: int64(cfg.SampleSize)},
			&cli.IntFlag{Name: "stride", Usage: "merge every Nth document", Value: int64(cfg.Stride)},
			&cli.IntFlag{Name: "workers", Usage: "collections scanned concurrently", Value: int64(cfg.ScanWorkers)},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "schema output file", Value: cfg.SchemaOut},
			&cli.StringFlag{Name: "openapi-out", Usage: "also write an OpenAPI document here", Value: cfg.OpenAPIOut},
			&cli.StringFlag{Name: "rules", Usage: "YAML file with collection include/exclude rules"},
			&cli.BoolFlag{Name: "serve", Usage: "serve the result over HTTP after the scan"},
			&cli.StringFlag{Name: "addr", Usage: "HTTP listen address", Value: cfg.ListenAddr},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runScan(ctx, cmd, cfg)
		},
	}
}

func runScan(ctx context.Context, cmd *cli.Command, cfg config.Config) error {
	cfg.MongoURI = cmd.String("uri")
	cfg.Database = cmd.String("database")
	cfg.SampleSize = int(cmd.Int("sample-size"))
	cfg.Stride = int(cmd.Int("stride"))
	cfg.ScanWorkers = int(cmd.Int("workers"))
	cfg.SchemaOut = cmd.String("out")
	cfg.OpenAPIOut = cmd.String("openapi-out")
	cfg.ListenAddr = cmd.String("addr")

	if path := cmd.String("rules"); path != "" {
		rules, err := config.LoadRules(path)
		if err != nil {
			return err
		}
		cfg.Collections = rules
	}

	src, title, cleanup, err := openSource(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	sc := scanner.New(src, cfg)
	res, err := sc.Scan(ctx)
	if err != nil {
		return err
	}

	if err := schemafile.Write(cfg.SchemaOut, res.Serialize()); err != nil {
		return err
	}
	slog.Info("schema written", "path", cfg.SchemaOut, "collections", len(res.Trees))

	if cfg.OpenAPIOut != "" {
		doc := export.Doc(title, res.Trees)
		if err := schemafile.Write(cfg.OpenAPIOut, doc); err != nil {
			return err
		}
		slog.Info("openapi document written", "path", cfg.OpenAPIOut)
	}

	if cfg.RegistryServer != "" {
		if err := publishScan(ctx, cfg, res); err != nil {
			slog.Warn("could not publish scan", "err", err)
		}
	}

	if cmd.Bool("serve") {
		srv := schemaserver.New(resultProvider{res: res}, sc.Metrics().Registry())
		slog.Info("serving schemas", "addr", cfg.ListenAddr)
		return srv.ListenAndServe(ctx, cfg.ListenAddr)
	}
	return nil
}

func openSource(ctx context.Context, cmd *cli.Command, cfg config.Config) (scanner.Source, string, func(), error) {
	if dir := cmd.String("from-dir"); dir != "" {
		src, err := jsonsource.Open(dir)
		if err != nil {
			return nil, "", nil, err
		}
		return src, dir, func() {}, nil
	}

	store, err := docstore.Connect(ctx, cfg.URI())
	if err != nil {
		return nil, "", nil, err
	}
	if err := store.Use(cfg.Database); err != nil {
		store.Close(ctx)
		return nil, "", nil, err
	}
	cleanup := func() {
		if err := store.Close(context.Background()); err != nil {
			slog.Warn("could not close store", "err", err)
		}
	}
	return store, cfg.Database, cleanup, nil
}

func publishScan(ctx context.Context, cfg config.Config, res *scanner.Result) error {
	client, err := registry.NewClient(cfg.RegistryAPIKey, cfg.RegistryServer)
	if err != nil {
		return err
	}
	return client.UploadScan(ctx, registry.ScanUpload{
		SessionID: res.Session.ID.String(),
		Database:  cfg.Database,
		StartedAt: res.Session.Started,
		Schemas:   res.Serialize(),
	})
}

func listenCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "listen",
		Usage: "passively capture wire traffic and infer schemas from it",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "device", Aliases: []string{"i"}, Usage: "device to capture on", Value: cfg.CaptureDevice},
			&cli.StringFlag{Name: "pcap", Aliases: []string{"r"}, Usage: "replay a pcap dump instead of capturing live"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "document store port", Value: int64(cfg.CapturePort)},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "schema snapshot written on shutdown", Value: cfg.SchemaOut},
			&cli.BoolFlag{Name: "serve", Usage: "serve observed schemas over HTTP while capturing"},
			&cli.StringFlag{Name: "addr", Usage: "HTTP listen address", Value: cfg.ListenAddr},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runListen(ctx, cmd, cfg)
		},
	}
}

func runListen(ctx context.Context, cmd *cli.Command, cfg config.Config) error {
	device := cmd.String("device")
	port := int(cmd.Int("port"))

	var source wirecap.PacketSource
	var err error
	if path := cmd.String("pcap"); path != "" {
		slog.Info("replaying pcap dump", "path", path, "port", port)
		source, err = wirecap.NewSourceFile(path, port)
	} else {
		slog.Info("capturing", "device", device, "port", port)
		source, err = wirecap.NewSourceLive(device, port)
	}
	if err != nil {
		return fmt.Errorf("open packet source: %w", err)
	}

	capture := wirecap.New(source)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return capture.Run(gctx)
	})
	if cmd.Bool("serve") {
		g.Go(func() error {
			addr := cmd.String("addr")
			slog.Info("serving schemas", "addr", addr)
			return schemaserver.New(capture, capture.Gatherer()).ListenAndServe(gctx, addr)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	snapshot := capture.Serialize()
	if len(snapshot) == 0 {
		slog.Warn("no documents observed, nothing to write")
		return nil
	}
	if err := schemafile.Write(cmd.String("out"), snapshot); err != nil {
		return err
	}
	slog.Info("schema snapshot written", "path", cmd.String("out"), "namespaces", len(snapshot))
	return nil
}

// resultProvider adapts a finished scan to the HTTP surface.
type resultProvider struct {
	res *scanner.Result
}

func (p resultProvider) Collections() []string {
	return p.res.Collections()
}

func (p resultProvider) Schema(collection string) (map[string]any, bool) {
	return p.res.Schema(collection)
}

func (p resultProvider) OpenAPI(collection string) (*openapi3.Schema, bool) {
	tree, ok := p.res.Trees[collection]
	if !ok {
		return nil, false
	}
	return export.Collection(tree), true
}
