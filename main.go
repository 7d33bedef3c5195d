package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"nameplate/api"
	"nameplate/app"
	"nameplate/compose"
	"nameplate/config"
	"nameplate/model"
	"nameplate/scheduler"
	"nameplate/storage"
)

//go:embed web
var webFS embed.FS

var (
	dataDir    string
	listen     string
	listenPort int
	document   string
	appVersion = "0.1.0"

	renderName      string
	renderPage      int
	renderFrameRect string
	renderOut       string

	exportsFrom string
	exportsTo   string
)

var rootCmd = &cobra.Command{
	Use:   "nameplate",
	Short: "Themed name frames over document pages",
	Long:  "Nameplate serves a browser UI that overlays a themed name frame on the pages of a document and exports the result as PNG.",
	RunE:  run,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Export a nameplate without a browser",
	Long:  "Render one page of the document with the frame and name drawn on it and save it to the exports directory.",
	RunE:  runRender,
}

var exportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "List saved exports",
	RunE:  runExports,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  "Manage nameplate configuration files.",
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a default configuration file",
	Long:  "Generate a default nameplate.yaml file in the specified data directory (or current directory if not specified).",
	RunE:  runConfigGenerate,
}

func init() {
	wd, _ := os.Getwd()
	rootCmd.Version = appVersion
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", wd, "Data directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&document, "document", "", "Document path or URL (overrides config)")

	rootCmd.Flags().StringVar(&listen, "listen", "all", "IP address to listen on (default: all)")
	rootCmd.Flags().IntVar(&listenPort, "listen-port", 8080, "Port to listen on (default: 8080)")

	renderCmd.Flags().StringVar(&renderName, "name", "", "Name drawn in the frame (default: placeholder)")
	renderCmd.Flags().IntVar(&renderPage, "page", 1, "Page number to render")
	renderCmd.Flags().StringVar(&renderFrameRect, "frame-rect", "", "Displayed frame rect as left,top,width,height in viewport pixels (default: centered)")
	renderCmd.Flags().StringVar(&renderOut, "out", "", "Write the PNG to this path instead of the exports directory")

	exportsCmd.Flags().StringVar(&exportsFrom, "from", "", "Start of range, RFC3339 (default: 30 days ago)")
	exportsCmd.Flags().StringVar(&exportsTo, "to", "", "End of range, RFC3339 (default: now)")

	configCmd.AddCommand(configGenerateCmd)
	rootCmd.AddCommand(configCmd, renderCmd, exportsCmd)
}

func loadConfig(cmd *cobra.Command) (config.Config, *log.Logger, error) {
	cfg, err := config.Load(dataDir)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if document != "" {
		cfg.Document = document
	}

	dataDirAbs, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = dataDirAbs

	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid config: %w", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	log.SetDefault(logger)

	return cfg, logger, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("listen") || cmd.Flags().Changed("listen-port") {
		if listen != "" && listen != "all" {
			cfg.ListenAddr = net.JoinHostPort(listen, strconv.Itoa(listenPort))
		} else {
			cfg.ListenAddr = fmt.Sprintf(":%d", listenPort)
		}
	}
	if cfg.AppURL == "" {
		cfg.AppURL = localURL(cfg.ListenAddr)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ws := api.NewWSConnectionManager()
	a, err := app.New(app.Options{
		Config:  cfg,
		Logger:  logger,
		Applier: api.NewBroadcastApplier(ws),
	})
	if err != nil {
		return err
	}

	static, err := fs.Sub(webFS, "web")
	if err != nil {
		return fmt.Errorf("create static file sub-filesystem: %w", err)
	}

	apiServer, err := api.NewServer(api.Options{
		App:      a,
		WS:       ws,
		Static:   static,
		Version:  appVersion,
		AllowAll: cfg.AllowAllOrigins,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	go func() {
		if err := a.Start(ctx); err != nil {
			logger.Error("document unavailable, serving without pages", "err", err)
		}
	}()

	if cfg.ExportRetention > 0 {
		store := storage.New(cfg.DataDir)
		scheduler.New(logger, scheduler.Task{
			Name:  "prune-exports",
			Every: time.Hour,
			Run: func(ctx context.Context, now time.Time) error {
				n, err := store.PruneExports(now.Add(-cfg.ExportRetention))
				if n > 0 {
					logger.Info("pruned old exports", "count", n)
				}
				return err
			},
		}).Start(ctx)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	printListeningAddresses(logger, cfg.ListenAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "err", err)
	}
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := app.New(app.Options{Config: cfg, Logger: logger})
	if err != nil {
		return err
	}
	if err := a.Start(cmd.Context()); err != nil {
		return err
	}

	page, ok := a.Pages.Page(renderPage)
	if !ok {
		return fmt.Errorf("page %d not found (document has %d pages)", renderPage, len(a.Pages.Pages()))
	}

	// The page is laid out as the browser does: full viewport width, height
	// following the page aspect ratio.
	canvas := model.Rect{
		Width:  cfg.ViewportWidth,
		Height: cfg.ViewportWidth * float64(page.PixelHeight) / float64(page.PixelWidth),
	}
	frame, err := parseRect(renderFrameRect)
	if err != nil {
		return err
	}
	if frame.Empty() {
		frame = defaultFrameRect(canvas)
	}

	if renderName != "" {
		a.State.SetName(renderName)
	}
	name := a.State.Name()

	res, err := a.Compositor.Compose(cmd.Context(), compose.Request{
		Page:             page,
		CanvasRect:       canvas,
		FrameRect:        frame,
		Frame:            a.Frame,
		Name:             name,
		ExportFrameScale: cfg.ExportFrameScale,
	})
	if err != nil {
		return err
	}

	if renderOut != "" {
		if err := os.WriteFile(renderOut, res.PNG, 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%dx%d)\n", renderOut, res.Width, res.Height)
		return nil
	}

	now := time.Now()
	current, _ := a.Themes.Current()
	store := storage.New(cfg.DataDir)
	if err := store.EnsureDirs(); err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}
	path, err := store.SaveExport(&model.ExportRecord{
		Filename:   nameplateFilename(name, now),
		Name:       name,
		PageNumber: page.PageNumber,
		Width:      res.Width,
		Height:     res.Height,
		Mode:       app.ModeCompose,
		Theme:      current.ID,
		Timestamp:  now,
	}, res.PNG)
	if err != nil {
		return fmt.Errorf("save export: %w", err)
	}

	fmt.Printf("Saved %s (%dx%d)\n", path, res.Width, res.Height)
	return nil
}

func runExports(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now
	if exportsFrom != "" {
		if from, err = time.Parse(time.RFC3339, exportsFrom); err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
	}
	if exportsTo != "" {
		if to, err = time.Parse(time.RFC3339, exportsTo); err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
	}

	records, err := storage.New(cfg.DataDir).ListExports(from, to)
	if err != nil {
		return err
	}
	for _, r := range records {
		fmt.Printf("%s  %-40s page %d  %dx%d  %s\n",
			r.Timestamp.Local().Format(time.DateTime), r.Filename, r.PageNumber, r.Width, r.Height, r.Mode)
	}
	return nil
}

func runConfigGenerate(cmd *cobra.Command, args []string) error {
	dataDirAbs, err := filepath.Abs(dataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := config.Default()
	cfg.DataDir = dataDirAbs

	cfgPath := config.Path(dataDirAbs)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("config file already exists: %s", cfgPath)
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Generated default config file: %s\n", cfgPath)
	return nil
}

func printListeningAddresses(logger *log.Logger, addr string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		logger.Info("listening", "url", "http://"+addr)
		return
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		addrs, err := net.InterfaceAddrs()
		if err != nil {
			logger.Info("listening", "url", "http://0.0.0.0:"+port)
			return
		}
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
				logger.Info("listening", "url", fmt.Sprintf("http://%s:%s", ipnet.IP, port))
			}
		}
		logger.Info("listening", "url", "http://localhost:"+port)
		return
	}
	logger.Info("listening", "url", fmt.Sprintf("http://%s:%s", host, port))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
