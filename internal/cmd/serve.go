package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/mrmd/mrmd/internal/config"
	"github.com/mrmd/mrmd/internal/project"
	"github.com/mrmd/mrmd/internal/supervisor"
	"github.com/mrmd/mrmd/internal/web"
)

// Process names used in the supervisor registry.
const (
	syncProcess    = "mrmd-sync"
	runtimeProcess = "mrmd-python"
)

// settleDelay gives the sync service a moment to bind its port before
// the runtime starts and the URL is opened.
const settleDelay = 500 * time.Millisecond

// stopTimeout is the per-process graceful shutdown window.
const stopTimeout = 5 * time.Second

var (
	serveDocs        string
	servePort        int
	serveSyncPort    int
	serveRuntimePort int
	serveNoBrowser   bool
	serveNoRuntime   bool
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&serveDocs, "docs", "d", "", "documents directory (default: auto-detect docs/, notebooks/, or notes/)")
	flags.IntVarP(&servePort, "port", "p", config.DefaultServerPort, "HTTP server port")
	flags.IntVar(&serveSyncPort, "sync-port", config.DefaultSyncPort, "WebSocket sync port")
	flags.IntVar(&serveRuntimePort, "runtime-port", config.DefaultRuntimePort, "Python runtime port")
	flags.BoolVar(&serveNoBrowser, "no-browser", false, "don't open browser automatically")
	flags.BoolVar(&serveNoRuntime, "no-runtime", false, "don't start the Python runtime")
}

func runServe(cmd *cobra.Command, args []string) error {
	root, err := project.FindFromCwd()
	if err != nil {
		return fmt.Errorf("detecting project: %w", err)
	}

	cfg, err := config.LoadOrDefault(root)
	if err != nil {
		return err
	}

	// CLI flags override config, config overrides defaults.
	port := cfg.Server.Port
	syncPort := cfg.Sync.Port
	runtimePort := cfg.Runtime.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}
	if cmd.Flags().Changed("sync-port") {
		syncPort = serveSyncPort
	}
	if cmd.Flags().Changed("runtime-port") {
		runtimePort = serveRuntimePort
	}

	docsDir := serveDocs
	if docsDir == "" {
		docsDir = cfg.Docs.Dir
	}
	if docsDir == "" {
		docsDir = project.FindDocsDir(root)
	} else if !filepath.IsAbs(docsDir) {
		docsDir = filepath.Join(root, docsDir)
	}
	if err := os.MkdirAll(docsDir, 0755); err != nil {
		return fmt.Errorf("creating docs directory: %w", err)
	}

	// One mrmd per project: the sync and runtime ports are per-project
	// resources, so a second instance would only fight over them.
	fileLock := flock.New(filepath.Join(root, ".mrmd.lock"))
	locked, err := fileLock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring project lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("mrmd is already running for this project")
	}
	defer func() { _ = fileLock.Unlock() }()

	syncURL := fmt.Sprintf("ws://localhost:%d", syncPort)
	runtimeURL := fmt.Sprintf("http://localhost:%d/mrp/v1", runtimePort)
	editorURL := fmt.Sprintf("http://localhost:%d", port)

	startRuntime := cfg.RuntimeEnabled() && !serveNoRuntime
	printBanner(bannerInfo{
		ProjectRoot: root,
		DocsDir:     docsDir,
		EditorURL:   editorURL,
		SyncURL:     syncURL,
		RuntimeURL:  runtimeURL,
		WithRuntime: startRuntime,
	})

	logger := log.New(os.Stderr, "", log.LstdFlags)
	sup := supervisor.New(logger)

	// A failed launch is logged by the supervisor and tolerated here:
	// the editor still works without sync or runtime, and their
	// absence shows up in /api/processes.
	syncOpts := supervisor.StartOptions{}
	if pkg := project.FindPackage(root, "mrmd-sync"); pkg != "" {
		// Development checkout next to the project (or under
		// MRMD_PACKAGES_DIR): let npx resolve the local package.
		syncOpts.Dir = pkg
	}
	sup.StartNPX(syncProcess, "mrmd-sync",
		[]string{"--port", strconv.Itoa(syncPort), docsDir},
		syncOpts)

	time.Sleep(settleDelay)

	if startRuntime {
		sup.StartPython(runtimeProcess, "mrmd_python.cli",
			[]string{"--port", strconv.Itoa(runtimePort)},
			supervisor.StartOptions{Dir: root, Venv: project.VenvDir(root)})
	}

	srv, err := web.NewServer(web.Options{
		ProjectRoot: root,
		DocsDir:     docsDir,
		SyncURL:     syncURL,
		SyncPort:    syncPort,
		RuntimeURL:  runtimeURL,
		Supervisor:  sup,
		Logger:      logger,
	})
	if err != nil {
		sup.StopAll(stopTimeout)
		return err
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !serveNoBrowser {
		go openBrowser(editorURL)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	var result error
	select {
	case <-ctx.Done():
		logger.Println("Shutdown requested...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		_ = httpServer.Shutdown(shutdownCtx)
		cancel()
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			result = fmt.Errorf("http server: %w", err)
		}
	}

	logger.Println("Stopping services...")
	sup.StopAll(stopTimeout)
	logger.Println("Goodbye!")
	return result
}

// openBrowser opens url in the system default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}
