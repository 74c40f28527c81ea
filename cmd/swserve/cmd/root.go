package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Quackster/LibreShockwave/internal/adapters/fsnotify"
	"github.com/Quackster/LibreShockwave/internal/adapters/web"
	"github.com/Quackster/LibreShockwave/internal/ports"
)

// defaultPort is used when no port argument is given.
const defaultPort = 8080

var watchMode bool

var rootCmd = &cobra.Command{
	Use:   "swserve [port]",
	Short: "Serve the WASM player build output with cross-origin isolation",
	Long: "Static file server for the directory it is started in. Every response\n" +
		"carries the COOP/COEP headers browsers require before they enable\n" +
		"SharedArrayBuffer in the player.",
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.Flags().BoolVarP(&watchMode, "watch", "w", false,
		"Reload connected browsers when files under the serving root change")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// servingRoot returns the directory to serve (always the cwd).
func servingRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// parsePort validates the optional positional port argument.
func parsePort(args []string) (int, error) {
	if len(args) == 0 {
		return defaultPort, nil
	}
	port, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", args[0], err)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range (1-65535)", port)
	}
	return port, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	port, err := parsePort(args)
	if err != nil {
		return err
	}
	root := servingRoot()

	srv := web.NewServer(root)

	if watchMode {
		srv.EnableReload()
		var watcher ports.Watcher
		watcher, err = fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		defer watcher.Stop()
		if err := watcher.Watch(root, func(string) { srv.NotifyReload() }); err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
		fmt.Printf("Watching %s for changes\n", root)
	}

	if err := srv.Start(port); err != nil {
		return err
	}
	fmt.Printf("Serving on http://localhost:%d\n", srv.Port())

	// Blocks for the life of the process; termination is an external signal.
	return srv.Wait()
}
