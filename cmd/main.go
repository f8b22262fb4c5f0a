package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/karasuda/yomu/internal/app"
	"github.com/karasuda/yomu/internal/common"
	"github.com/karasuda/yomu/internal/config"
	"github.com/karasuda/yomu/internal/input"
	"github.com/karasuda/yomu/internal/source"
	"github.com/karasuda/yomu/internal/store"
	"github.com/karasuda/yomu/internal/ui"
	"github.com/karasuda/yomu/internal/ui/views"
	"github.com/karasuda/yomu/internal/watcher"
)

// Build-time variables injected via ldflags by GoReleaser / Taskfile.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	// ── Multi-instance resource tuning ──────────────────────────────
	//
	// Readers keep several chapters open across terminals, and each Go
	// runtime defaults to GOMAXPROCS = NumCPU. The app spends most of its
	// time waiting on I/O (page fetches, fsnotify, terminal input); a couple
	// of OS threads cover the render loop and the decode workers.
	//
	// If the user explicitly sets GOMAXPROCS, we respect that.
	if os.Getenv("GOMAXPROCS") == "" {
		maxProcs := 2
		if n := runtime.NumCPU(); n < maxProcs {
			maxProcs = n
		}
		runtime.GOMAXPROCS(maxProcs)
	}

	// The byte cache dominates the heap; give the GC headroom above the
	// cache budget so a full cache does not thrash collection cycles.
	debug.SetMemoryLimit(256 * 1024 * 1024) // 256 MiB
}

func main() {
	rootCmd := buildRootCmd()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "yomu",
		Short: "A terminal reader for image-sequence chapters",
		Long: `yomu is a keyboard-first, terminal-based reader for vertically
scrolled image sequences (manga and webtoon chapters).

Point it at a local chapter directory or at a page-list file/URL and it
renders the pages as a continuous strip: loads are prioritized around the
viewport, very tall pages are sliced into lazily loaded chunks, and the
reading position is restored on the next session.`,
		RunE:          runApp,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"yomu %s\n  commit:  %s\n  built:   %s\n  go:      %s\n  os/arch: %s/%s\n",
		version, commit, date, runtime.Version(), runtime.GOOS, runtime.GOARCH,
	))

	rootCmd.AddCommand(buildVersionCmd())
	rootCmd.AddCommand(buildCompletionCmd())

	rootCmd.Flags().StringP("dir", "d", "", "Local chapter directory to read")
	rootCmd.Flags().StringP("list", "l", "", "Page-list file or URL (one page per line)")
	rootCmd.Flags().String("id", "", "Sequence id for progress tracking (default: derived from the source)")

	return rootCmd
}

// buildVersionCmd creates the `yomu version` subcommand supporting --json.
func buildVersionCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(_ *cobra.Command, _ []string) error {
			info := map[string]string{
				"version": version,
				"commit":  commit,
				"date":    date,
				"go":      runtime.Version(),
				"os":      runtime.GOOS,
				"arch":    runtime.GOARCH,
			}
			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Printf("yomu %s\n", version)
			fmt.Printf("  commit:  %s\n", commit)
			fmt.Printf("  built:   %s\n", date)
			fmt.Printf("  go:      %s\n", runtime.Version())
			fmt.Printf("  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	return cmd
}

// buildCompletionCmd creates the `yomu completion` subcommand for shell completions.
func buildCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for yomu.

Examples:
  # Bash (add to ~/.bashrc)
  yomu completion bash > /etc/bash_completion.d/yomu

  # Zsh (add to ~/.zshrc before compinit)
  yomu completion zsh > "${fpath[1]}/_yomu"

  # Fish
  yomu completion fish > ~/.config/fish/completions/yomu.fish

  # PowerShell
  yomu completion powershell > yomu.ps1`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}

	return cmd
}

func runApp(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	list, _ := cmd.Flags().GetString("list")
	seqID, _ := cmd.Flags().GetString("id")

	if dir == "" && list == "" {
		return fmt.Errorf("a chapter source is required: pass --dir or --list")
	}
	if dir != "" && list != "" {
		return fmt.Errorf("--dir and --list are mutually exclusive")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var provider source.Provider
	switch {
	case dir != "":
		abs, absErr := filepath.Abs(dir)
		if absErr != nil {
			return fmt.Errorf("resolving chapter dir: %w", absErr)
		}
		dir = abs
		provider = &source.DirProvider{Dir: dir}
		if seqID == "" {
			seqID = filepath.Base(dir)
		}
	default:
		provider = &source.ListProvider{Location: list}
		if seqID == "" {
			seqID = strings.TrimSuffix(filepath.Base(list), filepath.Ext(list))
		}
	}

	decoder := source.NewCachingDecoder(cfg.CacheBudgetMB<<20, cfg.DecodeWorkers)
	progress := store.NewFileStore(store.DefaultPath())

	var theme ui.Theme
	switch cfg.Theme {
	case "light":
		theme = ui.LightTheme()
	default:
		theme = ui.DarkTheme()
	}
	styles := ui.NewStyles(theme)

	reader := views.NewReaderView(cfg, styles, provider, decoder, progress, seqID)

	var bridge *input.Bridge
	if cfg.VolumeScrollEnabled && cfg.VolumeLevelPath != "" {
		src := &input.FileLevelSource{Path: cfg.VolumeLevelPath}
		if b, bridgeErr := input.NewBridge(src, cfg.VolumeScrollSensitivity); bridgeErr == nil {
			bridge = b
		} else {
			fmt.Fprintf(os.Stderr, "volume scroll disabled: %v\n", bridgeErr)
		}
	}

	if os.Getenv("YOMU_DEBUG") != "" {
		f, logErr := tea.LogToFile("yomu-debug.log", "yomu")
		if logErr != nil {
			return fmt.Errorf("opening debug log: %w", logErr)
		}
		defer f.Close()
	}

	model := app.New(cfg, styles, reader, bridge)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Watch local chapter dirs so pages dropped in by a downloader appear
	// without a manual reload.
	if dir != "" {
		if watchCh, stop, watchErr := watcher.Watch(dir, 500*time.Millisecond); watchErr == nil {
			defer stop()
			go func() {
				for range watchCh {
					p.Send(common.RefreshMsg{})
				}
			}()
		}
	}

	_, err = p.Run()
	return err
}
