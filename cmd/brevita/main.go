package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brevita-ai/brevita/internal/analyze"
	"github.com/brevita-ai/brevita/internal/briefing"
	"github.com/brevita-ai/brevita/internal/collect"
	"github.com/brevita-ai/brevita/internal/config"
	"github.com/brevita-ai/brevita/internal/database"
	"github.com/brevita-ai/brevita/internal/export"
	"github.com/brevita-ai/brevita/internal/fetch"
	"github.com/brevita-ai/brevita/internal/history"
	"github.com/brevita-ai/brevita/internal/llm"
	"github.com/brevita-ai/brevita/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "brevita",
	Short:   "AI intelligence briefings from articles and URLs",
	Long:    "Brevita turns articles into structured intelligence briefings using Gemini, with local and hosted history.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("brevita", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/brevita/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds, the API key variable, and defaults.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show storage and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Local().Close()

		stats, err := store.Local().GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Data directory: %s\n\n", cfg.GetDataDir())
		fmt.Println("Local history:")
		fmt.Printf("  Briefings: %d\n", stats.Total)
		fmt.Printf("  Pinned: %d\n", stats.Pinned)
		if len(stats.ByTriage) > 0 {
			fmt.Println("  By triage:")
			for _, status := range []string{briefing.TriageNew, briefing.TriageReview, briefing.TriageClosed} {
				if n, ok := stats.ByTriage[status]; ok {
					fmt.Printf("    %s: %d\n", status, n)
				}
			}
		}

		fmt.Println("\nRemote history:")
		if cfg.Remote.URL == "" || cfg.RemoteAnonKey() == "" {
			fmt.Println("  Not configured")
		} else if auth := sessionAuth(); auth.Authenticated() {
			fmt.Println("  Configured, session present")
		} else {
			fmt.Println("  Configured, no session")
		}

		fmt.Println("\nLLM transport:")
		if cfg.Proxy.URL != "" {
			fmt.Printf("  Relay: %s\n", cfg.Proxy.URL)
		} else if cfg.APIKey() != "" {
			fmt.Printf("  Direct Gemini (%s)\n", cfg.LLM.Model)
		} else {
			fmt.Printf("  Not configured (set %s)\n", cfg.LLM.APIKeyEnv)
		}
		return nil
	},
}

// --- analyze command ---

var (
	analyzeURL    string
	analyzeFile   string
	analyzeTitle  string
	analyzeSource string
	analyzeDate   string
	analyzeMode   string
	analyzeLang   string
	analyzeLength int
	analyzeFetch  bool
	analyzeNoSave bool
	analyzeAsJSON bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze an article or URL into a briefing",
	Long: `Analyze generates a structured briefing from article text or a URL.

With --file (or text on stdin via --file -), the text is analyzed directly.
With only --url, the model researches the article via web search.
With --url and --fetch, the article text is extracted locally first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := buildRequest()
		if err != nil {
			return err
		}

		transport, err := llm.NewTransport(cfg.Proxy.URL, cfg.ProxyToken(), cfg.APIKey(), cfg.LLM.Model)
		if err != nil {
			return err
		}

		ctx := context.Background()
		fmt.Fprintln(os.Stderr, "Analyzing...")
		result, err := analyze.New(transport).Analyze(ctx, req)
		if err != nil {
			return err
		}

		if !analyzeNoSave {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Local().Close()

			item, err := store.Save(ctx, sessionAuth(), result)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Saved briefing %s\n", item.ID)
		}

		if analyzeAsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		fmt.Println(export.Markdown(result))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeURL, "url", "", "Article URL")
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "Article text file ('-' for stdin)")
	analyzeCmd.Flags().StringVar(&analyzeTitle, "title", "", "Article title")
	analyzeCmd.Flags().StringVar(&analyzeSource, "source", "", "Article source name")
	analyzeCmd.Flags().StringVar(&analyzeDate, "date", "", "Publication date (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&analyzeMode, "mode", "", "Analysis mode: STANDARD or MILITARY")
	analyzeCmd.Flags().StringVar(&analyzeLang, "lang", "", "Output language: EN or TR")
	analyzeCmd.Flags().IntVar(&analyzeLength, "length", 0, "Summary length in seconds (15, 30, 60)")
	analyzeCmd.Flags().BoolVar(&analyzeFetch, "fetch", false, "Extract article text from the URL locally instead of web search")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "Print the briefing without saving it")
	analyzeCmd.Flags().BoolVar(&analyzeAsJSON, "json", false, "Print the briefing as JSON")
}

func buildRequest() (*briefing.Request, error) {
	req := &briefing.Request{
		URL:            analyzeURL,
		Title:          analyzeTitle,
		Source:         analyzeSource,
		Date:           analyzeDate,
		Mode:           analyzeMode,
		OutputLanguage: analyzeLang,
		SummaryLength:  analyzeLength,
	}
	applyDefaults(req)

	if analyzeFile != "" {
		var data []byte
		var err error
		if analyzeFile == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(analyzeFile)
		}
		if err != nil {
			return nil, fmt.Errorf("reading article: %w", err)
		}
		req.Article = strings.TrimSpace(string(data))
	}

	if req.Article == "" && req.URL == "" {
		return nil, fmt.Errorf("nothing to analyze; pass --url or --file")
	}

	if analyzeFetch && req.Article == "" {
		fmt.Fprintf(os.Stderr, "Fetching %s...\n", req.URL)
		extraction, err := fetch.NewExtractor(0).ExtractFromURL(context.Background(), req.URL)
		if err != nil {
			return nil, err
		}
		req.Article = extraction.Article
		if req.Title == "" {
			req.Title = extraction.Title
		}
		if req.Source == "" {
			req.Source = extraction.Source
		}
	}

	return req, nil
}

func applyDefaults(req *briefing.Request) {
	if req.Mode == "" {
		req.Mode = cfg.Defaults.Mode
	}
	if req.OutputLanguage == "" {
		req.OutputLanguage = cfg.Defaults.OutputLanguage
	}
	if req.SummaryLength == 0 {
		req.SummaryLength = cfg.Defaults.SummaryLengthSeconds
	}
}

// --- history command ---

var (
	historyCategory string
	historyTriage   string
	historyYes      bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and manage stored briefings",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored briefings",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Local().Close()

		items, err := store.GetAll(context.Background(), sessionAuth())
		if err != nil {
			return err
		}

		shown := 0
		for _, it := range items {
			if historyCategory != "" && it.Data.Meta.Category != historyCategory {
				continue
			}
			if historyTriage != "" && it.TriageStatus != historyTriage {
				continue
			}
			shown++

			pin := " "
			if it.Pinned {
				pin = "*"
			}
			line := fmt.Sprintf("  %s %s  %-10s %s", pin, it.ID, it.Data.Meta.Category, it.Data.Meta.Title)
			if it.TriageStatus != "" {
				line += "  [" + it.TriageStatus + "]"
			}
			fmt.Println(line)
		}

		if shown == 0 {
			fmt.Println("No briefings found. Run 'brevita analyze' to create one.")
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a stored briefing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Local().Close()

		item, err := store.Get(context.Background(), sessionAuth(), args[0])
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("briefing %s not found", args[0])
		}

		fmt.Println(export.Markdown(&item.Data))
		return nil
	},
}

var historyPinCmd = &cobra.Command{
	Use:   "pin [id]",
	Short: "Pin a briefing",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setPin(args[0], true) },
}

var historyUnpinCmd = &cobra.Command{
	Use:   "unpin [id]",
	Short: "Unpin a briefing",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setPin(args[0], false) },
}

func setPin(id string, pinned bool) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Local().Close()

	if err := store.UpdatePin(context.Background(), sessionAuth(), id, pinned); err != nil {
		return err
	}
	if pinned {
		fmt.Printf("Pinned %s\n", id)
	} else {
		fmt.Printf("Unpinned %s\n", id)
	}
	return nil
}

var historyTriageCmd = &cobra.Command{
	Use:   "triage [id] [new|review|closed]",
	Short: "Set a briefing's triage status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Local().Close()

		if err := store.UpdateTriageStatus(context.Background(), sessionAuth(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Briefing %s triaged as %s\n", args[0], args[1])
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a briefing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Local().Close()

		if err := store.Delete(context.Background(), sessionAuth(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all briefings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !historyYes {
			fmt.Print("Delete ALL stored briefings? [y/N]: ")
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			answer = strings.TrimSpace(strings.ToLower(answer))
			if answer != "y" && answer != "yes" {
				return fmt.Errorf("aborted")
			}
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Local().Close()

		if err := store.Clear(context.Background(), sessionAuth()); err != nil {
			return err
		}
		fmt.Println("History cleared.")
		return nil
	},
}

func init() {
	historyListCmd.Flags().StringVar(&historyCategory, "category", "", "Filter by category")
	historyListCmd.Flags().StringVar(&historyTriage, "triage", "", "Filter by triage status")
	historyClearCmd.Flags().BoolVarP(&historyYes, "yes", "y", false, "Skip confirmation")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPinCmd)
	historyCmd.AddCommand(historyUnpinCmd)
	historyCmd.AddCommand(historyTriageCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
}

// --- collect command ---

var (
	collectDaysBack int
	collectLimit    int
	collectAnalyze  bool
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Discover analysis candidates from configured feeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		feeds := make([]collect.FeedConfig, 0, len(cfg.Sources.Feeds))
		for _, f := range cfg.Sources.Feeds {
			feeds = append(feeds, collect.FeedConfig{URL: f.URL, Name: f.Name})
		}
		if len(feeds) == 0 {
			return fmt.Errorf("no feeds configured; add some under sources.feeds")
		}

		candidates := collect.NewFeedParser(feeds).ParseAll(collectDaysBack)
		if len(candidates) == 0 {
			fmt.Println("No recent entries found.")
			return nil
		}
		if collectLimit > 0 && len(candidates) > collectLimit {
			candidates = candidates[:collectLimit]
		}

		if !collectAnalyze {
			fmt.Printf("Found %d candidates:\n\n", len(candidates))
			for _, c := range candidates {
				fmt.Printf("  %-12s %s\n", c.Source, c.Title)
				fmt.Printf("               %s\n", c.URL)
			}
			fmt.Println("\nRe-run with --analyze to generate briefings.")
			return nil
		}

		transport, err := llm.NewTransport(cfg.Proxy.URL, cfg.ProxyToken(), cfg.APIKey(), cfg.LLM.Model)
		if err != nil {
			return err
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Local().Close()

		analyzer := analyze.New(transport)
		auth := sessionAuth()
		ctx := context.Background()

		analyzed := 0
		for _, c := range candidates {
			req := c.ToRequest()
			applyDefaults(&req)

			fmt.Printf("Analyzing: %s\n", c.Title)
			result, err := analyzer.Analyze(ctx, &req)
			if err != nil {
				log.Printf("Analysis failed for %s: %v", c.URL, err)
				continue
			}

			item, err := store.Save(ctx, auth, result)
			if err != nil {
				log.Printf("Saving briefing for %s: %v", c.URL, err)
				continue
			}
			fmt.Printf("  Saved %s\n", item.ID)
			analyzed++
		}

		fmt.Printf("\nAnalyzed %d of %d candidates.\n", analyzed, len(candidates))
		return nil
	},
}

func init() {
	collectCmd.Flags().IntVar(&collectDaysBack, "days-back", 1, "Lookback window (days)")
	collectCmd.Flags().IntVar(&collectLimit, "limit", 0, "Max candidates to process")
	collectCmd.Flags().BoolVar(&collectAnalyze, "analyze", false, "Analyze and save each candidate")
}

// --- export command ---

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Export a briefing as Markdown or HTML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Local().Close()

		item, err := store.Get(context.Background(), sessionAuth(), args[0])
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("briefing %s not found", args[0])
		}

		var doc string
		switch exportFormat {
		case "md", "markdown":
			doc = export.Markdown(&item.Data)
		case "html":
			doc, err = export.HTML(&item.Data)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown format %q; use md or html", exportFormat)
		}

		if exportOut == "" {
			fmt.Print(doc)
			return nil
		}
		if err := os.WriteFile(exportOut, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
		fmt.Printf("Exported %s to %s\n", args[0], exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "Output format: md or html")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web view",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Local().Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(store, sessionAuth(), port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on")
}

// --- helpers ---

func sessionAuth() history.AuthState {
	userID, token := cfg.Session()
	return history.AuthState{UserID: userID, AccessToken: token}
}

func openStore() (*history.Store, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := database.Open(filepath.Join(dataDir, "brevita.db"))
	if err != nil {
		return nil, err
	}

	var remote *history.RemoteStore
	if rc := (history.RemoteConfig{URL: cfg.Remote.URL, AnonKey: cfg.RemoteAnonKey()}); rc.Configured() {
		remote = history.NewRemoteStore(rc)
	}

	store := history.NewStore(db, remote)
	if migrated, err := store.Init(dataDir); err != nil {
		log.Printf("Legacy history migration failed: %v", err)
	} else if migrated {
		fmt.Fprintln(os.Stderr, "Migrated legacy history into the local database.")
	}
	return store, nil
}
