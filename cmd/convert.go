package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/calegray/novelbind/internal/config"
	"github.com/calegray/novelbind/internal/extract"
	"github.com/calegray/novelbind/internal/fetch"
	"github.com/calegray/novelbind/internal/novel"
	"github.com/calegray/novelbind/internal/pipeline"
	"github.com/calegray/novelbind/internal/rules"
	"github.com/calegray/novelbind/internal/ui"
	"github.com/calegray/novelbind/internal/util"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	// selection
	flagURL     string
	flagChapter string
	flagRange   string
	flagList    string
	flagPick    bool

	// output
	flagOutput   string
	flagFilename string
	flagDryRun   bool
	flagForce    bool

	// metadata overrides
	flagTitle    string
	flagAuthor   string
	flagLanguage string
	flagSubject  string
	flagDesc     string
	flagCoverURL string

	// extraction/retry
	flagRulesFile     string
	flagRetryAttempts int
	flagRetryBackoff  int

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
	flagCFBypass   bool
)

func init() {
	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a web novel into a single EPUB file. Uses the defaults from the config, overwritten by CLI flags",
		RunE:  runConvert,
	}

	// selection
	convertCmd.Flags().StringVar(&flagURL, "url", "", "novel start page URL (table of contents)")
	convertCmd.Flags().StringVar(&flagChapter, "chapter", "", "convert a single chapter by index (e.g. 5)")
	convertCmd.Flags().StringVar(&flagRange, "range", "", "convert a range of chapters by index (e.g. 5-12)")
	convertCmd.Flags().StringVar(&flagList, "list", "", "convert specific chapter indices (e.g. 1,3,5)")
	convertCmd.Flags().BoolVar(&flagPick, "pick", false, "prompt for the chapter selection after discovery")

	// output
	convertCmd.Flags().StringVar(&flagOutput, "output", "", "output folder for the EPUB file")
	convertCmd.Flags().StringVar(&flagFilename, "filename", "", "output filename (default: derived from the title)")
	convertCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show the discovered chapters, don't convert")
	convertCmd.Flags().BoolVar(&flagForce, "force", false, "overwrite the output file without asking")

	// metadata
	convertCmd.Flags().StringVar(&flagTitle, "title", "", "override the extracted book title")
	convertCmd.Flags().StringVar(&flagAuthor, "author", "", "override the extracted author")
	convertCmd.Flags().StringVar(&flagLanguage, "language", "", "book language code (default \"en\")")
	convertCmd.Flags().StringVar(&flagSubject, "subject", "", "book subject")
	convertCmd.Flags().StringVar(&flagDesc, "description", "", "override the extracted description")
	convertCmd.Flags().StringVar(&flagCoverURL, "cover-url", "", "cover image URL to embed")

	// extraction/retry
	convertCmd.Flags().StringVar(&flagRulesFile, "rules-file", "", "YAML file with extra per-site selector rules")
	convertCmd.Flags().IntVar(&flagRetryAttempts, "retry-attempts", 0, "per-chapter fetch+extract attempts (default 3)")
	convertCmd.Flags().IntVar(&flagRetryBackoff, "retry-backoff-ms", 0, "base retry delay in ms, multiplied per attempt (default 500)")

	// headers/auth
	convertCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	convertCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	convertCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	convertCmd.Flags().BoolVar(&flagCFBypass, "cf-bypass", false, "enable the cloudflare browser-check bypass transport")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, _ []string) error {
	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig:   flagIgnoreConfig,
		Debug:          flagDebug,
		Output:         flagOutput,
		Filename:       flagFilename,
		Language:       flagLanguage,
		Title:          flagTitle,
		Author:         flagAuthor,
		Subject:        flagSubject,
		Desc:           flagDesc,
		CoverURL:       flagCoverURL,
		DefaultURL:     flagURL,
		DefaultRange:   flagRange,
		DefaultList:    flagList,
		RetryAttempts:  flagRetryAttempts,
		RetryBackoffMS: flagRetryBackoff,
		RulesFile:      flagRulesFile,
		Cookie:         flagCookie,
		CookieFile:     flagCookieFile,
		UserAgent:      flagUserAgent,
		CFBypass:       flagCFBypass,
	})
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	if usedPath != "" {
		fmt.Printf("Config file: %s\n", usedPath)
	}

	fmt.Println("Full config:")
	cfg.Print()
	fmt.Println()

	if cfg.DefaultURL == "" {
		return fmt.Errorf("missing --url and no default_url in config")
	}

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:     time.Duration(cfg.TimeoutS) * time.Second,
		UserAgent:   util.PickUserAgent(cfg.UserAgent),
		Cookie:      cfg.Cookie,
		CookieFile:  cfg.CookieFile,
		CFBypass:    cfg.CFBypass,
		DebugLogger: logSvc,
	})
	if err != nil {
		return err
	}

	registry := rules.NewRegistry()
	if cfg.RulesFile != "" {
		if err := registry.LoadOverlay(cfg.RulesFile); err != nil {
			return err
		}
	}

	var prog *ui.ConvertProgress

	session := pipeline.New(pipeline.Options{
		Rules:   registry,
		Fetcher: fetch.NewHTTP(client, logSvc),
		Extractor: &extract.Extractor{
			MinDensity: cfg.MinDensity,
			MinTextLen: cfg.MinTextLen,
		},
		Attempts: cfg.RetryAttempts,
		Backoff:  time.Duration(cfg.RetryBackoffMS) * time.Millisecond,
		Log:      logSvc,
		Progress: func(pct int, msg string) {
			if prog != nil {
				prog.Report(pct, msg)
			}
		},
		Override: novel.Metadata{
			Title:       cfg.Title,
			Author:      cfg.Author,
			Language:    cfg.Language,
			Description: cfg.Desc,
			Subject:     cfg.Subject,
			Publisher:   cfg.Publisher,
			CoverURL:    cfg.CoverURL,
		},
	})

	ctx := context.Background()

	if err := session.Discover(ctx, cfg.DefaultURL); err != nil {
		return err
	}

	meta := session.Meta()
	fmt.Printf("Found %d chapters for %q.\n\n", len(session.Chapters()), meta.Title)

	finalRange := flagRange
	if finalRange == "" {
		finalRange = cfg.DefaultRange
	}
	finalList := flagList
	if finalList == "" {
		finalList = cfg.DefaultList
	}

	if flagPick {
		finalRange, finalList, err = pickSelection(session.Chapters())
		if err != nil {
			return err
		}
	}

	if err := session.ApplySelection(flagChapter, finalRange, finalList); err != nil {
		return err
	}

	if flagDryRun {
		fmt.Println("Dry-run: chapters that would be converted:")
		for _, ch := range session.Chapters() {
			mark := " "
			if ch.Include {
				mark = "*"
			}
			fmt.Printf("%s %3d) %s\n      %s\n", mark, ch.Index+1, ch.Title, ch.URL)
		}
		return nil
	}

	filename := cfg.Filename
	if filename == "" {
		filename = util.SanitizeFilename(meta.Title) + ".epub"
	} else if !strings.HasSuffix(filename, ".epub") {
		filename += ".epub"
	}

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}
	outPath := filepath.Join(cfg.Output, filename)

	if _, err := os.Stat(outPath); err == nil && !flagForce {
		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("Overwrite %s", outPath),
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			fmt.Println("Aborted.")
			return nil
		}
	}

	partPath := outPath + ".part"
	util.SetupInterruptHandler(partPath)

	prog = ui.NewConvertProgress(filename)
	start := time.Now()

	completed, failed, err := session.FetchAll(ctx)
	if err != nil {
		prog.Abort()
		return err
	}

	out, err := os.Create(partPath)
	if err != nil {
		prog.Abort()
		return err
	}

	if err := session.Assemble(ctx, out); err != nil {
		prog.Abort()
		_ = out.Close()
		_ = os.Remove(partPath)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(partPath)
		return err
	}
	if err := os.Rename(partPath, outPath); err != nil {
		return err
	}

	prog.Done()

	fmt.Println()
	fmt.Println("Conversion Summary:")
	fmt.Printf("Output:   %s\n", outPath)
	fmt.Printf("Chapters: %d converted, %d failed\n", completed, failed)
	fmt.Printf("Data:     %s\n", util.Human(session.Bytes()))
	fmt.Printf("Time:     %s\n", time.Since(start).Round(time.Second))
	fmt.Println("\nAll done.")

	return nil
}

// pickSelection asks for a range or list after the chapter count is known.
func pickSelection(chapters []*novel.Chapter) (rng, list string, err error) {
	fmt.Printf("Chapters 1-%d discovered.\n", len(chapters))

	prompt := promptui.Prompt{
		Label: "Chapters to include (e.g. 5-12 or 1,3,5; empty for all)",
	}
	val, err := prompt.Run()
	if err != nil {
		return "", "", fmt.Errorf("selection cancelled")
	}

	val = strings.TrimSpace(val)
	switch {
	case val == "":
		return "", "", nil
	case strings.Contains(val, "-"):
		return val, "", nil
	default:
		return "", val, nil
	}
}
