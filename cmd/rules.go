package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/calegray/novelbind/internal/rules"

	"github.com/spf13/cobra"
)

var rulesFileFlag string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the sites with dedicated selector rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
		_, _ = fmt.Fprintln(w, "HOSTNAME\tCHAPTER SELECTORS\tCONTENT SELECTORS")
		for _, host := range reg.Hostnames() {
			rs := reg.RulesFor(host)
			_, _ = fmt.Fprintf(w, "%s\t%d\t%d\n", host, len(rs.ChapterSelectors), len(rs.ContentSelectors))
		}
		if err := w.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to flush table output: %v\n", err)
		}

		fmt.Println("\nEvery other hostname uses the generic fallback chains.")
		return nil
	},
}

var rulesShowCmd = &cobra.Command{
	Use:   "show <hostname>",
	Short: "Show the effective rule set for a hostname",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		host := rules.NormalizeHost(args[0])
		rs := reg.RulesFor(host)

		if reg.Known(host) {
			fmt.Printf("Rules for %s:\n", host)
		} else {
			fmt.Printf("No dedicated rules for %s; generic fallback chains:\n", host)
		}

		printChain := func(name string, chain []string) {
			if len(chain) == 0 {
				return
			}
			fmt.Printf("  %s:\n", name)
			for _, sel := range chain {
				fmt.Printf("    - %s\n", sel)
			}
		}
		printChain("title", rs.TitleSelectors)
		printChain("author", rs.AuthorSelectors)
		printChain("chapters", rs.ChapterSelectors)
		printChain("content", rs.ContentSelectors)
		if rs.CoverSelector != "" {
			fmt.Printf("  cover: %s\n", rs.CoverSelector)
		}

		return nil
	},
}

func loadRegistry() (*rules.Registry, error) {
	reg := rules.NewRegistry()
	if rulesFileFlag != "" {
		if err := reg.LoadOverlay(rulesFileFlag); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func init() {
	rulesCmd.PersistentFlags().StringVar(&rulesFileFlag, "rules-file", "", "YAML file with extra per-site selector rules")
	rulesCmd.AddCommand(rulesShowCmd)
	rootCmd.AddCommand(rulesCmd)
}
