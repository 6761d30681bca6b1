package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/garnizeh/citizenhub/internal/catalog"
	"github.com/garnizeh/citizenhub/internal/eligibility"
	"github.com/garnizeh/citizenhub/pkg/completion"
)

func newEligibilityCmd(opts *options) *cobra.Command {
	var (
		p      eligibility.Profile
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "eligibility",
		Short: "Run an eligibility check for a profile",
		Example: `  citizenctl eligibility --age 21 --income below-1 --gender female --state Kerala
  citizenctl eligibility --age 45 --income 2-5 --gender male --state Punjab --category OBC --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := p.Validate(); err != nil {
				return err
			}
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			logger := opts.logger(cmd)
			completion.SetLogger(logger)

			ctx := cmd.Context()
			completer, err := completion.New(ctx, cfg, nil)
			if err != nil {
				return err
			}
			defer completer.Close()

			store := catalog.NewStore(catalog.DefaultSchemes())
			if cfg.CatalogPath != "" {
				if _, err := catalog.NewWatcher(store, cfg.CatalogPath).Load(); err != nil {
					return err
				}
			}

			res := eligibility.NewChecker(completer, store, cfg.Completion.Timeout, logger).Check(ctx, p)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			fmt.Fprintf(out, "source: %s (catalog v%d)\n", res.Source, res.CatalogVersion)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tAMOUNT")
			for _, s := range res.Schemes {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Title, s.Category, s.Amount)
			}
			return tw.Flush()
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.Age, "age", "", "Age in years (required)")
	f.StringVar(&p.Income, "income", "", "Income bracket: below-1, 1-2, 2-5, 5-8, 8-10, above-10 (required)")
	f.StringVar(&p.Gender, "gender", "", "male, female or other (required)")
	f.StringVar(&p.State, "state", "", "State of residence (required)")
	f.StringVar(&p.Education, "education", "", "Education level")
	f.StringVar(&p.Employment, "employment", "", "Employment status")
	f.StringVar(&p.Category, "category", "", "General, OBC, SC, ST or EWS")
	f.StringVar(&p.Language, "language", "", "Response language key")
	f.BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}
