package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the city dashboard",
	Long: `Show the headline counters and per-city breakdowns of the city
dashboard. Counters that could not be computed are shown as n/a.`,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().Bool("json", false, "Print the summary as JSON")
	summaryCmd.Flags().IntP("cities", "c", 10, "Maximum cities per breakdown (0 = all)")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("getting json flag: %w", err)
	}
	maxCities, err := cmd.Flags().GetInt("cities")
	if err != nil {
		return fmt.Errorf("getting cities flag: %w", err)
	}

	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	dashboard := rt.Dashboard()
	if dashboard == nil {
		return errors.New("dashboard not configured")
	}
	summary, err := dashboard.Summary(cmd.Context())
	if err != nil {
		return fmt.Errorf("computing summary: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	return printSummary(cmd, summary, maxCities)
}

func printSummary(cmd *cobra.Command, s domain.Summary, maxCities int) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "City Dashboard")
	fmt.Fprintln(w, "==============")
	fmt.Fprintln(w)
	for _, k := range s.KPIs {
		value := "n/a"
		if k.Available {
			value = fmt.Sprintf("%d", k.Value)
		}
		fmt.Fprintf(w, "%s\t%s\n", k.Label, value)
	}

	for _, b := range s.Breakdowns {
		fmt.Fprintf(w, "\n[%s by city]\n", b.Label)
		switch {
		case !b.Available:
			fmt.Fprintln(w, "  unavailable")
			continue
		case len(b.Cities) == 0:
			fmt.Fprintln(w, "  no data")
			continue
		}
		shown := b.Cities
		if maxCities > 0 && len(shown) > maxCities {
			shown = shown[:maxCities]
		}
		for _, c := range shown {
			fmt.Fprintf(w, "  %s\t%d\n", c.City, c.Count)
		}
		if hidden := len(b.Cities) - len(shown); hidden > 0 {
			fmt.Fprintf(w, "  ... %d more\n", hidden)
		}
	}
	return w.Flush()
}
