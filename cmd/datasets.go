//go:build unix

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vitessce/vitcat/internal/apiclient"
	"github.com/vitessce/vitcat/internal/catalog"
	"github.com/vitessce/vitcat/internal/config"
)

var datasetsCmd = &cobra.Command{
	Use:     "datasets",
	Aliases: []string{"ds"},
	Short:   "Query the dataset catalog served by the daemon",
}

var listJSON bool

var datasetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List public datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		datasets, err := apiclient.New(cfg.SocketPath).ListDatasets(cmd.Context())
		if err != nil {
			return err
		}
		if listJSON {
			return printJSON(map[string]any{"datasets": datasets})
		}
		if len(datasets) == 0 {
			fmt.Println("No public datasets")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
		for _, d := range datasets {
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.Name, d.Description)
		}
		return w.Flush()
	},
}

var showJSON bool

var datasetsShowCmd = &cobra.Command{
	Use:   "show <dataset-id>",
	Short: "Show a dataset's view configuration",
	Long: `Display the layers and layout of a dataset. Datasets that are not public
can still be shown by id.

Examples:
  vitcat datasets show linnarsson-2018
  vitcat datasets show higlass-component-demo --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := strings.TrimSpace(args[0])
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		ds, err := apiclient.New(cfg.SocketPath).GetDataset(cmd.Context(), id)
		if err != nil {
			if apiclient.IsNotFound(err) {
				return fmt.Errorf("dataset %q not found", id)
			}
			return err
		}
		if showJSON {
			return printJSON(ds)
		}
		printDataset(id, ds)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
	datasetsCmd.AddCommand(datasetsListCmd)
	datasetsCmd.AddCommand(datasetsShowCmd)
	datasetsListCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON")
	datasetsShowCmd.Flags().BoolVar(&showJSON, "json", false, "print JSON")
}

func printDataset(id string, ds *catalog.DatasetConfig) {
	fmt.Printf("# %s: %s\n\n", id, ds.Name)
	fmt.Printf("%s\n", ds.Description)
	fmt.Printf("\nPublic: %t\n", ds.Public)

	if len(ds.Layers) > 0 {
		fmt.Printf("\n## Layers (%d)\n\n", len(ds.Layers))
		for _, l := range ds.Layers {
			fmt.Printf("- %s (%s) %s\n", l.Name, l.Type, l.URL)
		}
	}

	if rl := ds.ResponsiveLayout; rl != nil {
		fmt.Printf("\n## Responsive layout\n\n")
		for _, width := range rl.Breakpoints() {
			fmt.Printf("- >=%dpx: columns %v\n", width, rl.Columns[width])
		}
	} else {
		fmt.Printf("\n## Static layout\n")
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMPONENT\tX\tY\tW\tH")
	for _, pc := range ds.Components() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", pc.Component, coord(pc.X), coord(pc.Y), pc.Width(), pc.Height())
	}
	_ = w.Flush()
}

func coord(v *int) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprint(*v)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
