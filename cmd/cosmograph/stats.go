package main

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cosmograph/cosmograph/pkg/generators"
)

var statsDir string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize a previously generated graph",
	Long:  `Reads the CSV tables from an output directory and prints node and edge counts with a category breakdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := generators.ReadCSV(statsDir, "")
		if err != nil {
			return errors.Wrap(err, "failed to load graph, run generate first")
		}

		stats := g.Stats()
		fmt.Println(headerStyle.Render("Graph statistics"))
		fmt.Printf("Nodes: %d\n", stats.Nodes)
		fmt.Printf("Edges: %d\n", stats.Edges)

		categories := make([]string, 0, len(stats.Categories))
		for category := range stats.Categories {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		fmt.Println("Categories:")
		for _, category := range categories {
			fmt.Printf("  %-20s %d\n", category, stats.Categories[category])
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsDir, "dir", "d", "output", "Directory holding the generated CSV tables")
	rootCmd.AddCommand(statsCmd)
}
