package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/adapters/memory"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check flow documents for consistency",
	Long:  `Parses every flow document in the flows directory and reports structural problems: missing start nodes, dangling edges, duplicate handles, and malformed node configs.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("flows")
		if len(args) > 0 {
			dir = args[0]
		}

		loader, err := memory.NewFromDir(dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			os.Exit(1)
		}

		ids, err := loader.ListFlows(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			os.Exit(1)
		}
		if len(ids) == 0 {
			fmt.Fprintf(os.Stderr, "No flow documents found in %s\n", dir)
			os.Exit(1)
		}
		for _, id := range ids {
			fmt.Printf("  ok  %s\n", id)
		}
		fmt.Printf("%d flow(s) valid\n", len(ids))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
