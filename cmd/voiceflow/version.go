package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	voiceflow "github.com/Aryanpatel2001/VoiceFlow-sub001"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of voiceflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("voiceflow version %s\n", strings.TrimSpace(voiceflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
