package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the edgelab CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("edgelab version %s\n", version)
		fmt.Println("A strategy backtesting and validation toolkit")
		fmt.Println("https://github.com/rustyeddy/edgelab")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
