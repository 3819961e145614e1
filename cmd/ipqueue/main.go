// Command ipqueue is a small diagnostic tool for driving a named
// interprocess queue by hand: publish a message, subscribe and print
// whatever arrives, or inspect a queue's head/tail/occupancy.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ipqueue",
	Short: "Inspect and drive an interprocess shared-memory queue",
}

func init() {
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(subscribeCmd)
	rootCmd.AddCommand(inspectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
