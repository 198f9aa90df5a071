// ABOUTME: Browse command
// ABOUTME: Opens the interactive attachment browser for one message

package main

import (
	"github.com/spf13/cobra"

	"github.com/harper/vkattach/internal/db"
	"github.com/harper/vkattach/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse <message>",
	Short: "Browse a message's forwards and attachments interactively",
	Args:  cobra.ExactArgs(1),
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	msg, err := db.GetMessageByID(dbConn, args[0], api)
	if err != nil {
		return err
	}
	return tui.Run(cmd.Context(), msg)
}
