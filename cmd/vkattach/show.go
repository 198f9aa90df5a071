// ABOUTME: Show command for a single attachment reference
// ABOUTME: Prints derived fields, optionally after loading the full payload

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/vkattach/internal/attachment"
)

var showCmd = &cobra.Command{
	Use:   "show <ref>",
	Short: "Show an attachment by reference",
	Long: `Show an attachment given a reference such as photo-1_456239017_abc123,
poll-1_9 or graffiti42_7.

Without --load only the identity is known and every derived field is unknown.
--raw prints the payload object exactly as held, instead of derived fields.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

var (
	showLoad bool
	showJSON bool
	showRaw  bool
)

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVarP(&showLoad, "load", "l", false, "fetch the full payload")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print as JSON")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "print the raw payload as JSON")
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := attachment.FromReference(args[0], api)
	if err != nil {
		return err
	}

	if showLoad {
		if err := a.LoadAttachmentPayload(cmd.Context()); err != nil {
			return fmt.Errorf("load %s: %w", a, err)
		}
	}

	if showRaw {
		return printJSON(os.Stdout, rawPayload(a))
	}
	if showJSON {
		return printJSON(os.Stdout, a)
	}
	printAttachment(os.Stdout, a)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// rawPayload returns the payload currently held by a.
func rawPayload(a attachment.Attachment) any {
	switch a := a.(type) {
	case *attachment.Photo:
		return a.Payload()
	case *attachment.Poll:
		return a.Payload()
	case *attachment.Graffiti:
		return a.Payload()
	}
	return nil
}

// printAttachment writes the reference, fill state and every derived field.
func printAttachment(w io.Writer, a attachment.Attachment) {
	state := color.YellowString("partial")
	if a.IsFilled() {
		state = color.GreenString("full")
	}
	fmt.Fprintf(w, "%s (%s)\n", color.CyanString(a.String()), state)

	for _, field := range a.Serialize() {
		value := color.HiBlackString("unknown")
		if field.Value != nil {
			data, err := json.Marshal(field.Value)
			if err != nil {
				value = fmt.Sprint(field.Value)
			} else {
				value = string(data)
			}
		}
		fmt.Fprintf(w, "  %-14s %s\n", field.Name+":", value)
	}
}
