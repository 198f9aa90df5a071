// ABOUTME: Message CLI commands
// ABOUTME: Implements message import, list, show, forwards, photos, load and delete

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harper/vkattach/internal/attachment"
	"github.com/harper/vkattach/internal/db"
	"github.com/harper/vkattach/internal/models"
)

var messageCmd = &cobra.Command{
	Use:   "message",
	Short: "Manage archived messages",
	Long:  "Import message objects and inspect their attachments and forwards.",
}

var messageImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Import message objects from a JSON file",
	Long: `Import one or more message objects. The file may hold a single message,
an array of messages, or an API response with an items list.`,
	Args: cobra.ExactArgs(1),
	RunE: runMessageImport,
}

var messageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived messages",
	RunE:  runMessageList,
}

var messageShowCmd = &cobra.Command{
	Use:   "show <message>",
	Short: "Show a message and its attachments",
	Args:  cobra.ExactArgs(1),
	RunE:  runMessageShow,
}

var messageForwardsCmd = &cobra.Command{
	Use:   "forwards <message>",
	Short: "Show the forward tree of a message",
	Args:  cobra.ExactArgs(1),
	RunE:  runMessageForwards,
}

var messageLoadCmd = &cobra.Command{
	Use:   "load <message>",
	Short: "Load full payloads for a message's attachments",
	Args:  cobra.ExactArgs(1),
	RunE:  runMessageLoad,
}

var messagePhotosCmd = &cobra.Command{
	Use:   "photos <message>",
	Short: "Print photo URLs from a message and its forwards",
	Args:  cobra.ExactArgs(1),
	RunE:  runMessagePhotos,
}

var messageDeleteCmd = &cobra.Command{
	Use:   "delete <message>",
	Short: "Delete an archived message",
	Args:  cobra.ExactArgs(1),
	RunE:  runMessageDelete,
}

var (
	listPeer        int64
	messageKinds    []string
	loadConcurrency int
	ownOnly         bool
	photoSize       string
	photoLoad       bool
)

func init() {
	rootCmd.AddCommand(messageCmd)
	messageCmd.AddCommand(messageImportCmd, messageListCmd, messageShowCmd,
		messageForwardsCmd, messagePhotosCmd, messageLoadCmd, messageDeleteCmd)

	messageListCmd.Flags().Int64Var(&listPeer, "peer", 0, "only messages from this conversation")
	for _, c := range []*cobra.Command{messageShowCmd, messageForwardsCmd, messageLoadCmd} {
		c.Flags().StringSliceVar(&messageKinds, "kind", nil, "attachment kinds (photo, poll, graffiti)")
	}
	messageShowCmd.Flags().BoolVar(&ownOnly, "own", false, "only the message's own attachments")
	messageLoadCmd.Flags().IntVarP(&loadConcurrency, "concurrency", "c", 4, "parallel fetches")
	messagePhotosCmd.Flags().StringVar(&photoSize, "size", "large", "size class (small, medium, large)")
	messagePhotosCmd.Flags().BoolVarP(&photoLoad, "load", "l", false, "fetch partial photos first")
}

func runMessageImport(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return err
	}

	raws, err := splitMessages(data)
	if err != nil {
		return err
	}

	for i, raw := range raws {
		msg, err := db.ImportMessage(dbConn, raw, api)
		if err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
		logger.Debug("imported message", zap.String("id", msg.ID.String()), zap.Int64("remote_id", msg.RemoteID))
		color.Green("Imported message %s", msg.ID.String()[:8])
		fmt.Printf("  attachments: %d own, %d total, %d forwards\n",
			len(msg.Attachments), len(msg.GetAllAttachments()), len(msg.Forwards.Flatten()))
	}
	return nil
}

// splitMessages accepts a message, an array of messages, or an object
// carrying them under items (optionally inside response).
func splitMessages(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("no message data")
	}

	if data[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var wrapper struct {
		Items    []json.RawMessage `json:"items"`
		Response *struct {
			Items []json.RawMessage `json:"items"`
		} `json:"response"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}
	switch {
	case wrapper.Response != nil && len(wrapper.Response.Items) > 0:
		return wrapper.Response.Items, nil
	case len(wrapper.Items) > 0:
		return wrapper.Items, nil
	}
	return []json.RawMessage{data}, nil
}

func runMessageList(cmd *cobra.Command, args []string) error {
	messages, err := db.ListMessages(dbConn, listPeer, api)
	if err != nil {
		return err
	}

	if len(messages) == 0 {
		fmt.Println("No messages found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPEER\tFROM\tDATE\tATTACHMENTS\tFORWARDS\tTEXT")
	for _, m := range messages {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d/%d\t%d\t%s\n",
			m.ID.String()[:8], m.PeerID, m.SenderID, m.CreatedAt.Format("2006-01-02 15:04"),
			len(m.Attachments), len(m.GetAllAttachments()), len(m.Forwards.Flatten()),
			truncate(m.Text, 40))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

func loadMessage(id string) (*models.Message, []attachment.Kind, error) {
	kinds, err := attachment.ParseKinds(messageKinds)
	if err != nil {
		return nil, nil, err
	}
	msg, err := db.GetMessageByID(dbConn, id, api)
	if err != nil {
		return nil, nil, err
	}
	return msg, kinds, nil
}

func runMessageShow(cmd *cobra.Command, args []string) error {
	msg, kinds, err := loadMessage(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Message: %s (remote %d)\n", msg.ID.String()[:8], msg.RemoteID)
	fmt.Printf("Peer: %d  From: %d\n", msg.PeerID, msg.SenderID)
	fmt.Printf("Date: %s\n", msg.CreatedAt.Format("2006-01-02 15:04"))
	if msg.Text != "" {
		fmt.Printf("\n%s\n", msg.Text)
	}

	items := msg.GetAllAttachments(kinds...)
	if ownOnly {
		items = msg.GetAttachments(kinds...)
	}
	if len(items) == 0 {
		fmt.Println("\nNo attachments.")
		return nil
	}

	fmt.Printf("\nAttachments (%d):\n", len(items))
	for _, a := range items {
		printAttachment(os.Stdout, a)
	}
	return nil
}

func runMessageForwards(cmd *cobra.Command, args []string) error {
	msg, kinds, err := loadMessage(args[0])
	if err != nil {
		return err
	}

	if msg.Forwards.Len() == 0 {
		fmt.Println("No forwarded messages.")
		return nil
	}

	printForwards(os.Stdout, msg.Forwards.Items(), kinds, 0)
	return nil
}

func printForwards(w io.Writer, forwards []*models.Forward, kinds []attachment.Kind, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, f := range forwards {
		fmt.Fprintf(w, "%s%s %s\n", indent, color.CyanString("%d", f.SenderID), truncate(f.Text, 60))
		for _, a := range f.GetAttachments(kinds...) {
			state := color.YellowString("partial")
			if a.IsFilled() {
				state = color.GreenString("full")
			}
			fmt.Fprintf(w, "%s  - %s (%s)\n", indent, a, state)
		}
		printForwards(w, f.Forwards.Items(), kinds, depth+1)
	}
}

func runMessageLoad(cmd *cobra.Command, args []string) error {
	msg, kinds, err := loadMessage(args[0])
	if err != nil {
		return err
	}
	if api == nil {
		return fmt.Errorf("%w: run 'vkattach config set-token' first", attachment.ErrNoAPI)
	}

	items := msg.GetAllAttachments(kinds...)
	if len(items) == 0 {
		fmt.Println("No attachments to load.")
		return nil
	}

	if err := attachment.LoadAll(cmd.Context(), items, loadConcurrency); err != nil {
		color.Red("Some attachments failed to load: %v", err)
	}

	filled := 0
	for _, a := range items {
		if a.IsFilled() {
			filled++
		}
		logger.Debug("attachment", zap.Stringer("ref", a), zap.Object("fields", a.Serialize()))
	}
	color.Green("Loaded %d/%d attachments", filled, len(items))
	for _, a := range items {
		printAttachment(os.Stdout, a)
	}
	return nil
}

func runMessagePhotos(cmd *cobra.Command, args []string) error {
	msg, err := db.GetMessageByID(dbConn, args[0], api)
	if err != nil {
		return err
	}

	photos := attachment.OfType[*attachment.Photo](msg.GetAllAttachments(attachment.KindPhoto))
	if len(photos) == 0 {
		fmt.Println("No photos.")
		return nil
	}

	if photoLoad {
		items := make([]attachment.Attachment, len(photos))
		for i, p := range photos {
			items[i] = p
		}
		if err := attachment.LoadAll(cmd.Context(), items, loadConcurrency); err != nil {
			color.Red("Some photos failed to load: %v", err)
		}
	}

	return printPhotoURLs(os.Stdout, photos, photoSize)
}

// printPhotoURLs writes one line per photo with the URL for size, or
// "unknown" when the photo is partial or has no matching rendition.
func printPhotoURLs(w io.Writer, photos []*attachment.Photo, size string) error {
	var resolve func(*attachment.Photo) (string, bool)
	switch size {
	case "small":
		resolve = (*attachment.Photo).SmallSizeURL
	case "medium":
		resolve = (*attachment.Photo).MediumSizeURL
	case "large":
		resolve = (*attachment.Photo).LargeSizeURL
	default:
		return fmt.Errorf("unknown size %q (want small, medium or large)", size)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range photos {
		url, ok := resolve(p)
		if !ok {
			url = "unknown"
		}
		fmt.Fprintf(tw, "%s\t%s\n", p, url)
	}
	return tw.Flush()
}

func runMessageDelete(cmd *cobra.Command, args []string) error {
	if err := db.DeleteMessage(dbConn, args[0]); err != nil {
		return err
	}
	color.Yellow("Deleted message: %s", args[0])
	return nil
}
