// ABOUTME: Payload cache CLI commands
// ABOUTME: Lists, summarizes and deletes cached payloads

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/vkattach/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the payload cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list [prefix]",
	Short: "List cached payloads",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheList,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cached payload counts per namespace",
	RunE:  runCacheStats,
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <key>...",
	Short: "Delete cached payloads so the next fill refetches them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCacheDelete,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd, cacheStatsCmd, cacheDeleteCmd)
}

func cacheEntries(cmd *cobra.Command, prefix string) ([]cache.Entry, error) {
	lister, ok := store.(cache.Lister)
	if !ok {
		return nil, fmt.Errorf("cache backend %q cannot list entries", cfg.GetCacheBackend())
	}
	return lister.Entries(cmd.Context(), prefix)
}

func runCacheList(cmd *cobra.Command, args []string) error {
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}

	entries, err := cacheEntries(cmd, prefix)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("Cache is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tSIZE\tSTORED")
	for _, e := range entries {
		stored := "-"
		if !e.StoredAt.IsZero() {
			stored = e.StoredAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Key, humanize.Bytes(uint64(e.Size)), stored)
	}
	return w.Flush()
}

func runCacheDelete(cmd *cobra.Command, args []string) error {
	deleter, ok := store.(cache.Deleter)
	if !ok {
		return fmt.Errorf("cache backend %q cannot delete entries", cfg.GetCacheBackend())
	}

	for _, key := range args {
		err := deleter.Delete(cmd.Context(), key)
		switch {
		case errors.Is(err, cache.ErrMiss):
			color.Yellow("Not cached: %s", key)
		case err != nil:
			return fmt.Errorf("delete %s: %w", key, err)
		default:
			color.Green("Deleted: %s", key)
		}
	}
	return nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	entries, err := cacheEntries(cmd, "")
	if err != nil {
		return err
	}

	fmt.Printf("Backend: %s\n\n", color.CyanString(cfg.GetCacheBackend()))
	return printCacheStats(os.Stdout, summarizeEntries(entries))
}

type namespaceStat struct {
	namespace string
	count     int
	bytes     int
}

// summarizeEntries groups entries by key namespace. The known namespaces
// come first in a fixed order, followed by any others sorted by name.
func summarizeEntries(entries []cache.Entry) []namespaceStat {
	known := []string{cache.NamespacePhotos, cache.NamespaceDocs, cache.NamespacePolls}
	byName := map[string]*namespaceStat{}
	for _, ns := range known {
		byName[ns] = &namespaceStat{namespace: ns}
	}

	var extra []string
	for _, e := range entries {
		ns, _, _ := strings.Cut(e.Key, ":")
		st := byName[ns]
		if st == nil {
			st = &namespaceStat{namespace: ns}
			byName[ns] = st
			extra = append(extra, ns)
		}
		st.count++
		st.bytes += e.Size
	}
	slices.Sort(extra)

	stats := make([]namespaceStat, 0, len(byName))
	for _, ns := range append(known, extra...) {
		stats = append(stats, *byName[ns])
	}
	return stats
}

func printCacheStats(out io.Writer, stats []namespaceStat) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAMESPACE\tENTRIES\tSIZE")
	for _, st := range stats {
		fmt.Fprintf(w, "%s\t%s\t%s\n", st.namespace, humanize.Comma(int64(st.count)), humanize.Bytes(uint64(st.bytes)))
	}
	return w.Flush()
}
