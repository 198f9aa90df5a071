// ABOUTME: Tests for CLI helpers
// ABOUTME: Covers message splitting, output formatting and metrics printing

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/harper/vkattach/internal/attachment"
	"github.com/harper/vkattach/internal/cache"
	"github.com/harper/vkattach/internal/models"
)

func TestSplitMessages(t *testing.T) {
	tests := []struct {
		name  string
		input string
		count int
	}{
		{"single", `{"id": 1}`, 1},
		{"array", `[{"id": 1}, {"id": 2}]`, 2},
		{"items", `{"count": 2, "items": [{"id": 1}, {"id": 2}]}`, 2},
		{"response", `{"response": {"count": 3, "items": [{"id": 1}, {"id": 2}, {"id": 3}]}}`, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raws, err := splitMessages([]byte(tt.input))
			if err != nil {
				t.Fatalf("splitMessages failed: %v", err)
			}
			if len(raws) != tt.count {
				t.Errorf("expected %d messages, got %d", tt.count, len(raws))
			}
		})
	}

	if _, err := splitMessages([]byte("  ")); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestMask(t *testing.T) {
	if got := mask("short"); got != "********" {
		t.Errorf("unexpected mask %s", got)
	}
	if got := mask("vk1.a.abcdefgh1234"); got != "vk1....1234" {
		t.Errorf("unexpected mask %s", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("a\nb", 10); got != "a b" {
		t.Errorf("unexpected %q", got)
	}
	if got := truncate("abcdef", 3); got != "abc..." {
		t.Errorf("unexpected %q", got)
	}
}

func TestPrintAttachment(t *testing.T) {
	var buf bytes.Buffer
	printAttachment(&buf, attachment.NewGraffiti(attachment.GraffitiPayload{ID: 7, OwnerID: 42}, nil))

	out := buf.String()
	if !strings.Contains(out, "graffiti42_7") {
		t.Errorf("missing reference:\n%s", out)
	}
	if !strings.Contains(out, "url:") || !strings.Contains(out, "unknown") {
		t.Errorf("partial graffiti should list unknown url:\n%s", out)
	}
}

func TestPrintForwards(t *testing.T) {
	url := "http://g"
	nested := models.NewForward(3, "nested", attachment.List{
		attachment.NewGraffiti(attachment.GraffitiPayload{ID: 1, OwnerID: 3, URL: &url}, nil),
	})
	top := models.NewForward(2, "top", nil, nested)

	var buf bytes.Buffer
	printForwards(&buf, []*models.Forward{top}, nil, 0)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "  ") || !strings.Contains(lines[2], "graffiti3_1") {
		t.Errorf("unexpected tree:\n%s", buf.String())
	}
}

func TestPrintMetrics(t *testing.T) {
	registry = prometheus.NewRegistry()
	metrics := cache.NewMetrics(registry)
	metrics.Lookups.WithLabelValues(cache.NamespacePhotos, "hit").Add(2)

	var buf bytes.Buffer
	printMetrics(&buf)

	if !strings.Contains(buf.String(), `vkattach_cache_lookups_total{namespace=photos,result=hit} 2`) {
		t.Errorf("unexpected metrics output:\n%s", buf.String())
	}
}

func TestSummarizeEntries(t *testing.T) {
	entries := []cache.Entry{
		{Key: "zeta:1", Size: 10},
		{Key: "photos:1_1", Size: 1500},
		{Key: "alpha:2", Size: 5},
		{Key: "zeta:2", Size: 10},
	}

	stats := summarizeEntries(entries)
	var names []string
	for _, st := range stats {
		names = append(names, st.namespace)
	}
	want := []string{cache.NamespacePhotos, cache.NamespaceDocs, cache.NamespacePolls, "alpha", "zeta"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("namespaces = %v, want %v", names, want)
	}
	if stats[4].count != 2 || stats[4].bytes != 20 {
		t.Errorf("unexpected zeta stat %+v", stats[4])
	}

	var buf bytes.Buffer
	if err := printCacheStats(&buf, stats); err != nil {
		t.Fatalf("printCacheStats failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "1.5 kB") {
		t.Errorf("expected humanized size in output:\n%s", out)
	}
	if strings.Index(out, "alpha") > strings.Index(out, "zeta") {
		t.Errorf("expected alpha before zeta:\n%s", out)
	}
}

func TestRawPayload(t *testing.T) {
	a, err := attachment.FromReference("poll-1_9_key", nil)
	if err != nil {
		t.Fatalf("FromReference failed: %v", err)
	}

	var buf bytes.Buffer
	if err := printJSON(&buf, rawPayload(a)); err != nil {
		t.Fatalf("printJSON failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"id": 9`, `"owner_id": -1`, `"access_key": "key"`, `"answers": null`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in:\n%s", want, out)
		}
	}
}

func TestPrintPhotoURLs(t *testing.T) {
	album, date := int64(1), int64(2)
	full := attachment.NewPhoto(attachment.PhotoPayload{
		ID: 1, OwnerID: 1, AlbumID: &album, Date: &date,
		Sizes: []attachment.PhotoSize{{Type: "s", URL: "http://s"}, {Type: "z", URL: "http://z"}},
	}, nil)
	partial := attachment.NewPhoto(attachment.PhotoPayload{ID: 2, OwnerID: 1}, nil)
	photos := attachment.OfType[*attachment.Photo](attachment.List{full, partial})

	var buf bytes.Buffer
	if err := printPhotoURLs(&buf, photos, "large"); err != nil {
		t.Fatalf("printPhotoURLs failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "photo1_1") || !strings.Contains(out, "http://z") {
		t.Errorf("expected large URL for full photo:\n%s", out)
	}
	if !strings.Contains(out, "photo1_2") || !strings.Contains(out, "unknown") {
		t.Errorf("expected unknown for partial photo:\n%s", out)
	}

	buf.Reset()
	if err := printPhotoURLs(&buf, photos, "small"); err != nil {
		t.Fatalf("printPhotoURLs failed: %v", err)
	}
	if !strings.Contains(buf.String(), "http://s") {
		t.Errorf("expected small URL:\n%s", buf.String())
	}

	if err := printPhotoURLs(&buf, photos, "huge"); err == nil {
		t.Error("expected error for unknown size")
	}
}
