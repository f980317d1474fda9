// Package report writes the output files for a finished curation run:
// a slug list for Ferium, a JSON detail dump, and a Markdown summary.
package report

import (
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/modsmith/modsmith-server/internal/catalog"
	"github.com/modsmith/modsmith-server/internal/diagnostics"
	"github.com/modsmith/modsmith-server/internal/resolve"
	"github.com/modsmith/modsmith-server/internal/validate"
)

// Output file names under the report directory.
const (
	SlugListFile = "gen-mods.txt"
	DetailsFile  = "modpack-details.json"
	SummaryFile  = "modpack-summary.md"
)

// Pack is everything the writers need about one run.
type Pack struct {
	Theme       string
	Version     string
	Loader      string
	GeneratedAt time.Time
	Result      validate.Result
	Summary     diagnostics.Summary
}

// Writer writes run reports under a base directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a report writer rooted at dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Write emits all three report files. Files are written atomically:
// content goes to a temp file first and is renamed into place, so a
// crash never leaves a half-written report.
func (w *Writer) Write(pack Pack) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}

	mods := byDownloads(pack.Result.Resolved)

	if err := w.writeFile(SlugListFile, slugList(pack, mods)); err != nil {
		return err
	}
	if err := w.writeDetails(pack, mods); err != nil {
		return err
	}
	if err := w.writeFile(SummaryFile, summaryMarkdown(pack, mods)); err != nil {
		return err
	}

	w.logger.Info("report written", "dir", w.dir, "mods", len(mods))
	return nil
}

// SlugListPath returns the path Ferium reads slugs from.
func (w *Writer) SlugListPath() string {
	return filepath.Join(w.dir, SlugListFile)
}

func (w *Writer) writeFile(name string, content []byte) error {
	path := filepath.Join(w.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", name, err)
	}
	return nil
}

// byDownloads orders mods most-downloaded first without mutating the
// input slice.
func byDownloads(mods []catalog.Entry) []catalog.Entry {
	sorted := make([]catalog.Entry, len(mods))
	copy(sorted, mods)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Downloads > sorted[j].Downloads
	})
	return sorted
}

func slugList(pack Pack, mods []catalog.Entry) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# Generated Modpack: %s\n", pack.Theme)
	fmt.Fprintf(&b, "# Minecraft Version: %s\n", pack.Version)
	fmt.Fprintf(&b, "# Mod Loader: %s\n", titleLoader(pack.Loader))
	fmt.Fprintf(&b, "# Generated on: %s\n", pack.GeneratedAt.Format(time.DateTime))
	fmt.Fprintf(&b, "# Total Mods: %d\n\n", len(mods))
	b.WriteString("# Mod slugs for Ferium (one per line):\n")
	for _, mod := range mods {
		b.WriteString(mod.Slug)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// detailsDoc is the modpack-details.json shape. Field names are part
// of the output contract.
type detailsDoc struct {
	ModpackInfo detailsInfo         `json:"modpack_info"`
	Mods        []detailsMod        `json:"mods"`
	Diagnostics diagnostics.Summary `json:"diagnostics"`
}

type detailsInfo struct {
	Theme            string `json:"theme"`
	MinecraftVersion string `json:"minecraft_version"`
	ModLoader        string `json:"mod_loader"`
	GeneratedOn      string `json:"generated_on"`
	TotalMods        int    `json:"total_mods"`
}

type detailsMod struct {
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	ModID       string   `json:"mod_id"`
	Categories  []string `json:"categories"`
	Downloads   int      `json:"downloads"`
	LastUpdated string   `json:"last_updated"`
}

func (w *Writer) writeDetails(pack Pack, mods []catalog.Entry) error {
	doc := detailsDoc{
		ModpackInfo: detailsInfo{
			Theme:            pack.Theme,
			MinecraftVersion: pack.Version,
			ModLoader:        pack.Loader,
			GeneratedOn:      pack.GeneratedAt.Format(time.DateTime),
			TotalMods:        len(mods),
		},
		Mods:        make([]detailsMod, 0, len(mods)),
		Diagnostics: pack.Summary,
	}
	for _, mod := range mods {
		doc.Mods = append(doc.Mods, detailsMod{
			Name:        mod.Title,
			Slug:        mod.Slug,
			Description: mod.Description,
			ModID:       mod.ID,
			Categories:  mod.Categories,
			Downloads:   mod.Downloads,
			LastUpdated: mod.Updated.Format(time.RFC3339),
		})
	}

	data, err := json.Marshal(doc, json.Deterministic(true), jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("failed to marshal details: %w", err)
	}
	return w.writeFile(DetailsFile, data)
}

func summaryMarkdown(pack Pack, mods []catalog.Entry) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Modpack\n\n", pack.Theme)
	fmt.Fprintf(&b, "**Minecraft Version:** %s  \n", pack.Version)
	fmt.Fprintf(&b, "**Mod Loader:** %s  \n", titleLoader(pack.Loader))
	fmt.Fprintf(&b, "**Total Mods:** %d  \n", len(mods))
	fmt.Fprintf(&b, "**Generated:** %s  \n\n", pack.GeneratedAt.Format(time.DateTime))

	b.WriteString("## Installation with Ferium\n\n")
	b.WriteString("1. Install [Ferium](https://github.com/gorilla-devs/ferium)\n")
	b.WriteString("2. Create a new profile: `ferium profile create`\n")
	fmt.Fprintf(&b, "3. Add mods from %s: `grep -v '^#' %s | xargs -I {} ferium add {}`\n", SlugListFile, SlugListFile)
	b.WriteString("4. Download mods: `ferium upgrade`\n\n")

	b.WriteString("## Mod List\n\n")
	b.WriteString("| Mod Name | Downloads | Categories | Description |\n")
	b.WriteString("|----------|-----------|------------|-------------|\n")
	for _, mod := range mods {
		categories := mod.Categories
		if len(categories) > 3 {
			categories = categories[:3]
		}
		description := mod.Description
		if len(description) > 100 {
			description = description[:100] + "..."
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			mod.Title,
			formatDownloads(mod.Downloads),
			strings.Join(categories, ", "),
			strings.ReplaceAll(description, "|", "\\|"),
		)
	}

	if pack.Summary.Unresolved > 0 {
		b.WriteString("\n## Validation Notes\n\n")
		fmt.Fprintf(&b, "%d of %d suggestions could not be used:\n\n",
			pack.Summary.Unresolved, pack.Summary.Attempted)
		reasons := make([]string, 0, len(pack.Summary.ByReason))
		for reason := range pack.Summary.ByReason {
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(&b, "- %s: %d\n", reason, pack.Summary.ByReason[resolve.Reason(reason)])
		}
	}

	return []byte(b.String())
}

// formatDownloads renders a count with thousands separators.
func formatDownloads(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func titleLoader(loader string) string {
	if loader == "" {
		return loader
	}
	return strings.ToUpper(loader[:1]) + loader[1:]
}
