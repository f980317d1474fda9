package catalog

import "time"

// Entry is an immutable snapshot of one catalog project.
// The curation core only ever reads these; it never writes back.
type Entry struct {
	ID           string // stable project ID
	Slug         string // URL slug, the identifier Ferium consumes
	Title        string // display title
	Description  string
	Categories   []string  // category tags (performance, storage, ...)
	GameVersions []string  // declared supported game versions
	Loaders      []string  // declared supported loaders
	Downloads    int       // popularity metric, tie-break only
	Updated      time.Time // last modification time
}

// SearchParams controls a free-text catalog search.
type SearchParams struct {
	Query string
	Limit int
}

// Raw API response types (internal)

type rawProject struct {
	ID           string   `json:"id"`
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Categories   []string `json:"categories"`
	GameVersions []string `json:"game_versions"`
	Loaders      []string `json:"loaders"`
	Downloads    int      `json:"downloads"`
	Updated      string   `json:"updated"`
}

type rawSearchHit struct {
	ProjectID    string   `json:"project_id"`
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Categories   []string `json:"categories"`
	Versions     []string `json:"versions"`
	Loaders      []string `json:"loaders"`
	Downloads    int      `json:"downloads"`
	DateModified string   `json:"date_modified"`
}

type rawSearchResponse struct {
	Hits      []rawSearchHit `json:"hits"`
	TotalHits int            `json:"total_hits"`
}

// knownLoaders are loader names that the search API folds into the
// categories facet. Used to recover loader sets from older responses
// that omit the dedicated loaders field.
var knownLoaders = map[string]bool{
	"fabric":   true,
	"forge":    true,
	"quilt":    true,
	"neoforge": true,
}

func (h *rawSearchHit) toEntry() Entry {
	loaders := h.Loaders
	categories := h.Categories
	if len(loaders) == 0 {
		// Older search responses mix loaders into categories.
		categories = make([]string, 0, len(h.Categories))
		for _, c := range h.Categories {
			if knownLoaders[c] {
				loaders = append(loaders, c)
			} else {
				categories = append(categories, c)
			}
		}
	}

	var updated time.Time
	if h.DateModified != "" {
		updated, _ = time.Parse(time.RFC3339, h.DateModified)
	}

	return Entry{
		ID:           h.ProjectID,
		Slug:         h.Slug,
		Title:        h.Title,
		Description:  h.Description,
		Categories:   categories,
		GameVersions: h.Versions,
		Loaders:      loaders,
		Downloads:    h.Downloads,
		Updated:      updated,
	}
}

func (p *rawProject) toEntry() Entry {
	var updated time.Time
	if p.Updated != "" {
		updated, _ = time.Parse(time.RFC3339, p.Updated)
	}

	return Entry{
		ID:           p.ID,
		Slug:         p.Slug,
		Title:        p.Title,
		Description:  p.Description,
		Categories:   p.Categories,
		GameVersions: p.GameVersions,
		Loaders:      p.Loaders,
		Downloads:    p.Downloads,
		Updated:      updated,
	}
}
