package overview

import (
	"fmt"
	"io"
	"os"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current page manifest format version.
	ManifestVersion = manifestVersionV1
)

// Series keys understood by the controller.
const (
	SeriesPorDDZ    = "por_ddz"
	SeriesPorEscola = "por_escola"
	SeriesPorAno    = "por_ano"
)

// PageManifest declares which elements exist on the overview page. Elements
// left empty are treated as absent and silently skipped.
type PageManifest struct {
	Version string         `json:"version" yaml:"version"`
	Page    PageElements   `json:"page" yaml:"page"`
	Charts  []ChartElement `json:"charts" yaml:"charts"`
	Source  string         `json:"-" yaml:"-"`
}

// PageElements names the containers of the page.
type PageElements struct {
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Chips    string `json:"chips,omitempty" yaml:"chips,omitempty"`
	Table    string `json:"table,omitempty" yaml:"table,omitempty"`
	CountTag string `json:"count_tag,omitempty" yaml:"count_tag,omitempty"`
	PageSize int    `json:"page_size,omitempty" yaml:"page_size,omitempty"`
}

// ChartElement binds a chart container to one series of the aggregate.
type ChartElement struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Series string `json:"series" yaml:"series"`
}

// DefaultManifest describes the stock "Visão Geral" page.
func DefaultManifest() *PageManifest {
	return &PageManifest{
		Version: manifestVersionV1,
		Page: PageElements{
			Title:    "Visão Geral",
			Chips:    "chips",
			Table:    "tabela",
			CountTag: "countTag",
		},
		Charts: []ChartElement{
			{ID: "chartDDZ", Title: "Por DDZ", Series: SeriesPorDDZ},
			{ID: "chartEscola", Title: "Por Escola", Series: SeriesPorEscola},
			{ID: "chartAno", Title: "Por Ano", Series: SeriesPorAno},
		},
	}
}

// ChartIDs lists the chart element ids in declaration order.
func (m *PageManifest) ChartIDs() []string {
	ids := make([]string, 0, len(m.Charts))
	for _, chart := range m.Charts {
		ids = append(ids, chart.ID)
	}
	return ids
}

// ReadManifest loads a page manifest from disk.
func ReadManifest(path string) (*PageManifest, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("overview: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("overview: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*PageManifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc PageManifest
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("overview: manifest is empty")
		}
		return nil, fmt.Errorf("overview: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures chart ids are unique and series keys are known.
func (m *PageManifest) Validate() error {
	if m.Version != manifestVersionV1 {
		return fmt.Errorf("overview: unsupported manifest version %q", m.Version)
	}
	if m.Page.PageSize < 0 {
		return fmt.Errorf("overview: page_size must not be negative")
	}
	seen := make(map[string]struct{}, len(m.Charts))
	for idx, chart := range m.Charts {
		if chart.ID == "" {
			return fmt.Errorf("overview: chart at index %d is missing id", idx)
		}
		if _, ok := seen[chart.ID]; ok {
			return fmt.Errorf("overview: manifest duplicates chart id %s", chart.ID)
		}
		seen[chart.ID] = struct{}{}
		switch chart.Series {
		case SeriesPorDDZ, SeriesPorEscola, SeriesPorAno:
		default:
			return fmt.Errorf("overview: chart %s uses unknown series %q", chart.ID, chart.Series)
		}
	}
	return nil
}

func (m *PageManifest) applyDefaults() {
	if m.Version == "" {
		m.Version = manifestVersionV1
	}
	for i := range m.Charts {
		m.Charts[i].Series = strcase.ToSnake(m.Charts[i].Series)
		if m.Charts[i].Title == "" {
			m.Charts[i].Title = m.Charts[i].ID
		}
	}
}

func (a Aggregate) series(key string) []SeriesPoint {
	switch key {
	case SeriesPorDDZ:
		return a.PorDDZ
	case SeriesPorEscola:
		return a.PorEscola
	case SeriesPorAno:
		return a.PorAno
	default:
		return nil
	}
}
