package overview

import (
	"bytes"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	defaultChartHeight = "320px"
	defaultChartWidth  = "100%"
	legendTextColor    = "white"
	minPaletteSlices   = 3
)

// Palette is the ordered set of slice colors. Slices cycle through it.
var Palette = []string{"#60a5fa", "#93c5fd", "#a78bfa", "#c4b5fd", "#38bdf8", "#818cf8", "#7dd3fc", "#bfdbfe"}

// PaletteFor returns the colors assigned to a chart with n values: the first
// max(3, n) palette entries, capped at the palette size.
func PaletteFor(n int) []string {
	size := max(minPaletteSlices, n)
	size = min(size, len(Palette))
	return slices.Clone(Palette[:size])
}

// ChartInstance is the live state of one pie chart on the page.
type ChartInstance struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Labels   []string  `json:"labels"`
	Values   []float64 `json:"values"`
	Colors   []string  `json:"colors"`
	Width    string    `json:"width"`
	Revision uint64    `json:"revision"`
	Resizes  uint64    `json:"resizes"`
}

func (c *ChartInstance) clone() ChartInstance {
	out := *c
	out.Labels = slices.Clone(c.Labels)
	out.Values = slices.Clone(c.Values)
	out.Colors = slices.Clone(c.Colors)
	return out
}

// ChartRegistry owns the chart instances of one page session. Each element id
// maps to at most one instance; re-rendering updates it in place.
type ChartRegistry struct {
	id         uint64
	mu         sync.Mutex
	elements   map[string]struct{}
	instances  map[string]*ChartInstance
	order      []string
	cache      RenderCache
	theme      string
	assetsHost string
}

// ChartRegistryOption customizes the registry.
type ChartRegistryOption func(*ChartRegistry)

// WithRenderCache injects a render cache.
func WithRenderCache(cache RenderCache) ChartRegistryOption {
	return func(r *ChartRegistry) {
		r.cache = cache
	}
}

// WithChartTheme sets the go-echarts theme.
func WithChartTheme(theme string) ChartRegistryOption {
	return func(r *ChartRegistry) {
		r.theme = theme
	}
}

// WithAssetsHost rewrites the host ECharts JS is loaded from.
func WithAssetsHost(host string) ChartRegistryOption {
	return func(r *ChartRegistry) {
		r.assetsHost = host
	}
}

// NewChartRegistry builds a registry for a page exposing the given chart
// element ids.
func NewChartRegistry(elements []string, opts ...ChartRegistryOption) *ChartRegistry {
	r := &ChartRegistry{
		id:        nextRegistryID(),
		elements:  make(map[string]struct{}, len(elements)),
		instances: map[string]*ChartInstance{},
		cache:     NewChartCache(5 * time.Minute),
	}
	for _, id := range elements {
		r.elements[id] = struct{}{}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Upsert creates or updates the pie chart bound to id. It reports false when
// the page has no element with that id.
func (r *ChartRegistry) Upsert(id string, labels []string, values []float64, title string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.elements[id]; !ok {
		return false
	}
	inst, ok := r.instances[id]
	if !ok {
		inst = &ChartInstance{ID: id, Width: defaultChartWidth}
		r.instances[id] = inst
		r.order = append(r.order, id)
	}
	inst.Title = title
	inst.Labels = slices.Clone(labels)
	inst.Values = slices.Clone(values)
	inst.Colors = PaletteFor(len(values))
	inst.Revision++
	return true
}

// ResizeAll asks every live chart to recompute its layout for the given
// container width. An empty width restores the fluid default.
func (r *ChartRegistry) ResizeAll(width string) {
	if width == "" {
		width = defaultChartWidth
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inst := range r.instances {
		inst.Width = width
		inst.Resizes++
	}
}

// Get returns a copy of the instance bound to id.
func (r *ChartRegistry) Get(id string) (ChartInstance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[id]
	if !ok {
		return ChartInstance{}, false
	}
	return inst.clone(), true
}

// Len reports the number of live instances.
func (r *ChartRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}

// Snapshot returns copies of all instances in creation order.
func (r *ChartRegistry) Snapshot() []ChartInstance {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ChartInstance, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.instances[id].clone())
	}
	return out
}

// Render returns the go-echarts markup for the chart bound to id. Unknown ids
// render nothing.
func (r *ChartRegistry) Render(id string) (string, error) {
	inst, ok := r.Get(id)
	if !ok {
		return "", nil
	}
	renderFn := func() (string, error) {
		return r.renderPie(inst)
	}
	if r.cache == nil {
		return renderFn()
	}
	key := ChartKey{Registry: r.id, ChartID: inst.ID, Revision: inst.Revision, Width: inst.Width}
	return r.cache.GetOrRender(key, renderFn)
}

func (r *ChartRegistry) renderPie(inst ChartInstance) (string, error) {
	pie := charts.NewPie()
	initOpts := opts.Initialization{
		ChartID: inst.ID,
		Width:   inst.Width,
		Height:  defaultChartHeight,
	}
	if r.theme != "" {
		initOpts.Theme = r.theme
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Title: inst.Title}),
		charts.WithLegendOpts(opts.Legend{
			Show:      opts.Bool(true),
			Bottom:    "0",
			TextStyle: &opts.TextStyle{Color: legendTextColor},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pie.AddSeries(inst.Title, toPieData(inst))
	return renderChart(pie)
}

func toPieData(inst ChartInstance) []opts.PieData {
	data := make([]opts.PieData, len(inst.Values))
	for i, value := range inst.Values {
		label := ""
		if i < len(inst.Labels) {
			label = inst.Labels[i]
		}
		data[i] = opts.PieData{
			Name:      label,
			Value:     value,
			ItemStyle: &opts.ItemStyle{Color: inst.Colors[i%len(inst.Colors)]},
		}
	}
	return data
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func seriesLabels(points []SeriesPoint) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Label
	}
	return out
}

func seriesValues(points []SeriesPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}
