package overview

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/goliatone/go-overview/pkg/tables"
)

var (
	errMissingClient = errors.New("overview: aggregate client not configured")

	// ErrStaleResponse marks a load whose response arrived after a newer load
	// was issued. Its data is discarded.
	ErrStaleResponse = errors.New("overview: stale response discarded")
	// ErrUnknownChip is returned when selecting a value no chip is bound to.
	ErrUnknownChip = errors.New("overview: unknown chip")
)

// TableColumns are the headers of the results table.
var TableColumns = []string{"DDZ", "Escola", "Professor", "Ano", "Turma", "Certificado"}

// Options configures a Controller. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	SessionID     string
	Client        AggregateClient
	Manifest      *PageManifest
	Renderer      Renderer
	RefreshHook   RefreshHook
	Telemetry     Telemetry
	Logger        *zap.Logger
	ChartOptions  []ChartRegistryOption
	OnlyCertified bool
}

// Controller drives one overview page session: chip discovery, data loads,
// chart refresh and table refresh.
type Controller struct {
	opts   Options
	charts *ChartRegistry
	logger *zap.Logger

	issued atomic.Uint64

	mu          sync.Mutex
	applied     uint64
	chips       []Chip
	doc         *tables.Document
	paginator   *tables.Paginator
	rows        []Row
	count       string
	activeTurma string
}

// NewController builds a Controller with safe defaults.
func NewController(opts Options) *Controller {
	if opts.Manifest == nil {
		opts.Manifest = DefaultManifest()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)

	doc := tables.NewDocument()
	if id := opts.Manifest.Page.Table; id != "" {
		doc.AddTable(tables.NewTable(id, TableColumns...))
	}
	return &Controller{
		opts:   opts,
		charts: NewChartRegistry(opts.Manifest.ChartIDs(), opts.ChartOptions...),
		logger: opts.Logger.With(zap.String("session_id", opts.SessionID)),
		doc:    doc,
	}
}

// SessionID returns the page session id.
func (c *Controller) SessionID() string { return c.opts.SessionID }

// Charts exposes the chart registry owned by this page.
func (c *Controller) Charts() *ChartRegistry { return c.charts }

// Init runs the page-load sequence: build chips, then load unfiltered data.
// Failures are logged and leave the page in whatever state it reached.
func (c *Controller) Init(ctx context.Context) {
	if err := c.BuildChips(ctx); err != nil {
		c.logger.Error("dashboard error", zap.String("stage", "chips"), zap.Error(err))
		return
	}
	if err := c.LoadData(ctx, ""); err != nil && !errors.Is(err, ErrStaleResponse) {
		c.logger.Error("dashboard error", zap.String("stage", "load"), zap.Error(err))
	}
}

// BuildChips fetches the unfiltered aggregate once and renders one chip per
// distinct turma plus the active "Todas" chip. Pages without a chips
// container skip the fetch. A non-success status leaves the chips untouched.
func (c *Controller) BuildChips(ctx context.Context) error {
	if c.opts.Manifest.Page.Chips == "" {
		return nil
	}
	if c.opts.Client == nil {
		return errMissingClient
	}
	agg, err := c.opts.Client.FetchAggregate(ctx, Query{})
	if err != nil {
		var status *StatusError
		if errors.As(err, &status) {
			c.logger.Debug("chip discovery skipped", zap.Int("status", status.Code))
			return nil
		}
		return fmt.Errorf("overview: build chips: %w", err)
	}
	chips := BuildChipList(agg.Rows)

	c.mu.Lock()
	c.chips = chips
	c.mu.Unlock()

	c.opts.Telemetry.Record(ctx, "overview.chips.build", map[string]any{
		"session_id": c.opts.SessionID,
		"count":      len(chips),
	})
	return nil
}

// SelectChip activates the chip bound to value, deactivating the others, and
// reloads data filtered by it.
func (c *Controller) SelectChip(ctx context.Context, value string) error {
	c.mu.Lock()
	if len(c.chips) > 0 {
		found := false
		for _, chip := range c.chips {
			if chip.Value == value {
				found = true
				break
			}
		}
		if !found {
			c.mu.Unlock()
			return fmt.Errorf("%w: %q", ErrUnknownChip, value)
		}
		activateChip(c.chips, value)
	}
	c.mu.Unlock()

	c.opts.Telemetry.Record(ctx, "overview.chip.select", map[string]any{
		"session_id": c.opts.SessionID,
		"turma":      value,
	})
	return c.LoadData(ctx, value)
}

// LoadData fetches the aggregate for turma (empty = all) and refreshes the
// charts, the results table and the count tag. Non-success responses leave
// the page untouched. Responses that arrive after a newer load was issued are
// discarded with ErrStaleResponse.
func (c *Controller) LoadData(ctx context.Context, turma string) error {
	if c.opts.Client == nil {
		return errMissingClient
	}
	seq := c.issued.Add(1)
	agg, err := c.opts.Client.FetchAggregate(ctx, Query{Turma: turma, OnlyCertified: c.opts.OnlyCertified})
	if err != nil {
		return fmt.Errorf("overview: load data: %w", err)
	}

	c.mu.Lock()
	if seq != c.issued.Load() {
		c.mu.Unlock()
		c.logger.Debug("discarding stale response", zap.Uint64("sequence", seq), zap.String("turma", turma))
		return ErrStaleResponse
	}
	c.apply(seq, turma, agg)
	count := len(agg.Rows)
	c.mu.Unlock()

	c.opts.Telemetry.Record(ctx, "overview.load", map[string]any{
		"session_id": c.opts.SessionID,
		"turma":      turma,
		"rows":       count,
	})
	event := RefreshEvent{
		SessionID: c.opts.SessionID,
		Sequence:  seq,
		Turma:     turma,
		Count:     count,
		Reason:    "load",
	}
	if err := c.opts.RefreshHook.PageUpdated(ctx, event); err != nil {
		c.logger.Warn("refresh hook failed", zap.Error(err))
	}
	return nil
}

// apply must be called with c.mu held.
func (c *Controller) apply(seq uint64, turma string, agg Aggregate) {
	for _, chart := range c.opts.Manifest.Charts {
		points := agg.series(chart.Series)
		c.charts.Upsert(chart.ID, seriesLabels(points), seriesValues(points), chart.Title)
	}

	c.rows = append([]Row(nil), agg.Rows...)
	if id := c.opts.Manifest.Page.Table; id != "" {
		table := tables.NewTable(id, TableColumns...)
		for _, row := range agg.Rows {
			table.Append(rowCells(row)...)
		}
		c.doc.AddTable(table)
		c.doc.RemoveNavs(id)
		c.paginator = nil
		if size := c.opts.Manifest.Page.PageSize; size > 0 {
			c.paginator = tables.Paginate(c.doc, id, size)
		}
	}
	if c.opts.Manifest.Page.CountTag != "" {
		c.count = fmt.Sprintf("%d registro(s)", len(agg.Rows))
	}
	c.activeTurma = turma
	c.applied = seq
}

// CertificateURL is the download link of a certificate.
func CertificateURL(certID string) string {
	return "/certificados/" + url.PathEscape(certID) + "/download"
}

func rowCells(row Row) []tables.Cell {
	cert := tables.Cell{Text: "—", Muted: true, Align: "center"}
	if row.HasCert && row.CertID != "" {
		cert = tables.Cell{Text: "📜", Href: CertificateURL(row.CertID), Title: "Baixar", Align: "center"}
	}
	return []tables.Cell{
		{Text: row.DDZ},
		{Text: row.Escola},
		{Text: row.Professor},
		{Text: row.Ano},
		{Text: row.Turma},
		cert,
	}
}

// Resize asks every live chart to recompute its layout.
func (c *Controller) Resize(ctx context.Context, width string) {
	c.charts.ResizeAll(width)
	c.opts.Telemetry.Record(ctx, "overview.resize", map[string]any{
		"session_id": c.opts.SessionID,
		"width":      width,
	})
}

// Browse applies the generic table helpers to the results table: a non-empty
// query filters rows, otherwise the requested page is shown when the page is
// paginated.
func (c *Controller) Browse(query string, page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.opts.Manifest.Page.Table
	if id == "" {
		return
	}
	if query != "" {
		tables.Filter(c.doc, id, query)
		return
	}
	if c.paginator != nil {
		c.paginator.ShowPage(page)
		return
	}
	tables.Filter(c.doc, id, "")
}
