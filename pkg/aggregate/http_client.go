package aggregate

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	overview "github.com/goliatone/go-overview/components/overview"
)

// StatusError reports a non-success HTTP status. Its message is "HTTP <code>".
type StatusError = overview.StatusError

const breakerName = "visao_geral"

// HTTPClient fetches the aggregate payload from the upstream API.
type HTTPClient struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[[]byte]
	path   string
	logger *zap.Logger
}

var _ overview.AggregateClient = (*HTTPClient)(nil)

// NewHTTPClient builds a client for cfg.BaseURL.
func NewHTTPClient(cfg ClientConfig, logger *zap.Logger) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("aggregate: base url is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	logger = logger.With(zap.String("upstream", cfg.BaseURL))
	return &HTTPClient{
		client: NewRestyClient(cfg),
		cb: NewCircuitBreaker[[]byte](breakerName, cfg.CB, func(from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		}),
		path:   cfg.Path,
		logger: logger,
	}, nil
}

// FetchAggregate implements overview.AggregateClient. Non-2xx responses are
// returned as *StatusError.
func (c *HTTPClient) FetchAggregate(ctx context.Context, query overview.Query) (overview.Aggregate, error) {
	body, err := c.cb.Execute(func() ([]byte, error) {
		req := c.client.R().SetContext(ctx)
		if query.Turma != "" {
			req.SetQueryParam("turma", query.Turma)
		}
		if query.OnlyCertified {
			req.SetQueryParam("only_certificados", "1")
		}
		resp, err := req.Get(c.path)
		if err != nil {
			return nil, err
		}
		if !resp.IsSuccess() {
			return nil, &StatusError{Code: resp.StatusCode(), Body: string(resp.Body())}
		}
		return resp.Body(), nil
	})
	if err != nil {
		c.logger.Warn("aggregate fetch failed",
			zap.String("turma", query.Turma),
			zap.String("state", c.cb.State().String()),
			zap.Error(err),
		)
		var status *StatusError
		if errors.As(err, &status) {
			return overview.Aggregate{}, status
		}
		return overview.Aggregate{}, fmt.Errorf("aggregate: fetch: %w", err)
	}

	agg, err := decodeAggregate(body)
	if err != nil {
		c.logger.Warn("aggregate payload rejected", zap.Error(err))
		return overview.Aggregate{}, err
	}
	c.logger.Debug("aggregate fetch completed",
		zap.String("turma", query.Turma),
		zap.Int("rows", len(agg.Rows)),
	)
	return agg, nil
}

// State reports the circuit breaker state.
func (c *HTTPClient) State() gobreaker.State {
	return c.cb.State()
}

func isBreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.Code < 500
	}
	return false
}
