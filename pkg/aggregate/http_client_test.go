package aggregate

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	overview "github.com/goliatone/go-overview/components/overview"
)

const (
	testBaseURL  = "https://escola.example.com"
	testEndpoint = testBaseURL + DefaultPath
)

func newTestClient(t *testing.T) *HTTPClient {
	t.Helper()
	client, err := NewHTTPClient(ClientConfig{
		BaseURL: testBaseURL,
		Timeout: 5 * time.Second,
		CB: CBConfig{
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      time.Minute,
			FailureRatio: 0.6,
			MinRequests:  3,
		},
	}, zap.NewNop())
	require.NoError(t, err)
	httpmock.ActivateNonDefault(client.client.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func samplePayload() map[string]any {
	return map[string]any{
		"por_ddz":    []map[string]any{{"label": "Norte", "value": 1}},
		"por_escola": []map[string]any{{"label": "E1", "value": 1}},
		"por_ano":    []map[string]any{{"label": "2025", "value": 1}},
		"rows": []map[string]any{{
			"ddz": "Norte", "escola": "E1", "professor": "Ana",
			"ano": 2025, "turma": "1/2025", "has_cert": true,
			"cert_id": 42, "status": "CERTIFICADO",
		}},
	}
}

func TestHTTPClientFetchAggregate(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, testEndpoint,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, samplePayload()))

	agg, err := client.FetchAggregate(context.Background(), overview.Query{})
	require.NoError(t, err)
	require.Len(t, agg.Rows, 1)
	assert.Equal(t, "2025", agg.Rows[0].Ano)
	assert.Equal(t, "42", agg.Rows[0].CertID)
	assert.Equal(t, "CERTIFICADO", agg.Rows[0].Status)
	assert.True(t, agg.Rows[0].HasCert)
	assert.Equal(t, []overview.SeriesPoint{{Label: "2025", Value: 1}}, agg.PorAno)
}

func TestHTTPClientSendsFilters(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponderWithQuery(http.MethodGet, testEndpoint,
		map[string]string{"turma": "1/2025", "only_certificados": "1"},
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{"rows": []any{}}))

	agg, err := client.FetchAggregate(context.Background(), overview.Query{Turma: "1/2025", OnlyCertified: true})
	require.NoError(t, err)
	assert.Empty(t, agg.Rows)
	assert.Empty(t, agg.PorDDZ)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestHTTPClientStatusError(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, testEndpoint,
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

	_, err := client.FetchAggregate(context.Background(), overview.Query{})
	require.Error(t, err)
	assert.Equal(t, "HTTP 500", err.Error())

	var status *StatusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, "boom", status.Body)
}

func TestHTTPClientRejectsInvalidPayload(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, testEndpoint,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"por_ddz": []map[string]any{{"label": "Norte", "value": "many"}},
		}))

	_, err := client.FetchAggregate(context.Background(), overview.Query{})
	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestHTTPClientBreakerOpensOnServerErrors(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, testEndpoint,
		httpmock.NewStringResponder(http.StatusBadGateway, ""))

	for range 3 {
		_, err := client.FetchAggregate(context.Background(), overview.Query{})
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, client.State())

	_, err := client.FetchAggregate(context.Background(), overview.Query{})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, httpmock.GetTotalCallCount())
}

func TestHTTPClientBreakerIgnoresClientErrors(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodGet, testEndpoint,
		httpmock.NewStringResponder(http.StatusNotFound, ""))

	for range 5 {
		_, err := client.FetchAggregate(context.Background(), overview.Query{})
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateClosed, client.State())
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPClient(ClientConfig{}, nil)
	assert.Error(t, err)
}
