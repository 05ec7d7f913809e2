package aggregate

import (
	"bytes"
	"encoding/json"
	"strconv"

	overview "github.com/goliatone/go-overview/components/overview"
)

// flexString accepts JSON strings, numbers and null.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*s = flexString(value)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}
	*s = flexString(number.String())
	return nil
}

type seriesPoint struct {
	Label flexString `json:"label"`
	Value float64    `json:"value"`
}

type rowPayload struct {
	DDZ       flexString `json:"ddz"`
	Escola    flexString `json:"escola"`
	Professor flexString `json:"professor"`
	Ano       flexString `json:"ano"`
	Turma     flexString `json:"turma"`
	HasCert   bool       `json:"has_cert"`
	CertID    flexString `json:"cert_id"`
	Status    flexString `json:"status"`
}

type aggregateResponse struct {
	PorDDZ    []seriesPoint `json:"por_ddz"`
	PorEscola []seriesPoint `json:"por_escola"`
	PorAno    []seriesPoint `json:"por_ano"`
	Rows      []rowPayload  `json:"rows"`
}

func (r aggregateResponse) toAggregate() overview.Aggregate {
	rows := make([]overview.Row, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = overview.Row{
			DDZ:       string(row.DDZ),
			Escola:    string(row.Escola),
			Professor: string(row.Professor),
			Ano:       string(row.Ano),
			Turma:     string(row.Turma),
			HasCert:   row.HasCert,
			CertID:    string(row.CertID),
			Status:    string(row.Status),
		}
	}
	return overview.Aggregate{
		PorDDZ:    toSeries(r.PorDDZ),
		PorEscola: toSeries(r.PorEscola),
		PorAno:    toSeries(r.PorAno),
		Rows:      rows,
	}
}

func toSeries(points []seriesPoint) []overview.SeriesPoint {
	out := make([]overview.SeriesPoint, len(points))
	for i, p := range points {
		out[i] = overview.SeriesPoint{Label: string(p.Label), Value: p.Value}
	}
	return out
}

// decodeAggregate validates body against the payload schema and converts it.
func decodeAggregate(body []byte) (overview.Aggregate, error) {
	if err := validatePayload(body); err != nil {
		return overview.Aggregate{}, err
	}
	var resp aggregateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return overview.Aggregate{}, &DecodeError{Err: err}
	}
	return resp.toAggregate(), nil
}

// DecodeError reports a payload that could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "aggregate: decode response: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

func queryKey(q overview.Query) string {
	return q.Turma + "|" + strconv.FormatBool(q.OnlyCertified)
}
