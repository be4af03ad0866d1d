package data

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"forecast-dashboard/internal/model"
)

// DefaultEntsoeURL is the ENTSO-E transparency platform REST endpoint.
const DefaultEntsoeURL = "https://web-api.tp.entsoe.eu/api"

// PeriodLayout is the periodStart/periodEnd format, always in UTC.
const PeriodLayout = "200601021504"

// EntsoeClient fetches day-ahead prices as XML market documents.
type EntsoeClient struct {
	http    httpClient
	token   string
	domains *Domains
}

// NewEntsoeClient creates a day-ahead client. domains resolves country and
// dataset names; nil means the defaults.
func NewEntsoeClient(baseURL, token string, timeout time.Duration, domains *Domains) *EntsoeClient {
	if baseURL == "" {
		baseURL = DefaultEntsoeURL
	}
	if domains == nil {
		domains = NewDomains(nil, nil)
	}
	return &EntsoeClient{
		http:    newHTTPClient(string(model.SourceDayAhead), baseURL, timeout),
		token:   token,
		domains: domains,
	}
}

// DayAheadQuery selects a market document.
type DayAheadQuery struct {
	Country string // e.g. "BE"
	Dataset string // e.g. "dayaheadprices"
	Window  Window
}

// Fetch downloads and decodes the document for q.
func (c *EntsoeClient) Fetch(ctx context.Context, q DayAheadQuery) (model.DayAheadDocument, error) {
	if c.token == "" {
		return model.DayAheadDocument{}, fmt.Errorf("%s: %w", model.SourceDayAhead, ErrMissingAPIKey)
	}
	if err := q.Window.validate(); err != nil {
		return model.DayAheadDocument{}, err
	}
	zone, docType, err := c.domains.Resolve(q.Country, q.Dataset)
	if err != nil {
		return model.DayAheadDocument{}, err
	}

	params := url.Values{}
	params.Set("documentType", docType)
	params.Set("in_Domain", zone)
	params.Set("out_Domain", zone)
	params.Set("periodStart", FormatPeriod(q.Window.Start))
	params.Set("periodEnd", FormatPeriod(q.Window.End))
	params.Set("securityToken", c.token)

	body, err := c.http.get(ctx, params, map[string]string{"Accept": "application/xml"})
	if err != nil {
		return model.DayAheadDocument{}, err
	}
	return DecodeDayAhead(body)
}

// FormatPeriod renders t as yyyyMMddHHmm in UTC.
func FormatPeriod(t time.Time) string {
	return t.UTC().Format(PeriodLayout)
}

type xmlPublication struct {
	XMLName    xml.Name        `xml:"Publication_MarketDocument"`
	TimeSeries []xmlTimeSeries `xml:"TimeSeries"`
}

type xmlTimeSeries struct {
	Periods []xmlPeriod `xml:"Period"`
}

type xmlPeriod struct {
	Start      string     `xml:"timeInterval>start"`
	End        string     `xml:"timeInterval>end"`
	Resolution string     `xml:"resolution"`
	Points     []xmlPoint `xml:"Point"`
}

type xmlPoint struct {
	Position string `xml:"position"`
	Price    string `xml:"price.amount"`
}

type xmlAcknowledgement struct {
	Reasons []struct {
		Code string `xml:"code"`
		Text string `xml:"text"`
	} `xml:"Reason"`
}

// DecodeDayAhead turns a Publication_MarketDocument into a flat document with
// one series per Period. An Acknowledgement_MarketDocument (ENTSO-E's "no
// data" answer) or any non-XML body yields ErrInvalidUpstreamPayload.
func DecodeDayAhead(body []byte) (model.DayAheadDocument, error) {
	root, err := rootElement(body)
	if err != nil {
		return model.DayAheadDocument{}, fmt.Errorf("%w: day-ahead: %v", ErrInvalidUpstreamPayload, err)
	}

	switch root {
	case "Publication_MarketDocument":
	case "Acknowledgement_MarketDocument":
		var ack xmlAcknowledgement
		_ = xml.Unmarshal(body, &ack)
		reasons := make([]string, 0, len(ack.Reasons))
		for _, r := range ack.Reasons {
			reasons = append(reasons, strings.TrimSpace(r.Code+" "+r.Text))
		}
		return model.DayAheadDocument{}, fmt.Errorf("%w: day-ahead: acknowledgement: %s",
			ErrInvalidUpstreamPayload, strings.Join(reasons, "; "))
	default:
		return model.DayAheadDocument{}, fmt.Errorf("%w: day-ahead: unexpected root element %q",
			ErrInvalidUpstreamPayload, root)
	}

	var pub xmlPublication
	if err := xml.Unmarshal(body, &pub); err != nil {
		return model.DayAheadDocument{}, fmt.Errorf("%w: day-ahead: %v", ErrInvalidUpstreamPayload, err)
	}

	doc := model.DayAheadDocument{Series: []model.DayAheadSeries{}}
	for _, ts := range pub.TimeSeries {
		for _, p := range ts.Periods {
			s := model.DayAheadSeries{
				Start:      strings.TrimSpace(p.Start),
				End:        strings.TrimSpace(p.End),
				Resolution: strings.TrimSpace(p.Resolution),
				Points:     make([]model.DayAheadPosition, 0, len(p.Points)),
			}
			for _, pt := range p.Points {
				s.Points = append(s.Points, model.DayAheadPosition{
					Position: strings.TrimSpace(pt.Position),
					Price:    strings.TrimSpace(pt.Price),
				})
			}
			doc.Series = append(doc.Series, s)
		}
	}
	return doc, nil
}

func rootElement(body []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name.Local, nil
		}
	}
}
