package drugdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultFDABaseURL = "https://api.fda.gov"

// suspiciousNames flag label matches that are almost never what a
// drug-name query meant (topical solutions, excipients).
var suspiciousNames = []string{"povidone", "iodine", "sodium", "solution"}

// FDAClient queries the openFDA drug label API for drugs the embedded
// catalog does not cover.
type FDAClient struct {
	http    *http.Client
	baseURL string
}

// NewFDAClient returns a client for the given API root. An empty
// baseURL means the public openFDA endpoint.
func NewFDAClient(baseURL string) *FDAClient {
	if baseURL == "" {
		baseURL = defaultFDABaseURL
	}
	return &FDAClient{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Search looks a drug up by name: an exact generic-name query first,
// then broader generic-name and brand-name searches. Each hit is
// checked for relevance to the query before it is accepted. A nil
// record with nil error means the API had nothing relevant; an error
// means the API could not be asked.
func (c *FDAClient) Search(ctx context.Context, name string) (*Record, error) {
	queries := []string{
		fmt.Sprintf("openfda.generic_name.exact:%q", name),
		"openfda.generic_name:" + name,
		"openfda.brand_name:" + name,
	}

	var firstErr error
	for _, q := range queries {
		res, err := c.label(ctx, q)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if ctx.Err() != nil {
				return nil, firstErr
			}
			continue
		}
		if res == nil || !relevant(res, name) {
			continue
		}
		rec := res.record()
		return &rec, nil
	}
	return nil, firstErr
}

type fdaResponse struct {
	Results []fdaResult `json:"results"`
}

type fdaResult struct {
	OpenFDA struct {
		GenericName      []string `json:"generic_name"`
		BrandName        []string `json:"brand_name"`
		ManufacturerName []string `json:"manufacturer_name"`
		SubstanceName    []string `json:"substance_name"`
	} `json:"openfda"`
	IndicationsAndUsage     []string `json:"indications_and_usage"`
	DosageAndAdministration []string `json:"dosage_and_administration"`
	Warnings                []string `json:"warnings"`
	AdverseReactions        []string `json:"adverse_reactions"`
}

// label runs one drug/label search and returns the first result.
// openFDA answers 404 when a search matches nothing.
func (c *FDAClient) label(ctx context.Context, search string) (*fdaResult, error) {
	params := url.Values{}
	params.Set("search", search)
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/drug/label.json?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openfda: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openfda: status %d", resp.StatusCode)
	}

	var out fdaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("openfda: decode response: %w", err)
	}
	if len(out.Results) == 0 {
		return nil, nil
	}
	return &out.Results[0], nil
}

// relevant rejects label hits unrelated to the queried name. Broad
// searches happily return a match on any token, so some word of the
// query has to show up among the result's generic, brand or substance
// names, and the generic name must not be a known false friend.
func relevant(res *fdaResult, query string) bool {
	var b strings.Builder
	for _, group := range [][]string{res.OpenFDA.GenericName, res.OpenFDA.BrandName, res.OpenFDA.SubstanceName} {
		for _, n := range group {
			b.WriteString(strings.ToLower(n))
			b.WriteByte(' ')
		}
	}
	known := b.String()

	matched := false
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if len(word) > 2 && strings.Contains(known, word) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	generic := strings.ToLower(first(res.OpenFDA.GenericName, ""))
	for _, sus := range suspiciousNames {
		if strings.Contains(generic, sus) {
			return false
		}
	}
	return true
}

func (r *fdaResult) record() Record {
	return Record{
		GenericName:  first(r.OpenFDA.GenericName, "Unknown"),
		BrandName:    first(r.OpenFDA.BrandName, "N/A"),
		Manufacturer: first(r.OpenFDA.ManufacturerName, "N/A"),
		Indications:  first(r.IndicationsAndUsage, "No information available"),
		Dosage:       first(r.DosageAndAdministration, "No information available"),
		Warnings:     first(r.Warnings, "No warnings listed"),
		SideEffects:  first(r.AdverseReactions, "No side effects listed"),
	}
}

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
