// Package chat issues drug-information queries against the MedAssist
// service and prepares the answers for display. Capture transcripts and
// typed text go through the same path.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DrugInfo is the structured record the service returns for a known drug.
type DrugInfo struct {
	GenericName  string `json:"generic_name"`
	BrandName    string `json:"brand_name"`
	Manufacturer string `json:"manufacturer"`
	Indications  string `json:"indications"`
	Dosage       string `json:"dosage"`
	Warnings     string `json:"warnings"`
	SideEffects  string `json:"side_effects"`
}

// Response is the service's answer to one query. Message is always set:
// a headline on success ("Here's information about..."), the explanation
// on a miss.
type Response struct {
	Success  bool      `json:"success"`
	DrugInfo *DrugInfo `json:"drug_info,omitempty"`
	Source   string    `json:"source,omitempty"`
	Message  string    `json:"message"`
}

type queryRequest struct {
	DrugName string `json:"drug_name"`
	Language string `json:"language"`
}

// Client is the HTTP client for the drug-information endpoint.
type Client struct {
	http    *http.Client
	baseURL string
}

func NewClient(baseURL string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Query looks up one drug. A Response with Success false is not an error;
// errors mean the service could not be reached or answered garbage.
func (c *Client) Query(ctx context.Context, drug, lang string) (*Response, error) {
	body, err := json.Marshal(queryRequest{DrugName: drug, Language: lang})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/get-drug-info", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query drug info: %w", err)
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("drug info response %d: %w", resp.StatusCode, err)
	}
	return &out, nil
}
