// Package hubspot provides a client for the HubSpot CRM companies API,
// covering the five operations the parent/child sync needs: list,
// search, patch, create, and batch associate.
package hubspot

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/LiamTF/hubsync/internal/transport"
	"github.com/LiamTF/hubsync/pkg/errors"
	"github.com/LiamTF/hubsync/pkg/logging"
)

// DefaultBaseURL is the production HubSpot API host.
const DefaultBaseURL = "https://api.hubapi.com"

const (
	companiesPath    = "/crm/v3/objects/companies"
	associationsPath = "/crm/v4/associations/companies/companies/batch/create"
)

// Per-operation wait budgets. The unfiltered list call intentionally
// carries none: it uses whatever bound the caller's context imposes.
const (
	searchTimeout    = 10 * time.Second
	createTimeout    = 10 * time.Second
	updateTimeout    = 30 * time.Second
	associateTimeout = 30 * time.Second
)

// HubSpot-defined association type ids for the company parent/child
// relationship.
const (
	associationParentToChild = 13
	associationChildToParent = 14
)

// Client issues request/response calls against the HubSpot companies
// API. It closes over the bearer credential and holds no other state;
// every call is independent.
type Client struct {
	baseURL   string
	transport *transport.Client
	logger    *zerolog.Logger
}

// New creates a client for the given access token.
func New(accessToken string, opts ...Option) *Client {
	s := &settings{
		baseURL: DefaultBaseURL,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	tc := transport.New(&transport.BearerAuth{Token: accessToken}, s.observer)
	if s.http != nil {
		tc.SetHTTPClient(s.http)
	}

	return &Client{
		baseURL:   strings.TrimSuffix(s.baseURL, "/"),
		transport: tc,
		logger:    s.logger,
	}
}

// Wire formats for the companies and associations endpoints.

type resultsResponse struct {
	Results []Company `json:"results"`
}

type searchRequest struct {
	FilterGroups []filterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties"`
}

type filterGroup struct {
	Filters []searchFilter `json:"filters"`
}

type searchFilter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type propertiesPayload struct {
	Properties map[string]string `json:"properties"`
}

type associationBatch struct {
	Inputs []associationInput `json:"inputs"`
}

type associationInput struct {
	From                objectRef `json:"from"`
	To                  objectRef `json:"to"`
	AssociationCategory string    `json:"associationCategory"`
	AssociationTypeID   int       `json:"associationTypeId"`
}

type objectRef struct {
	ID string `json:"id"`
}

// ListChildren fetches all companies and filters for the ones whose
// client_parent_company_id matches the given location id. The remote
// collection is read as a single unpaginated page; if the full
// collection exceeds the API's page limit this undercounts children.
// That is a known limitation, kept deliberately.
func (c *Client) ListChildren(ctx context.Context, locationID string) ([]Company, error) {
	url := c.baseURL + companiesPath
	resp, err := c.transport.Get(ctx, "fetch child companies", url, map[string]string{
		"properties": PropertyParentCompanyID + "," + PropertyName,
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &errors.FetchError{
			Resource:   "child companies",
			Endpoint:   url,
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		}
	}

	var result resultsResponse
	if err := resp.Decode(&result); err != nil {
		return nil, err
	}

	children := make([]Company, 0, len(result.Results))
	for _, company := range result.Results {
		if company.Property(PropertyParentCompanyID) == locationID {
			children = append(children, company)
		}
	}
	return children, nil
}

// FindParent searches for the parent company keyed by the given
// location id. The result set must have zero or one entries; more is a
// hard integrity violation in the remote data. Absence returns
// (nil, nil).
func (c *Client) FindParent(ctx context.Context, locationID string) (*Company, error) {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	url := c.baseURL + companiesPath + "/search"
	payload := searchRequest{
		FilterGroups: []filterGroup{{
			Filters: []searchFilter{{
				PropertyName: PropertyLocationID,
				Operator:     "EQ",
				Value:        locationID,
			}},
		}},
		Properties: []string{PropertyLocationID, PropertyName, PropertyImportedName},
	}

	resp, err := c.transport.PostJSON(ctx, "search parent company", url, payload)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &errors.FetchError{
			Resource:   "parent company",
			Endpoint:   url,
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		}
	}

	var result resultsResponse
	if err := resp.Decode(&result); err != nil {
		return nil, err
	}

	if len(result.Results) > 1 {
		return nil, &errors.IntegrityError{LocationID: locationID, Count: len(result.Results)}
	}
	if len(result.Results) == 0 {
		return nil, nil
	}
	return &result.Results[0], nil
}

// RenameParent patches the parent's name to the imported name. When
// the imported name is empty or all whitespace the call is skipped
// entirely with a warning: blank import data must never overwrite a
// real name. A skip returns (nil, nil) and issues no remote call.
func (c *Client) RenameParent(ctx context.Context, companyID, importedName string) (*Company, error) {
	if strings.TrimSpace(importedName) == "" {
		c.logger.Warn().
			Str("company_id", companyID).
			Msg("Imported Company Name is empty; skipping update")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()

	url := c.baseURL + companiesPath + "/" + companyID
	payload := propertiesPayload{Properties: map[string]string{PropertyName: importedName}}

	resp, err := c.transport.PatchJSON(ctx, "update parent company", url, payload)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &errors.UpdateError{
			CompanyID:  companyID,
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		}
	}

	var updated Company
	if err := resp.Decode(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// CreateParent creates a new parent company for the location id,
// deriving its name from the first seed child ("<child name> - Parent").
// At least one seed child is required; without one there is nothing to
// infer a name from and no remote call is made. Creation success is
// status 201 exactly.
func (c *Client) CreateParent(ctx context.Context, locationID string, seedChildren []Company) (*Company, error) {
	if len(seedChildren) == 0 {
		return nil, &errors.PreconditionError{LocationID: locationID}
	}

	name := seedChildren[0].Property(PropertyName)
	if name == "" {
		name = UnnamedCompany
	}
	name += " - Parent"

	ctx, cancel := context.WithTimeout(ctx, createTimeout)
	defer cancel()

	url := c.baseURL + companiesPath
	payload := propertiesPayload{Properties: map[string]string{
		PropertyName:       name,
		PropertyLocationID: locationID,
	}}

	resp, err := c.transport.PostJSON(ctx, "create parent company", url, payload)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, &errors.CreateError{
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		}
	}

	var created Company
	if err := resp.Decode(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Associate creates both directed parent/child association edges in a
// single batch call: type 13 (parent to child) and type 14 (child to
// parent). Success is status 201 exactly. Existing edges are not
// checked; dedup of repeated runs is left to the CRM.
func (c *Client) Associate(ctx context.Context, childID, parentID string) error {
	ctx, cancel := context.WithTimeout(ctx, associateTimeout)
	defer cancel()

	url := c.baseURL + associationsPath
	payload := associationBatch{
		Inputs: []associationInput{
			{
				From:                objectRef{ID: parentID},
				To:                  objectRef{ID: childID},
				AssociationCategory: "HUBSPOT_DEFINED",
				AssociationTypeID:   associationParentToChild,
			},
			{
				From:                objectRef{ID: childID},
				To:                  objectRef{ID: parentID},
				AssociationCategory: "HUBSPOT_DEFINED",
				AssociationTypeID:   associationChildToParent,
			},
		},
	}

	resp, err := c.transport.PostJSON(ctx, "associate child to parent", url, payload)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusCreated {
		return &errors.AssociationError{
			ChildID:    childID,
			ParentID:   parentID,
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		}
	}
	return nil
}
