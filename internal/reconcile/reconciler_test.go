package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LiamTF/hubsync/internal/hubspot"
	pkgerrors "github.com/LiamTF/hubsync/pkg/errors"
)

// stubClient records every call and plays back canned results.
type stubClient struct {
	children   []hubspot.Company
	listErr    error
	parent     *hubspot.Company
	findErr    error
	renamed    *hubspot.Company
	renameErr  error
	created    *hubspot.Company
	createErr  error
	assocErrAt int // fail the Nth associate call (1-based), 0 = never

	renameCalls []string // imported names passed to RenameParent
	createCalls int
	assocCalls  [][2]string // (childID, parentID) pairs
}

func (s *stubClient) ListChildren(_ context.Context, _ string) ([]hubspot.Company, error) {
	return s.children, s.listErr
}

func (s *stubClient) FindParent(_ context.Context, _ string) (*hubspot.Company, error) {
	return s.parent, s.findErr
}

func (s *stubClient) RenameParent(_ context.Context, _, importedName string) (*hubspot.Company, error) {
	s.renameCalls = append(s.renameCalls, importedName)
	return s.renamed, s.renameErr
}

func (s *stubClient) CreateParent(_ context.Context, locationID string, seedChildren []hubspot.Company) (*hubspot.Company, error) {
	s.createCalls++
	if len(seedChildren) == 0 {
		return nil, &pkgerrors.PreconditionError{LocationID: locationID}
	}
	return s.created, s.createErr
}

func (s *stubClient) Associate(_ context.Context, childID, parentID string) error {
	s.assocCalls = append(s.assocCalls, [2]string{childID, parentID})
	if s.assocErrAt > 0 && len(s.assocCalls) == s.assocErrAt {
		return &pkgerrors.AssociationError{ChildID: childID, ParentID: parentID, StatusCode: 500, Body: "boom"}
	}
	return nil
}

func company(id string, props map[string]string) hubspot.Company {
	return hubspot.Company{ID: id, Properties: props}
}

func TestRunCreatesParentWhenAbsent(t *testing.T) {
	stub := &stubClient{
		children: []hubspot.Company{
			company("c1", map[string]string{"name": "Acme West"}),
			company("c2", map[string]string{"name": "Acme East"}),
		},
		created: &hubspot.Company{ID: "p9", Properties: map[string]string{"name": "Acme West - Parent"}},
	}

	parent, err := New(stub, nil).Run(context.Background(), "loc-1")
	require.NoError(t, err)
	assert.Equal(t, "p9", parent.ID)

	assert.Equal(t, 1, stub.createCalls)
	assert.Empty(t, stub.renameCalls, "create branch must never rename")
	assert.Equal(t, [][2]string{{"c1", "p9"}, {"c2", "p9"}}, stub.assocCalls)
}

func TestRunRenamesExistingParent(t *testing.T) {
	t.Run("imported name forwarded to rename", func(t *testing.T) {
		stub := &stubClient{
			children: []hubspot.Company{company("c1", map[string]string{"name": "Acme West"})},
			parent: &hubspot.Company{ID: "p1", Properties: map[string]string{
				"name":                  "Stale Name",
				"imported_company_name": "Fresh Name",
			}},
			renamed: &hubspot.Company{ID: "p1", Properties: map[string]string{"name": "Fresh Name"}},
		}

		parent, err := New(stub, nil).Run(context.Background(), "loc-1")
		require.NoError(t, err)

		assert.Zero(t, stub.createCalls, "existing parent must never trigger create")
		assert.Equal(t, []string{"Fresh Name"}, stub.renameCalls)
		assert.Equal(t, "Fresh Name", parent.Property(hubspot.PropertyName))
		assert.Equal(t, [][2]string{{"c1", "p1"}}, stub.assocCalls)
	})

	t.Run("skipped rename keeps the found parent", func(t *testing.T) {
		stub := &stubClient{
			parent: &hubspot.Company{ID: "p1", Properties: map[string]string{"name": "Real Name"}},
			// renamed stays nil: the blank guard skipped the write
		}

		parent, err := New(stub, nil).Run(context.Background(), "loc-1")
		require.NoError(t, err)

		assert.Equal(t, []string{""}, stub.renameCalls, "missing staging field defaults to empty string")
		assert.Equal(t, "Real Name", parent.Property(hubspot.PropertyName))
	})
}

func TestRunNoChildrenNoParent(t *testing.T) {
	stub := &stubClient{}

	_, err := New(stub, nil).Run(context.Background(), "loc-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsPrecondition(err))
	assert.Empty(t, stub.assocCalls)
}

func TestRunAbortsOnEarlyFailure(t *testing.T) {
	t.Run("list failure", func(t *testing.T) {
		stub := &stubClient{listErr: &pkgerrors.FetchError{Resource: "child companies", Body: "down"}}

		_, err := New(stub, nil).Run(context.Background(), "loc-1")
		assert.True(t, pkgerrors.IsRemoteFetch(err))
		assert.Zero(t, stub.createCalls)
		assert.Empty(t, stub.assocCalls)
	})

	t.Run("integrity failure from search", func(t *testing.T) {
		stub := &stubClient{
			children: []hubspot.Company{company("c1", nil)},
			findErr:  &pkgerrors.IntegrityError{LocationID: "loc-1", Count: 2},
		}

		_, err := New(stub, nil).Run(context.Background(), "loc-1")
		assert.True(t, pkgerrors.IsIntegrity(err))
		assert.Empty(t, stub.assocCalls)
	})
}

func TestRunFanOutAbortsMidway(t *testing.T) {
	// Third of five children fails; the first two associations were
	// already issued and stand, the last two are never attempted.
	stub := &stubClient{
		children: []hubspot.Company{
			company("c1", nil), company("c2", nil), company("c3", nil),
			company("c4", nil), company("c5", nil),
		},
		parent: &hubspot.Company{ID: "p1", Properties: map[string]string{"name": "Parent"}},

		assocErrAt: 3,
	}

	_, err := New(stub, nil).Run(context.Background(), "loc-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsRemoteAssociation(err))
	assert.Len(t, stub.assocCalls, 3)
}

// fakeHubSpot is a minimal in-memory companies API for wire-level tests.
type fakeHubSpot struct {
	mux        *http.ServeMux
	companies  []hubspot.Company
	nextID     int
	assocCalls []map[string]any
}

func newFakeHubSpot(companies []hubspot.Company) *fakeHubSpot {
	f := &fakeHubSpot{companies: companies, nextID: 100}
	f.mux = http.NewServeMux()

	f.mux.HandleFunc("GET /crm/v3/objects/companies", func(w http.ResponseWriter, r *http.Request) {
		writeResults(w, http.StatusOK, f.companies)
	})

	f.mux.HandleFunc("POST /crm/v3/objects/companies/search", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FilterGroups []struct {
				Filters []struct {
					PropertyName string `json:"propertyName"`
					Value        string `json:"value"`
				} `json:"filters"`
			} `json:"filterGroups"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		value := req.FilterGroups[0].Filters[0].Value

		var matches []hubspot.Company
		for _, c := range f.companies {
			if c.Property(hubspot.PropertyLocationID) == value {
				matches = append(matches, c)
			}
		}
		writeResults(w, http.StatusOK, matches)
	})

	f.mux.HandleFunc("POST /crm/v3/objects/companies", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Properties map[string]string `json:"properties"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		f.nextID++
		created := hubspot.Company{ID: fmt.Sprintf("%d", f.nextID), Properties: req.Properties}
		f.companies = append(f.companies, created)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	})

	f.mux.HandleFunc("POST /crm/v4/associations/companies/companies/batch/create", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		f.assocCalls = append(f.assocCalls, payload)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"status":"COMPLETE"}`))
	})

	return f
}

func writeResults(w http.ResponseWriter, status int, companies []hubspot.Company) {
	if companies == nil {
		companies = []hubspot.Company{}
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"results": companies})
}

func TestRunEndToEndFreshLocation(t *testing.T) {
	fake := newFakeHubSpot([]hubspot.Company{
		company("c1", map[string]string{"client_parent_company_id": "loc-1", "name": "Acme West"}),
		company("c2", map[string]string{"client_parent_company_id": "loc-1", "name": "Acme East"}),
		company("c3", map[string]string{"client_parent_company_id": "loc-2", "name": "Bystander"}),
	})
	server := httptest.NewServer(fake.mux)
	defer server.Close()

	client := hubspot.New("test-token", hubspot.WithBaseURL(server.URL))
	parent, err := New(client, nil).Run(context.Background(), "loc-1")
	require.NoError(t, err)

	assert.Equal(t, "Acme West - Parent", parent.Property(hubspot.PropertyName))
	assert.Equal(t, "loc-1", parent.Property(hubspot.PropertyLocationID))

	// Exactly one associate batch per child, each with both directed edges.
	require.Len(t, fake.assocCalls, 2)
	for i, childID := range []string{"c1", "c2"} {
		inputs := fake.assocCalls[i]["inputs"].([]any)
		require.Len(t, inputs, 2)

		first := inputs[0].(map[string]any)
		assert.Equal(t, parent.ID, first["from"].(map[string]any)["id"])
		assert.Equal(t, childID, first["to"].(map[string]any)["id"])
		assert.Equal(t, float64(13), first["associationTypeId"])

		second := inputs[1].(map[string]any)
		assert.Equal(t, childID, second["from"].(map[string]any)["id"])
		assert.Equal(t, parent.ID, second["to"].(map[string]any)["id"])
		assert.Equal(t, float64(14), second["associationTypeId"])
	}
}

func TestRunEndToEndSecondRunTakesRenameBranch(t *testing.T) {
	// The first run created a parent keyed by the location id, so an
	// immediate second run finds it and renames instead of creating.
	fake := newFakeHubSpot([]hubspot.Company{
		company("c1", map[string]string{"client_parent_company_id": "loc-1", "name": "Acme West"}),
	})
	server := httptest.NewServer(fake.mux)
	defer server.Close()

	client := hubspot.New("test-token", hubspot.WithBaseURL(server.URL))
	reconciler := New(client, nil)

	first, err := reconciler.Run(context.Background(), "loc-1")
	require.NoError(t, err)

	second, err := reconciler.Run(context.Background(), "loc-1")
	require.NoError(t, err)

	// Same parent, no second create; the rename was skipped because the
	// created parent has no imported name staged.
	assert.Equal(t, first.ID, second.ID)
	parents := 0
	for _, c := range fake.companies {
		if c.Property(hubspot.PropertyLocationID) == "loc-1" {
			parents++
		}
	}
	assert.Equal(t, 1, parents)
}
