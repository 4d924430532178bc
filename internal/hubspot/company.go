package hubspot

// Company property names used by the parent/child sync.
const (
	// PropertyName is the company display name.
	PropertyName = "name"

	// PropertyParentCompanyID tags a child company with the location id
	// of its parent.
	PropertyParentCompanyID = "client_parent_company_id"

	// PropertyLocationID is the parent company's own location-id key.
	PropertyLocationID = "client_company_location_id"

	// PropertyImportedName is a staging field written by an external
	// import process and consumed here to refresh the parent's name.
	PropertyImportedName = "imported_company_name"
)

// UnnamedCompany is the placeholder used when a seed child has no name.
const UnnamedCompany = "Unnamed Company"

// Company is a CRM company record: an id plus a flat property bag.
// Records are read fresh from the remote system on every run and never
// cached beyond a single invocation.
type Company struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

// Property returns the named property, or the empty string when the
// property bag is nil or the key is absent.
func (c *Company) Property(name string) string {
	if c == nil || c.Properties == nil {
		return ""
	}
	return c.Properties[name]
}
