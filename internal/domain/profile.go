package domain

// Profile is the canonical post-mapping record for one directory member.
// Optional fields use the empty string as "absent". IdentityKey is transient:
// it only drives the identity-photo strategy and is never serialized outward.
type Profile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	HireDate    string `json:"hireDate,omitempty"`
	Birthday    string `json:"birthday,omitempty"`
	CompanyURL  string `json:"companyUrl,omitempty"`
	LinkedInURL string `json:"linkedInUrl,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty"`
	DetailsHTML string `json:"detailsHtml,omitempty"`
	IdentityKey string `json:"-"`
}

// HasPhoto reports whether the profile carries a usable library photo URL.
func (p Profile) HasPhoto() bool {
	return p.PhotoURL != ""
}

// ListInfo describes one selectable list on the upstream site.
type ListInfo struct {
	ID           string `json:"Id"`
	Title        string `json:"Title"`
	BaseTemplate int    `json:"BaseTemplate"`
	Hidden       bool   `json:"Hidden"`
}

// ListOption is a (key, text) pair for the source-selection setup UI.
type ListOption struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}
