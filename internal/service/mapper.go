package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kapu/member-directory-go/internal/domain"
	"github.com/kapu/member-directory-go/internal/util"
)

// Raw field names projected from the primary list. The image column's
// internal name is Image0 on the lists this was built for.
const (
	FieldID       = "Id"
	FieldTitle    = "Title"
	FieldRole     = "Role"
	FieldHireDate = "Hire_x0020_Date"
	FieldBirthday = "Birthday"
	FieldCompany  = "CompanyProfile"
	FieldLinkedIn = "LinkedIn"
	FieldImage    = "Image0"
	FieldAbout    = "About"
)

// ProfileFields is the projection requested from the primary source.
var ProfileFields = []string{
	FieldID, FieldTitle, FieldRole, FieldHireDate, FieldBirthday,
	FieldCompany, FieldLinkedIn, FieldImage, FieldAbout,
	"Modified", "Created",
}

// identityFields are probed in order for a UPN/login-ish identity key.
var identityFields = []string{
	"Email", "email", "Mail", "mail",
	"UserPrincipalName", "userPrincipalName", "UPN", "upn",
	"WorkEmail", "workEmail", "AccountName", "LoginName",
}

// Mapper converts raw heterogeneous source rows into canonical profiles.
// Every mapping rule is total: a field that cannot be parsed becomes its zero
// value and the record still renders.
type Mapper struct {
	origin string
}

// NewMapper builds a mapper resolving server-relative image paths against the
// origin of siteURL.
func NewMapper(siteURL string) *Mapper {
	return &Mapper{origin: OriginOf(siteURL)}
}

// MapProfile maps one raw row. Never fails.
func (m *Mapper) MapProfile(row map[string]any) domain.Profile {
	return domain.Profile{
		ID:          mapID(row[FieldID]),
		Name:        stringValue(row[FieldTitle]),
		Role:        stringValue(row[FieldRole]),
		HireDate:    mapDate(row[FieldHireDate]),
		Birthday:    mapDate(row[FieldBirthday]),
		CompanyURL:  domain.DecodeLink(row[FieldCompany]).Resolve(),
		LinkedInURL: domain.DecodeLink(row[FieldLinkedIn]).Resolve(),
		PhotoURL:    m.mapImage(row[FieldImage]),
		DetailsHTML: stringValue(row[FieldAbout]),
		IdentityKey: mapIdentity(row),
	}
}

// MapProfiles maps a whole page of rows, preserving order.
func (m *Mapper) MapProfiles(rows []map[string]any) []domain.Profile {
	profiles := make([]domain.Profile, len(rows))
	for i, row := range rows {
		profiles[i] = m.MapProfile(row)
	}
	return profiles
}

// mapImage resolves an image-valued field. On top of the link shapes the
// value may arrive JSON-encoded, as an array (first element wins), as a bare
// absolute URL, or as a server-relative path that needs the site origin.
func (m *Mapper) mapImage(v any) string {
	if v == nil {
		return ""
	}

	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return ""
		}
		v = arr[0]
	}

	if s, ok := v.(string); ok {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(s), &decoded); err == nil {
			return m.imageShapeURL(decoded)
		}
		lower := strings.ToLower(s)
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			return s
		}
		if strings.HasPrefix(s, "/") {
			return m.origin + s
		}
		return ""
	}

	if shape, ok := v.(map[string]any); ok {
		return m.imageShapeURL(shape)
	}
	return ""
}

// imageShapeURL probes a structured image payload: base+relative composite
// first, then an explicit URL, then a bare server-relative path, then a
// "path" field.
func (m *Mapper) imageShapeURL(shape map[string]any) string {
	if shape == nil {
		return ""
	}

	base := shapeField(shape, "serverUrl", "ServerUrl")
	relative := shapeField(shape, "serverRelativeUrl", "ServerRelativeUrl")
	if base != "" && relative != "" {
		return base + relative
	}
	if u := shapeField(shape, "Url", "url"); u != "" {
		return u
	}
	if relative != "" {
		return m.origin + relative
	}
	if path := shapeField(shape, "path"); path != "" {
		if strings.HasPrefix(path, "/") {
			return m.origin + path
		}
		return path
	}
	return ""
}

func shapeField(shape map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := shape[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// mapDate accepts a time.Time or a parseable date string and renders the
// display form. Anything else maps to "".
func mapDate(v any) string {
	switch value := v.(type) {
	case time.Time:
		return util.FormatDate(value)
	case string:
		if value == "" {
			return ""
		}
		if t, ok := util.ParseDate(value); ok {
			return util.FormatDate(t)
		}
		return ""
	default:
		return ""
	}
}

// mapIdentity extracts a UPN/email identity key from any likely field.
// Claims-encoded values ("i:0#.f|membership|user@tenant") keep the pipe-final
// segment.
func mapIdentity(row map[string]any) string {
	for _, field := range identityFields {
		s, ok := row[field].(string)
		if !ok || s == "" {
			continue
		}
		if idx := strings.LastIndex(s, "|"); idx >= 0 {
			s = s[idx+1:]
		}
		if s != "" {
			return s
		}
	}
	return ""
}

func mapID(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return fmt.Sprintf("%d", value)
	case int64:
		return fmt.Sprintf("%d", value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// OriginOf reduces an absolute site URL to its scheme+host origin. A site URL
// without a server-relative suffix is returned with its trailing slash
// trimmed.
func OriginOf(siteURL string) string {
	siteURL = strings.TrimSuffix(siteURL, "/")
	if siteURL == "" {
		return ""
	}

	rest := siteURL
	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+3:]
	} else {
		return siteURL
	}
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return siteURL[:len(siteURL)-len(rest)+idx]
	}
	return siteURL
}
