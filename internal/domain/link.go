package domain

// LinkKind tags the observed shapes of link-valued source fields.
type LinkKind int

const (
	LinkNone LinkKind = iota
	// LinkPlain is a bare string value.
	LinkPlain
	// LinkExplicit is a structured value carrying its own URL field.
	LinkExplicit
	// LinkComposite is a structured value carrying a base URL plus a
	// server-relative path.
	LinkComposite
)

// LinkValue is the tagged normalization of a link-valued field. Source rows
// expose these under several duck-typed shapes; decoding always succeeds and
// yields LinkNone for anything unrecognized.
type LinkValue struct {
	Kind           LinkKind
	URL            string
	ServerURL      string
	ServerRelative string
}

func PlainLink(s string) LinkValue {
	if s == "" {
		return LinkValue{}
	}
	return LinkValue{Kind: LinkPlain, URL: s}
}

func ExplicitLink(u string) LinkValue {
	if u == "" {
		return LinkValue{}
	}
	return LinkValue{Kind: LinkExplicit, URL: u}
}

func CompositeLink(base, relative string) LinkValue {
	if base == "" || relative == "" {
		return LinkValue{}
	}
	return LinkValue{Kind: LinkComposite, ServerURL: base, ServerRelative: relative}
}

// DecodeLink converts a raw field value into a LinkValue. Explicit URL fields
// win over base+relative composites; several key casings are accepted because
// the upstream API is not consistent about them.
func DecodeLink(v any) LinkValue {
	switch value := v.(type) {
	case nil:
		return LinkValue{}
	case string:
		return PlainLink(value)
	case map[string]any:
		if u := stringField(value, "Url", "url", "URL"); u != "" {
			return ExplicitLink(u)
		}
		base := stringField(value, "ServerUrl", "serverUrl")
		relative := stringField(value, "ServerRelativeUrl", "serverRelativeUrl")
		return CompositeLink(base, relative)
	default:
		return LinkValue{}
	}
}

// Resolve flattens the variant to a single URL string. Total: unresolvable
// values yield "".
func (l LinkValue) Resolve() string {
	switch l.Kind {
	case LinkPlain, LinkExplicit:
		return l.URL
	case LinkComposite:
		return l.ServerURL + l.ServerRelative
	default:
		return ""
	}
}

func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
