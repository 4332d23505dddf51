package photo

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kapu/member-directory-go/internal/constants"
)

// SizeTier selects the identity-photo service rendition size.
type SizeTier string

const (
	SizeSmall  SizeTier = "S"
	SizeMedium SizeTier = "M"
	SizeLarge  SizeTier = "L"
)

// IdentityPhotoURL builds a URL to the host's account-photo endpoint. The
// endpoint degrades to a generic silhouette server-side, which is why this
// strategy is tried first.
func IdentityPhotoURL(siteBase, identityKey string, tier SizeTier) string {
	if identityKey == "" {
		return ""
	}
	base := strings.TrimSuffix(siteBase, "/")
	return fmt.Sprintf("%s%s?size=%s&accountname=%s",
		base, constants.PhotoConfig.IdentityPhotoPath, tier, url.QueryEscape(identityKey))
}

// Rendition appends width/height/crop parameters to a raw asset URL. Falls
// back to naive string concatenation when the URL does not parse; some list
// attachments carry characters net/url rejects.
func Rendition(rawURL string, w, h int) string {
	if rawURL == "" {
		return ""
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		return fmt.Sprintf("%s%swidth=%d&height=%d&mode=crop", rawURL, sep, w, h)
	}

	q := u.Query()
	q.Set("width", fmt.Sprintf("%d", w))
	q.Set("height", fmt.Sprintf("%d", h))
	q.Set("mode", "crop")
	u.RawQuery = q.Encode()
	return u.String()
}

// Preview builds a URL to the generic preview-generation handler, the last
// network-based attempt in the cascade.
func Preview(siteBase, rawURL string, w, h int) string {
	if rawURL == "" {
		return ""
	}
	base := strings.TrimSuffix(siteBase, "/")
	return fmt.Sprintf("%s%s?path=%s&width=%d&height=%d",
		base, constants.PhotoConfig.PreviewPath, url.QueryEscape(rawURL), w, h)
}
