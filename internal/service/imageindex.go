package service

import (
	"strings"

	"github.com/kapu/member-directory-go/internal/util"
)

// Secondary-library projection fields.
const (
	FieldFileName = "FileLeafRef"
	FieldFileRef  = "FileRef"
	FieldImgTitle = "ImageTitle"
)

// ImageFields is the projection requested from the secondary image library.
var ImageFields = []string{FieldID, FieldTitle, FieldFileName, FieldFileRef, FieldImgTitle}

// BuildImageIndex scans the image library rows and maps normalized keys to
// absolute URLs. Each row contributes up to two keys: one from its title and
// one from its file name with the extension stripped, so either spelling of a
// person's name can match. First writer wins on key collision.
func BuildImageIndex(rows []map[string]any, siteURL string) map[string]string {
	root := siteRoot(siteURL)
	index := make(map[string]string, len(rows)*2)

	for _, row := range rows {
		fileRef := shapeField(row, FieldFileRef)
		if fileRef == "" {
			continue
		}
		absolute := fileRef
		if !hasScheme(fileRef) {
			absolute = root + fileRef
		}

		title := shapeField(row, FieldImgTitle)
		if title == "" {
			title = shapeField(row, FieldTitle)
		}

		for _, key := range []string{
			util.NormalizeKey(title),
			util.FileKey(shapeField(row, FieldFileName)),
		} {
			if key == "" {
				continue
			}
			if _, exists := index[key]; exists {
				continue
			}
			index[key] = absolute
		}
	}

	return index
}

func hasScheme(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// siteRoot strips the server-relative suffix from an absolute site URL,
// leaving the tenant root that server-relative file refs resolve against.
func siteRoot(siteURL string) string {
	return OriginOf(siteURL)
}
