package service

import (
	"github.com/kapu/member-directory-go/internal/domain"
	"github.com/kapu/member-directory-go/internal/util"
)

// MergeProfiles joins the profile collection against the image index by
// normalized name, backfilling a photo URL only where the profile lacks one.
// The result has the same length and order as the input; inputs are never
// mutated (downstream view code memoizes by identity).
func MergeProfiles(profiles []domain.Profile, index map[string]string) []domain.Profile {
	merged := make([]domain.Profile, len(profiles))
	for i, p := range profiles {
		if !p.HasPhoto() {
			if url, ok := index[util.NormalizeKey(p.Name)]; ok {
				p.PhotoURL = url
			}
		}
		merged[i] = p
	}
	return merged
}
