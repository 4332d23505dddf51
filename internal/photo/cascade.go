package photo

import (
	"math"

	"github.com/kapu/member-directory-go/internal/constants"
)

// Strategy indexes the fixed, ordered fallback chain. Later strategies are
// progressively lower-fidelity; the order must not change.
type Strategy int

const (
	// StrategyIdentity asks the host's account-photo service.
	StrategyIdentity Strategy = iota
	// StrategyRendition requests a sized crop of the raw asset.
	StrategyRendition
	// StrategyRaw uses the unmodified asset URL; some endpoints reject
	// resize parameters.
	StrategyRaw
	// StrategyPreview goes through the legacy preview handler.
	StrategyPreview
	// StrategyExhausted is terminal: render the initials placeholder and
	// never retry.
	StrategyExhausted
)

// Record carries the photo-relevant identity of one displayed item.
type Record struct {
	ID          string
	Name        string
	RawURL      string
	IdentityKey string
}

// Surface describes the display slot a resolver serves: the grid avatar and
// the detail portrait request very different rendition sizes.
type Surface struct {
	SiteBase string
	CSSPx    int
	DPR      float64
	Detail   bool
}

// SourceSet is a 1x/2x candidate pair so the rendering surface can pick
// whichever matches its layer's actual scale.
type SourceSet struct {
	Src   string  `json:"src,omitempty"`
	Src2x string  `json:"src2x,omitempty"`
	Scale float64 `json:"scale"`
}

// Resolver is the per-item image resolution state machine. One resolver per
// rendered card (and one per open detail view); nothing is shared across
// items. A failure callback advances the strategy index by one and recomputes
// the candidate; strategies the record cannot satisfy are skipped. Success
// leaves the state untouched.
type Resolver struct {
	record    Record
	surface   Surface
	strategy  Strategy
	candidate string
}

func NewResolver(record Record, surface Surface) *Resolver {
	if surface.CSSPx <= 0 {
		surface.CSSPx = constants.PhotoConfig.AvatarCSSPx
	}
	if surface.DPR <= 0 {
		surface.DPR = 1
	}

	r := &Resolver{record: record, surface: surface}
	r.reset()
	return r
}

// Bind points the resolver at a (possibly different) record. The cascade
// resets to strategy zero when the record's identity or raw asset reference
// changes, even if the new record's URL happens to equal the previous one
// under a different identity. This guards against a stale photo surviving a
// list re-render that put different data at the same screen position.
func (r *Resolver) Bind(record Record) {
	if record.ID == r.record.ID && record.RawURL == r.record.RawURL {
		return
	}
	r.record = record
	r.reset()
}

// Fail advances the cascade after an image-load failure. Once exhausted,
// further failures are no-ops.
func (r *Resolver) Fail() {
	if r.strategy >= StrategyExhausted {
		return
	}
	r.strategy++
	r.settle()
}

// Candidate returns the URL to attempt, or "" once every strategy is spent.
func (r *Resolver) Candidate() string {
	return r.candidate
}

func (r *Resolver) Strategy() Strategy {
	return r.strategy
}

// Exhausted reports the terminal placeholder state.
func (r *Resolver) Exhausted() bool {
	return r.strategy >= StrategyExhausted
}

// Sources returns DPR-aware 1x/2x candidates for the current strategy. Only
// the sized strategies produce a distinct 2x; identity and raw URLs are
// returned as-is.
func (r *Resolver) Sources() SourceSet {
	scale := effectiveDPR(r.surface.DPR, constants.PhotoConfig.AvatarDPRCap)
	set := SourceSet{Src: r.candidate, Scale: scale}

	px1 := r.surface.CSSPx
	px2 := int(math.Round(float64(px1) * scale))

	switch r.strategy {
	case StrategyRendition:
		set.Src = Rendition(r.record.RawURL, px1, px1)
		if px2 != px1 {
			set.Src2x = Rendition(r.record.RawURL, px2, px2)
		}
	case StrategyPreview:
		set.Src = Preview(r.surface.SiteBase, r.record.RawURL, px1, px1)
		if px2 != px1 {
			set.Src2x = Preview(r.surface.SiteBase, r.record.RawURL, px2, px2)
		}
	}
	return set
}

func (r *Resolver) reset() {
	r.strategy = StrategyIdentity
	r.settle()
}

// settle walks forward from the current strategy to the first one the record
// can satisfy and fixes the candidate URL.
func (r *Resolver) settle() {
	for r.strategy < StrategyExhausted {
		if url := r.build(r.strategy); url != "" {
			r.candidate = url
			return
		}
		r.strategy++
	}
	r.candidate = ""
}

func (r *Resolver) build(s Strategy) string {
	switch s {
	case StrategyIdentity:
		return IdentityPhotoURL(r.surface.SiteBase, r.record.IdentityKey, r.tier())
	case StrategyRendition:
		px := r.targetPx()
		return Rendition(r.record.RawURL, px, px)
	case StrategyRaw:
		return r.record.RawURL
	case StrategyPreview:
		px := r.targetPx()
		return Preview(r.surface.SiteBase, r.record.RawURL, px, px)
	default:
		return ""
	}
}

func (r *Resolver) tier() SizeTier {
	if r.surface.Detail {
		return SizeLarge
	}
	return SizeMedium
}

// targetPx scales the requested rendition with the device pixel ratio so
// high-density displays get a correspondingly larger crop without inflating
// low-density payloads. The detail portrait requests a fixed large rendition
// to stay sharp when enlarged.
func (r *Resolver) targetPx() int {
	if r.surface.Detail {
		return constants.PhotoConfig.DetailPx
	}
	scale := effectiveDPR(r.surface.DPR, constants.PhotoConfig.AvatarDPRCap)
	return int(math.Round(float64(r.surface.CSSPx) * scale))
}

func effectiveDPR(dpr, limit float64) float64 {
	if dpr < 1 {
		dpr = 1
	}
	scaled := math.Ceil(dpr)
	if scaled > constants.PhotoConfig.MaxDPR {
		scaled = constants.PhotoConfig.MaxDPR
	}
	if scaled > limit {
		scaled = limit
	}
	return scaled
}
