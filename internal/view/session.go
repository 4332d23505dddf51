package view

import (
	"sync"

	"github.com/kapu/member-directory-go/internal/constants"
	"github.com/kapu/member-directory-go/internal/domain"
	"github.com/kapu/member-directory-go/internal/photo"
	"github.com/kapu/member-directory-go/internal/sanitize"
	"github.com/kapu/member-directory-go/internal/util"
	"go.uber.org/zap"
)

// Clients render the load error verbatim; keep it short.
const maxErrorRunes = 200

// Card is the view model for one grid entry.
type Card struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Role     string          `json:"role"`
	Initials string          `json:"initials"`
	Photo    photo.SourceSet `json:"photo"`
	// Placeholder is set once the card's cascade is exhausted; the client
	// renders the initials glyph and must not retry.
	Placeholder bool `json:"placeholder"`
}

// Detail is the view model for the open overlay.
type Detail struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Role        string          `json:"role"`
	HireDate    string          `json:"hireDate,omitempty"`
	Birthday    string          `json:"birthday,omitempty"`
	CompanyURL  string          `json:"companyUrl,omitempty"`
	LinkedInURL string          `json:"linkedInUrl,omitempty"`
	DetailsHTML string          `json:"detailsHtml,omitempty"`
	Photo       photo.SourceSet `json:"photo"`
	Initials    string          `json:"initials"`
	Placeholder bool            `json:"placeholder"`
}

// State is the full render contract pushed to a client after every event.
type State struct {
	Title        string  `json:"title"`
	Subtitle     string  `json:"subtitle"`
	Accent       string  `json:"accent"`
	Loading      bool    `json:"loading"`
	Error        string  `json:"error,omitempty"`
	Query        Query   `json:"query"`
	Limit        int     `json:"limit"`
	Total        int     `json:"total"`
	Cards        []Card  `json:"cards"`
	Detail       *Detail `json:"detail,omitempty"`
	ScrollLocked bool    `json:"scrollLocked"`
}

// Options carries the pass-through presentation settings.
type Options struct {
	SiteBase string
	Title    string
	Subtitle string
	Accent   string
	Limit    int
	DPR      float64
}

// Session is the explicit state machine behind one connected view: the
// merged collection, the two search slots, the item cap, the selection, and
// one photo resolver per visible card plus one for the open detail view.
// All state is rebuilt from the source reads; nothing is persisted.
type Session struct {
	mu sync.Mutex

	opts  Options
	items []domain.Profile

	query Query
	limit int

	loading    bool
	loadErr    string
	generation uint64

	selectedID     string
	scrollLocked   bool
	cardResolvers  map[string]*photo.Resolver
	detailResolver *photo.Resolver

	logger *zap.Logger
}

func NewSession(opts Options, logger *zap.Logger) *Session {
	if opts.Title == "" {
		opts.Title = constants.ViewConfig.DefaultTitle
	}
	if opts.Subtitle == "" {
		opts.Subtitle = constants.ViewConfig.DefaultSubtitle
	}
	if opts.Accent == "" {
		opts.Accent = constants.ViewConfig.DefaultAccent
	}
	if opts.DPR <= 0 {
		opts.DPR = 1
	}

	return &Session{
		opts:          opts,
		limit:         opts.Limit,
		cardResolvers: make(map[string]*photo.Resolver),
		logger:        logger,
	}
}

// BeginLoad marks the session loading and returns a generation token. A
// completion carrying a stale token is discarded, so a slow response can
// never clobber the result of a load triggered after it.
func (s *Session) BeginLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.loading = true
	s.loadErr = ""
	return s.generation
}

// CompleteLoad applies a finished load if its generation is still current.
// Returns false when the result was discarded as stale.
func (s *Session) CompleteLoad(generation uint64, items []domain.Profile, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		s.logger.Debug("Discarding stale load result",
			zap.Uint64("generation", generation),
			zap.Uint64("current", s.generation),
		)
		return false
	}

	s.loading = false
	if err != nil {
		s.loadErr = util.TruncateString(err.Error(), maxErrorRunes)
		s.items = nil
	} else {
		s.loadErr = ""
		s.items = items
	}

	// Selection may point at a record that no longer exists.
	if s.selectedID != "" {
		if _, ok := s.find(s.selectedID); !ok {
			s.dismissLocked()
		}
	}
	return true
}

// SetQuery replaces the search slots. The visible set is recomputed on the
// next snapshot; nothing is memoized across the change.
func (s *Session) SetQuery(q Query) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
}

// SetLimit replaces the item cap (0 = unlimited).
func (s *Session) SetLimit(limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limit = util.Max(limit, 0)
}

// Select opens the detail overlay for the given record and asserts the
// host-page scroll lock. Selecting an unknown ID is a no-op.
func (s *Session) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.find(id)
	if !ok {
		return false
	}

	s.selectedID = id
	if !s.scrollLocked {
		s.scrollLocked = true
	}

	detailRecord := photoRecord(record)
	if s.detailResolver == nil {
		s.detailResolver = photo.NewResolver(detailRecord, photo.Surface{
			SiteBase: s.opts.SiteBase,
			CSSPx:    constants.PhotoConfig.DetailPx,
			DPR:      s.opts.DPR,
			Detail:   true,
		})
	} else {
		s.detailResolver.Bind(detailRecord)
	}
	return true
}

// Dismiss closes the overlay, clears the selection, and releases the scroll
// lock. The lock is released exactly once per open/close pair; dismissing an
// already-closed overlay does nothing.
func (s *Session) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dismissLocked()
}

func (s *Session) dismissLocked() {
	if s.selectedID == "" {
		return
	}
	s.selectedID = ""
	s.detailResolver = nil
	s.scrollLocked = false
}

// CardImageFailed advances the cascade of one visible card.
func (s *Session) CardImageFailed(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if resolver, ok := s.cardResolvers[id]; ok {
		resolver.Fail()
	}
}

// DetailImageFailed advances the open detail view's cascade.
func (s *Session) DetailImageFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.detailResolver != nil {
		s.detailResolver.Fail()
	}
}

// Snapshot recomputes the visible set and assembles the full render state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	visible := Visible(s.items, s.query, s.limit)
	s.syncResolvers(visible)

	cards := make([]Card, len(visible))
	for i, p := range visible {
		cards[i] = s.card(p)
	}

	state := State{
		Title:        s.opts.Title,
		Subtitle:     s.opts.Subtitle,
		Accent:       s.opts.Accent,
		Loading:      s.loading,
		Error:        s.loadErr,
		Query:        s.query,
		Limit:        s.limit,
		Total:        len(visible),
		Cards:        cards,
		ScrollLocked: s.scrollLocked,
	}

	if s.selectedID != "" {
		if record, ok := s.find(s.selectedID); ok {
			state.Detail = s.detail(record)
		}
	}
	return state
}

// syncResolvers keeps one resolver per visible card, re-binding survivors
// (which resets their cascade only when the record actually changed) and
// dropping resolvers whose cards scrolled out of the visible set.
func (s *Session) syncResolvers(visible []domain.Profile) {
	seen := make(map[string]struct{}, len(visible))
	surface := photo.Surface{
		SiteBase: s.opts.SiteBase,
		CSSPx:    constants.PhotoConfig.AvatarCSSPx,
		DPR:      s.opts.DPR,
	}

	for _, p := range visible {
		seen[p.ID] = struct{}{}
		record := photoRecord(p)
		if resolver, ok := s.cardResolvers[p.ID]; ok {
			resolver.Bind(record)
		} else {
			s.cardResolvers[p.ID] = photo.NewResolver(record, surface)
		}
	}

	for id := range s.cardResolvers {
		if _, ok := seen[id]; !ok {
			delete(s.cardResolvers, id)
		}
	}
}

func (s *Session) card(p domain.Profile) Card {
	resolver := s.cardResolvers[p.ID]
	card := Card{
		ID:       p.ID,
		Name:     p.Name,
		Role:     p.Role,
		Initials: util.Initials(p.Name),
	}
	if resolver != nil && !resolver.Exhausted() {
		card.Photo = resolver.Sources()
	} else {
		card.Placeholder = true
	}
	return card
}

func (s *Session) detail(p domain.Profile) *Detail {
	d := &Detail{
		ID:          p.ID,
		Name:        p.Name,
		Role:        p.Role,
		HireDate:    p.HireDate,
		Birthday:    p.Birthday,
		CompanyURL:  p.CompanyURL,
		LinkedInURL: p.LinkedInURL,
		DetailsHTML: sanitize.HTML(p.DetailsHTML),
		Initials:    util.Initials(p.Name),
	}
	if s.detailResolver != nil && !s.detailResolver.Exhausted() {
		d.Photo = s.detailResolver.Sources()
	} else {
		d.Placeholder = true
	}
	return d
}

func (s *Session) find(id string) (domain.Profile, bool) {
	for _, p := range s.items {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Profile{}, false
}

func photoRecord(p domain.Profile) photo.Record {
	return photo.Record{
		ID:          p.ID,
		Name:        p.Name,
		RawURL:      p.PhotoURL,
		IdentityKey: p.IdentityKey,
	}
}
