package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/s0up4200/marquee/catalog"
	"github.com/s0up4200/marquee/tmdb"
)

// Color palette
var (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorSecondary = lipgloss.Color("#10B981")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorDanger    = lipgloss.Color("#EF4444")
	colorMuted     = lipgloss.Color("#6B7280")
)

// theme holds the styles used by the printer. A plain theme renders text
// unchanged.
type theme struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Rating  lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

func newTheme(color bool) theme {
	if !color {
		plain := lipgloss.NewStyle()
		return theme{
			Title:   plain,
			Heading: plain,
			Rating:  plain,
			Muted:   plain,
			Success: plain,
			Warning: plain,
			Error:   plain,
		}
	}
	return theme{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Heading: lipgloss.NewStyle().Bold(true).Underline(true),
		Rating:  lipgloss.NewStyle().Foreground(colorWarning),
		Muted:   lipgloss.NewStyle().Foreground(colorMuted),
		Success: lipgloss.NewStyle().Foreground(colorSecondary),
		Warning: lipgloss.NewStyle().Foreground(colorWarning),
		Error:   lipgloss.NewStyle().Foreground(colorDanger),
	}
}

type printerOptions struct {
	JSON       bool
	Color      bool
	Limit      int
	ShowPoster bool
	PosterSize string
	ImageURL   func(path, size string) string
}

// printer writes command results as a table or as JSON
type printer struct {
	w     io.Writer
	opts  printerOptions
	theme theme
}

func newPrinter(w io.Writer, opts printerOptions) *printer {
	return &printer{w: w, opts: opts, theme: newTheme(opts.Color)}
}

func (p *printer) writeJSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// limited applies the display limit; 0 means unlimited.
func limited[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// Summaries prints catalog items one per line
func (p *printer) Summaries(items []tmdb.Summary) error {
	items = limited(items, p.opts.Limit)
	if p.opts.JSON {
		if items == nil {
			items = []tmdb.Summary{}
		}
		return p.writeJSON(items)
	}

	if len(items) == 0 {
		p.line("%s", p.theme.Muted.Render("No results"))
		return nil
	}

	for _, item := range items {
		year := "----"
		if y := item.Year(); y > 0 {
			year = strconv.Itoa(y)
		}
		p.line("%-8d %s %s %s %s",
			item.ID,
			p.theme.Muted.Render(year),
			p.theme.Rating.Render(formatRating(item.Rating)),
			p.theme.Muted.Render(fmt.Sprintf("%-5s", item.Kind)),
			p.theme.Title.Render(item.Title),
		)
		if poster := p.poster(item.PosterPath); poster != "" {
			p.line("         %s", p.theme.Muted.Render(poster))
		}
	}
	return nil
}

func (p *printer) poster(path string) string {
	if !p.opts.ShowPoster || path == "" || p.opts.ImageURL == nil {
		return ""
	}
	return p.opts.ImageURL(path, p.opts.PosterSize)
}

func formatRating(rating float64) string {
	return fmt.Sprintf("%4.1f", rating)
}

// movieBundleJSON flattens a bundle for JSON output; part errors become strings.
type movieBundleJSON struct {
	ID        int64             `json:"id"`
	Detail    *tmdb.MovieDetail `json:"detail,omitempty"`
	Credits   *tmdb.Credits     `json:"credits,omitempty"`
	Trailers  []tmdb.Video      `json:"trailers,omitempty"`
	Images    []tmdb.Backdrop   `json:"images,omitempty"`
	Favorite  *bool             `json:"favorite,omitempty"`
	Watchlist *bool             `json:"watchlist,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}

type seriesBundleJSON struct {
	ID        int64              `json:"id"`
	Detail    *tmdb.SeriesDetail `json:"detail,omitempty"`
	Credits   *tmdb.Credits      `json:"credits,omitempty"`
	Trailers  []tmdb.Video       `json:"trailers,omitempty"`
	Images    []tmdb.Backdrop    `json:"images,omitempty"`
	Favorite  *bool              `json:"favorite,omitempty"`
	Watchlist *bool              `json:"watchlist,omitempty"`
	Errors    map[string]string  `json:"errors,omitempty"`
}

// partErrors collects the failed parts of a bundle by name
type partErrors map[string]string

func (e partErrors) add(name string, err error) {
	if err != nil {
		e[name] = err.Error()
	}
}

func (e partErrors) orNil() map[string]string {
	if len(e) == 0 {
		return nil
	}
	return e
}

func membershipValue(part catalog.Part[bool]) *bool {
	if !part.OK() {
		return nil
	}
	v := part.Value
	return &v
}

// MovieBundle prints a movie detail view
func (p *printer) MovieBundle(b *catalog.MovieBundle) error {
	if p.opts.JSON {
		errs := partErrors{}
		errs.add("detail", b.Detail.Err)
		errs.add("credits", b.Credits.Err)
		errs.add("trailers", b.Trailers.Err)
		errs.add("images", b.Images.Err)
		errs.add("favorite", b.Favorite.Err)
		errs.add("watchlist", b.Watchlist.Err)
		return p.writeJSON(movieBundleJSON{
			ID:        b.ID,
			Detail:    b.Detail.Value,
			Credits:   b.Credits.Value,
			Trailers:  b.Trailers.Value,
			Images:    b.Images.Value,
			Favorite:  membershipValue(b.Favorite),
			Watchlist: membershipValue(b.Watchlist),
			Errors:    errs.orNil(),
		})
	}

	if b.Detail.OK() {
		d := b.Detail.Value
		p.header(d.Title, d.ReleaseDate, d.VoteAverage)
		var facts []string
		if d.Runtime > 0 {
			facts = append(facts, fmt.Sprintf("%d min", d.Runtime))
		}
		if genres := genreNames(d.Genres); genres != "" {
			facts = append(facts, genres)
		}
		if len(facts) > 0 {
			p.line("%s", p.theme.Muted.Render(strings.Join(facts, " · ")))
		}
		p.overview(d.Overview)
		if poster := p.poster(d.PosterPath); poster != "" {
			p.line("Poster: %s", poster)
		}
	} else {
		p.failed("Details", b.Detail.Err)
	}

	p.credits(b.Credits)
	p.trailers(b.Trailers)
	p.images(b.Images)
	p.memberships(b.Memberships)
	return nil
}

// SeriesBundle prints a series detail view
func (p *printer) SeriesBundle(b *catalog.SeriesBundle) error {
	if p.opts.JSON {
		errs := partErrors{}
		errs.add("detail", b.Detail.Err)
		errs.add("credits", b.Credits.Err)
		errs.add("trailers", b.Trailers.Err)
		errs.add("images", b.Images.Err)
		errs.add("favorite", b.Favorite.Err)
		errs.add("watchlist", b.Watchlist.Err)
		return p.writeJSON(seriesBundleJSON{
			ID:        b.ID,
			Detail:    b.Detail.Value,
			Credits:   b.Credits.Value,
			Trailers:  b.Trailers.Value,
			Images:    b.Images.Value,
			Favorite:  membershipValue(b.Favorite),
			Watchlist: membershipValue(b.Watchlist),
			Errors:    errs.orNil(),
		})
	}

	if b.Detail.OK() {
		d := b.Detail.Value
		p.header(d.Name, d.FirstAirDate, d.VoteAverage)
		var facts []string
		if d.NumberOfSeasons > 0 {
			facts = append(facts, fmt.Sprintf("%d seasons", d.NumberOfSeasons))
		}
		if d.NumberOfEpisodes > 0 {
			facts = append(facts, fmt.Sprintf("%d episodes", d.NumberOfEpisodes))
		}
		if genres := genreNames(d.Genres); genres != "" {
			facts = append(facts, genres)
		}
		if len(facts) > 0 {
			p.line("%s", p.theme.Muted.Render(strings.Join(facts, " · ")))
		}
		p.overview(d.Overview)
		if poster := p.poster(d.PosterPath); poster != "" {
			p.line("Poster: %s", poster)
		}
		if len(d.Seasons) > 0 {
			p.section("Seasons")
			for _, season := range d.Seasons {
				p.line("  %2d  %s %s", season.SeasonNumber, season.Name,
					p.theme.Muted.Render(fmt.Sprintf("(%d episodes)", season.EpisodeCount)))
			}
		}
	} else {
		p.failed("Details", b.Detail.Err)
	}

	p.credits(b.Credits)
	p.trailers(b.Trailers)
	p.images(b.Images)
	p.memberships(b.Memberships)
	return nil
}

func (p *printer) header(title, date string, rating float64) {
	year := ""
	if len(date) >= 4 {
		year = " (" + date[:4] + ")"
	}
	p.line("%s%s  %s", p.theme.Title.Render(title), p.theme.Muted.Render(year),
		p.theme.Rating.Render("★ "+strings.TrimSpace(formatRating(rating))))
}

func (p *printer) overview(text string) {
	if text == "" {
		return
	}
	p.line("")
	p.line("%s", text)
}

func (p *printer) section(name string) {
	p.line("")
	p.line("%s", p.theme.Heading.Render(name))
}

func (p *printer) failed(name string, err error) {
	p.section(name)
	p.line("  %s", p.theme.Error.Render("unavailable: "+err.Error()))
}

func (p *printer) credits(part catalog.Part[*tmdb.Credits]) {
	if !part.OK() {
		p.failed("Cast", part.Err)
		return
	}
	credits := part.Value
	if directors := credits.Directors(); len(directors) > 0 {
		p.section("Directed by")
		p.line("  %s", strings.Join(directors, ", "))
	}
	if len(credits.Cast) == 0 {
		return
	}
	p.section("Cast")
	for _, member := range limited(credits.Cast, 10) {
		if member.Character != "" {
			p.line("  %s %s", member.Name, p.theme.Muted.Render("as "+member.Character))
		} else {
			p.line("  %s", member.Name)
		}
	}
}

func (p *printer) trailers(part catalog.Part[[]tmdb.Video]) {
	if !part.OK() {
		p.failed("Trailers", part.Err)
		return
	}
	if len(part.Value) == 0 {
		return
	}
	p.section("Trailers")
	for _, video := range part.Value {
		if url := video.WatchURL(); url != "" {
			p.line("  %s %s", video.Name, p.theme.Muted.Render(url))
		} else {
			p.line("  %s", video.Name)
		}
	}
}

func (p *printer) images(part catalog.Part[[]tmdb.Backdrop]) {
	if !part.OK() {
		p.failed("Images", part.Err)
		return
	}
	if len(part.Value) == 0 {
		return
	}
	p.section("Images")
	p.line("  %d backdrops", len(part.Value))
	if p.opts.ShowPoster && p.opts.ImageURL != nil {
		for _, backdrop := range limited(part.Value, 3) {
			p.line("  %s", p.theme.Muted.Render(p.opts.ImageURL(backdrop.FilePath, "w780")))
		}
	}
}

func (p *printer) memberships(m catalog.Memberships) {
	p.section("Your lists")
	p.line("  Favorite:  %s", p.membership(m.Favorite))
	p.line("  Watchlist: %s", p.membership(m.Watchlist))
}

func (p *printer) membership(part catalog.Part[bool]) string {
	switch {
	case tmdb.IsAuthError(part.Err):
		return p.theme.Muted.Render("sign in to see")
	case !part.OK():
		return p.theme.Error.Render("unavailable")
	case part.Value:
		return p.theme.Success.Render("yes")
	default:
		return "no"
	}
}

func genreNames(genres []tmdb.Genre) string {
	names := make([]string, 0, len(genres))
	for _, genre := range genres {
		names = append(names, genre.Name)
	}
	return strings.Join(names, ", ")
}

// Account prints the signed-in identity
func (p *printer) Account(account *tmdb.Account) error {
	if p.opts.JSON {
		return p.writeJSON(account)
	}
	p.line("Signed in as %s %s", p.theme.Title.Render(account.DisplayName()),
		p.theme.Muted.Render(fmt.Sprintf("(%s, id %d)", account.Username, account.ID)))
	return nil
}

// UserLists prints the custom lists of an account
func (p *printer) UserLists(lists []tmdb.UserList) error {
	if p.opts.JSON {
		if lists == nil {
			lists = []tmdb.UserList{}
		}
		return p.writeJSON(lists)
	}
	if len(lists) == 0 {
		p.line("%s", p.theme.Muted.Render("No lists"))
		return nil
	}
	for _, list := range lists {
		p.line("%-8d %s", list.ID, p.theme.Title.Render(list.Name))
	}
	return nil
}

// Membership prints the outcome of a favorite/watchlist change
func (p *printer) Membership(list tmdb.ListKind, kind tmdb.MediaKind, id int64, value bool) error {
	if p.opts.JSON {
		return p.writeJSON(struct {
			List  tmdb.ListKind  `json:"list"`
			Kind  tmdb.MediaKind `json:"media_type"`
			ID    int64          `json:"id"`
			Value bool           `json:"value"`
		}{list, kind, id, value})
	}
	if value {
		p.line("%s %s %d is on your %s", p.theme.Success.Render("✓"), kind, id, list)
	} else {
		p.line("%s %s %d is not on your %s", p.theme.Muted.Render("✗"), kind, id, list)
	}
	return nil
}

// Warn prints a notice that does not fail the command
func (p *printer) Warn(format string, args ...any) {
	if p.opts.JSON {
		return
	}
	p.line("%s", p.theme.Warning.Render(fmt.Sprintf(format, args...)))
}
