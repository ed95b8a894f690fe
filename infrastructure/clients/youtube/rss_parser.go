package youtube

import (
	"encoding/xml"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"my-site/domain/model"
	"my-site/infrastructure/logger"
	"my-site/infrastructure/utils"
)

const (
	DefaultChannelTitle = "LeoVeio"
	UntitledVideo       = "Título indisponível"
	DurationUnknown     = "unknown"

	maxDescriptionLength = 150
	shortMaxSeconds      = 60
)

// ErrMissingVideoID marks an entry that has neither yt:videoId nor a parsable watch link.
var ErrMissingVideoID = errors.New("video id not found in feed entry")

// FeedParseError is returned when the document itself is not a readable feed.
type FeedParseError struct {
	Err error
}

func (e *FeedParseError) Error() string {
	return fmt.Sprintf("failed to parse YouTube RSS feed: %v", e.Err)
}

func (e *FeedParseError) Unwrap() error {
	return e.Err
}

var (
	videoIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?#]+)`)
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
	spacePattern   = regexp.MustCompile(`\s+`)
	entityReplacer = strings.NewReplacer(
		"&quot;", `"`,
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&apos;", "'",
		"&#39;", "'",
		"&nbsp;", " ",
	)
)

// rssFeed and rssEntry mirror the Atom document served at /feeds/videos.xml.
type rssFeed struct {
	XMLName xml.Name   `xml:"feed"`
	Title   string     `xml:"title"`
	Entries []rssEntry `xml:"entry"`
}

type rssEntry struct {
	VideoID   string    `xml:"videoId"`
	Title     string    `xml:"title"`
	Links     []rssLink `xml:"link"`
	Published string    `xml:"published"`
	Author    struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Group struct {
		Title       string         `xml:"title"`
		Description string         `xml:"description"`
		Thumbnails  []rssThumbnail `xml:"thumbnail"`
	} `xml:"group"`
}

type rssLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

type rssThumbnail struct {
	URL    string `xml:"url,attr"`
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
}

// parsedEntry is the outcome of normalizing one entry: a video, or the reason it was skipped.
type parsedEntry struct {
	video model.YouTubeVideo
	skip  error
}

// Parser turns raw feed bytes into normalized videos.
type Parser struct {
	channelTitle string
	now          utils.Clock
}

type ParserOption func(*Parser)

// WithFallbackChannelTitle sets the channel name used when an entry has no author.
func WithFallbackChannelTitle(title string) ParserOption {
	return func(p *Parser) {
		if title != "" {
			p.channelTitle = title
		}
	}
}

// WithParserClock sets the time source used for entries without a published date.
func WithParserClock(clock utils.Clock) ParserOption {
	return func(p *Parser) {
		p.now = clock
	}
}

func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		channelTitle: DefaultChannelTitle,
		now:          utils.GetCurrentTime,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseRSSToVideos parses with default settings.
func ParseRSSToVideos(data []byte, maxItems int) ([]model.YouTubeVideo, error) {
	return NewParser().Parse(data, maxItems)
}

// Parse returns at most maxItems videos in feed order (maxItems <= 0 means all).
// Entries that cannot be normalized are skipped; only an unreadable document is an error.
func (p *Parser) Parse(data []byte, maxItems int) ([]model.YouTubeVideo, error) {
	var feed rssFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, &FeedParseError{Err: err}
	}

	videos := make([]model.YouTubeVideo, 0)
	if len(feed.Entries) == 0 {
		logger.GetLogger().Warn("No entries found in RSS feed")
		return videos, nil
	}

	entries := feed.Entries
	if maxItems > 0 && len(entries) > maxItems {
		entries = entries[:maxItems]
	}

	for i := range entries {
		res := p.parseEntry(&entries[i])
		if res.skip != nil {
			logger.GetLogger().
				WithField("error", res.skip).
				WithField("title", normalizeSpace(entries[i].Title)).
				Warn("Skipping RSS entry")
			continue
		}
		videos = append(videos, res.video)
	}

	logger.GetLogger().
		WithField("valid", len(videos)).
		WithField("entries", len(feed.Entries)).
		Info("RSS processed")
	return videos, nil
}

func (p *Parser) parseEntry(entry *rssEntry) (res parsedEntry) {
	defer func() {
		if r := recover(); r != nil {
			res = parsedEntry{skip: fmt.Errorf("normalize entry: %v", r)}
		}
	}()

	videoID := normalizeSpace(entry.VideoID)
	if videoID == "" {
		videoID = ExtractVideoID(entry.link())
	}
	if videoID == "" {
		return parsedEntry{skip: ErrMissingVideoID}
	}

	rawTitle := normalizeSpace(entry.Title)
	if rawTitle == "" {
		rawTitle = UntitledVideo
	}

	publishedAt := normalizeSpace(entry.Published)
	if publishedAt == "" {
		publishedAt = utils.ISOTimestamp(p.now())
	}

	channelTitle := SanitizeText(normalizeSpace(entry.Author.Name))
	if channelTitle == "" {
		channelTitle = p.channelTitle
	}

	video := model.YouTubeVideo{
		ID:           videoID,
		Title:        SanitizeText(rawTitle),
		Description:  truncate(SanitizeText(normalizeSpace(entry.Group.Description)), maxDescriptionLength),
		URL:          "https://www.youtube.com/watch?v=" + videoID,
		Thumbnail:    bestThumbnail(entry.Group.Thumbnails, videoID),
		PublishedAt:  publishedAt,
		DurationHint: DurationUnknown,
		ChannelTitle: channelTitle,
	}
	video.IsShort = DetectShort(video)

	return parsedEntry{video: video}
}

func (e *rssEntry) link() string {
	for _, l := range e.Links {
		if l.Rel == "alternate" && l.Href != "" {
			return l.Href
		}
	}
	for _, l := range e.Links {
		if l.Href != "" {
			return l.Href
		}
	}
	return ""
}

// ExtractVideoID pulls the id out of a watch?v= or youtu.be/ link.
func ExtractVideoID(link string) string {
	m := videoIDPattern.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	return m[1]
}

// MediumThumbnail is the 320x180 variant, which exists for every public video.
func MediumThumbnail(videoID string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/mqdefault.jpg", videoID)
}

// bestThumbnail picks the widest feed thumbnail that points at this video on a YouTube host.
// maxresdefault is rejected because it is frequently missing upstream.
func bestThumbnail(thumbnails []rssThumbnail, videoID string) string {
	if len(thumbnails) == 0 {
		return MediumThumbnail(videoID)
	}

	sorted := make([]rssThumbnail, len(thumbnails))
	copy(sorted, thumbnails)
	sort.SliceStable(sorted, func(i, j int) bool {
		return parseWidth(sorted[i].Width) > parseWidth(sorted[j].Width)
	})

	best := sorted[0].URL
	if best != "" &&
		strings.Contains(best, "youtube") &&
		strings.Contains(best, videoID) &&
		!strings.Contains(best, "maxresdefault") {
		return best
	}
	return MediumThumbnail(videoID)
}

func parseWidth(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// SanitizeText strips HTML tags and decodes the common entities.
// Tags are stripped again after decoding so encoded markup does not survive.
func SanitizeText(text string) string {
	if text == "" {
		return ""
	}
	text = tagPattern.ReplaceAllString(text, "")
	text = entityReplacer.Replace(text)
	text = tagPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// DetectShort flags short-form videos by duration, /shorts/ URL or a #shorts title marker.
func DetectShort(video model.YouTubeVideo) bool {
	if video.DurationSeconds != nil && *video.DurationSeconds > 0 && *video.DurationSeconds <= shortMaxSeconds {
		return true
	}
	if strings.Contains(video.URL, "/shorts/") {
		return true
	}
	return strings.Contains(strings.ToLower(video.Title), "#shorts")
}

func normalizeSpace(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
