package youtube

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"my-site/domain/model"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns:media="http://search.yahoo.com/mrss/" xmlns="http://www.w3.org/2005/Atom">
  <title>LeoVeio</title>
  <entry>
    <id>yt:video:abc123</id>
    <yt:videoId>abc123</yt:videoId>
    <title>Live   de   sexta &amp;amp; amigos</title>
    <link rel="alternate" href="https://www.youtube.com/watch?v=abc123"/>
    <author>
      <name>Leo &amp;amp; Veio</name>
    </author>
    <published>2025-05-02T21:00:00+00:00</published>
    <media:group>
      <media:title>Live de sexta</media:title>
      <media:thumbnail url="https://i1.ytimg.com/vi/abc123/hqdefault.jpg" width="480" height="360"/>
      <media:description>Primeira linha
      segunda linha</media:description>
    </media:group>
  </entry>
  <entry>
    <title>Sem id mas com link #Shorts</title>
    <link rel="alternate" href="https://www.youtube.com/watch?v=def456&amp;t=10"/>
    <media:group>
      <media:thumbnail url="https://youtube.com/vi/def456/sddefault.jpg" width="640" height="480"/>
      <media:thumbnail url="https://youtube.com/vi/def456/default.jpg" width="120" height="90"/>
    </media:group>
  </entry>
  <entry>
    <title>Entrada quebrada</title>
  </entry>
</feed>`

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
}

func TestParser_ParsesEntries(t *testing.T) {
	p := NewParser(WithParserClock(fixedClock))

	videos, err := p.Parse([]byte(sampleFeed), 12)
	require.NoError(t, err)
	require.Len(t, videos, 2, "entry without id is dropped")

	first := videos[0]
	assert.Equal(t, "abc123", first.ID)
	assert.Equal(t, "Live de sexta & amigos", first.Title)
	assert.Equal(t, "Primeira linha segunda linha", first.Description)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", first.URL)
	assert.Equal(t, MediumThumbnail("abc123"), first.Thumbnail, "ytimg host lacks the youtube marker")
	assert.Equal(t, "2025-05-02T21:00:00+00:00", first.PublishedAt)
	assert.Equal(t, "Leo & Veio", first.ChannelTitle)
	assert.Equal(t, DurationUnknown, first.DurationHint)
	assert.Nil(t, first.DurationSeconds)
	assert.False(t, first.IsShort)

	second := videos[1]
	assert.Equal(t, "def456", second.ID, "id extracted from the watch link")
	assert.Equal(t, "https://youtube.com/vi/def456/sddefault.jpg", second.Thumbnail, "widest valid thumbnail wins")
	assert.Equal(t, "2025-06-01T10:30:00.000Z", second.PublishedAt, "missing published date defaults to now")
	assert.Equal(t, DefaultChannelTitle, second.ChannelTitle)
	assert.True(t, second.IsShort)
	assert.Equal(t, "", second.Description)
}

func TestParser_RespectsMaxItems(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015">`)
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, `<entry><yt:videoId>vid%02d</yt:videoId><title>Video %d</title></entry>`, i, i)
	}
	b.WriteString(`</feed>`)

	videos, err := ParseRSSToVideos([]byte(b.String()), 20)
	require.NoError(t, err)
	require.Len(t, videos, 20)
	for i, v := range videos {
		assert.Equal(t, fmt.Sprintf("vid%02d", i), v.ID, "feed order is preserved")
	}

	all, err := ParseRSSToVideos([]byte(b.String()), 0)
	require.NoError(t, err)
	assert.Len(t, all, 30)
}

func TestParser_EmptyFeed(t *testing.T) {
	videos, err := ParseRSSToVideos([]byte(`<feed><title>Nada</title></feed>`), 12)
	require.NoError(t, err)
	assert.NotNil(t, videos)
	assert.Empty(t, videos)
}

func TestParser_AllEntriesMalformed(t *testing.T) {
	feed := `<feed><entry><title>a</title></entry><entry><link href="https://example.com/x"/></entry></feed>`
	videos, err := ParseRSSToVideos([]byte(feed), 12)
	require.NoError(t, err)
	assert.Empty(t, videos)
}

func TestParser_IDsNeverEmpty(t *testing.T) {
	feed := `<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015">
<entry><yt:videoId>   </yt:videoId><title>blank id</title></entry>
<entry><yt:videoId>ok1</yt:videoId></entry>
<entry><link href="https://youtu.be/ok2"/></entry>
<entry><link href="https://www.youtube.com/watch?v="/></entry>
</feed>`
	videos, err := ParseRSSToVideos([]byte(feed), 12)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	for _, v := range videos {
		assert.NotEmpty(t, v.ID)
	}
	assert.Equal(t, UntitledVideo, videos[0].Title)
	assert.Equal(t, "ok2", videos[1].ID)
}

func TestParser_MalformedDocument(t *testing.T) {
	tests := map[string]string{
		"garbage":    "this is not xml <<garbage>>",
		"empty":      "",
		"wrong_root": `<rss version="2.0"><channel><item><title>x</title></item></channel></rss>`,
		"unclosed":   `<feed><entry><title>x</title>`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			videos, err := ParseRSSToVideos([]byte(doc), 12)
			require.Error(t, err)
			assert.Nil(t, videos)

			var parseErr *FeedParseError
			assert.True(t, errors.As(err, &parseErr))
		})
	}
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://www.youtube.com/watch?v=abc123", "abc123"},
		{"https://www.youtube.com/watch?v=abc123&list=PL1", "abc123"},
		{"https://youtu.be/xyz789?t=42", "xyz789"},
		{"https://youtu.be/xyz789#frag", "xyz789"},
		{"https://www.youtube.com/shorts/qwe", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractVideoID(tt.link))
		})
	}
}

func TestBestThumbnail(t *testing.T) {
	t.Run("no_candidates_uses_medium_quality", func(t *testing.T) {
		assert.Equal(t, "https://img.youtube.com/vi/abc/mqdefault.jpg", bestThumbnail(nil, "abc"))
		assert.Equal(t, "https://img.youtube.com/vi/abc/mqdefault.jpg", bestThumbnail([]rssThumbnail{}, "abc"))
	})

	t.Run("rejects_maxresdefault", func(t *testing.T) {
		thumbs := []rssThumbnail{
			{URL: "https://img.youtube.com/vi/abc/maxresdefault.jpg", Width: "1280"},
			{URL: "https://img.youtube.com/vi/abc/hqdefault.jpg", Width: "480"},
		}
		assert.Equal(t, MediumThumbnail("abc"), bestThumbnail(thumbs, "abc"))
	})

	t.Run("rejects_other_video", func(t *testing.T) {
		thumbs := []rssThumbnail{{URL: "https://img.youtube.com/vi/zzz/hqdefault.jpg", Width: "480"}}
		assert.Equal(t, MediumThumbnail("abc"), bestThumbnail(thumbs, "abc"))
	})

	t.Run("non_numeric_width_sorts_last", func(t *testing.T) {
		thumbs := []rssThumbnail{
			{URL: "https://img.youtube.com/vi/abc/default.jpg", Width: "n/a"},
			{URL: "https://img.youtube.com/vi/abc/hqdefault.jpg", Width: "480"},
		}
		assert.Equal(t, "https://img.youtube.com/vi/abc/hqdefault.jpg", bestThumbnail(thumbs, "abc"))
	})

	t.Run("does_not_reorder_input", func(t *testing.T) {
		thumbs := []rssThumbnail{
			{URL: "https://img.youtube.com/vi/abc/default.jpg", Width: "120"},
			{URL: "https://img.youtube.com/vi/abc/hqdefault.jpg", Width: "480"},
		}
		bestThumbnail(thumbs, "abc")
		assert.Equal(t, "120", thumbs[0].Width)
	})
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"A &amp; B &lt;tag&gt;", "A & B"},
		{"<b>Bold</b> move", "Bold move"},
		{"&quot;quoted&quot; &apos;single&apos; &#39;x&#39;", `"quoted" 'single' 'x'`},
		{"  spaced&nbsp;out  ", "spaced out"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeText(tt.in))
		})
	}
}

func TestParser_TruncatesDescription(t *testing.T) {
	long := strings.Repeat("á", 200)
	feed := `<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns:media="http://search.yahoo.com/mrss/">
<entry><yt:videoId>v1</yt:videoId><media:group><media:description>` + long + `</media:description></media:group></entry>
<entry><yt:videoId>v2</yt:videoId><media:group><media:description>` + strings.Repeat("b", 150) + `</media:description></media:group></entry>
</feed>`
	videos, err := ParseRSSToVideos([]byte(feed), 12)
	require.NoError(t, err)
	require.Len(t, videos, 2)

	assert.Equal(t, strings.Repeat("á", 150)+"...", videos[0].Description)
	assert.Equal(t, strings.Repeat("b", 150), videos[1].Description, "exactly 150 characters is kept whole")
}

func TestDetectShort(t *testing.T) {
	seconds := func(n int) *int { return &n }
	tests := []struct {
		name  string
		video model.YouTubeVideo
		want  bool
	}{
		{"duration_45", model.YouTubeVideo{DurationSeconds: seconds(45), URL: "https://www.youtube.com/watch?v=a"}, true},
		{"duration_60", model.YouTubeVideo{DurationSeconds: seconds(60)}, true},
		{"duration_61", model.YouTubeVideo{DurationSeconds: seconds(61), Title: "long"}, false},
		{"shorts_url", model.YouTubeVideo{URL: "https://www.youtube.com/shorts/a"}, true},
		{"title_marker", model.YouTubeVideo{Title: "Check this #Shorts out"}, true},
		{"title_marker_lower", model.YouTubeVideo{Title: "clip #shorts"}, true},
		{"plain", model.YouTubeVideo{Title: "Full stream", URL: "https://www.youtube.com/watch?v=a"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectShort(tt.video))
		})
	}
}
