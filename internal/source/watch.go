package source

import (
	"context"
	"strings"
	"time"

	"github.com/nao1215/threadscan/internal/address"
	"github.com/nao1215/threadscan/internal/surface"
	"github.com/nao1215/threadscan/internal/traverse"
)

// WatchName is the name of the regular video page variant.
const WatchName = "watch"

// watchStartTimeout bounds the wait for the title and comment count.
const watchStartTimeout = 10 * time.Second

const (
	watchTitle        address.Address = "#title > h1 > yt-formatted-string"
	watchCommentCount address.Address = "#sections #count > yt-formatted-string > span:nth-child(1)"
)

// feedbackFill is the clickable layer inside YouTube's buttons.
const feedbackFill = " > yt-button-shape > button > yt-touch-feedback-shape > div > div.yt-spec-touch-feedback-shape__fill"

// watchScheme addresses the comment section under a regular video.
var watchScheme = address.Template{
	Thread:      "#contents > ytd-comment-thread-renderer:nth-child(%d)",
	Reply:       " #replies > ytd-comment-replies-renderer #contents > ytd-comment-renderer:nth-child(%d)",
	Body:        " #content-text",
	Author:      " #author-text",
	Link:        " #header-author > yt-formatted-string > a",
	Expand:      " #more-replies" + feedbackFill,
	Collapse:    " #less-replies" + feedbackFill,
	MoreReplies: " #replies #button > ytd-button-renderer" + feedbackFill,
	ReplyBody:   " #content-text",
	ReplyAuthor: " #author-text > yt-formatted-string",
	ReplyLink:   " #header-author > yt-formatted-string > a",
}

// Watch returns the variant for regular video pages such as
// https://www.youtube.com/watch?v=ID.
func Watch() Variant {
	return Variant{
		Name:      WatchName,
		Recognize: recognizeWatch,
		Scheme:    watchScheme,
		Start:     watchStart,
	}
}

func recognizeWatch(ref string) bool {
	tail, ok := youtubePath(ref)
	return ok && !strings.HasPrefix(tail, "shorts/")
}

// watchStart loads the page, scrolls the title into view so that the comment
// section starts rendering, and reads the advertised comment count.
func watchStart(ref string) traverse.StartFunc {
	return func(ctx context.Context, s surface.Surface) (traverse.Page, error) {
		page := traverse.Page{AdvertisedCount: -1}
		if err := navigate(ctx, s, ref); err != nil {
			return page, err
		}

		if title, err := s.WaitForPresent(ctx, watchTitle, watchStartTimeout); err == nil {
			if err := s.ScrollIntoView(ctx, title); err != nil {
				return page, err
			}
			if text, err := s.ReadText(ctx, title); err == nil {
				page.Title = strings.TrimSpace(text)
			}
		}
		if page.Title == "" {
			page.Title = pageTitle(ctx, s)
		}

		if count, err := s.WaitForPresent(ctx, watchCommentCount, watchStartTimeout); err == nil {
			if text, err := s.ReadText(ctx, count); err == nil {
				page.AdvertisedCount = parseCount(text)
			}
		}
		return page, nil
	}
}
