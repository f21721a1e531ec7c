package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/threadscan/internal/address"
	"github.com/nao1215/threadscan/internal/surface"
	"github.com/nao1215/threadscan/internal/traverse"
)

// ShortsName is the name of the short-form video variant.
const ShortsName = "shorts"

// shortsWait is the wait bound used throughout the shorts layout.
const shortsWait = 5 * time.Second

const (
	shortsPlayButton     address.Address = "ytd-shorts-player-controls yt-icon-button:nth-child(1) button"
	shortsMuteButton     address.Address = "ytd-shorts-player-controls yt-icon-button:nth-child(2) button"
	shortsCommentsButton address.Address = "#comments-button ytd-button-renderer yt-button-shape label button"
)

// shortsScheme addresses the comment panel of a short-form video.
var shortsScheme = address.Template{
	Thread:      "#shorts-container #watch-while-engagement-panel #contents #contents ytd-comment-thread-renderer:nth-child(%d)",
	Reply:       " #replies > ytd-comment-replies-renderer #contents > ytd-comment-renderer:nth-child(%d)",
	Body:        " #body #main #expander #content #content-text > span",
	Author:      " #body #main #header-author > h3 #author-text > span",
	Link:        " #body #main #header-author #published-time-text > a",
	Expand:      " #more-replies > yt-button-shape > button",
	Collapse:    " #less-replies > yt-button-shape > button",
	MoreReplies: " #replies #button > ytd-button-renderer > yt-button-shape > button",
	ReplyBody:   " #content-text",
	ReplyAuthor: " #author-text > span",
	ReplyLink:   " #published-time-text > a",
}

// Shorts returns the variant for short-form videos such as
// https://www.youtube.com/shorts/ID.
func Shorts() Variant {
	return Variant{
		Name:      ShortsName,
		Recognize: recognizeShorts,
		Scheme:    shortsScheme,
		Start:     shortsStart,
		Timeouts: traverse.Timeouts{
			Thread:     shortsWait,
			FirstReply: shortsWait,
			LoadMore:   shortsWait,
		},
	}
}

func recognizeShorts(ref string) bool {
	tail, ok := youtubePath(ref)
	return ok && strings.HasPrefix(tail, "shorts/") && len(tail) > len("shorts/")
}

// shortsStart loads the page, stops and mutes the player, and opens the
// comment panel.
func shortsStart(ref string) traverse.StartFunc {
	return func(ctx context.Context, s surface.Surface) (traverse.Page, error) {
		page := traverse.Page{AdvertisedCount: -1}
		if err := navigate(ctx, s, ref); err != nil {
			return page, err
		}

		// The labels name the action the button performs next.
		if err := toggleUnless(ctx, s, shortsPlayButton, "play"); err != nil {
			return page, fmt.Errorf("failed to pause the player: %w", err)
		}
		if err := toggleUnless(ctx, s, shortsMuteButton, "unmute"); err != nil {
			return page, fmt.Errorf("failed to mute the player: %w", err)
		}

		button, err := s.WaitForPresent(ctx, shortsCommentsButton, shortsWait)
		if err != nil {
			return page, fmt.Errorf("failed to find the comments button: %w", err)
		}
		if err := s.Click(ctx, button); err != nil {
			return page, fmt.Errorf("failed to open the comments panel: %w", err)
		}

		page.Title = pageTitle(ctx, s)
		return page, nil
	}
}

// toggleUnless clicks the button at addr unless its aria-label already
// contains want. A missing button is not an error.
func toggleUnless(ctx context.Context, s surface.Surface, addr address.Address, want string) error {
	button, err := s.WaitForPresent(ctx, addr, shortsWait)
	if err != nil {
		return nil
	}
	label := strings.ToLower(s.ReadAttribute(ctx, button, "aria-label"))
	if label == "" || strings.Contains(label, want) {
		return nil
	}
	return s.Click(ctx, button)
}
