package main

import (
	"context"
	"fmt"
	"html"
	"log"
	"net/http"
	"runtime"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/tsundokum/microgram"
	"github.com/tsundokum/microgram/chunk"
)

// handleStatus answers /status with worker and memory numbers.
func handleStatus(bot *microgram.Bot) microgram.HandlerFunc {
	return func(ctx context.Context, u microgram.Update) (bool, error) {
		m := u.Msg()
		if m == nil || m.Command() != "/status" {
			return false, nil
		}
		log.Printf("chat %d used /status", m.Chat.ID)

		stats := runtime.MemStats{}
		runtime.ReadMemStats(&stats)
		st := bot.Status()

		var b strings.Builder
		fmt.Fprintf(&b, "Go: %s\n", runtime.Version())
		fmt.Fprintf(&b, "Started: %s\n", humanize.Time(st.Started))
		fmt.Fprintf(&b, "Workers: %s\n", humanize.Comma(int64(st.ActiveWorkers)))
		fmt.Fprintf(&b, "Updates: %s\n", humanize.Comma(st.UpdatesSeen))
		fmt.Fprintf(&b, "Scheduled tasks: %s\n", humanize.Comma(int64(st.PendingTasks)))
		fmt.Fprintf(&b, "Memory: %s / %s (alloc / sys)\n", humanize.Bytes(stats.Alloc), humanize.Bytes(stats.Sys))

		_, err := bot.SendMessage(ctx, microgram.SendMessage{
			ChatID:           m.Chat.ID,
			Text:             b.String(),
			ReplyToMessageID: m.MessageID,
		})
		return true, err
	}
}

// handleTitle answers /title <url> with the page title of the first
// url in the message.
func handleTitle(bot *microgram.Bot) microgram.HandlerFunc {
	return func(ctx context.Context, u microgram.Update) (bool, error) {
		m := u.Msg()
		if m == nil || m.Command() != "/title" {
			return false, nil
		}

		urls := m.EntityValues(microgram.EntityURL)
		if len(urls) == 0 {
			_, err := bot.SendMessage(ctx, microgram.SendMessage{
				ChatID:           m.Chat.ID,
				Text:             "Usage: /title <url>",
				ReplyToMessageID: m.MessageID,
			})
			return true, err
		}

		title, err := pageTitle(ctx, urls[0])
		if err != nil {
			return true, err
		}

		_, err = bot.SendMessage(ctx, microgram.SendMessage{
			ChatID:           m.Chat.ID,
			Text:             titleMarkup(title),
			ParseMode:        chunk.ModeHTML,
			ReplyToMessageID: m.MessageID,
		})
		return true, err
	}
}

// titleMarkup wraps a scraped title in bold, escaping it so stray
// angle brackets never reach the HTML parse mode.
func titleMarkup(title string) string {
	return fmt.Sprintf("<b>%s</b>", html.EscapeString(title))
}

func pageTitle(ctx context.Context, url string) (string, error) {
	if !strings.Contains(url, "://") {
		url = "https://" + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "could not build request")
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "could not get page")
	}
	defer res.Body.Close()

	document, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", errors.Wrap(err, "could not parse body")
	}

	title := strings.TrimSpace(document.Find("title").First().Text())
	if title == "" {
		title = "(no title)"
	}
	return title, nil
}

// handleEcho sends any other text message straight back. Long messages
// exercise the chunked send path.
func handleEcho(bot *microgram.Bot) microgram.HandlerFunc {
	return func(ctx context.Context, u microgram.Update) (bool, error) {
		m := u.Msg()
		if m == nil || m.Text == "" || strings.HasPrefix(m.Text, "/") {
			return false, nil
		}

		_, err := bot.SendMessage(ctx, microgram.SendMessage{
			ChatID:           m.Chat.ID,
			Text:             m.Text,
			ReplyToMessageID: m.MessageID,
		})
		return true, err
	}
}
