package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/width"

	"github.com/i474232898/heweather-bot/internal/common"
	"github.com/i474232898/heweather-bot/internal/render"
	"github.com/i474232898/heweather-bot/internal/weather"
)

// Command is the named command and its alias.
const (
	Command      = "heweather"
	CommandAlias = "天气"
)

// User-facing messages.
const (
	MsgInvalidLocation = "请输入一个有效的地点"
	MsgQuerying        = "查询 %s 的天气信息..."
	MsgCityNotFound    = "未找到城市: %s"
	MsgQueryFailed     = "查询天气信息失败"
)

var queryPattern = regexp.MustCompile(`^(.+?)天气\s*$|^天气(.+?)\s*$`)

// ReplyType tells the chat surface how to deliver a reply.
type ReplyType string

const (
	ReplyText  ReplyType = "text"
	ReplyImage ReplyType = "image"
)

// Reply is one message sent back to the chat.
type Reply struct {
	Type  ReplyType `json:"type"`
	Text  string    `json:"text,omitempty"`
	MIME  string    `json:"mime,omitempty"`
	Image []byte    `json:"data,omitempty"`
}

func textReply(format string, args ...any) Reply {
	return Reply{Type: ReplyText, Text: fmt.Sprintf(format, args...)}
}

// ParseLocation extracts the location from "<location>天气" or "天气<location>".
// matched is false when the text is not a weather query at all; a matched
// query with a blank location returns an empty string.
func ParseLocation(text string) (location string, matched bool) {
	folded := width.Fold.String(text)
	m := queryPattern.FindStringSubmatch(folded)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(common.FirstNonEmpty(m[1], m[2])), true
}

// ParseCommand extracts the argument of "heweather <location>" or its alias
// "天气 <location>". A leading "/" is accepted. ok is false when text does
// not invoke the command; an invocation without a location returns "".
func ParseCommand(text string) (arg string, ok bool) {
	folded := strings.TrimSpace(width.Fold.String(text))
	folded = strings.TrimPrefix(folded, "/")
	for _, name := range []string{Command, CommandAlias} {
		rest, found := strings.CutPrefix(folded, name)
		if !found {
			continue
		}
		if rest == "" {
			return "", true
		}
		if r, _ := utf8.DecodeRuneInString(rest); unicode.IsSpace(r) {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

// Options are the presentation settings of a Bot.
type Options struct {
	HourlyType weather.HourlyType
	Location   *time.Location
}

// Bot answers weather queries coming from the chat surface.
type Bot struct {
	service  *weather.Service
	renderer render.Renderer
	opts     Options
}

// NewBot creates a new Bot.
func NewBot(service *weather.Service, renderer render.Renderer, opts Options) *Bot {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Bot{
		service:  service,
		renderer: renderer,
		opts:     opts,
	}
}

// HandleMessage reacts to chat text: the heweather command first, then the
// free "<location>天气" forms. Anything else yields no replies.
func (b *Bot) HandleMessage(ctx context.Context, text string) ([]Reply, error) {
	location, ok := ParseCommand(text)
	if !ok {
		location, ok = ParseLocation(text)
	}
	if !ok {
		return nil, nil
	}
	if location == "" {
		return []Reply{textReply(MsgInvalidLocation)}, nil
	}
	return b.Query(ctx, location)
}

// Query runs the named command for a location. The replies are meant for
// the user even when an error is returned; the error is for the operator.
func (b *Bot) Query(ctx context.Context, location string) ([]Reply, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return []Reply{textReply(MsgInvalidLocation)}, nil
	}

	queryID := uuid.NewString()
	replies := []Reply{textReply(MsgQuerying, location)}
	log.Printf("INFO: [%s] weather query for %q", queryID, location)

	image, err := b.render(ctx, location)
	if err != nil {
		var notFound *weather.CityNotFoundError
		if errors.As(err, &notFound) {
			log.Printf("INFO: [%s] city not found: %q", queryID, location)
			return append(replies, textReply(MsgCityNotFound, location)), nil
		}
		log.Printf("ERROR: [%s] weather query for %q failed: %v", queryID, location, err)
		return append(replies, textReply(MsgQueryFailed)), fmt.Errorf("query %s: %w", queryID, err)
	}

	log.Printf("INFO: [%s] rendered %d bytes", queryID, len(image))
	return append(replies, Reply{Type: ReplyImage, MIME: "image/png", Image: image}), nil
}

func (b *Bot) render(ctx context.Context, location string) ([]byte, error) {
	snapshot, err := b.service.Load(ctx, location)
	if err != nil {
		return nil, err
	}

	view, err := weather.Present(snapshot, weather.PresentOptions{
		HourlyType: b.opts.HourlyType,
		Location:   b.opts.Location,
	})
	if err != nil {
		return nil, err
	}

	return b.renderer.Render(ctx, render.Request{
		Template: render.DefaultTemplate,
		Viewport: render.DefaultViewport,
		Data:     view,
	})
}
