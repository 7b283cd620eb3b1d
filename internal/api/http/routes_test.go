package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/heweather-bot/internal/chat"
	"github.com/i474232898/heweather-bot/internal/render"
	"github.com/i474232898/heweather-bot/internal/weather"
)

type cannedProvider struct {
	lookupCode string
}

func (p cannedProvider) LookupCity(ctx context.Context, location string) (weather.CityLookupResponse, error) {
	code := p.lookupCode
	if code == "" {
		code = weather.CodeOK
	}
	return weather.CityLookupResponse{Code: code, Location: []weather.ResolvedCity{{ID: "101010100", Name: "北京"}}}, nil
}

func (cannedProvider) Now(ctx context.Context, id string) (weather.NowResponse, error) {
	return weather.NowResponse{Code: weather.CodeOK}, nil
}

func (cannedProvider) Daily(ctx context.Context, id string, days int) (weather.DailyResponse, error) {
	return weather.DailyResponse{Code: weather.CodeOK}, nil
}

func (cannedProvider) Air(ctx context.Context, id string) (weather.AirResponse, error) {
	return weather.AirResponse{Code: weather.CodeNoData}, nil
}

func (cannedProvider) Warning(ctx context.Context, id string) (weather.WarningResponse, error) {
	return weather.WarningResponse{Code: "500"}, nil
}

func (cannedProvider) Hourly(ctx context.Context, id string) (weather.HourlyResponse, error) {
	return weather.HourlyResponse{Code: weather.CodeOK}, nil
}

type pngRenderer struct{}

func (pngRenderer) Render(ctx context.Context, req render.Request) ([]byte, error) {
	return []byte("png:" + req.Data.City), nil
}

type replyBody struct {
	Replies []chat.Reply `json:"replies"`
}

func newTestApp(t *testing.T, p weather.Provider) *fiber.App {
	t.Helper()
	svc, err := weather.NewService(p, weather.Options{APITier: 1, ForecastDays: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	app := fiber.New()
	RegisterRoutes(app, chat.NewBot(svc, pngRenderer{}, chat.Options{HourlyType: weather.Hourly12h, Location: time.UTC}))
	return app
}

func decodeReplies(t *testing.T, resp *http.Response) []chat.Reply {
	t.Helper()
	defer resp.Body.Close()
	var body replyBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body.Replies
}

func postMessage(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return resp
}

func TestMessageValidation(t *testing.T) {
	app := newTestApp(t, cannedProvider{})

	for _, body := range []string{`{}`, `{"content":""}`, `not json`} {
		resp := postMessage(t, app, body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected status %d, got %d", body, http.StatusBadRequest, resp.StatusCode)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestMessageNotAQuery(t *testing.T) {
	app := newTestApp(t, cannedProvider{})

	resp := postMessage(t, app, `{"content":"hello there"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if replies := decodeReplies(t, resp); len(replies) != 0 {
		t.Fatalf("expected no replies, got %+v", replies)
	}
}

func TestMessageQueryFailure(t *testing.T) {
	// The canned warning facet reports 500.
	app := newTestApp(t, cannedProvider{})

	resp := postMessage(t, app, `{"content":"北京天气"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	replies := decodeReplies(t, resp)
	if len(replies) != 2 || replies[0].Text != "查询 北京 的天气信息..." || replies[1].Text != chat.MsgQueryFailed {
		t.Fatalf("unexpected replies: %+v", replies)
	}
}

func TestWeatherCommandCityNotFound(t *testing.T) {
	app := newTestApp(t, cannedProvider{lookupCode: weather.CodeNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather?location="+url.QueryEscape("火星"), nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	replies := decodeReplies(t, resp)
	if len(replies) != 2 || replies[1].Text != "未找到城市: 火星" {
		t.Fatalf("unexpected replies: %+v", replies)
	}
}

type okProvider struct{ cannedProvider }

func (okProvider) Warning(ctx context.Context, id string) (weather.WarningResponse, error) {
	return weather.WarningResponse{Code: weather.CodeNoData}, nil
}

func TestWeatherCommandImage(t *testing.T) {
	app := newTestApp(t, okProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather?location=beijing", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	replies := decodeReplies(t, resp)
	if len(replies) != 2 || replies[1].Type != chat.ReplyImage {
		t.Fatalf("unexpected replies: %+v", replies)
	}
	// The canonical name from the lookup reaches the renderer.
	if string(replies[1].Image) != "png:北京" {
		t.Fatalf("unexpected image %q", replies[1].Image)
	}
}

func TestMessageCommand(t *testing.T) {
	app := newTestApp(t, okProvider{})

	resp := postMessage(t, app, `{"content":"heweather beijing"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	replies := decodeReplies(t, resp)
	if len(replies) != 2 || replies[0].Text != "查询 beijing 的天气信息..." || string(replies[1].Image) != "png:北京" {
		t.Fatalf("unexpected replies: %+v", replies)
	}
}
