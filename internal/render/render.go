package render

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/i474232898/heweather-bot/internal/weather"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template and viewport of the weather card.
const DefaultTemplate = "weather.html"

var DefaultViewport = Viewport{Width: 1000, Height: 1250}

// Viewport is the browser window size used for the screenshot.
type Viewport struct {
	Width  int
	Height int
}

// Request is one rendering job.
type Request struct {
	Template string
	Viewport Viewport
	Data     weather.View
}

// Renderer turns a weather view into an image.
type Renderer interface {
	Render(ctx context.Context, req Request) ([]byte, error)
}

var errNoRendererURL = errors.New("renderer url not configured")

// ChromiumRenderer executes the HTML template locally and has a headless
// Chromium service (Gotenberg's screenshot route) turn the page into a PNG.
type ChromiumRenderer struct {
	client    *http.Client
	baseURL   string
	templates *template.Template
}

// NewChromiumRenderer parses the embedded templates.
func NewChromiumRenderer(client *http.Client, baseURL string) (*ChromiumRenderer, error) {
	if baseURL == "" {
		return nil, errNoRendererURL
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &ChromiumRenderer{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		templates: tmpl,
	}, nil
}

// HTML executes the named template with the view.
func (r *ChromiumRenderer) HTML(name string, view weather.View) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, view); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (r *ChromiumRenderer) Render(ctx context.Context, req Request) ([]byte, error) {
	if req.Template == "" {
		req.Template = DefaultTemplate
	}
	if req.Viewport == (Viewport{}) {
		req.Viewport = DefaultViewport
	}

	page, err := r.HTML(req.Template, req.Data)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(page); err != nil {
		return nil, err
	}
	fields := map[string]string{
		"width":  strconv.Itoa(req.Viewport.Width),
		"height": strconv.Itoa(req.Viewport.Height),
		"format": "png",
	}
	for k, v := range fields {
		if err := form.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/forms/chromium/screenshot/html", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("renderer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("renderer returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return io.ReadAll(resp.Body)
}
