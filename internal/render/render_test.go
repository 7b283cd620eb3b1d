package render

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/i474232898/heweather-bot/internal/weather"
)

func sampleView() weather.View {
	return weather.View{
		City: "上海",
		Now:  weather.Now{Temp: "25", Text: "多云", Icon: "101"},
		Days: []weather.DayView{{Daily: weather.Daily{FxDate: "2024-06-01", TempMin: "20", TempMax: "28"}, Week: "今日", Date: "6月1日"}},
		Air:  &weather.AirView{Air: weather.Air{Category: "良", AQI: "55"}, TagColor: "#A9A538"},
		Warning: []weather.Warning{
			{Title: "高温黄色预警", Text: "注意防暑"},
		},
		Hours: []weather.HourView{{Hourly: weather.Hourly{Temp: "25"}, Hour: "11AM", TempPercent: 75}},
	}
}

func TestHTML(t *testing.T) {
	r, err := NewChromiumRenderer(http.DefaultClient, "http://renderer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	page, err := r.HTML(DefaultTemplate, sampleView())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	html := string(page)
	for _, want := range []string{"上海", "高温黄色预警", "11AM", "75px", "今日 6月1日", "#A9A538", "qi-101"} {
		if !strings.Contains(html, want) {
			t.Errorf("page misses %q", want)
		}
	}
}

func TestHTMLWithoutAirOrWarnings(t *testing.T) {
	r, err := NewChromiumRenderer(http.DefaultClient, "http://renderer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := sampleView()
	v.Air = nil
	v.Warning = nil

	page, err := r.HTML(DefaultTemplate, v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(page), `class="air"`) || strings.Contains(string(page), `class="warning"`) {
		t.Fatal("expected no air or warning blocks")
	}
}

func TestRender(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forms/chromium/screenshot/html" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.FormValue("width") != "1000" || r.FormValue("height") != "1250" || r.FormValue("format") != "png" {
			t.Errorf("unexpected fields: %v", r.MultipartForm.Value)
		}
		f, hdr, err := r.FormFile("files")
		if err != nil {
			t.Errorf("missing page: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		page, _ := io.ReadAll(f)
		if hdr.Filename != "index.html" || !strings.Contains(string(page), "上海") {
			t.Errorf("unexpected page %s", hdr.Filename)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("PNGDATA"))
	}))
	defer srv.Close()

	r, err := NewChromiumRenderer(srv.Client(), srv.URL+"/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, err := r.Render(context.Background(), Request{Data: sampleView()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(img) != "PNGDATA" {
		t.Fatalf("unexpected image %q", img)
	}
}

func TestRenderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chromium crashed", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r, err := NewChromiumRenderer(srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = r.Render(context.Background(), Request{Template: DefaultTemplate, Viewport: DefaultViewport, Data: sampleView()})
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected status error, got %v", err)
	}

	if _, err := NewChromiumRenderer(http.DefaultClient, ""); err == nil {
		t.Fatal("expected error without renderer url")
	}
}
