package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/weatherhub/internal/session"
	"github.com/geocoder89/weatherhub/internal/weather"
	"github.com/geocoder89/weatherhub/internal/web/handlers"
	"github.com/geocoder89/weatherhub/internal/web/templates"
)

type stubFetcher struct {
	fetchFn func(ctx context.Context, q string) (*weather.Snapshot, error)
}

func (s *stubFetcher) Fetch(ctx context.Context, q string) (*weather.Snapshot, error) {
	if s.fetchFn != nil {
		return s.fetchFn(ctx, q)
	}

	return nil, nil
}

func cityOf(query string) string {
	name, _, _ := strings.Cut(query, ",")
	return strings.TrimSpace(name)
}

func allCitiesFetcher() *stubFetcher {
	return &stubFetcher{
		fetchFn: func(_ context.Context, q string) (*weather.Snapshot, error) {
			return &weather.Snapshot{Query: q, City: cityOf(q), TemperatureC: 20, Description: "trời quang"}, nil
		},
	}
}

func newWeatherRouter(fetcher weather.Fetcher) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(templates.New())

	flash := handlers.NewFlashCodec("test-secret")
	h := handlers.NewWeatherHandler(fetcher, session.NewManager("test-secret"), flash, discardLogger())

	r.GET("/", h.Home)
	r.POST("/search", h.Search)

	return r
}

func TestHomeRendersFixedPanels(t *testing.T) {
	router := newWeatherRouter(allCitiesFetcher())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	body := w.Body.String()

	for _, city := range []string{"London", "Tokyo", "Washington"} {
		if !strings.Contains(body, city) {
			t.Errorf("home page missing panel for %s", city)
		}
	}

	if strings.Contains(body, "Kết quả tìm kiếm") {
		t.Errorf("home page rendered a search result without a search")
	}
}

func TestHomeRequiresNoLogin(t *testing.T) {
	router := newWeatherRouter(allCitiesFetcher())

	// no cookies at all
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("anonymous home request got %d, want 200", w.Code)
	}
}

func TestHomeOmitsFailedPanels(t *testing.T) {
	fetcher := &stubFetcher{
		fetchFn: func(_ context.Context, q string) (*weather.Snapshot, error) {
			if strings.HasPrefix(q, "Tokyo") {
				return nil, errors.New("upstream down")
			}
			return &weather.Snapshot{Query: q, City: cityOf(q), TemperatureC: 20}, nil
		},
	}

	router := newWeatherRouter(fetcher)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: one dead panel must not abort the page", w.Code)
	}

	body := w.Body.String()

	if strings.Contains(body, "Tokyo") {
		t.Errorf("failed panel still rendered")
	}

	for _, city := range []string{"London", "Washington"} {
		if !strings.Contains(body, city) {
			t.Errorf("surviving panel for %s missing", city)
		}
	}
}

func TestSearchFound(t *testing.T) {
	router := newWeatherRouter(allCitiesFetcher())

	w := postForm(router, "/search", url.Values{"city": {"Paris, FR"}})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	body := w.Body.String()

	if !strings.Contains(body, "Kết quả tìm kiếm") || !strings.Contains(body, "Paris") {
		t.Errorf("search result panel missing")
	}

	for _, city := range []string{"London", "Tokyo", "Washington"} {
		if !strings.Contains(body, city) {
			t.Errorf("fixed panel for %s missing from search page", city)
		}
	}
}

func TestSearchNotFound(t *testing.T) {
	fetcher := &stubFetcher{
		fetchFn: func(_ context.Context, q string) (*weather.Snapshot, error) {
			if strings.HasPrefix(q, "Nowhere") {
				return nil, nil
			}
			return &weather.Snapshot{Query: q, City: cityOf(q), TemperatureC: 20}, nil
		},
	}

	router := newWeatherRouter(fetcher)

	w := postForm(router, "/search", url.Values{"city": {"Nowhere,ZZ"}})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	body := w.Body.String()

	if !strings.Contains(body, "Không tìm thấy thông tin thời tiết") {
		t.Errorf("not-found notice missing")
	}

	for _, city := range []string{"London", "Tokyo", "Washington"} {
		if !strings.Contains(body, city) {
			t.Errorf("fixed panel for %s missing despite failed search", city)
		}
	}
}
