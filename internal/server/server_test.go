package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beerxml/pkg/cache"
	"github.com/matzehuels/beerxml/pkg/config"
	"github.com/matzehuels/beerxml/pkg/observability"
	"github.com/matzehuels/beerxml/pkg/pipeline"
	"github.com/matzehuels/beerxml/pkg/render"
)

const paleAle = `<RECIPES><RECIPE>
  <NAME>Burton Pale Ale</NAME>
  <FERMENTABLES><FERMENTABLE><NAME>Pale Malt</NAME><AMOUNT>4.5</AMOUNT></FERMENTABLE></FERMENTABLES>
  <HOPS><HOP><NAME>Fuggle</NAME><AMOUNT>0.028</AMOUNT><TIME>60</TIME><USE>Boil</USE><FORM>Leaf</FORM><ALPHA>4.5</ALPHA></HOP></HOPS>
  <YEASTS><YEAST><NAME>London ESB</NAME><LABORATORY>Wyeast</LABORATORY><ATTENUATION>69</ATTENUATION><MIN_TEMPERATURE>18</MIN_TEMPERATURE><MAX_TEMPERATURE>22</MAX_TEMPERATURE></YEAST></YEASTS>
</RECIPE></RECIPES>`

// upstream serves documents by path.
func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	docs := map[string]string{
		"/pale-ale.xml": paleAle,
		"/broken.xml":   "<RECIPES><RECIPE>",
		"/empty.xml":    "<RECIPES/>",
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc, ok := docs[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, doc)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, mutate func(*Options)) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(cache.NewMemoryCache(nil), nil, nil, logger)
	t.Cleanup(func() { _ = runner.Close() })

	opts := OptionsFromConfig(config.Default())
	if mutate != nil {
		mutate(&opts)
	}
	srv := httptest.NewServer(New(runner, opts, logger).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, rawURL string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(rawURL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func recipeURL(base string, params map[string]string) string {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return base + "/v1/recipe?" + q.Encode()
}

func decodeError(t *testing.T, body string) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		t.Fatalf("error body is not JSON: %v\n%s", err, body)
	}
	return e
}

func TestRecipeHTML(t *testing.T) {
	up := upstream(t)
	srv := newTestServer(t, nil)
	u := recipeURL(srv.URL, map[string]string{"source": up.URL + "/pale-ale.xml", "units": "metric", "format": "html"})

	resp, body := get(t, u)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d\n%s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != render.ContentType(render.FormatHTML) {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(body, "<td>4.5 kg</td>") {
		t.Errorf("body missing metric amount:\n%s", body)
	}
	if resp.Header.Get("X-Cache") != "MISS" {
		t.Errorf("first X-Cache = %q, want MISS", resp.Header.Get("X-Cache"))
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id")
	}

	resp, _ = get(t, u)
	if resp.Header.Get("X-Cache") != "HIT" {
		t.Errorf("second X-Cache = %q, want HIT", resp.Header.Get("X-Cache"))
	}
	if resp.Header.Get("Age") == "" {
		t.Error("cache hit should carry Age")
	}
}

func TestRecipeJSONDefault(t *testing.T) {
	up := upstream(t)
	srv := newTestServer(t, nil)

	resp, body := get(t, recipeURL(srv.URL, map[string]string{"source": up.URL + "/pale-ale.xml"}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d\n%s", resp.StatusCode, body)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}

	var doc struct {
		Recipe struct {
			Name         string `json:"name"`
			Fermentables []struct {
				Amount struct {
					Value float64 `json:"value"`
					Unit  string  `json:"unit"`
				} `json:"amount"`
			} `json:"fermentables"`
		} `json:"recipe"`
	}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Recipe.Name != "Burton Pale Ale" {
		t.Errorf("name = %q", doc.Recipe.Name)
	}
	if a := doc.Recipe.Fermentables[0].Amount; a.Value != 9.92 || a.Unit != "lbs" {
		t.Errorf("amount = %+v, want 9.92 lbs", a)
	}
}

func TestRecipeBadRequests(t *testing.T) {
	up := upstream(t)
	srv := newTestServer(t, nil)
	src := up.URL + "/pale-ale.xml"

	tests := []struct {
		name   string
		params map[string]string
		code   string
	}{
		{"missing source", map[string]string{}, "INVALID_INPUT"},
		{"bad scheme", map[string]string{"source": "javascript:alert(1)"}, "INVALID_SOURCE"},
		{"file source", map[string]string{"source": "/etc/passwd"}, "INVALID_SOURCE"},
		{"bad units", map[string]string{"source": src, "units": "kelvin"}, "INVALID_UNITS"},
		{"bad format", map[string]string{"source": src, "format": "yaml"}, "INVALID_FORMAT"},
		{"bad ttl", map[string]string{"source": src, "cache": "soon"}, "INVALID_INPUT"},
		{"bad scope", map[string]string{"source": src, "scope": "a:b"}, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, recipeURL(srv.URL, tt.params))
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400\n%s", resp.StatusCode, body)
			}
			e := decodeError(t, body)
			if e.Code != tt.code {
				t.Errorf("code = %q, want %q", e.Code, tt.code)
			}
			if e.RequestID == "" || e.RequestID != resp.Header.Get("X-Request-Id") {
				t.Errorf("request_id = %q, header = %q", e.RequestID, resp.Header.Get("X-Request-Id"))
			}
		})
	}
}

func TestRecipeNoRecipe(t *testing.T) {
	up := upstream(t)
	srv := newTestServer(t, nil)

	tests := []struct {
		path   string
		format string
		status int
		want   string
	}{
		{"/broken.xml", "json", http.StatusUnprocessableEntity, `"recipe": null`},
		{"/missing.xml", "json", http.StatusBadGateway, "could not be retrieved"},
		{"/empty.xml", "json", http.StatusNotFound, "no recipes"},
		{"/broken.xml", "html", http.StatusOK, render.NoRecipeHTML},
		{"/missing.xml", "html", http.StatusOK, render.NoRecipeHTML},
	}

	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.format, func(t *testing.T) {
			resp, body := get(t, recipeURL(srv.URL, map[string]string{"source": up.URL + tt.path, "format": tt.format}))
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if !strings.Contains(body, tt.want) {
				t.Errorf("body = %q, want it to contain %q", body, tt.want)
			}
			if resp.Header.Get("X-Beerxml-Reason") == "" {
				t.Error("missing X-Beerxml-Reason")
			}
		})
	}
}

func TestFileSourcesWhenAllowed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pale-ale.xml")
	if err := os.WriteFile(path, []byte(paleAle), 0o644); err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(t, func(o *Options) { o.AllowFileSources = true })

	resp, body := get(t, recipeURL(srv.URL, map[string]string{"source": path, "format": "html"}))
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "9.92 lbs") {
		t.Errorf("status = %d\n%s", resp.StatusCode, body)
	}
}

func TestCacheParameter(t *testing.T) {
	up := upstream(t)
	srv := newTestServer(t, nil)
	src := up.URL + "/pale-ale.xml"

	resp, _ := get(t, recipeURL(srv.URL, map[string]string{"source": src, "cache": "0"}))
	if resp.Header.Get("X-Cache") != "BYPASS" {
		t.Errorf("cache=0 X-Cache = %q, want BYPASS", resp.Header.Get("X-Cache"))
	}
	resp, _ = get(t, recipeURL(srv.URL, map[string]string{"source": src}))
	if resp.Header.Get("X-Cache") != "MISS" {
		t.Errorf("after bypass X-Cache = %q, want MISS", resp.Header.Get("X-Cache"))
	}
	resp, _ = get(t, recipeURL(srv.URL, map[string]string{"source": src, "cache": "-1"}))
	if resp.Header.Get("X-Cache") != "BYPASS" {
		t.Errorf("cache=-1 X-Cache = %q, want BYPASS", resp.Header.Get("X-Cache"))
	}
	resp, _ = get(t, recipeURL(srv.URL, map[string]string{"source": src}))
	if resp.Header.Get("X-Cache") != "MISS" {
		t.Errorf("after invalidate X-Cache = %q, want MISS", resp.Header.Get("X-Cache"))
	}
}

func TestInvalidateEndpoint(t *testing.T) {
	up := upstream(t)
	srv := newTestServer(t, nil)
	params := map[string]string{"source": up.URL + "/pale-ale.xml", "scope": "post-7"}

	get(t, recipeURL(srv.URL, params))

	req, err := http.NewRequest(http.MethodDelete, recipeURL(srv.URL, params), nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", resp.StatusCode)
	}

	resp, _ = get(t, recipeURL(srv.URL, params))
	if resp.Header.Get("X-Cache") != "MISS" {
		t.Errorf("X-Cache after DELETE = %q, want MISS", resp.Header.Get("X-Cache"))
	}
}

func TestRateLimit(t *testing.T) {
	up := upstream(t)
	srv := newTestServer(t, func(o *Options) {
		o.RateLimit = 0.001
		o.RateBurst = 1
	})
	u := recipeURL(srv.URL, map[string]string{"source": up.URL + "/pale-ale.xml"})

	if resp, _ := get(t, u); resp.StatusCode != http.StatusOK {
		t.Fatalf("first request status = %d", resp.StatusCode)
	}
	resp, body := get(t, u)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") != "1" {
		t.Errorf("Retry-After = %q", resp.Header.Get("Retry-After"))
	}
	if e := decodeError(t, body); e.Code != "RATE_LIMITED" || !e.Retryable {
		t.Errorf("error = %+v", e)
	}

	// System endpoints are exempt.
	if resp, _ := get(t, srv.URL+"/healthz"); resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d while rate limited", resp.StatusCode)
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	srv := newTestServer(t, nil)
	const id = "5f0c7a3e-2a55-4c1f-9a7e-0b9f0f3d1c2b"

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set("X-Request-Id", id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-Id"); got != id {
		t.Errorf("X-Request-Id = %q, want %q", got, id)
	}

	req.Header.Set("X-Request-Id", "not-a-uuid")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-Id"); got == "not-a-uuid" || got == "" {
		t.Errorf("invalid request ID was not replaced: %q", got)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	RegisterMetricsHooks()
	t.Cleanup(observability.Reset)

	up := upstream(t)
	srv := newTestServer(t, nil)

	resp, body := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}
	var health HealthResponse
	if err := json.Unmarshal([]byte(body), &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" || health.Cache != cache.BackendMemory {
		t.Errorf("health = %+v", health)
	}

	get(t, recipeURL(srv.URL, map[string]string{"source": up.URL + "/pale-ale.xml"}))

	_, metrics := get(t, srv.URL+"/metrics")
	for _, want := range []string{
		`beerxml_http_requests_total{method="GET",route="/v1/recipe",status="200"}`,
		`beerxml_document_loads_total{outcome="ok"}`,
		`beerxml_recipe_cache_events_total{backend="memory",event="set"}`,
		`beerxml_fetch_bytes_total{scheme="http"}`,
	} {
		if !strings.Contains(metrics, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, body := get(t, srv.URL+"/v2/recipe")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if e := decodeError(t, body); e.Code != "NOT_FOUND" {
		t.Errorf("code = %q", e.Code)
	}
}
