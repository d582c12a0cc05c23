package server

import (
	"bytes"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/matzehuels/beerxml/pkg/buildinfo"
	"github.com/matzehuels/beerxml/pkg/errors"
	"github.com/matzehuels/beerxml/pkg/pipeline"
	"github.com/matzehuels/beerxml/pkg/render"
	"github.com/matzehuels/beerxml/pkg/source"
	"github.com/matzehuels/beerxml/pkg/units"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string         `json:"status"`
	Ready     bool           `json:"ready"`
	Cache     string         `json:"cache"`
	Build     buildinfo.Info `json:"build"`
	Timestamp time.Time      `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Ready:     s.isReady(),
		Cache:     s.runner.Cache.Backend(),
		Build:     buildinfo.Get(),
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) handleRecipe(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		writeCodedError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeCodedError(w, r, err)
		return
	}
	setCacheHeaders(w, res)

	status := http.StatusOK
	if res.Empty() {
		w.Header().Set("X-Beerxml-Reason", pipeline.NoRecipeReason(res))
		// The HTML fragment is embedded in pages, where the placeholder
		// comment is the expected output.
		if opts.Format != render.FormatHTML {
			status, _ = statusFor(noRecipeCode(res))
		}
	}

	var buf bytes.Buffer
	if err := pipeline.Render(&buf, res, opts); err != nil {
		writeError(w, r, http.StatusInternalServerError, string(errors.ErrCodeInternal), "could not render recipe", true)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(opts.Format))
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	src := q.Get("source")
	if src == "" {
		writeCodedError(w, r, errors.New(errors.ErrCodeInvalidInput, "missing source parameter"))
		return
	}
	if err := s.checkSource(src); err != nil {
		writeCodedError(w, r, err)
		return
	}
	scope := q.Get("scope")
	if scope == "" {
		scope = s.opts.Defaults.Scope
	}
	if err := s.runner.Invalidate(r.Context(), src, scope); err != nil {
		writeCodedError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requestOptions merges the query parameters over the server defaults.
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := s.opts.Defaults
	if opts.CacheTTLSeconds != nil {
		opts.CacheTTLSeconds = pipeline.Seconds(*opts.CacheTTLSeconds)
	}
	opts.Logger = s.logger.With("request_id", RequestID(r.Context()))

	opts.Source = q.Get("source")
	if opts.Source == "" {
		return opts, errors.New(errors.ErrCodeInvalidInput, "missing source parameter")
	}
	if err := s.checkSource(opts.Source); err != nil {
		return opts, err
	}
	if v := q.Get("units"); v != "" {
		opts.Units = units.System(v)
	}
	if v := q.Get("scope"); v != "" {
		opts.Scope = v
	}
	if q.Has("cache") {
		ttl, err := strconv.Atoi(q.Get("cache"))
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "cache must be a number of seconds, got %q", q.Get("cache"))
		}
		opts.CacheTTLSeconds = pipeline.Seconds(ttl)
	}

	format, err := requestFormat(q)
	if err != nil {
		return opts, err
	}
	opts.Format = format

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

func (s *Server) checkSource(raw string) error {
	loc, err := source.Normalize(raw)
	if err != nil {
		return err
	}
	if !loc.IsRemote() && !s.opts.AllowFileSources {
		return errors.New(errors.ErrCodeInvalidSource, "file sources are not served")
	}
	return nil
}

// requestFormat returns the format query parameter, defaulting to JSON.
func requestFormat(q url.Values) (string, error) {
	switch f := q.Get("format"); f {
	case "", render.FormatJSON:
		return render.FormatJSON, nil
	case render.FormatHTML:
		return f, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "format must be json or html, got %q", f)
	}
}

func noRecipeCode(res *pipeline.Result) errors.Code {
	if res.LoadErr == nil {
		return errors.ErrCodeNoRecipe
	}
	for _, code := range []errors.Code{errors.ErrCodeMalformed, errors.ErrCodeSourceUnavailable} {
		if errors.Has(res.LoadErr, code) {
			return code
		}
	}
	return errors.GetCode(res.LoadErr)
}

func setCacheHeaders(w http.ResponseWriter, res *pipeline.Result) {
	switch {
	case res.CacheInfo.TTL <= 0:
		w.Header().Set("X-Cache", "BYPASS")
	case res.CacheInfo.Hit:
		w.Header().Set("X-Cache", "HIT")
		age := time.Since(res.CacheInfo.StoredAt)
		if age < 0 {
			age = 0
		}
		w.Header().Set("Age", strconv.Itoa(int(age.Seconds())))
	default:
		w.Header().Set("X-Cache", "MISS")
	}
}
