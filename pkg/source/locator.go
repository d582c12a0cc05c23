package source

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/matzehuels/beerxml/pkg/errors"
)

// Scheme identifies how a document is fetched.
type Scheme string

const (
	SchemeFile  Scheme = "file"
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
	SchemeS3    Scheme = "s3"
)

// Locator is a validated, normalized document location.
// The zero value is not valid; use [Normalize].
type Locator struct {
	Scheme Scheme
	// Value is the canonical form: an absolute file path, a URL without
	// fragment, or s3://bucket/key.
	Value string
	// Bucket and Key are set for s3 locators.
	Bucket string
	Key    string
}

// String returns the canonical form.
func (l Locator) String() string { return l.Value }

// IsRemote reports whether fetching needs the network.
func (l Locator) IsRemote() bool { return l.Scheme != SchemeFile }

// Name returns the document's file name without extension, e.g. "pale-ale"
// for https://example.com/recipes/pale-ale.xml. It is used to keep cache
// keys readable.
func (l Locator) Name() string {
	var base string
	switch l.Scheme {
	case SchemeFile:
		base = filepath.Base(l.Value)
	case SchemeS3:
		base = path.Base(l.Key)
	default:
		u, err := url.Parse(l.Value)
		if err != nil || u.Path == "" || u.Path == "/" {
			return ""
		}
		base = path.Base(u.Path)
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// Normalize validates a user-supplied locator and returns its canonical form.
//
// Accepted forms:
//   - http:// and https:// URLs with a host (fragments are dropped)
//   - s3://bucket/key
//   - file:// URLs and bare file paths (made absolute)
//
// Any other scheme is rejected with code INVALID_SOURCE.
func Normalize(raw string) (Locator, error) {
	if err := errors.ValidateLocator(raw); err != nil {
		return Locator{}, err
	}
	s := strings.TrimSpace(raw)

	if !strings.Contains(s, "://") {
		if scheme, _, ok := strings.Cut(s, ":"); ok && len(scheme) > 1 && !strings.ContainsAny(scheme, `/\.`) {
			// "javascript:", "data:" and friends. Single letters are Windows drives.
			return Locator{}, errors.New(errors.ErrCodeInvalidSource, "unsupported source scheme %q", scheme)
		}
		return fileLocator(s)
	}

	u, err := url.Parse(s)
	if err != nil {
		return Locator{}, errors.Wrap(errors.ErrCodeInvalidSource, err, "invalid source URL")
	}

	switch Scheme(strings.ToLower(u.Scheme)) {
	case SchemeHTTP, SchemeHTTPS:
		if u.Host == "" {
			return Locator{}, errors.New(errors.ErrCodeInvalidSource, "source URL has no host")
		}
		u.Scheme = strings.ToLower(u.Scheme)
		u.Host = strings.ToLower(u.Host)
		u.Fragment = ""
		u.RawFragment = ""
		return Locator{Scheme: Scheme(u.Scheme), Value: u.String()}, nil

	case SchemeS3:
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Locator{}, errors.New(errors.ErrCodeInvalidSource, "s3 source must be s3://bucket/key")
		}
		return Locator{
			Scheme: SchemeS3,
			Value:  "s3://" + u.Host + "/" + key,
			Bucket: u.Host,
			Key:    key,
		}, nil

	case SchemeFile:
		if u.Host != "" && u.Host != "localhost" {
			return Locator{}, errors.New(errors.ErrCodeInvalidSource, "file URL must not name a remote host")
		}
		return fileLocator(u.Path)
	}

	return Locator{}, errors.New(errors.ErrCodeInvalidSource, "unsupported source scheme %q", u.Scheme)
}

func fileLocator(p string) (Locator, error) {
	if p == "" {
		return Locator{}, errors.New(errors.ErrCodeInvalidSource, "file source has no path")
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return Locator{}, errors.Wrap(errors.ErrCodeInvalidSource, err, "resolve path %s", p)
	}
	return Locator{Scheme: SchemeFile, Value: abs}, nil
}
