// Package templates loads the two text fragments a theme package is built
// from: the descriptor footer and the info.xml template.
package templates

import (
	"context"
	"embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	themeerrors "github.com/provide-io/countertheme/pkg/theme/errors"
)

//go:embed defaults/*.xml
var defaultFS embed.FS

// Embedded names the built-in templates in configuration.
const Embedded = "embedded"

// MaxTemplateSize bounds a fetched template.
const MaxTemplateSize = 1 << 20

// Set is a loaded pair of templates.
type Set struct {
	Footer string
	Info   string
}

// Load returns the set itself, so pre-fetched templates can be passed
// wherever a Loader is expected.
func (s Set) Load(context.Context) (Set, error) {
	return s, nil
}

// Loader produces a template Set.
type Loader interface {
	Load(ctx context.Context) (Set, error)
}

// Source produces the bytes of one template.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// FileSource reads a template from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.Path)
}

func (s FileSource) String() string { return s.Path }

// HTTPSource downloads a template.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxTemplateSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if len(data) > MaxTemplateSize {
		return nil, fmt.Errorf("template exceeds %d bytes", MaxTemplateSize)
	}
	return data, nil
}

func (s HTTPSource) String() string { return s.URL }

// EmbeddedSource serves one of the built-in templates.
type EmbeddedSource struct {
	Name string
}

func (s EmbeddedSource) Fetch(context.Context) ([]byte, error) {
	return defaultFS.ReadFile("defaults/" + s.Name)
}

func (s EmbeddedSource) String() string { return Embedded + ":" + s.Name }

// DefaultFooter is the built-in descriptor footer.
var DefaultFooter Source = EmbeddedSource{Name: "footer.xml"}

// DefaultInfo is the built-in info.xml template.
var DefaultInfo Source = EmbeddedSource{Name: "info.xml"}

// ParseSource interprets a configured location: an http(s) URL, a file
// path, or "embedded"/"" for the built-in fallback.
func ParseSource(location string, fallback Source, client *http.Client) Source {
	switch loc := strings.TrimSpace(location); {
	case loc == "" || loc == Embedded:
		return fallback
	case strings.HasPrefix(loc, "http://"), strings.HasPrefix(loc, "https://"):
		return HTTPSource{URL: loc, Client: client}
	default:
		return FileSource{Path: loc}
	}
}

// Fetcher loads the footer and info templates concurrently.
type Fetcher struct {
	Footer Source
	Info   Source
}

// NewFetcher creates a Fetcher, substituting the built-in templates for nil
// sources.
func NewFetcher(footer, info Source) *Fetcher {
	if footer == nil {
		footer = DefaultFooter
	}
	if info == nil {
		info = DefaultInfo
	}
	return &Fetcher{Footer: footer, Info: info}
}

// Load fetches both templates. Either failure fails the whole load with
// ErrTemplateFetch.
func (f *Fetcher) Load(ctx context.Context) (Set, error) {
	var footer, info []byte

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := f.Footer.Fetch(gctx)
		if err != nil {
			return fmt.Errorf("%w: footer from %s: %w", themeerrors.ErrTemplateFetch, f.Footer, err)
		}
		footer = data
		return nil
	})
	g.Go(func() error {
		data, err := f.Info.Fetch(gctx)
		if err != nil {
			return fmt.Errorf("%w: info from %s: %w", themeerrors.ErrTemplateFetch, f.Info, err)
		}
		info = data
		return nil
	})

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Set{}, themeerrors.FromContext(ctxErr)
		}
		return Set{}, err
	}
	return Set{Footer: string(footer), Info: string(info)}, nil
}
