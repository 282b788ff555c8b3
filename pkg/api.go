// Package pkg is the entry point for building and verifying encounter
// counter themes from Go code.
package pkg

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/countertheme/pkg/config"
	"github.com/provide-io/countertheme/pkg/theme"
	"github.com/provide-io/countertheme/pkg/theme/decode"
	"github.com/provide-io/countertheme/pkg/theme/pipeline"
	"github.com/provide-io/countertheme/pkg/theme/templates"
)

// BuildOptions configures BuildTheme.
type BuildOptions struct {
	Request  theme.ThemeRequest
	Pipeline pipeline.Options

	// FooterTemplate and InfoTemplate are file paths, http(s) URLs, or
	// empty for the embedded defaults.
	FooterTemplate string
	InfoTemplate   string

	// HTTPClient fetches URL templates. Nil uses http.DefaultClient.
	HTTPClient *http.Client
}

// BuildTheme packages primary into a theme archive.
func BuildTheme(ctx context.Context, primary theme.SourceAsset, opts BuildOptions, logger hclog.Logger) (*pipeline.Result, error) {
	p, err := pipeline.New(logger, opts.Pipeline)
	if err != nil {
		return nil, err
	}

	loader := templates.NewFetcher(
		templates.ParseSource(opts.FooterTemplate, templates.DefaultFooter, opts.HTTPClient),
		templates.ParseSource(opts.InfoTemplate, templates.DefaultInfo, opts.HTTPClient),
	)
	return p.Run(ctx, pipeline.Input{
		Primary:   primary,
		Request:   opts.Request,
		Templates: loader,
	})
}

// OptionsFromConfig converts a loaded configuration into BuildOptions.
func OptionsFromConfig(cfg *config.Config) (BuildOptions, error) {
	archiveOpts, err := cfg.ArchiveOptions()
	if err != nil {
		return BuildOptions{}, err
	}
	return BuildOptions{
		Request: cfg.Request(),
		Pipeline: pipeline.Options{
			Workers: cfg.Resample.Workers,
			Timeout: cfg.Timeout,
			Archive: archiveOpts,
		},
		FooterTemplate: cfg.Templates.Footer,
		InfoTemplate:   cfg.Templates.Info,
	}, nil
}

// LoadAsset reads an image file and detects its MIME type.
func LoadAsset(path string) (theme.SourceAsset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return theme.SourceAsset{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return theme.SourceAsset{Bytes: data, MimeType: DetectMimeType(path, data)}, nil
}

// DetectMimeType sniffs data, falling back to the file extension when the
// content is not a recognised image.
func DetectMimeType(name string, data []byte) string {
	sniffed := decode.NormalizeMimeType(http.DetectContentType(data))
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		return decode.NormalizeMimeType(byExt)
	}
	return sniffed
}
