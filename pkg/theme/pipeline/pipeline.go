// Package pipeline runs a packaging job end to end: decode, resample,
// describe, assemble.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/provide-io/countertheme/pkg/theme"
	"github.com/provide-io/countertheme/pkg/theme/archive"
	"github.com/provide-io/countertheme/pkg/theme/decode"
	"github.com/provide-io/countertheme/pkg/theme/descriptor"
	themeerrors "github.com/provide-io/countertheme/pkg/theme/errors"
	"github.com/provide-io/countertheme/pkg/theme/info"
	"github.com/provide-io/countertheme/pkg/theme/resample"
	"github.com/provide-io/countertheme/pkg/theme/templates"
)

// Options configures a Pipeline.
type Options struct {
	// Workers bounds concurrent resampling. Zero uses runtime.NumCPU().
	Workers int

	// Timeout bounds a whole run. Zero means no limit beyond the caller's
	// context.
	Timeout time.Duration

	// Archive configures the ZIP writer.
	Archive archive.Options

	// Status receives state transitions. May be nil.
	Status StatusFunc
}

// Input is everything one run consumes.
type Input struct {
	Primary   theme.SourceAsset
	Request   theme.ThemeRequest
	Templates templates.Loader
}

// Result is the output of a successful run.
type Result struct {
	Archive    []byte
	FileName   string
	FrameCount int
	Entries    []string
}

// Pipeline wires the packaging components together.
type Pipeline struct {
	logger    hclog.Logger
	decoder   decode.FrameDecoder
	resampler *resample.Resampler
	assembler *archive.Assembler
	workers   int
	timeout   time.Duration
	status    StatusFunc
}

// New creates a Pipeline.
func New(logger hclog.Logger, opts Options) (*Pipeline, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.Workers < 0 {
		return nil, fmt.Errorf("%w: workers must not be negative, got %d", themeerrors.ErrInvalidRequest, opts.Workers)
	}

	assembler, err := archive.NewAssembler(opts.Archive)
	if err != nil {
		return nil, fmt.Errorf("creating assembler: %w", err)
	}

	return &Pipeline{
		logger:    logger.Named("pipeline"),
		decoder:   decode.NewDecoder(),
		resampler: resample.New(),
		assembler: assembler,
		workers:   opts.Workers,
		timeout:   opts.Timeout,
		status:    opts.Status,
	}, nil
}

// run tracks the state of one invocation.
type run struct {
	p     *Pipeline
	state State
}

func (r *run) transition(state State, format string, args ...any) {
	r.state = state
	msg := fmt.Sprintf(format, args...)
	r.p.logger.Debug("🔄 State transition", "state", state, "message", msg)
	if r.p.status != nil {
		r.p.status(state, msg)
	}
}

func (r *run) fail(err error) error {
	reason := themeerrors.Reason(err)
	r.p.logger.Error("❌ Packaging failed", "state", r.state, "reason", reason, "error", err)
	r.state = StateFailed
	if r.p.status != nil {
		r.p.status(StateFailed, fmt.Sprintf("Failed(%s): %v", reason, err))
	}
	return err
}

// checkpoint returns the context error, mapped into the taxonomy, if the
// run has been canceled or timed out.
func checkpoint(ctx context.Context) error {
	return themeerrors.FromContext(ctx.Err())
}

// Run packages in.Primary into a theme archive.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	r := &run{p: p, state: StateIdle}
	start := time.Now()

	req := in.Request.WithDefaults()
	p.logger.Info("🎬 Packaging theme", "name", req.ThemeName, "mime", in.Primary.MimeType, "bytes", len(in.Primary.Bytes))

	if err := req.Validate(); err != nil {
		return nil, r.fail(err)
	}
	if err := decode.CheckFormat(in.Primary.MimeType); err != nil {
		return nil, r.fail(err)
	}
	if req.PreviewSource != nil {
		if err := decode.CheckFormat(req.PreviewSource.MimeType); err != nil {
			return nil, r.fail(err)
		}
	}

	// Templates are loaded before any frame work so a foreseeable failure
	// does not discard completed work.
	r.transition(StateIdle, "Loading templates…")
	loader := in.Templates
	if loader == nil {
		loader = templates.NewFetcher(nil, nil)
	}
	tmpl, err := loader.Load(ctx)
	if err != nil {
		return nil, r.fail(themeerrors.FromContext(err))
	}
	if err := checkpoint(ctx); err != nil {
		return nil, r.fail(err)
	}

	r.transition(StateDecoding, "Decoding %s…", decode.NormalizeMimeType(in.Primary.MimeType))
	frames, err := p.decoder.Decode(ctx, in.Primary)
	if err != nil {
		return nil, r.fail(err)
	}
	if err := checkpoint(ctx); err != nil {
		return nil, r.fail(err)
	}
	p.logger.Debug("🖼️ Decoded frames", "count", len(frames), "width", frames[0].Width, "height", frames[0].Height)

	r.transition(StateResampling, "Extracted %d frames. Resizing…", len(frames))
	resized, err := p.resampler.ResizeAll(ctx, frames, req.TargetWidth, req.TargetHeight, p.workers)
	if err != nil {
		return nil, r.fail(err)
	}
	preview, err := p.preview(ctx, req, resized[0])
	if err != nil {
		return nil, r.fail(err)
	}
	if err := checkpoint(ctx); err != nil {
		return nil, r.fail(err)
	}

	r.transition(StateDescribing, "Resized %d frames. Writing descriptor…", len(resized))
	var descriptorText, infoText string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		descriptorText = descriptor.Build(resized, tmpl.Footer)
		return gctx.Err()
	})
	g.Go(func() error {
		infoText = info.Render(tmpl.Info, req.ThemeName)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, r.fail(themeerrors.FromContext(err))
	}
	if err := checkpoint(ctx); err != nil {
		return nil, r.fail(err)
	}

	r.transition(StateAssembling, "Packaging %d frames…", len(resized))
	layout := archive.Layout{
		Frames:     resized,
		Icon:       resized[0].Encoded,
		Preview:    preview,
		Descriptor: descriptorText,
		Info:       infoText,
	}
	data, err := p.assembler.Assemble(layout)
	if err != nil {
		return nil, r.fail(err)
	}
	if err := checkpoint(ctx); err != nil {
		return nil, r.fail(err)
	}

	entries := layout.Entries()
	result := &Result{
		Archive:    data,
		FileName:   theme.DownloadName(req.ThemeName),
		FrameCount: len(resized),
		Entries:    make([]string, len(entries)),
	}
	for i, e := range entries {
		result.Entries[i] = e.Path
	}

	r.transition(StateReady, "Theme %q ready (%d frames).", req.ThemeName, len(resized))
	p.logger.Info("✅ Theme packaged",
		"file", result.FileName,
		"frames", result.FrameCount,
		"bytes", len(data),
		"duration", time.Since(start))
	return result, nil
}

// preview produces the minimised image at the preview size: from the first
// frame of the preview source when one is given, otherwise from the first
// resized frame.
func (p *Pipeline) preview(ctx context.Context, req theme.ThemeRequest, first theme.ResizedFrame) ([]byte, error) {
	if req.PreviewSource == nil {
		encoded, err := p.resampler.ResizeEncoded(first.Encoded, req.PreviewWidth, req.PreviewHeight)
		if err != nil {
			return nil, fmt.Errorf("resizing preview from first frame: %w", err)
		}
		p.logger.Debug("🪞 Resized first frame as preview", "width", req.PreviewWidth, "height", req.PreviewHeight)
		return encoded, nil
	}

	frames, err := p.decoder.Decode(ctx, *req.PreviewSource)
	if err != nil {
		return nil, fmt.Errorf("decoding preview: %w", err)
	}
	encoded, err := p.resampler.ResizeImage(frames[0].Image(), req.PreviewWidth, req.PreviewHeight)
	if err != nil {
		return nil, fmt.Errorf("resizing preview: %w", err)
	}
	p.logger.Debug("🪞 Resized preview", "width", req.PreviewWidth, "height", req.PreviewHeight)
	return encoded, nil
}
