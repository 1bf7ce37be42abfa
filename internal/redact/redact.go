package redact

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/poblur/internal/blur"
	"github.com/MeKo-Tech/poblur/internal/common"
	"github.com/MeKo-Tech/poblur/internal/detect"
	"github.com/MeKo-Tech/poblur/internal/layout"
	"github.com/MeKo-Tech/poblur/internal/utils"
)

// DefaultOutputSuffix is inserted before the extension when no output path
// is given.
const DefaultOutputSuffix = "_blurred"

// Redactor wires together region selection and blurring.
type Redactor struct {
	cfg             Config
	catalog         layout.Catalog
	detector        detect.Detector
	strength        blur.Strength
	strengthClamped bool
}

// Config returns the redactor configuration.
func (r *Redactor) Config() Config { return r.cfg }

// Catalog returns the resolved layout catalog.
func (r *Redactor) Catalog() layout.Catalog { return r.catalog }

// DefaultOutputPath returns the sibling output path for an input image,
// inserting "_blurred" before the extension.
func DefaultOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	stem := strings.TrimSuffix(inputPath, ext)
	return stem + DefaultOutputSuffix + ext
}

// ProcessFile redacts a single image file. See ProcessFileContext.
func (r *Redactor) ProcessFile(inputPath, outputPath string) (*Result, error) {
	return r.ProcessFileContext(context.Background(), inputPath, outputPath)
}

// ProcessFileContext loads inputPath, selects regions, blurs them and saves
// the result to outputPath. An empty outputPath derives the default sibling
// path. The context is checked between stages.
func (r *Redactor) ProcessFileContext(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	if r == nil || r.detector == nil {
		return nil, errors.New("redactor not initialized")
	}
	if outputPath == "" {
		outputPath = DefaultOutputPath(inputPath)
	}

	total := common.NewTimer()
	res := r.newResult()
	res.InputPath = inputPath
	res.OutputPath = outputPath

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loadTimer := common.NewNamedTimer(StageLoad)
	img, meta, err := utils.LoadImage(inputPath)
	res.Processing.LoadNs = loadTimer.StopNs()
	if err != nil {
		return nil, err
	}
	res.Width, res.Height = meta.Width, meta.Height
	slog.Debug("image loaded", "path", inputPath,
		"width", meta.Width, "height", meta.Height, "format", meta.Format)

	out, err := r.redactImage(ctx, img, res)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	saveTimer := common.NewNamedTimer(StageSave)
	err = utils.SaveImage(out, outputPath, utils.SaveOptions{JPEGQuality: r.cfg.JPEGQuality})
	res.Processing.SaveNs = saveTimer.StopNs()
	if err != nil {
		return nil, err
	}

	res.Processing.TotalNs = total.StopNs()
	slog.Debug("redaction completed", "input", inputPath, "output", outputPath,
		"regions_blurred", res.BlurredCount(),
		"total_ms", res.Processing.TotalNs/1000000)
	return res, nil
}

// ProcessImage redacts an in-memory image. See ProcessImageContext.
func (r *Redactor) ProcessImage(img image.Image) (*image.NRGBA, *Result, error) {
	return r.ProcessImageContext(context.Background(), img)
}

// ProcessImageContext selects regions on img and returns the blurred copy
// together with the run result. The input image is never modified.
func (r *Redactor) ProcessImageContext(ctx context.Context, img image.Image) (*image.NRGBA, *Result, error) {
	if r == nil || r.detector == nil {
		return nil, nil, errors.New("redactor not initialized")
	}
	if img == nil {
		return nil, nil, errors.New("input image is nil")
	}

	total := common.NewTimer()
	res := r.newResult()
	b := img.Bounds()
	res.Width, res.Height = b.Dx(), b.Dy()

	out, err := r.redactImage(ctx, img, res)
	if err != nil {
		return nil, nil, err
	}
	res.Processing.TotalNs = total.StopNs()
	return out, res, nil
}

// SelectRegions runs only the selection stage and reports the regions a
// redaction run would blur, after clamping. The boolean mirrors
// Result.UsedFallback.
func (r *Redactor) SelectRegions(img image.Image) ([]RegionResult, bool, error) {
	if r == nil || r.detector == nil {
		return nil, false, errors.New("redactor not initialized")
	}
	if img == nil {
		return nil, false, errors.New("input image is nil")
	}

	regions, source, fellBack := r.selectRegions(img)
	b := img.Bounds()
	outcomes, _ := clampCandidates(image.Rect(0, 0, b.Dx(), b.Dy()), regions, source)
	return outcomes, fellBack, nil
}

// ProcessRegions blurs caller-supplied regions. See ProcessRegionsContext.
func (r *Redactor) ProcessRegions(img image.Image, regions []utils.Region) (*image.NRGBA, *Result, error) {
	return r.ProcessRegionsContext(context.Background(), img, regions)
}

// ProcessRegionsContext blurs exactly the given regions, skipping selection.
// Out-of-bounds regions are clipped, degenerate ones dropped, and an empty
// list yields an unmodified copy.
func (r *Redactor) ProcessRegionsContext(ctx context.Context, img image.Image, regions []utils.Region) (*image.NRGBA, *Result, error) {
	if r == nil || r.detector == nil {
		return nil, nil, errors.New("redactor not initialized")
	}
	if img == nil {
		return nil, nil, errors.New("input image is nil")
	}

	total := common.NewTimer()
	res := r.newResult()
	b := img.Bounds()
	res.Width, res.Height = b.Dx(), b.Dy()

	out, err := r.blurCandidates(ctx, img, regions, SourceExplicit, res)
	if err != nil {
		return nil, nil, err
	}
	res.Processing.TotalNs = total.StopNs()
	return out, res, nil
}

// newResult seeds a Result with the redactor-wide fields.
func (r *Redactor) newResult() *Result {
	return &Result{
		Strength:        r.strength,
		StrengthClamped: r.strengthClamped,
	}
}

// redactImage runs the select and blur stages on an already-loaded image.
func (r *Redactor) redactImage(ctx context.Context, img image.Image, res *Result) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	selectTimer := common.NewNamedTimer(StageSelect)
	regions, source, fellBack := r.selectRegions(img)
	res.Processing.SelectNs = selectTimer.StopNs()
	res.UsedFallback = fellBack
	slog.Debug("regions selected", "count", len(regions), "source", string(source))

	if fellBack && len(regions) == 0 {
		err := fmt.Errorf("%w: layout catalog produced no regions either", ErrDetectionUnavailable)
		return nil, &utils.ImageProcessingError{Operation: StageSelect, Err: err}
	}

	return r.blurCandidates(ctx, img, regions, source, res)
}

// selectRegions picks the regions to blur: detection when enabled, with the
// layout catalog as source of truth otherwise and as fallback.
func (r *Redactor) selectRegions(img image.Image) ([]utils.Region, RegionSource, bool) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if !r.cfg.AutoDetect {
		return r.catalog.RegionsFor(w, h), SourceLayout, false
	}

	detected, err := r.detector.DetectRegions(img)
	if err != nil {
		slog.Warn("automatic detection failed, falling back to layout catalog", "error", err)
		return r.catalog.RegionsFor(w, h), SourceFallback, true
	}
	if len(detected) == 0 {
		slog.Debug("automatic detection found no regions, falling back to layout catalog")
		return r.catalog.RegionsFor(w, h), SourceFallback, true
	}
	return detected, SourceDetected, false
}

// clampCandidates clamps candidate regions to the frame. Degenerate regions
// are recorded as dropped and excluded from the returned blur set.
func clampCandidates(frame image.Rectangle, regions []utils.Region, source RegionSource) ([]RegionResult, []utils.Region) {
	outcomes := make([]RegionResult, 0, len(regions))
	blurSet := make([]utils.Region, 0, len(regions))
	for _, reg := range regions {
		clamped, changed := reg.ClampTo(frame)
		if clamped.Empty() {
			slog.Debug("region dropped", "region", reg.String())
			outcomes = append(outcomes, RegionResult{Region: reg, Source: source, Dropped: true})
			continue
		}
		if changed {
			slog.Debug("region clamped to image bounds",
				"region", reg.String(), "clamped", clamped.String())
		}
		outcomes = append(outcomes, RegionResult{Region: clamped, Source: source, Clamped: changed})
		blurSet = append(blurSet, clamped)
	}
	return outcomes, blurSet
}

// blurCandidates clamps the candidate regions, records their outcome on the
// result and runs the blur stage. Dropped regions are recorded but not sent
// to the blur.
func (r *Redactor) blurCandidates(ctx context.Context, img image.Image, regions []utils.Region, source RegionSource, res *Result) (*image.NRGBA, error) {
	b := img.Bounds()
	outcomes, blurSet := clampCandidates(image.Rect(0, 0, b.Dx(), b.Dy()), regions, source)
	res.Regions = outcomes

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blurTimer := common.NewNamedTimer(StageBlur)
	out, err := blur.BlurRegions(img, blurSet, r.strength)
	res.Processing.BlurNs = blurTimer.StopNs()
	if err != nil {
		return nil, &utils.ImageProcessingError{Operation: StageBlur, Err: err}
	}
	slog.Debug("regions blurred", "count", len(blurSet),
		"strength", int(r.strength), "blur_ms", res.Processing.BlurNs/1000000)
	return out, nil
}
