package support

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/MeKo-Tech/poblur/internal/layout"
	"github.com/cucumber/godog"
)

// totalsArea returns the pixel rectangle of the built-in catalog totals block
// for an image with the given bounds.
func totalsArea(img image.Image) (image.Rectangle, error) {
	b := img.Bounds()
	for _, r := range layout.Default().RegionsFor(b.Dx(), b.Dy()) {
		if r.Label == layout.LabelTotals {
			return r.Rect(), nil
		}
	}
	return image.Rectangle{}, fmt.Errorf("catalog has no totals area")
}

// countDiff compares two equally sized images and counts differing pixels
// inside and outside the given rectangle.
func countDiff(a, b image.Image, rect image.Rectangle) (inside, outside int, err error) {
	if a.Bounds().Dx() != b.Bounds().Dx() || a.Bounds().Dy() != b.Bounds().Dy() {
		return 0, 0, fmt.Errorf("image sizes differ: %v vs %v", a.Bounds(), b.Bounds())
	}
	bounds := a.Bounds()
	offset := b.Bounds().Min.Sub(bounds.Min)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ar, ag, ab, aa := a.At(x, y).RGBA()
			br, bg, bb, ba := b.At(x+offset.X, y+offset.Y).RGBA()
			if ar == br && ag == bg && ab == bb && aa == ba {
				continue
			}
			if image.Pt(x, y).In(rect) {
				inside++
			} else {
				outside++
			}
		}
	}
	return inside, outside, nil
}

// regionVariance measures the grayscale variance of the pixels inside rect.
func regionVariance(img image.Image, rect image.Rectangle) float64 {
	var sum, sumSq float64
	n := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			gray := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			sum += gray
			sumSq += gray * gray
			n++
		}
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}

// --- Image assertion steps ---

func (tc *TestContext) shouldBeAValidPNGImage(path string) error {
	f, err := os.Open(tc.ResolvePath(path)) //nolint:gosec // G304: test fixture path
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	_, format, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if format != "png" {
		return fmt.Errorf("expected %s to be PNG, decoded as %s", path, format)
	}
	return nil
}

func (tc *TestContext) shouldHaveTheSameDimensionsAs(pathA, pathB string) error {
	a, err := tc.LoadImageFile(pathA)
	if err != nil {
		return err
	}
	b, err := tc.LoadImageFile(pathB)
	if err != nil {
		return err
	}
	if a.Bounds().Dx() != b.Bounds().Dx() || a.Bounds().Dy() != b.Bounds().Dy() {
		return fmt.Errorf("dimensions differ: %s is %dx%d, %s is %dx%d",
			pathA, a.Bounds().Dx(), a.Bounds().Dy(),
			pathB, b.Bounds().Dx(), b.Bounds().Dy())
	}
	return nil
}

func (tc *TestContext) shouldDifferInsideTheTotalsArea(redactedPath, originalPath string) error {
	redacted, err := tc.LoadImageFile(redactedPath)
	if err != nil {
		return err
	}
	original, err := tc.LoadImageFile(originalPath)
	if err != nil {
		return err
	}
	rect, err := totalsArea(original)
	if err != nil {
		return err
	}
	inside, _, err := countDiff(redacted, original, rect)
	if err != nil {
		return err
	}
	if inside == 0 {
		return fmt.Errorf("%s and %s are identical inside the totals area %v",
			redactedPath, originalPath, rect)
	}
	return nil
}

func (tc *TestContext) shouldMatchOutsideTheTotalsArea(redactedPath, originalPath string) error {
	redacted, err := tc.LoadImageFile(redactedPath)
	if err != nil {
		return err
	}
	original, err := tc.LoadImageFile(originalPath)
	if err != nil {
		return err
	}
	rect, err := totalsArea(original)
	if err != nil {
		return err
	}
	_, outside, err := countDiff(redacted, original, rect)
	if err != nil {
		return err
	}
	if outside != 0 {
		return fmt.Errorf("%d pixel(s) outside the totals area %v changed between %s and %s",
			outside, rect, originalPath, redactedPath)
	}
	return nil
}

func (tc *TestContext) shouldBePixelIdenticalTo(pathA, pathB string) error {
	a, err := tc.LoadImageFile(pathA)
	if err != nil {
		return err
	}
	b, err := tc.LoadImageFile(pathB)
	if err != nil {
		return err
	}
	inside, outside, err := countDiff(a, b, image.Rectangle{})
	if err != nil {
		return err
	}
	if inside+outside != 0 {
		return fmt.Errorf("%d pixel(s) differ between %s and %s", inside+outside, pathA, pathB)
	}
	return nil
}

func (tc *TestContext) shouldDifferFrom(pathA, pathB string) error {
	a, err := tc.LoadImageFile(pathA)
	if err != nil {
		return err
	}
	b, err := tc.LoadImageFile(pathB)
	if err != nil {
		return err
	}
	inside, outside, err := countDiff(a, b, image.Rectangle{})
	if err != nil {
		return err
	}
	if inside+outside == 0 {
		return fmt.Errorf("%s and %s are pixel-identical", pathA, pathB)
	}
	return nil
}

// totalsAreaShouldBeSmootherThan asserts that a stronger blur left less local
// contrast in the totals block than a weaker one.
func (tc *TestContext) totalsAreaShouldBeSmootherThan(strongPath, weakPath string) error {
	strong, err := tc.LoadImageFile(strongPath)
	if err != nil {
		return err
	}
	weak, err := tc.LoadImageFile(weakPath)
	if err != nil {
		return err
	}
	rect, err := totalsArea(strong)
	if err != nil {
		return err
	}
	strongVar := regionVariance(strong, rect)
	weakVar := regionVariance(weak, rect)
	if strongVar >= weakVar {
		return fmt.Errorf("expected %s (variance %.2f) to be smoother than %s (variance %.2f)",
			strongPath, strongVar, weakPath, weakVar)
	}
	return nil
}

// --- Region report steps ---

func (tc *TestContext) theOutputShouldReportRegionsSelected(count int) error {
	expected := fmt.Sprintf("%d region(s) selected", count)
	if !strings.Contains(tc.LastOutput, expected) {
		return fmt.Errorf("output does not report %q\nActual output: %s", expected, tc.LastOutput)
	}
	return nil
}

func (tc *TestContext) theOutputShouldMentionTheLayoutCatalogFallback() error {
	if !strings.Contains(tc.LastOutput, "detection fell back to layout catalog") {
		return fmt.Errorf("output does not mention the layout catalog fallback\nActual output: %s",
			tc.LastOutput)
	}
	return nil
}

func (tc *TestContext) theCSVShouldContainRegionColumns() error {
	return tc.theCSVShouldContainColumns("file,region_index,label,source,x,y,width,height,dropped,clamped")
}

// RegisterRedactSteps wires the image comparison and region report steps.
func RegisterRedactSteps(sc *godog.ScenarioContext, tc *TestContext) {
	sc.Step(`^"([^"]*)" should be a valid PNG image$`, tc.shouldBeAValidPNGImage)
	sc.Step(`^"([^"]*)" should have the same dimensions as "([^"]*)"$`, tc.shouldHaveTheSameDimensionsAs)
	sc.Step(`^"([^"]*)" should differ from "([^"]*)" inside the totals area$`, tc.shouldDifferInsideTheTotalsArea)
	sc.Step(`^"([^"]*)" should match "([^"]*)" outside the totals area$`, tc.shouldMatchOutsideTheTotalsArea)
	sc.Step(`^"([^"]*)" should be pixel-identical to "([^"]*)"$`, tc.shouldBePixelIdenticalTo)
	sc.Step(`^"([^"]*)" should differ from "([^"]*)"$`, tc.shouldDifferFrom)
	sc.Step(`^the totals area of "([^"]*)" should be smoother than that of "([^"]*)"$`, tc.totalsAreaShouldBeSmootherThan)
	sc.Step(`^the output should report (\d+) regions? selected$`, tc.theOutputShouldReportRegionsSelected)
	sc.Step(`^the output should mention the layout catalog fallback$`, tc.theOutputShouldMentionTheLayoutCatalogFallback)
	sc.Step(`^the CSV should contain region columns$`, tc.theCSVShouldContainRegionColumns)
}
