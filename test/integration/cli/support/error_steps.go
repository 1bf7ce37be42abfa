package support

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// theErrorShouldMention asserts that the failed command's combined output
// mentions the given text, case-insensitively.
func (tc *TestContext) theErrorShouldMention(text string) error {
	if tc.LastError == nil && tc.LastExitCode == 0 {
		return fmt.Errorf("expected an error mentioning %q, but the command succeeded", text)
	}
	haystack := strings.ToLower(tc.LastOutput)
	if tc.LastError != nil {
		haystack += " " + strings.ToLower(tc.LastError.Error())
	}
	if !strings.Contains(haystack, strings.ToLower(text)) {
		return fmt.Errorf("error output does not mention %q\nActual output: %s", text, tc.LastOutput)
	}
	return nil
}

func (tc *TestContext) theErrorShouldMentionAMissingInputFile() error {
	return tc.theErrorShouldMention("no such file or directory")
}

func (tc *TestContext) theErrorShouldMentionAnUnsupportedFormat() error {
	return tc.theErrorShouldMention("unsupported image format")
}

func (tc *TestContext) theErrorShouldMentionAnUnknownFlag() error {
	return tc.theErrorShouldMention("unknown flag")
}

func (tc *TestContext) theErrorShouldMentionAnUnknownArea() error {
	return tc.theErrorShouldMention("unknown area")
}

func (tc *TestContext) theErrorShouldMentionAnInvalidOutputFormat() error {
	return tc.theErrorShouldMention("invalid output format")
}

func (tc *TestContext) theErrorShouldMentionAMissingPDFFile() error {
	return tc.theErrorShouldMention("PDF file not found")
}

// RegisterErrorSteps wires the error assertion steps.
func RegisterErrorSteps(sc *godog.ScenarioContext, tc *TestContext) {
	sc.Step(`^the error should mention "([^"]*)"$`, tc.theErrorShouldMention)
	sc.Step(`^the error should mention a missing input file$`, tc.theErrorShouldMentionAMissingInputFile)
	sc.Step(`^the error should mention an unsupported format$`, tc.theErrorShouldMentionAnUnsupportedFormat)
	sc.Step(`^the error should mention an unknown flag$`, tc.theErrorShouldMentionAnUnknownFlag)
	sc.Step(`^the error should mention an unknown area$`, tc.theErrorShouldMentionAnUnknownArea)
	sc.Step(`^the error should mention an invalid output format$`, tc.theErrorShouldMentionAnInvalidOutputFormat)
	sc.Step(`^the error should mention a missing PDF file$`, tc.theErrorShouldMentionAMissingPDFFile)
}
