package support

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// --- Fixture steps ---

func (tc *TestContext) aSyntheticPurchaseOrderImage(path string) error {
	return tc.WritePurchaseOrder(path)
}

func (tc *TestContext) aBlankWhiteImageOfSize(path string, width, height int) error {
	return tc.WriteBlankPage(path, width, height)
}

func (tc *TestContext) aTextFileWithContent(path, content string) error {
	return tc.WriteTextFile(path, content)
}

func (tc *TestContext) aFileWithContent(path string, content *godog.DocString) error {
	return tc.WriteTextFile(path, content.Content)
}

func (tc *TestContext) aDirectoryContainingPurchaseOrderImages(dir string, count int) error {
	for i := 1; i <= count; i++ {
		if err := tc.WritePurchaseOrder(fmt.Sprintf("%s/order-%d.png", dir, i)); err != nil {
			return err
		}
	}
	tc.TrackDirectory(dir)
	return nil
}

func (tc *TestContext) aCorruptImageFile(path string) error {
	return tc.WriteTextFile(path, "this is not image data")
}

func (tc *TestContext) aFileContainingInvalidYAML(path string) error {
	return tc.WriteTextFile(path, "areas: [\n  {label: broken")
}

// aCustomLayoutFileDefiningAreas writes a catalog with one thin horizontal
// band per label, stacked from the top of the page.
func (tc *TestContext) aCustomLayoutFileDefiningAreas(path, labels string) error {
	var b strings.Builder
	b.WriteString("name: custom\nareas:\n")
	for i, label := range strings.Split(labels, ",") {
		fmt.Fprintf(&b, "  - label: %s\n    x: 0\n    y: %.1f\n    width: 1\n    height: 0.1\n",
			strings.TrimSpace(label), float64(i)/10)
	}
	return tc.WriteTextFile(path, b.String())
}

// --- Command execution steps ---

// iRunCommand executes a shell command and captures its combined output.
func (tc *TestContext) iRunCommand(command string) error {
	command = tc.substituteCommandVariables(command)
	tc.LastCommand = command

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return fmt.Errorf("empty command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...) //nolint:gosec // G204: test commands come from feature files
	cmd.Dir = tc.WorkingDir
	cmd.Env = append(os.Environ(), tc.EnvVars...)

	output, err := cmd.CombinedOutput()
	tc.LastDuration = time.Since(start)
	tc.LastOutput = string(output)
	tc.LastError = err

	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			tc.LastExitCode = exitError.ExitCode()
		} else {
			tc.LastExitCode = -1
		}
	} else {
		tc.LastExitCode = 0
	}
	return nil
}

// substituteCommandVariables expands placeholders in commands and assertions.
func (tc *TestContext) substituteCommandVariables(command string) string {
	command = strings.ReplaceAll(command, "{temp_dir}", tc.TempDir)
	command = strings.ReplaceAll(command, "{project_root}", tc.ProjectRoot)
	if strings.Contains(command, "{server_url}") {
		command = strings.ReplaceAll(command, "{server_url}", tc.GetServerURL())
	}
	return command
}

func (tc *TestContext) iSetTheEnvironmentVariable(name, value string) error {
	value = tc.substituteCommandVariables(value)
	tc.EnvVars = append(tc.EnvVars, fmt.Sprintf("%s=%s", name, value))
	return nil
}

func (tc *TestContext) iWaitForSeconds(seconds int) error {
	time.Sleep(time.Duration(seconds) * time.Second)
	return nil
}

// --- Command result steps ---

func (tc *TestContext) theCommandShouldSucceed() error {
	if tc.LastError != nil {
		return fmt.Errorf("command failed with exit code %d: %w\nOutput: %s",
			tc.LastExitCode, tc.LastError, tc.LastOutput)
	}
	return nil
}

func (tc *TestContext) theCommandShouldFail() error {
	if tc.LastError == nil {
		return fmt.Errorf("expected command to fail, but it succeeded\nOutput: %s", tc.LastOutput)
	}
	return nil
}

// theCommandMightFail accepts either outcome. Used where behavior depends on
// strictness of an external parser.
func (tc *TestContext) theCommandMightFail() error {
	return nil
}

func (tc *TestContext) theExitCodeShouldBe(expected int) error {
	if tc.LastExitCode != expected {
		return fmt.Errorf("expected exit code %d, got %d\nOutput: %s",
			expected, tc.LastExitCode, tc.LastOutput)
	}
	return nil
}

// --- Output assertion steps ---

func (tc *TestContext) theOutputShouldContain(expected string) error {
	expected = tc.substituteCommandVariables(expected)
	if !strings.Contains(tc.LastOutput, expected) {
		return fmt.Errorf("output does not contain %q\nActual output: %s", expected, tc.LastOutput)
	}
	return nil
}

func (tc *TestContext) theOutputShouldNotContain(unexpected string) error {
	unexpected = tc.substituteCommandVariables(unexpected)
	if strings.Contains(tc.LastOutput, unexpected) {
		return fmt.Errorf("output should not contain %q\nActual output: %s", unexpected, tc.LastOutput)
	}
	return nil
}

func (tc *TestContext) theOutputShouldContainUsageInformation() error {
	for _, required := range []string{"Usage:", "Flags:"} {
		if !strings.Contains(tc.LastOutput, required) {
			return fmt.Errorf("output missing usage section %q\nActual output: %s",
				required, tc.LastOutput)
		}
	}
	return nil
}

func (tc *TestContext) theOutputShouldContainVersionInformation() error {
	if !strings.Contains(tc.LastOutput, "poblur version") {
		return fmt.Errorf("output missing version information\nActual output: %s", tc.LastOutput)
	}
	return nil
}

func (tc *TestContext) buildInformationShouldBeIncluded() error {
	for _, required := range []string{"Commit:", "Built:"} {
		if !strings.Contains(tc.LastOutput, required) {
			return fmt.Errorf("output missing build field %q\nActual output: %s",
				required, tc.LastOutput)
		}
	}
	return nil
}

// --- JSON steps ---

// extractJSONFromOutput returns the JSON document embedded in the command
// output, skipping any leading non-JSON text.
func (tc *TestContext) extractJSONFromOutput() (string, error) {
	output := strings.TrimSpace(tc.LastOutput)
	start := strings.IndexAny(output, "{[")
	if start < 0 {
		return "", fmt.Errorf("no JSON found in output: %s", output)
	}
	return output[start:], nil
}

func (tc *TestContext) theOutputShouldBeValidJSON() error {
	jsonStr, err := tc.extractJSONFromOutput()
	if err != nil {
		return err
	}
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return fmt.Errorf("output is not valid JSON: %w\nOutput: %s", err, jsonStr)
	}
	return nil
}

func (tc *TestContext) theJSONShouldContain(fieldPath string) error {
	jsonStr, err := tc.extractJSONFromOutput()
	if err != nil {
		return err
	}
	var data interface{}
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	if !jsonFieldExists(data, strings.Split(fieldPath, ".")) {
		return fmt.Errorf("JSON does not contain field %q\nJSON: %s", fieldPath, jsonStr)
	}
	return nil
}

// jsonFieldExists walks a dot-separated path through nested objects. Numeric
// segments index into arrays.
func jsonFieldExists(data interface{}, path []string) bool {
	if len(path) == 0 {
		return true
	}
	switch v := data.(type) {
	case map[string]interface{}:
		child, ok := v[path[0]]
		if !ok {
			return false
		}
		return jsonFieldExists(child, path[1:])
	case []interface{}:
		idx, err := strconv.Atoi(path[0])
		if err != nil || idx < 0 || idx >= len(v) {
			return false
		}
		return jsonFieldExists(v[idx], path[1:])
	default:
		return false
	}
}

// --- CSV steps ---

// extractCSVFromOutput returns the CSV portion of the command output,
// starting from the first line that contains a comma.
func (tc *TestContext) extractCSVFromOutput() (string, error) {
	lines := strings.Split(strings.TrimSpace(tc.LastOutput), "\n")
	start := -1
	for i, line := range lines {
		if strings.Contains(line, ",") {
			start = i
			break
		}
	}
	if start < 0 {
		return "", fmt.Errorf("no CSV found in output: %s", tc.LastOutput)
	}
	return strings.Join(lines[start:], "\n"), nil
}

func (tc *TestContext) theOutputShouldBeValidCSV() error {
	csvStr, err := tc.extractCSVFromOutput()
	if err != nil {
		return err
	}
	if _, err := csv.NewReader(strings.NewReader(csvStr)).ReadAll(); err != nil {
		return fmt.Errorf("output is not valid CSV: %w\nOutput: %s", err, csvStr)
	}
	return nil
}

func (tc *TestContext) theCSVShouldContainColumns(columns string) error {
	csvStr, err := tc.extractCSVFromOutput()
	if err != nil {
		return err
	}
	records, err := csv.NewReader(strings.NewReader(csvStr)).ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("CSV output is empty")
	}

	header := records[0]
	for _, want := range strings.Split(columns, ",") {
		want = strings.TrimSpace(want)
		found := false
		for _, got := range header {
			if strings.EqualFold(strings.TrimSpace(got), want) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("CSV header missing column %q, got: %v", want, header)
		}
	}
	return nil
}

// --- File steps ---

func (tc *TestContext) theFileShouldExist(path string) error {
	full := tc.ResolvePath(path)
	if _, err := os.Stat(full); os.IsNotExist(err) {
		return fmt.Errorf("expected file %s does not exist", full)
	}
	return nil
}

func (tc *TestContext) theFileShouldNotExist(path string) error {
	full := tc.ResolvePath(path)
	if _, err := os.Stat(full); err == nil {
		return fmt.Errorf("file %s should not exist", full)
	}
	return nil
}

func (tc *TestContext) theFileShouldContain(path, expected string) error {
	data, err := os.ReadFile(tc.ResolvePath(path)) //nolint:gosec // G304: test fixture path
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if !strings.Contains(string(data), expected) {
		return fmt.Errorf("file %s does not contain %q\nContent: %s", path, expected, string(data))
	}
	return nil
}

// --- Registration ---

func registerFixtureSteps(sc *godog.ScenarioContext, tc *TestContext) {
	sc.Step(`^a synthetic purchase order image "([^"]*)"$`, tc.aSyntheticPurchaseOrderImage)
	sc.Step(`^a blank white image "([^"]*)" of size (\d+)x(\d+)$`, tc.aBlankWhiteImageOfSize)
	sc.Step(`^a text file "([^"]*)" with content "([^"]*)"$`, tc.aTextFileWithContent)
	sc.Step(`^a file "([^"]*)" with content:$`, tc.aFileWithContent)
	sc.Step(`^a directory "([^"]*)" containing (\d+) purchase order images$`, tc.aDirectoryContainingPurchaseOrderImages)
	sc.Step(`^a corrupt image file "([^"]*)"$`, tc.aCorruptImageFile)
	sc.Step(`^a file "([^"]*)" containing invalid YAML$`, tc.aFileContainingInvalidYAML)
	sc.Step(`^a custom layout file "([^"]*)" defining areas "([^"]*)"$`, tc.aCustomLayoutFileDefiningAreas)
}

func registerCommandSteps(sc *godog.ScenarioContext, tc *TestContext) {
	sc.Step(`^I run "([^"]*)"$`, tc.iRunCommand)
	sc.Step(`^I set the environment variable "([^"]*)" to "([^"]*)"$`, tc.iSetTheEnvironmentVariable)
	sc.Step(`^I wait for (\d+) seconds?$`, tc.iWaitForSeconds)
	sc.Step(`^the command should succeed$`, tc.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, tc.theCommandShouldFail)
	sc.Step(`^the command might fail$`, tc.theCommandMightFail)
	sc.Step(`^the exit code should be (\d+)$`, tc.theExitCodeShouldBe)
}

func registerOutputSteps(sc *godog.ScenarioContext, tc *TestContext) {
	sc.Step(`^the output should contain "([^"]*)"$`, tc.theOutputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, tc.theOutputShouldNotContain)
	sc.Step(`^the output should contain usage information$`, tc.theOutputShouldContainUsageInformation)
	sc.Step(`^the output should contain version information$`, tc.theOutputShouldContainVersionInformation)
	sc.Step(`^build information should be included$`, tc.buildInformationShouldBeIncluded)
}

func registerDataFormatSteps(sc *godog.ScenarioContext, tc *TestContext) {
	sc.Step(`^the output should be valid JSON$`, tc.theOutputShouldBeValidJSON)
	sc.Step(`^the JSON should contain "([^"]*)"$`, tc.theJSONShouldContain)
	sc.Step(`^the output should be valid CSV$`, tc.theOutputShouldBeValidCSV)
	sc.Step(`^the CSV should contain columns "([^"]*)"$`, tc.theCSVShouldContainColumns)
}

func registerFileSteps(sc *godog.ScenarioContext, tc *TestContext) {
	sc.Step(`^the file "([^"]*)" should exist$`, tc.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should not exist$`, tc.theFileShouldNotExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, tc.theFileShouldContain)
}

// RegisterCommonSteps wires the fixture, command and assertion steps shared
// by all features.
func RegisterCommonSteps(sc *godog.ScenarioContext, tc *TestContext) {
	registerFixtureSteps(sc, tc)
	registerCommandSteps(sc, tc)
	registerOutputSteps(sc, tc)
	registerDataFormatSteps(sc, tc)
	registerFileSteps(sc, tc)
}
