package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/poblur/internal/redact"
)

// formatBatchResults formats the batch processing results in the specified format.
func formatBatchResults(results []*redact.Result, errs []error, imagePaths []string, format string) (string, error) {
	switch format {
	case "json":
		return formatJSON(results, errs, imagePaths)
	case "csv":
		return formatCSV(results, errs, imagePaths)
	default: // text
		return formatText(results, errs, imagePaths)
	}
}

// imageEntry pairs one input file with its outcome for JSON output.
type imageEntry struct {
	File   string         `json:"file"`
	Result *redact.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// formatJSON formats results as JSON.
func formatJSON(results []*redact.Result, errs []error, imagePaths []string) (string, error) {
	batchResult := struct {
		Images []imageEntry `json:"images"`
	}{
		Images: make([]imageEntry, len(imagePaths)),
	}

	for i, file := range imagePaths {
		entry := imageEntry{File: file}
		if i < len(results) {
			entry.Result = results[i]
		}
		if i < len(errs) && errs[i] != nil {
			entry.Error = errs[i].Error()
		}
		batchResult.Images[i] = entry
	}

	bts, err := json.MarshalIndent(batchResult, "", "  ")
	return string(bts), err
}

// formatCSV formats results as CSV, one row per region.
func formatCSV(results []*redact.Result, errs []error, imagePaths []string) (string, error) {
	csvData := [][]string{{
		"file", "region_index", "label", "source", "x", "y", "width", "height", "dropped", "clamped", "error",
	}}

	for i, file := range imagePaths {
		if i < len(errs) && errs[i] != nil {
			csvData = append(csvData, []string{file, "", "", "", "", "", "", "", "", "", errs[i].Error()})
			continue
		}
		if i >= len(results) || results[i] == nil {
			continue
		}

		regions := results[i].Regions
		if len(regions) == 0 {
			// Add empty row for files with no regions
			csvData = append(csvData, []string{file, "", "", "", "", "", "", "", "", "", ""})
			continue
		}
		for j, region := range regions {
			csvData = append(csvData, []string{
				file,
				strconv.Itoa(j),
				region.Region.Label,
				string(region.Source),
				strconv.Itoa(region.Region.X),
				strconv.Itoa(region.Region.Y),
				strconv.Itoa(region.Region.Width),
				strconv.Itoa(region.Region.Height),
				strconv.FormatBool(region.Dropped),
				strconv.FormatBool(region.Clamped),
				"",
			})
		}
	}

	var output strings.Builder
	writer := csv.NewWriter(&output)
	for _, row := range csvData {
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return output.String(), nil
}

// formatText formats results as plain text.
func formatText(results []*redact.Result, errs []error, imagePaths []string) (string, error) {
	var output strings.Builder
	for i, file := range imagePaths {
		if i > 0 {
			output.WriteString("\n")
		}
		output.WriteString(fmt.Sprintf("# %s\n", file))

		if i < len(errs) && errs[i] != nil {
			output.WriteString(fmt.Sprintf("error: %v\n", errs[i]))
			continue
		}
		if i >= len(results) || results[i] == nil {
			continue
		}

		text, err := redact.ToText(results[i])
		if err != nil {
			return "", err
		}
		output.WriteString(text)
	}
	return output.String(), nil
}
