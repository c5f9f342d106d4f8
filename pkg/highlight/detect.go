package highlight

import (
	"fmt"
	"regexp"
	"strings"
)

// pdfName captures a PDF literal string, escaped parentheses included
const pdfName = `\(((?:\\.|[^\\)])*)\)`

var ocgPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/Type\s*/OCG\s*/Name\s*` + pdfName),
	regexp.MustCompile(`/Name\s*` + pdfName + `[\s\S]{1,50}?/Type\s*/OCG`),
}

// DetectLayers attempts to find optional content layer names in the raw
// PDF data. Names are returned once, in the order first seen.
func DetectLayers(pdfData []byte) ([]string, error) {
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("empty PDF data")
	}

	content := string(pdfData)
	var layers []string
	for _, re := range ocgPatterns {
		for _, match := range re.FindAllStringSubmatch(content, -1) {
			if len(match) >= 2 {
				layers = append(layers, unescapePDFString(match[1]))
			}
		}
	}

	// Check if any are UTF-16 BOM
	for i, layer := range layers {
		if len(layer) >= 2 && layer[0] == '\xfe' && layer[1] == '\xff' {
			decoded, err := decodeUTF16BE([]byte(layer))
			if err == nil {
				layers[i] = decoded
			}
		}
	}

	unique := make([]string, 0, len(layers))
	seen := make(map[string]bool)
	for _, l := range layers {
		if !seen[l] {
			seen[l] = true
			unique = append(unique, l)
		}
	}
	return unique, nil
}

// LayerCheckResult contains the results of checking for difference layers
type LayerCheckResult struct {
	Layers    []string // All detected layers
	HasLayer  bool     // True if the named difference layer exists
	LayerName string   // Name of the detected layer (if any)
	Warnings  []string // Layers that look like difference marks under another name
}

// CheckExistingLayers checks a PDF for a layer named layerName, either bare
// or with a page suffix as written by Apply
func CheckExistingLayers(pdfData []byte, layerName string) (LayerCheckResult, error) {
	result := LayerCheckResult{}

	layers, err := DetectLayers(pdfData)
	if err != nil {
		return result, fmt.Errorf("cannot analyze layers: %w", err)
	}
	result.Layers = layers

	pageLayerPattern := regexp.MustCompile(fmt.Sprintf(`^%s\s*\(Page\s*\d+.*`, regexp.QuoteMeta(layerName)))

	for _, layer := range layers {
		if layer == layerName || pageLayerPattern.MatchString(layer) {
			result.HasLayer = true
			result.LayerName = layer
			break
		}

		lower := strings.ToLower(layer)
		if (strings.Contains(lower, "diff") || strings.Contains(lower, "highlight")) &&
			!strings.HasPrefix(layer, layerName) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Existing layer detected that might contain difference marks: %s", layer))
		}
	}
	return result, nil
}
