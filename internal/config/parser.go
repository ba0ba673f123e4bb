package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Configuration formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseJSONFile parses a JSON pipeline file from fs.
func ParseJSONFile(fs afero.Fs, filepath string) *ParseResult {
	return parseFile(fs, filepath, FormatJSON)
}

// ParseYAMLFile parses a YAML pipeline file from fs.
func ParseYAMLFile(fs afero.Fs, filepath string) *ParseResult {
	return parseFile(fs, filepath, FormatYAML)
}

func parseFile(fs afero.Fs, filepath, format string) *ParseResult {
	content, err := afero.ReadFile(fs, filepath)
	if err != nil {
		return &ParseResult{
			FilePath: filepath,
			Format:   format,
			Errors: []ParseError{{
				Path:    filepath,
				Message: fmt.Sprintf("failed to read file: %v", err),
				Type:    ErrorTypeIO,
			}},
		}
	}

	var result *ParseResult
	if format == FormatJSON {
		result = ParseJSONString(string(content))
	} else {
		result = ParseYAMLString(string(content))
	}
	result.FilePath = filepath
	for i := range result.Errors {
		if result.Errors[i].Path == "" {
			result.Errors[i].Path = filepath
		}
	}
	return result
}

// ParseJSONString parses JSON content from a string.
func ParseJSONString(content string) *ParseResult {
	result := &ParseResult{
		Format: FormatJSON,
	}

	content = strings.TrimSpace(content)
	if content == "" {
		result.Errors = append(result.Errors, ParseError{
			Message: "empty content: expected JSON object",
			Type:    ErrorTypeSyntax,
		})
		return result
	}

	var data interface{}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		result.Errors = append(result.Errors, parseJSONError(err, content))
		return result
	}

	return withObject(result, data, "JSON object")
}

// ParseYAMLString parses YAML content from a string.
func ParseYAMLString(content string) *ParseResult {
	result := &ParseResult{
		Format: FormatYAML,
	}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, ParseError{
			Message: "empty content: expected YAML document",
			Type:    ErrorTypeSyntax,
		})
		return result
	}

	var data interface{}
	if err := yaml.Unmarshal([]byte(content), &data); err != nil {
		result.Errors = append(result.Errors, parseYAMLError(err))
		return result
	}

	return withObject(result, data, "YAML mapping")
}

// withObject stores data in result if it is a mapping. A null document is not
// a parse error; the schema rejects it.
func withObject(result *ParseResult, data interface{}, want string) *ParseResult {
	if data == nil {
		return result
	}
	dataMap, ok := data.(map[string]interface{})
	if !ok {
		result.Errors = append(result.Errors, ParseError{
			Message: fmt.Sprintf("invalid configuration: expected %s, got %T", want, data),
			Type:    ErrorTypeFormat,
		})
		return result
	}
	result.Data = dataMap
	return result
}

// parseJSONError extracts line and column information from a JSON error.
func parseJSONError(err error, content string) ParseError {
	parseErr := ParseError{
		Message: err.Error(),
		Type:    ErrorTypeSyntax,
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		parseErr.Offset = syntaxErr.Offset
		parseErr.Line, parseErr.Column = offsetToLineColumn(content, syntaxErr.Offset)
		parseErr.Message = fmt.Sprintf("JSON syntax error at offset %d: %s", syntaxErr.Offset, syntaxErr.Error())
	}

	return parseErr
}

// offsetToLineColumn converts a byte offset to line and column numbers (1-based).
func offsetToLineColumn(content string, offset int64) (line, column int) {
	line, column = 1, 1
	for i := int64(0); i < offset && i < int64(len(content)); i++ {
		if content[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}

// parseYAMLError extracts line information from a yaml.v3 error.
func parseYAMLError(err error) ParseError {
	parseErr := ParseError{
		Message: err.Error(),
		Type:    ErrorTypeSyntax,
	}

	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		parseErr.Message = fmt.Sprintf("YAML type error: %s", strings.Join(typeErr.Errors, "; "))
	}

	// yaml.v3 reports positions as "yaml: line N: ..."
	var line int
	if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil {
		parseErr.Line = line
	}

	return parseErr
}

// ============================================================================
// Unified Configuration Parser
// ============================================================================

// ParseConfig reads, parses and validates a pipeline file from fs.
// The format is taken from the file extension, or detected from the content
// when the extension is neither .json nor .yaml/.yml.
func ParseConfig(fs afero.Fs, filepath string) *Result {
	result := &Result{
		FilePath: filepath,
	}

	var parseResult *ParseResult
	switch format := DetectFormat(filepath); format {
	case FormatJSON, FormatYAML:
		parseResult = parseFile(fs, filepath, format)
	default:
		content, err := afero.ReadFile(fs, filepath)
		if err != nil {
			result.ParseErrors = append(result.ParseErrors, ParseError{
				Path:    filepath,
				Message: fmt.Sprintf("failed to read file: %v", err),
				Type:    ErrorTypeIO,
			})
			return result
		}
		detected := ParseConfigString(string(content), "")
		detected.FilePath = filepath
		return detected
	}

	return validateParsed(result, parseResult)
}

// ParseConfigString parses and validates configuration content from a string.
// If format is empty, it is detected from the content.
func ParseConfigString(content string, format string) *Result {
	result := &Result{
		Format: format,
	}

	if format == "" {
		switch {
		case IsJSON(content):
			format = FormatJSON
		case IsYAML(content):
			format = FormatYAML
		default:
			result.ParseErrors = append(result.ParseErrors, ParseError{
				Message: "unable to detect configuration format: not valid JSON or YAML",
				Type:    ErrorTypeFormat,
			})
			return result
		}
	}

	var parseResult *ParseResult
	switch format {
	case FormatJSON:
		parseResult = ParseJSONString(content)
	case FormatYAML:
		parseResult = ParseYAMLString(content)
	default:
		result.ParseErrors = append(result.ParseErrors, ParseError{
			Message: fmt.Sprintf("unsupported format: %s", format),
			Type:    ErrorTypeFormat,
		})
		return result
	}

	return validateParsed(result, parseResult)
}

func validateParsed(result *Result, parseResult *ParseResult) *Result {
	result.Data = parseResult.Data
	result.ParseErrors = parseResult.Errors
	result.Format = parseResult.Format
	if parseResult.FilePath != "" {
		result.FilePath = parseResult.FilePath
	}

	if !parseResult.IsValid() {
		return result
	}

	result.ValidationErrors = ValidateConfig(parseResult.Data).Errors
	return result
}

// DetectFormat detects the configuration format from file extension.
// Returns "json", "yaml", or empty string if format cannot be detected.
func DetectFormat(filepath string) string {
	switch strings.ToLower(path.Ext(filepath)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return ""
	}
}

// IsJSON checks if the content appears to be JSON format.
func IsJSON(content string) bool {
	content = strings.TrimSpace(content)
	return strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[")
}

// IsYAML checks if the content parses as a non-empty YAML document.
// JSON is also valid YAML, so this may return true for JSON content.
func IsYAML(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	var data interface{}
	err := yaml.Unmarshal([]byte(content), &data)
	return err == nil && data != nil
}
