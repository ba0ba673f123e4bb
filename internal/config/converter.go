package config

import (
	"fmt"

	"github.com/patrickschulz/filter-data/pkg/connector"
)

// DefaultPipelineName names pipelines that do not set one.
const DefaultPipelineName = "filter-data"

// ConvertToPipeline converts parsed configuration data to a Pipeline struct.
// The input data should have been validated against the schema before calling this function.
//
// The configuration is expected to have this structure:
//
//	{
//	  "schemaVersion": "1.0",
//	  "pipeline": {
//	    "name": "...",
//	    "input": {"type": "file", "path": "...", "xIndex": 0, "yIndex": 1},
//	    "filters": [...],
//	    "postFilters": [...],
//	    "output": {...}
//	  }
//	}
//
// A missing output section selects text output on standard output.
func ConvertToPipeline(data map[string]interface{}) (*connector.Pipeline, error) {
	if data == nil {
		return nil, fmt.Errorf("configuration data is nil")
	}

	pipelineData, ok := data["pipeline"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'pipeline' section")
	}

	pipeline := &connector.Pipeline{
		Name: DefaultPipelineName,
	}
	if name, ok := pipelineData["name"].(string); ok && name != "" {
		pipeline.Name = name
	}
	pipeline.ID = pipeline.Name
	if id, ok := pipelineData["id"].(string); ok && id != "" {
		pipeline.ID = id
	}
	if description, ok := pipelineData["description"].(string); ok {
		pipeline.Description = description
	}

	inputData, ok := pipelineData["input"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'pipeline.input' section")
	}
	inputConfig, err := convertModuleConfig(inputData)
	if err != nil {
		return nil, fmt.Errorf("invalid input config: %w", err)
	}
	pipeline.Input = inputConfig

	if pipeline.Filters, err = convertModuleList(pipelineData, "filters"); err != nil {
		return nil, err
	}
	if pipeline.PostFilters, err = convertModuleList(pipelineData, "postFilters"); err != nil {
		return nil, err
	}

	if outputData, ok := pipelineData["output"].(map[string]interface{}); ok {
		outputConfig, err := convertModuleConfig(outputData)
		if err != nil {
			return nil, fmt.Errorf("invalid output config: %w", err)
		}
		pipeline.Output = outputConfig
	} else {
		pipeline.Output = &connector.ModuleConfig{Type: "text", Config: map[string]interface{}{}}
	}

	return pipeline, nil
}

// convertModuleList converts the optional list stored under key.
func convertModuleList(pipelineData map[string]interface{}, key string) ([]connector.ModuleConfig, error) {
	raw, ok := pipelineData[key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid '%s': expected a list, got %T", key, raw)
	}

	modules := make([]connector.ModuleConfig, 0, len(items))
	for i, item := range items {
		itemMap, isMap := item.(map[string]interface{})
		if !isMap {
			return nil, fmt.Errorf("invalid %s entry at index %d", key, i)
		}
		moduleConfig, err := convertModuleConfig(itemMap)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry at index %d: %w", key, i, err)
		}
		modules = append(modules, *moduleConfig)
	}
	return modules, nil
}

// convertModuleConfig converts a raw module configuration map to ModuleConfig.
func convertModuleConfig(data map[string]interface{}) (*connector.ModuleConfig, error) {
	moduleConfig := &connector.ModuleConfig{
		Config: make(map[string]interface{}),
	}

	moduleType, ok := data["type"].(string)
	if !ok {
		return nil, fmt.Errorf("missing required field 'type'")
	}
	moduleConfig.Type = moduleType

	for key, value := range data {
		if key != "type" {
			moduleConfig.Config[key] = value
		}
	}

	return moduleConfig, nil
}
