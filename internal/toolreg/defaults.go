package toolreg

// Default returns a registry covering the multi-hop QA tool set the engine
// was built against. Projects with their own tool catalog load a YAML file
// instead; the defaults keep the CLI usable out of the box.
func Default() *Registry {
	return New(defaultSchemas)
}

var defaultSchemas = []Schema{
	{
		Name:            "read_json",
		InputParameters: []Param{{Name: "file_path", Type: "path"}},
		OutputShape:     []Field{{Field: "content", Type: "json"}, {Field: "records", Type: "list"}},
		EquivalentTools: []string{"read_csv"},
	},
	{
		Name:            "read_csv",
		InputParameters: []Param{{Name: "file_path", Type: "path"}},
		OutputShape:     []Field{{Field: "rows", Type: "list"}},
		EquivalentTools: []string{"read_excel"},
	},
	{
		Name:            "read_excel",
		InputParameters: []Param{{Name: "file_path", Type: "path"}},
		OutputShape:     []Field{{Field: "rows", Type: "list"}},
		EquivalentTools: []string{"read_csv"},
	},
	{
		Name:            "read_xml",
		InputParameters: []Param{{Name: "file_path", Type: "path"}},
		OutputShape:     []Field{{Field: "content", Type: "xml"}},
	},
	{
		Name:            "read_txt",
		InputParameters: []Param{{Name: "file_path", Type: "path"}},
		OutputShape:     []Field{{Field: "text", Type: "text"}},
	},
	{
		Name:            "web_search",
		InputParameters: []Param{{Name: "query", Type: "text"}},
		OutputShape:     []Field{{Field: "results", Type: "list"}, {Field: "url", Type: "url"}},
		EquivalentTools: []string{"wikipedia_search"},
	},
	{
		Name:            "wikipedia_search",
		InputParameters: []Param{{Name: "query", Type: "text"}},
		OutputShape:     []Field{{Field: "results", Type: "list"}, {Field: "url", Type: "url"}},
		EquivalentTools: []string{"web_search"},
	},
	{
		Name:            "web_fetch",
		InputParameters: []Param{{Name: "url", Type: "url"}},
		OutputShape:     []Field{{Field: "content", Type: "text"}},
	},
	{
		// Compound research: search then fetch the top hit.
		Name:             "web_research",
		InputParameters:  []Param{{Name: "query", Type: "text"}},
		OutputShape:      []Field{{Field: "content", Type: "text"}},
		DecomposableInto: []string{"web_search", "web_fetch"},
	},
	{
		Name:            "extract_zip",
		InputParameters: []Param{{Name: "file_path", Type: "path"}},
		OutputShape:     []Field{{Field: "files", Type: "list"}},
	},
	{
		Name: "extract_information",
		InputParameters: []Param{
			{Name: "data", Type: "text"},
			{Name: "target", Type: "text"},
		},
		OutputShape: []Field{{Field: "value", Type: "text"}},
	},
	{
		Name: "count_occurrences",
		InputParameters: []Param{
			{Name: "text", Type: "text"},
			{Name: "pattern", Type: "text"},
		},
		OutputShape: []Field{{Field: "count", Type: "number"}},
	},
	{
		Name: "find_in_text",
		InputParameters: []Param{
			{Name: "text", Type: "text"},
			{Name: "pattern", Type: "text"},
		},
		OutputShape: []Field{{Field: "matches", Type: "list"}},
	},
	{
		Name:            "calculate",
		InputParameters: []Param{{Name: "expression", Type: "text"}},
		OutputShape:     []Field{{Field: "result", Type: "number"}},
	},
	{
		Name: "compare_values",
		InputParameters: []Param{
			{Name: "a", Type: "number"},
			{Name: "b", Type: "number"},
		},
		OutputShape: []Field{{Field: "result", Type: "boolean"}},
	},
	{
		Name:            "filter_data",
		InputParameters: []Param{{Name: "data", Type: "list"}, {Name: "condition", Type: "text"}},
		OutputShape:     []Field{{Field: "data", Type: "list"}},
	},
	{
		Name:            "sort_data",
		InputParameters: []Param{{Name: "data", Type: "list"}, {Name: "key", Type: "text"}},
		OutputShape:     []Field{{Field: "data", Type: "list"}},
	},
	{
		Name:            "aggregate_data",
		InputParameters: []Param{{Name: "data", Type: "list"}, {Name: "operation", Type: "text"}},
		OutputShape:     []Field{{Field: "value", Type: "number"}},
	},
	{
		Name:            "deduplicate_data",
		InputParameters: []Param{{Name: "data", Type: "list"}},
		OutputShape:     []Field{{Field: "data", Type: "list"}},
	},
	{
		Name: "unit_converter",
		InputParameters: []Param{
			{Name: "value", Type: "number"},
			{Name: "from_unit", Type: "text"},
			{Name: "to_unit", Type: "text"},
		},
		OutputShape: []Field{{Field: "value", Type: "number"}},
	},
	{
		Name: "validate_data",
		InputParameters: []Param{
			{Name: "data", Type: "text"},
			{Name: "validation_type", Type: "text"},
		},
		OutputShape: []Field{{Field: "valid", Type: "boolean"}},
	},
}
