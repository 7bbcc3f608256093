package parse

// Members of interfaces, object types and enums are separated by tokens
// that belong between two members, so those bodies are merged as sequences.
// Class members may be reordered since a stray semicolon is a valid member.
func tsGrammar() *grammar {
	return &grammar{
		unordered: set("class_body"),
		lists: set(
			"program", "statement_block", "arguments", "formal_parameters",
			"array", "object", "switch_body",
			"interface_body", "object_type", "enum_body",
		),
		atoms:  set("string", "template_string", "regex"),
		trivia: set("comment"),
		named: map[string]namer{
			"function_declaration":       fieldText("name"),
			"class_declaration":          fieldText("name"),
			"abstract_class_declaration": fieldText("name"),
			"interface_declaration":      fieldText("name"),
			"type_alias_declaration":     fieldText("name"),
			"enum_declaration":           fieldText("name"),
			"method_definition":          fieldText("name"),
			"method_signature":           fieldText("name"),
			"property_signature":         fieldText("name"),
			"public_field_definition":    fieldText("name"),
			"import_statement":           fieldText("source"),
		},
	}
}
