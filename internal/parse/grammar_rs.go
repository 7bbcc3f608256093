package parse

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

func rsGrammar() *grammar {
	return &grammar{
		unordered: set("source_file", "declaration_list"),
		lists: set(
			"block", "arguments", "parameters", "field_declaration_list",
			"enum_variant_list", "array_expression", "tuple_expression",
		),
		atoms:  set("string_literal", "raw_string_literal", "char_literal"),
		trivia: set("line_comment", "block_comment"),
		named: map[string]namer{
			"function_item":            fieldText("name"),
			"function_signature_item":  fieldText("name"),
			"struct_item":              fieldText("name"),
			"enum_item":                fieldText("name"),
			"union_item":               fieldText("name"),
			"trait_item":               fieldText("name"),
			"type_item":                fieldText("name"),
			"mod_item":                 fieldText("name"),
			"const_item":               fieldText("name"),
			"static_item":              fieldText("name"),
			"macro_definition":         fieldText("name"),
			"impl_item":                rsImplName,
			"use_declaration":          rsUseName,
			"associated_type":          fieldText("name"),
			"attribute_item":           compactText,
			"inner_attribute_item":     compactText,
			"extern_crate_declaration": fieldText("name"),
		},
	}
}

// rsImplName keys an impl block by trait and type, e.g. "Display for Point".
func rsImplName(n *tree_sitter.Node, source []byte) string {
	typ := fieldText("type")(n, source)
	if trait := fieldText("trait")(n, source); trait != "" {
		return trait + " for " + typ
	}
	return typ
}

func rsUseName(n *tree_sitter.Node, source []byte) string {
	arg := n.ChildByFieldName("argument")
	if arg == nil {
		return ""
	}
	return compact(arg.Utf8Text(source))
}
