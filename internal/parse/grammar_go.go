package parse

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

func goGrammar() *grammar {
	return &grammar{
		unordered: set("source_file", "interface_type", "import_spec_list"),
		lists: set(
			"block", "statement_list", "argument_list", "parameter_list",
			"expression_list", "literal_value", "field_declaration_list",
		),
		atoms:  set("interpreted_string_literal", "raw_string_literal", "rune_literal"),
		trivia: set("comment"),
		named: map[string]namer{
			"package_clause":       constName("package"),
			"function_declaration": fieldText("name"),
			"method_declaration":   goMethodName,
			"type_declaration":     firstNamed("type_spec", fieldText("name")),
			"const_declaration":    firstNamed("const_spec", fieldText("name")),
			"var_declaration":      firstNamed("var_spec", fieldText("name")),
			"import_declaration":   goImportName,
			"import_spec":          fieldText("path"),
			"method_elem":          fieldText("name"),
		},
	}
}

// goMethodName qualifies a method with its receiver type, e.g. "(*T).Get".
func goMethodName(n *tree_sitter.Node, source []byte) string {
	name := fieldText("name")(n, source)
	if name == "" {
		return ""
	}
	recv := n.ChildByFieldName("receiver")
	if recv == nil {
		return name
	}
	decl := recv.NamedChild(0)
	if decl == nil {
		return name
	}
	typ := decl.ChildByFieldName("type")
	if typ == nil {
		return name
	}
	return "(" + typ.Utf8Text(source) + ")." + name
}

// goImportName keys a grouped import declaration as "import" so that it
// stays matchable when specs are added, and a single import by its path.
func goImportName(n *tree_sitter.Node, source []byte) string {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "import_spec_list":
			return "import"
		case "import_spec":
			return "import " + fieldText("path")(c, source)
		}
	}
	return ""
}
