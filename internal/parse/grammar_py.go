package parse

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// Python statements run in order, so no container is unordered.
func pyGrammar() *grammar {
	return &grammar{
		unordered: set(),
		lists:     set("module", "block", "argument_list", "parameters", "list", "tuple"),
		atoms:     set("string", "concatenated_string"),
		trivia:    set("comment"),
		named: map[string]namer{
			"function_definition":   fieldText("name"),
			"class_definition":      fieldText("name"),
			"decorated_definition":  pyDecoratedName,
			"import_statement":      compactText,
			"import_from_statement": fieldText("module_name"),
		},
	}
}

func pyDecoratedName(n *tree_sitter.Node, source []byte) string {
	def := n.ChildByFieldName("definition")
	if def == nil {
		return ""
	}
	return fieldText("name")(def, source)
}

func compactText(n *tree_sitter.Node, source []byte) string {
	return compact(n.Utf8Text(source))
}
