package python

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ParseImportsAST extracts import declarations using the tree-sitter Python
// grammar. Unlike ExtractImports it ignores import-like text in strings and
// comments, and it also finds imports nested inside blocks.
func ParseImportsAST(sourceCode []byte) ([]ImportMatch, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Python code: %w", err)
	}
	defer tree.Close()

	return extractImportsFromTree(tree.RootNode(), sourceCode), nil
}

func extractImportsFromTree(rootNode *sitter.Node, sourceCode []byte) []ImportMatch {
	var matches []ImportMatch

	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}

		switch n.Type() {
		case "import_statement":
			names := importedNames(n, sourceCode, false)
			if len(names) > 0 {
				matches = append(matches, ImportMatch{Items: strings.Join(names, ", ")})
			}
			return
		case "import_from_statement", "future_import_statement":
			module := "__future__"
			if moduleNode := n.ChildByFieldName("module_name"); moduleNode != nil {
				module = strings.TrimSpace(moduleNode.Content(sourceCode))
			}
			names := importedNames(n, sourceCode, true)
			if module != "" && len(names) > 0 {
				matches = append(matches, ImportMatch{FromPackage: module, Items: strings.Join(names, ", ")})
			}
			return
		}

		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}

	walk(rootNode)
	return matches
}

// importedNames returns the imported names of an import node. For from-imports
// only the children after the import keyword are names.
func importedNames(node *sitter.Node, sourceCode []byte, afterImportKeyword bool) []string {
	var names []string
	seenImport := !afterImportKeyword

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Type() == "import" {
			seenImport = true
			continue
		}
		if !seenImport {
			continue
		}

		switch child.Type() {
		case "dotted_name", "identifier":
			names = append(names, strings.TrimSpace(child.Content(sourceCode)))
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				names = append(names, strings.TrimSpace(name.Content(sourceCode)))
			}
		}
	}

	return names
}
