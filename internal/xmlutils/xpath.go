// Package xmlutils wraps the XPath helpers used to read XML definition resources.
package xmlutils

import (
	"fmt"
	"io"
	"io/fs"
	"strings"

	"gopkg.in/xmlpath.v2"
)

// Parse reads an XML document and returns its root node.
func Parse(r io.Reader) (*xmlpath.Node, error) {
	root, err := xmlpath.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	return root, nil
}

// LoadXMLFile opens name inside fsys and parses it.
func LoadXMLFile(fsys fs.FS, name string) (*xmlpath.Node, error) {
	file, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open XML file %s: %w", name, err)
	}
	defer func() { _ = file.Close() }()

	root, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return root, nil
}

// Nodes returns every node matched by xpath below root.
func Nodes(root *xmlpath.Node, xpath string) ([]*xmlpath.Node, error) {
	path, err := xmlpath.Compile(xpath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile XPath %q: %w", xpath, err)
	}

	var nodes []*xmlpath.Node
	iter := path.Iter(root)
	for iter.Next() {
		nodes = append(nodes, iter.Node())
	}
	return nodes, nil
}

// ExtractFromXML returns the string value of every node matched by xpath.
func ExtractFromXML(root *xmlpath.Node, xpath string) ([]string, error) {
	nodes, err := Nodes(root, xpath)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(nodes))
	for _, n := range nodes {
		values = append(values, n.String())
	}
	return values, nil
}

// FirstValue evaluates the first of paths (relative to node) that matches and
// returns its trimmed value.
func FirstValue(node *xmlpath.Node, paths ...*xmlpath.Path) (string, bool) {
	for _, p := range paths {
		if v, ok := p.String(node); ok {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}
