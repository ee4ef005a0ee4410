package htmlutil

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// GetText concatenates every text node below the given node.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// TextNodes returns the trimmed contents of every individual text node
// below the given node, in document order. Empty nodes are dropped.
func TextNodes(node *html.Node) []string {
	var out []string
	collectTextNodes(node, &out)
	return out
}

func collectTextNodes(node *html.Node, out *[]string) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		text := strings.TrimSpace(node.Data)
		if text != "" {
			*out = append(*out, text)
		}
		return
	}
	child := node.FirstChild
	for child != nil {
		collectTextNodes(child, out)
		child = child.NextSibling
	}
}
