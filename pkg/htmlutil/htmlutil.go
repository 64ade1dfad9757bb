package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

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

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText strips non-printable characters, trims the ends and collapses
// runs of inner whitespace into a single space.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = strings.TrimSpace(s)
	return innerWhitespace.ReplaceAllString(s, " ")
}

// Attr returns the value of an attribute on the first node of the selection with
// only its ends trimmed, or "" if it is missing.
func Attr(sel *goquery.Selection, name string) string {
	return strings.TrimSpace(sel.AttrOr(name, ""))
}

// FindInScripts returns the first submatch group of `re` found in the text of any
// <script> element of the document, or "" if none match.
func FindInScripts(doc *goquery.Document, re *regexp.Regexp) string {
	for _, script := range doc.Find("script").Nodes {
		groups := re.FindStringSubmatch(GetText(script))
		if len(groups) < 2 {
			continue
		}
		return groups[1]
	}
	return ""
}
