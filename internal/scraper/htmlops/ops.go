// Package htmlops provides shared HTML parsing helpers: charset-aware
// document loading, xpath parsing, sanitization, and text normalization.
package htmlops

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// MaxHTMLSize limits HTML input to 10MB to prevent memory exhaustion
const MaxHTMLSize = 10 * 1024 * 1024

var sanitizer = bluemonday.UGCPolicy()

// ValidateHTML checks HTML size and returns error if too large
func ValidateHTML(htmlStr string) error {
	if len(htmlStr) == 0 {
		return fmt.Errorf("html content required")
	}
	if len(htmlStr) > MaxHTMLSize {
		return fmt.Errorf("html exceeds maximum size of %d bytes", MaxHTMLSize)
	}
	return nil
}

// DetectCharset detects and returns charset from HTML bytes
func DetectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// LoadHTML loads HTML with automatic charset detection
func LoadHTML(htmlStr string) (*goquery.Document, error) {
	if err := ValidateHTML(htmlStr); err != nil {
		return nil, err
	}

	data := []byte(htmlStr)
	detectedCharset := DetectCharset(data)

	reader := bytes.NewReader(data)
	utf8Reader, err := charset.NewReader(reader, detectedCharset)
	if err != nil {
		// Fallback to direct parsing
		return goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	}

	return goquery.NewDocumentFromReader(utf8Reader)
}

// LoadHTMLNode loads HTML into an xpath-compatible node
func LoadHTMLNode(htmlStr string) (*html.Node, error) {
	if err := ValidateHTML(htmlStr); err != nil {
		return nil, err
	}

	data := []byte(htmlStr)
	detectedCharset := DetectCharset(data)

	reader := bytes.NewReader(data)
	utf8Reader, err := charset.NewReader(reader, detectedCharset)
	if err != nil {
		return htmlquery.Parse(strings.NewReader(htmlStr))
	}

	return htmlquery.Parse(utf8Reader)
}

// Sanitize strips unsafe markup from HTML content
func Sanitize(htmlStr string) string {
	return sanitizer.Sanitize(htmlStr)
}

// SanitizedText returns the text of a selection after sanitizing its markup.
// Plain Text() keeps the contents of script and style elements; sanitizing
// first drops them along with any other unsafe markup.
func SanitizedText(sel *goquery.Selection) string {
	raw, err := sel.Html()
	if err != nil {
		return sel.Text()
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(Sanitize(raw)))
	if err != nil {
		return sel.Text()
	}
	return doc.Text()
}

// NormalizeWhitespace collapses runs of whitespace into single spaces
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateText truncates text to max runes with ellipsis
func TruncateText(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

// NodeText extracts the concatenated text content of a node
func NodeText(n *html.Node) string {
	var buf bytes.Buffer
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}

// AbsoluteURL resolves href against base, returning href unchanged when it
// is already absolute or base cannot be parsed.
func AbsoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
