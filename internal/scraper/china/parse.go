package china

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"

	"github.com/presswatch/presswatch/internal/scraper/htmlops"
	"github.com/presswatch/presswatch/internal/shared/types"
)

const (
	// ListBaseURL is the first listing page of the State Council policy feed.
	ListBaseURL = "https://www.gov.cn/zhengce/zuixin.htm"
)

var (
	// docNumberPattern matches official document numbers like 国发〔2025〕12号.
	docNumberPattern = regexp.MustCompile(`[^〔\s]+〔\d{4}〕\d+号`)

	// docNumberLabelPattern finds the labelled form in free text.
	docNumberLabelPattern = regexp.MustCompile(`发文字号[:：]\s*([^\n]+)`)
)

// ListPageURL returns the listing URL for a 1-based page number.
func ListPageURL(page int) string {
	if page <= 1 {
		return ListBaseURL
	}
	return fmt.Sprintf("https://www.gov.cn/zhengce/zuixin_%d.htm", page)
}

// ParseListPage extracts release stubs (title, url, publish date) from a
// listing page. Links are resolved against the page URL.
func ParseListPage(htmlStr, pageURL string) ([]types.PressRelease, error) {
	doc, err := htmlops.LoadHTML(htmlStr)
	if err != nil {
		return nil, fmt.Errorf("parse list page: %w", err)
	}

	var releases []types.PressRelease
	doc.Find("div.news_box .list_2 ul > li").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a").First()
		date := item.Find("span.date").First()
		href, ok := link.Attr("href")
		if !ok || date.Length() == 0 {
			return
		}

		releases = append(releases, types.PressRelease{
			Country:     "China",
			Title:       strings.TrimSpace(link.Text()),
			URL:         htmlops.AbsoluteURL(pageURL, href),
			PublishDate: strings.TrimSpace(date.Text()),
		})
	})

	return releases, nil
}

// ArticleDetails holds fields extracted from an article detail page.
type ArticleDetails struct {
	DocNumber string
	Content   string
}

// ParseArticle extracts the document number and body content from an article
// detail page. Content is whitespace-normalized and capped at maxContent
// runes. The document number may legitimately be empty: party-organ documents
// carry none.
func ParseArticle(htmlStr string, maxContent int) (ArticleDetails, error) {
	doc, err := htmlops.LoadHTML(htmlStr)
	if err != nil {
		return ArticleDetails{}, fmt.Errorf("parse article: %w", err)
	}

	details := ArticleDetails{
		DocNumber: extractDocNumber(doc, htmlStr),
		Content:   extractContent(doc, maxContent),
	}
	return details, nil
}

// extractDocNumber runs the fallback chain for the 发文字号 field. Each
// method mirrors a page layout variant observed on gov.cn.
func extractDocNumber(doc *goquery.Document, htmlStr string) string {
	// Metadata table: row whose first cell is labelled 发文字号.
	if num := docNumberFromTable(htmlStr); num != "" {
		return num
	}

	// Mobile layout: abstract section with h2 label followed by a paragraph.
	if num := docNumberFromMobileSection(doc); num != "" {
		return num
	}

	// Any table cell containing the canonical number pattern.
	if num := docNumberFromCellScan(doc); num != "" {
		return num
	}

	// Labelled free text anywhere on the page.
	return docNumberFromBodyText(doc)
}

func docNumberFromTable(htmlStr string) string {
	root, err := htmlops.LoadHTMLNode(htmlStr)
	if err != nil {
		return ""
	}

	rows, err := htmlquery.QueryAll(root, "//tr[td[contains(., '发文字号')]]")
	if err != nil {
		return ""
	}
	for _, row := range rows {
		cells, err := htmlquery.QueryAll(row, "./td")
		if err != nil || len(cells) < 2 {
			continue
		}
		text := strings.TrimSpace(htmlops.NodeText(cells[1]))
		if text != "" && !strings.Contains(text, "索 引 号") {
			return text
		}
	}
	return ""
}

func docNumberFromMobileSection(doc *goquery.Document) string {
	var num string
	doc.Find(".pchide.abstract.mxxgkabstract h2").EachWithBreak(func(_ int, h2 *goquery.Selection) bool {
		if !strings.Contains(h2.Text(), "发文字号") {
			return true
		}
		next := h2.Next()
		if !next.Is("p") {
			return true
		}
		text := strings.TrimSpace(next.Text())
		if text != "" && !strings.Contains(text, "索 引 号") {
			num = text
			return false
		}
		return true
	})
	return num
}

func docNumberFromCellScan(doc *goquery.Document) string {
	var num string
	doc.Find("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
		if match := docNumberPattern.FindString(td.Text()); match != "" {
			num = match
			return false
		}
		return true
	})
	return num
}

func docNumberFromBodyText(doc *goquery.Document) string {
	match := docNumberLabelPattern.FindStringSubmatch(doc.Text())
	if len(match) < 2 {
		return ""
	}

	candidate := strings.TrimSpace(match[1])
	if extracted := docNumberPattern.FindString(candidate); extracted != "" {
		return extracted
	}

	first := strings.Fields(candidate)
	if len(first) > 0 && !strings.Contains(first[0], "索 引 号") {
		return first[0]
	}
	return ""
}

// contentSelectors are known article body containers, tried in order after
// the primary UCAP and pages_content layouts.
var contentSelectors = []string{
	".article-content",
	".content-text",
	".main-content",
	".text-content",
	".detail-content",
	".view_content",
	"#UCAP-CONTENT-FORPRINT",
}

// extractContent runs the fallback chain for the article body. Container
// text goes through the sanitizer so script and style payloads captured in
// browser HTML never end up in the content.
func extractContent(doc *goquery.Document, maxContent int) string {
	content := ""

	// Primary layout: main content area with id UCAP-CONTENT.
	if sel := doc.Find("#UCAP-CONTENT"); sel.Length() > 0 {
		content = htmlops.SanitizedText(sel)
	}

	// pages_content layout, skipping the metadata table.
	if content == "" {
		if pages := doc.Find(".pages_content"); pages.Length() > 0 {
			if article := pages.Find(".article, .TRS_Editor, .Custom_UnionStyle").First(); article.Length() > 0 {
				content = htmlops.SanitizedText(article)
			} else {
				var parts []string
				pages.Find("p").Each(func(_ int, p *goquery.Selection) {
					text := strings.TrimSpace(p.Text())
					if text != "" && !strings.Contains(text, "发文字号") && !strings.Contains(text, "索 引 号") {
						parts = append(parts, text)
					}
				})
				content = strings.Join(parts, "\n\n")
			}
		}
	}

	// Known alternative containers.
	if content == "" {
		for _, selector := range contentSelectors {
			if sel := doc.Find(selector); sel.Length() > 0 {
				content = htmlops.SanitizedText(sel)
				break
			}
		}
	}

	// Metadata-table layout: content follows the .bd1 table.
	if content == "" {
		if table := doc.Find(".bd1").First(); table.Length() > 0 {
			for sibling := table.Next(); sibling.Length() > 0; sibling = sibling.Next() {
				if text := strings.TrimSpace(htmlops.SanitizedText(sibling)); text != "" {
					content = text
					break
				}
			}
		}
	}

	content = htmlops.NormalizeWhitespace(content)
	if maxContent > 0 {
		content = htmlops.TruncateText(content, maxContent)
	}
	return content
}
