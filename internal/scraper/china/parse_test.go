package china

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleListHTML = `
<!DOCTYPE html>
<html>
<body>
<div class="news_box">
  <div class="list_2">
    <ul>
      <li><h4><a href="/zhengce/content/202508/content_1001.htm">国务院关于促进经济发展的意见</a><span class="date">2025-08-20</span></h4></li>
      <li><h4><a href="https://www.gov.cn/zhengce/content/202508/content_1002.htm">中共中央办公厅印发通知</a><span class="date">2025-08-19</span></h4></li>
      <li><h4><a href="/zhengce/content/202508/content_1003.htm">关于加强市场监管的公告</a></h4></li>
    </ul>
  </div>
</div>
</body>
</html>`

const sampleArticleTableHTML = `
<html>
<body>
<table class="bd1">
  <tr><td>索 引 号：</td><td>000014349/2025-00123</td></tr>
  <tr><td>发文字号：</td><td>国发〔2025〕12号</td></tr>
</table>
<div id="UCAP-CONTENT">
  <p>各省、自治区、直辖市人民政府：</p>
  <p>为进一步促进经济发展，现提出以下意见。</p>
</div>
</body>
</html>`

const sampleArticleMobileHTML = `
<html>
<body>
<div class="pchide abstract mxxgkabstract">
  <h2>索 引 号</h2><p>000014349/2025-00456</p>
  <h2>发文字号</h2><p>国办发〔2025〕8号</p>
</div>
<div class="pages_content">
  <div class="TRS_Editor"><p>经国务院同意，现将有关事项通知如下。</p></div>
</div>
</body>
</html>`

const sampleArticlePlainHTML = `
<html>
<body>
<h1>中共中央 国务院关于深化改革的意见</h1>
<div class="pages_content">
  <p>发文字号：</p>
  <p>坚持稳中求进工作总基调，完整准确全面贯彻新发展理念。</p>
  <p>加快构建新发展格局，着力推动高质量发展。</p>
</div>
</body>
</html>`

const sampleArticleScriptedHTML = `
<html>
<body>
<div id="UCAP-CONTENT">
  <script>var _trackData = "analytics-payload";</script>
  <style>.share_box { display: none; }</style>
  <p>各省、自治区、直辖市人民政府：现将有关事项通知如下。</p>
</div>
</body>
</html>`

func TestListPageURL(t *testing.T) {
	assert.Equal(t, "https://www.gov.cn/zhengce/zuixin.htm", ListPageURL(1))
	assert.Equal(t, "https://www.gov.cn/zhengce/zuixin_2.htm", ListPageURL(2))
	assert.Equal(t, "https://www.gov.cn/zhengce/zuixin.htm", ListPageURL(0))
}

func TestParseListPage(t *testing.T) {
	releases, err := ParseListPage(sampleListHTML, ListBaseURL)
	require.NoError(t, err)

	// The third item has no date span and must be skipped.
	require.Len(t, releases, 2)

	assert.Equal(t, "国务院关于促进经济发展的意见", releases[0].Title)
	assert.Equal(t, "https://www.gov.cn/zhengce/content/202508/content_1001.htm", releases[0].URL)
	assert.Equal(t, "2025-08-20", releases[0].PublishDate)
	assert.Equal(t, "China", releases[0].Country)

	// Absolute hrefs pass through untouched.
	assert.Equal(t, "https://www.gov.cn/zhengce/content/202508/content_1002.htm", releases[1].URL)
}

func TestParseListPageEmpty(t *testing.T) {
	releases, err := ParseListPage("<html><body><p>nothing here</p></body></html>", ListBaseURL)
	require.NoError(t, err)
	assert.Empty(t, releases)
}

func TestParseArticleFromMetadataTable(t *testing.T) {
	details, err := ParseArticle(sampleArticleTableHTML, 10000)
	require.NoError(t, err)

	assert.Equal(t, "国发〔2025〕12号", details.DocNumber)
	assert.Contains(t, details.Content, "为进一步促进经济发展")
	// The index-number row must never be mistaken for the document number.
	assert.NotContains(t, details.DocNumber, "索 引 号")
}

func TestParseArticleFromMobileLayout(t *testing.T) {
	details, err := ParseArticle(sampleArticleMobileHTML, 10000)
	require.NoError(t, err)

	assert.Equal(t, "国办发〔2025〕8号", details.DocNumber)
	assert.Contains(t, details.Content, "经国务院同意")
}

func TestParseArticleWithoutDocNumber(t *testing.T) {
	details, err := ParseArticle(sampleArticlePlainHTML, 10000)
	require.NoError(t, err)

	// Party-organ documents often carry no number; empty is correct.
	assert.Empty(t, details.DocNumber)
	assert.Contains(t, details.Content, "坚持稳中求进工作总基调")
	// Metadata label paragraphs are excluded from content.
	assert.NotContains(t, details.Content, "发文字号")
}

func TestParseArticleDropsScriptAndStyleText(t *testing.T) {
	details, err := ParseArticle(sampleArticleScriptedHTML, 10000)
	require.NoError(t, err)

	assert.Contains(t, details.Content, "现将有关事项通知如下")
	// Browser-captured pages carry inline scripts and styles inside the
	// content container; their payloads must not leak into the content.
	assert.NotContains(t, details.Content, "analytics-payload")
	assert.NotContains(t, details.Content, "share_box")
}

func TestParseArticleContentCap(t *testing.T) {
	details, err := ParseArticle(sampleArticleTableHTML, 5)
	require.NoError(t, err)

	assert.LessOrEqual(t, len([]rune(details.Content)), 5+3) // cap plus ellipsis
	assert.Contains(t, details.Content, "...")
}

func TestDocNumberPattern(t *testing.T) {
	cases := map[string]string{
		"国发〔2025〕12号":              "国发〔2025〕12号",
		"文号 国办函〔2024〕3号 已印发":       "国办函〔2024〕3号",
		"索 引 号：000014349/2025-001": "",
	}
	for input, want := range cases {
		assert.Equal(t, want, docNumberPattern.FindString(input), "input %q", input)
	}
}
