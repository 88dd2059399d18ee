package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/BoardPulse/internal/types"
)

func mustDoc(t *testing.T, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

const testListingHTML = `<!DOCTYPE html>
<html><body>
<div id="action-bar-container">
  <div class="btn-group btn-group-paging">
    <a class="btn wide" href="/bbs/Food/index1.html">最舊</a>
    <a class="btn wide" href="/bbs/Food/index7005.html">&lsaquo; 上頁</a>
    <a class="btn wide disabled">下頁 &rsaquo;</a>
    <a class="btn wide" href="/bbs/Food/index.html">最新</a>
  </div>
</div>
<div class="r-list-container action-bar-margin bbs-screen">
  <div class="r-ent">
    <div class="nrec"><span class="hl f1">爆</span></div>
    <div class="title"><a href="/bbs/Food/M.1.A.001.html">[食記] 台北 牛肉麵</a></div>
    <div class="meta"><div class="author">alice</div><div class="date"> 1/02</div></div>
  </div>
  <div class="r-ent">
    <div class="nrec"></div>
    <div class="title">(本文已被刪除) [bob]</div>
    <div class="meta"><div class="author">-</div><div class="date"> 1/02</div></div>
  </div>
  <div class="r-ent">
    <div class="nrec"><span class="hl f2">12</span></div>
    <div class="title">
      <a href="/bbs/Food/M.2.A.002.html">  [問題] 推薦 早午餐  </a>
    </div>
    <div class="meta"><div class="author">carol</div><div class="date">12/31</div></div>
  </div>
  <div class="r-ent">
    <div class="nrec"><span class="hl f1">X3</span></div>
    <div class="title"><a href="/bbs/Food/M.3.A.003.html">[廣告] 雷店</a></div>
    <div class="meta"><div class="author">dave</div><div class="date"> 1/03</div></div>
  </div>
</div>
</body></html>`

const testPostLink = "/bbs/Food/M.1.A.001.html"

const testPostHTML = `<!DOCTYPE html>
<html><body>
<div id="main-content" class="bbs-screen bbs-content"><div class="article-metaline"><span class="article-meta-tag">作者</span><span class="article-meta-value">alice (Alice)</span></div><div class="article-metaline-right"><span class="article-meta-tag">看板</span><span class="article-meta-value">Food</span></div><div class="article-metaline"><span class="article-meta-tag">標題</span><span class="article-meta-value">[食記] 台北 牛肉麵</span></div>湯頭濃郁，非常好吃！
地址：台北市

<span class="hl">GOOD Price</span>
--
<span class="f2">※ 發信站: 批踢踢實業坊(ptt.cc)
</span><span class="f2">※ 文章網址: <a href="https://www.ptt.cc/bbs/Food/M.1.A.001.html">https://www.ptt.cc/bbs/Food/M.1.A.001.html</a>
</span><span>--signature</span><div class="push"><span class="push-tag">推 </span><span class="push-userid">carol</span><span class="push-content">: 看起來好好吃</span></div></div>
</body></html>`

// --- Sanitizer Tests ---

func TestSanitize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ABC中文--  \n\t", "abc中文 "},
		{"好吃😋!!", "好吃"},
		{"a -- b", "a b"},
		{"a---b", "a-b"},
		{"中　　文", "中 文"},
		{"ÉCOLE", "École"},
		{"價格：NT$200（含稅）", "價格：nt200（含稅）"},
		{"https://i.imgur.com/AbC.jpg", "https://i.imgur.com/abc.jpg"},
		{"『推薦』【必吃】「讚」", "『推薦』【必吃】「讚」"},
		{"", ""},
	}

	for _, tt := range tests {
		got := Sanitize(tt.input)
		if got != tt.expected {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"ABC中文--  \n\t",
		"a -- -- b",
		"----",
		"-- \t --x",
		"Mixed 大小寫 TEXT\r\n\r\n第二行！？",
		"　 lead and trail 　",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
		if strings.ContainsAny(once, "\t\n\r") {
			t.Errorf("raw control whitespace left in %q", once)
		}
		if strings.Contains(once, "--") {
			t.Errorf("separator left in %q", once)
		}
	}
}

// --- Listing Parser Tests ---

func TestParseListing(t *testing.T) {
	res, err := ParseListing(mustDoc(t, testListingHTML))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if len(res.References) != 3 {
		t.Fatalf("expected 3 references, got %d", len(res.References))
	}
	if res.Deleted != 1 {
		t.Errorf("expected 1 deleted entry, got %d", res.Deleted)
	}

	first := res.References[0]
	if first.Link != "/bbs/Food/M.1.A.001.html" {
		t.Errorf("unexpected link %q", first.Link)
	}
	if first.Title != "[食記] 台北 牛肉麵" {
		t.Errorf("unexpected title %q", first.Title)
	}
	if first.Date != "1/02" {
		t.Errorf("unexpected date %q", first.Date)
	}
	if first.Push.Kind != types.PushBurst || first.Push.Value() != 99 {
		t.Errorf("expected burst push, got %s", first.Push)
	}

	second := res.References[1]
	if second.Title != "[問題] 推薦 早午餐" {
		t.Errorf("title should be trimmed, got %q", second.Title)
	}
	if second.Push.Value() != 12 {
		t.Errorf("expected push 12, got %d", second.Push.Value())
	}
	if second.Date != "12/31" {
		t.Errorf("unexpected date %q", second.Date)
	}

	if got := res.References[2].Push.Value(); got != -10 {
		t.Errorf("expected excluded push -10, got %d", got)
	}
}

func TestParseListingEmpty(t *testing.T) {
	res, err := ParseListing(mustDoc(t, "<html><body><p>nothing here</p></body></html>"))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(res.References) != 0 || res.Deleted != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestLatestPage(t *testing.T) {
	n, err := LatestPage(mustDoc(t, testListingHTML))
	if err != nil {
		t.Fatalf("latest page: %v", err)
	}
	if n != 7006 {
		t.Errorf("expected 7006, got %d", n)
	}

	_, err = LatestPage(mustDoc(t, "<html><body></body></html>"))
	if !errors.Is(err, types.ErrNoPagination) {
		t.Errorf("expected ErrNoPagination, got %v", err)
	}
}

func TestNilDocument(t *testing.T) {
	if _, err := ParseListing(nil); err == nil {
		t.Error("ParseListing(nil) should fail")
	}
	if _, err := LatestPage(nil); err == nil {
		t.Error("LatestPage(nil) should fail")
	}
	if _, err := ExtractBody(nil, testPostLink); err == nil {
		t.Error("ExtractBody(nil) should fail")
	}
}

// --- Post Extractor Tests ---

func TestExtractBody(t *testing.T) {
	body, err := ExtractBody(mustDoc(t, testPostHTML), testPostLink)
	if err != nil {
		t.Fatalf("extract error: %v", err)
	}

	expected := "湯頭濃郁，非常好吃 地址：台北市good price"
	if body != expected {
		t.Errorf("body = %q, want %q", body, expected)
	}

	for _, noise := range []string{"alice", "看板", "看起來好好吃", "發信站", "signature", "ptt.cc"} {
		if strings.Contains(body, noise) {
			t.Errorf("body should not contain %q: %q", noise, body)
		}
	}
}

func TestExtractBodyWithoutLinkKeepsText(t *testing.T) {
	body, err := ExtractBody(mustDoc(t, testPostHTML), "")
	if err != nil {
		t.Fatalf("extract error: %v", err)
	}
	// Without a link to match, the permalink text survives sanitization.
	if !strings.Contains(body, "https://www.ptt.cc/bbs/food/m.1.a.001.html") {
		t.Errorf("expected permalink text in body, got %q", body)
	}
}

func TestExtractBodyMissingContainer(t *testing.T) {
	_, err := ExtractBody(mustDoc(t, "<html><body><div id=\"other\">x</div></body></html>"), testPostLink)
	if !errors.Is(err, types.ErrNoMainContent) {
		t.Fatalf("expected ErrNoMainContent, got %v", err)
	}
}

func TestExtractBodyOnlyNoise(t *testing.T) {
	page := `<div id="main-content"><div class="article-metaline">作者 x</div>--
<span>※ 發信站</span><div class="push">推 好</div></div>`
	body, err := ExtractBody(mustDoc(t, page), testPostLink)
	if err != nil {
		t.Fatalf("extract error: %v", err)
	}
	if body != "" {
		t.Errorf("expected empty body, got %q", body)
	}
}
