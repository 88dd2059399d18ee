package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/BoardPulse/internal/types"
)

// Listing page selectors.
const (
	entrySelector  = "div.r-ent"
	pushSelector   = "div.nrec"
	titleSelector  = "div.title a"
	dateSelector   = "div.date"
	pagingSelector = "div.btn-group-paging a, div.btn-group a"
	prevPageLabel  = "上頁"
)

var pageNumberRe = regexp.MustCompile(`index(\d+)\.html`)

// ListingResult is the outcome of parsing one listing page.
type ListingResult struct {
	References []types.PostReference
	// Deleted counts entries skipped because the post no longer has a link.
	Deleted int
}

// ParseListing extracts post references from a board listing page, top to
// bottom. Entries without a title link (deleted posts) are skipped.
func ParseListing(doc *goquery.Document) (*ListingResult, error) {
	if doc == nil {
		return nil, &types.ParseError{Selector: entrySelector, Err: errNilDocument}
	}

	result := &ListingResult{}
	doc.Find(entrySelector).Each(func(i int, entry *goquery.Selection) {
		push := types.ParsePushCount(entry.Find(pushSelector).Text())

		anchor := entry.Find(titleSelector).First()
		href, ok := anchor.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			result.Deleted++
			return
		}

		result.References = append(result.References, types.PostReference{
			Date:  strings.TrimSpace(entry.Find(dateSelector).First().Text()),
			Title: strings.TrimSpace(anchor.Text()),
			Link:  href,
			Push:  push,
		})
	})

	return result, nil
}

// LatestPage returns the number of the newest listing page, given the
// board's unnumbered index page. The index links to its predecessor as
// index<N>.html, so the newest page is N+1.
func LatestPage(doc *goquery.Document) (int, error) {
	if doc == nil {
		return 0, &types.ParseError{Selector: pagingSelector, Err: errNilDocument}
	}

	prev := -1
	doc.Find(pagingSelector).EachWithBreak(func(i int, a *goquery.Selection) bool {
		if !strings.Contains(a.Text(), prevPageLabel) {
			return true
		}
		href, _ := a.Attr("href")
		m := pageNumberRe.FindStringSubmatch(href)
		if m == nil {
			return true
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return true
		}
		prev = n
		return false
	})

	if prev < 0 {
		return 0, &types.ParseError{
			Selector: pagingSelector,
			Err:      fmt.Errorf("%w: no %q link", types.ErrNoPagination, prevPageLabel),
		}
	}
	return prev + 1, nil
}
