package browser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is a parsed snapshot of a browsing context's DOM.
type Page struct {
	URL string
	doc *goquery.Document
}

// Element is a handle to a node of a Page. Accessors report absence explicitly.
type Element struct {
	sel *goquery.Selection
}

// NewPage parses html fetched from pageURL.
func NewPage(pageURL, html string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("data cannot be parsed as HTML: %w", err)
	}

	return &Page{URL: pageURL, doc: doc}, nil
}

// Find returns the first element matching selector.
func (p *Page) Find(selector string) (Element, error) {
	return first(p.doc.Selection, selector)
}

// FindAll returns every element matching selector in document order.
func (p *Page) FindAll(selector string) []Element {
	return all(p.doc.Selection, selector)
}

// Resolve turns a possibly relative link into an absolute URL against the page URL.
func (p *Page) Resolve(href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("failed to parse link %q: %w", href, err)
	}
	if p.URL == "" || ref.IsAbs() {
		return ref.String(), nil
	}

	base, err := url.Parse(p.URL)
	if err != nil {
		return "", fmt.Errorf("failed to parse page URL %q: %w", p.URL, err)
	}

	return base.ResolveReference(ref).String(), nil
}

// Attr returns the value of the named attribute.
func (e Element) Attr(name string) (string, error) {
	val, ok := e.sel.Attr(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrAttributeMissing, name)
	}

	return val, nil
}

// Text returns the trimmed text content of the element and its descendants.
func (e Element) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

// HasClass reports whether class is one of the element's classes.
func (e Element) HasClass(class string) bool {
	return e.sel.HasClass(class)
}

// Find returns the first descendant matching selector.
func (e Element) Find(selector string) (Element, error) {
	return first(e.sel, selector)
}

// FindAll returns every descendant matching selector.
func (e Element) FindAll(selector string) []Element {
	return all(e.sel, selector)
}

func first(sel *goquery.Selection, selector string) (Element, error) {
	found := sel.Find(selector)
	if found.Length() == 0 {
		return Element{}, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}

	return Element{sel: found.First()}, nil
}

func all(sel *goquery.Selection, selector string) []Element {
	found := sel.Find(selector)
	elements := make([]Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, Element{sel: s})
	})

	return elements
}
