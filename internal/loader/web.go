package loader

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
)

// FetchError indicates that a web page could not be retrieved, either due to
// a network failure or a non-2xx response status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("error fetching '%s': %v", e.URL, e.Err)
	}
	return fmt.Sprintf("error fetching '%s': status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

const (
	fetchTimeout = 10 * time.Second

	// Some sites reject requests without a browser user agent.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Elements whose subtrees carry no document content.
var skippedElements = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"footer": true,
	"header": true,
	"aside":  true,
}

type webExtractor struct {
	client *resty.Client
}

func newWebExtractor() *webExtractor {
	return &webExtractor{
		client: resty.New().
			SetTimeout(fetchTimeout).
			SetHeader("User-Agent", browserUserAgent),
	}
}

// extract fetches a web page and returns its visible text, one line per text
// node, with empty lines dropped.
func (w *webExtractor) extract(url string) (string, error) {
	res, err := w.client.R().Get(url)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	if !res.IsSuccess() {
		return "", &FetchError{URL: url, StatusCode: res.StatusCode()}
	}

	root, err := html.Parse(strings.NewReader(res.String()))
	if err != nil {
		return "", &ExtractionError{Format: FormatText, Err: err}
	}

	var lines []string
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			for _, line := range strings.Split(n.Data, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					lines = append(lines, line)
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(root)

	return strings.Join(lines, "\n"), nil
}
