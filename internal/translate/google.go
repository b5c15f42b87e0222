package translate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// DefaultGoogleEndpoint is the mobile translation page.
const DefaultGoogleEndpoint = "https://translate.google.com/m"

// Google scrapes the mobile Google Translate page
type Google struct {
	Endpoint string
	Source   string
	Target   string
	Client   *http.Client
}

// Translate implements Translator.
func (g *Google) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	endpoint := g.Endpoint
	if endpoint == "" {
		endpoint = DefaultGoogleEndpoint
	}
	q := url.Values{}
	q.Set("sl", g.Source)
	q.Set("tl", g.Target)
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (cinegenre)")

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google translate: status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("google translate: parse page: %w", err)
	}

	node := findClass(doc, "result-container")
	if node == nil {
		return "", fmt.Errorf("google translate: no result in page")
	}
	out := strings.TrimSpace(textContent(node))
	if out == "" {
		return "", fmt.Errorf("google translate: empty result")
	}
	return out, nil
}

func findClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "class" && hasClass(a.Val, class) {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(attr, class string) bool {
	for _, c := range strings.Fields(attr) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
