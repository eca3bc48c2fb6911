package ingest

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// sitemap is either a urlset (page locations) or a sitemapindex (child sitemap locations).
type sitemap struct {
	XMLName  xml.Name
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// parseSitemap returns the page urls and child sitemap urls of a sitemap document.
func parseSitemap(data []byte) (pages, children []string, err error) {
	var sm sitemap
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&sm); err != nil {
		return nil, nil, fmt.Errorf("decode sitemap: %w", err)
	}

	switch sm.XMLName.Local {
	case "urlset", "sitemapindex":
	default:
		return nil, nil, fmt.Errorf("unexpected sitemap root <%s>", sm.XMLName.Local)
	}

	for _, u := range sm.URLs {
		if loc := strings.TrimSpace(u.Loc); loc != "" {
			pages = append(pages, loc)
		}
	}
	for _, s := range sm.Sitemaps {
		if loc := strings.TrimSpace(s.Loc); loc != "" {
			children = append(children, loc)
		}
	}
	return pages, children, nil
}
