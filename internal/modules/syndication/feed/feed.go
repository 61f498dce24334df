package feed

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/penline/core/internal/models"
	"github.com/penline/core/internal/pkg/markdown"
	"github.com/penline/core/internal/pkg/response"
	"github.com/penline/core/internal/store"
)

const itemLimit = 20

// Site describes the channel.
type Site struct {
	Title       string
	Description string
	URL         string
}

type Handler struct {
	posts    store.PostStore
	users    store.UserStore
	renderer *markdown.Renderer
	site     Site
	logger   *zap.Logger
	now      func() time.Time
}

func NewHandler(st store.Store, renderer *markdown.Renderer, site Site, logger *zap.Logger) *Handler {
	site.URL = strings.TrimRight(site.URL, "/")
	return &Handler{
		posts:    st.Posts(),
		users:    st.Users(),
		renderer: renderer,
		site:     site,
		logger:   logger.Named("Feed"),
		now:      time.Now,
	}
}

// RegisterRoutes mounts RSS and Atom feed endpoints.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/feed.xml", h.rss)
	rg.GET("/atom.xml", h.atom)
}

type feedItem struct {
	Title   string
	Link    string
	GUID    string
	Author  string
	PubDate time.Time
	Content string
}

func (h *Handler) rss(c *gin.Context) {
	items, err := h.items(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", buildRSS(h.site, items, h.now()))
}

func (h *Handler) atom(c *gin.Context) {
	items, err := h.items(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/atom+xml; charset=utf-8", buildAtom(h.site, items, h.now()))
}

// items loads the newest published posts with rendered bodies.
func (h *Handler) items(ctx context.Context) ([]feedItem, error) {
	published := true
	posts, _, err := h.posts.List(ctx, store.PostFilter{IsPublished: &published}, 1, itemLimit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	authorIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.AuthorID)
	}
	authors, err := h.users.GetByIDs(ctx, store.UniqueIDs(authorIDs))
	if err != nil {
		return nil, fmt.Errorf("resolve authors: %w", err)
	}

	items := make([]feedItem, 0, len(posts))
	for _, p := range posts {
		body, err := h.renderer.Render(p.Content)
		if err != nil {
			h.logger.Warn("render failed, using excerpt", zap.String("post", p.ID), zap.Error(err))
			body = p.Excerpt
		}
		items = append(items, feedItem{
			Title:   p.Title,
			Link:    h.site.URL + "/posts/" + p.Slug,
			GUID:    p.ID,
			Author:  authorName(authors[p.AuthorID]),
			PubDate: p.CreatedAt,
			Content: body,
		})
	}
	return items, nil
}

func authorName(u *models.UserModel) string {
	if u == nil {
		return ""
	}
	return u.Name
}

func buildRSS(site Site, items []feedItem, now time.Time) []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">` + "\n  <channel>\n")
	element(&b, 4, "title", site.Title)
	element(&b, 4, "link", site.URL)
	element(&b, 4, "description", site.Description)
	element(&b, 4, "lastBuildDate", now.Format(time.RFC1123Z))

	for _, item := range items {
		b.WriteString("    <item>\n")
		element(&b, 6, "title", item.Title)
		element(&b, 6, "link", item.Link)
		element(&b, 6, "guid", item.GUID)
		if item.Author != "" {
			element(&b, 6, "dc:creator", item.Author)
		}
		element(&b, 6, "pubDate", item.PubDate.Format(time.RFC1123Z))
		b.WriteString("      <description>" + cdata(item.Content) + "</description>\n")
		b.WriteString("    </item>\n")
	}

	b.WriteString("  </channel>\n</rss>\n")
	return b.Bytes()
}

func buildAtom(site Site, items []feedItem, now time.Time) []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom">` + "\n")
	element(&b, 2, "title", site.Title)
	element(&b, 2, "subtitle", site.Description)
	b.WriteString(`  <link href="` + escape(site.URL) + `"/>` + "\n")
	element(&b, 2, "updated", now.Format(time.RFC3339))
	element(&b, 2, "id", site.URL)

	for _, item := range items {
		b.WriteString("  <entry>\n")
		element(&b, 4, "title", item.Title)
		b.WriteString(`    <link href="` + escape(item.Link) + `"/>` + "\n")
		element(&b, 4, "id", item.GUID)
		if item.Author != "" {
			b.WriteString("    <author>\n")
			element(&b, 6, "name", item.Author)
			b.WriteString("    </author>\n")
		}
		element(&b, 4, "updated", item.PubDate.Format(time.RFC3339))
		b.WriteString(`    <content type="html">` + cdata(item.Content) + "</content>\n")
		b.WriteString("  </entry>\n")
	}

	b.WriteString("</feed>\n")
	return b.Bytes()
}

func element(b *bytes.Buffer, indent int, name, text string) {
	b.WriteString(strings.Repeat(" ", indent))
	b.WriteString("<" + name + ">" + escape(text) + "</" + name + ">\n")
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// cdata wraps s in a CDATA section, splitting any "]]>" it contains.
func cdata(s string) string {
	return "<![CDATA[" + strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>") + "]]>"
}
