// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package normalize

import (
	"bytes"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/artifact"
)

// BookmarksNormalizer handles Netscape bookmark exports. The result is a
// list of folders in document order:
//
//	{"name", "add_date", "last_modified", "personal_toolbar_folder",
//	 "children": [{"title", "url", "add_date"}, ...]}
//
// A folder's children are all links under the first <DL> following its
// heading, including links in nested folders. Missing dates are null.
type BookmarksNormalizer struct{}

func (BookmarksNormalizer) Format() string { return "bookmarks" }

func (BookmarksNormalizer) Accepts(a *artifact.Artifact) bool {
	return a.ContentType() == artifact.TypeHTML && artifact.IsBookmarkFile(a.Bytes())
}

func (BookmarksNormalizer) Normalize(a *artifact.Artifact) (*Node, error) {
	doc, err := html.Parse(bytes.NewReader(a.Bytes()))
	if err != nil {
		return nil, err
	}

	var order []*html.Node
	var flatten func(*html.Node)
	flatten = func(n *html.Node) {
		if n.Type == html.ElementNode {
			order = append(order, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			flatten(c)
		}
	}
	flatten(doc)

	folders := []*Node{}
	for i, n := range order {
		if n.DataAtom != atom.Dt {
			continue
		}
		heading := firstChildElement(n, atom.H3)
		if heading == nil {
			continue
		}

		var links []*Node
		for _, next := range order[i+1:] {
			if next.DataAtom == atom.Dl {
				links = collectLinks(next)
				break
			}
		}
		if links == nil {
			links = []*Node{}
		}

		toolbar := "false"
		if v, ok := attr(heading, "personal_toolbar_folder"); ok {
			toolbar = v
		}
		folders = append(folders, Map(map[string]*Node{
			"name":                    String(textContent(heading)),
			"add_date":                optionalAttr(heading, "add_date"),
			"last_modified":           optionalAttr(heading, "last_modified"),
			"personal_toolbar_folder": String(toolbar),
			"children":                List(links...),
		}))
	}
	return List(folders...), nil
}

func firstChildElement(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
	}
	return nil
}

func collectLinks(dl *html.Node) []*Node {
	links := []*Node{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			links = append(links, Map(map[string]*Node{
				"title":    String(textContent(n)),
				"url":      optionalAttr(n, "href"),
				"add_date": optionalAttr(n, "add_date"),
			}))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(dl)
	return links
}

func optionalAttr(n *html.Node, key string) *Node {
	if v, ok := attr(n, key); ok {
		return String(v)
	}
	return Null()
}
