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
	"errors"
	"strings"

	"golang.org/x/net/html"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/artifact"
)

// HTMLNormalizer turns an HTML page into an element tree. Each element is a
// map with "tag", and "attrs" and "children" when non-empty. Text is
// whitespace-collapsed; comments and doctypes are dropped. Attribute order
// does not affect the result.
type HTMLNormalizer struct{}

func (HTMLNormalizer) Format() string { return "html" }

func (HTMLNormalizer) Accepts(a *artifact.Artifact) bool {
	return a.ContentType() == artifact.TypeHTML
}

func (HTMLNormalizer) Normalize(a *artifact.Artifact) (*Node, error) {
	doc, err := html.Parse(bytes.NewReader(a.Bytes()))
	if err != nil {
		return nil, err
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return htmlElement(c), nil
		}
	}
	return nil, errors.New("document has no root element")
}

func htmlElement(n *html.Node) *Node {
	fields := map[string]*Node{"tag": String(n.Data)}

	if len(n.Attr) > 0 {
		attrs := make(map[string]*Node, len(n.Attr))
		for _, a := range n.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + key
			}
			attrs[key] = String(a.Val)
		}
		fields["attrs"] = Map(attrs)
	}

	var children []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			children = append(children, htmlElement(c))
		case html.TextNode:
			if text := collapseSpace(c.Data); text != "" {
				children = append(children, String(text))
			}
		}
	}
	if len(children) > 0 {
		fields["children"] = List(children...)
	}
	return Map(fields)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapseSpace(sb.String())
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
