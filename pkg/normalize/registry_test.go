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
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/artifact"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
)

func normalizeString(t *testing.T, contentType, content string) *Document {
	t.Helper()
	doc, err := DefaultRegistry().Normalize(artifact.New("test", contentType, []byte(content)))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	return doc
}

func TestNormalize_Deterministic(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		a, b        string
	}{
		{"json key order", artifact.TypeJSON, `{"title":"A","items":[1,2,3]}`, `{ "items": [1, 2, 3], "title": "A" }`},
		{"json number form", artifact.TypeJSON, `{"n":1.0}`, `{"n":1}`},
		{"yaml flow vs block", artifact.TypeYAML, "title: A\nitems: [1, 2, 3]\n", "items:\n  - 1\n  - 2\n  - 3\ntitle: A\n"},
		{"html attribute order", artifact.TypeHTML, `<p class="x" id="y">Hi  there</p>`, `<p id="y" class="x">Hi there</p>`},
		{"text line endings", artifact.TypeText, "a\r\nb\r\n", "a\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			da := normalizeString(t, tt.contentType, tt.a)
			db := normalizeString(t, tt.contentType, tt.b)
			if !da.Root.Equal(db.Root) {
				t.Errorf("documents differ:\n%s\n%s", da.Root, db.Root)
			}
			if da.Root.String() != db.Root.String() {
				t.Errorf("serializations differ:\n%s\n%s", da.Root, db.Root)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	doc := normalizeString(t, artifact.TypeJSON, `{"b":{"c":[1.50,true,null]},"a":"x"}`)
	again := normalizeString(t, artifact.TypeJSON, doc.Root.String())
	if !doc.Root.Equal(again.Root) {
		t.Errorf("re-normalizing changed the document:\n%s\n%s", doc.Root, again.Root)
	}
}

func TestNormalize_DocumentMetadata(t *testing.T) {
	a := artifact.New("ref.json", artifact.TypeJSON, []byte(`[]`))
	doc, err := DefaultRegistry().Normalize(a)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Source != "ref.json" || doc.Format != "json" || doc.Digests[artifact.DigestSHA256] == "" {
		t.Errorf("unexpected document metadata: %+v", doc)
	}
}

func TestNormalize_ParseErrors(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		content     string
	}{
		{"malformed json", artifact.TypeJSON, `{"title":`},
		{"empty json", artifact.TypeJSON, ``},
		{"trailing json", artifact.TypeJSON, `{} {}`},
		{"malformed yaml", artifact.TypeYAML, "a: [1, 2"},
		{"yaml nan", artifact.TypeYAML, "a: .nan"},
		{"ragged csv", artifact.TypeCSV, "a,b\n1\n"},
		{"not a zip", artifact.TypeZip, "PK\x03\x04garbage"},
		{"unsupported", artifact.TypeOctet, "\x00\x01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultRegistry().Normalize(artifact.New("bad", tt.contentType, []byte(tt.content)))
			if !faults.IsKind(err, faults.KindParse) {
				t.Errorf("error = %v, want ParseError", err)
			}
		})
	}
}

func TestYAML_MultiDocument(t *testing.T) {
	doc := normalizeString(t, artifact.TypeYAML, "a: 1\n---\nb: 2\n")
	if doc.Root.Kind() != KindList || doc.Root.Len() != 2 {
		t.Errorf("multi-document stream = %s, want list of 2", doc.Root)
	}
	if empty := normalizeString(t, artifact.TypeYAML, ""); empty.Root.Kind() != KindNull {
		t.Errorf("empty stream = %s, want null", empty.Root)
	}
}

func TestCSV(t *testing.T) {
	doc := normalizeString(t, artifact.TypeCSV, "\xef\xbb\xbfurl,title,url,\nhttps://a,A,dup,x\n")
	want := `[{"column_3":"x","title":"A","url":"https://a","url_1":"dup"}]`
	if got := doc.Root.String(); got != want {
		t.Errorf("CSV = %s, want %s", got, want)
	}
}

func TestHTML_Tree(t *testing.T) {
	doc := normalizeString(t, artifact.TypeHTML, `<!DOCTYPE html><html><head><title>T</title></head><body><!-- c --><h1 class="x">Hello</h1></body></html>`)
	want := `{"children":[{"children":[{"children":["T"],"tag":"title"}],"tag":"head"},` +
		`{"children":[{"attrs":{"class":"x"},"children":["Hello"],"tag":"h1"}],"tag":"body"}],"tag":"html"}`
	if got := doc.Root.String(); got != want {
		t.Errorf("HTML tree =\n%s\nwant\n%s", got, want)
	}
}

const bookmarksFixture = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><H3 ADD_DATE="1700000000" LAST_MODIFIED="1700000100" PERSONAL_TOOLBAR_FOLDER="true">Bookmarks bar</H3>
    <DL><p>
        <DT><A HREF="https://go.dev/" ADD_DATE="1700000001">Go</A>
        <DT><A HREF="https://pkg.go.dev/" ADD_DATE="1700000002">Packages</A>
    </DL><p>
    <DT><H3 ADD_DATE="1700000200">Reading</H3>
    <DL><p>
        <DT><A HREF="https://example.com/">Example</A>
    </DL><p>
</DL><p>
`

func TestBookmarks(t *testing.T) {
	doc := normalizeString(t, artifact.TypeHTML, bookmarksFixture)
	if doc.Format != "bookmarks" {
		t.Fatalf("Format = %q, want bookmarks", doc.Format)
	}
	if doc.Root.Len() != 2 {
		t.Fatalf("folders = %d, want 2: %s", doc.Root.Len(), doc.Root)
	}

	bar := doc.Root.Index(0)
	if name, _ := bar.Get("name"); name.StringValue() != "Bookmarks bar" {
		t.Errorf("folder name = %s", name)
	}
	if tb, _ := bar.Get("personal_toolbar_folder"); tb.StringValue() != "true" {
		t.Errorf("toolbar flag = %s", tb)
	}
	children, _ := bar.Get("children")
	if children.Len() != 2 {
		t.Fatalf("children = %s", children)
	}
	if url, _ := children.Index(1).Get("url"); url.StringValue() != "https://pkg.go.dev/" {
		t.Errorf("second link url = %s", url)
	}

	reading := doc.Root.Index(1)
	if tb, _ := reading.Get("personal_toolbar_folder"); tb.StringValue() != "false" {
		t.Errorf("default toolbar flag = %s", tb)
	}
	if lm, _ := reading.Get("last_modified"); lm.Kind() != KindNull {
		t.Errorf("missing last_modified = %s, want null", lm)
	}
	link := mustGet(t, reading, "children").Index(0)
	if d, _ := link.Get("add_date"); d.Kind() != KindNull {
		t.Errorf("missing add_date = %s, want null", d)
	}
}

func mustGet(t *testing.T, n *Node, key string) *Node {
	t.Helper()
	v, ok := n.Get(key)
	if !ok {
		t.Fatalf("missing key %q in %s", key, n)
	}
	return v
}

func TestZip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := []struct{ name, body string }{
		{"export/", ""},
		{"export/history.csv", "url,visits\nhttps://a,3\n"},
		{"export/meta.json", `{"user":"u1"}`},
		{"export/blob.bin", "\x00\x01\x02"},
		{"__MACOSX/export/._meta.json", "junk"},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(f.body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	doc, err := DefaultRegistry().Normalize(artifact.New("export.zip", artifact.TypeZip, buf.Bytes()))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	keys := strings.Join(doc.Root.Keys(), ",")
	if keys != "export/blob.bin,export/history.csv,export/meta.json" {
		t.Errorf("members = %s", keys)
	}
	if got := mustGet(t, doc.Root, "export/meta.json").String(); got != `{"user":"u1"}` {
		t.Errorf("json member = %s", got)
	}
	if got := mustGet(t, doc.Root, "export/history.csv").String(); got != `[{"url":"https://a","visits":"3"}]` {
		t.Errorf("csv member = %s", got)
	}
	if got := mustGet(t, doc.Root, "export/blob.bin").StringValue(); !strings.HasPrefix(got, "sha256:") {
		t.Errorf("binary member = %q, want digest", got)
	}
}

// zipOf builds an archive holding the given members in order.
func zipOf(t *testing.T, members ...[2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		w, err := zw.Create(m[0])
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(m[1])); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// nestedZip wraps a JSON document in levels archives.
func nestedZip(t *testing.T, levels int) []byte {
	t.Helper()
	data := zipOf(t, [2]string{"doc.json", `{"n":1}`})
	for i := 1; i < levels; i++ {
		data = zipOf(t, [2]string{"inner.zip", string(data)})
	}
	return data
}

func TestZip_Nested(t *testing.T) {
	doc, err := DefaultRegistry().Normalize(artifact.New("outer.zip", artifact.TypeZip, nestedZip(t, 2)))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got := doc.Root.String(); got != `{"inner.zip":{"doc.json":{"n":1}}}` {
		t.Errorf("nested archive = %s", got)
	}
}

func TestZip_Limits(t *testing.T) {
	small := func(z *ZipNormalizer) *Registry {
		r := NewRegistry(JSONNormalizer{}, TextNormalizer{})
		z.Registry = r
		r.Register(z)
		return r
	}
	tests := []struct {
		name     string
		registry *Registry
		content  []byte
		want     string
	}{
		{
			name:     "nesting beyond the default depth",
			registry: DefaultRegistry(),
			content:  nestedZip(t, DefaultMaxArchiveDepth+1),
			want:     "nested deeper",
		},
		{
			name:     "nesting beyond a configured depth",
			registry: small(&ZipNormalizer{MaxDepth: 2}),
			content:  nestedZip(t, 3),
			want:     "nested deeper",
		},
		{
			name:     "members over the total budget",
			registry: small(&ZipNormalizer{MaxTotalBytes: 100}),
			content: zipOf(t,
				[2]string{"a.txt", strings.Repeat("a", 60)},
				[2]string{"b.txt", strings.Repeat("b", 60)}),
			want: "expands beyond 100 bytes",
		},
		{
			name:     "nested members count against the budget",
			registry: small(&ZipNormalizer{MaxTotalBytes: 350}),
			content: zipOf(t,
				[2]string{"inner.zip", string(zipOf(t, [2]string{"a.txt", strings.Repeat("a", 150)}))},
				[2]string{"b.txt", strings.Repeat("b", 150)}),
			want: "expands beyond 350 bytes",
		},
		{
			name:     "member over its own cap",
			registry: small(&ZipNormalizer{MaxMemberBytes: 10}),
			content:  zipOf(t, [2]string{"a.txt", strings.Repeat("a", 11)}),
			want:     "member exceeds 10 bytes",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.registry.Normalize(artifact.New("export.zip", artifact.TypeZip, tt.content))
			if !faults.IsKind(err, faults.KindParse) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}

	within := small(&ZipNormalizer{MaxTotalBytes: 120})
	if _, err := within.Normalize(artifact.New("export.zip", artifact.TypeZip, zipOf(t,
		[2]string{"a.txt", strings.Repeat("a", 60)},
		[2]string{"b.txt", strings.Repeat("b", 60)}))); err != nil {
		t.Errorf("archive within budget: %v", err)
	}
}

func TestRegistry_Formats(t *testing.T) {
	got := strings.Join(DefaultRegistry().Formats(), ",")
	if got != "json,yaml,bookmarks,html,csv,text,zip" {
		t.Errorf("Formats() = %s", got)
	}
}
