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

package artifact

import (
	"bytes"
	"mime"
	"net/http"
	"path"
	"strings"
)

// Content types understood by the normalizers.
const (
	TypeJSON      = "application/json"
	TypeYAML      = "application/yaml"
	TypeHTML      = "text/html"
	TypeCSV       = "text/csv"
	TypeZip       = "application/zip"
	TypeText      = "text/plain"
	TypePGP       = "application/pgp-encrypted"
	TypeOctet     = "application/octet-stream"
	bookmarksMark = "netscape-bookmark-file"
)

var extensionTypes = map[string]string{
	".json": TypeJSON,
	".yaml": TypeYAML,
	".yml":  TypeYAML,
	".html": TypeHTML,
	".htm":  TypeHTML,
	".csv":  TypeCSV,
	".zip":  TypeZip,
	".txt":  TypeText,
	".gpg":  TypePGP,
	".pgp":  TypePGP,
	".asc":  TypePGP,
}

var declaredAliases = map[string]string{
	"text/json":                    TypeJSON,
	"application/x-yaml":           TypeYAML,
	"text/yaml":                    TypeYAML,
	"text/x-yaml":                  TypeYAML,
	"application/xhtml+xml":        TypeHTML,
	"application/x-zip-compressed": TypeZip,
	"application/csv":              TypeCSV,
}

// DetectContentType picks a content type from, in order: a specific declared
// type (e.g. an HTTP Content-Type header), the locator's extension, and the
// content itself.
func DetectContentType(locator, declared string, content []byte) string {
	if ct := specificDeclared(declared); ct != "" {
		return ct
	}
	if ct := TypeFromExtension(locator); ct != "" {
		return ct
	}
	return sniff(content)
}

func specificDeclared(declared string) string {
	if declared == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return ""
	}
	if alias, ok := declaredAliases[mediaType]; ok {
		return alias
	}
	switch mediaType {
	case TypeJSON, TypeYAML, TypeHTML, TypeCSV, TypeZip, TypePGP:
		return mediaType
	}
	return ""
}

// TypeFromExtension maps a locator's file extension to a content type.
// Query strings and fragments are ignored.
func TypeFromExtension(locator string) string {
	p := locator
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return extensionTypes[strings.ToLower(path.Ext(p))]
}

func sniff(content []byte) string {
	trimmed := bytes.TrimLeft(content, " \t\r\n\xef\xbb\xbf")
	switch {
	case bytes.HasPrefix(content, []byte("PK\x03\x04")):
		return TypeZip
	case IsPGPMessage(content):
		return TypePGP
	case len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '['):
		return TypeJSON
	case len(trimmed) > 0 && trimmed[0] == '<':
		return TypeHTML
	}
	ct := http.DetectContentType(content)
	if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
		if mediaType == TypeHTML || mediaType == TypeZip {
			return mediaType
		}
		if strings.HasPrefix(mediaType, "text/") {
			return TypeText
		}
	}
	return TypeOctet
}

// IsBookmarkFile reports whether HTML content is a Netscape bookmark export.
func IsBookmarkFile(content []byte) bool {
	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(bytes.ToLower(head), []byte(bookmarksMark))
}

// IsPGPMessage reports whether content is an ASCII-armored or binary
// OpenPGP encrypted message.
func IsPGPMessage(content []byte) bool {
	if bytes.HasPrefix(bytes.TrimSpace(content), []byte("-----BEGIN PGP MESSAGE-----")) {
		return true
	}
	if len(content) < 2 || content[0]&0x80 == 0 {
		return false
	}
	var tag byte
	if content[0]&0x40 != 0 {
		tag = content[0] & 0x3f
	} else {
		tag = (content[0] & 0x3c) >> 2
	}
	// 1: public-key encrypted session key, 3: symmetric-key encrypted session key.
	return tag == 1 || tag == 3
}
