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

package pkcs11

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const uriScheme = "pkcs11:"

// Object types accepted by the type path attribute.
var validTypes = map[string]bool{
	"public": true, "private": true, "cert": true,
	"secret-key": true, "data": true,
}

// DefaultModuleDirs are searched for a module-name match when the URI does
// not carry an absolute module-path.
var DefaultModuleDirs = []string{
	"/usr/lib64/pkcs11/",                 // Fedora, RHEL, openSUSE
	"/usr/lib/pkcs11/",                   // Fedora 32 bit, ArchLinux
	"/usr/lib/x86_64-linux-gnu/softhsm/", // Ubuntu/Debian x86_64
	"/usr/lib/softhsm/",                  // Ubuntu/Debian (older or 32-bit)
	"/usr/local/lib/softhsm/",            // Homebrew on macOS
}

// URI is a parsed RFC 7512 PKCS#11 URI identifying a signing key.
//
//	pkcs11:token=sealer;object=proof-key?module-name=softhsm2&pin-source=/run/pin
type URI struct {
	path  map[string]string
	query map[string]string
}

// ParseURI parses and validates a PKCS#11 URI.
func ParseURI(raw string) (*URI, error) {
	if !strings.HasPrefix(raw, uriScheme) {
		return nil, fmt.Errorf("malformed pkcs11 URI: missing %q prefix", uriScheme)
	}

	pathPart, queryPart, hasQuery := strings.Cut(strings.TrimPrefix(raw, uriScheme), "?")

	u := &URI{}
	var err error
	if u.path, err = parseAttributes(pathPart, ";"); err != nil {
		return nil, fmt.Errorf("malformed pkcs11 URI path: %w", err)
	}
	u.query = map[string]string{}
	if hasQuery {
		if u.query, err = parseAttributes(queryPart, "&"); err != nil {
			return nil, fmt.Errorf("malformed pkcs11 URI query: %w", err)
		}
	}

	if err := u.validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func parseAttributes(s, sep string) (map[string]string, error) {
	attrs := map[string]string{}
	if s == "" {
		return attrs, nil
	}
	for _, part := range strings.Split(s, sep) {
		name, value, ok := strings.Cut(part, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("attribute %q is not name=value", part)
		}
		decoded, err := url.PathUnescape(value)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		if _, dup := attrs[name]; dup {
			return nil, fmt.Errorf("attribute %s given twice", name)
		}
		attrs[name] = decoded
	}
	return attrs, nil
}

func (u *URI) validate() error {
	if slot, ok := u.path["slot-id"]; ok {
		if _, err := strconv.ParseUint(slot, 10, 32); err != nil {
			return fmt.Errorf("slot-id must be a 32 bit unsigned number: %s", slot)
		}
	}
	if typ, ok := u.path["type"]; ok && !validTypes[typ] {
		return fmt.Errorf("invalid type %q", typ)
	}
	_, hasSource := u.query["pin-source"]
	_, hasValue := u.query["pin-value"]
	if hasSource && hasValue {
		return fmt.Errorf("URI must not contain both pin-source and pin-value")
	}
	if p, ok := u.query["module-path"]; ok && !filepath.IsAbs(p) {
		return fmt.Errorf("module-path %s must be absolute", p)
	}
	return nil
}

// Token returns the token label.
func (u *URI) Token() string {
	return u.path["token"]
}

// Object returns the key label.
func (u *URI) Object() string {
	return u.path["object"]
}

// ID returns the raw key identifier bytes, or nil.
func (u *URI) ID() []byte {
	id, ok := u.path["id"]
	if !ok {
		return nil
	}
	return []byte(id)
}

// SlotID returns the slot number and whether one was given.
func (u *URI) SlotID() (int, bool) {
	slot, ok := u.path["slot-id"]
	if !ok {
		return 0, false
	}
	n, _ := strconv.ParseUint(slot, 10, 32)
	return int(n), true
}

// Attribute returns a decoded path attribute.
func (u *URI) Attribute(name string) string {
	return u.path[name]
}

// PIN resolves the user PIN from pin-value, pin-source (an absolute file
// path or file: URI), or fallback when the URI carries neither.
func (u *URI) PIN(fallback string) (string, error) {
	if v, ok := u.query["pin-value"]; ok {
		return v, nil
	}

	source, ok := u.query["pin-source"]
	if !ok {
		return fallback, nil
	}

	src, err := url.Parse(source)
	if err != nil {
		return "", fmt.Errorf("failed to parse pin-source: %w", err)
	}
	if src.Scheme != "" && src.Scheme != "file" {
		return "", fmt.Errorf("pin-source scheme %s is not supported", src.Scheme)
	}
	if !filepath.IsAbs(src.Path) {
		return "", fmt.Errorf("pin-source path %s is not absolute", src.Path)
	}
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read PIN: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Module resolves the PKCS#11 module library. An absolute module-path
// naming a file wins; otherwise module-name is matched case-insensitively
// against the files of the module-path directory or of dirs.
func (u *URI) Module(dirs []string) (string, error) {
	if p, ok := u.query["module-path"]; ok {
		info, err := os.Stat(p)
		if err != nil {
			return "", fmt.Errorf("module-path: %w", err)
		}
		if info.Mode().IsRegular() {
			return p, nil
		}
		if !info.IsDir() {
			return "", fmt.Errorf("module-path %s is not a file or directory", p)
		}
		dirs = []string{p}
	}

	name, ok := u.query["module-name"]
	if !ok {
		return "", fmt.Errorf("module-name attribute is not set")
	}
	name = strings.ToLower(name)
	if len(dirs) == 0 {
		dirs = DefaultModuleDirs
	}

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.Contains(strings.ToLower(entry.Name()), name) {
				return filepath.Join(dir, entry.Name()), nil
			}
		}
	}
	return "", fmt.Errorf("no module %q found in %v", name, dirs)
}

// String renders the URI without any PIN value.
func (u *URI) String() string {
	var b strings.Builder
	b.WriteString(uriScheme)
	b.WriteString(encodeAttributes(u.path, ";", nil))
	if q := encodeAttributes(u.query, "&", map[string]bool{"pin-value": true}); q != "" {
		b.WriteString("?")
		b.WriteString(q)
	}
	return b.String()
}

func encodeAttributes(attrs map[string]string, sep string, redact map[string]bool) string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		value := url.PathEscape(attrs[name])
		if redact[name] {
			value = "REDACTED"
		}
		parts = append(parts, name+"="+value)
	}
	return strings.Join(parts, sep)
}
