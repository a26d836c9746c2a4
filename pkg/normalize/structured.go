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
	"encoding/json"
	"errors"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/artifact"
)

// JSONNormalizer handles JSON documents. Numbers keep their exact decimal
// form; duplicate object keys resolve to the last occurrence.
type JSONNormalizer struct{}

func (JSONNormalizer) Format() string { return "json" }

func (JSONNormalizer) Accepts(a *artifact.Artifact) bool {
	return a.ContentType() == artifact.TypeJSON
}

func (JSONNormalizer) Normalize(a *artifact.Artifact) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(trimBOM(a.Bytes())))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return FromValue(v)
}

// YAMLNormalizer handles YAML documents. A stream of several documents
// normalizes to a list; an empty stream normalizes to null.
type YAMLNormalizer struct{}

func (YAMLNormalizer) Format() string { return "yaml" }

func (YAMLNormalizer) Accepts(a *artifact.Artifact) bool {
	return a.ContentType() == artifact.TypeYAML
}

func (YAMLNormalizer) Normalize(a *artifact.Artifact) (*Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(trimBOM(a.Bytes())))

	var docs []*Node
	for {
		var v interface{}
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		n, err := FromValue(v)
		if err != nil {
			return nil, err
		}
		docs = append(docs, n)
	}

	switch len(docs) {
	case 0:
		return Null(), nil
	case 1:
		return docs[0], nil
	}
	return List(docs...), nil
}

// TextNormalizer handles plain text as a list of lines. Line endings are
// normalized and invalid UTF-8 is replaced.
type TextNormalizer struct{}

func (TextNormalizer) Format() string { return "text" }

func (TextNormalizer) Accepts(a *artifact.Artifact) bool {
	return a.ContentType() == artifact.TypeText
}

func (TextNormalizer) Normalize(a *artifact.Artifact) (*Node, error) {
	text := strings.ToValidUTF8(string(trimBOM(a.Bytes())), "�")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return List(), nil
	}
	lines := strings.Split(text, "\n")
	items := make([]*Node, len(lines))
	for i, l := range lines {
		items[i] = String(strings.TrimRight(l, " \t\r"))
	}
	return List(items...), nil
}

func trimBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
}
