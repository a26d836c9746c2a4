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

// Package utils holds small helpers shared by the CLI and the verifier.
package utils

import (
	"fmt"
	"os"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
)

// PathType is the kind of filesystem entry a path must name.
type PathType int

const (
	// PathTypeFile expects a regular file.
	PathTypeFile PathType = iota
	// PathTypeFolder expects a directory.
	PathTypeFolder
)

// ValidatePath checks that path is set, exists and has the expected type.
// Failures are ConfigErrors naming fieldName.
func ValidatePath(fieldName, path string, pathType PathType) error {
	if path == "" {
		return faults.Config(fmt.Sprintf("%s is required", fieldName), nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return faults.Config(fmt.Sprintf("%s %q does not exist", fieldName, path), nil)
		}
		return faults.Config(fmt.Sprintf("checking %s %q", fieldName, path), err)
	}

	switch {
	case pathType == PathTypeFile && info.IsDir():
		return faults.Config(fmt.Sprintf("%s %q is a directory, expected file", fieldName, path), nil)
	case pathType == PathTypeFolder && !info.IsDir():
		return faults.Config(fmt.Sprintf("%s %q is a file, expected directory", fieldName, path), nil)
	}
	return nil
}

// ValidateFileExists validates that path is an existing file.
func ValidateFileExists(fieldName, path string) error {
	return ValidatePath(fieldName, path, PathTypeFile)
}

// ValidateFolderExists validates that path is an existing directory.
func ValidateFolderExists(fieldName, path string) error {
	return ValidatePath(fieldName, path, PathTypeFolder)
}

// ValidateOptionalFile validates a file path only if it is set.
func ValidateOptionalFile(fieldName, path string) error {
	if path == "" {
		return nil
	}
	return ValidateFileExists(fieldName, path)
}
