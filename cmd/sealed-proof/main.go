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

package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/coderRaj07/POC-BrowserDAO/cmd/sealed-proof/cli"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/tracing"
)

type ExitCoder interface {
	error
	ExitCode() int
}

func main() {
	log.SetFlags(0)

	if err := tracing.InitFromEnv(); err != nil {
		log.Printf("warning: tracing disabled: %v", err)
	}

	err := cli.New().Execute()
	_ = tracing.Shutdown(context.Background())
	if err == nil {
		return
	}

	if fe, ok := faults.As(err); ok && fe.Stage != "" {
		log.Printf("failed at stage %s: %v", fe.Stage, err)
	} else {
		log.Printf("error during command execution: %v", err)
	}

	var ec ExitCoder
	if errors.As(err, &ec) {
		os.Exit(ec.ExitCode())
	}
	os.Exit(1)
}
