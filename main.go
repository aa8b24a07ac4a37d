// Copyright 2025 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/fotogeo/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
