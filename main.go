// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main is the entry point for the IRMS CLI.
package main

import (
	"irms/cli/cmd"
)

func main() {
	cmd.Execute()
}
