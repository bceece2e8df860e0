// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package terminal provides prompt helpers: reading answers, reading hidden
// secrets and clearing the prompt afterwards.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// LinesUsed reports how many terminal rows textLength characters occupy at
// width columns, plus the row the cursor moved to after Enter.
func LinesUsed(textLength, width int) int {
	if width <= 0 {
		width = 80
	}
	lines := int(math.Ceil(float64(textLength) / float64(width)))
	if lines < 1 {
		lines = 1
	}
	return lines + 1
}

// ClearPreviousLines clears textLength characters of prompt and answer that
// were just printed to stdout.
func ClearPreviousLines(textLength int) {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	n := LinesUsed(textLength, width)
	for i := 0; i < n; i++ {
		fmt.Print("\r\x1b[2K") // start of line, clear it
		if i < n-1 {
			fmt.Print("\x1b[1A") // up one
		}
	}
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ReadLine reads one line from r with surrounding whitespace removed.
// A final line without newline is accepted.
func ReadLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadSecret prints prompt and reads a line from the terminal without echo.
func ReadSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}
