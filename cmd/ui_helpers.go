// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// startSpinner shows text behind a rotating frame in a pterm area until the
// returned stop function is called. The area is removed when done and the
// cursor restored. If the area cannot be started the spinner is a no-op.
func startSpinner(text string) (stop func()) {
	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		return func() {}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		i := 0
		area.Update(spinnerLine(i, text))
		for {
			select {
			case <-t.C:
				i++
				area.Update(spinnerLine(i, text))
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
			_ = area.Stop()
			cursor.Show()
		})
	}
}

func spinnerLine(i int, text string) string {
	return fmt.Sprintf("%s %s", spinnerFrames[i%len(spinnerFrames)], text)
}

func printNotLoggedIn() {
	fmt.Println("🔒 You're not logged in yet!")
	fmt.Println("   Run 'irms login' to get started.")
}
