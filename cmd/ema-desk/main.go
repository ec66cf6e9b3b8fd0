// Command ema-desk is a desktop assistant that answers typed prompts,
// voicing sentences as they stream in and copying marked text to the
// clipboard.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
