package cmdutils

import (
	"fmt"
	"io"
)

const logo = "💸"

// PrintResponse writes a bot reply to w with the spendit banner.
func PrintResponse(w io.Writer, text string) {
	if text == "" {
		return
	}

	fmt.Fprintf(w, "\n%s spendit\n%s\n\n", logo, text)
}
