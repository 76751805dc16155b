package prompts

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm prints question to w and reads a yes/no answer from r.
// Returns true only for "y" or "yes".
func Confirm(r io.Reader, w io.Writer, question string) bool {
	fmt.Fprintf(w, "⚠ %s\n", question)
	fmt.Fprint(w, "Are you sure? [y/N]: ")

	reader := bufio.NewReader(r)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
