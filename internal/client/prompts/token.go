package prompts

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TokenPrompt is printed before reading a token
const TokenPrompt = "Authorization token: "

// ErrEmptyToken is returned when the user submits an empty token
var ErrEmptyToken = errors.New("token cannot be empty")

// PromptToken prompts for an authorization token on stdin.
// Input is hidden when stdin is a terminal.
func PromptToken() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ReadToken(os.Stdin, os.Stdout)
	}

	fmt.Print(TokenPrompt)
	token, err := term.ReadPassword(fd)
	fmt.Println() // Print newline after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	if len(token) == 0 {
		return "", ErrEmptyToken
	}
	return string(token), nil
}

// ReadToken prints the prompt to w and reads one line from r
func ReadToken(r io.Reader, w io.Writer) (string, error) {
	fmt.Fprint(w, TokenPrompt)
	reader := bufio.NewReader(r)
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	token := strings.TrimRight(line, "\r\n")
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}
