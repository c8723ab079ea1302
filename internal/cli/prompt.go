package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var errPasswordMismatch = errors.New("passwords do not match")

// PromptNewPassword asks for a password twice on the terminal with echo disabled.
func PromptNewPassword(terminal *os.File, out io.Writer) (string, error) {
	if terminal == nil {
		return "", errors.New("stdin unavailable")
	}
	restore, err := disableEcho(terminal)
	if err != nil {
		return "", fmt.Errorf("disable terminal echo: %w", err)
	}
	defer restore()

	return readConfirmedPassword(bufio.NewReader(terminal), out)
}

func readConfirmedPassword(reader *bufio.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "New password: ")
	first, err := readLine(reader)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	fmt.Fprint(out, "Repeat password: ")
	second, err := readLine(reader)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errPasswordMismatch
	}
	return first, nil
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimRight(line, "\r\n"), nil
}
