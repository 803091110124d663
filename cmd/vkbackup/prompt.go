package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"vkbackup/pkg/config"
	"vkbackup/pkg/ui"
)

// prompter asks the interactive questions of a sync run
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	// readSecret reads a line without echo; nil falls back to in
	readSecret func() (string, error)
}

func newPrompter() *prompter {
	p := &prompter{in: bufio.NewReader(os.Stdin), out: os.Stdout}
	if term.IsTerminal(int(syscall.Stdin)) {
		p.readSecret = func() (string, error) {
			b, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Fprintln(p.out)
			return string(b), err
		}
	}
	return p
}

func (p *prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errors.New("input closed")
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ask prints label and returns the answer, or def on an empty answer
func (p *prompter) ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// askRequired repeats the question until the answer is non-empty
func (p *prompter) askRequired(label string) (string, error) {
	for {
		answer, err := p.ask(label, "")
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		fmt.Fprintln(p.out, ui.Yellow("A value is required."))
	}
}

// askCount asks for a photo count in 1..MaxPhotoCount, repeating on bad input
func (p *prompter) askCount(def int) (int, error) {
	for {
		answer, err := p.ask("How many photos", strconv.Itoa(def))
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(answer)
		if convErr == nil && n >= 1 && n <= config.MaxPhotoCount {
			return n, nil
		}
		fmt.Fprintln(p.out, ui.Yellow(fmt.Sprintf("Enter a number from 1 to %d.", config.MaxPhotoCount)))
	}
}

// askSecret reads a token without echo. An empty answer reuses stored when
// there is one.
func (p *prompter) askSecret(label, stored string) (string, error) {
	for {
		if stored != "" {
			fmt.Fprintf(p.out, "%s (Enter to use saved token): ", label)
		} else {
			fmt.Fprintf(p.out, "%s: ", label)
		}

		var answer string
		var err error
		if p.readSecret != nil {
			answer, err = p.readSecret()
			answer = strings.TrimSpace(answer)
		} else {
			answer, err = p.readLine()
		}
		if err != nil {
			return "", err
		}

		if answer != "" {
			return answer, nil
		}
		if stored != "" {
			return stored, nil
		}
		fmt.Fprintln(p.out, ui.Yellow("A token is required."))
	}
}
