package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
)

// TTYPrompter asks questions through promptui on an interactive terminal.
type TTYPrompter struct{}

func (TTYPrompter) Confirm(question string) bool {
	p := promptui.Prompt{
		Label:     question,
		IsConfirm: true,
	}

	_, err := p.Run()
	return err == nil
}

func (TTYPrompter) Ask(question string) (string, error) {
	p := promptui.Prompt{Label: question}

	answer, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}

	return answer, nil
}

// LinePrompter reads answers line by line, for pipes and tests.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Confirm accepts only an explicit yes.
func (p *LinePrompter) Confirm(question string) bool {
	fmt.Fprintf(p.out, "%s [y/N] ", question)

	answer, _ := p.readLine()
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (p *LinePrompter) Ask(question string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", question)
	return p.readLine()
}

func (p *LinePrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}

	return strings.TrimSpace(line), nil
}
