package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"

	"rtk/internal/services"
)

// Placeholders recognised in command templates. The input placeholder is a
// bare percent sign, so the longer placeholders take precedence wherever
// they overlap.
const (
	OutputPlaceholder = "%out"
	PagePlaceholder   = "%page"
	InputPlaceholder  = "%"
)

// Template is a validated command line with input, output, and optional
// page placeholders.
type Template struct {
	raw    string
	tokens []string
}

// ParseTemplate validates raw and splits it into words with shell quoting
// rules. A template without the output placeholder is a configuration
// error, and so is one using pipes, redirection, or command lists: the
// program runs directly, not through a shell.
func ParseTemplate(raw string) (Template, error) {
	parser := shellwords.NewParser()
	tokens, err := parser.Parse(raw)
	if err != nil {
		return Template{}, services.Wrap(services.ErrConfiguration, "command", "parse template",
			fmt.Sprintf("Command template %q is not a valid command line", raw), err)
	}
	if parser.Position >= 0 {
		return Template{}, services.Wrap(services.ErrConfiguration, "command", "parse template",
			fmt.Sprintf("Command template %q uses shell operators; wrap it in a script", raw), nil)
	}
	if len(tokens) == 0 {
		return Template{}, services.Wrap(services.ErrConfiguration, "command", "parse template", "Command template is empty", nil)
	}
	if !strings.Contains(raw, OutputPlaceholder) {
		return Template{}, services.Wrap(
			services.ErrConfiguration,
			"command",
			"parse template",
			fmt.Sprintf("Command template %q has no %s placeholder", raw, OutputPlaceholder),
			nil,
		)
	}
	return Template{raw: raw, tokens: tokens}, nil
}

// Quote returns s as one word of a command template.
func Quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`;&|<>()") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func (t Template) String() string {
	return t.raw
}

// Binary returns the executable named by the template.
func (t Template) Binary() string {
	if len(t.tokens) == 0 {
		return ""
	}
	return t.tokens[0]
}

// HasPage reports whether the template references a page number.
func (t Template) HasPage() bool {
	return strings.Contains(t.raw, PagePlaceholder)
}

// Render returns the command line for input and output as written in the
// template, for diagnostics.
func (t Template) Render(input, output string) string {
	return substituter(input, output, PagePlaceholder).Replace(t.raw)
}

// RenderPage is Render with a 1-based page number.
func (t Template) RenderPage(input, output string, page int) string {
	return substituter(input, output, strconv.Itoa(page)).Replace(t.raw)
}

// Args returns the executable and its arguments for input and output.
// Substitution happens per word after quote removal, so paths containing
// spaces or quotes stay single arguments.
func (t Template) Args(input, output string) (string, []string) {
	return t.expand(substituter(input, output, PagePlaceholder))
}

// PageArgs is Args with a 1-based page number.
func (t Template) PageArgs(input, output string, page int) (string, []string) {
	return t.expand(substituter(input, output, strconv.Itoa(page)))
}

func (t Template) expand(r *strings.Replacer) (string, []string) {
	if len(t.tokens) == 0 {
		return "", nil
	}
	args := make([]string, 0, len(t.tokens)-1)
	for _, token := range t.tokens[1:] {
		args = append(args, r.Replace(token))
	}
	return r.Replace(t.tokens[0]), args
}

// A single replacement pass keeps substituted paths that themselves
// contain a percent sign from being rewritten again.
func substituter(input, output, page string) *strings.Replacer {
	return strings.NewReplacer(
		OutputPlaceholder, output,
		PagePlaceholder, page,
		InputPlaceholder, input,
	)
}
