package cli

import (
	"os"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/mattn/go-isatty"
)

var operatorSuggestions = []prompt.Suggest{
	{Text: "filetype:", Description: "Only results with this file extension"},
	{Text: "site:", Description: "Only results from this site"},
	{Text: "OR", Description: "Match either neighbouring term"},
	{Text: "intitle:", Description: "Word must appear in the title"},
	{Text: "inurl:", Description: "Word must appear in the URL"},
}

// StdinIsTerminal reports whether an interactive prompt can be shown.
func StdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// PromptQuery asks for the query interactively. Ctrl-D on an empty line
// returns "".
func PromptQuery() string {
	in := prompt.Input("query> ", completeQuery,
		prompt.OptionTitle("searchdl"),
		prompt.OptionPrefixTextColor(prompt.Cyan),
		prompt.OptionMaxSuggestion(uint16(len(operatorSuggestions))),
	)
	return strings.TrimSpace(in)
}

func completeQuery(d prompt.Document) []prompt.Suggest {
	word := d.GetWordBeforeCursor()
	if word == "" {
		return nil
	}
	return prompt.FilterHasPrefix(operatorSuggestions, word, true)
}
