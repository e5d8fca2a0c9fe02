package demoshell

import (
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"pkt.systems/termline/core"
)

var commandNames = []string{"echo", "exit", "fields", "help", "history", "prompt", "quit", "whoami"}

// Completer completes command names on the first word and file paths on the
// rest. Candidates carry the full text left of the cursor so the editor can
// apply them directly.
func Completer() core.CompleteFunc {
	return func(prefix string) []string {
		cut := strings.LastIndexByte(prefix, ' ')
		if cut < 0 {
			var out []string
			for _, name := range commandNames {
				if strings.HasPrefix(name, prefix) {
					out = append(out, name)
				}
			}
			return out
		}
		head, tail := prefix[:cut+1], prefix[cut+1:]
		matches, err := doublestar.FilepathGlob(tail + "*")
		if err != nil || len(matches) == 0 {
			return nil
		}
		sort.Strings(matches)
		out := make([]string, 0, len(matches))
		for _, match := range matches {
			if info, err := os.Stat(match); err == nil && info.IsDir() {
				match += string(os.PathSeparator)
			}
			out = append(out, head+match)
		}
		return out
	}
}
