package schema

import (
	"regexp"
	"strings"
)

type docArg struct {
	name string
	desc string
}

var (
	sectionRe = regexp.MustCompile(`^[A-Z][A-Za-z ]*:$`)
	argLineRe = regexp.MustCompile(`^(\w+)(?:\s*\([^)]*\))?\s*:\s*(.*)$`)
)

// parseDoc splits doc text into the tool description and the argument
// descriptions. The description is the first paragraph. Arguments come from
// a Python-docstring style "Args:" section of `name: text` lines, with
// indented continuation lines appended to the previous entry. Malformed
// sections mean no description, never an error.
func parseDoc(doc string) (string, []docArg) {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return "", nil
	}

	lines := strings.Split(doc, "\n")

	var desc []string
	i := 0
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || sectionRe.MatchString(line) {
			break
		}
		desc = append(desc, line)
	}

	// find the Args section
	var args []docArg
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "Args:" || line == "Arguments:" || line == "Parameters:" {
			args = parseArgs(lines[i+1:])
			break
		}
	}

	return strings.Join(desc, " "), args
}

func parseArgs(lines []string) []docArg {
	var args []docArg
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || sectionRe.MatchString(line) {
			break
		}
		if m := argLineRe.FindStringSubmatch(line); m != nil {
			args = append(args, docArg{name: m[1], desc: m[2]})
		} else if len(args) > 0 {
			last := &args[len(args)-1]
			if last.desc == "" {
				last.desc = line
			} else {
				last.desc += " " + line
			}
		}
	}
	return args
}
