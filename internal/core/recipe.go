package core

import (
	"os"
	"regexp"
	"strings"

	"aurdist/internal/types"
)

// entryRe tokenizes one list line: single-quoted, double-quoted, or bare
// entries.
var entryRe = regexp.MustCompile(`'([^']+)'|"([^"]+)"|(\S+)`)

// ParseRecipe extracts the categorized dependency lists from a build
// recipe's declarative array assignments (depends, makedepends, checkdepends,
// optdepends).
//
// The parser is deliberately lenient: a missing recipe file yields an empty
// set, and an unterminated list is read through to the end of the file
// rather than rejected. Entries keep their version-constraint suffixes
// verbatim; only optdepends entries have their ": description" tail removed.
func ParseRecipe(path string) (types.DependencySet, error) {
	deps := types.DependencySet{}
	for _, kind := range types.AllKinds {
		deps[kind] = nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return deps, nil
		}
		return deps, err
	}

	text := string(content)
	for _, kind := range types.AllKinds {
		deps[kind] = extractList(text, string(kind))
	}
	return deps, nil
}

// extractList collects the entries of every `kind=(...)` block in the
// recipe. The assignment must start a line so that depends= does not also
// match inside makedepends=. Lists may span multiple lines; lines starting
// with # inside a list are comments.
func extractList(text string, kind string) []string {
	var entries []string
	markerRe := regexp.MustCompile(`(?m)^[ \t]*` + kind + `=\(`)
	rest := text
	for {
		loc := markerRe.FindStringIndex(rest)
		if loc == nil {
			break
		}
		body := rest[loc[1]:]
		end := strings.Index(body, ")")
		if end >= 0 {
			rest = body[end+1:]
			body = body[:end]
		} else {
			// Unbalanced parens: best-effort partial result.
			rest = ""
		}
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			for _, match := range entryRe.FindAllStringSubmatch(line, -1) {
				entry := match[1]
				if entry == "" {
					entry = match[2]
				}
				if entry == "" {
					entry = match[3]
				}
				entry = strings.TrimSpace(entry)
				if entry == "" {
					continue
				}
				if kind == string(types.DependencyKindOptional) {
					entry = strings.TrimSpace(strings.SplitN(entry, ":", 2)[0])
					if entry == "" {
						continue
					}
				}
				entries = append(entries, entry)
			}
		}
	}
	return entries
}
