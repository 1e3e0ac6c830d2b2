package importer

import (
	"path/filepath"
	"regexp"
	"strings"
)

// accountPatterns are tried in priority order. Each pattern is run against
// every candidate text before the next, looser pattern is tried. The first
// capture group is the last four digits of the account or card number.
var accountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)chase\s*(\d{4})`),
	regexp.MustCompile(`(?i)chase.*?ending\s+in\s+(\d{4})`),
	regexp.MustCompile(`(?i)chase.*?(\d{4})`),
}

// accountID formats the identifier for a match of accountPatterns[i]. An
// exact match is the matched text with whitespace removed ("Chase 1234" ->
// "Chase1234"); looser matches keep only the digits.
func accountID(i int, m []string) string {
	if i == 0 {
		return "Chase" + strings.Join(strings.Fields(m[0]), "")[len("chase"):]
	}
	return "Chase" + m[1]
}

// matchAccount runs the patterns in priority order over candidates.
func matchAccount(candidates ...string) (string, bool) {
	for i, re := range accountPatterns {
		for _, c := range candidates {
			if m := re.FindStringSubmatch(c); m != nil {
				return accountID(i, m), true
			}
		}
	}
	return "", false
}

// MatchAccount returns the account identifier embedded in text, e.g.
// "Chase 1234 Activity" -> "Chase1234".
func MatchAccount(text string) (string, bool) {
	return matchAccount(text)
}

// ExtractAccount derives the account identifier from a source file path.
// The file name and its parent directory are both searched, so
// "Chase1234_Activity.csv" and "Chase1234/activity.csv" work, and an exact
// "Chase1234" in the directory wins over a loose match in the file name.
func ExtractAccount(path string) (string, error) {
	if acct, ok := matchAccount(filepath.Base(path), filepath.Base(filepath.Dir(path))); ok {
		return acct, nil
	}
	return "", &StructureError{Path: path, Reason: "no account identifier in file path"}
}
