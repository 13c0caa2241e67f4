package bot

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// PostbackSplitChar is the delimiter used to separate fields in postback data.
// This ensures consistency across all bot modules when constructing postback strings.
// Example: "ketqua:date$2024-07-25" where "$" is the split character.
const PostbackSplitChar = "$"

// BuildKeywordRegex creates a regex pattern matching keywords at the START of text.
// Keywords are sorted by length (longest first) to prevent partial matches.
// Uses ^ anchor to match only at beginning. Panics if keywords is empty.
//
// Keywords must be followed by whitespace or be the entire text, so "huong dan"
// matches "huong dan" and "huong dan cang" but not "huong danh".
// Match against stringutil.NormalizeKeyword output so accents are ignored.
//
// Example:
//
//	MatchKeyword(BuildKeywordRegex([]string{"hom nay", "today"}), "hom nay") // Returns "hom nay"
//	MatchKeyword(BuildKeywordRegex([]string{"cang", "cang 3d"}), "cang 3d")  // Returns "cang 3d"
//	MatchKeyword(BuildKeywordRegex([]string{"menu"}), "menus")               // Returns ""
func BuildKeywordRegex(keywords []string) *regexp.Regexp {
	if len(keywords) == 0 {
		panic("BuildKeywordRegex: keywords cannot be empty")
	}

	sorted := make([]string, len(keywords))
	copy(sorted, keywords)

	slices.SortFunc(sorted, func(a, b string) int {
		return len(b) - len(a)
	})

	quoted := make([]string, len(sorted))
	for i, k := range sorted {
		quoted[i] = regexp.QuoteMeta(k)
	}

	// (?i) for case-insensitive matching; group 1 captures the keyword.
	pattern := "(?i)^(" + strings.Join(quoted, "|") + ")(?:\\s|$)"
	return regexp.MustCompile(pattern)
}

// MatchKeyword returns the matched keyword from text using the given regex.
// Returns empty string if no match. The keyword is returned without trailing space.
func MatchKeyword(regex *regexp.Regexp, text string) string {
	match := regex.FindStringSubmatch(text)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// ExtractSearchTerm extracts the search term by removing the matched keyword.
// Handles keyword at beginning, end, or middle of text. Returns trimmed result.
func ExtractSearchTerm(text, keyword string) string {
	if keyword == "" {
		return strings.TrimSpace(text)
	}

	text = strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(text, keyword):
		return strings.TrimSpace(strings.TrimPrefix(text, keyword))
	case strings.HasSuffix(text, keyword):
		return strings.TrimSpace(strings.TrimSuffix(text, keyword))
	default:
		return strings.TrimSpace(strings.Replace(text, keyword, "", 1))
	}
}

// Command is a slash command split from its arguments.
type Command struct {
	// Name is lowercased without the leading slash or an "@bot" suffix.
	Name string
	// Args is everything after the name on the first line, trimmed.
	Args string
	// Body is every line after the first, trimmed.
	Body string
}

// ParseCommand splits "/xien 3\n11 22 33" into {xien, "3", "11 22 33"}.
// ok is false when text does not start with "/" followed by a name.
func ParseCommand(text string) (cmd Command, ok bool) {
	text = strings.TrimLeftFunc(strings.ReplaceAll(text, "\r\n", "\n"), unicode.IsSpace)
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}

	rest := text[1:]
	if rest == "" || unicode.IsSpace(rune(rest[0])) {
		return Command{}, false
	}

	head, body, _ := strings.Cut(rest, "\n")
	name, args, _ := strings.Cut(strings.TrimSpace(head), " ")
	name, _, _ = strings.Cut(name, "@")
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Command{}, false
	}

	return Command{
		Name: name,
		Args: strings.TrimSpace(args),
		Body: strings.TrimSpace(body),
	}, true
}

// IsCommand reports whether text is the slash command name.
func IsCommand(text string, names ...string) bool {
	cmd, ok := ParseCommand(text)
	return ok && slices.Contains(names, cmd.Name)
}

// Input joins a command's arguments and body back into one text.
func (c Command) Input() string {
	switch {
	case c.Args == "":
		return c.Body
	case c.Body == "":
		return c.Args
	default:
		return c.Args + "\n" + c.Body
	}
}
