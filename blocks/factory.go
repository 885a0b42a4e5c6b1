package blocks

import (
	"net/url"
	"strings"
)

// DefaultLanguage is used for code blocks without a recognized language.
const DefaultLanguage = "plain text"

var languageAliases = map[string]string{
	"js":         "javascript",
	"jsx":        "javascript",
	"mjs":        "javascript",
	"ts":         "typescript",
	"tsx":        "typescript",
	"py":         "python",
	"python3":    "python",
	"sh":         "shell",
	"bash":       "shell",
	"zsh":        "shell",
	"shell":      "shell",
	"console":    "shell",
	"yml":        "yaml",
	"md":         "markdown",
	"rb":         "ruby",
	"rs":         "rust",
	"golang":     "go",
	"kt":         "kotlin",
	"cs":         "c#",
	"csharp":     "c#",
	"c++":        "c++",
	"cpp":        "c++",
	"hpp":        "c++",
	"fs":         "f#",
	"fsharp":     "f#",
	"ps1":        "powershell",
	"pwsh":       "powershell",
	"dockerfile": "docker",
	"tf":         "hcl",
	"hs":         "haskell",
	"ex":         "elixir",
	"exs":        "elixir",
	"erl":        "erlang",
	"m":          "objective-c",
	"objc":       "objective-c",
	"txt":        DefaultLanguage,
	"text":       DefaultLanguage,
	"plaintext":  DefaultLanguage,
}

// languages accepted verbatim by the remote API.
var knownLanguages = map[string]struct{}{}

func init() {
	for _, name := range []string{
		"abap", "arduino", "bash", "basic", "c", "clojure", "coffeescript", "c++", "c#",
		"css", "dart", "diff", "docker", "elixir", "elm", "erlang", "flow", "fortran",
		"f#", "gherkin", "glsl", "go", "graphql", "groovy", "haskell", "hcl", "html",
		"java", "javascript", "json", "julia", "kotlin", "latex", "less", "lisp",
		"livescript", "lua", "makefile", "markdown", "markup", "matlab", "mermaid",
		"nix", "objective-c", "ocaml", "pascal", "perl", "php", "plain text",
		"powershell", "prolog", "protobuf", "python", "r", "reason", "ruby", "rust",
		"sass", "scala", "scheme", "scss", "shell", "sql", "swift", "toml",
		"typescript", "vb.net", "verilog", "vhdl", "visual basic", "webassembly",
		"xml", "yaml",
	} {
		knownLanguages[name] = struct{}{}
	}
}

// ResolveLanguage maps a fence annotation onto a remote API language name.
func ResolveLanguage(tag string) string {
	normalized := strings.ToLower(strings.TrimSpace(tag))
	if normalized == "" {
		return DefaultLanguage
	}
	if alias, ok := languageAliases[normalized]; ok {
		return alias
	}
	if _, ok := knownLanguages[normalized]; ok {
		return normalized
	}
	return DefaultLanguage
}

// NewParagraph builds a paragraph from Markdown-formatted text.
func NewParagraph(text string) Paragraph {
	return Paragraph{RichText: ToTextRuns(text)}
}

// NewHeading builds a heading; levels outside 1..3 are clamped.
func NewHeading(level int, text string) Heading {
	if level < 1 {
		level = 1
	}
	if level > MaxHeadingLevel {
		level = MaxHeadingLevel
	}
	return Heading{Level: level, RichText: ToTextRuns(text)}
}

// NewBulletedListItem builds an unordered list item. Children are only
// attached when non-empty.
func NewBulletedListItem(text string, children ...Block) BulletedListItem {
	item := BulletedListItem{RichText: ToTextRuns(text)}
	if len(children) > 0 {
		item.Children = children
	}
	return item
}

// NewNumberedListItem builds an ordered list item. Children are only
// attached when non-empty.
func NewNumberedListItem(text string, children ...Block) NumberedListItem {
	item := NumberedListItem{RichText: ToTextRuns(text)}
	if len(children) > 0 {
		item.Children = children
	}
	return item
}

// NewListItem picks the numbered or bulleted variant.
func NewListItem(ordered bool, text string, children ...Block) Block {
	if ordered {
		return NewNumberedListItem(text, children...)
	}
	return NewBulletedListItem(text, children...)
}

// NewToDo builds a checklist item.
func NewToDo(text string, checked bool) ToDo {
	return ToDo{RichText: ToTextRuns(text), Checked: checked}
}

// NewCode builds a code block. The source is kept verbatim, only chunked.
func NewCode(source, language string) Code {
	return Code{
		RichText: Chunk(source, MaxTextLength),
		Language: ResolveLanguage(language),
	}
}

// NewQuote builds a quote block.
func NewQuote(text string) Quote {
	return Quote{RichText: ToTextRuns(text)}
}

// NewDivider builds a divider.
func NewDivider() Divider {
	return Divider{}
}

// NewImage builds an external image block. A malformed URL degrades to a
// paragraph reading "[Image: <caption-or-url>]".
func NewImage(rawURL, caption string) Block {
	rawURL = strings.TrimSpace(rawURL)
	if !IsValidImageURL(rawURL) {
		label := strings.TrimSpace(caption)
		if label == "" {
			label = rawURL
		}
		return NewParagraph("[Image: " + label + "]")
	}

	image := Image{URL: rawURL}
	if text := strings.TrimSpace(caption); text != "" {
		image.Caption = ToTextRuns(text)
	}
	return image
}

// IsValidImageURL reports whether raw is an absolute http(s) URL with a host.
func IsValidImageURL(raw string) bool {
	if raw == "" {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
