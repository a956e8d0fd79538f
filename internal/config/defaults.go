package config

const (
	DefaultTitle        = "My Site"
	DefaultMarkdown     = MarkdownGoldmark
	DefaultPermalink    = "/:year/:month/:day/:title/"
	DefaultPaginate     = 10
	DefaultPaginatePath = "/page:num/"
)

// Supported markdown flavors.
const (
	MarkdownGoldmark   = "goldmark"
	MarkdownCommonMark = "commonmark"
)

// DefaultExclude lists paths never treated as site content.
func DefaultExclude() []string {
	return []string{"Gemfile", "Gemfile.lock", "node_modules", "vendor", ".git", ".gitignore", "_site"}
}

// Default returns the configuration used when `_config.yml` is absent.
func Default() Config {
	return Config{
		Title:        DefaultTitle,
		Markdown:     DefaultMarkdown,
		Permalink:    DefaultPermalink,
		Paginate:     DefaultPaginate,
		PaginatePath: DefaultPaginatePath,
		Exclude:      DefaultExclude(),
		Include:      []string{},
		Plugins:      []string{},
		Custom:       map[string]any{},
	}
}
