// Package config reads and writes the on-disk YAML site configuration: a
// default schema, a table of schema aliases, and a table of sites, optionally
// assembled from multiple files via include resolution.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/creachadair/atomicfile"
	"github.com/creachadair/onepass/siteurl"
)

// DefaultSchema is the schema used for a site, or as the document's
// default_schema, when nothing more specific is configured.
const DefaultSchema = "[A-Za-z0-9]{16}"

// SiteConfig is one site's entry: which schema to use, how many times the
// schema has been incremented, and which username (if any) distinguishes
// this site's derivation record from the bare host.
type SiteConfig struct {
	Schema    string `yaml:"schema,omitempty"`
	Increment int    `yaml:"increment,omitempty"`
	Username  string `yaml:"username,omitempty"`
}

// UnmarshalYAML accepts either a bare schema string (shorthand for
// {schema: <string>}), an explicit mapping, or an empty/null value (an
// all-defaults site).
func (s *SiteConfig) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0, yaml.ScalarNode:
		if value.Kind == 0 || value.Tag == "!!null" {
			*s = SiteConfig{}
			return nil
		}
		var schema string
		if err := value.Decode(&schema); err != nil {
			return err
		}
		*s = SiteConfig{Schema: schema}
		return nil
	default:
		type plain SiteConfig
		var p plain
		if err := value.Decode(&p); err != nil {
			return err
		}
		*s = SiteConfig(p)
		return nil
	}
}

// MarshalYAML renders a site with no increment and no username as a bare
// schema string, matching the shorthand UnmarshalYAML accepts.
func (s SiteConfig) MarshalYAML() (any, error) {
	if s.Increment == 0 && s.Username == "" {
		return s.Schema, nil
	}
	type plain SiteConfig
	return plain(s), nil
}

// Config is a fully resolved site configuration: aliases expanded into site
// schemas, site keys normalized to canonical URLs, and any includes merged
// in. It carries no reference to the files it was assembled from.
type Config struct {
	WordsPath     string
	DefaultSchema string
	Aliases       map[string]string
	Sites         map[string]SiteConfig
}

// document is the on-disk shape of one config file, before include
// resolution, alias expansion, or site-key normalization.
type document struct {
	Include       []string              `yaml:"include,omitempty"`
	WordsPath     string                `yaml:"words_path,omitempty"`
	DefaultSchema string                `yaml:"default_schema,omitempty"`
	Aliases       map[string]string     `yaml:"aliases,omitempty"`
	Sites         map[string]SiteConfig `yaml:"sites"`
}

// Lookup resolves query against c's site table, normalizing query the same
// way a derivation record's URL is normalized, so "google.com" and
// "https://google.com/" find the same entry. The returned key is the bare
// site URL, with no username folded in — the form that belongs in a
// derivation record's URL field, which carries username separately.
func (c *Config) Lookup(query string) (key string, site SiteConfig, ok bool, err error) {
	base, err := siteurl.Normalize(query)
	if err != nil {
		return "", SiteConfig{}, false, err
	}
	site, ok = c.Sites[base]
	if !ok {
		return "", SiteConfig{}, false, nil
	}
	return base, site, true, nil
}

// FindSite is Lookup, but folds a configured username into the returned
// URL's userinfo for display: a single string identifying exactly which
// account at which site the entry describes. Use Lookup, not FindSite, to
// build a derivation record, whose URL and Username are separate fields.
func (c *Config) FindSite(query string) (url string, site SiteConfig, ok bool, err error) {
	base, site, ok, err := c.Lookup(query)
	if err != nil || !ok {
		return "", SiteConfig{}, ok, err
	}
	if site.Username == "" {
		return base, site, true, nil
	}
	withUser, err := addUserinfo(base, site.Username)
	if err != nil {
		return "", SiteConfig{}, false, err
	}
	return withUser, site, true, nil
}

// SiteSchema returns site's configured schema, falling back to c's
// document-level default, and finally to DefaultSchema.
func (c *Config) SiteSchema(site SiteConfig) string {
	if site.Schema != "" {
		return site.Schema
	}
	if c.DefaultSchema != "" {
		return c.DefaultSchema
	}
	return DefaultSchema
}

// addUserinfo parses rawURL and returns it with username folded into the
// userinfo component, percent-escaped by net/url's usual rules.
func addUserinfo(rawURL, username string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("config: %s: %w", rawURL, err)
	}
	u.User = url.User(username)
	return u.String(), nil
}

// extend merges other into c, with other's values preferred over c's on
// conflict: this is the semantics an include needs, since the file doing
// the including is loaded first and then extended by each of its includes
// in turn. Site schemas named as aliases are resolved against the merged
// alias table before being inserted, so an alias defined only by the
// includer still applies to sites defined in an included file.
func (c *Config) extend(other *Config) {
	if other.WordsPath != "" {
		c.WordsPath = other.WordsPath
	}
	if other.DefaultSchema != "" {
		c.DefaultSchema = other.DefaultSchema
	}
	if c.Aliases == nil {
		c.Aliases = make(map[string]string)
	}
	for name, schema := range other.Aliases {
		c.Aliases[name] = schema
	}
	if c.Sites == nil {
		c.Sites = make(map[string]SiteConfig)
	}
	for site, sc := range other.Sites {
		if schema, ok := c.Aliases[sc.Schema]; ok {
			sc.Schema = schema
		}
		c.Sites[site] = sc
	}
}

// resolve turns a parsed document into a Config: words_path home-expanded
// and made absolute relative to baseDir, schema aliases applied to sites,
// and site keys normalized to canonical URLs. Sites whose key fails to
// normalize are kept under their literal key, matching the source this
// format was distilled from.
func resolve(doc document, baseDir string) (*Config, error) {
	aliases := doc.Aliases
	if aliases == nil {
		aliases = make(map[string]string)
	}

	wordsPath := ""
	if doc.WordsPath != "" {
		expanded, err := expandHome(doc.WordsPath)
		if err != nil {
			return nil, fmt.Errorf("config: words_path: %w", err)
		}
		if !filepath.IsAbs(expanded) {
			expanded = filepath.Join(baseDir, expanded)
		}
		wordsPath = expanded
	}

	defaultSchema := doc.DefaultSchema
	if schema, ok := aliases[defaultSchema]; ok {
		defaultSchema = schema
	}

	sites := make(map[string]SiteConfig, len(doc.Sites))
	for key, sc := range doc.Sites {
		if schema, ok := aliases[sc.Schema]; ok {
			sc.Schema = schema
		}
		if normalized, err := siteurl.Normalize(key); err == nil {
			key = normalized
		}
		sites[key] = sc
	}

	return &Config{
		WordsPath:     wordsPath,
		DefaultSchema: defaultSchema,
		Aliases:       aliases,
		Sites:         sites,
	}, nil
}

// Example returns the starter configuration written to a fresh config path
// the first time it is loaded.
func Example() *Config {
	return &Config{
		DefaultSchema: "login",
		Aliases: map[string]string{
			"alnum":  "[A-Za-z0-9]{18}",
			"apple":  "{word|U}(-{word}){3}[0-9!-/]",
			"login":  "[!-~]{12}",
			"mobile": "[a-z0-9]{24}",
			"phrase": "{word}(-{word}){4}",
			"pin":    "[0-9]{8}",
		},
		Sites: map[string]SiteConfig{
			"apple.com":    {Schema: "apple"},
			"google.com":   {Schema: "mobile"},
			"iphone.local": {Schema: "pin", Increment: 1},
		},
	}
}

// toDocument renders c back into the on-disk document shape, for writing.
func toDocument(c *Config) document {
	return document{
		WordsPath:     c.WordsPath,
		DefaultSchema: c.DefaultSchema,
		Aliases:       c.Aliases,
		Sites:         c.Sites,
	}
}

// Loader resolves a config file's includes, depth-first, detecting cycles by
// the set of canonical paths currently being loaded (not the set ever
// loaded — a diamond include of the same file from two siblings is fine; a
// file that transitively includes itself is not).
type Loader struct {
	visiting map[string]bool
}

// NewLoader constructs an empty Loader. A Loader is single-use per root
// Load call but may be reused for independent loads.
func NewLoader() *Loader {
	return &Loader{visiting: make(map[string]bool)}
}

// ErrCycle is wrapped by Load when an include cycle is detected.
var ErrCycle = errors.New("config: circular include")

// Load reads and resolves the config file at path, following its include
// list. An include that fails to load is reported to stderr and skipped,
// matching the source this format was distilled from, which tolerates a
// broken include rather than failing the whole load.
func (l *Loader) Load(path string) (*Config, error) {
	real, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(real); err == nil {
		real = resolved
	}
	if l.visiting[real] {
		return nil, fmt.Errorf("%w: %s", ErrCycle, real)
	}
	l.visiting[real] = true
	defer delete(l.visiting, real)

	data, err := os.ReadFile(real)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", real, err)
	}
	includes := doc.Include
	doc.Include = nil

	baseDir := filepath.Dir(real)
	cfg, err := resolve(doc, baseDir)
	if err != nil {
		return nil, err
	}

	for _, inc := range includes {
		incPath, err := resolveIncludePath(inc, baseDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "onepass: resolving include %q: %v\n", inc, err)
			continue
		}
		included, err := l.Load(incPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "onepass: loading %s: %v\n", incPath, err)
			continue
		}
		cfg.extend(included)
	}
	return cfg, nil
}

// LoadOrInit loads the config file at path, first writing out Example() if
// no file exists there yet.
func LoadOrInit(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(path, Example()); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return NewLoader().Load(path)
}

// Save durably writes c to path as YAML, creating path's parent directory if
// needed.
func Save(path string, c *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	out, err := yaml.Marshal(toDocument(c))
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return atomicfile.Tx(path, 0600, func(f *atomicfile.File) error {
		_, err := f.Write(out)
		return err
	})
}

// resolveIncludePath expands ~ in includePath and, if the result is
// relative, joins it against baseDir (the including file's directory).
func resolveIncludePath(includePath, baseDir string) (string, error) {
	expanded, err := expandHome(includePath)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(expanded) {
		return expanded, nil
	}
	return filepath.Join(baseDir, expanded), nil
}

// expandHome replaces a leading "~" or "~/..." with the current user's home
// directory. A "~" followed by any other username (e.g. "~bob") is
// rejected: other users' home directories are not looked up.
func expandHome(path string) (string, error) {
	if path == "~" {
		return os.UserHomeDir()
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, rest), nil
	}
	if strings.HasPrefix(path, "~") {
		return "", fmt.Errorf("config: cannot expand %q: other users' home directories are not supported", path)
	}
	return path, nil
}

// DefaultPath returns the conventional config file location,
// $XDG_CONFIG_HOME/onepass/config.yaml (or ~/.config/onepass/config.yaml).
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "onepass", "config.yaml"), nil
}
