package filedaemon

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// rule is one gitignore-style line: a glob plus the modifiers spec §4.7
// requires FileDaemon to honor (negation, directory-only, root-anchored).
// Adapted from the teacher's watcher.ignorePattern, flattened to the
// fields matchGlob/matchDoubleStar actually need.
type rule struct {
	glob     string
	negation bool
	dirOnly  bool
	rooted   bool
}

func parseRule(line string) (rule, bool) {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	r := rule{}
	if strings.HasPrefix(line, "!") {
		r.negation = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		r.rooted = true
		line = line[1:]
	}
	if line == "" {
		return rule{}, false
	}
	r.glob = line
	return r, true
}

func loadRuleFile(path string) []rule {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var rules []rule
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if r, ok := parseRule(sc.Text()); ok {
			rules = append(rules, r)
		}
	}
	return rules
}

// globalIgnoreRules loads the user's global git excludes file, the same
// file `git status` consults outside of any repository: $XDG_CONFIG_HOME
// /git/ignore, falling back to ~/.config/git/ignore.
func globalIgnoreRules() []rule {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		base = filepath.Join(home, ".config")
	}
	return loadRuleFile(filepath.Join(base, "git", "ignore"))
}

// ruleGroup is every rule contributed by a single directory's ignore
// files, scoped to that directory: patterns inside a nested .gitignore
// match relative to the directory that holds it, exactly like git.
type ruleGroup struct {
	baseDir string
	rules   []rule
}

func loadGroup(dir string) ruleGroup {
	var rules []rule
	rules = append(rules, loadRuleFile(filepath.Join(dir, ".gitignore"))...)
	rules = append(rules, loadRuleFile(filepath.Join(dir, ".ignore"))...)
	rules = append(rules, loadRuleFile(filepath.Join(dir, ".git", "info", "exclude"))...)
	return ruleGroup{baseDir: dir, rules: rules}
}

// matcher is the compiled, cached set of ignore rules that apply to one
// directory: the global excludes plus every ancestor's own ignore files
// down to (and including) that directory, root first so later, more
// specific groups can override earlier ones the way git's precedence
// works.
type matcher struct {
	groups []ruleGroup
}

func (m *matcher) ignores(path string, isDir bool) bool {
	ignored := false
	for _, g := range m.groups {
		rel, err := filepath.Rel(g.baseDir, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)
		for _, r := range g.rules {
			if r.dirOnly && !isDir {
				continue
			}
			if matchRule(r, rel) {
				ignored = !r.negation
			}
		}
	}
	return ignored
}

func matchRule(r rule, relPath string) bool {
	if strings.Contains(r.glob, "**") {
		return matchDoubleStar(r.glob, relPath)
	}
	if r.rooted {
		if strings.Contains(r.glob, "/") {
			return matchGlob(r.glob, relPath)
		}
		first, _, _ := strings.Cut(relPath, "/")
		return matchGlob(r.glob, first)
	}

	if matchGlob(r.glob, relPath) {
		return true
	}
	if !strings.Contains(r.glob, "/") {
		return matchGlob(r.glob, filepath.Base(relPath))
	}
	parts := strings.Split(relPath, "/")
	for i := range parts {
		if matchGlob(r.glob, strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}

func matchGlob(glob, path string) bool {
	if ok, _ := filepath.Match(glob, path); ok {
		return true
	}
	if !strings.Contains(glob, "/") {
		if ok, _ := filepath.Match(glob, filepath.Base(path)); ok {
			return true
		}
	}
	return false
}

// matchDoubleStar handles the "**" any-depth wildcard: **/name matches
// name at any depth, prefix/**/suffix matches anything between the two.
func matchDoubleStar(glob, path string) bool {
	if strings.HasPrefix(glob, "**/") {
		rest := strings.TrimPrefix(glob, "**/")
		parts := strings.Split(path, "/")
		for i := range parts {
			candidate := strings.Join(parts[i:], "/")
			if matchGlob(rest, candidate) {
				return true
			}
		}
		return false
	}

	halves := strings.SplitN(glob, "**", 2)
	if len(halves) != 2 {
		return matchGlob(glob, path)
	}
	prefix := strings.TrimSuffix(halves[0], "/")
	suffix := strings.TrimPrefix(halves[1], "/")
	if prefix != "" && !strings.HasPrefix(path, prefix) {
		return false
	}
	if suffix == "" {
		return true
	}
	if strings.HasSuffix(path, suffix) {
		return true
	}
	parts := strings.Split(path, "/")
	for i := range parts {
		if matchGlob(suffix, strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}

// matcherCache compiles and caches one matcher per directory, evicting
// entries that haven't been touched recently — spec §4.7's "cache of
// compiled ignore-matchers per directory is cleared periodically when
// idle."
type matcherCache struct {
	global []rule

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	m        *matcher
	lastUsed int64 // unix nanos, set by the caller's clock source
}

func newMatcherCache() *matcherCache {
	return &matcherCache{
		global:  globalIgnoreRules(),
		entries: make(map[string]*cacheEntry),
	}
}

// resolve returns the matcher for dir, building and caching it (and every
// ancestor between dir and root) on first use. now is the caller's
// monotonic-ish clock reading, stamped on the entry for later eviction.
func (c *matcherCache) resolve(root, dir string, now int64) *matcher {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolveLocked(root, dir, now)
}

// resolveLocked is resolve's body for callers already holding c.mu.
func (c *matcherCache) resolveLocked(root, dir string, now int64) *matcher {
	if e, ok := c.entries[dir]; ok {
		e.lastUsed = now
		return e.m
	}
	var groups []ruleGroup
	if dir != root {
		parent := filepath.Dir(dir)
		parentMatcher := c.resolveLocked(root, parent, now)
		groups = append(groups, parentMatcher.groups...)
	} else {
		groups = append(groups, ruleGroup{baseDir: dir, rules: c.global})
	}
	groups = append(groups, loadGroup(dir))

	m := &matcher{groups: groups}
	c.entries[dir] = &cacheEntry{m: m, lastUsed: now}
	return m
}

// evictIdle drops every cached matcher untouched since olderThan (a unix
// nano cutoff); the next resolve for that directory rebuilds it.
func (c *matcherCache) evictIdle(olderThan int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for dir, e := range c.entries {
		if e.lastUsed < olderThan {
			delete(c.entries, dir)
		}
	}
}
