// Package ignore loads glob ignore rules and matches root-relative paths against them.
package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/gobwas/glob"

	"github.com/SourM1lk/gpt-repo-stream/internal/utils"
)

const commentPrefix = "#"

// Rule is a single compiled glob pattern.
type Rule struct {
	Pattern string
	matcher glob.Glob
}

// NewRule compiles pattern with gobwas/glob. Wildcards are not bounded by
// path separators, so "*.log" matches "logs/app.log". Braces are alternation,
// so "{draft,final}.md" matches "draft.md" and "final.md" but never the literal
// name "{draft,final}.md"; a backslash escapes the next character, so "\*.md"
// matches only a file named "*.md".
func NewRule(pattern string) (Rule, error) {
	compiled, compileError := glob.Compile(pattern)
	if compileError != nil {
		return Rule{}, fmt.Errorf("compile ignore pattern %q: %w", pattern, compileError)
	}
	return Rule{Pattern: pattern, matcher: compiled}, nil
}

// Matches reports whether relativePath matches the rule.
func (rule Rule) Matches(relativePath string) bool {
	if rule.matcher == nil {
		return false
	}
	return rule.matcher.Match(relativePath)
}

// RuleSet is an ordered list of rules evaluated with logical OR.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet compiles patterns in order. Patterns that fail to compile are dropped.
func NewRuleSet(patterns []string) RuleSet {
	var rules []Rule
	for _, pattern := range utils.DeduplicatePatterns(patterns) {
		rule, compileError := NewRule(pattern)
		if compileError != nil {
			continue
		}
		rules = append(rules, rule)
	}
	return RuleSet{rules: rules}
}

// Load reads a rules file with one pattern per line. Blank lines and lines
// starting with "#" are skipped, as are lines that are not valid globs.
// A missing file yields an empty RuleSet.
//
// #nosec G304
func Load(rulesPath string) (RuleSet, error) {
	fileHandle, openError := os.Open(rulesPath)
	if openError != nil {
		if errors.Is(openError, fs.ErrNotExist) {
			return RuleSet{}, nil
		}
		return RuleSet{}, fmt.Errorf("open ignore file %s: %w", rulesPath, openError)
	}
	defer fileHandle.Close()

	var patterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == utils.EmptyString || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		patterns = append(patterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return RuleSet{}, fmt.Errorf("read ignore file %s: %w", rulesPath, scanError)
	}
	return NewRuleSet(patterns), nil
}

// Len returns the number of compiled rules.
func (ruleSet RuleSet) Len() int {
	return len(ruleSet.rules)
}

// Patterns returns the source text of every compiled rule in file order.
func (ruleSet RuleSet) Patterns() []string {
	patterns := make([]string, 0, len(ruleSet.rules))
	for _, rule := range ruleSet.rules {
		patterns = append(patterns, rule.Pattern)
	}
	return patterns
}

// MatchesRelative reports whether any rule matches the forward-slash relative path.
func (ruleSet RuleSet) MatchesRelative(relativePath string) bool {
	for _, rule := range ruleSet.rules {
		if rule.Matches(relativePath) {
			return true
		}
	}
	return false
}

// IsIgnored reports whether path, taken relative to root, matches any rule.
// Paths outside root are never ignored.
func (ruleSet RuleSet) IsIgnored(path, root string) bool {
	if len(ruleSet.rules) == 0 {
		return false
	}
	relativePath, underRoot := utils.RelativePathUnder(path, root)
	if !underRoot {
		return false
	}
	return ruleSet.MatchesRelative(relativePath)
}
