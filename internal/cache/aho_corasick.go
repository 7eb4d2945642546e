// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

// Package cache provides the in-memory matching and caching structures used by the
// report pipeline.
package cache

import (
	"strings"
	"sync"
	"unicode/utf8"
)

// AhoCorasick finds every occurrence of a set of patterns in a text in a single pass,
// O(n + m + z) for text length n, total pattern length m and z matches.
//
// Theme mining runs every catalog tag against every quote of the week; the automaton
// keeps that linear in the quote text instead of quadratic in tags.
//
//	ac := cache.NewAhoCorasick()
//	ac.AddPattern("одиночество", nil)
//	ac.AddPattern("тишина", nil)
//	ac.Build()
//	ac.DistinctPatterns("Тишина и одиночество")
//	// [тишина одиночество]
//
// Matching is case-insensitive by default and works on runes, so Cyrillic text is
// handled like ASCII.
type AhoCorasick struct {
	mu            sync.RWMutex
	root          *acNode
	patterns      []Pattern
	built         bool
	caseSensitive bool
}

type acNode struct {
	children map[rune]*acNode
	failure  *acNode
	output   []int // indices of patterns ending here
}

// Pattern is a search pattern with associated data.
type Pattern struct {
	Text string
	Data any
}

// Match is a pattern occurrence. Position is the byte offset in the normalized
// (lower-cased unless case-sensitive) text.
type Match struct {
	Pattern  string
	Data     any
	Position int
}

// NewAhoCorasick creates a case-insensitive automaton.
func NewAhoCorasick() *AhoCorasick {
	return &AhoCorasick{root: newACNode()}
}

// NewAhoCorasickCaseSensitive creates a case-sensitive automaton.
func NewAhoCorasickCaseSensitive() *AhoCorasick {
	return &AhoCorasick{root: newACNode(), caseSensitive: true}
}

func newACNode() *acNode {
	return &acNode{children: make(map[rune]*acNode)}
}

// AddPattern adds a pattern; Build must be called again before searching.
func (ac *AhoCorasick) AddPattern(pattern string, data any) {
	if pattern == "" {
		return
	}

	ac.mu.Lock()
	defer ac.mu.Unlock()

	ac.built = false
	ac.patterns = append(ac.patterns, Pattern{Text: ac.normalize(pattern), Data: data})
}

// Build constructs the trie and failure links.
func (ac *AhoCorasick) Build() {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	if ac.built {
		return
	}

	ac.root = newACNode()
	for i, p := range ac.patterns {
		node := ac.root
		for _, ch := range p.Text {
			next, ok := node.children[ch]
			if !ok {
				next = newACNode()
				node.children[ch] = next
			}
			node = next
		}
		node.output = append(node.output, i)
	}

	// BFS over the trie; a node's failure link is the longest proper suffix that is
	// also a trie path.
	queue := make([]*acNode, 0, len(ac.root.children))
	for _, child := range ac.root.children {
		child.failure = ac.root
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ch, child := range current.children {
			queue = append(queue, child)

			fail := current.failure
			for fail != nil && fail.children[ch] == nil {
				fail = fail.failure
			}
			if fail == nil {
				child.failure = ac.root
				continue
			}
			child.failure = fail.children[ch]
			child.output = append(child.output, child.failure.output...)
		}
	}

	ac.built = true
}

// Search returns every match in text in order of match end.
func (ac *AhoCorasick) Search(text string) []Match {
	var matches []Match
	ac.scan(text, func(idx, end int) {
		p := ac.patterns[idx]
		matches = append(matches, Match{Pattern: p.Text, Data: p.Data, Position: end - len(p.Text)})
	})
	return matches
}

// DistinctPatterns returns each pattern found in text once, in order of first match.
func (ac *AhoCorasick) DistinctPatterns(text string) []string {
	seen := make(map[int]struct{})
	var out []string
	ac.scan(text, func(idx, _ int) {
		if _, ok := seen[idx]; ok {
			return
		}
		seen[idx] = struct{}{}
		out = append(out, ac.patterns[idx].Text)
	})
	return out
}

// Contains reports whether any pattern occurs in text.
func (ac *AhoCorasick) Contains(text string) bool {
	return len(ac.DistinctPatterns(text)) > 0
}

// PatternCount returns the number of patterns added.
func (ac *AhoCorasick) PatternCount() int {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	return len(ac.patterns)
}

// scan walks text through the automaton and calls emit with the pattern index and
// the byte offset just past the match.
func (ac *AhoCorasick) scan(text string, emit func(idx, end int)) {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	if !ac.built || len(ac.patterns) == 0 {
		return
	}

	node := ac.root
	searchText := ac.normalize(text)
	for i, ch := range searchText {
		for node != ac.root && node.children[ch] == nil {
			node = node.failure
		}
		next, ok := node.children[ch]
		if !ok {
			continue
		}
		node = next

		end := i + utf8.RuneLen(ch)
		for _, idx := range node.output {
			emit(idx, end)
		}
	}
}

func (ac *AhoCorasick) normalize(s string) string {
	if ac.caseSensitive {
		return s
	}
	return strings.ToLower(s)
}
