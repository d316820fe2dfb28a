// Package kb manages the markdown knowledge base holding the team's pain
// point matrix and per-member pain point files.
package kb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MaxExcerptLen caps the text returned from matrix reads so a single tool
// result cannot flood the model context.
const MaxExcerptLen = 3000

// cardMarker prefixes every pain point card heading; cards are numbered by
// counting occurrences.
const cardMarker = "## Pain Point "

var (
	// ErrUnknownSection reports a section name outside the matrix.
	ErrUnknownSection = errors.New("unknown section")
	// ErrMemberNotFound reports a missing member pain point file.
	ErrMemberNotFound = errors.New("member not found")
	// ErrFileNotFound reports a knowledge base file that does not exist.
	ErrFileNotFound = errors.New("file not found")
)

// sectionHeadings maps section names to their matrix headings, in matrix
// order.
var sectionHeadings = []struct {
	Name    string
	Heading string
}{
	{"sourcing", "## 1. Sourcing & Market Research"},
	{"listing", "## 2. Listing & Content"},
	{"advertising", "## 3. Advertising & Traffic"},
	{"support", "## 4. Customer Support & Reviews"},
	{"inventory", "## 5. Inventory & Supply Chain"},
	{"finance", "## 6. Finance & Profit"},
	{"analytics", "## 7. Data Analytics & Decisions"},
	{"compliance", "## 8. Compliance & Account Safety"},
}

// Store reads and writes the knowledge base rooted at a local directory.
type Store struct {
	root string
}

// NewStore creates a store over the given knowledge base root.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the knowledge base root directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) matrixPath() string {
	return filepath.Join(s.root, "pain_points", "matrix.md")
}

func (s *Store) membersDir() string {
	return filepath.Join(s.root, "pain_points", "members")
}

// memberPath maps a member name to their file, containing any path
// separators or traversal sequences inside the members directory.
func (s *Store) memberPath(name string) string {
	return filepath.Join(s.membersDir(), filepath.Clean("/"+name)+".md")
}

// Sections returns the valid section names in matrix order.
func Sections() []string {
	names := make([]string, 0, len(sectionHeadings))
	for _, sh := range sectionHeadings {
		names = append(names, sh.Name)
	}
	return names
}

func headingFor(section string) (string, bool) {
	for _, sh := range sectionHeadings {
		if sh.Name == section {
			return sh.Heading, true
		}
	}
	return "", false
}

// ReadOverview returns the pain point matrix, capped at MaxExcerptLen.
func (s *Store) ReadOverview() (string, error) {
	data, err := os.ReadFile(s.matrixPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, s.matrixPath())
		}
		return "", err
	}
	return truncate(string(data)), nil
}

// ReadSection returns one section of the matrix, from its heading up to the
// next top-level heading, capped at MaxExcerptLen.
func (s *Store) ReadSection(section string) (string, error) {
	heading, ok := headingFor(section)
	if !ok {
		return "", fmt.Errorf("%w: %q, valid sections: %s",
			ErrUnknownSection, section, strings.Join(Sections(), ", "))
	}

	data, err := os.ReadFile(s.matrixPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, s.matrixPath())
		}
		return "", err
	}
	content := string(data)

	start := strings.Index(content, heading)
	if start == -1 {
		return "", fmt.Errorf("%w: heading %q missing from matrix", ErrFileNotFound, heading)
	}
	chunk := content[start:]
	if next := strings.Index(chunk[1:], "\n## "); next != -1 {
		chunk = chunk[:next+1]
	}
	return truncate(chunk), nil
}

// MemberStat is the pain point count for a single member.
type MemberStat struct {
	Name  string
	Count int
}

// MemberStats scans the member files and returns per-member pain point
// counts in name order.
func (s *Store) MemberStats() ([]MemberStat, error) {
	entries, err := os.ReadDir(s.membersDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, s.membersDir())
		}
		return nil, err
	}

	var stats []MemberStat
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".md")
		if !ok || entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.membersDir(), entry.Name()))
		if err != nil {
			return nil, err
		}
		stats = append(stats, MemberStat{
			Name:  name,
			Count: strings.Count(string(data), cardMarker),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats, nil
}

// ListMembers returns the names of all members with a pain point file.
func (s *Store) ListMembers() []string {
	entries, err := os.ReadDir(s.membersDir())
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if name, ok := strings.CutSuffix(entry.Name(), ".md"); ok && !entry.IsDir() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ReadMember returns the full pain point file for one member.
func (s *Store) ReadMember(name string) (string, error) {
	data, err := os.ReadFile(s.memberPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q, known members: %s",
				ErrMemberNotFound, name, strings.Join(s.ListMembers(), ", "))
		}
		return "", err
	}
	return string(data), nil
}

// PainPoint is one pain point card to be appended to the submitter's file.
type PainPoint struct {
	Section         string
	Title           string
	Scenario        string
	CurrentApproach string
	Problem         string
	Loss            string
	Expected        string
	Platform        string
	Submitter       string
}

// AddPainPoint appends a numbered card to the submitter's member file,
// creating the file with a header when it does not exist yet. It returns
// the card number within the file.
func (s *Store) AddPainPoint(p PainPoint) (int, error) {
	if _, ok := headingFor(p.Section); !ok {
		return 0, fmt.Errorf("%w: %q, valid sections: %s",
			ErrUnknownSection, p.Section, strings.Join(Sections(), ", "))
	}

	if err := os.MkdirAll(s.membersDir(), 0o755); err != nil {
		return 0, err
	}
	path := s.memberPath(p.Submitter)

	content := ""
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		content = string(data)
	case os.IsNotExist(err):
		header := fmt.Sprintf("# Pain point cards: %s\n\n> Submitted by: %s\n\n---\n\n",
			p.Submitter, p.Submitter)
		if err := os.WriteFile(path, []byte(header), 0o644); err != nil {
			return 0, err
		}
		content = header
	default:
		return 0, err
	}

	number := strings.Count(content, cardMarker) + 1
	card := formatCard(number, p)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	if _, err := f.WriteString(card); err != nil {
		return 0, err
	}
	return number, nil
}

func formatCard(number int, p PainPoint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%d\n\n**%s**\n", cardMarker, number, p.Title)
	fmt.Fprintf(&b, "- Scenario: %s\n", p.Scenario)
	if p.CurrentApproach != "" {
		fmt.Fprintf(&b, "- Current approach: %s\n", p.CurrentApproach)
	}
	fmt.Fprintf(&b, "- Problem: %s\n", p.Problem)
	if p.Loss != "" {
		fmt.Fprintf(&b, "- Quantified loss: %s\n", p.Loss)
	}
	fmt.Fprintf(&b, "- Expected outcome: %s\n", p.Expected)
	fmt.Fprintf(&b, "- Platform: [%s]\n", p.Platform)
	fmt.Fprintf(&b, "- Function: %s\n\n---\n\n", p.Section)
	return b.String()
}

// ResolveFile maps a path relative to the knowledge base root to an
// absolute path, falling back to a fuzzy match against member files when
// the exact path does not exist.
func (s *Store) ResolveFile(rel string) (string, error) {
	full := filepath.Join(s.root, filepath.Clean("/"+rel))
	if _, err := os.Stat(full); err == nil {
		return full, nil
	}

	needle := strings.TrimSuffix(filepath.Base(rel), ".md")
	for _, name := range s.ListMembers() {
		if strings.Contains(name, needle) {
			return filepath.Join(s.membersDir(), name+".md"), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrFileNotFound, rel)
}

func truncate(text string) string {
	if len(text) <= MaxExcerptLen {
		return text
	}
	return text[:MaxExcerptLen]
}
