package kb

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pmagent/internal/kb"
)

const testMatrix = `# Pain Point Matrix

## 1. Sourcing & Market Research

- research takes too long

## 2. Listing & Content

- copy rewrites by hand
`

func newTestStore(t *testing.T) *kb.Store {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "pain_points", "members"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "pain_points", "matrix.md"), []byte(testMatrix), 0o644); err != nil {
		t.Fatal(err)
	}
	return kb.NewStore(root)
}

func TestReadTool(t *testing.T) {
	store := newTestStore(t)
	tool := NewReadTool(store)
	ctx := context.Background()

	t.Run("overview", func(t *testing.T) {
		res, err := tool.Execute(ctx, json.RawMessage(`{}`))
		if err != nil {
			t.Fatal(err)
		}
		if res.IsError || !strings.Contains(res.Content, "Pain Point Matrix") {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("section", func(t *testing.T) {
		res, err := tool.Execute(ctx, json.RawMessage(`{"section":"listing"}`))
		if err != nil {
			t.Fatal(err)
		}
		if res.IsError || !strings.Contains(res.Content, "copy rewrites by hand") {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("member stats", func(t *testing.T) {
		if _, err := store.AddPainPoint(painPoint("alice")); err != nil {
			t.Fatal(err)
		}
		if _, err := store.AddPainPoint(painPoint("alice")); err != nil {
			t.Fatal(err)
		}
		res, err := tool.Execute(ctx, json.RawMessage(`{"section":"member-stats"}`))
		if err != nil {
			t.Fatal(err)
		}
		if res.IsError {
			t.Fatalf("result = %+v", res)
		}
		if !strings.Contains(res.Content, "- alice: 2") {
			t.Errorf("stats = %q", res.Content)
		}
		if !strings.Contains(res.Content, "Total: 1 members, 2 pain points") {
			t.Errorf("stats = %q", res.Content)
		}
	})

	t.Run("member file", func(t *testing.T) {
		res, err := tool.Execute(ctx, json.RawMessage(`{"section":"member:alice"}`))
		if err != nil {
			t.Fatal(err)
		}
		if res.IsError || !strings.Contains(res.Content, "Pain point cards: alice") {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("unknown member", func(t *testing.T) {
		res, err := tool.Execute(ctx, json.RawMessage(`{"section":"member:carol"}`))
		if err != nil {
			t.Fatal(err)
		}
		if !res.IsError {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("unknown section", func(t *testing.T) {
		res, err := tool.Execute(ctx, json.RawMessage(`{"section":"astrology"}`))
		if err != nil {
			t.Fatal(err)
		}
		if !res.IsError || !strings.Contains(res.Content, "sourcing") {
			t.Errorf("result = %+v", res)
		}
	})
}

func painPoint(submitter string) kb.PainPoint {
	return kb.PainPoint{
		Section:   "listing",
		Title:     "Copy rewrites by hand",
		Scenario:  "every new product",
		Problem:   "slow and inconsistent",
		Expected:  "template generation",
		Platform:  "amazon",
		Submitter: submitter,
	}
}

func TestWriteTool(t *testing.T) {
	store := newTestStore(t)
	tool := NewWriteTool(store)
	ctx := context.Background()

	t.Run("writes card", func(t *testing.T) {
		input := `{
			"section": "listing",
			"title": "Copy rewrites by hand",
			"scenario": "every new product",
			"problem": "slow and inconsistent",
			"expected": "template generation",
			"platform": "amazon",
			"submitter": "bob"
		}`
		res, err := tool.Execute(ctx, json.RawMessage(input))
		if err != nil {
			t.Fatal(err)
		}
		if res.IsError {
			t.Fatalf("result = %+v", res)
		}
		if !strings.Contains(res.Content, "card 1") {
			t.Errorf("content = %q", res.Content)
		}
		content, err := store.ReadMember("bob")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(content, "## Pain Point 1") {
			t.Errorf("member file = %q", content)
		}
	})

	t.Run("unknown section", func(t *testing.T) {
		input := `{
			"section": "astrology",
			"title": "t", "scenario": "s", "problem": "p",
			"expected": "e", "platform": "amazon", "submitter": "bob"
		}`
		res, err := tool.Execute(ctx, json.RawMessage(input))
		if err != nil {
			t.Fatal(err)
		}
		if !res.IsError {
			t.Errorf("result = %+v", res)
		}
	})
}
