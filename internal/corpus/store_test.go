// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := types.CorpusConfig{
		CorpusDir:  t.TempDir(),
		MaxResults: 20,
	}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleDocs() []types.Document {
	return []types.Document{
		{
			ID:        "attn-2017",
			Title:     "Attention Is All You Need",
			Abstract:  "We propose the Transformer, a model architecture relying entirely on attention mechanisms.",
			Authors:   []string{"Vaswani, A.", "Shazeer, N."},
			Venue:     "NeurIPS",
			Citations: 90000,
			Date:      time.Date(2017, 6, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        "bert-2018",
			Title:     "BERT: Pre-training of Deep Bidirectional Transformers",
			Abstract:  "We introduce BERT, a language representation model pre-trained on unlabeled text.",
			Authors:   []string{"Devlin, J."},
			Venue:     "NAACL",
			Citations: 60000,
			Embedding: []float64{0.1, 0.2, 0.3},
		},
		{
			ID:        "gan-2014",
			Title:     "Generative Adversarial Networks",
			Abstract:  "A framework for estimating generative models via an adversarial process.",
			Authors:   []string{"Goodfellow, I."},
			Venue:     "NeurIPS",
			Citations: 50000,
		},
	}
}

func putAll(t *testing.T, store *Store, docs []types.Document) {
	t.Helper()
	for _, doc := range docs {
		if err := store.Put(context.Background(), doc); err != nil {
			t.Fatal(err)
		}
	}
}

// --- Put / Get ---

func TestPutAndGetRoundTrip(t *testing.T) {
	store := testStore(t)
	putAll(t, store, sampleDocs())

	doc, err := store.Get(context.Background(), "bert-2018")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "BERT: Pre-training of Deep Bidirectional Transformers" {
		t.Errorf("unexpected title %q", doc.Title)
	}
	if len(doc.Authors) != 1 || doc.Authors[0] != "Devlin, J." {
		t.Errorf("unexpected authors %v", doc.Authors)
	}
	if len(doc.Embedding) != 3 || doc.Embedding[1] != 0.2 {
		t.Errorf("embedding not preserved: %v", doc.Embedding)
	}
}

func TestGetMissingDocument(t *testing.T) {
	store := testStore(t)
	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestPutUpsertsExisting(t *testing.T) {
	store := testStore(t)
	doc := sampleDocs()[0]
	putAll(t, store, []types.Document{doc})

	doc.Citations = 123
	if err := store.Put(context.Background(), doc); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(context.Background(), doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Citations != 123 {
		t.Errorf("citations = %d, want 123", got.Citations)
	}

	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestPutRejectsEmptyID(t *testing.T) {
	store := testStore(t)
	if err := store.Put(context.Background(), types.Document{Title: "no id"}); err == nil {
		t.Fatal("expected error for document without id")
	}
}

// --- Query ---

func TestQueryMatchesAnyTerm(t *testing.T) {
	store := testStore(t)
	putAll(t, store, sampleDocs())

	docs, err := store.Query(context.Background(), []string{"adversarial", "bidirectional"}, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}

	ids := map[string]bool{}
	for _, d := range docs {
		ids[d.ID] = true
	}
	if !ids["gan-2014"] || !ids["bert-2018"] {
		t.Errorf("unexpected result ids %v", ids)
	}
}

func TestQueryTopicFilter(t *testing.T) {
	store := testStore(t)
	putAll(t, store, sampleDocs())

	docs, err := store.Query(context.Background(), []string{"model"}, "NAACL", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].ID != "bert-2018" {
		t.Fatalf("topic filter failed, got %v", docs)
	}
}

func TestQueryNoResultsIsNotError(t *testing.T) {
	store := testStore(t)
	putAll(t, store, sampleDocs())

	docs, err := store.Query(context.Background(), []string{"astrophysics"}, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 0 {
		t.Errorf("got %d documents, want 0", len(docs))
	}
}

func TestQueryEmptyTermsOrdersByCitations(t *testing.T) {
	store := testStore(t)
	putAll(t, store, sampleDocs())

	docs, err := store.Query(context.Background(), nil, "", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if docs[0].ID != "attn-2017" || docs[1].ID != "bert-2018" {
		t.Errorf("unexpected order: %s, %s", docs[0].ID, docs[1].ID)
	}
}

func TestQueryRespectsLimit(t *testing.T) {
	store := testStore(t)
	putAll(t, store, sampleDocs())

	docs, err := store.Query(context.Background(), []string{"transformer", "adversarial", "bert"}, "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Errorf("got %d documents, want 1", len(docs))
	}
}

func TestFTSQueryQuoting(t *testing.T) {
	tests := []struct {
		name  string
		terms []string
		want  string
	}{
		{"empty", nil, ""},
		{"single", []string{"learning"}, `"learning"`},
		{"multiple", []string{"deep", "learning"}, `"deep" OR "learning"`},
		{"strips quotes", []string{`lear"ning`}, `"learning"`},
		{"skips blank", []string{"", "x2"}, `"x2"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ftsQuery(tt.terms); got != tt.want {
				t.Errorf("ftsQuery(%v) = %q, want %q", tt.terms, got, tt.want)
			}
		})
	}
}

// --- Ingest ---

func TestIngestFromYAMLFiles(t *testing.T) {
	store := testStore(t)
	docsDir := t.TempDir()

	for _, doc := range sampleDocs() {
		data, err := yaml.Marshal(doc)
		if err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(docsDir, doc.ID+".yaml")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// A malformed file counts as failed without aborting the run.
	if err := os.WriteFile(filepath.Join(docsDir, "broken.yaml"), []byte(":\tnot yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	summary, err := store.Ingest(context.Background(), docsDir, &buf)
	if err != nil {
		t.Fatal(err)
	}

	if summary.Ingested != 3 {
		t.Errorf("ingested = %d, want 3", summary.Ingested)
	}
	if summary.Failed != 1 {
		t.Errorf("failed = %d, want 1", summary.Failed)
	}
	if !summary.HasFailures() {
		t.Error("HasFailures should be true")
	}
	if summary.Total() != 4 {
		t.Errorf("total = %d, want 4", summary.Total())
	}
	if !strings.Contains(buf.String(), "ingested attn-2017") {
		t.Errorf("missing progress line in output:\n%s", buf.String())
	}

	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestIngestFileWithoutIDUsesFilename(t *testing.T) {
	store := testStore(t)
	docsDir := t.TempDir()

	data, _ := yaml.Marshal(types.Document{Title: "Untitled Manuscript"})
	if err := os.WriteFile(filepath.Join(docsDir, "mystery-paper.yaml"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := store.Ingest(context.Background(), docsDir, &buf); err != nil {
		t.Fatal(err)
	}

	doc, err := store.Get(context.Background(), "mystery-paper")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Untitled Manuscript" {
		t.Errorf("unexpected title %q", doc.Title)
	}
}
