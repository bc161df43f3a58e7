package search

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chatwrap/internal/analyze"
	"chatwrap/internal/parse"
	"chatwrap/internal/store"
)

func seedUpload(t *testing.T, db *store.DB, fileName string, contents ...string) string {
	t.Helper()
	messages := make([]parse.Message, len(contents))
	for i, c := range contents {
		messages[i] = parse.Message{
			Sender:    "Alice",
			Content:   c,
			Timestamp: time.Date(2023, 2, 1, 14, i, 0, 0, time.Local),
		}
	}
	id, err := db.SaveAnalysis(fileName, &analyze.Result{
		TotalMessages:    len(messages),
		MessagesSent:     len(messages),
		ReferenceSender:  "Alice",
		CommunicatorType: "Storyteller",
		Messages:         messages,
	})
	if err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}
	return id
}

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSearchFTS(t *testing.T) {
	db := openTestDB(t)
	id := seedUpload(t, db, "chat.txt",
		"shall we order pizza tonight",
		"pasta sounds better",
	)

	results, err := Search(db, Options{Query: "pizza"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.UploadID != id || r.Seq != 0 || r.FileName != "chat.txt" || r.Sender != "Alice" {
		t.Errorf("result = %+v", r)
	}
	if !strings.Contains(r.Snippet, ">>>pizza<<<") {
		t.Errorf("snippet = %q, want hit markers", r.Snippet)
	}
}

func TestSearchDedupsPerUpload(t *testing.T) {
	db := openTestDB(t)
	seedUpload(t, db, "a.txt", "pizza pizza", "more pizza", "pizza again")
	seedUpload(t, db, "b.txt", "pizza here too")

	results, err := Search(db, Options{Query: "pizza"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want one per upload", len(results))
	}
	if results[0].UploadID == results[1].UploadID {
		t.Error("duplicate upload in results")
	}
}

func TestSearchSenderFilter(t *testing.T) {
	db := openTestDB(t)
	seedUpload(t, db, "a.txt", "pizza from alice")

	results, err := Search(db, Options{Query: "pizza", Sender: "Bob"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results for absent sender", len(results))
	}
}

func TestSearchNoHits(t *testing.T) {
	db := openTestDB(t)
	seedUpload(t, db, "a.txt", "nothing relevant")

	results, err := Search(db, Options{Query: "quasar"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestSearchCJKFallsBackToLike(t *testing.T) {
	db := openTestDB(t)
	id := seedUpload(t, db, "a.txt", "今晚吃披萨吗", "maybe later")

	results, err := Search(db, Options{Query: "披萨"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].UploadID != id {
		t.Fatalf("results = %+v", results)
	}
	if !strings.Contains(results[0].Snippet, ">>>披萨<<<") {
		t.Errorf("snippet = %q", results[0].Snippet)
	}
}

func TestListAll(t *testing.T) {
	db := openTestDB(t)
	seedUpload(t, db, "first.txt", "hello there")
	seedUpload(t, db, "second.txt", "hi again")

	results, err := ListAll(db, Options{})
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d rows, want 2", len(results))
	}
	for _, r := range results {
		if r.Seq != -1 {
			t.Errorf("Seq = %d, want -1 for upload rows", r.Seq)
		}
		if !strings.Contains(r.Summary, "messages, Storyteller") {
			t.Errorf("Summary = %q", r.Summary)
		}
	}

	filtered, err := ListAll(db, Options{Query: "second"})
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 1 || filtered[0].FileName != "second.txt" {
		t.Errorf("filtered = %+v", filtered)
	}
}

func TestContainsCJK(t *testing.T) {
	if containsCJK("hello") {
		t.Error("plain ascii flagged as CJK")
	}
	if !containsCJK("吃饭") {
		t.Error("han text not flagged")
	}
}

func TestMakeSnippet(t *testing.T) {
	long := strings.Repeat("x", 40) + "needle" + strings.Repeat("y", 40)
	got := makeSnippet(long, "needle", 10)
	if !strings.Contains(got, ">>>needle<<<") {
		t.Errorf("snippet = %q", got)
	}
	if !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "...") {
		t.Errorf("snippet not elided: %q", got)
	}

	if got := makeSnippet("short needle text", "needle", 30); got != "short >>>needle<<< text" {
		t.Errorf("got %q", got)
	}
	if got := makeSnippet("no hit here", "needle", 30); got != "no hit here" {
		t.Errorf("got %q", got)
	}
	if got := makeSnippet("no hit but a very long message body", "needle", 3); got != "no hit..." {
		t.Errorf("got %q", got)
	}
}
