package store

import (
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"chatwrap/internal/analyze"
	"chatwrap/internal/parse"
	"chatwrap/internal/stats"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testResult(n int) *analyze.Result {
	messages := make([]parse.Message, n)
	for i := range messages {
		messages[i] = parse.Message{
			Sender:    "Alice",
			Content:   fmt.Sprintf("message number %d", i),
			Timestamp: time.Date(2023, 2, 1, 14, i%60, 0, 0, time.Local),
		}
	}
	return &analyze.Result{
		TotalMessages:    n,
		MessagesSent:     n,
		ReferenceSender:  "Alice",
		TimeDistribution: map[int]int{14: n},
		DayDistribution:  map[string]int{"Wednesday": n},
		TopEmojis:        []stats.EmojiCount{{Emoji: "😊", Count: 3}},
		TopWords:         []stats.WordCount{{Word: "message", Count: n}},
		CommunicatorType: stats.ConversationMaster,
		Messages:         messages,
	}
}

func TestSaveAndGetResult(t *testing.T) {
	db := openTestDB(t)

	in := testResult(3)
	in.CommunicationStyles = map[string]string{"Alice": "warm"}
	in.Sentiment = &stats.SentimentScore{Positive: 0.4, Negative: 0.1}

	id, err := db.SaveAnalysis("chat.txt", in)
	if err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}
	if id == "" {
		t.Fatal("empty upload id")
	}

	out, err := db.GetResult(id)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	in.Messages = nil // not reloaded
	if !reflect.DeepEqual(out, in) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestSaveAndGetResultWithoutExtras(t *testing.T) {
	db := openTestDB(t)

	id, err := db.SaveAnalysis("chat.txt", testResult(2))
	if err != nil {
		t.Fatal(err)
	}
	out, err := db.GetResult(id)
	if err != nil {
		t.Fatal(err)
	}
	if out.CommunicationStyles != nil {
		t.Errorf("CommunicationStyles = %v, want nil", out.CommunicationStyles)
	}
	if out.Sentiment != nil {
		t.Errorf("Sentiment = %v, want nil", out.Sentiment)
	}
}

func TestSaveBatchesMessages(t *testing.T) {
	db := openTestDB(t)

	// enough rows for two full batches and a remainder
	const n = 2*messageBatchSize + 17
	id, err := db.SaveAnalysis("big.txt", testResult(n))
	if err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}

	messages, err := db.GetMessages(id)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(messages) != n {
		t.Fatalf("got %d rows, want %d", len(messages), n)
	}
	for i, m := range messages {
		if m.Seq != i {
			t.Fatalf("messages[%d].Seq = %d, sequence not contiguous", i, m.Seq)
		}
	}
	if messages[0].Ts != "2023-02-01T14:00:00" {
		t.Errorf("stored ts = %q", messages[0].Ts)
	}
}

func TestUploadsAndCounts(t *testing.T) {
	db := openTestDB(t)

	firstID, err := db.SaveAnalysis("a.txt", testResult(2))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.SaveAnalysis("b.txt", testResult(3)); err != nil {
		t.Fatal(err)
	}

	uploads, err := db.ListUploads()
	if err != nil {
		t.Fatal(err)
	}
	if len(uploads) != 2 {
		t.Fatalf("got %d uploads, want 2", len(uploads))
	}

	up, err := db.GetUpload(firstID)
	if err != nil {
		t.Fatal(err)
	}
	if up == nil || up.FileName != "a.txt" {
		t.Errorf("GetUpload = %+v", up)
	}
	if missing, err := db.GetUpload("no-such-id"); err != nil || missing != nil {
		t.Errorf("GetUpload(miss) = %+v, %v", missing, err)
	}

	if n, _ := db.UploadCount(); n != 2 {
		t.Errorf("UploadCount = %d, want 2", n)
	}
	if n, _ := db.MessageCount(); n != 5 {
		t.Errorf("MessageCount = %d, want 5", n)
	}
}

func TestDeleteUpload(t *testing.T) {
	db := openTestDB(t)

	id, err := db.SaveAnalysis("a.txt", testResult(4))
	if err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteUpload(id); err != nil {
		t.Fatalf("DeleteUpload: %v", err)
	}

	if up, _ := db.GetUpload(id); up != nil {
		t.Errorf("upload still present: %+v", up)
	}
	if n, _ := db.MessageCount(); n != 0 {
		t.Errorf("MessageCount = %d after delete", n)
	}
	if _, err := db.GetResult(id); err == nil {
		t.Error("GetResult succeeded after delete")
	}
}

func TestGetMessagesWindow(t *testing.T) {
	db := openTestDB(t)

	id, err := db.SaveAnalysis("a.txt", testResult(50))
	if err != nil {
		t.Fatal(err)
	}

	messages, hitIdx, startPos, total, err := db.GetMessagesWindow(id, 25, 5)
	if err != nil {
		t.Fatalf("GetMessagesWindow: %v", err)
	}
	if total != 50 {
		t.Errorf("total = %d, want 50", total)
	}
	if len(messages) != 11 {
		t.Fatalf("window size = %d, want 11", len(messages))
	}
	if startPos != 20 {
		t.Errorf("startPos = %d, want 20", startPos)
	}
	if hitIdx != 5 || messages[hitIdx].Seq != 25 {
		t.Errorf("hitIdx = %d, messages[hitIdx].Seq = %d", hitIdx, messages[hitIdx].Seq)
	}

	// window clipped at the start
	messages, hitIdx, startPos, _, err = db.GetMessagesWindow(id, 2, 5)
	if err != nil {
		t.Fatal(err)
	}
	if startPos != 0 || hitIdx != 2 || len(messages) != 8 {
		t.Errorf("clipped window: start=%d hit=%d len=%d", startPos, hitIdx, len(messages))
	}

	// no hit loads everything
	messages, hitIdx, _, _, err = db.GetMessagesWindow(id, -1, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 50 || hitIdx != -1 {
		t.Errorf("full load: len=%d hit=%d", len(messages), hitIdx)
	}
}
