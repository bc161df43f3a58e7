package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"chatwrap/internal/analyze"
	"chatwrap/internal/stats"
)

// messageBatchSize bounds how many message rows go into one transaction, to
// keep per-write payloads small. A failed batch aborts the remaining ones;
// batches already committed are not rolled back, so a failed save can leave
// a partial upload behind. DeleteUpload cleans such remains up.
const messageBatchSize = 100

// SaveAnalysis stores one upload record, its message rows in bounded
// batches, and the analysis result row. Returns the new upload id.
func (d *DB) SaveAnalysis(fileName string, res *analyze.Result) (string, error) {
	uploadID := uuid.NewString()
	now := time.Now().Format(timeLayout)

	_, err := d.db.Exec(
		"INSERT INTO chat_uploads (id, file_name, upload_date, created_at) VALUES (?, ?, ?, ?)",
		uploadID, fileName, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert upload: %w", err)
	}

	for start := 0; start < len(res.Messages); start += messageBatchSize {
		end := start + messageBatchSize
		if end > len(res.Messages) {
			end = len(res.Messages)
		}
		if err := d.insertMessageBatch(uploadID, start, res); err != nil {
			return "", fmt.Errorf("insert messages %d-%d: %w", start, end-1, err)
		}
	}

	if err := d.insertResult(uploadID, now, res); err != nil {
		return "", fmt.Errorf("insert result: %w", err)
	}

	return uploadID, nil
}

func (d *DB) insertMessageBatch(uploadID string, start int, res *analyze.Result) error {
	end := start + messageBatchSize
	if end > len(res.Messages) {
		end = len(res.Messages)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT INTO messages (upload_id, seq, sender, content, ts, has_emoji) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := start; i < end; i++ {
		m := res.Messages[i]
		if _, err := stmt.Exec(uploadID, i, m.Sender, m.Content, formatTime(m.Timestamp), m.HasEmoji); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) insertResult(uploadID, now string, res *analyze.Result) error {
	timeDist, err := json.Marshal(res.TimeDistribution)
	if err != nil {
		return err
	}
	dayDist, err := json.Marshal(res.DayDistribution)
	if err != nil {
		return err
	}
	topEmojis, err := json.Marshal(res.TopEmojis)
	if err != nil {
		return err
	}
	topWords, err := json.Marshal(res.TopWords)
	if err != nil {
		return err
	}
	styles, err := json.Marshal(res.CommunicationStyles)
	if err != nil {
		return err
	}
	sentiment := ""
	if res.Sentiment != nil {
		b, err := json.Marshal(res.Sentiment)
		if err != nil {
			return err
		}
		sentiment = string(b)
	}

	_, err = d.db.Exec(`
		INSERT INTO analysis_results (
			upload_id, total_messages, messages_sent, messages_received,
			reference_sender, communicator_type, time_distribution,
			day_distribution, top_emojis, top_words, communication_styles,
			sentiment, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uploadID, res.TotalMessages, res.MessagesSent, res.MessagesReceived,
		res.ReferenceSender, res.CommunicatorType, string(timeDist),
		string(dayDist), string(topEmojis), string(topWords), string(styles),
		sentiment, now,
	)
	return err
}

// GetResult loads a stored analysis result. The Messages field stays empty;
// message rows are loaded separately when needed.
func (d *DB) GetResult(uploadID string) (*analyze.Result, error) {
	var (
		res                                              analyze.Result
		timeDist, dayDist, topEmojis, topWords, stylesJS string
		sentiment                                        string
	)
	err := d.db.QueryRow(`
		SELECT total_messages, messages_sent, messages_received,
		       reference_sender, communicator_type, time_distribution,
		       day_distribution, top_emojis, top_words, communication_styles,
		       sentiment
		FROM analysis_results WHERE upload_id = ?`,
		uploadID,
	).Scan(&res.TotalMessages, &res.MessagesSent, &res.MessagesReceived,
		&res.ReferenceSender, &res.CommunicatorType, &timeDist,
		&dayDist, &topEmojis, &topWords, &stylesJS, &sentiment)
	if err != nil {
		return nil, fmt.Errorf("load result: %w", err)
	}

	// encoding/json handles int-keyed maps; object keys round-trip as "14".
	if err := json.Unmarshal([]byte(timeDist), &res.TimeDistribution); err != nil {
		return nil, fmt.Errorf("time distribution: %w", err)
	}
	if err := json.Unmarshal([]byte(dayDist), &res.DayDistribution); err != nil {
		return nil, fmt.Errorf("day distribution: %w", err)
	}
	if err := json.Unmarshal([]byte(topEmojis), &res.TopEmojis); err != nil {
		return nil, fmt.Errorf("top emojis: %w", err)
	}
	if err := json.Unmarshal([]byte(topWords), &res.TopWords); err != nil {
		return nil, fmt.Errorf("top words: %w", err)
	}
	if err := json.Unmarshal([]byte(stylesJS), &res.CommunicationStyles); err != nil {
		return nil, fmt.Errorf("styles: %w", err)
	}
	if len(res.CommunicationStyles) == 0 {
		res.CommunicationStyles = nil
	}
	if sentiment != "" {
		var s stats.SentimentScore
		if err := json.Unmarshal([]byte(sentiment), &s); err != nil {
			return nil, fmt.Errorf("sentiment: %w", err)
		}
		res.Sentiment = &s
	}
	return &res, nil
}
