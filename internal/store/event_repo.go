package store

import (
	"context"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	err := r.insert(ctx, "session_events",
		[]string{"session_id", "action", "fast", "duration_secs", "remaining_secs"},
		data.SessionID, data.Action, data.Fast, data.DurationSecs, data.RemainingSecs)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendQuizEvent(ctx context.Context, data QuizEventData) error {
	missed := data.Missed
	if missed == nil {
		missed = []string{}
	}
	missedJSON, err := json.Marshal(missed)
	if err != nil {
		return fmt.Errorf("marshal missed concepts: %w", err)
	}
	err = r.insert(ctx, "quiz_events",
		[]string{"session_id", "action", "total", "correct", "percent", "missed"},
		data.SessionID, data.Action, data.Total, data.Correct, data.Percent, string(missedJSON))
	if err != nil {
		return fmt.Errorf("save quiz event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	err := r.insert(ctx, "answer_events",
		[]string{"session_id", "question_id", "concept", "prompt", "selected", "answer", "correct", "stability_after"},
		data.SessionID, data.QuestionID, data.Concept, data.Prompt,
		data.Selected, data.Answer, data.Correct, data.StabilityAfter)
	if err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendLogLine(ctx context.Context, severity, text string) error {
	if err := r.insert(ctx, "log_events", []string{"severity", "text"}, severity, text); err != nil {
		return fmt.Errorf("save log line: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryQuizzes(ctx context.Context, finishedOnly bool, opts QueryOpts) ([]QuizEvent, error) {
	sel := opts.selectFrom("quiz_events",
		"sequence", "timestamp", "session_id", "action", "total", "correct", "percent", "missed")
	if finishedOnly {
		sel.Where(entsql.EQ("action", "finish"))
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query quiz events: %w", err)
	}
	defer rows.Close()

	var out []QuizEvent
	for rows.Next() {
		var (
			e      QuizEvent
			ts     int64
			missed string
		)
		if err := rows.Scan(&e.Sequence, &ts, &e.SessionID, &e.Action, &e.Total, &e.Correct, &e.Percent, &missed); err != nil {
			return nil, fmt.Errorf("scan quiz event: %w", err)
		}
		e.Timestamp = fromMillis(ts)
		if err := json.Unmarshal([]byte(missed), &e.Missed); err != nil {
			return nil, fmt.Errorf("decode missed concepts: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) QuerySessions(ctx context.Context, opts QueryOpts) ([]SessionEvent, error) {
	query, args := opts.selectFrom("session_events",
		"sequence", "timestamp", "session_id", "action", "fast", "duration_secs", "remaining_secs").Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var out []SessionEvent
	for rows.Next() {
		var (
			e  SessionEvent
			ts int64
		)
		if err := rows.Scan(&e.Sequence, &ts, &e.SessionID, &e.Action, &e.Fast, &e.DurationSecs, &e.RemainingSecs); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		e.Timestamp = fromMillis(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) QueryLog(ctx context.Context, opts QueryOpts) ([]LogEvent, error) {
	query, args := opts.selectFrom("log_events", "sequence", "timestamp", "severity", "text").Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query log events: %w", err)
	}
	defer rows.Close()

	var out []LogEvent
	for rows.Next() {
		var (
			e  LogEvent
			ts int64
		)
		if err := rows.Scan(&e.Sequence, &ts, &e.Severity, &e.Text); err != nil {
			return nil, fmt.Errorf("scan log event: %w", err)
		}
		e.Timestamp = fromMillis(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// tally counts answers and correct answers.
var tally = []string{entsql.Count("*"), "COALESCE(" + entsql.Sum("correct") + ", 0)"}

func (r *eventRepo) ConceptAccuracy(ctx context.Context, concept string) (float64, error) {
	query, args := sqlite.Select(tally...).
		From(entsql.Table("answer_events")).
		Where(entsql.EQ("concept", concept)).
		Query()

	var attempts, correct int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&attempts, &correct); err != nil {
		return 0, fmt.Errorf("query concept accuracy: %w", err)
	}
	return ConceptStat{Concept: concept, Attempts: attempts, Correct: correct}.Accuracy(), nil
}

func (r *eventRepo) ConceptStats(ctx context.Context) ([]ConceptStat, error) {
	query, args := sqlite.Select(append([]string{"concept"}, tally...)...).
		From(entsql.Table("answer_events")).
		GroupBy("concept").
		OrderBy("concept").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query concept stats: %w", err)
	}
	defer rows.Close()

	var out []ConceptStat
	for rows.Next() {
		var s ConceptStat
		if err := rows.Scan(&s.Concept, &s.Attempts, &s.Correct); err != nil {
			return nil, fmt.Errorf("scan concept stats: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
