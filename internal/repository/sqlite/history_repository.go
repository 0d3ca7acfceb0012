package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/vytor/upsimu/internal/logger"
	"github.com/vytor/upsimu/internal/models"
	"github.com/vytor/upsimu/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

const defaultHistoryLimit = 50

type historyRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository implementation
func NewHistoryRepository(db *sql.DB) repository.HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Insert(ctx context.Context, rec models.AttemptRecord) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("history_repo")
	log.Debug("archiving attempt: attempt_id=%s scenario=%s stars=%.1f", rec.AttemptID, rec.ScenarioID, rec.Stars)

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query, args, err := sqlBuilder.Insert("attempt_history").
		Columns("profile_id", "scenario_id", "attempt_uuid", "stars", "transcript", "feedback", "off_topic", "turns", "created_at").
		Values(rec.ProfileID, rec.ScenarioID, rec.AttemptID, rec.Stars, rec.Transcript, rec.Feedback, rec.OffTopic, rec.Turns, createdAt.UTC()).
		Suffix("ON CONFLICT(attempt_uuid) DO NOTHING").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to insert attempt history: %v", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		log.Debug("attempt %s already archived", rec.AttemptID)
		var id int64
		err := r.db.QueryRowContext(ctx, `SELECT id FROM attempt_history WHERE attempt_uuid = ?`, rec.AttemptID).Scan(&id)
		return id, err
	}
	return res.LastInsertId()
}

func applyHistoryFilter(q squirrel.SelectBuilder, filter models.HistoryFilter) squirrel.SelectBuilder {
	if filter.ProfileID != 0 {
		q = q.Where(squirrel.Eq{"profile_id": filter.ProfileID})
	}
	if filter.ScenarioID != "" {
		q = q.Where(squirrel.Eq{"scenario_id": filter.ScenarioID})
	}
	if filter.MinStars != nil {
		q = q.Where(squirrel.GtOrEq{"stars": *filter.MinStars})
	}
	if filter.OffTopic != nil {
		q = q.Where(squirrel.Eq{"off_topic": *filter.OffTopic})
	}
	return q
}

func (r *historyRepository) List(ctx context.Context, filter models.HistoryFilter) ([]models.AttemptRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("history_repo")
	log.Debug("listing history: profile_id=%d scenario=%s", filter.ProfileID, filter.ScenarioID)

	query := applyHistoryFilter(sqlBuilder.Select(
		"id", "profile_id", "scenario_id", "attempt_uuid", "stars", "transcript",
		"feedback", "off_topic", "turns", "created_at",
	).From("attempt_history"), filter)

	orderDir := "DESC"
	if filter.OrderDir == "ASC" {
		orderDir = "ASC"
	}
	query = query.OrderBy("created_at "+orderDir, "id "+orderDir)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list history: %v", err)
		return nil, err
	}
	defer rows.Close()

	records := []models.AttemptRecord{}
	for rows.Next() {
		var rec models.AttemptRecord
		if err := rows.Scan(&rec.ID, &rec.ProfileID, &rec.ScenarioID, &rec.AttemptID, &rec.Stars, &rec.Transcript,
			&rec.Feedback, &rec.OffTopic, &rec.Turns, &rec.CreatedAt); err != nil {
			log.Error("failed to scan history row: %v", err)
			return nil, err
		}
		records = append(records, rec)
	}
	log.Debug("found %d history records", len(records))
	return records, rows.Err()
}

func (r *historyRepository) Count(ctx context.Context, filter models.HistoryFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("history_repo")

	sqlStr, args, err := applyHistoryFilter(sqlBuilder.Select("COUNT(*)").From("attempt_history"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count history: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *historyRepository) BestScores(ctx context.Context, profileID int64) ([]models.BestScore, error) {
	log := logger.FromContext(ctx).WithPrefix("history_repo")
	log.Debug("getting best scores: profile_id=%d", profileID)

	rows, err := r.db.QueryContext(ctx, `
SELECT scenario_id, MAX(stars), COUNT(*)
FROM attempt_history
WHERE profile_id = ?
GROUP BY scenario_id
ORDER BY scenario_id ASC
`, profileID)
	if err != nil {
		log.Error("failed to get best scores: %v", err)
		return nil, err
	}
	defer rows.Close()

	scores := []models.BestScore{}
	for rows.Next() {
		var s models.BestScore
		if err := rows.Scan(&s.ScenarioID, &s.BestStars, &s.Attempts); err != nil {
			log.Error("failed to scan best score row: %v", err)
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

func (r *historyRepository) DeleteForProfile(ctx context.Context, profileID int64) error {
	log := logger.FromContext(ctx).WithPrefix("history_repo")
	log.Debug("deleting history: profile_id=%d", profileID)

	_, err := r.db.ExecContext(ctx, `DELETE FROM attempt_history WHERE profile_id = ?`, profileID)
	if err != nil {
		log.Error("failed to delete history: %v", err)
	}
	return err
}
