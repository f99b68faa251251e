// internal/snapshot/postgres.go
package snapshot

import (
	"context"
	"fmt"
	"sort"

	"match-engine/internal/common/database"
	"match-engine/internal/common/logger"
	"match-engine/internal/models"
	"match-engine/pkg/registry"
)

const submissionQuery = `
	SELECT user_id, responses
	FROM questionnaire_submissions
	WHERE status = 'submitted'
	ORDER BY user_id`

// PostgresLoader reads the submitted questionnaire population from the
// intake database.
type PostgresLoader struct {
	db     *database.PostgresClient
	parser *Parser
	log    logger.Logger
}

func NewPostgresLoader(db *database.PostgresClient, reg *registry.Registry, log logger.Logger) *PostgresLoader {
	return &PostgresLoader{
		db:     db,
		parser: NewParser(reg, log),
		log:    log,
	}
}

// Load returns every submitted user, sorted by id. A user whose document
// cannot be decoded at all is skipped with a warning instead of failing
// the run.
func (l *PostgresLoader) Load(ctx context.Context) ([]*models.User, error) {
	rows, err := l.db.Query(ctx, submissionQuery)
	if err != nil {
		return nil, fmt.Errorf("loading submissions: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var userID string
		var doc []byte
		if err := rows.Scan(&userID, &doc); err != nil {
			return nil, fmt.Errorf("scanning submission row: %w", err)
		}

		u, err := l.parser.ParseUser(models.UserID(userID), doc)
		if err != nil {
			l.log.Warn("skipping undecodable submission", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
			continue
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading submissions: %w", err)
	}

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	l.log.Info("population snapshot loaded", map[string]interface{}{
		"users": len(users),
	})
	return users, nil
}
