// internal/snapshot/file.go
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"match-engine/internal/common/logger"
	"match-engine/internal/models"
	"match-engine/pkg/registry"
)

// FileLoader reads a population snapshot from a JSON file, used for dry
// runs and tuning comparisons. The file holds an array of submission
// documents in the same wire shape the database stores.
type FileLoader struct {
	path   string
	parser *Parser
	log    logger.Logger
}

func NewFileLoader(path string, reg *registry.Registry, log logger.Logger) *FileLoader {
	return &FileLoader{
		path:   path,
		parser: NewParser(reg, log),
		log:    log,
	}
}

func (l *FileLoader) Load() ([]*models.User, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}

	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("snapshot file %s: %w", l.path, err)
	}

	var users []*models.User
	for i, doc := range docs {
		u, err := l.parser.ParseUser("", doc)
		if err != nil {
			l.log.Warn("skipping undecodable submission", map[string]interface{}{
				"index": i,
				"error": err.Error(),
			})
			continue
		}
		users = append(users, u)
	}

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}
