package db

import (
	"fmt"

	"gorm.io/gorm"
)

// pairConstraints - CHECK-ограничения: ни ребро, ни заявка не могут ссылаться на самого себя
var pairConstraints = []struct {
	table      string
	name       string
	expression string
}{
	{table: "friendship_edge", name: "friendship_edge_not_self", expression: "owner_id <> peer_id"},
	{table: "friend_request", name: "friend_request_not_self", expression: "to_id <> from_id"},
}

// CreatePairConstraints добавляет CHECK-ограничения, если их еще нет (только PostgreSQL)
func CreatePairConstraints(db *gorm.DB) error {
	for _, c := range pairConstraints {
		createConstraintSQL := fmt.Sprintf(`
		DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
				ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);
			END IF;
		END
		$$;
		`, c.name, c.table, c.name, c.expression)
		if err := db.Exec(createConstraintSQL).Error; err != nil {
			return fmt.Errorf("failed to create constraint %s: %w", c.name, err)
		}
	}
	return nil
}
