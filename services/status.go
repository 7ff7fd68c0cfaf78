package services

import (
	"socialgraph/models"

	"gorm.io/gorm"
)

// StatusResolver вычисляет статус пары. Порядок проверок важен: первая
// сработавшая побеждает, независимых флагов нет.
type StatusResolver struct {
	store RelationshipStore
}

// Resolve не меняет данных. Внутри мутаций tx - транзакция с заблокированной
// парой, для обычного запроса статуса - реплика.
func (r StatusResolver) Resolve(tx *gorm.DB, me, other int64) (models.RelationshipStatus, error) {
	if me == other {
		return models.StatusSelf, nil
	}

	friends, err := r.store.EdgeExists(tx, me, other)
	if err != nil {
		return "", err
	}
	if friends {
		return models.StatusFriends, nil
	}

	incoming, err := r.store.PendingRequestExists(tx, me, other)
	if err != nil {
		return "", err
	}
	if incoming {
		return models.StatusIncoming, nil
	}

	outgoing, err := r.store.PendingRequestExists(tx, other, me)
	if err != nil {
		return "", err
	}
	if outgoing {
		return models.StatusOutgoing, nil
	}

	return models.StatusNone, nil
}
