package services

import (
	"errors"
	"fmt"

	"socialgraph/apperrors"
	"socialgraph/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelationshipStore - доступ к ребрам дружбы и заявкам. Все методы принимают
// *gorm.DB, который может быть транзакцией.
type RelationshipStore struct{}

// LockPair блокирует строки обоих профилей (по возрастанию id, чтобы не было
// дедлоков) и заодно проверяет, что они существуют. Все операции над одной парой
// начинаются с этой блокировки и поэтому выполняются по очереди.
func (RelationshipStore) LockPair(tx *gorm.DB, a, b int64) (map[int64]models.Profile, error) {
	var profiles []models.Profile
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", []int64{a, b}).
		Order("id").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock profiles %d, %d: %w", a, b, err)
	}

	byID := make(map[int64]models.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	for _, id := range []int64{a, b} {
		if _, ok := byID[id]; !ok {
			return nil, apperrors.Newf(apperrors.KindNotFound, "profile %d not found", id)
		}
	}
	return byID, nil
}

func (RelationshipStore) EdgeExists(tx *gorm.DB, ownerID, peerID int64) (bool, error) {
	var count int64
	err := tx.Model(&models.FriendshipEdge{}).
		Where("owner_id = ? AND peer_id = ?", ownerID, peerID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check friendship %d->%d: %w", ownerID, peerID, err)
	}
	return count > 0, nil
}

// PendingRequestExists - есть ли неподтвержденная заявка from -> to
func (RelationshipStore) PendingRequestExists(tx *gorm.DB, toID, fromID int64) (bool, error) {
	var count int64
	err := tx.Model(&models.FriendRequest{}).
		Where("to_id = ? AND from_id = ? AND accepted = ?", toID, fromID, false).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check request %d->%d: %w", fromID, toID, err)
	}
	return count > 0, nil
}

func (RelationshipStore) CreateRequest(tx *gorm.DB, toID, fromID int64) error {
	request := &models.FriendRequest{
		ToID:   toID,
		FromID: fromID,
	}
	if err := tx.Create(request).Error; err != nil {
		if isDuplicateKey(err) {
			return apperrors.New(apperrors.KindDuplicateRequest, "friend request already sent")
		}
		return fmt.Errorf("failed to create friend request: %w", err)
	}
	return nil
}

// DeletePendingRequest удаляет одну заявку from -> to
func (RelationshipStore) DeletePendingRequest(tx *gorm.DB, toID, fromID int64) (int64, error) {
	result := tx.Where("to_id = ? AND from_id = ? AND accepted = ?", toID, fromID, false).
		Delete(&models.FriendRequest{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete request %d->%d: %w", fromID, toID, result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteRequests удаляет все заявки между парой в обоих направлениях,
// включая старые строки с accepted = true
func (RelationshipStore) DeleteRequests(tx *gorm.DB, a, b int64) (int64, error) {
	result := tx.Where(
		"(to_id = ? AND from_id = ?) OR (to_id = ? AND from_id = ?)",
		a, b, b, a,
	).Delete(&models.FriendRequest{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete requests between %d and %d: %w", a, b, result.Error)
	}
	return result.RowsAffected, nil
}

// CreateEdgePair создает оба ребра дружбы с пустой историей сообщений
func (RelationshipStore) CreateEdgePair(tx *gorm.DB, a, b int64) error {
	edges := []models.FriendshipEdge{
		{OwnerID: a, PeerID: b},
		{OwnerID: b, PeerID: a},
	}
	if err := tx.Create(&edges).Error; err != nil {
		if isDuplicateKey(err) {
			return apperrors.New(apperrors.KindAlreadyFriends, "already friends")
		}
		return fmt.Errorf("failed to create friendship %d<->%d: %w", a, b, err)
	}
	return nil
}

func (RelationshipStore) DeleteEdgePair(tx *gorm.DB, a, b int64) (int64, error) {
	result := tx.Where(
		"(owner_id = ? AND peer_id = ?) OR (owner_id = ? AND peer_id = ?)",
		a, b, b, a,
	).Delete(&models.FriendshipEdge{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete friendship %d<->%d: %w", a, b, result.Error)
	}
	return result.RowsAffected, nil
}

// AppendMessage дописывает строку в message_log обоих ребер. Возвращает число
// обновленных ребер (2, если дружба цела).
func (RelationshipStore) AppendMessage(tx *gorm.DB, a, b int64, line string) (int64, error) {
	result := tx.Model(&models.FriendshipEdge{}).
		Where("(owner_id = ? AND peer_id = ?) OR (owner_id = ? AND peer_id = ?)", a, b, b, a).
		Update("message_log", gorm.Expr("message_log || ?", line))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to append message %d<->%d: %w", a, b, result.Error)
	}
	return result.RowsAffected, nil
}

// MessageLog возвращает историю ребра owner -> peer; found=false, если ребра нет
func (RelationshipStore) MessageLog(tx *gorm.DB, ownerID, peerID int64) (log string, found bool, err error) {
	var edge models.FriendshipEdge
	err = tx.Select("id", "message_log").
		Where("owner_id = ? AND peer_id = ?", ownerID, peerID).
		Take(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read messages %d->%d: %w", ownerID, peerID, err)
	}
	return edge.MessageLog, true, nil
}

// FriendProfiles - профили, на которые у owner есть ребро дружбы
func (RelationshipStore) FriendProfiles(tx *gorm.DB, ownerID int64) ([]models.ProfileSummary, error) {
	var friends []models.ProfileSummary
	err := tx.Table("profile p").
		Joins("JOIN friendship_edge e ON e.peer_id = p.id").
		Where("e.owner_id = ?", ownerID).
		Select("p.id, p.username").
		Order("p.username").
		Scan(&friends).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get friends of %d: %w", ownerID, err)
	}
	return friends, nil
}

// IncomingRequests - кто отправил заявку профилю me (старые первыми)
func (RelationshipStore) IncomingRequests(tx *gorm.DB, me int64) ([]models.ProfileSummary, error) {
	var requesters []models.ProfileSummary
	err := tx.Table("profile p").
		Joins("JOIN friend_request r ON r.from_id = p.id").
		Where("r.to_id = ? AND r.accepted = ?", me, false).
		Select("p.id, p.username").
		Order("r.created_at, r.id").
		Scan(&requesters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get incoming requests of %d: %w", me, err)
	}
	return requesters, nil
}

// OutgoingRequests - кому me отправил заявку (старые первыми)
func (RelationshipStore) OutgoingRequests(tx *gorm.DB, me int64) ([]models.ProfileSummary, error) {
	var targets []models.ProfileSummary
	err := tx.Table("profile p").
		Joins("JOIN friend_request r ON r.to_id = p.id").
		Where("r.from_id = ? AND r.accepted = ?", me, false).
		Select("p.id, p.username").
		Order("r.created_at, r.id").
		Scan(&targets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get outgoing requests of %d: %w", me, err)
	}
	return targets, nil
}

// isDuplicateKey - нарушение уникального индекса. Требует TranslateError: true
// в конфиге gorm (db.gormConfig).
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
