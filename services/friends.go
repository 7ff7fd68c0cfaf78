package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"socialgraph/apperrors"
	"socialgraph/db"
	"socialgraph/logger"
	"socialgraph/models"

	"gorm.io/gorm"
)

const (
	ChoiceAccept    = "accept"
	ChoiceNotAccept = "not_accept"
)

// FriendService - переходы состояний дружбы. Каждая мутация - одна транзакция,
// которая начинается с блокировки обоих профилей.
type FriendService struct {
	db        *gorm.DB
	profiles  *ProfileService
	store     RelationshipStore
	resolver  StatusResolver
	publisher Publisher
}

// NewFriendService: publisher может быть nil, тогда события не отправляются
func NewFriendService(db *gorm.DB, profiles *ProfileService, publisher Publisher) *FriendService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	store := RelationshipStore{}
	return &FriendService{
		db:        db,
		profiles:  profiles,
		store:     store,
		resolver:  StatusResolver{store: store},
		publisher: publisher,
	}
}

func (s *FriendService) readDB(ctx context.Context) *gorm.DB {
	return db.ReadOnlyDB(ctx, s.db)
}

// inPairTx выполняет fn в транзакции на мастере, предварительно заблокировав пару
func (s *FriendService) inPairTx(ctx context.Context, a, b int64, fn func(tx *gorm.DB, pair map[int64]models.Profile) error) error {
	return db.WriteDB(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		pair, err := s.store.LockPair(tx, a, b)
		if err != nil {
			return err
		}
		return fn(tx, pair)
	})
}

// GetFriends - профиль и список друзей
func (s *FriendService) GetFriends(ctx context.Context, me int64) (*models.FriendsResponse, error) {
	if err := requireCaller(me); err != nil {
		return nil, err
	}
	profile, err := s.profiles.Get(ctx, me)
	if err != nil {
		return nil, err
	}

	friends, err := s.store.FriendProfiles(s.readDB(ctx), me)
	if err != nil {
		return nil, asInternal(err)
	}
	if friends == nil {
		friends = []models.ProfileSummary{}
	}
	return &models.FriendsResponse{User: profile.Summary(), Friends: friends}, nil
}

// GetStatus - статус отношений me с other
func (s *FriendService) GetStatus(ctx context.Context, me, other int64) (*models.StatusResponse, error) {
	if err := requireCaller(me); err != nil {
		return nil, err
	}
	if _, err := s.profiles.Get(ctx, me); err != nil {
		return nil, err
	}
	target, err := s.profiles.Get(ctx, other)
	if err != nil {
		return nil, err
	}

	status, err := s.resolver.Resolve(s.readDB(ctx), me, other)
	if err != nil {
		return nil, asInternal(err)
	}
	return &models.StatusResponse{Username: target.Username, Status: status}, nil
}

// ListRequests - входящие и исходящие заявки
func (s *FriendService) ListRequests(ctx context.Context, me int64) (*models.RequestsResponse, error) {
	if err := requireCaller(me); err != nil {
		return nil, err
	}
	profile, err := s.profiles.Get(ctx, me)
	if err != nil {
		return nil, err
	}

	read := s.readDB(ctx)
	incoming, err := s.store.IncomingRequests(read, me)
	if err != nil {
		return nil, asInternal(err)
	}
	outgoing, err := s.store.OutgoingRequests(read, me)
	if err != nil {
		return nil, asInternal(err)
	}
	if incoming == nil {
		incoming = []models.ProfileSummary{}
	}
	if outgoing == nil {
		outgoing = []models.ProfileSummary{}
	}
	return &models.RequestsResponse{Username: profile.Username, Incoming: incoming, Outgoing: outgoing}, nil
}

// RequestStatus - текстовое описание состояния заявки между me и other
func (s *FriendService) RequestStatus(ctx context.Context, me, other int64) (string, error) {
	status, err := s.GetStatus(ctx, me, other)
	if err != nil {
		return "", err
	}

	switch status.Status {
	case models.StatusSelf:
		return "It is your own profile", nil
	case models.StatusFriends:
		return fmt.Sprintf("You are already friends with %s", status.Username), nil
	case models.StatusIncoming:
		return fmt.Sprintf("User %s wants to add you as a friend", status.Username), nil
	case models.StatusOutgoing:
		return fmt.Sprintf("Friend request to user %s is pending", status.Username), nil
	default:
		return fmt.Sprintf("Request to friend user %s", status.Username), nil
	}
}

// SendRequest отправляет заявку пользователю targetUsername. Если он уже
// отправил заявку нам, заявки схлопываются и дружба создается сразу.
func (s *FriendService) SendRequest(ctx context.Context, me int64, targetUsername string) (*models.SendRequestResult, error) {
	if err := requireCaller(me); err != nil {
		return nil, err
	}
	target, err := s.profiles.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if target.ID == me {
		return nil, apperrors.New(apperrors.KindInvalidTarget, "cannot send a friend request to yourself")
	}

	var outcome models.RequestOutcome
	err = s.inPairTx(ctx, me, target.ID, func(tx *gorm.DB, _ map[int64]models.Profile) error {
		status, err := s.resolver.Resolve(tx, me, target.ID)
		if err != nil {
			return err
		}

		switch status {
		case models.StatusFriends:
			return apperrors.Newf(apperrors.KindAlreadyFriends, "user %s is already your friend", target.Username)
		case models.StatusOutgoing:
			return apperrors.Newf(apperrors.KindDuplicateRequest, "friend request to user %s already sent", target.Username)
		case models.StatusIncoming:
			outcome = models.OutcomeAccepted
			return s.acceptLocked(tx, me, target.ID)
		default:
			outcome = models.OutcomeSent
			return s.store.CreateRequest(tx, target.ID, me)
		}
	})
	if err != nil {
		return nil, asInternal(err)
	}

	if outcome == models.OutcomeAccepted {
		logger.Info("Crossing friend requests auto-accepted", "profile_id", me, "target_id", target.ID)
		publishEvent(ctx, s.publisher, EventRequestAccepted, me, target.ID)
		return &models.SendRequestResult{
			Message: fmt.Sprintf("User %s added to friends", target.Username),
			Outcome: outcome,
		}, nil
	}

	logger.Info("Friend request sent", "profile_id", me, "target_id", target.ID)
	publishEvent(ctx, s.publisher, EventRequestSent, me, target.ID)
	return &models.SendRequestResult{
		Message: fmt.Sprintf("A friend request has been sent to user %s", target.Username),
		Outcome: outcome,
	}, nil
}

// AcceptRequest принимает заявку requester -> me
func (s *FriendService) AcceptRequest(ctx context.Context, me, requester int64) (string, error) {
	if err := requireCaller(me); err != nil {
		return "", err
	}
	if me == requester {
		return "", apperrors.New(apperrors.KindInvalidTarget, "cannot accept a request from yourself")
	}

	var username string
	err := s.inPairTx(ctx, me, requester, func(tx *gorm.DB, pair map[int64]models.Profile) error {
		username = pair[requester].Username
		return s.acceptLocked(tx, me, requester)
	})
	if err != nil {
		return "", asInternal(err)
	}

	logger.Info("Friend request accepted", "profile_id", me, "requester_id", requester)
	publishEvent(ctx, s.publisher, EventRequestAccepted, me, requester)
	return fmt.Sprintf("You have accepted the friend request from %s", username), nil
}

// acceptLocked - принятие заявки внутри транзакции с заблокированной парой.
// Строки заявок удаляются, а не помечаются accepted.
func (s *FriendService) acceptLocked(tx *gorm.DB, me, requester int64) error {
	status, err := s.resolver.Resolve(tx, me, requester)
	if err != nil {
		return err
	}
	if status == models.StatusFriends {
		return apperrors.New(apperrors.KindAlreadyFriends, "already friends")
	}
	if status != models.StatusIncoming {
		return apperrors.Newf(apperrors.KindNoSuchRequest, "no pending friend request from profile %d", requester)
	}

	if _, err := s.store.DeleteRequests(tx, me, requester); err != nil {
		return err
	}
	return s.store.CreateEdgePair(tx, me, requester)
}

// DeclineRequest отклоняет заявку requester -> me и удаляет встречную, если она есть
func (s *FriendService) DeclineRequest(ctx context.Context, me, requester int64) (string, error) {
	if err := requireCaller(me); err != nil {
		return "", err
	}
	if me == requester {
		return "", apperrors.New(apperrors.KindInvalidTarget, "cannot decline a request from yourself")
	}

	var username string
	err := s.inPairTx(ctx, me, requester, func(tx *gorm.DB, pair map[int64]models.Profile) error {
		username = pair[requester].Username
		status, err := s.resolver.Resolve(tx, me, requester)
		if err != nil {
			return err
		}
		if status != models.StatusIncoming {
			return apperrors.Newf(apperrors.KindNoSuchRequest, "no pending friend request from user %s", username)
		}
		_, err = s.store.DeleteRequests(tx, me, requester)
		return err
	})
	if err != nil {
		return "", asInternal(err)
	}

	logger.Info("Friend request declined", "profile_id", me, "requester_id", requester)
	publishEvent(ctx, s.publisher, EventRequestDeclined, me, requester)
	return fmt.Sprintf("You have not accepted the friend request from %s", username), nil
}

// RespondRequest - ответ на заявку: accept или not_accept
func (s *FriendService) RespondRequest(ctx context.Context, me, other int64, choice string) (string, error) {
	switch strings.TrimSpace(choice) {
	case ChoiceAccept:
		return s.AcceptRequest(ctx, me, other)
	case ChoiceNotAccept:
		return s.DeclineRequest(ctx, me, other)
	default:
		return "", apperrors.Newf(apperrors.KindInvalidInput, "choice must be %q or %q", ChoiceAccept, ChoiceNotAccept)
	}
}

// RemoveFriend удаляет оба ребра дружбы и все заявки между парой
func (s *FriendService) RemoveFriend(ctx context.Context, me, other int64) (string, error) {
	if me == other {
		return "", apperrors.New(apperrors.KindInvalidTarget, "cannot remove yourself from friends")
	}
	if err := requireCaller(me); err != nil {
		return "", err
	}

	var username string
	err := s.inPairTx(ctx, me, other, func(tx *gorm.DB, pair map[int64]models.Profile) error {
		username = pair[other].Username
		friends, err := s.store.EdgeExists(tx, me, other)
		if err != nil {
			return err
		}
		if !friends {
			return apperrors.Newf(apperrors.KindNotFriends, "user %s is not in your friends list", username)
		}
		if _, err := s.store.DeleteEdgePair(tx, me, other); err != nil {
			return err
		}
		// остатки заявок не должны мешать будущей заявке
		_, err = s.store.DeleteRequests(tx, me, other)
		return err
	})
	if err != nil {
		return "", asInternal(err)
	}

	logger.Info("Friend removed", "profile_id", me, "friend_id", other)
	publishEvent(ctx, s.publisher, EventFriendRemoved, me, other)
	return fmt.Sprintf("User %s was deleted from your friends list", username), nil
}

// asInternal оставляет типизированные ошибки как есть, остальное - KindInternal
func asInternal(err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	logger.Error("Store operation failed", "error", err)
	return apperrors.Wrap(err, apperrors.KindInternal, "store operation failed")
}
