package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"socialgraph/apperrors"
	"socialgraph/db"
	"socialgraph/logger"
	"socialgraph/models"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

const messageTimeLayout = "2006-01-02 15:04:05"

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// MessageService - переписка между друзьями. История хранится строками
// в message_log каждого из двух ребер дружбы.
type MessageService struct {
	db        *gorm.DB
	store     RelationshipStore
	publisher Publisher
	policy    *bluemonday.Policy
	now       func() time.Time
}

func NewMessageService(db *gorm.DB, publisher Publisher) *MessageService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &MessageService{
		db:        db,
		publisher: publisher,
		policy:    bluemonday.StrictPolicy(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// sanitize убирает теги и переводы строк: одно сообщение - одна строка истории.
// Sanitize экранирует текст, а храним мы обычный текст, поэтому экранирование снимаем.
func (s *MessageService) sanitize(text string) string {
	clean := html.UnescapeString(s.policy.Sanitize(text))
	clean = lineBreaks.Replace(clean)
	return strings.TrimSpace(clean)
}

// PostMessage дописывает сообщение в историю обоих ребер пары
func (s *MessageService) PostMessage(ctx context.Context, me, friend int64, text string) (string, error) {
	if err := requireCaller(me); err != nil {
		return "", err
	}
	// лимит проверяем по тексту, который попадет в историю
	text = s.sanitize(text)
	if err := validateStruct(messageInput{Text: text}); err != nil {
		return "", err
	}
	if me == friend {
		return "", apperrors.New(apperrors.KindNotFriends, "cannot post a message to yourself")
	}

	var username string
	err := db.WriteDB(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		pair, err := s.store.LockPair(tx, me, friend)
		if err != nil {
			return err
		}
		username = pair[friend].Username

		line := fmt.Sprintf("%s|%s: %s\n", s.now().Format(messageTimeLayout), pair[me].Username, text)
		updated, err := s.store.AppendMessage(tx, me, friend, line)
		if err != nil {
			return err
		}
		if updated != 2 {
			// одно ребро без второго - нарушение симметрии, откатываем
			return apperrors.Newf(apperrors.KindNotFriends, "user %s is not in your friends list", username)
		}
		return nil
	})
	if err != nil {
		return "", asInternal(err)
	}

	logger.Debug("Message posted", "profile_id", me, "friend_id", friend)
	publishEvent(ctx, s.publisher, EventMessagePosted, me, friend)
	return fmt.Sprintf("Message sent to %s", username), nil
}

// ListMessages - история переписки me с friend, старые сообщения первыми
func (s *MessageService) ListMessages(ctx context.Context, me, friend int64) ([]string, error) {
	if err := requireCaller(me); err != nil {
		return nil, err
	}
	if me == friend {
		return nil, apperrors.New(apperrors.KindNotFriends, "there are no messages with yourself")
	}

	read := db.ReadOnlyDB(ctx, s.db)
	var profile models.Profile
	if err := read.Select("id").Where("id = ?", friend).Take(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound, "profile %d not found", friend)
		}
		return nil, asInternal(err)
	}

	log, found, err := s.store.MessageLog(read, me, friend)
	if err != nil {
		return nil, asInternal(err)
	}
	if !found {
		return nil, apperrors.Newf(apperrors.KindNotFriends, "profile %d is not in your friends list", friend)
	}
	return splitMessageLog(log), nil
}

func splitMessageLog(log string) []string {
	messages := []string{}
	for _, line := range strings.Split(log, "\n") {
		if line != "" {
			messages = append(messages, line)
		}
	}
	return messages
}
