package service

import (
	"context"

	"recipebox/internal/models"
	"recipebox/internal/notifications"
	"recipebox/internal/repository"
	"recipebox/internal/validation"
)

type RateService struct {
	rates  repository.RateRepository
	posts  repository.PostRepository
	events EventPublisher
}

func NewRateService(rates repository.RateRepository, posts repository.PostRepository, events EventPublisher) *RateService {
	return &RateService{rates: rates, posts: posts, events: events}
}

// Summary aggregates the ratings of one of the caller's posts.
func (s *RateService) Summary(ctx context.Context, userID, postID uint) (*models.RateSummary, error) {
	if err := s.posts.Exists(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.rates.Summary(ctx, postID, userID)
}

// Upsert records the caller's rate, replacing any previous one.
func (s *RateService) Upsert(ctx context.Context, userID, postID uint, form Form) (*models.PostRate, error) {
	if err := s.posts.Exists(ctx, userID, postID); err != nil {
		return nil, err
	}

	fe := models.FieldErrors{}
	value, ok := form.Int(fe, "rate", true, false, nil)
	if ok {
		if msg := validation.IntRange(value, models.MinRate, models.MaxRate); msg != "" {
			fe.Add("rate", msg)
		}
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	rate := &models.PostRate{PostID: postID, UserID: userID, Rate: value}
	if err := s.rates.Upsert(ctx, rate); err != nil {
		return nil, err
	}
	publish(ctx, s.events, userID, notifications.Event{
		Type:    notifications.EventRateUpdated,
		Payload: map[string]any{"post": postID, "rate": rate.Rate},
	})
	return rate, nil
}
