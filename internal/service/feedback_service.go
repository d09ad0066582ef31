package service

import (
	"context"
	"strings"
	"time"

	"jobby-api/internal/domain"
	"jobby-api/internal/repository"
)

// FeedbackInput is the caller supplied part of a new feedback record.
type FeedbackInput struct {
	Username string
	Email    string
	Message  string
}

// FeedbackService manages user feedback.
type FeedbackService interface {
	Create(ctx context.Context, in FeedbackInput) (*domain.Feedback, error)
	Get(ctx context.Context, id string) (*domain.Feedback, error)
	List(ctx context.Context) ([]domain.Feedback, error)
	Update(ctx context.Context, id string, update domain.FeedbackUpdate) (*domain.Feedback, error)
	Delete(ctx context.Context, id string) (*domain.Feedback, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type feedbackService struct {
	feedback repository.FeedbackRepository
	now      func() time.Time
}

func NewFeedbackService(feedback repository.FeedbackRepository) FeedbackService {
	return &feedbackService{
		feedback: feedback,
		now:      time.Now,
	}
}

func (s *feedbackService) Create(ctx context.Context, in FeedbackInput) (*domain.Feedback, error) {
	fb := &domain.Feedback{
		Username:  strings.TrimSpace(in.Username),
		Email:     strings.TrimSpace(in.Email),
		Message:   strings.TrimSpace(in.Message),
		CreatedAt: s.now().UTC(),
	}
	if fb.Username == "" {
		return nil, invalidInput("username is required")
	}
	if fb.Message == "" {
		return nil, invalidInput("message is required")
	}

	if _, err := s.feedback.Create(ctx, fb); err != nil {
		return nil, err
	}
	return fb, nil
}

func (s *feedbackService) Get(ctx context.Context, id string) (*domain.Feedback, error) {
	fb, err := s.feedback.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return fb, nil
}

func (s *feedbackService) List(ctx context.Context) ([]domain.Feedback, error) {
	return s.feedback.List(ctx)
}

func (s *feedbackService) Update(ctx context.Context, id string, update domain.FeedbackUpdate) (*domain.Feedback, error) {
	if update.Message == nil && update.Email == nil {
		return nil, invalidInput("nothing to update")
	}
	if update.Message != nil {
		msg := strings.TrimSpace(*update.Message)
		if msg == "" {
			return nil, invalidInput("message must not be empty")
		}
		update.Message = &msg
	}
	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		update.Email = &email
	}

	fb, err := s.feedback.Update(ctx, id, update)
	if err != nil {
		return nil, notFound(err)
	}
	return fb, nil
}

func (s *feedbackService) Delete(ctx context.Context, id string) (*domain.Feedback, error) {
	fb, err := s.feedback.Delete(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return fb, nil
}

func (s *feedbackService) DeleteAll(ctx context.Context) (int64, error) {
	return s.feedback.DeleteAll(ctx)
}
