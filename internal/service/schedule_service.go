package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"schedule-service/internal/entity"
	"schedule-service/internal/repository"
)

var (
	ErrValidation = errors.New("missing required field")
	ErrNotFound   = errors.New("schedule not found")
)

// EventWriter is the subset of kafka.Writer used to publish schedule events.
type EventWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// ScheduleService is a service that provides schedule-related operations
type ScheduleService struct {
	repo   repository.ScheduleRepository
	events EventWriter
}

// NewScheduleService creates a new instance of ScheduleService. events may be
// nil, which disables event publishing.
func NewScheduleService(repo repository.ScheduleRepository, events EventWriter) *ScheduleService {
	return &ScheduleService{repo: repo, events: events}
}

// CreateSchedule creates a new schedule owned by ownerID.
func (s *ScheduleService) CreateSchedule(ctx context.Context, ownerID int, title, date string) (*entity.Schedule, error) {
	if title == "" || date == "" {
		return nil, ErrValidation
	}

	schedule := &entity.Schedule{UserID: ownerID, Title: title, Date: date}
	created, err := s.repo.CreateSchedule(ctx, schedule)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating schedule")
		return nil, err
	}

	s.publishScheduleEvent(ctx, created, "created")

	return created, nil
}

// ListSchedules returns the caller's own schedules in storage order.
func (s *ScheduleService) ListSchedules(ctx context.Context, ownerID int) ([]entity.Schedule, error) {
	schedules, err := s.repo.ListByUser(ctx, ownerID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error listing schedules for user %d", ownerID)
		return nil, err
	}
	return schedules, nil
}

// DeleteSchedule removes the schedule if it exists and belongs to ownerID.
// Someone else's schedule is reported as not found.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, ownerID, id int) error {
	removed, err := s.repo.DeleteSchedule(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		logger.Error().Err(err).Msgf("Error deleting schedule %d", id)
		return err
	}

	s.publishScheduleEvent(ctx, removed, "deleted")

	return nil
}

// ListForUser returns targetUserID's schedules for any authenticated caller.
// Ownership is deliberately not checked here.
func (s *ScheduleService) ListForUser(ctx context.Context, targetUserID int) ([]entity.Schedule, error) {
	schedules, err := s.repo.ListByUser(ctx, targetUserID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error listing schedules for user %d", targetUserID)
		return nil, err
	}
	return schedules, nil
}

// publishScheduleEvent emits a schedule event with the full record. The
// mutation has already been persisted, so a publish failure is logged and
// swallowed.
func (s *ScheduleService) publishScheduleEvent(ctx context.Context, schedule *entity.Schedule, key string) {
	if s.events == nil {
		return
	}

	scheduleJSON, err := json.Marshal(schedule)
	if err != nil {
		logger.Error().Err(err).Msg("Error encoding schedule event")
		return
	}

	// schedule-created-1 or schedule-deleted-1
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("schedule-%s-%d", key, schedule.ID)),
		Value: scheduleJSON,
	}

	if err := s.events.WriteMessages(ctx, msg); err != nil {
		logger.Error().Err(err).Msgf("Error publishing schedule %s event", key)
	}
}
