package repository

import (
	"context"

	"schedule-service/internal/entity"
	"schedule-service/internal/storage"
)

type ScheduleRepository struct {
	store *storage.Store
}

func NewScheduleRepository(store *storage.Store) *ScheduleRepository {
	return &ScheduleRepository{store}
}

// CreateSchedule assigns the next id and appends the schedule.
func (r *ScheduleRepository) CreateSchedule(ctx context.Context, schedule *entity.Schedule) (*entity.Schedule, error) {
	err := r.store.Update(storage.Schedules, func() error {
		var schedules []entity.Schedule
		if err := r.store.Load(storage.Schedules, &schedules); err != nil {
			return err
		}
		id, err := r.store.NextID(storage.Schedules)
		if err != nil {
			return err
		}
		schedule.ID = id
		schedules = append(schedules, *schedule)
		return r.store.Save(storage.Schedules, schedules)
	})
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

// ListByUser returns every schedule owned by userID in storage order.
// The result is never nil so it serializes as an empty JSON array.
func (r *ScheduleRepository) ListByUser(ctx context.Context, userID int) ([]entity.Schedule, error) {
	result := make([]entity.Schedule, 0)
	err := r.store.Update(storage.Schedules, func() error {
		var schedules []entity.Schedule
		if err := r.store.Load(storage.Schedules, &schedules); err != nil {
			return err
		}
		for _, s := range schedules {
			if s.UserID == userID {
				result = append(result, s)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteSchedule removes the schedule with that id if it belongs to userID
// and returns the removed record. A schedule owned by someone else is
// ErrNotFound, not forbidden.
func (r *ScheduleRepository) DeleteSchedule(ctx context.Context, userID, id int) (*entity.Schedule, error) {
	var removed *entity.Schedule
	err := r.store.Update(storage.Schedules, func() error {
		var schedules []entity.Schedule
		if err := r.store.Load(storage.Schedules, &schedules); err != nil {
			return err
		}
		for i, s := range schedules {
			if s.ID == id && s.UserID == userID {
				schedules = append(schedules[:i], schedules[i+1:]...)
				if err := r.store.Save(storage.Schedules, schedules); err != nil {
					return err
				}
				removed = &s
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
