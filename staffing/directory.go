package staffing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/warp/staffing-engine/generic"
)

// Directory is the write path for master data and calendar events. Every
// write publishes a change so cached analytics are recomputed.
type Directory struct {
	store    generic.TxStore
	notifier *Notifier
	logger   *slog.Logger
}

func NewDirectory(store generic.TxStore, notifier *Notifier, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{store: store, notifier: notifier, logger: logger.With("component", "directory")}
}

// SaveResource creates (Version 0) or updates (current Version) a resource.
func (d *Directory) SaveResource(ctx context.Context, r generic.Resource) (generic.Resource, error) {
	if r.ID == "" {
		return generic.Resource{}, fmt.Errorf("resource: %w", generic.ErrMissingID)
	}
	if r.MaxStaffingPercentage < 0 {
		return generic.Resource{}, &generic.InvalidPercentageError{Value: r.MaxStaffingPercentage}
	}
	if _, err := d.store.GetRole(ctx, r.RoleID); err != nil {
		return generic.Resource{}, fmt.Errorf("resource %s: %w", r.ID, err)
	}
	saved, err := d.store.SaveResource(ctx, r)
	if err != nil {
		return generic.Resource{}, err
	}
	d.logger.Info("resource saved", "resource", saved.ID, "version", saved.Version)
	d.notifier.Publish(ChangeEvent{Kind: MasterDataChanged, ResourceID: saved.ID})
	return saved, nil
}

// SaveRole creates or updates a role. Use CostRateResolver.ChangeRoleCost
// to move the daily cost with history.
func (d *Directory) SaveRole(ctx context.Context, r generic.Role) (generic.Role, error) {
	if r.ID == "" {
		return generic.Role{}, fmt.Errorf("role: %w", generic.ErrMissingID)
	}
	if r.DailyCost.IsNegative() {
		return generic.Role{}, fmt.Errorf("%w: role %s has a negative daily cost", generic.ErrInvalidCostHistory, r.ID)
	}
	saved, err := d.store.SaveRole(ctx, r)
	if err != nil {
		return generic.Role{}, err
	}
	d.logger.Info("role saved", "role", saved.ID, "version", saved.Version)
	d.notifier.Publish(ChangeEvent{Kind: MasterDataChanged, RoleID: saved.ID})
	return saved, nil
}

func (d *Directory) SaveProject(ctx context.Context, p generic.Project) (generic.Project, error) {
	if p.ID == "" {
		return generic.Project{}, fmt.Errorf("project: %w", generic.ErrMissingID)
	}
	saved, err := d.store.SaveProject(ctx, p)
	if err != nil {
		return generic.Project{}, err
	}
	d.logger.Info("project saved", "project", saved.ID, "version", saved.Version)
	d.notifier.Publish(ChangeEvent{Kind: MasterDataChanged})
	return saved, nil
}

func (d *Directory) SetSkills(ctx context.Context, resourceID generic.ResourceID, skills []generic.SkillID) error {
	if _, err := d.store.GetResource(ctx, resourceID); err != nil {
		return err
	}
	if err := d.store.SetSkills(ctx, resourceID, skills); err != nil {
		return err
	}
	d.notifier.Publish(ChangeEvent{Kind: MasterDataChanged, ResourceID: resourceID})
	return nil
}

// AddCalendarEvent stores e, assigning an id when it has none.
func (d *Directory) AddCalendarEvent(ctx context.Context, e generic.CalendarEvent) (generic.CalendarEvent, error) {
	if err := ValidateCalendarEvent(e); err != nil {
		return generic.CalendarEvent{}, err
	}
	if e.Type != generic.LocalHoliday {
		e.Location = ""
	}
	if e.ID == "" {
		e.ID = generic.CalendarEventID(uuid.NewString())
	}
	if err := d.store.SaveCalendarEvent(ctx, e); err != nil {
		return generic.CalendarEvent{}, err
	}
	d.logger.Info("calendar event saved", "event", e.ID, "date", e.Date.String(), "type", e.Type)
	d.notifier.Publish(ChangeEvent{Kind: CalendarChanged})
	return e, nil
}

func (d *Directory) RemoveCalendarEvent(ctx context.Context, id generic.CalendarEventID) error {
	if err := d.store.DeleteCalendarEvent(ctx, id); err != nil {
		return err
	}
	d.notifier.Publish(ChangeEvent{Kind: CalendarChanged})
	return nil
}

func (d *Directory) CalendarEvents(ctx context.Context, start, end generic.Date) ([]generic.CalendarEvent, error) {
	r := generic.NewDateRange(start, end)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return d.store.ListCalendarEvents(ctx, r)
}

// IsWorkingDay answers for one date and location, with the blocking rule
// when it is not a working day.
func (d *Directory) IsWorkingDay(ctx context.Context, date generic.Date, location generic.Location) (bool, string, error) {
	cal, err := LoadCalendar(ctx, d.store, generic.NewDateRange(date, date))
	if err != nil {
		return false, "", err
	}
	reason := cal.NonWorkingReason(date, location)
	return reason == "", reason, nil
}
