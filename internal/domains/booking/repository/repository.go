package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"spacebook/infras/otel"
	"spacebook/infras/postgres"
	"spacebook/internal/domains/booking/model"
	"spacebook/shared"
	"spacebook/shared/constant"
	gDto "spacebook/shared/dto"
	"spacebook/shared/logger"
	gRepo "spacebook/shared/repository"

	"github.com/jmoiron/sqlx"
)

const (
	lockQuery = "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))"

	releaseQuery = `UPDATE bookings
SET status = :released, modified_at = :modified_at, modified_by = :modified_by
WHERE status = :confirmed AND (booking_date + start_time) <= :cutoff
RETURNING id, resource_id, booking_date`

	localTimestampFormat = "2006-01-02 15:04:05"
)

// DateStore reads and writes the bookings of one resource on one date while
// the date lock is held.
type DateStore interface {
	ListActive(ctx context.Context) ([]model.Booking, error)
	Insert(ctx context.Context, booking model.Booking) error
}

type Booking interface {
	Insert(ctx context.Context, model model.Booking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	UpdateAffected(ctx context.Context, mod map[string]any, filter gDto.FilterGroup) (int64, error)
	ListActiveOnDate(ctx context.Context, date time.Time, resourceIDs ...string) ([]model.Booking, error)
	ListActiveForUser(ctx context.Context, userID string, date time.Time) ([]model.Booking, error)
	WithinDateLock(ctx context.Context, resourceID string, date time.Time, fn func(store DateStore) error) error
	ReleaseNoShows(ctx context.Context, cutoff, now time.Time) ([]model.Booking, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// LockKey identifies the advisory lock guarding resourceID on date.
func LockKey(resourceID string, date time.Time) string {
	return shared.BuildCacheKey(model.TableName, resourceID, date.Format(constant.DateOnlyFormat))
}

// ActiveOnDate matches active bookings on date, optionally narrowed by extra filters.
func ActiveOnDate(date time.Time, filters ...any) gDto.FilterGroup {
	return gDto.FilterGroup{}.And(
		gDto.Filter{Field: model.FieldBookingDate, Value: date.Format(constant.DateOnlyFormat), Operator: gDto.FilterOperatorEq, Table: model.TableName},
		gDto.Filter{Field: model.FieldStatus, Value: model.ActiveStatuses, Operator: gDto.FilterOperatorIn, Table: model.TableName},
	).And(filters...)
}

var byStartTime = gDto.QueryParams{SortBy: model.FieldStartTime, SortDir: "ASC"}

func (r *repositoryImpl) ListActiveOnDate(ctx context.Context, date time.Time, resourceIDs ...string) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ListActiveOnDate")
	defer scope.End()

	var filters []any
	if len(resourceIDs) > 0 {
		filters = append(filters, gDto.Filter{Field: model.FieldResourceID, Value: resourceIDs, Operator: gDto.FilterOperatorIn, Table: model.TableName})
	}

	filter := ActiveOnDate(date, filters...)

	return r.GetAll(ctx, byStartTime, filter) //nolint:wrapcheck
}

func (r *repositoryImpl) ListActiveForUser(ctx context.Context, userID string, date time.Time) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ListActiveForUser")
	defer scope.End()

	filter := ActiveOnDate(date, gDto.Filter{Field: model.FieldUserID, Value: userID, Operator: gDto.FilterOperatorEq, Table: model.TableName})

	return r.GetAll(ctx, byStartTime, filter) //nolint:wrapcheck
}

// WithinDateLock runs fn in a write transaction holding the advisory lock for
// (resourceID, date). Writers on the same resource and date are serialized;
// fn's error rolls the transaction back and is returned unchanged.
func (r *repositoryImpl) WithinDateLock(ctx context.Context, resourceID string, date time.Time, fn func(store DateStore) error) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.WithinDateLock")
	defer scope.End()

	key := LockKey(resourceID, date)
	scope.SetAttribute("lock_key", key)

	return r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error { //nolint:wrapcheck
		if _, err := tx.ExecContext(ctx, lockQuery, key); err != nil {
			logger.ErrorWithStack(err)
			scope.TraceError(err)

			return fmt.Errorf("failed to acquire booking lock: %w", err)
		}

		return fn(&txStore{repo: r, tx: tx, resourceID: resourceID, date: date})
	})
}

// ReleaseNoShows marks confirmed bookings whose start is at or before cutoff
// (app-local wall clock) as released at now and returns them.
func (r *repositoryImpl) ReleaseNoShows(ctx context.Context, cutoff, now time.Time) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ReleaseNoShows")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, releaseQuery)

	args := map[string]any{
		"released":    model.StatusReleased,
		"confirmed":   model.StatusConfirmed,
		"cutoff":      cutoff.Format(localTimestampFormat),
		"modified_at": now,
		"modified_by": constant.ContextSystem,
	}

	rows, err := r.db.Write.NamedQueryContext(ctx, releaseQuery, args)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to release bookings: %w", err)
	}
	defer rows.Close()

	released := []model.Booking{}

	for rows.Next() {
		var booking model.Booking
		if err = rows.StructScan(&booking); err != nil {
			return nil, fmt.Errorf("failed to scan released booking: %w", err)
		}

		released = append(released, booking)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read released bookings: %w", err)
	}

	return released, nil
}

type txStore struct {
	repo       *repositoryImpl
	tx         *sqlx.Tx
	resourceID string
	date       time.Time
}

func (s *txStore) ListActive(ctx context.Context) ([]model.Booking, error) {
	filter := ActiveOnDate(s.date, gDto.Filter{Field: model.FieldResourceID, Value: s.resourceID, Operator: gDto.FilterOperatorEq, Table: model.TableName})

	return s.repo.GetAllTx(ctx, s.tx, byStartTime, filter) //nolint:wrapcheck
}

func (s *txStore) Insert(ctx context.Context, booking model.Booking) error {
	if booking.ResourceID != s.resourceID {
		return fmt.Errorf("booking for resource %s inserted under lock of %s", booking.ResourceID, s.resourceID)
	}

	return s.repo.InsertTx(ctx, s.tx, booking) //nolint:wrapcheck
}
