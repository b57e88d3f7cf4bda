package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/ai-trip-planner/backend/internal/models"
)

type TripRepository struct {
	db *pgxpool.Pool
}

// TripInput содержит снапшоты планирования для сохранения поездки.
// Hotel, Transport и Itinerary опциональны, поездку можно сохранить
// сразу после расчета бюджета.
type TripInput struct {
	UserID    string
	Trip      models.TripRequest
	Budget    models.BudgetAllocation
	Hotel     *models.Hotel
	Transport *models.TransportMode
	Itinerary *models.Itinerary
}

// NewTripRepository создает репозиторий сохраненных поездок.
func NewTripRepository(db *pgxpool.Pool) *TripRepository {
	return &TripRepository{db: db}
}

// Create сохраняет поездку и возвращает ее с серверными полями.
func (r *TripRepository) Create(ctx context.Context, input TripInput) (models.SavedTrip, error) {
	var trip models.SavedTrip

	if input.UserID == "" {
		return trip, ErrInvalid
	}

	columns, err := marshalSnapshots(input)
	if err != nil {
		return trip, err
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO saved_trips (user_id, trip_details, budget, hotel, transport, itinerary)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, user_id, trip_details, budget, hotel, transport, itinerary, created_at, updated_at`,
		input.UserID, columns.trip, columns.budget, columns.hotel, columns.transport, columns.itinerary,
	)

	return scanTrip(row)
}

// Get возвращает поездку по идентификатору.
func (r *TripRepository) Get(ctx context.Context, id uuid.UUID) (models.SavedTrip, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, user_id, trip_details, budget, hotel, transport, itinerary, created_at, updated_at
		 FROM saved_trips
		 WHERE id = $1`,
		id,
	)

	trip, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return trip, ErrNotFound
		}
		return trip, err
	}

	return trip, nil
}

// List возвращает страницу поездок пользователя, свежие первыми, и общее
// число поездок.
func (r *TripRepository) List(ctx context.Context, userID string, page, limit int) ([]models.SavedTrip, int, error) {
	page, limit = NormalizePage(page, limit)
	offset := (page - 1) * limit

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM saved_trips WHERE user_id = $1`,
		userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, trip_details, budget, hotel, transport, itinerary, created_at, updated_at
		 FROM saved_trips
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	trips := make([]models.SavedTrip, 0, limit)
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, 0, err
		}
		trips = append(trips, trip)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return trips, total, nil
}

// Update перезаписывает снапшоты поездки.
func (r *TripRepository) Update(ctx context.Context, id uuid.UUID, input TripInput) (models.SavedTrip, error) {
	var trip models.SavedTrip

	columns, err := marshalSnapshots(input)
	if err != nil {
		return trip, err
	}

	row := r.db.QueryRow(ctx,
		`UPDATE saved_trips
		 SET trip_details = $2, budget = $3, hotel = $4, transport = $5, itinerary = $6, updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, user_id, trip_details, budget, hotel, transport, itinerary, created_at, updated_at`,
		id, columns.trip, columns.budget, columns.hotel, columns.transport, columns.itinerary,
	)

	trip, err = scanTrip(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return trip, ErrNotFound
		}
		return trip, err
	}

	return trip, nil
}

// Delete удаляет поездку.
func (r *TripRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM saved_trips WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// NormalizePage приводит параметры пагинации к допустимым значениям:
// страница не меньше первой, размер в пределах от 1 до 100.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}

type tripColumns struct {
	trip      []byte
	budget    []byte
	hotel     []byte
	transport []byte
	itinerary []byte
}

func marshalSnapshots(input TripInput) (tripColumns, error) {
	var columns tripColumns
	var err error

	if columns.trip, err = json.Marshal(input.Trip); err != nil {
		return columns, fmt.Errorf("marshal trip details: %w", err)
	}
	if columns.budget, err = json.Marshal(input.Budget); err != nil {
		return columns, fmt.Errorf("marshal budget: %w", err)
	}
	if columns.hotel, err = marshalOptional(input.Hotel); err != nil {
		return columns, err
	}
	if columns.transport, err = marshalOptional(input.Transport); err != nil {
		return columns, err
	}
	if columns.itinerary, err = marshalOptional(input.Itinerary); err != nil {
		return columns, err
	}

	return columns, nil
}

// marshalOptional возвращает nil для отсутствующего снапшота, чтобы в
// колонку записался NULL, а не строка "null".
func marshalOptional(value any) ([]byte, error) {
	switch v := value.(type) {
	case *models.Hotel:
		if v == nil {
			return nil, nil
		}
	case *models.TransportMode:
		if v == nil {
			return nil, nil
		}
	case *models.Itinerary:
		if v == nil {
			return nil, nil
		}
	}

	return json.Marshal(value)
}

func scanTrip(row pgx.Row) (models.SavedTrip, error) {
	var trip models.SavedTrip
	var tripJSON, budgetJSON []byte
	var hotelJSON, transportJSON, itineraryJSON []byte

	err := row.Scan(&trip.ID, &trip.UserID, &tripJSON, &budgetJSON, &hotelJSON, &transportJSON, &itineraryJSON, &trip.CreatedAt, &trip.UpdatedAt)
	if err != nil {
		return trip, err
	}

	if err := json.Unmarshal(tripJSON, &trip.Trip); err != nil {
		return trip, fmt.Errorf("unmarshal trip details: %w", err)
	}
	if err := json.Unmarshal(budgetJSON, &trip.Budget); err != nil {
		return trip, fmt.Errorf("unmarshal budget: %w", err)
	}
	if len(hotelJSON) > 0 {
		if err := json.Unmarshal(hotelJSON, &trip.Hotel); err != nil {
			return trip, fmt.Errorf("unmarshal hotel: %w", err)
		}
	}
	if len(transportJSON) > 0 {
		if err := json.Unmarshal(transportJSON, &trip.Transport); err != nil {
			return trip, fmt.Errorf("unmarshal transport: %w", err)
		}
	}
	if len(itineraryJSON) > 0 {
		if err := json.Unmarshal(itineraryJSON, &trip.Itinerary); err != nil {
			return trip, fmt.Errorf("unmarshal itinerary: %w", err)
		}
	}

	return trip, nil
}
