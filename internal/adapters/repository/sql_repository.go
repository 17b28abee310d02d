package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/IANDYI/maternal-care-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

// Options tunes the circuit breakers and retry loop of SQLRepository
type Options struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}

// DefaultOptions returns the production resilience settings
func DefaultOptions() Options {
	return Options{
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		MaxRetries:  3,
		RetryDelay:  1 * time.Second,
	}
}

// SQLRepository implements SymptomRepository, ContactRepository and
// DoctorRepository using PostgreSQL.
// Includes retry logic and a circuit breaker per table.
type SQLRepository struct {
	db         *sql.DB
	symptomCB  *gobreaker.CircuitBreaker
	contactCB  *gobreaker.CircuitBreaker
	doctorCB   *gobreaker.CircuitBreaker
	maxRetries int
	retryDelay time.Duration
}

var (
	_ ports.SymptomRepository = (*SQLRepository)(nil)
	_ ports.ContactRepository = (*SQLRepository)(nil)
	_ ports.DoctorRepository  = (*SQLRepository)(nil)
)

// NewSQLRepository creates a new PostgreSQL repository with circuit breakers
func NewSQLRepository(db *sql.DB, opts Options) *SQLRepository {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 1
	}

	breaker := func(name string) *gobreaker.CircuitBreaker {
		return gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: opts.MaxRequests,
			Interval:    opts.Interval,
			Timeout:     opts.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
			// A missing row is an answer, not a database failure
			IsSuccessful: func(err error) bool {
				return err == nil || isPermanent(err)
			},
		})
	}

	return &SQLRepository{
		db:         db,
		symptomCB:  breaker("symptom_entries"),
		contactCB:  breaker("emergency_contacts"),
		doctorCB:   breaker("doctors"),
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
	}
}

// isPermanent reports errors that retrying cannot fix
func isPermanent(err error) bool {
	return errors.Is(err, sql.ErrNoRows) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// executeWithRetry executes a database operation with retry logic
func (r *SQLRepository) executeWithRetry(ctx context.Context, operation func() error) error {
	var lastErr error
	for i := 0; i < r.maxRetries; i++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err
		if isPermanent(err) {
			return err
		}
		if i < r.maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.retryDelay):
			}
		}
	}
	return fmt.Errorf("operation failed after %d retries: %w", r.maxRetries, lastErr)
}

// SymptomRepository implementation

const symptomColumns = `id, user_id, snapshot, form, submitted_at`

func (r *SQLRepository) CreateEntry(ctx context.Context, entry *domain.SymptomEntry) error {
	snapshot, err := json.Marshal(entry.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	form := []byte(entry.Form)
	if len(form) == 0 {
		form = []byte("{}")
	}

	_, err = r.symptomCB.Execute(func() (interface{}, error) {
		return nil, r.executeWithRetry(ctx, func() error {
			query := `INSERT INTO symptom_entries (` + symptomColumns + `) VALUES ($1, $2, $3, $4, $5)`
			_, err := r.db.ExecContext(ctx, query, entry.ID, entry.UserID, snapshot, form, entry.SubmittedAt)
			return err
		})
	})
	return err
}

func (r *SQLRepository) GetLatestEntry(ctx context.Context, userID uuid.UUID) (*domain.SymptomEntry, error) {
	result, err := r.symptomCB.Execute(func() (interface{}, error) {
		var entry *domain.SymptomEntry
		err := r.executeWithRetry(ctx, func() error {
			// id breaks submitted_at ties so the latest entry is deterministic
			query := `SELECT ` + symptomColumns + ` FROM symptom_entries
				WHERE user_id = $1
				ORDER BY submitted_at DESC, id DESC
				LIMIT 1`
			var scanErr error
			entry, scanErr = scanSymptomEntry(r.db.QueryRowContext(ctx, query, userID))
			return scanErr
		})
		if err != nil {
			return nil, err
		}
		return entry, nil
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoSymptomData
		}
		return nil, err
	}

	return result.(*domain.SymptomEntry), nil
}

func (r *SQLRepository) ListEntries(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.SymptomEntry, error) {
	result, err := r.symptomCB.Execute(func() (interface{}, error) {
		var entries []*domain.SymptomEntry
		err := r.executeWithRetry(ctx, func() error {
			entries = entries[:0]
			query := `SELECT ` + symptomColumns + ` FROM symptom_entries
				WHERE user_id = $1
				ORDER BY submitted_at DESC, id DESC
				LIMIT $2`
			rows, err := r.db.QueryContext(ctx, query, userID, limit)
			if err != nil {
				return err
			}
			defer rows.Close()

			for rows.Next() {
				entry, err := scanSymptomEntry(rows)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
			}
			return rows.Err()
		})
		if err != nil {
			return nil, err
		}
		return entries, nil
	})

	if err != nil {
		return nil, err
	}

	entries := result.([]*domain.SymptomEntry)
	if entries == nil {
		entries = []*domain.SymptomEntry{}
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSymptomEntry(row rowScanner) (*domain.SymptomEntry, error) {
	var (
		entry    domain.SymptomEntry
		snapshot []byte
		form     []byte
	)
	if err := row.Scan(&entry.ID, &entry.UserID, &snapshot, &form, &entry.SubmittedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snapshot, &entry.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot of entry %s: %w", entry.ID, err)
	}
	entry.Form = json.RawMessage(form)
	return &entry, nil
}

// ContactRepository implementation

const contactColumns = `id, user_id, name, phone, email, relationship, priority, created_at`

func (r *SQLRepository) CreateContact(ctx context.Context, contact *domain.EmergencyContact) error {
	_, err := r.contactCB.Execute(func() (interface{}, error) {
		return nil, r.executeWithRetry(ctx, func() error {
			query := `INSERT INTO emergency_contacts (` + contactColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
			_, err := r.db.ExecContext(ctx, query,
				contact.ID, contact.UserID, contact.Name, contact.Phone,
				contact.Email, contact.Relationship, string(contact.Priority), contact.CreatedAt)
			return err
		})
	})
	return err
}

func (r *SQLRepository) ListContacts(ctx context.Context, userID uuid.UUID) ([]*domain.EmergencyContact, error) {
	result, err := r.contactCB.Execute(func() (interface{}, error) {
		var contacts []*domain.EmergencyContact
		err := r.executeWithRetry(ctx, func() error {
			contacts = contacts[:0]
			query := `SELECT ` + contactColumns + ` FROM emergency_contacts
				WHERE user_id = $1
				ORDER BY CASE priority WHEN 'Primary' THEN 0 WHEN 'Secondary' THEN 1 ELSE 2 END, created_at`
			rows, err := r.db.QueryContext(ctx, query, userID)
			if err != nil {
				return err
			}
			defer rows.Close()

			for rows.Next() {
				var c domain.EmergencyContact
				var priority string
				if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Phone, &c.Email, &c.Relationship, &priority, &c.CreatedAt); err != nil {
					return err
				}
				c.Priority = domain.ContactPriority(priority)
				contacts = append(contacts, &c)
			}
			return rows.Err()
		})
		if err != nil {
			return nil, err
		}
		return contacts, nil
	})

	if err != nil {
		return nil, err
	}

	contacts := result.([]*domain.EmergencyContact)
	if contacts == nil {
		contacts = []*domain.EmergencyContact{}
	}
	return contacts, nil
}

func (r *SQLRepository) DeleteContact(ctx context.Context, contactID uuid.UUID, userID uuid.UUID) error {
	_, err := r.contactCB.Execute(func() (interface{}, error) {
		return nil, r.executeWithRetry(ctx, func() error {
			// Ownership is part of the predicate so foreign contacts look missing
			query := `DELETE FROM emergency_contacts WHERE id = $1 AND user_id = $2`
			result, err := r.db.ExecContext(ctx, query, contactID, userID)
			if err != nil {
				return err
			}
			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return err
			}
			if rowsAffected == 0 {
				return fmt.Errorf("contact %w", domain.ErrNotFound)
			}
			return nil
		})
	})
	return err
}

// DoctorRepository implementation

const doctorColumns = `id, name, specialization, city, phone, experience, consultation_fee, photo_url`

func (r *SQLRepository) ListDoctors(ctx context.Context, query string) ([]*domain.Doctor, error) {
	result, err := r.doctorCB.Execute(func() (interface{}, error) {
		var doctors []*domain.Doctor
		err := r.executeWithRetry(ctx, func() error {
			doctors = doctors[:0]
			var (
				rows *sql.Rows
				err  error
			)
			if query == "" {
				rows, err = r.db.QueryContext(ctx, `SELECT `+doctorColumns+` FROM doctors ORDER BY name`)
			} else {
				rows, err = r.db.QueryContext(ctx, `SELECT `+doctorColumns+` FROM doctors
					WHERE name ILIKE $1 ESCAPE '\' OR specialization ILIKE $1 ESCAPE '\' OR city ILIKE $1 ESCAPE '\'
					ORDER BY name`, likePattern(query))
			}
			if err != nil {
				return err
			}
			defer rows.Close()

			for rows.Next() {
				var d domain.Doctor
				if err := rows.Scan(&d.ID, &d.Name, &d.Specialization, &d.City, &d.Phone, &d.Experience, &d.ConsultationFee, &d.PhotoURL); err != nil {
					return err
				}
				doctors = append(doctors, &d)
			}
			return rows.Err()
		})
		if err != nil {
			return nil, err
		}
		return doctors, nil
	})

	if err != nil {
		return nil, err
	}

	return result.([]*domain.Doctor), nil
}

func (r *SQLRepository) UpsertDoctor(ctx context.Context, doctor *domain.Doctor) error {
	_, err := r.doctorCB.Execute(func() (interface{}, error) {
		return nil, r.executeWithRetry(ctx, func() error {
			query := `INSERT INTO doctors (` + doctorColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (id) DO UPDATE SET
					name = EXCLUDED.name,
					specialization = EXCLUDED.specialization,
					city = EXCLUDED.city,
					phone = EXCLUDED.phone,
					experience = EXCLUDED.experience,
					consultation_fee = EXCLUDED.consultation_fee,
					photo_url = EXCLUDED.photo_url`
			_, err := r.db.ExecContext(ctx, query,
				doctor.ID, doctor.Name, doctor.Specialization, doctor.City,
				doctor.Phone, doctor.Experience, doctor.ConsultationFee, doctor.PhotoURL)
			return err
		})
	})
	return err
}

// likePattern escapes LIKE wildcards and wraps the term for a substring match
func likePattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return "%" + escaped + "%"
}
