package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/GhoshChinmay/DisasterSence-sub000/internal/models"
)

// SQLiteStore is the durable Store backend, used when DB_PATH is configured.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	// The store serializes writes per table itself; a single connection
	// avoids SQLITE_BUSY on concurrent writers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating database: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS disasters (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			type TEXT NOT NULL,
			severity TEXT NOT NULL,
			state TEXT NOT NULL,
			district TEXT,
			latitude REAL,
			longitude REAL,
			source TEXT NOT NULL,
			source_url TEXT,
			affected_population INTEGER,
			is_verified INTEGER NOT NULL DEFAULT 0,
			metadata TEXT,
			reported_at DATETIME NOT NULL,
			last_updated DATETIME NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1
		);

		CREATE TABLE IF NOT EXISTS social_reports (
			id TEXT PRIMARY KEY,
			platform TEXT NOT NULL,
			post_id TEXT NOT NULL,
			author_username TEXT NOT NULL,
			content TEXT NOT NULL,
			location TEXT,
			latitude REAL,
			longitude REAL,
			media_urls TEXT,
			hashtags TEXT,
			engagement TEXT,
			is_verified INTEGER NOT NULL DEFAULT 0,
			verification_status TEXT NOT NULL DEFAULT 'pending',
			related_disaster_id TEXT,
			reported_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS source_statuses (
			service_name TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			last_successful_sync DATETIME,
			response_time_ms INTEGER,
			error_message TEXT,
			updated_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_disasters_reported_at ON disasters(reported_at);
		CREATE INDEX IF NOT EXISTS idx_disasters_type ON disasters(type);
		CREATE INDEX IF NOT EXISTS idx_social_reports_reported_at ON social_reports(reported_at);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const disasterColumns = `id, title, description, type, severity, state, district,
	latitude, longitude, source, source_url, affected_population, is_verified,
	metadata, reported_at, last_updated, is_active`

func (s *SQLiteStore) Disasters(ctx context.Context, f DisasterFilter) ([]models.Disaster, error) {
	query := `SELECT ` + disasterColumns + ` FROM disasters`
	var conds []string
	var args []any

	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.Severity != "" {
		conds = append(conds, "severity = ?")
		args = append(args, string(f.Severity))
	}
	if f.State != "" {
		conds = append(conds, "state = ?")
		args = append(args, f.State)
	}
	if f.IsActive != nil {
		conds = append(conds, "is_active = ?")
		args = append(args, *f.IsActive)
	}
	if f.Search != "" {
		conds = append(conds, `(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(state) LIKE ? OR LOWER(IFNULL(district, '')) LIKE ?)`)
		like := "%" + strings.ToLower(f.Search) + "%"
		args = append(args, like, like, like, like)
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY reported_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying disasters: %w", err)
	}
	defer rows.Close()

	var result []models.Disaster
	for rows.Next() {
		d, err := scanDisaster(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) Disaster(ctx context.Context, id string) (models.Disaster, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+disasterColumns+` FROM disasters WHERE id = ?`, id)
	d, err := scanDisaster(row)
	if err == sql.ErrNoRows {
		return models.Disaster{}, ErrNotFound
	}
	return d, err
}

func (s *SQLiteStore) CreateDisaster(ctx context.Context, d models.Disaster) (models.Disaster, error) {
	d.ID = uuid.NewString()
	d.Type = models.ParseDisasterType(string(d.Type))
	d.Severity = models.ParseSeverity(string(d.Severity))
	d.LastUpdated = time.Now()
	if d.ReportedAt.IsZero() {
		d.ReportedAt = d.LastUpdated
	}

	metadata, err := marshalNullable(d.Metadata)
	if err != nil {
		return models.Disaster{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO disasters (`+disasterColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Title, d.Description, string(d.Type), string(d.Severity), d.State,
		nullString(d.District), d.Latitude, d.Longitude, d.Source,
		nullString(d.SourceURL), d.AffectedPopulation, d.IsVerified,
		metadata, d.ReportedAt, d.LastUpdated, d.IsActive,
	)
	if err != nil {
		return models.Disaster{}, fmt.Errorf("error inserting disaster: %w", err)
	}
	return d, nil
}

func (s *SQLiteStore) UpdateDisaster(ctx context.Context, id string, patch models.DisasterPatch) (models.Disaster, error) {
	d, err := s.Disaster(ctx, id)
	if err != nil {
		return models.Disaster{}, err
	}
	applyPatch(&d, patch)
	d.LastUpdated = time.Now()

	metadata, err := marshalNullable(d.Metadata)
	if err != nil {
		return models.Disaster{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE disasters SET title = ?, description = ?, type = ?, severity = ?,
			state = ?, district = ?, latitude = ?, longitude = ?, source = ?,
			source_url = ?, affected_population = ?, is_verified = ?, metadata = ?,
			reported_at = ?, last_updated = ?, is_active = ?
		WHERE id = ?`,
		d.Title, d.Description, string(d.Type), string(d.Severity), d.State,
		nullString(d.District), d.Latitude, d.Longitude, d.Source,
		nullString(d.SourceURL), d.AffectedPopulation, d.IsVerified, metadata,
		d.ReportedAt, d.LastUpdated, d.IsActive, id,
	)
	if err != nil {
		return models.Disaster{}, fmt.Errorf("error updating disaster: %w", err)
	}
	return d, nil
}

func (s *SQLiteStore) DisastersNear(ctx context.Context, lat, lng, radiusKm float64) ([]models.Disaster, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+disasterColumns+` FROM disasters
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY reported_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying disasters: %w", err)
	}
	defer rows.Close()

	var result []models.Disaster
	for rows.Next() {
		d, err := scanDisaster(rows)
		if err != nil {
			return nil, err
		}
		if haversineKm(lat, lng, *d.Latitude, *d.Longitude) <= radiusKm {
			result = append(result, d)
		}
	}
	return result, rows.Err()
}

const reportColumns = `id, platform, post_id, author_username, content, location,
	latitude, longitude, media_urls, hashtags, engagement, is_verified,
	verification_status, related_disaster_id, reported_at, created_at`

func (s *SQLiteStore) SocialReports(ctx context.Context, f SocialReportFilter) ([]models.SocialReport, error) {
	query := `SELECT ` + reportColumns + ` FROM social_reports`
	var conds []string
	var args []any

	if f.Platform != "" {
		conds = append(conds, "platform = ?")
		args = append(args, f.Platform)
	}
	if f.IsVerified != nil {
		conds = append(conds, "is_verified = ?")
		args = append(args, *f.IsVerified)
	}
	if f.Location != "" {
		conds = append(conds, "LOWER(IFNULL(location, '')) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.Location)+"%")
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY reported_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying social reports: %w", err)
	}
	defer rows.Close()

	var result []models.SocialReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) CreateSocialReport(ctx context.Context, r models.SocialReport) (models.SocialReport, error) {
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now()
	if r.ReportedAt.IsZero() {
		r.ReportedAt = r.CreatedAt
	}
	if r.VerificationStatus == "" {
		r.VerificationStatus = models.VerificationPending
	}

	mediaURLs, err := marshalNullable(r.MediaURLs)
	if err != nil {
		return models.SocialReport{}, err
	}
	hashtags, err := marshalNullable(r.Hashtags)
	if err != nil {
		return models.SocialReport{}, err
	}
	engagement, err := json.Marshal(r.Engagement)
	if err != nil {
		return models.SocialReport{}, fmt.Errorf("error encoding engagement: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO social_reports (`+reportColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Platform, r.PostID, r.AuthorUsername, r.Content,
		nullString(r.Location), r.Latitude, r.Longitude, mediaURLs, hashtags,
		string(engagement), r.IsVerified, string(r.VerificationStatus),
		nullString(r.RelatedDisasterID), r.ReportedAt, r.CreatedAt,
	)
	if err != nil {
		return models.SocialReport{}, fmt.Errorf("error inserting social report: %w", err)
	}
	return r, nil
}

func (s *SQLiteStore) SetVerification(ctx context.Context, id string, status models.VerificationStatus) (models.SocialReport, error) {
	isVerified := status == models.VerificationVerified
	res, err := s.db.ExecContext(ctx,
		`UPDATE social_reports SET verification_status = ?, is_verified = ? WHERE id = ?`,
		string(status), isVerified, id,
	)
	if err != nil {
		return models.SocialReport{}, fmt.Errorf("error updating verification: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.SocialReport{}, err
	} else if n == 0 {
		return models.SocialReport{}, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM social_reports WHERE id = ?`, id)
	return scanReport(row)
}

func (s *SQLiteStore) SourceStatuses(ctx context.Context) ([]models.SourceStatus, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT service_name, status, last_successful_sync, response_time_ms, error_message, updated_at
		FROM source_statuses ORDER BY service_name`)
	if err != nil {
		return nil, fmt.Errorf("error querying source statuses: %w", err)
	}
	defer rows.Close()

	var result []models.SourceStatus
	for rows.Next() {
		var st models.SourceStatus
		var sync sql.NullTime
		var respTime sql.NullInt64
		var errMsg sql.NullString
		if err := rows.Scan(&st.ServiceName, &st.Status, &sync, &respTime, &errMsg, &st.UpdatedAt); err != nil {
			return nil, err
		}
		if sync.Valid {
			t := sync.Time
			st.LastSuccessfulSync = &t
		}
		if respTime.Valid {
			ms := respTime.Int64
			st.ResponseTimeMS = &ms
		}
		st.ErrorMessage = errMsg.String
		result = append(result, st)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) UpsertSourceStatus(ctx context.Context, status models.SourceStatus) (models.SourceStatus, error) {
	if status.LastSuccessfulSync == nil {
		var sync sql.NullTime
		err := s.db.QueryRowContext(ctx,
			`SELECT last_successful_sync FROM source_statuses WHERE service_name = ?`,
			status.ServiceName,
		).Scan(&sync)
		if err != nil && err != sql.ErrNoRows {
			return models.SourceStatus{}, fmt.Errorf("error reading source status: %w", err)
		}
		if sync.Valid {
			t := sync.Time
			status.LastSuccessfulSync = &t
		}
	}
	status.UpdatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO source_statuses (service_name, status, last_successful_sync, response_time_ms, error_message, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(service_name) DO UPDATE SET
			status = excluded.status,
			last_successful_sync = excluded.last_successful_sync,
			response_time_ms = excluded.response_time_ms,
			error_message = excluded.error_message,
			updated_at = excluded.updated_at`,
		status.ServiceName, string(status.Status), status.LastSuccessfulSync,
		status.ResponseTimeMS, nullString(status.ErrorMessage), status.UpdatedAt,
	)
	if err != nil {
		return models.SourceStatus{}, fmt.Errorf("error upserting source status: %w", err)
	}
	return status, nil
}

func (s *SQLiteStore) AlertSummary(ctx context.Context) (models.AlertSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT severity, COUNT(*) FROM disasters WHERE is_active = 1 GROUP BY severity`)
	if err != nil {
		return models.AlertSummary{}, fmt.Errorf("error querying alert summary: %w", err)
	}
	defer rows.Close()

	var summary models.AlertSummary
	for rows.Next() {
		var severity string
		var count int
		if err := rows.Scan(&severity, &count); err != nil {
			return models.AlertSummary{}, err
		}
		switch models.Severity(severity) {
		case models.SeverityCritical:
			summary.Critical = count
		case models.SeverityHigh:
			summary.High = count
		case models.SeverityMedium:
			summary.Medium = count
		case models.SeverityLow:
			summary.Low = count
		}
		summary.Total += count
	}
	return summary, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDisaster(row rowScanner) (models.Disaster, error) {
	var d models.Disaster
	var district, sourceURL, metadata sql.NullString
	var lat, lng sql.NullFloat64
	var population sql.NullInt64

	err := row.Scan(&d.ID, &d.Title, &d.Description, &d.Type, &d.Severity,
		&d.State, &district, &lat, &lng, &d.Source, &sourceURL, &population,
		&d.IsVerified, &metadata, &d.ReportedAt, &d.LastUpdated, &d.IsActive)
	if err != nil {
		return models.Disaster{}, err
	}

	d.District = district.String
	d.SourceURL = sourceURL.String
	if lat.Valid && lng.Valid {
		la, lo := lat.Float64, lng.Float64
		d.Latitude, d.Longitude = &la, &lo
	}
	if population.Valid {
		pop := int(population.Int64)
		d.AffectedPopulation = &pop
	}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &d.Metadata); err != nil {
			return models.Disaster{}, fmt.Errorf("error decoding metadata: %w", err)
		}
	}
	return d, nil
}

func scanReport(row rowScanner) (models.SocialReport, error) {
	var r models.SocialReport
	var location, mediaURLs, hashtags, engagement, relatedID sql.NullString
	var lat, lng sql.NullFloat64

	err := row.Scan(&r.ID, &r.Platform, &r.PostID, &r.AuthorUsername, &r.Content,
		&location, &lat, &lng, &mediaURLs, &hashtags, &engagement, &r.IsVerified,
		&r.VerificationStatus, &relatedID, &r.ReportedAt, &r.CreatedAt)
	if err != nil {
		return models.SocialReport{}, err
	}

	r.Location = location.String
	r.RelatedDisasterID = relatedID.String
	if lat.Valid && lng.Valid {
		la, lo := lat.Float64, lng.Float64
		r.Latitude, r.Longitude = &la, &lo
	}
	if mediaURLs.Valid && mediaURLs.String != "" {
		if err := json.Unmarshal([]byte(mediaURLs.String), &r.MediaURLs); err != nil {
			return models.SocialReport{}, fmt.Errorf("error decoding media urls: %w", err)
		}
	}
	if hashtags.Valid && hashtags.String != "" {
		if err := json.Unmarshal([]byte(hashtags.String), &r.Hashtags); err != nil {
			return models.SocialReport{}, fmt.Errorf("error decoding hashtags: %w", err)
		}
	}
	if engagement.Valid && engagement.String != "" {
		if err := json.Unmarshal([]byte(engagement.String), &r.Engagement); err != nil {
			return models.SocialReport{}, fmt.Errorf("error decoding engagement: %w", err)
		}
	}
	return r, nil
}

func marshalNullable(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		if val == nil {
			return nil, nil
		}
	case []string:
		if val == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("error encoding json column: %w", err)
	}
	return string(data), nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
