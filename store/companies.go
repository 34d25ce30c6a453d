package store

import (
	"context"
	"fmt"
	"time"

	"mocojobs.dev/monitor/names"
)

// Company is one employer, keyed by its normalized name.
type Company struct {
	Norm             string
	Name             string
	FirstSeenRunDate string
	FirstSeenUTC     string

	Verified     bool
	VerifyReason string
	PlaceID      string
	Address      string
	VerifiedUTC  string
}

// Verification is the outcome of a place lookup for a company.
type Verification struct {
	Verified bool
	Reason   string
	PlaceID  string
	Address  string
}

// UpsertCompanyIfAbsent records the employer under its normalized key,
// keeping the display name of the first sighting. Reports true when the
// company was not known before.
func (s *Store) UpsertCompanyIfAbsent(ctx context.Context, name, runDate string) (bool, error) {
	norm := names.Key(name)
	if norm == "" {
		return false, nil
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO companies (employer_norm, employer_name, first_seen_run_date, first_seen_utc)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(employer_norm) DO NOTHING`,
		norm, name, runDate, utcNow(),
	)
	if err != nil {
		return false, fmt.Errorf("insert company %q: %w", norm, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// UpdateCompanyVerification stores the place-lookup result for a company.
func (s *Store) UpdateCompanyVerification(ctx context.Context, norm string, v Verification) error {
	verified := 0
	if v.Verified {
		verified = 1
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE companies
		SET verified = ?, verify_reason = ?, place_id = ?, formatted_address = ?, verified_utc = ?
		WHERE employer_norm = ?`,
		verified, v.Reason, v.PlaceID, v.Address, utcNow(), norm,
	)
	if err != nil {
		return fmt.Errorf("update verification for %q: %w", norm, err)
	}
	return nil
}

// NewCompaniesBetween lists companies first seen in [start, endExclusive),
// skipping any normalized name in exclude.
func (s *Store) NewCompaniesBetween(ctx context.Context, start, endExclusive time.Time, exclude []string) ([]Company, error) {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT employer_norm, COALESCE(employer_name, ''), first_seen_run_date, first_seen_utc,
		       verified, COALESCE(verify_reason, ''), COALESCE(place_id, ''),
		       COALESCE(formatted_address, ''), COALESCE(verified_utc, '')
		FROM companies
		WHERE first_seen_run_date >= ? AND first_seen_run_date < ?
		ORDER BY first_seen_utc`,
		fmtDate(start), fmtDate(endExclusive),
	)
	if err != nil {
		return nil, fmt.Errorf("select new companies: %w", err)
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		var c Company
		var verified int
		if err := rows.Scan(&c.Norm, &c.Name, &c.FirstSeenRunDate, &c.FirstSeenUTC,
			&verified, &c.VerifyReason, &c.PlaceID, &c.Address, &c.VerifiedUTC); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		c.Verified = verified == 1
		if skip[c.Norm] {
			continue
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
