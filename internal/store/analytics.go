package store

import (
	"context"
	"errors"
	"time"
)

// Visit is one tracked page view. The client address is only ever stored hashed.
type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	CreatedOn time.Time `json:"created_on"`
}

// SectionStat counts how often visitors scrolled an element into view.
type SectionStat struct {
	Element string `json:"element"`
	Reveals int64  `json:"reveals"`
}

type Stats struct {
	TotalVisitors    int64         `json:"total_visitors"`
	UniqueVisitors   int64         `json:"unique_visitors"`
	VisitorsToday    int64         `json:"visitors_today"`
	VisitorsThisWeek int64         `json:"visitors_this_week"`
	TotalReveals     int64         `json:"total_reveals"`
	TopSections      []SectionStat `json:"top_sections"`
	RecentVisitors   []Visit       `json:"recent_visitors"`
}

func (s *Store) RecordVisit(ctx context.Context, visit Visit) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO visitors (hashed_ip, user_agent, path, created_on) VALUES (?, ?, ?, ?)`,
		visit.HashedIP, visit.UserAgent, visit.Path, visit.CreatedOn.Unix()); err != nil {
		return errors.Join(err, ErrQuery)
	}

	return nil
}

func (s *Store) RecordReveal(ctx context.Context, element string, at time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO section_reveals (element, created_on) VALUES (?, ?)`,
		element, at.Unix()); err != nil {
		return errors.Join(err, ErrQuery)
	}

	return nil
}

func (s *Store) RecentVisitors(ctx context.Context, limit int) ([]Visit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT visitor_id, hashed_ip, user_agent, path, created_on
		FROM visitors
		ORDER BY created_on DESC, visitor_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Join(err, ErrQuery)
	}
	defer rows.Close()

	visits := []Visit{}
	for rows.Next() {
		var (
			visit     Visit
			createdOn int64
		)
		if errScan := rows.Scan(&visit.ID, &visit.HashedIP, &visit.UserAgent, &visit.Path, &createdOn); errScan != nil {
			return nil, errors.Join(errScan, ErrQuery)
		}
		visit.CreatedOn = time.Unix(createdOn, 0)
		visits = append(visits, visit)
	}

	if errRows := rows.Err(); errRows != nil {
		return nil, errors.Join(errRows, ErrQuery)
	}

	return visits, nil
}

func (s *Store) topSections(ctx context.Context, limit int) ([]SectionStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT element, COUNT(*) AS reveals
		FROM section_reveals
		GROUP BY element
		ORDER BY reveals DESC, element
		LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Join(err, ErrQuery)
	}
	defer rows.Close()

	sections := []SectionStat{}
	for rows.Next() {
		var section SectionStat
		if errScan := rows.Scan(&section.Element, &section.Reveals); errScan != nil {
			return nil, errors.Join(errScan, ErrQuery)
		}
		sections = append(sections, section)
	}

	if errRows := rows.Err(); errRows != nil {
		return nil, errors.Join(errRows, ErrQuery)
	}

	return sections, nil
}

// Stats summarises the analytics relative to now.
func (s *Store) Stats(ctx context.Context, now time.Time) (Stats, error) {
	var stats Stats

	year, month, day := now.Date()
	startOfDay := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	weekAgo := now.Add(-7 * 24 * time.Hour)

	counts := []struct {
		query string
		args  []any
		dest  *int64
	}{
		{`SELECT COUNT(*) FROM visitors`, nil, &stats.TotalVisitors},
		{`SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil, &stats.UniqueVisitors},
		{`SELECT COUNT(*) FROM visitors WHERE created_on >= ?`, []any{startOfDay.Unix()}, &stats.VisitorsToday},
		{`SELECT COUNT(*) FROM visitors WHERE created_on >= ?`, []any{weekAgo.Unix()}, &stats.VisitorsThisWeek},
		{`SELECT COUNT(*) FROM section_reveals`, nil, &stats.TotalReveals},
	}
	for _, count := range counts {
		if err := s.db.QueryRowContext(ctx, count.query, count.args...).Scan(count.dest); err != nil {
			return Stats{}, errors.Join(err, ErrQuery)
		}
	}

	sections, errSections := s.topSections(ctx, 10)
	if errSections != nil {
		return Stats{}, errSections
	}
	stats.TopSections = sections

	recent, errRecent := s.RecentVisitors(ctx, 50)
	if errRecent != nil {
		return Stats{}, errRecent
	}
	stats.RecentVisitors = recent

	return stats, nil
}

// Cleanup deletes analytics rows recorded before cutoff and returns how many were removed.
func (s *Store) Cleanup(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	for _, query := range []string{
		`DELETE FROM visitors WHERE created_on < ?`,
		`DELETE FROM section_reveals WHERE created_on < ?`,
	} {
		result, err := s.db.ExecContext(ctx, query, cutoff.Unix())
		if err != nil {
			return removed, errors.Join(err, ErrQuery)
		}
		affected, _ := result.RowsAffected()
		removed += affected
	}

	return removed, nil
}
