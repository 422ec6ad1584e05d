package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jturner/defence-radar/internal/models"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type ListParams struct {
	Query        string
	SourceType   string
	TechArea     string
	Country      string
	Status       string // "open" (default), "closed", or "all"
	Tier         string // caller's subscription tier, gates pro records
	MinComposite float64
	Limit        int
	Offset       int
}

type ListResult struct {
	Opportunities []models.Opportunity `json:"opportunities"`
	Total         int                  `json:"total"`
	Limit         int                  `json:"limit"`
	Offset        int                  `json:"offset"`
}

// selectCols is the comprehensive column list for all queries.
const selectCols = `id, title, funding_body, description, closing_date, funding_amount,
	tech_areas, contract_type, official_link, source, source_type, country, location,
	status, tier_required, sme_score, confidence_score, priority_score, composite_score,
	tech_tags, keywords_matched, trl, created_at`

func scanOpportunity(scan func(dest ...interface{}) error) (models.Opportunity, error) {
	var o models.Opportunity
	var trl *int

	err := scan(
		&o.ID, &o.Title, &o.FundingBody, &o.Description, &o.ClosingDate, &o.FundingAmount,
		&o.TechAreas, &o.ContractType, &o.OfficialLink, &o.Source, &o.SourceType, &o.Country, &o.Location,
		&o.Status, &o.TierRequired, &o.Metadata.SMEScore, &o.Metadata.ConfidenceScore, &o.Metadata.PriorityScore, &o.Metadata.CompositeScore,
		&o.Metadata.TechTags, &o.Metadata.KeywordsMatched, &trl, &o.CreatedAt,
	)
	if err != nil {
		return o, err
	}

	o.Metadata.TRL = trl
	if o.TechAreas == nil {
		o.TechAreas = []string{}
	}
	if o.Metadata.TechTags == nil {
		o.Metadata.TechTags = []string{}
	}
	if o.Metadata.KeywordsMatched == nil {
		o.Metadata.KeywordsMatched = []string{}
	}

	return o, nil
}

// ReplaceBatch swaps the stored feed for the output of one aggregation run,
// atomically. The slice is assumed already ranked: row order becomes the rank
// column, so readers get back exactly the ordering the pipeline emitted.
func (s *Store) ReplaceBatch(ctx context.Context, opps []models.Opportunity) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM opportunities"); err != nil {
		return fmt.Errorf("clearing feed failed: %w", err)
	}

	for rank, o := range opps {
		if _, err := tx.Exec(ctx, `
			INSERT INTO opportunities (
				id, rank, title, funding_body, description, closing_date, funding_amount,
				tech_areas, contract_type, official_link, source, source_type, country, location,
				status, tier_required, sme_score, confidence_score, priority_score, composite_score,
				tech_tags, keywords_matched, trl, created_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7,
				$8, $9, $10, $11, $12, $13, $14,
				$15, $16, $17, $18, $19, $20,
				$21, $22, $23, $24
			)
		`,
			o.ID, rank, o.Title, o.FundingBody, o.Description, o.ClosingDate, o.FundingAmount,
			o.TechAreas, o.ContractType, o.OfficialLink, o.Source, o.SourceType, o.Country, o.Location,
			o.Status, o.TierRequired, o.Metadata.SMEScore, o.Metadata.ConfidenceScore, o.Metadata.PriorityScore, o.Metadata.CompositeScore,
			o.Metadata.TechTags, o.Metadata.KeywordsMatched, o.Metadata.TRL, o.CreatedAt,
		); err != nil {
			return fmt.Errorf("inserting %q failed: %w", o.ID, err)
		}
	}

	return tx.Commit(ctx)
}

// buildListFilter translates list parameters into a WHERE clause with
// positional arguments. Status defaults to open; anything but a pro tier is
// restricted to the free slice of the feed.
func buildListFilter(params ListParams) (string, []interface{}) {
	where := "WHERE 1=1"
	var args []interface{}
	argIdx := 1

	if params.Query != "" {
		where += fmt.Sprintf(" AND (title ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')", argIdx, argIdx)
		args = append(args, params.Query)
		argIdx++
	}
	if params.SourceType != "" {
		where += fmt.Sprintf(" AND source_type = $%d", argIdx)
		args = append(args, params.SourceType)
		argIdx++
	}
	if params.TechArea != "" {
		where += fmt.Sprintf(" AND $%d = ANY(tech_areas)", argIdx)
		args = append(args, params.TechArea)
		argIdx++
	}
	if params.Country != "" {
		where += fmt.Sprintf(" AND country = $%d", argIdx)
		args = append(args, params.Country)
		argIdx++
	}
	if params.MinComposite > 0 {
		where += fmt.Sprintf(" AND composite_score >= $%d", argIdx)
		args = append(args, params.MinComposite)
		argIdx++
	}

	status := params.Status
	if status == "" {
		status = "open"
	}
	if status != "all" {
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
	}

	if params.Tier != models.TierPro {
		where += " AND tier_required = 'free'"
	}

	return where, args
}

func (s *Store) ListOpportunities(ctx context.Context, params ListParams) (*ListResult, error) {
	where, args := buildListFilter(params)
	argIdx := len(args) + 1

	var total int
	countSQL := "SELECT COUNT(*) FROM opportunities " + where
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}

	selectSQL := fmt.Sprintf("SELECT %s FROM opportunities %s ORDER BY rank ASC LIMIT $%d OFFSET $%d",
		selectCols, where, argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := s.pool.Query(ctx, selectSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var opps []models.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		opps = append(opps, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	if opps == nil {
		opps = []models.Opportunity{}
	}

	return &ListResult{
		Opportunities: opps,
		Total:         total,
		Limit:         params.Limit,
		Offset:        params.Offset,
	}, nil
}

func (s *Store) GetOpportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM opportunities
		WHERE id = $1
	`, selectCols)
	row := s.pool.QueryRow(ctx, sql, id)

	o, err := scanOpportunity(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("not found: %w", err)
	}

	return &o, nil
}

func (s *Store) GetSources(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT DISTINCT source FROM opportunities ORDER BY source")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err == nil {
			sources = append(sources, src)
		}
	}
	return sources, nil
}

func (s *Store) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM opportunities").Scan(&total)
	stats["total"] = total

	var sources int
	s.pool.QueryRow(ctx, "SELECT COUNT(DISTINCT source) FROM opportunities").Scan(&sources)
	stats["sources"] = sources

	var open int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM opportunities WHERE status = 'open'").Scan(&open)
	stats["open"] = open

	var pro int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM opportunities WHERE tier_required = 'pro'").Scan(&pro)
	stats["pro_tier"] = pro

	areaCounts := map[string]int{}
	rows, err := s.pool.Query(ctx, "SELECT unnest(tech_areas), COUNT(*) FROM opportunities GROUP BY 1 ORDER BY 2 DESC")
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var area string
			var count int
			if scanErr := rows.Scan(&area, &count); scanErr == nil {
				areaCounts[area] = count
			}
		}
	}
	stats["tech_area_counts"] = areaCounts

	return stats, nil
}

// CreateRun inserts a running aggregation record.
func (s *Store) CreateRun(ctx context.Context, run models.AggregationRun) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO aggregation_runs (run_id, status, sources_total, started_at)
		VALUES ($1, $2, $3, $4)
	`, run.RunID, run.Status, run.SourcesTotal, run.StartedAt)
	if err != nil {
		return fmt.Errorf("creating aggregation run: %w", err)
	}
	return nil
}

// CompleteRun finalizes an aggregation record with its outcome.
func (s *Store) CompleteRun(ctx context.Context, run models.AggregationRun) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE aggregation_runs
		SET status = $1,
		    sources_failed = $2,
		    raw_count = $3,
		    emitted_count = $4,
		    completed_at = NOW()
		WHERE run_id = $5
	`, run.Status, run.SourcesFailed, run.RawCount, run.EmittedCount, run.RunID)
	if err != nil {
		return fmt.Errorf("completing aggregation run: %w", err)
	}
	return nil
}

// ListRuns returns recent aggregation runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]models.AggregationRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT run_id, status, sources_total, sources_failed, raw_count, emitted_count, started_at, completed_at
		FROM aggregation_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing aggregation runs: %w", err)
	}
	defer rows.Close()

	var runs []models.AggregationRun
	for rows.Next() {
		var run models.AggregationRun
		if err := rows.Scan(&run.RunID, &run.Status, &run.SourcesTotal, &run.SourcesFailed,
			&run.RawCount, &run.EmittedCount, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning aggregation run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// StaleRunCutoff marks runs still flagged running after this long as failed.
const StaleRunCutoff = 2 * time.Hour

// FailStaleRuns cleans up run records abandoned by a crashed process.
func (s *Store) FailStaleRuns(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE aggregation_runs
		SET status = 'failed', completed_at = NOW()
		WHERE status = 'running' AND started_at < NOW() - $1::interval
	`, fmt.Sprintf("%d minutes", int(StaleRunCutoff/time.Minute)))
	if err != nil {
		return 0, fmt.Errorf("failing stale runs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
