package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
)

type analyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) repository.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) CreateSnapshot(ctx context.Context, s *domain.AnalyticsSnapshot) error {
	query := `INSERT INTO analytics_snapshots (social_account_id, provider, handle, full_name, biography, followers, following, posts,
	          avg_likes, avg_comments, avg_views, engagement_rate, posts_per_week, top_hashtags, best_hour, captured_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16) RETURNING id`
	if s.CapturedAt.IsZero() {
		s.CapturedAt = time.Now().UTC()
	}
	logger.DatabaseCall("INSERT", "analytics_snapshots", "provider", s.Provider, "handle", s.Handle)
	return r.db.QueryRowContext(ctx, query, s.SocialAccountID, s.Provider, s.Handle, s.FullName, s.Biography, s.Followers, s.Following,
		s.Posts, s.AvgLikes, s.AvgComments, s.AvgViews, s.EngagementRate, s.PostsPerWeek, textArray(s.TopHashtags), s.BestHour, s.CapturedAt).Scan(&s.ID)
}

func (r *analyticsRepository) History(ctx context.Context, provider domain.SocialProvider, handle string, limit int32) ([]domain.AnalyticsSnapshot, error) {
	query := `SELECT id, social_account_id, provider, handle, full_name, biography, followers, following, posts, avg_likes, avg_comments,
	          avg_views, engagement_rate, posts_per_week, top_hashtags, best_hour, captured_at
	          FROM analytics_snapshots WHERE provider = $1 AND handle = $2 ORDER BY captured_at DESC LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, provider, handle, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []domain.AnalyticsSnapshot
	for rows.Next() {
		var s domain.AnalyticsSnapshot
		var accountID sql.NullInt32
		var tags pq.StringArray
		if err := rows.Scan(&s.ID, &accountID, &s.Provider, &s.Handle, &s.FullName, &s.Biography, &s.Followers, &s.Following, &s.Posts,
			&s.AvgLikes, &s.AvgComments, &s.AvgViews, &s.EngagementRate, &s.PostsPerWeek, &tags, &s.BestHour, &s.CapturedAt); err != nil {
			return nil, err
		}
		if accountID.Valid {
			id := accountID.Int32
			s.SocialAccountID = &id
		}
		s.TopHashtags = []string(tags)
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// latestEngagement is the most recent engagement rate captured for each linked account.
const latestEngagement = `LEFT JOIN LATERAL (
	    SELECT engagement_rate FROM analytics_snapshots s
	    WHERE s.social_account_id = sa.id ORDER BY s.captured_at DESC LIMIT 1
	  ) snap ON TRUE`

func (r *analyticsRepository) SearchCreators(ctx context.Context, f domain.CreatorSearchFilter) ([]domain.CreatorSearchResult, int32, error) {
	where := []string{"u.role = 'creator'", "sa.status = 'active'"}
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Query != "" {
		add("(u.name ILIKE $%[1]d OR sa.handle ILIKE $%[1]d)", "%"+f.Query+"%")
	}
	if f.Niche != "" {
		add("$%d = ANY(u.niches)", f.Niche)
	}
	if f.State != "" {
		add("u.state = $%d", strings.ToUpper(f.State))
	}
	if f.City != "" {
		add("LOWER(u.city) = LOWER($%d)", f.City)
	}
	if f.Platform != "" {
		add("sa.provider = $%d", f.Platform)
	}
	if f.MinFollowers > 0 {
		add("sa.followers >= $%d", f.MinFollowers)
	}
	if f.MaxFollowers > 0 {
		add("sa.followers <= $%d", f.MaxFollowers)
	}
	if f.MinEngagement > 0 {
		add("COALESCE(snap.engagement_rate, 0) >= $%d", f.MinEngagement)
	}
	cond := strings.Join(where, " AND ")
	from := `FROM users u JOIN social_accounts sa ON sa.user_id = u.id ` + latestEngagement

	var total int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) `+from+` WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT u.id, u.name, u.avatar_url, u.city, u.state, u.niches, sa.provider, sa.handle, sa.followers,
	          COALESCE(snap.engagement_rate, 0) %s WHERE %s
	          ORDER BY sa.followers DESC, u.id LIMIT $%d OFFSET $%d`, from, cond, len(args)+1, len(args)+2)
	args = append(args, f.PageSize, offset(f.Page, f.PageSize))

	logger.DatabaseCall("SELECT", "users", "operation", "search_creators", "filters", len(where))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []domain.CreatorSearchResult
	for rows.Next() {
		var c domain.CreatorSearchResult
		var niches pq.StringArray
		if err := rows.Scan(&c.UserID, &c.Name, &c.AvatarURL, &c.City, &c.State, &niches, &c.Platform, &c.Handle, &c.Followers, &c.EngagementRate); err != nil {
			return nil, 0, err
		}
		c.Niches = []string(niches)
		results = append(results, c)
	}
	return results, total, rows.Err()
}

func (r *analyticsRepository) DiscoveryStats(ctx context.Context) (*domain.DiscoveryStats, error) {
	stats := &domain.DiscoveryStats{ByPlatform: map[string]int64{}}

	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM users WHERE role = 'creator'`).Scan(&stats.TotalCreators); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT provider, count(DISTINCT user_id) FROM social_accounts WHERE status = 'active' GROUP BY provider`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var provider string
		var n int64
		if err := rows.Scan(&provider, &n); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByPlatform[provider] = n
	}
	rows.Close()

	rows, err = r.db.QueryContext(ctx, `SELECT state, count(*) FROM users WHERE role = 'creator' AND state <> ''
	                                    GROUP BY state ORDER BY count(*) DESC, state LIMIT 5`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var sc domain.StateCount
		if err := rows.Scan(&sc.State, &sc.Count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.TopStates = append(stats.TopStates, sc)
	}
	rows.Close()

	avgQuery := `SELECT COALESCE(AVG(snap.engagement_rate), 0) FROM social_accounts sa ` + latestEngagement + `
	             WHERE sa.status = 'active' AND snap.engagement_rate IS NOT NULL`
	if err := r.db.QueryRowContext(ctx, avgQuery).Scan(&stats.AvgEngagementRate); err != nil {
		return nil, err
	}
	return stats, nil
}
