package utils

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"ugc-marketplace-backend/internal/domain"
)

const topHashtagCount = 5

var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// ComputeSnapshot derives engagement metrics from a provider profile and its recent media.
func ComputeSnapshot(p domain.ProviderProfile, now time.Time) domain.AnalyticsSnapshot {
	s := domain.AnalyticsSnapshot{
		Provider:    p.Provider,
		Handle:      p.Handle,
		FullName:    p.FullName,
		Biography:   p.Biography,
		Followers:   p.Followers,
		Following:   p.Following,
		Posts:       p.Posts,
		TopHashtags: TopHashtags(p.Media, topHashtagCount),
		BestHour:    BestPostingHour(p.Media),
		CapturedAt:  now,
	}
	if len(p.Media) == 0 {
		return s
	}

	var likes, comments, views int64
	for _, m := range p.Media {
		likes += m.Likes
		comments += m.Comments
		views += m.Views
	}
	n := float64(len(p.Media))
	s.AvgLikes = round2(float64(likes) / n)
	s.AvgComments = round2(float64(comments) / n)
	s.AvgViews = round2(float64(views) / n)

	interactions := float64(likes+comments) / n
	switch {
	case p.Followers > 0:
		s.EngagementRate = round2(interactions / float64(p.Followers) * 100)
	case p.Provider == domain.ProviderTikTok && views > 0:
		s.EngagementRate = round2(interactions / (float64(views) / n) * 100)
	}
	s.PostsPerWeek = round2(PostsPerWeek(p.Media))
	return s
}

// PostsPerWeek is the media count over the span it covers, with a one-week minimum span.
func PostsPerWeek(media []domain.MediaSample) float64 {
	if len(media) == 0 {
		return 0
	}
	oldest, newest := media[0].Timestamp, media[0].Timestamp
	for _, m := range media[1:] {
		if m.Timestamp.Before(oldest) {
			oldest = m.Timestamp
		}
		if m.Timestamp.After(newest) {
			newest = m.Timestamp
		}
	}
	weeks := newest.Sub(oldest).Hours() / (24 * 7)
	if weeks < 1 {
		weeks = 1
	}
	return float64(len(media)) / weeks
}

// TopHashtags returns the most used hashtags, ties broken alphabetically.
func TopHashtags(media []domain.MediaSample, limit int) []string {
	counts := map[string]int{}
	for _, m := range media {
		for _, match := range hashtagPattern.FindAllStringSubmatch(m.Caption, -1) {
			counts[strings.ToLower(match[1])]++
		}
	}
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}

// BestPostingHour is the UTC hour with the highest mean likes+comments, or -1 without media.
func BestPostingHour(media []domain.MediaSample) int32 {
	var sum, count [24]float64
	for _, m := range media {
		h := m.Timestamp.UTC().Hour()
		sum[h] += float64(m.Likes + m.Comments)
		count[h]++
	}
	best, bestMean := int32(-1), -1.0
	for h := 0; h < 24; h++ {
		if count[h] == 0 {
			continue
		}
		if mean := sum[h] / count[h]; mean > bestMean {
			best, bestMean = int32(h), mean
		}
	}
	return best
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
