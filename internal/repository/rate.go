package repository

import (
	"context"
	"time"

	"recipebox/internal/cache"
	"recipebox/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RateRepository stores one rating per user and post.
type RateRepository interface {
	// Upsert creates the caller's rate or replaces its value.
	Upsert(ctx context.Context, rate *models.PostRate) error
	Summary(ctx context.Context, postID, userID uint) (*models.RateSummary, error)
}

type rateRepository struct {
	db *gorm.DB
}

func NewRateRepository(db *gorm.DB) RateRepository {
	return &rateRepository{db: db}
}

func (r *rateRepository) Upsert(ctx context.Context, rate *models.PostRate) error {
	err := traced(ctx, "Upsert", "post_rates", func(ctx context.Context) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			rate.UpdatedAt = time.Now()
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
			}).Create(rate).Error
			if err != nil {
				return err
			}
			// The id returned on the conflict path differs across drivers; reload the row.
			var stored models.PostRate
			if err := tx.Where("user_id = ? AND post_id = ?", rate.UserID, rate.PostID).First(&stored).Error; err != nil {
				return err
			}
			*rate = stored
			return nil
		})
	})
	if err != nil {
		return translate(err, "Rate", nil)
	}
	cache.Invalidate(ctx, cache.RateSummaryKey(rate.PostID))
	return nil
}

type rateAggregate struct {
	Average float64
	Count   int64
}

func (r *rateRepository) Summary(ctx context.Context, postID, userID uint) (*models.RateSummary, error) {
	summary := models.RateSummary{PostID: postID}
	err := cache.Aside(ctx, cache.RateSummaryKey(postID), &summary, cache.RateSummaryTTL, func() error {
		var agg rateAggregate
		if err := r.db.WithContext(ctx).Model(&models.PostRate{}).
			Select("COALESCE(AVG(rate), 0) AS average, COUNT(*) AS count").
			Where("post_id = ?", postID).
			Scan(&agg).Error; err != nil {
			return err
		}
		summary.Average = agg.Average
		summary.Count = agg.Count

		var mine models.PostRate
		res := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Limit(1).Find(&mine)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			v := mine.Rate
			summary.Mine = &v
		}
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &summary, nil
}
