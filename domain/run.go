package domain

import (
	"context"
	"time"
)

type Run struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Score     int64     `gorm:"type:bigint;not null;index;column:score" json:"score"`
	UserID    string    `gorm:"type:uuid;not null;index;column:user_id" json:"userId"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	User      User      `gorm:"foreignkey:UserID;references:UUID" json:"-"`
}

type FinishRunRequest struct {
	Score int64 `json:"score"`
}

type FinishRunResponse struct {
	RunID      int64 `json:"runId"`
	Score      int64 `json:"score"`
	NewBalance int64 `json:"newBalance"`
}

type RunRepository interface {
	FinishRun(ctx context.Context, userID string, score int64) (FinishRunResponse, error)
}
