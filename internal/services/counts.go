package services

import (
	"context"
	"toplists/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type listCount struct {
	ListID uuid.UUID
	Count  int
}

// fillCounts 批量统计点赞数和评论数，避免逐条查询
func fillCounts(ctx context.Context, db *gorm.DB, lists []models.List) error {
	if len(lists) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(lists))
	for i := range lists {
		ids[i] = lists[i].ID
	}

	likes, err := countByList(ctx, db, &models.Like{}, ids)
	if err != nil {
		return err
	}
	comments, err := countByList(ctx, db, &models.Comment{}, ids)
	if err != nil {
		return err
	}

	for i := range lists {
		lists[i].LikeCount = likes[lists[i].ID]
		lists[i].CommentCount = comments[lists[i].ID]
	}
	return nil
}

func countByList(ctx context.Context, db *gorm.DB, model any, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []listCount
	err := db.WithContext(ctx).Model(model).
		Select("list_id, count(*) as count").
		Where("list_id IN ?", ids).
		Group("list_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	m := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		m[r.ListID] = r.Count
	}
	return m, nil
}
