package postgres

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"medbook/backend/internal/domain"
)

type OTPRepo struct {
	db *bun.DB
}

func NewOTPRepo(db *bun.DB) *OTPRepo {
	return &OTPRepo{db: db}
}

func (r *OTPRepo) Save(ctx context.Context, code domain.OTPCode) (domain.OTPCode, error) {
	m := code
	_, err := r.db.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		return domain.OTPCode{}, err
	}
	return m, nil
}

// Consume deletes a matching unexpired code and reports whether one existed.
// Deleting makes the code single-use.
func (r *OTPRepo) Consume(ctx context.Context, phone, code string, now time.Time) (bool, error) {
	res, err := r.db.NewDelete().
		Model((*domain.OTPCode)(nil)).
		Where("phone = ?", phone).
		Where("code = ?", code).
		Where("expires_at > ?", now).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *OTPRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := r.db.NewDelete().
		Model((*domain.OTPCode)(nil)).
		Where("expires_at <= ?", now).
		Exec(ctx)
	return err
}
