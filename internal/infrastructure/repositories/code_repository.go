package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
)

// maxCandidates bounds how many outstanding rows FindActive compares against
const maxCandidates = 20

// CodeRepositoryImpl implements domain.CodeStore using GORM
type CodeRepositoryImpl struct {
	db     *gorm.DB
	hasher domain.CodeHasher
	now    func() time.Time
}

// DBVerificationCode represents the database model for VerificationCode
type DBVerificationCode struct {
	ID          string    `gorm:"primaryKey;size:36"`
	PhoneNumber string    `gorm:"size:20;not null;index:idx_verification_codes_lookup,priority:1"`
	CodeHash    string    `gorm:"size:100;not null"`
	Consumed    bool      `gorm:"not null;default:false;index:idx_verification_codes_lookup,priority:2"`
	Superseded  bool      `gorm:"not null;default:false"`
	ExpiresAt   time.Time `gorm:"not null;index:idx_verification_codes_lookup,priority:3"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (DBVerificationCode) TableName() string {
	return "verification_codes"
}

// NewCodeRepository creates a new code repository
func NewCodeRepository(db *gorm.DB, hasher domain.CodeHasher) *CodeRepositoryImpl {
	return NewCodeRepositoryWithClock(db, hasher, time.Now)
}

// NewCodeRepositoryWithClock creates a code repository that reads the current time from now
func NewCodeRepositoryWithClock(db *gorm.DB, hasher domain.CodeHasher, now func() time.Time) *CodeRepositoryImpl {
	return &CodeRepositoryImpl{db: db, hasher: hasher, now: now}
}

// Put implements domain.CodeStore
func (r *CodeRepositoryImpl) Put(ctx context.Context, code *domain.VerificationCode) error {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = r.clock()
	}

	row := codeToDB(code)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return domain.StorageError("put verification code", err)
	}
	return nil
}

// FindActive implements domain.CodeStore
func (r *CodeRepositoryImpl) FindActive(ctx context.Context, phoneNumber, code string) (*domain.VerificationCode, error) {
	var rows []DBVerificationCode
	err := r.db.WithContext(ctx).
		Where("phone_number = ? AND consumed = ? AND superseded = ? AND expires_at > ?", phoneNumber, false, false, r.clock()).
		Order("created_at DESC").
		Limit(maxCandidates).
		Find(&rows).Error
	if err != nil {
		return nil, domain.StorageError("find verification code", err)
	}

	for i := range rows {
		if r.hasher.Matches(rows[i].CodeHash, code) {
			return codeToDomain(&rows[i]), nil
		}
	}
	return nil, domain.ErrCodeNotFound
}

// MarkConsumed implements domain.CodeStore. Only the caller whose update
// flips the row gets true.
func (r *CodeRepositoryImpl) MarkConsumed(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&DBVerificationCode{}).
		Where("id = ? AND consumed = ? AND superseded = ? AND expires_at > ?", id, false, false, r.clock()).
		Update("consumed", true)
	if result.Error != nil {
		return false, domain.StorageError("consume verification code", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// SupersedeOutstanding implements domain.CodeStore
func (r *CodeRepositoryImpl) SupersedeOutstanding(ctx context.Context, keep *domain.VerificationCode) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&DBVerificationCode{}).
		Where("phone_number = ? AND id <> ? AND consumed = ? AND superseded = ? AND created_at <= ?",
			keep.PhoneNumber, keep.ID, false, false, normalizeTime(keep.CreatedAt)).
		Update("superseded", true)
	if result.Error != nil {
		return 0, domain.StorageError("supersede verification codes", result.Error)
	}
	return result.RowsAffected, nil
}

// PurgeExpired implements domain.CodeStore
func (r *CodeRepositoryImpl) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	before = normalizeTime(before)
	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR ((consumed = ? OR superseded = ?) AND created_at < ?)", before, true, true, before).
		Delete(&DBVerificationCode{})
	if result.Error != nil {
		return 0, domain.StorageError("purge verification codes", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *CodeRepositoryImpl) clock() time.Time {
	return normalizeTime(r.now())
}

// normalizeTime stores everything in UTC at the precision Postgres keeps
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func codeToDB(code *domain.VerificationCode) *DBVerificationCode {
	return &DBVerificationCode{
		ID:          code.ID,
		PhoneNumber: code.PhoneNumber,
		CodeHash:    code.CodeHash,
		Consumed:    code.Consumed,
		Superseded:  code.Superseded,
		ExpiresAt:   normalizeTime(code.ExpiresAt),
		CreatedAt:   normalizeTime(code.CreatedAt),
	}
}

func codeToDomain(row *DBVerificationCode) *domain.VerificationCode {
	return &domain.VerificationCode{
		ID:          row.ID,
		PhoneNumber: row.PhoneNumber,
		CodeHash:    row.CodeHash,
		CreatedAt:   row.CreatedAt,
		ExpiresAt:   row.ExpiresAt,
		Consumed:    row.Consumed,
		Superseded:  row.Superseded,
	}
}
