package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/dto"
	"github.com/yeremiapane/billiard-pos/models"
)

var ErrMemberExists = precondition("MEMBER_EXISTS", "member code already exists")

type MemberService struct {
	db   *gorm.DB
	opts Options
}

func NewMemberService(db *gorm.DB, opts Options) *MemberService {
	return &MemberService{db: db, opts: opts.withDefaults()}
}

func (s *MemberService) Create(ctx context.Context, req dto.CreateMemberRequest) (*models.Member, error) {
	member := models.Member{
		Code:  strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:  strings.TrimSpace(req.Name),
		Phone: strings.TrimSpace(req.Phone),
		Tier:  req.Tier,
	}
	if member.Code == "" {
		member.Code = "MBR" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	}
	if member.Tier == "" {
		member.Tier = models.TierBronze
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Member{}).Where("code = ?", member.Code).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrMemberExists
	}
	if err := db.Create(&member).Error; err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	return &member, nil
}

func (s *MemberService) List(ctx context.Context, search string) ([]models.Member, error) {
	query := s.db.WithContext(ctx)
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ? OR code LIKE ?", like, like, like)
	}
	members := []models.Member{}
	if err := query.Order("name ASC").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

func (s *MemberService) Get(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	if err := s.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, orNotFound(err, ErrMemberNotFound)
	}
	return &member, nil
}

// TopUp adds prepaid balance to the member's wallet.
func (s *MemberService) TopUp(ctx context.Context, id uint, amount int64) (*models.Member, error) {
	var member models.Member
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Member{}).Where("id = ?", id).Update("wallet", gorm.Expr("wallet + ?", amount))
		if res.Error != nil {
			return fmt.Errorf("failed to top up wallet: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrMemberNotFound
		}
		if err := tx.First(&member, id).Error; err != nil {
			return err
		}
		entry := models.PointLedger{
			MemberID:     id,
			Type:         models.LedgerTopUp,
			Points:       amount,
			BalanceAfter: member.Wallet,
			CreatedAt:    s.opts.clock(),
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Ledger lists the member's points and wallet movements, newest first.
func (s *MemberService) Ledger(ctx context.Context, id uint) ([]models.PointLedger, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	entries := []models.PointLedger{}
	err := s.db.WithContext(ctx).
		Where("member_id = ?", id).
		Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger: %w", err)
	}
	return entries, nil
}
