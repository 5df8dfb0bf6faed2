package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/skincareshop/database"
	"github.com/skincareshop/models"
	"gorm.io/gorm"
)

// StaffInput holds the editable staff fields. An empty ProfilePicture on
// update keeps the current picture.
type StaffInput struct {
	FullName       string
	Position       string
	Phone          string
	Email          string
	Address        string
	Gender         string
	ProfilePicture string
}

// StaffService manages staff members
type StaffService struct {
	pool    *database.Pool
	log     zerolog.Logger
	newCode CodeGenerator
}

// NewStaffService creates a staff service; gen may be nil for random codes
func NewStaffService(pool *database.Pool, log zerolog.Logger, gen CodeGenerator) *StaffService {
	if gen == nil {
		gen = RandomHex
	}
	return &StaffService{pool: pool, log: log.With().Str("service", "staff").Logger(), newCode: gen}
}

// List returns staff whose name or position contains search, by name
func (s *StaffService) List(ctx context.Context, search string) ([]models.Staff, error) {
	var staff []models.Staff
	err := s.pool.Do(ctx, func(db *gorm.DB) error {
		q := db.Model(&models.Staff{})
		if search = strings.TrimSpace(search); search != "" {
			like := likePattern(search)
			q = q.Where("LOWER(full_name) LIKE ?"+likeEscape+" OR LOWER(position) LIKE ?"+likeEscape, like, like)
		}
		return q.Order("full_name").Order("id").Find(&staff).Error
	})
	if err != nil {
		return nil, classify("list staff", err)
	}
	return staff, nil
}

// Get loads one staff member
func (s *StaffService) Get(ctx context.Context, id uint) (*models.Staff, error) {
	var m models.Staff
	err := s.pool.Do(ctx, func(db *gorm.DB) error {
		err := db.First(&m, id).Error
		if isRecordNotFound(err) {
			return notFound("staff member", id)
		}
		return err
	})
	if err != nil {
		return nil, classify("get staff", err)
	}
	return &m, nil
}

// Create stores a staff member under a freshly generated STF- code
func (s *StaffService) Create(ctx context.Context, in StaffInput) (*models.Staff, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	if in.FullName == "" {
		return nil, invalidf("full name is required")
	}

	var m models.Staff
	err := s.pool.Transaction(ctx, func(tx *gorm.DB) error {
		code, err := uniqueCode(tx, s.newCode, StaffCodePrefix, &models.Staff{})
		if err != nil {
			return err
		}
		m = models.Staff{
			Code:           code,
			FullName:       in.FullName,
			Position:       strings.TrimSpace(in.Position),
			Phone:          strings.TrimSpace(in.Phone),
			Email:          strings.TrimSpace(in.Email),
			Address:        in.Address,
			Gender:         in.Gender,
			ProfilePicture: in.ProfilePicture,
		}
		return tx.Create(&m).Error
	})
	if err != nil {
		return nil, classify("create staff", err)
	}
	s.log.Info().Uint("id", m.ID).Str("code", m.Code).Msg("staff member created")
	return &m, nil
}

// Update changes a staff member and returns the picture it replaced, if
// any. The code never changes.
func (s *StaffService) Update(ctx context.Context, id uint, in StaffInput) (replacedPicture string, err error) {
	in.FullName = strings.TrimSpace(in.FullName)
	if in.FullName == "" {
		return "", invalidf("full name is required")
	}
	err = s.pool.Transaction(ctx, func(tx *gorm.DB) error {
		var m models.Staff
		if err := tx.First(&m, id).Error; err != nil {
			if isRecordNotFound(err) {
				return notFound("staff member", id)
			}
			return err
		}
		updates := map[string]interface{}{
			"full_name": in.FullName,
			"position":  strings.TrimSpace(in.Position),
			"phone":     strings.TrimSpace(in.Phone),
			"email":     strings.TrimSpace(in.Email),
			"address":   in.Address,
			"gender":    in.Gender,
		}
		if in.ProfilePicture != "" && in.ProfilePicture != m.ProfilePicture {
			updates["profile_picture"] = in.ProfilePicture
			replacedPicture = m.ProfilePicture
		}
		return tx.Model(&m).Updates(updates).Error
	})
	if err != nil {
		return "", classify("update staff", err)
	}
	s.log.Info().Uint("id", id).Msg("staff member updated")
	return replacedPicture, nil
}

// Delete removes a staff member and returns the removed row so the caller
// can clean up the profile picture
func (s *StaffService) Delete(ctx context.Context, id uint) (*models.Staff, error) {
	var m models.Staff
	err := s.pool.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&m, id).Error; err != nil {
			if isRecordNotFound(err) {
				return notFound("staff member", id)
			}
			return err
		}
		return tx.Delete(&models.Staff{}, id).Error
	})
	if err != nil {
		return nil, classify("delete staff", err)
	}
	s.log.Info().Uint("id", id).Str("code", m.Code).Msg("staff member deleted")
	return &m, nil
}
