package repository

import (
	"context"

	"recipebox/internal/models"

	"gorm.io/gorm"
)

// AddressRepository defines owner-scoped address persistence.
type AddressRepository interface {
	List(ctx context.Context, userID uint) ([]models.Address, error)
	GetByID(ctx context.Context, userID, id uint) (*models.Address, error)
	Create(ctx context.Context, addr *models.Address) error
	Update(ctx context.Context, addr *models.Address, columns []string) error
	Delete(ctx context.Context, userID, id uint) error
}

type addressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) List(ctx context.Context, userID uint) ([]models.Address, error) {
	addrs := []models.Address{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&addrs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return addrs, nil
}

func (r *addressRepository) GetByID(ctx context.Context, userID, id uint) (*models.Address, error) {
	var addr models.Address
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&addr, id).Error; err != nil {
		return nil, translate(err, "Address", id)
	}
	return &addr, nil
}

func (r *addressRepository) Create(ctx context.Context, addr *models.Address) error {
	return translate(r.db.WithContext(ctx).Create(addr).Error, "Address", nil)
}

func (r *addressRepository) Update(ctx context.Context, addr *models.Address, columns []string) error {
	if len(columns) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Address{}).
		Where("id = ? AND user_id = ?", addr.ID, addr.UserID).
		Select(columns).
		Updates(addr)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Address", addr.ID)
	}
	return nil
}

func (r *addressRepository) Delete(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Address{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Address", id)
	}
	return nil
}
