package service

import (
	"context"

	"recipebox/internal/models"
	"recipebox/internal/repository"
)

type AddressService struct {
	addresses repository.AddressRepository
}

func NewAddressService(addresses repository.AddressRepository) *AddressService {
	return &AddressService{addresses: addresses}
}

func (s *AddressService) List(ctx context.Context, userID uint) ([]models.Address, error) {
	return s.addresses.List(ctx, userID)
}

func (s *AddressService) Get(ctx context.Context, userID, id uint) (*models.Address, error) {
	return s.addresses.GetByID(ctx, userID, id)
}

func (s *AddressService) Create(ctx context.Context, userID uint, form Form) (*models.Address, error) {
	addr := &models.Address{UserID: userID}
	if _, err := bindAddress(form, addr, false); err != nil {
		return nil, err
	}
	if err := s.addresses.Create(ctx, addr); err != nil {
		return nil, err
	}
	return addr, nil
}

// Update applies a full (partial false) or partial update to an owned address.
func (s *AddressService) Update(ctx context.Context, userID, id uint, form Form, partial bool) (*models.Address, error) {
	addr, err := s.addresses.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	columns, err := bindAddress(form, addr, partial)
	if err != nil {
		return nil, err
	}
	if err := s.addresses.Update(ctx, addr, columns); err != nil {
		return nil, err
	}
	return addr, nil
}

func (s *AddressService) Delete(ctx context.Context, userID, id uint) error {
	return s.addresses.Delete(ctx, userID, id)
}

func bindAddress(form Form, addr *models.Address, partial bool) ([]string, error) {
	fe := models.FieldErrors{}
	var columns []string

	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"street", &addr.Street},
		{"city", &addr.City},
		{"country", &addr.Country},
	} {
		if v, ok := form.Text(fe, f.name, false, partial); ok {
			*f.dst = v
			columns = append(columns, f.name)
		} else if !form.Has(f.name) && !partial {
			*f.dst = ""
			columns = append(columns, f.name)
		}
	}

	if v, ok := form.NullableInt(fe, "postcode"); ok {
		addr.Postcode = v
		columns = append(columns, "postcode")
	} else if !form.Has("postcode") && !partial {
		addr.Postcode = nil
		columns = append(columns, "postcode")
	}

	if err := fe.Err(); err != nil {
		return nil, err
	}
	return columns, nil
}
