package services

import (
	"context"
	"strings"

	"gorm.io/datatypes"

	"reseller_hub/internal/models"
	"reseller_hub/internal/repository"
)

const resellerConflictMessage = "This Reseller ID already exists."

// ResellerInput is the flat form of a reseller; bank fields are bundled into
// the stored bank details record.
type ResellerInput struct {
	ResellerID      string `json:"reseller_id"`
	ResellerName    string `json:"reseller_name"`
	ResellerAddress string `json:"reseller_address"`
	ContactNo       string `json:"contact_no"`
	WhatsAppNo      string `json:"whatsapp_no"`
	AccNo           string `json:"acc_no"`
	Bank            string `json:"bank"`
	Branch          string `json:"branch"`
	CardHolder      string `json:"card_holder"`
}

type ResellerService interface {
	List(ctx context.Context, search string) ([]models.Reseller, error)
	Get(ctx context.Context, resellerID string) (*models.Reseller, error)
	Create(ctx context.Context, in ResellerInput) (*models.Reseller, error)
	Update(ctx context.Context, resellerID string, in ResellerInput) (*models.Reseller, error)
	Delete(ctx context.Context, resellerID string) error
}

type resellerService struct {
	resellerRepo repository.ResellerRepository
}

func NewResellerService(resellerRepo repository.ResellerRepository) ResellerService {
	return &resellerService{resellerRepo: resellerRepo}
}

func (s *resellerService) List(ctx context.Context, search string) ([]models.Reseller, error) {
	return s.resellerRepo.List(ctx, search)
}

func (s *resellerService) Get(ctx context.Context, resellerID string) (*models.Reseller, error) {
	return s.resellerRepo.GetByID(ctx, resellerID)
}

func (s *resellerService) Create(ctx context.Context, in ResellerInput) (*models.Reseller, error) {
	reseller, err := in.toModel(strings.TrimSpace(in.ResellerID))
	if err != nil {
		return nil, err
	}
	if err := required("reseller_id", reseller.ResellerID); err != nil {
		return nil, err
	}
	if err := s.resellerRepo.Create(ctx, reseller); err != nil {
		return nil, friendlyConflict(err, resellerConflictMessage)
	}
	return reseller, nil
}

func (s *resellerService) Update(ctx context.Context, resellerID string, in ResellerInput) (*models.Reseller, error) {
	reseller, err := in.toModel(resellerID)
	if err != nil {
		return nil, err
	}
	if err := s.resellerRepo.Update(ctx, reseller); err != nil {
		return nil, err
	}
	return s.resellerRepo.GetByID(ctx, resellerID)
}

func (s *resellerService) Delete(ctx context.Context, resellerID string) error {
	return s.resellerRepo.Delete(ctx, resellerID)
}

func (in ResellerInput) toModel(resellerID string) (*models.Reseller, error) {
	r := &models.Reseller{
		ResellerID:      resellerID,
		ResellerName:    strings.TrimSpace(in.ResellerName),
		ResellerAddress: in.ResellerAddress,
		ContactNo:       strings.TrimSpace(in.ContactNo),
		WhatsAppNo:      strings.TrimSpace(in.WhatsAppNo),
		BankDetails: datatypes.NewJSONType(models.BankDetails{
			AccNo:      strings.TrimSpace(in.AccNo),
			Bank:       strings.TrimSpace(in.Bank),
			Branch:     strings.TrimSpace(in.Branch),
			CardHolder: strings.TrimSpace(in.CardHolder),
		}),
	}
	if err := required("reseller_name", r.ResellerName); err != nil {
		return nil, err
	}
	return r, nil
}
