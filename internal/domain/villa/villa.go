package villa

import (
	"context"
	"errors"
	"strings"
	"time"

	"villacove/internal/domain/shared/events"
	"villacove/internal/domain/shared/money"
)

var (
	ErrVillaNotFound   = errors.New("villa: not found")
	ErrNameRequired    = errors.New("villa: name is required")
	ErrSlugRequired    = errors.New("villa: slug is required")
	ErrCapacity        = errors.New("villa: capacity must be at least 1")
	ErrMinStay         = errors.New("villa: minimum stay must be at least 1 night")
	ErrNightlyRate     = errors.New("villa: nightly rate must be non-negative")
	ErrFeeNegative     = errors.New("villa: fees must be non-negative")
	ErrInvalidState    = errors.New("villa: invalid state transition")
	ErrPhotosRequired  = errors.New("villa: at least one photo is required to publish")
	ErrCurrencyMissing = errors.New("villa: nightly rate currency is required")
)

type VillaID string

type VillaState string

const (
	StateDraft     VillaState = "DRAFT"
	StatePublished VillaState = "PUBLISHED"
)

// Villa is the administrative aggregate behind both the marketing site and
// the booking ledger. Rates and fees are immutable per booking transaction;
// only admin edits mutate them.
type Villa struct {
	ID            VillaID
	Name          string
	Slug          string
	Description   string
	Location      string
	Capacity      int
	MinStayNights int
	NightlyRate   money.Money
	CleaningFee   money.Money
	ServiceFee    money.Money
	Amenities     []string
	Photos        []string
	State         VillaState
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id VillaID) (*Villa, error)
	BySlug(ctx context.Context, slug string) (*Villa, error)
	Save(ctx context.Context, v *Villa) error
	List(ctx context.Context, onlyPublished bool) ([]*Villa, error)
}

type CreateParams struct {
	ID            VillaID
	Name          string
	Slug          string
	Description   string
	Location      string
	Capacity      int
	MinStayNights int
	NightlyRate   money.Money
	CleaningFee   money.Money
	ServiceFee    money.Money
	Amenities     []string
	Now           time.Time
}

func NewVilla(params CreateParams) (*Villa, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("villa: id is required")
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(params.Slug) == "" {
		return nil, ErrSlugRequired
	}
	if params.Capacity < 1 {
		return nil, ErrCapacity
	}
	if params.MinStayNights < 1 {
		return nil, ErrMinStay
	}
	if err := validateRates(params.NightlyRate, params.CleaningFee, params.ServiceFee); err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	v := &Villa{
		ID:            params.ID,
		Name:          strings.TrimSpace(params.Name),
		Slug:          strings.ToLower(strings.TrimSpace(params.Slug)),
		Description:   strings.TrimSpace(params.Description),
		Location:      strings.TrimSpace(params.Location),
		Capacity:      params.Capacity,
		MinStayNights: params.MinStayNights,
		NightlyRate:   params.NightlyRate,
		CleaningFee:   params.CleaningFee,
		ServiceFee:    params.ServiceFee,
		Amenities:     append([]string(nil), params.Amenities...),
		State:         StateDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	v.Record(VillaCreated{VillaID: v.ID, Name: v.Name, At: now})
	return v, nil
}

type UpdateParams struct {
	Name          string
	Description   string
	Location      string
	Capacity      int
	MinStayNights int
	Amenities     []string
}

func (v *Villa) UpdateDetails(params UpdateParams, now time.Time) error {
	if strings.TrimSpace(params.Name) == "" {
		return ErrNameRequired
	}
	if params.Capacity < 1 {
		return ErrCapacity
	}
	if params.MinStayNights < 1 {
		return ErrMinStay
	}
	v.Name = strings.TrimSpace(params.Name)
	v.Description = strings.TrimSpace(params.Description)
	v.Location = strings.TrimSpace(params.Location)
	v.Capacity = params.Capacity
	v.MinStayNights = params.MinStayNights
	v.Amenities = append([]string(nil), params.Amenities...)
	v.UpdatedAt = now.UTC()
	v.Record(VillaUpdated{VillaID: v.ID, At: v.UpdatedAt})
	return nil
}

func (v *Villa) SetRates(nightly, cleaning, service money.Money, now time.Time) error {
	if err := validateRates(nightly, cleaning, service); err != nil {
		return err
	}
	v.NightlyRate = nightly
	v.CleaningFee = cleaning
	v.ServiceFee = service
	v.UpdatedAt = now.UTC()
	v.Record(VillaUpdated{VillaID: v.ID, At: v.UpdatedAt})
	return nil
}

func (v *Villa) AddPhoto(url string, now time.Time) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	v.Photos = append(v.Photos, url)
	v.UpdatedAt = now.UTC()
}

func (v *Villa) Publish(now time.Time) error {
	if v.State == StatePublished {
		return nil
	}
	if len(v.Photos) == 0 {
		return ErrPhotosRequired
	}
	v.State = StatePublished
	v.UpdatedAt = now.UTC()
	v.Record(VillaPublished{VillaID: v.ID, At: v.UpdatedAt})
	return nil
}

func (v *Villa) Unpublish(now time.Time) error {
	if v.State != StatePublished {
		return ErrInvalidState
	}
	v.State = StateDraft
	v.UpdatedAt = now.UTC()
	v.Record(VillaUnpublished{VillaID: v.ID, At: v.UpdatedAt})
	return nil
}

func validateRates(nightly, cleaning, service money.Money) error {
	if nightly.Currency == "" {
		return ErrCurrencyMissing
	}
	if nightly.Amount < 0 {
		return ErrNightlyRate
	}
	if cleaning.Amount < 0 || service.Amount < 0 {
		return ErrFeeNegative
	}
	return nil
}
