package courier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dispatch/internal/entities"

	"github.com/AlekSi/pointer"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Courier - реестр курьеров: профиль из fleet-домена плюс живые поля, которыми владеет диспетчеризация.
type Courier struct {
	repository Repository
	fleet      FleetGateway
	txManager  TxManager

	resolving singleflight.Group
}

func New(repository Repository, fleet FleetGateway, txManager TxManager) *Courier {
	return &Courier{
		repository: repository,
		fleet:      fleet,
		txManager:  txManager,
	}
}

// CreateCourier регистрирует курьера. Новый курьер всегда начинает в OFFLINE.
func (s *Courier) CreateCourier(ctx context.Context, courierModify entities.CourierModify) (*entities.Courier, error) {
	if courierModify.Name == nil || courierModify.Phone == nil {
		return nil, ErrMissingRequiredFields
	}
	if courierModify.Status != nil || courierModify.ActiveOrderID != nil {
		return nil, ErrStatusNotEditable
	}
	if err := validateProfile(courierModify); err != nil {
		return nil, err
	}

	if courierModify.ID == nil {
		courierModify.ID = pointer.To(uuid.NewString())
	} else if strings.TrimSpace(*courierModify.ID) == "" {
		return nil, ErrInvalidCourierID
	}
	if courierModify.TransportType == nil {
		courierModify.TransportType = pointer.To(entities.DefaultTransportType)
	}
	courierModify.Status = pointer.To(entities.CourierOffline)

	courier, err := s.repository.Create(ctx, courierModify)
	if err != nil {
		return nil, fmt.Errorf("create courier: %w", err)
	}
	return courier, nil
}

// UpdateCourier меняет только профильные поля. Статус меняется через доступность.
func (s *Courier) UpdateCourier(ctx context.Context, courierModify entities.CourierModify) (*entities.Courier, error) {
	if courierModify.ID == nil {
		return nil, ErrInvalidCourierID
	}
	if courierModify.Status != nil ||
		courierModify.ActiveOrderID != nil ||
		courierModify.PendingOffline != nil {
		return nil, ErrStatusNotEditable
	}
	if courierModify.Name == nil &&
		courierModify.Phone == nil &&
		courierModify.TransportType == nil &&
		courierModify.Plate == nil &&
		courierModify.Hub == nil &&
		courierModify.NeedsAttention == nil {
		return nil, fmt.Errorf("no fields to update: %w", ErrMissingRequiredFields)
	}
	if err := validateProfile(courierModify); err != nil {
		return nil, err
	}

	courier, err := s.repository.Update(ctx, courierModify)
	if err != nil {
		return nil, fmt.Errorf("failed to update courier: %w", err)
	}
	return courier, nil
}

func (s *Courier) GetCourier(ctx context.Context, id string) (*entities.Courier, error) {
	courier, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get courier: %w", err)
	}
	return courier, nil
}

func (s *Courier) GetCouriers(ctx context.Context, filter entities.CourierFilter) ([]entities.Courier, error) {
	couriers, err := s.repository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get couriers: %w", err)
	}
	return couriers, nil
}

// Ensure возвращает курьера, при первом появлении подтягивая профиль из fleet-домена.
// Конкурентные первые пинги одного курьера делают один запрос во внешний сервис.
func (s *Courier) Ensure(ctx context.Context, id string) (*entities.Courier, error) {
	courier, err := s.repository.GetByID(ctx, id)
	if err == nil {
		return courier, nil
	}
	if !errors.Is(err, entities.ErrCourierNotFound) {
		return nil, fmt.Errorf("failed to get courier: %w", err)
	}

	v, err, _ := s.resolving.Do(id, func() (any, error) {
		return s.register(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*entities.Courier), nil
}

func (s *Courier) register(ctx context.Context, id string) (*entities.Courier, error) {
	profile, err := s.fleet.GetCourierProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve courier profile: %w", err)
	}

	status := entities.CourierOffline
	if profile.Suspended {
		status = entities.CourierSuspended
	}
	transport := profile.TransportType
	if !transport.Valid() {
		transport = entities.DefaultTransportType
	}

	courier, err := s.repository.Create(ctx, entities.CourierModify{
		ID:            pointer.To(id),
		Name:          pointer.To(profile.Name),
		Phone:         pointer.To(profile.Phone),
		TransportType: pointer.To(transport),
		Plate:         pointer.To(profile.Plate),
		Hub:           pointer.To(profile.Hub),
		Status:        pointer.To(status),
	})
	if errors.Is(err, entities.ErrConflict) {
		// другой экземпляр успел зарегистрировать
		return s.repository.GetByID(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("register courier: %w", err)
	}
	return courier, nil
}

// SyncProfile подтягивает изменения профиля из fleet-домена. Блокировка во внешнем
// домене переводит курьера в SUSPENDED, только если он не держит заказ.
func (s *Courier) SyncProfile(ctx context.Context, id string) (*entities.Courier, error) {
	profile, err := s.fleet.GetCourierProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve courier profile: %w", err)
	}

	var updated *entities.Courier
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		current, err := s.repository.GetByID(ctx, id)
		if err != nil {
			return err
		}

		modify := entities.CourierModify{
			ID:    pointer.To(id),
			Name:  pointer.To(profile.Name),
			Plate: pointer.To(profile.Plate),
			Hub:   pointer.To(profile.Hub),
		}
		if profile.TransportType.Valid() {
			modify.TransportType = pointer.To(profile.TransportType)
		}
		switch {
		case profile.Suspended && current.Status != entities.CourierSuspended && current.ActiveOrderID == nil:
			modify.Status = pointer.To(entities.CourierSuspended)
		case profile.Suspended && current.ActiveOrderID != nil:
			modify.NeedsAttention = pointer.To(true)
		case !profile.Suspended && current.Status == entities.CourierSuspended:
			modify.Status = pointer.To(entities.CourierOffline)
		}

		updated, err = s.repository.Update(ctx, modify)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("sync courier profile: %w", err)
	}
	return updated, nil
}

func validateProfile(m entities.CourierModify) error {
	if m.Name != nil && !isValidName(*m.Name) {
		return ErrInvalidName
	}
	if m.Phone != nil && !isValidPhone(*m.Phone) {
		return ErrInvalidPhone
	}
	if m.TransportType != nil && !m.TransportType.Valid() {
		return ErrInvalidTransport
	}
	return nil
}
