package fleet

import (
	"fmt"

	"dispatch/internal/entities"

	"google.golang.org/protobuf/types/known/structpb"
)

func toRequest(courierID string) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"courier_id": courierID,
	})
}

func toDomain(courierID string, resp *structpb.Struct) (*entities.CourierProfile, error) {
	if resp == nil || len(resp.GetFields()) == 0 {
		return nil, fmt.Errorf("%w: empty profile for %s", entities.ErrCourierNotFound, courierID)
	}
	fields := resp.GetFields()

	profile := &entities.CourierProfile{
		ID:            courierID,
		Name:          fields["name"].GetStringValue(),
		Phone:         fields["phone"].GetStringValue(),
		TransportType: entities.CourierTransportType(fields["transport_type"].GetStringValue()),
		Plate:         fields["plate"].GetStringValue(),
		Hub:           fields["hub"].GetStringValue(),
		Suspended:     fields["suspended"].GetBoolValue(),
	}
	if id := fields["courier_id"].GetStringValue(); id != "" && id != courierID {
		return nil, fmt.Errorf("profile for %s returned for %s", id, courierID)
	}
	return profile, nil
}
