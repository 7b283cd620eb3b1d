package weather

import (
	"context"
	"log"
)

// ResolveCity maps free text to a QWeather city id and canonical name.
// The canonical name may differ from the input and is what gets displayed.
func (s *Service) ResolveCity(ctx context.Context, location string) (ResolvedCity, error) {
	resp, err := s.provider.LookupCity(ctx, location)
	if err != nil {
		return ResolvedCity{}, err
	}

	switch resp.Code {
	case CodeOK:
	case CodeNotFound:
		return ResolvedCity{}, &CityNotFoundError{Location: location}
	default:
		return ResolvedCity{}, &APIError{Code: resp.Code}
	}

	if len(resp.Location) == 0 || resp.Location[0].ID == "" {
		return ResolvedCity{}, &CityNotFoundError{Location: location}
	}

	city := resp.Location[0]
	log.Printf("DEBUG: resolved %q to %s (%s)", location, city.Name, city.ID)
	return ResolvedCity{ID: city.ID, Name: city.Name}, nil
}
