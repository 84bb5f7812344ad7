package geocoding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// MinRequestInterval is the pause taken before every forward lookup. The public
// service allows one request per second per client.
const MinRequestInterval = 1100 * time.Millisecond

var (
	ErrNoAddress       = errors.New("reverse lookup returned no address")
	ErrNoPlaceName     = errors.New("address has no usable place name")
	ErrNoForwardResult = errors.New("forward lookup found nothing")
)

// Place is a named place centroid
type Place struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Geocoder is the subset of the HTTP client the resolver uses
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (*ReverseResult, error)
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// Sleeper blocks for d. It must not return early: the delay exists to honour the
// upstream rate limit, not the caller's deadline.
type Sleeper func(d time.Duration)

// Resolver maps a coordinate to a stable place: reverse lookup for the district,
// then forward lookup of that district for its centroid.
type Resolver struct {
	geocoder Geocoder
	sleep    Sleeper
	interval time.Duration
}

// NewResolver creates a resolver. A nil sleeper means time.Sleep.
func NewResolver(geocoder Geocoder, sleep Sleeper) *Resolver {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Resolver{
		geocoder: geocoder,
		sleep:    sleep,
		interval: MinRequestInterval,
	}
}

// Resolve returns the place centroid for a coordinate. The returned coordinates are
// the forward result's, never the input. Any failure yields a nil place and an error;
// partial or guessed results are never returned.
func (r *Resolver) Resolve(ctx context.Context, lat, lng float64) (*Place, error) {
	reverse, err := r.geocoder.Reverse(ctx, lat, lng)
	if err != nil {
		return nil, err
	}
	if reverse == nil || reverse.Address == nil {
		return nil, ErrNoAddress
	}

	addr := reverse.Address
	placeName := firstNonEmpty(addr.Suburb, addr.CityDistrict, addr.County, addr.City, addr.Town, addr.Village, addr.State)
	if placeName == "" {
		return nil, ErrNoPlaceName
	}
	cityContext := firstNonEmpty(addr.City, addr.Town, addr.Village)
	countryContext := strings.TrimSpace(addr.Country)

	distinctCity := ""
	if cityContext != placeName {
		distinctCity = cityContext
	}

	query := joinNonEmpty(placeName, distinctCity, countryContext)
	hit, err := r.search(ctx, query)
	if err != nil {
		return nil, err
	}
	if hit != nil {
		return &Place{Name: placeName, Latitude: hit.Latitude, Longitude: hit.Longitude}, nil
	}

	if distinctCity == "" {
		return nil, ErrNoForwardResult
	}

	fallback := joinNonEmpty(distinctCity, countryContext)
	log.WithFields(log.Fields{
		"query":    query,
		"fallback": fallback,
	}).Debug("Forward lookup empty, retrying with city")

	hit, err = r.search(ctx, fallback)
	if err != nil {
		return nil, err
	}
	if hit == nil {
		return nil, ErrNoForwardResult
	}
	return &Place{Name: placeName, Latitude: hit.Latitude, Longitude: hit.Longitude}, nil
}

// search waits out the rate-limit interval, then returns the first hit or nil
func (r *Resolver) search(ctx context.Context, query string) (*SearchResult, error) {
	r.sleep(r.interval)

	results, err := r.geocoder.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// String is used in log fields
func (p *Place) String() string {
	return fmt.Sprintf("%s (%.5f, %.5f)", p.Name, p.Latitude, p.Longitude)
}
