package timezone

import (
	"encoding/json"
	"fmt"
	"github.com/pkg/errors"
	"net/http"
	"net/url"
	"time"
)

// Service resolves IANA zone names from coordinates via timezonedb.com.
// Lets the group owner set the timezone by sharing a location instead of
// typing a zone name.
type Service struct {
	token  string
	client http.Client
}

const (
	getTZURL       = "http://api.timezonedb.com/v2.1/get-time-zone"
	requestTimeout = time.Second * 10
)

func NewService(token string) *Service {
	return &Service{
		token:  token,
		client: http.Client{Timeout: requestTimeout},
	}
}

func (s *Service) ZoneByLocation(lat, lng string) (string, error) {
	values := url.Values{}
	values.Set("key", s.token)
	values.Set("format", "json")
	values.Set("by", "position")
	values.Set("fields", "zoneName")
	values.Set("lat", lat)
	values.Set("lng", lng)
	response, err := s.client.Get(fmt.Sprintf("%v?%v", getTZURL, values.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "unable to get timezone from timezonedb")
	}
	defer response.Body.Close()
	payload := struct {
		ZoneName string `json:"zoneName"`
	}{}
	err = json.NewDecoder(response.Body).Decode(&payload)
	if err != nil {
		return "", errors.Wrap(err, "unable to decode timezone from timezonedb")
	}
	if payload.ZoneName == "" {
		return "", errors.New("timezonedb returned an empty zone name")
	}
	return payload.ZoneName, nil
}
