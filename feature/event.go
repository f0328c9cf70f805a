package feature

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Event feature representing a span of time modelled with its own bias such as a holiday
type Event struct {
	Name string `json:"name"`
}

func NewEvent(name string) *Event {
	return &Event{name}
}

func (e Event) String() string {
	return fmt.Sprintf("event_%s", e.Name)
}

func (e Event) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return e.Name, true
	}
	return "", false
}

func (e Event) Type() FeatureType {
	return FeatureTypeEvent
}

func (e Event) Decode() map[string]string {
	return map[string]string{"name": e.Name}
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &labelStr); err != nil {
		return err
	}
	e.Name = labelStr.Name
	return nil
}
