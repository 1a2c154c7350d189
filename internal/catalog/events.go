package catalog

import "github.com/alchepastry/pastryadmin/internal/domain"

// Event topics published on the catalog bus.
const (
	TopicAdded   = "catalog:added"
	TopicUpdated = "catalog:updated"
	TopicStock   = "catalog:stock"
	TopicDeleted = "catalog:deleted"
)

// Topics lists every catalog topic, for subscribers that want all changes.
var Topics = []string{TopicAdded, TopicUpdated, TopicStock, TopicDeleted}

// Event describes one applied catalog mutation. Previous is nil for adds.
type Event struct {
	Topic    string          `json:"topic"`
	Product  domain.Product  `json:"product"`
	Previous *domain.Product `json:"previous,omitempty"`
	Size     int             `json:"size"`
}
