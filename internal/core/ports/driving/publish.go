package driving

import (
	"context"
	"encoding/json"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
)

// PublishService publishes content on a member's behalf.
type PublishService interface {
	// Publish posts text for the identity. Fails closed when the stored
	// credential is expired or missing.
	Publish(ctx context.Context, req PublishRequest) (*PublishResponse, error)
}

// PublishRequest identifies the author and the text to publish.
type PublishRequest struct {
	Key  domain.IdentityKey `json:"-"`
	Text string             `json:"text" example:"Hello from the broker"`
}

// PublishResponse carries the provider response verbatim.
// @Description Downstream publish result
type PublishResponse struct {
	PostID   string          `json:"post_id,omitempty" example:"urn:li:share:7000000000000000000"`
	Response json.RawMessage `json:"response" swaggertype:"object"`
}
