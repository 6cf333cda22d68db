package client

import (
	"context"
	"net/http"

	"github.com/fivetwenty-io/retell-client/internal/constants"
	internalhttp "github.com/fivetwenty-io/retell-client/internal/http"
	"github.com/fivetwenty-io/retell-client/pkg/retell"
)

// PhoneCallsClient implements retell.PhoneCallsClient.
type PhoneCallsClient struct {
	conn *Connection
}

// NewPhoneCallsClient creates a new phone calls client.
func NewPhoneCallsClient(conn *Connection) *PhoneCallsClient {
	return &PhoneCallsClient{
		conn: conn,
	}
}

// Create implements retell.PhoneCallsClient.Create. Both numbers are checked
// before anything is sent.
func (c *PhoneCallsClient) Create(ctx context.Context, req *retell.CreatePhoneCallRequest) retell.Result[retell.Document] {
	if req == nil {
		req = &retell.CreatePhoneCallRequest{}
	}

	validated := retell.Bind(retell.ValidatePhoneNumber("from_number", req.FromNumber), func(string) retell.Result[string] {
		return retell.ValidatePhoneNumber("to_number", req.ToNumber)
	})
	if validated.IsFailure() {
		return retell.Failure[retell.Document](validated.Tag(), validated.Problem())
	}

	return perform(ctx, c.conn, &internalhttp.Request{
		Method: http.MethodPost,
		Path:   constants.APIPathCreatePhoneCall,
		Body:   req.Payload(),
	}, "Error occurred during phone call creation")
}
