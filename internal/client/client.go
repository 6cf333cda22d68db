package client

import (
	"github.com/fivetwenty-io/retell-client/pkg/retell"
)

// Client implements the retell.Client interface.
type Client struct {
	conn *Connection

	// Resource clients
	phoneCalls *PhoneCallsClient
}

// New creates a new Retell API client. It fails with a *retell.CredentialsError
// when the API key is blank. No request is made until the first operation.
func New(config *retell.Config) (*Client, error) {
	conn, err := NewConnection(config)
	if err != nil {
		return nil, err
	}

	client := &Client{
		conn: conn,
	}

	client.initializeResourceClients()

	return client, nil
}

func (c *Client) initializeResourceClients() {
	c.phoneCalls = NewPhoneCallsClient(c.conn)
}

// PhoneCalls implements retell.Client.PhoneCalls.
func (c *Client) PhoneCalls() retell.PhoneCallsClient {
	return c.phoneCalls
}

// Configure implements retell.Client.Configure.
func (c *Client) Configure(apiKey string) error {
	return c.conn.Configure(apiKey)
}

// Connection returns the connection shared by the resource clients.
func (c *Client) Connection() *Connection {
	return c.conn
}
