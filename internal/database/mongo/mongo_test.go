package mongo

import (
	"context"
	"testing"

	"querywise/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOptions(t *testing.T) {
	opts := ClientOptions(config.MongoConfig{
		Address:  "mongodb://db.example.com:10255/?ssl=true",
		Username: "reader",
		Password: "secret",
	})

	require.NotNil(t, opts.Auth)
	assert.Equal(t, "reader", opts.Auth.Username)
	assert.Equal(t, []string{"db.example.com:10255"}, opts.Hosts)

	opts = ClientOptions(config.MongoConfig{Address: "mongodb://localhost:27017"})
	assert.Nil(t, opts.Auth)
}

func TestConnect_InvalidURI(t *testing.T) {
	_, err := Connect(context.Background(), config.MongoConfig{Address: "not-a-uri"})
	assert.Error(t, err)
}

func TestConnect_Lazy(t *testing.T) {
	client, err := Connect(context.Background(), config.MongoConfig{Address: "mongodb://127.0.0.1:1"})
	require.NoError(t, err)
	assert.NoError(t, client.Disconnect(context.Background()))
}
